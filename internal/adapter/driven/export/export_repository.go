package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

var csvHeaders = []string{
	"Instance ID", "Instance Type", "Utilization (%)", "Utilization Tier",
	"Monthly Cost", "Recommended Type", "Projected Monthly Savings", "Action",
}

// ExportToCSV grava uma linha por instância e uma linha final de totais.
func (r *ExportRepositoryImpl) ExportToCSV(view *entity.PresentationView, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write(csvHeaders)

	for _, inst := range view.Instances {
		writer.Write([]string{
			inst.ID,
			inst.Type,
			fmt.Sprintf("%.2f", inst.UtilizationPercent),
			string(inst.Tier),
			fmt.Sprintf("$%.2f", inst.MonthlyCost),
			inst.RecommendedType,
			fmt.Sprintf("$%.2f", inst.ProjectedMonthlySavings),
			cleanRichTags(inst.Action),
		})
	}
	writer.Write([]string{
		"TOTAL", "", "", "",
		fmt.Sprintf("$%.2f", view.Summary.TotalMonthlyCost),
		"",
		fmt.Sprintf("$%.2f", view.Summary.TotalProjectedSavings),
		view.Summary.OptimizationScore,
	})

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(view *entity.PresentationView, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(view *entity.PresentationView, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	generatedAt := time.Now().Format("2006-01-02")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by Cloud Optimizer (Go) | %s", generatedAt)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	// table desenha um cabeçalho em negrito seguido das linhas.
	table := func(widths []float64, headers []string, rows [][]string) {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, tr(h), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range rows {
			for i, cell := range row {
				pdf.CellFormat(widths[i], 6, tr(cleanRichTags(cell)), "", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(8)
	}

	pdf.AddPage()

	// Cabeçalho
	source := view.Source
	if len(source) > 80 {
		source = source[:77] + "..."
	}
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Usage Report: %s", source)), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  %d instances | Optimization score: %s",
		view.Summary.InstanceCount, view.Summary.OptimizationScore)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	// Economia
	sectionTitle("Savings Summary")
	colWidth := 190.0 / 4
	pdf.SetFont("Arial", "B", 10)
	for _, label := range []string{"Monthly Spend", "Monthly Savings", "Annual Savings", "Cost Reduction"} {
		pdf.CellFormat(colWidth, 7, tr(label), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("$%.2f", view.Summary.TotalMonthlyCost)), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 128, 0)
	pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("$%.2f", view.Savings.Monthly)), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("$%.2f", view.Savings.Annual)), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("%.2f%%", view.Savings.Percentage)), "", 1, "L", false, 0, "")
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.Ln(8)

	// Instâncias
	sectionTitle("Instances")
	instanceRows := make([][]string, 0, len(view.Instances))
	for _, inst := range view.Instances {
		instanceRows = append(instanceRows, []string{
			inst.ID,
			inst.Type,
			fmt.Sprintf("%.1f%% (%s)", inst.UtilizationPercent, inst.Tier),
			fmt.Sprintf("$%.2f", inst.MonthlyCost),
			inst.RecommendedType,
			fmt.Sprintf("$%.2f", inst.ProjectedMonthlySavings),
			inst.Action,
		})
	}
	table(
		[]float64{30, 26, 26, 22, 26, 22, 38},
		[]string{"Instance", "Type", "Utilization", "Cost", "Recommended", "Savings", "Action"},
		instanceRows,
	)

	// Tendência
	if len(view.Trend) > 0 {
		sectionTitle("Cost Trend")
		trendRows := make([][]string, 0, len(view.Trend))
		for _, p := range view.Trend {
			trendRows = append(trendRows, []string{
				p.Period,
				fmt.Sprintf("$%.2f", p.CurrentCost),
				fmt.Sprintf("$%.2f", p.PredictedCost),
				fmt.Sprintf("$%.2f", p.OptimizedCost),
			})
		}
		table([]float64{40, 50, 50, 50}, []string{"Period", "Current", "Predicted", "Optimized"}, trendRows)
	}

	sectionTitle("Optimization Summary")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(190, 5, tr(fmt.Sprintf(
		"Overprovisioned instances: %d of %d\nProjected savings at %.0f%% of current cost: $%.2f per month",
		view.Summary.Overprovisioned, view.Summary.InstanceCount,
		view.SavingsFraction*100, view.Summary.TotalProjectedSavings,
	)), "", "L", false)

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
