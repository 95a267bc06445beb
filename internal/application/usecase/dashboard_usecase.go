package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/logger"
	"github.com/diillson/cloud-optimizer-go/internal/metrics"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Catálogos de instâncias disponíveis.
const (
	CatalogStatic = "static"
	CatalogEC2    = "ec2"
)

// SourceFactory builds the upload source for an AWS profile and region.
type SourceFactory func(profile, region string) repository.UploadSource

// CatalogFactory builds the instance catalog named by kind.
type CatalogFactory func(ctx context.Context, kind, profile, region string) (repository.InstanceCatalog, error)

// DashboardUseCase handles the main dashboard functionality.
type DashboardUseCase struct {
	resolver   repository.ParserResolver
	sources    SourceFactory
	catalogs   CatalogFactory
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
}

// NewDashboardUseCase creates a new dashboard use case.
func NewDashboardUseCase(
	resolver repository.ParserResolver,
	sources SourceFactory,
	catalogs CatalogFactory,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *DashboardUseCase {
	return &DashboardUseCase{
		resolver:   resolver,
		sources:    sources,
		catalogs:   catalogs,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
	}
}

// settings são os argumentos já mesclados com o arquivo de configuração e os padrões.
type settings struct {
	args            *types.CLIArgs
	savingsFraction float64
	timeout         time.Duration
	sizing          SizingPolicy
}

// resolveSettings mescla o arquivo de configuração nos argumentos. Flags explícitas vencem.
func (uc *DashboardUseCase) resolveSettings(args *types.CLIArgs) (*settings, error) {
	merged := *args
	var cfg types.Config

	if args.ConfigFile != "" {
		loaded, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if merged.ReportName == "" {
		merged.ReportName = cfg.ReportName
	}
	if len(merged.ReportType) == 0 {
		merged.ReportType = cfg.ReportType
	}
	if merged.ReportName != "" && len(merged.ReportType) == 0 {
		merged.ReportType = []string{"csv"}
	}
	if merged.Dir == "" {
		merged.Dir = cfg.Dir
	}
	if merged.Catalog == "" {
		merged.Catalog = cfg.Catalog
	}
	if merged.Catalog == "" {
		merged.Catalog = CatalogStatic
	}
	if merged.Profile == "" {
		merged.Profile = cfg.Profile
	}
	if merged.Region == "" {
		merged.Region = cfg.Region
	}
	if merged.LogLevel == "" {
		merged.LogLevel = cfg.LogLevel
	}
	if merged.MetricsFile == "" {
		merged.MetricsFile = cfg.MetricsFile
	}

	sizing, err := SizingPolicyFromConfig(cfg.Sizing)
	if err != nil {
		return nil, err
	}

	s := &settings{
		args:            &merged,
		savingsFraction: DefaultSavingsFraction,
		timeout:         DefaultIngestionTimeout,
		sizing:          sizing,
	}
	switch {
	case args.SavingsFraction != nil:
		s.savingsFraction = *args.SavingsFraction
	case cfg.SavingsFraction != nil:
		s.savingsFraction = *cfg.SavingsFraction
	}
	if s.savingsFraction < 0 || s.savingsFraction > 1 {
		return nil, fmt.Errorf("savings fraction %.2f must be between 0 and 1", s.savingsFraction)
	}
	switch {
	case args.Timeout != nil:
		s.timeout = *args.Timeout
	case cfg.TimeoutSeconds > 0:
		s.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return s, nil
}

// RunDashboard executa a funcionalidade principal do dashboard.
func (uc *DashboardUseCase) RunDashboard(
	ctx context.Context,
	args *types.CLIArgs,
) error {
	if len(args.Inputs) == 0 {
		return types.ErrNoInput
	}

	s, err := uc.resolveSettings(args)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(s.args.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.ContextWithLogger(ctx, log)

	catalog, err := uc.catalogs(ctx, s.args.Catalog, s.args.Profile, s.args.Region)
	if err != nil {
		return fmt.Errorf("instance catalog %q: %w", s.args.Catalog, err)
	}

	pipeline := NewIngestionPipeline(uc.resolver, NewRightsizer(catalog, s.sizing, log), log)
	controller := NewDashboardController(pipeline, NewReportPresenter(SavingsPolicy{Fraction: s.savingsFraction}), s.timeout, log)
	controller.OnTransition(func(snap entity.DashboardSnapshot) {
		log.Debug("dashboard transition",
			zap.String("state", string(snap.State)),
			zap.String("session", snap.SessionID),
			zap.String("source", snap.Source))
	})

	source := uc.sources(s.args.Profile, s.args.Region)
	produced := 0

	// Com vários arquivos a barra de progresso substitui o spinner
	var progress types.ProgressHandle
	if len(s.args.Inputs) > 1 {
		progress = uc.console.ProgressWithTotal(len(s.args.Inputs))
	}
	for _, input := range s.args.Inputs {
		if uc.analyseInput(ctx, controller, source, input, s.args, progress == nil) {
			produced++
		}
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Stop()
	}

	if s.args.MetricsFile != "" {
		if err := metrics.WriteTextfile(s.args.MetricsFile); err != nil {
			uc.console.LogWarning("Failed to write metrics file %s: %s", s.args.MetricsFile, err)
		}
	}

	if produced == 0 {
		return types.ErrNoReportProduced
	}
	return nil
}

// analyseInput abre, analisa, exibe e exporta um único arquivo. Devolve true quando um relatório foi gerado.
func (uc *DashboardUseCase) analyseInput(
	ctx context.Context,
	controller *DashboardController,
	source repository.UploadSource,
	input string,
	args *types.CLIArgs,
	showStatus bool,
) bool {
	upload, err := source.Open(ctx, input)
	if err != nil {
		uc.console.LogError("Failed to open %s: %s", input, err)
		return false
	}

	var status types.StatusHandle
	if showStatus {
		status = uc.console.Status(fmt.Sprintf("Analyzing %s...", upload.Name))
	}
	handle := controller.Submit(ctx, upload)
	snap, err := handle.Wait(ctx)
	if status != nil {
		status.Stop()
	}

	if err != nil {
		if errors.Is(err, types.ErrStaleSession) {
			uc.console.LogWarning("Analysis of %s was replaced by a newer one", upload.Name)
		} else {
			uc.console.LogError("Analysis of %s interrupted: %s", upload.Name, types.UserMessage(err))
		}
		return false
	}

	switch snap.State {
	case entity.StateReady:
		uc.renderView(snap.View)
		uc.exportView(snap.View, args)
		return true
	case entity.StateFailed:
		uc.console.LogError("Analysis of %s failed: %s", upload.Name, types.UserMessage(snap.Err))
	default:
		uc.console.LogWarning("Analysis of %s was canceled", upload.Name)
	}
	return false
}

// renderView exibe os painéis do relatório no console.
func (uc *DashboardUseCase) renderView(view *entity.PresentationView) {
	uc.console.Printf("\n%s\n", pterm.FgYellow.Sprintf("Usage report: %s", view.Source))

	// Painel de economia
	savings := uc.console.CreateTable()
	savings.AddColumn("Monthly Spend")
	savings.AddColumn("Monthly Savings")
	savings.AddColumn("Annual Savings")
	savings.AddColumn("Cost Reduction")
	savings.AddRow(
		pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", view.Summary.TotalMonthlyCost),
		pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprintf("$%.2f", view.Savings.Monthly),
		pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprintf("$%.2f", view.Savings.Annual),
		pterm.FgCyan.Sprintf("%.2f%%", view.Savings.Percentage),
	)
	uc.console.Print(savings.Render())

	if len(view.Trend) > 0 {
		uc.console.Printf("\n%s\n", pterm.FgYellow.Sprint("Cost trend"))
		uc.console.DisplayTrendBars(trendPoints(view.Trend))
	}

	instances := uc.console.CreateTable()
	instances.AddColumn("Instance")
	instances.AddColumn("Current Type")
	instances.AddColumn("Utilization")
	instances.AddColumn("Monthly Cost")
	instances.AddColumn("Recommended")
	instances.AddColumn("Projected Savings")
	instances.AddColumn("Action")
	for _, inst := range view.Instances {
		instances.AddRow(
			pterm.FgMagenta.Sprint(inst.ID),
			inst.Type,
			tierStyle(inst.Tier).Sprintf("%.1f%% (%s)", inst.UtilizationPercent, inst.Tier),
			fmt.Sprintf("$%.2f", inst.MonthlyCost),
			inst.RecommendedType,
			pterm.FgGreen.Sprintf("$%.2f", inst.ProjectedMonthlySavings),
			inst.Action,
		)
	}
	uc.console.Print(instances.Render())

	summary := uc.console.CreateTable()
	summary.AddColumn("Overprovisioned")
	summary.AddColumn(fmt.Sprintf("Projected Savings (%.0f%%)", view.SavingsFraction*100))
	summary.AddColumn("Optimization Score")
	summary.AddRow(
		fmt.Sprintf("%d of %d", view.Summary.Overprovisioned, view.Summary.InstanceCount),
		pterm.FgGreen.Sprintf("$%.2f", view.Summary.TotalProjectedSavings),
		scoreStyle(view.Summary.OptimizationScore).Sprint(view.Summary.OptimizationScore),
	)
	uc.console.Print(summary.Render())
}

func tierStyle(tier entity.UtilizationTier) pterm.Color {
	switch tier {
	case entity.TierHigh:
		return pterm.FgRed
	case entity.TierMedium:
		return pterm.FgYellow
	default:
		return pterm.FgGreen
	}
}

func scoreStyle(score string) pterm.Color {
	switch score {
	case ScoreExcellent:
		return pterm.FgGreen
	case ScoreGood:
		return pterm.FgYellow
	default:
		return pterm.FgRed
	}
}

func trendPoints(trend []entity.CostPoint) []types.TrendPoint {
	points := make([]types.TrendPoint, len(trend))
	for i, p := range trend {
		points[i] = types.TrendPoint{
			Period:    p.Period,
			Current:   p.CurrentCost,
			Predicted: p.PredictedCost,
			Optimized: p.OptimizedCost,
		}
	}
	return points
}

// exportView grava os relatórios pedidos. O nome do arquivo ganha o nome da origem quando há várias entradas.
func (uc *DashboardUseCase) exportView(view *entity.PresentationView, args *types.CLIArgs) {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return
	}

	name := args.ReportName
	if len(args.Inputs) > 1 {
		name = fmt.Sprintf("%s_%s", args.ReportName, sanitizeName(view.Source))
	}

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(view, name, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(view, name, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(view, name, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type %q ignored", reportType)
		}
	}
}

func sanitizeName(source string) string {
	out := make([]rune, 0, len(source))
	for _, r := range source {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
