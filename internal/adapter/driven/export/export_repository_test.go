package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

func sampleView() *entity.PresentationView {
	return &entity.PresentationView{
		Source:          "usage.csv",
		SavingsFraction: 0.3,
		Instances: []entity.InstanceView{
			{
				InstanceUsage:           entity.InstanceUsage{ID: "i-1", Type: "m5.xlarge", UtilizationPercent: 85, MonthlyCost: 156, RecommendedType: "m5.xlarge"},
				Tier:                    entity.TierHigh,
				ProjectedMonthlySavings: 46.8,
				Action:                  entity.ActionMonitorBeforeResize,
			},
			{
				InstanceUsage:           entity.InstanceUsage{ID: "i-2", Type: "m5.2xlarge", UtilizationPercent: 45, MonthlyCost: 287.5, RecommendedType: "m5.xlarge"},
				Tier:                    entity.TierLow,
				ProjectedMonthlySavings: 86.25,
				Action:                  entity.ActionReadyForOptimization,
			},
		},
		Trend: []entity.CostPoint{
			{Period: "2024-01", CurrentCost: 400, PredictedCost: 410, OptimizedCost: 300},
			{Period: "2024-02", CurrentCost: 443.5, PredictedCost: 433.5, OptimizedCost: 299.75},
		},
		Savings: entity.Savings{Monthly: 143.75, Annual: 1725, Percentage: 32.41},
		Summary: entity.ViewSummary{
			InstanceCount:         2,
			TotalMonthlyCost:      443.5,
			TotalProjectedSavings: 133.05,
			Overprovisioned:       1,
			TierCounts:            map[entity.UtilizationTier]int{entity.TierHigh: 1, entity.TierLow: 1},
			OptimizationScore:     "Needs attention",
		},
	}
}

func TestExportToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := NewExportRepository().ExportToCSV(sampleView(), "report", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "report_"))
	assert.Equal(t, ".csv", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeaders, records[0])
	assert.Equal(t, []string{"i-2", "m5.2xlarge", "45.00", "low", "$287.50", "m5.xlarge", "$86.25", "Ready for optimization"}, records[2])
	assert.Equal(t, "TOTAL", records[3][0])
	assert.Equal(t, "$443.50", records[3][4])
}

func TestExportToJSON(t *testing.T) {
	path, err := NewExportRepository().ExportToJSON(sampleView(), "report", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got entity.PresentationView
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *sampleView(), got)
	assert.Contains(t, string(data), `"utilization_tier": "low"`)
}

func TestExportToPDF(t *testing.T) {
	path, err := NewExportRepository().ExportToPDF(sampleView(), "report", filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestCleanRichTags(t *testing.T) {
	assert.Equal(t, "ok 12", cleanRichTags("[green]ok[/green] \x1b[31m12\x1b[0m"))
	assert.Equal(t, "plain", cleanRichTags("plain"))
}
