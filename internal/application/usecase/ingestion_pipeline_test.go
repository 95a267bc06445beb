package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/catalog"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/ingest"
	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

const threeInstancesCSV = `id,type,utilization,cost
i-1,m5.xlarge,85,156.00
i-2,m5.2xlarge,45,287.50
i-3,m5.4xlarge,78,421.20
`

func newTestPipeline() *IngestionPipeline {
	return NewIngestionPipeline(
		ingest.NewRegistry(),
		NewRightsizer(catalog.NewStaticCatalog(), DefaultSizingPolicy(), nil),
		nil,
	)
}

func uploadOf(name, content string) *entity.Upload {
	return &entity.Upload{Name: name, Size: int64(len(content)), Body: strings.NewReader(content)}
}

func TestIngestionPipeline_EndToEnd(t *testing.T) {
	report, err := newTestPipeline().Submit(context.Background(), uploadOf("usage.csv", threeInstancesCSV))
	require.NoError(t, err)

	assert.Equal(t, "usage.csv", report.Source)
	assert.Equal(t, ingest.FormatCSV, report.Format)
	assert.Equal(t, 3, report.LineCount)
	require.Len(t, report.Instances, 3)
	assert.Equal(t, 864.70, report.TotalMonthlyCost())

	view := NewReportPresenter(DefaultSavingsPolicy()).Present(report)
	var tiers []entity.UtilizationTier
	for _, inst := range view.Instances {
		tiers = append(tiers, inst.Tier)
	}
	assert.Equal(t, []entity.UtilizationTier{entity.TierHigh, entity.TierLow, entity.TierMedium}, tiers)

	assert.Equal(t, "m5.xlarge", report.Instances[0].RecommendedType)
	assert.Equal(t, "m5.xlarge", report.Instances[1].RecommendedType)
	assert.Equal(t, "m5.4xlarge", report.Instances[2].RecommendedType)

	assert.Equal(t, 143.75, report.Savings.Monthly)
	assert.Equal(t, 1725.0, report.Savings.Annual)
	assert.Equal(t, 16.62, report.Savings.Percentage)
	assert.True(t, report.Savings.AnnualConsistent())

	require.Len(t, report.Trend, 1)
	assert.Equal(t, CurrentPeriodLabel, report.Trend[0].Period)
	assert.Equal(t, 864.70, report.Trend[0].CurrentCost)
	assert.Equal(t, 720.95, report.Trend[0].OptimizedCost)
}

func TestIngestionPipeline_ReportInvariants(t *testing.T) {
	inputs := map[string]string{
		"usage.csv": threeInstancesCSV,
		"usage.json": `[{"instanceId":"i-1","instanceType":"t3.large","cpuUsage":12,"memoryUsage":70,"cost":60.7},
			{"instanceId":"i-2","instanceType":"r5.2xlarge","cpuUsage":3,"cost":380.16}]`,
		"usage.txt": "id\ttype\tcpu\tcost\ni-9\tc5.9xlarge\t0\t1100.5\n",
	}
	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			report, err := newTestPipeline().Submit(context.Background(), uploadOf(name, content))
			require.NoError(t, err)

			assert.InDelta(t, report.Savings.Monthly*12, report.Savings.Annual, 0.01)
			for _, inst := range report.Instances {
				assert.GreaterOrEqual(t, inst.UtilizationPercent, 0.0)
				assert.LessOrEqual(t, inst.UtilizationPercent, 100.0)
				assert.GreaterOrEqual(t, inst.MonthlyCost, 0.0)
			}
			for _, p := range report.Trend {
				assert.GreaterOrEqual(t, p.CurrentCost, 0.0)
				assert.GreaterOrEqual(t, p.OptimizedCost, 0.0)
			}
		})
	}
}

func TestIngestionPipeline_MemoryDrivesUtilization(t *testing.T) {
	content := `[{"instanceId":"i-1","instanceType":"t3.large","cpuUsage":12,"memoryUsage":70,"cost":60.7}]`
	report, err := newTestPipeline().Submit(context.Background(), uploadOf("usage.json", content))
	require.NoError(t, err)
	assert.Equal(t, 70.0, report.Instances[0].UtilizationPercent)
	assert.Equal(t, "t3.large", report.Instances[0].RecommendedType)
}

func TestIngestionPipeline_LatestPeriodPerInstance(t *testing.T) {
	content := `id,type,cpu,cost,period
i-1,m5.large,10,100,2024-01
i-1,m5.large,30,120,2024-02
i-1,m5.large,50,30,2024-02
i-2,m5.large,90,70,2024-01
`
	report, err := newTestPipeline().Submit(context.Background(), uploadOf("usage.csv", content))
	require.NoError(t, err)

	require.Len(t, report.Instances, 2)
	assert.Equal(t, "i-1", report.Instances[0].ID)
	assert.Equal(t, 150.0, report.Instances[0].MonthlyCost)
	assert.Equal(t, 40.0, report.Instances[0].UtilizationPercent)
	assert.Equal(t, 70.0, report.Instances[1].MonthlyCost)

	require.Len(t, report.Trend, 2)
	assert.Equal(t, "2024-01", report.Trend[0].Period)
	assert.Equal(t, 170.0, report.Trend[0].CurrentCost)
	assert.Equal(t, 150.0, report.Trend[1].CurrentCost)
}

type brokenReader struct {
	data []byte
	err  error
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func TestIngestionPipeline_Errors(t *testing.T) {
	ctx := context.Background()
	pipeline := newTestPipeline()

	tests := []struct {
		name   string
		upload *entity.Upload
		want   error
	}{
		{"empty file", uploadOf("usage.csv", ""), types.ErrEmptyOrMalformed},
		{"whitespace only", uploadOf("usage.csv", " \n\t\n"), types.ErrEmptyOrMalformed},
		{"no body", &entity.Upload{Name: "usage.csv", Size: -1}, types.ErrEmptyOrMalformed},
		{"unknown extension", uploadOf("usage.xlsx", threeInstancesCSV), types.ErrUnsupportedFormat},
		{"header only", uploadOf("usage.csv", "id,type,cpu,cost\n"), types.ErrEmptyOrMalformed},
		{"bad number", uploadOf("usage.csv", "id,type,cpu,cost\ni-1,m5.large,abc,10\n"), types.ErrEmptyOrMalformed},
		{"missing columns", uploadOf("usage.csv", "name,price\nfoo,10\n"), types.ErrUnsupportedFormat},
		{
			"read stops",
			&entity.Upload{Name: "usage.csv", Size: -1, Body: &brokenReader{data: []byte("id,type,cpu,cost\ni-1"), err: io.ErrUnexpectedEOF}},
			types.ErrTruncated,
		},
		{
			"shorter than declared",
			&entity.Upload{Name: "usage.csv", Size: 4096, Body: strings.NewReader(threeInstancesCSV)},
			types.ErrTruncated,
		},
		{"truncated json", uploadOf("usage.json", `[{"instanceId":"i-1","cost":`), types.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := pipeline.Submit(ctx, tt.upload)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIngestionPipeline_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline().Submit(ctx, uploadOf("usage.csv", threeInstancesCSV))
	assert.True(t, errors.Is(err, context.Canceled))
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestIngestionPipeline_ClosesBody(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader(threeInstancesCSV)}
	_, err := newTestPipeline().Submit(context.Background(), &entity.Upload{Name: "usage.csv", Size: -1, Body: body})
	require.NoError(t, err)
	assert.True(t, body.closed)
}
