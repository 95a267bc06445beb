package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

const dashboardCSV = `Instance ID,Type,CPU Usage,Memory Usage,Cost
i-1234,t3.large,85,40,156.00
i-5678,m5.xlarge,45,,287.50
i-9012,c5.2xlarge,78,30,421.20
`

func TestCSVParser_Parse(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the dashboard layout", func(t *testing.T) {
		lines, err := NewCSVParser().Parse(ctx, []byte(dashboardCSV))
		require.NoError(t, err)
		require.Len(t, lines, 3)

		assert.Equal(t, "i-1234", lines[0].InstanceID)
		assert.Equal(t, "t3.large", lines[0].InstanceType)
		assert.Equal(t, 85.0, lines[0].CPUPercent)
		require.NotNil(t, lines[0].MemoryPercent)
		assert.Equal(t, 40.0, *lines[0].MemoryPercent)
		assert.Nil(t, lines[1].MemoryPercent)
		assert.Equal(t, 421.20, lines[2].Cost)
		assert.Equal(t, 4, lines[2].Row)
	})

	t.Run("accepts AWS CUR column names and currency formatting", func(t *testing.T) {
		data := "lineItem/ResourceId,product/instanceType,cpu_utilization,lineItem/UnblendedCost,bill/BillingPeriodStartDate\n" +
			"i-aaa,m5.large,12%,\"$1,024.50\",2024-03-01T00:00:00Z\n"
		lines, err := NewCSVParser().Parse(ctx, []byte(data))
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 1024.50, lines[0].Cost)
		assert.Equal(t, 12.0, lines[0].CPUPercent)
		assert.Equal(t, "2024-03", lines[0].Period)
		assert.False(t, lines[0].PeriodStart.IsZero())
	})

	t.Run("skips blank rows", func(t *testing.T) {
		data := "id,type,usage,cost\ni-1,t3.small,10,5\n,,,\ni-2,t3.small,20,6\n"
		lines, err := NewCSVParser().Parse(ctx, []byte(data))
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("unknown header is an unsupported format", func(t *testing.T) {
		_, err := NewCSVParser().Parse(ctx, []byte("name,price\nfoo,1\n"))
		assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
	})

	t.Run("header only is empty", func(t *testing.T) {
		_, err := NewCSVParser().Parse(ctx, []byte("id,type,usage,cost\n"))
		assert.ErrorIs(t, err, types.ErrEmptyOrMalformed)
	})

	t.Run("rejects invalid numbers", func(t *testing.T) {
		tests := map[string]string{
			"utilization above 100": "id,type,usage,cost\ni-1,t3.small,140,5\n",
			"negative cost":         "id,type,usage,cost\ni-1,t3.small,10,-5\n",
			"not a number":          "id,type,usage,cost\ni-1,t3.small,ten,5\n",
			"missing id":            "id,type,usage,cost\n,t3.small,10,5\n",
			"field count":           "id,type,usage,cost\ni-1,t3.small,10\n",
		}
		for name, data := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := NewCSVParser().Parse(ctx, []byte(data))
				assert.ErrorIs(t, err, types.ErrEmptyOrMalformed)
			})
		}
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewCSVParser().Parse(canceled, []byte(dashboardCSV))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw   string
		label string
		zero  bool
	}{
		{"2024-01", "2024-01", false},
		{"2024-01-15", "2024-01", false},
		{"2024-02-01T00:00:00Z", "2024-02", false},
		{"2024-02-01T00:00:00Z/2024-03-01T00:00:00Z", "2024-02", false},
		{"03/2024", "2024-03", false},
		{"Apr 2024", "2024-04", false},
		{"Month 1", "Month 1", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			label, start := parsePeriod(tt.raw)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.zero, start.IsZero())
		})
	}
}
