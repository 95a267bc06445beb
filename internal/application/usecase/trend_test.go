package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

func month(year int, m time.Month) (string, time.Time) {
	start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return start.Format("2006-01"), start
}

func line(id string, cost float64, label string, start time.Time) entity.BillingLine {
	return entity.BillingLine{InstanceID: id, InstanceType: "m5.large", CPUPercent: 50, Cost: cost, Period: label, PeriodStart: start}
}

func TestPeriodIndex_Ordering(t *testing.T) {
	marLabel, mar := month(2024, time.March)
	janLabel, jan := month(2024, time.January)

	lines := []entity.BillingLine{
		line("a", 1, "", time.Time{}),
		line("a", 1, "Q2", time.Time{}),
		line("a", 1, marLabel, mar),
		line("a", 1, "Q1", time.Time{}),
		line("a", 1, janLabel, jan),
	}
	pi := newPeriodIndex(lines)

	var labels []string
	for _, p := range pi.ordered {
		labels = append(labels, p.label)
	}
	assert.Equal(t, []string{"2024-01", "2024-03", "Q2", "Q1", CurrentPeriodLabel}, labels)
}

func TestBuildTrend(t *testing.T) {
	var lines []entity.BillingLine
	for i, cost := range []float64{100, 200, 300} {
		label, start := month(2024, time.Month(i+1))
		lines = append(lines, line("a", cost, label, start))
	}

	points := buildTrend(newPeriodIndex(lines), 0.25)
	require.Len(t, points, 3)

	// série perfeitamente linear: a regressão reproduz os valores
	for i, want := range []float64{100, 200, 300} {
		assert.Equal(t, want, points[i].CurrentCost)
		assert.InDelta(t, want, points[i].PredictedCost, 0.01)
		assert.InDelta(t, want*0.75, points[i].OptimizedCost, 0.01)
	}
	assert.Equal(t, "2024-01", points[0].Period)
}

func TestBuildTrend_SinglePeriod(t *testing.T) {
	lines := []entity.BillingLine{line("a", 120, "", time.Time{}), line("b", 80, "", time.Time{})}

	points := buildTrend(newPeriodIndex(lines), 0.5)
	require.Len(t, points, 1)
	assert.Equal(t, entity.CostPoint{
		Period:        CurrentPeriodLabel,
		CurrentCost:   200,
		PredictedCost: 200,
		OptimizedCost: 100,
	}, points[0])
}

func TestBuildTrend_PredictionNeverNegative(t *testing.T) {
	var lines []entity.BillingLine
	for i, cost := range []float64{500, 10, 0} {
		label, start := month(2023, time.Month(i+10))
		lines = append(lines, line("a", cost, label, start))
	}
	for _, p := range buildTrend(newPeriodIndex(lines), 0) {
		assert.GreaterOrEqual(t, p.PredictedCost, 0.0)
	}
}
