package usecase

import (
	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

// DefaultSavingsFraction é a fração do custo atual projetada como economia por instância.
const DefaultSavingsFraction = 0.30

// Limites das faixas de utilização.
const (
	highUtilizationAbove  = 80.0
	mediumUtilizationFrom = 60.0
	excellentScoreBelow   = 10.0
	goodScoreBelow        = 25.0
)

// Rótulos do score de otimização.
const (
	ScoreExcellent      = "Excellent"
	ScoreGood           = "Good"
	ScoreNeedsAttention = "Needs attention"
)

// SavingsPolicy holds the fraction of current cost projected as savings.
type SavingsPolicy struct {
	Fraction float64
}

// DefaultSavingsPolicy devolve a política com DefaultSavingsFraction.
func DefaultSavingsPolicy() SavingsPolicy {
	return SavingsPolicy{Fraction: DefaultSavingsFraction}
}

// ReportPresenter derives display data from a UsageReport. It has no side effects
// and the same input always yields the same view.
type ReportPresenter struct {
	policy SavingsPolicy
}

func NewReportPresenter(policy SavingsPolicy) *ReportPresenter {
	return &ReportPresenter{policy: policy}
}

// ClassifyUtilization: high acima de 80, medium de 60 a 80, low abaixo de 60.
func ClassifyUtilization(utilization float64) entity.UtilizationTier {
	switch {
	case utilization > highUtilizationAbove:
		return entity.TierHigh
	case utilization >= mediumUtilizationFrom:
		return entity.TierMedium
	default:
		return entity.TierLow
	}
}

// OptimizationScore rates how much of the spend is still recoverable.
func OptimizationScore(savingsPercentage float64) string {
	switch {
	case savingsPercentage < excellentScoreBelow:
		return ScoreExcellent
	case savingsPercentage < goodScoreBelow:
		return ScoreGood
	default:
		return ScoreNeedsAttention
	}
}

// Present monta a PresentationView do relatório.
func (p *ReportPresenter) Present(report *entity.UsageReport) entity.PresentationView {
	view := entity.PresentationView{
		Source:          report.Source,
		SavingsFraction: p.policy.Fraction,
		Instances:       make([]entity.InstanceView, 0, len(report.Instances)),
		Trend:           append([]entity.CostPoint(nil), report.Trend...),
		Savings:         report.Savings,
		Summary: entity.ViewSummary{
			InstanceCount: len(report.Instances),
			TierCounts: map[entity.UtilizationTier]int{
				entity.TierHigh:   0,
				entity.TierMedium: 0,
				entity.TierLow:    0,
			},
			OptimizationScore: OptimizationScore(report.Savings.Percentage),
		},
	}

	var projected float64
	for _, inst := range report.Instances {
		tier := ClassifyUtilization(inst.UtilizationPercent)
		iv := entity.InstanceView{
			InstanceUsage:           inst,
			Tier:                    tier,
			ProjectedMonthlySavings: entity.RoundCents(inst.MonthlyCost * p.policy.Fraction),
			Action:                  ActionFor(tier),
		}
		view.Instances = append(view.Instances, iv)
		view.Summary.TierCounts[tier]++
		if tier == entity.TierLow {
			view.Summary.Overprovisioned++
		}
		projected += iv.ProjectedMonthlySavings
	}

	view.Summary.TotalMonthlyCost = report.TotalMonthlyCost()
	view.Summary.TotalProjectedSavings = entity.RoundCents(projected)
	return view
}

// ActionFor devolve a ação sugerida para a faixa.
func ActionFor(tier entity.UtilizationTier) string {
	if tier == entity.TierLow {
		return entity.ActionReadyForOptimization
	}
	return entity.ActionMonitorBeforeResize
}
