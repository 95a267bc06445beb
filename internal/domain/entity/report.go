package entity

import "math"

// InstanceUsage represents one cloud instance as found in a usage export.
type InstanceUsage struct {
	ID                 string  `json:"id" validate:"required"`
	Type               string  `json:"type"`
	UtilizationPercent float64 `json:"utilization_percent" validate:"gte=0,lte=100"`
	MonthlyCost        float64 `json:"monthly_cost" validate:"gte=0"`
	RecommendedType    string  `json:"recommended_type"`
}

// CostPoint é um ponto da série de tendência de custo, um por período de cobrança.
type CostPoint struct {
	Period        string  `json:"period" validate:"required"`
	CurrentCost   float64 `json:"current_cost" validate:"gte=0"`
	PredictedCost float64 `json:"predicted_cost" validate:"gte=0"`
	OptimizedCost float64 `json:"optimized_cost" validate:"gte=0"`
}

// Savings agrega a economia estimada do relatório.
type Savings struct {
	Monthly    float64 `json:"monthly" validate:"gte=0"`
	Annual     float64 `json:"annual" validate:"gte=0"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// UsageReport is the normalized result of one ingestion. It is never mutated after
// the pipeline returns it.
type UsageReport struct {
	Source    string          `json:"source"`
	Format    string          `json:"format"`
	LineCount int             `json:"line_count"`
	Instances []InstanceUsage `json:"instances" validate:"min=1,unique=ID,dive"`
	Trend     []CostPoint     `json:"trend" validate:"min=1,dive"`
	Savings   Savings         `json:"savings"`
}

// TotalMonthlyCost soma o custo mensal de todas as instâncias.
func (r *UsageReport) TotalMonthlyCost() float64 {
	total := 0.0
	for _, inst := range r.Instances {
		total += inst.MonthlyCost
	}
	return RoundCents(total)
}

// AnnualConsistent reports whether Annual matches Monthly*12 within one cent.
func (s Savings) AnnualConsistent() bool {
	return math.Abs(s.Annual-s.Monthly*12) <= 0.01
}

// RoundCents arredonda um valor monetário para duas casas decimais.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
