package entity

// UtilizationTier is a coarse utilization bucket.
type UtilizationTier string

const (
	TierHigh   UtilizationTier = "high"
	TierMedium UtilizationTier = "medium"
	TierLow    UtilizationTier = "low"
)

// Ações sugeridas por instância.
const (
	ActionReadyForOptimization = "Ready for optimization"
	ActionMonitorBeforeResize  = "Monitor before resizing"
)

// InstanceView é a linha de exibição de uma instância.
type InstanceView struct {
	InstanceUsage
	Tier                    UtilizationTier `json:"utilization_tier"`
	ProjectedMonthlySavings float64         `json:"projected_monthly_savings"`
	Action                  string          `json:"action"`
}

// ViewSummary agrega os números exibidos no painel de resumo.
type ViewSummary struct {
	InstanceCount         int                     `json:"instance_count"`
	TotalMonthlyCost      float64                 `json:"total_monthly_cost"`
	TotalProjectedSavings float64                 `json:"total_projected_savings"`
	Overprovisioned       int                     `json:"overprovisioned"`
	TierCounts            map[UtilizationTier]int `json:"tier_counts"`
	OptimizationScore     string                  `json:"optimization_score"`
}

// PresentationView is everything the renderers need. Renderers never mutate it.
type PresentationView struct {
	Source          string         `json:"source"`
	SavingsFraction float64        `json:"savings_fraction"`
	Instances       []InstanceView `json:"instances"`
	Trend           []CostPoint    `json:"trend"`
	Savings         Savings        `json:"savings"`
	Summary         ViewSummary    `json:"summary"`
}
