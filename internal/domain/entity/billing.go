package entity

import "time"

// BillingLine represents a single parsed row of a usage export.
type BillingLine struct {
	Row           int       `json:"row"`
	InstanceID    string    `json:"instance_id"`
	InstanceType  string    `json:"instance_type"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent *float64  `json:"memory_percent,omitempty"`
	Cost          float64   `json:"cost"`
	Period        string    `json:"period,omitempty"`
	PeriodStart   time.Time `json:"period_start,omitempty"`
}

// Utilization devolve a utilização efetiva da linha: o maior valor entre CPU e memória.
func (l BillingLine) Utilization() float64 {
	if l.MemoryPercent != nil && *l.MemoryPercent > l.CPUPercent {
		return *l.MemoryPercent
	}
	return l.CPUPercent
}
