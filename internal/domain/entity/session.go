package entity

// SessionState is the lifecycle state of the dashboard.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateProcessing SessionState = "processing"
	StateReady      SessionState = "ready"
	StateFailed     SessionState = "failed"
)

// DashboardSnapshot é uma cópia consistente do estado do controller.
type DashboardSnapshot struct {
	State     SessionState      `json:"state"`
	SessionID string            `json:"session_id,omitempty"`
	Source    string            `json:"source,omitempty"`
	Report    *UsageReport      `json:"report,omitempty"`
	View      *PresentationView `json:"view,omitempty"`
	Err       error             `json:"-"`
}
