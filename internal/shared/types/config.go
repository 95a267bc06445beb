package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	ReportName      string     `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType      []string   `json:"report_type" yaml:"report_type" toml:"report_type" validate:"dive,oneof=csv json pdf"`
	Dir             string     `json:"dir" yaml:"dir" toml:"dir"`
	SavingsFraction *float64   `json:"savings_fraction" yaml:"savings_fraction" toml:"savings_fraction" validate:"omitempty,gte=0,lte=1"`
	TimeoutSeconds  int        `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" validate:"gte=0"`
	Catalog         string     `json:"catalog" yaml:"catalog" toml:"catalog" validate:"omitempty,oneof=static ec2"`
	Profile         string     `json:"profile" yaml:"profile" toml:"profile"`
	Region          string     `json:"region" yaml:"region" toml:"region"`
	LogLevel        string     `json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	MetricsFile     string     `json:"metrics_file" yaml:"metrics_file" toml:"metrics_file"`
	Sizing          SizingBand `json:"sizing" yaml:"sizing" toml:"sizing"`
}

// SizingBand configura as faixas de utilização usadas no rightsizing.
// Zero values mean "use the default".
type SizingBand struct {
	IdleBelow      float64 `json:"idle_below" yaml:"idle_below" toml:"idle_below" validate:"gte=0,lte=100"`
	UnderusedBelow float64 `json:"underused_below" yaml:"underused_below" toml:"underused_below" validate:"omitempty,gte=0,lte=100,gtefield=IdleBelow"`
}
