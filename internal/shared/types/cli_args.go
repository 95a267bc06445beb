package types

import "time"

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	Inputs          []string
	ConfigFile      string
	ReportName      string
	ReportType      []string
	Dir             string
	SavingsFraction *float64
	Timeout         *time.Duration
	Catalog         string
	Profile         string
	Region          string
	LogLevel        string
	MetricsFile     string
}
