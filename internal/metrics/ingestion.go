package metrics

import "github.com/prometheus/client_golang/prometheus"

// Métricas de ingestão e sessões do dashboard.
var (
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudopt",
			Name:      "sessions_total",
			Help:      "Analysis sessions by outcome",
		},
		[]string{"outcome"}, // ready / failed / stale / canceled
	)

	IngestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudopt",
			Name:      "ingestion_duration_seconds",
			Help:      "Time spent reading and analysing one usage export",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"format"},
	)

	BillingLinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudopt",
			Name:      "billing_lines_total",
			Help:      "Billing lines parsed from usage exports",
		},
		[]string{"format"},
	)

	IngestionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudopt",
			Name:      "ingestion_errors_total",
			Help:      "Failed ingestions by error kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(SessionsTotal)
	prometheus.MustRegister(IngestionDuration)
	prometheus.MustRegister(BillingLinesTotal)
	prometheus.MustRegister(IngestionErrorsTotal)
}

// WriteTextfile grava as métricas no formato do textfile collector do node_exporter.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
