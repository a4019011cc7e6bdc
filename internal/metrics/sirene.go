package metrics

import "github.com/prometheus/client_golang/prometheus"

// SIRENE registry Prometheus metrics.
var (
	SireneRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agricarte",
			Name:      "sirene_requests_total",
			Help:      "Total number of SIRENE registry requests",
		},
		[]string{"status"}, // "success" / "not_found" / "error"
	)

	SireneRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agricarte",
			Name:      "sirene_request_duration_seconds",
			Help:      "SIRENE registry request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	SireneErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agricarte",
			Name:      "sirene_errors_total",
			Help:      "Total SIRENE registry errors",
		},
		[]string{"error_type"},
	)

	SireneCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agricarte",
			Name:      "sirene_cache_total",
			Help:      "SIRENE lookup cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "shared"
	)

	SireneQuotaUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "agricarte",
			Name:      "sirene_quota_used",
			Help:      "SIRENE requests counted against the quota in the current period",
		},
		[]string{"period"}, // "daily" / "monthly"
	)
)

var sireneMetricsRegistered bool

// RegisterSireneMetrics registers Prometheus SIRENE metrics. Must be called once from main.
func RegisterSireneMetrics() {
	if sireneMetricsRegistered {
		return
	}
	prometheus.MustRegister(SireneRequestsTotal)
	prometheus.MustRegister(SireneRequestDuration)
	prometheus.MustRegister(SireneErrorsTotal)
	prometheus.MustRegister(SireneCacheTotal)
	prometheus.MustRegister(SireneQuotaUsed)
	sireneMetricsRegistered = true
}
