package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		scansTotal,
		scanRateLimitTriggeredTotal,
	)
}

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "QR scan verifications by flow and outcome.",
		},
		// flow: 'authenticated', 'anonymous'
		// outcome: 'ok', 'duplicate', 'too_far', 'invalid_qr', 'invalid_pseudonym',
		//          'not_found', 'dispatch_failed', 'error'
		[]string{"flow", "outcome"},
	)

	scanRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_rate_limit_triggered_total",
			Help: "Total number of times scan requests have been rate-limited.",
		},
	)
)

func IncScan(flow, outcome string) {
	scansTotal.WithLabelValues(norm(flow), norm(outcome)).Inc()
}

func IncRateLimitTriggered() {
	scanRateLimitTriggeredTotal.Inc()
}
