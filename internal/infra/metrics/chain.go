package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		chainCallsLatencyMs,
		rewardDispatchTotal,
		rewardAmountTotal,
	)
}

var (
	chainCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_calls_latency_ms",
			Help:    "Blockchain call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000},
		},
		[]string{"op", "success"}, // op: 'mint', 'transfer'
	)

	rewardDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_dispatch_total",
			Help: "Reward dispatches by delivery path.",
		},
		[]string{"path"}, // 'pool', 'transfer', 'failed'
	)

	rewardAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reward_amount_total",
			Help: "Sum of token amounts successfully dispatched.",
		},
	)
)

func ObserveChainCall(op string, d time.Duration, success bool) {
	chainCallsLatencyMs.WithLabelValues(norm(op), strconv.FormatBool(success)).
		Observe(float64(d.Milliseconds()))
}

func IncDispatch(path string) {
	rewardDispatchTotal.WithLabelValues(norm(path)).Inc()
}

func AddRewardAmount(amount float64) {
	rewardAmountTotal.Add(amount)
}
