package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		relayTokensIn,
		relayTokensOut,
		relayTokensTotal,
		relayCallsLatencyMs,
	)
}

var (
	relayTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_tokens_in",
			Help: "Sum of prompt (input) tokens per provider.",
		},
		[]string{"provider"},
	)

	relayTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_tokens_out",
			Help: "Sum of completion (output) tokens per provider.",
		},
		[]string{"provider"},
	)

	relayTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_tokens_total",
			Help: "Sum of total tokens per provider.",
		},
		[]string{"provider"},
	)

	relayCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_calls_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "success"},
	)
)

// ObserveRelayUsage records token counters and latency for one
// completion call.
func ObserveRelayUsage(provider string, tokensIn, tokensOut, tokensTotal int, latencyMs int64, success bool) {
	p := norm(provider)
	relayTokensIn.WithLabelValues(p).Add(float64(tokensIn))
	relayTokensOut.WithLabelValues(p).Add(float64(tokensOut))
	relayTokensTotal.WithLabelValues(p).Add(float64(tokensTotal))
	relayCallsLatencyMs.WithLabelValues(p, strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
