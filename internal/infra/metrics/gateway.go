package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		gatewayCallsTotal,
		gatewayRetriesTotal,
	)
}

var (
	gatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Outbound gateway calls by provider, operation and result.",
		},
		[]string{"provider", "op", "result"},
	)

	gatewayRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_retries_total",
			Help: "Retries performed against gateway providers.",
		},
		[]string{"provider", "op"},
	)
)

func IncGatewayCall(provider, op, result string) {
	gatewayCallsTotal.WithLabelValues(norm(provider), norm(op), norm(result)).Inc()
}

func IncGatewayRetry(provider, op string) {
	gatewayRetriesTotal.WithLabelValues(norm(provider), norm(op)).Inc()
}
