package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(renewalsTotal) }

var renewalsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "renewals_total",
		Help: "Renewal requests by outcome ('free', 'paid_requested', 'approved', 'rejected').",
	},
	[]string{"outcome"},
)

func IncRenewal(outcome string) {
	renewalsTotal.WithLabelValues(norm(outcome)).Inc()
}
