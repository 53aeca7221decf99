package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(featuredActivationsTotal) }

var featuredActivationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "featured_activations_total",
		Help: "Featured placement activations by mode ('created' or 'extended').",
	},
	[]string{"mode"},
)

func IncFeaturedActivation(mode string) {
	featuredActivationsTotal.WithLabelValues(norm(mode)).Inc()
}
