package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sweptTotal,
		sweepRunsTotal,
	)
}

var (
	sweptTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_items_total",
			Help: "Rows reconciled per sweep kind.",
		},
		[]string{"kind"},
	)

	sweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Sweep executions by kind and result ('ok', 'error', 'skipped').",
		},
		[]string{"kind", "result"},
	)
)

func AddSwept(kind string, n int) {
	if n > 0 {
		sweptTotal.WithLabelValues(norm(kind)).Add(float64(n))
	}
}

func IncSweepRun(kind, result string) {
	sweepRunsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}
