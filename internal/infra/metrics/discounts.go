package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		discountValidationsTotal,
		discountAppliedTotal,
	)
}

var (
	discountValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_validations_total",
			Help: "Discount code validation attempts by result.",
		},
		[]string{"result"}, // 'ok', 'not_found', 'inactive', 'expired', 'exhausted', 'user_cap', 'min_amount', 'wrong_plan'
	)

	discountAppliedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discount_applied_irr_total",
			Help: "Total discount value recorded against completed payments, in Rials.",
		},
	)
)

func IncDiscountValidation(result string) {
	discountValidationsTotal.WithLabelValues(norm(result)).Inc()
}

func AddDiscountApplied(amountIRR int64) {
	discountAppliedTotal.Add(float64(amountIRR))
}
