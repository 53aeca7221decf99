package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/usecase"
)

type Server struct {
	payments  usecase.PaymentUseCase
	plans     usecase.PlanUseCase
	discounts usecase.DiscountUseCase
	renewals  usecase.RenewalUseCase
	featured  usecase.FeaturedUseCase
	auth      *AuthManager
	cfg       config.ServerConfig
	log       *zerolog.Logger
}

func NewServer(
	payments usecase.PaymentUseCase,
	plans usecase.PlanUseCase,
	discounts usecase.DiscountUseCase,
	renewals usecase.RenewalUseCase,
	featured usecase.FeaturedUseCase,
	auth *AuthManager,
	cfg config.ServerConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		payments:  payments,
		plans:     plans,
		discounts: discounts,
		renewals:  renewals,
		featured:  featured,
		auth:      auth,
		cfg:       cfg,
		log:       &l,
	}
}

// Router builds the full route tree. Gateway callbacks and the payment
// initiation endpoints are public; everything under /api/v1/admin requires
// an admin session.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Gateway redirects the payer's browser here after checkout.
	r.Get("/payment/callback", s.handleGatewayCallback)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handlePlansListActive)

		r.Post("/payments", s.handlePaymentInitiate)
		r.Post("/payments/{id}/receipt", s.handleReceiptSubmit)
		r.Post("/discounts/validate", s.handleDiscountValidate)

		r.Post("/renewals", s.handleRenewalCreate)

		r.Get("/listings/{id}/featured", s.handleFeaturedStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.adminAuth)

				r.Post("/logout", s.handleAdminLogout)
				r.Get("/stats", s.handleAdminStats)

				r.Get("/payments/pending", s.handlePaymentsPending)
				r.Post("/payments/{id}/approve", s.handlePaymentApprove)
				r.Post("/payments/{id}/reject", s.handlePaymentReject)

				r.Get("/renewals/pending", s.handleRenewalsPending)
				r.Post("/renewals/{id}/approve", s.handleRenewalApprove)
				r.Post("/renewals/{id}/reject", s.handleRenewalReject)

				r.Get("/plans", s.handlePlansListAll)
				r.Post("/plans", s.handlePlanCreate)
				r.Put("/plans/{id}", s.handlePlanUpdate)
				r.Delete("/plans/{id}", s.handlePlanDelete)

				r.Get("/discounts", s.handleDiscountsList)
				r.Post("/discounts", s.handleDiscountCreate)
			})
		})
	})

	return r
}

// adminAuth rejects requests without a valid admin session token.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
