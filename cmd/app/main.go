// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-monetization/internal/config"
	"marketplace-monetization/internal/domain/ports/adapter"
	"marketplace-monetization/internal/infra/adapters/gateway"
	"marketplace-monetization/internal/infra/adapters/notify"
	pg "marketplace-monetization/internal/infra/db/postgres"
	"marketplace-monetization/internal/infra/logging"
	"marketplace-monetization/internal/infra/metrics"
	red "marketplace-monetization/internal/infra/redis"
	"marketplace-monetization/internal/infra/sched"
	"marketplace-monetization/internal/infra/web"
	"marketplace-monetization/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	paymentRepo := pg.NewPaymentRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	discountRepo := pg.NewDiscountCodeRepo(pool)
	usageRepo := pg.NewDiscountUsageRepo(pool)
	featuredRepo := pg.NewFeaturedRepo(pool)
	renewalRepo := pg.NewRenewalRepo(pool)
	listingRepo := pg.NewListingRepo(pool)
	notifLogRepo := pg.NewNotificationLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Gateways ----
	var gateways adapter.GatewayFactory
	if cfg.Runtime.Dev {
		gateways = gateway.NewFactory(gateway.NewNoop())
	} else {
		zp, err := gateway.NewZarinPal(cfg.Payment.ZarinPal.MerchantID, cfg.Payment.ZarinPal.Sandbox)
		if err != nil {
			logger.Fatal().Err(err).Msg("zarinpal gateway")
		}
		gateways = gateway.NewFactory(zp)
	}

	dispatcher := notify.NewLogDispatcher(logger)

	// ---- Use cases ----
	discountUC := usecase.NewDiscountUseCase(discountRepo, usageRepo, logger)
	planUC := usecase.NewPlanUseCase(planRepo, paymentRepo, logger)
	featuredUC := usecase.NewFeaturedUseCase(featuredRepo, planRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, planRepo, listingRepo,
		discountUC, featuredUC, gateways, dispatcher, txManager, cfg.Payment, logger)
	renewalUC := usecase.NewRenewalUseCase(renewalRepo, listingRepo, txManager,
		dispatcher, cfg.Renewal, logger)
	sweepUC := usecase.NewSweepUseCase(paymentRepo, featuredRepo, listingRepo,
		notifLogRepo, dispatcher, cfg.Sweep, logger)

	// ---- Sweep worker ----
	worker := sched.NewSweepWorker(cfg.Sweep, sweepUC, locker, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.AdminUser,
		cfg.Server.AdminPass, !cfg.Runtime.Dev, 30*time.Minute)
	srv := web.NewServer(paymentUC, planUC, discountUC, renewalUC, featuredUC, auth, cfg.Server, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
