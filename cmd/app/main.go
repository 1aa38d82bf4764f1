// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-studio-pos/internal/config"
	"gym-studio-pos/internal/domain/ports/adapter"
	payAdapters "gym-studio-pos/internal/infra/adapters/payment"
	"gym-studio-pos/internal/infra/api"
	pg "gym-studio-pos/internal/infra/db/postgres"
	"gym-studio-pos/internal/infra/logging"
	"gym-studio-pos/internal/infra/metrics"
	red "gym-studio-pos/internal/infra/redis"
	"gym-studio-pos/internal/infra/sched"
	"gym-studio-pos/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	locker := red.NewLocker(redisClient)
	dedup := red.NewEventDedup(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	transactionRepo := pg.NewTransactionRepo(pool)
	scheduleRepo := pg.NewScheduleRepo(pool)
	prepaidRepo := pg.NewPrepaidRepo(pool)
	productRepo := pg.NewProductRepo(pool)
	orgSettingsRepo := pg.NewOrgSettingsRepo(pool)
	customerRepo := pg.NewCustomerRepo(pool)
	admissionRepo := pg.NewAdmissionRepo(pool)

	// ---- Billing provider ----
	var billing adapter.BillingProvider
	switch cfg.Billing.Provider {
	case "noop":
		billing = payAdapters.NewNoopGateway()
		logger.Warn().Msg("billing provider: noop (development only)")
	default:
		billing, err = payAdapters.NewStripeGateway(cfg.Billing.SecretKey, cfg.Billing.AccountID, cfg.Billing.BaseURL)
		if err != nil {
			log.Fatalf("stripe gateway: %v", err)
		}
	}

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(scheduleRepo, logger, nil)
	membershipUC := usecase.NewMembershipUseCase(membershipRepo, orgSettingsRepo, billing, txManager, logger, nil)
	allocationUC := usecase.NewAllocationUseCase(scheduleRepo, admissionRepo, customerRepo, productRepo, logger, nil)
	prepaidUC := usecase.NewPrepaidUseCase(prepaidRepo, logger, nil)
	checkoutUC := usecase.NewCheckoutUseCase(pricingUC, transactionRepo, membershipUC, prepaidUC, allocationUC, orgSettingsRepo, billing, locker, logger, nil)

	// ---- HTTP server ----
	auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	srv := api.NewServer(checkoutUC, pricingUC, membershipUC, prepaidUC, membershipRepo, auth, dedup, cfg.Billing.WebhookSecret, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Workers ----
	lifecycle := sched.NewLifecycleWorker(cfg.Scheduler.LifecycleInterval, membershipUC, logger)
	go func() { _ = lifecycle.Run(ctx) }()

	reconciler := sched.NewPaymentReconciler(checkoutUC, transactionRepo, cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileStale, logger)
	go func() { _ = reconciler.Run(ctx) }()

	poller := sched.NewMetricsPoller(cfg.Scheduler.MetricsPollEvery, membershipRepo, transactionRepo, logger)
	go func() { _ = poller.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = redisClient.Close()
}
