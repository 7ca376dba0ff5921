// File: cmd/app/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-rescue-rewards/internal/config"
	"food-rescue-rewards/internal/domain/ports/adapter"
	"food-rescue-rewards/internal/infra/chain"
	pg "food-rescue-rewards/internal/infra/db/postgres"
	"food-rescue-rewards/internal/infra/logging"
	"food-rescue-rewards/internal/infra/metrics"
	red "food-rescue-rewards/internal/infra/redis"
	"food-rescue-rewards/internal/infra/sched"
	"food-rescue-rewards/internal/infra/web"
	"food-rescue-rewards/internal/usecase"
)

// Overridden via -ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	// ---- Redis (optional; scan rate limiting fails open without it) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, anonymous scan rate limiting disabled")
		} else {
			defer redisClient.Close()
			rateLimiter = red.NewRateLimiter(redisClient)
		}
	}

	// ---- Chain gateway ----
	var gateway adapter.ChainGateway
	if cfg.Chain.RPCURL == "" {
		logger.Warn().Msg("chain.rpc_url not set, using noop gateway (no rewards leave this process)")
		gateway = chain.NewNoopGateway()
	} else {
		gw, err := chain.NewEthereumGateway(cfg.Chain, logger)
		if err != nil {
			log.Fatalf("chain gateway: %v", err)
		}
		gateway = gw
	}
	logger.Info().Str("gateway", gateway.Name()).Msg("reward gateway ready")

	// ---- Repositories ----
	eventRepo := pg.NewEventRepo(pool)
	qrRepo := pg.NewQRCodeRepo(pool)
	activityRepo := pg.NewActivityRepo(pool)
	pseudoRepo := pg.NewPseudonymousRepo(pool)
	rewardRepo := pg.NewRewardRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	dispatchUC := usecase.NewRewardDispatchUseCase(rewardRepo, gateway, logger)
	verifyUC := usecase.NewVerificationUseCase(
		eventRepo, qrRepo, activityRepo, pseudoRepo, tm, dispatchUC,
		cfg.Chain.NonprofitWallet, cfg.Scan.MaxDistanceMeters, logger,
	)

	// ---- Reward reconciler ----
	reconciler := sched.NewRewardReconciler(cfg.Reconciler, dispatchUC, pseudoRepo, eventRepo, cfg.Chain.NonprofitWallet, logger)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- Pool stats for /metrics ----
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- HTTP server ----
	srv := web.NewServer(verifyUC, rateLimiter, cfg.Server, cfg.Scan, cfg.Chain.NonprofitWallet, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
		cancel()
		if err := <-errCh; err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("http server: %v", err)
		}
	}
}
