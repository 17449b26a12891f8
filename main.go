package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/blockchain"
	"checkpoint-rewards/config"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/logger"
	"checkpoint-rewards/services"
	"checkpoint-rewards/storage"
	"checkpoint-rewards/storage/memory"
	"checkpoint-rewards/storage/postgres"
	"checkpoint-rewards/utils"
	"checkpoint-rewards/workers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics("checkpoint_rewards", reg)

	stores, closeStores, err := openStores(cfg.Database)
	if err != nil {
		return err
	}
	defer closeStores()

	var (
		source services.CheckInSource
		blocks services.BlockTimer
		tokens services.TokenReader
	)
	if cfg.Chain.RPCURL != "" {
		client, err := blockchain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.RPCTimeout)
		if err != nil {
			return err
		}
		defer client.Close()
		source, blocks, tokens = client, client, client
		logger.WithFields(logrus.Fields{"rpc": cfg.Chain.RPCURL}).Info("✅ connected to chain RPC")
	} else {
		logger.Warn("⚠️ chain.rpc_url not set, on-chain endpoints will report a configuration error")
	}

	var uploader services.ObjectUploader
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			return err
		}
		uploader = r2
	}

	clock := clockwork.NewRealClock()
	cache := services.NewEventCache(source, common.HexToAddress(cfg.Chain.CheckinContract),
		services.WithEventCacheTTL(cfg.Cache.TTL),
		services.WithEventCacheClock(clock),
		services.WithEventCacheMetrics(metrics),
	)
	events := services.NewEventQueryService(cache, blocks, uploader, clock)

	transfers, err := services.NewTransferService(tokens, cfg.Chain.RewardContract, cfg.Chain.ServerPrivateKey,
		services.NewTransferGuard(), metrics)
	if err != nil {
		return err
	}

	svc := appServices{
		players: services.NewPlayerService(stores.Players),
		checkins: services.NewCheckinService(stores.Players, stores.Activities,
			services.WithCheckinClock(clock),
			services.WithCheckinRules(cfg.Checkin.Points, cfg.Checkin.DailyLimit),
			services.WithCheckinMetrics(metrics),
		),
		checkpoints: services.NewCheckpointService(stores.Checkpoints),
		rewards:     services.NewEventRewardService(stores.EventRewards, stores.Players, stores.Activities, metrics),
		events:      events,
		transfers:   transfers,
		metrics:     metrics,
	}

	if cfg.Cache.WarmInterval > 0 && source != nil {
		warmer := workers.NewCacheWarmer(events, cfg.Cache.WarmInterval, cfg.Chain.RPCTimeout*3)
		if err := warmer.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = warmer.Stop() }()
	}

	app := newApp(cfg, svc)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	logger.Infof("✅ Server running on http://localhost%s", addr)
	logger.Infof("✅ CORS configured for origins: %v", cfg.Server.AllowedOrigins)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func openStores(cfg config.DatabaseConfig) (storage.Stores, func(), error) {
	if cfg.UseMemory {
		logger.Warn("⚠️ using in-memory stores, data is lost on restart")
		return memory.NewStores(), func() {}, nil
	}

	db, err := postgres.Open(cfg.URL, postgres.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return storage.Stores{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		return storage.Stores{}, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("✅ database connected and migrated")

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return postgres.NewStores(db), closeFn, nil
}
