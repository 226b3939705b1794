// Command api wires the engine's dependencies and serves the HTTP surface
// spec.md §6 describes: load config, build the Postgres pool and run
// migrations, construct every repository and application service, start the
// outbox poller in the background, then serve gin until an interrupt asks
// for graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/handlers"
	"github.com/nsparik/fund-transfer-engine/internal/api/routes"
	"github.com/nsparik/fund-transfer-engine/internal/application/accountuc"
	"github.com/nsparik/fund-transfer-engine/internal/application/idempotencysvc"
	"github.com/nsparik/fund-transfer-engine/internal/application/outboxprocessor"
	"github.com/nsparik/fund-transfer-engine/internal/application/statement"
	"github.com/nsparik/fund-transfer-engine/internal/application/transferuc"
	"github.com/nsparik/fund-transfer-engine/internal/config"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database/postgres"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/messaging"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/messaging/kafka"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConfig := &postgres.Config{
		Host:              cfg.Database.Host,
		Port:              cfg.Database.Port,
		Database:          cfg.Database.Database,
		User:              cfg.Database.User,
		Password:          cfg.Database.Password,
		SSLMode:           cfg.Database.SSLMode,
		MaxOpenConns:      cfg.Database.MaxOpenConns,
		MaxIdleConns:      cfg.Database.MaxIdleConns,
		ConnMaxLifetime:   cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:   cfg.Database.ConnMaxIdleTime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	}

	pool, err := postgres.NewPool(ctx, dbConfig)
	if err != nil {
		logging.Error("failed to connect to database", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, cfg.Lock.MigrationTimeout); err != nil {
		logging.Error("failed to run migrations", err, nil)
		os.Exit(1)
	}

	accountRepo := database.NewAccountRepository(pool)
	transferRepo := database.NewTransferRepository(pool)
	ledgerRepo := database.NewLedgerRepository(pool)
	outboxRepo := database.NewOutboxRepository(pool)
	idempotencyRepo := database.NewIdempotencyRepository(pool)
	txManager := database.NewTxManagerWithRetries(pool, cfg.Lock.DeadlockRetries)

	var publisher messaging.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := messaging.NewKafkaEventPublisher(kafka.NewConfigFromEnv())
		if err != nil {
			logging.Error("failed to create kafka publisher", err, nil)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		publisher = messaging.NewNoOpEventPublisher()
	}

	accounts := accountuc.NewService(txManager, accountRepo, ledgerRepo, outboxRepo)
	transfers := transferuc.NewService(txManager, accountRepo, transferRepo, ledgerRepo, outboxRepo)
	idempotency := idempotencysvc.NewService(idempotencyRepo, cfg.Idempotency.LockTimeout, cfg.Idempotency.RecordTTL)
	statements := statement.NewService(accountRepo, ledgerRepo)

	outboxProc := outboxprocessor.NewProcessor(pool, outboxRepo, publisher, cfg.Outbox.BatchSize, cfg.Outbox.PollInterval)
	go outboxProc.Run(ctx)

	deps := handlers.Dependencies{
		Accounts:     accounts,
		Transfers:    transfers,
		Idempotency:  idempotency,
		Statements:   statements,
		AccountRepo:  accountRepo,
		TransferRepo: transferRepo,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.Register(router, deps, handlers.MakeHealthHandler(pool))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info("fund transfer engine listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("server failed", err, nil)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logging.Info("shutdown signal received", nil)

	outboxProc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", err, nil)
	}

	logging.Info("shutdown complete", nil)
}
