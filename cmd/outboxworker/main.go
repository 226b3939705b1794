// Command outboxworker runs the outbox poll loop (spec.md §4.10) as a
// standalone process, separate from the HTTP API so the publish-rate of
// domain events can scale independently of request traffic.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsparik/fund-transfer-engine/internal/application/outboxprocessor"
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

	outboxRepo := database.NewOutboxRepository(pool)

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

	proc := outboxprocessor.NewProcessor(pool, outboxRepo, publisher, cfg.Outbox.BatchSize, cfg.Outbox.PollInterval)

	logging.Info("outbox worker started", map[string]interface{}{
		"batch_size": cfg.Outbox.BatchSize, "poll_interval": cfg.Outbox.PollInterval.String(),
	})
	proc.Run(ctx)
	logging.Info("outbox worker stopped", nil)
}
