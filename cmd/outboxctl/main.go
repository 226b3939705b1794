// Command outboxctl is the operator tool for inspecting and recovering
// outbox rows (spec.md §4.10): list dead-lettered events, requeue one by
// id, or print the current unpublished backlog.
//
// Usage:
//
//	outboxctl backlog
//	outboxctl dead-letters
//	outboxctl requeue <event-id>
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nsparik/fund-transfer-engine/internal/config"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database/postgres"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := context.Background()

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
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	outboxRepo := database.NewOutboxRepository(pool)

	switch os.Args[1] {
	case "backlog":
		count, err := outboxRepo.Backlog(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read backlog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("unpublished backlog: %d\n", count)

	case "dead-letters":
		events, err := outboxRepo.ListDeadLettered(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list dead letters: %v\n", err)
			os.Exit(1)
		}
		if len(events) == 0 {
			fmt.Println("no dead-lettered events")
			return
		}
		for _, e := range events {
			fmt.Printf("id=%s type=%s aggregate=%s/%s attempts=%d last_error=%q\n",
				e.ID, e.EventType, e.AggregateType, e.AggregateID, e.AttemptCount, e.LastError)
		}

	case "requeue":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: outboxctl requeue <event-id>")
			os.Exit(1)
		}
		if err := outboxRepo.Requeue(ctx, os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to requeue event: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("requeued event %s\n", os.Args[2])

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: outboxctl <backlog|dead-letters|requeue> [event-id]")
}
