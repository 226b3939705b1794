// Command reconcile runs the read-only balance/ledger consistency check
// (spec.md §4.12) once and reports every non-matching account on stdout,
// exiting non-zero if any mismatch was found so it can gate an operator
// alert or a CI job.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nsparik/fund-transfer-engine/internal/application/reconciliation"
	"github.com/nsparik/fund-transfer-engine/internal/config"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database/postgres"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

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
		logging.Error("failed to connect to database", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	svc := reconciliation.NewService(database.NewLedgerRepository(pool))

	results, err := svc.Run(ctx)
	if err != nil {
		logging.Error("reconciliation run failed", err, nil)
		os.Exit(1)
	}

	mismatches := 0
	for _, r := range results {
		if r.Status == reconciliation.StatusMatch {
			continue
		}
		mismatches++
		fmt.Printf("account=%s status=%s diff=%d\n", r.AccountID, r.Status, r.Diff)
	}

	logging.Info("reconciliation complete", map[string]interface{}{
		"accounts_checked": len(results), "mismatches": mismatches,
	})

	if mismatches > 0 {
		os.Exit(1)
	}
}
