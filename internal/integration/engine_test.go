//go:build integration

// Package integration runs the end-to-end scenarios spec.md §8 names
// against a real PostgreSQL instance, grounded on the teacher's
// test/integration/testenv PostgreSQL testcontainer setup, adapted to
// build the full dependency graph cmd/api/main.go wires rather than a
// single repository.
package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nsparik/fund-transfer-engine/internal/application/accountuc"
	"github.com/nsparik/fund-transfer-engine/internal/application/idempotencysvc"
	"github.com/nsparik/fund-transfer-engine/internal/application/transferuc"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	dbpostgres "github.com/nsparik/fund-transfer-engine/internal/infrastructure/database/postgres"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
)

type testEnv struct {
	accounts    *accountuc.Service
	transfers   *transferuc.Service
	idempotency *idempotencysvc.Service
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &dbpostgres.Config{
		Host: host, Port: port.Int(), Database: "ledger", User: "ledger", Password: "ledger_test_password",
		SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 2,
		ConnMaxLifetime: 30 * time.Minute, ConnMaxIdleTime: 5 * time.Minute, HealthCheckPeriod: time.Minute,
	}

	pool, err := dbpostgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, dbpostgres.Migrate(ctx, pool, 10*time.Second))

	accountRepo := database.NewAccountRepository(pool)
	transferRepo := database.NewTransferRepository(pool)
	ledgerRepo := database.NewLedgerRepository(pool)
	outboxRepo := database.NewOutboxRepository(pool)
	idempotencyRepo := database.NewIdempotencyRepository(pool)
	txManager := database.NewTxManager(pool)

	return &testEnv{
		accounts:    accountuc.NewService(txManager, accountRepo, ledgerRepo, outboxRepo),
		transfers:   transferuc.NewService(txManager, accountRepo, transferRepo, ledgerRepo, outboxRepo),
		idempotency: idempotencysvc.NewService(idempotencyRepo, 5*time.Second, 24*time.Hour),
	}
}

func TestSimpleTransferMovesBalanceBetweenAccounts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	source, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Ada Lovelace", Currency: "USD", InitialBalance: 10000})
	require.NoError(t, err)
	dest, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Grace Hopper", Currency: "USD", InitialBalance: 0})
	require.NoError(t, err)

	outcome, err := env.transfers.Initiate(ctx, transferuc.InitiateCommand{
		SourceAccountID: source.ID, DestAccountID: dest.ID, Amount: 2500, Currency: "USD",
		Description: "rent", IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.Equal(t, "completed", string(outcome.Transfer.Status))

	reloadedSource, err := env.accounts.Get(ctx, source.ID)
	require.NoError(t, err)
	reloadedDest, err := env.accounts.Get(ctx, dest.ID)
	require.NoError(t, err)

	require.Equal(t, int64(7500), reloadedSource.Balance.Minor)
	require.Equal(t, int64(2500), reloadedDest.Balance.Minor)
}

func TestInsufficientFundsFailsTheTransfer(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	source, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Low Balance", Currency: "USD", InitialBalance: 100})
	require.NoError(t, err)
	dest, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Receiver", Currency: "USD", InitialBalance: 0})
	require.NoError(t, err)

	_, err = env.transfers.Initiate(ctx, transferuc.InitiateCommand{
		SourceAccountID: source.ID, DestAccountID: dest.ID, Amount: 5000, Currency: "USD", IdempotencyKey: "key-2",
	})
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	require.Equal(t, domainerr.CodeAccountRuleViolation, de.Code)
}

func TestReversalRestoresBalances(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	source, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Source", Currency: "USD", InitialBalance: 5000})
	require.NoError(t, err)
	dest, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Dest", Currency: "USD", InitialBalance: 0})
	require.NoError(t, err)

	outcome, err := env.transfers.Initiate(ctx, transferuc.InitiateCommand{
		SourceAccountID: source.ID, DestAccountID: dest.ID, Amount: 1000, Currency: "USD", IdempotencyKey: "key-3",
	})
	require.NoError(t, err)

	reversed, err := env.transfers.Reverse(ctx, outcome.Transfer.ID)
	require.NoError(t, err)
	require.Equal(t, "reversed", string(reversed.Status))

	reloadedSource, err := env.accounts.Get(ctx, source.ID)
	require.NoError(t, err)
	reloadedDest, err := env.accounts.Get(ctx, dest.ID)
	require.NoError(t, err)

	require.Equal(t, int64(5000), reloadedSource.Balance.Minor)
	require.Equal(t, int64(0), reloadedDest.Balance.Minor)
}

func TestIdempotentRetryReturnsCachedResponse(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	body := []byte(`{"owner_name":"Replay Test","currency":"USD","initial_balance":100}`)
	calls := 0
	handler := func(ctx context.Context) (int, []byte, error) {
		calls++
		acc, err := env.accounts.Create(ctx, accountuc.CreateCommand{OwnerName: "Replay Test", Currency: "USD", InitialBalance: 100})
		if err != nil {
			return 0, nil, err
		}
		respBody, _ := json.Marshal(map[string]string{"id": acc.ID})
		return 201, respBody, nil
	}

	status1, body1, replayed1, err := env.idempotency.Run(ctx, "create-key-1", "POST", "/accounts", body, handler)
	require.NoError(t, err)
	require.False(t, replayed1)
	require.Equal(t, 201, status1)

	status2, body2, replayed2, err := env.idempotency.Run(ctx, "create-key-1", "POST", "/accounts", body, handler)
	require.NoError(t, err)
	require.True(t, replayed2)
	require.Equal(t, status1, status2)
	require.Equal(t, body1, body2)
	require.Equal(t, 1, calls, "handler must run exactly once for a replayed idempotency key")
}

func TestIdempotencyKeyReuseWithDifferentBodyIsRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	handler := func(ctx context.Context) (int, []byte, error) {
		return 201, []byte(`{}`), nil
	}

	_, _, _, err := env.idempotency.Run(ctx, "shared-key", "POST", "/accounts", []byte(`{"a":1}`), handler)
	require.NoError(t, err)

	_, _, _, err = env.idempotency.Run(ctx, "shared-key", "POST", "/accounts", []byte(`{"a":2}`), handler)
	require.ErrorIs(t, err, idempotencysvc.ErrKeyReuse)
}

func TestIdempotencyKeySameBodyDifferentPathIsNotTreatedAsAReplay(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	calls := 0
	handler := func(ctx context.Context) (int, []byte, error) {
		calls++
		return 201, []byte(`{"ok":true}`), nil
	}

	body := []byte(`{"amount":500}`)
	_, _, replayed1, err := env.idempotency.Run(ctx, "cross-op-key", "POST", "/accounts", body, handler)
	require.NoError(t, err)
	require.False(t, replayed1)

	_, _, _, err = env.idempotency.Run(ctx, "cross-op-key", "POST", "/transfers", body, handler)
	require.ErrorIs(t, err, idempotencysvc.ErrKeyReuse, "same key and body across two different operations must not replay")
	require.Equal(t, 1, calls)
}
