package txcoordinator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

// fakeAccountRepo is an in-memory stand-in for
// internal/infrastructure/database.AccountRepository, just enough of it
// to exercise the lock-ordering and debit/credit path without a database.
type fakeAccountRepo struct {
	accounts map[string]*account.Account
	order    []string
}

func newFakeAccountRepo(accounts ...*account.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*account.Account)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*account.Account, error) {
	r.order = append(r.order, id)
	a, ok := r.accounts[id]
	if !ok {
		return nil, domainerr.New(domainerr.CodeAccountNotFound, "account not found")
	}
	return a, nil
}

func (r *fakeAccountRepo) Save(ctx context.Context, tx pgx.Tx, a *account.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func openAccount(t *testing.T, id string, balance int64) *account.Account {
	t.Helper()
	a, err := account.Open(id, "owner-"+id, money.Currency("USD"), balance, now)
	require.NoError(t, err)
	a.Release()
	return a
}

func TestMoveLocksAccountsInLexicographicOrder(t *testing.T) {
	source := openAccount(t, "b-account", 1000)
	dest := openAccount(t, "a-account", 0)
	repo := newFakeAccountRepo(source, dest)

	_, err := Move(context.Background(), nil, repo, "b-account", "a-account", money.New(200, money.Currency("USD")), "xfer-1", "transfer", now)
	require.NoError(t, err)

	require.Len(t, repo.order, 2)
	assert.Equal(t, "a-account", repo.order[0])
	assert.Equal(t, "b-account", repo.order[1])
}

func TestMoveDebitsSourceCreditsDest(t *testing.T) {
	source := openAccount(t, "acc-src", 1000)
	dest := openAccount(t, "acc-dst", 500)
	repo := newFakeAccountRepo(source, dest)

	result, err := Move(context.Background(), nil, repo, "acc-src", "acc-dst", money.New(300, money.Currency("USD")), "xfer-1", "transfer", now)
	require.NoError(t, err)

	assert.Equal(t, int64(700), result.SourceBalanceAfter.Minor)
	assert.Equal(t, int64(800), result.DestinationBalanceAfter.Minor)
	assert.NotEmpty(t, result.TaggedEvents)
	for _, te := range result.TaggedEvents {
		assert.Equal(t, "account", te.AggregateType)
	}
}

func TestMoveWrapsAccountNotFound(t *testing.T) {
	source := openAccount(t, "acc-src", 1000)
	repo := newFakeAccountRepo(source)

	_, err := Move(context.Background(), nil, repo, "acc-src", "missing-acc", money.New(100, money.Currency("USD")), "xfer-1", "transfer", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeAccountNotFoundTransfer, de.Code)
}

func TestMoveWrapsRuleViolation(t *testing.T) {
	source := openAccount(t, "acc-src", 100)
	dest := openAccount(t, "acc-dst", 0)
	repo := newFakeAccountRepo(source, dest)

	_, err := Move(context.Background(), nil, repo, "acc-src", "acc-dst", money.New(500, money.Currency("USD")), "xfer-1", "transfer", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeAccountRuleViolation, de.Code)
	assert.Equal(t, domainerr.CodeInsufficientFunds, de.Cause, "the specific reason must ride along for callers across the boundary")
	assert.Equal(t, domainerr.CodeInsufficientFunds, de.Reason())
}
