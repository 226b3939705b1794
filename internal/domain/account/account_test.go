package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOpenRaisesCreated(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 1000, now)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, a.Status)
	assert.Equal(t, int64(1000), a.Balance.Minor)

	events := a.Peek()
	require.Len(t, events, 1)
	created, ok := events[0].(Created)
	require.True(t, ok)
	assert.Equal(t, "acc-1", created.AccountID)
	assert.Equal(t, int64(1000), created.InitialBalance)
}

func TestOpenRejectsBlankOwnerName(t *testing.T) {
	_, err := Open("acc-1", "", money.Currency("USD"), 0, now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)
}

func TestOpenRejectsNegativeInitialBalance(t *testing.T) {
	_, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), -1, now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)
}

func TestDebitAndCredit(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 1000, now)
	require.NoError(t, err)
	a.Release()

	later := now.Add(time.Minute)
	require.NoError(t, a.Debit(money.New(400, money.Currency("USD")), "xfer-1", "transfer", "acc-2", later))
	assert.Equal(t, int64(600), a.Balance.Minor)

	events := a.Release()
	require.Len(t, events, 1)
	debited, ok := events[0].(Debited)
	require.True(t, ok)
	assert.Equal(t, int64(600), debited.BalanceAfter)

	require.NoError(t, a.Credit(money.New(100, money.Currency("USD")), "xfer-2", "transfer", "acc-3", later))
	assert.Equal(t, int64(700), a.Balance.Minor)
}

func TestDebitInsufficientFunds(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 100, now)
	require.NoError(t, err)

	err = a.Debit(money.New(200, money.Currency("USD")), "xfer-1", "transfer", "acc-2", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInsufficientFunds, de.Code)
}

func TestDebitFrozenAccountFails(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 100, now)
	require.NoError(t, err)
	require.NoError(t, a.Freeze(now))

	err = a.Debit(money.New(10, money.Currency("USD")), "xfer-1", "transfer", "acc-2", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeAccountFrozen, de.Code)
}

func TestFreezeUnfreezeLifecycle(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 0, now)
	require.NoError(t, err)

	require.NoError(t, a.Freeze(now))
	assert.Equal(t, StatusFrozen, a.Status)

	err = a.Freeze(now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidAccountState, de.Code)

	require.NoError(t, a.Unfreeze(now))
	assert.Equal(t, StatusActive, a.Status)
}

func TestCloseRequiresZeroBalance(t *testing.T) {
	a, err := Open("acc-1", "Ada Lovelace", money.Currency("USD"), 50, now)
	require.NoError(t, err)

	err = a.Close(now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeNonZeroBalanceOnClose, de.Code)

	require.NoError(t, a.Debit(money.New(50, money.Currency("USD")), "xfer-1", "transfer", "acc-2", now))
	require.NoError(t, a.Close(now))
	assert.Equal(t, StatusClosed, a.Status)
	require.NotNil(t, a.ClosedAt)
}

func TestReconstituteRaisesNoEvents(t *testing.T) {
	a := Reconstitute("acc-1", "Ada Lovelace", money.Currency("USD"), 500, StatusActive, now, now, nil, 3)
	assert.Empty(t, a.Peek())
	assert.Equal(t, int64(3), a.Version)
}
