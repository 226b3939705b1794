package transfer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newAmount(minor int64) money.Amount {
	return money.New(minor, money.Currency("USD"))
}

func TestInitiateRaisesInitiated(t *testing.T) {
	tr, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(500), "rent", "idem-1", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tr.Status)
	assert.True(t, strings.HasPrefix(tr.Reference, "TXN-20260314-"))

	events := tr.Peek()
	require.Len(t, events, 1)
	initiated, ok := events[0].(Initiated)
	require.True(t, ok)
	assert.Equal(t, int64(500), initiated.Amount)
}

func TestInitiateRejectsSameAccount(t *testing.T) {
	_, err := Initiate("xfer-1", "acc-a", "acc-a", newAmount(500), "", "", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeSameAccountTransfer, de.Code)
}

func TestInitiateRejectsNonPositiveAmount(t *testing.T) {
	_, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(0), "", "", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidTransferAmount, de.Code)
}

func TestInitiateRejectsOversizedDescription(t *testing.T) {
	_, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(1), strings.Repeat("a", MaxDescriptionLen+1), "", now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)
}

func TestLifecycleHappyPath(t *testing.T) {
	tr, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(500), "rent", "idem-1", now)
	require.NoError(t, err)
	tr.Release()

	require.NoError(t, tr.MarkProcessing(now))
	assert.Equal(t, StatusProcessing, tr.Status)

	require.NoError(t, tr.Complete(now))
	assert.Equal(t, StatusCompleted, tr.Status)
	require.NotNil(t, tr.CompletedAt)

	events := tr.Release()
	require.Len(t, events, 1)
	_, ok := events[0].(Completed)
	require.True(t, ok)
}

func TestCompleteRequiresProcessing(t *testing.T) {
	tr, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(500), "", "", now)
	require.NoError(t, err)

	err = tr.Complete(now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidTransferState, de.Code)
}

func TestFailTransitionsFromProcessing(t *testing.T) {
	tr, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(500), "", "", now)
	require.NoError(t, err)
	require.NoError(t, tr.MarkProcessing(now))

	require.NoError(t, tr.Fail("INSUFFICIENT_FUNDS", "not enough balance", now))
	assert.Equal(t, StatusFailed, tr.Status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", tr.FailureCode)
	require.NotNil(t, tr.FailedAt)
}

func TestReverseRequiresCompleted(t *testing.T) {
	tr, err := Initiate("xfer-1", "acc-a", "acc-b", newAmount(500), "", "", now)
	require.NoError(t, err)

	err = tr.Reverse(now)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidTransferState, de.Code)

	require.NoError(t, tr.MarkProcessing(now))
	require.NoError(t, tr.Complete(now))
	tr.Release()

	require.NoError(t, tr.Reverse(now))
	assert.Equal(t, StatusReversed, tr.Status)
	require.NotNil(t, tr.ReversedAt)
}

func TestDeriveReferenceIsDeterministic(t *testing.T) {
	id := "11111111-2222-3333-4444-555566667777"
	ref1 := DeriveReference(id, now)
	ref2 := DeriveReference(id, now)
	assert.Equal(t, ref1, ref2)
	assert.Equal(t, "TXN-20260314-555566667777", ref1)
}

func TestReconstituteRaisesNoEvents(t *testing.T) {
	tr := Reconstitute("xfer-1", "TXN-20260314-ABC", "acc-a", "acc-b", newAmount(500), "", "", StatusCompleted, "", "", now, now, nil, nil, nil, 2)
	assert.Empty(t, tr.Peek())
	assert.Equal(t, StatusCompleted, tr.Status)
}
