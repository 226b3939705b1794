package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
)

func int64p(v int64) *int64 { return &v }

func TestClassifyMatch(t *testing.T) {
	row := database.ReconciliationRow{AccountID: "acc-1", AccountBalance: 500, LedgerSnapshot: int64p(500), ComputedSum: int64p(500)}
	result := classify(row)
	assert.Equal(t, StatusMatch, result.Status)
	assert.Zero(t, result.Diff)
}

func TestClassifyNoLedgerEntryWithZeroBalance(t *testing.T) {
	row := database.ReconciliationRow{AccountID: "acc-1", AccountBalance: 0}
	result := classify(row)
	assert.Equal(t, StatusMatch, result.Status)
}

func TestClassifyNoLedgerEntryWithNonZeroBalance(t *testing.T) {
	row := database.ReconciliationRow{AccountID: "acc-1", AccountBalance: 100}
	result := classify(row)
	assert.Equal(t, StatusNoLedgerEntry, result.Status)
	assert.Equal(t, int64(100), result.Diff)
}

func TestClassifySnapshotMismatch(t *testing.T) {
	row := database.ReconciliationRow{AccountID: "acc-1", AccountBalance: 500, LedgerSnapshot: int64p(400), ComputedSum: int64p(400)}
	result := classify(row)
	assert.Equal(t, StatusMismatch, result.Status)
	assert.Equal(t, int64(100), result.Diff)
}

func TestClassifyLedgerSumMismatch(t *testing.T) {
	row := database.ReconciliationRow{AccountID: "acc-1", AccountBalance: 500, LedgerSnapshot: int64p(500), ComputedSum: int64p(450)}
	result := classify(row)
	assert.Equal(t, StatusLedgerSumMismatch, result.Status)
	assert.Equal(t, int64(50), result.Diff)
}
