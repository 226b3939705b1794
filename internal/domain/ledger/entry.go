// Package ledger defines the immutable double-entry record and the
// reserved bootstrap identifiers spec.md §3 calls out. LedgerEntry values
// are never mutated after construction: the persistence layer only ever
// inserts them, relying on the unique (account_id, transfer_id, entry_type)
// constraint for idempotent writes.
package ledger

import "time"

type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

type TransferType string

const (
	TransferTypeTransfer  TransferType = "transfer"
	TransferTypeReversal  TransferType = "reversal"
	TransferTypeBootstrap TransferType = "bootstrap"
)

// Reserved synthetic identifiers for opening-balance bootstrap entries.
// They deliberately do not exist as account/transfer rows, which is why
// ledger_entries.transfer_id carries no foreign key.
const (
	BootstrapCounterpartyID = "00000000-0000-7000-8000-000000000000"
	BootstrapTransferID     = "00000000-0000-7000-8000-000000000001"
)

type Entry struct {
	ID                    string
	AccountID             string
	CounterpartyAccountID string
	TransferID            string
	EntryType             EntryType
	TransferType          TransferType
	Amount                int64
	Currency              string
	BalanceAfter          int64
	OccurredAt            time.Time
	CreatedAt             time.Time
}
