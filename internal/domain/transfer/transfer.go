// Package transfer implements the Transfer aggregate: the state machine
// (pending -> processing -> completed|failed; completed -> reversed),
// deterministic human reference generation, and the accumulate-and-release
// event buffer, in the same shape as the account package. It deliberately
// imports nothing from the account package — the transfer code path never
// needs to know how an Account is represented, only its id (spec's
// module-boundary-ports rule).
package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/shared"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReversed   Status = "reversed"
)

const (
	MaxDescriptionLen   = 500
	MaxIdempotencyKeyLen = 255
	MaxFailureCodeLen   = 100
	MaxFailureReasonLen = 500
)

// Transfer is the consistency boundary for a single money movement between
// two accounts. processing is never persisted: it only ever exists between
// the in-memory markProcessing call and the immediately following
// complete/fail call inside the same transaction.
type Transfer struct {
	ID              string
	Reference       string
	SourceAccountID string
	DestAccountID   string
	Amount          money.Amount
	Description     string
	IdempotencyKey  string
	Status          Status
	FailureCode     string
	FailureReason   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
	ReversedAt      *time.Time
	Version         int64

	events []shared.Event
}

// Initiate validates the command and raises TransferInitiated. The
// resulting Transfer is in status pending and has not yet touched any
// account balance.
func Initiate(id, sourceAccountID, destAccountID string, amount money.Amount, description, idempotencyKey string, now time.Time) (*Transfer, error) {
	if sourceAccountID == destAccountID {
		return nil, domainerr.New(domainerr.CodeSameAccountTransfer, "source and destination accounts must differ")
	}
	if !amount.GreaterThanZero() {
		return nil, domainerr.New(domainerr.CodeInvalidTransferAmount, "transfer amount must be greater than zero")
	}
	if len(description) > MaxDescriptionLen {
		return nil, domainerr.New(domainerr.CodeValidation, "description must be at most 500 characters")
	}
	if len(idempotencyKey) > MaxIdempotencyKeyLen {
		return nil, domainerr.New(domainerr.CodeValidation, "idempotency key must be at most 255 characters")
	}

	t := &Transfer{
		ID:              id,
		Reference:       DeriveReference(id, now),
		SourceAccountID: sourceAccountID,
		DestAccountID:   destAccountID,
		Amount:          amount,
		Description:     description,
		IdempotencyKey:  idempotencyKey,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         0,
	}
	t.raise(Initiated{
		TransferID:      id,
		Reference:       t.Reference,
		SourceAccountID: sourceAccountID,
		DestAccountID:   destAccountID,
		Amount:          amount.Minor,
		Currency:        string(amount.Currency),
		OccurredAt:      now,
	})
	return t, nil
}

// Reconstitute rebuilds a Transfer from persisted state without raising any
// event.
func Reconstitute(
	id, reference, sourceAccountID, destAccountID string,
	amount money.Amount,
	description, idempotencyKey string,
	status Status,
	failureCode, failureReason string,
	createdAt, updatedAt time.Time,
	completedAt, failedAt, reversedAt *time.Time,
	version int64,
) *Transfer {
	return &Transfer{
		ID:              id,
		Reference:       reference,
		SourceAccountID: sourceAccountID,
		DestAccountID:   destAccountID,
		Amount:          amount,
		Description:     description,
		IdempotencyKey:  idempotencyKey,
		Status:          status,
		FailureCode:     failureCode,
		FailureReason:   failureReason,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		CompletedAt:     completedAt,
		FailedAt:        failedAt,
		ReversedAt:      reversedAt,
		Version:         version,
	}
}

// DeriveReference builds the human reference TXN-YYYYMMDD-XXXXXXXXXXXX
// deterministically from the transfer id and its creation time: the date
// segment comes from createdAt (UTC), the suffix is the last 12 upper-hex
// characters of the id with dashes removed.
func DeriveReference(id string, createdAt time.Time) string {
	compact := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	suffix := compact
	if len(suffix) > 12 {
		suffix = suffix[len(suffix)-12:]
	}
	return fmt.Sprintf("TXN-%s-%s", createdAt.UTC().Format("20060102"), suffix)
}

func (t *Transfer) touch(now time.Time) {
	t.UpdatedAt = now
	t.Version++
}

// MarkProcessing transitions pending -> processing. The result is never
// persisted by design; it exists only so the in-memory state machine has a
// well-defined intermediate step to validate against.
func (t *Transfer) MarkProcessing(now time.Time) error {
	if t.Status != StatusPending {
		return domainerr.New(domainerr.CodeInvalidTransferState, "transfer must be pending to start processing")
	}
	t.Status = StatusProcessing
	t.touch(now)
	return nil
}

func (t *Transfer) Complete(now time.Time) error {
	if t.Status != StatusProcessing {
		return domainerr.New(domainerr.CodeInvalidTransferState, "transfer must be processing to complete")
	}
	t.Status = StatusCompleted
	t.touch(now)
	t.CompletedAt = &t.UpdatedAt
	t.raise(Completed{
		TransferID:      t.ID,
		SourceAccountID: t.SourceAccountID,
		DestAccountID:   t.DestAccountID,
		Amount:          t.Amount.Minor,
		Currency:        string(t.Amount.Currency),
		OccurredAt:      now,
	})
	return nil
}

func (t *Transfer) Fail(code, reason string, now time.Time) error {
	if t.Status != StatusProcessing {
		return domainerr.New(domainerr.CodeInvalidTransferState, "transfer must be processing to fail")
	}
	if len(code) > MaxFailureCodeLen {
		return domainerr.New(domainerr.CodeValidation, "failure code must be at most 100 characters")
	}
	if len(reason) > MaxFailureReasonLen {
		return domainerr.New(domainerr.CodeValidation, "failure reason must be at most 500 characters")
	}
	t.Status = StatusFailed
	t.FailureCode = code
	t.FailureReason = reason
	t.touch(now)
	t.FailedAt = &t.UpdatedAt
	t.raise(Failed{
		TransferID:      t.ID,
		SourceAccountID: t.SourceAccountID,
		DestAccountID:   t.DestAccountID,
		Amount:          t.Amount.Minor,
		Currency:        string(t.Amount.Currency),
		FailureCode:     code,
		FailureReason:   reason,
		OccurredAt:      now,
	})
	return nil
}

func (t *Transfer) Reverse(now time.Time) error {
	if t.Status != StatusCompleted {
		return domainerr.New(domainerr.CodeInvalidTransferState, "only a completed transfer can be reversed")
	}
	t.Status = StatusReversed
	t.touch(now)
	t.ReversedAt = &t.UpdatedAt
	t.raise(Reversed{
		TransferID:      t.ID,
		SourceAccountID: t.SourceAccountID,
		DestAccountID:   t.DestAccountID,
		Amount:          t.Amount.Minor,
		Currency:        string(t.Amount.Currency),
		OccurredAt:      now,
	})
	return nil
}

func (t *Transfer) Peek() []shared.Event {
	out := make([]shared.Event, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Transfer) Release() []shared.Event {
	out := t.events
	t.events = nil
	return out
}
