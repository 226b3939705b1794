// Package account implements the Account aggregate: its balance/status
// invariants, the debit/credit/freeze/unfreeze/close lifecycle, and the
// accumulate-and-release domain event buffer. It is grounded on the
// teacher's internal/domain/account package (AddAmount/RemoveAmount under a
// lock) generalized from a bare int balance to the full state machine spec
// requires, and on internal/domain/models.Account for the field set.
package account

import (
	"strings"
	"time"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/shared"
)

type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
	StatusClosed Status = "closed"
)

const MaxOwnerNameLen = 255

// Account is the consistency boundary for a single money-holding entity.
// Mutation only ever happens through its methods; Reconstitute is the only
// other way to obtain a populated value, and it never raises events.
type Account struct {
	ID        string
	OwnerName string
	Currency  money.Currency
	Balance   money.Amount
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	Version   int64

	events []shared.Event
}

// Open is the factory constructor: it validates inputs and raises
// AccountCreated. Use Reconstitute to hydrate a row already in storage.
func Open(id, ownerName string, currency money.Currency, initialBalance int64, now time.Time) (*Account, error) {
	if err := validateOwnerName(ownerName); err != nil {
		return nil, err
	}
	if initialBalance < 0 {
		return nil, domainerr.New(domainerr.CodeValidation, "initial balance must not be negative")
	}

	a := &Account{
		ID:        id,
		OwnerName: ownerName,
		Currency:  currency,
		Balance:   money.New(initialBalance, currency),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
	a.raise(Created{
		AccountID:      id,
		OwnerName:      ownerName,
		Currency:       string(currency),
		InitialBalance: initialBalance,
		OccurredAt:     now,
	})
	return a, nil
}

// Reconstitute rebuilds an Account from persisted state without raising any
// event — the persistence layer's hydration path.
func Reconstitute(id, ownerName string, currency money.Currency, balance int64, status Status, createdAt, updatedAt time.Time, closedAt *time.Time, version int64) *Account {
	return &Account{
		ID:        id,
		OwnerName: ownerName,
		Currency:  currency,
		Balance:   money.New(balance, currency),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		ClosedAt:  closedAt,
		Version:   version,
	}
}

func validateOwnerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domainerr.New(domainerr.CodeValidation, "owner name must not be blank")
	}
	if len(name) > MaxOwnerNameLen {
		return domainerr.New(domainerr.CodeValidation, "owner name must be at most 255 characters")
	}
	return nil
}

func (a *Account) requireActive() error {
	switch a.Status {
	case StatusFrozen:
		return domainerr.New(domainerr.CodeAccountFrozen, "account is frozen")
	case StatusClosed:
		return domainerr.New(domainerr.CodeAccountClosed, "account is closed")
	default:
		return nil
	}
}

// Debit subtracts amount from the balance. transferID/transferType/
// counterpartyID are denormalised onto the AccountDebited event so the
// ledger recorder never needs to reload the account to write its entry.
func (a *Account) Debit(amount money.Amount, transferID, transferType, counterpartyID string, now time.Time) error {
	if err := a.requireActive(); err != nil {
		return err
	}
	if err := money.RequireSameCurrency(a.Balance, amount); err != nil {
		return err
	}
	newBalance, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.touch(now)
	a.raise(Debited{
		AccountID:           a.ID,
		CounterpartyAccount: counterpartyID,
		TransferID:          transferID,
		TransferType:        transferType,
		Amount:              amount.Minor,
		Currency:            string(amount.Currency),
		BalanceAfter:        a.Balance.Minor,
		OccurredAt:          now,
	})
	return nil
}

// Credit adds amount to the balance, symmetric to Debit.
func (a *Account) Credit(amount money.Amount, transferID, transferType, counterpartyID string, now time.Time) error {
	if err := a.requireActive(); err != nil {
		return err
	}
	if err := money.RequireSameCurrency(a.Balance, amount); err != nil {
		return err
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.touch(now)
	a.raise(Credited{
		AccountID:           a.ID,
		CounterpartyAccount: counterpartyID,
		TransferID:          transferID,
		TransferType:        transferType,
		Amount:              amount.Minor,
		Currency:            string(amount.Currency),
		BalanceAfter:        a.Balance.Minor,
		OccurredAt:          now,
	})
	return nil
}

func (a *Account) Freeze(now time.Time) error {
	if a.Status != StatusActive {
		return domainerr.New(domainerr.CodeInvalidAccountState, "only an active account can be frozen")
	}
	a.Status = StatusFrozen
	a.touch(now)
	a.raise(Frozen{AccountID: a.ID, OccurredAt: now})
	return nil
}

func (a *Account) Unfreeze(now time.Time) error {
	if a.Status != StatusFrozen {
		return domainerr.New(domainerr.CodeInvalidAccountState, "only a frozen account can be unfrozen")
	}
	a.Status = StatusActive
	a.touch(now)
	a.raise(Unfrozen{AccountID: a.ID, OccurredAt: now})
	return nil
}

func (a *Account) Close(now time.Time) error {
	if a.Status == StatusClosed {
		return domainerr.New(domainerr.CodeInvalidAccountState, "account is already closed")
	}
	if a.Balance.Minor != 0 {
		return domainerr.New(domainerr.CodeNonZeroBalanceOnClose, "account balance must be zero before closing")
	}
	a.Status = StatusClosed
	a.touch(now)
	a.ClosedAt = &now
	a.raise(Closed{AccountID: a.ID, OccurredAt: now})
	return nil
}

func (a *Account) touch(now time.Time) {
	a.UpdatedAt = now
	a.Version++
}

func (a *Account) raise(e shared.Event) {
	a.events = append(a.events, e)
}

// Peek returns the buffered events without clearing them — used inside the
// transaction to write outbox rows while the caller may still need to
// inspect the buffer again before commit.
func (a *Account) Peek() []shared.Event {
	out := make([]shared.Event, len(a.events))
	copy(out, a.events)
	return out
}

// Release returns and clears the buffered events — used once the
// transaction has committed, for any in-process dispatch.
func (a *Account) Release() []shared.Event {
	out := a.events
	a.events = nil
	return out
}
