// Package txcoordinator implements the account transfer coordinator
// (spec.md §4.6): given two accounts and an amount, it locks both rows in
// lexicographic UUID order, debits one, credits the other, and returns the
// resulting balances plus every domain event raised, tagged with the
// aggregate that raised it. Transfer use-cases only ever see the Result's
// primitive balances and shared.TaggedEvent values, never an
// account.Account, which is how the module-boundary-ports rule (spec.md
// §9) is upheld despite this package importing the account package
// directly — it IS the account-side coordinator.
package txcoordinator

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/shared"
)

// AccountRepository is the subset of
// internal/infrastructure/database.AccountRepository the coordinator
// needs, declared locally so this package depends on a narrow interface
// rather than the persistence layer's concrete type.
type AccountRepository interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*account.Account, error)
	Save(ctx context.Context, tx pgx.Tx, a *account.Account) error
}

// Result is what the coordinator hands back to the calling use-case.
type Result struct {
	SourceBalanceAfter      money.Amount
	DestinationBalanceAfter money.Amount
	TaggedEvents            []shared.TaggedEvent
}

// Move performs the double-entry account mutation inside the caller's
// transaction. transferID/transferType are denormalised onto the
// AccountDebited/AccountCredited events so the ledger recorder never
// reloads either account.
func Move(ctx context.Context, tx pgx.Tx, repo AccountRepository, sourceID, destID string, amount money.Amount, transferID, transferType string, now time.Time) (*Result, error) {
	first, second := sourceID, destID
	if second < first {
		first, second = second, first
	}

	firstAcc, err := repo.GetByIDForUpdate(ctx, tx, first)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	secondAcc, err := repo.GetByIDForUpdate(ctx, tx, second)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	var source, dest *account.Account
	if first == sourceID {
		source, dest = firstAcc, secondAcc
	} else {
		source, dest = secondAcc, firstAcc
	}

	if err := source.Debit(amount, transferID, transferType, destID, now); err != nil {
		return nil, wrapRuleViolation(err)
	}
	if err := dest.Credit(amount, transferID, transferType, sourceID, now); err != nil {
		return nil, wrapRuleViolation(err)
	}

	if err := repo.Save(ctx, tx, source); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, tx, dest); err != nil {
		return nil, err
	}

	var tagged []shared.TaggedEvent
	for _, e := range source.Peek() {
		tagged = append(tagged, shared.TaggedEvent{Event: e, AggregateType: "account", AggregateID: source.ID})
	}
	for _, e := range dest.Peek() {
		tagged = append(tagged, shared.TaggedEvent{Event: e, AggregateType: "account", AggregateID: dest.ID})
	}

	return &Result{
		SourceBalanceAfter:      source.Balance,
		DestinationBalanceAfter: dest.Balance,
		TaggedEvents:            tagged,
	}, nil
}

// wrapNotFound maps the repository's not-found domain error to the
// transfer-specific account-not-found code, per spec.md §4.6 step 3.
func wrapNotFound(err error) error {
	var de *domainerr.Error
	if domainerr.As(err, &de) && de.Code == domainerr.CodeAccountNotFound {
		return domainerr.New(domainerr.CodeAccountNotFoundTransfer, "one or more accounts in the transfer do not exist")
	}
	return err
}

// wrapRuleViolation wraps any account-side domain guard failure (frozen,
// closed, currency mismatch, insufficient funds) under the generic
// ACCOUNT_RULE_VIOLATION code so the Transfer module can recognize "this was
// an account-side guard failure" without ever importing Account's error
// vocabulary (spec.md §4.6 step 4, §9's module-boundary-ports rule). The
// specific reason (e.g. INSUFFICIENT_FUNDS) rides along as Cause, a
// primitive domainerr.Code, so callers across the boundary can still recover
// and surface it.
func wrapRuleViolation(err error) error {
	var de *domainerr.Error
	if domainerr.As(err, &de) {
		return domainerr.Wrap(domainerr.CodeAccountRuleViolation, de.Code, de.Message)
	}
	return domainerr.New(domainerr.CodeAccountRuleViolation, err.Error())
}
