// Package transferuc implements the Transfer Initiate and Reverse
// use-cases (spec.md §4.7/§4.8): orchestrating the transfer aggregate, the
// account transfer coordinator, the ledger recorder, and the outbox
// writer inside the transaction manager's serialisable transaction.
package transferuc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nsparik/fund-transfer-engine/internal/application/txcoordinator"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/ledger"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/outbox"
	"github.com/nsparik/fund-transfer-engine/internal/domain/shared"
	"github.com/nsparik/fund-transfer-engine/internal/domain/transfer"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/metrics"
)

// Clock lets tests supply a deterministic time source; production passes
// time.Now.
type Clock func() time.Time

type Service struct {
	txManager    *database.TxManager
	accounts     *database.AccountRepository
	transfers    *database.TransferRepository
	ledger       *database.LedgerRepository
	outbox       *database.OutboxRepository
	now          Clock
}

func NewService(txManager *database.TxManager, accounts *database.AccountRepository, transfers *database.TransferRepository, ledgerRepo *database.LedgerRepository, outboxRepo *database.OutboxRepository) *Service {
	return &Service{
		txManager: txManager,
		accounts:  accounts,
		transfers: transfers,
		ledger:    ledgerRepo,
		outbox:    outboxRepo,
		now:       time.Now,
	}
}

type InitiateCommand struct {
	SourceAccountID string
	DestAccountID   string
	Amount          int64
	Currency        string
	Description     string
	IdempotencyKey  string
}

type Outcome struct {
	Transfer *transfer.Transfer
	Replayed bool // true when an already-committed transfer with this idempotency key was found
}

// Initiate implements spec.md §4.7 end to end, including the idempotency
// DB-layer recheck and the degraded-save path for rule violations.
func (s *Service) Initiate(ctx context.Context, cmd InitiateCommand) (*Outcome, error) {
	currency, err := money.NewCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	amount := money.New(cmd.Amount, currency)

	transferID := uuid.Must(uuid.NewV7()).String()
	now := s.now()

	var outcome *Outcome
	var taggedEvents []shared.TaggedEvent

	txErr := s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		outcome = nil
		taggedEvents = nil

		if cmd.IdempotencyKey != "" {
			existing, err := s.transfers.FindByIdempotencyKey(ctx, tx, cmd.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				outcome = &Outcome{Transfer: existing, Replayed: true}
				return nil
			}
		}

		t, err := transfer.Initiate(transferID, cmd.SourceAccountID, cmd.DestAccountID, amount, cmd.Description, cmd.IdempotencyKey, now)
		if err != nil {
			return err
		}
		taggedEvents = append(taggedEvents, tagAll(t.Release(), "transfer", t.ID)...)

		if err := t.MarkProcessing(now); err != nil {
			return err
		}

		result, err := txcoordinator.Move(ctx, tx, s.accounts, cmd.SourceAccountID, cmd.DestAccountID, amount, transferID, string(ledger.TransferTypeTransfer), now)
		if err != nil {
			return err
		}
		taggedEvents = append(taggedEvents, result.TaggedEvents...)

		if err := t.Complete(now); err != nil {
			return err
		}
		taggedEvents = append(taggedEvents, tagAll(t.Release(), "transfer", t.ID)...)

		if err := s.transfers.Save(ctx, tx, t); err != nil {
			return err
		}

		debitEntry := ledger.Entry{
			ID: uuid.Must(uuid.NewV7()).String(), AccountID: cmd.SourceAccountID, CounterpartyAccountID: cmd.DestAccountID,
			TransferID: transferID, EntryType: ledger.EntryDebit, TransferType: ledger.TransferTypeTransfer,
			Amount: cmd.Amount, Currency: cmd.Currency, BalanceAfter: result.SourceBalanceAfter.Minor,
			OccurredAt: now, CreatedAt: now,
		}
		creditEntry := ledger.Entry{
			ID: uuid.Must(uuid.NewV7()).String(), AccountID: cmd.DestAccountID, CounterpartyAccountID: cmd.SourceAccountID,
			TransferID: transferID, EntryType: ledger.EntryCredit, TransferType: ledger.TransferTypeTransfer,
			Amount: cmd.Amount, Currency: cmd.Currency, BalanceAfter: result.DestinationBalanceAfter.Minor,
			OccurredAt: now, CreatedAt: now,
		}
		if err := s.ledger.RecordPair(ctx, tx, debitEntry, creditEntry); err != nil {
			return err
		}

		if err := s.writeOutbox(ctx, tx, taggedEvents, now); err != nil {
			return err
		}

		outcome = &Outcome{Transfer: t}
		return nil
	})

	if txErr != nil {
		return s.handleInitiateFailure(ctx, transferID, cmd, now, txErr)
	}

	if outcome != nil && !outcome.Replayed {
		metrics.RecordTransferOutcome("completed")
	}
	return outcome, nil
}

// handleInitiateFailure implements spec.md §4.7's rule-violation path:
// account-not-found propagates untouched; account-rule-violation gets a
// best-effort FAILED transfer row recorded in a fresh transaction, with a
// degraded transfer-only fallback and a CRITICAL log as last resort.
func (s *Service) handleInitiateFailure(ctx context.Context, transferID string, cmd InitiateCommand, now time.Time, original error) (*Outcome, error) {
	var de *domainerr.Error
	if !domainerr.As(original, &de) || de.Code != domainerr.CodeAccountRuleViolation {
		return nil, original
	}

	metrics.RecordTransferOutcome("failed")

	currency, _ := money.NewCurrency(cmd.Currency)
	amount := money.New(cmd.Amount, currency)
	failedTransfer, buildErr := transfer.Initiate(transferID, cmd.SourceAccountID, cmd.DestAccountID, amount, cmd.Description, cmd.IdempotencyKey, now)
	if buildErr != nil {
		logging.Error("CRITICAL: failed transfer could not even be reconstructed for audit", buildErr, map[string]interface{}{
			"transfer_id": transferID, "source": cmd.SourceAccountID, "dest": cmd.DestAccountID, "amount": cmd.Amount, "rule_violation": de.Message,
		})
		return nil, original
	}
	failedTransfer.Release()
	_ = failedTransfer.MarkProcessing(now)
	_ = failedTransfer.Fail(string(de.Reason()), de.Message, now)
	events := tagAll(failedTransfer.Release(), "transfer", failedTransfer.ID)

	fullSaveErr := s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.transfers.Save(ctx, tx, failedTransfer); err != nil {
			return err
		}
		return s.writeOutbox(ctx, tx, events, now)
	})
	if fullSaveErr == nil {
		return nil, original
	}

	logging.Error("full failed-transfer save failed, retrying degraded transfer-only save", fullSaveErr, map[string]interface{}{"transfer_id": transferID})

	degradedSaveErr := s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.transfers.Save(ctx, tx, failedTransfer)
	})
	if degradedSaveErr != nil {
		logging.Error("CRITICAL: degraded failed-transfer save also failed; audit record lost", degradedSaveErr, map[string]interface{}{
			"transfer_id": transferID, "source": cmd.SourceAccountID, "dest": cmd.DestAccountID,
			"amount": cmd.Amount, "currency": cmd.Currency, "rule_violation": de.Message, "occurred_at": now,
		})
	}

	return nil, original
}

// Reverse implements spec.md §4.8.
func (s *Service) Reverse(ctx context.Context, transferID string) (*transfer.Transfer, error) {
	now := s.now()
	var result *transfer.Transfer

	err := s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		t, err := s.transfers.GetByIDForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if err := t.Reverse(now); err != nil {
			return err
		}
		var taggedEvents []shared.TaggedEvent
		taggedEvents = append(taggedEvents, tagAll(t.Release(), "transfer", t.ID)...)

		coordResult, err := txcoordinator.Move(ctx, tx, s.accounts, t.DestAccountID, t.SourceAccountID, t.Amount, transferID, string(ledger.TransferTypeReversal), now)
		if err != nil {
			return err
		}
		taggedEvents = append(taggedEvents, coordResult.TaggedEvents...)

		if err := s.transfers.Save(ctx, tx, t); err != nil {
			return err
		}

		creditOriginalSource := ledger.Entry{
			ID: uuid.Must(uuid.NewV7()).String(), AccountID: t.SourceAccountID, CounterpartyAccountID: t.DestAccountID,
			TransferID: transferID, EntryType: ledger.EntryCredit, TransferType: ledger.TransferTypeReversal,
			Amount: t.Amount.Minor, Currency: string(t.Amount.Currency), BalanceAfter: coordResult.DestinationBalanceAfter.Minor,
			OccurredAt: now, CreatedAt: now,
		}
		debitOriginalDest := ledger.Entry{
			ID: uuid.Must(uuid.NewV7()).String(), AccountID: t.DestAccountID, CounterpartyAccountID: t.SourceAccountID,
			TransferID: transferID, EntryType: ledger.EntryDebit, TransferType: ledger.TransferTypeReversal,
			Amount: t.Amount.Minor, Currency: string(t.Amount.Currency), BalanceAfter: coordResult.SourceBalanceAfter.Minor,
			OccurredAt: now, CreatedAt: now,
		}
		if err := s.ledger.RecordPair(ctx, tx, creditOriginalSource, debitOriginalDest); err != nil {
			return err
		}

		if err := s.writeOutbox(ctx, tx, taggedEvents, now); err != nil {
			return err
		}

		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransferOutcome("reversed")
	return result, nil
}

func (s *Service) writeOutbox(ctx context.Context, tx pgx.Tx, events []shared.TaggedEvent, now time.Time) error {
	for _, te := range events {
		payload, err := marshalEvent(te.Event)
		if err != nil {
			return err
		}
		e := outbox.Event{
			ID:            uuid.New().String(),
			AggregateType: te.AggregateType,
			AggregateID:   te.AggregateID,
			EventType:     te.Event.EventType(),
			Payload:       payload,
			OccurredAt:    now,
			CreatedAt:     now,
		}
		if err := s.outbox.Append(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

func marshalEvent(e shared.Event) ([]byte, error) {
	return json.Marshal(e)
}

func tagAll(events []shared.Event, aggregateType, aggregateID string) []shared.TaggedEvent {
	out := make([]shared.TaggedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, shared.TaggedEvent{Event: e, AggregateType: aggregateType, AggregateID: aggregateID})
	}
	return out
}
