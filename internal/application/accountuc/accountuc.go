// Package accountuc implements the Create / Freeze / Unfreeze / Close
// account use-cases. Each runs inside a single transaction and writes its
// domain events to the outbox, the same shape transferuc uses for the
// transfer side.
package accountuc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
	"github.com/nsparik/fund-transfer-engine/internal/domain/ledger"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/outbox"
	"github.com/nsparik/fund-transfer-engine/internal/domain/shared"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/metrics"
)

type Clock func() time.Time

type Service struct {
	txManager *database.TxManager
	accounts  *database.AccountRepository
	ledger    *database.LedgerRepository
	outbox    *database.OutboxRepository
	now       Clock
}

func NewService(txManager *database.TxManager, accounts *database.AccountRepository, ledgerRepo *database.LedgerRepository, outboxRepo *database.OutboxRepository) *Service {
	return &Service{txManager: txManager, accounts: accounts, ledger: ledgerRepo, outbox: outboxRepo, now: time.Now}
}

type CreateCommand struct {
	OwnerName      string
	Currency       string
	InitialBalance int64
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*account.Account, error) {
	currency, err := money.NewCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := s.now()

	var created *account.Account
	err = s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := account.Open(id, cmd.OwnerName, currency, cmd.InitialBalance, now)
		if err != nil {
			return err
		}
		if err := s.accounts.Save(ctx, tx, a); err != nil {
			return err
		}
		if cmd.InitialBalance > 0 {
			if err := s.ledger.RecordEntry(ctx, tx, ledger.Entry{
				ID:                    uuid.Must(uuid.NewV7()).String(),
				AccountID:             a.ID,
				CounterpartyAccountID: ledger.BootstrapCounterpartyID,
				TransferID:            ledger.BootstrapTransferID,
				EntryType:             ledger.EntryCredit,
				TransferType:          ledger.TransferTypeBootstrap,
				Amount:                cmd.InitialBalance,
				Currency:              string(currency),
				BalanceAfter:          cmd.InitialBalance,
				OccurredAt:            now,
				CreatedAt:             now,
			}); err != nil {
				return err
			}
		}
		if err := s.writeOutbox(ctx, tx, a.Release(), a.ID, now); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AccountsCreatedTotal.Inc()
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*account.Account, error) {
	return s.accounts.GetByID(ctx, nil, id)
}

func (s *Service) Freeze(ctx context.Context, id string) (*account.Account, error) {
	return s.transition(ctx, id, func(a *account.Account, now time.Time) error { return a.Freeze(now) })
}

func (s *Service) Unfreeze(ctx context.Context, id string) (*account.Account, error) {
	return s.transition(ctx, id, func(a *account.Account, now time.Time) error { return a.Unfreeze(now) })
}

func (s *Service) Close(ctx context.Context, id string) (*account.Account, error) {
	return s.transition(ctx, id, func(a *account.Account, now time.Time) error { return a.Close(now) })
}

func (s *Service) transition(ctx context.Context, id string, fn func(a *account.Account, now time.Time) error) (*account.Account, error) {
	now := s.now()
	var result *account.Account
	err := s.txManager.Transactional(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.accounts.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(a, now); err != nil {
			return err
		}
		if err := s.accounts.Save(ctx, tx, a); err != nil {
			return err
		}
		if err := s.writeOutbox(ctx, tx, a.Release(), a.ID, now); err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) writeOutbox(ctx context.Context, tx pgx.Tx, events []shared.Event, aggregateID string, now time.Time) error {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		evt := outbox.Event{
			ID:            uuid.New().String(),
			AggregateType: "account",
			AggregateID:   aggregateID,
			EventType:     e.EventType(),
			Payload:       payload,
			OccurredAt:    now,
			CreatedAt:     now,
		}
		if err := s.outbox.Append(ctx, tx, evt); err != nil {
			return err
		}
	}
	return nil
}
