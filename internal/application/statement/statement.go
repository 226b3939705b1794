// Package statement implements the opening/closing-balance-by-snapshot-seek
// query (spec.md §4.11): no SUM() aggregation, every balance is an O(log N)
// index seek on (account_id, occurred_at).
package statement

import (
	"context"
	"time"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/ledger"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
)

const MaxRangeDays = 366

type Query struct {
	AccountID string
	From      time.Time
	To        time.Time
	Page      int
	PerPage   int
}

type Statement struct {
	AccountID      string
	OpeningBalance int64
	ClosingBalance int64
	Movements      []ledger.Entry
	Page           int
	PerPage        int
}

type Service struct {
	accounts *database.AccountRepository
	ledger   *database.LedgerRepository
}

func NewService(accounts *database.AccountRepository, ledgerRepo *database.LedgerRepository) *Service {
	return &Service{accounts: accounts, ledger: ledgerRepo}
}

// Get implements spec.md §4.11. The from >= to check must precede any
// duration computation derived from the pair, per spec.md §9's open
// question about unsigned day-count diffs.
func (s *Service) Get(ctx context.Context, q Query) (*Statement, error) {
	if !q.From.Before(q.To) {
		return nil, domainerr.New(domainerr.CodeInvalidDateRange, "from must be before to")
	}
	if q.To.Sub(q.From) > MaxRangeDays*24*time.Hour {
		return nil, domainerr.New(domainerr.CodeInvalidDateRange, "statement range must not exceed 366 days")
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		return nil, domainerr.New(domainerr.CodeValidation, "per_page must be between 1 and 100")
	}
	if q.Page < 1 {
		q.Page = 1
	}

	if _, err := s.accounts.GetByID(ctx, nil, q.AccountID); err != nil {
		return nil, err
	}

	opening, err := s.ledger.OpeningBalance(ctx, q.AccountID, q.From)
	if err != nil {
		return nil, err
	}

	movements, err := s.ledger.Movements(ctx, q.AccountID, q.From, q.To, q.Page, q.PerPage)
	if err != nil {
		return nil, err
	}

	closing := opening
	if len(movements) > 0 {
		closing, err = s.ledger.ClosingBalance(ctx, q.AccountID, q.To, opening)
		if err != nil {
			return nil, err
		}
	}

	return &Statement{
		AccountID:      q.AccountID,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Movements:      movements,
		Page:           q.Page,
		PerPage:        q.PerPage,
	}, nil
}
