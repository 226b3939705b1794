package handlers

import (
	"time"

	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
	"github.com/nsparik/fund-transfer-engine/internal/domain/ledger"
	"github.com/nsparik/fund-transfer-engine/internal/domain/transfer"
)

type accountDTO struct {
	ID        string     `json:"id"`
	OwnerName string     `json:"owner_name"`
	Currency  string     `json:"currency"`
	Balance   int64      `json:"balance"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	Version   int64      `json:"version"`
}

func toAccountDTO(a *account.Account) accountDTO {
	return accountDTO{
		ID:        a.ID,
		OwnerName: a.OwnerName,
		Currency:  string(a.Currency),
		Balance:   a.Balance.Minor,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		ClosedAt:  a.ClosedAt,
		Version:   a.Version,
	}
}

type transferDTO struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	SourceAccountID string     `json:"source_account_id"`
	DestAccountID   string     `json:"dest_account_id"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	FailureCode     string     `json:"failure_code,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	ReversedAt      *time.Time `json:"reversed_at,omitempty"`
	Version         int64      `json:"version"`
}

func toTransferDTO(t *transfer.Transfer) transferDTO {
	return transferDTO{
		ID:              t.ID,
		Reference:       t.Reference,
		SourceAccountID: t.SourceAccountID,
		DestAccountID:   t.DestAccountID,
		Amount:          t.Amount.Minor,
		Currency:        string(t.Amount.Currency),
		Description:     t.Description,
		Status:          string(t.Status),
		FailureCode:     t.FailureCode,
		FailureReason:   t.FailureReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
		FailedAt:        t.FailedAt,
		ReversedAt:      t.ReversedAt,
		Version:         t.Version,
	}
}

func toTransferDTOs(ts []*transfer.Transfer) []transferDTO {
	out := make([]transferDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransferDTO(t))
	}
	return out
}

type ledgerEntryDTO struct {
	ID                    string    `json:"id"`
	AccountID             string    `json:"account_id"`
	CounterpartyAccountID string    `json:"counterparty_account_id"`
	TransferID            string    `json:"transfer_id"`
	EntryType             string    `json:"entry_type"`
	TransferType          string    `json:"transfer_type"`
	Amount                int64     `json:"amount"`
	Currency              string    `json:"currency"`
	BalanceAfter          int64     `json:"balance_after"`
	OccurredAt            time.Time `json:"occurred_at"`
}

func toLedgerEntryDTOs(entries []ledger.Entry) []ledgerEntryDTO {
	out := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryDTO{
			ID:                    e.ID,
			AccountID:             e.AccountID,
			CounterpartyAccountID: e.CounterpartyAccountID,
			TransferID:            e.TransferID,
			EntryType:             string(e.EntryType),
			TransferType:          string(e.TransferType),
			Amount:                e.Amount,
			Currency:              e.Currency,
			BalanceAfter:          e.BalanceAfter,
			OccurredAt:            e.OccurredAt,
		})
	}
	return out
}

type statementDTO struct {
	AccountID      string           `json:"account_id"`
	OpeningBalance int64            `json:"opening_balance"`
	ClosingBalance int64            `json:"closing_balance"`
	Movements      []ledgerEntryDTO `json:"movements"`
	Page           int              `json:"page"`
	PerPage        int              `json:"per_page"`
}
