package account

import "time"

const (
	EventAccountCreated  = "account.created"
	EventAccountDebited  = "account.debited"
	EventAccountCredited = "account.credited"
	EventAccountFrozen   = "account.frozen"
	EventAccountUnfrozen = "account.unfrozen"
	EventAccountClosed   = "account.closed"
)

type Created struct {
	AccountID      string    `json:"account_id"`
	OwnerName      string    `json:"owner_name"`
	Currency       string    `json:"currency"`
	InitialBalance int64     `json:"initial_balance"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (Created) EventType() string { return EventAccountCreated }

type Debited struct {
	AccountID            string    `json:"account_id"`
	CounterpartyAccount  string    `json:"counterparty_account_id"`
	TransferID           string    `json:"transfer_id"`
	TransferType         string    `json:"transfer_type"`
	Amount               int64     `json:"amount"`
	Currency             string    `json:"currency"`
	BalanceAfter         int64     `json:"balance_after"`
	OccurredAt           time.Time `json:"occurred_at"`
}

func (Debited) EventType() string { return EventAccountDebited }

type Credited struct {
	AccountID           string    `json:"account_id"`
	CounterpartyAccount string    `json:"counterparty_account_id"`
	TransferID          string    `json:"transfer_id"`
	TransferType        string    `json:"transfer_type"`
	Amount              int64     `json:"amount"`
	Currency            string    `json:"currency"`
	BalanceAfter        int64     `json:"balance_after"`
	OccurredAt          time.Time `json:"occurred_at"`
}

func (Credited) EventType() string { return EventAccountCredited }

type Frozen struct {
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (Frozen) EventType() string { return EventAccountFrozen }

type Unfrozen struct {
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (Unfrozen) EventType() string { return EventAccountUnfrozen }

type Closed struct {
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (Closed) EventType() string { return EventAccountClosed }
