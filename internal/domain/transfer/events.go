package transfer

import "time"

const (
	EventTransferInitiated = "transfer.initiated"
	EventTransferCompleted = "transfer.completed"
	EventTransferFailed    = "transfer.failed"
	EventTransferReversed  = "transfer.reversed"
)

type Initiated struct {
	TransferID      string    `json:"transfer_id"`
	Reference       string    `json:"reference"`
	SourceAccountID string    `json:"source_account_id"`
	DestAccountID   string    `json:"destination_account_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (Initiated) EventType() string { return EventTransferInitiated }

type Completed struct {
	TransferID      string    `json:"transfer_id"`
	SourceAccountID string    `json:"source_account_id"`
	DestAccountID   string    `json:"destination_account_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (Completed) EventType() string { return EventTransferCompleted }

type Failed struct {
	TransferID      string    `json:"transfer_id"`
	SourceAccountID string    `json:"source_account_id"`
	DestAccountID   string    `json:"destination_account_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	FailureCode     string    `json:"failure_code"`
	FailureReason   string    `json:"failure_reason"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (Failed) EventType() string { return EventTransferFailed }

type Reversed struct {
	TransferID      string    `json:"transfer_id"`
	SourceAccountID string    `json:"source_account_id"`
	DestAccountID   string    `json:"destination_account_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (Reversed) EventType() string { return EventTransferReversed }
