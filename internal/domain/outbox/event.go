// Package outbox defines the durable message row written inside the same
// transaction as the business change it describes (the transactional
// outbox pattern, spec.md §4.10).
package outbox

import "time"

type Event struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	OccurredAt    time.Time
	CreatedAt     time.Time
	PublishedAt   *time.Time
	AttemptCount  int
	LastError     string
}

// MaxAttempts is the attempt ceiling after which a row is left in place,
// dead-lettered, for operator inspection (spec.md §4.10).
const MaxAttempts = 5

func (e Event) IsDeadLettered() bool {
	return e.PublishedAt == nil && e.AttemptCount >= MaxAttempts
}
