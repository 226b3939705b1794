// Package shared holds the cross-aggregate event contracts. Neither the
// account nor the transfer package import each other; they only depend on
// this package and on primitive types, so the outbox can route an event to
// the right aggregate without ever importing Account or Transfer types.
package shared

// Event is implemented by every domain event raised by an aggregate.
type Event interface {
	EventType() string
}

// TaggedEvent carries an event alongside the id of the aggregate that raised
// it. The account transfer coordinator returns these so the transfer
// use-case can write outbox rows with the correct aggregate_id without
// importing the account package.
type TaggedEvent struct {
	Event         Event
	AggregateType string
	AggregateID   string
}
