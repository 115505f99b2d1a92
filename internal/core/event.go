package core

import "time"

// EventType names a change to the persisted state.
type EventType string

const (
	TransactionAdded   EventType = "transaction.added"
	TransactionDeleted EventType = "transaction.deleted"
	CategoryAdded      EventType = "category.added"
	CategoryDeleted    EventType = "category.deleted"
)

// Event is emitted after a mutation has been written to storage.
type Event struct {
	Type EventType `json:"type"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}
