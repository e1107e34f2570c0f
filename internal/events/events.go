// Package events publishes record-change notifications for movies and
// inventory items. Publishing is best effort: callers log failures and
// carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	MovieCreated     = "movie.created"
	MovieUpdated     = "movie.updated"
	InventoryCreated = "inventory.created"
	InventoryUpdated = "inventory.updated"
	InventoryDeleted = "inventory.deleted"
	InventoryLow     = "inventory.low_stock"
)

// Event is the JSON body sent for every change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	RecordID   int64     `json:"record_id"`
	Record     any       `json:"record,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an Event with a fresh id and the current UTC time.
func New(eventType, resource string, recordID int64, record any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Resource:   resource,
		RecordID:   recordID,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
