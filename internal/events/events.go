// Package events publishes ledger notifications after a unit of work has
// committed. Publishing is best effort: the ledger is the source of truth and
// a failed publish never rolls back a committed transaction.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/models"
)

// Event types, also used as AMQP routing keys.
const (
	TypeTransactionCreated    = "transaction.created"
	TypeTransactionDeleted    = "transaction.deleted"
	TypeRecurringMaterialized = "recurring.materialized"
)

// LedgerEvent describes a committed balance change.
type LedgerEvent struct {
	Type                   string                 `json:"type"`
	UserID                 string                 `json:"user_id"`
	AccountID              string                 `json:"account_id"`
	TransactionID          string                 `json:"transaction_id"`
	RecurringTransactionID string                 `json:"recurring_transaction_id,omitempty"`
	TransactionType        models.TransactionType `json:"transaction_type"`
	Amount                 decimal.Decimal        `json:"amount"`
	Balance                decimal.Decimal        `json:"balance"`
	OccurredAt             time.Time              `json:"occurred_at"`
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by this package.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers ledger events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// Recorder keeps published events in memory. Tests use it to assert on what
// a service emitted.
type Recorder struct {
	Events []LedgerEvent
	Err    error
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event LedgerEvent) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, event)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []LedgerEvent {
	var out []LedgerEvent
	for _, e := range r.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
