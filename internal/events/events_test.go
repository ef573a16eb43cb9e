package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/models"
)

func TestLedgerEvent_JSONRoundTrip(t *testing.T) {
	event := LedgerEvent{
		Type:            TypeTransactionCreated,
		UserID:          "user-1",
		AccountID:       "account-1",
		TransactionID:   "tx-1",
		TransactionType: models.TransactionTypeExpense,
		Amount:          decimal.RequireFromString("30.00"),
		Balance:         decimal.RequireFromString("70.00"),
		OccurredAt:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Type != event.Type || got.TransactionID != event.TransactionID {
		t.Errorf("identity fields mismatch: %+v", got)
	}
	if !got.Amount.Equal(event.Amount) || !got.Balance.Equal(event.Balance) {
		t.Errorf("money fields mismatch: amount=%s balance=%s", got.Amount, got.Balance)
	}
}

func TestNewPublisher_WithoutURL(t *testing.T) {
	p := NewPublisher("", "exchange")
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", p)
	}
	if err := p.Publish(context.Background(), LedgerEvent{Type: TypeTransactionCreated}); err != nil {
		t.Errorf("nop publish should not fail: %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Run("records_by_type", func(t *testing.T) {
		r := &Recorder{}
		_ = r.Publish(context.Background(), LedgerEvent{Type: TypeTransactionCreated})
		_ = r.Publish(context.Background(), LedgerEvent{Type: TypeTransactionDeleted})
		_ = r.Publish(context.Background(), LedgerEvent{Type: TypeTransactionCreated})

		if n := len(r.OfType(TypeTransactionCreated)); n != 2 {
			t.Errorf("expected 2 created events, got %d", n)
		}
	})

	t.Run("returns_configured_error", func(t *testing.T) {
		r := &Recorder{Err: errors.New("broker down")}
		if err := r.Publish(context.Background(), LedgerEvent{}); err == nil {
			t.Error("expected error")
		}
		if len(r.Events) != 0 {
			t.Error("failed publish should not be recorded")
		}
	})
}
