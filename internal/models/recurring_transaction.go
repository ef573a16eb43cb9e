package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTransaction is a monthly template that the scheduler materializes
// into concrete transactions. NextPaymentDate only moves forward, and an
// inactive template is never picked up again.
type RecurringTransaction struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID       string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID      string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Type            TransactionType `gorm:"not null" json:"type"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	NextPaymentDate time.Time       `gorm:"not null;index" json:"next_payment_date"`
	Active          bool            `gorm:"not null;default:true;index" json:"active"`
	LastRunAt       *time.Time      `json:"last_run_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}
