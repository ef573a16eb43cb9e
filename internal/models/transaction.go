package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single ledger entry against an account. Amount and Type
// never change after insert; corrections are a delete followed by a create.
type Transaction struct {
	Base
	UserID                 string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID              string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID             string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Type                   TransactionType `gorm:"not null" json:"type"`
	Amount                 decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"amount"`
	Description            string          `json:"description"`
	Date                   time.Time       `gorm:"not null;index" json:"date"`
	RecurringTransactionID *string         `gorm:"type:uuid;index" json:"recurring_transaction_id,omitempty"`
}
