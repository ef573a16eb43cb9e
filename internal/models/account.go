package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeBank       AccountType = "bank"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
)

// Account is a ledger account owned by a single user. Balance is only ever
// changed through the balance reconciler; Version guards concurrent writes.
type Account struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	Type        AccountType     `gorm:"not null" json:"type"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"balance"`
	Currency    string          `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Version     int64           `gorm:"not null;default:0" json:"-"`
}
