package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGoalColor is used when a savings goal is created without a color.
const DefaultGoalColor = "#4F46E5"

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Color         string          `json:"color"`
}
