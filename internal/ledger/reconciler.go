// Package ledger implements the balance reconciliation rule: how a
// transaction's amount and type translate into a change of account balance.
package ledger

import (
	"github.com/shopspring/decimal"

	"moneymanager/internal/models"
)

// Effect returns the signed balance change of a transaction. Income adds the
// amount and expense subtracts it; reversing negates the result so that
// applying and then reversing the same transaction is a no-op.
func Effect(amount decimal.Decimal, txType models.TransactionType, reversing bool) decimal.Decimal {
	delta := amount
	if txType == models.TransactionTypeExpense {
		delta = delta.Neg()
	}
	if reversing {
		delta = delta.Neg()
	}
	return delta
}

// Apply returns the balance after applying (or reversing) a transaction.
// Callers validate that amount is positive and txType is known.
func Apply(balance, amount decimal.Decimal, txType models.TransactionType, reversing bool) decimal.Decimal {
	return balance.Add(Effect(amount, txType, reversing))
}
