package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a balance-holding record owned by the ledger engine.
// Balance never goes negative as the result of an engine operation.
type Account struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Balance          decimal.Decimal `json:"balance"`
	Age              int             `json:"age"`
	TransactionCount int             `json:"transaction_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

// IsMinor reports whether the holder is below adultAge.
func (a *Account) IsMinor(adultAge int) bool {
	return a.Age < adultAge
}

// CanCover reports whether the balance can absorb a debit of amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Credit adds amount to the balance and counts the mutation.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
	a.TransactionCount++
}

// Debit subtracts amount from the balance and counts the mutation.
// Callers must check CanCover first.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
	a.TransactionCount++
}

// LedgerSnapshot is the persistable state of the account set.
type LedgerSnapshot struct {
	NextID   int64     `json:"next_id"`
	Accounts []Account `json:"accounts"`
}
