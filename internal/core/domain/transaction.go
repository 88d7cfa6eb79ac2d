package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of money movement.
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "DEPOSIT"
	TransactionKindWithdraw TransactionKind = "WITHDRAW"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// IsValid returns true for the three supported kinds.
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindDeposit, TransactionKindWithdraw, TransactionKindTransfer:
		return true
	}
	return false
}

// ParseTransactionKind accepts any letter case.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	k := TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// Transaction is an immutable value record. It moves between the pending
// queue and the done/undone stacks but is never mutated.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Source    int64           `json:"source"`
	Target    int64           `json:"target,omitempty"` // TRANSFER only
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewDeposit builds a deposit into account.
func NewDeposit(account int64, amount decimal.Decimal) Transaction {
	return newTransaction(TransactionKindDeposit, account, 0, amount)
}

// NewWithdrawal builds a withdrawal from account.
func NewWithdrawal(account int64, amount decimal.Decimal) Transaction {
	return newTransaction(TransactionKindWithdraw, account, 0, amount)
}

// NewTransfer builds a transfer from -> to.
func NewTransfer(from, to int64, amount decimal.Decimal) Transaction {
	return newTransaction(TransactionKindTransfer, from, to, amount)
}

func newTransaction(kind TransactionKind, source, target int64, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.New(),
		Kind:      kind,
		Source:    source,
		Target:    target,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

// Inverse returns the transaction whose balance effect reverses t.
// Deposit and withdraw swap; a transfer runs in the opposite direction.
// The inverse keeps t's ID and Timestamp.
func (t Transaction) Inverse() Transaction {
	inv := t
	switch t.Kind {
	case TransactionKindDeposit:
		inv.Kind = TransactionKindWithdraw
	case TransactionKindWithdraw:
		inv.Kind = TransactionKindDeposit
	case TransactionKindTransfer:
		inv.Source, inv.Target = t.Target, t.Source
	}
	return inv
}

// Accounts lists the account ids t touches.
func (t Transaction) Accounts() []int64 {
	if t.Kind == TransactionKindTransfer {
		return []int64{t.Source, t.Target}
	}
	return []int64{t.Source}
}
