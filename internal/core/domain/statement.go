package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryDirection tells whether money entered or left the account.
type EntryDirection string

const (
	DirectionIn  EntryDirection = "IN"
	DirectionOut EntryDirection = "OUT"
)

// StatementEntry is one applied balance effect on a single account, with the
// balance that resulted. Replaying an account's entries reconstructs its state.
type StatementEntry struct {
	AccountID     int64           `json:"account_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Kind          TransactionKind `json:"kind"`
	Direction     EntryDirection  `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Counterparty  int64           `json:"counterparty,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}
