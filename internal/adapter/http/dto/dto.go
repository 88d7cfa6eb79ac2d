package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest is the request body for opening an account.
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,max=100,account_name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Age            *int            `json:"age" binding:"required,gte=0,lte=150"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the request body for a direct transfer.
type TransferRequest struct {
	From   int64           `json:"from" binding:"required,gt=0"`
	To     int64           `json:"to" binding:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

// EnqueueRequest is the request body for queuing a transaction.
// Target is required for transfers only.
type EnqueueRequest struct {
	Kind   string          `json:"kind" binding:"required,txn_kind"`
	Source int64           `json:"source" binding:"required,gt=0"`
	Target int64           `json:"target" binding:"omitempty,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

// AccountResponse is the response body for account reads.
type AccountResponse struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Balance               string `json:"balance"`
	Age                   int    `json:"age"`
	Minor                 bool   `json:"minor"`
	TransactionCount      int    `json:"transaction_count"`
	RemainingTransactions *int   `json:"remaining_transactions,omitempty"`
	CreatedAt             string `json:"created_at"`
}

// TransactionResponse is the response body for a queued or applied transaction.
type TransactionResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Source    int64  `json:"source"`
	Target    int64  `json:"target,omitempty"`
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// OutcomeResponse reports the result of process, undo and redo calls.
type OutcomeResponse struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// ProcessAllResponse wraps the outcomes of draining the queue.
type ProcessAllResponse struct {
	Outcomes  []OutcomeResponse `json:"outcomes"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// QueueResponse lists pending transactions in arrival order.
type QueueResponse struct {
	Pending      int                   `json:"pending"`
	Transactions []TransactionResponse `json:"transactions"`
}

// HistoryResponse reports the undo and redo stack depths.
type HistoryResponse struct {
	Undoable int `json:"undoable"`
	Redoable int `json:"redoable"`
}

// StatementEntryResponse is one line of a mini-statement.
type StatementEntryResponse struct {
	TransactionID string `json:"transaction_id"`
	Kind          string `json:"kind"`
	Direction     string `json:"direction"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
	Counterparty  int64  `json:"counterparty,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// StatementResponse wraps an account's mini-statement.
type StatementResponse struct {
	AccountID int64                    `json:"account_id"`
	Source    string                   `json:"source"` // memory, archive
	Entries   []StatementEntryResponse `json:"entries"`
}

// SnapshotResponse is returned after a manual save.
type SnapshotResponse struct {
	Accounts int    `json:"accounts"`
	SavedAt  string `json:"saved_at"`
}
