package ports

import (
	"context"
	"time"

	"queued-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RateLimiter counts balance operations per account over a trailing window.
type RateLimiter interface {
	// TryRecord purges stale entries, then records one event if fewer than
	// limit remain. It returns false without recording otherwise.
	TryRecord(ctx context.Context, accountID int64, limit int) (bool, error)
	// Count returns the number of events inside the current window.
	Count(ctx context.Context, accountID int64) (int, error)
	// Reset clears the window for accountID.
	Reset(ctx context.Context, accountID int64) error
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the transaction-processing engine.
type LedgerService interface {
	CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal, age int) (domain.Account, error)
	DeleteAccount(ctx context.Context, id int64) bool
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	ListAccounts(ctx context.Context) []domain.Account

	Deposit(ctx context.Context, id int64, amount decimal.Decimal) error
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) error
	Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) error

	EnqueueTransaction(ctx context.Context, t domain.Transaction) domain.Transaction
	PendingTransactions(ctx context.Context) []domain.Transaction
	ProcessNext(ctx context.Context) domain.Outcome
	ProcessAll(ctx context.Context) []domain.Outcome
	UndoLast(ctx context.Context) domain.Outcome
	RedoLast(ctx context.Context) domain.Outcome
	HistoryDepth(ctx context.Context) (done int, undone int)

	RemainingTransactions(ctx context.Context, id int64) (int, error)
	ResetRateLimit(ctx context.Context, id int64) error
	Statement(ctx context.Context, id int64, limit int) ([]domain.StatementEntry, error)

	Snapshot(ctx context.Context) domain.LedgerSnapshot
	Restore(ctx context.Context, snap domain.LedgerSnapshot) error
	// JournalSince returns statement entries appended after the given
	// journal offset together with the new offset.
	JournalSince(ctx context.Context, offset int) ([]domain.StatementEntry, int)
}

// PersistenceService saves and loads engine state.
type PersistenceService interface {
	Save(ctx context.Context) error
	Load(ctx context.Context) error
	// ArchivedStatement reads saved journal entries for an account, newest
	// first. Unlike LedgerService.Statement it survives restarts.
	ArchivedStatement(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error)
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
