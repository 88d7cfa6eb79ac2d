package ports

import (
	"context"

	"queued-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepository persists the account set as a whole.
// ReplaceAll and SaveNextID run inside the caller's transaction so the
// snapshot and its journal entries commit together.
type AccountRepository interface {
	ReplaceAll(ctx context.Context, tx pgx.Tx, accounts []domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
	SaveNextID(ctx context.Context, tx pgx.Tx, nextID int64) error
	// NextID returns the lowest id never handed out, including ids of
	// deleted accounts that still own journal entries.
	NextID(ctx context.Context) (int64, error)
}

// JournalRepository stores applied statement entries in append-only form.
type JournalRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entries []domain.StatementEntry) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
