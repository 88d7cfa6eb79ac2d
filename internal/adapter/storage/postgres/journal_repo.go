package postgres

import (
	"context"
	"fmt"

	"queued-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

var journalColumns = []string{
	"account_id", "transaction_id", "kind", "direction",
	"amount", "balance_after", "counterparty", "occurred_at",
}

// JournalRepo implements ports.JournalRepository.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Append bulk-inserts entries with COPY inside tx.
func (r *JournalRepo) Append(ctx context.Context, tx pgx.Tx, entries []domain.StatementEntry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		amount, err := toNumeric(e.Amount)
		if err != nil {
			return err
		}
		balanceAfter, err := toNumeric(e.BalanceAfter)
		if err != nil {
			return err
		}
		var counterparty *int64
		if e.Counterparty != 0 {
			cp := e.Counterparty
			counterparty = &cp
		}
		rows = append(rows, []any{
			e.AccountID, e.TransactionID, string(e.Kind), string(e.Direction),
			amount, balanceAfter, counterparty, e.Timestamp,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"journal_entries"}, journalColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy journal entries: %w", err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy journal entries: wrote %d of %d rows", n, len(rows))
	}
	return nil
}

// ListByAccount returns the newest limit entries for accountID, newest first.
func (r *JournalRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error) {
	query := `SELECT account_id, transaction_id, kind, direction, amount::text, balance_after::text,
		COALESCE(counterparty, 0), occurred_at
		FROM journal_entries WHERE account_id = $1
		ORDER BY occurred_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatementEntry
	for rows.Next() {
		var (
			e                    domain.StatementEntry
			kind, direction      string
			amount, balanceAfter string
		)
		if err := rows.Scan(&e.AccountID, &e.TransactionID, &kind, &direction,
			&amount, &balanceAfter, &e.Counterparty, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Kind = domain.TransactionKind(kind)
		e.Direction = domain.EntryDirection(direction)
		if e.Amount, err = fromNumericText(amount); err != nil {
			return nil, err
		}
		if e.BalanceAfter, err = fromNumericText(balanceAfter); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}
