package postgres

import (
	"context"
	"fmt"

	"queued-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// ReplaceAll makes the accounts table mirror accounts: rows for missing ids
// are deleted, the rest are upserted. Must run inside tx.
func (r *AccountRepo) ReplaceAll(ctx context.Context, tx pgx.Tx, accounts []domain.Account) error {
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("delete stale accounts: %w", err)
	}

	query := `INSERT INTO accounts (id, name, balance, age, transaction_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			balance = EXCLUDED.balance,
			age = EXCLUDED.age,
			transaction_count = EXCLUDED.transaction_count`

	for _, a := range accounts {
		balance, err := toNumeric(a.Balance)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, a.ID, a.Name, balance, a.Age, a.TransactionCount, a.CreatedAt); err != nil {
			return fmt.Errorf("upsert account %d: %w", a.ID, err)
		}
	}
	return nil
}

// List returns every stored account ordered by id.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT id, name, balance::text, age, transaction_count, created_at
		FROM accounts ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var (
			a       domain.Account
			balance string
		)
		if err := rows.Scan(&a.ID, &a.Name, &balance, &a.Age, &a.TransactionCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.Balance, err = fromNumericText(balance); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// SaveNextID records the id counter. The stored value never moves backwards.
// Must run inside tx.
func (r *AccountRepo) SaveNextID(ctx context.Context, tx pgx.Tx, nextID int64) error {
	query := `INSERT INTO ledger_meta (id, next_account_id) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			next_account_id = GREATEST(ledger_meta.next_account_id, EXCLUDED.next_account_id)`

	if _, err := tx.Exec(ctx, query, nextID); err != nil {
		return fmt.Errorf("save next account id: %w", err)
	}
	return nil
}

// NextID returns the stored id counter, raised past every account id seen in
// the journal. Zero means nothing was ever saved.
func (r *AccountRepo) NextID(ctx context.Context) (int64, error) {
	query := `SELECT GREATEST(
			COALESCE((SELECT next_account_id FROM ledger_meta WHERE id = 1), 0),
			COALESCE((SELECT MAX(account_id) + 1 FROM journal_entries), 0))`

	var next int64
	if err := r.pool.QueryRow(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("read next account id: %w", err)
	}
	return next, nil
}
