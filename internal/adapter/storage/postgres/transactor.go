package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// snapshotTxOptions gives Save one consistent view while it replaces the
// account table and appends to the journal.
var snapshotTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// Transactor implements ports.DBTransactor. Save uses it to write the
// account snapshot and journal in one transaction.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.BeginTx(ctx, snapshotTxOptions)
}
