package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                BIGINT PRIMARY KEY,
	name              TEXT NOT NULL,
	balance           NUMERIC(20, 4) NOT NULL CHECK (balance >= 0),
	age               INTEGER NOT NULL CHECK (age >= 0),
	transaction_count INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id             BIGSERIAL PRIMARY KEY,
	account_id     BIGINT NOT NULL,
	transaction_id UUID NOT NULL,
	kind           TEXT NOT NULL,
	direction      TEXT NOT NULL,
	amount         NUMERIC(20, 4) NOT NULL,
	balance_after  NUMERIC(20, 4) NOT NULL,
	counterparty   BIGINT,
	occurred_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_meta (
	id              SMALLINT PRIMARY KEY CHECK (id = 1),
	next_account_id BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_account ON journal_entries (account_id, occurred_at DESC);

CREATE TABLE IF NOT EXISTS audit_logs (
	id            UUID PRIMARY KEY,
	action        TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT,
	details       JSONB,
	ip_address    TEXT,
	created_at    TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the ledger tables if they do not exist.
func Migrate(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
