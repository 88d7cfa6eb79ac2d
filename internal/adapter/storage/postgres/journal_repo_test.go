package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"queued-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntries() []domain.StatementEntry {
	txID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return []domain.StatementEntry{
		{
			AccountID: 1001, TransactionID: txID, Kind: domain.TransactionKindTransfer,
			Direction: domain.DirectionOut, Amount: decimal.RequireFromString("40"),
			BalanceAfter: decimal.RequireFromString("60"), Counterparty: 1002, Timestamp: now,
		},
		{
			AccountID: 1002, TransactionID: txID, Kind: domain.TransactionKindTransfer,
			Direction: domain.DirectionIn, Amount: decimal.RequireFromString("40"),
			BalanceAfter: decimal.RequireFromString("40"), Counterparty: 1001, Timestamp: now,
		},
	}
}

func TestJournalRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"journal_entries"}, journalColumns).
		WillReturnResult(2)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Append(context.Background(), tx, newTestEntries()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRepo_Append_ShortWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"journal_entries"}, journalColumns).
		WillReturnResult(1)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, newTestEntries())
	assert.ErrorContains(t, err, "wrote 1 of 2 rows")
}

func TestJournalRepo_Append_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"journal_entries"}, journalColumns).
		WillReturnError(errors.New("connection reset"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, newTestEntries())
	assert.ErrorContains(t, err, "copy journal entries")
}

func TestJournalRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewJournalRepo(mock)
	txID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	cols := []string{"account_id", "transaction_id", "kind", "direction", "amount", "balance_after", "counterparty", "occurred_at"}
	mock.ExpectQuery("SELECT .+ FROM journal_entries WHERE account_id .+ LIMIT").
		WithArgs(int64(1001), 5).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1001), txID, "TRANSFER", "OUT", "40.0000", "60.0000", int64(1002), now).
			AddRow(int64(1001), txID, "DEPOSIT", "IN", "10.0000", "100.0000", int64(0), now))

	entries, err := repo.ListByAccount(context.Background(), 1001, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.TransactionKindTransfer, entries[0].Kind)
	assert.Equal(t, domain.DirectionOut, entries[0].Direction)
	assert.Equal(t, int64(1002), entries[0].Counterparty)
	assert.True(t, decimal.RequireFromString("60").Equal(entries[0].BalanceAfter))
	assert.Equal(t, int64(0), entries[1].Counterparty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
