package postgres

import (
	"context"
	"errors"
	"testing"

	"queued-ledger/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.AccountRepository = (*AccountRepo)(nil)
	_ ports.JournalRepository = (*JournalRepo)(nil)
	_ ports.DBTransactor      = (*Transactor)(nil)
	_ ports.HealthChecker     = (*HealthCheck)(nil)
)

func TestTransactor_Begin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(snapshotTxOptions)
	mock.ExpectCommit()

	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectExec("SELECT 1 FROM journal_entries").WillReturnResult(pgxmock.NewResult("SELECT", 0))
	assert.NoError(t, hc.Ping(context.Background()))

	mock.ExpectExec("SELECT 1 FROM journal_entries").
		WillReturnError(errors.New(`relation "journal_entries" does not exist`))
	assert.ErrorContains(t, hc.Ping(context.Background()), "postgres ping")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	assert.NoError(t, Migrate(context.Background(), mock))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	assert.ErrorContains(t, Migrate(context.Background(), mock), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}
