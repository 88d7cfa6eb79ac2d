package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"queued-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	n, err := toNumeric(decimal.RequireFromString(s))
	require.NoError(t, err)
	return n
}

func newTestAccount(id int64, balance string) domain.Account {
	return domain.Account{
		ID:               id,
		Name:             "holder",
		Balance:          decimal.RequireFromString(balance),
		Age:              30,
		TransactionCount: 2,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func accountColumns() []string {
	return []string{"id", "name", "balance", "age", "transaction_count", "created_at"}
}

func TestAccountRepo_ReplaceAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(1001, "60.25")
	b := newTestAccount(1002, "40")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM accounts WHERE NOT").
		WithArgs([]int64{1001, 1002}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO accounts .+ ON CONFLICT").
		WithArgs(a.ID, a.Name, mustNumeric(t, "60.25"), a.Age, a.TransactionCount, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO accounts .+ ON CONFLICT").
		WithArgs(b.ID, b.Name, mustNumeric(t, "40"), b.Age, b.TransactionCount, b.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ReplaceAll(context.Background(), tx, []domain.Account{a, b})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ReplaceAll_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM accounts").
		WithArgs([]int64{}).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.ReplaceAll(context.Background(), tx, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ReplaceAll_UpsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount(1001, "1")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM accounts").
		WithArgs([]int64{1001}).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("check constraint violated"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ReplaceAll(context.Background(), tx, []domain.Account{a})
	assert.ErrorContains(t, err, "upsert account 1001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	created := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM accounts ORDER BY id").
		WillReturnRows(pgxmock.NewRows(accountColumns()).
			AddRow(int64(1001), "Alice", "100.1000", 30, 4, created).
			AddRow(int64(1002), "Bob", "0.0000", 12, 0, created))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1001), accounts[0].ID)
	assert.True(t, decimal.RequireFromString("100.1").Equal(accounts[0].Balance))
	assert.Equal(t, 4, accounts[0].TransactionCount)
	assert.Equal(t, 12, accounts[1].Age)
	assert.True(t, accounts[1].Balance.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_List_BadNumeric(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM accounts").
		WillReturnRows(pgxmock.NewRows(accountColumns()).
			AddRow(int64(1001), "Alice", "NaN", 30, 0, time.Now()))

	_, err = repo.List(context.Background())
	assert.Error(t, err)
}

func TestAccountRepo_List_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	mock.ExpectQuery("SELECT .+ FROM accounts").WillReturnError(errors.New("relation does not exist"))

	_, err = repo.List(context.Background())
	assert.ErrorContains(t, err, "list accounts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_SaveNextID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_meta .+ GREATEST").
		WithArgs(int64(1003)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.SaveNextID(context.Background(), tx, 1003))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_SaveNextID_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_meta").
		WithArgs(int64(1003)).
		WillReturnError(errors.New("relation does not exist"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.ErrorContains(t, repo.SaveNextID(context.Background(), tx, 1003), "save next account id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_NextID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT GREATEST.+ledger_meta.+journal_entries").
		WillReturnRows(pgxmock.NewRows([]string{"greatest"}).AddRow(int64(1003)))

	next, err := repo.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1003), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_NextID_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	mock.ExpectQuery("SELECT GREATEST").WillReturnError(errors.New("connection reset"))

	_, err = repo.NextID(context.Background())
	assert.ErrorContains(t, err, "read next account id")
	assert.NoError(t, mock.ExpectationsWereMet())
}
