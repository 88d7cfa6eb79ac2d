package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"queued-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore stands in for the PostgreSQL tables. Writes land only when the
// staging transaction commits, so a failed save leaves it untouched.
type memStore struct {
	mu         sync.Mutex
	accounts   map[int64]domain.Account
	journal    []domain.StatementEntry
	nextID     int64
	commits    int
	failAppend bool
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[int64]domain.Account)}
}

func (s *memStore) journalLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.journal)
}

func (s *memStore) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *memStore) setFailAppend(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAppend = fail
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	store *memStore
}

func (r *inMemoryAccountRepo) ReplaceAll(_ context.Context, tx pgx.Tx, accounts []domain.Account) error {
	mtx, err := asMemTx(tx)
	if err != nil {
		return err
	}
	mtx.accounts = append([]domain.Account(nil), accounts...)
	mtx.replace = true
	return nil
}

func (r *inMemoryAccountRepo) List(_ context.Context) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryAccountRepo) SaveNextID(_ context.Context, tx pgx.Tx, nextID int64) error {
	mtx, err := asMemTx(tx)
	if err != nil {
		return err
	}
	mtx.nextID = nextID
	return nil
}

// NextID mirrors the SQL: the stored counter or one past the highest
// journaled account id, whichever is larger.
func (r *inMemoryAccountRepo) NextID(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	next := r.store.nextID
	for _, e := range r.store.journal {
		next = max(next, e.AccountID+1)
	}
	return next, nil
}

// --- In-Memory Journal Repo ---

type inMemoryJournalRepo struct {
	store *memStore
}

func (r *inMemoryJournalRepo) Append(_ context.Context, tx pgx.Tx, entries []domain.StatementEntry) error {
	mtx, err := asMemTx(tx)
	if err != nil {
		return err
	}
	r.store.mu.Lock()
	fail := r.store.failAppend
	r.store.mu.Unlock()
	if fail {
		return errors.New("journal_entries: disk full")
	}
	mtx.entries = append(mtx.entries, entries...)
	return nil
}

func (r *inMemoryJournalRepo) ListByAccount(_ context.Context, accountID int64, limit int) ([]domain.StatementEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []domain.StatementEntry
	for i := len(r.store.journal) - 1; i >= 0 && len(out) < limit; i-- {
		if r.store.journal[i].AccountID == accountID {
			out = append(out, r.store.journal[i])
		}
	}
	return out, nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct {
	store *memStore
}

func (t *inMemoryTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	return &memTx{store: t.store}, nil
}

// memTx stages repository writes until Commit.
type memTx struct {
	noopTx
	store    *memStore
	replace  bool
	accounts []domain.Account
	entries  []domain.StatementEntry
	nextID   int64
	closed   bool
}

func asMemTx(tx pgx.Tx) (*memTx, error) {
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}
	if mtx.closed {
		return nil, pgx.ErrTxClosed
	}
	return mtx, nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.replace {
		t.store.accounts = make(map[int64]domain.Account, len(t.accounts))
		for _, a := range t.accounts {
			t.store.accounts[a.ID] = a
		}
	}
	t.store.journal = append(t.store.journal, t.entries...)
	t.store.nextID = max(t.store.nextID, t.nextID)
	t.store.commits++
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	return nil
}

// noopTx fills in the rest of pgx.Tx.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errors.New("nested tx not supported") }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
