package service

import (
	"context"
	"fmt"
	"sync"

	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// PersistenceServiceImpl implements ports.PersistenceService on top of the
// account and journal repositories.
type PersistenceServiceImpl struct {
	ledger      ports.LedgerService
	accountRepo ports.AccountRepository
	journalRepo ports.JournalRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger

	mu     sync.Mutex
	offset int // journal entries already written
}

// NewPersistenceService creates a new PersistenceServiceImpl.
func NewPersistenceService(
	ledger ports.LedgerService,
	accountRepo ports.AccountRepository,
	journalRepo ports.JournalRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PersistenceServiceImpl {
	return &PersistenceServiceImpl{
		ledger:      ledger,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Save writes the account snapshot and every journal entry not yet saved in
// one database transaction. The journal is read before the snapshot, so a
// concurrent mutation lands in the next save rather than being lost.
func (s *PersistenceServiceImpl) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, next := s.ledger.JournalSince(ctx, s.offset)
	snap := s.ledger.Snapshot(ctx)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.accountRepo.ReplaceAll(ctx, dbTx, snap.Accounts); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("replace accounts: %w", err))
	}
	if err := s.accountRepo.SaveNextID(ctx, dbTx, snap.NextID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("save next id: %w", err))
	}
	if len(entries) > 0 {
		if err := s.journalRepo.Append(ctx, dbTx, entries); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("append journal: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	s.offset = next

	s.log.Info().
		Int("accounts", len(snap.Accounts)).
		Int("journal_entries", len(entries)).
		Msg("ledger saved")
	return nil
}

// Load restores the engine from the stored account set. Ids of accounts
// deleted before the last save are not handed out again.
func (s *PersistenceServiceImpl) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("list accounts: %w", err))
	}
	nextID, err := s.accountRepo.NextID(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("read next id: %w", err))
	}
	if err := s.ledger.Restore(ctx, domain.LedgerSnapshot{NextID: nextID, Accounts: accounts}); err != nil {
		return err
	}
	s.offset = 0

	s.log.Info().Int("accounts", len(accounts)).Int64("next_id", nextID).Msg("ledger loaded")
	return nil
}

// ArchivedStatement returns the newest limit saved journal entries of
// accountID. Entries not yet saved are not included.
func (s *PersistenceServiceImpl) ArchivedStatement(ctx context.Context, accountID int64, limit int) ([]domain.StatementEntry, error) {
	if limit <= 0 {
		limit = DefaultStatementSize
	}
	entries, err := s.journalRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list journal: %w", err))
	}
	return entries, nil
}
