package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultStatementSize is the number of entries returned by Statement when
// the caller does not ask for a specific count.
const DefaultStatementSize = 5

// LedgerOptions tunes the engine.
type LedgerOptions struct {
	AccountIDBase          int64
	Policy                 domain.RatePolicy
	ClearRedoOnNewActivity bool
	Clock                  func() time.Time
}

// DefaultLedgerOptions returns ids from 1001, the default tiering and redo
// invalidation on new activity.
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{
		AccountIDBase:          1001,
		Policy:                 domain.DefaultRatePolicy(),
		ClearRedoOnNewActivity: true,
		Clock:                  time.Now,
	}
}

// LedgerServiceImpl implements ports.LedgerService.
// Every exported method holds mu for its whole duration, so a
// dequeue-apply-push step is never observed half done.
type LedgerServiceImpl struct {
	mu         sync.Mutex
	accounts   map[int64]*domain.Account
	nextID     int64
	queue      *TransactionQueue
	history    *History
	statements map[int64][]domain.StatementEntry
	journal    []domain.StatementEntry
	limiter    ports.RateLimiter
	opts       LedgerOptions
	log        zerolog.Logger
}

var _ ports.LedgerService = (*LedgerServiceImpl)(nil)

// NewLedgerService creates an empty engine.
func NewLedgerService(limiter ports.RateLimiter, opts LedgerOptions, log zerolog.Logger) *LedgerServiceImpl {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &LedgerServiceImpl{
		accounts:   make(map[int64]*domain.Account),
		nextID:     opts.AccountIDBase,
		queue:      NewTransactionQueue(),
		history:    NewHistory(),
		statements: make(map[int64][]domain.StatementEntry),
		limiter:    limiter,
		opts:       opts,
		log:        log,
	}
}

// ==================== Accounts ====================

// CreateAccount assigns the next sequential id to a new account.
func (s *LedgerServiceImpl) CreateAccount(_ context.Context, name string, initialBalance decimal.Decimal, age int) (domain.Account, error) {
	if initialBalance.IsNegative() || !domain.ValidMoney(initialBalance) {
		return domain.Account{}, apperror.ErrInvalidAmount()
	}
	if age < 0 {
		return domain.Account{}, apperror.Validation("age must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := &domain.Account{
		ID:        s.nextID,
		Name:      name,
		Balance:   initialBalance,
		Age:       age,
		CreatedAt: s.opts.Clock().UTC(),
	}
	s.accounts[acc.ID] = acc
	s.nextID++

	s.log.Info().
		Int64("account_id", acc.ID).
		Str("balance", acc.Balance.String()).
		Int("age", acc.Age).
		Msg("account created")

	return *acc, nil
}

// DeleteAccount removes the account with its limiter window and statement.
// History entries that reference it are kept; replaying them reports NotFound.
func (s *LedgerServiceImpl) DeleteAccount(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return false
	}
	delete(s.accounts, id)
	delete(s.statements, id)

	if err := s.limiter.Reset(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("account_id", id).Msg("failed to clear rate limit window")
	}

	s.log.Info().Int64("account_id", id).Msg("account deleted")
	return true
}

// GetAccount returns a copy of the account.
func (s *LedgerServiceImpl) GetAccount(_ context.Context, id int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.findAccount(id)
	if err != nil {
		return domain.Account{}, err
	}
	return *acc, nil
}

// ListAccounts returns copies of every account ordered by id.
func (s *LedgerServiceImpl) ListAccounts(_ context.Context) []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedAccounts()
}

func (s *LedgerServiceImpl) findAccount(id int64) (*domain.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, apperror.ErrNotFound("account")
	}
	return acc, nil
}

func (s *LedgerServiceImpl) sortedAccounts() []domain.Account {
	out := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ==================== Direct balance operations ====================

// Deposit credits amount to account id. Direct operations are applied at
// once and never enter the undo history; only queued transactions that were
// processed can be undone.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, id int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.direct(s.deposit(ctx, domain.NewDeposit(id, amount)))
}

// Withdraw debits amount from account id.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.direct(s.withdraw(ctx, domain.NewWithdrawal(id, amount)))
}

// Transfer moves amount from one account to another. Only the source is
// charged against the rate limiter.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.direct(s.transfer(ctx, domain.NewTransfer(from, to, amount)))
}

// direct finishes a direct balance operation. Caller holds mu.
func (s *LedgerServiceImpl) direct(err error) error {
	if err == nil {
		s.invalidateRedo()
	}
	return err
}

func (s *LedgerServiceImpl) invalidateRedo() {
	if s.opts.ClearRedoOnNewActivity {
		s.history.ClearUndone()
	}
}

// deposit validates amount, account, resulting balance, then rate limit.
// Caller holds mu.
func (s *LedgerServiceImpl) deposit(ctx context.Context, t domain.Transaction) error {
	id, amount := t.Source, t.Amount
	if !domain.ValidAmount(amount) {
		return apperror.ErrInvalidAmount()
	}
	acc, err := s.findAccount(id)
	if err != nil {
		return err
	}
	if !domain.ValidMoney(acc.Balance.Add(amount)) {
		return apperror.ErrBalanceLimit()
	}
	if err := s.admit(ctx, acc); err != nil {
		return err
	}

	acc.Credit(amount)
	s.record(acc, t, domain.DirectionIn, 0)

	s.log.Info().
		Int64("account_id", id).
		Str("amount", amount.String()).
		Str("kind", string(domain.TransactionKindDeposit)).
		Msg("deposit applied")
	return nil
}

// withdraw validates amount, account, funds, then rate limit so a rejected
// call never consumes a limiter slot. Caller holds mu.
func (s *LedgerServiceImpl) withdraw(ctx context.Context, t domain.Transaction) error {
	id, amount := t.Source, t.Amount
	if !domain.ValidAmount(amount) {
		return apperror.ErrInvalidAmount()
	}
	acc, err := s.findAccount(id)
	if err != nil {
		return err
	}
	if !acc.CanCover(amount) {
		s.log.Warn().
			Int64("account_id", id).
			Str("amount", amount.String()).
			Str("balance", acc.Balance.String()).
			Msg("insufficient funds")
		return apperror.ErrInsufficientFunds()
	}
	if err := s.admit(ctx, acc); err != nil {
		return err
	}

	acc.Debit(amount)
	s.record(acc, t, domain.DirectionOut, 0)

	s.log.Info().
		Int64("account_id", id).
		Str("amount", amount.String()).
		Str("kind", string(domain.TransactionKindWithdraw)).
		Msg("withdrawal applied")
	return nil
}

// transfer mutates both sides only after every check passed. Caller holds mu.
func (s *LedgerServiceImpl) transfer(ctx context.Context, t domain.Transaction) error {
	from, to, amount := t.Source, t.Target, t.Amount
	if !domain.ValidAmount(amount) {
		return apperror.ErrInvalidAmount()
	}
	src, err := s.findAccount(from)
	if err != nil {
		return err
	}
	dst, err := s.findAccount(to)
	if err != nil {
		return err
	}
	if from == to {
		return apperror.ErrSameAccount()
	}
	if !src.CanCover(amount) {
		s.log.Warn().
			Int64("account_id", from).
			Str("amount", amount.String()).
			Str("balance", src.Balance.String()).
			Msg("insufficient funds")
		return apperror.ErrInsufficientFunds()
	}
	if !domain.ValidMoney(dst.Balance.Add(amount)) {
		return apperror.ErrBalanceLimit()
	}
	if err := s.admit(ctx, src); err != nil {
		return err
	}

	src.Debit(amount)
	dst.Credit(amount)
	s.record(src, t, domain.DirectionOut, to)
	s.record(dst, t, domain.DirectionIn, from)

	s.log.Info().
		Int64("account_id", from).
		Int64("target_account_id", to).
		Str("amount", amount.String()).
		Str("kind", string(domain.TransactionKindTransfer)).
		Msg("transfer applied")
	return nil
}

// admit consumes one limiter slot for acc. A limiter failure rejects the
// operation.
func (s *LedgerServiceImpl) admit(ctx context.Context, acc *domain.Account) error {
	limit := s.opts.Policy.LimitFor(acc.Age)
	ok, err := s.limiter.TryRecord(ctx, acc.ID, limit)
	if err != nil {
		s.log.Error().Err(err).Int64("account_id", acc.ID).Msg("rate limiter unavailable")
		return apperror.ErrRateLimiterUnavailable(err)
	}
	if !ok {
		s.log.Warn().
			Int64("account_id", acc.ID).
			Int("limit", limit).
			Bool("minor", acc.IsMinor(s.opts.Policy.AdultAge)).
			Msg("daily transaction limit reached")
		return apperror.ErrRateLimited()
	}
	return nil
}

func (s *LedgerServiceImpl) record(acc *domain.Account, t domain.Transaction, dir domain.EntryDirection, counterparty int64) {
	entry := domain.StatementEntry{
		AccountID:     acc.ID,
		TransactionID: t.ID,
		Kind:          t.Kind,
		Direction:     dir,
		Amount:        t.Amount,
		BalanceAfter:  acc.Balance,
		Counterparty:  counterparty,
		Timestamp:     s.opts.Clock().UTC(),
	}
	s.statements[acc.ID] = append(s.statements[acc.ID], entry)
	s.journal = append(s.journal, entry)
}

// ==================== Queue processing ====================

// EnqueueTransaction stamps a missing id or timestamp and queues t.
func (s *LedgerServiceImpl) EnqueueTransaction(_ context.Context, t domain.Transaction) domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = s.opts.Clock().UTC()
	}
	s.queue.Enqueue(t)

	s.log.Debug().
		Str("tx_id", t.ID.String()).
		Str("kind", string(t.Kind)).
		Int("pending", s.queue.Len()).
		Msg("transaction enqueued")
	return t
}

// PendingTransactions returns the queue in arrival order.
func (s *LedgerServiceImpl) PendingTransactions(_ context.Context) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.Pending()
}

// ProcessNext dequeues and applies one transaction. A failed transaction is
// dropped, not re-queued.
func (s *LedgerServiceImpl) ProcessNext(ctx context.Context) domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.processNext(ctx)
}

// ProcessAll drains the queue. Failures do not halt processing.
func (s *LedgerServiceImpl) ProcessAll(ctx context.Context) []domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomes := make([]domain.Outcome, 0, s.queue.Len())
	for !s.queue.IsEmpty() {
		outcomes = append(outcomes, s.processNext(ctx))
	}
	return outcomes
}

func (s *LedgerServiceImpl) processNext(ctx context.Context) domain.Outcome {
	if s.queue.IsEmpty() {
		return domain.Failed("No pending transactions.", nil, apperror.ErrEmptyQueue())
	}
	t := s.queue.MustDequeue()

	err := s.apply(ctx, t)
	if err != nil {
		s.log.Warn().Err(err).
			Str("tx_id", t.ID.String()).
			Str("kind", string(t.Kind)).
			Ints64("accounts", t.Accounts()).
			Msg("queued transaction failed")
		return domain.Failed(processMessage(t, false), &t, err)
	}

	s.history.PushDone(t)
	s.invalidateRedo()
	s.log.Info().
		Str("tx_id", t.ID.String()).
		Str("kind", string(t.Kind)).
		Ints64("accounts", t.Accounts()).
		Msg("queued transaction processed")
	return domain.Succeeded(processMessage(t, true), t)
}

// apply runs t through the validated balance operations. Caller holds mu.
func (s *LedgerServiceImpl) apply(ctx context.Context, t domain.Transaction) error {
	switch t.Kind {
	case domain.TransactionKindDeposit:
		return s.deposit(ctx, t)
	case domain.TransactionKindWithdraw:
		return s.withdraw(ctx, t)
	case domain.TransactionKindTransfer:
		return s.transfer(ctx, t)
	}
	return apperror.Validation(fmt.Sprintf("unknown transaction kind %q", t.Kind))
}

// ==================== Undo / Redo ====================

// UndoLast reverses the most recently applied transaction by applying its
// inverse. On failure the transaction stays on the done stack.
func (s *LedgerServiceImpl) UndoLast(ctx context.Context) domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.history.PopDone()
	if !ok {
		return domain.Failed("No transaction to undo.", nil, apperror.ErrEmptyHistory("undo"))
	}

	if err := s.apply(ctx, t.Inverse()); err != nil {
		s.history.PushDone(t)
		s.log.Warn().Err(err).Str("tx_id", t.ID.String()).Msg("undo failed")
		return domain.Failed(undoMessage(t, false), &t, err)
	}

	s.history.PushUndone(t)
	s.log.Info().Str("tx_id", t.ID.String()).Str("kind", string(t.Kind)).Msg("transaction undone")
	return domain.Succeeded(undoMessage(t, true), t)
}

// RedoLast reapplies the most recently undone transaction. On failure the
// transaction stays on the undone stack.
func (s *LedgerServiceImpl) RedoLast(ctx context.Context) domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.history.PopUndone()
	if !ok {
		return domain.Failed("No transaction to redo.", nil, apperror.ErrEmptyHistory("redo"))
	}

	if err := s.apply(ctx, t); err != nil {
		s.history.PushUndone(t)
		s.log.Warn().Err(err).Str("tx_id", t.ID.String()).Msg("redo failed")
		return domain.Failed(redoMessage(t, false), &t, err)
	}

	s.history.PushDone(t)
	s.log.Info().Str("tx_id", t.ID.String()).Str("kind", string(t.Kind)).Msg("transaction redone")
	return domain.Succeeded(redoMessage(t, true), t)
}

// HistoryDepth returns the sizes of the done and undone stacks.
func (s *LedgerServiceImpl) HistoryDepth(_ context.Context) (done int, undone int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.Depth()
}

// ==================== Rate limit & statements ====================

// RemainingTransactions returns how many more operations account id may
// perform inside the current window.
func (s *LedgerServiceImpl) RemainingTransactions(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.findAccount(id)
	if err != nil {
		return 0, err
	}
	count, err := s.limiter.Count(ctx, id)
	if err != nil {
		return 0, apperror.ErrRateLimiterUnavailable(err)
	}
	remaining := s.opts.Policy.LimitFor(acc.Age) - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetRateLimit clears the limiter window for account id.
func (s *LedgerServiceImpl) ResetRateLimit(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findAccount(id); err != nil {
		return err
	}
	if err := s.limiter.Reset(ctx, id); err != nil {
		return apperror.ErrRateLimiterUnavailable(err)
	}
	s.log.Info().Int64("account_id", id).Msg("rate limit window reset")
	return nil
}

// Statement returns the last limit entries of account id, newest first.
// A non-positive limit selects DefaultStatementSize.
func (s *LedgerServiceImpl) Statement(_ context.Context, id int64, limit int) ([]domain.StatementEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findAccount(id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultStatementSize
	}

	entries := s.statements[id]
	n := min(limit, len(entries))
	out := make([]domain.StatementEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// ==================== Snapshot ====================

// Snapshot returns a copy of the account set and the next id.
func (s *LedgerServiceImpl) Snapshot(_ context.Context) domain.LedgerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.LedgerSnapshot{
		NextID:   s.nextID,
		Accounts: s.sortedAccounts(),
	}
}

// Restore replaces the account set. Queue, history, statements and the
// journal start empty; the next id never reuses a restored id.
func (s *LedgerServiceImpl) Restore(_ context.Context, snap domain.LedgerSnapshot) error {
	accounts := make(map[int64]*domain.Account, len(snap.Accounts))
	nextID := max(snap.NextID, s.opts.AccountIDBase)
	for i := range snap.Accounts {
		acc := snap.Accounts[i]
		if acc.Balance.IsNegative() {
			return apperror.Validation(fmt.Sprintf("account %d has a negative balance", acc.ID))
		}
		if !domain.ValidMoney(acc.Balance) {
			return apperror.Validation(fmt.Sprintf("account %d balance is not a storable amount", acc.ID))
		}
		if acc.Age < 0 {
			return apperror.Validation(fmt.Sprintf("account %d has a negative age", acc.ID))
		}
		if _, dup := accounts[acc.ID]; dup {
			return apperror.Validation(fmt.Sprintf("duplicate account id %d", acc.ID))
		}
		accounts[acc.ID] = &acc
		nextID = max(nextID, acc.ID+1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = accounts
	s.nextID = nextID
	s.queue.Clear()
	s.history.Clear()
	s.statements = make(map[int64][]domain.StatementEntry)
	s.journal = nil

	s.log.Info().Int("accounts", len(accounts)).Int64("next_id", nextID).Msg("ledger restored")
	return nil
}

// JournalSince returns the statement entries appended after offset and the
// offset to pass next time.
func (s *LedgerServiceImpl) JournalSince(_ context.Context, offset int) ([]domain.StatementEntry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset = min(max(offset, 0), len(s.journal))
	out := make([]domain.StatementEntry, len(s.journal)-offset)
	copy(out, s.journal[offset:])
	return out, len(s.journal)
}

// ==================== Messages ====================

func processMessage(t domain.Transaction, ok bool) string {
	switch t.Kind {
	case domain.TransactionKindDeposit:
		if ok {
			return fmt.Sprintf("Deposited %s to account %d", t.Amount, t.Source)
		}
		return fmt.Sprintf("Failed deposit of %s to account %d", t.Amount, t.Source)
	case domain.TransactionKindWithdraw:
		if ok {
			return fmt.Sprintf("Withdrew %s from account %d", t.Amount, t.Source)
		}
		return fmt.Sprintf("Failed withdrawal of %s from account %d", t.Amount, t.Source)
	case domain.TransactionKindTransfer:
		if ok {
			return fmt.Sprintf("Transferred %s from account %d to account %d", t.Amount, t.Source, t.Target)
		}
		return fmt.Sprintf("Failed transfer of %s from account %d to account %d", t.Amount, t.Source, t.Target)
	}
	return "Unknown transaction type."
}

func undoMessage(t domain.Transaction, ok bool) string {
	prefix := "Failed to undo "
	if ok {
		prefix = "Undid "
	}
	switch t.Kind {
	case domain.TransactionKindDeposit:
		return fmt.Sprintf("%sdeposit of %s from account %d", prefix, t.Amount, t.Source)
	case domain.TransactionKindWithdraw:
		return fmt.Sprintf("%swithdrawal of %s to account %d", prefix, t.Amount, t.Source)
	case domain.TransactionKindTransfer:
		return fmt.Sprintf("%stransfer of %s from account %d to account %d", prefix, t.Amount, t.Target, t.Source)
	}
	return "Unknown transaction type."
}

func redoMessage(t domain.Transaction, ok bool) string {
	prefix := "Failed to redo "
	if ok {
		prefix = "Redid "
	}
	switch t.Kind {
	case domain.TransactionKindDeposit:
		return fmt.Sprintf("%sdeposit of %s to account %d", prefix, t.Amount, t.Source)
	case domain.TransactionKindWithdraw:
		return fmt.Sprintf("%swithdrawal of %s from account %d", prefix, t.Amount, t.Source)
	case domain.TransactionKindTransfer:
		return fmt.Sprintf("%stransfer of %s from account %d to account %d", prefix, t.Amount, t.Source, t.Target)
	}
	return "Unknown transaction type."
}
