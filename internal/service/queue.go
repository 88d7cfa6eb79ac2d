package service

import (
	"queued-ledger/internal/core/domain"
	"queued-ledger/pkg/apperror"
)

// TransactionQueue is a FIFO of transactions awaiting execution.
// It is not safe for concurrent use; the engine serializes access.
type TransactionQueue struct {
	items []domain.Transaction
	head  int
}

// NewTransactionQueue creates an empty queue.
func NewTransactionQueue() *TransactionQueue {
	return &TransactionQueue{}
}

// Enqueue appends t at the tail.
func (q *TransactionQueue) Enqueue(t domain.Transaction) {
	q.items = append(q.items, t)
}

// Dequeue removes and returns the head, or EmptyQueue.
func (q *TransactionQueue) Dequeue() (domain.Transaction, error) {
	if q.IsEmpty() {
		return domain.Transaction{}, apperror.ErrEmptyQueue()
	}
	t := q.items[q.head]
	q.items[q.head] = domain.Transaction{}
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 32 && q.head*2 >= len(q.items) {
		q.items = append([]domain.Transaction(nil), q.items[q.head:]...)
		q.head = 0
	}
	return t, nil
}

// MustDequeue is Dequeue for callers that already checked IsEmpty.
// It panics on an empty queue.
func (q *TransactionQueue) MustDequeue() domain.Transaction {
	t, err := q.Dequeue()
	if err != nil {
		panic("transaction queue: dequeue from empty queue")
	}
	return t
}

// IsEmpty reports whether no transactions are pending.
func (q *TransactionQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending transactions.
func (q *TransactionQueue) Len() int {
	return len(q.items) - q.head
}

// Pending returns a copy of the queue in arrival order.
func (q *TransactionQueue) Pending() []domain.Transaction {
	out := make([]domain.Transaction, q.Len())
	copy(out, q.items[q.head:])
	return out
}

// Clear drops every pending transaction.
func (q *TransactionQueue) Clear() {
	q.items = nil
	q.head = 0
}
