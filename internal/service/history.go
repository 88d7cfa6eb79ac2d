package service

import "queued-ledger/internal/core/domain"

type stack[T any] struct {
	items []T
}

func (s *stack[T]) push(v T) {
	s.items = append(s.items, v)
}

func (s *stack[T]) pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *stack[T]) len() int { return len(s.items) }

func (s *stack[T]) clear() { s.items = nil }

// History holds the undo (done) and redo (undone) stacks of applied
// transactions. It is not safe for concurrent use.
type History struct {
	done   stack[domain.Transaction]
	undone stack[domain.Transaction]
}

// NewHistory creates empty undo/redo stacks.
func NewHistory() *History {
	return &History{}
}

func (h *History) PushDone(t domain.Transaction)   { h.done.push(t) }
func (h *History) PushUndone(t domain.Transaction) { h.undone.push(t) }

// PopDone removes the most recently applied transaction.
func (h *History) PopDone() (domain.Transaction, bool) { return h.done.pop() }

// PopUndone removes the most recently undone transaction.
func (h *History) PopUndone() (domain.Transaction, bool) { return h.undone.pop() }

// ClearUndone drops every redo candidate.
func (h *History) ClearUndone() { h.undone.clear() }

// Clear drops both stacks.
func (h *History) Clear() {
	h.done.clear()
	h.undone.clear()
}

// Depth returns the sizes of the done and undone stacks.
func (h *History) Depth() (done int, undone int) {
	return h.done.len(), h.undone.len()
}
