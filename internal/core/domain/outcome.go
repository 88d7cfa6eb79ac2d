package domain

// Outcome reports a single queue, undo or redo step. Failed steps carry the
// cause in Err; Message is always set and meant for the caller to surface.
type Outcome struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Err         error        `json:"-"`
}

// Succeeded builds a successful outcome for t.
func Succeeded(msg string, t Transaction) Outcome {
	return Outcome{Success: true, Message: msg, Transaction: &t}
}

// Failed builds a failed outcome. t may be nil when nothing was dequeued or popped.
func Failed(msg string, t *Transaction, err error) Outcome {
	return Outcome{Success: false, Message: msg, Transaction: t, Err: err}
}
