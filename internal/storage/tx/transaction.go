package tx

import (
	"time"

	"github.com/google/uuid"
)

// TxState represents the state of a transaction.
type TxState int

const (
	// TxActive indicates the transaction is currently active.
	TxActive TxState = iota
	// TxCommitted indicates the transaction has been successfully committed.
	TxCommitted
	// TxAborted indicates the transaction has been rolled back.
	TxAborted
)

// String returns the string representation of a TxState.
func (s TxState) String() string {
	switch s {
	case TxActive:
		return "Active"
	case TxCommitted:
		return "Committed"
	case TxAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Kind tells what a transaction does to the history on commit.
type Kind int

const (
	// KindTransaction is a caller transaction. On commit it is recorded on
	// the undo stack and clears the redo stack.
	KindTransaction Kind = iota
	// KindUndo replays the top undo entry backwards.
	KindUndo
	// KindRedo replays the top redo entry forwards.
	KindRedo
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindUndo:
		return "undo"
	case KindRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Context is the state of the open transaction.
// It is only touched by the goroutine of its owner.
type Context struct {
	// Owner is the id of the snapshot that started the transaction.
	Owner uuid.UUID

	// Kind is the transaction kind.
	Kind Kind

	// Base is the committed store version the transaction started from.
	Base int

	// Pending is the version the transaction writes and will publish.
	Pending int

	// State is the current state of the transaction.
	State TxState

	// Replay is the history entry an undo or redo applies.
	Replay Entry

	// StartTime is when the transaction began.
	StartTime time.Time

	touched map[string]struct{}
	order   []string
}

// NewContext creates an active transaction context on top of base.
func NewContext(owner uuid.UUID, kind Kind, base int) *Context {
	return &Context{
		Owner:     owner,
		Kind:      kind,
		Base:      base,
		Pending:   base + 1,
		State:     TxActive,
		StartTime: time.Now(),
		touched:   make(map[string]struct{}),
	}
}

// IsActive returns true if the transaction is still active.
func (c *Context) IsActive() bool {
	return c != nil && c.State == TxActive
}

// OwnedBy reports whether the transaction is active and owned by id.
func (c *Context) OwnedBy(id uuid.UUID) bool {
	return c.IsActive() && c.Owner == id
}

// Touch records that table was written. It returns true the first time.
func (c *Context) Touch(table string) bool {
	if _, ok := c.touched[table]; ok {
		return false
	}
	c.touched[table] = struct{}{}
	c.order = append(c.order, table)
	return true
}

// Touched returns the written tables in first-write order.
func (c *Context) Touched() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Duration returns the duration since the transaction started.
func (c *Context) Duration() time.Duration {
	return time.Since(c.StartTime)
}
