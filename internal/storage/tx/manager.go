package tx

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Transaction manager errors.
var (
	ErrTxActive       = errors.New("a transaction is already open")
	ErrTxNotActive    = errors.New("transaction is not active")
	ErrNilTransaction = errors.New("transaction is nil")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
)

// TxManager manages the transaction lifecycle: begin, commit, and rollback.
// It holds the single open transaction of an engine, the latest committed
// version, and the undo/redo history.
type TxManager struct {
	// latest is the latest committed version (atomic).
	latest atomic.Int64

	// active is the open transaction, nil when idle.
	active *Context

	history History

	// mu protects active and history.
	mu sync.Mutex
}

// NewTxManager creates a transaction manager at version 0.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Latest returns the latest committed version.
func (tm *TxManager) Latest() int {
	return int(tm.latest.Load())
}

// Active returns the open transaction, or nil.
func (tm *TxManager) Active() *Context {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.active
}

// Begin opens a transaction of the given kind owned by owner.
// For KindUndo and KindRedo the entry to replay is attached to the context;
// ErrNothingToUndo or ErrNothingToRedo is returned when the stack is empty.
func (tm *TxManager) Begin(owner uuid.UUID, kind Kind) (*Context, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.active != nil {
		return nil, ErrTxActive
	}

	ctx := NewContext(owner, kind, tm.Latest())
	switch kind {
	case KindUndo:
		e, ok := tm.history.PeekUndo()
		if !ok {
			return nil, ErrNothingToUndo
		}
		ctx.Replay = e
	case KindRedo:
		e, ok := tm.history.PeekRedo()
		if !ok {
			return nil, ErrNothingToRedo
		}
		ctx.Replay = e
	}

	tm.active = ctx
	return ctx, nil
}

// Commit publishes the pending version of ctx and returns it.
// The commit protocol:
// 1. Verify ctx is the open transaction
// 2. Update the history according to ctx.Kind
// 3. Publish the pending version as the latest version
// 4. Mark the transaction as committed
//
// A transaction that touched no table still publishes a version and clears
// the redo stack, but is not recorded in the history.
func (tm *TxManager) Commit(ctx *Context) (int, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.check(ctx); err != nil {
		return 0, err
	}

	switch ctx.Kind {
	case KindTransaction:
		if len(ctx.order) > 0 {
			tm.history.Record(Entry{
				Before: ctx.Base,
				After:  ctx.Pending,
				Tables: ctx.Touched(),
			})
		} else {
			tm.history.ClearRedo()
		}
	case KindUndo:
		tm.history.Undo()
	case KindRedo:
		tm.history.Redo()
	}

	tm.latest.Store(int64(ctx.Pending))
	ctx.State = TxCommitted
	tm.active = nil
	return ctx.Pending, nil
}

// Rollback aborts ctx. The latest version and the history are unchanged.
func (tm *TxManager) Rollback(ctx *Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.check(ctx); err != nil {
		return err
	}

	ctx.State = TxAborted
	tm.active = nil
	return nil
}

// check verifies that ctx is the open transaction.
func (tm *TxManager) check(ctx *Context) error {
	if ctx == nil {
		return ErrNilTransaction
	}
	if !ctx.IsActive() || tm.active != ctx {
		return ErrTxNotActive
	}
	return nil
}

// CanUndo returns true if there is a committed transaction to undo.
func (tm *TxManager) CanUndo() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.history.CanUndo()
}

// CanRedo returns true if there is an undone transaction to redo.
func (tm *TxManager) CanRedo() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.history.CanRedo()
}

// HistoryDepth returns the sizes of the undo and redo stacks.
func (tm *TxManager) HistoryDepth() (undo, redo int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.history.Depth()
}
