package tx

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwner() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func TestTxStateString(t *testing.T) {
	tests := []struct {
		state TxState
		want  string
	}{
		{TxActive, "Active"},
		{TxCommitted, "Committed"},
		{TxAborted, "Aborted"},
		{TxState(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
	assert.Equal(t, "undo", KindUndo.String())
}

func TestContext_Touch(t *testing.T) {
	ctx := NewContext(newOwner(), KindTransaction, 4)

	assert.Equal(t, 5, ctx.Pending)
	assert.True(t, ctx.Touch("gates"))
	assert.True(t, ctx.Touch("pins"))
	assert.False(t, ctx.Touch("gates"))
	assert.Equal(t, []string{"gates", "pins"}, ctx.Touched())
}

func TestContext_OwnedBy(t *testing.T) {
	owner := newOwner()
	ctx := NewContext(owner, KindTransaction, 0)

	assert.True(t, ctx.OwnedBy(owner))
	assert.False(t, ctx.OwnedBy(newOwner()))

	ctx.State = TxAborted
	assert.False(t, ctx.OwnedBy(owner))

	var none *Context
	assert.False(t, none.IsActive())
}

func TestTxManagerBegin(t *testing.T) {
	tm := NewTxManager()

	ctx, err := tm.Begin(newOwner(), KindTransaction)
	require.NoError(t, err)
	assert.Equal(t, 0, ctx.Base)
	assert.Equal(t, 1, ctx.Pending)
	assert.Same(t, ctx, tm.Active())

	_, err = tm.Begin(newOwner(), KindTransaction)
	assert.ErrorIs(t, err, ErrTxActive)
}

func TestTxManagerCommit(t *testing.T) {
	tm := NewTxManager()

	ctx, err := tm.Begin(newOwner(), KindTransaction)
	require.NoError(t, err)
	ctx.Touch("circuits")

	version, err := tm.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, 1, tm.Latest())
	assert.Equal(t, TxCommitted, ctx.State)
	assert.Nil(t, tm.Active())
	assert.True(t, tm.CanUndo())

	_, err = tm.Commit(ctx)
	assert.ErrorIs(t, err, ErrTxNotActive)
	_, err = tm.Commit(nil)
	assert.ErrorIs(t, err, ErrNilTransaction)
}

func TestTxManagerEmptyCommitNotRecorded(t *testing.T) {
	tm := NewTxManager()

	ctx, err := tm.Begin(newOwner(), KindTransaction)
	require.NoError(t, err)
	version, err := tm.Commit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, version)
	assert.False(t, tm.CanUndo())
}

func TestTxManagerEmptyCommitClearsRedo(t *testing.T) {
	tm := NewTxManager()
	owner := newOwner()

	ctx, err := tm.Begin(owner, KindTransaction)
	require.NoError(t, err)
	ctx.Touch("gates")
	_, err = tm.Commit(ctx)
	require.NoError(t, err)

	ctx, err = tm.Begin(owner, KindUndo)
	require.NoError(t, err)
	_, err = tm.Commit(ctx)
	require.NoError(t, err)
	require.True(t, tm.CanRedo())

	ctx, err = tm.Begin(owner, KindTransaction)
	require.NoError(t, err)
	_, err = tm.Commit(ctx)
	require.NoError(t, err)

	assert.False(t, tm.CanRedo())
	_, err = tm.Begin(owner, KindRedo)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestTxManagerRollback(t *testing.T) {
	tm := NewTxManager()

	ctx, err := tm.Begin(newOwner(), KindTransaction)
	require.NoError(t, err)
	ctx.Touch("wires")

	require.NoError(t, tm.Rollback(ctx))
	assert.Equal(t, TxAborted, ctx.State)
	assert.Equal(t, 0, tm.Latest())
	assert.False(t, tm.CanUndo())

	assert.ErrorIs(t, tm.Rollback(ctx), ErrTxNotActive)

	// The same pending version is handed out again.
	next, err := tm.Begin(newOwner(), KindTransaction)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Pending)
}

func TestTxManagerUndoRedo(t *testing.T) {
	tm := NewTxManager()
	owner := newOwner()

	commit := func(tables ...string) {
		ctx, err := tm.Begin(owner, KindTransaction)
		require.NoError(t, err)
		for _, name := range tables {
			ctx.Touch(name)
		}
		_, err = tm.Commit(ctx)
		require.NoError(t, err)
	}

	_, err := tm.Begin(owner, KindUndo)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = tm.Begin(owner, KindRedo)
	assert.ErrorIs(t, err, ErrNothingToRedo)

	commit("a")
	commit("b")

	undo, err := tm.Begin(owner, KindUndo)
	require.NoError(t, err)
	assert.Equal(t, Entry{Before: 1, After: 2, Tables: []string{"b"}}, undo.Replay)
	version, err := tm.Commit(undo)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.True(t, tm.CanRedo())

	redo, err := tm.Begin(owner, KindRedo)
	require.NoError(t, err)
	assert.Equal(t, 2, redo.Replay.After)
	_, err = tm.Commit(redo)
	require.NoError(t, err)
	assert.False(t, tm.CanRedo())

	undoDepth, redoDepth := tm.HistoryDepth()
	assert.Equal(t, 2, undoDepth)
	assert.Equal(t, 0, redoDepth)
}

func TestTxManagerCommitClearsRedo(t *testing.T) {
	tm := NewTxManager()
	owner := newOwner()

	ctx, err := tm.Begin(owner, KindTransaction)
	require.NoError(t, err)
	ctx.Touch("a")
	_, err = tm.Commit(ctx)
	require.NoError(t, err)

	undo, err := tm.Begin(owner, KindUndo)
	require.NoError(t, err)
	_, err = tm.Commit(undo)
	require.NoError(t, err)
	require.True(t, tm.CanRedo())

	ctx, err = tm.Begin(owner, KindTransaction)
	require.NoError(t, err)
	ctx.Touch("a")
	_, err = tm.Commit(ctx)
	require.NoError(t, err)
	assert.False(t, tm.CanRedo())
	assert.Equal(t, 3, tm.Latest())
}

func TestTxManagerUndoRollbackKeepsHistory(t *testing.T) {
	tm := NewTxManager()
	owner := newOwner()

	ctx, err := tm.Begin(owner, KindTransaction)
	require.NoError(t, err)
	ctx.Touch("a")
	_, err = tm.Commit(ctx)
	require.NoError(t, err)

	undo, err := tm.Begin(owner, KindUndo)
	require.NoError(t, err)
	require.NoError(t, tm.Rollback(undo))

	assert.True(t, tm.CanUndo())
	assert.False(t, tm.CanRedo())
}

func TestConcurrentBegin(t *testing.T) {
	tm := NewTxManager()

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tm.Begin(newOwner(), KindTransaction); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}
