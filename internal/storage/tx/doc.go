// Package tx implements transaction management for the snapstore engine.
//
// # Overview
//
// The engine allows exactly one open transaction at a time. The tx package
// records who owns it and which store version it will publish:
//
//   - Ownership: the id of the StoreSnapshot that started the transaction
//   - Versioning: every commit publishes latest+1, rollbacks publish nothing
//   - History: a linear undo/redo log of committed transactions
//
// # Transaction Lifecycle
//
//	ctx, err := manager.Begin(owner, tx.KindTransaction)
//	if err != nil {
//	    return err // ErrTxActive when another transaction is open
//	}
//
//	// Write rows at ctx.Pending
//
//	version, err := manager.Commit(ctx)
//
// # Transaction States
//
//   - Active: Transaction is in progress
//   - Committed: Changes are published
//   - Aborted: Changes are rolled back
//
// # Undo and Redo
//
// Undo and redo are transactions too. They run with KindUndo or KindRedo,
// carry the history Entry they replay, and on commit move that entry between
// the undo and redo stacks. The store version still moves forward by one.
package tx
