// Package store implements the snapstore versioned tabular store.
//
// # Overview
//
// A store is a set of typed tables with B+ tree indexes and foreign keys.
// Every committed transaction publishes a new store version; older versions
// stay readable, so any number of reader snapshots can run next to the one
// writer:
//
//   - Tables: rows of a Go struct type, addressed by stable RowHandles
//   - Indexes: unique, auto-increment, composite and non-unique
//   - Foreign keys: cascade, restrict and set-default on delete
//   - History: linear undo/redo, each step a new version
//
// # Schema
//
// Tables and indexes are declared on an unfrozen store, then frozen:
//
//	s := store.New()
//	gates, err := store.CreateTable(s, "gates", gateID, gateName)
//	err = store.MakeAutoUnique(gates, "pk_gates", gateID)
//	err = s.FreezeShape()
//
// # Transactions
//
// A single snapshot at the latest version may open the transaction. Reads
// through that snapshot see its pending writes; reads through any other
// snapshot see its pinned version only:
//
//	ok, err := s.StartTransaction()
//	h, err := gates.Insert(Gate{Name: "and1"})
//	err = s.Commit()
//
// Constraint errors leave the transaction open. Use Transact to roll back
// automatically.
//
// # Changes
//
// GetChanges and GetChangesRange report the net change of each row over a
// version range. Undo and Redo create versions too, so their effects are
// reported like any other change.
package store
