// Package mvcc provides the multi-version history used by snapstore tables.
//
// # Overview
//
// Every row lives in a Chain: a newest-first list of Version values, each
// stamped with the store version that produced it. The writer appends to the
// head while readers walk the list, so reads never block.
//
//   - Readers pinned at an older version keep seeing that version
//   - The owner of an open transaction reads its pending version
//   - Rollback truncates the pending head away
//
// # Visibility
//
// A reader at version n sees the newest version numbered n or lower. A
// deleted version hides everything older:
//
//	chain.Put(1, mvcc.VersionActive, row)
//	chain.Put(3, mvcc.VersionDeleted, row)
//
//	chain.IsLive(2) // true
//	chain.IsLive(3) // false
//
// # Concurrency
//
// Chains are written by a single writer at a time. The head pointer is
// published atomically, so concurrent readers see either the old or the new
// head and never a partially linked version.
package mvcc
