// Package btree implements a persistent B+ tree used for table indexing in
// the snapstore engine.
//
// # Overview
//
// B+ trees back every table index. They provide:
//
//   - O(log n) lookup, insertion, and deletion
//   - Inclusive range scans in key order
//   - Copy-on-write nodes, so every committed store version keeps its own root
//
// # Entries
//
// The tree stores Entry values: a key and the row handle it belongs to.
// Entries are ordered by key, ties broken by row, so two rows sharing a key
// are two distinct entries. Unique constraints are enforced by the caller on
// top of this ordering.
//
// # Versions
//
// A Root is an immutable view of the tree. Edits take a root and a write
// generation and return a new root. A node is modified in place only when it
// was created by the same generation; otherwise it is cloned along the path
// from the root, leaving every older root untouched:
//
//	tree, err := btree.New[int](cmp.Compare[int], 32)
//
//	var r btree.Root[int]
//	r, err = tree.Insert(r, gen, btree.Entry[int]{Key: 15, Row: 0})
//
//	// Point lookup
//	e, found := tree.Get(r, 15)
//
//	// Range scan
//	for e := range tree.Range(r, &lo, &hi) {
//	    ...
//	}
package btree
