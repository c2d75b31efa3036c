package btree

import (
	"errors"
)

// Tree errors.
var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrKeyExists    = errors.New("key already exists")
	ErrInvalidOrder = errors.New("b+ tree order is too small")
	ErrNilCompare   = errors.New("b+ tree compare function is nil")
)

// Tree holds the shape parameters and key ordering of a B+ tree.
// The tree contents live in Root values; a Tree is stateless and safe for
// concurrent use.
type Tree[K any] struct {
	cmp   func(a, b K) int
	order int
}

// Root is an immutable view of the tree contents.
// The zero Root is an empty tree.
type Root[K any] struct {
	node *node[K]
	size int
}

// Len returns the number of entries reachable from the root.
func (r Root[K]) Len() int {
	return r.size
}

// IsEmpty returns true if the root has no entries.
func (r Root[K]) IsEmpty() bool {
	return r.size == 0
}

// New creates a new Tree with the given key comparator and order.
// The order determines the maximum number of children per internal node and
// the leaf capacity. If order is 0, DefaultOrder is used.
func New[K any](cmp func(a, b K) int, order int) (*Tree[K], error) {
	if cmp == nil {
		return nil, ErrNilCompare
	}
	if order == 0 {
		order = DefaultOrder
	}
	if order < MinOrder {
		return nil, ErrInvalidOrder
	}
	return &Tree[K]{cmp: cmp, order: order}, nil
}

// Order returns the order of the tree.
func (t *Tree[K]) Order() int {
	return t.order
}

// Compare compares two keys with the tree ordering.
func (t *Tree[K]) Compare(a, b K) int {
	return t.cmp(a, b)
}

// compareEntries orders entries by key, then by row.
func (t *Tree[K]) compareEntries(a, b Entry[K]) int {
	if c := t.cmp(a.Key, b.Key); c != 0 {
		return c
	}
	switch {
	case a.Row < b.Row:
		return -1
	case a.Row > b.Row:
		return 1
	default:
		return 0
	}
}

// minLeaf is the minimum number of entries in a non-root leaf.
func (t *Tree[K]) minLeaf() int {
	return t.order / 2
}

// minChildren is the minimum number of children in a non-root internal node.
func (t *Tree[K]) minChildren() int {
	return t.order / 2
}

// isUnderflow returns true if a non-root node has fewer than minimum items.
func (t *Tree[K]) isUnderflow(n *node[K]) bool {
	if n.leaf {
		return len(n.entries) < t.minLeaf()
	}
	return len(n.children) < t.minChildren()
}

// canLend returns true if a node has more than minimum items and can lend
// one to a sibling.
func (t *Tree[K]) canLend(n *node[K]) bool {
	if n.leaf {
		return len(n.entries) > t.minLeaf()
	}
	return len(n.children) > t.minChildren()
}

// searchEntry returns the index of the first entry >= e and whether it is
// an exact match.
func (t *Tree[K]) searchEntry(entries []Entry[K], e Entry[K]) (int, bool) {
	low, high := 0, len(entries)
	for low < high {
		mid := (low + high) / 2
		c := t.compareEntries(entries[mid], e)
		if c < 0 {
			low = mid + 1
		} else if c > 0 {
			high = mid
		} else {
			return mid, true
		}
	}
	return low, false
}

// childFor returns the index of the child that should contain e.
// Separators equal to e route to the right.
func (t *Tree[K]) childFor(n *node[K], e Entry[K]) int {
	low, high := 0, len(n.entries)
	for low < high {
		mid := (low + high) / 2
		if t.compareEntries(n.entries[mid], e) <= 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// lowerBoundKey returns the index of the first entry whose key is >= key.
func (t *Tree[K]) lowerBoundKey(entries []Entry[K], key K) int {
	low, high := 0, len(entries)
	for low < high {
		mid := (low + high) / 2
		if t.cmp(entries[mid].Key, key) < 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// TreeStats holds statistics about a tree root.
type TreeStats struct {
	Height        int
	InternalNodes int
	LeafNodes     int
	TotalEntries  int
}

// Stats walks the tree and returns its shape.
func (t *Tree[K]) Stats(r Root[K]) TreeStats {
	stats := TreeStats{}
	if r.node == nil {
		return stats
	}

	height := 1
	for n := r.node; !n.leaf; n = n.children[0] {
		height++
	}
	stats.Height = height

	var walk func(n *node[K])
	walk = func(n *node[K]) {
		if n.leaf {
			stats.LeafNodes++
			stats.TotalEntries += len(n.entries)
			return
		}
		stats.InternalNodes++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(r.node)
	return stats
}
