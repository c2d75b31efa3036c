package btree

import (
	"iter"
)

// All returns an iterator over every entry in ascending order.
func (t *Tree[K]) All(r Root[K]) iter.Seq[Entry[K]] {
	return t.Range(r, nil, nil)
}

// Range returns an iterator over all entries with keys in the inclusive
// range [lo, hi]. A nil bound leaves that side open.
// Entries sharing a key are produced in row order, each exactly once.
func (t *Tree[K]) Range(r Root[K], lo, hi *K) iter.Seq[Entry[K]] {
	return func(yield func(Entry[K]) bool) {
		if r.node == nil {
			return
		}
		if lo != nil && hi != nil && t.cmp(*lo, *hi) > 0 {
			return
		}
		t.ascend(r.node, lo, hi, yield)
	}
}

// ascend walks n in order. It returns false once iteration must stop,
// either because yield asked to or because hi was passed.
func (t *Tree[K]) ascend(n *node[K], lo, hi *K, yield func(Entry[K]) bool) bool {
	if n.leaf {
		start := 0
		if lo != nil {
			start = t.lowerBoundKey(n.entries, *lo)
		}
		for _, e := range n.entries[start:] {
			if hi != nil && t.cmp(e.Key, *hi) > 0 {
				return false
			}
			if !yield(e) {
				return false
			}
		}
		return true
	}

	// Separators with a key equal to lo may have equal keys to their left.
	start := 0
	if lo != nil {
		start = t.lowerBoundKey(n.entries, *lo)
	}
	for i := start; i < len(n.children); i++ {
		if i > start && hi != nil && t.cmp(n.entries[i-1].Key, *hi) > 0 {
			return false
		}
		bound := lo
		if i > start {
			bound = nil
		}
		if !t.ascend(n.children[i], bound, hi, yield) {
			return false
		}
	}
	return true
}

// Descend returns an iterator over all entries in descending order.
func (t *Tree[K]) Descend(r Root[K]) iter.Seq[Entry[K]] {
	return func(yield func(Entry[K]) bool) {
		if r.node == nil {
			return
		}
		t.descend(r.node, yield)
	}
}

func (t *Tree[K]) descend(n *node[K], yield func(Entry[K]) bool) bool {
	if n.leaf {
		for i := len(n.entries) - 1; i >= 0; i-- {
			if !yield(n.entries[i]) {
				return false
			}
		}
		return true
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if !t.descend(n.children[i], yield) {
			return false
		}
	}
	return true
}
