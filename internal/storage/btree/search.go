package btree

// Get returns the first entry with the given key, in row order.
func (t *Tree[K]) Get(r Root[K], key K) (Entry[K], bool) {
	for e := range t.Range(r, &key, &key) {
		return e, true
	}
	return Entry[K]{}, false
}

// Contains reports whether the exact entry is in the tree.
func (t *Tree[K]) Contains(r Root[K], e Entry[K]) bool {
	n := r.node
	if n == nil {
		return false
	}
	for !n.leaf {
		n = n.children[t.childFor(n, e)]
	}
	_, found := t.searchEntry(n.entries, e)
	return found
}

// Count returns the number of entries with the given key.
func (t *Tree[K]) Count(r Root[K], key K) int {
	count := 0
	for range t.Range(r, &key, &key) {
		count++
	}
	return count
}

// Min returns the smallest entry in the tree.
func (t *Tree[K]) Min(r Root[K]) (Entry[K], bool) {
	n := r.node
	if n == nil {
		return Entry[K]{}, false
	}
	for !n.leaf {
		n = n.children[0]
	}
	if len(n.entries) == 0 {
		return Entry[K]{}, false
	}
	return n.entries[0], true
}

// Max returns the largest entry in the tree.
func (t *Tree[K]) Max(r Root[K]) (Entry[K], bool) {
	n := r.node
	if n == nil {
		return Entry[K]{}, false
	}
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	if len(n.entries) == 0 {
		return Entry[K]{}, false
	}
	return n.entries[len(n.entries)-1], true
}

// Collect returns all entries with keys in [lo, hi] as a slice.
func (t *Tree[K]) Collect(r Root[K], lo, hi *K) []Entry[K] {
	var out []Entry[K]
	for e := range t.Range(r, lo, hi) {
		out = append(out, e)
	}
	return out
}
