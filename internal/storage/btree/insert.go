package btree

// Insert adds an entry to the tree and returns the new root.
// Returns ErrKeyExists if the exact entry (key and row) is already present;
// the same key under a different row is a separate entry.
//
// Algorithm:
// 1. Descend to the leaf for the entry, cloning nodes not owned by gen
// 2. Insert the entry in sorted order
// 3. If the leaf overflows, split it into two leaves
// 4. Propagate the split up to the parent
// 5. If the root splits, create a new root
func (t *Tree[K]) Insert(r Root[K], gen int, e Entry[K]) (Root[K], error) {
	if r.node == nil {
		leaf := newLeaf[K](gen)
		leaf.entries = append(leaf.entries, e)
		return Root[K]{node: leaf, size: 1}, nil
	}

	n, right, sep, err := t.insert(r.node, gen, e)
	if err != nil {
		return r, err
	}

	if right != nil {
		root := newInternal[K](gen)
		root.entries = []Entry[K]{sep}
		root.children = []*node[K]{n, right}
		n = root
	}

	return Root[K]{node: n, size: r.size + 1}, nil
}

// insert adds e below n. It returns the replacement for n and, when n had
// to be split, the new right sibling and the separator to promote.
func (t *Tree[K]) insert(n *node[K], gen int, e Entry[K]) (*node[K], *node[K], Entry[K], error) {
	var none Entry[K]

	if n.leaf {
		idx, found := t.searchEntry(n.entries, e)
		if found {
			return n, nil, none, ErrKeyExists
		}
		n = n.mutable(gen)
		n.insertEntryAt(idx, e)
		if len(n.entries) > t.order {
			right, sep := t.splitLeaf(n, gen)
			return n, right, sep, nil
		}
		return n, nil, none, nil
	}

	idx := t.childFor(n, e)
	child, right, sep, err := t.insert(n.children[idx], gen, e)
	if err != nil {
		return n, nil, none, err
	}

	n = n.mutable(gen)
	n.children[idx] = child
	if right != nil {
		n.insertEntryAt(idx, sep)
		n.insertChildAt(idx+1, right)
		if len(n.children) > t.order {
			newRight, promoted := t.splitInternal(n, gen)
			return n, newRight, promoted, nil
		}
	}
	return n, nil, none, nil
}

// splitLeaf splits a full leaf node into two nodes.
// Returns the new right node and the separator to promote to the parent.
func (t *Tree[K]) splitLeaf(leaf *node[K], gen int) (*node[K], Entry[K]) {
	splitPoint := len(leaf.entries) / 2

	right := newLeaf[K](gen)
	right.entries = append(make([]Entry[K], 0, t.order+1), leaf.entries[splitPoint:]...)

	// Truncate the original leaf
	leaf.entries = leaf.entries[:splitPoint:splitPoint]

	// The promoted separator is the first entry of the new leaf
	return right, right.entries[0]
}

// splitInternal splits a full internal node into two nodes.
// The middle separator moves up to the parent.
func (t *Tree[K]) splitInternal(internal *node[K], gen int) (*node[K], Entry[K]) {
	splitPoint := len(internal.entries) / 2
	promoted := internal.entries[splitPoint]

	right := newInternal[K](gen)
	right.entries = append(make([]Entry[K], 0, t.order), internal.entries[splitPoint+1:]...)
	right.children = append(make([]*node[K], 0, t.order+1), internal.children[splitPoint+1:]...)

	// Truncate the original internal node
	internal.entries = internal.entries[:splitPoint:splitPoint]
	internal.children = internal.children[: splitPoint+1 : splitPoint+1]

	return right, promoted
}
