package btree

// Delete removes an entry from the tree and returns the new root.
// If the entry is not found, returns ErrKeyNotFound and the root unchanged.
//
// Algorithm:
// 1. Descend to the leaf containing the entry, cloning nodes not owned by gen
// 2. Remove the entry
// 3. If the leaf underflows (< 50% full):
//    a. Try to borrow from a sibling
//    b. If borrowing fails, merge with a sibling
// 4. Propagate changes up to the parent
// 5. Collapse a root left with a single child
func (t *Tree[K]) Delete(r Root[K], gen int, e Entry[K]) (Root[K], error) {
	if r.node == nil {
		return r, ErrKeyNotFound
	}

	n, found := t.delete(r.node, gen, e)
	if !found {
		return r, ErrKeyNotFound
	}

	if !n.leaf && len(n.children) == 1 {
		n = n.children[0]
	}
	if n.leaf && len(n.entries) == 0 {
		return Root[K]{}, nil
	}

	return Root[K]{node: n, size: r.size - 1}, nil
}

// Update replaces old with updated in one step. On failure the original
// root is returned untouched.
func (t *Tree[K]) Update(r Root[K], gen int, old, updated Entry[K]) (Root[K], error) {
	next, err := t.Delete(r, gen, old)
	if err != nil {
		return r, err
	}
	next, err = t.Insert(next, gen, updated)
	if err != nil {
		return r, err
	}
	return next, nil
}

// delete removes e below n and rebalances children that underflow.
func (t *Tree[K]) delete(n *node[K], gen int, e Entry[K]) (*node[K], bool) {
	if n.leaf {
		idx, found := t.searchEntry(n.entries, e)
		if !found {
			return n, false
		}
		n = n.mutable(gen)
		n.removeEntryAt(idx)
		return n, true
	}

	idx := t.childFor(n, e)
	child, found := t.delete(n.children[idx], gen, e)
	if !found {
		return n, false
	}

	n = n.mutable(gen)
	n.children[idx] = child
	if t.isUnderflow(child) {
		t.rebalance(n, gen, idx)
	}
	return n, true
}

// rebalance fixes an underflowing child of parent at index idx.
// parent must already belong to gen.
func (t *Tree[K]) rebalance(parent *node[K], gen int, idx int) {
	// Try to borrow from left sibling
	if idx > 0 && t.canLend(parent.children[idx-1]) {
		t.borrowFromLeft(parent, gen, idx)
		return
	}

	// Try to borrow from right sibling
	if idx < len(parent.children)-1 && t.canLend(parent.children[idx+1]) {
		t.borrowFromRight(parent, gen, idx)
		return
	}

	// Cannot borrow, must merge
	if idx > 0 {
		t.merge(parent, gen, idx-1)
		return
	}
	if idx < len(parent.children)-1 {
		t.merge(parent, gen, idx)
	}
}

// borrowFromLeft moves the last item of the left sibling into the child.
func (t *Tree[K]) borrowFromLeft(parent *node[K], gen int, idx int) {
	left := parent.children[idx-1].mutable(gen)
	child := parent.children[idx].mutable(gen)
	parent.children[idx-1] = left
	parent.children[idx] = child

	if child.leaf {
		moved := left.removeEntryAt(len(left.entries) - 1)
		child.insertEntryAt(0, moved)
		parent.entries[idx-1] = child.entries[0]
		return
	}

	// Rotate through the parent separator
	lastChild := left.removeChildAt(len(left.children) - 1)
	lastSep := left.removeEntryAt(len(left.entries) - 1)
	child.insertEntryAt(0, parent.entries[idx-1])
	child.insertChildAt(0, lastChild)
	parent.entries[idx-1] = lastSep
}

// borrowFromRight moves the first item of the right sibling into the child.
func (t *Tree[K]) borrowFromRight(parent *node[K], gen int, idx int) {
	child := parent.children[idx].mutable(gen)
	right := parent.children[idx+1].mutable(gen)
	parent.children[idx] = child
	parent.children[idx+1] = right

	if child.leaf {
		moved := right.removeEntryAt(0)
		child.entries = append(child.entries, moved)
		parent.entries[idx] = right.entries[0]
		return
	}

	// Rotate through the parent separator
	firstChild := right.removeChildAt(0)
	firstSep := right.removeEntryAt(0)
	child.entries = append(child.entries, parent.entries[idx])
	child.children = append(child.children, firstChild)
	parent.entries[idx] = firstSep
}

// merge merges children[sepIdx+1] into children[sepIdx] and drops the
// separator between them.
func (t *Tree[K]) merge(parent *node[K], gen int, sepIdx int) {
	left := parent.children[sepIdx].mutable(gen)
	right := parent.children[sepIdx+1]

	if left.leaf {
		left.entries = append(left.entries, right.entries...)
	} else {
		// Pull down the separator key from parent
		left.entries = append(left.entries, parent.entries[sepIdx])
		left.entries = append(left.entries, right.entries...)
		left.children = append(left.children, right.children...)
	}

	parent.children[sepIdx] = left
	parent.removeEntryAt(sepIdx)
	parent.removeChildAt(sepIdx + 1)
}
