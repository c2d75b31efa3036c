package btree

// B+ Tree constants.
const (
	// DefaultOrder is the maximum number of children per internal node and
	// the maximum number of entries per leaf when no order is configured.
	DefaultOrder = 32

	// MinOrder is the smallest order that keeps split and merge well defined.
	MinOrder = 4
)

// Entry is a single index entry: an indexed key and the row it belongs to.
type Entry[K any] struct {
	Key K
	Row int
}

// node represents a node in the B+ Tree.
// It can be either an internal node (separators and children)
// or a leaf node (entries).
type node[K any] struct {
	// gen is the write generation that created this node. Only nodes of the
	// current generation may be modified in place.
	gen int

	// leaf indicates whether this is a leaf node.
	leaf bool

	// entries holds the data of a leaf node, or the separators of an
	// internal node. For internal nodes entries[i] is the smallest entry of
	// children[i+1].
	entries []Entry[K]

	// children contains child nodes (only used in internal nodes).
	// len(children) = len(entries) + 1 for internal nodes.
	children []*node[K]
}

// newLeaf creates a new leaf node for generation gen.
func newLeaf[K any](gen int) *node[K] {
	return &node[K]{gen: gen, leaf: true}
}

// newInternal creates a new internal node for generation gen.
func newInternal[K any](gen int) *node[K] {
	return &node[K]{gen: gen}
}

// clone returns a copy of the node owned by generation gen.
// Slices are copied so that the clone never aliases the original.
func (n *node[K]) clone(gen int) *node[K] {
	c := &node[K]{
		gen:     gen,
		leaf:    n.leaf,
		entries: append(make([]Entry[K], 0, len(n.entries)+1), n.entries...),
	}
	if !n.leaf {
		c.children = append(make([]*node[K], 0, len(n.children)+1), n.children...)
	}
	return c
}

// mutable returns n itself when it belongs to gen, otherwise a clone.
func (n *node[K]) mutable(gen int) *node[K] {
	if n.gen == gen {
		return n
	}
	return n.clone(gen)
}

// size returns the number of entries in a leaf or children in an internal node.
func (n *node[K]) size() int {
	if n.leaf {
		return len(n.entries)
	}
	return len(n.children)
}

// insertEntryAt inserts an entry at the specified index.
func (n *node[K]) insertEntryAt(index int, e Entry[K]) {
	n.entries = append(n.entries, Entry[K]{})
	copy(n.entries[index+1:], n.entries[index:])
	n.entries[index] = e
}

// removeEntryAt removes the entry at the specified index.
func (n *node[K]) removeEntryAt(index int) Entry[K] {
	e := n.entries[index]
	n.entries = append(n.entries[:index], n.entries[index+1:]...)
	return e
}

// insertChildAt inserts a child pointer at the specified index.
func (n *node[K]) insertChildAt(index int, child *node[K]) {
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

// removeChildAt removes the child pointer at the specified index.
func (n *node[K]) removeChildAt(index int) *node[K] {
	c := n.children[index]
	n.children = append(n.children[:index], n.children[index+1:]...)
	return c
}
