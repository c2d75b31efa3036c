package store

import (
	"github.com/KilimcininKorOglu/snapstore/internal/storage/btree"
)

// rowIndex is the type-erased view of a table index.
// Roots are passed around as any so one tableState can hold indexes of
// different key types; a nil root is an empty tree.
type rowIndex[R any] interface {
	Name() string
	Unique() bool
	Fields() []string

	add(root any, gen int, row *R, h RowHandle) (any, error)
	remove(root any, gen int, row *R, h RowHandle) (any, error)

	// assign fills an auto-increment key before insertion.
	assign(root any, row *R)

	// moved reports whether a and b index under different keys.
	moved(a, b *R) bool

	// conflict reports whether a row other than h holds the key of row.
	conflict(root any, row *R, h RowHandle) (RowHandle, bool)

	// duplicated reports whether more than one row holds the key of row.
	duplicated(root any, row *R) bool
}

// keyIndex indexes rows of type R under keys of type K.
type keyIndex[R, K any] struct {
	name   string
	unique bool
	fields []string
	key    func(*R) K
	tree   *btree.Tree[K]

	// auto assigns max+1 to zero keys on insert.
	auto func(r btree.Root[K], row *R)
}

func newKeyIndex[R, K any](name string, unique bool, fields []string, key func(*R) K, compare func(a, b K) int, order int) (*keyIndex[R, K], error) {
	tree, err := btree.New(compare, order)
	if err != nil {
		return nil, err
	}
	return &keyIndex[R, K]{
		name:   name,
		unique: unique,
		fields: fields,
		key:    key,
		tree:   tree,
	}, nil
}

func (ix *keyIndex[R, K]) Name() string     { return ix.name }
func (ix *keyIndex[R, K]) Unique() bool     { return ix.unique }
func (ix *keyIndex[R, K]) Fields() []string { return ix.fields }

// root converts a stored root back to its typed form.
func (ix *keyIndex[R, K]) root(a any) btree.Root[K] {
	r, _ := a.(btree.Root[K])
	return r
}

func (ix *keyIndex[R, K]) add(root any, gen int, row *R, h RowHandle) (any, error) {
	return ix.tree.Insert(ix.root(root), gen, btree.Entry[K]{Key: ix.key(row), Row: int(h)})
}

func (ix *keyIndex[R, K]) remove(root any, gen int, row *R, h RowHandle) (any, error) {
	return ix.tree.Delete(ix.root(root), gen, btree.Entry[K]{Key: ix.key(row), Row: int(h)})
}

func (ix *keyIndex[R, K]) assign(root any, row *R) {
	if ix.auto != nil {
		ix.auto(ix.root(root), row)
	}
}

func (ix *keyIndex[R, K]) moved(a, b *R) bool {
	return ix.tree.Compare(ix.key(a), ix.key(b)) != 0
}

func (ix *keyIndex[R, K]) conflict(root any, row *R, h RowHandle) (RowHandle, bool) {
	key := ix.key(row)
	for e := range ix.tree.Range(ix.root(root), &key, &key) {
		if RowHandle(e.Row) != h {
			return RowHandle(e.Row), true
		}
	}
	return Empty, false
}

func (ix *keyIndex[R, K]) duplicated(root any, row *R) bool {
	key := ix.key(row)
	n := 0
	for range ix.tree.Range(ix.root(root), &key, &key) {
		n++
		if n > 1 {
			return true
		}
	}
	return false
}

// lookup returns the first row holding key.
func (ix *keyIndex[R, K]) lookup(root any, key K) RowHandle {
	e, found := ix.tree.Get(ix.root(root), key)
	if !found {
		return Empty
	}
	return RowHandle(e.Row)
}

// pair is the key of a two-field index, ordered by First then Second.
type pair[A, B any] struct {
	First  A
	Second B
}

func comparePairs[A, B any](ca func(a, b A) int, cb func(a, b B) int) func(x, y pair[A, B]) int {
	return func(x, y pair[A, B]) int {
		if c := ca(x.First, y.First); c != 0 {
			return c
		}
		return cb(x.Second, y.Second)
	}
}
