package store

import (
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/storage/tx"
)

// FKAction is the policy applied to child rows when their parent is deleted.
type FKAction int

const (
	// Cascade deletes the child rows.
	Cascade FKAction = iota
	// Restrict blocks the delete while live child rows exist.
	Restrict
	// SetDefault rewrites the child reference to the field default.
	SetDefault
)

// String returns the string representation of an FKAction.
func (a FKAction) String() string {
	switch a {
	case Cascade:
		return "cascade"
	case Restrict:
		return "restrict"
	case SetDefault:
		return "set-default"
	default:
		return "unknown"
	}
}

// fkLink is the type-erased view of a foreign key.
type fkLink interface {
	Name() string
	Action() FKAction
	childTable() anyTable
	parentTable() anyTable

	// children returns the live child rows referencing parent at version at.
	children(parent RowHandle, at int) []RowHandle

	// defaultAvailable reports whether the child default may be written
	// when the rows in skip are being deleted.
	defaultAvailable(at int, skip func(anyTable, RowHandle) bool) bool

	// resetChild rewrites the reference of child to the default.
	resetChild(ctx *tx.Context, child RowHandle) error

	// orphaned reports whether child references a missing parent at at.
	orphaned(child RowHandle, at int) bool

	// released reports whether parent row h gave up, between base and at,
	// a key that live children still reference.
	released(h RowHandle, base, at int) bool
}

// foreignKey links field of child table C to the primary key of parent
// table P.
type foreignKey[C, P, K any] struct {
	name         string
	action       FKAction
	allowDefault bool

	child      *table[C]
	field      *Field[C, K]
	childIndex *keyIndex[C, K]
	childPos   int

	parent    *table[P]
	parentKey *keyIndex[P, K]
	parentPos int
}

func (fk *foreignKey[C, P, K]) Name() string          { return fk.name }
func (fk *foreignKey[C, P, K]) Action() FKAction      { return fk.action }
func (fk *foreignKey[C, P, K]) childTable() anyTable  { return fk.child }
func (fk *foreignKey[C, P, K]) parentTable() anyTable { return fk.parent }

// parentRow returns the live parent row holding key at at.
func (fk *foreignKey[C, P, K]) parentRow(key K, at int) RowHandle {
	return fk.parentKey.lookup(fk.parent.stateAt(at).roots[fk.parentPos], key)
}

// referencing returns the live child rows holding key at at.
func (fk *foreignKey[C, P, K]) referencing(key K, at int) []RowHandle {
	root := fk.childIndex.root(fk.child.stateAt(at).roots[fk.childPos])
	var out []RowHandle
	for e := range fk.childIndex.tree.Range(root, &key, &key) {
		out = append(out, RowHandle(e.Row))
	}
	return out
}

// exempt reports whether key is the default value and the key is allowed
// without a parent.
func (fk *foreignKey[C, P, K]) exempt(key K) bool {
	return fk.allowDefault && fk.field.Compare(key, fk.field.DefaultValue) == 0
}

func (fk *foreignKey[C, P, K]) children(parent RowHandle, at int) []RowHandle {
	v := fk.parent.version(parent, at)
	if !v.IsActive() {
		return nil
	}
	key := fk.parentKey.key(&v.Data)
	if fk.exempt(key) {
		return nil
	}
	return fk.referencing(key, at)
}

func (fk *foreignKey[C, P, K]) defaultAvailable(at int, skip func(anyTable, RowHandle) bool) bool {
	if fk.allowDefault {
		return true
	}
	p := fk.parentRow(fk.field.DefaultValue, at)
	return p != Empty && !skip(fk.parent, p)
}

func (fk *foreignKey[C, P, K]) resetChild(ctx *tx.Context, child RowHandle) error {
	v := fk.child.version(child, ctx.Pending)
	if !v.IsActive() {
		return nil
	}
	old := v.Data
	updated := old
	fk.field.Set(&updated, fk.field.DefaultValue)
	return fk.child.updateRow(ctx, child, old, updated)
}

func (fk *foreignKey[C, P, K]) orphaned(child RowHandle, at int) bool {
	v := fk.child.version(child, at)
	if !v.IsActive() {
		return false
	}
	key := fk.field.Get(&v.Data)
	if fk.exempt(key) {
		return false
	}
	return fk.parentRow(key, at) == Empty
}

func (fk *foreignKey[C, P, K]) released(h RowHandle, base, at int) bool {
	before := fk.parent.version(h, base)
	if !before.IsActive() {
		return false
	}
	key := fk.parentKey.key(&before.Data)
	if fk.exempt(key) || fk.parentRow(key, at) != Empty {
		return false
	}
	return len(fk.referencing(key, at)) > 0
}

func (fk *foreignKey[C, P, K]) String() string {
	return fmt.Sprintf("%s(%s.%s -> %s, %s)", fk.name, fk.child.name, fk.field.Name, fk.parent.name, fk.action)
}
