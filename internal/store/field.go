package store

import (
	"cmp"
	"fmt"
)

// RowHandle is the stable identity of a row within a table.
// Handles are never reused, not even after a delete or a rollback.
type RowHandle int

// Empty is the handle returned when no row matches.
const Empty RowHandle = -1

// Field describes one column of row type R holding values of type V.
type Field[R, V any] struct {
	// Name is the column name, unique within a table.
	Name string

	// DefaultValue is written by Insert when DefaultOnZero is set and the
	// inserted value compares equal to the zero value, and by SetDefault
	// foreign keys.
	DefaultValue V

	// DefaultOnZero enables default filling on Insert.
	DefaultOnZero bool

	// Get reads the field from a row.
	Get func(*R) V

	// Set writes the field into a row.
	Set func(*R, V)

	// Compare orders field values.
	Compare func(a, b V) int

	order int
}

// NewField creates a field for an ordered value type.
func NewField[R any, V cmp.Ordered](name string, get func(*R) V, set func(*R, V)) *Field[R, V] {
	return &Field[R, V]{
		Name:    name,
		Get:     get,
		Set:     set,
		Compare: cmp.Compare[V],
		order:   -1,
	}
}

// WithDefault sets the default value and enables default filling.
func (f *Field[R, V]) WithDefault(v V) *Field[R, V] {
	f.DefaultValue = v
	f.DefaultOnZero = true
	return f
}

// FieldName returns the column name.
func (f *Field[R, V]) FieldName() string {
	return f.Name
}

// Order returns the declaration order assigned by CreateTable, or -1.
func (f *Field[R, V]) Order() int {
	return f.order
}

// CompareRows compares two rows by this field.
func (f *Field[R, V]) CompareRows(a, b *R) int {
	return f.Compare(f.Get(a), f.Get(b))
}

func (f *Field[R, V]) bind(order int) error {
	if f.Name == "" {
		return fmt.Errorf("%w: field %d has no name", ErrUsage, order)
	}
	if f.Get == nil || f.Set == nil || f.Compare == nil {
		return fmt.Errorf("%w: field %q needs Get, Set and Compare", ErrUsage, f.Name)
	}
	if f.order >= 0 && f.order != order {
		return fmt.Errorf("%w: field %q is already declared at position %d", ErrUsage, f.Name, f.order)
	}
	f.order = order
	return nil
}

func (f *Field[R, V]) fill(r *R) {
	if !f.DefaultOnZero {
		return
	}
	var zero V
	if f.Compare(f.Get(r), zero) == 0 {
		f.Set(r, f.DefaultValue)
	}
}

// FieldDescriptor is the type-erased view of a Field used when declaring a
// table. Only *Field values implement it.
type FieldDescriptor[R any] interface {
	FieldName() string
	Order() int
	CompareRows(a, b *R) int

	bind(order int) error
	fill(r *R)
}
