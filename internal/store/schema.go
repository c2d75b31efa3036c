package store

import (
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/storage/btree"
)

// TableSnapshot is a table seen through one StoreSnapshot.
type TableSnapshot[R any] struct {
	t *table[R]
	s *StoreSnapshot
}

// Name returns the table name.
func (ts *TableSnapshot[R]) Name() string {
	return ts.t.name
}

// Store returns the snapshot the table is read through.
func (ts *TableSnapshot[R]) Store() *StoreSnapshot {
	return ts.s
}

// FieldNames returns the field names in declaration order.
func (ts *TableSnapshot[R]) FieldNames() []string {
	out := make([]string, len(ts.t.fields))
	for i, f := range ts.t.fields {
		out[i] = f.FieldName()
	}
	return out
}

// IndexNames returns the index names in declaration order.
func (ts *TableSnapshot[R]) IndexNames() []string {
	out := make([]string, len(ts.t.indexes))
	for i, ix := range ts.t.indexes {
		out[i] = ix.Name()
	}
	return out
}

// unfrozen fails once the schema is frozen.
func (s *StoreSnapshot) unfrozen(op string) error {
	if s.eng.frozen.Load() {
		return fmt.Errorf("%w: %s after FreezeShape", ErrUsage, op)
	}
	return nil
}

// CreateTable declares a table of rows of type R with the given fields.
// Field declaration order is assigned from the argument order.
func CreateTable[R any](s *StoreSnapshot, name string, fields ...FieldDescriptor[R]) (*TableSnapshot[R], error) {
	if err := s.unfrozen("CreateTable"); err != nil {
		return nil, err
	}
	name = normalize(name)
	if name == "" {
		return nil, fmt.Errorf("%w: table name is empty", ErrUsage)
	}

	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()

	if _, exists := s.eng.tables[name]; exists {
		return nil, fmt.Errorf("%w: table %q already exists", ErrUsage, name)
	}
	t, err := newTable(s.eng, name, fields)
	if err != nil {
		return nil, err
	}
	s.eng.tables[name] = t
	s.eng.names = append(s.eng.names, name)
	s.logger.Debug("table created", "table", name, "fields", len(fields))
	return &TableSnapshot[R]{t: t, s: s}, nil
}

// OpenTable binds an existing table to s.
func OpenTable[R any](s *StoreSnapshot, name string) (*TableSnapshot[R], error) {
	name = normalize(name)
	at := s.eng.table(name)
	if at == nil {
		return nil, fmt.Errorf("%w: table %q does not exist", ErrUsage, name)
	}
	t, ok := at.(*table[R])
	if !ok {
		return nil, fmt.Errorf("%w: table %q has a different row type", ErrUsage, name)
	}
	return &TableSnapshot[R]{t: t, s: s}, nil
}

// addIndex registers ix and gives it an empty root in the initial state.
func (t *table[R]) addIndex(s *StoreSnapshot, ix rowIndex[R]) error {
	for _, other := range t.indexes {
		if other.Name() == ix.Name() {
			return fmt.Errorf("%w: table %q already has index %q", ErrUsage, t.name, ix.Name())
		}
	}
	t.indexes = append(t.indexes, ix)
	st := t.state.Head().Data
	st.roots = append(st.roots, nil)
	if t.primary == nil && ix.Unique() && len(ix.Fields()) == 1 {
		t.primary = ix
	}
	s.logger.Debug("index created", "table", t.name, "index", ix.Name(), "unique", ix.Unique(), "fields", ix.Fields())
	return nil
}

func (t *table[R]) checkFields(fields ...FieldDescriptor[R]) error {
	for _, f := range fields {
		if f == nil || !t.owns(f) {
			return fmt.Errorf("%w: field is not part of table %q", ErrUsage, t.name)
		}
	}
	return nil
}

func makeIndex[R, V any](ts *TableSnapshot[R], op, name string, unique bool, f *Field[R, V]) (*keyIndex[R, V], error) {
	if err := ts.s.unfrozen(op); err != nil {
		return nil, err
	}
	if err := ts.t.checkFields(f); err != nil {
		return nil, err
	}
	ix, err := newKeyIndex(normalize(name), unique, []string{f.Name}, f.Get, f.Compare, ts.t.order)
	if err != nil {
		return nil, fmt.Errorf("%w: index %q: %v", ErrUsage, name, err)
	}
	return ix, nil
}

func makeIndex2[R, V1, V2 any](ts *TableSnapshot[R], op, name string, unique bool, f1 *Field[R, V1], f2 *Field[R, V2]) (*keyIndex[R, pair[V1, V2]], error) {
	if err := ts.s.unfrozen(op); err != nil {
		return nil, err
	}
	if err := ts.t.checkFields(f1, f2); err != nil {
		return nil, err
	}
	if f1.Name == f2.Name {
		return nil, fmt.Errorf("%w: index %q repeats field %q", ErrUsage, name, f1.Name)
	}
	key := func(r *R) pair[V1, V2] {
		return pair[V1, V2]{First: f1.Get(r), Second: f2.Get(r)}
	}
	ix, err := newKeyIndex(normalize(name), unique, []string{f1.Name, f2.Name}, key, comparePairs(f1.Compare, f2.Compare), ts.t.order)
	if err != nil {
		return nil, fmt.Errorf("%w: index %q: %v", ErrUsage, name, err)
	}
	return ix, nil
}

// MakeUnique declares a unique index on field. The first single-field
// unique index of a table is its primary key.
func MakeUnique[R, V any](ts *TableSnapshot[R], name string, field *Field[R, V]) error {
	ix, err := makeIndex(ts, "MakeUnique", name, true, field)
	if err != nil {
		return err
	}
	return ts.t.addIndex(ts.s, ix)
}

// MakeAutoUnique declares a unique index on an integer field whose zero
// values are replaced on Insert by one more than the current maximum.
func MakeAutoUnique[R any](ts *TableSnapshot[R], name string, field *Field[R, int]) error {
	ix, err := makeIndex(ts, "MakeAutoUnique", name, true, field)
	if err != nil {
		return err
	}
	ix.auto = func(root btree.Root[int], row *R) {
		if field.Get(row) != 0 {
			return
		}
		next := 1
		if e, ok := ix.tree.Max(root); ok && e.Key >= next {
			next = e.Key + 1
		}
		field.Set(row, next)
	}
	return ts.t.addIndex(ts.s, ix)
}

// MakeUnique2 declares a unique index on (f1, f2), ordered by f1 then f2.
func MakeUnique2[R, V1, V2 any](ts *TableSnapshot[R], name string, f1 *Field[R, V1], f2 *Field[R, V2]) error {
	ix, err := makeIndex2(ts, "MakeUnique2", name, true, f1, f2)
	if err != nil {
		return err
	}
	return ts.t.addIndex(ts.s, ix)
}

// CreateIndex declares a non-unique index on field.
func CreateIndex[R, V any](ts *TableSnapshot[R], name string, field *Field[R, V]) error {
	ix, err := makeIndex(ts, "CreateIndex", name, false, field)
	if err != nil {
		return err
	}
	return ts.t.addIndex(ts.s, ix)
}

// CreateIndex2 declares a non-unique index on (f1, f2).
func CreateIndex2[R, V1, V2 any](ts *TableSnapshot[R], name string, f1 *Field[R, V1], f2 *Field[R, V2]) error {
	ix, err := makeIndex2(ts, "CreateIndex2", name, false, f1, f2)
	if err != nil {
		return err
	}
	return ts.t.addIndex(ts.s, ix)
}

// CreateForeignKey declares that field of child references the primary
// key of parent. The parent must already have a primary key of the same
// value type. An index on field is created when none exists.
// With allowDefault, rows holding the field default need no parent.
func CreateForeignKey[C, P, K any](name string, child *TableSnapshot[C], field *Field[C, K], parent *TableSnapshot[P], action FKAction, allowDefault bool) error {
	s := child.s
	if err := s.unfrozen("CreateForeignKey"); err != nil {
		return err
	}
	if parent.s.eng != s.eng {
		return fmt.Errorf("%w: foreign key %q spans two stores", ErrUsage, name)
	}
	if err := child.t.checkFields(field); err != nil {
		return err
	}
	name = normalize(name)

	pt := parent.t
	parentKey, ok := pt.primary.(*keyIndex[P, K])
	if !ok {
		return fmt.Errorf("%w: table %q has no primary key matching %s.%s", ErrUsage, pt.name, child.t.name, field.Name)
	}

	s.eng.mu.Lock()
	_, dup := s.eng.fkNames[name]
	if !dup {
		s.eng.fkNames[name] = struct{}{}
	}
	s.eng.mu.Unlock()
	if dup {
		return fmt.Errorf("%w: foreign key %q already exists", ErrUsage, name)
	}

	ct := child.t
	childIndex, childPos := indexOn[C, K](ct, field.Name)
	if childIndex == nil {
		ix, err := makeIndex(child, "CreateForeignKey", "fk_"+name, false, field)
		if err != nil {
			return err
		}
		if err := ct.addIndex(s, ix); err != nil {
			return err
		}
		childIndex, childPos = ix, len(ct.indexes)-1
	}

	fk := &foreignKey[C, P, K]{
		name:         name,
		action:       action,
		allowDefault: allowDefault,
		child:        ct,
		field:        field,
		childIndex:   childIndex,
		childPos:     childPos,
		parent:       pt,
		parentKey:    parentKey,
		parentPos:    indexPos(pt, pt.primary),
	}
	ct.outgoing = append(ct.outgoing, fk)
	pt.addIncoming(fk)
	s.logger.Debug("foreign key created", "fk", fk.String())
	return nil
}

// indexOn returns the single-field index on field with key type V and its
// position, preferring unique indexes.
func indexOn[R, V any](t *table[R], field string) (*keyIndex[R, V], int) {
	return indexFor[R, V](t, field)
}

// uniqueOn returns the unique index on exactly fields with key type K.
func uniqueOn[R, K any](t *table[R], fields ...string) (*keyIndex[R, K], int) {
	ix, pos := indexFor[R, K](t, fields...)
	if ix == nil || !ix.unique {
		return nil, -1
	}
	return ix, pos
}

// indexFor returns the index on exactly fields with key type K,
// preferring unique indexes.
func indexFor[R, K any](t *table[R], fields ...string) (*keyIndex[R, K], int) {
	var found *keyIndex[R, K]
	pos := -1
	for i, ix := range t.indexes {
		if !sameFields(ix.Fields(), fields) {
			continue
		}
		typed, ok := ix.(*keyIndex[R, K])
		if !ok {
			continue
		}
		if found == nil || (typed.unique && !found.unique) {
			found, pos = typed, i
		}
	}
	return found, pos
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func indexPos[R any](t *table[R], ix rowIndex[R]) int {
	for i, other := range t.indexes {
		if other == ix {
			return i
		}
	}
	return -1
}
