package store

import (
	"fmt"
	"slices"

	"github.com/KilimcininKorOglu/snapstore/internal/storage/mvcc"
	"github.com/KilimcininKorOglu/snapstore/internal/storage/paged"
	"github.com/KilimcininKorOglu/snapstore/internal/storage/tx"
)

// tableState is the per-version shape of a table: index roots, the live
// row count, and how much of the change log belongs to the version.
// Committed states are never modified; the pending state of the open
// transaction is modified in place by its owner only.
type tableState struct {
	roots  []any
	live   int
	logEnd int
}

func (st *tableState) clone() *tableState {
	return &tableState{
		roots:  slices.Clone(st.roots),
		live:   st.live,
		logEnd: st.logEnd,
	}
}

// logEntry records that a row changed at a version.
// Each row is logged at most once per version and entries are appended in
// version order, so the entries of versions (a, b] are exactly
// log[logEnd(a):logEnd(b)].
type logEntry struct {
	version int
	handle  RowHandle
}

// anyTable is the type-erased table surface used by the engine for
// commit, rollback, replay and cascading deletes.
type anyTable interface {
	Name() string

	live(h RowHandle, at int) bool
	deleteRow(ctx *tx.Context, h RowHandle) error
	incoming() []fkLink
	addIncoming(fk fkLink)

	prepare(ctx *tx.Context) error
	rollback(ctx *tx.Context)
	replay(ctx *tx.Context, source int, e tx.Entry)
	changedBetween(from, to int) bool
}

// table holds the rows, indexes and foreign keys of one table.
type table[R any] struct {
	name  string
	eng   *engine
	order int

	fields  []FieldDescriptor[R]
	byName  map[string]FieldDescriptor[R]
	indexes []rowIndex[R]
	primary rowIndex[R]

	outgoing []fkLink
	inbound  []fkLink

	rows  *paged.PagedArray[mvcc.Chain[R]]
	log   *paged.PagedArray[logEntry]
	state mvcc.Chain[*tableState]
}

func newTable[R any](eng *engine, name string, fields []FieldDescriptor[R]) (*table[R], error) {
	rows, err := paged.New[mvcc.Chain[R]](eng.opts.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: table %q: %v", ErrUsage, name, err)
	}
	log, err := paged.New[logEntry](eng.opts.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: table %q: %v", ErrUsage, name, err)
	}

	t := &table[R]{
		name:   name,
		eng:    eng,
		order:  eng.opts.btreeOrder,
		byName: make(map[string]FieldDescriptor[R], len(fields)),
		rows:   rows,
		log:    log,
	}
	for i, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: table %q: field %d is nil", ErrUsage, name, i)
		}
		if _, dup := t.byName[f.FieldName()]; dup {
			return nil, fmt.Errorf("%w: table %q: duplicate field %q", ErrUsage, name, f.FieldName())
		}
		if err := f.bind(i); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		t.fields = append(t.fields, f)
		t.byName[f.FieldName()] = f
	}
	t.state.Put(0, mvcc.VersionActive, &tableState{})
	return t, nil
}

// Name returns the table name.
func (t *table[R]) Name() string {
	return t.name
}

// owns reports whether f is a field of this table.
func (t *table[R]) owns(f FieldDescriptor[R]) bool {
	g, ok := t.byName[f.FieldName()]
	return ok && g == f
}

// stateAt returns the table state visible at version at.
func (t *table[R]) stateAt(at int) *tableState {
	return t.state.Visible(at).Data
}

// pending returns the state of the open transaction, creating it from the
// committed state on first write.
func (t *table[R]) pending(ctx *tx.Context) *tableState {
	head := t.state.Head()
	if head.Number == ctx.Pending {
		return head.Data
	}
	st := head.Data.clone()
	t.state.Put(ctx.Pending, mvcc.VersionActive, st)
	ctx.Touch(t.name)
	return st
}

// chain returns the version chain of h, or nil for unknown handles.
func (t *table[R]) chain(h RowHandle) *mvcc.Chain[R] {
	c, err := t.rows.ItemAddress(int(h))
	if err != nil {
		return nil
	}
	return c
}

// version returns the row version of h visible at at, or nil.
func (t *table[R]) version(h RowHandle, at int) *mvcc.Version[R] {
	c := t.chain(h)
	if c == nil {
		return nil
	}
	return c.Visible(at)
}

func (t *table[R]) live(h RowHandle, at int) bool {
	return t.version(h, at).IsActive()
}

// put records a new row state at the pending version and logs the first
// change of h in this version.
func (t *table[R]) put(ctx *tx.Context, st *tableState, c *mvcc.Chain[R], h RowHandle, state mvcc.VersionState, data R) {
	if c.Put(ctx.Pending, state, data) {
		t.log.Add(logEntry{version: ctx.Pending, handle: h})
		st.logEnd = t.log.Count()
	}
}

// insertRow writes a new row. Uniqueness must already be checked.
func (t *table[R]) insertRow(ctx *tx.Context, row R) (RowHandle, error) {
	st := t.pending(ctx)
	idx, c := t.rows.Allocate()
	h := RowHandle(idx)
	t.put(ctx, st, c, h, mvcc.VersionActive, row)

	for i, ix := range t.indexes {
		root, err := ix.add(st.roots[i], ctx.Pending, &row, h)
		if err != nil {
			return Empty, fmt.Errorf("index %q: %w", ix.Name(), err)
		}
		st.roots[i] = root
	}
	st.live++
	return h, nil
}

// updateRow replaces a live row. Uniqueness must already be checked, or be
// left to prepare.
func (t *table[R]) updateRow(ctx *tx.Context, h RowHandle, old, updated R) error {
	st := t.pending(ctx)
	for i, ix := range t.indexes {
		if !ix.moved(&old, &updated) {
			continue
		}
		root, err := ix.remove(st.roots[i], ctx.Pending, &old, h)
		if err != nil {
			return fmt.Errorf("index %q: %w", ix.Name(), err)
		}
		root, err = ix.add(root, ctx.Pending, &updated, h)
		if err != nil {
			return fmt.Errorf("index %q: %w", ix.Name(), err)
		}
		st.roots[i] = root
	}
	t.put(ctx, st, t.chain(h), h, mvcc.VersionActive, updated)
	return nil
}

func (t *table[R]) deleteRow(ctx *tx.Context, h RowHandle) error {
	v := t.version(h, ctx.Pending)
	if !v.IsActive() {
		return fmt.Errorf("%w: %s row %d", ErrStaleReference, t.name, h)
	}
	st := t.pending(ctx)
	row := v.Data
	for i, ix := range t.indexes {
		root, err := ix.remove(st.roots[i], ctx.Pending, &row, h)
		if err != nil {
			return fmt.Errorf("index %q: %w", ix.Name(), err)
		}
		st.roots[i] = root
	}
	var zero R
	t.put(ctx, st, t.chain(h), h, mvcc.VersionDeleted, zero)
	st.live--
	return nil
}

func (t *table[R]) incoming() []fkLink {
	return t.inbound
}

func (t *table[R]) addIncoming(fk fkLink) {
	t.inbound = append(t.inbound, fk)
}

// changed returns the log range holding the changes of versions (from, to].
// A row appears once per version it changed in.
func (t *table[R]) changed(from, to int) (lo, hi int) {
	return t.stateAt(from).logEnd, t.stateAt(to).logEnd
}

func (t *table[R]) changedBetween(from, to int) bool {
	lo, hi := t.changed(from, to)
	return hi > lo
}

// entry returns the log entry at i.
func (t *table[R]) entry(i int) logEntry {
	e, _ := t.log.At(i)
	return e
}

// prepare validates every row written by the open transaction.
func (t *table[R]) prepare(ctx *tx.Context) error {
	head := t.state.Head()
	if head.Number != ctx.Pending {
		return nil
	}
	st := head.Data
	lo := t.stateAt(ctx.Base).logEnd

	for i := lo; i < st.logEnd; i++ {
		h := t.entry(i).handle
		v := t.version(h, ctx.Pending)
		if v.IsActive() {
			row := v.Data
			for j, ix := range t.indexes {
				if ix.Unique() && ix.duplicated(st.roots[j], &row) {
					return fmt.Errorf("%w: %s row %d duplicates a key of index %q", ErrUniqueConstraint, t.name, h, ix.Name())
				}
			}
			for _, fk := range t.outgoing {
				if fk.orphaned(h, ctx.Pending) {
					return fmt.Errorf("%w: %s row %d has no parent in %s (%s)", ErrForeignKey, t.name, h, fk.parentTable().Name(), fk.Name())
				}
			}
		}
		for _, fk := range t.inbound {
			if fk.released(h, ctx.Base, ctx.Pending) {
				return fmt.Errorf("%w: %s row %d is still referenced by %s (%s)", ErrForeignKey, t.name, h, fk.childTable().Name(), fk.Name())
			}
		}
	}
	return nil
}

// rollback discards the pending state and every row version it wrote.
// Rows created by the transaction are left allocated with an empty chain,
// which reads as deleted at every version.
func (t *table[R]) rollback(ctx *tx.Context) {
	head := t.state.Head()
	if head.Number != ctx.Pending {
		return
	}
	committed := t.stateAt(ctx.Base)
	for i := committed.logEnd; i < head.Data.logEnd; i++ {
		if c := t.chain(t.entry(i).handle); c != nil {
			c.Truncate(ctx.Base)
		}
	}
	_ = t.log.Shrink(committed.logEnd)
	t.state.Truncate(ctx.Base)
}

// replay restores every row changed by e to its state at source, and the
// indexes to their roots at source.
func (t *table[R]) replay(ctx *tx.Context, source int, e tx.Entry) {
	st := t.pending(ctx)
	lo, hi := t.changed(e.Before, e.After)
	for i := lo; i < hi; i++ {
		h := t.entry(i).handle
		c := t.chain(h)
		if v := c.Visible(source); v.IsActive() {
			t.put(ctx, st, c, h, mvcc.VersionActive, v.Data)
		} else {
			var zero R
			t.put(ctx, st, c, h, mvcc.VersionDeleted, zero)
		}
	}

	src := t.stateAt(source)
	st.roots = slices.Clone(src.roots)
	st.live = src.live
}
