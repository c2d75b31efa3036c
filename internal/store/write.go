package store

import (
	"fmt"

	"github.com/KilimcininKorOglu/snapstore/internal/storage/tx"
)

// Insert adds row and returns its handle. The row is visible to other
// snapshots once the transaction commits.
// Fields with DefaultOnZero are filled, auto-increment keys are assigned,
// and every unique index is checked before anything is written.
func (ts *TableSnapshot[R]) Insert(row R) (RowHandle, error) {
	ctx, err := ts.s.writer()
	if err != nil {
		return Empty, err
	}
	t := ts.t

	for _, f := range t.fields {
		f.fill(&row)
	}

	st := t.stateAt(ctx.Pending)
	for i, ix := range t.indexes {
		ix.assign(st.roots[i], &row)
	}
	for i, ix := range t.indexes {
		if !ix.Unique() {
			continue
		}
		if other, dup := ix.conflict(st.roots[i], &row, Empty); dup {
			return Empty, fmt.Errorf("%w: %s index %q already holds the key of row %d", ErrUniqueConstraint, t.name, ix.Name(), other)
		}
	}

	return t.insertRow(ctx, row)
}

// SetField writes value into field of row h. It returns false when the
// field already holds value.
func SetField[R, V any](ts *TableSnapshot[R], h RowHandle, field *Field[R, V], value V) (bool, error) {
	ctx, err := ts.s.writer()
	if err != nil {
		return false, err
	}
	t := ts.t
	if err := t.checkFields(field); err != nil {
		return false, err
	}

	v := t.version(h, ctx.Pending)
	if !v.IsActive() {
		return false, fmt.Errorf("%w: %s row %d", ErrStaleReference, t.name, h)
	}
	old := v.Data
	if field.Compare(field.Get(&old), value) == 0 {
		return false, nil
	}
	updated := old
	field.Set(&updated, value)

	st := t.stateAt(ctx.Pending)
	for i, ix := range t.indexes {
		if !ix.Unique() || !ix.moved(&old, &updated) {
			continue
		}
		if other, dup := ix.conflict(st.roots[i], &updated, h); dup {
			return false, fmt.Errorf("%w: %s index %q already holds the key of row %d", ErrUniqueConstraint, t.name, ix.Name(), other)
		}
	}

	if err := t.updateRow(ctx, h, old, updated); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes row h and applies the foreign key actions of every row
// referencing it. A restricting reference fails the delete before anything
// is written.
func (ts *TableSnapshot[R]) Delete(h RowHandle) error {
	ctx, err := ts.s.writer()
	if err != nil {
		return err
	}
	if !ts.t.live(h, ctx.Pending) {
		return fmt.Errorf("%w: %s row %d", ErrStaleReference, ts.t.name, h)
	}

	plan, err := planDelete(ts.t, h, ctx.Pending)
	if err != nil {
		ts.s.logger.Debug("delete rejected", "table", ts.t.name, "row", int(h), "error", err)
		return err
	}
	return plan.apply(ctx)
}

// rowRef identifies a row across tables.
type rowRef struct {
	t anyTable
	h RowHandle
}

// resetRef is a child row whose reference is rewritten to its default.
type resetRef struct {
	fk    fkLink
	child RowHandle
}

// deletePlan lists the rows a delete removes and the references it resets.
type deletePlan struct {
	order     []rowRef
	scheduled map[rowRef]struct{}
	resets    []resetRef
}

func (p *deletePlan) isScheduled(t anyTable, h RowHandle) bool {
	_, ok := p.scheduled[rowRef{t: t, h: h}]
	return ok
}

func (p *deletePlan) schedule(ref rowRef) {
	p.scheduled[ref] = struct{}{}
	p.order = append(p.order, ref)
}

// restrictRef is a child row that blocks the delete unless a cascade also
// removes it.
type restrictRef struct {
	fk     fkLink
	parent rowRef
	child  RowHandle
}

// planDelete walks the foreign keys breadth first from (root, h). The
// scheduled set makes every row appear once, so reference cycles end.
// Restricting and defaulting references are judged against the complete
// cascade closure, so the outcome does not depend on declaration order.
func planDelete(root anyTable, h RowHandle, at int) (*deletePlan, error) {
	plan := &deletePlan{scheduled: make(map[rowRef]struct{})}
	plan.schedule(rowRef{t: root, h: h})
	var restricts []restrictRef

	for i := 0; i < len(plan.order); i++ {
		ref := plan.order[i]
		for _, fk := range ref.t.incoming() {
			for _, child := range fk.children(ref.h, at) {
				cref := rowRef{t: fk.childTable(), h: child}
				if plan.isScheduled(cref.t, cref.h) {
					continue
				}
				switch fk.Action() {
				case Cascade:
					plan.schedule(cref)
				case Restrict:
					restricts = append(restricts, restrictRef{fk: fk, parent: ref, child: child})
				case SetDefault:
					plan.resets = append(plan.resets, resetRef{fk: fk, child: child})
				}
			}
		}
	}

	for _, r := range restricts {
		if plan.isScheduled(r.fk.childTable(), r.child) {
			continue
		}
		return nil, fmt.Errorf("%w: %s row %d is referenced by %s row %d (%s)",
			ErrForeignKey, r.parent.t.Name(), r.parent.h, r.fk.childTable().Name(), r.child, r.fk.Name())
	}
	for _, r := range plan.resets {
		if plan.isScheduled(r.fk.childTable(), r.child) {
			continue
		}
		if !r.fk.defaultAvailable(at, plan.isScheduled) {
			return nil, fmt.Errorf("%w: %s row %d cannot fall back to its default (%s)",
				ErrForeignKey, r.fk.childTable().Name(), r.child, r.fk.Name())
		}
	}
	return plan, nil
}

// apply deletes the scheduled rows, then resets surviving references.
func (p *deletePlan) apply(ctx *tx.Context) error {
	for _, ref := range p.order {
		if err := ref.t.deleteRow(ctx, ref.h); err != nil {
			return err
		}
	}
	for _, r := range p.resets {
		if p.isScheduled(r.fk.childTable(), r.child) {
			continue
		}
		if err := r.fk.resetChild(ctx, r.child); err != nil {
			return err
		}
	}
	return nil
}
