package store

import (
	"fmt"
	"iter"

	"github.com/KilimcininKorOglu/snapstore/internal/storage/mvcc"
)

// ChangeAction is the net effect of a version range on one row.
type ChangeAction int

const (
	// ActionInsert means the row did not exist before the range.
	ActionInsert ChangeAction = iota
	// ActionUpdate means the row existed on both ends.
	ActionUpdate
	// ActionDelete means the row no longer exists after the range.
	ActionDelete
)

// String returns the string representation of a ChangeAction.
func (a ChangeAction) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is the net change of one row over a version range.
type Change[R any] struct {
	Handle RowHandle
	Action ChangeAction

	before *mvcc.Version[R]
	after  *mvcc.Version[R]
}

// Old returns the row at the start of the range. ok is false for inserts.
func (c Change[R]) Old() (row R, ok bool) {
	if !c.before.IsActive() {
		return row, false
	}
	return c.before.Data, true
}

// New returns the row at the end of the range. ok is false for deletes.
func (c Change[R]) New() (row R, ok bool) {
	if !c.after.IsActive() {
		return row, false
	}
	return c.after.Data, true
}

// checkRange validates 0 <= from <= to <= the version the snapshot reads.
func (ts *TableSnapshot[R]) checkRange(from, to int) error {
	if from < 0 || from > to || to > ts.s.readVersion() {
		return fmt.Errorf("%w: (%d, %d] on %s at version %d", ErrVersionRange, from, to, ts.t.name, ts.s.readVersion())
	}
	return nil
}

// WasChanged reports whether the table changed in versions (v1, v2].
func (ts *TableSnapshot[R]) WasChanged(v1, v2 int) (bool, error) {
	if err := ts.checkRange(v1, v2); err != nil {
		return false, err
	}
	return ts.t.changedBetween(v1, v2), nil
}

// GetChanges returns the net changes introduced by version alone.
// See GetChangesRange.
func (ts *TableSnapshot[R]) GetChanges(version int) (iter.Seq[Change[R]], error) {
	if version == 0 {
		return nil, nil
	}
	return ts.GetChangesRange(version-1, version)
}

// GetChangesRange returns the net changes of versions (from, to], one per
// row, in the order rows first changed. The sequence is nil when the table
// did not change at all in the range.
//
// Edits of one row coalesce: an insert followed by edits is an insert,
// edits alone are an update, and a row inserted and deleted within the
// range is left out.
// The open transaction is visible only to the snapshot that owns it.
func (ts *TableSnapshot[R]) GetChangesRange(from, to int) (iter.Seq[Change[R]], error) {
	if err := ts.checkRange(from, to); err != nil {
		return nil, err
	}
	t := ts.t
	lo, hi := t.changed(from, to)
	if hi <= lo {
		return nil, nil
	}

	return func(yield func(Change[R]) bool) {
		seen := make(map[RowHandle]struct{})
		for i := lo; i < hi; i++ {
			h := t.entry(i).handle
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}

			c := Change[R]{
				Handle: h,
				before: t.version(h, from),
				after:  t.version(h, to),
			}
			existed, exists := c.before.IsActive(), c.after.IsActive()
			switch {
			case !existed && exists:
				c.Action = ActionInsert
			case existed && exists:
				c.Action = ActionUpdate
			case existed:
				c.Action = ActionDelete
			default:
				continue
			}
			if !yield(c) {
				return
			}
		}
	}, nil
}
