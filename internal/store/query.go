package store

import (
	"fmt"
	"iter"
)

// GetData returns a copy of row h at the version the snapshot reads.
func (ts *TableSnapshot[R]) GetData(h RowHandle) (R, error) {
	v := ts.t.version(h, ts.s.readVersion())
	if !v.IsActive() {
		var zero R
		return zero, fmt.Errorf("%w: %s row %d", ErrStaleReference, ts.t.name, h)
	}
	return v.Data, nil
}

// GetField returns field of row h at the version the snapshot reads.
func GetField[R, V any](ts *TableSnapshot[R], h RowHandle, field *Field[R, V]) (V, error) {
	row, err := ts.GetData(h)
	if err != nil {
		var zero V
		return zero, err
	}
	return field.Get(&row), nil
}

// IsDeleted reports whether h is not live at the version the snapshot
// reads. Handles the table never issued are reported as deleted too.
func (ts *TableSnapshot[R]) IsDeleted(h RowHandle) bool {
	return !ts.t.live(h, ts.s.readVersion())
}

// Rows returns the live row handles in handle order.
func (ts *TableSnapshot[R]) Rows() iter.Seq[RowHandle] {
	at := ts.s.readVersion()
	n := ts.t.rows.Count()
	return func(yield func(RowHandle) bool) {
		for i := 0; i < n; i++ {
			h := RowHandle(i)
			if ts.t.live(h, at) && !yield(h) {
				return
			}
		}
	}
}

// Count returns the number of live rows.
func (ts *TableSnapshot[R]) Count() int {
	return ts.t.stateAt(ts.s.readVersion()).live
}

// IsEmpty reports whether the table has no live rows.
func (ts *TableSnapshot[R]) IsEmpty() bool {
	return ts.Count() == 0
}

// History returns the versions at which row h changed, newest first.
func (ts *TableSnapshot[R]) History(h RowHandle) []int {
	c := ts.t.chain(h)
	if c == nil {
		return nil
	}
	at := ts.s.readVersion()
	var out []int
	for _, n := range c.Numbers() {
		if n <= at {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the row holding value in the unique index on field, or
// Empty. It fails with ErrUsage when field has no unique index.
func Find[R, V any](ts *TableSnapshot[R], field *Field[R, V], value V) (RowHandle, error) {
	ix, pos := uniqueOn[R, V](ts.t, field.Name)
	if ix == nil {
		return Empty, fmt.Errorf("%w: %s has no unique index on %q", ErrUsage, ts.t.name, field.Name)
	}
	return ix.lookup(ts.t.stateAt(ts.s.readVersion()).roots[pos], value), nil
}

// Find2 returns the row holding (v1, v2) in the unique index on
// (f1, f2), or Empty.
func Find2[R, V1, V2 any](ts *TableSnapshot[R], f1 *Field[R, V1], v1 V1, f2 *Field[R, V2], v2 V2) (RowHandle, error) {
	ix, pos := uniqueOn[R, pair[V1, V2]](ts.t, f1.Name, f2.Name)
	if ix == nil {
		return Empty, fmt.Errorf("%w: %s has no unique index on (%q, %q)", ErrUsage, ts.t.name, f1.Name, f2.Name)
	}
	key := pair[V1, V2]{First: v1, Second: v2}
	return ix.lookup(ts.t.stateAt(ts.s.readVersion()).roots[pos], key), nil
}

// Select returns the live rows whose field equals value.
func Select[R, V any](ts *TableSnapshot[R], field *Field[R, V], value V) iter.Seq[RowHandle] {
	return SelectRange(ts, field, value, value)
}

// SelectRange returns the live rows whose field lies in [lo, hi].
// An index on field is used when present; the result set is the same
// either way, only the order may differ.
func SelectRange[R, V any](ts *TableSnapshot[R], field *Field[R, V], lo, hi V) iter.Seq[RowHandle] {
	at := ts.s.readVersion()
	if ix, pos := indexOn[R, V](ts.t, field.Name); ix != nil {
		root := ix.root(ts.t.stateAt(at).roots[pos])
		return func(yield func(RowHandle) bool) {
			for e := range ix.tree.Range(root, &lo, &hi) {
				if !yield(RowHandle(e.Row)) {
					return
				}
			}
		}
	}

	rows := ts.Rows()
	return func(yield func(RowHandle) bool) {
		if field.Compare(lo, hi) > 0 {
			return
		}
		for h := range rows {
			v := ts.t.version(h, at).Data
			x := field.Get(&v)
			if field.Compare(x, lo) >= 0 && field.Compare(x, hi) <= 0 && !yield(h) {
				return
			}
		}
	}
}

// Select2 returns the live rows whose (f1, f2) equals (v1, v2). An index on
// exactly (f1, f2) is used when present.
func Select2[R, V1, V2 any](ts *TableSnapshot[R], f1 *Field[R, V1], v1 V1, f2 *Field[R, V2], v2 V2) iter.Seq[RowHandle] {
	at := ts.s.readVersion()
	if ix, pos := indexFor[R, pair[V1, V2]](ts.t, f1.Name, f2.Name); ix != nil {
		key := pair[V1, V2]{First: v1, Second: v2}
		root := ix.root(ts.t.stateAt(at).roots[pos])
		return func(yield func(RowHandle) bool) {
			for e := range ix.tree.Range(root, &key, &key) {
				if !yield(RowHandle(e.Row)) {
					return
				}
			}
		}
	}

	rows := ts.Rows()
	return func(yield func(RowHandle) bool) {
		for h := range rows {
			row := ts.t.version(h, at).Data
			if f1.Compare(f1.Get(&row), v1) == 0 && f2.Compare(f2.Get(&row), v2) == 0 && !yield(h) {
				return
			}
		}
	}
}

// Exists reports whether any live row has field equal to value.
func Exists[R, V any](ts *TableSnapshot[R], field *Field[R, V], value V) bool {
	for range Select(ts, field, value) {
		return true
	}
	return false
}

// Minimum returns the smallest value of field over the live rows.
func Minimum[R, V any](ts *TableSnapshot[R], field *Field[R, V]) (V, bool) {
	return extremum(ts, field, -1)
}

// Maximum returns the largest value of field over the live rows.
func Maximum[R, V any](ts *TableSnapshot[R], field *Field[R, V]) (V, bool) {
	return extremum(ts, field, 1)
}

func extremum[R, V any](ts *TableSnapshot[R], field *Field[R, V], sign int) (V, bool) {
	at := ts.s.readVersion()
	if ix, pos := indexOn[R, V](ts.t, field.Name); ix != nil {
		root := ix.root(ts.t.stateAt(at).roots[pos])
		e, ok := ix.tree.Min(root)
		if sign > 0 {
			e, ok = ix.tree.Max(root)
		}
		return e.Key, ok
	}

	var best V
	found := false
	for h := range ts.Rows() {
		row := ts.t.version(h, at).Data
		x := field.Get(&row)
		if !found || field.Compare(x, best)*sign > 0 {
			best, found = x, true
		}
	}
	return best, found
}
