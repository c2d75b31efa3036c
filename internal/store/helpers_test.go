package store

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// item is the row type used by most tests.
type item struct {
	ID     int
	Name   string
	Value  int
	Parent int
}

type itemFields struct {
	ID     *Field[item, int]
	Name   *Field[item, string]
	Value  *Field[item, int]
	Parent *Field[item, int]
}

func newItemFields() itemFields {
	return itemFields{
		ID:     NewField("ID", func(r *item) int { return r.ID }, func(r *item, v int) { r.ID = v }),
		Name:   NewField("Name", func(r *item) string { return r.Name }, func(r *item, v string) { r.Name = v }),
		Value:  NewField("Value", func(r *item) int { return r.Value }, func(r *item, v int) { r.Value = v }),
		Parent: NewField("Parent", func(r *item) int { return r.Parent }, func(r *item, v int) { r.Parent = v }),
	}
}

// createItems declares an item table with an auto-increment primary key.
func createItems(t *testing.T, s *StoreSnapshot, name string) (*TableSnapshot[item], itemFields) {
	t.Helper()
	f := newItemFields()
	ts, err := CreateTable[item](s, name, f.ID, f.Name, f.Value, f.Parent)
	require.NoError(t, err)
	require.NoError(t, MakeAutoUnique(ts, "pk_"+name, f.ID))
	return ts, f
}

func begin(t *testing.T, s *StoreSnapshot) {
	t.Helper()
	ok, err := s.StartTransaction()
	require.NoError(t, err)
	require.True(t, ok)
}

func commit(t *testing.T, s *StoreSnapshot) {
	t.Helper()
	require.NoError(t, s.Commit())
}

func insert(t *testing.T, ts *TableSnapshot[item], row item) RowHandle {
	t.Helper()
	h, err := ts.Insert(row)
	require.NoError(t, err)
	return h
}

func collect(seq iter.Seq[RowHandle]) []RowHandle {
	var out []RowHandle
	for h := range seq {
		out = append(out, h)
	}
	return out
}

func sorted(hs []RowHandle) []RowHandle {
	out := slices.Clone(hs)
	slices.Sort(out)
	return out
}

// contents returns every live row the snapshot reads.
func contents(t *testing.T, ts *TableSnapshot[item]) map[RowHandle]item {
	t.Helper()
	out := make(map[RowHandle]item)
	for h := range ts.Rows() {
		row, err := ts.GetData(h)
		require.NoError(t, err)
		out[h] = row
	}
	return out
}

func changesOf[R any](t *testing.T, seq iter.Seq[Change[R]]) map[RowHandle]ChangeAction {
	t.Helper()
	out := make(map[RowHandle]ChangeAction)
	for c := range seq {
		_, dup := out[c.Handle]
		require.False(t, dup, "row %d reported twice", c.Handle)
		out[c.Handle] = c.Action
	}
	return out
}
