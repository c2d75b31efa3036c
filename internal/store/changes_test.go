package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChangesNetEffect(t *testing.T) {
	s := New()
	items, f := createItems(t, s, "items")
	others, _ := createItems(t, s, "others")
	require.NoError(t, s.FreezeShape())

	begin(t, s)
	z := insert(t, items, item{Name: "z", Value: 1})
	q := insert(t, items, item{Name: "q"})
	insert(t, others, item{})
	commit(t, s)

	begin(t, s)
	x := insert(t, items, item{Name: "x"})
	y := insert(t, items, item{Name: "y"})
	_, err := SetField(items, z, f.Value, 2)
	require.NoError(t, err)
	_, err = SetField(items, z, f.Value, 3)
	require.NoError(t, err)
	w := insert(t, items, item{Name: "w"})
	require.NoError(t, items.Delete(w))
	_, err = SetField(items, q, f.Name, "q2")
	require.NoError(t, err)
	require.NoError(t, items.Delete(q))
	commit(t, s)

	seq, err := items.GetChanges(2)
	require.NoError(t, err)
	var order []RowHandle
	var actions []ChangeAction
	for c := range seq {
		order = append(order, c.Handle)
		actions = append(actions, c.Action)

		switch c.Handle {
		case z:
			old, ok := c.Old()
			require.True(t, ok)
			cur, ok := c.New()
			require.True(t, ok)
			assert.Equal(t, 1, old.Value)
			assert.Equal(t, 3, cur.Value)
		case x:
			_, ok := c.Old()
			assert.False(t, ok)
		case q:
			old, ok := c.Old()
			require.True(t, ok)
			assert.Equal(t, "q", old.Name)
			_, ok = c.New()
			assert.False(t, ok)
		}
	}
	assert.Equal(t, []RowHandle{x, y, z, q}, order)
	assert.Equal(t, []ChangeAction{ActionInsert, ActionInsert, ActionUpdate, ActionDelete}, actions)

	untouched, err := others.GetChanges(2)
	require.NoError(t, err)
	assert.Nil(t, untouched)
	changed, err := others.WasChanged(1, 2)
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = others.WasChanged(0, 2)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestGetChangesRange(t *testing.T) {
	s := New()
	items, f := createItems(t, s, "items")
	require.NoError(t, s.FreezeShape())

	begin(t, s)
	a := insert(t, items, item{Name: "a"})
	b := insert(t, items, item{Name: "b"})
	commit(t, s)

	begin(t, s)
	c := insert(t, items, item{Name: "c"})
	_, err := SetField(items, a, f.Value, 1)
	require.NoError(t, err)
	commit(t, s)

	begin(t, s)
	require.NoError(t, items.Delete(b))
	_, err = SetField(items, c, f.Value, 5)
	require.NoError(t, err)
	commit(t, s)

	seq, err := items.GetChangesRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, map[RowHandle]ChangeAction{
		c: ActionInsert,
		a: ActionUpdate,
		b: ActionDelete,
	}, changesOf(t, seq))

	seq, err = items.GetChangesRange(0, 3)
	require.NoError(t, err)
	assert.Equal(t, map[RowHandle]ChangeAction{
		a: ActionInsert,
		c: ActionInsert,
	}, changesOf(t, seq), "b was born and removed inside the range")

	seq, err = items.GetChangesRange(2, 2)
	require.NoError(t, err)
	assert.Nil(t, seq)

	// Stopping early is allowed.
	seq, err = items.GetChangesRange(0, 3)
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)

	seq, err = items.GetChanges(0)
	require.NoError(t, err)
	assert.Nil(t, seq)
}

func TestChangeRangeErrors(t *testing.T) {
	s := New()
	items, _ := createItems(t, s, "items")
	require.NoError(t, s.FreezeShape())
	begin(t, s)
	insert(t, items, item{})
	commit(t, s)

	tests := []struct {
		name     string
		from, to int
	}{
		{"inverted", 1, 0},
		{"negative", -1, 1},
		{"future", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := items.WasChanged(tt.from, tt.to)
			assert.ErrorIs(t, err, ErrVersionRange)
			assert.ErrorIs(t, err, ErrUsage)
			_, err = items.GetChangesRange(tt.from, tt.to)
			assert.ErrorIs(t, err, ErrVersionRange)
		})
	}

	_, err := items.GetChanges(2)
	assert.ErrorIs(t, err, ErrVersionRange)
}

func TestChangeActionString(t *testing.T) {
	assert.Equal(t, "insert", ActionInsert.String())
	assert.Equal(t, "update", ActionUpdate.String())
	assert.Equal(t, "delete", ActionDelete.String())
	assert.Equal(t, "unknown", ChangeAction(9).String())
}
