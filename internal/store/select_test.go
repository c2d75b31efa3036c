package store

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectMatchesScan runs the same edits against an indexed and an
// unindexed table and compares every range query.
func TestSelectMatchesScan(t *testing.T) {
	s := New(WithBTreeOrder(4), WithPageSize(16))
	indexed, fi := createItems(t, s, "indexed")
	require.NoError(t, CreateIndex(indexed, "ix_value", fi.Value))
	require.NoError(t, CreateIndex(indexed, "ix_name", fi.Name))
	plain, fp := createItems(t, s, "plain")
	require.NoError(t, s.FreezeShape())

	names := []string{"and", "or", "xor", "not", "nand"}
	rng := rand.New(rand.NewPCG(7, 11))

	begin(t, s)
	var hs []RowHandle
	for i := 0; i < 300; i++ {
		row := item{Name: names[rng.IntN(len(names))], Value: rng.IntN(20)}
		h1 := insert(t, indexed, row)
		h2 := insert(t, plain, row)
		require.Equal(t, h1, h2)
		hs = append(hs, h1)
	}
	commit(t, s)
	reader, err := NewSnapshot(s)
	require.NoError(t, err)
	oldIndexed, err := OpenTable[item](reader, "indexed")
	require.NoError(t, err)
	oldPlain, err := OpenTable[item](reader, "plain")
	require.NoError(t, err)

	begin(t, s)
	for i := 0; i < 80; i++ {
		h := hs[rng.IntN(len(hs))]
		if indexed.IsDeleted(h) {
			continue
		}
		if i%3 == 0 {
			require.NoError(t, indexed.Delete(h))
			require.NoError(t, plain.Delete(h))
			continue
		}
		v := rng.IntN(22) - 1
		_, err := SetField(indexed, h, fi.Value, v)
		require.NoError(t, err)
		_, err = SetField(plain, h, fp.Value, v)
		require.NoError(t, err)
	}

	compare := func(a, b *TableSnapshot[item]) {
		t.Helper()
		for lo := -2; lo <= 21; lo++ {
			for hi := lo - 1; hi <= 21; hi++ {
				assert.ElementsMatch(t,
					collect(SelectRange(a, fi.Value, lo, hi)),
					collect(SelectRange(b, fp.Value, lo, hi)),
					"range [%d, %d]", lo, hi)
			}
			assert.Equal(t, Exists(a, fi.Value, lo), Exists(b, fp.Value, lo))
		}
		for _, name := range names {
			assert.ElementsMatch(t, collect(Select(a, fi.Name, name)), collect(Select(b, fp.Name, name)))
		}
		assert.Equal(t, sorted(collect(a.Rows())), collect(b.Rows()))

		minA, okA := Minimum(a, fi.Value)
		minB, okB := Minimum(b, fp.Value)
		assert.Equal(t, okA, okB)
		assert.Equal(t, minA, minB)
		maxA, _ := Maximum(a, fi.Value)
		maxB, _ := Maximum(b, fp.Value)
		assert.Equal(t, maxA, maxB)
	}

	compare(indexed, plain)
	compare(oldIndexed, oldPlain)
	commit(t, s)
	compare(indexed, plain)
	compare(oldIndexed, oldPlain)
}

func TestExtremaOfEmptyTable(t *testing.T) {
	s := New()
	items, f := createItems(t, s, "items")
	require.NoError(t, s.FreezeShape())

	_, ok := Minimum(items, f.Value)
	assert.False(t, ok)
	_, ok = Maximum(items, f.ID)
	assert.False(t, ok)
	assert.True(t, items.IsEmpty())
	assert.Empty(t, collect(items.Rows()))
	assert.False(t, Exists(items, f.Value, 0))
}

func TestSelect2(t *testing.T) {
	s := New()
	indexed, fi := createItems(t, s, "indexed")
	require.NoError(t, CreateIndex2(indexed, "ix_parent_name", fi.Parent, fi.Name))
	plain, fp := createItems(t, s, "plain")
	require.NoError(t, s.FreezeShape())

	begin(t, s)
	for i := 0; i < 40; i++ {
		row := item{Parent: i % 3, Name: []string{"a", "b"}[i%2]}
		insert(t, indexed, row)
		insert(t, plain, row)
	}
	require.NoError(t, indexed.Delete(4))
	require.NoError(t, plain.Delete(4))
	commit(t, s)

	for p := 0; p < 4; p++ {
		for _, name := range []string{"a", "b", "c"} {
			got := collect(Select2(indexed, fi.Parent, p, fi.Name, name))
			assert.ElementsMatch(t, got, collect(Select2(plain, fp.Parent, p, fp.Name, name)))
			for _, h := range got {
				row, err := indexed.GetData(h)
				require.NoError(t, err)
				assert.Equal(t, p, row.Parent)
				assert.Equal(t, name, row.Name)
			}
		}
	}
	assert.NotContains(t, collect(Select2(indexed, fi.Parent, 1, fi.Name, "a")), RowHandle(4))
}
