package btree

import (
	"cmp"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIntTree creates a small-order tree so splits and merges happen early.
func newIntTree(t *testing.T, order int) *Tree[int] {
	t.Helper()
	tree, err := New[int](cmp.Compare[int], order)
	require.NoError(t, err)
	return tree
}

// checkInvariants verifies ordering, balance, and node fill of a root.
func checkInvariants[K any](t *testing.T, tree *Tree[K], r Root[K]) {
	t.Helper()
	if r.node == nil {
		assert.Equal(t, 0, r.size)
		return
	}

	leafDepth := -1
	count := 0
	var prev *Entry[K]

	var walk func(n *node[K], depth int, isRoot bool)
	walk = func(n *node[K], depth int, isRoot bool) {
		if !isRoot {
			assert.False(t, tree.isUnderflow(n), "node underflow at depth %d", depth)
		}
		assert.LessOrEqual(t, n.size(), tree.order, "node overflow at depth %d", depth)

		if n.leaf {
			if leafDepth == -1 {
				leafDepth = depth
			}
			assert.Equal(t, leafDepth, depth, "leaves at different depths")
			for i := range n.entries {
				e := n.entries[i]
				if prev != nil {
					assert.Negative(t, tree.compareEntries(*prev, e), "entries out of order")
				}
				prev = &e
				count++
			}
			return
		}

		require.Equal(t, len(n.entries)+1, len(n.children))
		for _, c := range n.children {
			walk(c, depth+1, false)
		}
	}
	walk(r.node, 0, true)
	assert.Equal(t, r.size, count, "size does not match entry count")
}

func TestNew_Validation(t *testing.T) {
	_, err := New[int](nil, 0)
	assert.ErrorIs(t, err, ErrNilCompare)

	_, err = New[int](cmp.Compare[int], 3)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	tree, err := New[int](cmp.Compare[int], 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrder, tree.Order())
}

// =============================================================================
// Insert Tests
// =============================================================================

func TestInsert_SingleAndGet(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	r, err := tree.Insert(r, 1, Entry[int]{Key: 42, Row: 7})
	require.NoError(t, err)

	e, found := tree.Get(r, 42)
	assert.True(t, found)
	assert.Equal(t, 7, e.Row)

	_, found = tree.Get(r, 41)
	assert.False(t, found)
	assert.Equal(t, 1, r.Len())
}

func TestInsert_ExactDuplicateFails(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	r, err := tree.Insert(r, 1, Entry[int]{Key: 1, Row: 1})
	require.NoError(t, err)

	same, err := tree.Insert(r, 1, Entry[int]{Key: 1, Row: 1})
	assert.ErrorIs(t, err, ErrKeyExists)
	assert.Equal(t, r, same)

	r, err = tree.Insert(r, 1, Entry[int]{Key: 1, Row: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Count(r, 1))
}

func TestInsert_ManySplits(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	var err error
	perm := rand.New(rand.NewSource(1)).Perm(500)
	for i, k := range perm {
		r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: i})
		require.NoError(t, err)
	}

	checkInvariants(t, tree, r)
	assert.Equal(t, 500, r.Len())

	stats := tree.Stats(r)
	assert.Greater(t, stats.Height, 3)
	assert.Equal(t, 500, stats.TotalEntries)

	prev := -1
	for e := range tree.All(r) {
		assert.Greater(t, e.Key, prev)
		prev = e.Key
	}
}

// =============================================================================
// Delete Tests
// =============================================================================

func TestDelete_NotFound(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	_, err := tree.Delete(r, 1, Entry[int]{Key: 1})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	r, err = tree.Insert(r, 1, Entry[int]{Key: 1, Row: 1})
	require.NoError(t, err)
	_, err = tree.Delete(r, 1, Entry[int]{Key: 1, Row: 2})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDelete_RandomOrderKeepsBalance(t *testing.T) {
	for _, order := range []int{4, 5, 8, 32} {
		tree := newIntTree(t, order)
		rng := rand.New(rand.NewSource(int64(order)))

		var r Root[int]
		var err error
		keys := rng.Perm(400)
		for _, k := range keys {
			r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: k})
			require.NoError(t, err)
		}

		rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		for i, k := range keys {
			r, err = tree.Delete(r, 1, Entry[int]{Key: k, Row: k})
			require.NoError(t, err, "order %d delete %d", order, k)
			if i%37 == 0 {
				checkInvariants(t, tree, r)
			}
			_, found := tree.Get(r, k)
			assert.False(t, found)
		}
		assert.True(t, r.IsEmpty())
	}
}

func TestUpdate(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	var err error
	for i := 0; i < 20; i++ {
		r, err = tree.Insert(r, 1, Entry[int]{Key: i * 10, Row: i})
		require.NoError(t, err)
	}

	r, err = tree.Update(r, 1, Entry[int]{Key: 50, Row: 5}, Entry[int]{Key: 55, Row: 5})
	require.NoError(t, err)
	_, found := tree.Get(r, 50)
	assert.False(t, found)
	e, found := tree.Get(r, 55)
	assert.True(t, found)
	assert.Equal(t, 5, e.Row)

	before := r
	r, err = tree.Update(r, 1, Entry[int]{Key: 999, Row: 1}, Entry[int]{Key: 1, Row: 1})
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, before, r)
}

// =============================================================================
// Persistence Tests
// =============================================================================

func TestPersistence_OldRootsUnchanged(t *testing.T) {
	tree := newIntTree(t, 4)

	roots := make([]Root[int], 0)
	var r Root[int]
	var err error

	// One generation per "version", ten keys each.
	for gen := 1; gen <= 10; gen++ {
		for i := 0; i < 10; i++ {
			k := (gen-1)*10 + i
			r, err = tree.Insert(r, gen, Entry[int]{Key: k, Row: k})
			require.NoError(t, err)
		}
		roots = append(roots, r)
	}

	// Delete everything even in a new generation.
	for k := 0; k < 100; k += 2 {
		r, err = tree.Delete(r, 11, Entry[int]{Key: k, Row: k})
		require.NoError(t, err)
	}
	checkInvariants(t, tree, r)
	assert.Equal(t, 50, r.Len())

	for i, old := range roots {
		checkInvariants(t, tree, old)
		assert.Equal(t, (i+1)*10, old.Len())
		got := tree.Collect(old, nil, nil)
		require.Len(t, got, (i+1)*10)
		for k, e := range got {
			assert.Equal(t, k, e.Key)
		}
	}
}

// =============================================================================
// Range Tests
// =============================================================================

func TestRange_NonUniqueDuplicatesOnce(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	var err error
	row := 0
	expected := map[int][]int{}
	for k := 0; k < 10; k++ {
		for d := 0; d < 7; d++ {
			r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: row})
			require.NoError(t, err)
			expected[k] = append(expected[k], row)
			row++
		}
	}
	checkInvariants(t, tree, r)

	for k := 0; k < 10; k++ {
		var rows []int
		for e := range tree.Range(r, &k, &k) {
			rows = append(rows, e.Row)
		}
		assert.Equal(t, expected[k], rows, "key %d", k)
	}

	lo, hi := 3, 5
	var got []int
	for e := range tree.Range(r, &lo, &hi) {
		got = append(got, e.Row)
	}
	var want []int
	for k := 3; k <= 5; k++ {
		want = append(want, expected[k]...)
	}
	assert.Equal(t, want, got)
}

func TestRange_Bounds(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	var err error
	for k := 0; k < 100; k += 5 {
		r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: k})
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		lo   *int
		hi   *int
		want int
	}{
		{"open", nil, nil, 20},
		{"lower only", ptr(50), nil, 10},
		{"upper only", nil, ptr(12), 3},
		{"between keys", ptr(11), ptr(29), 4},
		{"inverted", ptr(30), ptr(10), 0},
		{"above all", ptr(1000), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tree.Collect(r, tt.lo, tt.hi), tt.want)
		})
	}
}

func TestRange_EarlyStop(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	var err error
	for k := 0; k < 50; k++ {
		r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: k})
		require.NoError(t, err)
	}

	seen := 0
	for range tree.All(r) {
		seen++
		if seen == 7 {
			break
		}
	}
	assert.Equal(t, 7, seen)
}

func TestMinMaxDescend(t *testing.T) {
	tree := newIntTree(t, 4)

	var r Root[int]
	_, ok := tree.Min(r)
	assert.False(t, ok)
	_, ok = tree.Max(r)
	assert.False(t, ok)

	keys := rand.New(rand.NewSource(3)).Perm(60)
	var err error
	for _, k := range keys {
		r, err = tree.Insert(r, 1, Entry[int]{Key: k, Row: k})
		require.NoError(t, err)
	}

	mn, ok := tree.Min(r)
	assert.True(t, ok)
	assert.Equal(t, 0, mn.Key)
	mx, ok := tree.Max(r)
	assert.True(t, ok)
	assert.Equal(t, 59, mx.Key)

	var desc []int
	for e := range tree.Descend(r) {
		desc = append(desc, e.Key)
	}
	assert.True(t, sort.SliceIsSorted(desc, func(i, j int) bool { return desc[i] > desc[j] }))
	assert.Len(t, desc, 60)

	assert.True(t, tree.Contains(r, Entry[int]{Key: 10, Row: 10}))
	assert.False(t, tree.Contains(r, Entry[int]{Key: 10, Row: 11}))
}

func ptr(v int) *int {
	return &v
}
