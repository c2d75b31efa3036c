package paged

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PageSize(t *testing.T) {
	a, err := New[int](0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, a.PageSize())

	_, err = New[int](12)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = New[int](-4)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestPagedArray_AddAndAt(t *testing.T) {
	a, err := New[int](4)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, i, a.Add(i*10))
	}
	assert.Equal(t, 10, a.Count())

	for i := 0; i < 10; i++ {
		v, err := a.At(i)
		require.NoError(t, err)
		assert.Equal(t, i*10, v)
	}

	addr, err := a.Address(9)
	require.NoError(t, err)
	assert.Equal(t, Address{Page: 2, Offset: 1}, addr)
}

func TestPagedArray_AddressesSurviveGrowth(t *testing.T) {
	a, err := New[string](2)
	require.NoError(t, err)

	a.Add("first")
	p, err := a.ItemAddress(0)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		a.Add("filler")
	}

	again, err := a.ItemAddress(0)
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, "first", *p)
}

func TestPagedArray_OutOfRange(t *testing.T) {
	a, err := New[int](4)
	require.NoError(t, err)
	a.Add(1)

	_, err = a.ItemAddress(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = a.ItemAddress(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = a.Address(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestPagedArray_Shrink(t *testing.T) {
	a, err := New[int](4)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		a.Add(i)
	}

	assert.ErrorIs(t, a.Shrink(7), ErrShrinkGrow)
	assert.ErrorIs(t, a.Shrink(-1), ErrOutOfRange)

	require.NoError(t, a.Shrink(3))
	assert.Equal(t, 3, a.Count())
	_, err = a.ItemAddress(3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 3, a.Add(42))
	v, err := a.At(3)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPagedArray_Allocate(t *testing.T) {
	a, err := New[[2]int](4)
	require.NoError(t, err)

	i, slot := a.Allocate()
	assert.Equal(t, 0, i)
	slot[1] = 7

	v, err := a.At(0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 7}, v)
}

func TestPagedArray_ConcurrentReaders(t *testing.T) {
	a, err := New[int](8)
	require.NoError(t, err)

	const total = 2000
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				count := a.Count()
				for i := 0; i < count; i++ {
					v, err := a.At(i)
					if err != nil || v != i {
						t.Errorf("At(%d) = %d, %v", i, v, err)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < total; i++ {
		a.Add(i)
	}
	wg.Wait()
	assert.Equal(t, total, a.Count())
}
