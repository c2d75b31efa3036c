// Package paged provides append-only paged arrays for the snapstore engine.
//
// A PagedArray hands out element addresses that stay valid for the lifetime
// of the array. Growing the array allocates a new fixed-size page instead of
// relocating existing ones, so readers on other goroutines may keep pointers
// into old pages while the writer keeps appending.
package paged

import (
	"errors"
	"sync/atomic"
)

// DefaultPageSize is the number of elements per page when none is given.
const DefaultPageSize = 1024

// PagedArray errors.
var (
	ErrOutOfRange  = errors.New("paged: index out of range")
	ErrShrinkGrow  = errors.New("paged: shrink cannot grow the array")
	ErrInvalidPage = errors.New("paged: page size must be a positive power of two")
)

// Address identifies an element by page and offset within the page.
type Address struct {
	Page   int
	Offset int
}

// PagedArray is an append-only array with stable element addresses.
//
// A single writer may call Add, Allocate and Shrink. Any number of readers
// may call Count, ItemAddress and At concurrently with the writer; they see
// elements published before their Count load.
type PagedArray[T any] struct {
	shift int
	mask  int

	// pages holds the page directory. It is replaced, never mutated, when
	// a page is added.
	pages atomic.Pointer[[]*[]T]

	// count is published after the element and the directory are written.
	count atomic.Int64
}

// New creates a PagedArray with the given page size.
// pageSize must be a power of two; 0 selects DefaultPageSize.
func New[T any](pageSize int) (*PagedArray[T], error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 0 || pageSize&(pageSize-1) != 0 {
		return nil, ErrInvalidPage
	}

	shift := 0
	for 1<<shift < pageSize {
		shift++
	}

	a := &PagedArray[T]{
		shift: shift,
		mask:  pageSize - 1,
	}
	dir := make([]*[]T, 0)
	a.pages.Store(&dir)
	return a, nil
}

// PageSize returns the number of elements per page.
func (a *PagedArray[T]) PageSize() int {
	return a.mask + 1
}

// Count returns the number of elements in the array.
func (a *PagedArray[T]) Count() int {
	return int(a.count.Load())
}

// Add appends value and returns its index.
func (a *PagedArray[T]) Add(value T) int {
	index, slot := a.reserve()
	*slot = value
	a.count.Store(int64(index + 1))
	return index
}

// Allocate appends a zero element and returns its index and address.
// The element is visible to readers as soon as Allocate returns, so T must
// tolerate concurrent access through its own fields (atomics).
func (a *PagedArray[T]) Allocate() (int, *T) {
	index, slot := a.reserve()
	a.count.Store(int64(index + 1))
	return index, slot
}

// reserve returns the next unpublished slot, adding a page when needed.
func (a *PagedArray[T]) reserve() (int, *T) {
	index := int(a.count.Load())
	page, offset := index>>a.shift, index&a.mask

	dir := *a.pages.Load()
	if page >= len(dir) {
		next := make([]*[]T, len(dir), len(dir)+1)
		copy(next, dir)
		p := make([]T, a.mask+1)
		next = append(next, &p)
		a.pages.Store(&next)
		dir = next
	}

	slot := &(*dir[page])[offset]
	var zero T
	*slot = zero
	return index, slot
}

// Address returns the page and offset of index i.
func (a *PagedArray[T]) Address(i int) (Address, error) {
	if i < 0 || i >= a.Count() {
		return Address{}, ErrOutOfRange
	}
	return Address{Page: i >> a.shift, Offset: i & a.mask}, nil
}

// ItemAddress returns a stable pointer to element i.
func (a *PagedArray[T]) ItemAddress(i int) (*T, error) {
	if i < 0 || i >= a.Count() {
		return nil, ErrOutOfRange
	}
	dir := *a.pages.Load()
	return &(*dir[i>>a.shift])[i&a.mask], nil
}

// At returns a copy of element i.
func (a *PagedArray[T]) At(i int) (T, error) {
	p, err := a.ItemAddress(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Shrink truncates the array to newCount elements. Pages are kept so that
// addresses handed out earlier never dangle; truncated slots are reused by
// later appends.
func (a *PagedArray[T]) Shrink(newCount int) error {
	count := a.Count()
	if newCount > count {
		return ErrShrinkGrow
	}
	if newCount < 0 {
		return ErrOutOfRange
	}
	a.count.Store(int64(newCount))
	return nil
}
