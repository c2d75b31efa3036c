package mvcc

import (
	"errors"
	"sync/atomic"
)

// Version errors.
var (
	ErrNoVisibleVersion = errors.New("no visible version for snapshot")
	ErrVersionDeleted   = errors.New("version has been deleted")
)

// VersionState represents the state of a version.
type VersionState uint8

const (
	// VersionActive indicates the entry exists in this version.
	VersionActive VersionState = iota
	// VersionDeleted indicates the entry has been removed in this version.
	VersionDeleted
)

// String returns the string representation of a VersionState.
func (s VersionState) String() string {
	switch s {
	case VersionActive:
		return "Active"
	case VersionDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// Version represents a single version of an entry in the version chain.
// A Version is immutable once a newer store version has been published;
// only the pending version of the open transaction is ever replaced.
type Version[T any] struct {
	// Number is the store version that produced this entry.
	Number int

	// State indicates whether the entry exists in this version.
	State VersionState

	// Data contains the entry value for this version.
	Data T

	// Prev points to the previous version in the chain.
	// nil indicates this is the oldest version.
	Prev *Version[T]
}

// IsActive returns true if this version is active (not deleted).
func (v *Version[T]) IsActive() bool {
	return v != nil && v.State == VersionActive
}

// IsDeleted returns true if this version represents a deletion.
func (v *Version[T]) IsDeleted() bool {
	return v != nil && v.State == VersionDeleted
}

// Chain is a newest-first version chain published through an atomic head.
//
// One writer calls Put and Truncate; readers call Visible and Head from any
// goroutine.
type Chain[T any] struct {
	head atomic.Pointer[Version[T]]
}

// Head returns the newest version, pending ones included.
func (c *Chain[T]) Head() *Version[T] {
	return c.head.Load()
}

// Put records the entry state for store version number.
// If the head already belongs to number it is replaced, not mutated, so
// concurrent readers holding the old head stay consistent.
// Returns true when this is the first entry recorded for number.
func (c *Chain[T]) Put(number int, state VersionState, data T) bool {
	head := c.head.Load()
	v := &Version[T]{
		Number: number,
		State:  state,
		Data:   data,
		Prev:   head,
	}
	first := true
	if head != nil && head.Number == number {
		v.Prev = head.Prev
		first = false
	}
	c.head.Store(v)
	return first
}

// Truncate drops every version newer than number.
func (c *Chain[T]) Truncate(number int) {
	head := c.head.Load()
	for head != nil && head.Number > number {
		head = head.Prev
	}
	c.head.Store(head)
}

// Len returns the length of the chain.
func (c *Chain[T]) Len() int {
	count := 0
	for v := c.head.Load(); v != nil; v = v.Prev {
		count++
	}
	return count
}

// Numbers returns the store versions recorded in the chain, newest first.
func (c *Chain[T]) Numbers() []int {
	var out []int
	for v := c.head.Load(); v != nil; v = v.Prev {
		out = append(out, v.Number)
	}
	return out
}
