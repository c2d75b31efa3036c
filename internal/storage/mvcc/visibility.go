package mvcc

// Visible returns the newest version with Number <= at, or nil.
//
// Visibility rules:
//
//  1. Versions newer than the reader's store version are skipped; this covers
//     the pending version of an open transaction for every reader except the
//     owner, which reads at the pending version.
//  2. The first remaining version wins, whatever its state. A deleted
//     version hides everything older.
func (c *Chain[T]) Visible(at int) *Version[T] {
	return FindVisible(c.head.Load(), at)
}

// FindVisible is the standalone form of Chain.Visible that starts from an
// explicit head.
func FindVisible[T any](head *Version[T], at int) *Version[T] {
	for v := head; v != nil; v = v.Prev {
		if v.Number <= at {
			return v
		}
	}
	return nil
}

// IsLive reports whether the chain has an active version visible at at.
func (c *Chain[T]) IsLive(at int) bool {
	return c.Visible(at).IsActive()
}

// Get returns the data visible at at.
// Returns ErrNoVisibleVersion when the entry did not exist yet and
// ErrVersionDeleted when it had been removed.
func (c *Chain[T]) Get(at int) (T, error) {
	var zero T
	v := c.Visible(at)
	if v == nil {
		return zero, ErrNoVisibleVersion
	}
	if v.IsDeleted() {
		return zero, ErrVersionDeleted
	}
	return v.Data, nil
}

// ChangedBetween reports whether any version in (from, to] was recorded.
func (c *Chain[T]) ChangedBetween(from, to int) bool {
	for v := c.head.Load(); v != nil; v = v.Prev {
		if v.Number <= from {
			return false
		}
		if v.Number <= to {
			return true
		}
	}
	return false
}
