package store

import (
	"errors"
	"fmt"
)

// Store errors. Match them with errors.Is; returned errors wrap them with
// context.
var (
	// ErrUsage reports an API misuse: schema changes after FreezeShape,
	// writes without an owned transaction, Find without a unique index.
	ErrUsage = errors.New("usage error")

	// ErrUniqueConstraint reports a duplicate key on a unique index.
	ErrUniqueConstraint = errors.New("unique constraint violation")

	// ErrForeignKey reports a delete blocked by a restricting foreign key,
	// or a reference to a missing parent row.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrStaleReference reports access to a row that is not live at the
	// version being read.
	ErrStaleReference = errors.New("stale row reference")

	// ErrVersionRange reports an inverted or out-of-range version pair.
	ErrVersionRange = fmt.Errorf("%w: invalid version range", ErrUsage)
)
