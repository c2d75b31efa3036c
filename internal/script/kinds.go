package script

import (
	"errors"

	"github.com/KilimcininKorOglu/snapstore/internal/circuit"
	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// Error kinds a step may expect.
const (
	KindUsage            = "usage"
	KindVersionRange     = "version-range"
	KindUnique           = "unique"
	KindForeignKey       = "foreign-key"
	KindStaleReference   = "stale-reference"
	KindInvalidWire      = "invalid-wire"
	KindInvalidDirection = "invalid-direction"
	KindOther            = "error"
)

var kinds = []string{
	KindUsage, KindVersionRange, KindUnique, KindForeignKey,
	KindStaleReference, KindInvalidWire, KindInvalidDirection,
}

func knownKind(kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ErrorKind classifies err by the sentinel it wraps. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrVersionRange):
		return KindVersionRange
	case errors.Is(err, store.ErrUniqueConstraint):
		return KindUnique
	case errors.Is(err, store.ErrForeignKey):
		return KindForeignKey
	case errors.Is(err, store.ErrStaleReference):
		return KindStaleReference
	case errors.Is(err, circuit.ErrInvalidWire):
		return KindInvalidWire
	case errors.Is(err, circuit.ErrInvalidDirection):
		return KindInvalidDirection
	case errors.Is(err, store.ErrUsage):
		return KindUsage
	default:
		return KindOther
	}
}
