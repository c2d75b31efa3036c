package store

import (
	"github.com/KilimcininKorOglu/snapstore/internal/logging"
	"github.com/KilimcininKorOglu/snapstore/internal/storage/btree"
	"github.com/KilimcininKorOglu/snapstore/internal/storage/paged"
)

// options holds engine settings shared by every snapshot of a store.
type options struct {
	logger     logging.Logger
	pageSize   int
	btreeOrder int
}

// Option configures a new store.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPageSize sets the number of rows per storage page.
// It must be a power of two; 0 keeps the default.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithBTreeOrder sets the order of index trees; 0 keeps the default.
func WithBTreeOrder(n int) Option {
	return func(o *options) {
		o.btreeOrder = n
	}
}

func defaultOptions() options {
	return options{
		logger:     logging.NewNop(),
		pageSize:   paged.DefaultPageSize,
		btreeOrder: btree.DefaultOrder,
	}
}
