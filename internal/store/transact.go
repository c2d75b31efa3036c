package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Transact runs fn in a transaction on s. The transaction is committed
// when fn returns nil and rolled back when fn fails, panics, or the commit
// is rejected.
func Transact(s *StoreSnapshot, fn func() error) (err error) {
	ok, err := s.StartTransaction()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: another transaction is open", ErrUsage)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = s.Rollback()
			panic(r)
		}
	}()

	if err := fn(); err != nil {
		return errors.Join(err, s.Rollback())
	}
	if err := s.Commit(); err != nil {
		return errors.Join(err, s.Rollback())
	}
	return nil
}

// ReadParallel runs each reader on its own snapshot copy of s, each on its
// own goroutine. Copies are pinned at the version of s and closed when
// their reader returns. The first error cancels ctx for the others.
func ReadParallel(ctx context.Context, s *StoreSnapshot, readers ...func(context.Context, *StoreSnapshot) error) error {
	snaps := make([]*StoreSnapshot, len(readers))
	for i := range readers {
		snap, err := NewSnapshot(s)
		if err != nil {
			for _, open := range snaps[:i] {
				_ = open.Close()
			}
			return err
		}
		snaps[i] = snap
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, read := range readers {
		snap := snaps[i]
		g.Go(func() error {
			defer snap.Close()
			return read(gctx, snap)
		})
	}
	return g.Wait()
}
