package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/KilimcininKorOglu/snapstore/internal/logging"
	"github.com/KilimcininKorOglu/snapstore/internal/storage/tx"
)

// engine is the state shared by every snapshot of one store.
type engine struct {
	opts   options
	txm    *tx.TxManager
	frozen atomic.Bool

	// mu protects tables, fkNames and snapshots.
	mu        sync.Mutex
	tables    map[string]anyTable
	names     []string
	fkNames   map[string]struct{}
	snapshots map[uuid.UUID]*StoreSnapshot
}

func (e *engine) table(name string) anyTable {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables[name]
}

// StoreSnapshot is a view of a store pinned at one version.
//
// A snapshot is used from one goroutine at a time. Reader snapshots on other
// goroutines may read any committed version while the writer snapshot holds
// the open transaction.
type StoreSnapshot struct {
	id      uuid.UUID
	eng     *engine
	logger  logging.Logger
	version int
	closed  bool

	// ctx is the open transaction owned by this snapshot.
	ctx *tx.Context

	// mu protects the handler lists.
	mu           sync.Mutex
	onVersion    []func(oldVersion, newVersion int)
	onLatest     []func()
	onRolledBack []func(version int)
}

// New creates an empty, unfrozen store and returns its first snapshot.
func New(opts ...Option) *StoreSnapshot {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng := &engine{
		opts:      o,
		txm:       tx.NewTxManager(),
		tables:    make(map[string]anyTable),
		fkNames:   make(map[string]struct{}),
		snapshots: make(map[uuid.UUID]*StoreSnapshot),
	}
	return eng.register(0)
}

// NewSnapshot creates another snapshot of the same frozen store, pinned at
// the version of from. The copy is told about new versions through
// OnLatestVersionChanged but only moves when Upgrade is called.
func NewSnapshot(from *StoreSnapshot) (*StoreSnapshot, error) {
	if !from.eng.frozen.Load() {
		return nil, fmt.Errorf("%w: snapshots can only be copied after FreezeShape", ErrUsage)
	}
	return from.eng.register(from.version), nil
}

func (e *engine) register(version int) *StoreSnapshot {
	id := uuid.Must(uuid.NewV7())
	s := &StoreSnapshot{
		id:      id,
		eng:     e,
		logger:  e.opts.logger.WithSnapshot(id.String()),
		version: version,
	}
	e.mu.Lock()
	e.snapshots[id] = s
	e.mu.Unlock()
	return s
}

// ID returns the snapshot id, which also identifies the owner of the
// transactions it opens.
func (s *StoreSnapshot) ID() uuid.UUID {
	return s.id
}

// Version returns the version the snapshot is pinned at.
func (s *StoreSnapshot) Version() int {
	return s.version
}

// LatestVersion returns the latest committed version of the store.
func (s *StoreSnapshot) LatestVersion() int {
	return s.eng.txm.Latest()
}

// IsFrozen reports whether FreezeShape was called.
func (s *StoreSnapshot) IsFrozen() bool {
	return s.eng.frozen.Load()
}

// InTransaction reports whether this snapshot owns the open transaction.
func (s *StoreSnapshot) InTransaction() bool {
	return s.ctx.IsActive()
}

// TableNames returns the table names in creation order.
func (s *StoreSnapshot) TableNames() []string {
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	out := make([]string, len(s.eng.names))
	copy(out, s.eng.names)
	return out
}

// readVersion is the version reads resolve at: the pending version for the
// transaction owner, the pinned version otherwise.
func (s *StoreSnapshot) readVersion() int {
	if s.ctx.IsActive() {
		return s.ctx.Pending
	}
	return s.version
}

// writer returns the open transaction if this snapshot owns it.
func (s *StoreSnapshot) writer() (*tx.Context, error) {
	if !s.ctx.IsActive() {
		return nil, fmt.Errorf("%w: snapshot %s has no open transaction", ErrUsage, s.id)
	}
	return s.ctx, nil
}

// FreezeShape ends schema declaration. It fails when the store has no
// tables or is already frozen.
func (s *StoreSnapshot) FreezeShape() error {
	s.eng.mu.Lock()
	n := len(s.eng.tables)
	s.eng.mu.Unlock()

	if n == 0 {
		return fmt.Errorf("%w: cannot freeze a store without tables", ErrUsage)
	}
	if !s.eng.frozen.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: store is already frozen", ErrUsage)
	}
	s.logger.Debug("schema frozen", "tables", n)
	return nil
}

// checkLatest verifies the snapshot may start a write.
func (s *StoreSnapshot) checkLatest(op string) error {
	if s.closed {
		return fmt.Errorf("%w: %s on a closed snapshot", ErrUsage, op)
	}
	if !s.eng.frozen.Load() {
		return fmt.Errorf("%w: %s before FreezeShape", ErrUsage, op)
	}
	if latest := s.eng.txm.Latest(); s.version != latest {
		return fmt.Errorf("%w: %s on a snapshot at version %d, latest is %d", ErrUsage, op, s.version, latest)
	}
	return nil
}

// StartTransaction opens a transaction owned by this snapshot.
// It returns false when a transaction is already open on this or another
// snapshot of the store.
func (s *StoreSnapshot) StartTransaction() (bool, error) {
	if err := s.checkLatest("StartTransaction"); err != nil {
		return false, err
	}
	ctx, err := s.eng.txm.Begin(s.id, tx.KindTransaction)
	if errors.Is(err, tx.ErrTxActive) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.ctx = ctx
	s.logger.Debug("transaction started", "pending", ctx.Pending)
	return true, nil
}

// Commit validates the open transaction and publishes it as a new version.
// On a constraint error the transaction stays open.
func (s *StoreSnapshot) Commit() error {
	ctx, err := s.writer()
	if err != nil {
		return err
	}
	for _, name := range ctx.Touched() {
		if err := s.eng.table(name).prepare(ctx); err != nil {
			s.logger.Warn("commit rejected", "pending", ctx.Pending, "error", err)
			return err
		}
	}
	return s.publish(ctx)
}

// publish commits ctx and notifies every snapshot of the store.
func (s *StoreSnapshot) publish(ctx *tx.Context) error {
	version, err := s.eng.txm.Commit(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	old := s.version
	s.version = version
	s.ctx = nil

	s.logger.Debug("version published", "kind", ctx.Kind.String(), "version", version, "tables", ctx.Touched())
	s.fireVersionChanged(old, version)
	for _, other := range s.eng.others(s) {
		other.fireLatestVersionChanged()
	}
	return nil
}

// Rollback discards the open transaction. Rows it created stay allocated
// and read as deleted.
func (s *StoreSnapshot) Rollback() error {
	ctx, err := s.writer()
	if err != nil {
		return err
	}
	for _, name := range ctx.Touched() {
		s.eng.table(name).rollback(ctx)
	}
	if err := s.eng.txm.Rollback(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	s.ctx = nil

	s.logger.Debug("transaction rolled back", "pending", ctx.Pending)
	s.fireRolledBack(ctx.Pending)
	return nil
}

// Undo reverts the latest committed transaction as a new version.
// It returns false when there is nothing to undo.
func (s *StoreSnapshot) Undo() (bool, error) {
	return s.replay(tx.KindUndo)
}

// Redo reapplies the latest undone transaction as a new version.
// It returns false when there is nothing to redo.
func (s *StoreSnapshot) Redo() (bool, error) {
	return s.replay(tx.KindRedo)
}

// CanUndo reports whether Undo would do anything.
func (s *StoreSnapshot) CanUndo() bool {
	return s.eng.txm.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (s *StoreSnapshot) CanRedo() bool {
	return s.eng.txm.CanRedo()
}

func (s *StoreSnapshot) replay(kind tx.Kind) (bool, error) {
	if s.ctx.IsActive() {
		return false, fmt.Errorf("%w: %s while a transaction is open", ErrUsage, kind)
	}
	if err := s.checkLatest(kind.String()); err != nil {
		return false, err
	}

	ctx, err := s.eng.txm.Begin(s.id, kind)
	switch {
	case errors.Is(err, tx.ErrNothingToUndo), errors.Is(err, tx.ErrNothingToRedo):
		return false, nil
	case errors.Is(err, tx.ErrTxActive):
		return false, fmt.Errorf("%w: %s while a transaction is open", ErrUsage, kind)
	case err != nil:
		return false, err
	}
	s.ctx = ctx

	source := ctx.Replay.Before
	if kind == tx.KindRedo {
		source = ctx.Replay.After
	}
	for _, name := range ctx.Replay.Tables {
		s.eng.table(name).replay(ctx, source, ctx.Replay)
	}
	if err := s.publish(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Upgrade moves the snapshot to the latest version. It returns false when
// the snapshot is already there.
func (s *StoreSnapshot) Upgrade() bool {
	if s.ctx.IsActive() {
		return false
	}
	latest := s.eng.txm.Latest()
	if latest == s.version {
		return false
	}
	old := s.version
	s.version = latest
	s.fireVersionChanged(old, latest)
	return true
}

// Close unregisters the snapshot. A closed snapshot can still be read at
// its pinned version but receives no notifications and cannot write.
// Closing the owner of the open transaction rolls it back.
func (s *StoreSnapshot) Close() error {
	if s.closed {
		return nil
	}
	var err error
	if s.ctx.IsActive() {
		err = s.Rollback()
	}
	s.closed = true
	s.eng.mu.Lock()
	delete(s.eng.snapshots, s.id)
	s.eng.mu.Unlock()
	return err
}

// others returns the open snapshots other than s, ordered by id.
func (e *engine) others(s *StoreSnapshot) []*StoreSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*StoreSnapshot, 0, len(e.snapshots))
	for id, other := range e.snapshots {
		if id != s.id {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].id.String() < out[j].id.String()
	})
	return out
}

// normalize returns the NFC form used for table, index and key names.
func normalize(name string) string {
	return norm.NFC.String(name)
}
