package store

// OnVersionChanged registers fn to run when this snapshot moves from one
// version to another through Commit, Undo, Redo or Upgrade.
func (s *StoreSnapshot) OnVersionChanged(fn func(oldVersion, newVersion int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onVersion = append(s.onVersion, fn)
}

// OnLatestVersionChanged registers fn to run when another snapshot of the
// store publishes a version.
func (s *StoreSnapshot) OnLatestVersionChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLatest = append(s.onLatest, fn)
}

// OnRolledBack registers fn to run when this snapshot rolls back. fn
// receives the discarded pending version.
func (s *StoreSnapshot) OnRolledBack(fn func(version int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRolledBack = append(s.onRolledBack, fn)
}

// Handlers run on the goroutine that caused the event, outside any engine
// lock, so they may read the store.

func (s *StoreSnapshot) fireVersionChanged(oldVersion, newVersion int) {
	s.mu.Lock()
	handlers := append([]func(int, int){}, s.onVersion...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(oldVersion, newVersion)
	}
}

func (s *StoreSnapshot) fireLatestVersionChanged() {
	s.mu.Lock()
	handlers := append([]func(){}, s.onLatest...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (s *StoreSnapshot) fireRolledBack(version int) {
	s.mu.Lock()
	handlers := append([]func(int){}, s.onRolledBack...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(version)
	}
}
