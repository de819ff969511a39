// Package workspace keeps the working dataset of each session in memory.
package workspace

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/KaramelBytes/datadeck/internal/analysis"
	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/dataset"
)

// DefaultIdleTTL is how long an untouched session keeps its dataset.
const DefaultIdleTTL = time.Hour

// Dataset is a loaded table together with the column types inferred for it.
// It is never mutated after Put.
type Dataset struct {
	ID       uuid.UUID
	Filename string
	Table    *dataset.Table
	Types    analysis.ColumnTypes
	LoadedAt time.Time
}

// NewDataset stamps a fresh id on a loaded table.
func NewDataset(filename string, t *dataset.Table, types analysis.ColumnTypes, loadedAt time.Time) *Dataset {
	return &Dataset{ID: uuid.New(), Filename: filename, Table: t, Types: types, LoadedAt: loadedAt}
}

type entry struct {
	ds       *Dataset
	lastSeen time.Time
}

// Options configures a Store.
type Options struct {
	Clock clockwork.Clock
	// IdleTTL evicts sessions untouched for this long; <= 0 means DefaultIdleTTL.
	IdleTTL time.Duration
}

// Store maps a session id to its working dataset. A Put replaces the
// previous dataset wholesale; concurrent Puts resolve last-writer-wins.
// Idle entries are evicted lazily when the store is touched.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   clockwork.Clock
	ttl     time.Duration
}

// NewStore creates an empty store.
func NewStore(opt Options) *Store {
	if opt.Clock == nil {
		opt.Clock = clockwork.NewRealClock()
	}
	if opt.IdleTTL <= 0 {
		opt.IdleTTL = DefaultIdleTTL
	}
	return &Store{entries: make(map[string]*entry), clock: opt.Clock, ttl: opt.IdleTTL}
}

// Now reports the store's clock time.
func (s *Store) Now() time.Time { return s.clock.Now() }

// Put publishes ds as the session's working dataset.
func (s *Store) Put(session string, ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.evictLocked(now)
	s.entries[session] = &entry{ds: ds, lastSeen: now}
}

// Get returns the session's working dataset, or ErrNoDatasetLoaded when
// there is none or it has gone idle.
func (s *Store) Get(session string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	e, ok := s.entries[session]
	if !ok {
		return nil, apperr.New(apperr.CodeNoDatasetLoaded, "no data loaded, upload a file first")
	}
	if now.Sub(e.lastSeen) >= s.ttl {
		delete(s.entries, session)
		return nil, apperr.New(apperr.CodeNoDatasetLoaded, "session expired, upload the file again")
	}
	e.lastSeen = now
	return e.ds, nil
}

// Drop forgets the session's dataset. It reports whether one was held.
func (s *Store) Drop(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[session]
	delete(s.entries, session)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.clock.Now())
	return len(s.entries)
}

func (s *Store) evictLocked(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.entries, k)
		}
	}
}
