package catalog

import (
	"sync/atomic"
	"time"
)

// Store holds the current knowledge base snapshot. Replace publishes a new snapshot
// atomically; searches keep using whichever snapshot they started with.
type Store struct {
	current  atomic.Pointer[KnowledgeBase]
	source   string
	loadedAt atomic.Int64
}

// NewStore creates a store serving kb. source describes where kb came from (file path,
// database path or "embedded").
func NewStore(kb *KnowledgeBase, source string) *Store {
	s := &Store{source: source}
	s.Replace(kb)
	return s
}

// Snapshot returns the current knowledge base.
func (s *Store) Snapshot() *KnowledgeBase {
	return s.current.Load()
}

// Replace swaps in kb. A nil kb is ignored.
func (s *Store) Replace(kb *KnowledgeBase) {
	if kb == nil {
		return
	}
	s.current.Store(kb)
	s.loadedAt.Store(time.Now().UnixNano())
}

// Source returns the description passed to NewStore.
func (s *Store) Source() string {
	return s.source
}

// LoadedAt returns when the current snapshot was published.
func (s *Store) LoadedAt() time.Time {
	return time.Unix(0, s.loadedAt.Load())
}

// Reload builds a new snapshot with load and publishes it. On error the current
// snapshot stays in place.
func (s *Store) Reload(load func() (*KnowledgeBase, error)) error {
	kb, err := load()
	if err != nil {
		return err
	}
	s.Replace(kb)
	return nil
}
