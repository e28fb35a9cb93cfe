package storage

import (
	"context"
	"sync"
	"time"

	"dopust/internal/core"
)

// MemoryStore keeps snapshots in process memory. It backs the "memory"
// backend for single-user setups and doubles as a fake in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[SnapshotKey]memorySnapshot
}

type memorySnapshot struct {
	types     map[string]core.Classification
	fetchedAt time.Time
}

var _ SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[SnapshotKey]memorySnapshot)}
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, username string, year int, types map[string]core.Classification, fetchedAt time.Time) error {
	copied := make(map[string]core.Classification, len(types))
	for day, class := range types {
		copied[day] = class
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := SnapshotKey{Username: username, Year: year}
	if len(copied) == 0 {
		delete(s.snapshots, key)
		return nil
	}
	s.snapshots[key] = memorySnapshot{types: copied, fetchedAt: fetchedAt.UTC()}
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, username string, year int) (map[string]core.Classification, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[SnapshotKey{Username: username, Year: year}]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	copied := make(map[string]core.Classification, len(snap.types))
	for day, class := range snap.types {
		copied[day] = class
	}
	return copied, snap.fetchedAt, nil
}

func (s *MemoryStore) ListStale(_ context.Context, olderThan time.Time) ([]SnapshotKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []SnapshotKey
	for key, snap := range s.snapshots {
		if snap.fetchedAt.Before(olderThan) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
