package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mmcdole/vidshare/internal/domain"
)

// MemoryStore implements domain.HistoryStore without persistence.
// Used for memory-only mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.RecentlyViewedEntry
	closed  bool
}

var _ domain.HistoryStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.RecentlyViewedEntry)}
}

func (s *MemoryStore) Put(ctx context.Context, entry domain.RecentlyViewedEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.VideoID == "" {
		return domain.ErrInvalidVideo
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}
	s.entries[entry.VideoID] = entry
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, videoID string) (domain.RecentlyViewedEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecentlyViewedEntry{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.RecentlyViewedEntry{}, false, domain.ErrStorageUnavailable
	}
	entry, ok := s.entries[videoID]
	return entry, ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, videoIDs ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}
	for _, id := range videoIDs {
		delete(s.entries, id)
	}
	return nil
}

func (s *MemoryStore) ScanByViewedAt(ctx context.Context) ([]domain.RecentlyViewedEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, domain.ErrStorageUnavailable
	}
	out := make([]domain.RecentlyViewedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ViewedAt.Equal(out[j].ViewedAt) {
			return out[i].ViewedAt.Before(out[j].ViewedAt)
		}
		return out[i].VideoID < out[j].VideoID
	})
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStorageUnavailable
	}
	s.entries = make(map[string]domain.RecentlyViewedEntry)
	return nil
}

// Close marks the store unusable; later calls fail with ErrStorageUnavailable
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
