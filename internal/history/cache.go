package history

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/vidshare/internal/domain"
)

// MaxEntries is the default capacity of the recently viewed table
const MaxEntries = 50

// Cache is the recently viewed history. All mutation of the table goes
// through it so the capacity bound holds after every RecordView.
type Cache struct {
	store    domain.HistoryStore
	capacity int
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	lastSeen time.Time // last stamp handed out, keeps stamps strictly increasing
}

// Option configures a Cache
type Option func(*Cache)

// WithCapacity overrides MaxEntries. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now for stamping views
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the sink for swallowed errors
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a Cache over an opened store handle.
func NewCache(store domain.HistoryStore, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		capacity: MaxEntries,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the maximum number of entries kept
func (c *Cache) Capacity() int {
	return c.capacity
}

// RecordView upserts the video with a fresh viewedAt and evicts the oldest
// entries beyond capacity. Failures are logged, never returned.
func (c *Cache) RecordView(ctx context.Context, video domain.Video) {
	if video.VideoID == "" {
		c.fail("record view", domain.ErrInvalidVideo, "title", video.Title)
		return
	}

	entry := domain.RecentlyViewedEntry{Video: video, ViewedAt: c.stamp()}
	if err := c.store.Put(ctx, entry); err != nil {
		c.fail("record view", err, "videoID", video.VideoID)
		return
	}

	// The scan runs after Put returned, so the new entry is counted.
	if err := c.evict(ctx); err != nil {
		c.fail("evict", err, "videoID", video.VideoID)
		return
	}
	c.logger.Debug("recorded view", "videoID", video.VideoID, "viewedAt", entry.ViewedAt)
}

// evict deletes the oldest entries until at most capacity remain
func (c *Cache) evict(ctx context.Context) error {
	entries, err := c.store.ScanByViewedAt(ctx)
	if err != nil {
		return err
	}
	excess := len(entries) - c.capacity
	if excess <= 0 {
		return nil
	}

	sortOldestFirst(entries)
	victims := make([]string, excess)
	for i := range victims {
		victims[i] = entries[i].VideoID
	}
	if err := c.store.Delete(ctx, victims...); err != nil {
		return err
	}
	c.logger.Debug("evicted entries", "count", excess, "capacity", c.capacity)
	return nil
}

// ListViewed returns every entry, most recently viewed first.
// On failure it returns an empty slice.
func (c *Cache) ListViewed(ctx context.Context) []domain.RecentlyViewedEntry {
	entries, err := c.store.ScanByViewedAt(ctx)
	if err != nil {
		c.fail("list views", err)
		return []domain.RecentlyViewedEntry{}
	}

	sortOldestFirst(entries)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if entries == nil {
		entries = []domain.RecentlyViewedEntry{}
	}
	return entries
}

// Lookup returns the entry for videoID, false when absent or unreadable
func (c *Cache) Lookup(ctx context.Context, videoID string) (domain.RecentlyViewedEntry, bool) {
	entry, ok, err := c.store.Get(ctx, videoID)
	if err != nil {
		c.fail("lookup view", err, "videoID", videoID)
		return domain.RecentlyViewedEntry{}, false
	}
	return entry, ok
}

// RemoveViewed deletes the entry for videoID. Absent ids are a no-op and
// failures are logged, never returned.
func (c *Cache) RemoveViewed(ctx context.Context, videoID string) {
	if err := c.store.Delete(ctx, videoID); err != nil {
		c.fail("remove view", err, "videoID", videoID)
		return
	}
	c.logger.Debug("removed view", "videoID", videoID)
}

// ClearViewed removes every entry. Unlike the other mutators it reports failure.
func (c *Cache) ClearViewed(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear history", "error", err, "kind", domain.ErrorKind(err))
		return err
	}
	c.logger.Info("cleared history")
	return nil
}

// stamp returns now(), nudged forward when the clock has not advanced past
// the previous stamp.
func (c *Cache) stamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.lastSeen) {
		t = c.lastSeen.Add(time.Nanosecond)
	}
	c.lastSeen = t
	return t
}

func (c *Cache) fail(op string, err error, args ...any) {
	attrs := append([]any{"op", op, "error", err, "kind", domain.ErrorKind(err)}, args...)
	c.logger.Warn("history operation failed", attrs...)
}

// sortOldestFirst orders by viewedAt, ties broken by videoID
func sortOldestFirst(entries []domain.RecentlyViewedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ViewedAt.Equal(entries[j].ViewedAt) {
			return entries[i].ViewedAt.Before(entries[j].ViewedAt)
		}
		return entries[i].VideoID < entries[j].VideoID
	})
}
