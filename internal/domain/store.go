package domain

import "context"

// HistoryStore is the handle to the local recently viewed table.
// Implementations keep a secondary index on ViewedAt; every call is atomic on its own.
type HistoryStore interface {
	// Put inserts or fully overwrites the entry keyed by entry.VideoID
	Put(ctx context.Context, entry RecentlyViewedEntry) error

	// Get returns the entry for videoID; ok is false when absent
	Get(ctx context.Context, videoID string) (entry RecentlyViewedEntry, ok bool, err error)

	// Delete removes the given keys in one transaction. Absent keys are ignored.
	Delete(ctx context.Context, videoIDs ...string) error

	// ScanByViewedAt returns all entries through the ViewedAt index, oldest first.
	// Equal timestamps are ordered by VideoID ascending.
	ScanByViewedAt(ctx context.Context) ([]RecentlyViewedEntry, error)

	// Clear removes every entry
	Clear(ctx context.Context) error

	Close() error
}
