package tui

import "github.com/mmcdole/vidshare/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// HistoryLoadedMsg signals that the recently viewed list has been read
type HistoryLoadedMsg struct {
	Entries []domain.RecentlyViewedEntry
}

// EntryRemovedMsg signals that an entry was removed
type EntryRemovedMsg struct {
	VideoID string
	Title   string
}

// HistoryClearedMsg signals that the whole history was cleared
type HistoryClearedMsg struct{}

// VideoOpenedMsg signals that the player was launched for a video
type VideoOpenedMsg struct {
	VideoID string
	Title   string
}
