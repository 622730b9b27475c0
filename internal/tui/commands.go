package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidshare/internal/domain"
)

const (
	storageTimeout = 5 * time.Second
	openTimeout    = 15 * time.Second
)

// Command factories for async operations

// LoadHistoryCmd reads the recently viewed list
func LoadHistoryCmd(svc HistoryService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		return HistoryLoadedMsg{Entries: svc.ListViewed(ctx)}
	}
}

// RemoveEntryCmd removes one entry; failures are handled by the service
func RemoveEntryCmd(svc HistoryService, entry domain.RecentlyViewedEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		svc.RemoveViewed(ctx, entry.VideoID)
		return EntryRemovedMsg{VideoID: entry.VideoID, Title: entry.DisplayTitle()}
	}
}

// ClearHistoryCmd clears every entry and reports failure
func ClearHistoryCmd(svc HistoryService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		if err := svc.ClearViewed(ctx); err != nil {
			return ErrMsg{Err: err, Context: "clearing history"}
		}
		return HistoryClearedMsg{}
	}
}

// OpenVideoCmd launches the player for a video, which also records the view
func OpenVideoCmd(svc VideoOpener, video domain.Video) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		if err := svc.Open(ctx, video); err != nil {
			return ErrMsg{Err: err, Context: "opening video"}
		}
		return VideoOpenedMsg{VideoID: video.VideoID, Title: video.DisplayTitle()}
	}
}
