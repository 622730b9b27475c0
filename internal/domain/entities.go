package domain

import (
	"fmt"
	"time"
)

// Video is the snapshot of a shared video handed over by the video-open flow.
// Display and attribution fields are copied as they were at view time.
type Video struct {
	VideoID         string    `json:"videoId"`
	SourceVideoID   string    `json:"sourceVideoId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	SharedByUserID  string    `json:"sharedByUserId"`
	SharerUsername  string    `json:"sharerUsername,omitempty"`
	SharerAvatarURL string    `json:"sharerAvatarUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"` // When the video was shared
}

// RecentlyViewedEntry is one row of the recently viewed table.
// VideoID is the identity; ViewedAt is the ordering and eviction key.
type RecentlyViewedEntry struct {
	Video
	ViewedAt time.Time `json:"viewedAt"`
}

// DisplayTitle returns the title, or the source id when the title is empty
func (v Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	if v.SourceVideoID != "" {
		return v.SourceVideoID
	}
	return v.VideoID
}

// Sharer returns the username used for attribution, falling back to the user id
func (v Video) Sharer() string {
	if v.SharerUsername != "" {
		return v.SharerUsername
	}
	return v.SharedByUserID
}

// WatchURL formats the external platform URL for this video.
// pattern must contain a single %s verb for the source video id.
func (v Video) WatchURL(pattern string) (string, error) {
	if v.SourceVideoID == "" {
		return "", fmt.Errorf("video %q: %w", v.VideoID, ErrNoSourceVideo)
	}
	return fmt.Sprintf(pattern, v.SourceVideoID), nil
}

// ViewedAgo returns how long ago the entry was viewed in a compact form ("5m", "3h", "2d")
func (e RecentlyViewedEntry) ViewedAgo(now time.Time) string {
	d := now.Sub(e.ViewedAt)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
