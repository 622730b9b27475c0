package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vidshare/internal/domain"
)

type stubHistory struct {
	entries  []domain.RecentlyViewedEntry
	removed  []string
	clearErr error
	cleared  bool
}

func (s *stubHistory) ListViewed(context.Context) []domain.RecentlyViewedEntry {
	return s.entries
}

func (s *stubHistory) RemoveViewed(_ context.Context, id string) {
	s.removed = append(s.removed, id)
}

func (s *stubHistory) ClearViewed(context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = true
	return nil
}

type stubOpener struct {
	opened []string
	err    error
}

func (s *stubOpener) Open(_ context.Context, v domain.Video) error {
	s.opened = append(s.opened, v.VideoID)
	return s.err
}

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func sample() []domain.RecentlyViewedEntry {
	mk := func(id, title string, ago time.Duration) domain.RecentlyViewedEntry {
		return domain.RecentlyViewedEntry{
			Video:    domain.Video{VideoID: id, SourceVideoID: "yt-" + id, Title: title, SharerUsername: "alice"},
			ViewedAt: now.Add(-ago),
		}
	}
	return []domain.RecentlyViewedEntry{
		mk("c", "Cooking pasta", time.Minute),
		mk("b", "Bird feeder cam", time.Hour),
		mk("a", "Amazing cats", 48*time.Hour),
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and returns the updated model and its command
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func loaded(t *testing.T, h *stubHistory, o *stubOpener) Model {
	t.Helper()
	m := NewModel(h, o, true)
	m.Now = func() time.Time { return now }
	msg := m.Init()()
	m, _ = send(t, m, msg)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestModelLoadsAndRenders(t *testing.T) {
	m := loaded(t, &stubHistory{entries: sample()}, &stubOpener{})

	assert.False(t, m.Loading)
	assert.Len(t, m.Entries, 3)

	view := m.View()
	assert.Contains(t, view, "Recently viewed")
	assert.Contains(t, view, "Cooking pasta")
	assert.Contains(t, view, "@alice")
	assert.Contains(t, view, "2d")
}

func TestModelEmptyHistory(t *testing.T) {
	m := loaded(t, &stubHistory{}, &stubOpener{})
	assert.Contains(t, m.View(), "Nothing watched yet")

	// Clear is not offered on an empty list
	m, _ = send(t, m, keyMsg("C"))
	assert.Equal(t, StateBrowsing, m.State)
}

func TestModelCursorMovement(t *testing.T) {
	m := loaded(t, &stubHistory{entries: sample()}, &stubOpener{})

	m, _ = send(t, m, keyMsg("j"))
	m, _ = send(t, m, keyMsg("j"))
	m, _ = send(t, m, keyMsg("j"))
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.VideoID)

	m, _ = send(t, m, keyMsg("g"))
	sel, _ = m.Selected()
	assert.Equal(t, "c", sel.VideoID)

	m, _ = send(t, m, keyMsg("G"))
	sel, _ = m.Selected()
	assert.Equal(t, "a", sel.VideoID)
}

func TestModelRemoveSelected(t *testing.T) {
	h := &stubHistory{entries: sample()}
	m := loaded(t, h, &stubOpener{})

	m, _ = send(t, m, keyMsg("j"))
	m, cmd := send(t, m, keyMsg("d"))
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, EntryRemovedMsg{VideoID: "b", Title: "Bird feeder cam"}, msg)
	assert.Equal(t, []string{"b"}, h.removed)

	h.entries = append(sample()[:1], sample()[2])
	m, cmd = send(t, m, msg)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Len(t, m.Entries, 2)
	assert.Equal(t, "Removed Bird feeder cam", m.Status)
}

func TestModelClearConfirmed(t *testing.T) {
	h := &stubHistory{entries: sample()}
	m := loaded(t, h, &stubOpener{})

	m, _ = send(t, m, keyMsg("C"))
	assert.Equal(t, StateConfirmClear, m.State)
	assert.Contains(t, m.View(), "Clear all history?")

	m, cmd := send(t, m, keyMsg("y"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.True(t, h.cleared)
	assert.Empty(t, m.Entries)
	assert.Equal(t, "History cleared", m.Status)
	assert.False(t, m.StatusErr)
}

func TestModelClearDenied(t *testing.T) {
	h := &stubHistory{entries: sample()}
	m := loaded(t, h, &stubOpener{})

	m, _ = send(t, m, keyMsg("C"))
	m, cmd := send(t, m, keyMsg("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, StateBrowsing, m.State)
	assert.False(t, h.cleared)
}

func TestModelClearFailureIsShown(t *testing.T) {
	h := &stubHistory{entries: sample(), clearErr: domain.ErrWriteConflict}
	m := loaded(t, h, &stubOpener{})

	m, _ = send(t, m, keyMsg("C"))
	m, cmd := send(t, m, keyMsg("y"))
	m, _ = send(t, m, cmd())

	assert.True(t, m.StatusErr)
	assert.Contains(t, m.Status, "clearing history")
	assert.Len(t, m.Entries, 3)
	assert.Contains(t, m.View(), "clearing history")
}

func TestModelOpenSelected(t *testing.T) {
	o := &stubOpener{}
	m := loaded(t, &stubHistory{entries: sample()}, o)

	m, cmd := send(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, VideoOpenedMsg{VideoID: "c", Title: "Cooking pasta"}, msg)
	assert.Equal(t, []string{"c"}, o.opened)

	o.err = errors.New("no player")
	_, cmd = send(t, m, keyMsg("enter"))
	m, _ = send(t, m, cmd())
	assert.True(t, m.StatusErr)
	assert.Contains(t, m.Status, "opening video: no player")
}

func TestModelFilter(t *testing.T) {
	m := loaded(t, &stubHistory{entries: sample()}, &stubOpener{})

	m, _ = send(t, m, keyMsg("/"))
	assert.Equal(t, StateFiltering, m.State)

	for _, r := range "cats" {
		m, _ = send(t, m, keyMsg(string(r)))
	}
	require.Len(t, m.Filtered, 1)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.VideoID)

	// enter keeps the filter, esc in browse mode drops it
	m, _ = send(t, m, keyMsg("enter"))
	assert.Equal(t, StateBrowsing, m.State)
	assert.Contains(t, m.View(), "1/3")

	m, _ = send(t, m, keyMsg("esc"))
	assert.Nil(t, m.Filtered)
	assert.Len(t, m.visible(), 3)
}

func TestModelQuit(t *testing.T) {
	m := loaded(t, &stubHistory{}, &stubOpener{})
	_, cmd := send(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
