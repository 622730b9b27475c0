package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vidshare/internal/domain"
	"github.com/mmcdole/vidshare/internal/search"
	"github.com/mmcdole/vidshare/internal/tui/styles"
)

// HistoryService is the recently viewed cache as seen by the browser
type HistoryService interface {
	ListViewed(ctx context.Context) []domain.RecentlyViewedEntry
	RemoveViewed(ctx context.Context, videoID string)
	ClearViewed(ctx context.Context) error
}

// VideoOpener launches a video and records the view
type VideoOpener interface {
	Open(ctx context.Context, video domain.Video) error
}

// ApplicationState represents the current state of the browser
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateConfirmClear
)

// ChromeHeight is the rows used by header, filter and footer
const ChromeHeight = 6

// Model is the Bubble Tea model for the history browser
type Model struct {
	State   ApplicationState
	Loading bool

	History HistoryService
	Player  VideoOpener
	Keys    KeyMap

	Entries  []domain.RecentlyViewedEntry
	Filtered []int // indexes into Entries, nil when no filter is active
	Cursor   int
	Offset   int

	FilterInput textinput.Model

	Status    string
	StatusErr bool

	Width  int
	Height int

	RelativeTimes bool
	Now           func() time.Time
}

// NewModel creates the history browser
func NewModel(history HistoryService, player VideoOpener, relativeTimes bool) Model {
	ti := textinput.New()
	ti.Prompt = styles.FilterPromptStyle.Render("/ ")
	ti.Placeholder = "filter by title or sharer"
	ti.CharLimit = 64

	return Model{
		State:         StateBrowsing,
		Loading:       true,
		History:       history,
		Player:        player,
		Keys:          DefaultKeyMap(),
		FilterInput:   ti,
		RelativeTimes: relativeTimes,
		Now:           time.Now,
	}
}

// Init loads the history
func (m Model) Init() tea.Cmd {
	return LoadHistoryCmd(m.History)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.clampCursor()
		return m, nil

	case HistoryLoadedMsg:
		m.Loading = false
		m.Entries = msg.Entries
		m.applyFilter()
		return m, nil

	case EntryRemovedMsg:
		m.setStatus("Removed "+msg.Title, false)
		return m, LoadHistoryCmd(m.History)

	case HistoryClearedMsg:
		m.Entries = nil
		m.Filtered = nil
		m.Cursor, m.Offset = 0, 0
		m.setStatus("History cleared", false)
		return m, nil

	case VideoOpenedMsg:
		m.setStatus("Opened "+msg.Title, false)
		return m, LoadHistoryCmd(m.History)

	case ErrMsg:
		m.Loading = false
		m.setStatus(msg.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch m.State {
		case StateFiltering:
			return m.updateFiltering(msg)
		case StateConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateBrowsing(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.Keys.Home):
		m.Cursor, m.Offset = 0, 0

	case key.Matches(msg, m.Keys.End):
		m.Cursor = len(m.visible()) - 1
		m.clampCursor()

	case key.Matches(msg, m.Keys.Escape):
		if m.FilterInput.Value() != "" {
			m.FilterInput.SetValue("")
			m.applyFilter()
		}

	case key.Matches(msg, m.Keys.Filter):
		m.State = StateFiltering
		cmd := m.FilterInput.Focus()
		return m, cmd

	case key.Matches(msg, m.Keys.Refresh):
		m.Loading = true
		return m, LoadHistoryCmd(m.History)

	case key.Matches(msg, m.Keys.Open):
		if e, ok := m.Selected(); ok && m.Player != nil {
			return m, OpenVideoCmd(m.Player, e.Video)
		}

	case key.Matches(msg, m.Keys.Delete):
		if e, ok := m.Selected(); ok {
			return m, RemoveEntryCmd(m.History, e)
		}

	case key.Matches(msg, m.Keys.Clear):
		if len(m.Entries) > 0 {
			m.State = StateConfirmClear
		}
	}
	return m, nil
}

func (m Model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.FilterInput.SetValue("")
		m.FilterInput.Blur()
		m.State = StateBrowsing
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.FilterInput.Blur()
		m.State = StateBrowsing
		return m, nil
	}

	var cmd tea.Cmd
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		m.State = StateBrowsing
		return m, ClearHistoryCmd(m.History)
	case key.Matches(msg, m.Keys.Deny):
		m.State = StateBrowsing
	}
	return m, nil
}

// visible returns the indexes of entries currently shown
func (m Model) visible() []int {
	if m.Filtered != nil {
		return m.Filtered
	}
	out := make([]int, len(m.Entries))
	for i := range out {
		out[i] = i
	}
	return out
}

// Selected returns the entry under the cursor
func (m Model) Selected() (domain.RecentlyViewedEntry, bool) {
	vis := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(vis) {
		return domain.RecentlyViewedEntry{}, false
	}
	return m.Entries[vis[m.Cursor]], true
}

func (m *Model) applyFilter() {
	query := m.FilterInput.Value()
	if query == "" {
		m.Filtered = nil
	} else {
		m.Filtered = search.Filter(m.Entries, query)
		if m.Filtered == nil {
			m.Filtered = []int{}
		}
		m.Cursor, m.Offset = 0, 0
	}
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor in range and inside the scroll window
func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	rows := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+rows {
		m.Offset = m.Cursor - rows + 1
	}
}

func (m Model) listHeight() int {
	if m.Height <= ChromeHeight {
		return 10
	}
	return m.Height - ChromeHeight
}

func (m *Model) setStatus(text string, isErr bool) {
	m.Status = text
	m.StatusErr = isErr
}
