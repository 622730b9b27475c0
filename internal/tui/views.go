package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vidshare/internal/domain"
	"github.com/mmcdole/vidshare/internal/tui/styles"
)

// View renders the browser
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.State == StateFiltering || m.FilterInput.Value() != "" {
		b.WriteString(m.FilterInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return styles.BrowserStyle.Render(b.String())
}

func (m Model) renderHeader() string {
	title := styles.HeaderStyle.Render("Recently viewed")
	count := styles.DimStyle.Render(fmt.Sprintf(" %d", len(m.Entries)))
	if m.Filtered != nil {
		count = styles.DimStyle.Render(fmt.Sprintf(" %d/%d", len(m.Filtered), len(m.Entries)))
	}
	return title + count
}

func (m Model) renderList() string {
	switch {
	case m.Loading && len(m.Entries) == 0:
		return styles.DimStyle.Render("Loading...")
	case len(m.Entries) == 0:
		return styles.DimStyle.Render("Nothing watched yet")
	}

	vis := m.visible()
	if len(vis) == 0 {
		return styles.DimStyle.Render("No matches")
	}

	width := m.contentWidth()
	end := min(m.Offset+m.listHeight(), len(vis))
	rows := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.renderRow(m.Entries[vis[i]], i == m.Cursor, width))
	}
	return strings.Join(rows, "\n")
}

// renderRow lays out "title  sharer ... when"
func (m Model) renderRow(e domain.RecentlyViewedEntry, selected bool, width int) string {
	when := e.ViewedAt.Local().Format("Jan 2 15:04")
	if m.RelativeTimes {
		when = e.ViewedAgo(m.Now())
	}
	sharer := ""
	if s := e.Sharer(); s != "" {
		sharer = "  @" + s
	}

	// Two columns of margin plus a gap before the time
	avail := width - lipgloss.Width(when) - 3
	title := styles.Truncate(e.DisplayTitle(), max(avail-lipgloss.Width(sharer), avail/2))
	sharer = styles.Truncate(sharer, avail-lipgloss.Width(title))

	gap := max(width-2-lipgloss.Width(title)-lipgloss.Width(sharer)-lipgloss.Width(when), 1)
	dim := styles.DimGray
	return styles.RenderListRow([]styles.RowPart{
		{Text: title},
		{Text: sharer, Foreground: &dim},
		{Text: strings.Repeat(" ", gap)},
		{Text: when, Foreground: &dim},
	}, selected, width)
}

func (m Model) renderFooter() string {
	switch {
	case m.State == StateConfirmClear:
		return styles.ConfirmStyle.Render("Clear all history? (y/n)")
	case m.Status != "" && m.StatusErr:
		return styles.ErrorStyle.Render(m.Status)
	case m.Status != "":
		return styles.SuccessStyle.Render(m.Status)
	default:
		return styles.RenderHelp(m.Keys.helpPairs()...)
	}
}

func (m Model) contentWidth() int {
	if m.Width <= 0 {
		return 80
	}
	// BrowserStyle pads two columns on each side
	return max(m.Width-4, 20)
}
