package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hello...", Truncate("hello world", 8))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本...", Truncate("日本語テキスト", 7))
}

func TestRenderListRowFillsWidth(t *testing.T) {
	for _, selected := range []bool{false, true} {
		row := RenderListRow([]RowPart{{Text: "Cooking pasta"}, {Text: "  @alice"}}, selected, 40)
		assert.Equal(t, 40, lipgloss.Width(row))
	}
}

func TestRenderHelp(t *testing.T) {
	help := RenderHelp([2]string{"q", "quit"}, [2]string{"/", "filter"})
	assert.Contains(t, help, "quit")
	assert.Contains(t, help, "filter")
}
