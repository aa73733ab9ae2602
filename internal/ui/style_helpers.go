package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints rendered segments onto a shared background. Words are styled
// one at a time and glued with painted spaces; a plain space between two
// lipgloss segments would drop back to the terminal background.
type BgStyle struct {
	bg    lipgloss.Color
	plain lipgloss.Style
}

func NewBgStyle(color string) BgStyle {
	bg := lipgloss.Color(color)
	return BgStyle{bg: bg, plain: lipgloss.NewStyle().Background(bg)}
}

// Render applies style over the background, including runs of spaces.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.Space())
}

func (b BgStyle) Space() string { return b.Spaces(1) }

func (b BgStyle) Spaces(n int) string { return b.Sep(strings.Repeat(" ", n)) }

// Sep paints a literal separator such as ":" or "  ".
func (b BgStyle) Sep(sep string) string { return b.plain.Render(sep) }
