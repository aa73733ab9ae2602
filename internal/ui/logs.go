package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/patrol/internal/logtail"
)

// updateLogViewport sizes the log viewport and refills it. The view sticks to
// the bottom unless the operator has scrolled up.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0

	// Box inner area: header, command bar, and the two border lines.
	m.logViewport.Width = max(m.width-2, 0)
	m.logViewport.Height = max(m.height-chromeLines-2, 0)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())

	if atBottom {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log pane.
func (m Model) renderLogs(height int) string {
	vp := m.logViewport
	vp.Height = max(height-2, 0)
	return m.renderTitledBox(m.logTitle(), vp.View(), m.width, height, true)
}

func (m Model) logTitle() string {
	if m.logFile == "" {
		return "Log"
	}
	return "Log · " + truncateMiddle(m.logFile, max(m.width/2, 10))
}

// renderLogContent colors each entry by level.
func (m *Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	switch {
	case m.logFile == "":
		return bg.Render("Logging is disabled.", styles.MutedText)
	case m.logErr != nil:
		return bg.Render(fmt.Sprintf("Cannot read %s: %v", m.logFile, m.logErr), styles.DangerText)
	case len(m.logEntries) == 0:
		return bg.Render("No log entries yet.", styles.MutedText)
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.formatLogEntry(e, styles, bg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) formatLogEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if !e.IsJSON() {
		return bg.Render(e.Raw, styles.Text)
	}
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, bg.Render(e.Time.Local().Format(time.TimeOnly), styles.FaintText))
	}
	parts = append(parts, bg.Render(e.LevelLabel(), styles.LevelStyle(e.Level).Background(bg.bg)))
	if e.Component != "" {
		parts = append(parts, bg.Render("["+e.Component+"]", styles.AccentText))
	}
	if e.Message != "" {
		parts = append(parts, bg.Render(e.Message, styles.Text))
	}
	for _, f := range e.Fields {
		parts = append(parts, bg.Render(f.Key+"=", styles.MutedText)+bg.Render(f.Value, styles.InfoText))
	}
	return strings.Join(parts, bg.Space())
}

// handleLogsKey scrolls the log pane.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	}
	return m, nil
}
