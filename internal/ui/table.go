package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/patrol/internal/violations"
)

// renderList renders the violation table beside the detail pane.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()

	if empty := m.emptyMessage(); empty != "" {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(empty))
	}

	var tableWidth int
	if m.width >= LayoutWideWidth {
		tableWidth = m.width * 55 / 100
	} else {
		tableWidth = m.width * 60 / 100
	}
	detailWidth := m.width - tableWidth

	tableContent := m.renderTable(tableWidth-2, height-2, m.theme.FocusBg)
	tablePane := m.renderTitledBox(m.listTitle(), tableContent, tableWidth, height, true)

	var detailContent string
	if v := m.selected(); v != nil {
		detailContent = m.renderDetail(*v, detailWidth-4)
	} else {
		detailContent = styles.MutedText.Render("Select a violation")
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, height, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, tablePane, detailPane)
}

// emptyMessage explains an empty table. EmptyResult from the collection is a
// normal state, distinct from "nothing matches the filters".
func (m Model) emptyMessage() string {
	switch {
	case !m.snapshot.HasData && m.pollStatus.LastError == nil:
		return "Waiting for the first poll..."
	case !m.snapshot.HasData:
		return "No data yet"
	case len(m.snapshot.Records) == 0:
		return "No violations"
	case len(m.derived.Filtered) == 0:
		return "No violations match the current filters (C to clear)"
	}
	return ""
}

// listTitle returns the table pane title with visible/total counts.
func (m Model) listTitle() string {
	total := len(m.snapshot.Records)
	if m.criteria.IsDefault() {
		return fmt.Sprintf("Violations (%d)", total)
	}
	return fmt.Sprintf("Violations (%d/%d)", len(m.derived.Filtered), total)
}

// tableColumns are the fixed column widths; the plate column takes the rest.
type tableColumns struct {
	time, camera, plate, confidence, status int
}

func (m Model) columns(width int) tableColumns {
	cols := tableColumns{time: 12, camera: 14, confidence: 5, status: 12}
	if m.width < LayoutCompactWidth {
		cols.confidence = 0
		cols.camera = 10
	}
	fixed := cols.time + cols.camera + cols.confidence + cols.status + 4
	cols.plate = max(width-fixed, 8)
	return cols
}

// renderTable renders the visible window of rows, keeping the selection on
// screen.
func (m Model) renderTable(width, height int, bgColor string) string {
	rows := m.derived.Filtered
	cols := m.columns(width)
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)

	heading := []string{
		padRight("Time", cols.time),
		padRight("Camera", cols.camera),
		padRight("Plate", cols.plate),
	}
	if cols.confidence > 0 {
		heading = append(heading, padRight("Conf", cols.confidence))
	}
	heading = append(heading, "Status")
	lines := []string{bg.plain.Width(width).Render(bg.Render(strings.Join(heading, " "), styles.FaintText.Bold(true)))}

	visible := max(height-1, 1)
	start := 0
	if m.selectedRow >= visible {
		start = m.selectedRow - visible + 1
	}
	end := min(start+visible, len(rows))

	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatRow(rows[i], cols, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatRow formats one violation. Selected rows use SelectionText for every
// cell so the row stays readable on the selection background.
func (m Model) formatRow(v violations.Violation, cols tableColumns, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	timeStyle, cameraStyle, plateStyle, confStyle := styles.MutedText, styles.Text, styles.Text, styles.InfoText
	if !v.HasDetectedPlate() {
		plateStyle = styles.FaintText
	}
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(string(v.Status))))
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		timeStyle, cameraStyle, plateStyle, confStyle, statusStyle = selText, selText, selText, selText, selText.Bold(true)
	}

	cells := []string{
		bg.Render(padRight(formatRowTime(v.Timestamp, m.now()), cols.time), timeStyle),
		bg.Render(padRight(truncate(v.CameraID, cols.camera), cols.camera), cameraStyle),
		bg.Render(padRight(truncate(v.PlateLabel(), cols.plate), cols.plate), plateStyle),
	}
	if cols.confidence > 0 {
		cells = append(cells, bg.Render(padRight(v.ConfidenceLabel(), cols.confidence), confStyle))
	}
	cells = append(cells, bg.Render(m.statusLabel(v), statusStyle))
	return strings.Join(cells, bg.Space())
}

// statusLabel shows the stored status, plus the requested one while a write
// is outstanding.
func (m Model) statusLabel(v violations.Violation) string {
	label := titleCase(string(v.Status))
	if target, ok := m.pending[v.ID]; ok {
		label += " → " + titleCase(string(target))
	}
	return label
}

// colorForStatus returns the theme color for a given status.
func (m Model) colorForStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if color, ok := m.theme.StatusColors[status]; ok {
		return color
	}
	return m.theme.Text
}

// formatRowTime shows the clock for today's records and the date otherwise.
func formatRowTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	local := t.Local()
	y1, m1, d1 := local.Date()
	y2, m2, d2 := now.Local().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return local.Format("15:04:05")
	}
	return local.Format("Jan 02 15:04")
}

// renderDetail renders the selected violation.
func (m Model) renderDetail(v violations.Violation, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	labelWidth := 12

	row := func(label, value string, style lipgloss.Style) string {
		return bg.Render(padRight(label, labelWidth), styles.MutedText) + bg.Render(value, style)
	}

	plateStyle := styles.Text.Bold(true)
	if !v.HasDetectedPlate() {
		plateStyle = styles.DangerText
	}
	confidence := v.ConfidenceLabel()
	if confidence == "" {
		confidence = "-"
	}

	urlWidth := max(width-labelWidth, 10)
	lines := []string{
		row("Plate", v.PlateLabel(), plateStyle),
		row("Confidence", confidence, styles.InfoText),
		row("Camera", v.CameraID, styles.Text),
		row("Time", formatDetailTime(v.Timestamp), styles.Text),
		bg.Render(padRight("Status", labelWidth), styles.MutedText) +
			styles.StatusStyle(string(v.Status)).Render(titleCase(string(v.Status))),
	}
	if target, ok := m.pending[v.ID]; ok {
		lines = append(lines, row("", "updating to "+string(target)+"...", styles.InfoText))
	}
	lines = append(lines,
		row("ID", string(v.ID), styles.FaintText),
		"",
		row("Scene", imageLabel(v.SceneURL, urlWidth), styles.AccentText),
		row("Plate crop", imageLabel(v.PlateURL, urlWidth), styles.AccentText),
	)
	return strings.Join(lines, "\n")
}

func formatDetailTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05 MST")
}

// imageLabel shows an image URL as text. Images are never rendered.
func imageLabel(url *string, width int) string {
	if url == nil || strings.TrimSpace(*url) == "" {
		return "no image"
	}
	return truncateMiddle(*url, width)
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐. A focused box uses BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(padded, "\n") + "\n" + bottomBorder
}
