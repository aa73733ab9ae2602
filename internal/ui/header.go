package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/patrol/internal/view"
	"github.com/five82/patrol/internal/violations"
)

// renderHeader renders the status bar: connection state, page statistics,
// last update time and the sync indicator.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("patrol", styles.Logo),
		m.connectionIndicator(styles, bg),
	}

	if m.snapshot.HasData {
		stats := m.derived.Stats
		label := func(full, short string) string {
			if compact {
				return short
			}
			return full
		}
		parts = append(parts,
			statPart(bg, label("Total:", "T:"), stats.Total, styles.MutedText, styles.Text),
			statPart(bg, label("New:", "N:"), stats.New, styles.MutedText, styles.WarningText),
			statPart(bg, label("No plate:", "NP:"), stats.NoPlate, styles.MutedText, styles.DangerText),
			statPart(bg, label("Detected:", "D:"), stats.Detected, styles.MutedText, styles.SuccessText),
		)
	}

	updated := formatClock(m.snapshot.LastUpdated, m.now())
	if compact {
		parts = append(parts, bg.Render(updated, styles.MutedText))
	} else {
		parts = append(parts, bg.Render("Updated", styles.FaintText)+bg.Space()+bg.Render(updated, styles.MutedText))
	}

	if m.pollStatus.InFlight || len(m.pending) > 0 {
		parts = append(parts, bg.Render("↻ syncing", styles.InfoText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

func statPart(bg BgStyle, label string, n int, labelStyle, valueStyle lipgloss.Style) string {
	return bg.Render(label, labelStyle) + bg.Space() + bg.Render(fmt.Sprintf("%d", n), valueStyle)
}

// connectionIndicator summarizes how the last polls went.
func (m Model) connectionIndicator(styles Styles, bg BgStyle) string {
	switch {
	case m.pollStatus.IsOffline():
		return bg.Render("● OFFLINE", styles.DangerText)
	case m.pollStatus.LastError != nil:
		return bg.Render("● RETRYING", styles.WarningText.Bold(true))
	case !m.snapshot.HasData:
		return bg.Render("Connecting...", styles.WarningText.Bold(true))
	default:
		return bg.Render("● LIVE", styles.SuccessText)
	}
}

// renderErrorBanner shows the last fetch failure until it is dismissed or a
// later poll succeeds. The table keeps showing the previous snapshot.
func (m Model) renderErrorBanner() string {
	err := m.pollStatus.LastError
	if err == nil {
		return ""
	}
	styles := m.theme.Styles()

	msg := fmt.Sprintf("FETCH %s: %s", classifyFetchError(err), err.Error())
	if m.snapshot.HasData {
		msg += " · showing data from " + formatClock(m.snapshot.LastUpdated, m.now())
	}
	msg += " · x to dismiss"

	return styles.Banner.Width(m.width).Render(truncate(msg, max(m.width-2, 10)))
}

// classifyFetchError returns a short label for a failed fetch.
func classifyFetchError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *violations.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return "UNAUTHORIZED"
		case apiErr.StatusCode >= 500:
			return "SERVER ERROR"
		default:
			return fmt.Sprintf("HTTP %d", apiErr.StatusCode)
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not configured"):
		return "NOT CONFIGURED"
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "decode response"):
		return "BAD RESPONSE"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints, or the search input while the
// operator is typing a search.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		hint := bg.Render("enter", styles.AccentText) + bg.Sep(":") + bg.Render("keep", styles.MutedText) +
			bg.Spaces(2) + bg.Render("esc", styles.AccentText) + bg.Sep(":") + bg.Render("cancel", styles.MutedText)
		return styles.Header.Width(m.width).Render(m.searchInput.View() + bg.Spaces(2) + hint)
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"l", "Violations"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"f", statusFilterLabel(m.criteria.Status)},
			{"c", cameraFilterLabel(m.criteria.Camera)},
			{"1/2/3", "New/Reviewed/Resolved"},
			{"r", "Refresh"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewList && strings.TrimSpace(m.criteria.Search) != "" {
		segments = append(segments, bg.Render("/"+truncate(m.criteria.Search, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

func statusFilterLabel(s view.StatusFilter) string {
	if s == "" || s == view.StatusAll {
		return "All statuses"
	}
	return titleCase(string(s))
}

func cameraFilterLabel(camera string) string {
	if camera == "" || camera == view.CameraAll {
		return "All cameras"
	}
	return truncate(camera, 16)
}
