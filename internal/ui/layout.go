package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops labels
	// and the table hides the confidence column.
	LayoutCompactWidth = 100

	// LayoutWideWidth gives the table a smaller share of the screen.
	LayoutWideWidth = 160
)

// Chrome lines above the content area: header and command bar.
const chromeLines = 2

const (
	// DefaultUIInterval is how often the model re-reads the store.
	DefaultUIInterval = time.Second

	// LogTailLines is how much of the log file the log pane shows.
	LogTailLines = 500
)
