// Package ui is the Bubble Tea terminal interface for patrol.
//
// # Layout
//
//   - Header: connection state, page statistics (total, new, no plate,
//     detected), last update time and a sync indicator.
//   - Command bar: key hints, the active filters, or the search input.
//   - Error banner: the last failed fetch, until dismissed with x or cleared by
//     a successful poll. The table keeps the previous snapshot meanwhile.
//   - Content: the violation table beside a detail pane, or the log pane.
//
// # Data flow
//
// The model never talks to the collection for reads. A tick re-reads the
// store snapshot and the poller status, then re-derives the visible rows with
// view.Derive. Statistics always describe the whole page, not the filtered
// rows. Selection is tracked by record id so it survives refreshes and filter
// changes.
//
// Status keys (1, 2, 3) hand the selected id to the triage mutator. The row
// shows the requested status next to the stored one until the resync that
// follows the write lands. A failed write is logged and the row simply keeps
// its old status.
//
// # Files
//
//   - app.go: Model, Update loop, commands and Run
//   - header.go: header, error banner, command bar
//   - table.go: violation table, detail pane, titled boxes
//   - logs.go: log pane backed by logtail
//   - help.go, keys.go: help overlay and key bindings
//   - theme.go, style_helpers.go: palettes and background-safe rendering
package ui
