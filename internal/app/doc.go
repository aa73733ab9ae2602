// Package app is the composition root for patrol.
//
// It loads configuration and preferences, builds the logger, the collection
// client, the record store, the poller and the triage mutator, and hands them
// to either the TUI (Run) or one of the headless commands (List, SetStatus).
//
//	Run()
//	  ├─> config.Load()        TOML file + PATROL_* env
//	  ├─> logging.NewFile()    JSON lines, tailed by the log pane
//	  ├─> prefs.Load()         theme, default status filter
//	  ├─> poller.Start()       refresh now, then every interval
//	  └─> ui.Run()             blocks until quit or ctx cancel
//
// On exit the poller is stopped before the store is closed, so a fetch that
// is still running when the user quits completes and is discarded.
//
// Nothing in startup checks that the collection is reachable or that the URL
// and key are set. Those problems show up as a failed fetch in the header and
// the poller keeps trying on schedule.
package app
