// Package state holds the single shared snapshot of violation records.
//
// # Overview
//
// The Store is the coordination point between the background poller and the
// readers (TUI, filter pipeline, headless commands):
//
//	Writer (Poller):               Readers:
//	┌────────────────┐            ┌─────────────────────┐
//	│ client.List()  │            │                     │
//	│      ↓         │            │                     │
//	│ store.Replace()│───────────→│ store.Snapshot()    │
//	│      ↓         │  (RWMutex) │      ↓              │
//	│  repeat...     │            │ view.Derive(...)    │
//	└────────────────┘            └─────────────────────┘
//
// # Update Semantics
//
// Replace swaps the whole record slice and stamps LastUpdated. There is no
// merge or patch path: consistency comes from whole-snapshot replacement only.
// The held order is exactly the order the remote returned (timestamp
// descending) and is never changed here.
//
// Failed fetches never reach the Store. The poller keeps the error on its own
// state, so a failure leaves the last good snapshot untouched.
//
// # Teardown
//
// Close marks the store as torn down. A fetch that was in flight when the
// application shut down may still complete; its Replace is discarded and
// reports false.
//
// # Defensive Copying
//
// Replace, Current and Snapshot all copy the slice, so callers can never
// observe or cause a half-updated store. Records are treated as immutable
// values, so optional pointer fields are shared between copies.
//
// # Testing Considerations
//
// The zero value is ready to use:
//
//	var store state.Store
//	store.Replace(records)
package state
