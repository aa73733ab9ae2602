// Package poller keeps the shared state.Store in sync with the remote
// violation collection.
//
// # Refresh Contract
//
// Refresh issues one List request and, on success, replaces the store
// wholesale. On failure the store is left untouched and the error is kept on
// the poller (Status().LastError) for the UI to show until the next success or
// until the operator dismisses it.
//
// At most one List request is outstanding at any instant. A Refresh that
// arrives while a fetch is running joins it (golang.org/x/sync/singleflight)
// and returns that fetch's result. Without the guard, two overlapping fetches
// could complete out of order and let an older response overwrite a newer one.
//
// Resync is used after a write: it drains a fetch that may have started before
// the write and then refreshes again, so the caller observes post-write state.
//
// # Scheduling
//
// Start refreshes once immediately and then every interval (10s by default).
// The ticker does not wait for the previous refresh; overlap is prevented by
// the Refresh guard alone. Stop cancels the ticker. A fetch already running
// keeps going and its result is dropped if the store has been closed.
//
// There are no retries or backoff beyond the regular schedule, and no failure
// is fatal: the poller keeps trying for as long as it runs.
package poller
