// Package view derives what the operator sees from a store snapshot.
//
// Every function here is pure: the output depends only on the records and
// criteria passed in, nothing is cached between calls, and inputs are never
// modified. Callers recompute from scratch whenever the snapshot or the
// criteria change.
//
// Apply narrows the list with three AND-combined predicates (search text,
// status, camera), each skipped when its criterion is empty or "all". Output
// keeps snapshot order. Summarize always runs on the full snapshot, so filters
// change what is listed but never the reported totals.
package view
