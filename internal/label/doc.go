// Package label implements stage 2: deviation scoring of raw records
// against the stage-1 baselines.
//
// The whole baseline artifact is loaded once per run into an in-memory
// table (a broadcast join); a missing or unreadable artifact is fatal
// before any record is processed, and the table size is bounded by
// configuration. Workers then score records independently; the table is
// read-only shared state and needs no locking.
//
// A record in a zero-variance group is flagged anomalous with score 0.0
// by definition: the group's baseline says every amount is identical,
// so any record scored against it is an outlier of the degenerate
// distribution. Records whose group never appeared in stage 1 are
// counted and skipped; there is nothing to score against.
package label
