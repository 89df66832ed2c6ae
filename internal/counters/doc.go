// Package counters tracks per-record outcome counts for one stage run.
//
// Every record a stage touches lands in exactly one category besides
// total_lines; each skip path has its own counter the operator can
// audit, so nothing is dropped silently. Counters are backed
// by a private Prometheus registry; Snapshot reads values back through
// Gather (no test-only accounting), and WriteTextfile dumps the run's
// counters in text exposition format for a node_exporter textfile
// collector.
package counters
