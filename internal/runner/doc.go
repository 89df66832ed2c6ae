// Package runner chains the three stages into one pipeline run over a
// work directory: baseline.csv, labeled.csv and anomalies.csv, each
// with its .invalid diagnostics file where the stage has one.
//
// Watch re-runs the whole pipeline whenever the input file is written,
// handling the rename-then-create pattern of atomic-save writers. A
// failed re-run keeps the previous artifacts in place.
package runner
