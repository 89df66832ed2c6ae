// Package stats implements the online group statistics used by the
// pipeline: an immutable partial aggregate (count, sum, sum of squares)
// that merges associatively across partitions, and the finalized
// per-group baseline (count, mean, standard deviation).
//
// Partials are value types; Add and Merge return new values rather than
// mutating, so arbitrary re-partitioning of the input cannot change the
// finalized result. Encode/DecodePartial carry partials through the
// shuffle as text at full float64 precision.
package stats
