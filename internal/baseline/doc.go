// Package baseline implements stage 1: per-(region, year-month) billing
// baselines.
//
// Mappers parse and validate raw admission records, routing unusable
// lines verbatim to the diagnostics stream, and emit a single-record
// partial aggregate keyed by group. Reducers merge the partials for
// each group by adding (count, sum, sumOfSquares), so the split of
// records across mappers never affects the result, then finalize mean
// and standard deviation into one 6-decimal CSV row per group.
package baseline
