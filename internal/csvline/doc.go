// Package csvline splits one delimited text line into fields.
//
// Fields may be double-quoted to contain the delimiter verbatim. Unlike
// encoding/csv, Parse never fails: a line with unbalanced quotes yields
// whatever fields could be extracted, and callers validate the field
// count. This matches the tolerant behaviour the rest of the pipeline
// depends on: a malformed line must be routed to a diagnostics stream,
// not turned into a stage error.
package csvline
