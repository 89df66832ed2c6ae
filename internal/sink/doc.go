// Package sink writes a stage's two logical output streams: the
// primary result rows and the diagnostics stream that receives rejected
// input lines verbatim. The stream is addressed by a tagged Kind, not
// by name, so a stage cannot invent ad-hoc side outputs.
//
// Stage 2 has no diagnostics stream; it opens a sink without one and
// writing Invalid there is an error rather than a silent drop.
package sink
