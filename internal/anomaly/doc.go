// Package anomaly implements stage 3: per-region anomaly counts over
// the stage-2 artifact.
//
// Mappers read labeled rows, route short lines to the diagnostics
// stream and emit (region, 1) for every row flagged anomalous. Reducers
// sum the ones per region, so only regions with at least one anomaly
// appear in the output.
package anomaly
