// Package config loads the claimsight configuration file (YAML).
//
// Top-level sections:
//   - input: raw dataset schema, min_fields plus the zero-based
//     offsets of the admission date, billing amount and region fields
//   - labeling: score threshold and max_baseline_entries, the explicit
//     bound on the broadcast baseline table each labeling worker loads
//   - engine: mappers, reducers, shuffle storage backend
//     (memory|bolt) and the bolt file path
//   - metrics: optional textfile path for the end-of-run counter dump
//     in Prometheus text exposition format
//
// Load(path) reads the file, applies defaults, then validates required
// fields and enums. The zero config (no file sections) is fully usable:
// defaults match the hospital admissions dataset the pipeline was built
// for.
package config
