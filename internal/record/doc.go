// Package record defines the admission-record schema and the row
// formats exchanged between pipeline stages.
//
// A raw record is a parsed CSV line; Schema says where the admission
// date, billing amount and region live and how many fields a usable
// line must have. Extract classifies unusable lines with sentinel
// errors (ErrTooFewFields, ErrEmptyRegion, ErrShortDate, ErrBadAmount)
// so each stage can count them under the right category.
//
// The group key is "region|yyyy-mm"; the first 7 characters of the
// admission date are the time bucket. BaselineRow and LabeledRow are
// the stage-1 and stage-2 artifacts; both format floats with 6 fixed
// decimals so output files are reproducible and round-trip exactly.
package record
