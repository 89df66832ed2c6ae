package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeySep joins region and time bucket into a group key. It does not
// occur in region identifiers or ISO dates.
const KeySep = "|"

// bucketLen is how many leading characters of the admission date form
// the time bucket ("2024-01").
const bucketLen = 7

// Classification errors for unusable raw records.
var (
	ErrTooFewFields = errors.New("record: too few fields")
	ErrEmptyRegion  = errors.New("record: empty region")
	ErrShortDate    = errors.New("record: admission date shorter than year-month")
	ErrBadAmount    = errors.New("record: billing amount not numeric")
)

// Schema locates the essential fields inside a raw record. The defaults
// for the hospital admissions dataset live in the config package; all
// offsets are zero-based.
type Schema struct {
	MinFields   int
	DateField   int
	AmountField int
	RegionField int
}

// Record is the usable portion of one raw input line.
type Record struct {
	Region    string
	YearMonth string
	Amount    float64
}

// Extract pulls the essential fields out of a parsed line. The returned
// error is one of the package sentinels (possibly wrapped) so callers
// can attribute the failure to a counter category.
func (s Schema) Extract(fields []string) (Record, error) {
	if len(fields) < s.MinFields {
		return Record{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(fields), s.MinFields)
	}

	date := strings.TrimSpace(fields[s.DateField])
	amountStr := strings.TrimSpace(fields[s.AmountField])
	region := strings.TrimSpace(fields[s.RegionField])

	if region == "" {
		return Record{}, ErrEmptyRegion
	}
	if len(date) < bucketLen {
		return Record{}, fmt.Errorf("%w: %q", ErrShortDate, date)
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", ErrBadAmount, amountStr)
	}

	return Record{
		Region:    region,
		YearMonth: date[:bucketLen],
		Amount:    amount,
	}, nil
}

// GroupKey returns the composite grouping key "region|yyyy-mm".
func (r Record) GroupKey() string {
	return r.Region + KeySep + r.YearMonth
}

// SplitGroupKey is the inverse of GroupKey. ok is false when the key
// does not contain the separator.
func SplitGroupKey(key string) (region, yearMonth string, ok bool) {
	region, yearMonth, ok = strings.Cut(key, KeySep)
	return region, yearMonth, ok
}
