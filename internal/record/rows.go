package record

import (
	"fmt"
	"strconv"
	"strings"
)

// BaselineRow is one line of the stage-1 artifact:
// region,yearMonth,mean,stdDev.
type BaselineRow struct {
	Region    string
	YearMonth string
	Mean      float64
	StdDev    float64
}

// String renders the row in the fixed 6-decimal output format.
func (b BaselineRow) String() string {
	return fmt.Sprintf("%s,%s,%.6f,%.6f", b.Region, b.YearMonth, b.Mean, b.StdDev)
}

// ParseBaselineRow parses already-split fields of a stage-1 row.
func ParseBaselineRow(fields []string) (BaselineRow, error) {
	if len(fields) < 4 {
		return BaselineRow{}, fmt.Errorf("%w: baseline row has %d fields", ErrTooFewFields, len(fields))
	}
	mean, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return BaselineRow{}, fmt.Errorf("record: baseline mean: %w", err)
	}
	stdDev, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return BaselineRow{}, fmt.Errorf("record: baseline stdDev: %w", err)
	}
	return BaselineRow{
		Region:    strings.TrimSpace(fields[0]),
		YearMonth: strings.TrimSpace(fields[1]),
		Mean:      mean,
		StdDev:    stdDev,
	}, nil
}

// LabeledRow is one line of the stage-2 artifact:
// region,yearMonth,amount,score,anomaly.
type LabeledRow struct {
	Region    string
	YearMonth string
	Amount    float64
	Score     float64
	Anomaly   bool
}

// String renders the row with 6-decimal floats and a true/false literal.
func (l LabeledRow) String() string {
	return fmt.Sprintf("%s,%s,%.6f,%.6f,%t", l.Region, l.YearMonth, l.Amount, l.Score, l.Anomaly)
}

// minLabeledFields is the field count stage 3 requires of its input.
const minLabeledFields = 5

// ParseLabeledRow parses already-split fields of a stage-2 row. The
// anomaly flag accepts the "true"/"false" literals case-insensitively;
// anything else reads as false, matching the lenient flag handling of
// the aggregation stage.
func ParseLabeledRow(fields []string) (LabeledRow, error) {
	if len(fields) < minLabeledFields {
		return LabeledRow{}, fmt.Errorf("%w: labeled row has %d fields", ErrTooFewFields, len(fields))
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return LabeledRow{}, fmt.Errorf("record: labeled amount: %w", err)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return LabeledRow{}, fmt.Errorf("record: labeled score: %w", err)
	}
	return LabeledRow{
		Region:    strings.TrimSpace(fields[0]),
		YearMonth: strings.TrimSpace(fields[1]),
		Amount:    amount,
		Score:     score,
		Anomaly:   strings.EqualFold(strings.TrimSpace(fields[4]), "true"),
	}, nil
}
