package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Partial is the running aggregate for one group on one partition.
// The zero value is the identity for Merge.
type Partial struct {
	Count      int64
	Sum        float64
	SumSquares float64
}

// Observe folds one observation into the partial and returns the result.
func (p Partial) Observe(x float64) Partial {
	return Partial{
		Count:      p.Count + 1,
		Sum:        p.Sum + x,
		SumSquares: p.SumSquares + x*x,
	}
}

// Merge combines two partials for the same group. Merge is commutative
// and associative, which is what allows partials from arbitrarily split
// partitions to be combined in any order.
func (p Partial) Merge(o Partial) Partial {
	return Partial{
		Count:      p.Count + o.Count,
		Sum:        p.Sum + o.Sum,
		SumSquares: p.SumSquares + o.SumSquares,
	}
}

// Baseline is the finalized statistic for one group.
type Baseline struct {
	Count  int64
	Mean   float64
	StdDev float64
}

// Finalize computes the group baseline. ok is false when the partial
// holds no observations; such a group must produce no output row.
func (p Partial) Finalize() (b Baseline, ok bool) {
	if p.Count == 0 {
		return Baseline{}, false
	}
	mean := p.Sum / float64(p.Count)
	variance := p.SumSquares/float64(p.Count) - mean*mean
	if variance < 0 {
		// Round-off can push near-zero-spread groups slightly negative.
		variance = 0
	}
	return Baseline{
		Count:  p.Count,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}, true
}

// Encode renders the partial as "count sum sumSquares" with floats at
// full precision, so decoding recovers the exact same value.
func (p Partial) Encode() string {
	return strconv.FormatInt(p.Count, 10) + " " +
		strconv.FormatFloat(p.Sum, 'g', -1, 64) + " " +
		strconv.FormatFloat(p.SumSquares, 'g', -1, 64)
}

// DecodePartial parses the output of Encode.
func DecodePartial(s string) (Partial, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Partial{}, fmt.Errorf("stats: decode partial %q: want 3 fields, got %d", s, len(parts))
	}
	count, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Partial{}, fmt.Errorf("stats: decode partial count: %w", err)
	}
	sum, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Partial{}, fmt.Errorf("stats: decode partial sum: %w", err)
	}
	sumSq, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Partial{}, fmt.Errorf("stats: decode partial sumSquares: %w", err)
	}
	return Partial{Count: count, Sum: sum, SumSquares: sumSq}, nil
}
