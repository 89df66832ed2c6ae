package counters

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Outcome categories shared by the stages. Each stage uses the subset
// that applies to it.
const (
	TotalLines      = "total_lines"
	MalformedLine   = "malformed_line"
	InvalidFields   = "invalid_fields"
	InvalidAmount   = "invalid_billing_amount"
	NoBaseline      = "no_baseline_found"
	ZeroStdDev      = "zero_std_dev"
	Anomalies       = "anomalies"
	ReducerKeyError = "reducer_key_error"
	Unexpected      = "unexpected_error"
)

// Set is the counter group for one stage run. Safe for concurrent use.
type Set struct {
	stage string
	reg   *prometheus.Registry
	vec   *prometheus.CounterVec
}

// NewSet creates an empty counter set labeled with the stage name
// ("baseline", "label", "aggregate").
func NewSet(stage string) *Set {
	reg := prometheus.NewRegistry()
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claimsight_stage_records_total",
		Help: "Records processed per stage, by outcome category.",
	}, []string{"stage", "category"})
	reg.MustRegister(vec)
	return &Set{stage: stage, reg: reg, vec: vec}
}

// Stage returns the stage name the set was created for.
func (s *Set) Stage() string { return s.stage }

// Inc increments the counter for one outcome category.
func (s *Set) Inc(category string) {
	s.vec.WithLabelValues(s.stage, category).Inc()
}

// Add increments the counter for category by n.
func (s *Set) Add(category string, n float64) {
	s.vec.WithLabelValues(s.stage, category).Add(n)
}

// Value returns the current count for one category.
func (s *Set) Value(category string) uint64 {
	return s.Snapshot()[category]
}

// Snapshot reads all category counts back out of the registry.
func (s *Set) Snapshot() map[string]uint64 {
	mfs, err := s.reg.Gather()
	if err != nil {
		// A private registry with a single collector cannot fail to gather.
		panic(fmt.Sprintf("counters: gather: %v", err))
	}

	out := make(map[string]uint64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if category := labelValue(m, "category"); category != "" {
				out[category] = uint64(m.GetCounter().GetValue())
			}
		}
	}
	return out
}

// WriteTextfile writes the counters of one or more sets to path in
// Prometheus text exposition format, using the write-then-rename
// convention textfile collectors expect. Metrics from all sets are
// merged into a single family; the stage label keeps them apart.
func WriteTextfile(path string, sets ...*Set) error {
	var fam *dto.MetricFamily
	for _, s := range sets {
		mfs, err := s.reg.Gather()
		if err != nil {
			return fmt.Errorf("counters: gather: %w", err)
		}
		for _, mf := range mfs {
			if fam == nil {
				fam = mf
			} else {
				fam.Metric = append(fam.Metric, mf.Metric...)
			}
		}
	}
	if fam == nil {
		return fmt.Errorf("counters: nothing to write")
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("counters: create textfile: %w", err)
	}

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	if err := enc.Encode(fam); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("counters: encode textfile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("counters: close textfile: %w", err)
	}
	return os.Rename(tmp, path)
}

// labelValue extracts one label value from a gathered metric.
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
