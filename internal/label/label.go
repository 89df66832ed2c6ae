package label

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
	"github.com/claimsight/claimsight/internal/csvline"
	"github.com/claimsight/claimsight/internal/record"
	"github.com/claimsight/claimsight/internal/sink"
	"github.com/claimsight/claimsight/internal/source"
	"github.com/claimsight/claimsight/internal/stats"
)

// Stage is the counter label for this stage.
const Stage = "label"

// ErrBaselineTooLarge reports a stage-1 artifact that exceeds the
// configured broadcast-table bound.
var ErrBaselineTooLarge = errors.New("label: baseline table exceeds max_baseline_entries")

// LoadBaselines reads the stage-1 artifact at path into a lookup table
// keyed by group key. Lines with fewer than four fields are skipped;
// any other problem is fatal; stage 2 cannot run on a partial table.
func LoadBaselines(path string, maxEntries int) (map[string]stats.Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("label: open baseline artifact: %w", err)
	}
	defer f.Close()

	table := make(map[string]stats.Baseline)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := csvline.Parse(sc.Text())
		if len(fields) < 4 {
			continue
		}
		row, err := record.ParseBaselineRow(fields)
		if err != nil {
			return nil, fmt.Errorf("label: baseline artifact: %w", err)
		}
		key := row.Region + record.KeySep + row.YearMonth
		table[key] = stats.Baseline{Mean: row.Mean, StdDev: row.StdDev}
		if len(table) > maxEntries {
			return nil, fmt.Errorf("%w (%d)", ErrBaselineTooLarge, maxEntries)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("label: read baseline artifact: %w", err)
	}

	slog.Info("label: baseline table loaded", "path", path, "entries", len(table))
	return table, nil
}

// Job labels one input file against a baseline artifact.
type Job struct {
	cfg *config.Config
	set *counters.Set
}

// New returns a Job with a fresh counter set.
func New(cfg *config.Config) *Job {
	return &Job{cfg: cfg, set: counters.NewSet(Stage)}
}

// Counters exposes the job's outcome counters.
func (j *Job) Counters() *counters.Set { return j.set }

// Run loads the baseline artifact at baselinePath, then scores every
// record of inPath into outPath. There is no diagnostics stream:
// unusable records are counted and skipped.
func (j *Job) Run(ctx context.Context, inPath, baselinePath, outPath string) error {
	table, err := LoadBaselines(baselinePath, j.cfg.Labeling.MaxBaselineEntries)
	if err != nil {
		return err
	}

	out, err := sink.New(outPath, "")
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}

	lines := make(chan string, 256)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return source.Stream(gctx, inPath, lines)
	})
	for w := 0; w < j.cfg.Engine.Mappers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case line, open := <-lines:
					if !open {
						return nil
					}
					row, ok := j.label(line, table)
					if !ok {
						continue
					}
					if err := out.Write(sink.Primary, row.String()); err != nil {
						return err
					}
				}
			}
		})
	}

	runErr := g.Wait()
	if cerr := out.Close(); runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return fmt.Errorf("label: %w", runErr)
	}

	snap := j.set.Snapshot()
	slog.Info("label: done",
		"input", inPath,
		"total_lines", snap[counters.TotalLines],
		"anomalies", snap[counters.Anomalies],
		"no_baseline", snap[counters.NoBaseline],
		"zero_std_dev", snap[counters.ZeroStdDev],
	)
	return nil
}

// label scores one raw line. ok is false when the record produces no
// output row; every such skip increments exactly one counter.
func (j *Job) label(line string, table map[string]stats.Baseline) (record.LabeledRow, bool) {
	j.set.Inc(counters.TotalLines)

	rec, err := j.cfg.Input.Schema().Extract(csvline.Parse(line))
	if err != nil {
		j.set.Inc(categoryFor(err))
		return record.LabeledRow{}, false
	}

	b, ok := table[rec.GroupKey()]
	if !ok {
		j.set.Inc(counters.NoBaseline)
		return record.LabeledRow{}, false
	}

	row := record.LabeledRow{
		Region:    rec.Region,
		YearMonth: rec.YearMonth,
		Amount:    rec.Amount,
	}

	if b.StdDev == 0 {
		// The baseline has no spread; a scored record is an outlier of
		// the degenerate distribution by definition.
		j.set.Inc(counters.ZeroStdDev)
		row.Anomaly = true
		return row, true
	}

	row.Score = (rec.Amount - b.Mean) / b.StdDev
	row.Anomaly = math.Abs(row.Score) >= j.cfg.Labeling.Threshold
	if row.Anomaly {
		j.set.Inc(counters.Anomalies)
	}
	return row, true
}

// categoryFor maps a record classification error to its counter.
func categoryFor(err error) string {
	switch {
	case errors.Is(err, record.ErrTooFewFields):
		return counters.MalformedLine
	case errors.Is(err, record.ErrBadAmount):
		return counters.InvalidAmount
	default:
		return counters.InvalidFields
	}
}
