package baseline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
	"github.com/claimsight/claimsight/internal/csvline"
	"github.com/claimsight/claimsight/internal/mapreduce"
	"github.com/claimsight/claimsight/internal/record"
	"github.com/claimsight/claimsight/internal/sink"
	"github.com/claimsight/claimsight/internal/source"
	"github.com/claimsight/claimsight/internal/stats"
)

// Stage is the counter label for this stage.
const Stage = "baseline"

// Job computes the baseline artifact for one input file.
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

// Run reads raw records from inPath and writes one baseline row per
// group to outPath; rejected input lines go verbatim to invalidPath.
func (j *Job) Run(ctx context.Context, inPath, outPath, invalidPath string) error {
	out, err := sink.New(outPath, invalidPath)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	storage, cleanup, err := mapreduce.OpenStorage(j.cfg.Engine.Storage, j.cfg.Engine.BoltPath)
	if err != nil {
		out.Close()
		return fmt.Errorf("baseline: %w", err)
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			slog.Warn("baseline: shuffle storage cleanup failed", "err", cerr)
		}
	}()

	mr := &mapreduce.Job{
		Mappers:  j.cfg.Engine.Mappers,
		Reducers: j.cfg.Engine.Reducers,
		Storage:  storage,
		Map:      j.mapLine(out),
		Reduce:   j.reduce,
	}

	lines := make(chan string, 256)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return source.Stream(gctx, inPath, lines)
	})
	g.Go(func() error {
		return mr.Run(gctx, lines, func(line string) error {
			return out.Write(sink.Primary, line)
		})
	})

	runErr := g.Wait()
	if cerr := out.Close(); runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return fmt.Errorf("baseline: %w", runErr)
	}

	snap := j.set.Snapshot()
	slog.Info("baseline: done",
		"input", inPath,
		"total_lines", snap[counters.TotalLines],
		"malformed", snap[counters.MalformedLine],
		"invalid_fields", snap[counters.InvalidFields],
		"invalid_amount", snap[counters.InvalidAmount],
	)
	return nil
}

// mapLine validates one raw line and emits a single-record partial
// keyed by the record's group.
func (j *Job) mapLine(out *sink.Sink) mapreduce.MapFunc {
	schema := j.cfg.Input.Schema()
	return func(_ context.Context, line string) ([]mapreduce.KeyVal, error) {
		j.set.Inc(counters.TotalLines)

		rec, err := schema.Extract(csvline.Parse(line))
		if err != nil {
			j.set.Inc(categoryFor(err))
			if werr := out.Write(sink.Invalid, line); werr != nil {
				return nil, werr
			}
			return nil, nil
		}

		p := stats.Partial{}.Observe(rec.Amount)
		return []mapreduce.KeyVal{{Key: rec.GroupKey(), Val: p.Encode()}}, nil
	}
}

// reduce merges all partials for one group and renders the baseline row.
// A group that gathered no observations produces no row.
func (j *Job) reduce(_ context.Context, key string, vals []string) ([]string, error) {
	var p stats.Partial
	for _, v := range vals {
		part, err := stats.DecodePartial(v)
		if err != nil {
			// Shuffle values are written by our own mapper; a decode
			// failure means corrupted intermediate state, not bad input.
			return nil, fmt.Errorf("baseline: group %q: %w", key, err)
		}
		p = p.Merge(part)
	}

	b, ok := p.Finalize()
	if !ok {
		return nil, nil
	}

	region, yearMonth, ok := record.SplitGroupKey(key)
	if !ok {
		j.set.Inc(counters.ReducerKeyError)
		return nil, nil
	}

	row := record.BaselineRow{
		Region:    region,
		YearMonth: yearMonth,
		Mean:      b.Mean,
		StdDev:    b.StdDev,
	}
	return []string{row.String()}, nil
}

// categoryFor maps a record classification error to its counter.
func categoryFor(err error) string {
	switch {
	case errors.Is(err, record.ErrTooFewFields):
		return counters.MalformedLine
	case errors.Is(err, record.ErrBadAmount):
		return counters.InvalidAmount
	default: // empty region or short date
		return counters.InvalidFields
	}
}
