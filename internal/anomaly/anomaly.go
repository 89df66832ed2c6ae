package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
	"github.com/claimsight/claimsight/internal/csvline"
	"github.com/claimsight/claimsight/internal/mapreduce"
	"github.com/claimsight/claimsight/internal/sink"
	"github.com/claimsight/claimsight/internal/source"
)

// Stage is the counter label for this stage.
const Stage = "aggregate"

// minFields is the field count of a usable stage-2 row.
const minFields = 5

// flagField is the offset of the anomaly flag in a stage-2 row.
const flagField = 4

// Job counts anomalies per region for one labeled input file.
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

// Run reads stage-2 rows from inPath and writes one "region,count" row
// per region that had at least one anomaly to outPath; short input
// lines go verbatim to invalidPath.
func (j *Job) Run(ctx context.Context, inPath, outPath, invalidPath string) error {
	out, err := sink.New(outPath, invalidPath)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	storage, cleanup, err := mapreduce.OpenStorage(j.cfg.Engine.Storage, j.cfg.Engine.BoltPath)
	if err != nil {
		out.Close()
		return fmt.Errorf("aggregate: %w", err)
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			slog.Warn("aggregate: shuffle storage cleanup failed", "err", cerr)
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
		return fmt.Errorf("aggregate: %w", runErr)
	}

	snap := j.set.Snapshot()
	slog.Info("aggregate: done",
		"input", inPath,
		"total_lines", snap[counters.TotalLines],
		"malformed", snap[counters.MalformedLine],
		"anomalies", snap[counters.Anomalies],
	)
	return nil
}

// mapLine emits (region, 1) for every anomalous stage-2 row.
func (j *Job) mapLine(out *sink.Sink) mapreduce.MapFunc {
	return func(_ context.Context, line string) ([]mapreduce.KeyVal, error) {
		j.set.Inc(counters.TotalLines)

		fields := csvline.Parse(line)
		if len(fields) < minFields {
			j.set.Inc(counters.MalformedLine)
			if werr := out.Write(sink.Invalid, line); werr != nil {
				return nil, werr
			}
			return nil, nil
		}

		if !strings.EqualFold(strings.TrimSpace(fields[flagField]), "true") {
			return nil, nil
		}

		j.set.Inc(counters.Anomalies)
		region := strings.TrimSpace(fields[0])
		return []mapreduce.KeyVal{{Key: region, Val: "1"}}, nil
	}
}

// reduce sums the per-partition ones for one region.
func (j *Job) reduce(_ context.Context, region string, vals []string) ([]string, error) {
	total := 0
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			j.set.Inc(counters.Unexpected)
			continue
		}
		total += n
	}
	if total == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf("%s,%d", region, total)}, nil
}
