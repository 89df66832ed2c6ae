package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claimsight/claimsight/internal/anomaly"
	"github.com/claimsight/claimsight/internal/baseline"
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
	"github.com/claimsight/claimsight/internal/label"
)

// Artifact names inside the work directory.
const (
	BaselineFile        = "baseline.csv"
	BaselineInvalidFile = "baseline.csv.invalid"
	LabeledFile         = "labeled.csv"
	CountsFile          = "anomalies.csv"
	CountsInvalidFile   = "anomalies.csv.invalid"
)

// Runner executes the full three-stage pipeline.
type Runner struct {
	cfg *config.Config
}

// New returns a Runner for the given config.
func New(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run executes the baseline, label and aggregate stages over inPath,
// writing all artifacts into workDir. Each stage reads the full output
// of the previous one; a stage failure stops the pipeline.
func (r *Runner) Run(ctx context.Context, inPath, workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("runner: create work dir: %w", err)
	}

	start := time.Now()
	baselinePath := filepath.Join(workDir, BaselineFile)
	labeledPath := filepath.Join(workDir, LabeledFile)
	countsPath := filepath.Join(workDir, CountsFile)

	s1 := baseline.New(r.cfg)
	if err := s1.Run(ctx, inPath, baselinePath, filepath.Join(workDir, BaselineInvalidFile)); err != nil {
		return err
	}

	s2 := label.New(r.cfg)
	if err := s2.Run(ctx, inPath, baselinePath, labeledPath); err != nil {
		return err
	}

	s3 := anomaly.New(r.cfg)
	if err := s3.Run(ctx, labeledPath, countsPath, filepath.Join(workDir, CountsInvalidFile)); err != nil {
		return err
	}

	if path := r.cfg.Metrics.Textfile; path != "" {
		if err := counters.WriteTextfile(path, s1.Counters(), s2.Counters(), s3.Counters()); err != nil {
			return err
		}
	}

	slog.Info("runner: pipeline complete",
		"input", inPath,
		"work_dir", workDir,
		"elapsed", time.Since(start),
	)
	return nil
}
