package label

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
)

// testConfig uses a compact 3-field schema: date,amount,region.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Input = config.InputConfig{MinFields: 3, DateField: 0, AmountField: 1, RegionField: 2}
	cfg.Engine.Mappers = 2
	return cfg
}

func writeFile(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runStage(t *testing.T, cfg *config.Config, input, baselines []string) (*Job, []string) {
	t.Helper()
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", input)
	bl := writeFile(t, dir, "baseline.csv", baselines)
	out := filepath.Join(dir, "labeled.csv")

	j := New(cfg)
	if err := j.Run(context.Background(), in, bl, out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var rows []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			rows = append(rows, l)
		}
	}
	sort.Strings(rows)
	return j, rows
}

func TestRun_ScoresAgainstBaseline(t *testing.T) {
	j, rows := runStage(t, testConfig(),
		[]string{"2024-01-10,500,RegionA"},
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)

	if len(rows) != 1 || rows[0] != "RegionA,2024-01,500.000000,3.674235,true" {
		t.Errorf("rows: got %v", rows)
	}
	if got := j.Counters().Value(counters.Anomalies); got != 1 {
		t.Errorf("anomalies: got %d, want 1", got)
	}
}

func TestRun_BelowThresholdNotFlagged(t *testing.T) {
	j, rows := runStage(t, testConfig(),
		[]string{"2024-01-10,250,RegionA"},
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)

	if len(rows) != 1 || !strings.HasSuffix(rows[0], ",false") {
		t.Errorf("rows: got %v, want one unflagged row", rows)
	}
	if got := j.Counters().Value(counters.Anomalies); got != 0 {
		t.Errorf("anomalies: got %d, want 0", got)
	}
}

func TestRun_NegativeScoreFlagged(t *testing.T) {
	// Threshold applies to the absolute score.
	_, rows := runStage(t, testConfig(),
		[]string{"2024-01-10,-100,RegionA"},
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)
	if len(rows) != 1 || !strings.HasSuffix(rows[0], ",true") {
		t.Errorf("rows: got %v, want one flagged row", rows)
	}
}

func TestRun_ZeroStdDevForcesFlag(t *testing.T) {
	j, rows := runStage(t, testConfig(),
		[]string{"2024-01-10,123.45,RegionA"},
		[]string{"RegionA,2024-01,100.000000,0.000000"},
	)

	if len(rows) != 1 || rows[0] != "RegionA,2024-01,123.450000,0.000000,true" {
		t.Errorf("rows: got %v", rows)
	}
	if got := j.Counters().Value(counters.ZeroStdDev); got != 1 {
		t.Errorf("zero_std_dev: got %d, want 1", got)
	}
	// Forced flags are tracked separately from threshold anomalies.
	if got := j.Counters().Value(counters.Anomalies); got != 0 {
		t.Errorf("anomalies: got %d, want 0", got)
	}
}

func TestRun_MissingBaselineKeySkipped(t *testing.T) {
	j, rows := runStage(t, testConfig(),
		[]string{"2025-06-10,500,Nowhere"},
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)

	if len(rows) != 0 {
		t.Errorf("rows: got %v, want none", rows)
	}
	if got := j.Counters().Value(counters.NoBaseline); got != 1 {
		t.Errorf("no_baseline_found: got %d, want 1", got)
	}
}

func TestRun_MalformedRecordsCountedAndSkipped(t *testing.T) {
	j, rows := runStage(t, testConfig(),
		[]string{
			"2024-01-10,500,RegionA",
			"too,short",
			"2024-01-10,NaNope,RegionA",
		},
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)

	if len(rows) != 1 {
		t.Errorf("rows: got %v, want one", rows)
	}
	snap := j.Counters().Snapshot()
	if snap[counters.MalformedLine] != 1 {
		t.Errorf("malformed_line: got %d, want 1", snap[counters.MalformedLine])
	}
	if snap[counters.InvalidAmount] != 1 {
		t.Errorf("invalid_billing_amount: got %d, want 1", snap[counters.InvalidAmount])
	}
	if snap[counters.TotalLines] != 3 {
		t.Errorf("total_lines: got %d, want 3", snap[counters.TotalLines])
	}
}

func TestRun_MissingBaselineArtifactIsFatal(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", []string{"2024-01-10,1,R"})

	j := New(testConfig())
	err := j.Run(context.Background(), in, filepath.Join(dir, "absent.csv"), filepath.Join(dir, "out.csv"))
	if err == nil {
		t.Fatal("expected fatal error for missing baseline artifact")
	}
	// Nothing may be processed after a setup failure.
	if got := j.Counters().Value(counters.TotalLines); got != 0 {
		t.Errorf("total_lines after fatal setup: got %d, want 0", got)
	}
}

func TestLoadBaselines_SkipsShortLines(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "baseline.csv", []string{
		"RegionA,2024-01,200.000000,81.649658",
		"trailing,junk",
	})

	table, err := LoadBaselines(p, 100)
	if err != nil {
		t.Fatalf("LoadBaselines: %v", err)
	}
	if len(table) != 1 {
		t.Errorf("table size: got %d, want 1", len(table))
	}
	if _, ok := table["RegionA|2024-01"]; !ok {
		t.Error("table missing RegionA|2024-01")
	}
}

func TestLoadBaselines_EnforcesBound(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "baseline.csv", []string{
		"A,2024-01,1.000000,0.000000",
		"B,2024-01,1.000000,0.000000",
		"C,2024-01,1.000000,0.000000",
	})

	if _, err := LoadBaselines(p, 2); !errors.Is(err, ErrBaselineTooLarge) {
		t.Errorf("got %v, want ErrBaselineTooLarge", err)
	}
}

func TestRun_CustomThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Labeling.Threshold = 5.0

	j, rows := runStage(t, cfg,
		[]string{"2024-01-10,500,RegionA"}, // score ≈ 3.67, below 5.0
		[]string{"RegionA,2024-01,200.000000,81.649658"},
	)
	if len(rows) != 1 || !strings.HasSuffix(rows[0], ",false") {
		t.Errorf("rows: got %v, want one unflagged row", rows)
	}
	if got := j.Counters().Value(counters.Anomalies); got != 0 {
		t.Errorf("anomalies: got %d, want 0", got)
	}
}
