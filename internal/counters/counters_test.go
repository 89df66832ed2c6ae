package counters

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestIncAndValue(t *testing.T) {
	s := NewSet("baseline")
	s.Inc(MalformedLine)
	s.Inc(MalformedLine)
	s.Inc(TotalLines)

	if got := s.Value(MalformedLine); got != 2 {
		t.Errorf("malformed_line: got %d, want 2", got)
	}
	if got := s.Value(TotalLines); got != 1 {
		t.Errorf("total_lines: got %d, want 1", got)
	}
	if got := s.Value(NoBaseline); got != 0 {
		t.Errorf("untouched category: got %d, want 0", got)
	}
}

func TestSnapshot(t *testing.T) {
	s := NewSet("label")
	s.Add(Anomalies, 5)
	s.Inc(ZeroStdDev)

	snap := s.Snapshot()
	if snap[Anomalies] != 5 {
		t.Errorf("anomalies: got %d, want 5", snap[Anomalies])
	}
	if snap[ZeroStdDev] != 1 {
		t.Errorf("zero_std_dev: got %d, want 1", snap[ZeroStdDev])
	}
	if len(snap) != 2 {
		t.Errorf("snapshot size: got %d, want 2", len(snap))
	}
}

func TestInc_Concurrent(t *testing.T) {
	s := NewSet("aggregate")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Inc(TotalLines)
			}
		}()
	}
	wg.Wait()

	if got := s.Value(TotalLines); got != 1000 {
		t.Errorf("total_lines after concurrent incs: got %d, want 1000", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	s := NewSet("baseline")
	s.Inc(TotalLines)
	s.Inc(InvalidAmount)

	path := filepath.Join(t.TempDir(), "claimsight.prom")
	if err := WriteTextfile(path, s); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "claimsight_stage_records_total") {
		t.Errorf("textfile missing metric name:\n%s", text)
	}
	if !strings.Contains(text, `category="invalid_billing_amount"`) {
		t.Errorf("textfile missing category label:\n%s", text)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after rename")
	}
}

func TestWriteTextfile_MergesStages(t *testing.T) {
	s1 := NewSet("baseline")
	s1.Inc(TotalLines)
	s2 := NewSet("label")
	s2.Inc(NoBaseline)

	path := filepath.Join(t.TempDir(), "claimsight.prom")
	if err := WriteTextfile(path, s1, s2); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `stage="baseline"`) || !strings.Contains(text, `stage="label"`) {
		t.Errorf("textfile missing a stage:\n%s", text)
	}
	// One family header, not one per set.
	if got := strings.Count(text, "# HELP"); got != 1 {
		t.Errorf("HELP lines: got %d, want 1\n%s", got, text)
	}
}

func TestWriteTextfile_NoSets(t *testing.T) {
	if err := WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err == nil {
		t.Fatal("expected error for empty set list")
	}
}
