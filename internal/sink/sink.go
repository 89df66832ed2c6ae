package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Kind selects one of a stage's output streams.
type Kind int

const (
	// Primary is the stage's result stream.
	Primary Kind = iota
	// Invalid is the diagnostics stream for rejected input lines.
	Invalid
)

// ErrNoDiagnostics is returned when writing Invalid to a sink opened
// without a diagnostics stream.
var ErrNoDiagnostics = errors.New("sink: no diagnostics stream configured")

// Sink is a pair of line-oriented file writers. Safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	primaryF *os.File
	invalidF *os.File
	primary  *bufio.Writer
	invalid  *bufio.Writer
}

// New creates the output files. invalidPath may be empty for stages
// without a diagnostics stream. Existing files are truncated.
func New(primaryPath, invalidPath string) (*Sink, error) {
	pf, err := os.Create(primaryPath)
	if err != nil {
		return nil, fmt.Errorf("sink: create primary: %w", err)
	}

	s := &Sink{primaryF: pf, primary: bufio.NewWriter(pf)}

	if invalidPath != "" {
		inf, err := os.Create(invalidPath)
		if err != nil {
			pf.Close()
			return nil, fmt.Errorf("sink: create diagnostics: %w", err)
		}
		s.invalidF = inf
		s.invalid = bufio.NewWriter(inf)
	}

	return s, nil
}

// Write appends one line (newline added) to the selected stream.
func (s *Sink) Write(kind Kind, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var w *bufio.Writer
	switch kind {
	case Primary:
		w = s.primary
	case Invalid:
		if s.invalid == nil {
			return ErrNoDiagnostics
		}
		w = s.invalid
	default:
		return fmt.Errorf("sink: unknown output kind %d", kind)
	}

	if _, err := w.WriteString(line); err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	return nil
}

// Close flushes and closes both streams.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := []error{s.primary.Flush(), s.primaryF.Close()}
	if s.invalid != nil {
		errs = append(errs, s.invalid.Flush(), s.invalidF.Close())
	}
	return errors.Join(errs...)
}
