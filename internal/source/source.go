// Package source streams input files line by line into the channel a
// stage's workers share. Lines are handed out in file order, but
// consumers must not rely on which worker receives which line.
package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// maxLineSize bounds a single input line (1 MiB).
const maxLineSize = 1 << 20

// Stream sends every line of the file at path to out. It does not close
// out; the caller owns the channel. Returns the first read error, or
// ctx.Err() if cancelled mid-file.
func Stream(ctx context.Context, path string, out chan<- string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("source: open input: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- sc.Text():
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("source: read input: %w", err)
	}
	return nil
}
