package runner

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch runs the pipeline once, then re-runs it each time inPath is
// written. It returns after the initial run fails, or when ctx is
// cancelled; a failed re-run is logged and the previous artifacts stay
// in place.
func (r *Runner) Watch(ctx context.Context, inPath, workDir string) error {
	if err := r.Run(ctx, inPath, workDir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(inPath); err != nil {
		return err
	}

	slog.Info("runner: watching input for changes", "path", inPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors and exporters often replace the file via rename
			// (atomic save), so catch Create as well as Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := r.Run(ctx, inPath, workDir); err != nil {
				slog.Error("runner: re-run failed, keeping previous artifacts",
					"path", inPath, "err", err)
			}

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(inPath)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("runner: watcher error", "err", err)
		}
	}
}
