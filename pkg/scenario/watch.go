package scenario

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/race-strategy-sim/log"
)

// Watch calls fn with the freshly loaded scenario each time path is written.
// Load errors are passed to fn as well. Watch blocks until ctx is done.
//
//nolint:whitespace // editor/linter issue
func Watch(
	ctx context.Context,
	path string,
	fn func(*Scenario, error),
) error {
	l := log.Default().Named("scenario.watch")
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// editors often replace the file, so the directory is watched
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	l.Info("watching scenario", log.String("path", abs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			l.Debug("scenario changed", log.String("op", ev.Op.String()))
			fn(Load(abs))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", log.ErrorField(err))
		}
	}
}
