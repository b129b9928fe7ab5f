package ingest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Watcher re-imports the catalog whenever the watched spreadsheet changes on
// disk.  Editors typically emit several write events per save, so imports are
// debounced.
type Watcher struct {
	importer *Importer
	path     string
	debounce time.Duration
	log      logging.Logger
}

// NewWatcher builds a watcher over one spreadsheet path.
func NewWatcher(importer *Importer, path string, debounce time.Duration, log logging.Logger) *Watcher {
	return &Watcher{importer: importer, path: path, debounce: debounce, log: log}
}

// Run watches until ctx is cancelled.  The parent directory is watched rather
// than the file itself because atomic saves replace the inode.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeCatalogFileError, "failed to watch "+dir)
	}

	w.log.Info("watching catalog file", logging.String("path", w.path))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("catalog watcher error", logging.Err(err))

		case <-timerC:
			timer = nil
			timerC = nil
			w.reimport(ctx)
		}
	}
}

func (w *Watcher) reimport(ctx context.Context) {
	f, err := os.Open(w.path)
	if err != nil {
		w.log.Error("failed to open changed catalog file", logging.String("path", w.path), logging.Err(err))
		return
	}
	defer f.Close()

	summary, err := w.importer.ImportReader(ctx, f)
	if err != nil {
		w.log.Error("catalog re-import failed", logging.String("path", w.path), logging.Err(err))
		return
	}
	w.log.Info("catalog re-imported on file change",
		logging.String("path", w.path),
		logging.Int("loaded", summary.RowsLoaded),
	)
}
