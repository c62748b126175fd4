// Package inbox imports export files dropped into a directory,
// e.g. a mounted USB stick.
package inbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/transfer"
)

type Importer interface {
	Import(ctx context.Context, raw []byte) (*transfer.ImportResult, error)
}

type Option func(*Watcher)

// WithSettleTime sets how long a file must be left alone before it is read.
// Non positive values are ignored.
func WithSettleTime(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithExisting imports the files already present in the directory on start
func WithExisting(b bool) Option {
	return func(w *Watcher) {
		w.existing = b
	}
}

// WithNotify registers a callback invoked after each import attempt
func WithNotify(fn func(path string, res *transfer.ImportResult, err error)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

type Watcher struct {
	log      *log.Logger
	dir      string
	importer Importer
	settle   time.Duration
	existing bool
	notify   func(path string, res *transfer.ImportResult, err error)
	pending  map[string]time.Time
	done     map[string]bool
}

func New(dir string, importer Importer, opts ...Option) *Watcher {
	ret := &Watcher{
		log:      log.Default().Named("inbox"),
		dir:      dir,
		importer: importer,
		settle:   time.Second,
		pending:  map[string]time.Time{},
		done:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run watches the directory until ctx is done.
// Failed imports are logged, a file is imported at most once.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("Watching for export files", log.String("dir", w.dir))

	if w.existing {
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() {
				w.schedule(filepath.Join(w.dir, e.Name()), time.Time{})
			}
		}
	}

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopped watching", log.String("dir", w.dir))
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.schedule(ev.Name, time.Now())
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", log.ErrorField(err))
		case now := <-ticker.C:
			w.processPending(ctx, now)
		}
	}
}

func (w *Watcher) schedule(path string, at time.Time) {
	if !strings.EqualFold(filepath.Ext(path), ".json") || w.done[path] {
		return
	}
	w.pending[path] = at
}

func (w *Watcher) processPending(ctx context.Context, now time.Time) {
	for path, at := range w.pending {
		if now.Sub(at) < w.settle {
			continue
		}
		delete(w.pending, path)
		w.done[path] = true
		w.importFile(ctx, path)
	}
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("Could not read file", log.String("file", path), log.ErrorField(err))
		w.notifyResult(path, nil, err)
		return
	}
	res, err := w.importer.Import(ctx, raw)
	if err != nil {
		w.log.Error("Import failed", log.String("file", path), log.ErrorField(err))
	} else {
		w.log.Info("File imported",
			log.String("file", path),
			log.Int("raceId", res.RaceID),
			log.Bool("merged", res.Merged))
	}
	w.notifyResult(path, res, err)
}

func (w *Watcher) notifyResult(path string, res *transfer.ImportResult, err error) {
	if w.notify != nil {
		w.notify(path, res, err)
	}
}
