// Package inbox marks plain-text submissions dropped into a directory.
// Each "<name>.txt" gets a "<name>.report.md" written next to it.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mind-engage/mindengage-marker/internal/marking"
)

const (
	DefaultSettle = 500 * time.Millisecond
	ReportSuffix  = ".report.md"
)

type Option func(*Watcher)

// WithSettle sets how long a file must be quiet before it is marked.
func WithSettle(d time.Duration) Option { return func(w *Watcher) { w.settle = d } }

// WithMemo marks every submission against memo.
func WithMemo(memo string) Option { return func(w *Watcher) { w.memo = memo } }

// WithExisting also marks files present at start that have no report yet.
func WithExisting() Option { return func(w *Watcher) { w.existing = true } }

// WithOnMarked is called after each report is written.
func WithOnMarked(fn func(src, report string, rep marking.Report)) Option {
	return func(w *Watcher) { w.onMarked = fn }
}

type Watcher struct {
	log      *slog.Logger
	local    *marking.LocalEngine
	memo     string
	settle   time.Duration
	existing bool
	onMarked func(src, report string, rep marking.Report)
}

func New(log *slog.Logger, local *marking.LocalEngine, opts ...Option) *Watcher {
	w := &Watcher{log: log, local: local, settle: DefaultSettle}
	for _, o := range opts {
		o(w)
	}
	return w
}

// ReportPath is where the report for src is written.
func ReportPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ReportSuffix
}

func watched(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// Run watches dir until ctx is done.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("Watching inbox", "dir", dir, "settle", w.settle)

	pending := map[string]time.Time{}
	if w.existing {
		if err := w.scan(dir, pending); err != nil {
			return err
		}
	}

	tick := time.NewTicker(max(w.settle/2, 10*time.Millisecond))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !watched(ev.Name) || (!ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write)) {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Inbox watcher error", "error", err)
		case now := <-tick.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.settle {
					continue
				}
				delete(pending, path)
				w.handle(path)
			}
		}
	}
}

func (w *Watcher) scan(dir string, pending map[string]time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() || !watched(p) {
			continue
		}
		if _, err := os.Stat(ReportPath(p)); err == nil {
			continue
		}
		pending[p] = time.Time{}
	}
	return nil
}

func (w *Watcher) handle(path string) {
	report, rep, err := w.MarkFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, marking.ErrValidation):
		w.log.Debug("Skipping submission", "file", path, "error", err)
	case err != nil:
		w.log.Error("Marking submission", "file", path, "error", err)
	default:
		w.log.Info("Submission marked", "file", path, "report", report, "grade", rep.Grade)
		if w.onMarked != nil {
			w.onMarked(path, report, rep)
		}
	}
}

// MarkFile marks one submission and writes its report.
func (w *Watcher) MarkFile(path string) (string, marking.Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", marking.Report{}, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rep, err := w.local.Mark(marking.Document{ID: name, Text: string(b), Assignment: name}, w.memo)
	if err != nil {
		return "", marking.Report{}, err
	}
	out := ReportPath(path)
	if err := os.WriteFile(out, []byte(marking.Render(rep)), 0o644); err != nil {
		return "", marking.Report{}, err
	}
	return out, rep, nil
}
