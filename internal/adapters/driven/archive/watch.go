package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/papersift/internal/logger"
)

// DefaultDebounce coalesces the burst of write events a download produces.
const DefaultDebounce = 2 * time.Second

// Watcher reports when the raw file for one day appears or changes.
type Watcher struct {
	src      *Source
	date     string
	debounce time.Duration
}

// NewWatcher creates a watcher for date under the source's root.
func NewWatcher(src *Source, date string) *Watcher {
	return &Watcher{src: src, date: date, debounce: DefaultDebounce}
}

// Run blocks until ctx is done, calling onChange after the raw file for
// the day has been created or written and then left alone for the debounce
// period. The day and raw directories need not exist yet.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.src.Root()); err != nil {
		return fmt.Errorf("watch %s: %w", w.src.Root(), err)
	}
	w.addExisting(fw)

	logger.Debug("Watching %s for %s", w.src.RawDir(w.date), FileName(w.date))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.isDayDir(event) {
				w.addExisting(fw)
				// The raw file may have landed before the directory was watched.
				if w.rawExists() {
					timer, pending = w.reset(timer)
				}
				continue
			}
			if w.handleEvent(event) {
				timer, pending = w.reset(timer)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Archive watcher error: %v", err)

		case <-pending:
			pending = nil
			onChange()
		}
	}
}

func (w *Watcher) reset(timer *time.Timer) (*time.Timer, <-chan time.Time) {
	if timer == nil {
		timer = time.NewTimer(w.debounce)
	} else {
		timer.Stop()
		timer.Reset(w.debounce)
	}
	return timer, timer.C
}

// addExisting watches the day and raw directories that exist.
func (w *Watcher) addExisting(fw *fsnotify.Watcher) {
	for _, dir := range []string{filepath.Join(w.src.Root(), w.date), w.src.RawDir(w.date)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn("Cannot watch %s: %v", dir, err)
			return
		}
	}
}

// isDayDir reports whether event creates the day or raw directory.
func (w *Watcher) isDayDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Join(w.src.Root(), w.date) || name == w.src.RawDir(w.date)
}

// handleEvent reports whether event touches the raw file for the day.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Clean(event.Name)
	plain := w.src.Location(w.date)
	return name == plain || name == plain+CompressedExt
}

func (w *Watcher) rawExists() bool {
	for _, path := range []string{w.src.Location(w.date), w.src.Location(w.date) + CompressedExt} {
		if _, err := os.Stat(path); err == nil {
			return true
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("stat %s: %v", path, err)
		}
	}
	return false
}
