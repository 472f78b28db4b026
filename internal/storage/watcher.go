package storage

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long a dataset directory must be quiet before
// a change is reported. Spreadsheet tools tend to write a file several times.
const DefaultWatchDebounce = 500 * time.Millisecond

// DatasetWatcher reports changes to the CSV files of a dataset directory.
type DatasetWatcher struct {
	dir      string
	debounce time.Duration
}

// NewDatasetWatcher creates a watcher for dir. A non-positive debounce uses
// DefaultWatchDebounce.
func NewDatasetWatcher(dir string, debounce time.Duration) *DatasetWatcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &DatasetWatcher{dir: dir, debounce: debounce}
}

// Watch calls onChange once per burst of CSV changes until ctx is done.
// An onChange error is logged and watching continues.
func (w *DatasetWatcher) Watch(ctx context.Context, onChange func(context.Context) error) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isDatasetChange(event) {
				timer.Reset(w.debounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Storage] File watcher error: %v", werr)
		case <-timer.C:
			if err := onChange(ctx); err != nil {
				log.Printf("[Storage] Reload of %s failed: %v", w.dir, err)
			}
		}
	}
}

func isDatasetChange(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
