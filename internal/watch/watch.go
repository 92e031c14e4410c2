package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts editors produce when saving a file.
const DefaultDebounce = 150 * time.Millisecond

// Change reports that one of the watched files was written, created,
// renamed or removed.
type Change struct {
	Path string
}

// Watcher watches a set of files in a single directory. The directory is
// watched rather than the files so that atomic replace-by-rename is seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	changes chan Change
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// New starts watching the named files inside dir, creating dir if needed.
func New(dir string, names []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool, len(names)),
		debounce: DefaultDebounce,
		logger:   logger,
		changes:  make(chan Change, 16),
		done:     make(chan struct{}),
	}
	for _, name := range names {
		w.files[filepath.Clean(filepath.Join(dir, name))] = true
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes returns the channel of debounced file changes. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.changes)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			pending[path] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			for path := range pending {
				select {
				case w.changes <- Change{Path: path}:
				case <-w.done:
					return
				}
			}
			clear(pending)
		}
	}
}
