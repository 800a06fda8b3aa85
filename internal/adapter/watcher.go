package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting it.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports batches of changed source files.
type Watcher interface {
	// Watch emits the sorted, de-duplicated set of source files touched in
	// each burst of file-system activity below roots. Both channels are
	// closed when ctx is done.
	Watch(ctx context.Context, roots []m.Path) (<-chan []m.Path, <-chan error)
}

// FSNotifyWatcher implements Watcher on top of fsnotify.
type FSNotifyWatcher struct {
	debounce time.Duration
}

// NewFSNotifyWatcher returns a watcher that coalesces events within debounce.
func NewFSNotifyWatcher(debounce time.Duration) *FSNotifyWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FSNotifyWatcher{debounce: debounce}
}

// Watch implements Watcher.
func (w *FSNotifyWatcher) Watch(ctx context.Context, roots []m.Path) (<-chan []m.Path, <-chan error) {
	batches := make(chan []m.Path)
	errCh := make(chan error, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errCh <- fmt.Errorf("create watcher: %w", err)

		close(batches)
		close(errCh)

		return batches, errCh
	}

	for _, root := range roots {
		if err := addTree(watcher, string(root)); err != nil {
			_ = watcher.Close()
			errCh <- err

			close(batches)
			close(errCh)

			return batches, errCh
		}
	}

	go w.loop(ctx, watcher, batches, errCh)

	return batches, errCh
}

func (w *FSNotifyWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, batches chan<- []m.Path, errCh chan<- error) {
	defer close(errCh)
	defer close(batches)
	defer func() {
		_ = watcher.Close()
	}()

	pending := map[m.Path]struct{}{}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}

					continue
				}
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if _, ok := m.DialectForPath(m.Path(event.Name)); !ok {
				continue
			}

			pending[m.Path(event.Name)] = struct{}{}

			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			select {
			case errCh <- fmt.Errorf("watch: %w", err):
			default:
			}

			return
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			batch := make([]m.Path, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}

			sort.Slice(batch, func(i, j int) bool { return batch[i] < batch[j] })

			pending = map[m.Path]struct{}{}

			select {
			case <-ctx.Done():
				return
			case batches <- batch:
			}
		}
	}
}

// addTree watches root and every directory below it that source discovery
// would descend into.
func addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}

	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root {
			if _, skip := skippedDirs[d.Name()]; skip || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		return nil
	})
}
