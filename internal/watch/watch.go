// Package watch re-runs a callback when the documents feeding the
// catalog change on disk. Paths are watched as directories so
// editors that replace files by rename are still seen.
package watch

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 500 * time.Millisecond

// interesting filters out chmod-only noise.
const interesting = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher coalesces bursts of filesystem events into single onChange
// calls. Saving a file from most editors produces several events in a
// row; the callback fires once after the burst settles.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	log      *logrus.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher that calls onChange after changes settle for
// the debounce window. A zero debounce uses the default.
func New(debounce time.Duration, onChange func(), log *logrus.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if log == nil {
		log = logrus.New()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Add watches a path. Paths that do not exist yet are skipped rather
// than failing the whole watch session.
func (w *Watcher) Add(path string) error {
	if _, err := os.Stat(path); err != nil {
		w.log.Debugf("watch: skipping %s: %v", path, err)
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		return err
	}

	w.log.Debugf("watch: watching %s", path)
	return nil
}

// Start runs the event loop until the context is cancelled or Close is
// called. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if started {
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&interesting == 0 {
				continue
			}
			w.log.Debugf("watch: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}
