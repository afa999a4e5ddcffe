// Package statusfile feeds an LED from a text file holding a status word.
//
// Any process can change the LED by writing "teal|shortblink" or "0x6000"
// to the file. Writes are debounced and only changed words are applied, so
// rewriting the same status does not restart the blink cycle.
package statusfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harveysanders/picostatus/statusled"
)

// Read parses the status word stored in the file at path.
func Read(path string) (statusled.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return statusled.ParseWord(string(data))
}

// Watcher applies the status word in a file whenever the file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	apply    func(statusled.Word)
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	last    statusled.Word
	applied bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must be quiet before it is read.
// Default is 100ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New returns a watcher that calls apply with every new status word found
// in the file at path.
func New(path string, apply func(statusled.Word), logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: 100 * time.Millisecond,
		apply:    apply,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start applies the current file contents, if any, and begins watching.
// The parent directory is watched so files replaced by rename are seen.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("statusfile: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("statusfile: watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fsw

	if _, err := os.Stat(w.path); err == nil {
		w.reload()
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.logger.Info("Status file watcher started", "path", w.path, "debounce", w.debounce)
	go w.watch(ctx)
	return nil
}

// Stop ends watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	<-w.done
	w.cancel = nil
	return w.watcher.Close()
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Debug("Status file watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Status file watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	word, err := Read(w.path)
	if err != nil {
		w.logger.Warn("Failed to read status file", "path", w.path, "error", err)
		return
	}
	if w.applied && word == w.last {
		return
	}
	w.last, w.applied = word, true
	w.logger.Info("Status file changed", "status", statusled.FormatWord(word))
	w.apply(word)
}
