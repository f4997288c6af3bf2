package theme

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
)

// Watcher polls a theme file and reports palette changes.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	theme  *Theme
	lookup Source

	pollInterval     time.Duration
	onChangeCallback func(draw.Palette)

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a watcher for theme. Inherited themes are resolved
// through lookup on every reload.
func NewWatcher(theme *Theme, lookup Source, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		logger:       logger,
		theme:        theme,
		lookup:       lookup,
		pollInterval: time.Second,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets the polling interval. Call before Start.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

func (w *Watcher) SetChangeCallback(callback func(draw.Palette)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
}

// Start begins polling. Embedded themes never change, so they are not
// watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if w.theme.IsEmbedded {
		w.mu.Unlock()
		w.logger.Debug("not watching embedded theme")
		return nil
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.pollInterval
	w.mu.Unlock()

	go w.watchLoop(ctx, interval)

	w.logger.Debug("theme watcher started", "path", w.theme.Path, "interval", interval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("theme watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

func (w *Watcher) checkForChanges() {
	w.mu.RLock()
	callback := w.onChangeCallback
	w.mu.RUnlock()

	if _, err := os.Stat(w.theme.Path); err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug("theme file no longer exists", "path", w.theme.Path)
		}
		return
	}

	changed, err := w.theme.Reload(w.lookup)
	if err != nil {
		w.logger.Warn("failed to reload theme", "path", w.theme.Path, "error", err)
		return
	}

	if changed {
		w.logger.Info("theme file changed, reloading", "path", w.theme.Path)
		if callback != nil {
			callback(w.theme.Palette)
		}
	}
}

func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
