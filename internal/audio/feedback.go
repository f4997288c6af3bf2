package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/elijahimmer/wlrs-bar/internal/config"
)

// Feedback plays the configured sound whenever the volume widget changes
// the volume.
type Feedback struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher

	path string
}

// NewFeedback creates the feedback player from the volume section. A
// missing sound file leaves feedback disabled.
func NewFeedback(cfg config.VolumeConfig, logger *slog.Logger) *Feedback {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	f := &Feedback{logger: logger, player: player}

	w, err := NewWatcher(player, logger)
	if err != nil {
		logger.Warn("sound changes will not be picked up", "error", err)
	} else {
		f.watcher = w
	}

	f.apply(cfg)
	return f
}

func (f *Feedback) apply(cfg config.VolumeConfig) {
	f.player.SetVolume(float64(cfg.FeedbackVolume) / 100)

	path := config.ExpandPath(cfg.FeedbackSound)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			f.logger.Warn("feedback sound not found", "path", path, "error", err)
			path = ""
		}
	}

	f.mu.Lock()
	f.path = path
	f.mu.Unlock()
}

// Enabled reports whether a sound is configured.
func (f *Feedback) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path != ""
}

// Start preloads the sound and watches it for edits.
func (f *Feedback) Start(ctx context.Context) {
	f.prepare()
	if f.watcher != nil {
		f.watcher.Start(ctx)
	}
}

func (f *Feedback) prepare() {
	f.mu.RLock()
	path := f.path
	f.mu.RUnlock()
	if path == "" {
		return
	}

	if err := f.player.Preload(path); err != nil {
		f.logger.Warn("failed to preload feedback sound", "path", path, "error", err)
	}
	if f.watcher != nil {
		if err := f.watcher.Watch(path); err != nil {
			f.logger.Warn("failed to watch feedback sound", "path", path, "error", err)
		}
	}
}

// Play plays the sound. It does nothing when feedback is disabled.
func (f *Feedback) Play() error {
	f.mu.RLock()
	path := f.path
	f.mu.RUnlock()
	return f.player.Play(path)
}

// UpdateConfig switches to a new sound and volume after a config reload.
func (f *Feedback) UpdateConfig(cfg config.VolumeConfig) {
	f.apply(cfg)
	f.prepare()
	f.logger.Debug("feedback sound updated", "enabled", f.Enabled())
}

func (f *Feedback) Stop() {
	if f.watcher != nil {
		f.watcher.Stop()
	}
	f.player.Close()
}
