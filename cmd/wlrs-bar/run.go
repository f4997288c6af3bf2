package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/spf13/cobra"

	"github.com/elijahimmer/wlrs-bar/internal/audio"
	"github.com/elijahimmer/wlrs-bar/internal/bar"
	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/daemon"
	"github.com/elijahimmer/wlrs-bar/internal/display"
	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/theme"
)

const appID = "io.github.elijahimmer.wlrs-bar"

// runBar runs the bar on the GTK main loop until a signal arrives or the
// surface is closed.
func runBar(cmd *cobra.Command, args []string) error {
	logger.Info("starting wlrs-bar", "version", version)

	path, err := configPath()
	if err != nil {
		return err
	}

	app := adw.NewApplication(appID, 0)

	// Owned by the GTK main loop once activated
	var (
		window        *display.Window
		themeLoader   *theme.Loader
		feedback      *audio.Feedback
		configWatcher *daemon.ConfigWatcher
		notifier      *daemon.Notifier
		sender        *daemon.DBusSender
		running       atomic.Bool
		failed        atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGUSR1 {
					glib.IdleAdd(func() {
						if window != nil {
							logSnapshot(window.Bar())
						}
					})
					continue
				}
				logger.Info("received signal, shutting down", "signal", sig)
				glib.IdleAdd(func() {
					app.Quit()
				})
				return
			}
		}
	}()

	// build assembles a bar for c with the current theme.
	build := func(c *config.Config) *bar.Bar {
		return bar.Build(ctx, logger, c, bar.BuildOptions{
			Palette:     themeLoader.Palette(),
			UpdatedLast: updatedLastTime(c),
			Feedback:    feedback.Play,
			OnBatteryCritical: func(charge float64) {
				if cfg.Notify.BatteryCritical {
					notifier.NotifyBatteryCritical(charge)
				}
			},
		})
	}

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		themeLoader = theme.NewLoader(logger, "")
		themeLoader.LoadTheme(cfg.Theme.Name)

		feedback = audio.NewFeedback(cfg.Volume, logger)
		feedback.Start(ctx)

		notifier = daemon.NewNotifier(logger, nil)
		if sender, err = daemon.NewDBusSender(config.AppName); err != nil {
			logger.Warn("desktop notifications unavailable", "error", err)
		} else {
			notifier = daemon.NewNotifier(logger, sender)
		}
		configureNotifier(notifier, cfg)

		window, err = display.NewWindow(&app.Application, cfg, build(cfg), logger)
		if err != nil {
			logger.Error("failed to create bar surface", "error", err)
			failed.Store(true)
			app.Quit()
			return
		}
		window.Present()

		onTheme := func(draw.Palette) {
			glib.IdleAdd(func() {
				logger.Info("theme changed, rebuilding bar", "theme", themeLoader.CurrentTheme())
				window.UpdateConfig(cfg, build(cfg))
			})
		}
		themeLoader.StartHotReload(ctx, onTheme)

		configWatcher, err = daemon.NewConfigWatcher(path, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
			return
		}
		configWatcher.SetOverrides(func(c *config.Config) { applyFlags(cmd, c) })
		configWatcher.SetReloadCallback(func(newConfig *config.Config) {
			glib.IdleAdd(func() {
				if newConfig.Theme.Name != cfg.Theme.Name {
					themeLoader.LoadTheme(newConfig.Theme.Name)
					themeLoader.StartHotReload(ctx, onTheme)
				}
				feedback.UpdateConfig(newConfig.Volume)
				configureNotifier(notifier, newConfig)

				cfg = newConfig
				window.UpdateConfig(cfg, build(cfg))

				if cfg.Notify.ConfigReload {
					notifier.NotifyConfigReloaded()
				}
			})
		})
		configWatcher.SetErrorCallback(onMainLoop(idleAdd, func(err error) {
			if cfg.Notify.ConfigReload {
				notifier.NotifyConfigError(err)
			}
		}))
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("wlrs-bar ready", "config", path, "theme", themeLoader.CurrentTheme())
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		cancel()
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if window != nil {
			if err := window.Close(); err != nil {
				logger.Warn("error closing bar", "error", err)
			}
		}
		if feedback != nil {
			feedback.Stop()
		}
		if sender != nil {
			_ = sender.Close()
		}
		running.Store(false)
	})

	status := app.Run([]string{os.Args[0]})
	if failed.Load() {
		return fmt.Errorf("bar did not start")
	}
	if status != 0 {
		return fmt.Errorf("application exited with status %d", status)
	}
	logger.Info("wlrs-bar stopped")
	return nil
}

func idleAdd(fn func()) { glib.IdleAdd(fn) }

// onMainLoop wraps fn so that it runs through post. Watcher callbacks fire on
// their own goroutines and must not touch main loop state directly.
func onMainLoop(post func(func()), fn func(error)) func(error) {
	return func(err error) {
		post(func() { fn(err) })
	}
}

func configureNotifier(n *daemon.Notifier, c *config.Config) {
	n.SetEnabled(c.Notify.Enabled)
	n.SetMinInterval(c.Notify.MinInterval.Duration())
}

// logSnapshot writes the bar's current readings to the log.
func logSnapshot(b *bar.Bar) {
	snap := b.Snapshot()
	logger.Info("snapshot",
		"instance", snap.Instance,
		"battery", snap.Battery,
		"cpu", snap.CPU,
		"ram", snap.RAM,
		"volume", snap.Volume,
		"workspaces", snap.Workspaces,
		"updated_last", snap.UpdatedLast,
	)
}
