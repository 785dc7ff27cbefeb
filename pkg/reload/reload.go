// Package reload watches a config file on disk and applies precision/mode
// changes to a live mcaconfig.Context without restarting the process,
// letting an operator tune noise injection mid-experiment.
package reload

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vfc-go/mca/pkg/logging"
	"github.com/vfc-go/mca/pkg/mcaconfig"
)

// Config controls the watcher's target file and poll cadence.
type Config struct {
	Path         string
	PollInterval time.Duration

	// EnableSignalReload, when true, also triggers an immediate Reload on
	// SIGHUP, the conventional "re-read your config" signal.
	EnableSignalReload bool
}

// Watcher polls Config.Path for changes and, on each change, reloads and
// validates the file before applying its precision and mode to the target
// Context. Only the fields the Context exposes atomic setters for
// (precision_binary32, precision_binary64, mode) are reloadable; the rest
// of Options takes effect only at process start, matching the backend's
// own contract that seed, sparsity, daz, ftz and error-mode are fixed once
// chosen.
type Watcher struct {
	ctx    *mcaconfig.Context
	cfg    Config
	logger *logging.Logger

	mu        sync.Mutex
	lastMod   time.Time
	callbacks []func(mcaconfig.Options)
}

// New builds a Watcher. A zero PollInterval defaults to one second.
func New(ctx *mcaconfig.Context, cfg Config, logger *logging.Logger) *Watcher {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	return &Watcher{ctx: ctx, cfg: cfg, logger: logger}
}

// OnReload registers a callback invoked (in registration order) after each
// successful reload.
func (w *Watcher) OnReload(cb func(mcaconfig.Options)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start polls Config.Path until ctx is cancelled, and — if
// Config.EnableSignalReload is set — also reloads immediately on SIGHUP.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
	if w.cfg.EnableSignalReload {
		go w.watchSignal(ctx)
	}
}

func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.checkAndReload()
		}
	}
}

func (w *Watcher) watchSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			_, _ = w.Reload()
		}
	}
}

func (w *Watcher) checkAndReload() {
	info, err := os.Stat(w.cfg.Path)
	if err != nil {
		return
	}

	w.mu.Lock()
	if !info.ModTime().After(w.lastMod) {
		w.mu.Unlock()
		return
	}
	w.lastMod = info.ModTime()
	w.mu.Unlock()

	w.Reload()
}

// Reload loads, validates, and applies Config.Path immediately, outside of
// the poll loop. It returns the loaded options so callers (and tests) can
// inspect what was applied.
func (w *Watcher) Reload() (mcaconfig.Options, error) {
	opts, err := mcaconfig.Load(w.cfg.Path)
	if err != nil {
		w.logf("reload failed: %v", err)
		return mcaconfig.Options{}, err
	}
	if err := opts.Validate(); err != nil {
		w.logf("reload rejected, invalid config: %v", err)
		return mcaconfig.Options{}, err
	}

	if err := w.ctx.SetPrecisionBinary32(opts.PrecisionBinary32); err != nil {
		w.logf("reload rejected: %v", err)
		return mcaconfig.Options{}, err
	}
	if err := w.ctx.SetPrecisionBinary64(opts.PrecisionBinary64); err != nil {
		w.logf("reload rejected: %v", err)
		return mcaconfig.Options{}, err
	}
	mode, err := mcaconfig.ParseMode(opts.Mode)
	if err != nil {
		w.logf("reload rejected: %v", err)
		return mcaconfig.Options{}, err
	}
	w.ctx.SetMode(mode)

	if w.logger != nil {
		w.logger.Info("reloaded mca configuration",
			"precision_binary32", opts.PrecisionBinary32,
			"precision_binary64", opts.PrecisionBinary64,
			"mode", opts.Mode,
		)
	}

	w.mu.Lock()
	cbs := append([]func(mcaconfig.Options){}, w.callbacks...)
	w.mu.Unlock()
	for _, cb := range cbs {
		cb(opts)
	}

	return opts, nil
}

func (w *Watcher) logf(msg string, args ...interface{}) {
	if w.logger == nil {
		return
	}
	w.logger.Error(fmt.Sprintf(msg, args...))
}
