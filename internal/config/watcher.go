package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/indentglow/internal/event"
	"github.com/dshills/indentglow/internal/logging"
)

// DefaultReloadDebounce coalesces the burst of events editors produce when
// saving a file.
const DefaultReloadDebounce = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	lookup    LookupFunc
	bus       *event.Bus
	logger    *logging.Logger

	mu      sync.RWMutex
	current *Config
	reloads uint64

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithBus publishes config.reloaded on bus after each successful reload.
func WithBus(bus *event.Bus) WatcherOption {
	return func(w *Watcher) { w.bus = bus }
}

// WithLogger sets the watcher logger.
func WithLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithEnv sets the environment used for overrides on reload.
func WithEnv(lookup LookupFunc) WatcherOption {
	return func(w *Watcher) { w.lookup = lookup }
}

// NewWatcher creates a watcher for path. current is the configuration in
// effect before any reload.
func NewWatcher(path string, current *Config, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if current == nil {
		current = Default()
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      abs,
		debounce:  DefaultReloadDebounce,
		lookup:    OSEnv(),
		logger:    logging.Discard(),
		current:   current,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("config")
	return w, nil
}

// Start watches the directory holding the file, so that editors which
// replace the file on save are handled.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

// Current returns the configuration in effect.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// Reload re-reads the file now. On failure the previous configuration
// stays in effect.
func (w *Watcher) Reload(ctx context.Context) error {
	cfg, err := Resolve(w.path, w.lookup)
	if err != nil {
		w.logger.Warn("reload failed, keeping previous settings: %v", err)
		return err
	}

	w.mu.Lock()
	w.current = cfg
	w.reloads++
	w.mu.Unlock()

	w.logger.Info("reloaded %s", w.path)
	if w.bus != nil {
		ev := event.New(event.TopicConfigReloaded, event.ConfigReloaded{Path: w.path}, "config")
		if err := w.bus.Publish(ctx, ev); err != nil {
			w.logger.Warn("config.reloaded handlers: %v", err)
		}
	}
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			_ = w.Reload(context.Background())

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(ev.Name) == w.path
}
