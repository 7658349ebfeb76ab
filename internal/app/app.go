// Package app wires the indentglow components together and runs the
// terminal event loop.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/indentglow/internal/config"
	"github.com/dshills/indentglow/internal/decorator"
	"github.com/dshills/indentglow/internal/event"
	"github.com/dshills/indentglow/internal/language"
	"github.com/dshills/indentglow/internal/logging"
	"github.com/dshills/indentglow/internal/plugin/lua"
	"github.com/dshills/indentglow/internal/renderer"
	"github.com/dshills/indentglow/internal/renderer/backend"
	"github.com/dshills/indentglow/internal/renderer/core"
	"github.com/dshills/indentglow/internal/renderer/decoration"
)

// quitSignal is posted as interrupt data to stop the event loop.
type quitSignal struct{}

// Application is the central coordinator for all indentglow components.
type Application struct {
	mu sync.Mutex

	opts    Options
	cfg     *config.Config
	logger  *logging.Logger
	logFile io.Closer

	bus      *event.Bus
	subs     []*event.Subscription
	registry *language.Registry
	plugins  *lua.Host
	watcher  *config.Watcher

	doc       *Document
	layer     *decoration.Layer
	decorator *decorator.Decorator
	view      *renderer.View
	backend   backend.Backend

	cursorLine uint32
	cursorCol  uint32
	message    string
	quitArmed  bool

	running       atomic.Bool
	redrawPending atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty selects
	// config.DefaultPath.
	ConfigPath string

	// File is the file to open. Empty opens a scratch buffer.
	File string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// LogOutput receives log output when no log file is configured.
	// Logging is discarded when both are empty.
	LogOutput io.Writer

	// Env supplies INDENTGLOW_* overrides. Nil reads the process
	// environment.
	Env config.LookupFunc

	// Watch enables live reload of the config file.
	Watch bool
}

// New creates an Application and initializes every component except the
// backend.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	if app.opts.Env == nil {
		app.opts.Env = config.OSEnv()
	}
	if app.opts.ConfigPath == "" {
		app.opts.ConfigPath = config.DefaultPath()
	}

	// 1. Config. Errors are reported but the defaults stay usable.
	cfg, cfgErr := config.Resolve(app.opts.ConfigPath, app.opts.Env)
	if cfgErr != nil {
		cfg = config.Default()
		_ = config.ApplyEnv(cfg, app.opts.Env)
		app.message = "config: " + cfgErr.Error()
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	app.cfg = cfg

	// 2. Logging
	if err := app.setupLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	if cfgErr != nil {
		app.logger.Warn("using default settings: %v", cfgErr)
	}

	// 3. Event bus and languages
	app.bus = event.NewBus()
	app.registry = language.NewRegistry()
	for _, ext := range cfg.Indent.Extensions {
		app.registry.Register(ext, cfg.Indent.Language)
	}

	// 4. Plugins
	app.plugins = lua.NewHost(lua.WithLogger(app.logger))
	app.loadPlugins(cfg.Plugins.Scripts)

	// 5. Decorations
	app.layer = decoration.NewLayer(nil)
	app.layer.OnChange(func(int) { app.requestRedraw() })
	app.decorator = decorator.New(app.layer,
		decorator.WithLanguage(cfg.Indent.Language),
		decorator.WithDelay(cfg.DebounceDelay()),
		decorator.WithLogger(app.logger),
	)
	app.applyTheme(cfg)

	// 6. Subscriptions
	if err := app.subscribe(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}

	// 7. Config watcher
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, cfg,
			config.WithBus(app.bus),
			config.WithLogger(app.logger),
			config.WithEnv(app.opts.Env),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			app.logger.Warn("config watch disabled: %v", err)
		} else {
			app.watcher = w
		}
	}

	// 8. Document
	if app.opts.File != "" {
		doc, err := OpenDocument(app.opts.File, app.registry, cfg.TabSize())
		if err != nil {
			return err
		}
		app.doc = doc
	} else {
		app.doc = NewScratchDocument("", language.PlainText, cfg.TabSize())
	}
	app.logger.Info("opened %s as %s", app.doc.Name, app.doc.LanguageID())
	return nil
}

func (app *Application) setupLogging() error {
	lc := logging.DefaultConfig()
	lc.Level = app.cfg.LogLevel()

	switch {
	case app.cfg.Log.File != "":
		f, err := logging.OpenFile(expandHome(app.cfg.Log.File))
		if err != nil {
			return err
		}
		app.logFile = f
		lc.Output = f
		app.logger = logging.New(lc)
	case app.opts.LogOutput != nil:
		lc.Output = app.opts.LogOutput
		app.logger = logging.New(lc)
	default:
		app.logger = logging.Discard()
	}
	return nil
}

func (app *Application) loadPlugins(scripts []string) {
	for _, script := range scripts {
		if err := app.plugins.LoadFile(expandHome(script)); err != nil {
			app.logger.Error("%v", err)
			app.message = err.Error()
		}
	}
	for ext, id := range app.plugins.Languages() {
		app.registry.Register(ext, id)
	}
}

// applyTheme pushes palette and background settings into the layer.
func (app *Application) applyTheme(cfg *config.Config) {
	palette, err := cfg.Palette()
	if err != nil {
		app.logger.Warn("palette: %v", err)
	}
	app.layer.SetPalette(app.plugins.ApplyPalette(palette))

	bg := core.ColorDefault
	if cfg.Theme.Background != "" {
		if c, err := core.ColorFromHex(cfg.Theme.Background); err == nil {
			bg = c
		} else {
			app.logger.Warn("theme background: %v", err)
		}
	}
	app.layer.SetBackground(bg)

	if app.view != nil {
		style := core.DefaultStyle()
		if fg, err := core.ColorFromHex(cfg.Theme.Foreground); err == nil && cfg.Theme.Foreground != "" {
			style = style.WithForeground(fg)
		}
		if !bg.IsDefault() {
			style = style.WithBackground(bg)
		}
		app.view.SetTextStyle(style)
	}
}

// applyConfig re-applies reloadable settings and redecorates.
func (app *Application) applyConfig(cfg *config.Config) {
	app.mu.Lock()
	app.cfg = cfg
	doc := app.doc
	app.mu.Unlock()

	app.logger.SetLevel(cfg.LogLevel())
	for _, ext := range cfg.Indent.Extensions {
		app.registry.Register(ext, cfg.Indent.Language)
	}
	app.decorator.SetLanguage(cfg.Indent.Language)
	app.decorator.SetDelay(cfg.DebounceDelay())
	app.applyTheme(cfg)
	if doc != nil {
		doc.Buffer().SetTabWidth(cfg.TabSize())
		if !doc.IsScratch() {
			doc.Buffer().SetLanguageID(app.registry.Detect(doc.Path))
		}
		// Updates for other languages are skipped, so drop what was painted.
		if doc.LanguageID() != cfg.Indent.Language {
			app.layer.Clear()
		}
	}
	app.decorator.Trigger()
	app.setMessage("configuration reloaded")
}

// SetBackend sets the display backend. Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.mu.Lock()
	app.backend = b
	app.view = renderer.NewView(b)
	app.view.SetSpanProvider(app.layer)
	cfg := app.cfg
	app.mu.Unlock()

	app.applyTheme(cfg)
	return nil
}

// Run initializes the backend and runs the event loop until quit.
func (app *Application) Run() error {
	if app.backend == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	app.start()
	return app.eventLoop()
}

// start activates the document and draws the first frame.
func (app *Application) start() {
	app.view.SetBuffer(app.doc.Buffer())
	app.activate()
	app.render()
}

// activate announces the document as the active editor.
func (app *Application) activate() {
	app.publish(event.TopicEditorActivated, event.EditorActivated{
		BufferID:   app.doc.ID(),
		LanguageID: app.doc.LanguageID(),
	})
}

func (app *Application) eventLoop() error {
	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventInterrupt {
			if _, ok := ev.Data.(quitSignal); ok {
				return nil
			}
		}
		if err := app.handleBackendEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			app.logger.Error("%v", err)
			app.setMessage(err.Error())
		}
		app.render()
	}
}

// requestRedraw wakes the event loop from another goroutine. Requests
// made while one is queued are coalesced.
func (app *Application) requestRedraw() {
	if !app.running.Load() || app.backend == nil {
		return
	}
	if app.redrawPending.CompareAndSwap(false, true) {
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	}
}

func (app *Application) render() {
	app.redrawPending.Store(false)
	if app.view == nil {
		return
	}

	app.mu.Lock()
	status := renderer.Status{
		Filename: app.doc.Name,
		Language: app.doc.LanguageID(),
		Modified: app.doc.IsModified(),
		Message:  app.message,
	}
	line, col := app.cursorLine, app.cursorCol
	app.mu.Unlock()

	app.view.SetStatus(status)
	app.view.SetCursor(line, col)
	app.view.Render()
}

func (app *Application) publish(topic event.Topic, payload any) {
	ev := event.New(topic, payload, "app")
	if err := app.bus.Publish(context.Background(), ev); err != nil {
		app.logger.Error("publish %s: %v", topic, err)
	}
}

func (app *Application) setMessage(msg string) {
	app.mu.Lock()
	app.message = msg
	app.mu.Unlock()
}

// Shutdown asks a running event loop to stop.
func (app *Application) Shutdown() {
	if app.running.Load() && app.backend != nil {
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: quitSignal{}})
	}
}

// Close releases every component. It is safe to call more than once.
func (app *Application) Close() {
	if app.decorator != nil {
		app.decorator.Close()
	}
	if app.watcher != nil {
		_ = app.watcher.Stop()
		app.watcher = nil
	}
	if app.bus != nil {
		for _, sub := range app.subs {
			_ = app.bus.Unsubscribe(sub)
		}
		app.subs = nil
	}
	if app.plugins != nil {
		app.plugins.Close()
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

// Document returns the open document.
func (app *Application) Document() *Document {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.doc
}

// Config returns the settings in effect.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Decorator returns the indentation decorator.
func (app *Application) Decorator() *decorator.Decorator {
	return app.decorator
}

// Layer returns the decoration layer.
func (app *Application) Layer() *decoration.Layer {
	return app.layer
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Message returns the status line message.
func (app *Application) Message() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.message
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
