package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/logging"
	"github.com/dshills/indentglow/internal/renderer/core"
)

// Config holds every indentglow setting.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Indent  IndentConfig  `toml:"indent"`
	Theme   ThemeConfig   `toml:"theme"`
	Log     LogConfig     `toml:"log"`
	Plugins PluginsConfig `toml:"plugins"`

	// Source is the file the settings were read from, empty for defaults.
	Source string `toml:"-"`
}

// EditorConfig holds display settings.
type EditorConfig struct {
	// TabSize is the display width of a tab and the indentation unit.
	TabSize int `toml:"tab_size"`
}

// IndentConfig holds rainbow indentation settings.
type IndentConfig struct {
	// Language is the language ID decorations are computed for.
	Language string `toml:"language"`
	// Extensions are mapped to Language when files are opened.
	Extensions []string `toml:"extensions"`
	// DebounceMS is the quiet period before decorations are recomputed.
	DebounceMS int `toml:"debounce_ms"`
	// Palette optionally replaces the seven default colours.
	Palette []string `toml:"palette"`
	// Opacity optionally overrides the alpha of every palette colour.
	Opacity *float64 `toml:"opacity"`
}

// ThemeConfig holds base colours.
type ThemeConfig struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives log output. Logging is off in the TUI when empty.
	File string `toml:"file"`
}

// PluginsConfig lists Lua scripts loaded at startup.
type PluginsConfig struct {
	Scripts []string `toml:"scripts"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{TabSize: indent.DefaultUnit},
		Indent: IndentConfig{
			Language:   "rivet",
			Extensions: []string{".rv"},
			DebounceMS: 50,
		},
		Theme: ThemeConfig{Background: "#1e1e1e"},
		Log:   LogConfig{Level: "info"},
	}
}

// DefaultPath returns the user config file location,
// $XDG_CONFIG_HOME/indentglow/config.toml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "indentglow", "config.toml")
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// LoadFromReader reads TOML from r on top of the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := decode("<reader>", data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// Resolve loads path, applies environment overrides and validates.
func Resolve(path string, lookup LookupFunc) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TabSize returns the indentation unit, substituting the default for
// non-positive values.
func (c *Config) TabSize() int {
	return indent.ResolveUnit(c.Editor.TabSize)
}

// DebounceDelay returns the decoration delay.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(max(0, c.Indent.DebounceMS)) * time.Millisecond
}

// Palette returns the configured palette with any opacity override applied.
func (c *Config) Palette() (indent.Palette, error) {
	p := indent.DefaultPalette()
	if len(c.Indent.Palette) > 0 {
		var err error
		if p, err = indent.ParsePalette(c.Indent.Palette); err != nil {
			return p, err
		}
	}
	if c.Indent.Opacity != nil {
		p = p.WithOpacity(*c.Indent.Opacity)
	}
	return p, nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() logging.Level {
	if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
		return lvl
	}
	return logging.LevelInfo
}

// Validate checks every setting and reports all problems at once.
// A non-positive tab size is accepted; TabSize substitutes the default.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(c.Indent.Language) == "" {
		verr.add("indent.language", "must not be empty")
	}
	for i, ext := range c.Indent.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			verr.add(fmt.Sprintf("indent.extensions[%d]", i), "%q must start with a dot", ext)
		}
	}
	if c.Indent.DebounceMS < 0 {
		verr.add("indent.debounce_ms", "must not be negative, got %d", c.Indent.DebounceMS)
	}
	if n := len(c.Indent.Palette); n != 0 && n != indent.PaletteSize {
		verr.add("indent.palette", "must have %d colors, got %d", indent.PaletteSize, n)
	}
	for i, s := range c.Indent.Palette {
		if _, err := indent.ParseColor(s); err != nil {
			verr.add(fmt.Sprintf("indent.palette[%d]", i), "%v", err)
		}
	}
	if o := c.Indent.Opacity; o != nil && (*o < 0 || *o > 1) {
		verr.add("indent.opacity", "must be between 0 and 1, got %g", *o)
	}
	for _, tc := range []struct{ field, value string }{
		{"theme.background", c.Theme.Background},
		{"theme.foreground", c.Theme.Foreground},
	} {
		if tc.value == "" {
			continue
		}
		if _, err := core.ColorFromHex(tc.value); err != nil {
			verr.add(tc.field, "%v", err)
		}
	}
	if c.Log.Level != "" {
		if _, ok := logging.ParseLevel(c.Log.Level); !ok {
			verr.add("log.level", "unknown level %q", c.Log.Level)
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}
