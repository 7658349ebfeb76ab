package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.TabSize() != 4 {
		t.Errorf("TabSize = %d, want 4", cfg.TabSize())
	}
	if cfg.DebounceDelay() != 50*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want 50ms", cfg.DebounceDelay())
	}
	if cfg.Indent.Language != "rivet" {
		t.Errorf("Language = %q, want rivet", cfg.Indent.Language)
	}
	p, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	if p != indent.DefaultPalette() {
		t.Errorf("Palette = %v, want default", p)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.TabSize() != 4 {
		t.Errorf("TabSize = %d, want 4", cfg.TabSize())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[editor]
tab_size = 2

[indent]
debounce_ms = 10
opacity = 0.3

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.TabSize() != 2 {
		t.Errorf("TabSize = %d, want 2", cfg.TabSize())
	}
	if cfg.DebounceDelay() != 10*time.Millisecond {
		t.Errorf("DebounceDelay = %v", cfg.DebounceDelay())
	}
	// Unset keys keep their defaults.
	if cfg.Indent.Language != "rivet" {
		t.Errorf("Language = %q, want rivet", cfg.Indent.Language)
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel())
	}
	p, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	for i, c := range p {
		if c.A != 0.3 {
			t.Errorf("palette[%d].A = %v, want 0.3", i, c.A)
		}
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_size = = 2\n")
	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
}

func TestNonPositiveTabSizeFallsBack(t *testing.T) {
	for _, n := range []int{0, -3} {
		cfg, err := LoadFromReader(strings.NewReader("[editor]\ntab_size = " + strconv.Itoa(n)))
		if err != nil {
			t.Fatalf("LoadFromReader: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("tab_size %d: Validate = %v, want nil", n, err)
		}
		if cfg.TabSize() != indent.DefaultUnit {
			t.Errorf("tab_size %d: TabSize = %d, want %d", n, cfg.TabSize(), indent.DefaultUnit)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		toml  string
		field string
	}{
		{"short palette", `[indent]
palette = ["#fff"]`, "indent.palette"},
		{"bad color", `[indent]
palette = ["#fff", "#fff", "#fff", "nope", "#fff", "#fff", "#fff"]`, "indent.palette[3]"},
		{"negative debounce", "[indent]\ndebounce_ms = -1", "indent.debounce_ms"},
		{"opacity range", "[indent]\nopacity = 1.5", "indent.opacity"},
		{"empty language", "[indent]\nlanguage = \"\"", "indent.language"},
		{"bad extension", "[indent]\nextensions = [\"rv\"]", "indent.extensions[0]"},
		{"bad background", "[theme]\nbackground = \"#zz\"", "theme.background"},
		{"bad log level", "[log]\nlevel = \"loud\"", "log.level"},
		{"rgba background", "[theme]\nbackground = \"rgba(0, 0, 0, 0.5)\"", "theme.background"},
		{"alpha hex foreground", "[theme]\nforeground = \"#ffffff80\"", "theme.foreground"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromReader(strings.NewReader(tt.toml))
			if err != nil {
				t.Fatalf("LoadFromReader: %v", err)
			}
			err = cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate = %v, want *ValidationError", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("problems %v missing %s", verr.Problems, tt.field)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Indent.DebounceMS = -5
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate = %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("problems = %v, want 2", verr.Problems)
	}
	if !strings.Contains(err.Error(), "indent.debounce_ms") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateThemeOrder(t *testing.T) {
	cfg := Default()
	cfg.Theme.Background = "#zz"
	cfg.Theme.Foreground = "rgb(1, 2, 3)"

	for i := 0; i < 10; i++ {
		err := cfg.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate = %v", err)
		}
		if len(verr.Problems) != 2 ||
			verr.Problems[0].Field != "theme.background" ||
			verr.Problems[1].Field != "theme.foreground" {
			t.Fatalf("problems = %v, want background then foreground", verr.Problems)
		}
	}
}

func TestCustomPalette(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`[indent]
palette = ["#000000", "#111111", "#222222", "#333333", "#444444", "#555555", "rgba(1, 2, 3, 0.5)"]
`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	p, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	if p[1].R != 0x11 || p[1].A != 1 {
		t.Errorf("p[1] = %v", p[1])
	}
	if p[6] != indent.RGBA(1, 2, 3, 0.5) {
		t.Errorf("p[6] = %v", p[6])
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, MapEnv(map[string]string{
		"INDENTGLOW_TAB_SIZE":    "8",
		"INDENTGLOW_DEBOUNCE_MS": "20",
		"INDENTGLOW_LANGUAGE":    "yaml",
		"INDENTGLOW_LOG_LEVEL":   "WARN",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.TabSize() != 8 || cfg.Indent.DebounceMS != 20 || cfg.Indent.Language != "yaml" || cfg.Log.Level != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	err := ApplyEnv(Default(), MapEnv(map[string]string{"INDENTGLOW_TAB_SIZE": "wide"}))
	if !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("err = %v, want ErrInvalidEnv", err)
	}
	var envErr *EnvError
	if !errors.As(err, &envErr) || envErr.Name != "INDENTGLOW_TAB_SIZE" {
		t.Errorf("err = %#v", err)
	}
}

func TestResolve(t *testing.T) {
	path := writeConfig(t, "[editor]\ntab_size = 2\n")
	cfg, err := Resolve(path, MapEnv(map[string]string{"INDENTGLOW_TAB_SIZE": "3"}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.TabSize() != 3 {
		t.Errorf("env should override file, TabSize = %d", cfg.TabSize())
	}

	bad := writeConfig(t, "[indent]\ndebounce_ms = -1\n")
	if _, err := Resolve(bad, nil); err == nil {
		t.Error("Resolve should fail validation")
	}
}
