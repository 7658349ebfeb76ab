package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/indentglow/internal/config"
	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/language"
	"github.com/dshills/indentglow/internal/renderer/backend"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newTestApp(t *testing.T, file string, configTOML string) (*Application, *backend.MemoryBackend) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", configTOML)

	app, err := New(Options{
		ConfigPath: cfgPath,
		File:       file,
		Env:        config.MapEnv(nil),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Close)

	mem := backend.NewMemoryBackend(40, 10)
	if err := app.SetBackend(mem); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}
	return app, mem
}

func keyRune(r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}
}

func key(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func TestOpenRivetFileDecorates(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rv", "fn\n    body\n        deep\n")
	app, mem := newTestApp(t, file, "")

	if got := app.Document().LanguageID(); got != language.Rivet {
		t.Fatalf("LanguageID = %q, want rivet", got)
	}

	app.start()
	if !app.Decorator().Pending() {
		t.Fatal("activation should schedule an update")
	}
	app.Decorator().Flush()

	if got := app.Layer().Ranges(0); len(got) != 2 {
		t.Errorf("depth-0 ranges = %v, want 2", got)
	}
	if got := app.Layer().Ranges(1); len(got) != 1 {
		t.Errorf("depth-1 ranges = %v, want 1", got)
	}

	app.render()
	if got := mem.Row(2); got != "        deep" {
		t.Errorf("row 2 = %q", got)
	}
	fill := app.Layer().FillColor(1)
	if bg := mem.GetCell(5, 2).Style.Background; !bg.Equals(fill) {
		t.Errorf("cell background = %v, want %v", bg, fill)
	}
}

func TestPlainTextNotDecorated(t *testing.T) {
	file := writeFile(t, t.TempDir(), "notes.txt", "    indented\n")
	app, _ := newTestApp(t, file, "")

	app.start()
	app.Decorator().Flush()

	if app.Layer().Ranges(0) != nil && len(app.Layer().Ranges(0)) != 0 {
		t.Errorf("plain text should not be decorated: %v", app.Layer().Ranges(0))
	}
	if app.Decorator().Stats().Skipped != 1 {
		t.Errorf("Stats = %+v, want one skipped", app.Decorator().Stats())
	}
}

func TestConfiguredExtension(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.riv", "  x\n")
	app, _ := newTestApp(t, file, "[indent]\nextensions = [\".riv\"]\n")
	if got := app.Document().LanguageID(); got != "rivet" {
		t.Errorf("LanguageID = %q, want rivet", got)
	}
}

func TestReloadRedetectsDocumentLanguage(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rv", "fn\n    body\n")
	app, _ := newTestApp(t, file, "")
	app.start()
	app.Decorator().Flush()
	if got := app.Layer().Ranges(0); len(got) != 1 {
		t.Fatalf("depth-0 ranges before reload = %v", got)
	}

	cfg := config.Default()
	cfg.Indent.Language = "rivet2"
	app.applyConfig(cfg)

	if got := app.Document().LanguageID(); got != "rivet2" {
		t.Fatalf("LanguageID after reload = %q, want rivet2", got)
	}
	app.Decorator().Flush()
	st := app.Decorator().Stats()
	if st.Updates != 2 || st.Skipped != 0 {
		t.Errorf("Stats() = %+v, want two updates and no skips", st)
	}
	if got := app.Layer().Ranges(0); len(got) != 1 {
		t.Errorf("depth-0 ranges after reload = %v", got)
	}
}

func TestReloadClearsDocumentOfOtherLanguage(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rv", "fn\n    body\n")
	app, _ := newTestApp(t, file, "")
	app.start()
	app.Decorator().Flush()

	cfg := config.Default()
	cfg.Indent.Language = "rivet2"
	cfg.Indent.Extensions = []string{".riv"}
	app.applyConfig(cfg)
	app.Decorator().Flush()

	if got := app.Document().LanguageID(); got != language.Rivet {
		t.Fatalf("LanguageID = %q, want rivet", got)
	}
	for i := 0; i < indent.PaletteSize; i++ {
		if got := app.Layer().Ranges(i); len(got) != 0 {
			t.Errorf("color %d ranges = %v, want none", i, got)
		}
	}
}

func TestEditingTriggersDecoration(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.rv", "")
	app, _ := newTestApp(t, file, "[editor]\ntab_size = 2\n")
	app.start()
	app.Decorator().Flush()

	for _, ev := range []backend.Event{keyRune(' '), keyRune(' '), keyRune(' '), keyRune('x')} {
		if err := app.handleBackendEvent(ev); err != nil {
			t.Fatalf("handleBackendEvent: %v", err)
		}
	}
	if !app.Decorator().Pending() {
		t.Fatal("edit should schedule an update")
	}
	app.Decorator().Flush()

	want0 := []indent.Range{{Start: 0, End: 2}}
	want1 := []indent.Range{{Start: 2, End: 3}}
	if got := app.Layer().Ranges(0); len(got) != 1 || got[0] != want0[0] {
		t.Errorf("Ranges(0) = %v, want %v", got, want0)
	}
	if got := app.Layer().Ranges(1); len(got) != 1 || got[0] != want1[0] {
		t.Errorf("Ranges(1) = %v, want %v", got, want1)
	}
	if !app.Document().IsModified() {
		t.Error("document should be modified")
	}
}

func TestEditingKeys(t *testing.T) {
	app, _ := newTestApp(t, "", "")

	events := []backend.Event{
		keyRune('a'), keyRune('b'), key(backend.KeyEnter), key(backend.KeyTab), keyRune('c'),
		key(backend.KeyBackspace), key(backend.KeyUp), key(backend.KeyEnd), keyRune('!'),
		key(backend.KeyHome), key(backend.KeyDelete),
	}
	for _, ev := range events {
		if err := app.handleBackendEvent(ev); err != nil {
			t.Fatalf("handleBackendEvent: %v", err)
		}
	}

	if got := app.Document().Buffer().Text(); got != "b!\n\t" {
		t.Errorf("text = %q, want %q", got, "b!\n\t")
	}
	if line, col := app.Cursor(); line != 0 || col != 0 {
		t.Errorf("cursor = %d:%d, want 0:0", line, col)
	}
}

func TestCursorMovement(t *testing.T) {
	file := writeFile(t, t.TempDir(), "a.rv", "héllo\nx\nlonger line")
	app, _ := newTestApp(t, file, "")

	steps := []struct {
		ev   backend.Event
		line uint32
		col  uint32
	}{
		{key(backend.KeyRight), 0, 1},
		{key(backend.KeyRight), 0, 3}, // é is two bytes
		{key(backend.KeyLeft), 0, 1},
		{key(backend.KeyEnd), 0, 6},
		{key(backend.KeyDown), 1, 1},
		{key(backend.KeyDown), 2, 1},
		{key(backend.KeyDown), 2, 1},
		{key(backend.KeyRight), 2, 2},
		{key(backend.KeyUp), 1, 1},
		{key(backend.KeyUp), 0, 1},
		{key(backend.KeyLeft), 0, 0},
		{key(backend.KeyLeft), 0, 0},
		{key(backend.KeyPageDown), 2, 0},
	}
	for i, s := range steps {
		if err := app.handleBackendEvent(s.ev); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if line, col := app.Cursor(); line != s.line || col != s.col {
			t.Errorf("step %d: cursor = %d:%d, want %d:%d", i, line, col, s.line, s.col)
		}
	}
}

func TestSaveAndQuit(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "new.rv")
	app, _ := newTestApp(t, file, "")

	if err := app.handleBackendEvent(keyRune('z')); err != nil {
		t.Fatal(err)
	}

	// First Ctrl-Q warns about unsaved changes.
	if err := app.handleBackendEvent(key(backend.KeyCtrlQ)); err != nil {
		t.Fatalf("first Ctrl-Q = %v, want nil", err)
	}
	if !strings.Contains(app.Message(), "unsaved") {
		t.Errorf("message = %q", app.Message())
	}

	if err := app.handleBackendEvent(key(backend.KeyCtrlS)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil || string(data) != "z" {
		t.Fatalf("saved = %q, %v", data, err)
	}
	if app.Document().IsModified() {
		t.Error("document should be clean after save")
	}

	if err := app.handleBackendEvent(key(backend.KeyCtrlQ)); !errors.Is(err, ErrQuit) {
		t.Errorf("Ctrl-Q = %v, want ErrQuit", err)
	}
}

func TestSaveScratch(t *testing.T) {
	app, _ := newTestApp(t, "", "")
	if err := app.handleBackendEvent(key(backend.KeyCtrlS)); err != nil {
		t.Fatalf("save scratch: %v", err)
	}
	if !strings.Contains(app.Message(), "scratch") {
		t.Errorf("message = %q", app.Message())
	}
}

func TestFocusAndResizeRetrigger(t *testing.T) {
	file := writeFile(t, t.TempDir(), "a.rv", "    x")
	app, _ := newTestApp(t, file, "")
	app.start()
	app.Decorator().Flush()

	if err := app.handleBackendEvent(backend.Event{Type: backend.EventFocus, Focused: true}); err != nil {
		t.Fatal(err)
	}
	if !app.Decorator().Pending() {
		t.Error("focus should schedule an update")
	}
	app.Decorator().Flush()

	if err := app.handleBackendEvent(backend.Event{Type: backend.EventResize, Width: 50, Height: 20}); err != nil {
		t.Fatal(err)
	}
	if !app.Decorator().Pending() {
		t.Error("resize should schedule an update")
	}
	app.Decorator().Flush()

	if got := app.Decorator().Stats().Updates; got != 3 {
		t.Errorf("Updates = %d, want 3", got)
	}
}

func TestInvalidConfigFallsBack(t *testing.T) {
	app, _ := newTestApp(t, "", "[indent]\ndebounce_ms = -4\n")
	if !strings.HasPrefix(app.Message(), "config:") {
		t.Errorf("message = %q", app.Message())
	}
	if app.Config().DebounceDelay() != 50*time.Millisecond {
		t.Errorf("DebounceDelay = %v", app.Config().DebounceDelay())
	}
}

func TestPluginsApplied(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "init.lua", `
indentglow.register_language(".rvs", "rivet")
indentglow.set_color(1, "rgba(0, 0, 0, 1)")
`)
	file := writeFile(t, dir, "x.rvs", "    y")
	app, _ := newTestApp(t, file, "[plugins]\nscripts = [\""+filepath.ToSlash(script)+"\"]\n")

	if got := app.Document().LanguageID(); got != "rivet" {
		t.Errorf("LanguageID = %q, want rivet", got)
	}
	if got := app.Layer().Palette()[0]; got != indent.RGBA(0, 0, 0, 1) {
		t.Errorf("palette[0] = %v", got)
	}
}

func TestLogOutput(t *testing.T) {
	var out bytes.Buffer
	app, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Env:        config.MapEnv(nil),
		LogOutput:  &out,
		LogLevel:   "debug",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()
	if !strings.Contains(out.String(), "opened [scratch]") {
		t.Errorf("log = %q", out.String())
	}
}

func TestRunLoop(t *testing.T) {
	file := writeFile(t, t.TempDir(), "a.rv", "  x")
	app, mem := newTestApp(t, file, "[indent]\ndebounce_ms = 1\n")

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if app.Decorator().Stats().Updates > 0 && mem.ShowCount() > 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if app.Decorator().Stats().Updates == 0 {
		t.Error("decorator never ran")
	}

	mem.PostEvent(key(backend.KeyCtrlQ))
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit")
	}
}

func TestRunWithoutBackend(t *testing.T) {
	app, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), Env: config.MapEnv(nil)})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run = %v, want ErrNoBackend", err)
	}
}
