package lua

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/indentglow/internal/indent"
	"github.com/dshills/indentglow/internal/logging"
)

// ModuleName is the name scripts use for the host module.
const ModuleName = "indentglow"

// Version is reported to scripts as indentglow.version.
var Version = "dev"

// Host runs plugin scripts and records what they configure.
type Host struct {
	state  *State
	logger *logging.Logger

	mu        sync.Mutex
	languages map[string]string
	colors    map[int]indent.Color
	loaded    []string
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger routes print and indentglow.log output to l.
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHost creates a host with a fresh sandboxed state.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		logger:    logging.Discard(),
		languages: make(map[string]string),
		colors:    make(map[int]indent.Color),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithComponent("plugin")

	h.state = NewState()
	h.install()
	return h
}

func (h *Host) install() {
	h.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"register_language": h.luaRegisterLanguage,
		"set_color":         h.luaSetColor,
		"compute":           luaCompute,
		"log":               h.luaLog,
	}, map[string]lua.LValue{
		"version":      lua.LString(Version),
		"palette_size": lua.LNumber(indent.PaletteSize),
	})
	h.state.SetGlobal("print", h.state.L.NewFunction(h.luaLog))
}

// LoadFile runs a script file.
func (h *Host) LoadFile(path string) error {
	if err := h.state.DoFile(path); err != nil {
		return &ScriptError{Name: path, Err: err}
	}
	h.recordLoaded(path)
	return nil
}

// LoadString runs a script held in memory. name identifies it in errors.
func (h *Host) LoadString(name, code string) error {
	if err := h.state.DoString(code); err != nil {
		return &ScriptError{Name: name, Err: err}
	}
	h.recordLoaded(name)
	return nil
}

func (h *Host) recordLoaded(name string) {
	h.mu.Lock()
	h.loaded = append(h.loaded, name)
	h.mu.Unlock()
	h.logger.Debug("loaded %s", name)
}

// Loaded returns the names of scripts that ran successfully.
func (h *Host) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.loaded...)
}

// Languages returns the extension to language ID mappings registered by
// scripts.
func (h *Host) Languages() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.languages)
}

// PaletteOverrides returns the colours set by scripts keyed by 0-based
// palette index.
func (h *Host) PaletteOverrides() map[int]indent.Color {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.colors)
}

// ApplyPalette returns p with the script overrides applied.
func (h *Host) ApplyPalette(p indent.Palette) indent.Palette {
	for i, c := range h.PaletteOverrides() {
		p[i] = c
	}
	return p
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.state.Close()
}

func (h *Host) luaRegisterLanguage(L *lua.LState) int {
	ext := L.CheckString(1)
	id := L.CheckString(2)
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		L.ArgError(1, "extension must start with a dot")
		return 0
	}
	if id == "" {
		L.ArgError(2, "language id must not be empty")
		return 0
	}

	h.mu.Lock()
	h.languages[strings.ToLower(ext)] = id
	h.mu.Unlock()
	return 0
}

func (h *Host) luaSetColor(L *lua.LState) int {
	index := L.CheckInt(1)
	spec := L.CheckString(2)
	if index < 1 || index > indent.PaletteSize {
		L.ArgError(1, fmt.Sprintf("index must be between 1 and %d", indent.PaletteSize))
		return 0
	}
	c, err := indent.ParseColor(spec)
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}

	h.mu.Lock()
	h.colors[index-1] = c
	h.mu.Unlock()
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	h.logger.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// luaCompute exposes indent.Compute. The result is a 1-based table of
// PaletteSize arrays holding {start, end} pairs.
func luaCompute(L *lua.LState) int {
	text := L.CheckString(1)
	unit := L.OptInt(2, indent.DefaultUnit)

	buckets := indent.Compute(text, unit)
	out := L.CreateTable(indent.PaletteSize, 0)
	for i := range buckets {
		ranges := buckets.Ranges(i)
		list := L.CreateTable(len(ranges), 0)
		for _, r := range ranges {
			pair := L.CreateTable(2, 0)
			pair.Append(lua.LNumber(r.Start))
			pair.Append(lua.LNumber(r.End))
			list.Append(pair)
		}
		out.Append(list)
	}
	L.Push(out)
	return 1
}
