// Package language maps file paths to language identifiers.
package language

import (
	"path/filepath"
	"strings"
	"sync"
)

// PlainText is the language ID for files with no known extension.
const PlainText = "plaintext"

// Rivet is the language ID of Rivet source files.
const Rivet = "rivet"

var builtin = map[string]string{
	".rv":   Rivet,
	".go":   "go",
	".py":   "python",
	".lua":  "lua",
	".js":   "javascript",
	".ts":   "typescript",
	".c":    "c",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".h":    "cpp",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".md":   "markdown",
	".sh":   "shellscript",
}

// Registry resolves language IDs from file extensions.
// The zero value is not usable; use NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]string
}

// NewRegistry returns a registry preloaded with the built-in extensions.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]string, len(builtin))}
	for ext, id := range builtin {
		r.byExt[ext] = id
	}
	return r
}

// Register maps ext to id, replacing any previous mapping.
// The extension may be given with or without its leading dot.
func (r *Registry) Register(ext, id string) {
	ext = normalizeExt(ext)
	if ext == "" || id == "" {
		return
	}
	r.mu.Lock()
	r.byExt[ext] = id
	r.mu.Unlock()
}

// Lookup returns the language registered for ext.
func (r *Registry) Lookup(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byExt[normalizeExt(ext)]
	return id, ok
}

// Detect returns the language ID for a path, or PlainText.
func (r *Registry) Detect(path string) string {
	if id, ok := r.Lookup(filepath.Ext(path)); ok {
		return id
	}
	return PlainText
}

// Extensions returns every extension mapped to id.
func (r *Registry) Extensions(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var exts []string
	for ext, lang := range r.byExt {
		if lang == id {
			exts = append(exts, ext)
		}
	}
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
