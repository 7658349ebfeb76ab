package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INDENTGLOW_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// OSEnv reads the process environment.
func OSEnv() LookupFunc {
	return os.LookupEnv
}

// MapEnv reads from a fixed map. Useful for tests.
func MapEnv(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from INDENTGLOW_TAB_SIZE,
// INDENTGLOW_DEBOUNCE_MS, INDENTGLOW_LANGUAGE and INDENTGLOW_LOG_LEVEL.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	if v, ok := lookup(EnvPrefix + "TAB_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &EnvError{Name: EnvPrefix + "TAB_SIZE", Value: v, Err: err}
		}
		cfg.Editor.TabSize = n
	}
	if v, ok := lookup(EnvPrefix + "DEBOUNCE_MS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &EnvError{Name: EnvPrefix + "DEBOUNCE_MS", Value: v, Err: err}
		}
		cfg.Indent.DebounceMS = n
	}
	if v, ok := lookup(EnvPrefix + "LANGUAGE"); ok && v != "" {
		cfg.Indent.Language = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	return nil
}
