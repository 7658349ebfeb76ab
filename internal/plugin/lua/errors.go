package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)

// ScriptError wraps a failure raised while running a script.
type ScriptError struct {
	// Name is the script path or chunk name.
	Name string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("plugin %s: %v", e.Name, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
