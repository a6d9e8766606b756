package rhubarb

import (
	"fmt"
	"strings"

	"mouthpiece/internal/services"
)

const stageName = "analyze"

// ToolNotFoundError reports that no candidate path named an executable.
type ToolNotFoundError struct {
	Probed []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("rhubarb executable not found (probed %s)", strings.Join(e.Probed, ", "))
}

func (e *ToolNotFoundError) Unwrap() error { return services.ErrToolNotFound }

// ExecutionError reports a failed analyzer run. Stderr is the analyzer's
// diagnostic output, unmodified.
type ExecutionError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("rhubarb failed (exit %d)", e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = "rhubarb failed: " + e.Err.Error()
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExecutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{services.ErrToolExecution, e.Err}
	}
	return []error{services.ErrToolExecution}
}
