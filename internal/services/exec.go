package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process is
// killed.
const waitDelay = 2 * time.Second

// CommandResult holds the captured streams of a finished process.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (CommandResult, error)
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
}

// CommandExecutor runs binaries with os/exec, capturing stdout and stderr in
// memory. When ctx ends first the process is killed and ctx.Err() is returned.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, binary string, args []string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	result := CommandResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, &ExitError{Binary: binary, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return result, fmt.Errorf("start command: %w", err)
	}
	return result, nil
}
