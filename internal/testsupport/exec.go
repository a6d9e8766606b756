package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/services"
)

// ExecFunc handles one fake command invocation.
type ExecFunc func(ctx context.Context, args []string) (services.CommandResult, error)

// Call records a command the fake executor received.
type Call struct {
	Binary string
	Args   []string
}

// Executor is a scriptable services.Executor. Handlers are matched on the
// binary's base name; unmatched binaries fail as if they were missing.
type Executor struct {
	mu       sync.Mutex
	handlers map[string]ExecFunc
	calls    []Call
}

// NewExecutor returns an Executor with no handlers.
func NewExecutor() *Executor {
	return &Executor{handlers: make(map[string]ExecFunc)}
}

// Handle registers fn for binary (matched by base name).
func (e *Executor) Handle(binary string, fn ExecFunc) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[filepath.Base(binary)] = fn
	return e
}

// Run implements services.Executor.
func (e *Executor) Run(ctx context.Context, binary string, args []string) (services.CommandResult, error) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Binary: binary, Args: append([]string(nil), args...)})
	fn := e.handlers[filepath.Base(binary)]
	e.mu.Unlock()
	if fn == nil {
		return services.CommandResult{ExitCode: -1}, fmt.Errorf("start command: exec: %q: executable file not found", binary)
	}
	return fn(ctx, args)
}

// Calls returns the recorded invocations of binary (base name), or all calls
// when binary is empty.
func (e *Executor) Calls(binary string) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Call
	for _, c := range e.calls {
		if binary == "" || filepath.Base(c.Binary) == filepath.Base(binary) {
			out = append(out, c)
		}
	}
	return out
}

// ProbeJSON renders ffprobe output describing a single audio stream.
func ProbeJSON(codec string, sampleRate, channels int, duration float64) []byte {
	return fmt.Appendf(nil, `{"streams":[{"index":0,"codec_name":%q,"codec_type":"audio","sample_rate":"%d","channels":%d,"duration":"%.6f"}],"format":{"nb_streams":1,"duration":"%.6f","format_name":"wav"}}`,
		codec, sampleRate, channels, duration, duration)
}

// FFprobe answers every probe with ProbeJSON output.
func FFprobe(codec string, sampleRate, channels int, duration float64) ExecFunc {
	payload := ProbeJSON(codec, sampleRate, channels, duration)
	return func(context.Context, []string) (services.CommandResult, error) {
		return services.CommandResult{Stdout: payload}, nil
	}
}

// FFmpeg writes a silent WAV of the given length and format to the final
// argument, the way ffmpeg writes its output path.
func FFmpeg(seconds float64, format audio.Format) ExecFunc {
	return func(_ context.Context, args []string) (services.CommandResult, error) {
		if len(args) == 0 {
			return services.CommandResult{ExitCode: 1}, &services.ExitError{Binary: "ffmpeg", ExitCode: 1, Stderr: "no output"}
		}
		data, err := audio.Silence(seconds, format)
		if err != nil {
			return services.CommandResult{ExitCode: 1}, err
		}
		if err := os.WriteFile(args[len(args)-1], data, 0o644); err != nil {
			return services.CommandResult{ExitCode: 1}, err
		}
		return services.CommandResult{}, nil
	}
}

// RhubarbExport writes payload to the path following -o, the way the
// analyzer writes its export file.
func RhubarbExport(payload string) ExecFunc {
	return func(_ context.Context, args []string) (services.CommandResult, error) {
		i := slices.Index(args, "-o")
		if i < 0 || i+1 >= len(args) {
			return services.CommandResult{ExitCode: 1}, &services.ExitError{Binary: "rhubarb", ExitCode: 1, Stderr: "missing -o"}
		}
		if err := os.WriteFile(args[i+1], []byte(payload), 0o644); err != nil {
			return services.CommandResult{ExitCode: 1}, err
		}
		return services.CommandResult{}, nil
	}
}
