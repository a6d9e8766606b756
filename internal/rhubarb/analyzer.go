package rhubarb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/deps"
	"mouthpiece/internal/logging"
	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline/parse"
)

// DefaultTimeout bounds a single analyzer run.
const DefaultTimeout = 120 * time.Second

// Output is the raw export produced by one run.
type Output struct {
	Data   []byte
	Format parse.Format
	Path   string
	// Duration is the measured length of the analysed audio.
	Duration float64
	Binary   string
	Elapsed  time.Duration
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(a *Analyzer) {
		if exec != nil {
			a.exec = exec
		}
	}
}

// WithCache replaces the shared path cache.
func WithCache(cache *PathCache) Option {
	return func(a *Analyzer) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values disable the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Analyzer) {
		a.timeout = timeout
	}
}

// WithCandidates replaces the probe list entirely.
func WithCandidates(candidates ...string) Option {
	return func(a *Analyzer) {
		a.candidates = append([]string(nil), candidates...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logging.NewComponentLogger(logger, "rhubarb")
	}
}

// Analyzer runs Rhubarb Lip Sync. One Analyzer may serve concurrent runs.
type Analyzer struct {
	candidates []string
	exec       services.Executor
	cache      *PathCache
	timeout    time.Duration
	logger     *slog.Logger
}

// New constructs an analyzer probing Candidates(configuredPath).
func New(configuredPath string, opts ...Option) *Analyzer {
	a := &Analyzer{
		candidates: Candidates(configuredPath),
		exec:       services.CommandExecutor{},
		cache:      sharedCache,
		timeout:    DefaultTimeout,
		logger:     logging.NewComponentLogger(nil, "rhubarb"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Locate resolves the analyzer executable, consulting the cache first.
func (a *Analyzer) Locate() (string, error) {
	key := strings.Join(a.candidates, "\x00")
	if path, ok := a.cache.Get(key); ok {
		return path, nil
	}
	path, probed, ok := deps.Probe(a.candidates)
	if !ok {
		return "", &ToolNotFoundError{Probed: probed}
	}
	a.cache.Store(key, path)
	return path, nil
}

// Analyze runs the analyzer on input (the normalized WAV) and returns the
// export. req.InputPath is taken from input when input is non-nil.
func (a *Analyzer) Analyze(ctx context.Context, req Request, input *audio.Normalized) (Output, error) {
	var duration float64
	if input != nil {
		req.InputPath = input.Path()
		duration = input.Asset.Duration
	}
	if err := req.Validate(); err != nil {
		return Output{}, err
	}
	if duration <= 0 {
		header, err := audio.ReadWAVHeaderFile(req.InputPath)
		if err != nil {
			return Output{}, services.Wrap(services.ErrDecode, stageName, "read input", req.InputPath, err)
		}
		duration = header.Duration()
	}

	binary, err := a.Locate()
	if err != nil {
		return Output{}, err
	}

	format := req.format()
	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	base := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	outPath := filepath.Join(outDir, base+".rhubarb"+format.Extension())
	_ = os.Remove(outPath)

	args := BuildArgs(req, outPath)
	logger := logging.WithContext(ctx, a.logger)
	logger.Debug("running analyzer",
		logging.String("binary", binary),
		logging.String("args", strings.Join(args, " ")),
	)

	runCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	result, err := a.exec.Run(runCtx, binary, args)
	elapsed := time.Since(started)
	if err != nil {
		return Output{}, a.runError(ctx, binary, result, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil || len(data) == 0 {
		if err == nil {
			err = errors.New("empty output file")
		}
		return Output{}, &ExecutionError{
			Binary:   binary,
			ExitCode: result.ExitCode,
			Stderr:   string(result.Stderr),
			Err:      fmt.Errorf("read output %s: %w", outPath, err),
		}
	}

	logger.Info("analyzer completed",
		logging.String(logging.FieldEventType, "analysis_completed"),
		logging.String("recognizer", string(req.mode())),
		logging.String("format", string(format)),
		logging.Int("output_bytes", len(data)),
		logging.Duration("elapsed", elapsed),
	)
	return Output{
		Data:     data,
		Format:   format,
		Path:     outPath,
		Duration: duration,
		Binary:   binary,
		Elapsed:  elapsed,
	}, nil
}

func (a *Analyzer) runError(parent context.Context, binary string, result services.CommandResult, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if parent.Err() == nil || errors.Is(parent.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrToolTimeout, stageName, "run analyzer",
				fmt.Sprintf("no result within %s", a.timeout), err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var exitErr *services.ExitError
	if errors.As(err, &exitErr) {
		return &ExecutionError{Binary: binary, ExitCode: exitErr.ExitCode, Stderr: exitErr.Stderr, Err: err}
	}
	return &ExecutionError{Binary: binary, ExitCode: -1, Stderr: string(result.Stderr), Err: err}
}
