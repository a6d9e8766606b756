package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mouthpiece/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Rhubarb.Path = filepath.Join(base, "bin", "rhubarb")
	cfgVal.Pipeline.StaleWorkspaceHours = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRuntime points delivery at the given upload and speak endpoints.
func WithRuntime(uploadURL, speakURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Runtime.UploadURL = uploadURL
		b.cfg.Runtime.SpeakURL = speakURL
	}
}

// WithCueFormat selects the analyzer output format and recognizer.
func WithCueFormat(format, recognizer string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rhubarb.Format = format
		b.cfg.Rhubarb.Recognizer = recognizer
	}
}

// WithStubbedAnalyzer writes an executable placeholder at the configured
// analyzer path so location probing succeeds. Execution itself is expected to
// go through a stub Executor.
func WithStubbedAnalyzer() ConfigOption {
	return func(b *configBuilder) {
		path := b.cfg.Rhubarb.Path
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.t.Fatalf("mkdir analyzer dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			b.t.Fatalf("write analyzer stub: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
