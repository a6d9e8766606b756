package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Audio describes the normalization target and the media tools used to reach it.
type Audio struct {
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	Encoding      string `toml:"encoding"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Rhubarb contains lip-sync analyzer settings.
type Rhubarb struct {
	// Path is tried before the sidecar locations next to the executable.
	Path           string `toml:"path"`
	Recognizer     string `toml:"recognizer"`
	Format         string `toml:"format"`
	ExtendedShapes string `toml:"extended_shapes"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeline contains cue validation tolerances.
type Timeline struct {
	EpsilonMS float64 `toml:"epsilon_ms"`
}

// Runtime contains the avatar runtime endpoints used for delivery.
type Runtime struct {
	UploadURL      string `toml:"upload_url"`
	SpeakURL       string `toml:"speak_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// TTS contains ElevenLabs speech synthesis settings.
type TTS struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	ModelID         string  `toml:"model_id"`
	VoiceID         string  `toml:"voice_id"`
	OutputFormat    string  `toml:"output_format"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	Style           float64 `toml:"style"`
	UseSpeakerBoost bool    `toml:"use_speaker_boost"`
	Speed           float64 `toml:"speed"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Pipeline contains batch execution settings.
type Pipeline struct {
	Parallel            int `toml:"parallel"`
	StaleWorkspaceHours int `toml:"stale_workspace_hours"`
}

// Config encapsulates all configuration values for mouthpiece.
//
// Configuration sections by subsystem:
//   - Paths: staging, log, and state directories
//   - Audio: normalization target and ffmpeg/ffprobe binaries
//   - Rhubarb: analyzer location, recognizer, and output format
//   - Timeline: validation tolerance
//   - Runtime: avatar upload and speak endpoints
//   - TTS: ElevenLabs synthesis
//   - Logging: log format and level
//   - Pipeline: batch parallelism and workspace cleanup
type Config struct {
	Paths    Paths    `toml:"paths"`
	Audio    Audio    `toml:"audio"`
	Rhubarb  Rhubarb  `toml:"rhubarb"`
	Timeline Timeline `toml:"timeline"`
	Runtime  Runtime  `toml:"runtime"`
	TTS      TTS      `toml:"tts"`
	Logging  Logging  `toml:"logging"`
	Pipeline Pipeline `toml:"pipeline"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the staging, log, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RhubarbTimeout returns the analyzer timeout as a duration.
func (c *Config) RhubarbTimeout() time.Duration {
	return time.Duration(c.Rhubarb.TimeoutSeconds) * time.Second
}

// RuntimeTimeout returns the delivery request timeout as a duration.
func (c *Config) RuntimeTimeout() time.Duration {
	return time.Duration(c.Runtime.RequestTimeout) * time.Second
}

// TTSTimeout returns the synthesis request timeout as a duration.
func (c *Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTS.TimeoutSeconds) * time.Second
}

// Epsilon returns the timeline tolerance in seconds.
func (c *Config) Epsilon() float64 {
	return c.Timeline.EpsilonMS / 1000
}

// StaleWorkspaceAge returns the age after which abandoned run workspaces are removed.
func (c *Config) StaleWorkspaceAge() time.Duration {
	return time.Duration(c.Pipeline.StaleWorkspaceHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}

// Marshal renders c as TOML with secrets masked.
func (c *Config) Marshal() ([]byte, error) {
	clone := *c
	if clone.TTS.APIKey != "" {
		clone.TTS.APIKey = "<redacted>"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
