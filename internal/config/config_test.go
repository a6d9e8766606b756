package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mouthpiece/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("RHUBARB_PATH", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "mouthpiece", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "mouthpiece", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, ".local", "state", "mouthpiece") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 1 || cfg.Audio.Encoding != "pcm_s16le" {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Rhubarb.Path != "./bin/rhubarb/rhubarb" {
		t.Fatalf("relative analyzer path should be preserved, got %q", cfg.Rhubarb.Path)
	}
	if cfg.RhubarbTimeout() != 120*time.Second {
		t.Fatalf("unexpected analyzer timeout: %v", cfg.RhubarbTimeout())
	}
	if cfg.Epsilon() != 0.001 {
		t.Fatalf("unexpected epsilon: %v", cfg.Epsilon())
	}
	if cfg.StaleWorkspaceAge() != 24*time.Hour {
		t.Fatalf("unexpected stale workspace age: %v", cfg.StaleWorkspaceAge())
	}
	if cfg.TTS.APIKey != "" {
		t.Fatalf("expected empty TTS key, got %q", cfg.TTS.APIKey)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadPrefersProjectFileWhenNoUserConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile("mouthpiece.toml", []byte("[rhubarb]\nformat = \"tsv\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected project config to be found")
	}
	if filepath.Base(resolved) != "mouthpiece.toml" {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Rhubarb.Format != "tsv" {
		t.Fatalf("expected tsv format from project file, got %q", cfg.Rhubarb.Format)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("RHUBARB_PATH", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mouthpiece.toml")

	type payload struct {
		Audio struct {
			SampleRate int    `toml:"sample_rate"`
			Encoding   string `toml:"encoding"`
		} `toml:"audio"`
		Rhubarb struct {
			Recognizer string `toml:"recognizer"`
			Format     string `toml:"format"`
		} `toml:"rhubarb"`
		Runtime struct {
			UploadURL string `toml:"upload_url"`
		} `toml:"runtime"`
		Pipeline struct {
			Parallel int `toml:"parallel"`
		} `toml:"pipeline"`
	}
	custom := payload{}
	custom.Audio.SampleRate = 16000
	custom.Audio.Encoding = " PCM_S24LE "
	custom.Rhubarb.Recognizer = "pocketSphinx"
	custom.Rhubarb.Format = "XML"
	custom.Runtime.UploadURL = "http://avatar.local:9000/upload"
	custom.Pipeline.Parallel = 4
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Encoding != "pcm_s24le" {
		t.Fatalf("expected normalized encoding, got %q", cfg.Audio.Encoding)
	}
	if cfg.Audio.Channels != 1 {
		t.Fatalf("expected default channel count, got %d", cfg.Audio.Channels)
	}
	if cfg.Rhubarb.Recognizer != "default" {
		t.Fatalf("expected pocketSphinx to map to default, got %q", cfg.Rhubarb.Recognizer)
	}
	if cfg.Rhubarb.Format != "xml" {
		t.Fatalf("expected xml format, got %q", cfg.Rhubarb.Format)
	}
	if cfg.Runtime.UploadURL != "http://avatar.local:9000/upload" {
		t.Fatalf("unexpected upload url: %q", cfg.Runtime.UploadURL)
	}
	if cfg.Runtime.SpeakURL != config.Default().Runtime.SpeakURL {
		t.Fatalf("expected default speak url, got %q", cfg.Runtime.SpeakURL)
	}
	if cfg.Pipeline.Parallel != 4 {
		t.Fatalf("expected parallel 4, got %d", cfg.Pipeline.Parallel)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[audio\nsample_rate = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mouthpiece.toml")
	contents := "[tts]\napi_key = \"\"\n\n[rhubarb]\npath = \"/opt/rhubarb/rhubarb\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ELEVENLABS_API_KEY", " env-eleven ")
	t.Setenv("RHUBARB_PATH", "/usr/local/bin/rhubarb")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TTS.APIKey != "env-eleven" {
		t.Errorf("expected TTS key from env, got %q", cfg.TTS.APIKey)
	}
	if cfg.Rhubarb.Path != "/usr/local/bin/rhubarb" {
		t.Errorf("expected analyzer path from env, got %q", cfg.Rhubarb.Path)
	}
}

func TestFileAPIKeyWinsOverEnvironment(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mouthpiece.toml")
	if err := os.WriteFile(configPath, []byte("[tts]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ELEVENLABS_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TTS.APIKey != "file-key" {
		t.Fatalf("expected file key, got %q", cfg.TTS.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.Sample() {
		t.Fatal("written sample differs from embedded sample")
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StagingDir, "mouthpiece") {
		t.Fatalf("expected staging dir to contain mouthpiece, got %q", cfg.Paths.StagingDir)
	}
	if cfg.Rhubarb.TimeoutSeconds != 120 {
		t.Fatalf("expected sample analyzer timeout 120, got %d", cfg.Rhubarb.TimeoutSeconds)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"sample rate", func(c *config.Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"channels", func(c *config.Config) { c.Audio.Channels = 0 }, "audio.channels"},
		{"encoding", func(c *config.Config) { c.Audio.Encoding = "flac" }, "audio.encoding"},
		{"recognizer", func(c *config.Config) { c.Rhubarb.Recognizer = "whisper" }, "rhubarb.recognizer"},
		{"format", func(c *config.Config) { c.Rhubarb.Format = "csv" }, "rhubarb.format"},
		{"extended shapes", func(c *config.Config) { c.Rhubarb.ExtendedShapes = "GZ" }, "rhubarb.extended_shapes"},
		{"upload url", func(c *config.Config) { c.Runtime.UploadURL = "ftp://host/upload" }, "runtime.upload_url"},
		{"speak url host", func(c *config.Config) { c.Runtime.SpeakURL = "http:///speak" }, "runtime.speak_url"},
		{"stability", func(c *config.Config) { c.TTS.Stability = 1.5 }, "tts.stability"},
		{"speed", func(c *config.Config) { c.TTS.Speed = 2 }, "tts.speed"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestMarshalRedactsAPIKeyAndRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.TTS.APIKey = "sk-secret"
	cfg.TTS.VoiceID = "voice-1"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Fatalf("api key leaked:\n%s", data)
	}
	if cfg.TTS.APIKey != "sk-secret" {
		t.Fatal("Marshal must not modify the receiver")
	}

	var back config.Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.TTS.VoiceID != "voice-1" || back.Audio.SampleRate != cfg.Audio.SampleRate || back.Rhubarb.Format != cfg.Rhubarb.Format {
		t.Fatalf("round trip lost values: %+v", back)
	}
}
