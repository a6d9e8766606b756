package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	if err := c.normalizeRhubarb(); err != nil {
		return err
	}
	c.normalizeTimeline()
	c.normalizeRuntime()
	c.normalizeTTS()
	c.normalizeLogging()
	c.normalizePipeline()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = defaultChannels
	}
	c.Audio.Encoding = strings.ToLower(strings.TrimSpace(c.Audio.Encoding))
	if c.Audio.Encoding == "" {
		c.Audio.Encoding = defaultEncoding
	}
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.FFprobeBinary = strings.TrimSpace(c.Audio.FFprobeBinary)
	if c.Audio.FFprobeBinary == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeRhubarb() error {
	if value, ok := os.LookupEnv("RHUBARB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Rhubarb.Path = strings.TrimSpace(value)
	}
	c.Rhubarb.Path = strings.TrimSpace(c.Rhubarb.Path)
	if c.Rhubarb.Path == "" {
		c.Rhubarb.Path = defaultRhubarbPath
	}
	// Relative analyzer paths stay relative so the working directory is probed first.
	if strings.HasPrefix(c.Rhubarb.Path, "~") {
		expanded, err := expandPath(c.Rhubarb.Path)
		if err != nil {
			return fmt.Errorf("rhubarb.path: %w", err)
		}
		c.Rhubarb.Path = expanded
	}
	c.Rhubarb.Recognizer = strings.ToLower(strings.TrimSpace(c.Rhubarb.Recognizer))
	switch c.Rhubarb.Recognizer {
	case "":
		c.Rhubarb.Recognizer = defaultRecognizer
	case "pocketsphinx":
		c.Rhubarb.Recognizer = "default"
	}
	c.Rhubarb.Format = strings.ToLower(strings.TrimSpace(c.Rhubarb.Format))
	if c.Rhubarb.Format == "" {
		c.Rhubarb.Format = defaultCueFormat
	}
	c.Rhubarb.ExtendedShapes = strings.ToUpper(strings.TrimSpace(c.Rhubarb.ExtendedShapes))
	if c.Rhubarb.TimeoutSeconds <= 0 {
		c.Rhubarb.TimeoutSeconds = defaultRhubarbTimeout
	}
	return nil
}

func (c *Config) normalizeTimeline() {
	if c.Timeline.EpsilonMS <= 0 {
		c.Timeline.EpsilonMS = defaultEpsilonMS
	}
}

func (c *Config) normalizeRuntime() {
	c.Runtime.UploadURL = strings.TrimSpace(c.Runtime.UploadURL)
	if c.Runtime.UploadURL == "" {
		c.Runtime.UploadURL = defaultUploadURL
	}
	c.Runtime.SpeakURL = strings.TrimSpace(c.Runtime.SpeakURL)
	if c.Runtime.SpeakURL == "" {
		c.Runtime.SpeakURL = defaultSpeakURL
	}
	if c.Runtime.RequestTimeout <= 0 {
		c.Runtime.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	if c.TTS.APIKey == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.TTS.APIKey = strings.TrimSpace(value)
		}
	}
	c.TTS.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTS.BaseURL), "/")
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.ModelID = strings.TrimSpace(c.TTS.ModelID)
	if c.TTS.ModelID == "" {
		c.TTS.ModelID = defaultTTSModel
	}
	c.TTS.OutputFormat = strings.ToLower(strings.TrimSpace(c.TTS.OutputFormat))
	if c.TTS.OutputFormat == "" {
		c.TTS.OutputFormat = defaultTTSOutputFormat
	}
	c.TTS.VoiceID = strings.TrimSpace(c.TTS.VoiceID)
	if c.TTS.Speed == 0 {
		c.TTS.Speed = defaultTTSSpeed
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Parallel <= 0 {
		c.Pipeline.Parallel = defaultParallel
	}
	if c.Pipeline.StaleWorkspaceHours < 0 {
		c.Pipeline.StaleWorkspaceHours = 0
	}
}
