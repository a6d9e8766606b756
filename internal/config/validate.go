package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateRhubarb(); err != nil {
		return err
	}
	if err := c.validateRuntime(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 192000, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		return fmt.Errorf("audio.channels must be between 1 and 8, got %d", c.Audio.Channels)
	}
	switch c.Audio.Encoding {
	case "pcm_s16le", "pcm_s24le", "pcm_s32le":
	default:
		return fmt.Errorf("audio.encoding must be pcm_s16le, pcm_s24le, or pcm_s32le, got %q", c.Audio.Encoding)
	}
	return nil
}

func (c *Config) validateRhubarb() error {
	switch c.Rhubarb.Recognizer {
	case "default", "phonetic":
	default:
		return fmt.Errorf("rhubarb.recognizer must be default or phonetic, got %q", c.Rhubarb.Recognizer)
	}
	switch c.Rhubarb.Format {
	case "json", "xml", "tsv":
	default:
		return fmt.Errorf("rhubarb.format must be json, xml, or tsv, got %q", c.Rhubarb.Format)
	}
	for _, r := range c.Rhubarb.ExtendedShapes {
		if !strings.ContainsRune("GHX", r) {
			return fmt.Errorf("rhubarb.extended_shapes may only contain G, H, and X, got %q", c.Rhubarb.ExtendedShapes)
		}
	}
	return nil
}

func (c *Config) validateRuntime() error {
	if err := validateHTTPURL("runtime.upload_url", c.Runtime.UploadURL); err != nil {
		return err
	}
	return validateHTTPURL("runtime.speak_url", c.Runtime.SpeakURL)
}

func (c *Config) validateTTS() error {
	if err := validateHTTPURL("tts.base_url", c.TTS.BaseURL); err != nil {
		return err
	}
	for name, value := range map[string]float64{
		"tts.stability":        c.TTS.Stability,
		"tts.similarity_boost": c.TTS.SimilarityBoost,
		"tts.style":            c.TTS.Style,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.TTS.Speed < 0.7 || c.TTS.Speed > 1.2 {
		return errors.New("tts.speed must be between 0.7 and 1.2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

func validateHTTPURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", field)
	}
	return nil
}
