// Package tts defines the text-to-speech collaborator that produces speech
// assets for the lip-sync pipeline.
package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/services"
)

// VoiceSettings tunes a synthesis request.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

// DefaultVoiceSettings returns the settings used when none are configured.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0,
		UseSpeakerBoost: true,
		Speed:           1.0,
	}
}

// Validate checks every field against the range the service accepts.
func (s VoiceSettings) Validate() error {
	check := func(name string, v, lo, hi float64) error {
		if v < lo || v > hi {
			return services.Wrap(services.ErrValidation, "synthesize", "voice settings",
				fmt.Sprintf("%s %.2f outside [%.2f, %.2f]", name, v, lo, hi), nil)
		}
		return nil
	}
	if err := check("stability", s.Stability, 0, 1); err != nil {
		return err
	}
	if err := check("similarity_boost", s.SimilarityBoost, 0, 1); err != nil {
		return err
	}
	if err := check("style", s.Style, 0, 1); err != nil {
		return err
	}
	return check("speed", s.Speed, 0.7, 1.2)
}

// Voice is one voice offered by a provider.
type Voice struct {
	ID       string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, settings VoiceSettings) ([]byte, error)
	// Extension is the file extension of the encoded audio, e.g. ".mp3".
	Extension() string
}

// SynthesizeToFile writes synthesized speech into dir as <name><ext> and
// returns it as an asset for the pipeline.
func SynthesizeToFile(ctx context.Context, s Synthesizer, text, voiceID string, settings VoiceSettings, dir, name string) (audio.Asset, error) {
	if strings.TrimSpace(text) == "" {
		return audio.Asset{}, services.Wrap(services.ErrValidation, "synthesize", "text", "empty text", nil)
	}
	if err := settings.Validate(); err != nil {
		return audio.Asset{}, err
	}
	data, err := s.Synthesize(ctx, text, voiceID, settings)
	if err != nil {
		return audio.Asset{}, err
	}
	if len(data) == 0 {
		return audio.Asset{}, services.Wrap(services.ErrToolExecution, "synthesize", "write audio", "service returned no audio", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return audio.Asset{}, fmt.Errorf("create speech dir: %w", err)
	}
	path := filepath.Join(dir, name+s.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return audio.Asset{}, fmt.Errorf("write speech: %w", err)
	}
	return audio.NewAsset(path), nil
}
