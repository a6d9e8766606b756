// Package elevenlabs implements tts.Synthesizer against the ElevenLabs REST
// API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/services"
	"mouthpiece/internal/tts"
)

const (
	DefaultBaseURL      = "https://api.elevenlabs.io"
	DefaultModel        = "eleven_multilingual_v2"
	DefaultOutputFormat = "mp3_44100_128"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// WithOutputFormat sets the output format, e.g. "mp3_44100_128" or
// "pcm_44100". PCM output is wrapped in a WAV header.
func WithOutputFormat(format string) Option {
	return func(c *Client) {
		if format = strings.TrimSpace(format); format != "" {
			c.outputFormat = format
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// Client talks to ElevenLabs.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	outputFormat string
	httpClient   *http.Client
}

var _ tts.Synthesizer = (*Client)(nil)

// New creates a client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "synthesize", "elevenlabs",
			"api key missing (set tts.api_key or ELEVENLABS_API_KEY)", nil)
	}
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		model:        DefaultModel,
		outputFormat: DefaultOutputFormat,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type synthesisRequest struct {
	Text          string            `json:"text"`
	ModelID       string            `json:"model_id"`
	VoiceSettings tts.VoiceSettings `json:"voice_settings"`
}

// Extension implements tts.Synthesizer.
func (c *Client) Extension() string {
	if _, ok := c.pcmRate(); ok {
		return ".wav"
	}
	return "." + strings.SplitN(c.outputFormat, "_", 2)[0]
}

// Synthesize posts text to /v1/text-to-speech/{voice} and returns the audio.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, settings tts.VoiceSettings) ([]byte, error) {
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, services.Wrap(services.ErrValidation, "synthesize", "elevenlabs", "voice id required", nil)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(synthesisRequest{Text: text, ModelID: c.model, VoiceSettings: settings})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL, url.PathEscape(voiceID), url.QueryEscape(c.outputFormat))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "synthesize")
	if err != nil {
		return nil, err
	}
	if rate, ok := c.pcmRate(); ok {
		return audio.EncodeWAV(body, audio.Format{SampleRate: rate, Channels: 1, Encoding: audio.EncodingPCM16})
	}
	return body, nil
}

type voicesResponse struct {
	Voices []struct {
		VoiceID  string            `json:"voice_id"`
		Name     string            `json:"name"`
		Category string            `json:"category"`
		Labels   map[string]string `json:"labels"`
	} `json:"voices"`
}

// ListVoices returns the voices available to the configured key.
func (c *Client) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "list voices")
	if err != nil {
		return nil, err
	}
	var vr voicesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("elevenlabs: decode voices: %w", err)
	}
	voices := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		voices = append(voices, tts.Voice{ID: v.VoiceID, Name: v.Name, Category: v.Category, Labels: v.Labels})
	}
	return voices, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrToolExecution, "synthesize", op, "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrToolExecution, "synthesize", op, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, services.Wrap(services.ErrToolExecution, "synthesize", op,
			fmt.Sprintf("elevenlabs returned %d: %s", resp.StatusCode, snippet), nil)
	}
	return body, nil
}

func (c *Client) pcmRate() (int, bool) {
	rest, ok := strings.CutPrefix(c.outputFormat, "pcm_")
	if !ok {
		return 0, false
	}
	rate, err := strconv.Atoi(rest)
	if err != nil || rate <= 0 {
		return 0, false
	}
	return rate, true
}
