package audio

import (
	"fmt"
	"os"
	"strings"
)

// PCM encodings the normalizer can produce.
const (
	EncodingPCM16 = "pcm_s16le"
	EncodingPCM24 = "pcm_s24le"
	EncodingPCM32 = "pcm_s32le"
)

// Defaults used when a target Format leaves a field zero.
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 1
	DefaultEncoding   = EncodingPCM16
)

var bitDepths = map[string]int{
	EncodingPCM16: 16,
	EncodingPCM24: 24,
	EncodingPCM32: 32,
}

// Format describes an audio payload. Encoding is a PCM codec name for WAV
// payloads or the probed codec (mp3, aac, ...) for compressed sources.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Encoding   string
}

// DefaultFormat is the analyzer's preferred input: 44.1 kHz mono 16-bit PCM.
func DefaultFormat() Format {
	return Format{SampleRate: DefaultSampleRate, Channels: DefaultChannels, BitDepth: 16, Encoding: DefaultEncoding}
}

// IsPCM reports whether Encoding names a supported PCM codec.
func (f Format) IsPCM() bool {
	_, ok := bitDepths[f.Encoding]
	return ok
}

// FrameSize returns the byte size of one sample frame.
func (f Format) FrameSize() int {
	return f.Channels * f.BitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch", f.Encoding, f.SampleRate, f.Channels)
}

// withDefaults fills zero fields and derives BitDepth from Encoding.
func (f Format) withDefaults() Format {
	f.Encoding = strings.ToLower(strings.TrimSpace(f.Encoding))
	if f.Encoding == "" {
		f.Encoding = DefaultEncoding
	}
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultSampleRate
	}
	if f.Channels <= 0 {
		f.Channels = DefaultChannels
	}
	if depth, ok := bitDepths[f.Encoding]; ok {
		f.BitDepth = depth
	}
	return f
}

// Asset is a file-backed audio payload. It is not modified after creation.
type Asset struct {
	Path     string
	Format   Format
	Duration float64
}

// NewAsset describes a file whose format is not yet known. The normalizer
// probes it.
func NewAsset(path string) Asset {
	return Asset{Path: strings.TrimSpace(path)}
}

// Bytes reads the payload from disk.
func (a Asset) Bytes() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("read audio asset: %w", err)
	}
	return data, nil
}
