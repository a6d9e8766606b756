package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"mouthpiece/internal/logging"
	"mouthpiece/internal/media/ffprobe"
	"mouthpiece/internal/services"
)

const stageName = "normalize"

// Normalizer converts audio assets into PCM WAV using ffmpeg.
type Normalizer struct {
	ffmpegBinary  string
	ffprobeBinary string
	exec          services.Executor
	tempRoot      string
	logger        *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithExecutor injects a custom command executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(n *Normalizer) {
		if exec != nil {
			n.exec = exec
		}
	}
}

// WithTempRoot places normalization workspaces under dir instead of the
// system temp directory.
func WithTempRoot(dir string) Option {
	return func(n *Normalizer) {
		n.tempRoot = strings.TrimSpace(dir)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logging.NewComponentLogger(logger, "audio")
	}
}

// NewNormalizer builds a Normalizer. Empty binary names fall back to ffmpeg
// and ffprobe on PATH.
func NewNormalizer(ffmpegBinary, ffprobeBinary string, opts ...Option) *Normalizer {
	n := &Normalizer{
		ffmpegBinary:  defaultString(ffmpegBinary, "ffmpeg"),
		ffprobeBinary: defaultString(ffprobeBinary, "ffprobe"),
		exec:          services.CommandExecutor{},
		logger:        logging.NewComponentLogger(nil, "audio"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalized is a converted asset living in a private temp directory.
// Close removes the directory; it is safe to call more than once.
type Normalized struct {
	Asset  Asset
	Source Asset

	dir     string
	once    sync.Once
	closeEr error
}

// Path returns the normalized WAV path.
func (n *Normalized) Path() string {
	if n == nil {
		return ""
	}
	return n.Asset.Path
}

// Close removes the temp directory holding the normalized file.
func (n *Normalized) Close() error {
	if n == nil {
		return nil
	}
	n.once.Do(func() {
		if n.dir != "" {
			n.closeEr = os.RemoveAll(n.dir)
		}
	})
	return n.closeEr
}

// Normalize probes asset, converts it to target and verifies the produced
// WAV header. Zero target fields take the package defaults.
func (n *Normalizer) Normalize(ctx context.Context, asset Asset, target Format) (*Normalized, error) {
	target = target.withDefaults()
	if !target.IsPCM() {
		return nil, services.Wrap(services.ErrEncode, stageName, "target format",
			fmt.Sprintf("encoding %q is not a supported PCM codec", target.Encoding), nil)
	}

	source := strings.TrimSpace(asset.Path)
	if source == "" {
		return nil, services.Wrap(services.ErrDecode, stageName, "open source", "empty path", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, stageName, "open source", source, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrDecode, stageName, "open source", source+" is a directory", nil)
	}

	logger := logging.WithContext(ctx, n.logger)
	probed, err := n.probe(ctx, source)
	if err != nil {
		return nil, err
	}
	asset.Format = probed.Format
	asset.Duration = probed.Duration
	logger.Debug("source probed",
		logging.String("source", source),
		logging.String("codec", probed.Format.Encoding),
		logging.Int("sample_rate", probed.Format.SampleRate),
		logging.Int("channels", probed.Format.Channels),
		logging.Float64("duration_seconds", probed.Duration),
	)

	dir, err := os.MkdirTemp(n.tempRoot, "normalize-")
	if err != nil {
		return nil, services.Wrap(services.ErrEncode, stageName, "create workspace", "", err)
	}
	result := &Normalized{Source: asset, dir: dir}
	fail := func(err error) (*Normalized, error) {
		_ = result.Close()
		return nil, err
	}

	dest := filepath.Join(dir, wavName(source))
	if _, err := n.exec.Run(ctx, n.ffmpegBinary, ffmpegArgs(source, dest, target)); err != nil {
		return fail(commandError(err))
	}

	header, err := ReadWAVHeaderFile(dest)
	if err != nil {
		return fail(services.Wrap(services.ErrEncode, stageName, "verify output", "read WAV header", err))
	}
	if err := checkHeader(header, target); err != nil {
		return fail(err)
	}

	result.Asset = Asset{Path: dest, Format: header.Format(), Duration: header.Duration()}
	logger.Info("audio normalized",
		logging.String(logging.FieldEventType, "audio_normalized"),
		logging.String("source", source),
		logging.String("format", target.String()),
		logging.Float64("duration_seconds", result.Asset.Duration),
	)
	return result, nil
}

func (n *Normalizer) probe(ctx context.Context, source string) (Asset, error) {
	result, err := ffprobe.Inspect(ctx, n.exec, n.ffprobeBinary, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Asset{}, ctxErr
		}
		return Asset{}, services.Wrap(services.ErrDecode, stageName, "probe source", source, err)
	}
	stream, ok := result.PrimaryAudio()
	if !ok {
		return Asset{}, services.Wrap(services.ErrUnsupportedFormat, stageName, "probe source",
			fmt.Sprintf("%s has no audio stream", source), nil)
	}
	codec := strings.TrimSpace(stream.CodecName)
	if codec == "" || strings.EqualFold(codec, "unknown") {
		return Asset{}, services.Wrap(services.ErrUnsupportedFormat, stageName, "probe source",
			fmt.Sprintf("%s has an unrecognized audio codec", source), nil)
	}
	format := Format{
		SampleRate: stream.SampleRateHz(),
		Channels:   stream.Channels,
		BitDepth:   stream.BitsPerSample,
		Encoding:   codec,
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return Asset{Path: source, Format: format, Duration: duration}, nil
}

func ffmpegArgs(source, dest string, target Format) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(target.Channels),
		"-ar", strconv.Itoa(target.SampleRate),
		"-c:a", target.Encoding,
		dest,
	}
}

func checkHeader(h WAVHeader, target Format) error {
	mismatch := func(field string, got, want int) error {
		return services.Wrap(services.ErrEncode, stageName, "verify output",
			fmt.Sprintf("%s is %d, expected %d", field, got, want), nil)
	}
	if h.SampleRate != target.SampleRate {
		return mismatch("sample rate", h.SampleRate, target.SampleRate)
	}
	if h.Channels != target.Channels {
		return mismatch("channel count", h.Channels, target.Channels)
	}
	if h.BitsPerSample != target.BitDepth {
		return mismatch("bit depth", h.BitsPerSample, target.BitDepth)
	}
	frame := target.FrameSize()
	if h.BlockAlign != frame {
		return mismatch("block align", h.BlockAlign, frame)
	}
	if h.DataSize%int64(frame) != 0 {
		return services.Wrap(services.ErrEncode, stageName, "verify output",
			fmt.Sprintf("data chunk of %d bytes is not a whole number of frames", h.DataSize), nil)
	}
	return nil
}

func commandError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var exitErr *services.ExitError
	if errors.As(err, &exitErr) {
		return services.Wrap(services.ErrDecode, stageName, "ffmpeg",
			fmt.Sprintf("exit status %d: %s", exitErr.ExitCode, strings.TrimSpace(exitErr.Stderr)), err)
	}
	return services.Wrap(services.ErrDecode, stageName, "ffmpeg", "", err)
}

func wavName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "audio"
	}
	return base + ".wav"
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
