package testsupport

import (
	"fmt"
	"os"
	"path/filepath"

	"mouthpiece/internal/audio"
)

// WithStubbedTools installs shell scripts standing in for ffprobe, ffmpeg and
// the analyzer under <base>/bin and points the config at them. ffprobe
// reports a PCM source of the given length, ffmpeg copies a silent WAV of that
// length to its output argument, and the analyzer writes export to the path
// following -o. Use it where a real process boundary is exercised, such as
// the CLI.
func WithStubbedTools(seconds float64, export string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		fixtures := filepath.Join(b.baseDir, "fixtures")
		for _, dir := range []string{binDir, fixtures} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir %s: %v", dir, err)
			}
		}

		probePath := filepath.Join(fixtures, "probe.json")
		wavPath := filepath.Join(fixtures, "silence.wav")
		exportPath := filepath.Join(fixtures, "export")
		WriteWAV(b.t, wavPath, seconds, audio.DefaultFormat())
		writeFixture(b, probePath, ProbeJSON(audio.EncodingPCM16, audio.DefaultSampleRate, audio.DefaultChannels, seconds), 0o644)
		writeFixture(b, exportPath, []byte(export), 0o644)

		scripts := map[string]string{
			"ffprobe": fmt.Sprintf("#!/bin/sh\ncat '%s'\n", probePath),
			"ffmpeg":  fmt.Sprintf("#!/bin/sh\nfor last; do :; done\ncp '%s' \"$last\"\n", wavPath),
			"rhubarb": fmt.Sprintf("#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = \"-o\" ]; then out=\"$2\"; shift; fi\n  shift\ndone\ncp '%s' \"$out\"\n", exportPath),
		}
		for name, script := range scripts {
			writeFixture(b, filepath.Join(binDir, name), []byte(script), 0o755)
		}

		b.cfg.Audio.FFprobeBinary = filepath.Join(binDir, "ffprobe")
		b.cfg.Audio.FFmpegBinary = filepath.Join(binDir, "ffmpeg")
		b.cfg.Rhubarb.Path = filepath.Join(binDir, "rhubarb")
	}
}

func writeFixture(b *configBuilder, path string, data []byte, mode os.FileMode) {
	if err := os.WriteFile(path, data, mode); err != nil {
		b.t.Fatalf("write %s: %v", path, err)
	}
}
