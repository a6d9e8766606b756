// Package audio turns arbitrary speech assets into the canonical PCM WAV the
// lip-sync analyzer reads.
//
// Normalizer probes the source with ffprobe, converts it with ffmpeg into a
// private temp directory and verifies the result by reading the RIFF header.
// The returned Normalized handle owns that directory; Close removes it.
package audio
