// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (codec, sample rate, channels)
//   - Format: container-level metadata (duration, size, format name)
//
// Inspect runs ffprobe through a services.Executor and returns the parsed
// Result; Decode parses output captured elsewhere. Helper methods expose the
// primary audio stream and numeric duration/sample-rate values used by the
// audio normalizer.
package ffprobe
