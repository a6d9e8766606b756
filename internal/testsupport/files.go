package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mouthpiece/internal/audio"
)

// id3Header opens an encoded-audio stand-in so the payload resembles a tagged
// mp3 to anything that sniffs the first bytes.
var id3Header = []byte{'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// WriteWAV writes a silent WAV fixture and returns its path.
func WriteWAV(t testing.TB, path string, seconds float64, format audio.Format) string {
	t.Helper()
	data, err := audio.Silence(seconds, format)
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	writeAudioFixture(t, path, data)
	return path
}

// WriteEncodedAudio writes size bytes of opaque encoded audio behind an ID3
// header. The content is never decoded; tests pair it with a fake ffprobe.
func WriteEncodedAudio(t testing.TB, path string, size int) string {
	t.Helper()
	if size < len(id3Header) {
		size = len(id3Header)
	}
	data := append(bytes.Clone(id3Header), bytes.Repeat([]byte{0xFF, 0xFB}, (size-len(id3Header)+1)/2)...)
	writeAudioFixture(t, path, data[:size])
	return path
}

func writeAudioFixture(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
