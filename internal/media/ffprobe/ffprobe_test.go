package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"

	"mouthpiece/internal/services"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "mjpeg", "codec_type": "video"},
    {"index": 1, "codec_name": "mp3", "codec_type": "audio", "sample_rate": "22050", "channels": 2, "duration": "2.500000"}
  ],
  "format": {"filename": "speech.mp3", "nb_streams": 2, "duration": "2.512000", "size": "40192", "format_name": "mp3"}
}`

type fakeExecutor struct {
	binary string
	args   []string
	out    []byte
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (services.CommandResult, error) {
	f.binary = binary
	f.args = args
	return services.CommandResult{Stdout: f.out}, f.err
}

func TestInspectDecodesOutput(t *testing.T) {
	exec := &fakeExecutor{out: []byte(sampleOutput)}
	result, err := Inspect(context.Background(), exec, "", "/tmp/speech.mp3")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if exec.binary != "ffprobe" {
		t.Fatalf("expected default binary, got %q", exec.binary)
	}
	if exec.args[len(exec.args)-1] != "/tmp/speech.mp3" {
		t.Fatalf("expected path as final argument, got %v", exec.args)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	stream, ok := result.PrimaryAudio()
	if !ok || stream.CodecName != "mp3" || stream.SampleRateHz() != 22050 {
		t.Fatalf("unexpected primary audio: %+v", stream)
	}
	if result.DurationSeconds() != 2.512 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 40192 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestInspectPropagatesExecutorError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("boom")}
	if _, err := Inspect(context.Background(), exec, "ffprobe", "in.wav"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Inspect(context.Background(), exec, "ffprobe", " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", Duration: "1.25"}}}
	if result.DurationSeconds() != 1.25 {
		t.Fatalf("expected stream duration, got %v", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", SampleRate: "fast"}},
		Format:  Format{Duration: "bad", Size: "-1"},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.Streams[0].SampleRateHz() != 0 {
		t.Fatalf("expected sample rate 0, got %d", result.Streams[0].SampleRateHz())
	}
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
