package timeline_test

import (
	"encoding/json"
	"testing"

	"mouthpiece/internal/timeline"
)

func TestTimelineCuesReturnsCopy(t *testing.T) {
	tl := contiguous()
	cues := tl.Cues()
	cues[0].Shape = timeline.ShapeH
	if tl.At(0).Shape != timeline.ShapeA {
		t.Fatalf("expected timeline to be unaffected by caller mutation")
	}
}

func TestParseShape(t *testing.T) {
	for _, s := range timeline.Alphabet {
		got, err := timeline.ParseShape(" " + string(s) + "\n")
		if err != nil || got != s {
			t.Fatalf("ParseShape(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := timeline.ParseShape("I"); err == nil {
		t.Fatal("expected unknown shape error")
	}
}

func TestShapeCounts(t *testing.T) {
	tl := contiguous()
	counts := tl.ShapeCounts()
	if counts[timeline.ShapeA] != 1 || counts[timeline.ShapeX] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestEncodeJSONUsesRhubarbFieldNames(t *testing.T) {
	data, err := timeline.EncodeJSON(contiguous(), "hello.wav")
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("decode: %v", err)
	}
	meta, ok := generic["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata missing in %s", data)
	}
	if meta["duration"] != 1.5 || meta["soundFile"] != "hello.wav" {
		t.Fatalf("unexpected metadata %v", meta)
	}
	cues, ok := generic["mouthCues"].([]any)
	if !ok || len(cues) != 3 {
		t.Fatalf("unexpected mouthCues %v", generic["mouthCues"])
	}
	first := cues[0].(map[string]any)
	if first["start"] != 0.0 || first["end"] != 0.5 || first["value"] != "A" {
		t.Fatalf("unexpected first cue %v", first)
	}
}
