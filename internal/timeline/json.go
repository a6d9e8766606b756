package timeline

import (
	"encoding/json"
	"fmt"
)

// Document mirrors the Rhubarb JSON export. Field names must stay identical
// to the analyzer's output so either side can read the other.
type Document struct {
	Metadata  Metadata  `json:"metadata"`
	MouthCues []WireCue `json:"mouthCues"`
}

// Metadata is the header of a Rhubarb JSON export.
type Metadata struct {
	SoundFile string   `json:"soundFile,omitempty"`
	Duration  *float64 `json:"duration"`
}

// WireCue is a single serialized cue.
type WireCue struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Value string   `json:"value"`
}

// EncodeJSON serializes t in the Rhubarb JSON shape. soundFile is optional.
func EncodeJSON(t Timeline, soundFile string) ([]byte, error) {
	duration := t.duration
	doc := Document{
		Metadata:  Metadata{SoundFile: soundFile, Duration: &duration},
		MouthCues: make([]WireCue, 0, len(t.cues)),
	}
	for _, c := range t.cues {
		start, end := c.Start, c.End
		doc.MouthCues = append(doc.MouthCues, WireCue{Start: &start, End: &end, Value: string(c.Shape)})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}
	return append(data, '\n'), nil
}
