package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"mouthpiece/internal/timeline"
)

type jsonParser struct{}

func (jsonParser) Parse(raw []byte, reportedDuration float64) (timeline.Timeline, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return timeline.Timeline{}, malformed("json", "empty document", nil)
	}
	var doc timeline.Document
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&doc); err != nil {
		return timeline.Timeline{}, malformed("json", "decode document", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return timeline.Timeline{}, malformed("json", "trailing data after document", nil)
	}
	if doc.MouthCues == nil {
		return timeline.Timeline{}, malformed("json", "mouthCues missing", nil)
	}

	var duration float64
	switch {
	case doc.Metadata.Duration != nil:
		duration = *doc.Metadata.Duration
	case reportedDuration > 0:
		duration = reportedDuration
	default:
		return timeline.Timeline{}, malformed("json", "metadata.duration missing", nil)
	}

	cues := make([]timeline.Cue, 0, len(doc.MouthCues))
	for i, wc := range doc.MouthCues {
		if wc.Start == nil || wc.End == nil {
			return timeline.Timeline{}, malformed("json", fmt.Sprintf("cue %d missing start or end", i), nil)
		}
		shape, err := timeline.ParseShape(wc.Value)
		if err != nil {
			return timeline.Timeline{}, malformed("json", fmt.Sprintf("cue %d", i), err)
		}
		cues = append(cues, timeline.Cue{Start: *wc.Start, End: *wc.End, Shape: shape})
	}
	return timeline.New(cues, duration), nil
}
