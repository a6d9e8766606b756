package parse

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mouthpiece/internal/timeline"
)

type xmlDocument struct {
	XMLName  xml.Name    `xml:"rhubarbResult"`
	Metadata xmlMetadata `xml:"metadata"`
	Cues     *xmlCueList `xml:"mouthCues"`
}

type xmlMetadata struct {
	SoundFile string  `xml:"soundFile"`
	Duration  *string `xml:"duration"`
}

type xmlCueList struct {
	Cues []xmlCue `xml:"mouthCue"`
}

type xmlCue struct {
	Start *string `xml:"start,attr"`
	End   *string `xml:"end,attr"`
	Value string  `xml:",chardata"`
}

type xmlParser struct{}

func (xmlParser) Parse(raw []byte, reportedDuration float64) (timeline.Timeline, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return timeline.Timeline{}, malformed("xml", "empty document", nil)
	}
	var doc xmlDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return timeline.Timeline{}, malformed("xml", "decode document", err)
	}
	if doc.Cues == nil {
		return timeline.Timeline{}, malformed("xml", "mouthCues element missing", nil)
	}

	var duration float64
	switch {
	case doc.Metadata.Duration != nil:
		parsed, err := parseSeconds(*doc.Metadata.Duration)
		if err != nil {
			return timeline.Timeline{}, malformed("xml", "metadata duration", err)
		}
		duration = parsed
	case reportedDuration > 0:
		duration = reportedDuration
	default:
		return timeline.Timeline{}, malformed("xml", "metadata duration missing", nil)
	}

	cues := make([]timeline.Cue, 0, len(doc.Cues.Cues))
	for i, xc := range doc.Cues.Cues {
		if xc.Start == nil {
			return timeline.Timeline{}, malformed("xml", fmt.Sprintf("mouthCue %d missing start attribute", i), nil)
		}
		if xc.End == nil {
			return timeline.Timeline{}, malformed("xml", fmt.Sprintf("mouthCue %d missing end attribute", i), nil)
		}
		start, err := parseSeconds(*xc.Start)
		if err != nil {
			return timeline.Timeline{}, malformed("xml", fmt.Sprintf("mouthCue %d start", i), err)
		}
		end, err := parseSeconds(*xc.End)
		if err != nil {
			return timeline.Timeline{}, malformed("xml", fmt.Sprintf("mouthCue %d end", i), err)
		}
		shape, err := timeline.ParseShape(xc.Value)
		if err != nil {
			return timeline.Timeline{}, malformed("xml", fmt.Sprintf("mouthCue %d", i), err)
		}
		cues = append(cues, timeline.Cue{Start: start, End: end, Shape: shape})
	}
	return timeline.New(cues, duration), nil
}

func parseSeconds(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q is not numeric", raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("timestamp %q is not finite", raw)
	}
	return value, nil
}
