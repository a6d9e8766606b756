// Package parse turns raw Rhubarb Lip Sync exports into timeline.Timeline
// values.
//
// One Parser exists per export format (json, xml, tsv); all of them produce
// the same canonical timeline. Any truncation, unknown shape, or non-numeric
// timestamp fails with services.ErrMalformedOutput rather than being guessed.
package parse

import (
	"fmt"
	"strings"

	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline"
)

// Format names an analyzer export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatTSV  Format = "tsv"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatJSON, FormatXML, FormatTSV}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case FormatJSON, FormatXML, FormatTSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want json, xml or tsv)", raw)
	}
}

// Extension returns the file extension Rhubarb uses for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// Parser decodes one export format. reportedDuration is the measured length
// of the analysed audio; formats that carry their own duration only use it as
// a fallback.
type Parser interface {
	Parse(raw []byte, reportedDuration float64) (timeline.Timeline, error)
}

var parsers = map[Format]Parser{
	FormatJSON: jsonParser{},
	FormatXML:  xmlParser{},
	FormatTSV:  tsvParser{},
}

// For returns the parser registered for format.
func For(format Format) (Parser, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, malformed("select parser", fmt.Sprintf("unknown format %q", format), nil)
	}
	return p, nil
}

// Parse decodes raw using the parser for format.
func Parse(raw []byte, format Format, reportedDuration float64) (timeline.Timeline, error) {
	p, err := For(format)
	if err != nil {
		return timeline.Timeline{}, err
	}
	return p.Parse(raw, reportedDuration)
}

func malformed(operation, message string, err error) error {
	return services.Wrap(services.ErrMalformedOutput, "parse", operation, message, err)
}
