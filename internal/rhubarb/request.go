package rhubarb

import (
	"fmt"
	"os"
	"strings"

	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline/parse"
)

// Mode selects the analyzer's speech recognizer.
type Mode string

const (
	// ModeDefault uses Rhubarb's English recognizer.
	ModeDefault Mode = "default"
	// ModePhonetic uses the language-independent phonetic recognizer.
	ModePhonetic Mode = "phonetic"
)

// ParseMode normalizes a recognizer name. Empty selects ModeDefault;
// "pocketSphinx" is accepted as the analyzer's own name for the default.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default", "pocketsphinx":
		return ModeDefault, nil
	case "phonetic":
		return ModePhonetic, nil
	default:
		return "", fmt.Errorf("unknown recognizer %q (want default or phonetic)", raw)
	}
}

// Request describes a single analysis run.
type Request struct {
	InputPath      string
	Mode           Mode
	Format         parse.Format
	DialogPath     string
	ExtendedShapes string
	// OutputDir receives the export; defaults to the input's directory.
	OutputDir string
}

// Validate checks the request before any process is started.
func (r Request) Validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return invalid("input path required")
	}
	switch r.Mode {
	case ModeDefault, ModePhonetic, "":
	default:
		return invalid(fmt.Sprintf("unknown recognizer mode %q", r.Mode))
	}
	if _, err := parse.For(r.format()); err != nil {
		return invalid(fmt.Sprintf("unknown output format %q", r.Format))
	}
	for _, c := range strings.ToUpper(r.ExtendedShapes) {
		if c != 'G' && c != 'H' && c != 'X' {
			return invalid(fmt.Sprintf("extended shapes %q may only contain G, H and X", r.ExtendedShapes))
		}
	}
	if dialog := strings.TrimSpace(r.DialogPath); dialog != "" {
		info, err := os.Stat(dialog)
		if err != nil {
			return services.Wrap(services.ErrValidation, stageName, "validate request", "dialog file", err)
		}
		if info.IsDir() {
			return invalid(fmt.Sprintf("dialog path %s is a directory", dialog))
		}
	}
	return nil
}

func (r Request) format() parse.Format {
	if r.Format == "" {
		return parse.FormatJSON
	}
	return r.Format
}

func (r Request) mode() Mode {
	if r.Mode == "" {
		return ModeDefault
	}
	return r.Mode
}

// BuildArgs returns the analyzer argument list for r writing to output.
func BuildArgs(r Request, output string) []string {
	args := []string{"-f", string(r.format())}
	if r.mode() == ModePhonetic {
		args = append(args, "-r", string(ModePhonetic))
	}
	if dialog := strings.TrimSpace(r.DialogPath); dialog != "" {
		args = append(args, "-d", dialog)
	}
	if shapes := strings.ToUpper(strings.TrimSpace(r.ExtendedShapes)); shapes != "" {
		args = append(args, "--extendedShapes", shapes)
	}
	return append(args, "-o", output, r.InputPath)
}

func invalid(msg string) error {
	return services.Wrap(services.ErrValidation, stageName, "validate request", msg, nil)
}
