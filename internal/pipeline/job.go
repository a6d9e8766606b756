package pipeline

import (
	"fmt"
	"time"

	"mouthpiece/internal/audio"
	"mouthpiece/internal/delivery"
	"mouthpiece/internal/rhubarb"
	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline"
	"mouthpiece/internal/timeline/parse"
	"mouthpiece/internal/tts"
)

// Stage names, as they appear in logs, errors, and history.
const (
	StageSynthesize = "synthesize"
	StageNormalize  = "normalize"
	StageAnalyze    = "analyze"
	StageParse      = "parse"
	StageValidate   = "validate"
	StagePackage    = "package"
	StageWrite      = "write"
	StageDeliver    = "deliver"
)

// Job describes one utterance to process. Exactly one of InputPath and Text
// must be set.
type Job struct {
	InputPath string
	// Text is synthesized through the runner's Synthesizer when set.
	Text    string
	VoiceID string
	Voice   *tts.VoiceSettings

	// Name is the logical delivery name; derived from the input file or the
	// text when empty.
	Name string
	// Format and Recognizer override the configured analyzer settings.
	Format     parse.Format
	Recognizer rhubarb.Mode
	DialogPath string

	// OutputPrefix, when set, receives <prefix>.<fmt> (raw analyzer export),
	// <prefix>.lipsync.json, and <prefix>.wav.
	OutputPrefix string
	Deliver      bool
	Play         bool
}

// Result is the outcome of a successful run.
type Result struct {
	RequestID  string
	Name       string
	Source     audio.Asset
	Normalized audio.Asset
	Format     parse.Format
	Recognizer rhubarb.Mode
	Raw        []byte
	Timeline   timeline.Timeline
	Bundle     delivery.Bundle
	Outputs    []string
	Delivered  bool
	Elapsed    time.Duration
}

// StageError reports the stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Kind names the error kind of the underlying failure.
func (e *StageError) Kind() string {
	return services.KindOf(e.Err)
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
