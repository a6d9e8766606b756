package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mouthpiece/internal/pipeline"
	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline"
)

// previewCues is how many cues the text output lists per run.
const previewCues = 5

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runJSON struct {
	Input      string         `json:"input,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Format     string         `json:"format,omitempty"`
	Recognizer string         `json:"recognizer,omitempty"`
	Cues       int            `json:"cues"`
	Duration   float64        `json:"duration_seconds"`
	Shapes     map[string]int `json:"shapes,omitempty"`
	Outputs    []string       `json:"outputs,omitempty"`
	Delivered  bool           `json:"delivered"`
	ElapsedMS  int64          `json:"elapsed_ms,omitempty"`
	Stage      string         `json:"failed_stage,omitempty"`
	Kind       string         `json:"error_kind,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func outcomeJSON(o pipeline.Outcome) runJSON {
	out := runJSON{Input: o.Job.InputPath}
	if o.Err != nil {
		out.Stage = pipeline.FailedStage(o.Err)
		out.Kind = services.KindOf(o.Err)
		out.Error = o.Err.Error()
		return out
	}
	r := o.Result
	out.RequestID = r.RequestID
	out.Name = r.Name
	out.Format = string(r.Format)
	out.Recognizer = string(r.Recognizer)
	out.Cues = r.Timeline.Len()
	out.Duration = r.Timeline.Duration()
	out.Shapes = make(map[string]int)
	for shape, n := range r.Timeline.ShapeCounts() {
		out.Shapes[string(shape)] = n
	}
	out.Outputs = r.Outputs
	out.Delivered = r.Delivered
	out.ElapsedMS = r.Elapsed.Milliseconds()
	return out
}

func printOutcomes(cmd *cobra.Command, jsonMode bool, outcomes []pipeline.Outcome) error {
	if jsonMode {
		payload := make([]runJSON, 0, len(outcomes))
		for _, o := range outcomes {
			payload = append(payload, outcomeJSON(o))
		}
		return writeJSON(cmd, payload)
	}
	out := cmd.OutOrStdout()
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printOutcome(out, o)
	}
	return nil
}

func printOutcome(out io.Writer, o pipeline.Outcome) {
	label := strings.TrimSpace(o.Job.InputPath)
	if label == "" {
		label = "text"
	}
	if o.Err != nil {
		fmt.Fprintf(out, "%s: %s\n", label, pipeline.Describe(o.Err))
		return
	}
	r := o.Result
	fmt.Fprintf(out, "%s -> %s: %d cues over %.3fs (%s, %s)\n",
		label, r.Name, r.Timeline.Len(), r.Timeline.Duration(), r.Format, r.Recognizer)
	fmt.Fprintf(out, "  Shapes:    %s\n", shapeSummary(r.Timeline))
	for i, c := range r.Timeline.Cues() {
		if i == previewCues {
			fmt.Fprintf(out, "  ... %d more cues\n", r.Timeline.Len()-previewCues)
			break
		}
		fmt.Fprintf(out, "  %7.3f-%7.3f  %s\n", c.Start, c.End, c.Shape)
	}
	for _, path := range r.Outputs {
		fmt.Fprintf(out, "  Wrote:     %s\n", path)
	}
	if r.Delivered {
		fmt.Fprintf(out, "  Delivered: %s\n", r.Name)
	}
}

// shapeSummary lists shape counts in alphabet order, e.g. "B:1 C:1 X:2".
func shapeSummary(tl timeline.Timeline) string {
	counts := tl.ShapeCounts()
	parts := make([]string, 0, len(counts))
	for _, shape := range timeline.Alphabet {
		if n := counts[shape]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", shape, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
