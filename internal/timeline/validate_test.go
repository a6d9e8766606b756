package timeline_test

import (
	"errors"
	"math"
	"testing"

	"mouthpiece/internal/services"
	"mouthpiece/internal/timeline"
)

func contiguous() timeline.Timeline {
	return timeline.New([]timeline.Cue{
		{Start: 0, End: 0.5, Shape: timeline.ShapeA},
		{Start: 0.5, End: 1.2, Shape: timeline.ShapeB},
		{Start: 1.2, End: 1.5, Shape: timeline.ShapeX},
	}, 1.5)
}

func TestValidateAcceptsContiguousTimeline(t *testing.T) {
	res := timeline.Validate(contiguous())
	if !res.Valid() {
		t.Fatalf("expected valid timeline, got %+v", res.Violation)
	}
	if res.Err() != nil {
		t.Fatalf("expected nil error, got %v", res.Err())
	}
}

func TestValidateToleratesSubEpsilonDrift(t *testing.T) {
	tl := timeline.New([]timeline.Cue{
		{Start: 0, End: 0.5004, Shape: timeline.ShapeA},
		{Start: 0.5, End: 1.0, Shape: timeline.ShapeB},
	}, 1.0005)
	if res := timeline.Validate(tl); !res.Valid() {
		t.Fatalf("expected drift within epsilon to pass, got %+v", res.Violation)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name  string
		tl    timeline.Timeline
		rule  timeline.Rule
		index int
		kind  error
	}{
		{
			name:  "empty with audio",
			tl:    timeline.New(nil, 2.0),
			rule:  timeline.RuleEmpty,
			index: -1,
			kind:  services.ErrEmptyTimeline,
		},
		{
			name: "out of order",
			tl: timeline.New([]timeline.Cue{
				{Start: 0.5, End: 1.0, Shape: timeline.ShapeA},
				{Start: 0.2, End: 0.5, Shape: timeline.ShapeB},
			}, 1.0),
			rule:  timeline.RuleOrdering,
			index: 1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "zero length cue",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0, Shape: timeline.ShapeA},
			}, 1.0),
			rule:  timeline.RuleOrdering,
			index: 0,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "overlap",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0.5, Shape: timeline.ShapeA},
				{Start: 0.5, End: 0.9, Shape: timeline.ShapeB},
				{Start: 0.8, End: 1.2, Shape: timeline.ShapeC},
			}, 1.2),
			rule:  timeline.RuleContiguity,
			index: 1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "gap",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0.4, Shape: timeline.ShapeA},
				{Start: 0.5, End: 1.0, Shape: timeline.ShapeB},
			}, 1.0),
			rule:  timeline.RuleContiguity,
			index: 0,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "unknown shape",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0.5, Shape: timeline.ShapeA},
				{Start: 0.5, End: 1.0, Shape: timeline.Shape("Q")},
			}, 1.0),
			rule:  timeline.RuleAlphabet,
			index: 1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "past duration",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0.5, Shape: timeline.ShapeA},
				{Start: 0.5, End: 1.5, Shape: timeline.ShapeX},
			}, 1.0),
			rule:  timeline.RuleDuration,
			index: 1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "nan end",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: math.NaN(), Shape: timeline.ShapeA},
				{Start: 0.5, End: 1.0, Shape: timeline.ShapeX},
			}, 1.0),
			rule:  timeline.RuleOrdering,
			index: 0,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "nan start",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 0.5, Shape: timeline.ShapeA},
				{Start: math.NaN(), End: 1.0, Shape: timeline.ShapeX},
			}, 1.0),
			rule:  timeline.RuleOrdering,
			index: 1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "infinite end",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: math.Inf(1), Shape: timeline.ShapeA},
			}, 1.0),
			rule:  timeline.RuleOrdering,
			index: 0,
			kind:  services.ErrInvariantViolation,
		},
		{
			name:  "nan duration without cues",
			tl:    timeline.New(nil, math.NaN()),
			rule:  timeline.RuleDuration,
			index: -1,
			kind:  services.ErrInvariantViolation,
		},
		{
			name: "infinite duration",
			tl: timeline.New([]timeline.Cue{
				{Start: 0, End: 1.0, Shape: timeline.ShapeA},
			}, math.Inf(1)),
			rule:  timeline.RuleDuration,
			index: -1,
			kind:  services.ErrInvariantViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := timeline.Validate(tt.tl)
			if res.Valid() {
				t.Fatal("expected violation")
			}
			if res.Violation.Rule != tt.rule {
				t.Fatalf("expected rule %s, got %s", tt.rule, res.Violation.Rule)
			}
			if res.Violation.Index != tt.index {
				t.Fatalf("expected index %d, got %d", tt.index, res.Violation.Index)
			}
			err := res.Err()
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			var vErr *timeline.ViolationError
			if !errors.As(err, &vErr) || vErr.Index != tt.index {
				t.Fatalf("expected ViolationError citing %d, got %v", tt.index, err)
			}
		})
	}
}

func TestValidateRuleOrderReportsOrderingBeforeAlphabet(t *testing.T) {
	tl := timeline.New([]timeline.Cue{
		{Start: 0, End: 0.5, Shape: timeline.Shape("?")},
		{Start: 0.5, End: 0.4, Shape: timeline.ShapeA},
	}, 1.0)
	res := timeline.Validate(tl)
	if res.Violation == nil || res.Violation.Rule != timeline.RuleOrdering {
		t.Fatalf("expected ordering violation first, got %+v", res.Violation)
	}
}

func TestValidateSilentEmptyTimeline(t *testing.T) {
	if res := timeline.Validate(timeline.New(nil, 0)); !res.Valid() {
		t.Fatalf("expected empty timeline for zero-length audio to pass, got %+v", res.Violation)
	}
}

func TestValidateCustomEpsilon(t *testing.T) {
	tl := timeline.New([]timeline.Cue{
		{Start: 0, End: 0.5, Shape: timeline.ShapeA},
		{Start: 0.505, End: 1.0, Shape: timeline.ShapeB},
	}, 1.0)
	if res := timeline.Validate(tl); res.Valid() {
		t.Fatal("expected 5ms gap to fail default epsilon")
	}
	if res := (timeline.Validator{Epsilon: 0.01}).Validate(tl); !res.Valid() {
		t.Fatalf("expected 5ms gap to pass 10ms epsilon, got %+v", res.Violation)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	tl := timeline.New([]timeline.Cue{
		{Start: 0, End: 0.6, Shape: timeline.ShapeA},
		{Start: 0.5, End: 1.0, Shape: timeline.ShapeB},
	}, 1.0)
	first := timeline.Validate(tl)
	second := timeline.Validate(tl)
	if *first.Violation != *second.Violation {
		t.Fatalf("expected identical reports, got %+v and %+v", first.Violation, second.Violation)
	}
}
