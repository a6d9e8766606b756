package timeline

import (
	"fmt"
	"math"

	"mouthpiece/internal/services"
)

// DefaultEpsilon is the contiguity and duration tolerance in seconds.
const DefaultEpsilon = 0.001

// Rule identifies a timeline invariant.
type Rule string

const (
	RuleEmpty      Rule = "empty"
	RuleOrdering   Rule = "ordering"
	RuleContiguity Rule = "contiguity"
	RuleAlphabet   Rule = "alphabet"
	RuleDuration   Rule = "duration"
)

// Violation describes the first broken invariant.
type Violation struct {
	Rule   Rule
	Index  int
	Detail string
}

// ViolationError wraps a Violation so it travels through error returns.
type ViolationError struct {
	Violation
}

func (e *ViolationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("timeline %s: %s", e.Rule, e.Detail)
	}
	return fmt.Sprintf("timeline %s violated at cue %d: %s", e.Rule, e.Index, e.Detail)
}

// Unwrap maps the violation onto its error kind.
func (e *ViolationError) Unwrap() error {
	if e.Rule == RuleEmpty {
		return services.ErrEmptyTimeline
	}
	return services.ErrInvariantViolation
}

// Result is the outcome of a validation pass.
type Result struct {
	Violation *Violation
}

// Valid reports whether no invariant was broken.
func (r Result) Valid() bool {
	return r.Violation == nil
}

// Err returns a *ViolationError for an invalid result and nil otherwise.
func (r Result) Err() error {
	if r.Violation == nil {
		return nil
	}
	return &ViolationError{Violation: *r.Violation}
}

// Validator checks timeline invariants. The zero value uses DefaultEpsilon.
type Validator struct {
	Epsilon float64
}

// Validate runs the rules in order and stops at the first violation. Non-finite
// values are rejected before any comparison since NaN compares false both ways.
func (v Validator) Validate(t Timeline) Result {
	eps := v.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	checks := []func(Timeline, float64) *Violation{
		checkFinite,
		checkEmpty,
		checkOrdering,
		checkContiguity,
		checkAlphabet,
		checkDuration,
	}
	for _, check := range checks {
		if violation := check(t, eps); violation != nil {
			return Result{Violation: violation}
		}
	}
	return Result{}
}

// Validate checks t with the default epsilon.
func Validate(t Timeline) Result {
	return Validator{}.Validate(t)
}

func checkFinite(t Timeline, _ float64) *Violation {
	if !finite(t.duration) {
		return &Violation{Rule: RuleDuration, Index: -1, Detail: fmt.Sprintf("duration %v is not finite", t.duration)}
	}
	for i, c := range t.cues {
		if !finite(c.Start) || !finite(c.End) {
			return &Violation{Rule: RuleOrdering, Index: i, Detail: fmt.Sprintf("bounds [%v, %v] are not finite", c.Start, c.End)}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkEmpty(t Timeline, eps float64) *Violation {
	if t.Empty() && t.duration > eps {
		return &Violation{
			Rule:   RuleEmpty,
			Index:  -1,
			Detail: fmt.Sprintf("no cues for %.3fs of audio", t.duration),
		}
	}
	return nil
}

func checkOrdering(t Timeline, _ float64) *Violation {
	for i, c := range t.cues {
		if c.Start < 0 {
			return &Violation{Rule: RuleOrdering, Index: i, Detail: fmt.Sprintf("start %.3f is negative", c.Start)}
		}
		if c.End <= c.Start {
			return &Violation{Rule: RuleOrdering, Index: i, Detail: fmt.Sprintf("end %.3f does not follow start %.3f", c.End, c.Start)}
		}
		if i > 0 && c.Start < t.cues[i-1].Start {
			return &Violation{Rule: RuleOrdering, Index: i, Detail: fmt.Sprintf("start %.3f precedes previous start %.3f", c.Start, t.cues[i-1].Start)}
		}
	}
	return nil
}

func checkContiguity(t Timeline, eps float64) *Violation {
	for i := 0; i+1 < len(t.cues); i++ {
		end, next := t.cues[i].End, t.cues[i+1].Start
		switch {
		case end > next+eps:
			return &Violation{Rule: RuleContiguity, Index: i, Detail: fmt.Sprintf("overlap: end %.3f exceeds next start %.3f", end, next)}
		case next > end+eps:
			return &Violation{Rule: RuleContiguity, Index: i, Detail: fmt.Sprintf("gap: end %.3f before next start %.3f", end, next)}
		}
	}
	return nil
}

func checkAlphabet(t Timeline, _ float64) *Violation {
	for i, c := range t.cues {
		if !c.Shape.Valid() {
			return &Violation{Rule: RuleAlphabet, Index: i, Detail: fmt.Sprintf("shape %q not in alphabet", c.Shape)}
		}
	}
	return nil
}

func checkDuration(t Timeline, eps float64) *Violation {
	if t.Empty() {
		return nil
	}
	last := len(t.cues) - 1
	if end := t.cues[last].End; end > t.duration+eps {
		return &Violation{Rule: RuleDuration, Index: last, Detail: fmt.Sprintf("end %.3f exceeds duration %.3f", end, t.duration)}
	}
	return nil
}
