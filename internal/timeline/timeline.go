package timeline

import (
	"fmt"
	"strings"
)

// Shape is a mouth-shape symbol from the Preston-Blair set used by Rhubarb.
type Shape string

const (
	ShapeA Shape = "A" // closed mouth for M, B, P
	ShapeB Shape = "B" // slightly open, clenched teeth
	ShapeC Shape = "C" // open mouth for E, AE
	ShapeD Shape = "D" // wide open for AA
	ShapeE Shape = "E" // slightly rounded for AO, ER
	ShapeF Shape = "F" // puckered for UW, OW, W
	ShapeG Shape = "G" // upper teeth on lower lip for F, V
	ShapeH Shape = "H" // tongue raised for long L
	ShapeX Shape = "X" // idle/rest
)

// Alphabet lists every valid shape in canonical order.
var Alphabet = []Shape{ShapeA, ShapeB, ShapeC, ShapeD, ShapeE, ShapeF, ShapeG, ShapeH, ShapeX}

// Valid reports whether s belongs to the alphabet.
func (s Shape) Valid() bool {
	switch s {
	case ShapeA, ShapeB, ShapeC, ShapeD, ShapeE, ShapeF, ShapeG, ShapeH, ShapeX:
		return true
	default:
		return false
	}
}

// ParseShape maps a raw symbol to a Shape, tolerating surrounding whitespace.
func ParseShape(raw string) (Shape, error) {
	s := Shape(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown mouth shape %q", raw)
	}
	return s, nil
}

// Cue is one mouth shape held over [Start, End) seconds.
type Cue struct {
	Start float64
	End   float64
	Shape Shape
}

// Duration returns the length of the cue in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Timeline is an ordered sequence of cues plus the total audio duration.
// The zero value is an empty timeline. Values are never mutated after
// construction; Cues returns a copy.
type Timeline struct {
	cues     []Cue
	duration float64
}

// New builds a timeline from cues and the reported total duration. The input
// slice is copied.
func New(cues []Cue, duration float64) Timeline {
	return Timeline{cues: append([]Cue(nil), cues...), duration: duration}
}

// Cues returns a copy of the cue sequence.
func (t Timeline) Cues() []Cue {
	return append([]Cue(nil), t.cues...)
}

// Len returns the number of cues.
func (t Timeline) Len() int {
	return len(t.cues)
}

// At returns the cue at index i.
func (t Timeline) At(i int) Cue {
	return t.cues[i]
}

// Duration returns the total duration reported for the analysed audio.
func (t Timeline) Duration() float64 {
	return t.duration
}

// Empty reports whether the timeline has no cues.
func (t Timeline) Empty() bool {
	return len(t.cues) == 0
}

// Equal reports whether both timelines hold the same cues and duration within
// epsilon seconds.
func (t Timeline) Equal(other Timeline, epsilon float64) bool {
	if len(t.cues) != len(other.cues) {
		return false
	}
	if !within(t.duration, other.duration, epsilon) {
		return false
	}
	for i, c := range t.cues {
		o := other.cues[i]
		if c.Shape != o.Shape || !within(c.Start, o.Start, epsilon) || !within(c.End, o.End, epsilon) {
			return false
		}
	}
	return true
}

// ShapeCounts tallies how often each shape occurs.
func (t Timeline) ShapeCounts() map[Shape]int {
	counts := make(map[Shape]int, len(Alphabet))
	for _, c := range t.cues {
		counts[c.Shape]++
	}
	return counts
}

func within(a, b, epsilon float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= epsilon
}
