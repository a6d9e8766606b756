// Package timeline holds the canonical lip-sync cue model and its invariants.
//
// A Timeline is an ordered, contiguous run of mouth cues drawn from the
// Preston-Blair alphabet (A-H plus X for rest) together with the duration of
// the audio it animates. Validator enforces, in order, emptiness, ordering,
// contiguity, alphabet membership and the duration bound, stopping at the
// first broken rule. EncodeJSON renders the stable wire form delivered to the
// rendering runtime.
package timeline
