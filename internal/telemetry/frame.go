package telemetry

import (
	"strconv"
	"strings"
)

// minStateLen is the number of leading fields the consumers interpret:
// position 0 is the angular increment per tick, position 1 is the orbital
// altitude. A frame shorter than this never replaces an accepted state.
const minStateLen = 2

// State is the most recently accepted telemetry frame: an ordered sequence
// of integers parsed from one producer message. Fields beyond the first two
// are carried through uninterpreted.
type State []int

// DefaultState returns the compiled-in fallback parameters used before any
// frame arrives, or permanently when the producer is unreachable.
func DefaultState() State {
	return State{2, 10}
}

// AngularStep returns the angular increment per tick in degrees.
func (s State) AngularStep() int {
	return s[0]
}

// Altitude returns the orbital altitude.
func (s State) Altitude() int {
	return s[1]
}

// Valid reports whether the state carries enough fields to drive the orbit.
func (s State) Valid() bool {
	return len(s) >= minStateLen
}

// Equal reports whether two states carry the same parameters in the same order.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseFrame splits a received message on commas and converts each token to
// an integer, preserving order. Tokens that fail conversion are skipped, not
// treated as fatal, so a frame like "3,abc,120" parses to [3 120].
func ParseFrame(data []byte) State {
	var frame State
	for _, token := range strings.Split(string(data), ",") {
		v, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		frame = append(frame, v)
	}
	return frame
}
