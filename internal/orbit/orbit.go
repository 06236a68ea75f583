// Package orbit models the angular state of a satellite circling a fixed
// body, advanced once per tick from the latest telemetry parameters.
package orbit

import (
	"math"

	"github.com/akulov/orbitsim/internal/telemetry"
)

// Satellite tracks the satellite's position on its circular orbit. The
// angular position accumulates the per-tick increment from telemetry; the
// altitude is adopted wholesale from the latest accepted frame.
type Satellite struct {
	AngleDeg int
	Altitude int
}

// NewSatellite places a satellite at angle zero with the given altitude.
func NewSatellite(altitude int) *Satellite {
	return &Satellite{Altitude: altitude}
}

// Advance applies one tick of the given telemetry state: the angle moves by
// the angular step (wrapping at 360 degrees) and the altitude is updated.
// States without enough fields are ignored.
func (s *Satellite) Advance(state telemetry.State) {
	if !state.Valid() {
		return
	}

	s.AngleDeg = mod360(s.AngleDeg + state.AngularStep())
	s.Altitude = state.Altitude()
}

// Position returns the satellite's cartesian coordinates around a body
// centered at (cx, cy), with the altitude scaled into pixels.
func (s *Satellite) Position(cx, cy, scale float64) (x, y float64) {
	return Position(s.AngleDeg, float64(s.Altitude)*scale, cx, cy)
}

// Position converts an angular position and orbital radius into cartesian
// coordinates around a center point.
func Position(angleDeg int, radius, cx, cy float64) (x, y float64) {
	rad := math.Pi * float64(angleDeg) / 180.0
	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}

func mod360(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
