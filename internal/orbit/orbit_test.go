package orbit

import (
	"math"
	"testing"

	"github.com/akulov/orbitsim/internal/telemetry"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name         string
		startAngle   int
		state        telemetry.State
		wantAngle    int
		wantAltitude int
	}{
		{"step forward", 0, telemetry.State{5, 200}, 5, 200},
		{"accumulates", 40, telemetry.State{5, 200}, 45, 200},
		{"wraps at 360", 358, telemetry.State{5, 200}, 3, 200},
		{"negative step wraps", 2, telemetry.State{-5, 200}, 357, 200},
		{"short state ignored", 40, telemetry.State{5}, 40, 10},
		{"empty state ignored", 40, nil, 40, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sat := NewSatellite(10)
			sat.AngleDeg = tt.startAngle
			sat.Advance(tt.state)

			if sat.AngleDeg != tt.wantAngle {
				t.Errorf("AngleDeg = %d, want %d", sat.AngleDeg, tt.wantAngle)
			}
			if sat.Altitude != tt.wantAltitude {
				t.Errorf("Altitude = %d, want %d", sat.Altitude, tt.wantAltitude)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	const (
		cx = 300.0
		cy = 300.0
	)

	tests := []struct {
		name     string
		angleDeg int
		radius   float64
		wantX    float64
		wantY    float64
	}{
		{"east", 0, 100, 400, 300},
		{"south", 90, 100, 300, 400},
		{"west", 180, 100, 200, 300},
		{"north", 270, 100, 300, 200},
		{"zero radius stays centered", 45, 0, 300, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Position(tt.angleDeg, tt.radius, cx, cy)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("Position(%d, %.0f) = (%.2f, %.2f), want (%.2f, %.2f)",
					tt.angleDeg, tt.radius, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSatellitePosition_ScalesAltitude(t *testing.T) {
	sat := NewSatellite(200)
	x, y := sat.Position(300, 300, 0.5)
	if math.Abs(x-400) > 1e-9 || math.Abs(y-300) > 1e-9 {
		t.Errorf("Position() = (%.2f, %.2f), want (400.00, 300.00)", x, y)
	}
}
