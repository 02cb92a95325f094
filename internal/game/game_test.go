package game

import (
	"math"
	"testing"

	"github.com/Faultbox/dreadmaze/internal/game/world"
)

func TestLook(t *testing.T) {
	tests := []struct {
		name      string
		start     world.Player
		keyPitch  float32
		dx, dy    float32
		wantYaw   float32
		wantPitch float32
	}{
		{"still", world.Player{}, 0, 0, 0, 0, 0},
		{"mouse right turns right", world.Player{}, 0, 100, 0, -0.25, 0},
		{"mouse up looks up", world.Player{}, 0, 0, -100, 0, 0.25},
		{"keys add to mouse", world.Player{}, 0.1, 0, 40, 0, 0},
		{"clamped up", world.Player{Pitch: 1.1}, 0.5, 0, 0, 0, maxPitch},
		{"clamped down", world.Player{Pitch: -1.1}, 0, 0, 1000, 0, -maxPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.start
			look(&p, tt.keyPitch, tt.dx, tt.dy, 0.0025)
			if math.Abs(float64(p.Yaw-tt.wantYaw)) > 1e-5 {
				t.Errorf("yaw = %v, want %v", p.Yaw, tt.wantYaw)
			}
			if math.Abs(float64(p.Pitch-tt.wantPitch)) > 1e-5 {
				t.Errorf("pitch = %v, want %v", p.Pitch, tt.wantPitch)
			}
		})
	}
}

func TestStepVolume(t *testing.T) {
	tests := []struct {
		vol, delta, want float64
	}{
		{0.8, 0.1, 0.9},
		{0.8, -0.1, 0.7},
		{0.95, 0.1, 1},
		{0.05, -0.1, 0},
		{0, -0.1, 0},
		{0.33, 0.1, 0.4},
	}

	for _, tt := range tests {
		if got := stepVolume(tt.vol, tt.delta); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("stepVolume(%v, %v) = %v, want %v", tt.vol, tt.delta, got, tt.want)
		}
	}
}
