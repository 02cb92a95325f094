package lighting

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/game/world"
)

func randomLights(r *rand.Rand, n int) []world.Light {
	lights := make([]world.Light, n)
	for i := range lights {
		lights[i] = world.Light{
			Position: mgl32.Vec3{
				float32(r.Float64()*40 - 20),
				float32(r.Float64() * 3),
				float32(r.Float64()*40 - 20),
			},
			Brightness: float32(r.Float64()),
		}
	}
	return lights
}

func TestSelectLengthAndOrder(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	cam := camera.Camera{Position: mgl32.Vec3{2, 0.5, -3}}

	for _, n := range []int{0, 1, 5, MaxLights, MaxLights + 1, 50} {
		for _, capacity := range []int{1, 4, MaxLights} {
			got := Select(randomLights(r, n), cam, capacity)
			if len(got) > capacity {
				t.Errorf("n=%d cap=%d: got %d entries", n, capacity, len(got))
			}
			if want := min(n, capacity); len(got) != want {
				t.Errorf("n=%d cap=%d: got %d entries, want %d", n, capacity, len(got), want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Distance() < got[i-1].Distance() {
					t.Errorf("n=%d cap=%d: entry %d closer than entry %d", n, capacity, i, i-1)
				}
			}
		}
	}
}

func TestSelectKeepsNearest(t *testing.T) {
	cam := camera.Camera{Position: mgl32.Vec3{0, 1, 0}}
	lights := []world.Light{
		{Position: mgl32.Vec3{10, 1, 0}, Brightness: 1},
		{Position: mgl32.Vec3{0, 1, 2}, Brightness: 2},
		{Position: mgl32.Vec3{0, 1, -5}, Brightness: 3},
	}

	got := Select(lights, cam, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Brightness != 2 || got[1].Brightness != 3 {
		t.Errorf("wrong lights kept: %+v", got)
	}
	if got[0].Position != (mgl32.Vec3{0, 0, 2}) {
		t.Errorf("position not camera relative: %v", got[0].Position)
	}
}

func TestSelectZeroCapacity(t *testing.T) {
	lights := []world.Light{{Brightness: 1}}
	if got := Select(lights, camera.Camera{}, 0); len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestClampCapacity(t *testing.T) {
	tests := map[int]int{-1: MaxLights, 0: MaxLights, 3: 3, MaxLights: MaxLights, 100: MaxLights}
	for in, want := range tests {
		if got := ClampCapacity(in); got != want {
			t.Errorf("ClampCapacity(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBufferSet(t *testing.T) {
	var b Buffer
	b.Set([]Entry{
		{Position: mgl32.Vec3{1, 2, 3}, Brightness: 0.5},
		{Position: mgl32.Vec3{4, 5, 6}, Brightness: 0.25},
	})
	if b.Count != 2 {
		t.Fatalf("count %d, want 2", b.Count)
	}
	if b.Positions[3] != 4 || b.Positions[5] != 6 || b.Brightness[1] != 0.25 {
		t.Errorf("unexpected layout: %v %v", b.Positions[:6], b.Brightness[:2])
	}

	// Setting fewer entries must clear stale slots.
	b.Set(nil)
	if b.Count != 0 || b.Positions[0] != 0 || b.Brightness[0] != 0 {
		t.Errorf("buffer not cleared: %+v", b)
	}

	many := make([]Entry, MaxLights+3)
	b.Set(many)
	if b.Count != MaxLights {
		t.Errorf("count %d, want %d", b.Count, MaxLights)
	}
}
