// Package effects computes the full-screen camera shake and view bob.
package effects

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/game/world"
)

const (
	// DefaultAttackThreshold is the demon distance below which the view shakes.
	DefaultAttackThreshold = 5.0

	// BobDivisor scales sin(viewChange) into the vertical bob.
	BobDivisor = 75.0
)

// Shake is the per-frame screen-space offset shared by every draw.
type Shake struct {
	X, Y float32
}

// Vec2 returns the shake as a uniform-ready vector.
func (s Shake) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{s.X, s.Y}
}

// Intensity maps demon distance to shake strength.
// Zero at or beyond threshold, 0.5/(1+d²) inside it.
func Intensity(d, threshold float32) float32 {
	if d >= threshold {
		return 0
	}
	return 0.5 / (1 + d*d)
}

// DistanceFromDemon returns the distance from the player to the nearest demon,
// or +Inf when there is none.
func DistanceFromDemon(p world.Player, objects []world.Object) float32 {
	best := float32(math.Inf(1))
	for _, obj := range objects {
		if obj.Kind() != world.KindDemon {
			continue
		}
		if d := obj.Location().Sub(p.Position).Len(); d < best {
			best = d
		}
	}
	return best
}

// Shaker draws the random jitter. Not safe for concurrent use.
type Shaker struct {
	rng *rand.Rand
}

// NewShaker returns a Shaker seeded for reproducible jitter.
func NewShaker(seed uint64) *Shaker {
	return &Shaker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shake computes this frame's offset.
// Jitter on each axis is uniform in [-0.5, 0.5] times intensity; the bob goes on Y only.
func (s *Shaker) Shake(intensity, viewChange float32) Shake {
	jx := float32(s.rng.Float64()) - 0.5
	jy := float32(s.rng.Float64()) - 0.5
	return Shake{
		X: jx * intensity,
		Y: jy*intensity + Bob(viewChange),
	}
}

// Bob is the deterministic view-bob term.
func Bob(viewChange float32) float32 {
	return float32(math.Sin(float64(viewChange))) / BobDivisor
}
