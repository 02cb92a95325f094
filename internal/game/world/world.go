// Package world holds the read-only world state the renderer consumes each frame.
package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Player is the viewer's state as produced by the simulation.
type Player struct {
	Position mgl32.Vec3
	Yaw      float32 // Heading around Y (radians)
	Pitch    float32 // Look up/down (radians)

	// ViewChange accumulates as the player moves; drives the view bob.
	ViewChange float32
}

// Orientation tells which grid axis a wall runs along.
type Orientation uint8

const (
	// AlongX walls lie on a z grid line and span one cell in X.
	AlongX Orientation = iota
	// AlongZ walls lie on an x grid line and span one cell in Z.
	AlongZ
)

// Wall is a single one-cell wall segment.
type Wall struct {
	// Position is the wall centre at floor level.
	Position    mgl32.Vec3
	Orientation Orientation
}

// Stage is the maze geometry.
type Stage struct {
	Width      int
	Depth      int
	WallHeight float32

	// XWalls has (Depth+1)*Width slots, ZWalls has Depth*(Width+1).
	// A nil slot means there is no wall on that grid edge.
	XWalls []*Wall
	ZWalls []*Wall
}

// NewStage creates an empty stage with every wall slot absent.
func NewStage(width, depth int, wallHeight float32) *Stage {
	return &Stage{
		Width:      width,
		Depth:      depth,
		WallHeight: wallHeight,
		XWalls:     make([]*Wall, (depth+1)*width),
		ZWalls:     make([]*Wall, depth*(width+1)),
	}
}

// SetXWall places a wall on the z grid line between (x, z-1) and (x, z).
func (s *Stage) SetXWall(x, z int) {
	if x < 0 || x >= s.Width || z < 0 || z > s.Depth {
		return
	}
	s.XWalls[z*s.Width+x] = &Wall{
		Position:    mgl32.Vec3{float32(x) + 0.5, 0, float32(z)},
		Orientation: AlongX,
	}
}

// SetZWall places a wall on the x grid line between (x-1, z) and (x, z).
func (s *Stage) SetZWall(x, z int) {
	if x < 0 || x > s.Width || z < 0 || z >= s.Depth {
		return
	}
	s.ZWalls[z*(s.Width+1)+x] = &Wall{
		Position:    mgl32.Vec3{float32(x), 0, float32(z) + 0.5},
		Orientation: AlongZ,
	}
}

// WallCount returns the number of present wall slots.
func (s *Stage) WallCount() int {
	n := 0
	for _, w := range s.XWalls {
		if w != nil {
			n++
		}
	}
	for _, w := range s.ZWalls {
		if w != nil {
			n++
		}
	}
	return n
}

// Light is a point light placed in the world.
type Light struct {
	Position   mgl32.Vec3
	Brightness float32
}

// ScareCause identifies what triggered a scare overlay.
type ScareCause uint8

const (
	ScareDemon ScareCause = iota
	ScareNoise
)

// Scare is an active full-screen scare effect.
type Scare struct {
	Cause ScareCause

	// Countdown is the remaining time in seconds, Duration the starting value.
	Countdown float32
	Duration  float32
}

// Active reports whether the overlay should still be drawn.
func (s *Scare) Active() bool {
	return s != nil && s.Countdown > 0 && s.Duration > 0
}

// Skin names image files that replace the built-in surface textures.
// An empty field keeps the built-in texture.
type Skin struct {
	Wall    string `yaml:"wall"`
	Floor   string `yaml:"floor"`
	Ceiling string `yaml:"ceiling"`
	Demon   string `yaml:"demon"`
}

// State is one frame's snapshot of everything the renderer reads.
type State struct {
	Player  Player
	Stage   *Stage
	Objects []Object
	Lights  []Light
	Scare   *Scare
	Skin    Skin
}
