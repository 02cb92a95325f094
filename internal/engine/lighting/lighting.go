// Package lighting picks the point lights uploaded for each frame.
package lighting

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/game/world"
)

// MaxLights is the size of the light arrays in the textured shader.
const MaxLights = 8

// Entry is a light expressed relative to the camera.
type Entry struct {
	Position   mgl32.Vec3 // Camera-relative position
	Brightness float32
}

// Distance returns the entry's distance from the camera.
func (e Entry) Distance() float32 {
	return e.Position.Len()
}

// Select converts world lights to camera-relative entries, orders them
// nearest first and keeps at most capacity of them.
// Ties keep their world order; nothing carries over between frames.
func Select(lights []world.Light, cam camera.Camera, capacity int) []Entry {
	if capacity <= 0 || len(lights) == 0 {
		return nil
	}

	entries := make([]Entry, len(lights))
	for i, l := range lights {
		entries[i] = Entry{Position: cam.Relative(l.Position), Brightness: l.Brightness}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position.LenSqr() < entries[j].Position.LenSqr()
	})

	if len(entries) > capacity {
		entries = entries[:capacity]
	}
	return entries
}

// ClampCapacity keeps a configured capacity within the shader arrays.
func ClampCapacity(n int) int {
	if n <= 0 || n > MaxLights {
		return MaxLights
	}
	return n
}

// Buffer holds selected lights flattened for uniform upload.
type Buffer struct {
	Positions  [MaxLights * 3]float32
	Brightness [MaxLights]float32
	Count      int
}

// Set replaces the buffer contents, truncating to MaxLights.
func (b *Buffer) Set(entries []Entry) {
	*b = Buffer{}
	if len(entries) > MaxLights {
		entries = entries[:MaxLights]
	}
	for i, e := range entries {
		b.Positions[i*3+0] = e.Position.X()
		b.Positions[i*3+1] = e.Position.Y()
		b.Positions[i*3+2] = e.Position.Z()
		b.Brightness[i] = e.Brightness
	}
	b.Count = len(entries)
}
