package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/engine/effects"
	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
	"github.com/Faultbox/dreadmaze/internal/engine/lighting"
)

// Frame is everything derived once per frame and shared by every draw.
// It is built before any culling or drawing and passed by value.
type Frame struct {
	Camera camera.Camera
	View   mgl32.Mat4

	DemonDistance float32
	Intensity     float32
	Shake         effects.Shake

	Lights []lighting.Entry

	Width, Height int
}

// uniforms flattens the frame into what every textured draw uploads.
func (f Frame) uniforms(buf *lighting.Buffer) gpu.FrameUniforms {
	return gpu.FrameUniforms{
		View:          f.View,
		ViewDirection: f.Camera.Forward(),
		Shake:         f.Shake.Vec2(),
		Lights: gpu.Lights{
			Count:      int32(buf.Count),
			Positions:  buf.Positions[:buf.Count*3],
			Brightness: buf.Brightness[:buf.Count],
		},
	}
}

// Stats counts what the last frame drew.
type Stats struct {
	Draws       int
	Tiles       int
	WallsKept   int
	WallsCulled int
	Objects     int
	Skipped     int
	Lights      int
	Scare       bool
}
