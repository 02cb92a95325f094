// Package gpu owns the GPU resources of the renderer: the shared quad,
// the shader programs, and every draw call.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Handle is an opaque device object name. Zero means "none".
type Handle uint32

// Attribute describes one float vertex attribute in an interleaved buffer.
type Attribute struct {
	Location uint32
	Size     int32 // Component count
	Offset   int   // Offset in floats
}

// State is the fixed pipeline configuration applied at startup.
type State struct {
	ClearColor  mgl32.Vec4
	Multisample bool
}

// Device is the rasterization API the manager drives.
// Every method reports device-side failures as an error.
type Device interface {
	// Configure enables alpha blending, LEQUAL depth testing and
	// optionally multisampling, and sets the clear color.
	Configure(s State) error
	Viewport(width, height int) error
	Clear() error
	DepthTest(enabled bool) error

	CreateVertexArray(vertices []float32, stride int, attrs []Attribute) (vao, vbo Handle, err error)
	DeleteVertexArray(vao, vbo Handle) error
	BindVertexArray(vao Handle) error

	CompileProgram(vertexSrc, fragmentSrc string) (Handle, error)
	DeleteProgram(program Handle) error
	UseProgram(program Handle) error
	UniformLocation(program Handle, name string) (int32, error)

	UniformMatrix4(loc int32, m mgl32.Mat4) error
	UniformVec2(loc int32, v mgl32.Vec2) error
	UniformVec3(loc int32, v mgl32.Vec3) error
	UniformVec4(loc int32, v mgl32.Vec4) error
	UniformInt(loc int32, v int32) error
	UniformVec3Array(loc int32, v []float32) error
	UniformFloatArray(loc int32, v []float32) error

	CreateTexture(img *image.RGBA) (Handle, error)
	DeleteTexture(tex Handle) error
	BindTexture(unit uint32, tex Handle) error

	DrawTriangleStrip(first, count int32) error

	// ReadPixels returns the back buffer as RGBA rows, bottom row first.
	ReadPixels(width, height int) ([]byte, error)
}
