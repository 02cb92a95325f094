// Package gldevice implements gpu.Device on OpenGL 4.1 core.
// IMPORTANT: New must be called after the GL context is current, on the same thread.
package gldevice

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
	"github.com/Faultbox/dreadmaze/internal/logger"
)

// CallError is a GL error reported right after an operation.
type CallError struct {
	Op   string
	Code uint32
}

func (e *CallError) Error() string {
	return fmt.Sprintf("gl %s failed: %s (0x%x)", e.Op, codeName(e.Code), e.Code)
}

func codeName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	default:
		return "UNKNOWN"
	}
}

// check drains the GL error queue and reports the first error against op.
func check(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	// Later codes belong to the same failure; drop them so the next call starts clean.
	for i := 0; i < 8 && gl.GetError() != gl.NO_ERROR; i++ {
	}
	return &CallError{Op: op, Code: code}
}

// Device drives the current OpenGL context.
type Device struct {
	log *zap.Logger
}

// New loads the GL function pointers and logs the driver info.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d := &Device{log: logger.Named("gl")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return d, check("Init")
}

func (d *Device) Configure(s gpu.State) error {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	if s.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	} else {
		gl.Disable(gl.MULTISAMPLE)
	}
	gl.ClearColor(s.ClearColor[0], s.ClearColor[1], s.ClearColor[2], s.ClearColor[3])
	return check("Configure")
}

func (d *Device) Viewport(width, height int) error {
	gl.Viewport(0, 0, int32(width), int32(height))
	return check("Viewport")
}

func (d *Device) Clear() error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return check("Clear")
}

func (d *Device) DepthTest(enabled bool) error {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	return check("DepthTest")
}

func (d *Device) CreateVertexArray(vertices []float32, stride int, attrs []gpu.Attribute) (gpu.Handle, gpu.Handle, error) {
	if len(vertices) == 0 || stride <= 0 {
		return 0, 0, fmt.Errorf("gl CreateVertexArray: empty vertex data")
	}
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	for _, a := range attrs {
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, int32(stride*4), uintptr(a.Offset*4))
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	if err := check("CreateVertexArray"); err != nil {
		gl.DeleteVertexArrays(1, &vao)
		gl.DeleteBuffers(1, &vbo)
		return 0, 0, err
	}
	d.log.Debug("vertex array created", zap.Uint32("vao", vao), zap.Uint32("vbo", vbo))
	return gpu.Handle(vao), gpu.Handle(vbo), nil
}

func (d *Device) DeleteVertexArray(vao, vbo gpu.Handle) error {
	a, b := uint32(vao), uint32(vbo)
	if a != 0 {
		gl.DeleteVertexArrays(1, &a)
	}
	if b != 0 {
		gl.DeleteBuffers(1, &b)
	}
	return check("DeleteVertexArray")
}

func (d *Device) BindVertexArray(vao gpu.Handle) error {
	gl.BindVertexArray(uint32(vao))
	return check("BindVertexArray")
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	program, err := linkProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	if err := check("CompileProgram"); err != nil {
		gl.DeleteProgram(program)
		return 0, err
	}
	d.log.Debug("shader program created", zap.Uint32("program", program))
	return gpu.Handle(program), nil
}

func (d *Device) DeleteProgram(program gpu.Handle) error {
	gl.DeleteProgram(uint32(program))
	return check("DeleteProgram")
}

func (d *Device) UseProgram(program gpu.Handle) error {
	gl.UseProgram(uint32(program))
	return check("UseProgram")
}

func (d *Device) UniformLocation(program gpu.Handle, name string) (int32, error) {
	loc := gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
	return loc, check("GetUniformLocation " + name)
}

func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) error {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
	return check("UniformMatrix4fv")
}

func (d *Device) UniformVec2(loc int32, v mgl32.Vec2) error {
	gl.Uniform2f(loc, v[0], v[1])
	return check("Uniform2f")
}

func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) error {
	gl.Uniform3f(loc, v[0], v[1], v[2])
	return check("Uniform3f")
}

func (d *Device) UniformVec4(loc int32, v mgl32.Vec4) error {
	gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	return check("Uniform4f")
}

func (d *Device) UniformInt(loc int32, v int32) error {
	gl.Uniform1i(loc, v)
	return check("Uniform1i")
}

func (d *Device) UniformVec3Array(loc int32, v []float32) error {
	if len(v) < 3 {
		return nil
	}
	gl.Uniform3fv(loc, int32(len(v)/3), &v[0])
	return check("Uniform3fv")
}

func (d *Device) UniformFloatArray(loc int32, v []float32) error {
	if len(v) == 0 {
		return nil
	}
	gl.Uniform1fv(loc, int32(len(v)), &v[0])
	return check("Uniform1fv")
}

// CreateTexture uploads an RGBA image with mipmaps and repeat wrapping.
func (d *Device) CreateTexture(img *image.RGBA) (gpu.Handle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("gl CreateTexture: empty image")
	}
	b := img.Bounds()
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := check("CreateTexture"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return gpu.Handle(tex), nil
}

func (d *Device) DeleteTexture(tex gpu.Handle) error {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
	return check("DeleteTextures")
}

func (d *Device) BindTexture(unit uint32, tex gpu.Handle) error {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	return check("BindTexture")
}

func (d *Device) DrawTriangleStrip(first, count int32) error {
	gl.DrawArrays(gl.TRIANGLE_STRIP, first, count)
	return check("DrawArrays")
}

func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gl ReadPixels: empty size %dx%d", width, height)
	}
	pixels := make([]byte, width*height*4)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, check("ReadPixels")
}

var _ gpu.Device = (*Device)(nil)
