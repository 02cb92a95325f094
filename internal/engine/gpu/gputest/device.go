// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
)

// ErrInjected is returned by the operation named in Device.FailOn.
var ErrInjected = errors.New("injected device failure")

// Draw records one issued draw call and the state bound at that moment.
type Draw struct {
	Program gpu.Handle
	VAO     gpu.Handle
	Texture gpu.Handle
	First   int32
	Count   int32
	Mat4    map[int32]mgl32.Mat4
	Vec3    map[int32]mgl32.Vec3
	Vec4    map[int32]mgl32.Vec4
}

// Device tracks object lifetimes and records every call.
type Device struct {
	// FailOn makes the named method return ErrInjected.
	FailOn string
	// AlsoFailOn names further methods that fail the same way.
	AlsoFailOn []string

	Calls []string
	Draws []Draw
	State gpu.State

	Width, Height int
	DepthEnabled  bool

	next     gpu.Handle
	buffers  map[gpu.Handle]bool
	arrays   map[gpu.Handle]bool
	programs map[gpu.Handle]bool
	textures map[gpu.Handle]bool

	program gpu.Handle
	vao     gpu.Handle
	texture gpu.Handle

	mat4 map[int32]mgl32.Mat4
	vec3 map[int32]mgl32.Vec3
	vec4 map[int32]mgl32.Vec4
	locs map[string]int32
}

// New returns an empty device.
func New() *Device {
	return &Device{
		buffers:  map[gpu.Handle]bool{},
		arrays:   map[gpu.Handle]bool{},
		programs: map[gpu.Handle]bool{},
		textures: map[gpu.Handle]bool{},
		mat4:     map[int32]mgl32.Mat4{},
		vec3:     map[int32]mgl32.Vec3{},
		vec4:     map[int32]mgl32.Vec4{},
		locs:     map[string]int32{},
	}
}

// Live returns the number of objects created and not yet deleted.
func (d *Device) Live() int {
	return len(d.buffers) + len(d.arrays) + len(d.programs) + len(d.textures)
}

// Count returns how many times a method was called.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// Location returns the location handed out for a uniform name, or -1.
func (d *Device) Location(name string) int32 {
	if loc, ok := d.locs[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) call(op string) error {
	d.Calls = append(d.Calls, op)
	if d.FailOn == op || slices.Contains(d.AlsoFailOn, op) {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

func (d *Device) handle() gpu.Handle {
	d.next++
	return d.next
}

func (d *Device) Configure(s gpu.State) error {
	if err := d.call("Configure"); err != nil {
		return err
	}
	d.State = s
	d.DepthEnabled = true
	return nil
}

func (d *Device) Viewport(width, height int) error {
	if err := d.call("Viewport"); err != nil {
		return err
	}
	d.Width, d.Height = width, height
	return nil
}

func (d *Device) Clear() error { return d.call("Clear") }

func (d *Device) DepthTest(enabled bool) error {
	if err := d.call("DepthTest"); err != nil {
		return err
	}
	d.DepthEnabled = enabled
	return nil
}

func (d *Device) CreateVertexArray(vertices []float32, stride int, attrs []gpu.Attribute) (gpu.Handle, gpu.Handle, error) {
	if err := d.call("CreateVertexArray"); err != nil {
		return 0, 0, err
	}
	if stride <= 0 || len(vertices)%stride != 0 {
		return 0, 0, fmt.Errorf("vertex data of %d floats does not fit stride %d", len(vertices), stride)
	}
	vao, vbo := d.handle(), d.handle()
	d.arrays[vao] = true
	d.buffers[vbo] = true
	return vao, vbo, nil
}

func (d *Device) DeleteVertexArray(vao, vbo gpu.Handle) error {
	if err := d.call("DeleteVertexArray"); err != nil {
		return err
	}
	if !d.arrays[vao] || !d.buffers[vbo] {
		return fmt.Errorf("delete of unknown vertex array %d/%d", vao, vbo)
	}
	delete(d.arrays, vao)
	delete(d.buffers, vbo)
	return nil
}

func (d *Device) BindVertexArray(vao gpu.Handle) error {
	if err := d.call("BindVertexArray"); err != nil {
		return err
	}
	if vao != 0 && !d.arrays[vao] {
		return fmt.Errorf("bind of unknown vertex array %d", vao)
	}
	d.vao = vao
	return nil
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	if err := d.call("CompileProgram"); err != nil {
		return 0, err
	}
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, errors.New("empty shader source")
	}
	p := d.handle()
	d.programs[p] = true
	return p, nil
}

func (d *Device) DeleteProgram(program gpu.Handle) error {
	if err := d.call("DeleteProgram"); err != nil {
		return err
	}
	if !d.programs[program] {
		return fmt.Errorf("delete of unknown program %d", program)
	}
	delete(d.programs, program)
	return nil
}

func (d *Device) UseProgram(program gpu.Handle) error {
	if err := d.call("UseProgram"); err != nil {
		return err
	}
	if program != 0 && !d.programs[program] {
		return fmt.Errorf("use of unknown program %d", program)
	}
	d.program = program
	return nil
}

// UniformLocation hands out one stable location per uniform name.
func (d *Device) UniformLocation(program gpu.Handle, name string) (int32, error) {
	if err := d.call("UniformLocation"); err != nil {
		return -1, err
	}
	if loc, ok := d.locs[name]; ok {
		return loc, nil
	}
	loc := int32(len(d.locs))
	d.locs[name] = loc
	return loc, nil
}

func (d *Device) uniform(op string) error {
	if err := d.call(op); err != nil {
		return err
	}
	if d.program == 0 {
		return fmt.Errorf("%s with no program bound", op)
	}
	return nil
}

func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) error {
	if err := d.uniform("UniformMatrix4"); err != nil {
		return err
	}
	d.mat4[loc] = m
	return nil
}

func (d *Device) UniformVec2(loc int32, v mgl32.Vec2) error { return d.uniform("UniformVec2") }

func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) error {
	if err := d.uniform("UniformVec3"); err != nil {
		return err
	}
	d.vec3[loc] = v
	return nil
}

func (d *Device) UniformVec4(loc int32, v mgl32.Vec4) error {
	if err := d.uniform("UniformVec4"); err != nil {
		return err
	}
	d.vec4[loc] = v
	return nil
}

func (d *Device) UniformInt(loc int32, v int32) error { return d.uniform("UniformInt") }

func (d *Device) UniformVec3Array(loc int32, v []float32) error {
	if len(v)%3 != 0 {
		return fmt.Errorf("vec3 array of %d floats", len(v))
	}
	return d.uniform("UniformVec3Array")
}

func (d *Device) UniformFloatArray(loc int32, v []float32) error {
	return d.uniform("UniformFloatArray")
}

func (d *Device) CreateTexture(img *image.RGBA) (gpu.Handle, error) {
	if err := d.call("CreateTexture"); err != nil {
		return 0, err
	}
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("empty texture image")
	}
	t := d.handle()
	d.textures[t] = true
	return t, nil
}

func (d *Device) DeleteTexture(tex gpu.Handle) error {
	if err := d.call("DeleteTexture"); err != nil {
		return err
	}
	if !d.textures[tex] {
		return fmt.Errorf("delete of unknown texture %d", tex)
	}
	delete(d.textures, tex)
	return nil
}

func (d *Device) BindTexture(unit uint32, tex gpu.Handle) error {
	if err := d.call("BindTexture"); err != nil {
		return err
	}
	if tex != 0 && !d.textures[tex] {
		return fmt.Errorf("bind of unknown texture %d", tex)
	}
	d.texture = tex
	return nil
}

// DrawTriangleStrip snapshots the bound state into Draws.
func (d *Device) DrawTriangleStrip(first, count int32) error {
	if err := d.call("DrawTriangleStrip"); err != nil {
		return err
	}
	if d.program == 0 || d.vao == 0 {
		return errors.New("draw with no program or vertex array bound")
	}
	draw := Draw{
		Program: d.program,
		VAO:     d.vao,
		Texture: d.texture,
		First:   first,
		Count:   count,
		Mat4:    make(map[int32]mgl32.Mat4, len(d.mat4)),
		Vec3:    make(map[int32]mgl32.Vec3, len(d.vec3)),
		Vec4:    make(map[int32]mgl32.Vec4, len(d.vec4)),
	}
	for k, v := range d.mat4 {
		draw.Mat4[k] = v
	}
	for k, v := range d.vec3 {
		draw.Vec3[k] = v
	}
	for k, v := range d.vec4 {
		draw.Vec4[k] = v
	}
	d.Draws = append(d.Draws, draw)
	return nil
}

var _ gpu.Device = (*Device)(nil)

// ReadPixels returns the clear color in every pixel.
func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if err := d.call("ReadPixels"); err != nil {
		return nil, err
	}
	c := d.State.ClearColor.Mul(255)
	px := make([]byte, width*height*4)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = byte(c[0]), byte(c[1]), byte(c[2]), byte(c[3])
	}
	return px, nil
}
