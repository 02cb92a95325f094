package gpu

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dreadmaze/internal/engine/shader"
	"github.com/Faultbox/dreadmaze/internal/logger"
)

// ErrDestroyed is returned by any call made after Destroy.
var ErrDestroyed = errors.New("gpu: manager used after destroy")

// QuadVertices is the unit square as a 4-vertex triangle strip.
// Layout per vertex: position (x, y, z) + texcoord (u, v).
var QuadVertices = []float32{
	-0.5, -0.5, 0, 0, 1,
	0.5, -0.5, 0, 1, 1,
	-0.5, 0.5, 0, 0, 0,
	0.5, 0.5, 0, 1, 0,
}

const (
	quadStride      = 5
	quadVertexCount = 4
)

var quadLayout = []Attribute{
	{Location: shader.AttribPosition, Size: 3, Offset: 0},
	{Location: shader.AttribTexCoord, Size: 2, Offset: 3},
}

// Options configures the manager at startup.
type Options struct {
	FovY        float32 // Vertical field of view (radians)
	Near        float32
	ClearColor  mgl32.Vec4
	Multisample bool
	Width       int
	Height      int
}

// DefaultOptions returns a 60° field of view with a 0.1 near plane.
func DefaultOptions() Options {
	return Options{
		FovY:        mgl32.DegToRad(60),
		Near:        0.1,
		ClearColor:  mgl32.Vec4{0, 0, 0, 1},
		Multisample: true,
		Width:       1280,
		Height:      720,
	}
}

// Lights is the flattened light data for one frame.
type Lights struct {
	Count      int32
	Positions  []float32 // 3 floats per light
	Brightness []float32
}

// FrameUniforms are uploaded with every textured draw of a frame.
type FrameUniforms struct {
	View          mgl32.Mat4
	ViewDirection mgl32.Vec3
	Shake         mgl32.Vec2
	Lights        Lights
}

// TexturedQuad is one lit, textured quad.
type TexturedQuad struct {
	Model   mgl32.Mat4
	Normal  mgl32.Vec3
	Texture Handle
}

// Manager owns the shared quad, the programs and uploaded textures.
// It is not safe for concurrent use and must stay on the thread that owns the context.
type Manager struct {
	dev  Device
	opts Options
	log  *zap.Logger

	quadVAO Handle
	quadVBO Handle

	color    *Program
	textured *Program
	textures []Handle

	projection mgl32.Mat4
	draws      int
	destroyed  bool
}

// New configures the device and allocates every startup resource.
// If any step fails, whatever was already allocated is released.
func New(dev Device, opts Options) (_ *Manager, err error) {
	m := &Manager{
		dev:  dev,
		opts: opts,
		log:  logger.Named("gpu"),
	}
	defer func() {
		if err != nil {
			if rerr := m.release(); rerr != nil {
				m.log.Warn("releasing partial init", zap.Error(rerr))
			}
		}
	}()

	if err := dev.Configure(State{ClearColor: opts.ClearColor, Multisample: opts.Multisample}); err != nil {
		return nil, fmt.Errorf("configure device: %w", err)
	}

	m.quadVAO, m.quadVBO, err = dev.CreateVertexArray(QuadVertices, quadStride, quadLayout)
	if err != nil {
		return nil, fmt.Errorf("create quad: %w", err)
	}

	m.color, err = loadProgram(dev, "color", shader.ColorVertexShader, shader.ColorFragmentShader, shader.ColorUniforms)
	if err != nil {
		return nil, err
	}
	m.textured, err = loadProgram(dev, "textured", shader.TexturedVertexShader, shader.TexturedFragmentShader, shader.TexturedUniforms)
	if err != nil {
		return nil, err
	}

	m.projection = InfinitePerspective(opts.FovY, m.Aspect(), opts.Near)
	if err := m.Resize(opts.Width, opts.Height); err != nil {
		return nil, err
	}

	m.log.Debug("gpu resources created",
		zap.Uint32("quad_vao", uint32(m.quadVAO)),
		zap.Uint32("quad_vbo", uint32(m.quadVBO)),
		zap.Uint32("color_program", uint32(m.color.ID)),
		zap.Uint32("textured_program", uint32(m.textured.ID)),
	)
	return m, nil
}

// With creates a manager, runs fn, and destroys the manager on every exit path.
func With(dev Device, opts Options, fn func(*Manager) error) (err error) {
	m, err := New(dev, opts)
	if err != nil {
		return err
	}
	defer func() {
		if derr := m.Destroy(); derr != nil && err == nil {
			err = derr
		}
	}()
	return fn(m)
}

// InfinitePerspective is a right-handed perspective projection with the far plane at infinity.
func InfinitePerspective(fovY, aspect, near float32) mgl32.Mat4 {
	f := float32(1 / math.Tan(float64(fovY)/2))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, -1, -1,
		0, 0, -2 * near, 0,
	}
}

// Resize updates the viewport and the projection aspect ratio.
func (m *Manager) Resize(width, height int) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := m.dev.Viewport(width, height); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	m.opts.Width, m.opts.Height = width, height
	m.projection = InfinitePerspective(m.opts.FovY, m.Aspect(), m.opts.Near)
	return nil
}

// Aspect returns width/height of the current viewport.
func (m *Manager) Aspect() float32 {
	if m.opts.Height == 0 {
		return 1
	}
	return float32(m.opts.Width) / float32(m.opts.Height)
}

// Clear clears the color and depth buffers. Call once per frame before drawing.
func (m *Manager) Clear() error {
	if m.destroyed {
		return ErrDestroyed
	}
	m.draws = 0
	if err := m.dev.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// DrawCount returns the number of draw calls since the last Clear.
func (m *Manager) DrawCount() int {
	return m.draws
}

// UploadTexture creates a texture owned by the manager.
func (m *Manager) UploadTexture(img *image.RGBA) (Handle, error) {
	if m.destroyed {
		return 0, ErrDestroyed
	}
	tex, err := m.dev.CreateTexture(img)
	if err != nil {
		return 0, fmt.Errorf("upload texture: %w", err)
	}
	m.textures = append(m.textures, tex)
	return tex, nil
}

// DrawQuadrilateral draws the quad in a flat color with
// MVP = projection * view * model.
func (m *Manager) DrawQuadrilateral(view, model mgl32.Mat4, color mgl32.Vec4) error {
	if m.destroyed {
		return ErrDestroyed
	}
	mvp := m.projection.Mul4(view).Mul4(model)
	return m.draw(m.color, func() error {
		if err := m.dev.UniformMatrix4(m.color.Location(shader.UniformMVP), mvp); err != nil {
			return err
		}
		return m.dev.UniformVec4(m.color.Location(shader.UniformColor), color)
	})
}

// DrawTexture draws a lit, textured quad.
func (m *Manager) DrawTexture(f FrameUniforms, q TexturedQuad) error {
	if m.destroyed {
		return ErrDestroyed
	}
	p := m.textured
	mvp := m.projection.Mul4(f.View).Mul4(q.Model)
	return m.draw(p, func() error {
		if err := m.dev.BindTexture(0, q.Texture); err != nil {
			return err
		}
		steps := []func() error{
			func() error { return m.dev.UniformMatrix4(p.Location(shader.UniformMVP), mvp) },
			func() error { return m.dev.UniformMatrix4(p.Location(shader.UniformModel), q.Model) },
			func() error { return m.dev.UniformVec3(p.Location(shader.UniformViewDirection), f.ViewDirection) },
			func() error { return m.dev.UniformVec3(p.Location(shader.UniformNormal), q.Normal) },
			func() error { return m.dev.UniformInt(p.Location(shader.UniformSampler), 0) },
			func() error { return m.dev.UniformVec2(p.Location(shader.UniformShake), f.Shake) },
			func() error { return m.dev.UniformInt(p.Location(shader.UniformLightCount), f.Lights.Count) },
		}
		if f.Lights.Count > 0 {
			steps = append(steps,
				func() error { return m.dev.UniformVec3Array(p.Location(shader.UniformLightPositions), f.Lights.Positions) },
				func() error { return m.dev.UniformFloatArray(p.Location(shader.UniformLightBrightness), f.Lights.Brightness) },
			)
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
}

// DrawOverlay draws a flat quad straight in normalized device
// coordinates, on top of everything drawn so far.
func (m *Manager) DrawOverlay(model mgl32.Mat4, color mgl32.Vec4) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if err := m.dev.DepthTest(false); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	err := m.draw(m.color, func() error {
		if err := m.dev.UniformMatrix4(m.color.Location(shader.UniformMVP), model); err != nil {
			return err
		}
		return m.dev.UniformVec4(m.color.Location(shader.UniformColor), color)
	})
	if derr := m.dev.DepthTest(true); derr != nil && err == nil {
		err = fmt.Errorf("overlay: %w", derr)
	}
	return err
}

// draw binds the program and quad, uploads uniforms and issues one strip draw.
func (m *Manager) draw(p *Program, upload func() error) (err error) {
	if err := m.dev.UseProgram(p.ID); err != nil {
		return fmt.Errorf("use program %d: %w", p.ID, err)
	}
	defer func() {
		if uerr := m.dev.UseProgram(0); uerr != nil && err == nil {
			err = fmt.Errorf("unbind program: %w", uerr)
		}
	}()

	if err := m.dev.BindVertexArray(m.quadVAO); err != nil {
		return fmt.Errorf("bind quad: %w", err)
	}
	defer func() {
		if uerr := m.dev.BindVertexArray(0); uerr != nil && err == nil {
			err = fmt.Errorf("unbind quad: %w", uerr)
		}
	}()

	if err := upload(); err != nil {
		return fmt.Errorf("upload uniforms: %w", err)
	}
	if err := m.dev.DrawTriangleStrip(0, quadVertexCount); err != nil {
		return fmt.Errorf("draw quad: %w", err)
	}
	m.draws++
	return nil
}

// ReadFramebuffer reads the current frame as raw RGBA pixels at the
// viewport size, bottom row first as the device returns them.
func (m *Manager) ReadFramebuffer() (pixels []byte, width, height int, err error) {
	if m.destroyed {
		return nil, 0, 0, ErrDestroyed
	}
	width, height = m.opts.Width, m.opts.Height
	pixels, err = m.dev.ReadPixels(width, height)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read pixels: %w", err)
	}
	return pixels, width, height, nil
}

// Destroy releases every device object. Calling it again is a no-op.
func (m *Manager) Destroy() error {
	if m.destroyed {
		return nil
	}
	err := m.release()
	m.destroyed = true
	m.log.Debug("gpu resources destroyed")
	return err
}

// release deletes whatever has been allocated so far.
func (m *Manager) release() error {
	var errs []error
	for _, tex := range m.textures {
		if err := m.dev.DeleteTexture(tex); err != nil {
			errs = append(errs, fmt.Errorf("delete texture %d: %w", tex, err))
		}
	}
	m.textures = nil

	for _, p := range []*Program{m.textured, m.color} {
		if p == nil {
			continue
		}
		if err := m.dev.DeleteProgram(p.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete program %d: %w", p.ID, err))
		}
	}
	m.textured, m.color = nil, nil

	if m.quadVAO != 0 || m.quadVBO != 0 {
		if err := m.dev.DeleteVertexArray(m.quadVAO, m.quadVBO); err != nil {
			errs = append(errs, fmt.Errorf("delete quad: %w", err))
		}
		m.quadVAO, m.quadVBO = 0, 0
	}
	return errors.Join(errs...)
}
