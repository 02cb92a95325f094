package gpu_test

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
	"github.com/Faultbox/dreadmaze/internal/engine/gpu/gputest"
	"github.com/Faultbox/dreadmaze/internal/engine/shader"
)

func newManager(t *testing.T) (*gpu.Manager, *gputest.Device) {
	t.Helper()
	dev := gputest.New()
	m, err := gpu.New(dev, gpu.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m, dev
}

func TestNewConfiguresDevice(t *testing.T) {
	_, dev := newManager(t)

	if dev.Count("Configure") != 1 {
		t.Errorf("Configure called %d times, want 1", dev.Count("Configure"))
	}
	if !dev.State.Multisample {
		t.Error("expected multisampling enabled")
	}
	if dev.State.ClearColor[3] != 1 {
		t.Errorf("clear color must be opaque, got alpha %f", dev.State.ClearColor[3])
	}
	if dev.Count("CreateVertexArray") != 1 {
		t.Errorf("expected exactly one quad buffer, got %d", dev.Count("CreateVertexArray"))
	}
	if dev.Count("CompileProgram") != 2 {
		t.Errorf("expected color and textured programs, got %d compiles", dev.Count("CompileProgram"))
	}
	if dev.Width != 1280 || dev.Height != 720 {
		t.Errorf("viewport %dx%d, want 1280x720", dev.Width, dev.Height)
	}
}

func TestCreateDestroyLeaksNothing(t *testing.T) {
	m, dev := newManager(t)
	if dev.Live() == 0 {
		t.Fatal("expected live handles after init")
	}

	if _, err := m.UploadTexture(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := m.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if dev.Live() != 0 {
		t.Errorf("%d handles leaked", dev.Live())
	}

	// Second destroy must not delete anything again.
	deletes := dev.Count("DeleteProgram")
	if err := m.Destroy(); err != nil {
		t.Errorf("second destroy: %v", err)
	}
	if dev.Count("DeleteProgram") != deletes {
		t.Error("second destroy released programs again")
	}
}

func TestDrawAfterDestroy(t *testing.T) {
	m, dev := newManager(t)
	if err := m.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	calls := len(dev.Calls)
	checks := map[string]error{
		"DrawQuadrilateral": m.DrawQuadrilateral(mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec4{1, 1, 1, 1}),
		"DrawTexture":       m.DrawTexture(gpu.FrameUniforms{View: mgl32.Ident4()}, gpu.TexturedQuad{Model: mgl32.Ident4()}),
		"DrawOverlay":       m.DrawOverlay(mgl32.Ident4(), mgl32.Vec4{}),
		"Clear":             m.Clear(),
		"Resize":            m.Resize(10, 10),
	}
	for name, err := range checks {
		if !errors.Is(err, gpu.ErrDestroyed) {
			t.Errorf("%s after destroy: got %v, want ErrDestroyed", name, err)
		}
	}
	if len(dev.Calls) != calls {
		t.Errorf("device touched after destroy: %v", dev.Calls[calls:])
	}
}

func TestInitFailureReleasesEverything(t *testing.T) {
	for _, op := range []string{"Configure", "CreateVertexArray", "CompileProgram", "UniformLocation", "Viewport"} {
		t.Run(op, func(t *testing.T) {
			dev := gputest.New()
			dev.FailOn = op

			_, err := gpu.New(dev, gpu.DefaultOptions())
			if !errors.Is(err, gputest.ErrInjected) {
				t.Fatalf("got %v, want injected failure", err)
			}
			if dev.Live() != 0 {
				t.Errorf("%d handles leaked after failed init", dev.Live())
			}
		})
	}
}

func TestUniformFailureReportsCleanupError(t *testing.T) {
	dev := gputest.New()
	dev.FailOn = "UniformLocation"
	dev.AlsoFailOn = []string{"DeleteProgram"}

	_, err := gpu.New(dev, gpu.DefaultOptions())
	if !errors.Is(err, gputest.ErrInjected) {
		t.Fatalf("got %v, want injected failure", err)
	}
	for _, op := range []string{"UniformLocation", "DeleteProgram"} {
		if !strings.Contains(err.Error(), op) {
			t.Errorf("error %q does not report the %s failure", err, op)
		}
	}
}

func TestWithDestroysOnError(t *testing.T) {
	dev := gputest.New()
	boom := errors.New("boom")

	err := gpu.With(dev, gpu.DefaultOptions(), func(m *gpu.Manager) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
	if dev.Live() != 0 {
		t.Errorf("%d handles leaked", dev.Live())
	}
}

func TestWithDestroysOnPanic(t *testing.T) {
	dev := gputest.New()
	func() {
		defer func() { _ = recover() }()
		_ = gpu.With(dev, gpu.DefaultOptions(), func(m *gpu.Manager) error {
			panic("frame exploded")
		})
	}()
	if dev.Live() != 0 {
		t.Errorf("%d handles leaked after panic", dev.Live())
	}
}

func TestDrawQuadrilateral(t *testing.T) {
	m, dev := newManager(t)

	view := mgl32.HomogRotate3DY(0.4)
	model := mgl32.Translate3D(1, 2, -3)
	color := mgl32.Vec4{1, 0, 0, 1}
	if err := m.DrawQuadrilateral(view, model, color); err != nil {
		t.Fatalf("draw: %v", err)
	}

	if len(dev.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.First != 0 || d.Count != 4 {
		t.Errorf("draw range (%d, %d), want (0, 4)", d.First, d.Count)
	}

	want := gpu.InfinitePerspective(mgl32.DegToRad(60), 1280.0/720.0, 0.1).Mul4(view).Mul4(model)
	got := d.Mat4[dev.Location(shader.UniformMVP)]
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("mvp mismatch:\n got %v\nwant %v", got, want)
	}
	if d.Vec4[dev.Location(shader.UniformColor)] != color {
		t.Errorf("color not uploaded")
	}

	// Program and vertex array are unbound after the draw.
	n := len(dev.Calls)
	if dev.Calls[n-1] != "UseProgram" || dev.Calls[n-2] != "BindVertexArray" {
		t.Errorf("expected unbind after draw, got tail %v", dev.Calls[n-3:])
	}
	if m.DrawCount() != 1 {
		t.Errorf("draw count %d, want 1", m.DrawCount())
	}
	if err := m.Clear(); err != nil || m.DrawCount() != 0 {
		t.Errorf("clear should reset draw count (err %v)", err)
	}
}

func TestDrawTextureUploadsUniformContract(t *testing.T) {
	m, dev := newManager(t)
	tex, err := m.UploadTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	f := gpu.FrameUniforms{
		View:          mgl32.Ident4(),
		ViewDirection: mgl32.Vec3{0, 0, -1},
		Shake:         mgl32.Vec2{0.1, -0.1},
		Lights: gpu.Lights{
			Count:      1,
			Positions:  []float32{0, 1, 0},
			Brightness: []float32{1},
		},
	}
	q := gpu.TexturedQuad{Model: mgl32.Translate3D(0, 0, -2), Normal: mgl32.Vec3{0, 0, 1}, Texture: tex}
	if err := m.DrawTexture(f, q); err != nil {
		t.Fatalf("draw: %v", err)
	}

	for _, op := range []string{"UniformVec2", "UniformVec3Array", "UniformFloatArray", "BindTexture"} {
		if dev.Count(op) == 0 {
			t.Errorf("%s never called", op)
		}
	}
	d := dev.Draws[0]
	if d.Texture != tex {
		t.Errorf("texture %d bound, want %d", d.Texture, tex)
	}
	if d.Vec3[dev.Location(shader.UniformNormal)] != q.Normal {
		t.Error("normal not uploaded")
	}
	if d.Mat4[dev.Location(shader.UniformModel)] != q.Model {
		t.Error("model matrix not uploaded")
	}
}

func TestDrawOverlayRestoresDepthTest(t *testing.T) {
	m, dev := newManager(t)
	if err := m.DrawOverlay(mgl32.Scale3D(2, 2, 1), mgl32.Vec4{1, 0, 0, 0.5}); err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if !dev.DepthEnabled {
		t.Error("depth test left disabled")
	}
	if dev.Count("DepthTest") != 2 {
		t.Errorf("DepthTest called %d times, want 2", dev.Count("DepthTest"))
	}
}

func TestDeviceErrorSurfaces(t *testing.T) {
	m, dev := newManager(t)
	dev.FailOn = "DrawTriangleStrip"

	err := m.DrawQuadrilateral(mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec4{})
	if !errors.Is(err, gputest.ErrInjected) {
		t.Fatalf("got %v, want injected failure", err)
	}
	if dev.Calls[len(dev.Calls)-1] != "UseProgram" {
		t.Error("state not unbound after failed draw")
	}
}

func TestInfinitePerspective(t *testing.T) {
	p := gpu.InfinitePerspective(mgl32.DegToRad(60), 1.5, 0.1)

	// A point on the near plane maps to depth -1, far points approach +1.
	near := p.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	if d := near.Z() / near.W(); math.Abs(float64(d+1)) > 1e-5 {
		t.Errorf("near plane depth %f, want -1", d)
	}
	far := p.Mul4x1(mgl32.Vec4{0, 0, -1e4, 1})
	if d := far.Z() / far.W(); d >= 1 || d < 0.99 {
		t.Errorf("far depth %f, want just under 1", d)
	}

	// Matches a finite projection with a very distant far plane.
	finite := mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 1e7)
	if !p.ApproxEqualThreshold(finite, 1e-4) {
		t.Errorf("infinite projection differs from finite limit:\n%v\n%v", p, finite)
	}
}

func TestResizeIgnoresEmptyWindow(t *testing.T) {
	m, dev := newManager(t)
	if err := m.Resize(0, 0); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if dev.Width != 1280 {
		t.Errorf("viewport changed on minimized window: %d", dev.Width)
	}
	if err := m.Resize(800, 400); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if m.Aspect() != 2 {
		t.Errorf("aspect %f, want 2", m.Aspect())
	}
}

func TestReadFramebuffer(t *testing.T) {
	m, dev := newManager(t)
	if err := m.Resize(4, 2); err != nil {
		t.Fatalf("resize: %v", err)
	}

	px, w, h, err := m.ReadFramebuffer()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if w != 4 || h != 2 || len(px) != 4*2*4 {
		t.Fatalf("got %dx%d with %d bytes", w, h, len(px))
	}
	if px[3] != 255 {
		t.Errorf("alpha = %d, want opaque clear color", px[3])
	}

	dev.FailOn = "ReadPixels"
	if _, _, _, err := m.ReadFramebuffer(); !errors.Is(err, gputest.ErrInjected) {
		t.Errorf("expected injected error, got %v", err)
	}

	if err := m.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, _, _, err := m.ReadFramebuffer(); !errors.Is(err, gpu.ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}
