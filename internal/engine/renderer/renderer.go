// Package renderer composes a full frame of the maze from world state.
package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/engine/effects"
	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
	"github.com/Faultbox/dreadmaze/internal/engine/lighting"
	"github.com/Faultbox/dreadmaze/internal/engine/texture"
	"github.com/Faultbox/dreadmaze/internal/engine/transform"
	"github.com/Faultbox/dreadmaze/internal/engine/visibility"
	"github.com/Faultbox/dreadmaze/internal/game/world"
	"github.com/Faultbox/dreadmaze/internal/logger"
)

// Viewport reports the drawable size of the window.
type Viewport interface {
	Size() (width, height int)
}

// Config holds the tunables of the scene.
type Config struct {
	EyeHeight       float32
	AttackThreshold float32
	MaxLights       int
	Seed            uint64

	// Skin replaces built-in textures with image files.
	Skin world.Skin
}

// DefaultConfig returns the standard scene settings.
func DefaultConfig() Config {
	return Config{
		EyeHeight:       camera.DefaultEyeHeight,
		AttackThreshold: effects.DefaultAttackThreshold,
		MaxLights:       lighting.MaxLights,
		Seed:            1,
	}
}

// Textures are the surface textures of the scene.
type Textures struct {
	Wall    gpu.Handle
	Floor   gpu.Handle
	Ceiling gpu.Handle
	Demon   gpu.Handle
}

// Renderer draws one frame at a time. It owns no GPU objects of its own;
// textures are uploaded through the manager and released with it.
type Renderer struct {
	gpu      *gpu.Manager
	viewport Viewport
	cfg      Config
	log      *zap.Logger

	shaker   *effects.Shaker
	textures Textures
	lights   lighting.Buffer
	stats    Stats

	width, height int
	unknown       map[world.Kind]bool
}

// New uploads the scene textures and returns a ready renderer.
func New(m *gpu.Manager, vp Viewport, cfg Config) (*Renderer, error) {
	cfg.MaxLights = lighting.ClampCapacity(cfg.MaxLights)
	if cfg.AttackThreshold <= 0 {
		cfg.AttackThreshold = effects.DefaultAttackThreshold
	}

	r := &Renderer{
		gpu:      m,
		viewport: vp,
		cfg:      cfg,
		log:      logger.Named("renderer"),
		shaker:   effects.NewShaker(cfg.Seed),
		unknown:  make(map[world.Kind]bool),
	}

	var err error
	if r.textures, err = uploadTextures(m, cfg.Skin); err != nil {
		return nil, err
	}

	r.log.Info("renderer ready",
		zap.Float32("eye_height", cfg.EyeHeight),
		zap.Float32("attack_threshold", cfg.AttackThreshold),
		zap.Int("max_lights", cfg.MaxLights),
	)
	return r, nil
}

// uploadTextures uploads each surface from its skin file when one is
// set, or from the built-in generator otherwise.
func uploadTextures(m *gpu.Manager, skin world.Skin) (Textures, error) {
	var t Textures
	surfaces := []struct {
		dst      *gpu.Handle
		name     string
		file     string
		colorKey bool
		gen      func() *image.RGBA
	}{
		{&t.Wall, "wall", skin.Wall, false, func() *image.RGBA {
			return texture.Bricks(11, color.RGBA{120, 110, 95, 255}, color.RGBA{55, 50, 45, 255})
		}},
		{&t.Floor, "floor", skin.Floor, false, func() *image.RGBA {
			return texture.Tiles(23, 16, color.RGBA{70, 66, 60, 255}, color.RGBA{35, 33, 30, 255})
		}},
		{&t.Ceiling, "ceiling", skin.Ceiling, false, func() *image.RGBA {
			return texture.Tiles(37, 32, color.RGBA{50, 50, 55, 255}, color.RGBA{30, 30, 32, 255})
		}},
		{&t.Demon, "demon", skin.Demon, true, func() *image.RGBA {
			return texture.Silhouette(color.RGBA{15, 5, 5, 255}, color.RGBA{255, 40, 20, 255})
		}},
	}
	for _, sf := range surfaces {
		img := sf.gen
		if sf.file != "" {
			loaded, err := texture.Load(sf.file, sf.colorKey)
			if err != nil {
				return Textures{}, fmt.Errorf("%s texture: %w", sf.name, err)
			}
			img = func() *image.RGBA { return loaded }
		}
		h, err := m.UploadTexture(img())
		if err != nil {
			return Textures{}, fmt.Errorf("%s texture: %w", sf.name, err)
		}
		*sf.dst = h
	}
	return t, nil
}

// Stats returns the counters of the last rendered frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Render draws one frame. The steps run strictly in order: viewport,
// camera, shake, lights, clear, then tiles, walls, objects and the
// scare overlay. The first device error aborts the frame.
func (r *Renderer) Render(s *world.State) error {
	r.stats = Stats{}

	if err := r.updateViewport(); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}

	f := r.PrepareFrame(s)
	u := f.uniforms(&r.lights)

	if err := r.gpu.Clear(); err != nil {
		return err
	}
	if err := r.drawTiles(f, u, s.Stage); err != nil {
		return fmt.Errorf("tiles: %w", err)
	}
	if err := r.drawWalls(f, u, s.Stage); err != nil {
		return fmt.Errorf("walls: %w", err)
	}
	if err := r.drawObjects(f, u, s.Objects); err != nil {
		return fmt.Errorf("objects: %w", err)
	}
	if err := r.drawScare(s.Scare); err != nil {
		return fmt.Errorf("scare: %w", err)
	}

	r.stats.Draws = r.gpu.DrawCount()
	return nil
}

// updateViewport follows the window size.
func (r *Renderer) updateViewport() error {
	w, h := r.viewport.Size()
	if w == r.width && h == r.height {
		return nil
	}
	if err := r.gpu.Resize(w, h); err != nil {
		return err
	}
	r.width, r.height = w, h
	r.log.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// PrepareFrame derives the camera, the shake and the light set for this frame.
func (r *Renderer) PrepareFrame(s *world.State) Frame {
	cam := camera.FromPlayer(s.Player, r.cfg.EyeHeight)

	dist := effects.DistanceFromDemon(s.Player, s.Objects)
	intensity := effects.Intensity(dist, r.cfg.AttackThreshold)

	lights := lighting.Select(s.Lights, cam, r.cfg.MaxLights)
	r.lights.Set(lights)
	r.stats.Lights = len(lights)

	return Frame{
		Camera:        cam,
		View:          cam.View(),
		DemonDistance: dist,
		Intensity:     intensity,
		Shake:         r.shaker.Shake(intensity, s.Player.ViewChange),
		Lights:        lights,
		Width:         r.width,
		Height:        r.height,
	}
}

func (r *Renderer) drawTiles(f Frame, u gpu.FrameUniforms, stage *world.Stage) error {
	for _, q := range transform.Tiles(stage, f.Camera) {
		tex := r.textures.Floor
		if q.Normal.Y() < 0 {
			tex = r.textures.Ceiling
		}
		if err := r.gpu.DrawTexture(u, gpu.TexturedQuad{Model: q.Model, Normal: q.Normal, Texture: tex}); err != nil {
			return err
		}
		r.stats.Tiles++
	}
	return nil
}

func (r *Renderer) drawWalls(f Frame, u gpu.FrameUniforms, stage *world.Stage) error {
	if stage == nil {
		return nil
	}
	walls := visibility.VisibleWalls(stage, f.Camera)
	r.stats.WallsKept = len(walls)
	r.stats.WallsCulled = stage.WallCount() - len(walls)

	for _, w := range walls {
		q := transform.WallQuad(w, stage.WallHeight, f.Camera)
		if err := r.gpu.DrawTexture(u, gpu.TexturedQuad{Model: q.Model, Normal: q.Normal, Texture: r.textures.Wall}); err != nil {
			return err
		}
	}
	return nil
}

// drawObjects dispatches on the object kind. Kinds without a visual are
// skipped; an unknown kind is reported once.
func (r *Renderer) drawObjects(f Frame, u gpu.FrameUniforms, objects []world.Object) error {
	for _, obj := range objects {
		switch k := obj.Kind(); k {
		case world.KindDemon:
			w, h := obj.Size()
			q := transform.CreatureQuad(obj.Location(), w, h, f.Camera)
			if err := r.gpu.DrawTexture(u, gpu.TexturedQuad{Model: q.Model, Normal: q.Normal, Texture: r.textures.Demon}); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			r.stats.Objects++
		case world.KindItem:
			r.stats.Skipped++
		default:
			if !r.unknown[k] {
				r.unknown[k] = true
				r.log.Warn("no visual for object kind", zap.Stringer("kind", k))
			}
			r.stats.Skipped++
		}
	}
	return nil
}

var scareColors = map[world.ScareCause]mgl32.Vec4{
	world.ScareDemon: {0.35, 0, 0, 0.75},
	world.ScareNoise: {0.9, 0.9, 0.85, 0.5},
}

// drawScare draws the overlay, shrinking it as the countdown runs out.
func (r *Renderer) drawScare(s *world.Scare) error {
	if !s.Active() {
		return nil
	}
	progress := s.Countdown / s.Duration
	if progress > 1 {
		progress = 1
	}
	c, ok := scareColors[s.Cause]
	if !ok {
		c = mgl32.Vec4{0, 0, 0, 0.75}
	}
	r.stats.Scare = true
	return r.gpu.DrawOverlay(transform.OverlayShape(2*progress), c)
}
