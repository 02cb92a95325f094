// Package game implements the main game loop and state management.
package game

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/dreadmaze/internal/config"
	"github.com/Faultbox/dreadmaze/internal/engine/audio"
	"github.com/Faultbox/dreadmaze/internal/engine/debug"
	"github.com/Faultbox/dreadmaze/internal/engine/effects"
	"github.com/Faultbox/dreadmaze/internal/engine/gpu"
	"github.com/Faultbox/dreadmaze/internal/engine/gpu/gldevice"
	"github.com/Faultbox/dreadmaze/internal/engine/input"
	"github.com/Faultbox/dreadmaze/internal/engine/renderer"
	"github.com/Faultbox/dreadmaze/internal/engine/window"
	"github.com/Faultbox/dreadmaze/internal/game/world"
	"github.com/Faultbox/dreadmaze/internal/logger"
)

const (
	maxPitch   = 1.2 // radians
	pitchSpeed = 1.5 // radians per second

	volumeStep = 0.1

	// maxFrameTime caps dt so a stalled frame does not tunnel through walls.
	maxFrameTime = 0.1
)

// Game is the main game instance.
type Game struct {
	config  *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	gpu      *gpu.Manager
	renderer *renderer.Renderer
	input    *input.Input
	audio    *audio.Manager // nil when muted or unavailable
	shots    *debug.Screenshots

	mouseCaptured bool

	state *world.State
}

// New creates the window, the GPU resources and the world.
// On failure everything created so far is released.
func New(cfg *config.Config) (_ *Game, err error) {
	g := &Game{
		config: cfg,
		log:    logger.Named("game"),
	}
	g.log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("stage", cfg.Stage.Path),
	)
	defer func() {
		if err != nil {
			g.Close()
		}
	}()

	g.state, err = loadWorld(cfg.Stage.Path)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	g.window, err = window.New(window.Config{
		Title:       "Dreadmaze",
		Width:       cfg.Graphics.Width,
		Height:      cfg.Graphics.Height,
		Fullscreen:  cfg.Graphics.Fullscreen,
		VSync:       cfg.Graphics.VSync,
		MSAASamples: cfg.Graphics.MSAASamples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dev, err := gldevice.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	width, height := g.window.Size()
	g.gpu, err = gpu.New(dev, gpu.Options{
		FovY:        mgl32.DegToRad(cfg.Graphics.FOVDegrees),
		Near:        0.1,
		ClearColor:  mgl32.Vec4(cfg.Render.ClearColor),
		Multisample: cfg.Graphics.MSAASamples > 0,
		Width:       width,
		Height:      height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gpu resources: %w", err)
	}

	g.renderer, err = renderer.New(g.gpu, g.window, renderer.Config{
		EyeHeight:       cfg.Render.EyeHeight,
		AttackThreshold: cfg.Render.AttackThreshold,
		MaxLights:       cfg.Render.MaxLights,
		Seed:            cfg.Render.Seed,
		Skin:            g.state.Skin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.input = input.New(input.DefaultBindings())
	g.setMouseCaptured(true)
	g.audio = newAudio(cfg.Audio, g.log)
	g.shots = debug.NewScreenshots(cfg.Game.ScreenshotDir, "dreadmaze")

	g.log.Info("game initialized successfully",
		zap.Int("walls", g.state.Stage.WallCount()),
		zap.Int("objects", len(g.state.Objects)),
		zap.Int("lights", len(g.state.Lights)),
	)
	return g, nil
}

// loadWorld reads the configured stage file, or the demo stage when none is set.
func loadWorld(path string) (*world.State, error) {
	if path == "" {
		return world.Demo(), nil
	}
	state, err := world.LoadStageFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage: %w", err)
	}
	return state, nil
}

// newAudio starts the sound. A missing audio device is not fatal, the
// game just runs silent.
func newAudio(cfg config.AudioConfig, log *zap.Logger) *audio.Manager {
	if cfg.Muted {
		return nil
	}
	m, err := audio.New(audio.Config{
		Volume:     cfg.Volume,
		DemonSting: cfg.DemonSting,
		NoiseSting: cfg.NoiseSting,
	})
	if err != nil {
		log.Warn("audio disabled", zap.Error(err))
		return nil
	}
	if err := m.Init(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
		return nil
	}
	return m
}

// Run starts the main game loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	statsTimer := time.Now()

	g.log.Info("starting game loop")

	for g.running {
		now := time.Now()
		dt := float32(math.Min(now.Sub(lastTime).Seconds(), maxFrameTime))
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		capture := false
		for _, event := range g.input.Events() {
			if event.Type != input.EventKeyDown {
				continue
			}
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_N:
				g.startScare(world.ScareNoise)
			case sdl.SCANCODE_TAB:
				g.setMouseCaptured(!g.mouseCaptured)
			case sdl.SCANCODE_F3:
				g.toggleStats()
			case sdl.SCANCODE_MINUS:
				g.adjustVolume(-volumeStep)
			case sdl.SCANCODE_EQUALS:
				g.adjustVolume(volumeStep)
			case sdl.SCANCODE_F5:
				g.saveSettings()
			case sdl.SCANCODE_F11:
				if err := g.window.ToggleFullscreen(); err != nil {
					g.log.Warn("fullscreen", zap.Error(err))
				}
			case sdl.SCANCODE_F12:
				capture = true
			}
		}

		// 2. Update game state
		g.update(dt)

		// 3. Render
		if err := g.renderer.Render(g.state); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if capture {
			g.screenshot()
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		frameCount++
		if since := time.Since(statsTimer); since >= time.Second {
			if g.config.Game.ShowStats {
				g.logStats(frameCount, since)
			}
			frameCount = 0
			statsTimer = time.Now()
		}
	}

	return nil
}

// screenshot saves the frame just rendered. Failures are logged only.
func (g *Game) screenshot() {
	pixels, w, h, err := g.gpu.ReadFramebuffer()
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := g.shots.Save(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// setMouseCaptured hides the cursor and turns mouse motion into looking.
func (g *Game) setMouseCaptured(on bool) {
	if err := g.window.SetMouseCaptured(on); err != nil {
		g.log.Warn("mouse capture", zap.Error(err))
		return
	}
	g.mouseCaptured = on
}

// adjustVolume changes the master volume and remembers it in the
// config so F5 persists it.
func (g *Game) adjustVolume(delta float64) {
	vol := stepVolume(g.config.Audio.Volume, delta)
	g.config.Audio.Volume = vol
	if g.audio != nil {
		g.audio.SetVolume(vol)
	}
	g.log.Info("volume changed", zap.Float64("volume", vol))
}

// stepVolume adds delta and keeps the result in [0, 1], rounded to the
// step so repeated presses do not drift.
func stepVolume(vol, delta float64) float64 {
	v := math.Round((vol+delta)/volumeStep) * volumeStep
	return math.Max(0, math.Min(1, v))
}

// saveSettings writes the current settings to the user config file.
func (g *Game) saveSettings() {
	if err := g.config.Save(); err != nil {
		g.log.Warn("saving settings", zap.Error(err))
		return
	}
	g.log.Info("settings saved", zap.String("dir", config.ConfigDir()))
}

// toggleStats switches the once-per-second stats and debug logging.
func (g *Game) toggleStats() {
	g.config.Game.ShowStats = !g.config.Game.ShowStats
	if g.config.Game.ShowStats {
		logger.SetLevel(zapcore.DebugLevel)
	} else if l, err := logger.ParseLevel(g.config.Logging.Level); err == nil {
		logger.SetLevel(l)
	}
	g.log.Info("stats toggled", zap.Bool("show", g.config.Game.ShowStats))
}

func (g *Game) logStats(frames int, elapsed time.Duration) {
	s := g.renderer.Stats()
	g.log.Info("frame stats",
		zap.Float64("fps", float64(frames)/elapsed.Seconds()),
		zap.Int("draws", s.Draws),
		zap.Int("tiles", s.Tiles),
		zap.Int("walls_kept", s.WallsKept),
		zap.Int("walls_culled", s.WallsCulled),
		zap.Int("objects", s.Objects),
		zap.Int("skipped", s.Skipped),
		zap.Int("lights", s.Lights),
		zap.Bool("scare", s.Scare),
	)
}

// update advances the simulation by dt seconds.
func (g *Game) update(dt float32) {
	in := g.input
	forward := in.Axis(input.Forward, input.Back)
	strafe := in.Axis(input.StrafeRight, input.StrafeLeft)
	turn := in.Axis(input.TurnLeft, input.TurnRight)
	g.state.MovePlayer(forward, strafe, turn, dt)

	p := &g.state.Player
	var dx, dy float32
	if g.mouseCaptured {
		dx, dy = in.MouseDelta()
	}
	look(p, in.Axis(input.LookUp, input.LookDown)*pitchSpeed*dt, dx, dy, g.config.Game.MouseSensitivity)

	if g.config.Game.DemonChase {
		g.state.AdvanceDemons(dt)
	}

	g.state.TickScare(dt)
	d := effects.DistanceFromDemon(*p, g.state.Objects)
	if d < g.config.Game.ScareDistance {
		g.startScare(world.ScareDemon)
	}
	if g.audio != nil {
		g.audio.SetDread(effects.Intensity(d, g.config.Render.AttackThreshold))
	}
}

// look applies keyboard pitch and mouse motion. Moving the mouse right
// turns right, moving it down looks down. Pitch stays within maxPitch.
func look(p *world.Player, keyPitch, dx, dy, sensitivity float32) {
	p.Yaw -= dx * sensitivity
	p.Pitch = mgl32.Clamp(p.Pitch+keyPitch-dy*sensitivity, -maxPitch, maxPitch)
}

// startScare shows the overlay and plays its sting, unless a scare is
// already running.
func (g *Game) startScare(cause world.ScareCause) {
	if !g.state.StartScare(cause, g.config.Game.ScareDuration) {
		return
	}
	g.log.Debug("scare started", zap.Uint8("cause", uint8(cause)))
	if g.audio == nil {
		return
	}
	if err := g.audio.PlayScare(cause); err != nil {
		g.log.Warn("playing scare sting", zap.Error(err))
	}
}

// Close releases audio, GPU resources and the window, in reverse creation order.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.audio != nil {
		g.audio.Close()
	}
	if g.gpu != nil {
		if err := g.gpu.Destroy(); err != nil {
			g.log.Warn("releasing gpu resources", zap.Error(err))
		}
	}
	if g.window != nil {
		g.window.Close()
	}
}
