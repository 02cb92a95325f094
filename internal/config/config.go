// Package config handles game configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/dreadmaze/internal/logger"
)

// Config holds all game settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Stage    StageConfig    `yaml:"stage"`
	Audio    AudioConfig    `yaml:"audio"`
	Game     GameConfig     `yaml:"game"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Fullscreen  bool    `yaml:"fullscreen"`
	VSync       bool    `yaml:"vsync"`
	MSAASamples int     `yaml:"msaa_samples"`
	FOVDegrees  float32 `yaml:"fov_degrees"`
}

// RenderConfig holds scene settings.
type RenderConfig struct {
	EyeHeight       float32    `yaml:"eye_height"`
	AttackThreshold float32    `yaml:"attack_threshold"`
	MaxLights       int        `yaml:"max_lights"`
	ClearColor      [4]float32 `yaml:"clear_color"`
	Seed            uint64     `yaml:"seed"` // Camera shake randomness
}

// StageConfig selects the maze to load.
type StageConfig struct {
	Path string `yaml:"path"` // Empty means the built-in demo stage
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Volume     float64 `yaml:"volume"`
	Muted      bool    `yaml:"muted"`
	DemonSting string  `yaml:"demon_sting"` // WAV file, empty for the built-in sound
	NoiseSting string  `yaml:"noise_sting"`
}

// GameConfig holds settings of the built-in simulation.
type GameConfig struct {
	ShowStats     bool    `yaml:"show_stats"`
	DemonChase    bool    `yaml:"demon_chase"`
	ScareDistance float32 `yaml:"scare_distance"`
	ScareDuration float32 `yaml:"scare_duration"` // Seconds
	ScreenshotDir string  `yaml:"screenshot_dir"`

	MouseSensitivity float32 `yaml:"mouse_sensitivity"` // Radians per pixel
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			Fullscreen:  false,
			VSync:       true,
			MSAASamples: 4,
			FOVDegrees:  60,
		},
		Render: RenderConfig{
			EyeHeight:       0.5,
			AttackThreshold: 5,
			MaxLights:       8,
			ClearColor:      [4]float32{0, 0, 0, 1},
			Seed:            1,
		},
		Audio: AudioConfig{
			Volume: 0.8,
			Muted:  false,
		},
		Game: GameConfig{
			ShowStats:     false,
			DemonChase:    true,
			ScareDistance: 0.8,
			ScareDuration: 1.5,
			ScreenshotDir: "screenshots",

			MouseSensitivity: 0.0025,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.MSAASamples < 0 {
		errs = append(errs, fmt.Errorf("graphics: msaa_samples %d is negative", c.Graphics.MSAASamples))
	}
	if c.Graphics.FOVDegrees <= 0 || c.Graphics.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("graphics: fov_degrees %g not in (0, 180)", c.Graphics.FOVDegrees))
	}
	if c.Render.EyeHeight < 0 {
		errs = append(errs, fmt.Errorf("render: eye_height %g is negative", c.Render.EyeHeight))
	}
	if c.Render.AttackThreshold <= 0 {
		errs = append(errs, fmt.Errorf("render: attack_threshold %g must be positive", c.Render.AttackThreshold))
	}
	if c.Render.MaxLights < 1 || c.Render.MaxLights > 8 {
		errs = append(errs, fmt.Errorf("render: max_lights %d not in [1, 8]", c.Render.MaxLights))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio: volume %g not in [0, 1]", c.Audio.Volume))
	}
	if c.Game.ScareDuration < 0 {
		errs = append(errs, fmt.Errorf("game: scare_duration %g is negative", c.Game.ScareDuration))
	}
	if c.Game.MouseSensitivity < 0 {
		errs = append(errs, fmt.Errorf("game: mouse_sensitivity %g is negative", c.Game.MouseSensitivity))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	return errors.Join(errs...)
}
