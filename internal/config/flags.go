package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config     string
	Debug      bool
	LogLevel   string
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Stage      string
	Seed       uint64
	Mute       bool
}

// RegisterFlags defines the overrides on fs. main passes flag.CommandLine.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Debug logging and the stats line")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in a window")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run fullscreen")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.Stage, "stage", "", "Path to a stage file")
	fs.Uint64Var(&f.Seed, "seed", 0, "Camera shake seed")
	fs.BoolVar(&f.Mute, "mute", false, "Disable audio")
	return f
}

// apply writes the set overrides into cfg. -debug beats -log-level, and
// -fullscreen beats -windowed.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Game.ShowStats = true
	}
	switch {
	case f.Fullscreen:
		cfg.Graphics.Fullscreen = true
	case f.Windowed:
		cfg.Graphics.Fullscreen = false
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.Stage != "" {
		cfg.Stage.Path = f.Stage
	}
	if f.Seed != 0 {
		cfg.Render.Seed = f.Seed
	}
	if f.Mute {
		cfg.Audio.Muted = true
	}
}
