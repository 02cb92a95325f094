package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when no -config flag is given.
const EnvConfig = "DREADMAZE_CONFIG"

// Load builds the config: defaults, then the first config file found,
// then flags. The result is validated. f may be nil.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	var explicit string
	if f != nil {
		explicit = f.Config
	}
	if path := findConfigFile(explicit); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile picks the -config flag, then $DREADMAZE_CONFIG, then
// config.yaml in the working directory or the user config directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", filepath.Join(ConfigDir(), "config.yaml")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Dreadmaze")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Dreadmaze")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "dreadmaze")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "dreadmaze")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are an error so
// a misspelled setting does not silently keep its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	// Relative paths are resolved against the config file.
	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Stage.Path, &cfg.Audio.DemonSting, &cfg.Audio.NoiseSting, &cfg.Logging.LogFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return nil
}
