package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileOnly logs to path alone so tests do not write to stdout.
func fileOnly(lvl, path string) Options {
	o := DefaultOptions(lvl, path)
	o.Console = false
	o.Compress = false
	return o
}

// readEntries decodes every JSON line of a log file.
func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	Sync()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "dreadmaze.log")

	o := fileOnly("debug", logFile)
	o.MaxSizeMB = 1 // smallest lumberjack allows
	o.MaxBackups = 2
	if err := InitWith(o); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer InitNop()

	padding := strings.Repeat("x", 200)
	for i := 0; i < 6000; i++ {
		Info("frame stats", zap.Int("frame", i), zap.String("padding", padding))
	}
	Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name != "dreadmaze.log" && strings.HasPrefix(name, "dreadmaze-20") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files among %d entries", len(files))
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"error", []string{"error"}},
		{"warn", []string{"warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"DEBUG", []string{"debug", "info", "warn", "error"}},
		{"", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "levels.log")
			if err := InitWith(fileOnly(tt.level, logFile)); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}
			defer InitNop()

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			entries := readEntries(t, logFile)
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("entry %d level = %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWith(fileOnly("loud", filepath.Join(t.TempDir(), "x.log"))); err == nil {
		t.Error("InitWith should reject an unknown level")
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "runtime.log")
	if err := InitWith(fileOnly("info", logFile)); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer InitNop()

	log := Named("game")
	log.Debug("hidden")
	SetLevel(zapcore.DebugLevel)
	if Level() != zapcore.DebugLevel {
		t.Fatalf("level = %v, want debug", Level())
	}
	log.Debug("shown")
	SetLevel(zapcore.InfoLevel)

	entries := readEntries(t, logFile)
	if len(entries) != 1 || entries[0]["msg"] != "shown" {
		t.Errorf("entries = %v, want only the message logged after SetLevel", entries)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions("warn", "/tmp/dreadmaze.log")

	if o.File != "/tmp/dreadmaze.log" || o.Level != "warn" || !o.Console {
		t.Errorf("unexpected options %+v", o)
	}
	if o.MaxSizeMB != 20 || o.MaxBackups != 3 || o.MaxAgeDays != 7 || !o.Compress {
		t.Errorf("unexpected rotation settings %+v", o)
	}
}

func TestNamedComponentInOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "named.log")
	if err := InitWith(fileOnly("debug", logFile)); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer InitNop()

	Named("renderer").Info("frame drawn", zap.Int("draws", 18))

	entries := readEntries(t, logFile)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["component"] != "renderer" {
		t.Errorf("component = %v, want renderer", entries[0]["component"])
	}
	if entries[0]["draws"] != float64(18) {
		t.Errorf("draws = %v, want 18", entries[0]["draws"])
	}
}

func TestNoOutputConfigured(t *testing.T) {
	if err := InitWith(Options{Level: "info"}); err == nil {
		t.Error("expected error when neither console nor file output is enabled")
	}
}

func TestNopBeforeInit(t *testing.T) {
	InitNop()
	// Must not panic.
	Named("gpu").Debug("ignored")
	Info("ignored")
}
