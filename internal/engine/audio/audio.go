// Package audio plays the scare stings and the dread drone that swells
// as the demon closes in.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/dreadmaze/internal/game/world"
	"github.com/Faultbox/dreadmaze/internal/logger"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Config selects the volume and optional WAV files for the stings.
type Config struct {
	Volume     float64 // 0.0 to 1.0
	DemonSting string
	NoiseSting string
}

// Manager owns the speaker and the mixer everything plays through.
type Manager struct {
	mu  sync.Mutex
	log *zap.Logger

	initialized bool
	sampleRate  beep.SampleRate
	volume      float64

	mixer  *beep.Mixer
	stings map[world.ScareCause]*beep.Buffer
	drone  *effects.Volume
}

// New prepares the stings, loading WAV overrides and synthesizing the rest.
// Nothing is played until Init.
func New(cfg Config) (*Manager, error) {
	m := &Manager{
		log:        logger.Named("audio"),
		sampleRate: DefaultSampleRate,
		volume:     clamp(cfg.Volume, 0, 1),
		mixer:      &beep.Mixer{},
		stings:     make(map[world.ScareCause]*beep.Buffer, 2),
	}

	files := map[world.ScareCause]string{
		world.ScareDemon: cfg.DemonSting,
		world.ScareNoise: cfg.NoiseSting,
	}
	for cause, path := range files {
		var (
			buf *beep.Buffer
			err error
		)
		if path != "" {
			buf, err = loadSting(path, m.sampleRate)
		} else {
			buf, err = synthSting(cause, m.sampleRate)
		}
		if err != nil {
			return nil, fmt.Errorf("sting %d: %w", cause, err)
		}
		m.stings[cause] = buf
	}
	return m, nil
}

// Init opens the speaker and starts the mixer and the drone.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	drone, err := newDrone(m.sampleRate)
	if err != nil {
		speaker.Close()
		return err
	}
	m.drone = &effects.Volume{Streamer: drone, Base: 2, Silent: true}
	m.mixer.Add(m.drone)
	speaker.Play(m.mixer)

	m.initialized = true
	m.log.Info("audio initialized", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close stops playback and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// Volume returns the master volume.
func (m *Manager) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SetVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clamp(vol, 0, 1)
}

// PlayScare plays the sting for a scare cause on top of whatever is playing.
func (m *Manager) PlayScare(cause world.ScareCause) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	buf, ok := m.stings[cause]
	if !ok {
		return fmt.Errorf("no sting for scare cause %d", cause)
	}

	s := &effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   volumeToExponent(m.volume),
		Silent:   m.volume <= 0,
	}
	speaker.Lock()
	m.mixer.Add(s)
	speaker.Unlock()
	return nil
}

// SetDread sets the drone loudness from the camera shake intensity,
// which peaks at 0.5 when the demon is on top of the player.
func (m *Manager) SetDread(intensity float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	level := m.volume * clamp(float64(intensity)*2, 0, 1)

	speaker.Lock()
	m.drone.Silent = level <= 0
	m.drone.Volume = volumeToExponent(level)
	speaker.Unlock()
}

// volumeToExponent converts a 0-1 volume to the exponent effects.Volume
// applies with Base 2. Full volume is 0.
func volumeToExponent(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loadSting decodes a WAV file into memory at the given sample rate.
func loadSting(path string, sr beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != sr {
		s = beep.Resample(4, format.SampleRate, sr, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	return buf, nil
}
