package audio

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"

	"github.com/Faultbox/dreadmaze/internal/game/world"
)

// Built-in sting lengths.
const (
	demonStingLength = 1200 * time.Millisecond
	noiseStingLength = 400 * time.Millisecond
)

// synthSting builds the built-in sound for a scare cause.
func synthSting(cause world.ScareCause, sr beep.SampleRate) (*beep.Buffer, error) {
	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})

	switch cause {
	case world.ScareDemon:
		// Two detuned low tones beat against each other.
		low, err := generators.SineTone(sr, 110)
		if err != nil {
			return nil, err
		}
		high, err := generators.SineTone(sr, 116.5)
		if err != nil {
			return nil, err
		}
		n := sr.N(demonStingLength)
		buf.Append(fadeOut(beep.Take(n, beep.Mix(low, high)), n, 0.5))
	case world.ScareNoise:
		n := sr.N(noiseStingLength)
		buf.Append(fadeOut(beep.Take(n, noise(7)), n, 0.6))
	default:
		return nil, fmt.Errorf("unknown scare cause %d", cause)
	}
	return buf, nil
}

// newDrone is an endless low hum for the dread layer.
func newDrone(sr beep.SampleRate) (beep.Streamer, error) {
	a, err := generators.SineTone(sr, 55)
	if err != nil {
		return nil, err
	}
	b, err := generators.SineTone(sr, 55.7)
	if err != nil {
		return nil, err
	}
	return gain(beep.Mix(a, b), 0.4), nil
}

// noise is endless white noise from a seeded source.
func noise(seed uint64) beep.Streamer {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := rng.Float64()*2 - 1
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

// gain scales every sample by a constant.
func gain(s beep.Streamer, g float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= g
			samples[i][1] *= g
		}
		return n, ok
	})
}

// fadeOut ramps s linearly from peak down to silence over total samples.
func fadeOut(s beep.Streamer, total int, peak float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			g := peak * (1 - float64(pos)/float64(total))
			if g < 0 {
				g = 0
			}
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}
