// Package audio synthesizes the game's short sound cues and encodes them
// as WAV so any front-end can play them without shipping asset files.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the rate every cue is rendered at
const SampleRate beep.SampleRate = 44100

// Wave selects the oscillator shape
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// tone is a fixed-length oscillator, optionally sweeping from freq to endFreq
type tone struct {
	freq    float64
	endFreq float64
	phase   float64
	total   int
	pos     int
	wave    Wave
	rng     *rand.Rand
}

// Tone returns a streamer producing d of the given wave at freq Hz.
func Tone(freq float64, d time.Duration, wave Wave) beep.Streamer {
	return Sweep(freq, freq, d, wave)
}

// Sweep is Tone with a linear frequency glide from start to end.
func Sweep(start, end float64, d time.Duration, wave Wave) beep.Streamer {
	return &tone{
		freq:    start,
		endFreq: end,
		total:   SampleRate.N(d),
		wave:    wave,
		rng:     rand.New(rand.NewSource(int64(start*1000) + int64(d))),
	}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}

		var v float64
		switch t.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case WaveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (t.phase - 0.5)
		case WaveNoise:
			v = t.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		progress := float64(t.pos) / float64(t.total)
		f := t.freq + (t.endFreq-t.freq)*progress
		t.phase += f / float64(SampleRate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope applies a linear attack and release to a finite streamer
type envelope struct {
	s       beep.Streamer
	pos     int
	attack  int
	release int
	total   int
}

// Shape wraps s in an attack/release envelope over a d-long sound.
func Shape(s beep.Streamer, d, attack, release time.Duration) beep.Streamer {
	return &envelope{
		s:       s,
		attack:  SampleRate.N(attack),
		release: SampleRate.N(release),
		total:   SampleRate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1.0
		switch {
		case e.attack > 0 && e.pos < e.attack:
			gain = float64(e.pos) / float64(e.attack)
		case e.release > 0 && e.pos >= e.total-e.release:
			gain = math.Max(0, float64(e.total-e.pos)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// gain scales s linearly; zero or less is silence
func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}
