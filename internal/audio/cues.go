package audio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Cue names a game sound
type Cue uint8

const (
	CueShoot   Cue = iota // player fires
	CueCharge             // a monster starts charging
	CueHit                // player struck, question incoming
	CueKill               // player projectile destroys a monster
	CueCorrect            // right answer
	CueWrong              // wrong answer, run over
	cueCount
)

var cueNames = [cueCount]string{"shoot", "charge", "hit", "kill", "correct", "wrong"}

// ErrUnknownCue is returned for names that do not map to a Cue
var ErrUnknownCue = errors.New("unknown cue")

func (c Cue) String() string {
	if c < cueCount {
		return cueNames[c]
	}
	return "unknown"
}

// Cues lists every cue in declaration order
func Cues() []Cue {
	out := make([]Cue, 0, cueCount)
	for c := Cue(0); c < cueCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCue maps a name such as "hit" to its Cue.
func ParseCue(name string) (Cue, error) {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), ".wav"))
	for c, n := range cueNames {
		if n == name {
			return Cue(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCue, name)
}

// Streamer builds a fresh streamer for the cue. Each call returns an
// independent stream so cues can overlap in a mixer.
func (c Cue) Streamer() beep.Streamer {
	ms := time.Millisecond
	switch c {
	case CueShoot:
		return gain(Shape(Sweep(1200, 400, 90*ms, WaveSquare), 90*ms, 2*ms, 60*ms), 0.25)
	case CueCharge:
		return gain(Shape(Sweep(200, 600, 400*ms, WaveSaw), 400*ms, 50*ms, 80*ms), 0.2)
	case CueHit:
		buzz := Shape(Tone(110, 250*ms, WaveSaw), 250*ms, 5*ms, 150*ms)
		crack := Shape(Tone(0, 120*ms, WaveNoise), 120*ms, 1*ms, 100*ms)
		return gain(beep.Mix(gain(buzz, 0.6), gain(crack, 0.4)), 0.5)
	case CueKill:
		return gain(Shape(Sweep(600, 80, 200*ms, WaveNoise), 200*ms, 2*ms, 150*ms), 0.35)
	case CueCorrect:
		// Rising two-note chime (B5, E6)
		n1 := Shape(Tone(987.77, 100*ms, WaveSquare), 100*ms, 5*ms, 40*ms)
		n2 := Shape(Tone(1318.51, 250*ms, WaveSquare), 250*ms, 5*ms, 200*ms)
		return gain(beep.Seq(n1, n2), 0.25)
	case CueWrong:
		n1 := Shape(Tone(330, 180*ms, WaveSaw), 180*ms, 5*ms, 60*ms)
		n2 := Shape(Tone(220, 400*ms, WaveSaw), 400*ms, 5*ms, 300*ms)
		return gain(beep.Seq(n1, n2), 0.3)
	default:
		return beep.Silence(0)
	}
}

// Format is the PCM layout cues are encoded with
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

var (
	renderMu sync.Mutex
	rendered = map[Cue][]byte{}
)

// Render returns the cue encoded as a WAV file. Results are cached; the
// returned slice must not be modified.
func Render(c Cue) ([]byte, error) {
	if c >= cueCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCue, c)
	}

	renderMu.Lock()
	defer renderMu.Unlock()
	if data, ok := rendered[c]; ok {
		return data, nil
	}

	data, err := EncodeWAV(c.Streamer(), Format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", c, err)
	}
	rendered[c] = data
	return data, nil
}

// EncodeWAV drains a finite streamer into WAV bytes.
func EncodeWAV(s beep.Streamer, format beep.Format) ([]byte, error) {
	var f memFile
	if err := wav.Encode(&f, s, format); err != nil {
		return nil, err
	}
	return f.buf, nil
}

// memFile is an in-memory io.WriteSeeker; wav.Encode seeks back to patch
// the header sizes once the stream ends.
type memFile struct {
	buf []byte
	off int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.off + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	n := copy(m.buf[m.off:], p)
	m.off += n
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.off)
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, errors.New("invalid whence")
	}
	pos := base + offset
	if pos < 0 {
		return 0, errors.New("negative position")
	}
	m.off = int(pos)
	return pos, nil
}
