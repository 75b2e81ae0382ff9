package audio

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
)

// Music holds a background track decoded from OGG Vorbis and re-encoded
// as WAV at SampleRate. Decoding happens once, on first use.
type Music struct {
	path string

	once sync.Once
	data []byte
	err  error
}

// NewMusic prepares the track at path. An empty path yields a nil *Music.
func NewMusic(path string) *Music {
	if path == "" {
		return nil
	}
	return &Music{path: path}
}

// WAV returns the transcoded track.
func (m *Music) WAV() ([]byte, error) {
	m.once.Do(func() {
		m.data, m.err = transcodeOgg(m.path)
		if m.err != nil {
			log.Printf("⚠️ Background music unavailable: %v", m.err)
			return
		}
		log.Printf("✅ Background music loaded: %s (%d bytes)", m.path, len(m.data))
	})
	return m.data, m.err
}

func transcodeOgg(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open music: %w", err)
	}

	streamer, format, err := vorbis.Decode(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("decode music: %w", err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, streamer)
	}
	return EncodeWAV(s, Format)
}
