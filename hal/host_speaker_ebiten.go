//go:build !tinygo && cgo

package hal

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const speakerSampleRate = 44100

// hostSpeaker plays the console beep through Ebiten's audio package.
type hostSpeaker struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player

	hz atomic.Int64
}

func newHostSpeaker() Speaker {
	return &hostSpeaker{}
}

func (s *hostSpeaker) Tone(hz int) error {
	if hz <= 0 {
		return errors.New("host speaker: invalid frequency")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		s.ctx = audio.CurrentContext()
		if s.ctx == nil {
			s.ctx = audio.NewContext(speakerSampleRate)
		}
	}
	s.hz.Store(int64(hz))

	if s.player == nil {
		p, err := s.ctx.NewPlayer(&squareWave{s: s, rate: int64(s.ctx.SampleRate())})
		if err != nil {
			return err
		}
		p.SetBufferSize(50 * time.Millisecond)
		p.SetVolume(0.25)
		s.player = p
	}
	s.player.Play()
	return nil
}

func (s *hostSpeaker) Stop() error {
	s.hz.Store(0)

	s.mu.Lock()
	p := s.player
	s.player = nil
	s.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

// squareWave renders the current tone as 16-bit little-endian stereo.
type squareWave struct {
	s    *hostSpeaker
	rate int64
	pos  int64
}

func (w *squareWave) Read(p []byte) (int, error) {
	hz := w.s.hz.Load()
	n := len(p) - len(p)%4
	for i := 0; i < n; i += 4 {
		var v int16
		if hz > 0 {
			period := w.rate / hz
			if period < 2 {
				period = 2
			}
			if w.pos%period < period/2 {
				v = 0x1fff
			} else {
				v = -0x1fff
			}
		}
		w.pos++

		p[i+0] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = byte(v)
		p[i+3] = byte(v >> 8)
	}
	return n, nil
}
