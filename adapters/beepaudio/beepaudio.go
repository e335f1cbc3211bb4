// Package beepaudio provides a theoraclip.AudioSinkFactory backed by
// github.com/faiface/beep, the same library and streamer pattern the
// original player example used for its own audio playback.
package beepaudio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/zimwip/theoraclip"
)

// speakerBufferWindow is how much audio beep's speaker.Init buffers ahead,
// the same window the original player example used.
const speakerBufferWindow = time.Second / 10

// Factory creates a Sink for each Clip. The speaker device is initialized
// once, the first time Create is called, since beep.speaker.Init is a
// process-global call.
type Factory struct {
	mu       sync.Mutex
	initDone bool
}

// New returns a Factory. A zero Factory is also directly usable.
func New() *Factory { return &Factory{} }

func (f *Factory) Create(clip *theoraclip.Clip, channels, sampleRate int) (theoraclip.AudioSink, error) {
	f.mu.Lock()
	if !f.initDone {
		sr := beep.SampleRate(sampleRate)
		if err := speaker.Init(sr, sr.N(speakerBufferWindow)); err != nil {
			f.mu.Unlock()
			return nil, err
		}
		f.initDone = true
	}
	f.mu.Unlock()

	sink := &Sink{channels: channels}
	speaker.Play(sink.streamer())
	return sink, nil
}

// Sink buffers delivered AudioPackets into a queue a beep.Streamer drains
// from the speaker's own callback goroutine, mirroring the original
// player's streamSamples channel-backed beep.StreamerFunc.
type Sink struct {
	channels int

	mu     sync.Mutex
	pcm    []float32
	frame  int
	closed bool
}

func (s *Sink) Deliver(packets []*theoraclip.AudioPacket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range packets {
		s.pcm = append(s.pcm, p.Samples()...)
	}
}

func (s *Sink) streamer() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		s.mu.Lock()
		defer s.mu.Unlock()

		for n = 0; n < len(samples); n++ {
			idx := n * s.channels
			if idx+1 >= len(s.pcm) {
				s.pcm = s.pcm[idx:]
				if s.closed {
					return n, n > 0
				}
				return n, true
			}
			samples[n][0] = float64(s.pcm[idx])
			if s.channels > 1 {
				samples[n][1] = float64(s.pcm[idx+1])
			} else {
				samples[n][1] = samples[n][0]
			}
		}

		consumed := n * s.channels
		if consumed <= len(s.pcm) {
			s.pcm = s.pcm[consumed:]
		}
		return n, true
	})
}

func (s *Sink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
