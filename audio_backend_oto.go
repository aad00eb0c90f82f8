//go:build !headless

// audio_backend_oto.go - oto/v3 realtime audio output sink

package autotune

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoSink drives hardware playback by pulling interleaved float32 frames
// from a Mixer through oto's Read-shaped callback contract. Mixer lookup
// is atomic so the realtime Read path never blocks on the control mutex.
type OtoSink struct {
	ctx       *oto.Context
	player    *oto.Player
	mixer     atomic.Pointer[Mixer] // Atomic for lock-free Read()
	channels  int
	sampleBuf []float32 // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // Only for setup/control operations
}

// NewOtoSink opens an oto context at the given sample rate and channel
// count, float32 little-endian samples throughout.
func NewOtoSink(sampleRate, channels int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAudioDeviceUnavailable, err)
	}
	<-ready

	return &OtoSink{ctx: ctx, channels: channels, started: false}, nil
}

// Attach connects a mixer as this sink's sample source and creates the
// underlying player. Call once before Start.
func (s *OtoSink) Attach(m *Mixer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.mixer.Store(m)
	s.player = s.ctx.NewPlayer(s)
	s.sampleBuf = make([]float32, 4096)
}

// Read implements io.Reader for oto: it fills p with float32 samples
// pulled from the attached mixer, or silence if none is attached.
func (s *OtoSink) Read(p []byte) (n int, err error) {
	m := s.mixer.Load()
	if m == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4
	if len(s.sampleBuf) < numSamples {
		s.sampleBuf = make([]float32, numSamples)
	}
	samples := s.sampleBuf[:numSamples]

	m.Fill(samples, s.channels)

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (s *OtoSink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

func (s *OtoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started && s.player != nil {
		s.player.Pause()
		s.started = false
	}
}

func (s *OtoSink) Close() {
	s.Stop()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
}

func (s *OtoSink) IsStarted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.started
}
