// audio_clip.go - Stereo audio clip container with cached PYIN and desired-f0

package autotune

import (
	"log"
	"sync"
	"time"
)

// Audio is a stereo PCM clip with a shared, write-once PYIN analysis slot
// and an optional user-drawn desired-f0 contour. The source buffers are
// never mutated by analysis or autotune; corrected output is always a
// separate derived clip.
type Audio struct {
	SampleRate uint32
	Left       []float32
	Right      []float32

	mu        sync.RWMutex
	pyin      *PYINData
	computing bool
	reqGen    uint64

	desiredMu sync.RWMutex
	desiredF0 []float32
}

// NewAudio constructs a stereo clip, enforcing that both channels have
// equal length.
func NewAudio(sampleRate uint32, left, right []float32) (*Audio, error) {
	if len(left) != len(right) {
		return nil, ErrChannelCountMismatch
	}
	return &Audio{SampleRate: sampleRate, Left: left, Right: right}, nil
}

// Len returns the number of frames (samples per channel).
func (a *Audio) Len() int {
	return len(a.Left)
}

// MonoMixdown returns (L+R)/2 for PYIN analysis.
func (a *Audio) MonoMixdown() []float32 {
	mono := make([]float32, a.Len())
	for i := range mono {
		mono[i] = (a.Left[i] + a.Right[i]) / 2
	}
	return mono
}

// Interleaved produces L0,R0,L1,R1,... samples.
func (a *Audio) Interleaved() []float32 {
	out := make([]float32, 2*a.Len())
	for i := 0; i < a.Len(); i++ {
		out[2*i] = a.Left[i]
		out[2*i+1] = a.Right[i]
	}
	return out
}

// SetDesiredF0 stores the user-requested fundamental per analysis frame.
func (a *Audio) SetDesiredF0(f0 []float32) {
	a.desiredMu.Lock()
	defer a.desiredMu.Unlock()
	a.desiredF0 = f0
}

// DesiredF0 returns the current desired-f0 contour, or nil if absent.
func (a *Audio) DesiredF0() []float32 {
	a.desiredMu.RLock()
	defer a.desiredMu.RUnlock()
	return a.desiredF0
}

// PerformPYINBackground spawns one worker that computes PYIN from the mono
// mixdown and writes it into the shared slot under a writer lock. A second
// call while one is already running, or after the slot is already
// populated, is a no-op.
func (a *Audio) PerformPYINBackground(opts PYINOptions) {
	a.mu.Lock()
	if a.computing || a.pyin != nil {
		a.mu.Unlock()
		return
	}
	a.computing = true
	a.reqGen++
	gen := a.reqGen
	a.mu.Unlock()

	go a.runPYIN(gen, opts)
}

func (a *Audio) runPYIN(gen uint64, opts PYINOptions) {
	mono := a.MonoMixdown()
	sr := a.SampleRate

	data, err := ComputePYIN(mono, sr, opts)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.computing = false
	if gen != a.reqGen {
		// Superseded by an invalidation (insert/add) before completion;
		// discard per the cancellation policy in the concurrency model.
		return
	}
	if err != nil {
		log.Printf("autotune: PYIN analysis failed: %v", err)
		return
	}
	a.pyin = data
}

// GetPYIN returns a snapshot clone of the current PYIN slot, or nil if not
// yet computed.
func (a *Audio) GetPYIN() *PYINData {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pyin.Clone()
}

// GetPYINBlocking busy-waits with a short sleep until the slot is populated.
func (a *Audio) GetPYINBlocking() *PYINData {
	for {
		if d := a.GetPYIN(); d != nil {
			return d
		}
		time.Sleep(time.Millisecond)
	}
}

// invalidatePYIN resets the analysis slot to empty and bumps the request
// generation so any in-flight computation is discarded on completion.
func (a *Audio) invalidatePYIN() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pyin = nil
	a.reqGen++
}

func extendChannel(ch []float32, need int) []float32 {
	if len(ch) >= need {
		return ch
	}
	grown := make([]float32, need)
	copy(grown, ch)
	return grown
}

// InsertAudioAt extends self if needed, then overwrites self[pos:pos+len(other)]
// with other's channels. Always succeeds; a pos beyond the current length
// extends with silence rather than failing. Invalidates the PYIN slot.
func (a *Audio) InsertAudioAt(pos int, other *Audio) {
	need := pos + other.Len()
	a.Left = extendChannel(a.Left, need)
	a.Right = extendChannel(a.Right, need)

	copy(a.Left[pos:pos+other.Len()], other.Left)
	copy(a.Right[pos:pos+other.Len()], other.Right)

	a.invalidatePYIN()
}

// AddAudioAt extends self if needed, then sample-wise adds other's channels
// into self[pos:pos+len(other)]. Invalidates the PYIN slot.
func (a *Audio) AddAudioAt(pos int, other *Audio) {
	need := pos + other.Len()
	a.Left = extendChannel(a.Left, need)
	a.Right = extendChannel(a.Right, need)

	for i := 0; i < other.Len(); i++ {
		a.Left[pos+i] += other.Left[i]
		a.Right[pos+i] += other.Right[i]
	}

	a.invalidatePYIN()
}
