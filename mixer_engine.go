// mixer_engine.go - Command-driven mixer and realtime playback callback

package autotune

import (
	"log"
	"sync"

	clone "github.com/huandu/go-clone/generic"
)

// mixerTrack is the mixer's private, owned snapshot of a track. Taking a
// snapshot at SendTrack time (rather than holding the caller's *Audio)
// means later mutation of the caller's clip cannot retroactively change an
// already-mixed buffer.
type mixerTrack struct {
	id         uint32
	sampleRate uint32
	left       []float32
	right      []float32
	desiredF0  []float32
	pyin       *PYINData
	muted      bool
	soloed     bool
}

// Mixer assembles per-track corrected audio into a shared stereo mix
// buffer consumed by a realtime hardware callback, driven by a
// single-producer command channel.
type Mixer struct {
	cmds     chan Command
	posOut   chan PositionUpdate
	shutdown chan struct{}

	bufMu      sync.RWMutex
	sampleRate uint32
	tracks     map[uint32]*mixerTrack
	mixLeft    []float32
	mixRight   []float32

	// transportMu guards the small scalar transport state, grouped the
	// way OtoPlayer groups its control operations under one mutex
	// separate from the hot-path read.
	transportMu sync.Mutex
	position    int
	volume      float32
	playing     bool
	stopped     bool
}

// NewMixer creates a mixer adopting the given sample rate (from the first
// loaded clip, per the sample-rate-conversion non-goal) with a
// command-channel buffer of cmdBuffer entries.
func NewMixer(sampleRate uint32, cmdBuffer int) *Mixer {
	if cmdBuffer < 1 {
		cmdBuffer = 1
	}
	return &Mixer{
		cmds:       make(chan Command, cmdBuffer),
		posOut:     make(chan PositionUpdate, 1),
		shutdown:   make(chan struct{}),
		sampleRate: sampleRate,
		tracks:     make(map[uint32]*mixerTrack),
		volume:     1,
	}
}

// Commands returns the send side of the command channel for the UI realm.
func (m *Mixer) Commands() chan<- Command { return m.cmds }

// Positions returns the receive side of the position broadcast channel.
func (m *Mixer) Positions() <-chan PositionUpdate { return m.posOut }

// Done returns a channel closed once a Shutdown command has been processed.
func (m *Mixer) Done() <-chan struct{} { return m.shutdown }

// Run processes commands strictly in channel order until Shutdown. It is
// meant to run in its own goroutine (the "command loop" of the concurrency
// model). After a Shutdown command it keeps receiving and discards every
// later command, so senders never block; it returns when the command
// channel is closed.
func (m *Mixer) Run() {
	for cmd := range m.cmds {
		if m.isStopped() {
			continue
		}
		m.apply(cmd)
	}
}

func (m *Mixer) isStopped() bool {
	m.transportMu.Lock()
	defer m.transportMu.Unlock()
	return m.stopped
}

func (m *Mixer) apply(cmd Command) {
	switch cmd.Kind {
	case CmdSendTrack:
		m.sendTrack(cmd.TrackID, cmd.Audio)
	case CmdRemoveTrack:
		m.removeTrack(cmd.TrackID)
	case CmdClearBuffer:
		m.clearBuffer()
	case CmdPlay:
		m.transportMu.Lock()
		m.playing = true
		m.transportMu.Unlock()
	case CmdStop:
		m.transportMu.Lock()
		m.playing = false
		m.transportMu.Unlock()
	case CmdSetReadPosition:
		m.setReadPosition(cmd.Frame)
	case CmdSetVolume:
		m.setVolume(cmd.Volume)
	case CmdBroadcastPosition:
		m.broadcastPosition()
	case CmdShutdown:
		m.transportMu.Lock()
		m.stopped = true
		m.transportMu.Unlock()
		close(m.shutdown)
	}
}

func snapshotTrack(id uint32, a *Audio) *mixerTrack {
	return &mixerTrack{
		id:         id,
		sampleRate: a.SampleRate,
		left:       clone.Clone(a.Left),
		right:      clone.Clone(a.Right),
		desiredF0:  clone.Clone(a.DesiredF0()),
		pyin:       a.GetPYIN(),
	}
}

func (m *Mixer) sendTrack(id uint32, a *Audio) {
	if a.SampleRate != m.sampleRate && len(m.tracks) > 0 {
		log.Printf("autotune: track %d sample rate %d does not match mixer rate %d: %v",
			id, a.SampleRate, m.sampleRate, ErrSampleRateMismatch)
		return
	}
	if len(m.tracks) == 0 {
		m.sampleRate = a.SampleRate
	}

	t := snapshotTrack(id, a)

	m.bufMu.Lock()
	m.tracks[id] = t
	m.rebuildLocked()
	m.bufMu.Unlock()
}

func (m *Mixer) removeTrack(id uint32) {
	m.bufMu.Lock()
	delete(m.tracks, id)
	m.rebuildLocked()
	m.bufMu.Unlock()
}

func (m *Mixer) clearBuffer() {
	m.bufMu.Lock()
	m.tracks = make(map[uint32]*mixerTrack)
	m.mixLeft = nil
	m.mixRight = nil
	m.bufMu.Unlock()

	m.transportMu.Lock()
	m.position = 0
	m.transportMu.Unlock()
}

// rebuildLocked recomputes the mix buffer from the current track set. The
// caller must hold bufMu for writing. Frame count equals the longest
// track; corrected (PSOLA) channels are substituted when a track carries
// both a desired-f0 contour and completed PYIN data, otherwise the raw
// channels are used. No normalization: gain is the callback's job.
func (m *Mixer) rebuildLocked() {
	length := 0
	for _, t := range m.tracks {
		if n := len(t.left); n > length {
			length = n
		}
	}

	left := make([]float32, length)
	right := make([]float32, length)

	for _, t := range m.tracks {
		if t.muted {
			continue
		}
		l, r := t.left, t.right
		if t.desiredF0 != nil && t.pyin != nil {
			l = ShiftPitch(l, t.sampleRate, t.pyin, t.desiredF0, PSOLAOptions{})
			r = ShiftPitch(r, t.sampleRate, t.pyin, t.desiredF0, PSOLAOptions{})
		}
		for i := 0; i < len(l) && i < length; i++ {
			left[i] += l[i]
		}
		for i := 0; i < len(r) && i < length; i++ {
			right[i] += r[i]
		}
	}

	m.mixLeft = left
	m.mixRight = right
}

func (m *Mixer) setReadPosition(frame int) {
	m.bufMu.RLock()
	length := len(m.mixLeft)
	m.bufMu.RUnlock()

	requested := frame
	if frame < 0 {
		frame = 0
	}
	if frame > length {
		frame = length
	}
	if frame != requested {
		log.Printf("autotune: read position %d out of range [0,%d], clamped to %d", requested, length, frame)
	}

	m.transportMu.Lock()
	m.position = frame
	m.transportMu.Unlock()
}

func (m *Mixer) setVolume(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.transportMu.Lock()
	m.volume = v
	m.transportMu.Unlock()
}

func (m *Mixer) broadcastPosition() {
	m.transportMu.Lock()
	pos := m.position
	m.transportMu.Unlock()

	select {
	case m.posOut <- PositionUpdate{Frame: pos}:
	default:
		// UI is not currently reading; the broadcast reflects a
		// recent-past value per the ordering design, so a dropped
		// stale update is acceptable.
	}
}

// Fill is the hardware audio callback. It writes L*volume into the first
// output channel, R*volume into the second, and zero into any remaining
// channels, advancing position by the number of frames written. It never
// blocks for long, allocates, or calls user code, and never fails: any
// internal inconsistency degrades to silence for that buffer.
func (m *Mixer) Fill(out []float32, channels int) {
	if channels < 1 {
		return
	}
	frames := len(out) / channels

	m.bufMu.RLock()
	left, right := m.mixLeft, m.mixRight
	m.bufMu.RUnlock()

	m.transportMu.Lock()
	playing := m.playing && !m.stopped
	position := m.position
	volume := m.volume
	if playing {
		advance := frames
		if position+advance > len(left) {
			advance = len(left) - position
		}
		if advance > 0 {
			m.position += advance
		}
	}
	m.transportMu.Unlock()

	for frame := 0; frame < frames; frame++ {
		base := frame * channels
		var l, r float32
		if playing && position+frame < len(left) {
			l = left[position+frame] * volume
			r = right[position+frame] * volume
		}
		out[base] = l
		if channels > 1 {
			out[base+1] = r
		}
		for c := 2; c < channels; c++ {
			out[base+c] = 0
		}
	}
}
