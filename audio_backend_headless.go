//go:build headless

// audio_backend_headless.go - no-op audio sink for headless test environments

package autotune

// OtoSink stands in for the real hardware sink when built with the
// headless tag: Attach records the mixer but Read never actually queries
// audio hardware.
type OtoSink struct {
	started bool
	mixer   *Mixer
}

// NewOtoSink ignores sampleRate/channels in the headless build.
func NewOtoSink(sampleRate, channels int) (*OtoSink, error) {
	return &OtoSink{}, nil
}

func (s *OtoSink) Attach(m *Mixer) {
	s.mixer = m
}

func (s *OtoSink) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (s *OtoSink) Start() {
	s.started = true
}

func (s *OtoSink) Stop() {
	s.started = false
}

func (s *OtoSink) Close() {
	s.started = false
}

func (s *OtoSink) IsStarted() bool {
	return s.started
}
