// errors.go - Error kinds raised by the autotune core

package autotune

import "errors"

// Sentinel errors for the conditions enumerated in the error handling design.
// Callers should compare with errors.Is; wrapped forms add context via %w.
var (
	ErrInvalidNoteName        = errors.New("autotune: invalid note name")
	ErrInvalidPitchRange      = errors.New("autotune: invalid pitch range")
	ErrChannelCountMismatch   = errors.New("autotune: channel count mismatch")
	ErrSampleRateMismatch     = errors.New("autotune: sample rate mismatch")
	ErrMissingPYIN            = errors.New("autotune: missing PYIN analysis")
	ErrMissingDesiredF0       = errors.New("autotune: missing desired f0 contour")
	ErrAudioDeviceUnavailable = errors.New("autotune: audio device unavailable")
)
