// autotune_orchestrator_test.go - Unit tests for scale snapping and PSOLA wiring

package autotune

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapToScale_SnapsToNearestCMajorNote(t *testing.T) {
	key := NewKey(NoteC, ScaleMajor)

	// 277.18 Hz is C#4 (MIDI ~61), not in C major; its nearest scale
	// neighbor is C4 (MIDI 60, 261.63 Hz).
	f0 := []float32{277.18}
	out := SnapToScale(f0, key, 80, 1000)

	require.Len(t, out, 1)
	midi := FrequencyToMIDI(float64(out[0]))
	require.InDelta(t, 60, midi, 0.01)
}

func TestSnapToScale_UnvoicedFramesStayZero(t *testing.T) {
	key := NewKey(NoteA, ScaleMinor)
	f0 := []float32{0, 440, 0}
	out := SnapToScale(f0, key, 80, 1000)

	require.Equal(t, float32(0), out[0])
	require.Equal(t, float32(0), out[2])
	require.NotEqual(t, float32(0), out[1])
}

func TestComputeShiftedAudio_RequiresDesiredF0(t *testing.T) {
	a, err := NewAudio(44100, []float32{0, 0}, []float32{0, 0})
	require.NoError(t, err)

	_, err = ComputeShiftedAudio(a)
	require.ErrorIs(t, err, ErrMissingDesiredF0)
}

func TestComputeShiftedAudio_RequiresPYIN(t *testing.T) {
	a, err := NewAudio(44100, []float32{0, 0}, []float32{0, 0})
	require.NoError(t, err)
	a.SetDesiredF0([]float32{440})

	_, err = ComputeShiftedAudio(a)
	require.ErrorIs(t, err, ErrMissingPYIN)
}

func TestComputeShiftedAudio_ProducesSameLengthClip(t *testing.T) {
	signal := sineWave(220, 44100, 44100)
	a, err := NewAudio(44100, signal, signal)
	require.NoError(t, err)

	a.PerformPYINBackground(DefaultPYINOptions())
	pyin := a.GetPYINBlocking()

	key := NewKey(NoteC, ScaleMajor)
	a.SetDesiredF0(SnapToScale(pyin.F0, key, 80, 1000))

	out, err := ComputeShiftedAudio(a)
	require.NoError(t, err)
	require.Equal(t, a.Len(), out.Len())
	require.Equal(t, a.SampleRate, out.SampleRate)
}
