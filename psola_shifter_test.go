// psola_shifter_test.go - Unit tests for the PSOLA pitch shifter

package autotune

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShiftPitch_PreservesLength(t *testing.T) {
	const sr = 44100
	signal := sineWave(220, sr, sr)

	pyin, err := ComputePYIN(signal, sr, DefaultPYINOptions())
	require.NoError(t, err)

	target := make([]float32, pyin.NumFrames())
	for i := range target {
		target[i] = 440
	}

	out := ShiftPitch(signal, sr, pyin, target, PSOLAOptions{})
	require.Equal(t, len(signal), len(out))
}

func TestShiftPitch_OctaveUpRaisesDetectedFrequency(t *testing.T) {
	const sr = 44100
	const srcFreq = 220.0
	signal := sineWave(srcFreq, sr, sr)

	pyin, err := ComputePYIN(signal, sr, DefaultPYINOptions())
	require.NoError(t, err)

	target := make([]float32, pyin.NumFrames())
	for i := range target {
		target[i] = srcFreq * 2
	}

	out := ShiftPitch(signal, sr, pyin, target, PSOLAOptions{})

	reanalyzed, err := ComputePYIN(out, sr, DefaultPYINOptions())
	require.NoError(t, err)

	// Skip edge frames where grain overlap is incomplete.
	margin := 4
	voicedCount := 0
	for i := margin; i < reanalyzed.NumFrames()-margin; i++ {
		if !reanalyzed.VoicedFlag[i] {
			continue
		}
		voicedCount++
		require.InDelta(t, srcFreq*2, float64(reanalyzed.F0[i]), 25.0, "frame %d shifted f0 out of tolerance", i)
	}
	require.Greater(t, voicedCount, 0)
}

func TestShiftPitch_NilPYINCopiesInput(t *testing.T) {
	signal := []float32{0.1, 0.2, 0.3, 0.4}
	out := ShiftPitch(signal, 44100, nil, nil, PSOLAOptions{})
	require.Equal(t, signal, out)
}

func TestShiftPitch_ShortSignalCopiesInput(t *testing.T) {
	pyin := &PYINData{FrameLength: 2048, HopLength: 512, F0: []float32{100}, VoicedFlag: []bool{true}}
	signal := make([]float32, 10)
	for i := range signal {
		signal[i] = float32(i)
	}
	out := ShiftPitch(signal, 44100, pyin, []float32{100}, PSOLAOptions{})
	require.Equal(t, signal, out)
}
