// pyin_estimator_test.go - Unit tests for the PYIN fundamental frequency estimator

package autotune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineWave(freq float64, sr uint32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sr)))
	}
	return out
}

func TestComputePYIN_PureSineDetectsFrequency(t *testing.T) {
	const sr = 44100
	const freq = 220.0
	signal := sineWave(freq, sr, sr) // one second

	data, err := ComputePYIN(signal, sr, DefaultPYINOptions())
	require.NoError(t, err)
	require.Greater(t, data.NumFrames(), 0)

	voicedCount := 0
	for i, voiced := range data.VoicedFlag {
		if !voiced {
			continue
		}
		voicedCount++
		require.InDelta(t, freq, float64(data.F0[i]), 5.0, "frame %d f0 out of tolerance", i)
	}
	require.Greater(t, voicedCount, data.NumFrames()/2)
}

func TestComputePYIN_SilenceIsUnvoiced(t *testing.T) {
	const sr = 44100
	signal := make([]float32, sr)

	data, err := ComputePYIN(signal, sr, DefaultPYINOptions())
	require.NoError(t, err)

	for i, voiced := range data.VoicedFlag {
		require.False(t, voiced, "frame %d should be unvoiced in silence", i)
		require.Equal(t, float32(0), data.F0[i])
	}
}

func TestComputePYIN_InvalidPitchRange(t *testing.T) {
	opts := DefaultPYINOptions()
	opts.FMin = 800
	opts.FMax = 65

	_, err := ComputePYIN(make([]float32, 4096), 44100, opts)
	require.ErrorIs(t, err, ErrInvalidPitchRange)
}

func TestComputePYIN_ShortSignalReturnsEmpty(t *testing.T) {
	data, err := ComputePYIN(make([]float32, 10), 44100, DefaultPYINOptions())
	require.NoError(t, err)
	require.Equal(t, 0, data.NumFrames())
}

func TestPYINData_CloneIsIndependent(t *testing.T) {
	data := &PYINData{F0: []float32{100, 200}, VoicedFlag: []bool{true, true}}
	clone := data.Clone()
	clone.F0[0] = 999

	require.Equal(t, float32(100), data.F0[0])
	require.Equal(t, float32(999), clone.F0[0])
}

func TestPYINData_Smooth_AveragesOverWindow(t *testing.T) {
	data := &PYINData{
		F0:         []float32{100, 102, 98, 104},
		VoicedFlag: []bool{true, true, true, true},
	}

	out := data.Smooth(2)
	require.Len(t, out, 4)
	require.InDelta(t, 100, out[0], 1e-6)
	require.InDelta(t, 101, out[1], 1e-6)
	require.InDelta(t, 100, out[2], 1e-6)
	require.InDelta(t, 101, out[3], 1e-6)

	// The raw contour is untouched.
	require.Equal(t, float32(100), data.F0[0])
}

func TestPYINData_Smooth_ResetsOnUnvoiced(t *testing.T) {
	data := &PYINData{
		F0:         []float32{200, 0, 300},
		VoicedFlag: []bool{true, false, true},
	}

	out := data.Smooth(4)
	require.InDelta(t, 200, out[0], 1e-6)
	require.Equal(t, float32(0), out[1])
	require.InDelta(t, 300, out[2], 1e-6) // averaging window reset by the gap
}

func TestPYINData_Smooth_NilIsSafe(t *testing.T) {
	var data *PYINData
	require.Nil(t, data.Smooth(5))
}

func TestPYINData_FrameForSample(t *testing.T) {
	data := &PYINData{F0: make([]float32, 5), HopLength: 512}
	require.Equal(t, 0, data.FrameForSample(0))
	require.Equal(t, 1, data.FrameForSample(512))
	require.Equal(t, 4, data.FrameForSample(1_000_000))
}
