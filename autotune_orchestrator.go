// autotune_orchestrator.go - Wires PYIN + PSOLA + scale model for a stereo clip

package autotune

import "golang.org/x/sync/errgroup"

// SnapToScale maps each voiced frame of a measured f0 contour to the
// nearest MIDI pitch in the given key's scale (spanning the octave range
// implied by [fmin,fmax]), converting back to Hz. Unvoiced frames map to 0.
func SnapToScale(f0 []float32, key Key, fmin, fmax float64) []float32 {
	o1 := octaveOf(fmin)
	o2 := octaveOf(fmax)
	scaleMIDI := key.ScaleMIDI(o1, o2)

	out := make([]float32, len(f0))
	for i, f := range f0 {
		if f <= 0 {
			continue
		}
		midi := FrequencyToMIDI(float64(f))
		nearest := nearestMIDI(scaleMIDI, midi)
		out[i] = float32(MIDIToFrequency(float64(nearest)))
	}
	return out
}

func octaveOf(freq float64) int {
	// Octave numbering consistent with NoteNameToMIDI: MIDI m sits in
	// octave (m/12)-1.
	midi := FrequencyToMIDI(freq)
	return int(midi/12) - 1
}

func nearestMIDI(candidates []int, target float64) int {
	best := candidates[0]
	bestDist := absFloat(float64(best) - target)
	for _, c := range candidates[1:] {
		d := absFloat(float64(c) - target)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ComputeShiftedAudio runs PSOLA on the left and right channels
// independently, using PYIN computed from the mono mixdown, and returns a
// new Audio at the same sample rate with an empty PYIN slot. It requires
// the clip to already carry a desired-f0 contour and a completed PYIN pass.
func ComputeShiftedAudio(audio *Audio) (*Audio, error) {
	desired := audio.DesiredF0()
	if desired == nil {
		return nil, ErrMissingDesiredF0
	}

	pyin := audio.GetPYIN()
	if pyin == nil {
		return nil, ErrMissingPYIN
	}

	left := make([]float32, audio.Len())
	right := make([]float32, audio.Len())

	var g errgroup.Group
	g.Go(func() error {
		left = ShiftPitch(audio.Left, audio.SampleRate, pyin, desired, PSOLAOptions{})
		return nil
	})
	g.Go(func() error {
		right = ShiftPitch(audio.Right, audio.SampleRate, pyin, desired, PSOLAOptions{})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Audio{SampleRate: audio.SampleRate, Left: left, Right: right}, nil
}
