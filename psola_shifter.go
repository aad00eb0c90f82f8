// psola_shifter.go - Pitch-synchronous overlap-add (PSOLA) pitch shifter

package autotune

import "math"

// PSOLAOptions carries optional frame and hop sizes. ShiftPitch does not
// read these fields: it always uses the hop and frame length recorded in the
// PYINData, and a fallback grain period of sr/100 for unvoiced marks.
type PSOLAOptions struct {
	FrameSize int
	HopSize   int
}

// ShiftPitch re-synthesizes mono audio at a new pitch contour while
// preserving duration and local waveform character (formants), per the
// pitch-mark / overlap-add procedure in the component design.
func ShiftPitch(input []float32, sr uint32, pyin *PYINData, targetF0 []float32, _ PSOLAOptions) []float32 {
	n := len(input)
	out := make([]float32, n)

	if pyin == nil || pyin.NumFrames() == 0 || n < pyin.FrameLength {
		copy(out, input)
		return out
	}

	marks := pitchMarks(n, sr, pyin)
	if len(marks) == 0 {
		copy(out, input)
		return out
	}

	shifted := shiftedMarks(marks, pyin, targetF0)

	weight := make([]float64, n)

	fallbackPeriod := int(float64(sr) / 100.0)
	if fallbackPeriod < 1 {
		fallbackPeriod = 1
	}

	for k, m := range marks {
		frame := pyin.FrameForSample(m)
		fSrc := float64(pyin.F0[frame])

		period := fallbackPeriod
		if pyin.VoicedFlag[frame] && fSrc > 0 {
			period = int(math.Round(float64(sr) / fSrc))
			if period < 1 {
				period = 1
			}
		}

		addGrain(input, out, weight, m, shifted[k], period)
	}

	for i := 0; i < n; i++ {
		if weight[i] > 0 {
			out[i] = float32(float64(out[i]) / weight[i])
		}
	}

	return out
}

// pitchMarks walks the source signal starting at the first voiced frame,
// placing the next mark at mark + round(sr / f0_at(mark)); an unvoiced
// frame advances by one hop until a voiced frame is found, or marking stops
// if none remains.
func pitchMarks(n int, sr uint32, pyin *PYINData) []int {
	start := -1
	for fi, voiced := range pyin.VoicedFlag {
		if voiced {
			start = fi * pyin.HopLength
			break
		}
	}
	if start < 0 {
		return nil
	}

	var marks []int
	mark := start
	for mark < n {
		frame := pyin.FrameForSample(mark)
		if !pyin.VoicedFlag[frame] {
			advanced := false
			for probe := mark; probe < n; probe += pyin.HopLength {
				pf := pyin.FrameForSample(probe)
				if pyin.VoicedFlag[pf] {
					mark = probe
					frame = pf
					advanced = true
					break
				}
			}
			if !advanced {
				break
			}
		}

		marks = append(marks, mark)
		f0 := float64(pyin.F0[frame])
		if f0 <= 0 {
			break
		}
		step := int(math.Round(float64(sr) / f0))
		if step < 1 {
			step = 1
		}
		mark += step
	}
	return marks
}

// shiftedMarks computes the destination pitch-mark sequence: shifted[0] =
// marks[0], shifted[k] = shifted[k-1] + round((marks[k]-marks[k-1]) * alpha_k),
// where alpha_k = f_src/f_tgt (or 1 if the target is unvoiced/non-positive).
func shiftedMarks(marks []int, pyin *PYINData, targetF0 []float32) []int {
	shifted := make([]int, len(marks))
	if len(marks) == 0 {
		return shifted
	}
	shifted[0] = marks[0]

	for k := 1; k < len(marks); k++ {
		frame := pyin.FrameForSample(marks[k])
		fSrc := float64(pyin.F0[frame])

		alpha := 1.0
		var fTgt float64
		if frame < len(targetF0) {
			fTgt = float64(targetF0[frame])
		}
		if pyin.VoicedFlag[frame] && fTgt > 0 && fSrc > 0 {
			alpha = fSrc / fTgt
		}

		delta := marks[k] - marks[k-1]
		shifted[k] = shifted[k-1] + int(math.Round(float64(delta)*alpha))
	}
	return shifted
}

// addGrain extracts a Hann-windowed grain of length 2*period centered at
// src, clipped to signal bounds, and accumulates it into dst centered at
// dst0, tracking per-sample window coverage in weight for normalization.
func addGrain(input, dst []float32, weight []float64, src, dst0, period int) {
	n := len(input)
	half := period

	for offset := -half; offset < half; offset++ {
		srcIdx := src + offset
		dstIdx := dst0 + offset
		if srcIdx < 0 || srcIdx >= n || dstIdx < 0 || dstIdx >= n {
			continue
		}
		w := hann(offset, half)
		dst[dstIdx] += input[srcIdx] * float32(w)
		weight[dstIdx] += w
	}
}

// hann evaluates a Hann window of half-width half at the given signed offset
// from its center.
func hann(offset, half int) float64 {
	if half == 0 {
		return 1
	}
	x := float64(offset+half) / float64(2*half)
	return 0.5 - 0.5*math.Cos(2*math.Pi*x)
}
