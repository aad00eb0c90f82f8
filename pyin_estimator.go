// pyin_estimator.go - Probabilistic YIN (PYIN) fundamental frequency estimator

package autotune

import (
	"math"

	clone "github.com/huandu/go-clone/generic"
)

// PYINOptions configures one PYIN analysis pass. ComputePYIN replaces
// zero-valued fields with the defaults that DefaultPYINOptions returns.
type PYINOptions struct {
	FrameLength int
	HopLength   int
	FMin        float64
	FMax        float64
	Threshold   float64
	Sigma       float64
}

// DefaultPYINOptions returns the default analysis parameters from the
// component design (frame 2048, hop 512, 65-800 Hz, threshold 0.1, sigma 0.1).
func DefaultPYINOptions() PYINOptions {
	return PYINOptions{
		FrameLength: DefaultFrameLength,
		HopLength:   DefaultHopLength,
		FMin:        DefaultFMin,
		FMax:        DefaultFMax,
		Threshold:   DefaultThreshold,
		Sigma:       DefaultSigma,
	}
}

func (o PYINOptions) withDefaults() PYINOptions {
	if o.FrameLength == 0 {
		o.FrameLength = DefaultFrameLength
	}
	if o.HopLength == 0 {
		o.HopLength = DefaultHopLength
	}
	if o.FMin == 0 {
		o.FMin = DefaultFMin
	}
	if o.FMax == 0 {
		o.FMax = DefaultFMax
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Sigma == 0 {
		o.Sigma = DefaultSigma
	}
	return o
}

// PYINData holds three parallel per-frame sequences produced by one PYIN pass.
type PYINData struct {
	F0          []float32
	VoicedFlag  []bool
	VoicedProb  []float32
	SampleRate  uint32
	HopLength   int
	FrameLength int
}

// NumFrames returns the number of analysis frames.
func (d *PYINData) NumFrames() int {
	if d == nil {
		return 0
	}
	return len(d.F0)
}

// FrameForSample returns the analysis frame index whose window contains the
// given sample position, clamped to the valid frame range.
func (d *PYINData) FrameForSample(sample int) int {
	if d == nil || len(d.F0) == 0 || d.HopLength <= 0 {
		return 0
	}
	frame := sample / d.HopLength
	if frame < 0 {
		return 0
	}
	if frame >= len(d.F0) {
		return len(d.F0) - 1
	}
	return frame
}

// Clone returns a deep copy of the PYIN data, suitable for handing a
// snapshot to a reader while a writer-once slot stays immutable.
func (d *PYINData) Clone() *PYINData {
	if d == nil {
		return nil
	}
	return clone.Clone(d)
}

// Smooth returns a display-stabilized copy of the f0 contour: a ring-buffer
// moving average over the last window voiced values, resetting on each
// unvoiced frame so pitch doesn't drag across silence. It does not mutate d
// or feed back into PSOLA/snapping, which still operate on the raw
// per-frame estimate.
func (d *PYINData) Smooth(window int) []float32 {
	if d == nil || len(d.F0) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}

	out := make([]float32, len(d.F0))
	ring := make([]float64, window)
	cursor := 0
	filled := 0

	for i, voiced := range d.VoicedFlag {
		if !voiced || d.F0[i] <= 0 {
			for j := range ring {
				ring[j] = 0
			}
			cursor = 0
			filled = 0
			out[i] = 0
			continue
		}

		ring[cursor] = float64(d.F0[i])
		cursor = (cursor + 1) % window
		if filled < window {
			filled++
		}

		var sum float64
		for j := 0; j < filled; j++ {
			sum += ring[j]
		}
		out[i] = float32(sum / float64(filled))
	}

	return out
}

// candidate is one local minimum of the cumulative mean normalized
// difference function found within a single analysis frame.
type candidate struct {
	freq   float64
	weight float64
}

// ComputePYIN runs the PYIN algorithm over a mono signal and returns the
// per-frame f0, voicing flag and voicing probability.
func ComputePYIN(mono []float32, sampleRate uint32, opts PYINOptions) (*PYINData, error) {
	opts = opts.withDefaults()
	if opts.FMin >= opts.FMax || !(opts.FMin > 0) || !(opts.FMax > 0) {
		return nil, ErrInvalidPitchRange
	}

	n := len(mono)
	frameLength := opts.FrameLength
	hop := opts.HopLength

	data := &PYINData{SampleRate: sampleRate, HopLength: hop, FrameLength: frameLength}
	if n < frameLength {
		return data, nil
	}

	numFrames := 1 + (n-frameLength)/hop
	data.F0 = make([]float32, numFrames)
	data.VoicedFlag = make([]bool, numFrames)
	data.VoicedProb = make([]float32, numFrames)

	sr := float64(sampleRate)
	maxLag := frameLength - 1
	if srLag := int(sr / opts.FMin); srLag < maxLag {
		maxLag = srLag
	}
	minLag := int(sr / opts.FMax)

	var prevF0 float64
	havePrev := false

	diff := make([]float64, maxLag+1)
	cmnd := make([]float64, maxLag+1)

	for fi := 0; fi < numFrames; fi++ {
		start := fi * hop
		frame := mono[start : start+frameLength]

		differenceFunction(frame, maxLag, diff)
		cumulativeMeanNormalizedDifference(diff, cmnd)

		candidates := findCandidates(cmnd, minLag, maxLag, opts.Threshold, sr)

		pVoiced := 0.0
		for _, c := range candidates {
			pVoiced += c.weight
		}
		if pVoiced > 1 {
			pVoiced = 1
		}

		rms := rmsEnergy(frame)
		voiced := pVoiced >= voicingProbFloor && rms > rmsEnergyFloor

		var f0 float64
		if voiced && len(candidates) > 0 {
			f0 = selectCandidate(candidates, prevF0, havePrev, opts.Sigma)
			prevF0 = f0
			havePrev = true
		} else {
			voiced = false
		}

		data.F0[fi] = float32(f0)
		data.VoicedFlag[fi] = voiced
		data.VoicedProb[fi] = float32(pVoiced)
	}

	return data, nil
}

// differenceFunction computes d[tau] for tau in [0, maxLag] per the
// component design: d[tau] = sum_{j=0}^{W-1} (x[j]-x[j+tau])^2, d[0]=0.
func differenceFunction(frame []float32, maxLag int, out []float64) {
	w := len(frame) - maxLag
	out[0] = 0
	for tau := 1; tau <= maxLag; tau++ {
		var sum float64
		for j := 0; j < w; j++ {
			delta := float64(frame[j] - frame[j+tau])
			sum += delta * delta
		}
		out[tau] = sum
	}
}

// cumulativeMeanNormalizedDifference computes cmnd from the difference
// function: cmnd[0]=1, cmnd[tau] = d[tau]*tau / sum_{k=1..tau} d[k].
func cumulativeMeanNormalizedDifference(diff []float64, out []float64) {
	out[0] = 1
	var runningSum float64
	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum == 0 {
			out[tau] = 1
		} else {
			out[tau] = diff[tau] * float64(tau) / runningSum
		}
	}
}

// findCandidates scans tau in [minLag, maxLag] for local minima of cmnd
// below threshold, refining each to a sub-sample lag via parabolic
// interpolation.
func findCandidates(cmnd []float64, minLag, maxLag int, threshold float64, sr float64) []candidate {
	var out []candidate
	if minLag < 1 {
		minLag = 1
	}
	for tau := minLag; tau <= maxLag; tau++ {
		if tau-1 < 0 || tau+1 >= len(cmnd) {
			continue
		}
		if cmnd[tau] >= threshold {
			continue
		}
		if cmnd[tau] > cmnd[tau-1] || cmnd[tau] > cmnd[tau+1] {
			continue
		}
		tauHat := parabolicInterpolate(cmnd, tau)
		if tauHat <= 0 {
			continue
		}
		weight := 1 - cmnd[tau]
		if weight < 0 {
			weight = 0
		}
		if weight > 1 {
			weight = 1
		}
		out = append(out, candidate{freq: sr / tauHat, weight: weight})
	}
	return out
}

// parabolicInterpolate fits a parabola through (tau-1,tau,tau+1) of y and
// returns the sub-sample location of its vertex.
func parabolicInterpolate(y []float64, tau int) float64 {
	a := y[tau-1]
	b := y[tau]
	c := y[tau+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(tau)
	}
	offset := 0.5 * (a - c) / denom
	return float64(tau) + offset
}

// selectCandidate picks the candidate maximizing weight * N(log2(f); log2(fPrev), sigma)
// when a previous voiced f0 exists. Otherwise it takes the first (shortest-lag)
// candidate: on a periodic signal the dips at two or three periods are as deep
// as the first, so weight alone would settle on a subharmonic.
func selectCandidate(candidates []candidate, prevF0 float64, havePrev bool, sigma float64) float64 {
	best := candidates[0]
	if !havePrev || prevF0 <= 0 {
		return best.freq
	}
	bestScore := math.Inf(-1)
	for _, c := range candidates {
		score := c.weight
		if havePrev && prevF0 > 0 {
			score *= logNormalPrior(math.Log2(c.freq), math.Log2(prevF0), sigma)
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best.freq
}

// logNormalPrior is the (unnormalized) density of a Gaussian in the log2 Hz domain.
func logNormalPrior(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func rmsEnergy(frame []float32) float64 {
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
