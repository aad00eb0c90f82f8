// pyin_constants.go - Default analysis parameters for the PYIN estimator

package autotune

const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512
	DefaultFMin        = 65.0
	DefaultFMax        = 800.0
	DefaultThreshold   = 0.1
	DefaultSigma       = 0.1

	voicingProbFloor = 0.5
	rmsEnergyFloor   = 1e-3
)
