package engine

// Ratio limits
const (
	maxRatio        = 256   // SRC_MAX_RATIO, ratios must lie in [1/256, 256]
	minRatioDiff    = 1e-20 // Ratio differences below this count as no change
	ratioUnset      = 0.0   // lastRatio before the first call or after a reset
	codeLocalBase   = 100   // First error code not defined by libsamplerate
	realEndUnset    = -1    // realEnd before end of input is seen
	minStepFactor   = 1.0   // MaxRatioStep below this would reject constant ratios
	unityRatio      = 1.0   // Kernel is stretched only when downsampling
	maxChannelCount = 1024  // Upper bound on channels per converter
)

// DefaultMaxRatioStep is the largest factor the ratio may change by between
// consecutive calls unless configured otherwise.
const DefaultMaxRatioStep = maxRatio

// History buffer constants
const (
	// Input frames copied into history per refill
	minChunkFrames = 4096

	// Extra zero frames appended past the end of input beyond the kernel's right context
	endPaddingFrames = 1
)

// Sinc converters occupy the first converter values.
const numSincConverters = 3

// Sinc kernel presets. Passband is a fraction of Nyquist, attenuation in dB,
// oversampling in table points per input sample.
const (
	sincBestPassband    = 0.97
	sincBestAttenuation = 145.0
	sincBestOversample  = 512

	sincMediumPassband    = 0.90
	sincMediumAttenuation = 121.0
	sincMediumOversample  = 256

	sincFastestPassband    = 0.80
	sincFastestAttenuation = 97.0
	sincFastestOversample  = 128
)
