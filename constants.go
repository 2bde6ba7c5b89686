package samplerate

// Ratio limits
const (
	MinRatio = 1.0 / 256.0 // Smallest supported ratio (output rate / input rate)
	MaxRatio = 256.0       // Largest supported ratio
)

// Channel constants
const (
	stereoChannels = 2    // Stereo channel count (used by interleave functions)
	maxChannels    = 1024 // Maximum supported channel count
)

// Buffer sizing constants
const (
	// Extra output frames allocated beyond the expected count so rounding in
	// the engine never leaves a full buffer with input still pending.
	outputHeadroom = 2
)

// Sample format conversion constants
const (
	int16Scale      = 32768.0 // 1 << 15
	maxBitDepth     = 32
	minBitDepth     = 8
	defaultBitDepth = 16 // Used when a bit depth of zero is given
)
