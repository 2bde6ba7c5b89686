package engine

// Converter selects the interpolation algorithm. Values match libsamplerate's
// SRC_SINC_BEST_QUALITY .. SRC_LINEAR.
type Converter int

const (
	SincBest      Converter = iota // SRC_SINC_BEST_QUALITY
	SincMedium                     // SRC_SINC_MEDIUM_QUALITY
	SincFastest                    // SRC_SINC_FASTEST
	ZeroOrderHold                  // SRC_ZERO_ORDER_HOLD
	Linear                         // SRC_LINEAR
)

var converterInfo = [...]struct {
	name        string
	description string
}{
	SincBest: {
		name:        "Best Sinc Interpolator",
		description: "Band limited sinc interpolation, best quality, 145dB SNR, 97% BW.",
	},
	SincMedium: {
		name:        "Medium Sinc Interpolator",
		description: "Band limited sinc interpolation, medium quality, 121dB SNR, 90% BW.",
	},
	SincFastest: {
		name:        "Fastest Sinc Interpolator",
		description: "Band limited sinc interpolation, fastest, 97dB SNR, 80% BW.",
	},
	ZeroOrderHold: {
		name:        "ZOH Interpolator",
		description: "Zero order hold interpolator, very fast, poor quality.",
	},
	Linear: {
		name:        "Linear Interpolator",
		description: "Linear interpolator, very fast, poor quality.",
	},
}

// Valid reports whether c names a known converter.
func (c Converter) Valid() bool {
	return c >= SincBest && c <= Linear
}

// Name returns the converter name, or "" for an unknown converter.
func (c Converter) Name() string {
	if !c.Valid() {
		return ""
	}
	return converterInfo[c].name
}

// Description returns a one line description, or "" for an unknown converter.
func (c Converter) Description() string {
	if !c.Valid() {
		return ""
	}
	return converterInfo[c].description
}

// IsValidRatio reports whether ratio lies in the supported range.
func IsValidRatio(ratio float64) bool {
	return ratio >= 1.0/maxRatio && ratio <= maxRatio
}

// CheckStep reports ErrRatioStep when ratio differs from last by more than a
// factor of maxStep. An unset last ratio always passes.
func CheckStep(last, ratio, maxStep float64) error {
	if last == ratioUnset {
		return nil
	}
	if ratio/last > maxStep || last/ratio > maxStep {
		return ErrRatioStep
	}
	return nil
}
