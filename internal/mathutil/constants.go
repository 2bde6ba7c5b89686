package mathutil

// Bessel series evaluation
const (
	// Relative size of the last series term kept in BesselI0
	besselSeriesEpsilon = 1e-21

	// Upper bound on series terms; I₀ converges in well under 100 terms for
	// the β values used by Kaiser windows
	besselMaxTerms = 500
)

// Kaiser window formula constants
// From Kaiser & Schafer's empirical formulas
const (
	// Attenuation thresholds for β calculation
	kaiserAttHigh   = 50.0 // High attenuation threshold (dB)
	kaiserAttMedium = 21.0 // Medium attenuation threshold (dB)

	// Kaiser β formula coefficients
	kaiserBetaHighCoeff1 = 0.1102 // Coefficient for high attenuation
	kaiserBetaHighOffset = 8.7    // Offset for high attenuation

	kaiserBetaMediumCoeff1 = 0.5842  // Primary coefficient for medium attenuation
	kaiserBetaMediumPower  = 0.4     // Power for medium attenuation formula
	kaiserBetaMediumCoeff2 = 0.07886 // Secondary coefficient for medium attenuation

	kaiserBetaMinThreshold = 0.1 // Minimum β for attenuation calculation
)

// Filter length estimation constants
const (
	// Kaiser's filter length formula: N ≈ (att - 8) / (2.285 * 2π * Δf)
	kaiserFilterLengthOffset     = 8.0   // Attenuation offset in Kaiser formula
	kaiserFilterLengthMultiplier = 2.285 // Multiplier in Kaiser formula
	kaiserFilterLengthPiFactor   = 2.0   // Factor for 2π in formula

	// Filter length bounds
	minFilterLength = 3    // Minimum filter length (taps)
	maxFilterLength = 8191 // Maximum filter length (taps)

	// Default transition bandwidth for safety
	defaultTransitionBW = 0.01 // Prevent division by zero
)
