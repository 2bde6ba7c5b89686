// Package filter designs the Kaiser windowed-sinc kernels used by the sinc
// converters and measures their frequency response.
package filter

import (
	"math"

	"github.com/tphakala/go-samplerate/internal/mathutil"
)

const (
	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincPiMultiplier  = math.Pi
	sincZeroThreshold = 1e-10

	// Filter normalization
	filterGainTarget = 1.0
)

// KaiserValue evaluates the continuous Kaiser window
//
//	w(u) = I₀(β·sqrt(1 - u²)) / I₀(β)
//
// at u in [-1, 1]. Values outside that range are zero.
func KaiserValue(u, beta float64) float64 {
	if u < -1 || u > 1 {
		return 0
	}
	return mathutil.BesselI0(beta*math.Sqrt(1.0-u*u)) / mathutil.BesselI0(beta)
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
