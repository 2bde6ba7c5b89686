// Package mathutil provides the Kaiser window design formulas used to build
// the sinc interpolation tables.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, from its power series:
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// The series converges quickly for the β range of Kaiser windows (0 to 20)
// and keeps full float64 precision, which the 145 dB tables need.
func BesselI0(x float64) float64 {
	half := x / 2
	sum := 1.0
	term := 1.0
	for k := 1; k <= besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselSeriesEpsilon {
			break
		}
	}
	return sum
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB ≤ att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att < 21 dB: β = 0
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	} else if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// KaiserAttenuation estimates the stopband attenuation achieved by a
// Kaiser window with the given β. It inverts the high attenuation branch of
// KaiserBeta.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff1
}

// EstimateFilterLength estimates the FIR length needed for the given
// attenuation (dB) and transition bandwidth (cycles per sample), using
// Kaiser's formula:
//
//	N ≈ (att - 8) / (2.285 * 2π * Δf)
//
// The result is odd and clamped to [3, 8191].
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	numTaps := (attenuation - kaiserFilterLengthOffset) / (kaiserFilterLengthMultiplier * kaiserFilterLengthPiFactor * math.Pi * transitionBW)

	// Round up to nearest odd integer (symmetric FIR filters are odd-length)
	taps := int(math.Ceil(numTaps))
	if taps%2 == 0 {
		taps++
	}

	return min(max(taps, minFilterLength), maxFilterLength)
}
