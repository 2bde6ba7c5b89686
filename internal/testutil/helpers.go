// Package testutil provides reusable test helpers for the converter and filter tests.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	WindowTolerance = 1e-10
	DBTolerance     = 0.01
)

// Sample is the set of sample and coefficient types the helpers accept.
type Sample interface {
	~float32 | ~float64
}

// AssertFrameCount verifies that converting inFrames at ratio produced
// ceil(inFrames*ratio) frames, give or take slack.
func AssertFrameCount(t *testing.T, gotFrames, inFrames int, ratio float64, slack int, msgAndArgs ...any) bool {
	t.Helper()
	want := int(math.Ceil(float64(inFrames) * ratio))
	if gotFrames < want-slack || gotFrames > want+slack {
		return assert.Fail(t, fmt.Sprintf("got %d frames from %d at ratio %v, want %d±%d",
			gotFrames, inFrames, ratio, want, slack), msgAndArgs...)
	}
	return true
}

// AssertFinite verifies that no sample is NaN or Inf.
func AssertFinite[S Sample](t *testing.T, s []S, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return assert.Fail(t, fmt.Sprintf("s[%d] = %v is not finite", i, f), msgAndArgs...)
		}
	}
	return true
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric[S Sample](t *testing.T, s []S, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		j := n - 1 - i
		if math.Abs(float64(s[i])-float64(s[j])) > tolerance {
			return assert.Fail(t, fmt.Sprintf("not symmetric at i=%d: s[%d]=%v != s[%d]=%v",
				i, i, s[i], j, s[j]), msgAndArgs...)
		}
	}
	return true
}

// AssertKernel verifies the shape of a linear-phase low-pass impulse
// response: odd length, symmetric, peak at the center tap and taps summing
// to gain.
func AssertKernel(t *testing.T, taps []float64, gain, tolerance float64) bool {
	t.Helper()
	if len(taps)%2 != 1 {
		return assert.Fail(t, fmt.Sprintf("kernel length %d is not odd", len(taps)))
	}
	if !AssertSymmetric(t, taps, tolerance) {
		return false
	}

	center := len(taps) / 2
	var sum float64
	for i, v := range taps {
		if v > taps[center] {
			return assert.Fail(t, fmt.Sprintf("tap %d = %g exceeds center tap %g", i, v, taps[center]))
		}
		sum += v
	}
	return assert.InDelta(t, gain, sum, tolerance, "kernel gain")
}

// AssertMonotonic verifies that a slice is non-decreasing.
func AssertMonotonic[S Sample](t *testing.T, s []S, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, fmt.Sprintf("not monotonic: s[%d]=%v < s[%d]=%v",
				i, s[i], i-1, s[i-1]), msgAndArgs...)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [minVal, maxVal].
func AssertAllInRange[S Sample](t *testing.T, s []S, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if f := float64(v); f < minVal || f > maxVal {
			return assert.Fail(t, fmt.Sprintf("s[%d]=%v is outside [%v, %v]", i, f, minVal, maxVal), msgAndArgs...)
		}
	}
	return true
}

// AssertLevelDB verifies that a linear magnitude lies within [minDB, maxDB].
func AssertLevelDB(t *testing.T, magnitude, minDB, maxDB float64, msgAndArgs ...any) bool {
	t.Helper()
	db := math.Inf(-1)
	if magnitude > 0 {
		db = 20 * math.Log10(magnitude)
	}
	if db < minDB || db > maxDB {
		return assert.Fail(t, fmt.Sprintf("level %.4f dB is outside [%.4f, %.4f] dB", db, minDB, maxDB), msgAndArgs...)
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	if relError > tolerance {
		return assert.Fail(t, fmt.Sprintf("relative error %e exceeds tolerance %e (expected=%g, actual=%g)",
			relError, tolerance, expected, actual), msgAndArgs...)
	}
	return true
}

// AssertInRange verifies that a value is within [minVal, maxVal].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, fmt.Sprintf("value %v is outside [%v, %v]", value, minVal, maxVal), msgAndArgs...)
	}
	return true
}
