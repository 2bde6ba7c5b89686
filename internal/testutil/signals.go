package testutil

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Sine returns frames of an interleaved sine wave at freq Hz, the same on
// every channel.
func Sine(frames, channels int, freq, rate, amp float64) []float32 {
	out := make([]float32, frames*channels)
	for i := range frames {
		v := float32(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// Constant returns frames of interleaved samples all equal to v.
func Constant(frames, channels int, v float32) []float32 {
	out := make([]float32, frames*channels)
	for i := range out {
		out[i] = v
	}
	return out
}

// Channel extracts channel c from interleaved samples.
func Channel(in []float32, channels, c int) []float64 {
	out := make([]float64, len(in)/channels)
	for i := range out {
		out[i] = float64(in[i*channels+c])
	}
	return out
}

// PeakFrequency returns the frequency in Hz of the strongest bin in a
// Hann windowed spectrum of s, ignoring DC.
func PeakFrequency(s []float64, rate float64) float64 {
	if len(s) < 2 {
		return 0
	}
	windowed := window.Hann(append([]float64(nil), s...))
	fft := fourier.NewFFT(len(windowed))
	coeffs := fft.Coefficients(nil, windowed)

	peak, peakMag := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		if mag := cmplx.Abs(coeffs[i]); mag > peakMag {
			peak, peakMag = i, mag
		}
	}
	return fft.Freq(peak) * rate
}

// RMS returns the root mean square of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}
