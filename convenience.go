package samplerate

import "fmt"

// Common sample rates for convenience functions.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is a common speech recognition sample rate.
	RateSpeech = 22050

	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// RatioFor returns the conversion ratio from inputRate to outputRate.
func RatioFor(inputRate, outputRate float64) (float64, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return 0, fmt.Errorf("%w: sample rates must be positive", ErrInvalidRatio)
	}
	ratio := outputRate / inputRate
	if !IsValidRatio(ratio) {
		return 0, fmt.Errorf("%w: %v Hz to %v Hz is outside (%v to %v)",
			ErrInvalidRatio, inputRate, outputRate, MinRatio, MaxRatio)
	}
	return ratio, nil
}

// Resample converts a complete interleaved signal in one call, like
// libsamplerate's src_simple. The tail of the stream is included.
func Resample(in []float32, quality Quality, channels int, ratio float64) ([]float32, error) {
	r, err := New(&Config{Quality: quality, Channels: channels})
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck // Close on a live resampler cannot fail

	return r.Process(in, ratio, true)
}

// ResampleRates is Resample with the ratio given as a pair of sample rates.
func ResampleRates(in []float32, quality Quality, channels int, inputRate, outputRate float64) ([]float32, error) {
	ratio, err := RatioFor(inputRate, outputRate)
	if err != nil {
		return nil, err
	}
	return Resample(in, quality, channels, ratio)
}

// ResampleFloat64 is Resample for float64 samples.
func ResampleFloat64(in []float64, quality Quality, channels int, ratio float64) ([]float64, error) {
	out, err := Resample(Float64To32(nil, in), quality, channels, ratio)
	if err != nil {
		return nil, err
	}
	return Float32To64(nil, out), nil
}
