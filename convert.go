package samplerate

import (
	"fmt"
	"math"

	"github.com/tphakala/go-samplerate/internal/simdops"
)

// Interleave merges planar channels into one interleaved slice. All channels
// must have the same length.
func Interleave(planar [][]float32) ([]float32, error) {
	if len(planar) == 0 {
		return []float32{}, nil
	}
	frames := len(planar[0])
	for c, ch := range planar {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrInvalidInput, c, len(ch), frames)
		}
	}

	channels := len(planar)
	out := make([]float32, frames*channels)
	if channels == stereoChannels {
		simdops.Float32Ops().Interleave2(out, planar[0], planar[1])
		return out, nil
	}
	for c, ch := range planar {
		for i, v := range ch {
			out[i*channels+c] = v
		}
	}
	return out, nil
}

// Deinterleave splits interleaved samples into one slice per channel.
func Deinterleave(in []float32, channels int) ([][]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: channels must be at least 1", ErrInvalidInput)
	}
	if len(in)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidInput, len(in), channels)
	}

	frames := len(in) / channels
	out := make([][]float32, channels)
	for c := range out {
		ch := make([]float32, frames)
		for i := range ch {
			ch[i] = in[i*channels+c]
		}
		out[c] = ch
	}
	return out, nil
}

// Float64To32 narrows src into dst, growing dst as needed, and returns it.
func Float64To32(dst []float32, src []float64) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}

// Float32To64 widens src into dst, growing dst as needed, and returns it.
func Float32To64(dst []float64, src []float32) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

// ShortToFloat converts 16-bit PCM to float32 in [-1, 1).
// It converts min(len(in), len(out)) samples.
func ShortToFloat(in []int16, out []float32) {
	n := min(len(in), len(out))
	for i := range n {
		out[i] = float32(float64(in[i]) / int16Scale)
	}
}

// FloatToShort converts float32 samples to 16-bit PCM, rounding and
// clipping to the int16 range.
func FloatToShort(in []float32, out []int16) {
	n := min(len(in), len(out))
	for i := range n {
		v := math.Round(float64(in[i]) * int16Scale)
		out[i] = int16(max(min(v, math.MaxInt16), math.MinInt16))
	}
}

// IntToFloat converts integer PCM of the given bit depth to float32 in
// [-1, 1). A bit depth of zero means 16.
func IntToFloat(in []int, bitDepth int, out []float32) error {
	scale, err := pcmScale(bitDepth)
	if err != nil {
		return err
	}
	n := min(len(in), len(out))
	for i := range n {
		out[i] = float32(float64(in[i]) / scale)
	}
	return nil
}

// FloatToInt converts float32 samples to integer PCM of the given bit
// depth, rounding and clipping to the representable range.
func FloatToInt(in []float32, bitDepth int, out []int) error {
	scale, err := pcmScale(bitDepth)
	if err != nil {
		return err
	}
	hi, lo := scale-1, -scale
	n := min(len(in), len(out))
	for i := range n {
		v := math.Round(float64(in[i]) * scale)
		out[i] = int(max(min(v, hi), lo))
	}
	return nil
}

func pcmScale(bitDepth int) (float64, error) {
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}
	if bitDepth < minBitDepth || bitDepth > maxBitDepth {
		return 0, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidInput, bitDepth)
	}
	return math.Ldexp(1, bitDepth-1), nil
}
