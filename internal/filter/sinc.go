package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-samplerate/internal/mathutil"
	"github.com/tphakala/go-samplerate/internal/simdops"
)

const (
	// Passband edges are expressed as a fraction of the Nyquist frequency,
	// the stopband starts at Nyquist.
	nyquistFraction = 0.5
	cutoffDivisor   = 4.0

	minOversample = 1
	maxOversample = 4096

	// Guard point past the end of the table so interpolation never reads out of range
	tableGuardPoints = 2
)

// SincParams describes a windowed-sinc interpolation kernel.
type SincParams struct {
	// Passband is the end of the passband as a fraction of Nyquist (0 to 1).
	Passband float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64

	// Oversample is the number of table points per input sample.
	Oversample int
}

// Validate checks the kernel parameters.
func (p *SincParams) Validate() error {
	if p.Passband <= 0 || p.Passband >= 1 {
		return fmt.Errorf("invalid passband: %f (must be in (0, 1))", p.Passband)
	}
	if p.Attenuation <= 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", p.Attenuation)
	}
	if p.Oversample < minOversample || p.Oversample > maxOversample {
		return fmt.Errorf("invalid oversampling: %d (must be %d-%d)", p.Oversample, minOversample, maxOversample)
	}
	return nil
}

// TransitionBW returns the transition bandwidth in cycles per input sample.
func (p *SincParams) TransitionBW() float64 {
	return (1 - p.Passband) * nyquistFraction
}

// Cutoff returns the -6 dB point in cycles per input sample, halfway
// through the transition band.
func (p *SincParams) Cutoff() float64 {
	return (p.Passband + 1) / cutoffDivisor
}

// SincTable is one side of a symmetric Kaiser-windowed sinc kernel, sampled
// Oversample times per input sample. Coeffs[i] holds h(i/Oversample).
type SincTable struct {
	Coeffs     []float64
	HalfLen    int // kernel support on each side, in input samples
	Oversample int
}

// DesignSincTable builds the interpolation kernel for a sinc converter.
//
// The kernel length comes from Kaiser's estimate for the requested attenuation
// and transition band. The table is normalized so the taps at integer offsets
// sum to one (unity DC gain when the read position falls on an input sample).
func DesignSincTable(params SincParams) (*SincTable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	taps := mathutil.EstimateFilterLength(params.Attenuation, params.TransitionBW())
	halfLen := taps/2 + 1
	beta := mathutil.KaiserBeta(params.Attenuation)
	fc := params.Cutoff()

	n := halfLen * params.Oversample
	coeffs := make([]float64, n+tableGuardPoints)
	for i := 0; i <= n; i++ {
		x := float64(i) / float64(params.Oversample)
		coeffs[i] = sincValue(fc, x) * KaiserValue(x/float64(halfLen), beta)
	}

	// DC gain over integer offsets: h(0) + 2*sum(h(k))
	gain := coeffs[0]
	for k := 1; k <= halfLen; k++ {
		gain += windowNormalizationFactor * coeffs[k*params.Oversample]
	}
	if math.Abs(gain) > sincZeroThreshold {
		simdops.Float64Ops().Scale(coeffs, coeffs, filterGainTarget/gain)
	}

	return &SincTable{
		Coeffs:     coeffs,
		HalfLen:    halfLen,
		Oversample: params.Oversample,
	}, nil
}

// Value returns the kernel at offset x input samples, linearly interpolating
// between table points. Offsets outside the support return zero.
func (t *SincTable) Value(x float64) float64 {
	pos := math.Abs(x) * float64(t.Oversample)
	i := int(pos)
	if i >= len(t.Coeffs)-1 {
		return 0
	}
	frac := pos - float64(i)
	return t.Coeffs[i] + frac*(t.Coeffs[i+1]-t.Coeffs[i])
}

// Response returns the magnitude of the kernel's frequency response at f
// cycles per input sample. The kernel is real and even, so the transform is
// a cosine sum over the table points.
func (t *SincTable) Response(f float64) float64 {
	n := t.HalfLen * t.Oversample
	step := 1 / float64(t.Oversample)
	w := windowNormalizationFactor * sincPiMultiplier * f * step

	sum := t.Coeffs[0]
	for k := 1; k <= n; k++ {
		sum += windowNormalizationFactor * t.Coeffs[k] * math.Cos(w*float64(k))
	}
	return math.Abs(sum * step)
}

// Taps returns the kernel length in input samples at unity ratio.
func (t *SincTable) Taps() int {
	return 2*t.HalfLen + 1
}

// sincValue is the ideal low-pass impulse response 2fc*sinc(2fc*x).
func sincValue(fc, x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return windowNormalizationFactor * fc
	}
	arg := windowNormalizationFactor * sincPiMultiplier * fc * x
	return math.Sin(arg) / (sincPiMultiplier * x)
}
