package samplerate

import (
	"fmt"
	"math"

	"github.com/tphakala/go-samplerate/internal/engine"
)

// converter is the engine surface a Resampler drives. It is satisfied by the
// pure Go engine and by the cgo libsamplerate binding.
type converter interface {
	Process(d *engine.Data) error
	Reset() error
	SetRatio(ratio float64) error
	CheckRatio(ratio float64) error
	SetMaxRatioStep(step float64) error
	Close() error
}

// Stats holds the cumulative frame counters of a stream since construction
// or the last Reset.
type Stats struct {
	InputFrames  int64 // frames consumed by the engine
	OutputFrames int64 // frames produced by the engine
}

// Resampler is a streaming sample rate converter session. It owns one engine
// handle from New until Close.
//
// Samples are interleaved float32 frames. The ratio (output rate / input
// rate) is given per call and may change between calls; the engine ramps
// smoothly from the previous ratio unless SetRatio is used to jump.
//
// A Resampler is not safe for concurrent use.
type Resampler struct {
	conv     converter
	quality  Quality
	channels int

	// ratio is the last ratio requested, zero before the first one.
	ratio float64

	// defaultRatio stands in for a missing ratio, zero when unset.
	defaultRatio float64

	// pending is the number of output frames the input consumed so far is
	// expected to produce but has not yet produced.
	pending float64

	stats  Stats
	buf    []float32
	closed bool
}

// New creates a Resampler for the given configuration.
func New(config *Config) (*Resampler, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInitialization)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	conv, err := newConverter(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	return newResampler(conv, config)
}

func newResampler(conv converter, config *Config) (*Resampler, error) {
	r := &Resampler{
		conv:         conv,
		quality:      config.Quality,
		channels:     config.Channels,
		defaultRatio: config.DefaultRatio,
	}

	if config.MaxRatioStep != 0 {
		if err := conv.SetMaxRatioStep(config.MaxRatioStep); err != nil {
			_ = conv.Close()
			return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
		}
	}
	return r, nil
}

// Quality returns the converter the Resampler was created with.
func (r *Resampler) Quality() Quality { return r.quality }

// Channels returns the number of interleaved channels per frame.
func (r *Resampler) Channels() int { return r.channels }

// Ratio returns the last ratio requested through Process or SetRatio, or
// zero if none has been since construction or the last Reset.
func (r *Resampler) Ratio() float64 { return r.ratio }

// DefaultRatio returns the ratio used when a call gives none, or zero if no
// default is set.
func (r *Resampler) DefaultRatio() float64 { return r.defaultRatio }

// Stats returns the stream counters.
func (r *Resampler) Stats() Stats { return r.stats }

// Process converts one block of interleaved input at the given ratio and
// returns the frames produced. The returned slice is newly allocated. A zero
// ratio selects the default ratio; without one the call fails with
// ErrInvalidRatio wrapping ErrNoRatio.
//
// The input length must be a multiple of the channel count. When endOfInput
// is true the engine also flushes the samples it holds back, so the result
// includes the tail of the stream; further input then requires Reset.
//
// An invalid ratio fails with ErrInvalidRatio before the engine is touched,
// leaving the stream counters unchanged.
func (r *Resampler) Process(in []float32, ratio float64, endOfInput bool) ([]float32, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if len(in)%r.channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidInput, len(in), r.channels)
	}
	if ratio == 0 {
		if r.defaultRatio == 0 {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRatio, ErrNoRatio)
		}
		ratio = r.defaultRatio
	}
	if err := r.conv.CheckRatio(ratio); err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrInvalidRatio, ratio, err)
	}
	return r.process(in, ratio, endOfInput)
}

// ProcessFloat64 is like Process for float64 samples. Samples are narrowed
// to float32 for the engine and widened again on the way out.
func (r *Resampler) ProcessFloat64(in []float64, ratio float64, endOfInput bool) ([]float64, error) {
	out, err := r.Process(Float64To32(nil, in), ratio, endOfInput)
	if err != nil {
		return nil, err
	}
	return Float32To64(nil, out), nil
}

// process calls the engine until the input is consumed, growing the output
// buffer from the expected pending output.
func (r *Resampler) process(in []float32, ratio float64, endOfInput bool) ([]float32, error) {
	ch := r.channels
	startPending, startStats := r.pending, r.stats
	r.pending += float64(len(in)/ch) * ratio
	out := make([]float32, 0, r.expected()*ch)

	for {
		capFrames := r.expected()
		buf := r.scratch(capFrames * ch)

		d := engine.Data{
			In:           in,
			Out:          buf,
			InputFrames:  len(in) / ch,
			OutputFrames: capFrames,
			EndOfInput:   endOfInput,
			Ratio:        ratio,
		}
		if err := r.conv.Process(&d); err != nil {
			r.pending, r.stats = startPending, startStats
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}

		in = in[d.InputFramesUsed*ch:]
		out = append(out, buf[:d.OutputFramesGen*ch]...)
		r.pending -= float64(d.OutputFramesGen)
		r.stats.InputFrames += int64(d.InputFramesUsed)
		r.stats.OutputFrames += int64(d.OutputFramesGen)

		// A buffer that was not filled means the engine wants more input or
		// has drained everything it holds.
		if d.OutputFramesGen < capFrames {
			break
		}
	}

	r.ratio = ratio
	if endOfInput && len(in) == 0 {
		r.pending = 0
	}
	return out, nil
}

// expected returns the output capacity for the next engine call.
func (r *Resampler) expected() int {
	return int(math.Ceil(max(r.pending, 0))) + outputHeadroom
}

func (r *Resampler) scratch(n int) []float32 {
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	return r.buf[:n]
}

// EndInput signals end of input and returns all remaining output, using the
// most recent ratio, or the default ratio if there is none. It keeps calling
// the engine until no more frames come out.
//
// A stream that never saw a ratio holds no input, so without a default ratio
// EndInput returns an empty slice without touching the engine.
func (r *Resampler) EndInput() ([]float32, error) {
	if r.closed {
		return nil, ErrClosed
	}

	out := []float32{}
	ratio := r.ratio
	if ratio == 0 {
		ratio = r.defaultRatio
	}
	if ratio == 0 {
		return out, nil
	}

	for {
		block, err := r.process(nil, ratio, true)
		if err != nil {
			return out, err
		}
		if len(block) == 0 {
			return out, nil
		}
		out = append(out, block...)
	}
}

// SetRatio sets the ratio the next call starts from, so a change between
// calls takes effect immediately instead of ramping. No samples are converted.
func (r *Resampler) SetRatio(ratio float64) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.conv.SetRatio(ratio); err != nil {
		return fmt.Errorf("%w: %v: %w", ErrInvalidRatio, ratio, err)
	}
	r.ratio = ratio
	return nil
}

// SetDefaultRatio changes the ratio used by calls that give none. Zero
// clears the default. Samples already converted are not affected.
func (r *Resampler) SetDefaultRatio(ratio float64) error {
	if r.closed {
		return ErrClosed
	}
	if ratio != 0 && !engine.IsValidRatio(ratio) {
		return fmt.Errorf("%w: default ratio %v out of range (%v to %v)", ErrInvalidRatio, ratio, MinRatio, MaxRatio)
	}
	r.defaultRatio = ratio
	return nil
}

// Reset discards all buffered samples and zeroes the stream counters. The
// quality, channel count and default ratio are kept.
func (r *Resampler) Reset() error {
	if r.closed {
		return ErrClosed
	}
	if err := r.conv.Reset(); err != nil {
		return fmt.Errorf("%w: %w", ErrConversion, err)
	}
	r.ratio = 0
	r.pending = 0
	r.stats = Stats{}
	return nil
}

// Close releases the engine. Any later call, including Close, returns ErrClosed.
func (r *Resampler) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	conv := r.conv
	r.conv = nil
	r.buf = nil
	if err := conv.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return nil
}
