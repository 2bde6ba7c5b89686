// Package engine implements a streaming sample rate converter with the
// libsamplerate call surface: a converter handle created for a fixed
// algorithm and channel count, driven one Data record at a time.
//
// Samples are interleaved float32. Internally each channel is kept as a
// planar float64 history so the sinc kernel can run SIMD dot products over
// contiguous memory.
//
// A State is not safe for concurrent use.
package engine

import "math"

// Data describes one conversion call, mirroring libsamplerate's SRC_DATA.
// The caller fills In, Out, InputFrames, OutputFrames, EndOfInput and Ratio;
// Process sets InputFramesUsed and OutputFramesGen.
type Data struct {
	In  []float32 // interleaved input, at least InputFrames*channels samples
	Out []float32 // interleaved output, room for OutputFrames*channels samples

	InputFrames  int
	OutputFrames int

	InputFramesUsed int
	OutputFramesGen int

	EndOfInput bool
	Ratio      float64 // output rate / input rate
}

// State is a converter handle.
type State struct {
	converter Converter
	channels  int
	kern      kernel
	hist      history

	// Read position in input frames: cur is absolute, frac in [0, 1).
	cur  int
	frac float64

	// realEnd is the index one past the last real input frame once end of
	// input has been seen, realEndUnset before that.
	realEnd int

	lastRatio float64
	maxStep   float64
	closed    bool
}

// New creates a converter for the given algorithm and channel count.
func New(conv Converter, channels int) (*State, error) {
	if !conv.Valid() {
		return nil, ErrBadConverter
	}
	if channels < 1 || channels > maxChannelCount {
		return nil, ErrBadChannelCount
	}

	kern, err := newKernel(conv)
	if err != nil {
		return nil, err
	}

	s := &State{
		converter: conv,
		channels:  channels,
		kern:      kern,
		hist:      newHistory(channels),
		realEnd:   realEndUnset,
		maxStep:   DefaultMaxRatioStep,
	}
	return s, nil
}

// Converter returns the algorithm the state was created with.
func (s *State) Converter() Converter { return s.converter }

// Channels returns the channel count.
func (s *State) Channels() int { return s.channels }

// LastRatio returns the ratio used for the most recent output frame, or the
// value given to SetRatio. Zero means no ratio has been seen since the last reset.
func (s *State) LastRatio() float64 { return s.lastRatio }

// SetMaxRatioStep sets the largest factor by which the ratio may change
// between consecutive calls. It must be at least 1.
func (s *State) SetMaxRatioStep(step float64) error {
	if s.closed {
		return ErrClosed
	}
	if !(step >= minStepFactor) {
		return ErrBadRatio
	}
	s.maxStep = step
	return nil
}

// CheckRatio validates ratio against the supported range and the allowed
// step from the previous ratio without changing any state.
func (s *State) CheckRatio(ratio float64) error {
	if s.closed {
		return ErrClosed
	}
	if !IsValidRatio(ratio) {
		return ErrBadRatio
	}
	return CheckStep(s.lastRatio, ratio, s.maxStep)
}

// SetRatio makes the next call start at ratio instead of ramping from the
// previous one.
func (s *State) SetRatio(ratio float64) error {
	if s.closed {
		return ErrClosed
	}
	if !IsValidRatio(ratio) {
		return ErrBadRatio
	}
	s.lastRatio = ratio
	return nil
}

// Reset clears all buffered input, the read position and the last ratio.
func (s *State) Reset() error {
	if s.closed {
		return ErrClosed
	}
	s.hist.reset()
	s.cur = 0
	s.frac = 0
	s.realEnd = realEndUnset
	s.lastRatio = ratioUnset
	return nil
}

// Close releases the converter. Further calls return ErrClosed.
func (s *State) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.kern = nil
	s.hist = history{}
	return nil
}

func (s *State) ended() bool {
	return s.realEnd != realEndUnset
}

// Process converts as much of d.In as fits into d.Out.
//
// When d.Ratio differs from the previous ratio the ratio ramps linearly
// across the output buffer. Input is consumed only as far as needed to fill
// the output, so d.InputFramesUsed may be less than d.InputFrames when the
// output buffer is full. With d.EndOfInput set and all input consumed, the
// stream is padded with silence until the read position passes the last
// real input frame.
func (s *State) Process(d *Data) error {
	if err := s.validate(d); err != nil {
		return err
	}

	d.InputFramesUsed = 0
	d.OutputFramesGen = 0

	if s.lastRatio == ratioUnset {
		s.lastRatio = d.Ratio
	}
	start := s.lastRatio
	ratio := start
	ramp := math.Abs(d.Ratio-start) > minRatioDiff

	for d.OutputFramesGen < d.OutputFrames {
		if s.drained() {
			break
		}
		if ramp {
			ratio = start + float64(d.OutputFramesGen)*(d.Ratio-start)/float64(d.OutputFrames)
		}

		left, right := s.kern.span(ratio)
		if !s.fill(d, left, right) {
			break
		}
		if s.drained() {
			break
		}

		off := d.OutputFramesGen * s.channels
		s.kern.interpolate(&s.hist, s.cur, s.frac, ratio, d.Out[off:off+s.channels])
		d.OutputFramesGen++
		s.advance(ratio)
	}

	s.lastRatio = ratio
	return nil
}

func (s *State) validate(d *Data) error {
	if s.closed {
		return ErrClosed
	}
	if d == nil || d.InputFrames < 0 || d.OutputFrames < 0 {
		return ErrBadData
	}
	if len(d.In) < d.InputFrames*s.channels || len(d.Out) < d.OutputFrames*s.channels {
		return ErrBadDataPtr
	}
	if !IsValidRatio(d.Ratio) {
		return ErrBadRatio
	}
	if err := CheckStep(s.lastRatio, d.Ratio, s.maxStep); err != nil {
		return err
	}
	if s.ended() && d.InputFrames > 0 {
		return ErrInputAfterEnd
	}
	return nil
}

// drained reports whether the read position has passed the end of real input.
func (s *State) drained() bool {
	return s.ended() && s.cur >= s.realEnd
}

// fill makes frames up to cur+right available in the history. It reports
// false when more input is needed from the caller.
func (s *State) fill(d *Data, left, right int) bool {
	need := s.cur + right
	for need >= s.hist.end() {
		switch {
		case d.InputFramesUsed < d.InputFrames:
			s.hist.trim(s.cur - left)
			n := min(d.InputFrames-d.InputFramesUsed, max(minChunkFrames, need-s.hist.end()+1))
			off := d.InputFramesUsed * s.channels
			s.hist.appendInterleaved(d.In[off : off+n*s.channels])
			d.InputFramesUsed += n
		case d.EndOfInput || s.ended():
			if !s.ended() {
				s.realEnd = s.hist.end()
			}
			s.hist.trim(s.cur - left)
			s.hist.appendZeros(need - s.hist.end() + endPaddingFrames)
		default:
			return false
		}
	}
	return true
}

func (s *State) advance(ratio float64) {
	s.frac += 1 / ratio
	step := math.Floor(s.frac)
	s.cur += int(step)
	s.frac -= step
}
