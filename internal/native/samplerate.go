//go:build libsamplerate

// Package native binds the system libsamplerate through cgo. It exposes the
// same call surface as the pure Go engine so either can drive a Resampler.
//
// Build with -tags libsamplerate; pkg-config must find samplerate.
package native

/*
   #cgo pkg-config: samplerate
   #cgo st LDFLAGS: -l:libsamplerate.a

   #include <samplerate.h>

   static int go_src_process(SRC_STATE *state, const float *in, long in_frames,
                             float *out, long out_frames, int end_of_input,
                             double ratio, long *used, long *gen) {
       SRC_DATA d;
       d.data_in = in;
       d.data_out = out;
       d.input_frames = in_frames;
       d.output_frames = out_frames;
       d.end_of_input = end_of_input;
       d.src_ratio = ratio;
       d.input_frames_used = 0;
       d.output_frames_gen = 0;
       int err = src_process(state, &d);
       *used = d.input_frames_used;
       *gen = d.output_frames_gen;
       return err;
   }
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/tphakala/go-samplerate/internal/engine"
)

// Stand-in buffer for empty slices; libsamplerate rejects NULL data pointers.
var empty [1]float32

// State owns one SRC_STATE.
type State struct {
	state     *C.SRC_STATE
	converter engine.Converter
	channels  int
	lastRatio float64
	maxStep   float64
}

// New calls src_new.
func New(conv engine.Converter, channels int) (*State, error) {
	if !conv.Valid() {
		return nil, engine.ErrBadConverter
	}
	if channels < 1 {
		return nil, engine.ErrBadChannelCount
	}

	var code C.int
	st := C.src_new(C.int(conv), C.int(channels), &code)
	if st == nil {
		return nil, StrError(int(code))
	}
	return &State{
		state:     st,
		converter: conv,
		channels:  channels,
		maxStep:   engine.DefaultMaxRatioStep,
	}, nil
}

// StrError turns a libsamplerate error code into an error. Codes known to
// the engine package come back as engine.ErrorCode so errors.Is matches
// across backends.
func StrError(code int) error {
	if code == 0 {
		return nil
	}
	ec := engine.ErrorCode(code)
	if ec <= engine.ErrBadInternalState {
		return ec
	}
	return errors.New(C.GoString(C.src_strerror(C.int(code))))
}

// Converter returns the algorithm the state was created with.
func (s *State) Converter() engine.Converter { return s.converter }

// Channels returns the channel count.
func (s *State) Channels() int { return s.channels }

// LastRatio returns the ratio of the most recent call or SetRatio, zero
// after a reset.
func (s *State) LastRatio() float64 { return s.lastRatio }

// SetMaxRatioStep sets the largest factor by which the ratio may change
// between consecutive calls. libsamplerate has no such limit, so it is
// enforced here.
func (s *State) SetMaxRatioStep(step float64) error {
	if s.state == nil {
		return engine.ErrClosed
	}
	if !(step >= 1) {
		return engine.ErrBadRatio
	}
	s.maxStep = step
	return nil
}

// CheckRatio validates ratio with src_is_valid_ratio and the step limit
// without changing any state.
func (s *State) CheckRatio(ratio float64) error {
	if s.state == nil {
		return engine.ErrClosed
	}
	if C.src_is_valid_ratio(C.double(ratio)) == 0 {
		return engine.ErrBadRatio
	}
	return engine.CheckStep(s.lastRatio, ratio, s.maxStep)
}

// SetRatio calls src_set_ratio, so the next call starts at ratio.
func (s *State) SetRatio(ratio float64) error {
	if s.state == nil {
		return engine.ErrClosed
	}
	if err := StrError(int(C.src_set_ratio(s.state, C.double(ratio)))); err != nil {
		return err
	}
	s.lastRatio = ratio
	return nil
}

// Reset calls src_reset and forgets the last ratio.
func (s *State) Reset() error {
	if s.state == nil {
		return engine.ErrClosed
	}
	if err := StrError(int(C.src_reset(s.state))); err != nil {
		return err
	}
	s.lastRatio = 0
	return nil
}

// Close calls src_delete once.
func (s *State) Close() error {
	if s.state == nil {
		return engine.ErrClosed
	}
	C.src_delete(s.state)
	s.state = nil
	return nil
}

// Process calls src_process with d.
func (s *State) Process(d *engine.Data) error {
	if s.state == nil {
		return engine.ErrClosed
	}
	if d == nil || d.InputFrames < 0 || d.OutputFrames < 0 {
		return engine.ErrBadData
	}
	if len(d.In) < d.InputFrames*s.channels || len(d.Out) < d.OutputFrames*s.channels {
		return engine.ErrBadDataPtr
	}
	if err := s.CheckRatio(d.Ratio); err != nil {
		return err
	}

	in, out := d.In, d.Out
	if len(in) == 0 {
		in = empty[:]
	}
	if len(out) == 0 {
		out = empty[:]
	}
	eoi := C.int(0)
	if d.EndOfInput {
		eoi = 1
	}

	var used, gen C.long
	code := C.go_src_process(s.state,
		(*C.float)(unsafe.Pointer(&in[0])), C.long(d.InputFrames),
		(*C.float)(unsafe.Pointer(&out[0])), C.long(d.OutputFrames),
		eoi, C.double(d.Ratio), &used, &gen)
	if err := StrError(int(code)); err != nil {
		return err
	}

	d.InputFramesUsed = int(used)
	d.OutputFramesGen = int(gen)
	s.lastRatio = d.Ratio
	return nil
}
