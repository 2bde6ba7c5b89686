package samplerate

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-samplerate/internal/engine"
)

// Config holds the parameters fixed for the lifetime of a Resampler.
type Config struct {
	// Quality selects the conversion algorithm.
	Quality Quality

	// Channels is the number of interleaved channels per frame.
	Channels int

	// DefaultRatio is the ratio (output rate / input rate) used by calls that
	// give none: Process with a zero ratio, ProcessIter without ratios and
	// EndInput before any ratio was seen. Zero means no default. It survives
	// Reset and can be changed with SetDefaultRatio.
	DefaultRatio float64

	// MaxRatioStep is the largest factor by which the ratio may change from
	// one call to the next. Zero selects the default of 256.
	MaxRatioStep float64

	// Native selects the system libsamplerate through cgo instead of the
	// pure Go engine. Only available in builds with the libsamplerate tag.
	Native bool
}

// Common errors returned by the resampler. Errors coming from the engine are
// wrapped, so errors.Is matches both these sentinels and the engine cause.
var (
	// ErrInitialization indicates the engine could not be created.
	ErrInitialization = errors.New("resampler initialization failed")

	// ErrInvalidRatio indicates a ratio outside the supported range, or a
	// change from the previous ratio larger than the allowed step.
	ErrInvalidRatio = errors.New("invalid conversion ratio")

	// ErrConversion indicates the engine rejected a conversion call.
	ErrConversion = errors.New("conversion failed")

	// ErrClosed indicates use of a Resampler after Close.
	ErrClosed = errors.New("resampler is closed")

	// ErrInvalidInput indicates a malformed input block.
	ErrInvalidInput = errors.New("invalid input block")

	// ErrNoRatio indicates a call that gave no ratio on a Resampler without
	// a default ratio.
	ErrNoRatio = errors.New("no ratio given and no default ratio set")
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Quality.Valid() {
		return fmt.Errorf("%w: unknown quality %d", ErrInitialization, int(c.Quality))
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInitialization)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInitialization, maxChannels)
	}

	if c.DefaultRatio != 0 && !engine.IsValidRatio(c.DefaultRatio) {
		return fmt.Errorf("%w: default ratio %v out of range (%v to %v)", ErrInitialization, c.DefaultRatio, MinRatio, MaxRatio)
	}

	if c.MaxRatioStep != 0 && !(c.MaxRatioStep >= 1) {
		return fmt.Errorf("%w: max ratio step %v must be at least 1", ErrInitialization, c.MaxRatioStep)
	}

	return nil
}

// IsValidRatio reports whether ratio lies within [MinRatio, MaxRatio].
func IsValidRatio(ratio float64) bool {
	return engine.IsValidRatio(ratio)
}
