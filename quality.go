package samplerate

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-samplerate/internal/engine"
)

// Quality selects the conversion algorithm. The values match libsamplerate's
// converter numbers.
type Quality int

const (
	// SincBest is band limited sinc interpolation with 145 dB stopband
	// attenuation and 97% of the bandwidth preserved. Slowest.
	SincBest = Quality(engine.SincBest)

	// SincMedium trades some bandwidth (90%) and attenuation (121 dB) for speed.
	SincMedium = Quality(engine.SincMedium)

	// SincFastest keeps 80% of the bandwidth at 97 dB attenuation.
	SincFastest = Quality(engine.SincFastest)

	// ZeroOrderHold repeats the most recent input frame. Very fast, poor quality.
	ZeroOrderHold = Quality(engine.ZeroOrderHold)

	// Linear interpolates between neighbouring frames. Very fast, poor quality.
	Linear = Quality(engine.Linear)
)

// Short names accepted by ParseQuality, Set and UnmarshalText.
var qualityNames = map[string]Quality{
	"best":            SincBest,
	"sinc_best":       SincBest,
	"medium":          SincMedium,
	"sinc_medium":     SincMedium,
	"fastest":         SincFastest,
	"sinc_fastest":    SincFastest,
	"zoh":             ZeroOrderHold,
	"zero_order_hold": ZeroOrderHold,
	"linear":          Linear,
}

// Valid reports whether q names a known converter.
func (q Quality) Valid() bool {
	return engine.Converter(q).Valid()
}

// String returns the converter name, for example "Best Sinc Interpolator".
func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return engine.Converter(q).Name()
}

// Description returns a one line description of the converter.
func (q Quality) Description() string {
	return engine.Converter(q).Description()
}

// ParseQuality maps a short name such as "best", "medium", "fastest", "zoh"
// or "linear" to a Quality. Matching ignores case; dashes and underscores
// are interchangeable.
func ParseQuality(s string) (Quality, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	q, ok := qualityNames[key]
	if !ok {
		return 0, fmt.Errorf("unknown quality %q", s)
	}
	return q, nil
}

// Set implements pflag.Value.
func (q *Quality) Set(s string) error {
	parsed, err := ParseQuality(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Type implements pflag.Value.
func (q *Quality) Type() string {
	return "quality"
}

// UnmarshalText implements encoding.TextUnmarshaler, used by config decoders.
func (q *Quality) UnmarshalText(text []byte) error {
	return q.Set(string(text))
}
