// Package metrics exports resampler stream counters to Prometheus.
//
// Observe reads the counters of a Resampler, so it must be called from the
// goroutine that owns it, typically right after each Process call. The
// exported series themselves are safe to scrape concurrently.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	samplerate "github.com/tphakala/go-samplerate"
)

// Source is the part of a Resampler the metrics read.
type Source interface {
	Stats() samplerate.Stats
	Ratio() float64
	Quality() samplerate.Quality
}

// Error kinds used as the "kind" label of the error counter.
const (
	kindInvalidRatio = "invalid_ratio"
	kindInvalidInput = "invalid_input"
	kindConversion   = "conversion"
	kindClosed       = "closed"
	kindOther        = "other"
)

// StreamMetrics holds the Prometheus collectors for resampler streams. All
// series carry a "stream" label naming the stream.
type StreamMetrics struct {
	inputFrames  *prometheus.GaugeVec   // Frames consumed since creation or the last Reset
	outputFrames *prometheus.GaugeVec   // Frames produced since creation or the last Reset
	ratio        *prometheus.GaugeVec   // Most recent conversion ratio
	info         *prometheus.GaugeVec   // Converter in use, value always 1
	errors       *prometheus.CounterVec // Failed calls by error kind
}

// New creates the stream collectors and registers them with reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *StreamMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &StreamMetrics{
		inputFrames: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerate_input_frames",
				Help: "Input frames consumed by the resampler since creation or the last reset",
			},
			[]string{"stream"},
		),
		outputFrames: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerate_output_frames",
				Help: "Output frames produced by the resampler since creation or the last reset",
			},
			[]string{"stream"},
		),
		ratio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerate_ratio",
				Help: "Most recent conversion ratio (output rate / input rate)",
			},
			[]string{"stream"},
		),
		info: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerate_converter_info",
				Help: "Converter used by the stream, always 1",
			},
			[]string{"stream", "converter"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samplerate_errors_total",
				Help: "Failed resampler calls by error kind",
			},
			[]string{"stream", "kind"},
		),
	}
}

// Observe records the current counters of src under the given stream name.
func (m *StreamMetrics) Observe(stream string, src Source) {
	st := src.Stats()
	m.inputFrames.WithLabelValues(stream).Set(float64(st.InputFrames))
	m.outputFrames.WithLabelValues(stream).Set(float64(st.OutputFrames))
	m.ratio.WithLabelValues(stream).Set(src.Ratio())
	m.info.WithLabelValues(stream, src.Quality().String()).Set(1)
}

// ObserveError counts a failed call. A nil err is ignored.
func (m *StreamMetrics) ObserveError(stream string, err error) {
	if err == nil {
		return
	}
	m.errors.WithLabelValues(stream, errorKind(err)).Inc()
}

// Remove deletes every series of the stream, for example after Close.
func (m *StreamMetrics) Remove(stream string) {
	labels := prometheus.Labels{"stream": stream}
	m.inputFrames.DeletePartialMatch(labels)
	m.outputFrames.DeletePartialMatch(labels)
	m.ratio.DeletePartialMatch(labels)
	m.info.DeletePartialMatch(labels)
	m.errors.DeletePartialMatch(labels)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, samplerate.ErrInvalidRatio):
		return kindInvalidRatio
	case errors.Is(err, samplerate.ErrInvalidInput):
		return kindInvalidInput
	case errors.Is(err, samplerate.ErrClosed):
		return kindClosed
	case errors.Is(err, samplerate.ErrConversion):
		return kindConversion
	default:
		return kindOther
	}
}
