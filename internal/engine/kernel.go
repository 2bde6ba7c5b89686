package engine

import (
	"math"
	"sync"

	"github.com/tphakala/go-samplerate/internal/filter"
	"github.com/tphakala/go-samplerate/internal/simdops"
)

// kernel computes one output frame from the history around the read
// position cur+frac, where cur is an absolute frame index and frac is in [0, 1).
type kernel interface {
	// span returns how many frames before and after cur the kernel reads
	// at the given ratio.
	span(ratio float64) (left, right int)

	// interpolate writes one sample per channel into out.
	interpolate(h *history, cur int, frac, ratio float64, out []float32)
}

func newKernel(conv Converter) (kernel, error) {
	switch conv {
	case ZeroOrderHold:
		return zohKernel{}, nil
	case Linear:
		return linearKernel{}, nil
	case SincBest, SincMedium, SincFastest:
		table, err := sincTable(conv)
		if err != nil {
			return nil, err
		}
		return &sincKernel{table: table, ops: simdops.Float64Ops()}, nil
	default:
		return nil, ErrBadConverter
	}
}

// zohKernel holds the most recent input frame.
type zohKernel struct{}

func (zohKernel) span(float64) (left, right int) { return 0, 0 }

func (zohKernel) interpolate(h *history, cur int, _, _ float64, out []float32) {
	i := cur - h.base
	for c, ch := range h.frames {
		out[c] = float32(ch[i])
	}
}

// linearKernel interpolates between the two frames around the read position.
type linearKernel struct{}

func (linearKernel) span(float64) (left, right int) { return 0, 1 }

func (linearKernel) interpolate(h *history, cur int, frac, _ float64, out []float32) {
	i := cur - h.base
	for c, ch := range h.frames {
		x0 := ch[i]
		out[c] = float32(x0 + frac*(ch[i+1]-x0))
	}
}

// sincKernel is a band limited interpolator over a windowed-sinc table.
// When downsampling the kernel is stretched by 1/ratio so its cutoff follows
// the output Nyquist frequency.
type sincKernel struct {
	table   *filter.SincTable
	ops     *simdops.Ops64
	weights []float64
}

func (k *sincKernel) half(ratio float64) int {
	scale := min(ratio, unityRatio)
	return int(math.Ceil(float64(k.table.HalfLen) / scale))
}

func (k *sincKernel) span(ratio float64) (left, right int) {
	half := k.half(ratio)
	return half - 1, half
}

func (k *sincKernel) interpolate(h *history, cur int, frac, ratio float64, out []float32) {
	scale := min(ratio, unityRatio)
	half := k.half(ratio)
	lo := max(cur-half+1, h.base)
	hi := cur + half
	n := hi - lo + 1

	if cap(k.weights) < n {
		k.weights = make([]float64, n)
	}
	w := k.weights[:n]
	for i := range w {
		x := (float64(lo+i-cur) - frac) * scale
		w[i] = k.table.Value(x) * scale
	}

	off := lo - h.base
	for c, ch := range h.frames {
		out[c] = float32(k.ops.DotProductUnsafe(ch[off:off+n], w))
	}
}

// Tables are built on first use and shared read-only between converters.
var sincTables [numSincConverters]struct {
	once  sync.Once
	table *filter.SincTable
	err   error
}

func sincTable(conv Converter) (*filter.SincTable, error) {
	entry := &sincTables[conv]
	entry.once.Do(func() {
		params, _ := SincParams(conv)
		entry.table, entry.err = filter.DesignSincTable(params)
	})
	return entry.table, entry.err
}

// SincParams returns the kernel preset for a sinc converter. The second
// result is false for converters that do not use a sinc table.
func SincParams(conv Converter) (filter.SincParams, bool) {
	switch conv {
	case SincBest:
		return filter.SincParams{
			Passband:    sincBestPassband,
			Attenuation: sincBestAttenuation,
			Oversample:  sincBestOversample,
		}, true
	case SincMedium:
		return filter.SincParams{
			Passband:    sincMediumPassband,
			Attenuation: sincMediumAttenuation,
			Oversample:  sincMediumOversample,
		}, true
	case SincFastest:
		return filter.SincParams{
			Passband:    sincFastestPassband,
			Attenuation: sincFastestAttenuation,
			Oversample:  sincFastestOversample,
		}, true
	default:
		return filter.SincParams{}, false
	}
}
