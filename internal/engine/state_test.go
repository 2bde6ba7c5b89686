package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-samplerate/internal/testutil"
)

var allConverters = []Converter{SincBest, SincMedium, SincFastest, ZeroOrderHold, Linear}

// convert feeds in to s in chunks of chunkFrames, signalling end of input on
// the last chunk, and returns everything produced.
func convert(t *testing.T, s *State, in []float32, ratio float64, chunkFrames int) []float32 {
	t.Helper()
	ch := s.Channels()
	frames := len(in) / ch
	outCap := int(math.Ceil(float64(chunkFrames)*ratio)) + 2*minChunkFrames
	buf := make([]float32, outCap*ch)

	var out []float32
	for pos := 0; ; {
		n := min(chunkFrames, frames-pos)
		d := &Data{
			In:           in[pos*ch : (pos+n)*ch],
			Out:          buf,
			InputFrames:  n,
			OutputFrames: outCap,
			EndOfInput:   pos+n == frames,
			Ratio:        ratio,
		}
		require.NoError(t, s.Process(d))
		require.Equal(t, n, d.InputFramesUsed, "output buffer should not limit input")
		out = append(out, buf[:d.OutputFramesGen*ch]...)
		pos += n
		if d.EndOfInput && d.OutputFramesGen == 0 {
			break
		}
	}
	return out
}

func TestNew_InvalidParams(t *testing.T) {
	testCases := []struct {
		name     string
		conv     Converter
		channels int
		want     error
	}{
		{"negative converter", Converter(-1), 1, ErrBadConverter},
		{"unknown converter", Converter(5), 1, ErrBadConverter},
		{"zero channels", Linear, 0, ErrBadChannelCount},
		{"negative channels", SincFastest, -2, ErrBadChannelCount},
		{"too many channels", ZeroOrderHold, maxChannelCount + 1, ErrBadChannelCount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.conv, tc.channels)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, s)
		})
	}
}

func TestNew_AllConverters(t *testing.T) {
	for _, conv := range allConverters {
		t.Run(conv.Name(), func(t *testing.T) {
			s, err := New(conv, 2)
			require.NoError(t, err)
			assert.Equal(t, conv, s.Converter())
			assert.Equal(t, 2, s.Channels())
			assert.Zero(t, s.LastRatio())
			require.NoError(t, s.Close())
		})
	}
}

func TestProcess_OutputLength(t *testing.T) {
	ratios := []float64{0.25, 0.5, 48000.0 / 44100.0, 1.0, 2.0, 3.7}
	const frames = 1000

	for _, conv := range allConverters {
		for _, ratio := range ratios {
			s, err := New(conv, 1)
			require.NoError(t, err)

			out := convert(t, s, make([]float32, frames), ratio, frames)
			want := math.Ceil(frames * ratio)
			assert.InDelta(t, want, float64(len(out)), 1,
				"%s ratio %.4f: got %d frames, want about %.0f", conv.Name(), ratio, len(out), want)
		}
	}
}

func TestProcess_Silence(t *testing.T) {
	for _, conv := range allConverters {
		t.Run(conv.Name(), func(t *testing.T) {
			s, err := New(conv, 2)
			require.NoError(t, err)

			out := convert(t, s, make([]float32, 2*500), 1.5, 128)
			require.NotEmpty(t, out)
			for i, v := range out {
				require.Zero(t, v, "sample %d", i)
			}
		})
	}
}

func TestProcess_StreamingEquivalence(t *testing.T) {
	in := testutil.Sine(3000, 2, 440, 44100, 0.8)
	chunks := []int{1, 7, 100, 1023}

	for _, conv := range allConverters {
		for _, ratio := range []float64{0.6, 48000.0 / 44100.0, 2.0} {
			whole, err := New(conv, 2)
			require.NoError(t, err)
			want := convert(t, whole, in, ratio, 3000)

			for _, chunk := range chunks {
				s, err := New(conv, 2)
				require.NoError(t, err)
				got := convert(t, s, in, ratio, chunk)
				require.Equal(t, want, got, "%s ratio %.3f chunk %d", conv.Name(), ratio, chunk)
			}
		}
	}
}

func TestProcess_DCGain(t *testing.T) {
	const frames = 4000

	for _, conv := range allConverters {
		for _, ratio := range []float64{0.5, 1.5} {
			s, err := New(conv, 1)
			require.NoError(t, err)

			out := convert(t, s, testutil.Constant(frames, 1, 0.5), ratio, 512)

			// Skip the edges where the kernel overlaps silence.
			margin := int(1000 * ratio)
			for i := margin; i < len(out)-margin; i++ {
				require.InDelta(t, 0.5, out[i], 1e-3, "%s ratio %.1f sample %d", conv.Name(), ratio, i)
			}
		}
	}
}

func TestProcess_PreservesFrequency(t *testing.T) {
	const (
		inRate  = 44100.0
		outRate = 48000.0
		tone    = 1000.0
	)
	in := testutil.Sine(8192, 1, tone, inRate, 0.5)

	for _, conv := range []Converter{SincBest, SincMedium, SincFastest, Linear} {
		t.Run(conv.Name(), func(t *testing.T) {
			s, err := New(conv, 1)
			require.NoError(t, err)

			out := convert(t, s, in, outRate/inRate, 1024)
			peak := testutil.PeakFrequency(testutil.Channel(out, 1, 0), outRate)
			// One FFT bin at 48 kHz over ~8900 samples is about 5.4 Hz.
			assert.InDelta(t, tone, peak, 10)
		})
	}
}

func TestProcess_OutputLimited(t *testing.T) {
	in := testutil.Sine(100, 1, 100, 8000, 1)

	ref, err := New(Linear, 1)
	require.NoError(t, err)
	want := convert(t, ref, in, 2, 100)

	s, err := New(Linear, 1)
	require.NoError(t, err)

	// Ten frames of output room per call; leftover input is offered again.
	buf := make([]float32, 10)
	var got []float32
	for pos := 0; ; {
		d := &Data{In: in[pos:], Out: buf, InputFrames: len(in) - pos, OutputFrames: 10, EndOfInput: true, Ratio: 2}
		require.NoError(t, s.Process(d))
		require.LessOrEqual(t, d.OutputFramesGen, 10)
		got = append(got, buf[:d.OutputFramesGen]...)
		pos += d.InputFramesUsed
		if d.OutputFramesGen == 0 {
			require.Equal(t, len(in), pos)
			break
		}
	}

	assert.Equal(t, want, got)
}

func TestProcess_RatioRamp(t *testing.T) {
	s, err := New(Linear, 1)
	require.NoError(t, err)
	require.NoError(t, s.SetRatio(1))

	in := make([]float32, 1000)
	out := make([]float32, 1000)
	d := &Data{In: in, Out: out, InputFrames: 1000, OutputFrames: 1000, Ratio: 2}
	require.NoError(t, s.Process(d))

	require.Equal(t, 1000, d.OutputFramesGen)
	assert.Greater(t, s.LastRatio(), 1.9)
	assert.Less(t, s.LastRatio(), 2.0)
}

func TestProcess_ValidationLeavesStateUntouched(t *testing.T) {
	s, err := New(SincFastest, 2)
	require.NoError(t, err)
	require.NoError(t, s.SetRatio(0.01))

	buf := make([]float32, 64)
	testCases := []struct {
		name string
		data *Data
		want error
	}{
		{"nil data", nil, ErrBadData},
		{"negative frames", &Data{InputFrames: -1, Ratio: 0.01}, ErrBadData},
		{"short input", &Data{In: buf[:3], Out: buf, InputFrames: 2, OutputFrames: 1, Ratio: 0.01}, ErrBadDataPtr},
		{"short output", &Data{In: buf, Out: buf[:1], InputFrames: 1, OutputFrames: 1, Ratio: 0.01}, ErrBadDataPtr},
		{"ratio too small", &Data{In: buf, Out: buf, Ratio: 1.0 / 300}, ErrBadRatio},
		{"ratio NaN", &Data{In: buf, Out: buf, Ratio: math.NaN()}, ErrBadRatio},
		{"step too large", &Data{In: buf, Out: buf, InputFrames: 4, OutputFrames: 4, Ratio: 10}, ErrRatioStep},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, s.Process(tc.data), tc.want)
			assert.InDelta(t, 0.01, s.LastRatio(), 1e-15)
			assert.Zero(t, s.cur)
			assert.Zero(t, s.hist.end())
		})
	}
}

func TestSetMaxRatioStep(t *testing.T) {
	s, err := New(Linear, 1)
	require.NoError(t, err)

	require.ErrorIs(t, s.SetMaxRatioStep(0.5), ErrBadRatio)
	require.ErrorIs(t, s.SetMaxRatioStep(math.NaN()), ErrBadRatio)
	require.NoError(t, s.SetMaxRatioStep(2))
	require.NoError(t, s.SetRatio(1))

	assert.NoError(t, s.CheckRatio(2))
	assert.NoError(t, s.CheckRatio(0.5))
	assert.ErrorIs(t, s.CheckRatio(2.01), ErrRatioStep)
	assert.ErrorIs(t, s.CheckRatio(0.49), ErrRatioStep)
}

func TestSetRatio_Invalid(t *testing.T) {
	s, err := New(Linear, 1)
	require.NoError(t, err)

	for _, r := range []float64{0, -1, 257, math.Inf(1), math.NaN()} {
		assert.ErrorIs(t, s.SetRatio(r), ErrBadRatio, "ratio %v", r)
	}
	assert.Zero(t, s.LastRatio())
}

func TestProcess_InputAfterEnd(t *testing.T) {
	s, err := New(ZeroOrderHold, 1)
	require.NoError(t, err)

	convert(t, s, make([]float32, 10), 1, 10)

	buf := make([]float32, 16)
	err = s.Process(&Data{In: buf, Out: buf, InputFrames: 4, OutputFrames: 16, Ratio: 1})
	require.ErrorIs(t, err, ErrInputAfterEnd)

	// Draining with no input stays legal and yields nothing.
	d := &Data{Out: buf, OutputFrames: 16, EndOfInput: true, Ratio: 1}
	require.NoError(t, s.Process(d))
	assert.Zero(t, d.OutputFramesGen)

	require.NoError(t, s.Reset())
	require.NoError(t, s.Process(&Data{In: buf, Out: buf, InputFrames: 4, OutputFrames: 16, Ratio: 1}))
}

func TestReset_ReproducesOutput(t *testing.T) {
	in := testutil.Sine(2000, 2, 300, 16000, 0.7)

	for _, conv := range allConverters {
		t.Run(conv.Name(), func(t *testing.T) {
			s, err := New(conv, 2)
			require.NoError(t, err)

			first := convert(t, s, in, 0.75, 333)
			require.NoError(t, s.Reset())
			assert.Zero(t, s.LastRatio())
			second := convert(t, s, in, 0.75, 333)

			assert.Equal(t, first, second)
		})
	}
}

func TestClose(t *testing.T) {
	s, err := New(SincMedium, 1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	buf := make([]float32, 4)
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.ErrorIs(t, s.Process(&Data{In: buf, Out: buf, InputFrames: 1, OutputFrames: 1, Ratio: 1}), ErrClosed)
	assert.ErrorIs(t, s.Reset(), ErrClosed)
	assert.ErrorIs(t, s.SetRatio(1), ErrClosed)
	assert.ErrorIs(t, s.CheckRatio(1), ErrClosed)
	assert.ErrorIs(t, s.SetMaxRatioStep(2), ErrClosed)
}
