package samplerate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-samplerate/internal/engine"
	"github.com/tphakala/go-samplerate/internal/testutil"
)

var allQualities = []Quality{SincBest, SincMedium, SincFastest, ZeroOrderHold, Linear}

// countingConverter passes frames through unchanged and records every call.
type countingConverter struct {
	channels   int
	calls      map[string]int
	processErr error
	failAfter  int  // Process calls that succeed before processErr is returned
	fillOutput bool // pad every output buffer to capacity
}

func newCountingConverter(channels int) *countingConverter {
	return &countingConverter{channels: channels, calls: map[string]int{}}
}

func (c *countingConverter) Process(d *engine.Data) error {
	c.calls["Process"]++
	if c.processErr != nil && c.calls["Process"] > c.failAfter {
		return c.processErr
	}
	n := min(d.InputFrames, d.OutputFrames)
	copy(d.Out, d.In[:n*c.channels])
	d.InputFramesUsed = n
	d.OutputFramesGen = n
	if c.fillOutput {
		clear(d.Out[n*c.channels : d.OutputFrames*c.channels])
		d.OutputFramesGen = d.OutputFrames
	}
	return nil
}

func (c *countingConverter) Reset() error { c.calls["Reset"]++; return nil }

func (c *countingConverter) SetRatio(float64) error { c.calls["SetRatio"]++; return nil }

func (c *countingConverter) CheckRatio(float64) error { c.calls["CheckRatio"]++; return nil }

func (c *countingConverter) SetMaxRatioStep(float64) error { c.calls["SetMaxRatioStep"]++; return nil }

func (c *countingConverter) Close() error { c.calls["Close"]++; return nil }

func (c *countingConverter) total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func newTestResampler(t *testing.T, q Quality, channels int) *Resampler {
	t.Helper()
	r, err := New(&Config{Quality: q, Channels: channels})
	require.NoError(t, err)
	t.Cleanup(func() {
		if !r.closed {
			require.NoError(t, r.Close())
		}
	})
	return r
}

// splitBlocks cuts interleaved samples into blocks of at most frames frames.
func splitBlocks(in []float32, channels, frames int) [][]float32 {
	var blocks [][]float32
	for len(in) > 0 {
		n := min(frames*channels, len(in))
		blocks = append(blocks, in[:n])
		in = in[n:]
	}
	return blocks
}

func TestNew_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		config *Config
	}{
		{"nil config", nil},
		{"unknown quality", &Config{Quality: Quality(9), Channels: 1}},
		{"negative quality", &Config{Quality: Quality(-1), Channels: 1}},
		{"zero channels", &Config{Quality: Linear, Channels: 0}},
		{"too many channels", &Config{Quality: Linear, Channels: maxChannels + 1}},
		{"default ratio too large", &Config{Quality: Linear, Channels: 1, DefaultRatio: 1000}},
		{"negative default ratio", &Config{Quality: Linear, Channels: 1, DefaultRatio: -2}},
		{"step below one", &Config{Quality: Linear, Channels: 1, MaxRatioStep: 0.5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New(tc.config)
			require.ErrorIs(t, err, ErrInitialization)
			assert.Nil(t, r)
		})
	}
}

func TestNew_Native(t *testing.T) {
	if NativeAvailable {
		t.Skip("built with libsamplerate")
	}
	_, err := New(&Config{Quality: SincFastest, Channels: 2, Native: true})
	require.ErrorIs(t, err, ErrInitialization)
	assert.ErrorIs(t, err, engine.ErrNotAvailable)
}

func TestNew_Accessors(t *testing.T) {
	r, err := New(&Config{Quality: SincMedium, Channels: 3, DefaultRatio: 0.5})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, SincMedium, r.Quality())
	assert.Equal(t, 3, r.Channels())
	assert.Zero(t, r.Ratio())
	assert.InDelta(t, 0.5, r.DefaultRatio(), 0)
	assert.Equal(t, Stats{}, r.Stats())
}

func TestProcess_SilenceLength(t *testing.T) {
	const frames = 2000
	ratios := []float64{0.5, 48000.0 / 44100.0, 2.0, 3.0}

	for _, q := range allQualities {
		for _, ratio := range ratios {
			r := newTestResampler(t, q, 2)

			out, err := r.Process(make([]float32, frames*2), ratio, true)
			require.NoError(t, err)
			require.Zero(t, len(out)%2)

			testutil.AssertFrameCount(t, len(out)/2, frames, ratio, 1, "%s at %.4f", q, ratio)
			for i, v := range out {
				require.Zero(t, v, "%s at %.4f sample %d", q, ratio, i)
			}

			st := r.Stats()
			assert.Equal(t, int64(frames), st.InputFrames)
			assert.Equal(t, int64(len(out)/2), st.OutputFrames)
		}
	}
}

func TestProcess_StreamingEquivalence(t *testing.T) {
	in := testutil.Sine(5000, 2, 997, 44100, 0.9)
	const ratio = 48000.0 / 44100.0

	for _, q := range allQualities {
		t.Run(q.String(), func(t *testing.T) {
			whole := newTestResampler(t, q, 2)
			want, err := whole.Process(in, ratio, true)
			require.NoError(t, err)

			for _, blockFrames := range []int{1, 64, 1000, 4999} {
				r := newTestResampler(t, q, 2)
				var got []float32
				for _, block := range splitBlocks(in, 2, blockFrames) {
					out, err := r.Process(block, ratio, false)
					require.NoError(t, err)
					got = append(got, out...)
				}
				tail, err := r.EndInput()
				require.NoError(t, err)
				got = append(got, tail...)

				require.Equal(t, want, got, "block size %d", blockFrames)
				assert.Equal(t, whole.Stats(), r.Stats())
			}
		})
	}
}

func TestReset_ReproducesOutput(t *testing.T) {
	in := testutil.Sine(3000, 1, 440, 22050, 0.5)

	for _, q := range allQualities {
		t.Run(q.String(), func(t *testing.T) {
			r := newTestResampler(t, q, 1)

			first, err := r.Process(in, 0.8, true)
			require.NoError(t, err)

			require.NoError(t, r.Reset())
			assert.Equal(t, Stats{}, r.Stats())
			assert.Zero(t, r.Ratio())

			second, err := r.Process(in, 0.8, true)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestSetRatio_StepLimit(t *testing.T) {
	r := newTestResampler(t, SincFastest, 1)
	require.NoError(t, r.SetRatio(0.01))

	_, err := r.Process(make([]float32, 100), 10, false)
	require.ErrorIs(t, err, ErrInvalidRatio)
	assert.ErrorIs(t, err, engine.ErrRatioStep)
	assert.Equal(t, Stats{}, r.Stats())
	assert.InDelta(t, 0.01, r.Ratio(), 0)

	// A ratio within the step still converts.
	_, err = r.Process(make([]float32, 100), 0.02, false)
	require.NoError(t, err)
	assert.Equal(t, int64(100), r.Stats().InputFrames)
}

func TestConfig_MaxRatioStep(t *testing.T) {
	r, err := New(&Config{Quality: Linear, Channels: 1, MaxRatioStep: 2})
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.SetRatio(1))

	_, err = r.Process(make([]float32, 10), 2.5, false)
	require.ErrorIs(t, err, ErrInvalidRatio)

	_, err = r.Process(make([]float32, 10), 1.9, false)
	require.NoError(t, err)
}

func TestSetRatio_Invalid(t *testing.T) {
	r := newTestResampler(t, Linear, 1)
	for _, ratio := range []float64{0, -1, 1.0 / 512, 300, math.NaN()} {
		assert.ErrorIs(t, r.SetRatio(ratio), ErrInvalidRatio, "ratio %v", ratio)
	}
	assert.Zero(t, r.Ratio())
}

func TestProcess_InvalidRatio(t *testing.T) {
	r := newTestResampler(t, SincMedium, 2)
	for _, ratio := range []float64{-0.5, 1.0 / 300, 257, math.Inf(1), math.NaN()} {
		_, err := r.Process(make([]float32, 8), ratio, false)
		require.ErrorIs(t, err, ErrInvalidRatio, "ratio %v", ratio)
		assert.ErrorIs(t, err, engine.ErrBadRatio)
	}
	assert.Equal(t, Stats{}, r.Stats())
}

func TestProcess_PartialFrame(t *testing.T) {
	r := newTestResampler(t, Linear, 2)
	_, err := r.Process(make([]float32, 3), 1, false)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, Stats{}, r.Stats())
}

func TestProcess_InputAfterEnd(t *testing.T) {
	r := newTestResampler(t, SincFastest, 1)

	_, err := r.Process(make([]float32, 100), 1.5, true)
	require.NoError(t, err)

	_, err = r.Process(make([]float32, 100), 1.5, false)
	require.ErrorIs(t, err, ErrConversion)
	assert.ErrorIs(t, err, engine.ErrInputAfterEnd)

	require.NoError(t, r.Reset())
	_, err = r.Process(make([]float32, 100), 1.5, false)
	require.NoError(t, err)
}

func TestEndInput_Drains(t *testing.T) {
	const frames = 3000
	in := testutil.Sine(frames, 1, 1000, 44100, 0.5)

	for _, q := range []Quality{SincBest, SincFastest, Linear} {
		t.Run(q.String(), func(t *testing.T) {
			r := newTestResampler(t, q, 1)

			var total int
			for _, block := range splitBlocks(in, 1, 512) {
				out, err := r.Process(block, 2, false)
				require.NoError(t, err)
				total += len(out)
			}

			tail, err := r.EndInput()
			require.NoError(t, err)
			assert.NotEmpty(t, tail, "converter holds back frames until end of input")
			total += len(tail)
			testutil.AssertFrameCount(t, total, frames, 2, 1)
			testutil.AssertFinite(t, tail)

			again, err := r.EndInput()
			require.NoError(t, err)
			assert.Empty(t, again)
		})
	}
}

func TestDefaultRatio_SurvivesReset(t *testing.T) {
	r, err := New(&Config{Quality: Linear, Channels: 1, DefaultRatio: 0.5})
	require.NoError(t, err)
	defer r.Close()

	in := testutil.Sine(100, 1, 440, 8000, 0.5)

	out, err := r.Process(in, 0, true)
	require.NoError(t, err)
	testutil.AssertFrameCount(t, len(out), 100, 0.5, 1)
	assert.InDelta(t, 0.5, r.Ratio(), 0)

	require.NoError(t, r.Reset())
	assert.Zero(t, r.Ratio())
	assert.InDelta(t, 0.5, r.DefaultRatio(), 0)

	it := r.ProcessIter(SliceSource(in), Ratios())
	got := concat(collect(t, it))
	require.NoError(t, it.Err())
	assert.Equal(t, out, got)
}

func TestSetDefaultRatio(t *testing.T) {
	r := newTestResampler(t, Linear, 1)
	in := make([]float32, 100)

	_, err := r.Process(in, 0, false)
	require.ErrorIs(t, err, ErrInvalidRatio)
	assert.ErrorIs(t, err, ErrNoRatio)
	assert.Equal(t, Stats{}, r.Stats())

	for _, ratio := range []float64{-1, 1.0 / 512, 300, math.NaN()} {
		assert.ErrorIs(t, r.SetDefaultRatio(ratio), ErrInvalidRatio, "ratio %v", ratio)
	}
	assert.Zero(t, r.DefaultRatio())

	require.NoError(t, r.SetDefaultRatio(2))
	out, err := r.Process(in, 0, true)
	require.NoError(t, err)
	testutil.AssertFrameCount(t, len(out), 100, 2, 1)

	// An explicit ratio still wins over the default.
	require.NoError(t, r.Reset())
	out, err = r.Process(in, 1.5, true)
	require.NoError(t, err)
	testutil.AssertFrameCount(t, len(out), 100, 1.5, 1)

	require.NoError(t, r.SetDefaultRatio(0))
	require.NoError(t, r.Reset())
	_, err = r.Process(in, 0, false)
	assert.ErrorIs(t, err, ErrNoRatio)
}

func TestEndInput_UsesDefaultRatio(t *testing.T) {
	r, err := New(&Config{Quality: SincFastest, Channels: 1, DefaultRatio: 2})
	require.NoError(t, err)
	defer r.Close()

	out, err := r.EndInput()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)

	// The drain ran at the default ratio and ended the stream.
	_, err = r.Process(make([]float32, 10), 0, false)
	assert.ErrorIs(t, err, engine.ErrInputAfterEnd)
}

func TestEndInput_Fresh(t *testing.T) {
	r := newTestResampler(t, SincMedium, 2)
	out, err := r.EndInput()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestProcess_RatioChange(t *testing.T) {
	r := newTestResampler(t, SincMedium, 1)
	in := testutil.Sine(4000, 1, 500, 16000, 0.5)
	blocks := splitBlocks(in, 1, 1000)

	ratios := []float64{1, 1.5, 2, 0.75}
	var total int
	for i, block := range blocks {
		out, err := r.Process(block, ratios[i], false)
		require.NoError(t, err)
		testutil.AssertFinite(t, out, "block %d", i)
		total += len(out)
		assert.InDelta(t, ratios[i], r.Ratio(), 0)
	}
	tail, err := r.EndInput()
	require.NoError(t, err)
	total += len(tail)

	// Ramps between blocks blur the exact count; it stays between the extremes.
	assert.Greater(t, float64(total), 4000*0.75)
	assert.Less(t, total, 4000*2)
	assert.Equal(t, int64(total), r.Stats().OutputFrames)
}

func TestProcessFloat64_MatchesFloat32(t *testing.T) {
	in32 := testutil.Sine(1500, 2, 300, 8000, 0.25)
	in64 := Float32To64(nil, in32)

	r32 := newTestResampler(t, SincFastest, 2)
	r64 := newTestResampler(t, SincFastest, 2)

	want, err := r32.Process(in32, 1.25, true)
	require.NoError(t, err)
	got, err := r64.ProcessFloat64(in64, 1.25, true)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, float64(want[i]), got[i], 0)
	}
}

func TestProcess_EngineError(t *testing.T) {
	conv := newCountingConverter(1)
	conv.processErr = engine.ErrBadInternalState
	r, err := newResampler(conv, &Config{Quality: Linear, Channels: 1})
	require.NoError(t, err)

	_, err = r.Process(make([]float32, 10), 1, false)
	require.ErrorIs(t, err, ErrConversion)
	assert.ErrorIs(t, err, engine.ErrBadInternalState)
	assert.Equal(t, Stats{}, r.Stats())
	assert.Zero(t, r.pending)
}

func TestProcess_EngineErrorMidBlock(t *testing.T) {
	conv := newCountingConverter(1)
	r, err := newResampler(conv, &Config{Quality: Linear, Channels: 1})
	require.NoError(t, err)

	_, err = r.Process(make([]float32, 10), 1, false)
	require.NoError(t, err)
	before := r.Stats()

	// The first engine call fills its buffer, so a second call follows and fails.
	conv.fillOutput = true
	conv.processErr = engine.ErrBadInternalState
	conv.failAfter = conv.calls["Process"] + 1

	_, err = r.Process(make([]float32, 10), 1, false)
	require.ErrorIs(t, err, ErrConversion)
	assert.Equal(t, conv.failAfter+1, conv.calls["Process"])
	assert.Equal(t, before, r.Stats())
	assert.Zero(t, r.pending)
}

func TestProcess_CountersAdvance(t *testing.T) {
	conv := newCountingConverter(2)
	r, err := newResampler(conv, &Config{Quality: Linear, Channels: 2})
	require.NoError(t, err)

	for range 3 {
		out, err := r.Process(make([]float32, 2*50), 1, false)
		require.NoError(t, err)
		assert.Len(t, out, 2*50)
	}
	assert.Equal(t, Stats{InputFrames: 150, OutputFrames: 150}, r.Stats())
}

func TestClose_UseAfterClose(t *testing.T) {
	conv := newCountingConverter(1)
	r, err := newResampler(conv, &Config{Quality: Linear, Channels: 1, DefaultRatio: 1})
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Equal(t, 1, conv.calls["Close"])
	before := conv.total()

	ops := map[string]func() error{
		"Process": func() error {
			_, err := r.Process(make([]float32, 4), 1, false)
			return err
		},
		"ProcessFloat64": func() error {
			_, err := r.ProcessFloat64(make([]float64, 4), 1, true)
			return err
		},
		"EndInput": func() error {
			_, err := r.EndInput()
			return err
		},
		"SetRatio": func() error {
			return r.SetRatio(2)
		},
		"SetDefaultRatio": func() error {
			return r.SetDefaultRatio(2)
		},
		"Reset": func() error {
			return r.Reset()
		},
		"Close": func() error {
			return r.Close()
		},
		"ProcessIter": func() error {
			it := r.ProcessIter(SliceSource(make([]float32, 4)), FixedRatio(1))
			for it.Next() {
			}
			return it.Err()
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, op(), ErrClosed)
		})
	}

	assert.Equal(t, before, conv.total(), "no engine call after Close")
	assert.Equal(t, 1, conv.calls["Close"])
}

func TestClose_RealEngine(t *testing.T) {
	r, err := New(&Config{Quality: SincBest, Channels: 1})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	err = r.Close()
	require.ErrorIs(t, err, ErrClosed)
	assert.False(t, errors.Is(err, ErrConversion))
}
