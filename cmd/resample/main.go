// Command resample runs a test tone through the resampler and reports the
// stream counters. With --demo it compares every converter, sweeps the
// ratio and tries several channel layouts.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	samplerate "github.com/tphakala/go-samplerate"
)

func main() {
	var (
		inputRate  = pflag.Float64P("input-rate", "i", defaultInputRate, "Input sample rate in Hz")
		outputRate = pflag.Float64P("output-rate", "o", defaultOutputRate, "Output sample rate in Hz")
		channels   = pflag.IntP("channels", "c", defaultChannels, "Number of audio channels")
		blockSize  = pflag.Int("block", defaultBlockSize, "Frames per Process call")
		blocks     = pflag.Int("blocks", defaultBlocks, "Number of blocks to process")
		demo       = pflag.Bool("demo", false, "Run a demonstration")
		verbose    = pflag.BoolP("verbose", "v", false, "Verbose output")
	)
	quality := samplerate.SincMedium
	pflag.VarP(&quality, "quality", "q", "Converter: best, medium, fastest, zoh, linear")
	pflag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		Level(level).With().Timestamp().Logger()

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("demo failed")
		}
		return
	}

	ratio, err := samplerate.RatioFor(*inputRate, *outputRate)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rates")
	}

	r, err := samplerate.New(&samplerate.Config{Quality: quality, Channels: *channels})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create resampler")
	}
	defer r.Close() //nolint:errcheck // process exit

	fmt.Printf("Resampler created:\n")
	fmt.Printf("  Converter: %s\n", r.Quality())
	fmt.Printf("  %s\n", r.Quality().Description())
	fmt.Printf("  Ratio: %.6f (%g Hz -> %g Hz)\n", ratio, *inputRate, *outputRate)
	fmt.Printf("  Channels: %d\n", r.Channels())

	fmt.Println("\nProcessing test signal...")
	signal := generateTestSignal(*blockSize, *channels, *inputRate)
	start := time.Now()
	var produced int
	for i := range *blocks {
		out, err := r.Process(signal, ratio, false)
		if err != nil {
			log.Fatal().Err(err).Int("block", i).Msg("processing failed")
		}
		produced += len(out) / *channels
		log.Debug().Int("block", i).Int("frames", len(out) / *channels).Msg("block converted")
	}
	tail, err := r.EndInput()
	if err != nil {
		log.Fatal().Err(err).Msg("drain failed")
	}
	produced += len(tail) / *channels
	elapsed := time.Since(start)

	st := r.Stats()
	fmt.Printf("Input frames: %d\n", st.InputFrames)
	fmt.Printf("Output frames: %d (tail %d)\n", st.OutputFrames, len(tail) / *channels)
	fmt.Printf("Expected output: %.0f\n", math.Ceil(float64(st.InputFrames)*ratio))
	fmt.Printf("Elapsed: %v\n", elapsed)
	log.Debug().Int("produced", produced).Msg("done")
}

// generateTestSignal returns an interleaved 1 kHz tone.
func generateTestSignal(frames, channels int, sampleRate float64) []float32 {
	signal := make([]float32, frames*channels)
	omega := 2 * math.Pi * testSignalFrequency / sampleRate

	for i := range frames {
		v := float32(testSignalAmplitude * math.Sin(omega*float64(i)))
		for ch := range channels {
			signal[i*channels+ch] = v
		}
	}
	return signal
}

var allQualities = []samplerate.Quality{
	samplerate.SincBest,
	samplerate.SincMedium,
	samplerate.SincFastest,
	samplerate.ZeroOrderHold,
	samplerate.Linear,
}

func runDemo(w io.Writer) error {
	fmt.Fprintln(w, "=== Go Sample Rate Converter Demo ===")

	// Demo 1: Every converter at common conversions
	fmt.Fprintln(w, "1. Comparing Converters")
	fmt.Fprintln(w, "-----------------------")

	testRatios := []struct {
		from, to float64
		name     string
	}{
		{sampleRateCD, sampleRateDAT, "CD to DAT"},
		{sampleRateDAT, sampleRateCD, "DAT to CD"},
		{sampleRateCD, sampleRate2xCD, "CD to 2x"},
		{sampleRateHiRes, sampleRateCD, "Hi-res to CD"},
	}

	for _, tr := range testRatios {
		ratio := tr.to / tr.from
		fmt.Fprintf(w, "\n%s (%.0f Hz -> %.0f Hz, ratio: %.4f):\n", tr.name, tr.from, tr.to, ratio)

		signal := generateTestSignal(int(tr.from), stereoChannels, tr.from)
		for _, q := range allQualities {
			start := time.Now()
			out, err := samplerate.Resample(signal, q, stereoChannels, ratio)
			if err != nil {
				return fmt.Errorf("%s: %w", q, err)
			}
			fmt.Fprintf(w, "  %-26s %6d -> %6d frames in %v\n",
				q.String()+":", len(signal)/stereoChannels, len(out)/stereoChannels, time.Since(start).Round(time.Microsecond))
		}
	}

	// Demo 2: Ratio sweep, one ratio per block, ramped by the engine
	fmt.Fprintln(w, "\n2. Varispeed Sweep")
	fmt.Fprintln(w, "------------------")

	nominal := sampleRateDAT / sampleRateCD
	r, err := samplerate.New(&samplerate.Config{Quality: samplerate.SincFastest, Channels: stereoChannels})
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // demo cleanup

	block := generateTestSignal(defaultBlockSize, stereoChannels, sampleRateCD)
	blocks := make([][]float32, sweepSteps)
	for i := range blocks {
		blocks[i] = block
	}
	sweep := samplerate.RatioFunc(func(i int) float64 {
		return nominal * (1 + sweepDepth*math.Sin(2*math.Pi*float64(i)/sweepSteps))
	})

	it := r.ProcessIter(samplerate.SliceSource(blocks...), sweep)
	for i := 0; it.Next(); i++ {
		fmt.Fprintf(w, "  block %d: ratio %.4f, %d frames\n", i, r.Ratio(), len(it.Block())/stereoChannels)
	}
	if err := it.Err(); err != nil {
		return err
	}
	st := r.Stats()
	fmt.Fprintf(w, "  total: %d -> %d frames\n", st.InputFrames, st.OutputFrames)

	// Demo 3: Multi-channel processing
	fmt.Fprintln(w, "\n3. Multi-channel Processing")
	fmt.Fprintln(w, "---------------------------")

	channelCounts := []int{monoChannels, stereoChannels, surround5_1, surround7_1}
	for _, ch := range channelCounts {
		signal := generateTestSignal(int(sampleRateDAT)/10, ch, sampleRateDAT)
		start := time.Now()
		out, err := samplerate.Resample(signal, samplerate.SincMedium, ch, sampleRateCD/sampleRateDAT)
		if err != nil {
			return fmt.Errorf("%d channels: %w", ch, err)
		}
		fmt.Fprintf(w, "  %d channels: %d -> %d frames in %v\n",
			ch, len(signal)/ch, len(out)/ch, time.Since(start).Round(time.Microsecond))
	}

	fmt.Fprintln(w, "\n=== Demo Complete ===")
	return nil
}
