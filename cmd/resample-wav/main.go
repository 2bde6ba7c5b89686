// Command resample-wav converts the sample rate of an audio file and writes
// the result as WAV. WAV, MP3 and Ogg Vorbis inputs are accepted.
//
// Usage:
//
//	resample-wav --rate 48000 input.wav output.wav
//	resample-wav --rate 16000 --quality fastest speech.mp3 speech_16k.wav
//	resample-wav --job varispeed.yaml music.ogg music.wav
//
// A job file holds the same settings and may add a ratio schedule, applied
// block by block against the input timeline:
//
//	quality: medium
//	rate: 48000
//	block_frames: 4096
//	schedule:
//	  - {at: 0, ratio: 1.0884}
//	  - {at: 2.5, ratio: 1.2}
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	samplerate "github.com/tphakala/go-samplerate"
	"github.com/tphakala/go-samplerate/metrics"
)

const (
	// Frames read from the input per conversion call
	defaultBlockFrames = 4096

	minRequiredArgs = 2
	percentScale    = 100
	progressStep    = 10 // Log progress every N%
)

func main() {
	log := newLogger(os.Stderr, false)
	if err := run(os.Args[1:], os.Stdout, &log); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("resample-wav failed")
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// options collects the command line.
type options struct {
	job         job
	jobFile     string
	native      bool
	metricsFile string
	verbose     bool
	input       string
	output      string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{job: defaultJob()}
	flags := pflag.NewFlagSet("resample-wav", pflag.ContinueOnError)

	quality := opts.job.Quality
	flags.VarP(&quality, "quality", "q", "Converter: best, medium, fastest, zoh, linear")
	rate := flags.IntP("rate", "r", 0, "Output sample rate in Hz")
	ratio := flags.Float64("ratio", 0, "Conversion ratio (output rate / input rate), instead of --rate")
	block := flags.Int("block", defaultBlockFrames, "Input frames per conversion call")
	bits := flags.Int("bits", 0, "Output bit depth (default: input bit depth)")
	flags.StringVarP(&opts.jobFile, "job", "j", "", "YAML job file")
	flags.BoolVar(&opts.native, "native", false, "Use the system libsamplerate (libsamplerate builds only)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resample-wav [options] input output.wav\n\nOptions:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() < minRequiredArgs {
		flags.Usage()
		return nil, fmt.Errorf("expected input and output paths, got %d arguments", flags.NArg())
	}
	opts.input, opts.output = flags.Arg(0), flags.Arg(1)

	if opts.jobFile != "" {
		j, err := loadJob(opts.jobFile)
		if err != nil {
			return nil, err
		}
		opts.job = *j
	}

	// Flags given explicitly win over the job file.
	if flags.Changed("quality") {
		opts.job.Quality = quality
	}
	if flags.Changed("rate") {
		opts.job.Rate = *rate
		opts.job.Ratio = 0
	}
	if flags.Changed("ratio") {
		opts.job.Ratio = *ratio
		opts.job.Rate = 0
	}
	if flags.Changed("block") || opts.jobFile == "" {
		opts.job.BlockFrames = *block
	}
	if flags.Changed("bits") {
		opts.job.BitDepth = *bits
	}
	return opts, nil
}

func run(args []string, stdout io.Writer, log *zerolog.Logger) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.verbose {
		*log = log.Level(zerolog.DebugLevel)
	}

	start := time.Now()
	res, err := resampleFile(opts, log)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(stdout, "Resampled %s -> %s\n", filepath.Base(opts.input), filepath.Base(opts.output))
	fmt.Fprintf(stdout, "  %d Hz -> %d Hz (%d channels, %d-bit, %s)\n",
		res.inputRate, res.outputRate, res.channels, res.bitDepth, res.quality)
	fmt.Fprintf(stdout, "  %d frames -> %d frames\n", res.stats.InputFrames, res.stats.OutputFrames)
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(stdout, "  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(res.stats.InputFrames)/float64(res.inputRate)/secs)
	}
	return nil
}

// result summarizes one conversion.
type result struct {
	inputRate  int
	outputRate int
	channels   int
	bitDepth   int
	quality    samplerate.Quality
	stats      samplerate.Stats
}

func resampleFile(opts *options, log *zerolog.Logger) (res *result, err error) {
	// 1. Open and validate input
	in, err := openInput(opts.input)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	log.Debug().
		Str("input", opts.input).
		Str("format", in.format).
		Int("rate", in.rate).
		Int("channels", in.channels).
		Int("bits", in.bitDepth).
		Msg("input opened")

	// 2. Resolve the job against the input
	outputRate, ratios, err := opts.job.resolve(in.rate)
	if err != nil {
		return nil, err
	}
	bitDepth := opts.job.BitDepth
	if bitDepth == 0 {
		bitDepth = in.bitDepth
	}

	// 3. Create resampler
	r, err := samplerate.New(&samplerate.Config{
		Quality:  opts.job.Quality,
		Channels: in.channels,
		Native:   opts.native,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	// 4. Create output writer
	out, err := createWAVOutput(opts.output, outputRate, bitDepth, in.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			res, err = nil, closeErr
		}
	}()

	var streamMetrics *metrics.StreamMetrics
	reg := prometheus.NewRegistry()
	if opts.metricsFile != "" {
		streamMetrics = metrics.New(reg)
	}
	stream := filepath.Base(opts.input)

	log.Info().
		Str("quality", opts.job.Quality.String()).
		Int("from", in.rate).
		Int("to", outputRate).
		Int("schedule_points", len(opts.job.Schedule)).
		Msg("resampling")

	// 5. Main processing loop
	progress := newProgressTracker(in.totalFrames, log)
	it := r.ProcessIter(newBlockReader(in, opts.job.BlockFrames), ratios)
	for it.Next() {
		if err := out.Write(it.Block()); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}
		if streamMetrics != nil {
			streamMetrics.Observe(stream, r)
		}
		progress.reportIfNeeded(r.Stats().InputFrames)
	}
	if err := it.Err(); err != nil {
		if streamMetrics != nil {
			streamMetrics.ObserveError(stream, err)
			writeMetrics(opts.metricsFile, reg, log)
		}
		return nil, err
	}

	if streamMetrics != nil {
		writeMetrics(opts.metricsFile, reg, log)
	}

	return &result{
		inputRate:  in.rate,
		outputRate: outputRate,
		channels:   in.channels,
		bitDepth:   bitDepth,
		quality:    r.Quality(),
		stats:      r.Stats(),
	}, nil
}

func writeMetrics(path string, reg *prometheus.Registry, log *zerolog.Logger) {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write metrics")
		return
	}
	log.Debug().Str("path", path).Msg("metrics written")
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	log          *zerolog.Logger
}

func newProgressTracker(totalFrames int64, log *zerolog.Logger) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, log: log}
}

// reportIfNeeded logs progress each time another step is crossed.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if p.totalFrames <= 0 {
		return
	}
	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressStep {
		p.log.Debug().Int("percent", progress).Msg("progress")
		p.lastProgress = progress
	}
}
