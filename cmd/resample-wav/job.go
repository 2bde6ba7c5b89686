package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	samplerate "github.com/tphakala/go-samplerate"
)

// job describes one conversion. It is filled from flags or a YAML file.
type job struct {
	Quality     samplerate.Quality `yaml:"quality"`
	Rate        int                `yaml:"rate"`         // output sample rate in Hz
	Ratio       float64            `yaml:"ratio"`        // used when Rate is zero
	BlockFrames int                `yaml:"block_frames"` // input frames per call
	BitDepth    int                `yaml:"bit_depth"`    // zero keeps the input bit depth
	Schedule    []ratioPoint       `yaml:"schedule"`
}

// ratioPoint switches the ratio at a position of the input timeline.
type ratioPoint struct {
	At    float64 `yaml:"at"` // seconds of input
	Ratio float64 `yaml:"ratio"`
}

var (
	errNoTarget     = errors.New("either rate or ratio must be set")
	errBadSchedule  = errors.New("invalid ratio schedule")
	errBadBlockSize = errors.New("block_frames must be positive")
)

func defaultJob() job {
	return job{
		Quality:     samplerate.SincMedium,
		BlockFrames: defaultBlockFrames,
	}
}

// loadJob reads a YAML job file. Settings missing from the file keep their
// defaults.
func loadJob(path string) (*job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return parseJob(data)
}

func parseJob(data []byte) (*job, error) {
	j := defaultJob()
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

func (j *job) validate() error {
	if j.BlockFrames < 1 {
		return errBadBlockSize
	}
	if j.Rate < 0 || j.Ratio < 0 {
		return errNoTarget
	}
	if j.Ratio != 0 && !samplerate.IsValidRatio(j.Ratio) {
		return fmt.Errorf("%w: %v", samplerate.ErrInvalidRatio, j.Ratio)
	}
	for i, p := range j.Schedule {
		if p.At < 0 || math.IsNaN(p.At) {
			return fmt.Errorf("%w: point %d starts at %v", errBadSchedule, i, p.At)
		}
		if !samplerate.IsValidRatio(p.Ratio) {
			return fmt.Errorf("%w: point %d has ratio %v", errBadSchedule, i, p.Ratio)
		}
		if i > 0 && p.At <= j.Schedule[i-1].At {
			return fmt.Errorf("%w: points must be in increasing time order", errBadSchedule)
		}
	}
	return nil
}

// resolve returns the output rate and the per block ratios for an input at
// inputRate.
func (j *job) resolve(inputRate int) (int, samplerate.RatioSource, error) {
	if err := j.validate(); err != nil {
		return 0, nil, err
	}

	var base float64
	outputRate := j.Rate
	switch {
	case j.Rate > 0:
		r, err := samplerate.RatioFor(float64(inputRate), float64(j.Rate))
		if err != nil {
			return 0, nil, err
		}
		base = r
	case j.Ratio > 0:
		base = j.Ratio
		outputRate = int(math.Round(float64(inputRate) * j.Ratio))
	default:
		return 0, nil, errNoTarget
	}

	if len(j.Schedule) == 0 {
		return outputRate, samplerate.FixedRatio(base), nil
	}

	blockSeconds := float64(j.BlockFrames) / float64(inputRate)
	return outputRate, samplerate.RatioFunc(func(block int) float64 {
		return j.ratioAt(float64(block)*blockSeconds, base)
	}), nil
}

// ratioAt returns the ratio of the last schedule point at or before t, or
// base before the first point.
func (j *job) ratioAt(t, base float64) float64 {
	i := sort.Search(len(j.Schedule), func(i int) bool { return j.Schedule[i].At > t })
	if i == 0 {
		return base
	}
	return j.Schedule[i-1].Ratio
}
