//go:build libsamplerate

package samplerate

import (
	"github.com/tphakala/go-samplerate/internal/engine"
	"github.com/tphakala/go-samplerate/internal/native"
)

// NativeAvailable reports whether Config.Native can be used in this build.
const NativeAvailable = true

func newNativeConverter(config *Config) (converter, error) {
	st, err := native.New(engine.Converter(config.Quality), config.Channels)
	if err != nil {
		return nil, err
	}
	return st, nil
}
