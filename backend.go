package samplerate

import "github.com/tphakala/go-samplerate/internal/engine"

func newConverter(config *Config) (converter, error) {
	if config.Native {
		return newNativeConverter(config)
	}
	st, err := engine.New(engine.Converter(config.Quality), config.Channels)
	if err != nil {
		return nil, err
	}
	return st, nil
}
