//go:build !libsamplerate

package samplerate

import "github.com/tphakala/go-samplerate/internal/engine"

// NativeAvailable reports whether Config.Native can be used in this build.
const NativeAvailable = false

func newNativeConverter(*Config) (converter, error) {
	return nil, engine.ErrNotAvailable
}
