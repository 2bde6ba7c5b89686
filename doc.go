// Package samplerate provides streaming sample rate conversion with a ratio
// that may change from block to block.
//
// The conversion engine follows libsamplerate's full API: a converter handle
// created for a fixed algorithm and channel count, fed interleaved float32
// frames one block at a time together with the ratio (output rate / input
// rate) to use for that block. This package wraps the handle in a
// [Resampler] that sizes output buffers, keeps stream counters and flushes
// the converter's tail at end of input.
//
// # Converters
//
//   - [SincBest]: band limited sinc interpolation, 145 dB, 97% bandwidth
//   - [SincMedium]: band limited sinc interpolation, 121 dB, 90% bandwidth
//   - [SincFastest]: band limited sinc interpolation, 97 dB, 80% bandwidth
//   - [ZeroOrderHold]: repeats the previous frame
//   - [Linear]: linear interpolation between frames
//
// The pure Go engine is used by default. Builds with the libsamplerate tag
// can set [Config].Native to use the system libsamplerate through cgo.
//
// # Calling conventions
//
// Block by block, with the tail delivered by the last call:
//
//	r, err := samplerate.New(&samplerate.Config{Quality: samplerate.SincMedium, Channels: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	for i, block := range blocks {
//	    out, err := r.Process(block, ratio, i == len(blocks)-1)
//	    ...
//	}
//
// Block by block with an explicit drain:
//
//	for _, block := range blocks {
//	    out, err := r.Process(block, ratio, false)
//	    ...
//	}
//	tail, err := r.EndInput()
//
// Iterator driven, pulling blocks and ratios lazily:
//
//	it := r.ProcessIter(samplerate.SliceSource(blocks...), samplerate.FixedRatio(ratio))
//	for it.Next() {
//	    write(it.Block())
//	}
//	if err := it.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Ratio changes
//
// When the ratio passed to Process differs from the previous one, the
// engine ramps linearly between the two across the output of that call.
// [Resampler.SetRatio] makes the next call start at the new ratio instead.
// A ratio outside [MinRatio, MaxRatio], or one that differs from the
// previous ratio by more than [Config].MaxRatioStep, fails with
// [ErrInvalidRatio] without converting anything.
//
// A zero ratio means "use the default": [Config].DefaultRatio, changed later
// with [Resampler.SetDefaultRatio]. The default survives Reset.
//
// # Ownership
//
// A Resampler owns its engine handle and must be closed exactly once.
// Every method that reaches the engine fails with [ErrClosed] after Close.
// A Resampler is not safe for concurrent use; independent Resamplers may
// run in parallel.
package samplerate
