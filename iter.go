package samplerate

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// BlockSource supplies interleaved input blocks. NextBlock returns io.EOF,
// with no block, once the stream is exhausted.
type BlockSource interface {
	NextBlock() ([]float32, error)
}

// BlockSourceFunc adapts a function to BlockSource.
type BlockSourceFunc func() ([]float32, error)

// NextBlock calls f.
func (f BlockSourceFunc) NextBlock() ([]float32, error) { return f() }

// SliceSource returns a BlockSource yielding the given blocks in order.
func SliceSource(blocks ...[]float32) BlockSource {
	i := 0
	return BlockSourceFunc(func() ([]float32, error) {
		if i >= len(blocks) {
			return nil, io.EOF
		}
		i++
		return blocks[i-1], nil
	})
}

// RatioSource supplies one ratio per input block. NextRatio returns io.EOF
// when it has no more ratios. The iterator does not stop there: it keeps
// converting at the last ratio, or at the Resampler's default ratio if the
// source never yielded one. A zero ratio also selects the default.
type RatioSource interface {
	NextRatio() (float64, error)
}

type fixedRatio float64

func (r fixedRatio) NextRatio() (float64, error) { return float64(r), nil }

// FixedRatio returns a RatioSource that always yields ratio.
func FixedRatio(ratio float64) RatioSource { return fixedRatio(ratio) }

type ratioList struct {
	ratios []float64
	next   int
}

func (l *ratioList) NextRatio() (float64, error) {
	if l.next >= len(l.ratios) {
		return 0, io.EOF
	}
	l.next++
	return l.ratios[l.next-1], nil
}

// Ratios returns a RatioSource yielding ratios in order, one per block.
// A list shorter than the input does not end the iteration early: blocks
// beyond the end of the list reuse the last ratio.
func Ratios(ratios ...float64) RatioSource {
	return &ratioList{ratios: ratios}
}

type ratioFunc struct {
	f     func(block int) float64
	block int
}

func (r *ratioFunc) NextRatio() (float64, error) {
	ratio := r.f(r.block)
	r.block++
	return ratio, nil
}

// RatioFunc returns a RatioSource computing the ratio from the zero based
// block index.
func RatioFunc(f func(block int) float64) RatioSource {
	return &ratioFunc{f: f}
}

type iterState int

const (
	iterPending   iterState = iota // input blocks remain
	iterDraining                   // input exhausted, tail not yet flushed
	iterExhausted                  // nothing more to yield
)

// BlockIterator converts a stream of input blocks lazily. Each call to Next
// pulls one input block and one ratio, converts the block and exposes the
// result through Block. After the input is exhausted one more block holds
// the flushed tail, if it is not empty. The iterator cannot be restarted.
//
//	it := r.ProcessIter(src, samplerate.FixedRatio(48000.0/44100.0))
//	for it.Next() {
//	    write(it.Block())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type BlockIterator struct {
	r      *Resampler
	src    BlockSource
	ratios RatioSource
	ratio  float64

	state iterState
	block []float32
	err   error
}

// ProcessIter returns an iterator converting every block from src, each at
// the next ratio from ratios. A nil ratios converts every block at the
// default ratio. Nothing is read until the first call to Next.
func (r *Resampler) ProcessIter(src BlockSource, ratios RatioSource) *BlockIterator {
	return &BlockIterator{r: r, src: src, ratios: ratios, ratio: r.ratio}
}

// Next advances to the next output block. It returns false when the stream is
// finished or an error occurred; check Err afterwards.
func (it *BlockIterator) Next() bool {
	for {
		switch it.state {
		case iterPending:
			in, err := it.src.NextBlock()
			if errors.Is(err, io.EOF) {
				it.state = iterDraining
				continue
			}
			if err != nil {
				return it.fail(fmt.Errorf("reading input block: %w", err))
			}
			ratio, err := it.nextRatio()
			if err != nil {
				return it.fail(err)
			}
			out, err := it.r.Process(in, ratio, false)
			if err != nil {
				return it.fail(err)
			}
			it.block = out
			return true

		case iterDraining:
			it.state = iterExhausted
			out, err := it.r.EndInput()
			if err != nil {
				return it.fail(err)
			}
			if len(out) == 0 {
				it.block = nil
				return false
			}
			it.block = out
			return true

		default:
			it.block = nil
			return false
		}
	}
}

// nextRatio returns the ratio for the next block. Zero is passed through so
// Process applies the Resampler's default ratio.
func (it *BlockIterator) nextRatio() (float64, error) {
	if it.ratios == nil {
		return 0, nil
	}
	ratio, err := it.ratios.NextRatio()
	switch {
	case err == nil:
		it.ratio = ratio
	case errors.Is(err, io.EOF):
		// Keep the last ratio; zero falls back to the default.
	default:
		return 0, fmt.Errorf("reading ratio: %w", err)
	}
	return it.ratio, nil
}

func (it *BlockIterator) fail(err error) bool {
	it.err = err
	it.block = nil
	it.state = iterExhausted
	return false
}

// Block returns the block produced by the last successful call to Next.
func (it *BlockIterator) Block() []float32 { return it.block }

// Err returns the error that stopped the iterator, if any.
func (it *BlockIterator) Err() error { return it.err }

// All adapts the iterator to a range-over-func sequence. An error is yielded
// once, with a nil block, as the final element.
func (it *BlockIterator) All() iter.Seq2[[]float32, error] {
	return func(yield func([]float32, error) bool) {
		for it.Next() {
			if !yield(it.Block(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}
