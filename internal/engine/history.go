package engine

// history holds the input frames a converter may still read, one planar
// slice per channel. Frames are addressed by absolute index since the last
// reset; frames[c][0] is frame base. Frames below base read as silence.
type history struct {
	frames [][]float64
	base   int
}

func newHistory(channels int) history {
	frames := make([][]float64, channels)
	for c := range frames {
		frames[c] = make([]float64, 0, minChunkFrames)
	}
	return history{frames: frames}
}

// end returns the absolute index one past the last stored frame.
func (h *history) end() int {
	return h.base + len(h.frames[0])
}

// trim discards frames below keep.
func (h *history) trim(keep int) {
	n := min(keep-h.base, len(h.frames[0]))
	if n <= 0 {
		return
	}
	for c, ch := range h.frames {
		copy(ch, ch[n:])
		h.frames[c] = ch[:len(ch)-n]
	}
	h.base += n
}

// appendInterleaved splits interleaved samples into the channel slices.
func (h *history) appendInterleaved(in []float32) {
	channels := len(h.frames)
	frames := len(in) / channels
	for c := range h.frames {
		ch := h.frames[c]
		for i := range frames {
			ch = append(ch, float64(in[i*channels+c]))
		}
		h.frames[c] = ch
	}
}

// appendZeros pads every channel with n frames of silence.
func (h *history) appendZeros(n int) {
	for c := range h.frames {
		h.frames[c] = append(h.frames[c], make([]float64, n)...)
	}
}

func (h *history) reset() {
	for c := range h.frames {
		h.frames[c] = h.frames[c][:0]
	}
	h.base = 0
}
