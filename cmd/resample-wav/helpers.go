package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	samplerate "github.com/tphakala/go-samplerate"
)

const (
	wavPCMFormat = 1 // WAVE_FORMAT_PCM

	// go-mp3 always decodes to 16-bit stereo
	mp3Channels       = 2
	mp3BitDepth       = 16
	mp3BytesPerSample = 2

	// Bit depth reported for float decoders such as Vorbis
	floatSourceBitDepth = 16
)

var errUnknownFormat = errors.New("unsupported input format")

// sampleReader reads interleaved float32 samples. It returns io.EOF once no
// samples remain.
type sampleReader interface {
	ReadSamples(dst []float32) (int, error)
}

// input is an opened, validated audio file.
type input struct {
	file        *os.File
	reader      sampleReader
	format      string
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64 // zero when unknown
}

// openInput opens an audio file, choosing the decoder from the extension.
func openInput(path string) (*input, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".wave", ".mp3", ".ogg", ".oga":
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	var in *input
	switch ext {
	case ".wav", ".wave":
		in, err = openWAV(f)
	case ".mp3":
		in, err = openMP3(f)
	default:
		in, err = openVorbis(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if in.channels < 1 || in.rate < 1 {
		_ = f.Close()
		return nil, fmt.Errorf("invalid stream in %s: %d Hz, %d channels", path, in.rate, in.channels)
	}
	in.file = f
	return in, nil
}

// Close closes the input file.
func (in *input) Close() error {
	return in.file.Close()
}

// ReadSamples implements sampleReader.
func (in *input) ReadSamples(dst []float32) (int, error) {
	return in.reader.ReadSamples(dst)
}

type wavReader struct {
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	bitDepth int
}

func openWAV(f *os.File) (*input, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", f.Name())
	}
	if dec.WavAudioFormat != wavPCMFormat {
		return nil, fmt.Errorf("%w: WAV audio format %d, only PCM is supported", errUnknownFormat, dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("invalid WAV file: %s: %w", f.Name(), err)
	}

	format := dec.Format()
	bitDepth := int(dec.BitDepth)

	var totalFrames int64
	if frameBytes := int64(format.NumChannels * ((bitDepth + 7) / 8)); frameBytes > 0 {
		totalFrames = dec.PCMLen() / frameBytes
	}

	return &input{
		reader: &wavReader{
			dec:      dec,
			buf:      &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
			bitDepth: bitDepth,
		},
		format:      "wav",
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: totalFrames,
	}, nil
}

func (w *wavReader) ReadSamples(dst []float32) (int, error) {
	if cap(w.buf.Data) < len(dst) {
		w.buf.Data = make([]int, len(dst))
	}
	w.buf.Data = w.buf.Data[:len(dst)]

	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	if err := samplerate.IntToFloat(w.buf.Data[:n], w.bitDepth, dst); err != nil {
		return 0, err
	}
	return n, nil
}

// mp3Reader decodes 16-bit little endian PCM from go-mp3.
type mp3Reader struct {
	dec   io.Reader
	bytes []byte
	pcm   []int16
}

func openMP3(f *os.File) (*input, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("invalid MP3 file: %w", err)
	}

	var totalFrames int64
	if n := dec.Length(); n > 0 {
		totalFrames = n / (mp3Channels * mp3BytesPerSample)
	}

	return &input{
		reader:      &mp3Reader{dec: dec},
		format:      "mp3",
		rate:        dec.SampleRate(),
		channels:    mp3Channels,
		bitDepth:    mp3BitDepth,
		totalFrames: totalFrames,
	}, nil
}

func (m *mp3Reader) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * mp3BytesPerSample
	if cap(m.bytes) < need {
		m.bytes = make([]byte, need)
		m.pcm = make([]int16, len(dst))
	}
	m.bytes = m.bytes[:need]

	n, err := io.ReadFull(m.dec, m.bytes)
	samples := n / mp3BytesPerSample
	if samples == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("failed to decode MP3: %w", err)
	}

	pcm := m.pcm[:samples]
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(m.bytes[2*i:]))
	}
	samplerate.ShortToFloat(pcm, dst)
	return samples, nil
}

type vorbisReader struct {
	dec *oggvorbis.Reader
}

func openVorbis(f *os.File) (*input, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("invalid Ogg Vorbis file: %w", err)
	}
	return &input{
		reader:      &vorbisReader{dec: dec},
		format:      "vorbis",
		rate:        dec.SampleRate(),
		channels:    dec.Channels(),
		bitDepth:    floatSourceBitDepth,
		totalFrames: max(dec.Length(), 0),
	}, nil
}

func (v *vorbisReader) ReadSamples(dst []float32) (int, error) {
	n, err := v.dec.Read(dst)
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// blockReader cuts a sample stream into blocks of whole frames for
// Resampler.ProcessIter. The returned block is valid until the next call.
type blockReader struct {
	src      sampleReader
	channels int
	buf      []float32
	partial  []float32 // samples of an incomplete frame carried to the next block
	done     bool
}

func newBlockReader(in *input, blockFrames int) *blockReader {
	return newSampleBlockReader(in, in.channels, blockFrames)
}

func newSampleBlockReader(src sampleReader, channels, blockFrames int) *blockReader {
	return &blockReader{
		src:      src,
		channels: channels,
		buf:      make([]float32, blockFrames*channels),
		partial:  make([]float32, 0, channels),
	}
}

// NextBlock implements samplerate.BlockSource.
func (b *blockReader) NextBlock() ([]float32, error) {
	if b.done {
		return nil, io.EOF
	}

	n := copy(b.buf, b.partial)
	for n < len(b.buf) {
		m, err := b.src.ReadSamples(b.buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			b.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		if m == 0 {
			return nil, io.ErrNoProgress
		}
	}

	whole := n - n%b.channels
	b.partial = append(b.partial[:0], b.buf[whole:n]...)
	if whole == 0 && b.done {
		// A trailing incomplete frame is dropped.
		return nil, io.EOF
	}
	return b.buf[:whole], nil
}

// wavWriter encodes float32 blocks as integer PCM WAV.
type wavWriter struct {
	file     *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	bitDepth int
}

// createWAVOutput creates the output file and encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavWriter, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported output bit depth %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavWriter{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, channels, wavPCMFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
	}, nil
}

// Write converts and writes one block of interleaved samples.
func (w *wavWriter) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	if err := samplerate.FloatToInt(samples, w.bitDepth, w.buf.Data); err != nil {
		return err
	}
	return w.enc.Write(w.buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return w.file.Close()
}
