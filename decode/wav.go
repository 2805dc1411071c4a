package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/zsiec/drmeter/dr"
)

// wavChunkFrames sizes the decode buffer refilled from the data chunk.
// One refill may return any number of ints, not necessarily a whole number
// of frames, so samples are pulled one at a time across refills.
const wavChunkFrames = 4096

// PCM format code in the fmt chunk. Float and compressed WAV variants are
// not lossless-PCM input and are rejected at open.
const wavFormatPCM = 1

// wavSource serves interleaved frames from a RIFF/WAVE file. A frame that
// can only be partially filled at end of data is discarded whole rather
// than surfaced short.
type wavSource struct {
	path     string
	f        *os.File
	dec      *wav.Decoder
	channels int

	buf *audio.IntBuffer
	n   int // valid ints in buf.Data
	pos int // next unread index in buf.Data
}

var _ Source = (*wavSource)(nil)

func openWAV(path string) (dr.StreamInfo, Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: err}
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		f.Close()
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: errors.New("not a valid WAV file")}
	}
	if dec.WavAudioFormat != wavFormatPCM {
		f.Close()
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: fmt.Errorf("WAV format code %d is not integer PCM", dec.WavAudioFormat)}
	}
	// 8-bit WAV stores unsigned bytes; the signed normalization contract
	// does not apply to it.
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		f.Close()
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: fmt.Errorf("unsupported WAV bit depth %d", dec.BitDepth)}
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: err}
	}

	channels := int(dec.NumChans)
	bytesPerFrame := int64(dec.BitDepth) / 8 * int64(channels)
	info := dr.StreamInfo{
		Channels:     channels,
		SampleRate:   int(dec.SampleRate),
		BitDepth:     int(dec.BitDepth),
		TotalSamples: int64(dec.PCMSize) / bytesPerFrame,
	}
	src := &wavSource{
		path:     path,
		f:        f,
		dec:      dec,
		channels: channels,
		buf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
			Data:   make([]int, wavChunkFrames*channels),
		},
	}
	return info, src, nil
}

func (s *wavSource) ReadFrame(dst []int32) error {
	if len(dst) != s.channels {
		return fmt.Errorf("frame buffer has %d slots, stream has %d channels", len(dst), s.channels)
	}
	for ch := 0; ch < s.channels; ch++ {
		v, err := s.next()
		if err != nil {
			// Running dry mid-frame leaves a ragged tail; the partial
			// frame is dropped along with it.
			return err
		}
		dst[ch] = int32(v)
	}
	return nil
}

// next returns the next interleaved sample, refilling the decode buffer as
// needed. io.EOF means the data chunk is exhausted.
func (s *wavSource) next() (int, error) {
	for s.pos >= s.n {
		n, err := s.dec.PCMBuffer(s.buf)
		if err != nil {
			return 0, &ReadError{Path: s.path, Err: err}
		}
		if n == 0 {
			return 0, io.EOF
		}
		s.n, s.pos = n, 0
	}
	v := s.buf.Data[s.pos]
	s.pos++
	return v, nil
}

func (s *wavSource) Close() error {
	return s.f.Close()
}
