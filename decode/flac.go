package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/zsiec/drmeter/dr"
)

// flacSource serves interleaved frames from a FLAC stream. FLAC audio
// frames carry an equal sample count per channel, so a ragged tail cannot
// occur here; the library also rejects streams whose metadata is out of
// range (rate 0, more than 8 channels) before any frame is parsed.
type flacSource struct {
	path     string
	stream   *flac.Stream
	channels int

	cur *frame.Frame // frame currently being served, nil before first read
	pos int          // next sample index within cur
}

var _ Source = (*flacSource)(nil)

func openFLAC(path string) (dr.StreamInfo, Source, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: err}
	}

	si := stream.Info
	info := dr.StreamInfo{
		Channels:     int(si.NChannels),
		SampleRate:   int(si.SampleRate),
		BitDepth:     int(si.BitsPerSample),
		TotalSamples: int64(si.NSamples),
	}
	src := &flacSource{
		path:     path,
		stream:   stream,
		channels: info.Channels,
	}
	return info, src, nil
}

func (s *flacSource) ReadFrame(dst []int32) error {
	if len(dst) != s.channels {
		return fmt.Errorf("frame buffer has %d slots, stream has %d channels", len(dst), s.channels)
	}
	for s.cur == nil || s.pos >= len(s.cur.Subframes[0].Samples) {
		f, err := s.stream.ParseNext()
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		if err != nil {
			return &ReadError{Path: s.path, Err: err}
		}
		if len(f.Subframes) != s.channels {
			return &ReadError{Path: s.path, Err: fmt.Errorf("frame has %d channels, stream info says %d", len(f.Subframes), s.channels)}
		}
		s.cur, s.pos = f, 0
	}
	for ch := range dst {
		dst[ch] = s.cur.Subframes[ch].Samples[s.pos]
	}
	s.pos++
	return nil
}

func (s *flacSource) Close() error {
	return s.stream.Close()
}
