// Package decode opens lossless audio files and exposes them as frame
// sources plus stream metadata for analysis. Container parsing is delegated
// to format libraries; this package adapts their output to the interleaved
// frame contract and owns the underlying file handles.
package decode

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/zsiec/drmeter/dr"
)

// ErrUnsupportedFormat reports a file extension no decoder claims.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Source is an open decoded stream: a dr.FrameSource backed by a file
// handle that must be closed regardless of how the analysis ends.
type Source interface {
	dr.FrameSource
	io.Closer
}

// OpenError reports a file that could not be opened or recognized as its
// container format. No samples were consumed.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open: %v", e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports a stream that failed mid-read. Samples decoded before
// the failure are discarded by the caller; no partial result survives.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

var decoders = map[string]func(string) (dr.StreamInfo, Source, error){
	".flac": openFLAC,
	".wav":  openWAV,
}

// Open opens path with the decoder registered for its extension. The
// returned StreamInfo is complete before the first frame is read.
func Open(path string) (dr.StreamInfo, Source, error) {
	open, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return dr.StreamInfo{}, nil, &OpenError{Path: path, Err: ErrUnsupportedFormat}
	}
	return open(path)
}

// Supported reports whether path's extension has a registered decoder.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}
