package decode

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// wavBytes assembles a canonical RIFF/WAVE file: a 16-byte fmt chunk
// followed by a single data chunk holding payload verbatim.
func wavBytes(format, channels, bits, rate int, payload []byte) []byte {
	blockAlign := channels * bits / 8
	var b bytes.Buffer
	b.WriteString("RIFF")
	le32(&b, uint32(36+len(payload)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	le32(&b, 16)
	le16(&b, uint16(format))
	le16(&b, uint16(channels))
	le32(&b, uint32(rate))
	le32(&b, uint32(rate*blockAlign))
	le16(&b, uint16(blockAlign))
	le16(&b, uint16(bits))
	b.WriteString("data")
	le32(&b, uint32(len(payload)))
	b.Write(payload)
	return b.Bytes()
}

func le16(b *bytes.Buffer, v uint16) {
	b.Write([]byte{byte(v), byte(v >> 8)})
}

func le32(b *bytes.Buffer, v uint32) {
	b.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func pcm16(samples ...int16) []byte {
	b := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		b = append(b, byte(uint16(s)), byte(uint16(s)>>8))
	}
	return b
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	payload := pcm16(1000, -1000, 2000, -2000, 3, -3)
	path := writeFile(t, "tone.wav", wavBytes(1, 2, 16, 8000, payload))

	info, src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	if info.Channels != 2 || info.SampleRate != 8000 || info.BitDepth != 16 {
		t.Fatalf("StreamInfo: got %+v", info)
	}
	if info.TotalSamples != 3 {
		t.Errorf("TotalSamples: got %d, want 3", info.TotalSamples)
	}

	want := [][2]int32{{1000, -1000}, {2000, -2000}, {3, -3}}
	frame := make([]int32, 2)
	for i, w := range want {
		if err := src.ReadFrame(frame); err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if frame[0] != w[0] || frame[1] != w[1] {
			t.Errorf("frame %d: got %v, want %v", i, frame, w)
		}
	}
	if err := src.ReadFrame(frame); err != io.EOF {
		t.Fatalf("ReadFrame past end: got %v, want io.EOF", err)
	}
}

func TestWAVRaggedTailDiscarded(t *testing.T) {
	t.Parallel()

	// Five 16-bit words in a stereo stream: two whole frames and a
	// dangling half frame that must never surface.
	payload := pcm16(10, -10, 11, -11, 99)
	path := writeFile(t, "ragged.wav", wavBytes(1, 2, 16, 8000, payload))

	info, src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	if info.TotalSamples != 2 {
		t.Errorf("TotalSamples: got %d, want 2", info.TotalSamples)
	}

	frame := make([]int32, 2)
	for i := 0; i < 2; i++ {
		if err := src.ReadFrame(frame); err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
	}
	if err := src.ReadFrame(frame); err != io.EOF {
		t.Fatalf("ReadFrame on ragged tail: got %v, want io.EOF", err)
	}
}

func TestWAVRejectsFloatFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "float.wav", wavBytes(3, 1, 32, 8000, make([]byte, 8)))

	_, src, err := Open(path)
	if src != nil {
		t.Fatal("Open returned a source for a float WAV")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v (%T), want *OpenError", err, err)
	}
}

func TestWAVRejects8Bit(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "lofi.wav", wavBytes(1, 1, 8, 8000, []byte{0x80, 0x80}))

	_, src, err := Open(path)
	if src != nil {
		t.Fatal("Open returned a source for an 8-bit WAV")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v (%T), want *OpenError", err, err)
	}
}

func TestWAVRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "noise.wav", []byte("this is not a RIFF container"))

	_, src, err := Open(path)
	if src != nil {
		t.Fatal("Open returned a source for garbage bytes")
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v (%T), want *OpenError", err, err)
	}
}

func TestWAVFrameBufferMismatch(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "stereo.wav", wavBytes(1, 2, 16, 8000, pcm16(1, 2)))

	_, src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	err = src.ReadFrame(make([]int32, 1))
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("ReadFrame with wrong buffer size: got %v, want sizing error", err)
	}
}
