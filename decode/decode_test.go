package decode

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOpenUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, src, err := Open("song.mp3")
	if src != nil {
		t.Fatal("Open returned a source for an unsupported extension")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %T, want *OpenError", err)
	}
	if openErr.Path != "song.mp3" {
		t.Errorf("Path: got %q, want %q", openErr.Path, "song.mp3")
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"missing.wav", "missing.flac"} {
		_, _, err := Open(filepath.Join(t.TempDir(), name))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Open(%s): got %v, want fs.ErrNotExist", name, err)
		}
		var openErr *OpenError
		if !errors.As(err, &openErr) {
			t.Errorf("Open(%s): got %T, want *OpenError", name, err)
		}
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{"song.flac", true},
		{"song.FLAC", true},
		{"song.FlAc", true},
		{"song.wav", true},
		{"SONG.WAV", true},
		{"album/01 - intro.flac", true},
		{"song.mp3", false},
		{"song.ogg", false},
		{"song.flac.bak", false},
		{"flac", false},
		{"song", false},
	}
	for _, tc := range cases {
		if got := Supported(tc.path); got != tc.want {
			t.Errorf("Supported(%q): got %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	openErr := &OpenError{Path: "x.wav", Err: cause}
	if !errors.Is(openErr, cause) {
		t.Error("OpenError does not unwrap to its cause")
	}
	if got, want := openErr.Error(), "cannot open: boom"; got != want {
		t.Errorf("OpenError.Error(): got %q, want %q", got, want)
	}

	readErr := &ReadError{Path: "x.wav", Err: cause}
	if !errors.Is(readErr, cause) {
		t.Error("ReadError does not unwrap to its cause")
	}
	if got, want := readErr.Error(), "read error: boom"; got != want {
		t.Errorf("ReadError.Error(): got %q, want %q", got, want)
	}
}
