package main

import (
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	toneHz      = 440.0
	chunkFrames = 32768

	// Burst shapes cycle every three seconds: a short full-level hit, then
	// the floor tone for the rest of the cycle.
	burstCycleSec = 3.0
	burstDuty     = 0.02
)

// synthesize renders one tone to a PCM WAV file.
func synthesize(tc ToneConfig, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, tc.SampleRate, tc.BitDepth, tc.Channels, 1)
	peak := float64(int64(1)<<(tc.BitDepth-1) - 1)

	frames := int(tc.DurationSec * float64(tc.SampleRate))
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: tc.Channels, SampleRate: tc.SampleRate},
		SourceBitDepth: tc.BitDepth,
	}
	data := make([]int, 0, chunkFrames*tc.Channels)
	for i := 0; i < frames; i++ {
		v := int(math.Round(sampleAt(tc, i) * peak))
		for ch := 0; ch < tc.Channels; ch++ {
			data = append(data, v)
		}
		if len(data) >= chunkFrames*tc.Channels {
			buf.Data = data
			if err := enc.Write(buf); err != nil {
				return err
			}
			data = data[:0]
		}
	}
	if len(data) > 0 {
		buf.Data = data
		if err := enc.Write(buf); err != nil {
			return err
		}
	}
	return enc.Close()
}

// sampleAt returns the normalized sample value of tone tc at frame i.
func sampleAt(tc ToneConfig, i int) float64 {
	t := float64(i) / float64(tc.SampleRate)
	switch tc.Shape {
	case "sine":
		return tc.Amplitude * math.Sin(2*math.Pi*toneHz*t)
	case "square":
		return tc.Amplitude * sign(math.Sin(2*math.Pi*toneHz*t))
	case "burst":
		pos := math.Mod(t, burstCycleSec)
		if pos < burstCycleSec*burstDuty {
			return tc.Amplitude * sign(math.Sin(2*math.Pi*toneHz*t))
		}
		return tc.Amplitude * tc.FloorRatio * math.Sin(2*math.Pi*toneHz*t)
	default: // silence
		return 0
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
