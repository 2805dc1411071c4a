package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type ToneConfig struct {
	Number      int     `json:"number"`
	Key         string  `json:"key"`
	Description string  `json:"description"`
	Shape       string  `json:"shape"`
	Channels    int     `json:"channels"`
	SampleRate  int     `json:"sampleRate"`
	BitDepth    int     `json:"bitDepth"`
	DurationSec float64 `json:"durationSec"`
	Amplitude   float64 `json:"amplitude"`
	FloorRatio  float64 `json:"floorRatio,omitempty"`
}

type Manifest struct {
	Generated string       `json:"generated"`
	Tones     []ToneConfig `json:"tones"`
}

// Reference material with known loudness shapes. Constant-envelope tones
// measure near DR0 (square waves near DR-3); burst shapes leave quiet floors
// under sparse full-level hits and measure wide.
var tones = []ToneConfig{
	{
		Number: 1, Key: "square_flat", Shape: "square",
		Channels: 2, SampleRate: 44100, BitDepth: 16,
		DurationSec: 30, Amplitude: 0.5,
	},
	{
		Number: 2, Key: "sine_ref", Shape: "sine",
		Channels: 2, SampleRate: 44100, BitDepth: 16,
		DurationSec: 30, Amplitude: 0.8,
	},
	{
		Number: 3, Key: "burst_wide", Shape: "burst",
		Channels: 2, SampleRate: 44100, BitDepth: 16,
		DurationSec: 60, Amplitude: 1.0, FloorRatio: 0.05,
	},
	{
		Number: 4, Key: "burst_moderate", Shape: "burst",
		Channels: 2, SampleRate: 48000, BitDepth: 16,
		DurationSec: 45, Amplitude: 0.9, FloorRatio: 0.25,
	},
	{
		Number: 5, Key: "burst_hires", Shape: "burst",
		Channels: 2, SampleRate: 96000, BitDepth: 24,
		DurationSec: 20, Amplitude: 0.8, FloorRatio: 0.1,
	},
	{
		Number: 6, Key: "mono_square", Shape: "square",
		Channels: 1, SampleRate: 22050, BitDepth: 16,
		DurationSec: 15, Amplitude: 0.35,
	},
	{
		Number: 7, Key: "quiet_sine", Shape: "sine",
		Channels: 2, SampleRate: 44100, BitDepth: 16,
		DurationSec: 20, Amplitude: 0.05,
	},
	{
		Number: 8, Key: "silence", Shape: "silence",
		Channels: 1, SampleRate: 8000, BitDepth: 16,
		DurationSec: 10,
	},
}

func main() {
	rootDir := findProjectRoot()
	tonesDir := filepath.Join(rootDir, "test", "tones")
	if err := os.MkdirAll(tonesDir, 0755); err != nil {
		fatal("create tones dir: %v", err)
	}

	fmt.Println("=== DR Meter Tone Generator ===")
	fmt.Printf("Generating %d reference tones\n\n", len(tones))

	for i := range tones {
		tc := tones[i]
		tones[i].Description = fmt.Sprintf("%s, %d ch, %g kHz/%d-bit, %.0fs at %.2f peak",
			tc.Shape, tc.Channels, float64(tc.SampleRate)/1000, tc.BitDepth, tc.DurationSec, tc.Amplitude)

		outFile := filepath.Join(tonesDir, fmt.Sprintf("%02d_%s.wav", tc.Number, tc.Key))
		fmt.Printf("--- Tone %d: %s (%s) ---\n", tc.Number, tc.Key, tones[i].Description)

		if fileExists(outFile) {
			fmt.Printf("  Already exists, skipping\n")
			continue
		}

		if err := synthesize(tc, outFile); err != nil {
			fatal("synthesis failed for tone %d: %v", tc.Number, err)
		}

		info, _ := os.Stat(outFile)
		if info != nil {
			fmt.Printf("  Output: %s (%.1f MB)\n", outFile, float64(info.Size())/1024/1024)
		}
	}

	manifestFile := filepath.Join(tonesDir, "manifest.json")
	if err := writeManifest(manifestFile); err != nil {
		fatal("write manifest: %v", err)
	}

	fmt.Printf("\n=== Done! %d tones generated in %s ===\n", len(tones), tonesDir)
}

func writeManifest(path string) error {
	m := Manifest{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tones:     tones,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Manifest written to %s\n", path)
	return nil
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fatal("getwd: %v", err)
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			fatal("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
