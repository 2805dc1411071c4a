// Package dr implements the DR (Dynamic Range) measurement of the DR
// Loudness Standard: a track is cut into fixed three-second blocks, each
// block is reduced to an RMS and a peak, and a sorted-percentile reduction
// turns one channel's blocks into that channel's DR value. The package is
// pure computation; decoding lives behind the FrameSource interface.
package dr

import (
	"errors"
	"math"
	"sort"
)

// Parameters fixed by the DR Loudness Standard. The loudest 20% of blocks
// define a track's loudness floor, and the second-highest block peak stands
// in for the track peak so a single transient cannot dominate the result.
const (
	// BlockSeconds is the analysis window length.
	BlockSeconds = 3.0

	loudestRatio   = 0.2
	nthHighestPeak = 2
)

var (
	// ErrEmptyBlock reports a Measure call on a zero-length block. The
	// segmenter never emits one; seeing this error means a caller bypassed it.
	ErrEmptyBlock = errors.New("dr: empty block")

	// ErrInvalidStream reports StreamInfo fields outside the ranges Analyze
	// can normalize.
	ErrInvalidStream = errors.New("dr: invalid stream info")
)

// StreamInfo describes one decoded audio stream. Decoders fill it from
// container metadata before the first frame is read.
type StreamInfo struct {
	Channels     int   // interleaved values per frame, at least 1
	SampleRate   int   // Hz, greater than 0
	BitDepth     int   // bits per raw sample, 1..32
	TotalSamples int64 // per-channel sample count, 0 when unknown
}

// FrameSource yields decoded audio one interleaved frame at a time.
// ReadFrame fills frame, whose length must equal the stream's channel
// count, and returns io.EOF once no complete frame remains. A trailing
// partial frame (fewer values than channels at end of stream) is never
// surfaced; sources discard it whole.
type FrameSource interface {
	ReadFrame(frame []int32) error
}

// BlockStats holds the two measurements the reduction consumes for one
// block. Immutable once computed.
type BlockStats struct {
	RMS  float64
	Peak float64
}

// BlockLen returns the number of samples in one analysis block at the given
// sample rate, clamped to at least 1 so a missing rate cannot produce
// zero-length blocks.
func BlockLen(sampleRate int) int {
	n := int(math.Round(BlockSeconds * float64(sampleRate)))
	if n < 1 {
		return 1
	}
	return n
}

// Measure computes the BlockStats of one block of normalized samples. The
// doubling inside the mean is part of the published procedure: block
// loudness is sqrt(2 * mean-square), not plain RMS.
func Measure(block []float64) (BlockStats, error) {
	if len(block) == 0 {
		return BlockStats{}, ErrEmptyBlock
	}
	var sumSq, peak float64
	for _, s := range block {
		sumSq += 2 * s * s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return BlockStats{
		RMS:  math.Sqrt(sumSq / float64(len(block))),
		Peak: peak,
	}, nil
}

// ChannelDR reduces all of one channel's block statistics to the channel's
// DR value. RMS and peak percentiles are taken over independently sorted
// sequences; the per-block pairing is deliberately not preserved. An empty
// sequence and silent audio both reduce to 0.
func ChannelDR(blocks []BlockStats) float64 {
	if len(blocks) == 0 {
		return 0.0
	}
	total := len(blocks)

	rms := make([]float64, total)
	peaks := make([]float64, total)
	for i, b := range blocks {
		rms[i] = b.RMS
		peaks[i] = b.Peak
	}
	sort.Float64s(rms)
	sort.Float64s(peaks)

	// Second-highest peak; with fewer than two blocks the index clamps to
	// the only element.
	peakIdx := total - nthHighestPeak
	if peakIdx < 0 {
		peakIdx = 0
	}
	peakLoud := peaks[peakIdx]

	topN := int(math.Round(float64(total) * loudestRatio))
	if topN < 1 {
		topN = 1
	}
	var sumSq float64
	for _, v := range rms[total-topN:] {
		sumSq += v * v
	}
	rmsLoud := math.Sqrt(sumSq / float64(topN))

	if rmsLoud <= 0 {
		return 0.0
	}
	return 20 * math.Log10(peakLoud/rmsLoud)
}

// TrackDR rounds the mean of per-channel DR values to the integer DR
// reported for a track. Ties round away from zero.
func TrackDR(channelDRs []float64) int {
	if len(channelDRs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range channelDRs {
		sum += v
	}
	return int(math.Round(sum / float64(len(channelDRs))))
}

// ToDB converts a linear amplitude to decibels, flooring values below 1e-10
// at -100 dB instead of heading toward -Inf.
func ToDB(x float64) float64 {
	if x < 1e-10 {
		return -100.0
	}
	return 20 * math.Log10(x)
}
