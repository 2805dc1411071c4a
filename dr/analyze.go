package dr

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Result holds everything measured for one track. DR is the rounded mean of
// the per-channel values; PeakDB and RMSDB pool every block of every
// channel and are informational only.
type Result struct {
	DR           int
	ChannelDRs   []float64
	PeakDB       float64
	RMSDB        float64
	DurationSecs float64
}

// Analyze drives src through segmentation, block measurement, and the DR
// reduction, reading until end of stream. It is a pure function of the
// decoded samples: analyzing the same stream twice yields identical
// results. Closing whatever backs src stays with the caller.
func Analyze(info StreamInfo, src FrameSource) (*Result, error) {
	if info.Channels < 1 || info.BitDepth < 1 || info.BitDepth > 32 {
		return nil, fmt.Errorf("%w: channels=%d bit_depth=%d", ErrInvalidStream, info.Channels, info.BitDepth)
	}

	seg := NewSegmenter(info.Channels, BlockLen(info.SampleRate))
	scale := float64(int64(1) << (info.BitDepth - 1))

	stats := make([][]BlockStats, info.Channels)
	raw := make([]int32, info.Channels)
	frame := make([]float64, info.Channels)

	measure := func(blocks [][]float64) error {
		for ch, block := range blocks {
			bs, err := Measure(block)
			if err != nil {
				return err
			}
			stats[ch] = append(stats[ch], bs)
		}
		return nil
	}

	for {
		err := src.ReadFrame(raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, s := range raw {
			frame[i] = float64(s) / scale
		}
		if blocks := seg.PushFrame(frame); blocks != nil {
			if err := measure(blocks); err != nil {
				return nil, err
			}
		}
	}
	if blocks := seg.Flush(); blocks != nil {
		if err := measure(blocks); err != nil {
			return nil, err
		}
	}

	channelDRs := make([]float64, info.Channels)
	for ch := range stats {
		channelDRs[ch] = ChannelDR(stats[ch])
	}

	var overallPeak, rmsSumSq float64
	blockCount := 0
	for _, chStats := range stats {
		for _, b := range chStats {
			if b.Peak > overallPeak {
				overallPeak = b.Peak
			}
			rmsSumSq += b.RMS * b.RMS
			blockCount++
		}
	}
	div := blockCount
	if div < 1 {
		div = 1
	}
	overallRMS := math.Sqrt(rmsSumSq / float64(div))

	var duration float64
	if info.SampleRate > 0 {
		duration = float64(info.TotalSamples) / float64(info.SampleRate)
	}

	return &Result{
		DR:           TrackDR(channelDRs),
		ChannelDRs:   channelDRs,
		PeakDB:       ToDB(overallPeak),
		RMSDB:        ToDB(overallRMS),
		DurationSecs: duration,
	}, nil
}
