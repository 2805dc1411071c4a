package dr

import (
	"testing"
)

// FuzzSegmenter drives the segmenter with arbitrary frame streams and checks
// the partition invariants: flushes stay in lock-step across channels, and
// every whole frame pushed comes back out exactly once.
func FuzzSegmenter(f *testing.F) {
	f.Add(uint8(2), uint8(4), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	f.Add(uint8(1), uint8(1), []byte{0})
	f.Add(uint8(3), uint8(5), []byte{9, 9, 9, 9, 9, 9, 9})
	f.Add(uint8(0), uint8(3), []byte{1, 2, 3})
	f.Add(uint8(4), uint8(0), []byte{})

	f.Fuzz(func(t *testing.T, chanByte, lenByte uint8, data []byte) {
		channels := int(chanByte % 8)
		blockLen := int(lenByte % 16)

		seg := NewSegmenter(channels, blockLen)

		pushed := 0
		got := 0
		check := func(blocks [][]float64) {
			if blocks == nil {
				return
			}
			if channels > 0 && len(blocks) != channels {
				t.Fatalf("flush channels: got %d, want %d", len(blocks), channels)
			}
			base := len(blocks[0])
			if base == 0 {
				t.Fatal("flush with empty blocks")
			}
			for ch, block := range blocks {
				if len(block) != base {
					t.Fatalf("flush lengths diverge: ch %d has %d, ch 0 has %d", ch, len(block), base)
				}
			}
			got += base
		}

		if channels > 0 {
			for len(data) >= channels {
				frame := make([]float64, channels)
				for ch := range frame {
					frame[ch] = float64(int8(data[ch])) / 128
				}
				data = data[channels:]
				check(seg.PushFrame(frame))
				pushed++
			}
			// Leftover bytes form a ragged frame the segmenter must drop.
			if len(data) > 0 {
				frame := make([]float64, len(data))
				check(seg.PushFrame(frame))
			}
		}
		check(seg.Flush())

		if got != pushed {
			t.Fatalf("samples per channel: got %d, want %d", got, pushed)
		}
	})
}
