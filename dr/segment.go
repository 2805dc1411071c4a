package dr

// Segmenter buffers interleaved frames into per-channel analysis blocks.
// Channels fill in lock-step: every pushed frame appends one sample to
// every channel, and blocks for all channels flush together, so block index
// i covers the same time window on every channel. A frame whose length
// differs from the configured channel count is discarded whole, matching
// how decoders drop a ragged final frame rather than segment channels
// unevenly.
type Segmenter struct {
	channels int
	blockLen int
	buffers  [][]float64
}

// NewSegmenter returns a Segmenter producing blocks of blockLen samples per
// channel. A blockLen below 1 is clamped to 1.
func NewSegmenter(channels, blockLen int) *Segmenter {
	if blockLen < 1 {
		blockLen = 1
	}
	buffers := make([][]float64, channels)
	for ch := range buffers {
		buffers[ch] = make([]float64, 0, blockLen)
	}
	return &Segmenter{
		channels: channels,
		blockLen: blockLen,
		buffers:  buffers,
	}
}

// PushFrame appends one normalized frame, one value per channel. When the
// buffered run reaches the block length it returns one full block per
// channel, otherwise nil. The frame slice is not retained.
func (s *Segmenter) PushFrame(frame []float64) [][]float64 {
	if s.channels == 0 || len(frame) != s.channels {
		return nil
	}
	for ch := range s.buffers {
		s.buffers[ch] = append(s.buffers[ch], frame[ch])
	}
	if len(s.buffers[0]) < s.blockLen {
		return nil
	}
	return s.drain(s.blockLen)
}

// Flush returns the final short blocks held for each channel, or nil when
// nothing is buffered. Call once at end of stream.
func (s *Segmenter) Flush() [][]float64 {
	if s.channels == 0 || len(s.buffers[0]) == 0 {
		return nil
	}
	return s.drain(len(s.buffers[0]))
}

// drain removes take samples from the front of every channel buffer and
// returns them as blocks; the remainder stays buffered in order.
func (s *Segmenter) drain(take int) [][]float64 {
	blocks := make([][]float64, s.channels)
	for ch, buf := range s.buffers {
		blocks[ch] = buf[:take:take]
		rest := buf[take:]
		s.buffers[ch] = append(make([]float64, 0, s.blockLen), rest...)
	}
	return blocks
}
