package stream

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when block or source dimensions are inconsistent.
var ErrShape = errors.New("stream: shape mismatch")

// Block is a frame-major block of samples: Data holds Frames rows of
// Channels samples each, so sample (frame i, channel c) lives at
// Data[i*Channels+c].
type Block struct {
	Data     []float64
	Frames   int
	Channels int
}

// NewBlock returns a zero-filled block.
func NewBlock(frames, channels int) Block {
	if frames < 0 {
		frames = 0
	}
	if channels < 0 {
		channels = 0
	}
	return Block{
		Data:     make([]float64, frames*channels),
		Frames:   frames,
		Channels: channels,
	}
}

// FromChannels builds a block from channel-major slices. All channels must
// have the same length.
func FromChannels(chans [][]float64) (Block, error) {
	if len(chans) == 0 {
		return Block{}, nil
	}
	n := len(chans[0])
	for c := range chans {
		if len(chans[c]) != n {
			return Block{}, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrShape, c, len(chans[c]), n)
		}
	}
	b := NewBlock(n, len(chans))
	for c, ch := range chans {
		b.SetChannel(c, ch)
	}
	return b, nil
}

// Validate checks that len(Data) matches Frames*Channels.
func (b Block) Validate() error {
	if b.Frames < 0 || b.Channels < 0 || len(b.Data) != b.Frames*b.Channels {
		return fmt.Errorf("%w: %d samples for %d frames x %d channels", ErrShape, len(b.Data), b.Frames, b.Channels)
	}
	return nil
}

// Finite reports whether every sample is finite.
func (b Block) Finite() bool {
	for _, v := range b.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Frame returns the samples of frame i, one per channel. The slice aliases
// the block.
func (b Block) Frame(i int) []float64 {
	return b.Data[i*b.Channels : (i+1)*b.Channels]
}

// At returns the sample at frame i, channel c.
func (b Block) At(i, c int) float64 { return b.Data[i*b.Channels+c] }

// Set stores v at frame i, channel c.
func (b Block) Set(i, c int, v float64) { b.Data[i*b.Channels+c] = v }

// Channel gathers channel c into dst (grown if needed) and returns it.
func (b Block) Channel(c int, dst []float64) []float64 {
	if cap(dst) < b.Frames {
		dst = make([]float64, b.Frames)
	}
	dst = dst[:b.Frames]
	for i := range dst {
		dst[i] = b.Data[i*b.Channels+c]
	}
	return dst
}

// SetChannel scatters src into channel c.
func (b Block) SetChannel(c int, src []float64) {
	if b.Frames == 0 {
		return
	}
	_ = src[b.Frames-1] // bounds check hint
	for i := 0; i < b.Frames; i++ {
		b.Data[i*b.Channels+c] = src[i]
	}
}

// ChannelSlices returns a channel-major copy of the block.
func (b Block) ChannelSlices() [][]float64 {
	out := make([][]float64, b.Channels)
	for c := range out {
		out[c] = b.Channel(c, nil)
	}
	return out
}

// Slice returns frames [from, to) as a block sharing the same data.
func (b Block) Slice(from, to int) Block {
	return Block{
		Data:     b.Data[from*b.Channels : to*b.Channels],
		Frames:   to - from,
		Channels: b.Channels,
	}
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	d := make([]float64, len(b.Data))
	copy(d, b.Data)
	return Block{Data: d, Frames: b.Frames, Channels: b.Channels}
}

// Append concatenates the frames of o after the frames of b. Both blocks must
// have the same channel count unless b is empty.
func (b Block) Append(o Block) (Block, error) {
	if b.Frames == 0 && len(b.Data) == 0 {
		return o.Clone(), nil
	}
	if o.Channels != b.Channels {
		return Block{}, fmt.Errorf("%w: appending %d channels to %d", ErrShape, o.Channels, b.Channels)
	}
	d := make([]float64, 0, len(b.Data)+len(o.Data))
	d = append(d, b.Data...)
	d = append(d, o.Data...)
	return Block{Data: d, Frames: b.Frames + o.Frames, Channels: b.Channels}, nil
}
