package stream

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Source supplies blocks of samples at a fixed sample rate. Read returns at
// most frames frames; it returns io.EOF once the source is exhausted and no
// frames are left. Filterbanks are themselves Sources, so they chain.
type Source interface {
	SampleRate() unit.Quantity
	Channels() int
	Read(frames int) (Block, error)
}

// SliceSource serves a fixed multi-channel buffer block by block.
type SliceSource struct {
	rate unit.Quantity
	data Block
	pos  int
}

// NewSliceSource returns a source over data. The block is not copied.
func NewSliceSource(sampleRate unit.Quantity, data Block) (*SliceSource, error) {
	if _, err := sampleRate.Hz(); err != nil {
		return nil, fmt.Errorf("stream: sample rate: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &SliceSource{rate: sampleRate, data: data}, nil
}

// NewMonoSource returns a one-channel source over samples.
func NewMonoSource(sampleRate unit.Quantity, samples []float64) (*SliceSource, error) {
	return NewSliceSource(sampleRate, Block{Data: samples, Frames: len(samples), Channels: 1})
}

// SampleRate returns the source sample rate.
func (s *SliceSource) SampleRate() unit.Quantity { return s.rate }

// Channels returns the channel count.
func (s *SliceSource) Channels() int { return s.data.Channels }

// Read returns the next frames frames, fewer at the end of the buffer.
func (s *SliceSource) Read(frames int) (Block, error) {
	if frames <= 0 {
		return Block{}, fmt.Errorf("%w: frames must be > 0: %d", ErrShape, frames)
	}
	if s.pos >= s.data.Frames {
		return Block{}, io.EOF
	}
	end := min(s.pos+frames, s.data.Frames)
	out := s.data.Slice(s.pos, end).Clone()
	s.pos = end
	return out, nil
}

// Rewind restarts the source from the first frame.
func (s *SliceSource) Rewind() { s.pos = 0 }

// broadcast repeats a mono source across n channels.
type broadcast struct {
	src Source
	n   int
}

// Broadcast returns a source that copies every sample of the one-channel
// source src into n identical channels.
func Broadcast(src Source, n int) (Source, error) {
	if src.Channels() != 1 {
		return nil, fmt.Errorf("%w: broadcast needs a mono source, got %d channels", ErrShape, src.Channels())
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: broadcast channel count must be > 0: %d", ErrShape, n)
	}
	return &broadcast{src: src, n: n}, nil
}

func (b *broadcast) SampleRate() unit.Quantity { return b.src.SampleRate() }

func (b *broadcast) Channels() int { return b.n }

func (b *broadcast) Read(frames int) (Block, error) {
	in, err := b.src.Read(frames)
	if err != nil {
		return Block{}, err
	}
	out := NewBlock(in.Frames, b.n)
	for i := 0; i < in.Frames; i++ {
		x := in.Data[i]
		row := out.Frame(i)
		for c := range row {
			row[c] = x
		}
	}
	return out, nil
}

// ReadAll drains src in chunks of blockSize frames and returns everything
// read, concatenated.
func ReadAll(src Source, blockSize int) (Block, error) {
	var out Block
	for {
		b, err := src.Read(blockSize)
		if err == io.EOF {
			if out.Channels == 0 {
				out.Channels = src.Channels()
			}
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if out, err = out.Append(b); err != nil {
			return out, err
		}
	}
}
