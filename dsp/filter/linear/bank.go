package linear

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/stream"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Bank is a filterbank driven by an upstream source. A mono source is fed to
// every channel; otherwise the source must have the bank's channel count.
// Bank implements stream.Source.
type Bank struct {
	src    stream.Source
	rate   unit.Quantity
	kind   cascade.Kind
	engine *Engine
}

// New designs d at the sample rate of src and returns a bank filtering src.
func New(src stream.Source, d cascade.Designer, opts ...Option) (*Bank, error) {
	t, err := d.Design(src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("linear: design %v: %w", d.Kind(), err)
	}
	return NewBank(src, t, opts...)
}

// NewBank returns a bank that filters src through t.
func NewBank(src stream.Source, t *cascade.Tensor, opts ...Option) (*Bank, error) {
	fs, err := cascade.RateHz(src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("linear: source: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", cascade.ErrConfig)
	}
	if math.Abs(t.SampleRate-fs) > 1e-9*fs {
		return nil, fmt.Errorf("%w: tensor designed for %g Hz, source runs at %g Hz",
			cascade.ErrConfig, t.SampleRate, fs)
	}
	if n := src.Channels(); n != 1 && n != t.Channels {
		return nil, fmt.Errorf("%w: source has %d channels, bank has %d", stream.ErrShape, n, t.Channels)
	}
	e, err := NewEngine(t, opts...)
	if err != nil {
		return nil, err
	}
	return &Bank{src: src, rate: src.SampleRate(), kind: t.Kind, engine: e}, nil
}

// SampleRate returns the upstream sample rate.
func (b *Bank) SampleRate() unit.Quantity { return b.rate }

// Channels returns the number of filter channels.
func (b *Bank) Channels() int { return b.engine.Channels() }

// Kind returns the family tag of the current tensor.
func (b *Bank) Kind() cascade.Kind { return b.kind }

// Engine returns the engine doing the filtering.
func (b *Bank) Engine() *Engine { return b.engine }

// Read pulls up to frames frames from upstream and returns them filtered.
// Upstream errors, including io.EOF, are returned unchanged.
func (b *Bank) Read(frames int) (stream.Block, error) {
	in, err := b.src.Read(frames)
	if err != nil {
		return stream.Block{}, err
	}
	out := stream.NewBlock(in.Frames, b.engine.Channels())
	if in.Channels == 1 && out.Channels != 1 {
		err = b.engine.ProcessShared(out, in.Data)
	} else {
		err = b.engine.Process(out, in)
	}
	if err != nil {
		return stream.Block{}, err
	}
	return out, nil
}

// Reset zeroes the filter state. Upstream is not rewound.
func (b *Bank) Reset() { b.engine.Reset() }

// SetTensor swaps the coefficients, keeping state. t must have the same
// shape and sample rate.
func (b *Bank) SetTensor(t *cascade.Tensor) error {
	if t != nil && t.SampleRate != b.engine.tensor.SampleRate {
		return fmt.Errorf("%w: tensor designed for %g Hz, bank runs at %g Hz",
			cascade.ErrConfig, t.SampleRate, b.engine.tensor.SampleRate)
	}
	if err := b.engine.SetTensor(t); err != nil {
		return err
	}
	b.kind = t.Kind
	return nil
}
