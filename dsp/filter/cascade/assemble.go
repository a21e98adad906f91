package cascade

import "fmt"

// Concat joins tensors along the stage axis. All inputs must have the same
// channel count and sample rate; the result holds deep copies of their stages
// in argument order. A single input is returned as a copy. The result kind
// is the common kind of the inputs, or Composite when they differ.
func Concat(ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrConfig)
	}
	for i, t := range ts {
		if t == nil {
			return nil, fmt.Errorf("%w: tensor %d is nil", ErrConfig, i)
		}
	}
	first := ts[0]
	out := New(first.Kind, first.SampleRate, first.Channels)
	for i, t := range ts {
		if t.Channels != first.Channels {
			return nil, fmt.Errorf("%w: tensor %d has %d channels, want %d",
				ErrConfig, i, t.Channels, first.Channels)
		}
		if t.SampleRate != first.SampleRate {
			return nil, fmt.Errorf("%w: tensor %d designed for %g Hz, want %g Hz",
				ErrConfig, i, t.SampleRate, first.SampleRate)
		}
		if t.Kind != out.Kind {
			out.Kind = Composite
		}
		for _, s := range t.Stages {
			out.Stages = append(out.Stages, s.clone())
		}
	}
	return out, nil
}

// Repeat returns a tensor whose stages are n copies of the first stage of t.
func Repeat(t *Tensor, n int) (*Tensor, error) {
	if t == nil || len(t.Stages) == 0 {
		return nil, fmt.Errorf("%w: repeat needs a tensor with at least one stage", ErrConfig)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: repeat count must be > 0: %d", ErrConfig, n)
	}
	out := New(t.Kind, t.SampleRate, t.Channels)
	out.Stages = make([]Stage, n)
	for i := range out.Stages {
		out.Stages[i] = t.Stages[0].clone()
	}
	return out, nil
}

// Sub returns a copy of stages [from, to) of t.
func (t *Tensor) Sub(from, to int) (*Tensor, error) {
	if from < 0 || to > len(t.Stages) || from >= to {
		return nil, fmt.Errorf("%w: stage range [%d, %d) of %d", ErrConfig, from, to, len(t.Stages))
	}
	out := New(t.Kind, t.SampleRate, t.Channels)
	for _, s := range t.Stages[from:to] {
		out.Stages = append(out.Stages, s.clone())
	}
	return out, nil
}
