package linear

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// State is the delay-line memory of a multi-channel cascade. Stage s owns
// Orders()[s] delay elements per channel; element k of every channel is
// stored as one contiguous channel vector.
type State struct {
	channels int
	orders   []int
	offsets  []int
	z        []float64
}

// NewState returns a zero state shaped for t.
func NewState(t *cascade.Tensor) *State {
	return newState(t.Channels, t.Orders())
}

func newState(channels int, orders []int) *State {
	s := &State{
		channels: channels,
		orders:   slices.Clone(orders),
		offsets:  make([]int, len(orders)),
	}
	n := 0
	for i, o := range orders {
		s.offsets[i] = n
		n += o * channels
	}
	s.z = make([]float64, n)
	return s
}

// Channels returns the channel count.
func (s *State) Channels() int { return s.channels }

// Orders returns the delay-line length of each stage.
func (s *State) Orders() []int { return slices.Clone(s.orders) }

// Len returns the number of delay elements over all stages and channels.
func (s *State) Len() int { return len(s.z) }

// Reset zeroes every delay element.
func (s *State) Reset() { clear(s.z) }

// Clone returns an independent copy.
func (s *State) Clone() *State {
	out := newState(s.channels, s.orders)
	copy(out.z, s.z)
	return out
}

// CopyFrom overwrites s with the delay elements of src, which must have
// the same shape.
func (s *State) CopyFrom(src *State) error {
	if s.channels != src.channels || !slices.Equal(s.orders, src.orders) {
		return fmt.Errorf("%w: state shape %dx%v, source %dx%v",
			cascade.ErrConfig, s.channels, s.orders, src.channels, src.orders)
	}
	copy(s.z, src.z)
	return nil
}

// Finite reports whether every delay element is finite.
func (s *State) Finite() bool { return finite(s.z) }

// Delay returns a copy of the delay line of one stage and channel.
func (s *State) Delay(stage, ch int) []float64 {
	out := make([]float64, s.orders[stage])
	for k := range out {
		out[k] = s.z[s.index(stage, k, ch)]
	}
	return out
}

// SetDelay overwrites the delay line of one stage and channel.
func (s *State) SetDelay(stage, ch int, z []float64) error {
	if stage < 0 || stage >= len(s.orders) || ch < 0 || ch >= s.channels {
		return fmt.Errorf("%w: no delay line for stage %d channel %d", cascade.ErrConfig, stage, ch)
	}
	if len(z) != s.orders[stage] {
		return fmt.Errorf("%w: stage %d delay line has %d elements, got %d",
			cascade.ErrConfig, stage, s.orders[stage], len(z))
	}
	for k, v := range z {
		s.z[s.index(stage, k, ch)] = v
	}
	return nil
}

func (s *State) index(stage, k, ch int) int {
	return s.offsets[stage] + k*s.channels + ch
}

// vector returns delay element k of stage as a channel vector.
func (s *State) vector(stage, k int) []float64 {
	i := s.offsets[stage] + k*s.channels
	return s.z[i : i+s.channels : i+s.channels]
}

// matches reports a shape mismatch between s and t as ErrConfig.
func (s *State) matches(t *cascade.Tensor) error {
	if s.channels != t.Channels {
		return fmt.Errorf("%w: state has %d channels, tensor has %d", cascade.ErrConfig, s.channels, t.Channels)
	}
	if !slices.Equal(s.orders, t.Orders()) {
		return fmt.Errorf("%w: state stage orders %v, tensor %v", cascade.ErrConfig, s.orders, t.Orders())
	}
	return nil
}
