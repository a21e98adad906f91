package cascade

import (
	"fmt"
	"math"
)

// Section is one stage of one channel: numerator b[0..order] and
// denominator a[0..order].
type Section struct {
	B, A []float64
}

// Order returns the section order (len(A)-1).
func (s Section) Order() int { return len(s.A) - 1 }

// Stage holds the coefficients of one cascade stage for every channel.
// B[ch] and A[ch] both have length Order+1.
type Stage struct {
	Order int
	B, A  [][]float64
}

// NewStage returns a zero stage of the given order for channels channels.
// Backing storage is shared by rows, one contiguous slice per side.
func NewStage(channels, order int) Stage {
	w := order + 1
	bs := make([]float64, channels*w)
	as := make([]float64, channels*w)
	st := Stage{
		Order: order,
		B:     make([][]float64, channels),
		A:     make([][]float64, channels),
	}
	for ch := 0; ch < channels; ch++ {
		st.B[ch] = bs[ch*w : (ch+1)*w : (ch+1)*w]
		st.A[ch] = as[ch*w : (ch+1)*w : (ch+1)*w]
	}
	return st
}

// Channels returns the number of channel rows in the stage.
func (s Stage) Channels() int { return len(s.A) }

// Section returns the coefficients of channel ch. The slices alias the stage.
func (s Stage) Section(ch int) Section {
	return Section{B: s.B[ch], A: s.A[ch]}
}

// Set copies sec into channel ch, zero padding to the stage order.
func (s Stage) Set(ch int, sec Section) error {
	if len(sec.B) > s.Order+1 || len(sec.A) > s.Order+1 {
		return fmt.Errorf("%w: section of width %d/%d exceeds stage order %d",
			ErrConfig, len(sec.B), len(sec.A), s.Order)
	}
	clear(s.B[ch])
	clear(s.A[ch])
	copy(s.B[ch], sec.B)
	copy(s.A[ch], sec.A)
	return nil
}

func (s Stage) clone() Stage {
	out := NewStage(s.Channels(), s.Order)
	for ch := range s.B {
		copy(out.B[ch], s.B[ch])
		copy(out.A[ch], s.A[ch])
	}
	return out
}

// Tensor is the coefficient set of a multi-channel cascade. Stages run in
// slice order; every stage has exactly Channels rows.
type Tensor struct {
	Kind       Kind
	SampleRate float64
	Channels   int
	Stages     []Stage
}

// New returns an empty tensor.
func New(kind Kind, sampleRate float64, channels int) *Tensor {
	return &Tensor{Kind: kind, SampleRate: sampleRate, Channels: channels}
}

// Uniform builds a tensor in which every channel shares the same sections.
func Uniform(kind Kind, sampleRate float64, channels int, sections ...Section) (*Tensor, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0: %d", ErrConfig, channels)
	}
	t := New(kind, sampleRate, channels)
	for i, sec := range sections {
		st := NewStage(channels, sec.Order())
		for ch := 0; ch < channels; ch++ {
			if err := st.Set(ch, sec); err != nil {
				return nil, fmt.Errorf("section %d: %w", i, err)
			}
		}
		t.Stages = append(t.Stages, st)
	}
	return t, nil
}

// FromSections builds a tensor from per-channel section lists,
// perChannel[ch][stage]. Every channel must have the same number of stages
// and matching orders stage by stage.
func FromSections(kind Kind, sampleRate float64, perChannel [][]Section) (*Tensor, error) {
	if len(perChannel) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrConfig)
	}
	n := len(perChannel[0])
	for ch, secs := range perChannel {
		if len(secs) != n {
			return nil, fmt.Errorf("%w: channel %d has %d stages, want %d", ErrConfig, ch, len(secs), n)
		}
	}
	t := New(kind, sampleRate, len(perChannel))
	for i := 0; i < n; i++ {
		order := perChannel[0][i].Order()
		st := NewStage(len(perChannel), order)
		for ch, secs := range perChannel {
			if secs[i].Order() != order {
				return nil, fmt.Errorf("%w: channel %d stage %d has order %d, want %d",
					ErrConfig, ch, i, secs[i].Order(), order)
			}
			if err := st.Set(ch, secs[i]); err != nil {
				return nil, err
			}
		}
		t.Stages = append(t.Stages, st)
	}
	return t, nil
}

// AddStage appends a stage after checking its channel count.
func (t *Tensor) AddStage(s Stage) error {
	if s.Channels() != t.Channels {
		return fmt.Errorf("%w: stage has %d channels, tensor has %d", ErrConfig, s.Channels(), t.Channels)
	}
	t.Stages = append(t.Stages, s)
	return nil
}

// NumStages returns the number of cascade stages.
func (t *Tensor) NumStages() int { return len(t.Stages) }

// Orders returns the order of each stage.
func (t *Tensor) Orders() []int {
	out := make([]int, len(t.Stages))
	for i, s := range t.Stages {
		out[i] = s.Order
	}
	return out
}

// TotalOrder returns the sum of the stage orders, which is also the number
// of delay-line elements per channel.
func (t *Tensor) TotalOrder() int {
	n := 0
	for _, s := range t.Stages {
		n += s.Order
	}
	return n
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	out := New(t.Kind, t.SampleRate, t.Channels)
	out.Stages = make([]Stage, len(t.Stages))
	for i, s := range t.Stages {
		out.Stages[i] = s.clone()
	}
	return out
}

// Validate checks the tensor shape and that every coefficient is finite and
// every leading denominator coefficient is non-zero.
func (t *Tensor) Validate() error {
	if t.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrConfig, t.Channels)
	}
	if !(t.SampleRate > 0) || math.IsInf(t.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrConfig, t.SampleRate)
	}
	for i, s := range t.Stages {
		if s.Order < 0 {
			return fmt.Errorf("%w: stage %d has negative order", ErrConfig, i)
		}
		if len(s.B) != t.Channels || len(s.A) != t.Channels {
			return fmt.Errorf("%w: stage %d has %d/%d channel rows, want %d",
				ErrConfig, i, len(s.B), len(s.A), t.Channels)
		}
		for ch := 0; ch < t.Channels; ch++ {
			if len(s.B[ch]) != s.Order+1 || len(s.A[ch]) != s.Order+1 {
				return fmt.Errorf("%w: stage %d channel %d width %d/%d, want %d",
					ErrConfig, i, ch, len(s.B[ch]), len(s.A[ch]), s.Order+1)
			}
			if s.A[ch][0] == 0 {
				return fmt.Errorf("%w: stage %d channel %d has a[0] = 0", ErrDegenerate, i, ch)
			}
			if !allFinite(s.B[ch]) || !allFinite(s.A[ch]) {
				return fmt.Errorf("%w: stage %d channel %d has non-finite coefficients", ErrDegenerate, i, ch)
			}
		}
	}
	return nil
}

// Normalize divides every row by its leading denominator coefficient so that
// a[0] == 1 throughout.
func (t *Tensor) Normalize() error {
	for i, s := range t.Stages {
		for ch := range s.A {
			a0 := s.A[ch][0]
			if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
				return fmt.Errorf("%w: stage %d channel %d has a[0] = %v", ErrDegenerate, i, ch, a0)
			}
			if a0 == 1 {
				continue
			}
			for k := range s.A[ch] {
				s.A[ch][k] /= a0
				s.B[ch][k] /= a0
			}
		}
	}
	return nil
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
