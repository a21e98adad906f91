package linear

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/stream"
)

// Engine filters blocks through a coefficient tensor, keeping per-channel
// per-stage state between calls. An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	tensor *cascade.Tensor
	state  *State

	// Vector kernel coefficient columns: cols[stage].b[k] holds b_k of every
	// channel, cols[stage].na[k] holds -a_k.
	cols []stageColumns

	// Scratch, grown on demand.
	x, y    []float64
	workers []scalarScratch
}

type stageColumns struct {
	b, na [][]float64
}

// NewEngine validates t, normalizes a copy to a[0] == 1 and binds it to a
// zero state.
func NewEngine(t *cascade.Tensor, opts ...Option) (*Engine, error) {
	tt, err := prepare(t)
	if err != nil {
		return nil, err
	}
	e := &Engine{cfg: applyOptions(opts), tensor: tt, state: NewState(tt)}
	e.buildColumns()
	return e, nil
}

// NewEngineWithState is like NewEngine but continues from s, which must have
// the shape of t. The engine takes ownership of s.
func NewEngineWithState(t *cascade.Tensor, s *State, opts ...Option) (*Engine, error) {
	tt, err := prepare(t)
	if err != nil {
		return nil, err
	}
	if err := s.matches(tt); err != nil {
		return nil, err
	}
	e := &Engine{cfg: applyOptions(opts), tensor: tt, state: s}
	e.buildColumns()
	return e, nil
}

func prepare(t *cascade.Tensor) (*cascade.Tensor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", cascade.ErrConfig)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	tt := t.Clone()
	if err := tt.Normalize(); err != nil {
		return nil, err
	}
	return tt, nil
}

// Config returns the runtime settings.
func (e *Engine) Config() Config { return e.cfg }

// Channels returns the channel count.
func (e *Engine) Channels() int { return e.tensor.Channels }

// Tensor returns a copy of the normalized coefficients.
func (e *Engine) Tensor() *cascade.Tensor { return e.tensor.Clone() }

// State returns the live state. Changes made through it affect the next
// Process call.
func (e *Engine) State() *State { return e.state }

// Reset zeroes the state.
func (e *Engine) Reset() { e.state.Reset() }

// SetTensor swaps the coefficients for t, which must have the same channel
// count and stage orders. State is kept.
func (e *Engine) SetTensor(t *cascade.Tensor) error {
	tt, err := prepare(t)
	if err != nil {
		return err
	}
	if err := e.state.matches(tt); err != nil {
		return err
	}
	e.tensor = tt
	e.buildColumns()
	return nil
}

// SetSection replaces the coefficients of one stage and channel in place,
// normalized by a[0] and zero padded to the stage order. State is kept. It
// is the cheap path for coefficients that change every few samples.
func (e *Engine) SetSection(stage, ch int, sec cascade.Section) error {
	if stage < 0 || stage >= len(e.tensor.Stages) || ch < 0 || ch >= e.tensor.Channels {
		return fmt.Errorf("%w: no section at stage %d channel %d", cascade.ErrConfig, stage, ch)
	}
	st := e.tensor.Stages[stage]
	if len(sec.A) == 0 {
		return fmt.Errorf("%w: empty denominator", cascade.ErrConfig)
	}
	a0 := sec.A[0]
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return fmt.Errorf("%w: stage %d channel %d has a[0] = %v", cascade.ErrDegenerate, stage, ch, a0)
	}
	if !finite(sec.B) || !finite(sec.A) {
		return fmt.Errorf("%w: stage %d channel %d has non-finite coefficients", cascade.ErrDegenerate, stage, ch)
	}
	if err := st.Set(ch, sec); err != nil {
		return err
	}
	b, a := st.B[ch], st.A[ch]
	cols := e.cols[stage]
	for k := range a {
		b[k] /= a0
		a[k] /= a0
		cols.b[k][ch] = b[k]
		cols.na[k][ch] = -a[k]
	}
	return nil
}

// Process filters src into dst. Both blocks must have the engine's channel
// count and the same number of frames; dst may alias src.
func (e *Engine) Process(dst, src stream.Block) error {
	if err := e.checkBlocks(dst, src.Frames); err != nil {
		return err
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if src.Channels != e.tensor.Channels {
		return fmt.Errorf("%w: input has %d channels, engine has %d", stream.ErrShape, src.Channels, e.tensor.Channels)
	}
	e.run(dst, src.Data, false)
	return nil
}

// ProcessShared filters a single input signal through every channel.
func (e *Engine) ProcessShared(dst stream.Block, mono []float64) error {
	if err := e.checkBlocks(dst, len(mono)); err != nil {
		return err
	}
	e.run(dst, mono, true)
	return nil
}

func (e *Engine) checkBlocks(dst stream.Block, frames int) error {
	if err := dst.Validate(); err != nil {
		return err
	}
	if dst.Channels != e.tensor.Channels {
		return fmt.Errorf("%w: output has %d channels, engine has %d", stream.ErrShape, dst.Channels, e.tensor.Channels)
	}
	if dst.Frames != frames {
		return fmt.Errorf("%w: output has %d frames, input %d", stream.ErrShape, dst.Frames, frames)
	}
	return nil
}

func (e *Engine) run(dst stream.Block, in []float64, shared bool) {
	if dst.Frames == 0 {
		return
	}
	switch e.cfg.Kernel {
	case Vector:
		e.processVector(dst, in, shared)
	default:
		e.processScalar(dst, in, shared)
	}
	if e.cfg.Precision == Float32 {
		for i, v := range dst.Data {
			dst.Data[i] = float64(float32(v))
		}
	}
}

func (e *Engine) buildColumns() {
	c := e.tensor.Channels
	e.cols = make([]stageColumns, len(e.tensor.Stages))
	for s, st := range e.tensor.Stages {
		w := st.Order + 1
		cols := stageColumns{b: make([][]float64, w), na: make([][]float64, w)}
		for k := range w {
			cols.b[k] = make([]float64, c)
			cols.na[k] = make([]float64, c)
			for ch := range c {
				cols.b[k][ch] = st.B[ch][k]
				cols.na[k][ch] = -st.A[ch][k]
			}
		}
		e.cols[s] = cols
	}
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
