package gammatone

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Parallel is Meddis' gammatone filterbank: a single resonator per channel,
// normalized to unity gain at cf and cascaded Order times.
//
// BW holds one bandwidth per channel. When BW is nil, each channel uses its
// ERB on Scale.
type Parallel struct {
	CF    []unit.Quantity
	BW    []unit.Quantity
	Order int
	Scale erb.Scale
}

// Kind returns cascade.ParallelGammatone.
func (Parallel) Kind() cascade.Kind { return cascade.ParallelGammatone }

// Design returns Order identical order-2 stages per channel.
func (g Parallel) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if g.Order <= 0 {
		return nil, fmt.Errorf("%w: order must be > 0: %d", cascade.ErrConfig, g.Order)
	}
	cfs, err := centerFrequencies(g.CF, fs)
	if err != nil {
		return nil, err
	}
	var bws []float64
	if g.BW == nil {
		if err := g.Scale.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", cascade.ErrConfig, err)
		}
		bws = g.Scale.ERBs(cfs)
	} else {
		if len(g.BW) != len(cfs) {
			return nil, fmt.Errorf("%w: %d bandwidths for %d channels", cascade.ErrConfig, len(g.BW), len(cfs))
		}
		if bws, err = unit.ToHz(g.BW); err != nil {
			return nil, fmt.Errorf("bandwidth: %w", err)
		}
	}

	per := make([][]cascade.Section, len(cfs))
	for ch, cf := range cfs {
		if !(bws[ch] > 0) {
			return nil, fmt.Errorf("%w: bandwidth %d must be > 0: %g", cascade.ErrConfig, ch, bws[ch])
		}
		sec, err := resonator(cf, bws[ch], fs)
		if err != nil {
			return nil, fmt.Errorf("channel %d (cf %g Hz): %w", ch, cf, err)
		}
		secs := make([]cascade.Section, g.Order)
		for i := range secs {
			secs[i] = cascade.Section{
				B: append([]float64(nil), sec.B...),
				A: append([]float64(nil), sec.A...),
			}
		}
		per[ch] = secs
	}
	return cascade.FromSections(cascade.ParallelGammatone, fs, per)
}

func resonator(cf, bw, fs float64) (cascade.Section, error) {
	dt := 1 / fs
	phi := 2 * math.Pi * bw * dt
	theta := 2 * math.Pi * cf * dt
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	alpha := -math.Exp(-phi) * cosT
	a1 := 2 * alpha
	a2 := math.Exp(-2 * phi)

	z1 := complex(1+alpha*cosT, -alpha*sinT)
	z2 := complex(1+a1*cosT, -a1*sinT)
	z3 := complex(a2*math.Cos(2*theta), -a2*math.Sin(2*theta))
	if z1 == 0 {
		return cascade.Section{}, fmt.Errorf("%w: resonator numerator vanishes at cf", cascade.ErrDegenerate)
	}
	gain := cmplx.Abs((z2 + z3) / z1)
	if gain == 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return cascade.Section{}, fmt.Errorf("%w: resonator gain %v", cascade.ErrDegenerate, gain)
	}
	return cascade.Section{
		B: []float64{gain, alpha * gain, 0},
		A: []float64{1, a1, a2},
	}, nil
}
