package gammachirp

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/filter/design/gammatone"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// DefaultCompensationOrder is the number of asymmetric compensation
// sections used by IIR.
const DefaultCompensationOrder = 4

// Fitted asymmetric compensation parameters.
const (
	chirpB  = 1.019
	chirpP0 = 2.0
	chirpP4 = 1.0724
)

// IIR is the gammachirp filterbank realized as an exact gammatone cascade
// followed by DefaultCompensationOrder compensation sections. CF are the
// gammatone center frequencies; C holds the chirp rate per channel and
// defaults to 1.
type IIR struct {
	CF    []unit.Quantity
	C     []float64
	Scale erb.Scale
}

// Kind returns cascade.GammachirpIIR.
func (IIR) Kind() cascade.Kind { return cascade.GammachirpIIR }

// Design returns eight order-2 stages per channel: four gammatone sections
// then four compensation sections.
func (g IIR) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	gt, err := gammatone.Exact{CF: g.CF, Scale: g.Scale}.Design(sampleRate)
	if err != nil {
		return nil, err
	}
	comp, err := Compensation{CF: g.CF, C: g.C}.Design(sampleRate)
	if err != nil {
		return nil, err
	}
	out, err := cascade.Concat(gt, comp)
	if err != nil {
		return nil, err
	}
	out.Kind = cascade.GammachirpIIR
	return out, nil
}

// Compensation is the asymmetric compensation filter alone: Order
// second-order sections per channel, each scaled to unity gain at the
// normalization frequency fn = cf + Order*p3*c*b*ERBw/4. Order defaults to
// DefaultCompensationOrder.
type Compensation struct {
	CF    []unit.Quantity
	C     []float64
	Order int
}

// Kind returns cascade.GammachirpIIR.
func (Compensation) Kind() cascade.Kind { return cascade.GammachirpIIR }

// Design returns the compensation stages.
func (g Compensation) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if len(g.CF) == 0 {
		return nil, fmt.Errorf("%w: no center frequencies", cascade.ErrConfig)
	}
	cfs, err := unit.ToHz(g.CF)
	if err != nil {
		return nil, fmt.Errorf("center frequency: %w", err)
	}
	order := g.Order
	if order == 0 {
		order = DefaultCompensationOrder
	}
	if order < 0 {
		return nil, fmt.Errorf("%w: compensation order must be > 0: %d", cascade.ErrConfig, order)
	}
	cs, err := chirpRates(g.C, len(cfs))
	if err != nil {
		return nil, err
	}

	per := make([][]cascade.Section, len(cfs))
	for ch, cf := range cfs {
		if !(cf > 0) || cf >= fs/2 {
			return nil, fmt.Errorf("%w: center frequency %d = %g Hz outside (0, %g)", cascade.ErrConfig, ch, cf, fs/2)
		}
		secs, err := compensationSections(cf, cs[ch], fs, order)
		if err != nil {
			return nil, fmt.Errorf("channel %d (cf %g Hz): %w", ch, cf, err)
		}
		per[ch] = secs
	}
	return cascade.FromSections(cascade.GammachirpIIR, fs, per)
}

func chirpRates(c []float64, n int) ([]float64, error) {
	if c == nil {
		out := make([]float64, n)
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	if len(c) != n {
		return nil, fmt.Errorf("%w: %d chirp rates for %d channels", cascade.ErrConfig, len(c), n)
	}
	return c, nil
}

// NormalizationFrequency returns fn for a compensation filter of the given
// order at cf with chirp rate c.
func NormalizationFrequency(cf, c float64, order int) float64 {
	erbw := 24.7 * (4.37e-3*cf + 1)
	p3 := 0.2523 * (1 - 0.0244*chirpB) * (1 + 0.0574*math.Abs(c))
	return cf + float64(order)*p3*c*chirpB*erbw/4
}

func compensationSections(cf, c, fs float64, order int) ([]cascade.Section, error) {
	erbw := 24.7 * (4.37e-3*cf + 1)
	absC := math.Abs(c)
	p1 := 1.7818 * (1 - 0.0791*chirpB) * (1 - 0.1655*absC)
	p2 := 0.5689 * (1 - 0.1620*chirpB) * (1 - 0.0857*absC)

	fn := NormalizationFrequency(cf, c, order)
	z := cmplx.Exp(complex(0, 2*math.Pi*fn/fs))

	secs := make([]cascade.Section, order)
	for k := range secs {
		kf := float64(k)
		r := math.Exp(-p1 * math.Pow(chirpP0/chirpP4, kf) * 2 * math.Pi * chirpB * erbw / fs)
		if !(r > 0) {
			return nil, fmt.Errorf("%w: compensation pole radius %v", cascade.ErrDegenerate, r)
		}
		dfr := math.Pow(chirpP0*chirpP4, kf) * p2 * c * chirpB * erbw
		phi := 2 * math.Pi * math.Max(cf+dfr, 0) / fs
		psi := 2 * math.Pi * math.Max(cf-dfr, 0) / fs

		a := []float64{1, -2 * r * math.Cos(phi), r * r}
		b := []float64{1, -2 * r * math.Cos(psi), r * r}

		den := evalAscending(b, z)
		if den == 0 {
			return nil, fmt.Errorf("%w: compensation numerator vanishes at %g Hz", cascade.ErrDegenerate, fn)
		}
		nrm := cmplx.Abs(evalAscending(a, z) / den)
		if nrm == 0 || math.IsNaN(nrm) || math.IsInf(nrm, 0) {
			return nil, fmt.Errorf("%w: compensation normalization %v", cascade.ErrDegenerate, nrm)
		}
		for i := range b {
			b[i] *= nrm
		}
		secs[k] = cascade.Section{B: b, A: a}
	}
	return secs, nil
}

// evalAscending returns c[0] + c[1] z + c[2] z^2.
func evalAscending(c []float64, z complex128) complex128 {
	return complex(c[0], 0) + complex(c[1], 0)*z + complex(c[2], 0)*z*z
}
