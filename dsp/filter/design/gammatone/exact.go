package gammatone

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Exact is Slaney's exact gammatone filterbank, one channel per center
// frequency.
type Exact struct {
	CF    []unit.Quantity
	Scale erb.Scale
}

// Kind returns cascade.ExactGammatone.
func (Exact) Kind() cascade.Kind { return cascade.ExactGammatone }

// Design returns four order-2 stages per channel. The first section carries
// the normalization so the cascade has unity gain at its center frequency.
func (g Exact) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	cfs, err := centerFrequencies(g.CF, fs)
	if err != nil {
		return nil, err
	}
	if err := g.Scale.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", cascade.ErrConfig, err)
	}
	per := make([][]cascade.Section, len(cfs))
	for ch, cf := range cfs {
		secs, err := exactSections(cf, g.Scale.ERB(cf), fs)
		if err != nil {
			return nil, fmt.Errorf("channel %d (cf %g Hz): %w", ch, cf, err)
		}
		per[ch] = secs[:]
	}
	return cascade.FromSections(cascade.ExactGammatone, fs, per)
}

var (
	sqrtPlus  = math.Sqrt(3 + math.Pow(2, 1.5))
	sqrtMinus = math.Sqrt(3 - math.Pow(2, 1.5))
)

func exactSections(cf, erbHz, fs float64) ([4]cascade.Section, error) {
	var secs [4]cascade.Section

	T := 1 / fs
	B := 1.019 * 2 * math.Pi * erbHz
	theta := 2 * math.Pi * cf * T
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	decay := math.Exp(B * T)

	a := []float64{1, -2 * cosT / decay, math.Exp(-2 * B * T)}

	zeroTerm := func(sign, root float64) float64 {
		return -(2*T*cosT/decay + sign*2*root*T*sinT/decay) / 2
	}
	a1 := [4]float64{
		zeroTerm(+1, sqrtPlus),
		zeroTerm(-1, sqrtPlus),
		zeroTerm(+1, sqrtMinus),
		zeroTerm(-1, sqrtMinus),
	}

	gain := exactGain(cf, B, T)
	if gain == 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return secs, fmt.Errorf("%w: gammatone gain %v", cascade.ErrDegenerate, gain)
	}

	for k := range secs {
		b := []float64{T, a1[k], 0}
		if k == 0 {
			b[0] /= gain
			b[1] /= gain
		}
		secs[k] = cascade.Section{B: b, A: append([]float64(nil), a...)}
	}
	return secs, nil
}

// exactGain is the closed-form magnitude of the four unnormalized sections
// at cf.
func exactGain(cf, B, T float64) float64 {
	theta := 2 * math.Pi * cf * T
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	e2 := cmplx.Exp(complex(0, 2*theta))
	e1 := cmplx.Exp(complex(-B*T, theta))

	factor := func(c float64) complex128 {
		return -2*e2*complex(T, 0) + 2*e1*complex(T*c, 0)
	}
	num := factor(cosT-sqrtMinus*sinT) *
		factor(cosT+sqrtMinus*sinT) *
		factor(cosT-sqrtPlus*sinT) *
		factor(cosT+sqrtPlus*sinT)

	den := complex(-2*math.Exp(-2*B*T), 0) - 2*e2 + 2*(1+e2)*complex(math.Exp(-B*T), 0)
	den2 := den * den
	return cmplx.Abs(num / (den2 * den2))
}

// centerFrequencies converts cf to hertz and checks every value lies in
// (0, fs/2).
func centerFrequencies(cf []unit.Quantity, fs float64) ([]float64, error) {
	if len(cf) == 0 {
		return nil, fmt.Errorf("%w: no center frequencies", cascade.ErrConfig)
	}
	hz, err := unit.ToHz(cf)
	if err != nil {
		return nil, fmt.Errorf("center frequency: %w", err)
	}
	for i, f := range hz {
		if !(f > 0) || f >= fs/2 {
			return nil, fmt.Errorf("%w: center frequency %d = %g Hz outside (0, %g)",
				cascade.ErrConfig, i, f, fs/2)
		}
	}
	return hz, nil
}
