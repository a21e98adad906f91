package cascade

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hears/internal/polyroot"
)

// Response evaluates H(e^jw) of the section at freqHz for sampleRate.
func (s Section) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	return polyZ(s.B, z1) / polyZ(s.A, z1)
}

// polyZ evaluates c[0] + c[1] z1 + c[2] z1^2 + ... with z1 = z^-1.
func polyZ(c []float64, z1 complex128) complex128 {
	var v complex128
	for i := len(c) - 1; i >= 0; i-- {
		v = v*z1 + complex(c[i], 0)
	}
	return v
}

// Response returns the complex frequency response of channel ch at freqHz,
// the product of all stage responses.
func (t *Tensor) Response(ch int, freqHz float64) complex128 {
	h := complex(1, 0)
	for _, s := range t.Stages {
		h *= s.Section(ch).Response(freqHz, t.SampleRate)
	}
	return h
}

// MagnitudeDB returns 20*log10(|H(f)|) for channel ch.
func (t *Tensor) MagnitudeDB(ch int, freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(t.Response(ch, freqHz)))
}

// Poles returns the z-plane poles of channel ch in stage order.
func (t *Tensor) Poles(ch int) ([]complex128, error) {
	var out []complex128
	for i, s := range t.Stages {
		p, err := polyroot.ZRoots(s.A[ch])
		if err != nil {
			return nil, fmt.Errorf("%w: stage %d channel %d: %w", ErrDegenerate, i, ch, err)
		}
		out = append(out, p...)
	}
	return out, nil
}

// MaxPoleRadius returns the largest pole magnitude over all channels. A
// value below 1 means the cascade is stable.
func (t *Tensor) MaxPoleRadius() (float64, error) {
	r := 0.0
	for ch := 0; ch < t.Channels; ch++ {
		ps, err := t.Poles(ch)
		if err != nil {
			return 0, err
		}
		for _, p := range ps {
			r = math.Max(r, cmplx.Abs(p))
		}
	}
	return r, nil
}
