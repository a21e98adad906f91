package iir

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// zpk is a filter in zeros, poles and gain form.
type zpk struct {
	z, p []complex128
	k    float64
}

// degree returns len(p) - len(z).
func (f zpk) degree() int { return len(f.p) - len(f.z) }

// buttap is the analog Butterworth lowpass prototype with cutoff 1 rad/s.
func buttap(n int) zpk {
	p := make([]complex128, n)
	for i := range p {
		m := float64(-n + 1 + 2*i)
		p[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*n)))
	}
	return zpk{p: p, k: 1}
}

// cheb1ap is the analog Chebyshev type I prototype with rp dB passband
// ripple and passband edge 1 rad/s.
func cheb1ap(n int, rp float64) zpk {
	eps := math.Sqrt(pow10m1(0.1 * rp))
	mu := math.Asinh(1/eps) / float64(n)
	p := make([]complex128, n)
	for i := range p {
		theta := math.Pi * float64(-n+1+2*i) / float64(2*n)
		p[i] = -cmplx.Sinh(complex(mu, theta))
	}
	k := real(prodNeg(p))
	if n%2 == 0 {
		k /= math.Sqrt(1 + eps*eps)
	}
	return zpk{p: p, k: k}
}

// cheb2ap is the analog Chebyshev type II prototype with rs dB stopband
// attenuation and stopband edge 1 rad/s.
func cheb2ap(n int, rs float64) zpk {
	de := 1 / math.Sqrt(pow10m1(0.1*rs))
	mu := math.Asinh(1/de) / float64(n)

	var ms []int
	for m := -n + 1; m < n; m += 2 {
		if n%2 == 1 && m == 0 {
			continue
		}
		ms = append(ms, m)
	}
	z := make([]complex128, len(ms))
	for i, m := range ms {
		z[i] = -cmplx.Conj(complex(0, 1) / complex(math.Sin(float64(m)*math.Pi/float64(2*n)), 0))
	}

	p := make([]complex128, n)
	sh, ch := math.Sinh(mu), math.Cosh(mu)
	for i := range p {
		q := -cmplx.Exp(complex(0, math.Pi*float64(-n+1+2*i)/float64(2*n)))
		p[i] = 1 / complex(sh*real(q), ch*imag(q))
	}
	k := real(prodNeg(p) / prodNeg(z))
	return zpk{z: z, p: p, k: k}
}

// ellipap is the analog elliptic prototype with rp dB passband ripple, rs dB
// stopband attenuation and passband edge 1 rad/s.
func ellipap(n int, rp, rs float64) (zpk, error) {
	if n == 1 {
		p := -math.Sqrt(1 / pow10m1(0.1*rp))
		return zpk{p: []complex128{complex(p, 0)}, k: -p}, nil
	}

	epsSq := pow10m1(0.1 * rp)
	eps := math.Sqrt(epsSq)
	ck1Sq := epsSq / pow10m1(0.1*rs)
	if !(ck1Sq > 0 && ck1Sq < 1) {
		return zpk{}, fmt.Errorf("%w: elliptic ripple %g dB and attenuation %g dB", cascade.ErrConfig, rp, rs)
	}

	val0 := ellipk(ck1Sq)
	m := ellipdeg(n, ck1Sq)
	capk := ellipk(m)

	var s, c, d []float64
	var z []complex128
	for j := 1 - n%2; j < n; j += 2 {
		sj, cj, dj := ellipj(float64(j)*capk/float64(n), m)
		s = append(s, sj)
		c = append(c, cj)
		d = append(d, dj)
		if math.Abs(sj) > 2.220446049250313e-16 {
			z = append(z, complex(0, 1/(math.Sqrt(m)*sj)))
		}
	}
	for i, n0 := 0, len(z); i < n0; i++ {
		z = append(z, cmplx.Conj(z[i]))
	}

	r := arcJacSC1(1/eps, ck1Sq)
	v0 := capk * r / (float64(n) * val0)
	sv, cv, dv := ellipj(v0, 1-m)

	p := make([]complex128, len(s))
	norm := 0.0
	for i := range s {
		den := 1 - (d[i]*sv)*(d[i]*sv)
		p[i] = -complex(c[i]*d[i]*sv*cv, s[i]*dv) / complex(den, 0)
		norm += real(p[i] * cmplx.Conj(p[i]))
	}
	if n%2 == 1 {
		thr := 2.220446049250313e-16 * math.Sqrt(norm)
		for i, n0 := 0, len(p); i < n0; i++ {
			if math.Abs(imag(p[i])) > thr {
				p = append(p, cmplx.Conj(p[i]))
			}
		}
	} else {
		for i, n0 := 0, len(p); i < n0; i++ {
			p = append(p, cmplx.Conj(p[i]))
		}
	}

	k := real(prodNeg(p) / prodNeg(z))
	if n%2 == 0 {
		k /= math.Sqrt(1 + epsSq)
	}
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return zpk{}, fmt.Errorf("%w: elliptic prototype gain %v", cascade.ErrDegenerate, k)
	}
	return zpk{z: z, p: p, k: k}, nil
}

const maxBesselOrder = 10

// besselap is the analog Bessel prototype normalized to -3 dB at 1 rad/s.
func besselap(n int) (zpk, error) {
	if n > maxBesselOrder {
		return zpk{}, fmt.Errorf("%w: bessel order must be <= %d: %d", cascade.ErrConfig, maxBesselOrder, n)
	}
	s := besselScale[n]
	p := make([]complex128, 0, n)
	for _, q := range besselDelayPoles[n] {
		q /= complex(s, 0)
		p = append(p, q)
		if imag(q) != 0 {
			p = append(p, cmplx.Conj(q))
		}
	}
	return zpk{p: p, k: real(prodNeg(p))}, nil
}

// besselDelayPoles holds the delay-normalized Bessel poles for orders 1 to
// 10, one per conjugate pair plus the real pole for odd orders (C.R. Bond,
// "Bessel Filter Constants").
var besselDelayPoles = [maxBesselOrder + 1][]complex128{
	{},
	{-1.0},
	{complex(-1.5, 0.8660254038)},
	{complex(-1.8389073227, 1.7543809598), -2.3221853546},
	{complex(-2.1037893972, 2.6574180419), complex(-2.8962106028, 0.8672341289)},
	{complex(-2.3246743032, 3.5710229203), complex(-3.3519563992, 1.7426614162), -3.6467385953},
	{complex(-2.5159322478, 4.4926729537), complex(-3.7357083563, 2.6262723114), complex(-4.2483593959, 0.8675096732)},
	{
		complex(-2.6856768789, 5.4206941307), complex(-4.0701391636, 3.5171740477),
		complex(-4.7582905282, 1.7392860613), -4.9717868585,
	},
	{
		complex(-2.8389839177, 6.3539112470), complex(-4.3682892668, 4.4144425006),
		complex(-5.2048407906, 2.6161751538), complex(-5.5878860022, 0.8676144454),
	},
	{
		complex(-2.9792607983, 7.2914651564), complex(-4.6384398714, 5.3172716754),
		complex(-5.6044218195, 3.4981415816), complex(-6.1293679040, 1.7378483835),
		-6.2970079817,
	},
	{
		complex(-3.1088931555, 8.2324678728), complex(-4.8862195924, 6.2249854825),
		complex(-5.9675283089, 4.3849471924), complex(-6.6152909655, 2.6115679208),
		complex(-6.9220449048, 0.8676594792),
	},
}

// besselScale converts delay-normalized poles to -3 dB normalization.
var besselScale = [maxBesselOrder + 1]float64{
	0, 1.0, 1.36165412871613, 1.75567236868121, 2.11391767490422, 2.42741070215263,
	2.70339506120292, 2.95172214703872, 3.17961723751065, 3.39169313891166, 3.59098059456916,
}

// prodNeg returns the product of -v[i], or 1 for an empty slice.
func prodNeg(v []complex128) complex128 {
	out := complex(1, 0)
	for _, x := range v {
		out *= -x
	}
	return out
}
