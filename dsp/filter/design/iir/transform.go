package iir

import (
	"math"
	"math/cmplx"
)

// lp2lp moves the prototype cutoff to wo rad/s.
func lp2lp(f zpk, wo float64) zpk {
	w := complex(wo, 0)
	out := zpk{z: scaled(f.z, w), p: scaled(f.p, w)}
	out.k = f.k * math.Pow(wo, float64(f.degree()))
	return out
}

// lp2hp turns a lowpass prototype into a highpass with cutoff wo.
func lp2hp(f zpk, wo float64) zpk {
	w := complex(wo, 0)
	out := zpk{
		z: make([]complex128, 0, len(f.p)),
		p: make([]complex128, len(f.p)),
	}
	for _, z := range f.z {
		out.z = append(out.z, w/z)
	}
	for i, p := range f.p {
		out.p[i] = w / p
	}
	for range f.degree() {
		out.z = append(out.z, 0)
	}
	out.k = f.k * real(prodNeg(f.z)/prodNeg(f.p))
	return out
}

// lp2bp turns a lowpass prototype into a bandpass centred on wo with
// bandwidth bw.
func lp2bp(f zpk, wo, bw float64) zpk {
	half := complex(bw/2, 0)
	out := zpk{
		z: splitBand(scaled(f.z, half), wo),
		p: splitBand(scaled(f.p, half), wo),
	}
	for range f.degree() {
		out.z = append(out.z, 0)
	}
	out.k = f.k * math.Pow(bw, float64(f.degree()))
	return out
}

// lp2bs turns a lowpass prototype into a bandstop centred on wo with
// bandwidth bw.
func lp2bs(f zpk, wo, bw float64) zpk {
	half := complex(bw/2, 0)
	zh := make([]complex128, len(f.z))
	for i, z := range f.z {
		zh[i] = half / z
	}
	ph := make([]complex128, len(f.p))
	for i, p := range f.p {
		ph[i] = half / p
	}
	out := zpk{z: splitBand(zh, wo), p: splitBand(ph, wo)}
	for range f.degree() {
		out.z = append(out.z, complex(0, wo))
	}
	for range f.degree() {
		out.z = append(out.z, complex(0, -wo))
	}
	out.k = f.k * real(prodNeg(f.z)/prodNeg(f.p))
	return out
}

// splitBand maps every root r to r ± sqrt(r^2 - wo^2), all plus roots first.
func splitBand(r []complex128, wo float64) []complex128 {
	w2 := complex(wo*wo, 0)
	out := make([]complex128, 2*len(r))
	for i, x := range r {
		d := cmplx.Sqrt(x*x - w2)
		out[i] = x + d
		out[len(r)+i] = x - d
	}
	return out
}

// bilinear maps an analog filter to the z-plane for sample rate fs. Zeros
// at infinity land on z = -1.
func bilinear(f zpk, fs float64) zpk {
	fs2 := complex(2*fs, 0)
	out := zpk{
		z: make([]complex128, 0, len(f.p)),
		p: make([]complex128, len(f.p)),
	}
	num, den := complex(1, 0), complex(1, 0)
	for _, z := range f.z {
		out.z = append(out.z, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	for i, p := range f.p {
		out.p[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	for range f.degree() {
		out.z = append(out.z, -1)
	}
	out.k = f.k * real(num/den)
	return out
}

func scaled(v []complex128, s complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}
