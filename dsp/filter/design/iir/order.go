package iir

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// inferBand classifies normalized passband and stopband edges the way
// iirdesign does.
func inferBand(wp, ws []float64) (Band, error) {
	if len(wp) != len(ws) || (len(wp) != 1 && len(wp) != 2) {
		return 0, fmt.Errorf("%w: passband and stopband need 1 or 2 edges each, got %d and %d",
			cascade.ErrConfig, len(wp), len(ws))
	}
	for _, w := range append(append([]float64(nil), wp...), ws...) {
		if !(w > 0 && w < 1) {
			return 0, fmt.Errorf("%w: normalized edge %g outside (0, 1)", cascade.ErrConfig, w)
		}
	}
	if len(wp) == 1 {
		if wp[0] == ws[0] {
			return 0, fmt.Errorf("%w: passband and stopband edges coincide", cascade.ErrConfig)
		}
		if wp[0] < ws[0] {
			return Lowpass, nil
		}
		return Highpass, nil
	}
	if wp[0] >= wp[1] || ws[0] >= ws[1] {
		return 0, fmt.Errorf("%w: band edges must be increasing", cascade.ErrConfig)
	}
	switch {
	case ws[0] < wp[0] && wp[1] < ws[1]:
		return Bandpass, nil
	case wp[0] < ws[0] && ws[1] < wp[1]:
		return Bandstop, nil
	}
	return 0, fmt.Errorf("%w: passband %v and stopband %v do not nest", cascade.ErrConfig, wp, ws)
}

// selectivity returns the prewarped band edges and the normalized
// stopband-to-passband frequency ratio of the equivalent lowpass.
func selectivity(band Band, wp, ws []float64) (passb, stopb []float64, nat float64) {
	passb = make([]float64, len(wp))
	stopb = make([]float64, len(ws))
	for i := range wp {
		passb[i] = math.Tan(math.Pi * wp[i] / 2)
		stopb[i] = math.Tan(math.Pi * ws[i] / 2)
	}
	switch band {
	case Lowpass:
		nat = stopb[0] / passb[0]
	case Highpass:
		nat = passb[0] / stopb[0]
	case Bandstop:
		nat = math.Inf(1)
		for _, s := range stopb {
			v := s * (passb[0] - passb[1]) / (s*s - passb[0]*passb[1])
			nat = math.Min(nat, math.Abs(v))
		}
	case Bandpass:
		nat = math.Inf(1)
		for _, s := range stopb {
			v := (s*s - passb[0]*passb[1]) / (s * (passb[0] - passb[1]))
			nat = math.Min(nat, math.Abs(v))
		}
	}
	return passb, stopb, nat
}

func checkLoss(gpass, gstop float64) error {
	if !(gpass > 0) || !(gstop > gpass) {
		return fmt.Errorf("%w: need 0 < gpass < gstop, got %g and %g dB", cascade.ErrConfig, gpass, gstop)
	}
	return nil
}

// OrderEstimate is the minimal order and natural frequency returned by the
// order estimators.
type OrderEstimate struct {
	Order int
	// Wn holds the normalized critical frequencies to design with, one or
	// two values on the 0..1 Nyquist scale.
	Wn []float64
}

// ButtOrd returns the lowest Butterworth order meeting the tolerance scheme
// and its -3 dB frequencies.
func ButtOrd(wp, ws []float64, gpass, gstop float64) (OrderEstimate, error) {
	band, err := inferBand(wp, ws)
	if err != nil {
		return OrderEstimate{}, err
	}
	if err := checkLoss(gpass, gstop); err != nil {
		return OrderEstimate{}, err
	}
	passb, _, nat := selectivity(band, wp, ws)
	gs := math.Pow(10, 0.1*math.Abs(gstop))
	gp := math.Pow(10, 0.1*math.Abs(gpass))
	n := int(math.Ceil(math.Log10((gs-1)/(gp-1)) / (2 * math.Log10(nat))))
	n = max(n, 1)

	w0 := math.Pow(gp-1, -1/(2*float64(n)))
	var wn []float64
	switch band {
	case Lowpass:
		wn = []float64{w0 * passb[0]}
	case Highpass:
		wn = []float64{passb[0] / w0}
	case Bandstop:
		d := passb[1] - passb[0]
		discr := math.Sqrt(d*d + 4*w0*w0*passb[0]*passb[1])
		wn = sortedAbs((d+discr)/(2*w0), (d-discr)/(2*w0))
	case Bandpass:
		d := passb[1] - passb[0]
		root := func(w float64) float64 {
			return -w*d/2 + math.Sqrt(w*w/4*d*d+passb[0]*passb[1])
		}
		wn = sortedAbs(root(-w0), root(w0))
	}
	return OrderEstimate{Order: n, Wn: unwarp(wn)}, nil
}

// Cheb1Ord returns the lowest Chebyshev type I order meeting the
// specification. The critical frequencies are the passband edges.
func Cheb1Ord(wp, ws []float64, gpass, gstop float64) (OrderEstimate, error) {
	band, err := inferBand(wp, ws)
	if err != nil {
		return OrderEstimate{}, err
	}
	if err := checkLoss(gpass, gstop); err != nil {
		return OrderEstimate{}, err
	}
	_, _, nat := selectivity(band, wp, ws)
	return OrderEstimate{Order: chebOrder(nat, gpass, gstop), Wn: append([]float64(nil), wp...)}, nil
}

// Cheb2Ord returns the lowest Chebyshev type II order meeting the
// specification and the stopband frequencies to design with.
func Cheb2Ord(wp, ws []float64, gpass, gstop float64) (OrderEstimate, error) {
	band, err := inferBand(wp, ws)
	if err != nil {
		return OrderEstimate{}, err
	}
	if err := checkLoss(gpass, gstop); err != nil {
		return OrderEstimate{}, err
	}
	passb, _, nat := selectivity(band, wp, ws)
	n := chebOrder(nat, gpass, gstop)

	gs := math.Pow(10, 0.1*math.Abs(gstop))
	gp := math.Pow(10, 0.1*math.Abs(gpass))
	f := 1 / math.Cosh(math.Acosh(math.Sqrt((gs-1)/(gp-1)))/float64(n))

	var wn []float64
	switch band {
	case Lowpass:
		wn = []float64{passb[0] / f}
	case Highpass:
		wn = []float64{passb[0] * f}
	case Bandstop:
		d := passb[0] - passb[1]
		w0 := f/2*d + math.Sqrt(f*f*d*d/4+passb[1]*passb[0])
		wn = []float64{w0, passb[1] * passb[0] / w0}
	case Bandpass:
		d := passb[0] - passb[1]
		w0 := d/(2*f) + math.Sqrt(d*d/(4*f*f)+passb[1]*passb[0])
		wn = []float64{w0, passb[0] * passb[1] / w0}
	}
	return OrderEstimate{Order: n, Wn: unwarp(wn)}, nil
}

// EllipOrd returns the lowest elliptic order meeting the tolerance scheme. The
// critical frequencies are the passband edges.
func EllipOrd(wp, ws []float64, gpass, gstop float64) (OrderEstimate, error) {
	band, err := inferBand(wp, ws)
	if err != nil {
		return OrderEstimate{}, err
	}
	if err := checkLoss(gpass, gstop); err != nil {
		return OrderEstimate{}, err
	}
	_, _, nat := selectivity(band, wp, ws)
	gs := math.Pow(10, 0.1*gstop)
	gp := math.Pow(10, 0.1*gpass)
	arg1Sq := (gp - 1) / (gs - 1)
	arg0Sq := 1 / (nat * nat)
	n := int(math.Ceil(ellipk(arg0Sq) * ellipkm1(arg1Sq) / (ellipkm1(arg0Sq) * ellipk(arg1Sq))))
	return OrderEstimate{Order: max(n, 1), Wn: append([]float64(nil), wp...)}, nil
}

func chebOrder(nat, gpass, gstop float64) int {
	gs := math.Pow(10, 0.1*math.Abs(gstop))
	gp := math.Pow(10, 0.1*math.Abs(gpass))
	n := int(math.Ceil(math.Acosh(math.Sqrt((gs-1)/(gp-1))) / math.Acosh(nat)))
	return max(n, 1)
}

func sortedAbs(a, b float64) []float64 {
	a, b = math.Abs(a), math.Abs(b)
	if a > b {
		a, b = b, a
	}
	return []float64{a, b}
}

// unwarp maps prewarped analog frequencies back to the 0..1 Nyquist scale.
func unwarp(w []float64) []float64 {
	out := make([]float64, len(w))
	for i, x := range w {
		out[i] = 2 / math.Pi * math.Atan(x)
	}
	return out
}
