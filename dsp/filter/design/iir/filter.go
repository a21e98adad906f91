package iir

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// Params describes an explicit-order design on the 0..1 Nyquist scale.
type Params struct {
	Order int
	// Wn holds one critical frequency for lowpass and highpass, two for
	// bandpass and bandstop.
	Wn   []float64
	Band Band
	Type Type
	// Ripple is the passband ripple in dB (Cheby1, Ellip).
	Ripple float64
	// Attenuation is the minimum stopband attenuation in dB (Cheby2, Ellip).
	Attenuation float64
}

// Sections designs the digital filter described by p as order-2 sections.
func Sections(p Params) ([]cascade.Section, error) {
	if p.Order <= 0 {
		return nil, fmt.Errorf("%w: order must be > 0: %d", cascade.ErrConfig, p.Order)
	}
	if len(p.Wn) != p.Band.Edges() {
		return nil, fmt.Errorf("%w: %v needs %d critical frequencies, got %d",
			cascade.ErrConfig, p.Band, p.Band.Edges(), len(p.Wn))
	}
	for _, w := range p.Wn {
		if !(w > 0 && w < 1) {
			return nil, fmt.Errorf("%w: critical frequency %g outside (0, 1)", cascade.ErrConfig, w)
		}
	}
	if len(p.Wn) == 2 && p.Wn[0] >= p.Wn[1] {
		return nil, fmt.Errorf("%w: critical frequencies must be increasing: %v", cascade.ErrConfig, p.Wn)
	}

	proto, err := prototype(p)
	if err != nil {
		return nil, err
	}

	// Prewarp for the bilinear transform at fs = 2.
	const fs = 2.0
	warped := make([]float64, len(p.Wn))
	for i, w := range p.Wn {
		warped[i] = 2 * fs * math.Tan(math.Pi*w/fs)
	}

	var analog zpk
	switch p.Band {
	case Lowpass:
		analog = lp2lp(proto, warped[0])
	case Highpass:
		analog = lp2hp(proto, warped[0])
	case Bandpass:
		analog = lp2bp(proto, math.Sqrt(warped[0]*warped[1]), warped[1]-warped[0])
	case Bandstop:
		analog = lp2bs(proto, math.Sqrt(warped[0]*warped[1]), warped[1]-warped[0])
	default:
		return nil, fmt.Errorf("%w: unknown band %v", cascade.ErrConfig, p.Band)
	}
	return sections(bilinear(analog, fs))
}

func prototype(p Params) (zpk, error) {
	switch p.Type {
	case Butter:
		return buttap(p.Order), nil
	case Cheby1:
		if !(p.Ripple > 0) {
			return zpk{}, fmt.Errorf("%w: cheby1 needs ripple > 0 dB", cascade.ErrConfig)
		}
		return cheb1ap(p.Order, p.Ripple), nil
	case Cheby2:
		if !(p.Attenuation > 0) {
			return zpk{}, fmt.Errorf("%w: cheby2 needs attenuation > 0 dB", cascade.ErrConfig)
		}
		return cheb2ap(p.Order, p.Attenuation), nil
	case Ellip:
		if !(p.Ripple > 0) || !(p.Attenuation > p.Ripple) {
			return zpk{}, fmt.Errorf("%w: ellip needs 0 < ripple < attenuation", cascade.ErrConfig)
		}
		return ellipap(p.Order, p.Ripple, p.Attenuation)
	case Bessel:
		return besselap(p.Order)
	}
	return zpk{}, fmt.Errorf("%w: unknown filter type %v", cascade.ErrConfig, p.Type)
}

// Auto designs the lowest-order filter of family t whose passband loss is at
// most gpass dB over wp and whose attenuation is at least gstop dB over ws.
// Edges are on the 0..1 Nyquist scale; the band shape follows from their
// arrangement. Bessel has no order rule and is rejected.
func Auto(wp, ws []float64, gpass, gstop float64, t Type) ([]cascade.Section, Params, error) {
	var (
		est OrderEstimate
		err error
	)
	switch t {
	case Butter:
		est, err = ButtOrd(wp, ws, gpass, gstop)
	case Cheby1:
		est, err = Cheb1Ord(wp, ws, gpass, gstop)
	case Cheby2:
		est, err = Cheb2Ord(wp, ws, gpass, gstop)
	case Ellip:
		est, err = EllipOrd(wp, ws, gpass, gstop)
	default:
		return nil, Params{}, fmt.Errorf("%w: no order rule for %v", cascade.ErrConfig, t)
	}
	if err != nil {
		return nil, Params{}, err
	}
	band, _ := inferBand(wp, ws)
	p := Params{
		Order:       est.Order,
		Wn:          est.Wn,
		Band:        band,
		Type:        t,
		Ripple:      gpass,
		Attenuation: gstop,
	}
	secs, err := Sections(p)
	return secs, p, err
}
