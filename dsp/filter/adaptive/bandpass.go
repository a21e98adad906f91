package adaptive

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// OctaveBandwidth returns the bandwidth in octaves of a bandpass with
// quality factor q.
func OctaveBandwidth(q float64) float64 {
	return 2 * math.Asinh(1/(2*q)) * math.Log2E
}

// section returns the constant-skirt-gain bandpass centered at fc with an
// octave bandwidth of bw, normalized to a[0] == 1.
func section(fc, fs, bw float64) cascade.Section {
	w0 := 2 * math.Pi * fc / fs
	sn, cs := math.Sincos(w0)
	alpha := sn * math.Sinh(math.Ln2/2*bw*w0/sn)
	a0 := 1 + alpha
	return cascade.Section{
		B: []float64{sn / 2 / a0, 0, -sn / 2 / a0},
		A: []float64{1, -2 * cs / a0, (1 - alpha) / a0},
	}
}

// Bandpass is the static form of the adaptive filterbank: one
// constant-skirt-gain bandpass per channel at a fixed center frequency.
type Bandpass struct {
	CF []unit.Quantity
	// Coeff is 1/Q, shared by all channels.
	Coeff float64
}

// Kind returns cascade.AdaptiveBandpass.
func (Bandpass) Kind() cascade.Kind { return cascade.AdaptiveBandpass }

// Design returns one order-2 stage.
func (b Bandpass) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	cf, err := unit.ToHz(b.CF)
	if err != nil {
		return nil, fmt.Errorf("center frequencies: %w", err)
	}
	if len(cf) == 0 {
		return nil, fmt.Errorf("%w: no center frequencies", cascade.ErrConfig)
	}
	if !(b.Coeff > 0) || math.IsInf(b.Coeff, 0) {
		return nil, fmt.Errorf("%w: coefficient must be > 0: %g", cascade.ErrConfig, b.Coeff)
	}
	bw := OctaveBandwidth(1 / b.Coeff)
	per := make([][]cascade.Section, len(cf))
	for i, f := range cf {
		if !(f > 0 && f < fs/2) {
			return nil, fmt.Errorf("%w: channel %d center frequency %g Hz outside (0, %g)", cascade.ErrConfig, i, f, fs/2)
		}
		per[i] = []cascade.Section{section(f, fs, bw)}
	}
	return cascade.FromSections(cascade.AdaptiveBandpass, fs, per)
}
