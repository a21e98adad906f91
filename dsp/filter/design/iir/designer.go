package iir

import (
	"fmt"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Spec is a filterbank of identical channels designed from a tolerance
// scheme: at most GPass dB loss over Passband, at least GStop dB attenuation
// over Stopband. One edge each gives a lowpass or highpass, two edges a
// bandpass or bandstop; which one follows from how the bands nest.
type Spec struct {
	Channels int
	Passband []unit.Quantity
	Stopband []unit.Quantity
	GPass    float64
	GStop    float64
	Type     Type
}

// Kind returns cascade.GenericIIR.
func (Spec) Kind() cascade.Kind { return cascade.GenericIIR }

// Design returns the minimal-order design replicated across all channels.
func (s Spec) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if s.Channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0: %d", cascade.ErrConfig, s.Channels)
	}
	wp, err := normalize(s.Passband, fs)
	if err != nil {
		return nil, fmt.Errorf("passband: %w", err)
	}
	ws, err := normalize(s.Stopband, fs)
	if err != nil {
		return nil, fmt.Errorf("stopband: %w", err)
	}
	secs, _, err := Auto(wp, ws, s.GPass, s.GStop, s.Type)
	if err != nil {
		return nil, err
	}
	return cascade.Uniform(cascade.GenericIIR, fs, s.Channels, secs...)
}

// Filter is a filterbank of identical channels with an explicit order.
type Filter struct {
	Channels    int
	Order       int
	Cutoff      []unit.Quantity
	Band        Band
	Type        Type
	Ripple      float64
	Attenuation float64
}

// Kind returns cascade.GenericIIR.
func (Filter) Kind() cascade.Kind { return cascade.GenericIIR }

// Design returns the filter replicated across all channels.
func (f Filter) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if f.Channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0: %d", cascade.ErrConfig, f.Channels)
	}
	wn, err := normalize(f.Cutoff, fs)
	if err != nil {
		return nil, fmt.Errorf("cutoff: %w", err)
	}
	secs, err := Sections(Params{
		Order:       f.Order,
		Wn:          wn,
		Band:        f.Band,
		Type:        f.Type,
		Ripple:      f.Ripple,
		Attenuation: f.Attenuation,
	})
	if err != nil {
		return nil, err
	}
	return cascade.Uniform(cascade.GenericIIR, fs, f.Channels, secs...)
}

// Butterworth is a Butterworth filterbank. Cutoff holds either one design
// shared by every channel (one frequency, or one pair for band types) or one
// design per channel (Channels frequencies, or Channels consecutive pairs).
type Butterworth struct {
	Channels int
	Order    int
	Cutoff   []unit.Quantity
	Band     Band
}

// Kind returns cascade.Butterworth.
func (Butterworth) Kind() cascade.Kind { return cascade.Butterworth }

// Design returns ceil(Order/2) order-2 stages per channel.
func (b Butterworth) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if b.Channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0: %d", cascade.ErrConfig, b.Channels)
	}
	wn, err := normalize(b.Cutoff, fs)
	if err != nil {
		return nil, fmt.Errorf("cutoff: %w", err)
	}
	edges := b.Band.Edges()
	params := Params{Order: b.Order, Band: b.Band, Type: Butter}

	switch len(wn) {
	case edges:
		params.Wn = wn
		secs, err := Sections(params)
		if err != nil {
			return nil, err
		}
		return cascade.Uniform(cascade.Butterworth, fs, b.Channels, secs...)
	case edges * b.Channels:
		per := make([][]cascade.Section, b.Channels)
		for ch := range per {
			params.Wn = wn[ch*edges : (ch+1)*edges]
			if per[ch], err = Sections(params); err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch, err)
			}
		}
		return cascade.FromSections(cascade.Butterworth, fs, per)
	}
	return nil, fmt.Errorf("%w: %v needs %d or %d cutoffs for %d channels, got %d",
		cascade.ErrConfig, b.Band, edges, edges*b.Channels, b.Channels, len(wn))
}

// normalize converts frequencies to the 0..1 Nyquist scale.
func normalize(qs []unit.Quantity, fs float64) ([]float64, error) {
	hz, err := unit.ToHz(qs)
	if err != nil {
		return nil, err
	}
	for i := range hz {
		hz[i] /= fs / 2
	}
	return hz, nil
}
