// Package erb implements the equivalent rectangular bandwidth scale used to
// size auditory filters.
package erb

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Scale parameterizes ERB(cf) = ((cf/EarQ)^Order + MinBW^Order)^(1/Order).
// The zero value stands for [GlasbergMoore].
type Scale struct {
	EarQ  float64
	MinBW float64
	Order float64
}

// GlasbergMoore is the Glasberg and Moore (1990) scale.
var GlasbergMoore = Scale{EarQ: 9.26449, MinBW: 24.7, Order: 1}

// Resolve returns s, or GlasbergMoore when s is the zero value.
func (s Scale) Resolve() Scale {
	if s == (Scale{}) {
		return GlasbergMoore
	}
	return s
}

// Validate reports whether the scale parameters are usable.
func (s Scale) Validate() error {
	s = s.Resolve()
	if !(s.EarQ > 0) || !(s.MinBW > 0) || !(s.Order > 0) {
		return fmt.Errorf("erb: scale parameters must be > 0: %+v", s)
	}
	return nil
}

// ERB returns the equivalent rectangular bandwidth in Hz at cfHz.
func (s Scale) ERB(cfHz float64) float64 {
	s = s.Resolve()
	if s.Order == 1 {
		return cfHz/s.EarQ + s.MinBW
	}
	return math.Pow(math.Pow(cfHz/s.EarQ, s.Order)+math.Pow(s.MinBW, s.Order), 1/s.Order)
}

// ERBs applies ERB to every center frequency.
func (s Scale) ERBs(cfHz []float64) []float64 {
	out := make([]float64, len(cfHz))
	for i, cf := range cfHz {
		out[i] = s.ERB(cf)
	}
	return out
}

// Space returns n center frequencies uniformly spaced on the ERB-rate scale
// of s, from just below high down to low. low itself is the last element.
func (s Scale) Space(low, high unit.Quantity, n int) ([]unit.Quantity, error) {
	lo, err := low.Hz()
	if err != nil {
		return nil, fmt.Errorf("erb: low: %w", err)
	}
	hi, err := high.Hz()
	if err != nil {
		return nil, fmt.Errorf("erb: high: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("erb: count must be > 0: %d", n)
	}
	if !(lo > 0) || !(hi > lo) {
		return nil, fmt.Errorf("erb: need 0 < low < high, got %g and %g Hz", lo, hi)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.Resolve()
	off := s.EarQ * s.MinBW
	// n+1 log-spaced points from hi+off to lo+off; the first is dropped.
	grid := floats.LogSpan(make([]float64, n+1), hi+off, lo+off)
	out := make([]unit.Quantity, n)
	for i := range out {
		out[i] = unit.Hz(grid[i+1] - off)
	}
	out[n-1] = unit.Hz(lo)
	return out, nil
}

// Space is [Scale.Space] on the Glasberg and Moore scale.
func Space(low, high unit.Quantity, n int) ([]unit.Quantity, error) {
	return GlasbergMoore.Space(low, high, n)
}
