package cascade

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Errors returned by designers, the assembler and the runtime.
var (
	// ErrConfig reports inconsistent construction parameters: mismatched
	// lengths, non-positive orders, unknown type tags, shape mismatches.
	ErrConfig = errors.New("cascade: invalid configuration")

	// ErrDegenerate reports parameters that lead to unusable coefficients:
	// non-positive pole radius, zero normalization gain, non-finite values.
	ErrDegenerate = errors.New("cascade: numerically degenerate design")
)

// Kind tags the filter family a tensor was designed for.
type Kind int

const (
	ExactGammatone Kind = iota
	ParallelGammatone
	GammachirpIIR
	GammachirpFIR
	GenericIIR
	Butterworth
	AdaptiveBandpass
	Composite
)

var kindNames = [...]string{
	ExactGammatone:    "gammatone",
	ParallelGammatone: "parallel-gammatone",
	GammachirpIIR:     "gammachirp-iir",
	GammachirpFIR:     "gammachirp-fir",
	GenericIIR:        "iir",
	Butterworth:       "butterworth",
	AdaptiveBandpass:  "adaptive-bandpass",
	Composite:         "composite",
}

// String returns the short family name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Designer computes the coefficient tensor of one filter family. Design must
// not retain or mutate shared state; it may be called once per bank, or once
// per update for adaptive families.
type Designer interface {
	Kind() Kind
	Design(sampleRate unit.Quantity) (*Tensor, error)
}

// RateHz converts a designer sample rate to hertz and checks it is positive
// and finite.
func RateHz(sampleRate unit.Quantity) (float64, error) {
	fs, err := sampleRate.Hz()
	if err != nil {
		return 0, fmt.Errorf("sample rate: %w", err)
	}
	if !(fs > 0) || math.IsInf(fs, 0) {
		return 0, fmt.Errorf("%w: sample rate must be > 0: %g", ErrConfig, fs)
	}
	return fs, nil
}
