package iir

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// Type selects the filter family.
type Type int

const (
	Butter Type = iota
	Cheby1
	Cheby2
	Ellip
	Bessel
)

var typeNames = [...]string{
	Butter: "butter",
	Cheby1: "cheby1",
	Cheby2: "cheby2",
	Ellip:  "ellip",
	Bessel: "bessel",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType maps a family tag such as "ellip" to its Type.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(s, n) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown filter type %q", cascade.ErrConfig, s)
}

// Band is the response shape.
type Band int

const (
	Lowpass Band = iota
	Highpass
	Bandpass
	Bandstop
)

var bandNames = [...]string{
	Lowpass:  "lowpass",
	Highpass: "highpass",
	Bandpass: "bandpass",
	Bandstop: "bandstop",
}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bandNames[b]
}

// Edges returns how many cutoff frequencies the band needs.
func (b Band) Edges() int {
	if b == Bandpass || b == Bandstop {
		return 2
	}
	return 1
}

// ParseBand maps "lowpass", "low", "highpass", "high", "bandpass" or
// "bandstop" to a Band.
func ParseBand(s string) (Band, error) {
	switch strings.ToLower(s) {
	case "lowpass", "low", "lp":
		return Lowpass, nil
	case "highpass", "high", "hp":
		return Highpass, nil
	case "bandpass", "band", "bp":
		return Bandpass, nil
	case "bandstop", "stop", "bs":
		return Bandstop, nil
	}
	return 0, fmt.Errorf("%w: unknown band type %q", cascade.ErrConfig, s)
}
