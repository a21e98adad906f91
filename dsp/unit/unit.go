// Package unit tags numeric parameters with a physical dimension.
//
// Filter designers accept frequencies and durations as [Quantity] values and
// convert them with [Quantity.Hz] or [Quantity.Seconds]. Passing a duration
// where a frequency is expected fails with [ErrDimension] before any
// coefficient is computed.
package unit

import (
	"errors"
	"fmt"
)

// ErrDimension is returned when a quantity has the wrong physical dimension.
var ErrDimension = errors.New("unit: dimension mismatch")

// Dimension identifies the physical dimension of a [Quantity].
type Dimension uint8

const (
	Dimensionless Dimension = iota
	Frequency
	Time
)

// String returns the SI unit symbol of the dimension.
func (d Dimension) String() string {
	switch d {
	case Frequency:
		return "Hz"
	case Time:
		return "s"
	default:
		return "1"
	}
}

// Quantity is a value with a physical dimension, stored in SI base units.
type Quantity struct {
	value float64
	dim   Dimension
}

// Hz returns a frequency quantity.
func Hz(v float64) Quantity { return Quantity{value: v, dim: Frequency} }

// KHz returns a frequency quantity given in kilohertz.
func KHz(v float64) Quantity { return Quantity{value: v * 1e3, dim: Frequency} }

// Second returns a time quantity.
func Second(v float64) Quantity { return Quantity{value: v, dim: Time} }

// Millisecond returns a time quantity given in milliseconds.
func Millisecond(v float64) Quantity { return Quantity{value: v * 1e-3, dim: Time} }

// Scalar returns a dimensionless quantity.
func Scalar(v float64) Quantity { return Quantity{value: v, dim: Dimensionless} }

// Dim returns the dimension of q.
func (q Quantity) Dim() Dimension { return q.dim }

// In returns the value of q in SI base units, or ErrDimension if q does not
// have dimension d.
func (q Quantity) In(d Dimension) (float64, error) {
	if q.dim != d {
		return 0, fmt.Errorf("%w: got %v, want %s", ErrDimension, q, d)
	}
	return q.value, nil
}

// Hz returns the frequency value of q in hertz.
func (q Quantity) Hz() (float64, error) { return q.In(Frequency) }

// Seconds returns the time value of q in seconds.
func (q Quantity) Seconds() (float64, error) { return q.In(Time) }

// String formats q with its unit symbol.
func (q Quantity) String() string {
	if q.dim == Dimensionless {
		return fmt.Sprintf("%g", q.value)
	}
	return fmt.Sprintf("%g %s", q.value, q.dim)
}

// Hertz builds a slice of frequency quantities.
func Hertz(vs ...float64) []Quantity {
	out := make([]Quantity, len(vs))
	for i, v := range vs {
		out[i] = Hz(v)
	}
	return out
}

// Seconds builds a slice of time quantities.
func Seconds(vs ...float64) []Quantity {
	out := make([]Quantity, len(vs))
	for i, v := range vs {
		out[i] = Second(v)
	}
	return out
}

// ToHz converts a slice of frequency quantities to hertz. The index of the
// first offending element is reported on error.
func ToHz(qs []Quantity) ([]float64, error) {
	return to(qs, Frequency)
}

// ToSeconds converts a slice of time quantities to seconds.
func ToSeconds(qs []Quantity) ([]float64, error) {
	return to(qs, Time)
}

func to(qs []Quantity, d Dimension) ([]float64, error) {
	out := make([]float64, len(qs))
	for i, q := range qs {
		v, err := q.In(d)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
