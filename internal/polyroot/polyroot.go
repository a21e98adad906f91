// Package polyroot provides polynomial root finding and conjugate matching
// shared by the cascade stability check and the IIR section builder.
package polyroot

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrDegeneratePolynomial is returned when a polynomial has degenerate
// coefficients (leading coefficient zero, convergence failure, etc.).
var ErrDegeneratePolynomial = errors.New("polyroot: degenerate polynomial")

// ZRoots returns the z-plane roots of a digital filter polynomial given in
// powers of z^-1, c[0] + c[1] z^-1 + ... + c[n] z^-n. Trailing zero
// coefficients contribute roots at the origin, which are dropped.
func ZRoots(c []float64) ([]complex128, error) {
	n := len(c)
	for n > 1 && c[n-1] == 0 {
		n--
	}
	switch n {
	case 0:
		return nil, ErrDegeneratePolynomial
	case 1:
		if c[0] == 0 {
			return nil, ErrDegeneratePolynomial
		}
		return nil, nil
	case 2:
		if c[0] == 0 {
			return nil, ErrDegeneratePolynomial
		}
		return []complex128{complex(-c[1]/c[0], 0)}, nil
	case 3:
		if c[0] == 0 {
			return nil, ErrDegeneratePolynomial
		}
		r := Quadratic(c[0], c[1], c[2])
		return r[:], nil
	}
	// Multiplying by z^(n-1) turns the z^-1 polynomial into a descending one.
	coeff := make([]complex128, n)
	for i := range coeff {
		coeff[i] = complex(c[i], 0)
	}
	return DurandKerner(coeff)
}

// Quadratic returns both roots of a z^2 + b z + c.
func Quadratic(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}
		return [2]complex128{complex(-c/b, 0), 0}
	}
	sq := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	den := complex(2*a, 0)
	return [2]complex128{
		(-complex(b, 0) + sq) / den,
		(-complex(b, 0) - sq) / den,
	}
}

// DurandKerner finds all roots of a polynomial using the Durand-Kerner
// (Weierstrass) simultaneous iteration method. Coefficients are in descending
// power order: coeff[0]*z^n + coeff[1]*z^(n-1) + ... + coeff[n].
//
//nolint:cyclop
func DurandKerner(coeff []complex128) ([]complex128, error) {
	if len(coeff) < 2 {
		return nil, ErrDegeneratePolynomial
	}

	lead := coeff[0]
	if lead == 0 {
		return nil, ErrDegeneratePolynomial
	}

	n := len(coeff) - 1

	norm := make([]complex128, len(coeff))
	for i := range coeff {
		norm[i] = coeff[i] / lead
	}

	radius := 0.0
	for i := 1; i <= n; i++ {
		if r := cmplx.Abs(norm[i]); r > radius {
			radius = r
		}
	}

	if radius < 1 {
		radius = 1
	}

	roots := make([]complex128, n)
	for i := range n {
		angle := 2*math.Pi*float64(i)/float64(n) + 0.3
		r := radius * (1 + 0.1*float64(i)/float64(n))
		roots[i] = complex(r*math.Cos(angle), r*math.Sin(angle))
	}

	const (
		maxIter = 500
		tol     = 1e-12
	)

	for range maxIter {
		maxDelta := 0.0

		for i := range n {
			den := complex(1, 0)

			for j := range n {
				if i == j {
					continue
				}

				den *= roots[i] - roots[j]
			}

			if cmplx.Abs(den) == 0 {
				roots[i] += complex(1e-10, 1e-10)
				continue
			}

			f := PolyEval(norm, roots[i])
			delta := f / den

			roots[i] -= delta
			if d := cmplx.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}

		if maxDelta < tol {
			return roots, nil
		}
	}

	maxResidual := 0.0
	for _, r := range roots {
		res := cmplx.Abs(PolyEval(norm, r))
		if res > maxResidual {
			maxResidual = res
		}
	}

	if maxResidual < 1e-6 {
		return roots, nil
	}

	return nil, ErrDegeneratePolynomial
}

// PolyEval evaluates a polynomial at x using Horner's method. Coefficients
// are in descending power order: coeff[0]*x^n + ... + coeff[n].
func PolyEval(coeff []complex128, x complex128) complex128 {
	v := coeff[0]
	for i := 1; i < len(coeff); i++ {
		v = v*x + coeff[i]
	}

	return v
}

// ConjugateTol is the relative tolerance for conjugate pair matching.
const ConjugateTol = 1e-7

// IsConjugate checks whether a and b are complex conjugates within tolerance.
func IsConjugate(a, b complex128, tol float64) bool {
	if math.Abs(real(a)-real(b)) > tol*math.Max(1, math.Abs(real(a))) {
		return false
	}

	if math.Abs(imag(a)+imag(b)) > tol*math.Max(1, math.Abs(imag(a))) {
		return false
	}

	return true
}
