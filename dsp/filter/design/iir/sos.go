package iir

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/internal/polyroot"
)

const (
	rootImagTol = 1e-9
	// pairTol is the relative tolerance for matching a root with its
	// conjugate after the band transform.
	pairTol = 1e-4
)

// sections converts a digital zpk filter into order-2 sections. Conjugate
// pole pairs are grouped, matched with zero groups, and the gain is applied
// to the first section. A lone real pole yields a section with b2 = a2 = 0.
func sections(f zpk) ([]cascade.Section, error) {
	if len(f.p) == 0 {
		return nil, fmt.Errorf("%w: filter has no poles", cascade.ErrDegenerate)
	}
	if f.k == 0 || math.IsNaN(f.k) || math.IsInf(f.k, 0) {
		return nil, fmt.Errorf("%w: filter gain %v", cascade.ErrDegenerate, f.k)
	}

	pGroups := groupRoots(f.p)
	zGroups := groupRoots(f.z)

	sort.SliceStable(pGroups, func(i, j int) bool {
		if len(pGroups[i]) != len(pGroups[j]) {
			return len(pGroups[i]) > len(pGroups[j])
		}
		return maxImag(pGroups[i]) > maxImag(pGroups[j])
	})

	var zPairs, zSingles [][]complex128
	for _, g := range zGroups {
		if len(g) == 2 {
			zPairs = append(zPairs, g)
		} else {
			zSingles = append(zSingles, g)
		}
	}
	take := func(first, second *[][]complex128) []complex128 {
		for _, q := range []*[][]complex128{first, second} {
			if len(*q) > 0 {
				g := (*q)[0]
				*q = (*q)[1:]
				return g
			}
		}
		return nil
	}

	out := make([]cascade.Section, 0, len(pGroups))
	for _, pg := range pGroups {
		var zg []complex128
		if len(pg) == 2 {
			zg = take(&zPairs, &zSingles)
		} else {
			zg = take(&zSingles, &zPairs)
		}
		b1, b2 := quadFromGroup(zg)
		a1, a2 := quadFromGroup(pg)
		out = append(out, cascade.Section{
			B: []float64{1, b1, b2},
			A: []float64{1, a1, a2},
		})
	}
	for i := range out[0].B {
		out[0].B[i] *= f.k
	}
	return out, nil
}

// groupRoots pairs complex roots with their conjugates and real roots with
// each other, in ascending order of real part.
func groupRoots(roots []complex128) [][]complex128 {
	if len(roots) == 0 {
		return nil
	}
	sorted := append([]complex128(nil), roots...)
	sort.Slice(sorted, func(i, j int) bool {
		if imag(sorted[i]) != imag(sorted[j]) {
			return imag(sorted[i]) > imag(sorted[j])
		}
		return real(sorted[i]) < real(sorted[j])
	})

	used := make([]bool, len(sorted))
	var groups [][]complex128
	var reals []complex128
	for i, r := range sorted {
		if used[i] {
			continue
		}
		used[i] = true
		if math.Abs(imag(r)) <= rootImagTol {
			reals = append(reals, complex(real(r), 0))
			continue
		}
		target := cmplx.Conj(r)
		best, bestDist := -1, math.MaxFloat64
		for j, rr := range sorted {
			if used[j] {
				continue
			}
			if d := cmplx.Abs(rr - target); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best != -1 && polyroot.IsConjugate(r, sorted[best], pairTol) {
			used[best] = true
			groups = append(groups, []complex128{r, sorted[best]})
		} else {
			groups = append(groups, []complex128{r})
		}
	}

	sort.Slice(reals, func(i, j int) bool { return real(reals[i]) < real(reals[j]) })
	for i := 0; i+1 < len(reals); i += 2 {
		groups = append(groups, []complex128{reals[i], reals[i+1]})
	}
	if len(reals)%2 == 1 {
		groups = append(groups, []complex128{reals[len(reals)-1]})
	}
	return groups
}

func maxImag(g []complex128) float64 {
	m := 0.0
	for _, r := range g {
		m = math.Max(m, math.Abs(imag(r)))
	}
	return m
}

// quadFromGroup returns (c1, c2) of 1 + c1 z^-1 + c2 z^-2 with the given
// roots. Missing roots sit at the origin.
func quadFromGroup(g []complex128) (float64, float64) {
	switch len(g) {
	case 0:
		return 0, 0
	case 1:
		return -real(g[0]), 0
	default:
		return -real(g[0] + g[1]), real(g[0] * g[1])
	}
}
