package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireRelNear fails t if got differs from want by more than rel relative
// to |want|. A zero want falls back to an absolute comparison against rel.
func RequireRelNear(t *testing.T, name string, got, want, rel float64) {
	t.Helper()
	if !RelNear(got, want, rel) {
		t.Fatalf("%s: got %.12g, want %.12g (rel tol %g)", name, got, want, rel)
	}
}

// RelNear reports whether a and b agree within rel relative tolerance.
func RelNear(a, b, rel float64) bool {
	d := math.Abs(a - b)
	if b == 0 {
		return d <= rel
	}
	return d <= rel*math.Abs(b)
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireAllZero fails t if any element is non-zero.
func RequireAllZero(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// MaxAbs returns max |x| over data, or 0 for an empty slice.
func MaxAbs(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
