package gammachirp

import (
	"errors"
	"fmt"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/gammatone"
	"github.com/cwbudde/algo-hears/dsp/unit"
	"github.com/cwbudde/algo-hears/internal/testutil"
)

func TestIIR_Shape(t *testing.T) {
	tt, err := IIR{CF: unit.Hertz(500, 1000, 4000), C: []float64{-1, 0, 2}}.Design(unit.Hz(44100))
	if err != nil {
		t.Fatal(err)
	}
	if err := tt.Validate(); err != nil {
		t.Fatal(err)
	}
	if tt.Kind != cascade.GammachirpIIR || tt.NumStages() != 8 || tt.TotalOrder() != 16 {
		t.Fatalf("kind=%v stages=%d order=%d", tt.Kind, tt.NumStages(), tt.TotalOrder())
	}
	r, err := tt.MaxPoleRadius()
	if err != nil {
		t.Fatal(err)
	}
	if r >= 1 {
		t.Fatalf("unstable: max pole radius %v", r)
	}
}

func TestIIR_StartsWithGammatone(t *testing.T) {
	cf := unit.Hertz(1200)
	fs := unit.Hz(22050)
	gc, _ := IIR{CF: cf}.Design(fs)
	gt, _ := gammatone.Exact{CF: cf}.Design(fs)
	for i := range gt.Stages {
		testutil.RequireSliceNearlyEqual(t, gc.Stages[i].B[0], gt.Stages[i].B[0], 0)
		testutil.RequireSliceNearlyEqual(t, gc.Stages[i].A[0], gt.Stages[i].A[0], 0)
	}
}

func TestCompensation_UnityAtNormalizationFrequency(t *testing.T) {
	fs := 44100.0
	cfs := []float64{300, 1000, 5000}
	cs := []float64{-2, 1, 0.5}
	tt, err := Compensation{CF: unit.Hertz(cfs...), C: cs}.Design(unit.Hz(fs))
	if err != nil {
		t.Fatal(err)
	}
	for ch := range cfs {
		fn := NormalizationFrequency(cfs[ch], cs[ch], DefaultCompensationOrder)
		for k, s := range tt.Stages {
			g := cmplx.Abs(s.Section(ch).Response(fn, fs))
			testutil.RequireRelNear(t, fmt.Sprintf("channel %d stage %d", ch, k), g, 1, 1e-9)
		}
	}
}

func TestCompensation_ZeroChirpIsAllpassMagnitude(t *testing.T) {
	// With c = 0 the pole and zero quadratics coincide.
	tt, err := Compensation{CF: unit.Hertz(1000), C: []float64{0}}.Design(unit.Hz(16000))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []float64{100, 1000, 5000} {
		testutil.RequireRelNear(t, "flat", cmplx.Abs(tt.Response(0, f)), 1, 1e-12)
	}
}

func TestCompensation_DefaultsChirpToOne(t *testing.T) {
	a, _ := Compensation{CF: unit.Hertz(800)}.Design(unit.Hz(16000))
	b, _ := Compensation{CF: unit.Hertz(800), C: []float64{1}}.Design(unit.Hz(16000))
	for k := range a.Stages {
		testutil.RequireSliceNearlyEqual(t, a.Stages[k].B[0], b.Stages[k].B[0], 0)
	}
}

func TestAssembler_GammatonePlusCompensation(t *testing.T) {
	fs := unit.Hz(44100)
	cf := unit.Hertz(800, 1600)
	gt, _ := gammatone.Exact{CF: cf}.Design(fs)
	comp, _ := Compensation{CF: cf}.Design(fs)
	first, _ := gt.Sub(0, 1)
	one, _ := comp.Sub(0, 1)
	out, err := cascade.Concat(first, one)
	if err != nil {
		t.Fatal(err)
	}
	if out.Channels != 2 || out.NumStages() != 2 || out.TotalOrder() != 4 {
		t.Fatalf("channels=%d stages=%d order=%d", out.Channels, out.NumStages(), out.TotalOrder())
	}
}

func TestIIR_Errors(t *testing.T) {
	fs := unit.Hz(44100)
	if _, err := (IIR{CF: unit.Hertz(1000), C: []float64{1, 2}}).Design(fs); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("chirp length: err=%v", err)
	}
	if _, err := (IIR{CF: unit.Seconds(1)}).Design(fs); !errors.Is(err, unit.ErrDimension) {
		t.Fatalf("dimension: err=%v", err)
	}
	if _, err := (Compensation{CF: unit.Hertz(1000), Order: -1}).Design(fs); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("order: err=%v", err)
	}
}

func TestFIR_TapsAndPeak(t *testing.T) {
	for _, fs := range []float64{16000, 44100, 48000} {
		g := FIR{
			F0:           unit.Hertz(4600, 2000),
			C:            []float64{345300, -100000},
			TimeConstant: []unit.Quantity{unit.Millisecond(0.3436), unit.Millisecond(0.5)},
		}
		tt, err := g.Design(unit.Hz(fs))
		if err != nil {
			t.Fatal(err)
		}
		if tt.NumStages() != 1 {
			t.Fatalf("stages=%d", tt.NumStages())
		}
		taps := Taps(fs)
		if tt.Stages[0].Order != taps-1 {
			t.Fatalf("fs=%g order=%d, want %d", fs, tt.Stages[0].Order, taps-1)
		}
		for ch := 0; ch < 2; ch++ {
			b := tt.Stages[0].B[ch]
			testutil.RequireFinite(t, b)
			testutil.RequireRelNear(t, "peak", floats.Max(b), 1.0/26, 1e-12)
			a := tt.Stages[0].A[ch]
			if a[0] != 1 || floats.Norm(a[1:], 1) != 0 {
				t.Fatalf("denominator not [1, 0, ...]: %v", a[:4])
			}
		}
	}
}

func TestFIR_TapCount(t *testing.T) {
	cases := map[float64]int{16000: 64, 44100: 177, 48000: 192}
	for fs, want := range cases {
		if got := Taps(fs); got != want {
			t.Errorf("Taps(%g)=%d, want %d", fs, got, want)
		}
	}
}

func TestFIR_Errors(t *testing.T) {
	fs := unit.Hz(44100)
	bad := []FIR{
		{},
		{F0: unit.Hertz(1000), C: []float64{0, 1}, TimeConstant: unit.Seconds(0.001)},
		{F0: unit.Hertz(1000), C: []float64{0}, TimeConstant: unit.Seconds(0)},
	}
	for i, g := range bad {
		if _, err := g.Design(fs); !errors.Is(err, cascade.ErrConfig) {
			t.Errorf("case %d: err=%v, want ErrConfig", i, err)
		}
	}
	g := FIR{F0: unit.Hertz(1000), C: []float64{0}, TimeConstant: unit.Hertz(1)}
	if _, err := g.Design(fs); !errors.Is(err, unit.ErrDimension) {
		t.Errorf("dimension: err=%v", err)
	}
}
