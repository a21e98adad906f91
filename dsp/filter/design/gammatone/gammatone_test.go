package gammatone

import (
	"errors"
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/unit"
	"github.com/cwbudde/algo-hears/internal/testutil"
)

func TestExact_UnityGainAtCF(t *testing.T) {
	for _, fs := range []float64{16000, 44100, 96000} {
		cfs := []float64{100, 440, 1000, 3000, 0.4 * fs}
		tt, err := Exact{CF: unit.Hertz(cfs...)}.Design(unit.Hz(fs))
		if err != nil {
			t.Fatal(err)
		}
		for ch, cf := range cfs {
			g := cmplx.Abs(tt.Response(ch, cf))
			testutil.RequireRelNear(t, fmt.Sprintf("fs=%g cf=%g", fs, cf), g, 1, 1e-6)
		}
	}
}

func TestExact_Shape(t *testing.T) {
	tt, err := Exact{CF: unit.Hertz(500, 1000, 2000)}.Design(unit.Hz(44100))
	if err != nil {
		t.Fatal(err)
	}
	if err := tt.Validate(); err != nil {
		t.Fatal(err)
	}
	if tt.Kind != cascade.ExactGammatone || tt.NumStages() != 4 || tt.TotalOrder() != 8 || tt.Channels != 3 {
		t.Fatalf("kind=%v stages=%d order=%d channels=%d", tt.Kind, tt.NumStages(), tt.TotalOrder(), tt.Channels)
	}
	for i, s := range tt.Stages {
		for ch := range s.A {
			if s.A[ch][0] != 1 {
				t.Fatalf("stage %d channel %d a0=%v", i, ch, s.A[ch][0])
			}
			if s.B[ch][2] != 0 {
				t.Fatalf("stage %d channel %d b2=%v, want 0", i, ch, s.B[ch][2])
			}
		}
		// Only the first section is scaled by the gain.
		if i > 0 && s.B[0][0] != 1/44100.0 {
			t.Fatalf("stage %d b0=%v, want T", i, s.B[0][0])
		}
	}
	r, err := tt.MaxPoleRadius()
	if err != nil {
		t.Fatal(err)
	}
	if r >= 1 {
		t.Fatalf("unstable: max pole radius %v", r)
	}
}

func TestExact_Errors(t *testing.T) {
	cases := []struct {
		name string
		g    Exact
		fs   unit.Quantity
		want error
	}{
		{"no channels", Exact{}, unit.Hz(44100), cascade.ErrConfig},
		{"cf in seconds", Exact{CF: unit.Seconds(0.001)}, unit.Hz(44100), unit.ErrDimension},
		{"rate in seconds", Exact{CF: unit.Hertz(1000)}, unit.Second(1), unit.ErrDimension},
		{"cf above nyquist", Exact{CF: unit.Hertz(30000)}, unit.Hz(44100), cascade.ErrConfig},
		{"bad scale", Exact{CF: unit.Hertz(1000), Scale: erb.Scale{EarQ: -1, MinBW: 1, Order: 1}}, unit.Hz(44100), cascade.ErrConfig},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := c.g.Design(c.fs); !errors.Is(err, c.want) {
				t.Fatalf("err=%v, want %v", err, c.want)
			}
		})
	}
}

func TestParallel_UnityGainAtCF(t *testing.T) {
	cfs := []float64{250, 1000, 4000}
	g := Parallel{CF: unit.Hertz(cfs...), BW: unit.Hertz(50, 130, 450), Order: 4}
	tt, err := g.Design(unit.Hz(32000))
	if err != nil {
		t.Fatal(err)
	}
	if tt.NumStages() != 4 || tt.TotalOrder() != 8 {
		t.Fatalf("stages=%d order=%d", tt.NumStages(), tt.TotalOrder())
	}
	for ch, cf := range cfs {
		testutil.RequireRelNear(t, fmt.Sprintf("cf=%g", cf), cmplx.Abs(tt.Response(ch, cf)), 1, 1e-9)
	}
	for ch := range cfs {
		b := tt.Stages[0].B[ch]
		a := tt.Stages[0].A[ch]
		testutil.RequireRelNear(t, "b1 = alpha*b0", b[1], a[1]/2*b[0], 1e-12)
	}
}

func TestParallel_DefaultsToERB(t *testing.T) {
	withERB, err := Parallel{CF: unit.Hertz(1000), Order: 2}.Design(unit.Hz(16000))
	if err != nil {
		t.Fatal(err)
	}
	explicit, _ := Parallel{
		CF:    unit.Hertz(1000),
		BW:    unit.Hertz(erb.GlasbergMoore.ERB(1000)),
		Order: 2,
	}.Design(unit.Hz(16000))
	testutil.RequireSliceNearlyEqual(t, withERB.Stages[1].A[0], explicit.Stages[1].A[0], 0)
	testutil.RequireSliceNearlyEqual(t, withERB.Stages[1].B[0], explicit.Stages[1].B[0], 0)
}

func TestParallel_Errors(t *testing.T) {
	fs := unit.Hz(16000)
	if _, err := (Parallel{CF: unit.Hertz(1000), Order: 0}).Design(fs); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("order 0: err=%v", err)
	}
	if _, err := (Parallel{CF: unit.Hertz(1000, 2000), BW: unit.Hertz(100), Order: 1}).Design(fs); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("length mismatch: err=%v", err)
	}
	if _, err := (Parallel{CF: unit.Hertz(1000), BW: unit.Seconds(1), Order: 1}).Design(fs); !errors.Is(err, unit.ErrDimension) {
		t.Fatalf("bw dimension: err=%v", err)
	}
}

func ExampleExact() {
	cfs, _ := erb.Space(unit.Hz(100), unit.Hz(8000), 16)
	t, _ := Exact{CF: cfs}.Design(unit.Hz(44100))
	fmt.Println(t.Kind, t.Channels, t.NumStages(), t.TotalOrder())
	// Output: gammatone 16 4 8
}
