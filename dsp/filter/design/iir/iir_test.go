package iir

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/unit"
	"github.com/cwbudde/algo-hears/internal/testutil"
)

// gainDB returns the cascade magnitude in dB at normalized frequency w.
func gainDB(secs []cascade.Section, w float64) float64 {
	h := complex(1, 0)
	for _, s := range secs {
		h *= s.Response(w, 2)
	}
	return 20 * math.Log10(cmplx.Abs(h))
}

func requireStable(t *testing.T, secs []cascade.Section) {
	t.Helper()
	tt, err := cascade.Uniform(cascade.GenericIIR, 2, 1, secs...)
	if err != nil {
		t.Fatal(err)
	}
	r, err := tt.MaxPoleRadius()
	if err != nil {
		t.Fatal(err)
	}
	if r >= 1 {
		t.Fatalf("unstable design: max pole radius %v", r)
	}
}

func TestButterworth_LowpassCutoff(t *testing.T) {
	for _, order := range []int{1, 2, 3, 4, 7} {
		secs, err := Sections(Params{Order: order, Wn: []float64{0.25}, Band: Lowpass, Type: Butter})
		if err != nil {
			t.Fatal(err)
		}
		if len(secs) != (order+1)/2 {
			t.Fatalf("order %d: %d sections", order, len(secs))
		}
		testutil.RequireRelNear(t, fmt.Sprintf("order %d dc", order), gainDB(secs, 0), 0, 1e-9)
		testutil.RequireRelNear(t, fmt.Sprintf("order %d cutoff", order), gainDB(secs, 0.25), -3.0102999566, 1e-8)
		requireStable(t, secs)
	}
}

func TestButterworth_OddOrderPadsFirstOrderSection(t *testing.T) {
	secs, _ := Sections(Params{Order: 3, Wn: []float64{0.3}, Band: Lowpass, Type: Butter})
	last := secs[len(secs)-1]
	if last.B[2] != 0 || last.A[2] != 0 {
		t.Fatalf("first-order section not padded: b=%v a=%v", last.B, last.A)
	}
}

func TestButterworth_Highpass(t *testing.T) {
	secs, err := Sections(Params{Order: 4, Wn: []float64{0.1}, Band: Highpass, Type: Butter})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelNear(t, "nyquist", gainDB(secs, 0.999999), 0, 1e-6)
	testutil.RequireRelNear(t, "cutoff", gainDB(secs, 0.1), -3.0102999566, 1e-8)
}

func TestButterworth_BandpassAndBandstop(t *testing.T) {
	wn := []float64{0.2, 0.4}
	bp, err := Sections(Params{Order: 3, Wn: wn, Band: Bandpass, Type: Butter})
	if err != nil {
		t.Fatal(err)
	}
	if len(bp) != 3 {
		t.Fatalf("bandpass sections=%d, want 3", len(bp))
	}
	bs, err := Sections(Params{Order: 2, Wn: wn, Band: Bandstop, Type: Butter})
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range wn {
		testutil.RequireRelNear(t, "bandpass edge", gainDB(bp, w), -3.0102999566, 1e-7)
		testutil.RequireRelNear(t, "bandstop edge", gainDB(bs, w), -3.0102999566, 1e-7)
	}
	// Center of the warped band.
	t0, t1 := math.Tan(math.Pi*wn[0]/2), math.Tan(math.Pi*wn[1]/2)
	wc := 2 / math.Pi * math.Atan(math.Sqrt(t0*t1))
	testutil.RequireRelNear(t, "bandpass center", gainDB(bp, wc), 0, 1e-9)
	if g := gainDB(bs, wc); g > -100 {
		t.Fatalf("bandstop center gain %v dB", g)
	}
	requireStable(t, bp)
	requireStable(t, bs)
}

func TestOrderEstimates(t *testing.T) {
	cases := []struct {
		wp, ws       []float64
		gpass, gstop float64
		butt, cheb   int
		ellip        int
	}{
		{[]float64{0.2}, []float64{0.3}, 3, 40, 11, 6, 4},
		{[]float64{0.2}, []float64{0.3}, 1, 60, 17, 9, 6},
		{[]float64{0.1}, []float64{0.15}, 0.5, 50, 17, 8, 5},
		{[]float64{0.3}, []float64{0.2}, 3, 40, 0, 0, 0},
		{[]float64{0.2, 0.5}, []float64{0.1, 0.6}, 1, 40, 11, 6, 4},
	}
	for _, c := range cases {
		name := fmt.Sprintf("%v/%v/%g/%g", c.wp, c.ws, c.gpass, c.gstop)
		b, err := ButtOrd(c.wp, c.ws, c.gpass, c.gstop)
		if err != nil {
			t.Fatal(err)
		}
		c1, _ := Cheb1Ord(c.wp, c.ws, c.gpass, c.gstop)
		c2, _ := Cheb2Ord(c.wp, c.ws, c.gpass, c.gstop)
		e, _ := EllipOrd(c.wp, c.ws, c.gpass, c.gstop)
		if c.butt == 0 {
			// Highpass mirror of the first row: same selectivity ratio class.
			if b.Order < 1 || c1.Order > b.Order || e.Order > c1.Order {
				t.Errorf("%s: orders butt=%d cheb=%d ellip=%d", name, b.Order, c1.Order, e.Order)
			}
			continue
		}
		if b.Order != c.butt || c1.Order != c.cheb || c2.Order != c.cheb || e.Order != c.ellip {
			t.Errorf("%s: butt=%d cheb1=%d cheb2=%d ellip=%d, want %d %d %d %d",
				name, b.Order, c1.Order, c2.Order, e.Order, c.butt, c.cheb, c.cheb, c.ellip)
		}
	}
}

func TestAuto_MeetsTolerance(t *testing.T) {
	type scheme struct {
		wp, ws []float64
	}
	schemes := []scheme{
		{[]float64{0.2}, []float64{0.3}},
		{[]float64{0.4}, []float64{0.25}},
		{[]float64{0.2, 0.5}, []float64{0.1, 0.6}},
		{[]float64{0.1, 0.6}, []float64{0.2, 0.5}},
	}
	const gpass, gstop, tol = 1.0, 40.0, 1e-3
	for _, typ := range []Type{Butter, Cheby1, Cheby2, Ellip} {
		for _, s := range schemes {
			name := fmt.Sprintf("%v %v/%v", typ, s.wp, s.ws)
			secs, p, err := Auto(s.wp, s.ws, gpass, gstop, typ)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			requireStable(t, secs)
			inPass, inStop := bandPredicates(p.Band, s.wp, s.ws)
			for i := 1; i < 1000; i++ {
				w := float64(i) / 1000
				g := gainDB(secs, w)
				if inPass(w) && g < -gpass-tol {
					t.Fatalf("%s: passband loss %.4f dB at %g", name, -g, w)
				}
				if inStop(w) && g > -gstop+tol {
					t.Fatalf("%s: stopband attenuation %.4f dB at %g", name, -g, w)
				}
				if g > tol {
					t.Fatalf("%s: gain %.4f dB above unity at %g", name, g, w)
				}
			}
		}
	}
}

func bandPredicates(b Band, wp, ws []float64) (inPass, inStop func(float64) bool) {
	switch b {
	case Lowpass:
		return func(w float64) bool { return w <= wp[0] }, func(w float64) bool { return w >= ws[0] }
	case Highpass:
		return func(w float64) bool { return w >= wp[0] }, func(w float64) bool { return w <= ws[0] }
	case Bandpass:
		return func(w float64) bool { return w >= wp[0] && w <= wp[1] },
			func(w float64) bool { return w <= ws[0] || w >= ws[1] }
	default:
		return func(w float64) bool { return w <= wp[0] || w >= wp[1] },
			func(w float64) bool { return w >= ws[0] && w <= ws[1] }
	}
}

func TestChebyshev1_RippleAtEdge(t *testing.T) {
	secs, err := Sections(Params{Order: 5, Wn: []float64{0.3}, Band: Lowpass, Type: Cheby1, Ripple: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelNear(t, "edge", gainDB(secs, 0.3), -0.5, 1e-7)
	testutil.RequireRelNear(t, "dc (odd order)", gainDB(secs, 0), 0, 1e-9)
}

func TestChebyshev2_AttenuationAtEdge(t *testing.T) {
	secs, err := Sections(Params{Order: 4, Wn: []float64{0.3}, Band: Lowpass, Type: Cheby2, Attenuation: 40})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelNear(t, "stopband edge", gainDB(secs, 0.3), -40, 1e-7)
	testutil.RequireRelNear(t, "dc", gainDB(secs, 0), 0, 1e-9)
}

func TestElliptic_RippleAndAttenuation(t *testing.T) {
	for _, order := range []int{1, 2, 3, 4, 5, 6} {
		secs, err := Sections(Params{Order: order, Wn: []float64{0.25}, Band: Lowpass, Type: Ellip, Ripple: 1, Attenuation: 50})
		if err != nil {
			t.Fatalf("order %d: %v", order, err)
		}
		requireStable(t, secs)
		testutil.RequireRelNear(t, fmt.Sprintf("order %d edge", order), gainDB(secs, 0.25), -1, 1e-5)
		peak := math.Inf(-1)
		for i := 0; i <= 250; i++ {
			peak = math.Max(peak, gainDB(secs, float64(i)/1000))
		}
		if peak > 1e-5 {
			t.Fatalf("order %d: passband peak %v dB", order, peak)
		}
	}
}

func TestBessel_MagnitudeNormalized(t *testing.T) {
	for order := 1; order <= maxBesselOrder; order++ {
		secs, err := Sections(Params{Order: order, Wn: []float64{0.2}, Band: Lowpass, Type: Bessel})
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireRelNear(t, fmt.Sprintf("order %d cutoff", order), gainDB(secs, 0.2), -3.0103, 1e-4)
		testutil.RequireRelNear(t, fmt.Sprintf("order %d dc", order), gainDB(secs, 0), 0, 1e-9)
	}
	if _, err := Sections(Params{Order: 11, Wn: []float64{0.2}, Type: Bessel}); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("order 11: err=%v", err)
	}
}

func TestSections_Errors(t *testing.T) {
	cases := []Params{
		{Order: 0, Wn: []float64{0.2}},
		{Order: 2, Wn: []float64{1.2}},
		{Order: 2, Wn: []float64{0.2}, Band: Bandpass},
		{Order: 2, Wn: []float64{0.4, 0.2}, Band: Bandstop},
		{Order: 2, Wn: []float64{0.2}, Type: Cheby1},
		{Order: 2, Wn: []float64{0.2}, Type: Ellip, Ripple: 3, Attenuation: 2},
		{Order: 2, Wn: []float64{0.2}, Type: Type(42)},
	}
	for i, p := range cases {
		if _, err := Sections(p); !errors.Is(err, cascade.ErrConfig) {
			t.Errorf("case %d: err=%v, want ErrConfig", i, err)
		}
	}
	if _, _, err := Auto([]float64{0.2}, []float64{0.3}, 1, 40, Bessel); !errors.Is(err, cascade.ErrConfig) {
		t.Errorf("bessel auto: err=%v", err)
	}
	if _, _, err := Auto([]float64{0.2, 0.4}, []float64{0.3, 0.5}, 1, 40, Butter); !errors.Is(err, cascade.ErrConfig) {
		t.Errorf("non-nested bands: err=%v", err)
	}
}

func TestParse(t *testing.T) {
	if typ, err := ParseType("ELLIP"); err != nil || typ != Ellip {
		t.Fatalf("ParseType = %v, %v", typ, err)
	}
	if _, err := ParseType("chebyshev"); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("err=%v", err)
	}
	if b, err := ParseBand("high"); err != nil || b != Highpass {
		t.Fatalf("ParseBand = %v, %v", b, err)
	}
}

func TestSpec_ReplicatesAcrossChannels(t *testing.T) {
	s := Spec{
		Channels: 4,
		Passband: unit.Hertz(1000),
		Stopband: unit.Hertz(2000),
		GPass:    1,
		GStop:    40,
		Type:     Ellip,
	}
	tt, err := s.Design(unit.Hz(16000))
	if err != nil {
		t.Fatal(err)
	}
	if err := tt.Validate(); err != nil {
		t.Fatal(err)
	}
	if tt.Kind != cascade.GenericIIR || tt.Channels != 4 {
		t.Fatalf("kind=%v channels=%d", tt.Kind, tt.Channels)
	}
	for _, st := range tt.Stages {
		for ch := 1; ch < 4; ch++ {
			testutil.RequireSliceNearlyEqual(t, st.B[ch], st.B[0], 0)
			testutil.RequireSliceNearlyEqual(t, st.A[ch], st.A[0], 0)
		}
	}
	if g := tt.MagnitudeDB(2, 2500); g > -40 {
		t.Fatalf("stopband gain %v dB", g)
	}
}

func TestSpec_Errors(t *testing.T) {
	base := Spec{Channels: 2, Passband: unit.Hertz(1000), Stopband: unit.Hertz(2000), GPass: 1, GStop: 40}
	bad := base
	bad.Stopband = unit.Hertz(9000)
	if _, err := bad.Design(unit.Hz(16000)); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("edge above nyquist: err=%v", err)
	}
	bad = base
	bad.Passband = unit.Seconds(1)
	if _, err := bad.Design(unit.Hz(16000)); !errors.Is(err, unit.ErrDimension) {
		t.Fatalf("dimension: err=%v", err)
	}
	bad = base
	bad.Channels = 0
	if _, err := bad.Design(unit.Hz(16000)); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("channels: err=%v", err)
	}
}

func TestFilter_Design(t *testing.T) {
	f := Filter{Channels: 2, Order: 4, Cutoff: unit.Hertz(300, 3000), Band: Bandpass, Type: Cheby1, Ripple: 0.5}
	tt, err := f.Design(unit.Hz(16000))
	if err != nil {
		t.Fatal(err)
	}
	if tt.NumStages() != 4 || tt.TotalOrder() != 8 {
		t.Fatalf("stages=%d order=%d", tt.NumStages(), tt.TotalOrder())
	}
	testutil.RequireRelNear(t, "edge", tt.MagnitudeDB(1, 300), -0.5, 1e-6)
}

func TestButterworthDesigner_SharedAndPerChannel(t *testing.T) {
	shared, err := Butterworth{Channels: 3, Order: 2, Cutoff: unit.Hertz(1000)}.Design(unit.Hz(44100))
	if err != nil {
		t.Fatal(err)
	}
	if shared.Kind != cascade.Butterworth || shared.NumStages() != 1 || shared.TotalOrder() != 2 {
		t.Fatalf("kind=%v stages=%d order=%d", shared.Kind, shared.NumStages(), shared.TotalOrder())
	}
	per, err := Butterworth{Channels: 3, Order: 3, Cutoff: unit.Hertz(500, 1000, 2000)}.Design(unit.Hz(44100))
	if err != nil {
		t.Fatal(err)
	}
	for ch, fc := range []float64{500, 1000, 2000} {
		testutil.RequireRelNear(t, fmt.Sprintf("channel %d", ch), per.MagnitudeDB(ch, fc), -3.0102999566, 1e-7)
	}
	bands, err := Butterworth{
		Channels: 2, Order: 2, Band: Bandpass,
		Cutoff: unit.Hertz(200, 400, 1000, 2000),
	}.Design(unit.Hz(16000))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelNear(t, "band channel 1", bands.MagnitudeDB(1, 2000), -3.0102999566, 1e-7)
	if _, err := (Butterworth{Channels: 3, Order: 2, Cutoff: unit.Hertz(1, 2)}).Design(unit.Hz(8000)); !errors.Is(err, cascade.ErrConfig) {
		t.Fatalf("cutoff count: err=%v", err)
	}
}

func TestEllipticFunctions(t *testing.T) {
	testutil.RequireRelNear(t, "K(0)", ellipk(0), math.Pi/2, 1e-15)
	testutil.RequireRelNear(t, "K(0.5)", ellipk(0.5), 1.8540746773013719, 1e-14)
	testutil.RequireRelNear(t, "K(0.9)", ellipk(0.9), 2.5780921133481733, 1e-14)
	testutil.RequireRelNear(t, "Km1", ellipkm1(0.1), ellipk(0.9), 1e-14)

	for _, m := range []float64{0, 1e-12, 0.3, 0.7, 0.99, 1} {
		for _, u := range []float64{0.1, 0.7, 1.3} {
			sn, cn, dn := ellipj(u, m)
			testutil.RequireRelNear(t, "sn²+cn²", sn*sn+cn*cn, 1, 1e-9)
			testutil.RequireRelNear(t, "dn²+m sn²", dn*dn+m*sn*sn, 1, 1e-9)
		}
	}
	sn, cn, dn := ellipj(0.4, 0)
	testutil.RequireSliceNearlyEqual(t, []float64{sn, cn, dn}, []float64{math.Sin(0.4), math.Cos(0.4), 1}, 1e-15)
	sn, cn, _ = ellipj(0.4, 1)
	testutil.RequireSliceNearlyEqual(t, []float64{sn, cn}, []float64{math.Tanh(0.4), 1 / math.Cosh(0.4)}, 1e-12)

	// sc(v | 1-m) = w.
	for _, m := range []float64{0.01, 0.4, 0.95} {
		w := 2.5
		v := arcJacSC1(w, m)
		s, c, _ := ellipj(v, 1-m)
		testutil.RequireRelNear(t, fmt.Sprintf("sc m=%g", m), s/c, w, 1e-9)
	}
}
