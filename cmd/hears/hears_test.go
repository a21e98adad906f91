package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

func testFlags(family string) BankFlags {
	return BankFlags{
		Family:       family,
		Channels:     3,
		Low:          200,
		High:         4000,
		Order:        4,
		Chirp:        1,
		TimeConstant: 0.005,
		Cutoff:       []float64{1000},
		Band:         "lowpass",
		Type:         "butter",
		Ripple:       1,
		Attenuation:  40,
		Passband:     []float64{1000},
		Stopband:     []float64{1500},
		GPass:        1,
		GStop:        40,
		Coeff:        0.3,
	}
}

func testApp(out io.Writer) *app {
	return &app{out: out, log: log.New(io.Discard), fs: 16000}
}

func TestBankFlags_Families(t *testing.T) {
	tests := []struct {
		family string
		kind   cascade.Kind
		stages int
	}{
		{"gammatone", cascade.ExactGammatone, 4},
		{"parallel", cascade.ParallelGammatone, 4},
		{"gammachirp", cascade.GammachirpIIR, 8},
		{"compensation", cascade.GammachirpIIR, 4},
		{"gammachirp-fir", cascade.GammachirpFIR, 1},
		{"butter", cascade.Butterworth, 2},
		{"iir", cascade.GenericIIR, 2},
		{"bandpass", cascade.AdaptiveBandpass, 1},
	}
	for _, tc := range tests {
		t.Run(tc.family, func(t *testing.T) {
			tt, err := testFlags(tc.family).design(16000)
			if err != nil {
				t.Fatal(err)
			}
			if tt.Kind != tc.kind {
				t.Fatalf("kind=%v, want %v", tt.Kind, tc.kind)
			}
			if tt.Channels != 3 {
				t.Fatalf("channels=%d, want 3", tt.Channels)
			}
			if tt.NumStages() != tc.stages {
				t.Fatalf("stages=%d, want %d", tt.NumStages(), tc.stages)
			}
		})
	}
}

func TestBankFlags_Tolerance(t *testing.T) {
	tt, err := testFlags("tolerance").design(16000)
	if err != nil {
		t.Fatal(err)
	}
	if tt.Kind != cascade.GenericIIR || tt.Channels != 3 {
		t.Fatalf("kind=%v channels=%d", tt.Kind, tt.Channels)
	}
}

func TestBankFlags_BadBand(t *testing.T) {
	f := testFlags("butter")
	f.Band = "sideways"
	if _, err := f.design(16000); err == nil {
		t.Fatal("expected error for unknown band")
	}
}

func TestErbCmd_Run(t *testing.T) {
	var buf bytes.Buffer
	cmd := &ErbCmd{Low: 100, High: 8000, Channels: 4}
	if err := cmd.Run(testApp(&buf)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "100.00") {
		t.Fatalf("lowest center frequency missing from output:\n%s", buf.String())
	}
}

func TestDesignCmd_Run(t *testing.T) {
	var buf bytes.Buffer
	cmd := &DesignCmd{BankFlags: testFlags("gammatone"), Coeffs: true}
	if err := cmd.Run(testApp(&buf)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"gammatone", "Stage 3", "ch 2 a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResponseCmd_Run(t *testing.T) {
	var buf bytes.Buffer
	cmd := &ResponseCmd{
		BankFlags:   testFlags("parallel"),
		EngineFlags: EngineFlags{Kernel: "vector", Workers: 1},
		FFTSize:     2048,
		Duration:    0.05,
	}
	if err := cmd.Run(testApp(&buf)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "bandwidth") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestAdaptCmd_Run(t *testing.T) {
	var buf bytes.Buffer
	cmd := &AdaptCmd{
		EngineFlags: EngineFlags{Kernel: "scalar", Workers: 2},
		Mean:        []float64{1000, 2000},
		Deviation:   []float64{200, 400},
		Tau:         []float64{0.01, 0.02},
		Coeff:       0.3,
		Duration:    0.1,
		Interval:    4,
		Seed:        7,
		Block:       256,
	}
	if err := cmd.Run(testApp(&buf)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "mean fc") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestCLI_Parse(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": version})
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse([]string{"--sample-rate", "16000", "--log-level", "debug", "erb", "-n", "4"})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Command() != "erb" {
		t.Fatalf("command=%q, want erb", ctx.Command())
	}
	if cli.SampleRate != 16000 || cli.LogLevel != "debug" || cli.Erb.Channels != 4 {
		t.Fatalf("parsed %+v", cli)
	}
}
