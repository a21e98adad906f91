package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-hears/dsp/filter/adaptive"
	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/stream"
	"github.com/cwbudde/algo-hears/dsp/unit"
	"github.com/cwbudde/algo-hears/measure/response"
)

// ErbCmd prints ERB-spaced center frequencies.
type ErbCmd struct {
	Low      float64 `help:"Lowest center frequency in Hz." default:"100"`
	High     float64 `help:"Highest center frequency in Hz." default:"8000"`
	Channels int     `short:"n" help:"Number of channels." default:"16"`
}

// Run prints one row per channel.
func (c *ErbCmd) Run(a *app) error {
	cfs, err := erb.Space(unit.Hz(c.Low), unit.Hz(c.High), c.Channels)
	if err != nil {
		return err
	}
	hz, err := unit.ToHz(cfs)
	if err != nil {
		return err
	}
	tbl := newTable("channel", "cf (Hz)", "ERB (Hz)")
	for i, cf := range hz {
		tbl.Row(strconv.Itoa(i), ff(cf, 2), ff(erb.GlasbergMoore.ERB(cf), 2))
	}
	fmt.Fprintln(a.out, titleStyle.Render("ERB spacing"))
	fmt.Fprintln(a.out, tbl)
	return nil
}

// DesignCmd designs a filterbank and prints its stage structure.
type DesignCmd struct {
	BankFlags `embed:""`

	Coeffs bool `help:"Print the coefficients of every stage."`
}

// Run designs the bank and prints a summary.
func (c *DesignCmd) Run(a *app) error {
	t, err := c.design(a.fs)
	if err != nil {
		return err
	}
	a.log.Debug("designed", "kind", t.Kind, "channels", t.Channels, "stages", t.NumStages())

	fmt.Fprintln(a.out, titleStyle.Render("Filterbank "+t.Kind.String()))
	fmt.Fprintln(a.out, keyValue("sample rate", ff(t.SampleRate, 0)+" Hz"))
	fmt.Fprintln(a.out, keyValue("channels", strconv.Itoa(t.Channels)))
	fmt.Fprintln(a.out, keyValue("stages", strconv.Itoa(t.NumStages())))
	fmt.Fprintln(a.out, keyValue("orders", joinInts(t.Orders())))
	fmt.Fprintln(a.out, keyValue("total order", strconv.Itoa(t.TotalOrder())))

	tbl := newTable("channel", "pole radius", "gain @ 1 kHz (dB)")
	for ch := 0; ch < t.Channels; ch++ {
		ps, err := t.Poles(ch)
		if err != nil {
			return err
		}
		r := 0.0
		for _, p := range ps {
			r = max(r, cmplx.Abs(p))
		}
		tbl.Row(strconv.Itoa(ch), ff(r, 6), ff(t.MagnitudeDB(ch, 1000), 2))
	}
	fmt.Fprintln(a.out, tbl)

	if c.Coeffs {
		printCoefficients(a.out, t)
	}
	return nil
}

func printCoefficients(w io.Writer, t *cascade.Tensor) {
	for s, st := range t.Stages {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Stage %d (order %d)", s, st.Order)))
		for ch := 0; ch < t.Channels; ch++ {
			sec := st.Section(ch)
			fmt.Fprintln(w, keyValue(fmt.Sprintf("ch %d b", ch), joinFloats(sec.B)))
			fmt.Fprintln(w, keyValue(fmt.Sprintf("ch %d a", ch), joinFloats(sec.A)))
		}
	}
}

// ResponseCmd measures impulse and magnitude responses.
type ResponseCmd struct {
	BankFlags   `embed:""`
	EngineFlags `embed:""`

	FFTSize  int     `name:"fft-size" help:"FFT size, a power of two." default:"4096"`
	Duration float64 `help:"Impulse response duration in seconds." default:"0.1"`
}

// Run prints one row of metrics per channel.
func (c *ResponseCmd) Run(a *app) error {
	t, err := c.design(a.fs)
	if err != nil {
		return err
	}
	ms, err := response.Analyze(t,
		response.WithFFTSize(c.FFTSize),
		response.WithDuration(c.Duration),
		response.WithEngineOptions(c.options()...),
	)
	if err != nil {
		return err
	}
	a.log.Debug("analyzed", "channels", len(ms), "fft", c.FFTSize)

	tbl := newTable("channel", "peak (Hz)", "gain (dB)", "bandwidth (Hz)", "decay (ms)", "center (ms)")
	for ch, m := range ms {
		tbl.Row(strconv.Itoa(ch),
			ff(m.PeakFrequency, 1),
			ff(m.PeakGainDB, 2),
			ff(m.Bandwidth, 1),
			ff(m.DecayTime*1000, 2),
			ff(m.CenterTime*1000, 2),
		)
	}
	fmt.Fprintln(a.out, titleStyle.Render("Response "+t.Kind.String()))
	fmt.Fprintln(a.out, tbl)
	return nil
}

// AdaptCmd runs the adaptive bandpass bank on white noise.
type AdaptCmd struct {
	EngineFlags `embed:""`

	Mean      []float64 `help:"Mean center frequency per channel in Hz." default:"1000,2000"`
	Deviation []float64 `help:"Center frequency standard deviation per channel in Hz." default:"200,400"`
	Tau       []float64 `help:"Time constant per channel in seconds." default:"0.01,0.02"`
	Coeff     float64   `help:"Bandpass coefficient 1/Q." default:"0.3"`
	Duration  float64   `help:"Noise duration in seconds." default:"1"`
	Interval  int       `help:"Frames between center frequency updates." default:"1"`
	Seed      uint64    `help:"Seed of the center frequency processes." default:"1"`
	Block     int       `help:"Frames per processing block." default:"1024"`
}

// Run filters the noise and summarizes the center frequency trajectories.
func (c *AdaptCmd) Run(a *app) error {
	frames := int(c.Duration * a.fs)
	src, err := stream.NewGenerator(unit.Hz(a.fs), stream.WhiteNoise, frames, stream.WithSeed(c.Seed+1))
	if err != nil {
		return err
	}
	bank, err := adaptive.NewBank(src, adaptive.Params{
		Coeff: c.Coeff,
		M:     unit.Hertz(c.Mean...),
		S:     unit.Hertz(c.Deviation...),
		Tau:   unit.Seconds(c.Tau...),
	},
		adaptive.WithSeed(c.Seed),
		adaptive.WithUpdateInterval(c.Interval),
		adaptive.WithEngineOptions(c.options()...),
	)
	if err != nil {
		return err
	}

	n := bank.Channels()
	track := make([][]float64, n)
	energy := make([]float64, n)
	for {
		b, err := bank.Read(c.Block)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		for ch, fc := range bank.Filterbank().CenterFrequencies() {
			track[ch] = append(track[ch], fc)
		}
		for i := 0; i < b.Frames; i++ {
			for ch := 0; ch < n; ch++ {
				v := b.At(i, ch)
				energy[ch] += v * v
			}
		}
	}
	a.log.Debug("adapted", "frames", frames, "blocks", len(track[0]))

	tbl := newTable("channel", "mean fc (Hz)", "std (Hz)", "min (Hz)", "max (Hz)", "rms")
	for ch := range n {
		if len(track[ch]) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(track[ch], nil)
		tbl.Row(strconv.Itoa(ch),
			ff(mean, 1),
			ff(std, 1),
			ff(floats.Min(track[ch]), 1),
			ff(floats.Max(track[ch]), 1),
			ff(math.Sqrt(energy[ch]/float64(frames)), 4),
		)
	}
	fmt.Fprintln(a.out, titleStyle.Render("Adaptive bandpass"))
	fmt.Fprintln(a.out, tbl)
	return nil
}

func ff(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, " ")
}

func joinFloats(v []float64) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.FormatFloat(x, 'g', 10, 64)
	}
	return strings.Join(s, " ")
}
