package main

import (
	"fmt"

	"github.com/cwbudde/algo-hears/dsp/filter/adaptive"
	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/design/erb"
	"github.com/cwbudde/algo-hears/dsp/filter/design/gammachirp"
	"github.com/cwbudde/algo-hears/dsp/filter/design/gammatone"
	"github.com/cwbudde/algo-hears/dsp/filter/design/iir"
	"github.com/cwbudde/algo-hears/dsp/filter/linear"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// BankFlags selects and parameterizes a filterbank family. Families with
// center frequencies space Channels of them on the ERB scale between Low and
// High.
type BankFlags struct {
	Family   string  `short:"f" help:"Filterbank family (${enum})." default:"gammatone" enum:"gammatone,parallel,gammachirp,gammachirp-fir,compensation,butter,iir,tolerance,bandpass"`
	Channels int     `short:"n" help:"Number of channels." default:"8"`
	Low      float64 `help:"Lowest center frequency in Hz." default:"100"`
	High     float64 `help:"Highest center frequency in Hz." default:"8000"`
	Order    int     `help:"Filter order (parallel, butter, iir)." default:"4"`

	Chirp        float64 `help:"Gammachirp chirp rate c." default:"1"`
	Slope        float64 `help:"Gammachirp FIR glide slope in Hz/s." default:"0"`
	TimeConstant float64 `help:"Gammachirp FIR envelope time constant in seconds." default:"0.005"`

	Cutoff      []float64 `help:"Cutoff frequencies in Hz, one or two per design." default:"1000"`
	Band        string    `help:"Band shape (lowpass, highpass, bandpass, bandstop)." default:"lowpass"`
	Type        string    `help:"IIR family (butter, cheby1, cheby2, ellip, bessel)." default:"butter"`
	Ripple      float64   `help:"Passband ripple in dB." default:"1"`
	Attenuation float64   `help:"Stopband attenuation in dB." default:"40"`
	Passband    []float64 `help:"Passband edges in Hz for tolerance designs." default:"1000"`
	Stopband    []float64 `help:"Stopband edges in Hz for tolerance designs." default:"1500"`
	GPass       float64   `name:"gpass" help:"Maximum passband loss in dB." default:"1"`
	GStop       float64   `name:"gstop" help:"Minimum stopband attenuation in dB." default:"40"`
	Coeff       float64   `help:"Bandpass coefficient 1/Q." default:"0.3"`
}

// EngineFlags configure the processing engine.
type EngineFlags struct {
	Kernel  string `help:"Processing kernel (scalar, vector)." default:"scalar" enum:"scalar,vector"`
	Float32 bool   `help:"Round outputs to single precision."`
	Workers int    `help:"Goroutines for the scalar kernel." default:"1"`
}

func (e EngineFlags) options() []linear.Option {
	opts := []linear.Option{linear.WithWorkers(e.Workers)}
	if e.Kernel == "vector" {
		opts = append(opts, linear.WithKernel(linear.Vector))
	}
	if e.Float32 {
		opts = append(opts, linear.WithPrecision(linear.Float32))
	}
	return opts
}

// centers returns the ERB-spaced center frequencies of the bank.
func (b BankFlags) centers() ([]unit.Quantity, error) {
	return erb.Space(unit.Hz(b.Low), unit.Hz(b.High), b.Channels)
}

// designer builds the cascade.Designer named by Family.
func (b BankFlags) designer() (cascade.Designer, error) {
	switch b.Family {
	case "butter", "iir", "tolerance":
		return b.iirDesigner()
	}

	cfs, err := b.centers()
	if err != nil {
		return nil, err
	}
	switch b.Family {
	case "gammatone":
		return gammatone.Exact{CF: cfs}, nil
	case "parallel":
		return gammatone.Parallel{CF: cfs, Order: b.Order}, nil
	case "gammachirp":
		return gammachirp.IIR{CF: cfs, C: fill(b.Chirp, len(cfs))}, nil
	case "compensation":
		return gammachirp.Compensation{CF: cfs, C: fill(b.Chirp, len(cfs))}, nil
	case "gammachirp-fir":
		tc := make([]unit.Quantity, len(cfs))
		for i := range tc {
			tc[i] = unit.Second(b.TimeConstant)
		}
		return gammachirp.FIR{F0: cfs, C: fill(b.Slope, len(cfs)), TimeConstant: tc}, nil
	case "bandpass":
		return adaptive.Bandpass{CF: cfs, Coeff: b.Coeff}, nil
	}
	return nil, fmt.Errorf("%w: unknown family %q", cascade.ErrConfig, b.Family)
}

func (b BankFlags) iirDesigner() (cascade.Designer, error) {
	band, err := iir.ParseBand(b.Band)
	if err != nil {
		return nil, err
	}
	typ, err := iir.ParseType(b.Type)
	if err != nil {
		return nil, err
	}
	switch b.Family {
	case "butter":
		return iir.Butterworth{Channels: b.Channels, Order: b.Order, Cutoff: unit.Hertz(b.Cutoff...), Band: band}, nil
	case "iir":
		return iir.Filter{
			Channels:    b.Channels,
			Order:       b.Order,
			Cutoff:      unit.Hertz(b.Cutoff...),
			Band:        band,
			Type:        typ,
			Ripple:      b.Ripple,
			Attenuation: b.Attenuation,
		}, nil
	default:
		return iir.Spec{
			Channels: b.Channels,
			Passband: unit.Hertz(b.Passband...),
			Stopband: unit.Hertz(b.Stopband...),
			GPass:    b.GPass,
			GStop:    b.GStop,
			Type:     typ,
		}, nil
	}
}

// design returns the tensor of the selected family at fs.
func (b BankFlags) design(fs float64) (*cascade.Tensor, error) {
	d, err := b.designer()
	if err != nil {
		return nil, err
	}
	t, err := d.Design(unit.Hz(fs))
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", b.Family, err)
	}
	return t, nil
}

func fill(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
