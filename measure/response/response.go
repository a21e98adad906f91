package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/linear"
	"github.com/cwbudde/algo-hears/dsp/stream"
)

// Errors returned by the measurement functions.
var (
	ErrEmpty         = errors.New("response: impulse response is empty")
	ErrFFTSize       = errors.New("response: FFT size must be a power of two >= 2")
	ErrSampleRate    = errors.New("response: sample rate must be positive")
	ErrNoSignificant = errors.New("response: impulse response is silent")
)

const (
	defaultFFTSize  = 4096
	defaultDecayDB  = -60.0
	defaultDuration = 0.1
)

type config struct {
	fftSize  int
	length   int
	duration float64
	decayDB  float64
	engine   []linear.Option
}

func defaultConfig() config {
	return config{
		fftSize:  defaultFFTSize,
		duration: defaultDuration,
		decayDB:  defaultDecayDB,
	}
}

// Option configures a measurement.
type Option func(*config)

// WithFFTSize sets the transform length. Responses longer than n are
// truncated, shorter ones zero padded.
func WithFFTSize(n int) Option {
	return func(cfg *config) { cfg.fftSize = n }
}

// WithLength sets the captured impulse response length in frames. It takes
// precedence over WithDuration.
func WithLength(frames int) Option {
	return func(cfg *config) {
		if frames > 0 {
			cfg.length = frames
		}
	}
}

// WithDuration sets the captured impulse response length in seconds.
// Defaults to 100 ms.
func WithDuration(seconds float64) Option {
	return func(cfg *config) {
		if seconds > 0 {
			cfg.duration = seconds
		}
	}
}

// WithDecayThreshold sets the level relative to the peak, in dB, that
// defines the decay time. Defaults to -60 dB.
func WithDecayThreshold(db float64) Option {
	return func(cfg *config) {
		if db < 0 {
			cfg.decayDB = db
		}
	}
}

// WithEngineOptions passes options to the engine used for capture.
func WithEngineOptions(opts ...linear.Option) Option {
	return func(cfg *config) { cfg.engine = append(cfg.engine, opts...) }
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if n := cfg.fftSize; n < 2 || n&(n-1) != 0 {
		return cfg, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}
	return cfg, nil
}

func (c config) frames(sampleRate float64) int {
	if c.length > 0 {
		return c.length
	}
	return max(1, int(math.Ceil(c.duration*sampleRate)))
}

// Capture returns the impulse response of every channel of t, channel
// major. The filter state starts at zero.
func Capture(t *cascade.Tensor, opts ...Option) ([][]float64, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return capture(t, cfg)
}

func capture(t *cascade.Tensor, cfg config) ([][]float64, error) {
	e, err := linear.NewEngine(t, cfg.engine...)
	if err != nil {
		return nil, err
	}
	n := cfg.frames(t.SampleRate)
	imp := make([]float64, n)
	imp[0] = 1
	out := stream.NewBlock(n, t.Channels)
	if err := e.ProcessShared(out, imp); err != nil {
		return nil, err
	}
	return out.ChannelSlices(), nil
}

// Spectrum is a one-sided magnitude response.
type Spectrum struct {
	SampleRate float64
	// Magnitude holds |H| for bins 0..N/2.
	Magnitude []float64
}

// BinWidth returns the frequency spacing of the bins in Hz.
func (s Spectrum) BinWidth() float64 {
	return s.SampleRate / float64(2*(len(s.Magnitude)-1))
}

// Frequency returns the center frequency of bin k.
func (s Spectrum) Frequency(k int) float64 { return float64(k) * s.BinWidth() }

// GainDB returns the magnitude at freqHz in dB, linearly interpolated
// between neighbouring bins.
func (s Spectrum) GainDB(freqHz float64) float64 {
	if len(s.Magnitude) < 2 {
		return math.Inf(-1)
	}
	pos := freqHz / s.BinWidth()
	last := len(s.Magnitude) - 1
	if pos <= 0 {
		return db(s.Magnitude[0])
	}
	if pos >= float64(last) {
		return db(s.Magnitude[last])
	}
	k := int(pos)
	frac := pos - float64(k)
	return db(s.Magnitude[k]*(1-frac) + s.Magnitude[k+1]*frac)
}

// Peak returns the bin with the largest magnitude.
func (s Spectrum) Peak() (bin int, magnitude float64) {
	for k, m := range s.Magnitude {
		if m > magnitude {
			bin, magnitude = k, m
		}
	}
	return bin, magnitude
}

// MagnitudeSpectrum transforms one impulse response into its magnitude
// response using an fftSize-point FFT.
func MagnitudeSpectrum(ir []float64, sampleRate float64, fftSize int) (Spectrum, error) {
	if len(ir) == 0 {
		return Spectrum{}, ErrEmpty
	}
	if !(sampleRate > 0) {
		return Spectrum{}, ErrSampleRate
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Spectrum{}, fmt.Errorf("%w: %d", ErrFFTSize, fftSize)
	}
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("response: fft plan: %w", err)
	}
	in := make([]complex128, fftSize)
	for i := 0; i < len(ir) && i < fftSize; i++ {
		in[i] = complex(ir[i], 0)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("response: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k], im[k] = real(out[k]), imag(out[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)
	return Spectrum{SampleRate: sampleRate, Magnitude: mag}, nil
}

// Spectra captures the impulse responses of t and returns one spectrum per
// channel.
func Spectra(t *cascade.Tensor, opts ...Option) ([]Spectrum, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	irs, err := capture(t, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]Spectrum, len(irs))
	for ch, ir := range irs {
		if out[ch], err = MagnitudeSpectrum(ir, t.SampleRate, cfg.fftSize); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	return out, nil
}

func db(m float64) float64 { return 20 * math.Log10(m) }
