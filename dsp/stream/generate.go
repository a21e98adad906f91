package stream

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Waveform selects the signal produced by a [Generator].
type Waveform int

const (
	Silence Waveform = iota
	Impulse
	Sine
	WhiteNoise
)

// Generator is a mono test-signal source of finite length.
type Generator struct {
	rate      float64
	quantity  unit.Quantity
	waveform  Waveform
	freq      float64
	amplitude float64
	length    int
	pos       int
	rng       *rand.Rand
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithFrequency sets the sine frequency.
func WithFrequency(freqHz float64) GeneratorOption {
	return func(g *Generator) { g.freq = freqHz }
}

// WithAmplitude sets the peak amplitude. Default is 1.
func WithAmplitude(a float64) GeneratorOption {
	return func(g *Generator) { g.amplitude = a }
}

// WithSeed sets a deterministic seed for white noise.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) { g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewGenerator returns a mono source producing length samples of w.
func NewGenerator(sampleRate unit.Quantity, w Waveform, length int, opts ...GeneratorOption) (*Generator, error) {
	fs, err := sampleRate.Hz()
	if err != nil {
		return nil, fmt.Errorf("stream: sample rate: %w", err)
	}
	if fs <= 0 {
		return nil, fmt.Errorf("stream: sample rate must be > 0: %f", fs)
	}
	if length <= 0 {
		return nil, fmt.Errorf("stream: generator length must be > 0: %d", length)
	}
	g := &Generator{
		rate:      fs,
		quantity:  sampleRate,
		waveform:  w,
		amplitude: 1,
		length:    length,
		rng:       rand.New(rand.NewPCG(1, 2)),
	}
	for _, o := range opts {
		if o != nil {
			o(g)
		}
	}
	if w == Sine && (g.freq <= 0 || g.freq >= fs/2) {
		return nil, fmt.Errorf("stream: sine frequency must be in (0, %g): %g", fs/2, g.freq)
	}
	return g, nil
}

// SampleRate returns the generator sample rate.
func (g *Generator) SampleRate() unit.Quantity { return g.quantity }

// Channels returns 1.
func (g *Generator) Channels() int { return 1 }

// Read returns the next samples of the waveform.
func (g *Generator) Read(frames int) (Block, error) {
	if frames <= 0 {
		return Block{}, fmt.Errorf("%w: frames must be > 0: %d", ErrShape, frames)
	}
	if g.pos >= g.length {
		return Block{}, io.EOF
	}
	n := min(frames, g.length-g.pos)
	out := NewBlock(n, 1)
	step := 2 * math.Pi * g.freq / g.rate
	for i := range out.Data {
		k := g.pos + i
		switch g.waveform {
		case Impulse:
			if k == 0 {
				out.Data[i] = g.amplitude
			}
		case Sine:
			out.Data[i] = g.amplitude * math.Sin(step*float64(k))
		case WhiteNoise:
			out.Data[i] = (g.rng.Float64()*2 - 1) * g.amplitude
		}
	}
	g.pos += n
	return out, nil
}
