package response

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
)

// Metrics summarizes one channel.
type Metrics struct {
	PeakFrequency float64 // frequency of the largest magnitude bin, Hz
	PeakGainDB    float64 // gain at PeakFrequency
	Bandwidth     float64 // width of the region within 3 dB of the peak, Hz
	DecayTime     float64 // seconds until the envelope stays below the decay threshold
	CenterTime    float64 // energy centroid of the impulse response, seconds
	Energy        float64 // sum of squared samples
}

// Analyze captures the impulse responses of t and measures every channel.
func Analyze(t *cascade.Tensor, opts ...Option) ([]Metrics, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	irs, err := capture(t, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]Metrics, len(irs))
	for ch, ir := range irs {
		spec, err := MagnitudeSpectrum(ir, t.SampleRate, cfg.fftSize)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		m := Metrics{Energy: energy(ir)}
		k, peak := spec.Peak()
		m.PeakFrequency = spec.Frequency(k)
		m.PeakGainDB = db(peak)
		m.Bandwidth = bandwidth(spec, k, peak)
		if m.DecayTime, err = DecayTime(ir, t.SampleRate, cfg.decayDB); err != nil && !errors.Is(err, ErrNoSignificant) {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		m.CenterTime = CenterTime(ir, t.SampleRate)
		out[ch] = m
	}
	return out, nil
}

// DecayTime returns the time after which |ir| stays below thresholdDB
// relative to its peak. ErrNoSignificant is returned for a silent response.
func DecayTime(ir []float64, sampleRate, thresholdDB float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmpty
	}
	if !(sampleRate > 0) {
		return 0, ErrSampleRate
	}
	peak := vecmath.MaxAbs(ir)
	if peak == 0 {
		return 0, ErrNoSignificant
	}
	limit := peak * math.Pow(10, thresholdDB/20)
	last := 0
	for i, v := range ir {
		if math.Abs(v) >= limit {
			last = i
		}
	}
	return float64(last+1) / sampleRate, nil
}

// CenterTime returns the energy centroid sum(t*h^2)/sum(h^2) in seconds, or
// 0 for a silent response.
func CenterTime(ir []float64, sampleRate float64) float64 {
	e := energy(ir)
	if e == 0 || !(sampleRate > 0) {
		return 0
	}
	var w float64
	for i, v := range ir {
		w += float64(i) * v * v
	}
	return w / e / sampleRate
}

func energy(ir []float64) float64 {
	sq := make([]float64, len(ir))
	vecmath.MulBlock(sq, ir, ir)
	return vecmath.Sum(sq)
}

// bandwidth walks outward from the peak bin to the first bins more than
// 3 dB down, interpolating the crossing on each side.
func bandwidth(s Spectrum, k int, peak float64) float64 {
	if peak == 0 {
		return 0
	}
	edge := peak / math.Sqrt2
	lo := 0.0
	for i := k; i > 0; i-- {
		if s.Magnitude[i-1] < edge {
			lo = float64(i) - (s.Magnitude[i]-edge)/(s.Magnitude[i]-s.Magnitude[i-1])
			break
		}
	}
	last := len(s.Magnitude) - 1
	hi := float64(last)
	for i := k; i < last; i++ {
		if s.Magnitude[i+1] < edge {
			hi = float64(i) + (s.Magnitude[i]-edge)/(s.Magnitude[i]-s.Magnitude[i+1])
			break
		}
	}
	return (hi - lo) * s.BinWidth()
}
