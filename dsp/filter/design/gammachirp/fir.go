package gammachirp

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

// Fitted gammachirp impulse response (barn owl nucleus magnocellularis,
// 4.6 kHz). Units: ms, kHz, kHz/ms.
const (
	firAmplitude = 0.8932
	firDelay     = 0.7905
	firPhase     = -4.4308
	firBias      = -0.0010
	firGamma     = 4

	// firDurationMs is the length of the sampled response.
	firDurationMs = 4.0
	// firPeakDivisor sets the common peak value 1/firPeakDivisor of every
	// channel's taps.
	firPeakDivisor = 26.0
)

// FIR is the gammachirp filterbank realized as one FIR stage per channel.
// F0 is the carrier frequency, C the glide slope in Hz/s and TimeConstant the
// envelope time constant; all three hold one value per channel.
type FIR struct {
	F0           []unit.Quantity
	C            []float64
	TimeConstant []unit.Quantity
}

// Kind returns cascade.GammachirpFIR.
func (FIR) Kind() cascade.Kind { return cascade.GammachirpFIR }

// Taps returns the FIR length at sampleRate: the number of sample instants in
// [0, 4 ms).
func Taps(fs float64) int {
	return int(math.Ceil(firDurationMs / (1000 / fs)))
}

// Design returns one stage of order Taps(fs)-1 with denominator [1, 0, ...].
func (g FIR) Design(sampleRate unit.Quantity) (*cascade.Tensor, error) {
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	n := len(g.F0)
	if n == 0 {
		return nil, fmt.Errorf("%w: no carrier frequencies", cascade.ErrConfig)
	}
	if len(g.C) != n || len(g.TimeConstant) != n {
		return nil, fmt.Errorf("%w: %d carriers, %d glides, %d time constants",
			cascade.ErrConfig, n, len(g.C), len(g.TimeConstant))
	}
	f0, err := unit.ToHz(g.F0)
	if err != nil {
		return nil, fmt.Errorf("carrier frequency: %w", err)
	}
	tc, err := unit.ToSeconds(g.TimeConstant)
	if err != nil {
		return nil, fmt.Errorf("time constant: %w", err)
	}

	taps := Taps(fs)
	stage := cascade.NewStage(n, taps-1)
	for ch := 0; ch < n; ch++ {
		if !(tc[ch] > 0) {
			return nil, fmt.Errorf("%w: time constant %d must be > 0: %g", cascade.ErrConfig, ch, tc[ch])
		}
		err := impulseResponse(stage.B[ch], fs, f0[ch]/1000, g.C[ch]/1e6, tc[ch]*1000)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		stage.A[ch][0] = 1
	}
	t := cascade.New(cascade.GammachirpFIR, fs, n)
	if err := t.AddStage(stage); err != nil {
		return nil, err
	}
	return t, nil
}

// impulseResponse fills dst with the gammachirp taps. f0 is in kHz, glide in
// kHz/ms and tc in ms.
func impulseResponse(dst []float64, fs, f0, glide, tc float64) error {
	step := 1000 / fs
	tmax := tc * (firGamma - 1)
	norm := firAmplitude / (math.Pow(tmax, firGamma-1) * math.Exp(1-firGamma))
	for i := range dst {
		t := float64(i)*step - firDelay
		env := t + tmax
		if env <= 0 {
			dst[i] = 0
			continue
		}
		carrier := math.Cos(2*math.Pi*(f0*t+glide/2*t*t) + firPhase)
		dst[i] = norm*math.Pow(env, firGamma-1)*math.Exp(-env/tc)*carrier + firBias
	}
	peak := floats.Max(dst)
	if !(peak > 0) || math.IsInf(peak, 0) {
		return fmt.Errorf("%w: gammachirp response peak %v", cascade.ErrDegenerate, peak)
	}
	vecmath.ScaleBlockInPlace(dst, 1/(peak*firPeakDivisor))
	return nil
}
