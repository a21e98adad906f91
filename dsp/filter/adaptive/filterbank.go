package adaptive

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-hears/dsp/filter/cascade"
	"github.com/cwbudde/algo-hears/dsp/filter/linear"
	"github.com/cwbudde/algo-hears/dsp/stream"
	"github.com/cwbudde/algo-hears/dsp/unit"
)

const (
	// MinCenter is the lower clamp of the center frequency.
	MinCenter = 50.0
	// NyquistMargin is the distance below Nyquist the upper clamp resets to.
	NyquistMargin = 1000.0
)

// Params configures the center-frequency processes.
type Params struct {
	// Coeff is 1/Q of every bandpass.
	Coeff float64
	// M is the mean center frequency of each channel.
	M []unit.Quantity
	// S is the standard deviation of each channel's center frequency.
	S []unit.Quantity
	// Tau is the time constant of each channel's process.
	Tau []unit.Quantity
}

type config struct {
	seed     uint64
	interval int
	engine   []linear.Option
}

func defaultConfig() config {
	return config{seed: 1, interval: 1}
}

// Option configures a Filterbank.
type Option func(*config)

// WithSeed seeds the noise source. Equal seeds give equal runs.
func WithSeed(seed uint64) Option {
	return func(cfg *config) { cfg.seed = seed }
}

// WithUpdateInterval sets how many frames pass between center-frequency
// updates in Process. The process time step scales accordingly.
func WithUpdateInterval(frames int) Option {
	return func(cfg *config) {
		if frames > 0 {
			cfg.interval = frames
		}
	}
}

// WithEngineOptions passes options to the underlying linear engine.
func WithEngineOptions(opts ...linear.Option) Option {
	return func(cfg *config) { cfg.engine = append(cfg.engine, opts...) }
}

// Filterbank is a bank of bandpass filters with drifting center
// frequencies. It is not safe for concurrent use.
type Filterbank struct {
	fs       float64
	q, bw    float64
	m, s     []float64
	tau      []float64
	fc       []float64
	interval int
	phase    int
	pcg      *rand.PCG
	noise    distuv.Normal
	engine   *linear.Engine

	// Scratch for update and the pre-call snapshot.
	next  []float64
	secs  []cascade.Section
	saved snapshot
}

// snapshot is everything Process mutates.
type snapshot struct {
	fc    []float64
	state *linear.State
	pcg   rand.PCG
	phase int
}

// New returns a filterbank whose channels start at their mean center
// frequencies.
func New(sampleRate unit.Quantity, p Params, opts ...Option) (*Filterbank, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	fs, err := cascade.RateHz(sampleRate)
	if err != nil {
		return nil, err
	}
	if fs/2-NyquistMargin < MinCenter {
		return nil, fmt.Errorf("%w: sample rate %g Hz leaves no room for the center frequency", cascade.ErrConfig, fs)
	}
	m, err := unit.ToHz(p.M)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	s, err := unit.ToHz(p.S)
	if err != nil {
		return nil, fmt.Errorf("deviation: %w", err)
	}
	tau, err := unit.ToSeconds(p.Tau)
	if err != nil {
		return nil, fmt.Errorf("time constant: %w", err)
	}
	if len(m) == 0 || len(s) != len(m) || len(tau) != len(m) {
		return nil, fmt.Errorf("%w: need one mean, deviation and time constant per channel, got %d, %d, %d",
			cascade.ErrConfig, len(m), len(s), len(tau))
	}
	for i := range tau {
		if !(tau[i] > 0) || s[i] < 0 {
			return nil, fmt.Errorf("%w: channel %d needs tau > 0 and s >= 0", cascade.ErrConfig, i)
		}
	}

	t, err := Bandpass{CF: p.M, Coeff: p.Coeff}.Design(sampleRate)
	if err != nil {
		return nil, err
	}
	e, err := linear.NewEngine(t, cfg.engine...)
	if err != nil {
		return nil, err
	}
	q := 1 / p.Coeff
	pcg := rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)
	n := len(m)
	return &Filterbank{
		fs:       fs,
		q:        q,
		bw:       OctaveBandwidth(q),
		m:        m,
		s:        s,
		tau:      tau,
		fc:       append([]float64(nil), m...),
		interval: cfg.interval,
		pcg:      pcg,
		noise:    distuv.Normal{Mu: 0, Sigma: 1, Src: pcg},
		engine:   e,
		next:     make([]float64, n),
		secs:     make([]cascade.Section, n),
		saved: snapshot{
			fc:    make([]float64, n),
			state: e.State().Clone(),
		},
	}, nil
}

// SampleRate returns the sample rate in hertz.
func (f *Filterbank) SampleRate() float64 { return f.fs }

// Channels returns the channel count.
func (f *Filterbank) Channels() int { return len(f.fc) }

// CenterFrequencies returns a copy of the current center frequencies in
// hertz.
func (f *Filterbank) CenterFrequencies() []float64 {
	return append([]float64(nil), f.fc...)
}

// Tensor returns the current coefficients.
func (f *Filterbank) Tensor() *cascade.Tensor { return f.engine.Tensor() }

// Reset zeroes the filter state and restarts every channel at its mean.
// The noise source continues.
func (f *Filterbank) Reset() {
	f.engine.Reset()
	copy(f.fc, f.m)
	f.phase = 0
	f.commit()
}

// update advances every channel by dt seconds. All sections are computed
// before any is installed.
func (f *Filterbank) update(dt float64) error {
	sq := math.Sqrt(dt)
	hi := f.fs/2 - NyquistMargin
	for i, fc := range f.fc {
		mu := f.m[i] / f.tau[i]
		sigma := math.Sqrt2 * f.s[i] / math.Sqrt(f.tau[i])
		fc = fc - fc/f.tau[i]*dt + mu*dt + sigma*f.noise.Rand()*sq
		if math.IsNaN(fc) {
			return fmt.Errorf("%w: channel %d center frequency is NaN", cascade.ErrDegenerate, i)
		}
		bwHz := fc / f.q
		if fc <= MinCenter {
			fc = MinCenter
		}
		if fc+bwHz/2 >= f.fs/2 || fc > hi {
			fc = hi
		}
		sec := section(fc, f.fs, f.bw)
		if !finite(sec.B) || !finite(sec.A) {
			return fmt.Errorf("%w: channel %d at %g Hz has non-finite coefficients", cascade.ErrDegenerate, i, fc)
		}
		f.next[i] = fc
		f.secs[i] = sec
	}
	for i, sec := range f.secs {
		if err := f.engine.SetSection(0, i, sec); err != nil {
			return err
		}
	}
	copy(f.fc, f.next)
	return nil
}

// commit installs the sections of the current center frequencies.
func (f *Filterbank) commit() {
	for i, fc := range f.fc {
		// Sections of clamped center frequencies are always finite.
		_ = f.engine.SetSection(0, i, section(fc, f.fs, f.bw))
	}
}

func (f *Filterbank) save() {
	copy(f.saved.fc, f.fc)
	_ = f.saved.state.CopyFrom(f.engine.State())
	f.saved.pcg = *f.pcg
	f.saved.phase = f.phase
}

func (f *Filterbank) restore() {
	copy(f.fc, f.saved.fc)
	_ = f.engine.State().CopyFrom(f.saved.state)
	*f.pcg = f.saved.pcg
	f.phase = f.saved.phase
	f.commit()
}

// Step filters one frame, one sample per channel or a single sample shared
// by all channels. It is Process on a single frame and follows the same
// update schedule, so Step and Process calls can be mixed.
func (f *Filterbank) Step(x []float64) ([]float64, error) {
	out := stream.NewBlock(1, len(f.fc))
	if err := f.Process(out, stream.Block{Data: x, Frames: 1, Channels: len(x)}); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Process filters src into dst, updating the center frequencies once every
// update interval. src has one channel per filter or a single shared
// channel; dst must have one channel per filter and src.Frames frames.
//
// When the output or the filter state becomes non-finite, Process returns
// cascade.ErrDegenerate and the bank is rolled back to its state before the
// call, noise source included. The contents of dst are then unspecified.
func (f *Filterbank) Process(dst, src stream.Block) error {
	n := len(f.fc)
	if err := src.Validate(); err != nil {
		return err
	}
	if err := dst.Validate(); err != nil {
		return err
	}
	if src.Channels != 1 && src.Channels != n {
		return fmt.Errorf("%w: input has %d channels, bank has %d", stream.ErrShape, src.Channels, n)
	}
	if dst.Channels != n || dst.Frames != src.Frames {
		return fmt.Errorf("%w: output %dx%d, want %dx%d", stream.ErrShape, dst.Frames, dst.Channels, src.Frames, n)
	}

	f.save()
	if err := f.process(dst, src); err != nil {
		f.restore()
		return err
	}
	return nil
}

func (f *Filterbank) process(dst, src stream.Block) error {
	dt := float64(f.interval) / f.fs
	shared := src.Channels == 1 && len(f.fc) != 1
	for pos := 0; pos < src.Frames; {
		if f.phase == 0 {
			if err := f.update(dt); err != nil {
				return err
			}
		}
		end := min(pos+f.interval-f.phase, src.Frames)
		out := dst.Slice(pos, end)
		var err error
		if shared {
			err = f.engine.ProcessShared(out, src.Data[pos:end])
		} else {
			err = f.engine.Process(out, src.Slice(pos, end))
		}
		if err != nil {
			return err
		}
		if !out.Finite() || !f.engine.State().Finite() {
			return fmt.Errorf("%w: output diverged in frames [%d, %d)", cascade.ErrDegenerate, pos, end)
		}
		f.phase = (f.phase + end - pos) % f.interval
		pos = end
	}
	return nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Bank drives a Filterbank from an upstream source and is itself a
// stream.Source.
type Bank struct {
	src  stream.Source
	bank *Filterbank
}

// NewBank returns a bank filtering src. The source must be mono or have one
// channel per process in p.
func NewBank(src stream.Source, p Params, opts ...Option) (*Bank, error) {
	fb, err := New(src.SampleRate(), p, opts...)
	if err != nil {
		return nil, err
	}
	if c := src.Channels(); c != 1 && c != fb.Channels() {
		return nil, fmt.Errorf("%w: source has %d channels, bank has %d", stream.ErrShape, c, fb.Channels())
	}
	return &Bank{src: src, bank: fb}, nil
}

// SampleRate returns the upstream sample rate.
func (b *Bank) SampleRate() unit.Quantity { return b.src.SampleRate() }

// Channels returns the number of filters.
func (b *Bank) Channels() int { return b.bank.Channels() }

// Filterbank returns the adaptive filters.
func (b *Bank) Filterbank() *Filterbank { return b.bank }

// Read pulls a block upstream and filters it.
func (b *Bank) Read(frames int) (stream.Block, error) {
	in, err := b.src.Read(frames)
	if err != nil {
		return stream.Block{}, err
	}
	out := stream.NewBlock(in.Frames, b.bank.Channels())
	if err := b.bank.Process(out, in); err != nil {
		return stream.Block{}, err
	}
	return out, nil
}
