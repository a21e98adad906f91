package linear

import "fmt"

// Kernel selects the inner loop used by an Engine.
type Kernel int

const (
	// Scalar filters channel by channel. It is the default.
	Scalar Kernel = iota
	// Vector filters frame by frame across all channels at once.
	Vector
)

func (k Kernel) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

// Precision is the resolution of output samples.
type Precision int

const (
	Float64 Precision = iota
	// Float32 rounds every output sample to float32. State is kept in
	// float64.
	Float32
)

func (p Precision) String() string {
	switch p {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

// Config holds the runtime settings of an Engine.
type Config struct {
	Kernel    Kernel
	Precision Precision
	// Workers is the number of goroutines the scalar kernel splits channels
	// across. 1 runs inline.
	Workers int
}

// DefaultConfig returns a single-threaded scalar float64 configuration.
func DefaultConfig() Config {
	return Config{
		Kernel:    Scalar,
		Precision: Float64,
		Workers:   1,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithKernel selects the inner loop.
func WithKernel(k Kernel) Option {
	return func(cfg *Config) {
		if k == Scalar || k == Vector {
			cfg.Kernel = k
		}
	}
}

// WithPrecision sets the output sample resolution.
func WithPrecision(p Precision) Option {
	return func(cfg *Config) {
		if p == Float64 || p == Float32 {
			cfg.Precision = p
		}
	}
}

// WithWorkers sets the goroutine count of the scalar kernel. Values below 1
// are ignored.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

func applyOptions(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
