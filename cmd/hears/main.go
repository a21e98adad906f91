// Command hears designs auditory filterbanks and inspects them.
//
// Usage:
//
//	hears [flags] <command> [command flags]
//
// Examples:
//
//	hears erb --low 100 --high 8000 --channels 16
//	hears design --family gammatone --channels 4 --coeffs
//	hears design --family iir --type ellip --passband 1000 --stopband 1500
//	hears response --family gammachirp --channels 8 --sample-rate 16000
//	hears adapt --mean 1000,2000 --deviation 200,300 --tau 0.01,0.02
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

var version = "0.1.0"

// CLI is the command-line interface.
type CLI struct {
	LogLevel   string           `help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error"`
	SampleRate float64          `short:"r" help:"Sample rate in Hz." default:"44100"`
	Version    kong.VersionFlag `short:"v" help:"Show version information."`

	Erb      ErbCmd      `cmd:"" help:"Print ERB-spaced center frequencies."`
	Design   DesignCmd   `cmd:"" help:"Design a filterbank and print its structure."`
	Response ResponseCmd `cmd:"" help:"Measure the impulse and magnitude response of a filterbank."`
	Adapt    AdaptCmd    `cmd:"" help:"Run the adaptive bandpass bank on noise and summarize the center frequencies."`
}

// app is bound into every command's Run method.
type app struct {
	out io.Writer
	log *log.Logger
	fs  float64
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hears"),
		kong.Description("Auditory filterbank designer"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "hears"})
	level, err := log.ParseLevel(cli.LogLevel)
	if err != nil {
		logger.Fatal("bad log level", "err", err)
	}
	logger.SetLevel(level)

	a := &app{out: os.Stdout, log: logger, fs: cli.SampleRate}
	if err := ctx.Run(a); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
