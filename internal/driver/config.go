// Package driver wires the CLI surface together: argument parsing,
// pass-pipeline assembly, and the read-transform-write loop
// cmd/middle-end's main delegates to. Grounded on a CLI entry point that
// hand-parses os.Args directly rather than reaching for a flag library —
// generalized here to the repeated `--OPT`/`--print-X-stat` flags this
// pass driver is built around, since a library like spf13/cobra or
// spf13/pflag would normalize away the one thing that matters about
// them: the order they're given in, which fixes the order passes run in.
package driver

import (
	"strconv"
	"strings"

	"jlmgo/internal/errors"
	"jlmgo/internal/passes"
	"jlmgo/internal/passes/cne"
	"jlmgo/internal/passes/dne"
	"jlmgo/internal/passes/inline"
	"jlmgo/internal/passes/motion"
)

// Format selects the output encoding -o writes.
type Format int

const (
	FormatLLVM Format = iota
	FormatXML
)

// Config is a fully parsed invocation of the pass driver.
type Config struct {
	Input      string
	Output     string // "" means stdout
	StatsFile  string // "" means no stats file is written
	Format     Format
	Passes     []passes.Pass
	StatsNames map[string]bool // pass Name() values selected by --print-X-stat
}

// passBuilders maps each `--OPT` flag to the passes.Pass it selects,
// in the order the flag table lists them. --url is handled separately
// since it alone takes an optional `=N` argument.
var passBuilders = map[string]func() passes.Pass{
	"--cne":                       func() passes.Pass { return cne.Pass{} },
	"--dne":                       func() passes.Pass { return dne.Pass{} },
	"--iln":                       func() passes.Pass { return inline.Inline{} },
	"--InvariantValueRedirection": func() passes.Pass { return inline.IVR{} },
	"--psh":                       func() passes.Pass { return motion.PushOut{} },
	"--pll":                       func() passes.Pass { return motion.PullIn{} },
	"--red":                       func() passes.Pass { return normalizePass{} },
	"--ivt":                       func() passes.Pass { return motion.ThetaGammaInvert{} },
	"--AASteensgaardBasic":        func() passes.Pass { return steensgaardBasicPass{} },
}

// ParseArgs hand-parses args (normally os.Args[1:]) into a Config,
// left to right, so that repeated `--OPT` flags select passes in the
// exact order they appear on the command line: the CLI's repeated
// --OPT flags are the configuration, order-of-appearance significant.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{Format: FormatLLVM, StatsNames: map[string]bool{}}
	var input string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-o":
			i++
			if i >= len(args) {
				return nil, errors.New(errors.InvalidInput, "", "-o requires an output file argument")
			}
			cfg.Output = args[i]

		case a == "-s":
			i++
			if i >= len(args) {
				return nil, errors.New(errors.InvalidInput, "", "-s requires a stats file argument")
			}
			cfg.StatsFile = args[i]

		case a == "--llvm":
			cfg.Format = FormatLLVM

		case a == "--xml":
			cfg.Format = FormatXML

		case a == "--url" || strings.HasPrefix(a, "--url="):
			factor := motion.DefaultUnrollFactor
			if strings.HasPrefix(a, "--url=") {
				n, err := strconv.Atoi(strings.TrimPrefix(a, "--url="))
				if err != nil {
					return nil, errors.New(errors.InvalidInput, "", "--url: invalid factor %q", a)
				}
				factor = n
			}
			cfg.Passes = append(cfg.Passes, motion.Unroll{Factor: factor})

		case strings.HasPrefix(a, "--print-") && strings.HasSuffix(a, "-stat"):
			name := strings.TrimSuffix(strings.TrimPrefix(a, "--print-"), "-stat")
			cfg.StatsNames[statPassName(name)] = true

		case strings.HasPrefix(a, "--"):
			build, ok := passBuilders[a]
			if !ok {
				return nil, errors.New(errors.InvalidInput, "", "unknown flag %q", a)
			}
			cfg.Passes = append(cfg.Passes, build())

		default:
			if input != "" {
				return nil, errors.New(errors.InvalidInput, "", "unexpected extra argument %q (input already set to %q)", a, input)
			}
			input = a
		}
	}

	if input == "" {
		return nil, errors.New(errors.InvalidInput, "", "missing input file")
	}
	cfg.Input = input
	return cfg, nil
}

// statPassName maps a --print-X-stat flag's X to the Name() the matching
// pass actually reports, for the handful of flags whose short form
// (matching the --OPT flag table) isn't already the pass's own Name().
func statPassName(short string) string {
	switch strings.ToLower(short) {
	case "cne":
		return cne.Pass{}.Name()
	case "dne":
		return dne.Pass{}.Name()
	case "iln":
		return inline.Inline{}.Name()
	case "ivr", "invariantvalueredirection":
		return inline.IVR{}.Name()
	case "psh":
		return motion.PushOut{}.Name()
	case "pll":
		return motion.PullIn{}.Name()
	case "red":
		return normalizePass{}.Name()
	case "ivt":
		return motion.ThetaGammaInvert{}.Name()
	case "url":
		return motion.Unroll{}.Name()
	case "aasteensgaardbasic":
		return steensgaardBasicPass{}.Name()
	default:
		return short
	}
}

func (f Format) String() string {
	if f == FormatXML {
		return "xml"
	}
	return "llvm"
}
