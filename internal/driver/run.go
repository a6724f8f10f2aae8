package driver

import (
	"fmt"
	"io"
	"os"

	"jlmgo/internal/construct"
	"jlmgo/internal/destruct"
	"jlmgo/internal/errors"
	"jlmgo/internal/format/text"
	"jlmgo/internal/stats"
)

// Run executes one invocation of the pass driver: parse the input module,
// construct it into RVSDG, run cfg.Passes in the order ParseArgs recorded
// them, destruct the result back into cfgir, and write it to cfg.Output
// in cfg.Format — then, if any --print-X-stat flag selected a pass,
// append its recorded statistics to cfg.StatsFile. Reporter formats
// whatever *errors.UserError Run returns; Run itself never recovers an
// *errors.InvariantViolation panic, since that belongs to the process
// boundary (see RunMain).
func Run(cfg *Config, reporter *errors.Reporter) error {
	src, err := os.ReadFile(cfg.Input)
	if err != nil {
		return errors.New(errors.InvalidInput, cfg.Input, "cannot read input: %s", err)
	}

	m, err := text.Parse(cfg.Input, string(src))
	if err != nil {
		return err
	}

	g, err := construct.Module(m)
	if err != nil {
		return err
	}

	rec := stats.NewRecorder()
	for _, pass := range cfg.Passes {
		p := pass
		if cfg.StatsNames[pass.Name()] {
			p = rec.Instrument(pass)
		}
		changed := p.Run(g)
		fmt.Fprintln(os.Stderr, reporter.PassProgress(pass.Name(), changed, pass.Description()))
	}

	out := destruct.Module(g)

	w, closeFn, err := openOutput(cfg.Output)
	if err != nil {
		return errors.New(errors.InvalidInput, cfg.Output, "cannot open output: %s", err)
	}
	defer closeFn()

	switch cfg.Format {
	case FormatXML:
		err = text.WriteXML(out, w)
	default:
		err = text.WriteLLVM(out, w)
	}
	if err != nil {
		return errors.New(errors.InvalidInput, cfg.Output, "cannot write output: %s", err)
	}

	if cfg.StatsFile != "" {
		if err := writeStats(cfg.StatsFile, rec); err != nil {
			return errors.New(errors.InvalidInput, cfg.StatsFile, "cannot write stats: %s", err)
		}
	}

	fmt.Fprintln(os.Stderr, reporter.Success("done"))
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeStats(path string, rec *stats.Recorder) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return rec.WriteTo(f)
}
