package driver

import (
	"fmt"
	"os"

	"jlmgo/internal/errors"
)

// RunMain is cmd/middle-end's entire body: parse args, run the driver,
// and map whatever went wrong to the documented exit codes. It is the
// one place an *errors.InvariantViolation panic is allowed to surface
// past a recover — every pass and helper below it raises one only to
// abort immediately, never to be handled locally.
func RunMain(args []string) (code int) {
	reporter := errors.NewReporter()

	defer func() {
		if r := recover(); r != nil {
			iv, ok := r.(*errors.InvariantViolation)
			if !ok {
				panic(r)
			}
			fmt.Fprint(os.Stderr, reporter.FormatInvariant(iv))
			code = 3
		}
	}()

	cfg, err := ParseArgs(args)
	if err != nil {
		return reportErr(reporter, err)
	}

	if err := Run(cfg, reporter); err != nil {
		return reportErr(reporter, err)
	}
	return 0
}

func reportErr(reporter *errors.Reporter, err error) int {
	ue, ok := err.(*errors.UserError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(os.Stderr, reporter.FormatUserError(ue))
	return ue.Code.ExitCode()
}
