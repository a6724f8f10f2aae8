package motion

import "jlmgo/internal/passes"

// DefaultUnrollFactor is the documented default for the `--url` flag.
const DefaultUnrollFactor = 4

var (
	_ passes.Pass = PushOut{}
	_ passes.Pass = PullIn{}
	_ passes.Pass = ThetaGammaInvert{}
	_ passes.Pass = Unroll{}
)
