package dne

import "jlmgo/internal/rvsdg"

// Pass implements passes.Pass for dead-node elimination: mark every
// output/argument reachable backward from the top-level region's results,
// then sweep away whatever the mark phase never reached.
type Pass struct{}

func (Pass) Name() string { return "dead-node-elimination" }

func (Pass) Description() string {
	return "removes nodes, arguments and results with no live consumer"
}

func (Pass) Run(g *rvsdg.Graph) bool {
	lv := mark(g)
	return sweep(g, lv)
}
