// Package passes defines the optimization-pass interface shared by every
// pass under internal/passes/*, mirroring an OptimizationPass/
// OptimizationPipeline shape generalized from a Program-level pass list
// to an RVSDG graph.
package passes

import "jlmgo/internal/rvsdg"

// Pass is one optimization over a whole graph. Run reports whether it
// changed anything, the same convention an OptimizationPass
// uses for its Apply method.
type Pass interface {
	Name() string
	Description() string
	Run(g *rvsdg.Graph) bool
}

// Pipeline runs a fixed, ordered list of passes, matching an
// OptimizationPipeline.Run loop (run each pass once, report what changed).
type Pipeline struct {
	passes []Pass
}

func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run executes every pass once, in order, and reports whether any pass
// changed the graph.
func (p *Pipeline) Run(g *rvsdg.Graph) bool {
	changed := false
	for _, pass := range p.passes {
		if pass.Run(g) {
			changed = true
		}
	}
	return changed
}

// RunToFixpoint repeats the whole pass list until a full pass makes no
// further change, or maxRounds is reached (a defensive bound — monotone
// passes converge well before this in practice).
func RunToFixpoint(g *rvsdg.Graph, maxRounds int, passes ...Pass) {
	for i := 0; i < maxRounds; i++ {
		changed := false
		for _, pass := range passes {
			if pass.Run(g) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
