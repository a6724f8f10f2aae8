package driver

import (
	"jlmgo/internal/passes"
	"jlmgo/internal/pointsto"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/rvsdg/normalize"
	"jlmgo/internal/stats"
)

// normalizePass adapts normalize.Enable (a direct function over a
// graph, not itself a passes.Pass) to passes.Pass, so --red can sit in
// the same ordered pipeline as every other flag.
type normalizePass struct{}

func (normalizePass) Name() string        { return "node-normalization" }
func (normalizePass) Description() string { return "rewrites every node family to its normal form" }

func (normalizePass) Run(g *rvsdg.Graph) bool {
	before := stats.CountNodes(g)
	normalize.Enable(g)
	return stats.CountNodes(g) != before
}

// steensgaardBasicPass adapts pointsto.Analyze + pointsto.BasicEncoder
// (an analysis followed by a one-shot rewrite, not itself a
// passes.Pass) to passes.Pass for --AASteensgaardBasic.
type steensgaardBasicPass struct{}

func (steensgaardBasicPass) Name() string { return "steensgaard-basic-encoding" }
func (steensgaardBasicPass) Description() string {
	return "runs Steensgaard's analysis and splits memory state by points-to class"
}

func (steensgaardBasicPass) Run(g *rvsdg.Graph) bool {
	ptg := pointsto.Analyze(g)
	enc := &pointsto.BasicEncoder{PTG: ptg}
	return enc.Encode(g)
}

var _ passes.Pass = normalizePass{}
var _ passes.Pass = steensgaardBasicPass{}
