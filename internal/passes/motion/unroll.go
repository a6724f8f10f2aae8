package motion

import (
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
)

// Unroll implements loop unrolling: given a factor, replicate a
// theta's body that many times back-to-back into one new theta whose own
// continuation test is the conjunction of every copy's individual test
// (PredicateAndOp, by the convention documented alongside it: value 1
// continues, 0 exits — so the new theta only loops again once every copy
// in the block agreed to), then peel the residual into a second,
// ordinary (factor-1) theta fed from the unrolled theta's outputs to
// finish off however many iterations (0..Factor-1) the conjunction didn't
// cover. Grounded on the same reference pass-interface shape; the conjunction
// convention itself is a local design choice since which of a
// theta's two control values means "continue" is otherwise unspecified.
type Unroll struct {
	Factor int
}

func (Unroll) Name() string { return "loop-unrolling" }
func (Unroll) Description() string {
	return "replicates a theta's body Factor times with a residual cleanup loop"
}

func (u Unroll) Run(g *rvsdg.Graph) bool {
	factor := u.Factor
	if factor < 2 {
		factor = DefaultUnrollFactor
	}
	return unrollRegion(g, g.Root(), factor)
}

func unrollRegion(g *rvsdg.Graph, region *rvsdg.Region, factor int) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if unrollRegion(g, sub, factor) {
				changed = true
			}
		}
	}
	for _, n := range region.Nodes() {
		if n.Kind() == rvsdg.KindTheta && unrollOne(g, n, factor) {
			changed = true
		}
	}
	return changed
}

func unrollOne(g *rvsdg.Graph, theta *rvsdg.Node, factor int) bool {
	sub := theta.Subregion(0)
	k := theta.NInputs()
	outer := theta.Region()

	initials := make([]rvsdg.Origin, k)
	for i := 0; i < k; i++ {
		initials[i] = theta.Input(i).Origin()
	}

	unrolled := g.NewTheta(outer, initials)
	unrolledSub := unrolled.Subregion(0)

	curArgs := make([]rvsdg.Origin, k)
	for i := 0; i < k; i++ {
		curArgs[i] = unrolledSub.Argument(i)
	}

	var preds []rvsdg.Origin
	for c := 0; c < factor; c++ {
		results := g.CloneRegionInto(sub, unrolledSub, curArgs)
		preds = append(preds, results[0])
		curArgs = append([]rvsdg.Origin(nil), results[1:]...)
	}

	combined := preds[0]
	for i := 1; i < len(preds); i++ {
		andNode := g.CreateNode(unrolledSub, ops.PredicateAndOp{}, []rvsdg.Origin{combined, preds[i]})
		combined = andNode.Output(0)
	}

	unrolledSub.AddResult(combined)
	for _, v := range curArgs {
		unrolledSub.AddResult(v)
	}

	residualInitials := make([]rvsdg.Origin, k)
	for i := 0; i < k; i++ {
		residualInitials[i] = unrolled.Output(i)
	}
	residual := g.NewTheta(outer, residualInitials)
	residualSub := residual.Subregion(0)
	residualArgs := make([]rvsdg.Origin, k)
	for i := 0; i < k; i++ {
		residualArgs[i] = residualSub.Argument(i)
	}
	residualResults := g.CloneRegionInto(sub, residualSub, residualArgs)
	for _, r := range residualResults {
		residualSub.AddResult(r)
	}

	for i := 0; i < k; i++ {
		g.DivertUsers(theta.Output(i), residual.Output(i))
	}
	g.RemoveNode(theta)
	return true
}
