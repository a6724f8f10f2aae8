package motion

import (
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// ThetaGammaInvert rewrites `theta(gamma(pred, ...))` into
// `gamma(pred, theta(...), theta(...))` when
// a theta's entire body is a single gamma node whose predicate is
// loop-invariant and whose outputs directly supply every one of the
// theta's own subregion results (including the continuation predicate,
// result 0) — the case where a single branch decides both what the loop
// computes and whether it keeps going. Hoisting the branch outside the
// loop exposes case-specific optimization that would otherwise have to
// see through the shared loop structure.
type ThetaGammaInvert struct{}

func (ThetaGammaInvert) Name() string { return "theta-gamma-inversion" }
func (ThetaGammaInvert) Description() string {
	return "hoists a loop-invariant gamma outside its enclosing theta"
}

func (ThetaGammaInvert) Run(g *rvsdg.Graph) bool {
	return invertRegion(g, g.Root())
}

func invertRegion(g *rvsdg.Graph, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if invertRegion(g, sub) {
				changed = true
			}
		}
	}
	for _, n := range region.Nodes() {
		if n.Kind() == rvsdg.KindTheta && invert(g, n) {
			changed = true
		}
	}
	return changed
}

func invert(g *rvsdg.Graph, theta *rvsdg.Node) bool {
	sub := theta.Subregion(0)
	if sub.NNodes() != 1 {
		return false
	}
	gn := sub.Nodes()[0]
	if gn.Kind() != rvsdg.KindGamma {
		return false
	}
	k := theta.NInputs()
	if gn.NOutputs() != k+1 {
		return false
	}
	for i := 0; i <= k; i++ {
		out, ok := sub.Result(i).Origin().(*rvsdg.Output)
		if !ok || out.Node() != gn || out.Index() != i {
			return false
		}
	}

	predArg, ok := gn.Input(0).Origin().(*rvsdg.Argument)
	if !ok || predArg.Region() != sub || !isPassThroughLoopVar(sub, predArg.Index()) {
		return false
	}
	predIdx := predArg.Index()

	numEntry := gn.NInputs() - 1
	entryLoopVar := make([]int, numEntry)
	for j := 0; j < numEntry; j++ {
		arg, ok := gn.Input(j + 1).Origin().(*rvsdg.Argument)
		if !ok || arg.Region() != sub {
			return false
		}
		entryLoopVar[j] = arg.Index()
	}

	outer := theta.Region()
	externalPred := theta.Input(predIdx).Origin()
	outerInitials := make([]rvsdg.Origin, k)
	resultTypes := make([]types.Type, k)
	for i := 0; i < k; i++ {
		outerInitials[i] = theta.Input(i).Origin()
		resultTypes[i] = theta.Output(i).Type()
	}

	newGamma := g.NewGamma(outer, externalPred, outerInitials, resultTypes)
	for c, gsub := range gn.Subregions() {
		newSub := newGamma.Subregion(c)
		loopVars := make([]rvsdg.Origin, k)
		for i := 0; i < k; i++ {
			loopVars[i] = newSub.Argument(i)
		}
		newTheta := g.NewTheta(newSub, loopVars)
		newThetaSub := newTheta.Subregion(0)

		for j := 0; j < numEntry; j++ {
			g.DivertUsers(gsub.Argument(j), newThetaSub.Argument(entryLoopVar[j]))
		}
		for _, sn := range gsub.Nodes() {
			g.MoveNode(sn, newThetaSub, nil)
		}
		for i := 0; i <= k; i++ {
			newThetaSub.AddResult(gsub.Result(i).Origin())
		}

		for i := 0; i < k; i++ {
			newSub.AddResult(newTheta.Output(i))
		}
	}

	for i := 0; i < k; i++ {
		g.DivertUsers(theta.Output(i), newGamma.Output(i))
	}
	g.RemoveNode(theta)
	return true
}
