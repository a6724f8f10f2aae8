package construct

import (
	"github.com/bits-and-blooms/bitset"

	"jlmgo/internal/aggregate"
	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// walkBranch builds a gamma node for a branch aggregation node:
// the split block's tacs run in the parent region first (its last tac is
// the predicate, per the jlm match-tac convention), the union of every
// case's live-in demand becomes the gamma's entry variables, and the
// join's live-in demand becomes every subregion's result set; the join
// block's own tacs then run in the parent region against the merged
// scope.
func walkBranch(g *rvsdg.Graph, region *rvsdg.Region, tree *aggregate.Tree, sc scope, u *aggregate.Universe) (scope, *cfgir.CfgNode) {
	sc = emitBlock(g, region, tree.Split, sc)
	pred := predicateOf(tree.Split, sc)

	d := tree.Demand()
	errors.Check(d != nil, "construct: branch node has no demand annotation")

	entryVars := unionVars(u, d.CaseTops)
	entryOrigins := make([]rvsdg.Origin, len(entryVars))
	for i, v := range entryVars {
		entryOrigins[i] = lookup(sc, v)
	}

	liveOutVars := orderedVars(u, d.LiveOut)
	outputTypes := make([]types.Type, len(liveOutVars))
	for i, v := range liveOutVars {
		outputTypes[i] = v.T
	}

	node := g.NewGamma(region, pred, entryOrigins, outputTypes)
	for i, sub := range node.Subregions() {
		subSc := scope{}
		for j, v := range entryVars {
			subSc[v] = sub.Argument(j)
		}
		caseSc, _ := walk(g, sub, tree.Children[i], subSc, u)
		for _, v := range liveOutVars {
			sub.AddResult(lookup(caseSc, v))
		}
	}
	node.ValidateGamma()

	for i, v := range liveOutVars {
		sc[v] = node.Output(i)
	}

	sc = emitBlock(g, region, tree.Join, sc)
	return sc, tree.Join
}

// walkLoop builds a theta node for a loop aggregation node. Every
// variable currently in scope is threaded through as a loop-carried
// value: the body either redefines it (a genuine back-edge) or leaves it
// untouched, in which case its theta result is simply its own argument —
// a pass-through k<->k pair by construction. This is a coarser threading
// than the demand-minimal set the original calls for; later dead-node
// elimination (C7) prunes any pass-through port nothing inside the loop
// consumes, converging to the same result (see DESIGN.md).
func walkLoop(g *rvsdg.Graph, region *rvsdg.Region, tree *aggregate.Tree, sc scope, u *aggregate.Universe) (scope, *cfgir.CfgNode) {
	body := tree.Children[0]
	loopVars := scopeVarsOrdered(sc, u)
	loopOrigins := make([]rvsdg.Origin, len(loopVars))
	for i, v := range loopVars {
		loopOrigins[i] = lookup(sc, v)
	}

	node := g.NewTheta(region, loopOrigins)
	sub := node.Subregion(0)
	subSc := scope{}
	for i, v := range loopVars {
		subSc[v] = sub.Argument(i)
	}

	bodySc, lastBlock := walk(g, sub, body, subSc, u)
	pred := predicateOf(lastBlock, bodySc)
	sub.AddResult(pred)
	for _, v := range loopVars {
		sub.AddResult(lookup(bodySc, v))
	}
	node.ValidateTheta()

	for i, v := range loopVars {
		sc[v] = node.Output(i)
	}
	return sc, lastBlock
}

// unionVars decodes the union of several demand bitsets into a
// deterministic variable list, ordered by Universe bit index.
func unionVars(u *aggregate.Universe, sets []*bitset.BitSet) []*cfgir.Variable {
	union := bitset.New(u.Len())
	for _, s := range sets {
		union.InPlaceUnion(s)
	}
	return orderedVars(u, union)
}

// scopeVarsOrdered returns every variable bound in sc, ordered by
// Universe bit index.
func scopeVarsOrdered(sc scope, u *aggregate.Universe) []*cfgir.Variable {
	var out []*cfgir.Variable
	for i := uint(0); i < u.Len(); i++ {
		v := u.At(i)
		if _, ok := sc[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
