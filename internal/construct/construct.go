// Package construct implements RVSDG construction (C5): walking an
// annotated aggregation tree to emit RVSDG nodes into a fresh lambda,
// mirroring a region-local variable-to-value map style generalized from
// basic blocks to aggregation-tree nodes.
package construct

import (
	"github.com/bits-and-blooms/bitset"

	"jlmgo/internal/aggregate"
	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
	"jlmgo/internal/rvsdg"
)

// scope maps a cfgir variable to the RVSDG origin currently holding its
// value in the region being built; it is passed by value (a map header)
// and threaded through the walk so each subregion gets its own view
// without mutating an enclosing region's bindings.
type scope map[*cfgir.Variable]rvsdg.Origin

// Function builds fn's body as a lambda node in region, returning the
// lambda node. tree must be fn.Cfg's aggregation tree, already annotated
// by aggregate.Annotate with universe u.
func Function(g *rvsdg.Graph, region *rvsdg.Region, fn *cfgir.Function, tree *aggregate.Tree, u *aggregate.Universe) *rvsdg.Node {
	lambda := g.NewLambda(region, fn.Name, rvsdg.LinkageExternal, nil, fn.ParamTypes, fn.ResultTypes)
	sub := lambda.Subregion(0)

	walk(g, sub, tree, scope{}, u)

	lambda.ValidateLambda(fn.ResultTypes)
	return lambda
}

// walk emits tree's nodes into region, threading sc, and returns the
// resulting scope plus the cfgir block most recently executed — used by
// an enclosing theta to locate its continuation predicate: loops are
// tail-controlled, so the predicate is the last tac of the last block a
// loop body executes.
func walk(g *rvsdg.Graph, region *rvsdg.Region, tree *aggregate.Tree, sc scope, u *aggregate.Universe) (scope, *cfgir.CfgNode) {
	switch tree.Kind {
	case aggregate.KindEntry:
		attr, ok := tree.Block.Attr.(cfgir.EntryAttr)
		errors.Check(ok, "construct: entry leaf without EntryAttr")
		for i, v := range attr.Arguments {
			sc[v] = region.Argument(i)
		}
		return sc, tree.Block

	case aggregate.KindExit:
		attr, ok := tree.Block.Attr.(cfgir.ExitAttr)
		errors.Check(ok, "construct: exit leaf without ExitAttr")
		for _, v := range attr.Results {
			region.AddResult(lookup(sc, v))
		}
		return sc, tree.Block

	case aggregate.KindBlock:
		return emitBlock(g, region, tree.Block, sc), tree.Block

	case aggregate.KindLinear:
		var last *cfgir.CfgNode
		for _, c := range tree.Children {
			sc, last = walk(g, region, c, sc, u)
		}
		return sc, last

	case aggregate.KindBranch:
		return walkBranch(g, region, tree, sc, u)

	case aggregate.KindLoop:
		return walkLoop(g, region, tree, sc, u)

	default:
		errors.Invariant("construct: unknown aggregation kind %s", tree.Kind)
		return sc, nil
	}
}

func lookup(sc scope, v *cfgir.Variable) rvsdg.Origin {
	o, ok := sc[v]
	errors.Check(ok, "construct: variable %s has no value in scope", v.Name)
	return o
}

// emitBlock appends one simple node per tac in n's basic block, threading
// sc forward: a block emits a simple node per tac whose inputs are
// the SSA values for used variables, looked up in a variable→output map
// local to the current region.
func emitBlock(g *rvsdg.Graph, region *rvsdg.Region, n *cfgir.CfgNode, sc scope) scope {
	bb, ok := n.BasicBlock()
	if !ok {
		return sc
	}
	for _, tac := range bb.Tacs() {
		origins := make([]rvsdg.Origin, len(tac.Inputs))
		for i, v := range tac.Inputs {
			origins[i] = lookup(sc, v)
		}
		node := g.CreateNode(region, tac.Op, origins)
		for i, v := range tac.Outputs {
			sc[v] = node.Output(i)
		}
	}
	return sc
}

// predicateOf returns the origin of the control-typed value produced by
// n's last tac, the jlm match-tac convention a branch's split block (or a
// loop's tail block) must follow.
func predicateOf(n *cfgir.CfgNode, sc scope) rvsdg.Origin {
	bb, ok := n.BasicBlock()
	errors.Check(ok, "construct: branch/loop predicate block #%d is not a basic block", n.ID())
	last := bb.Last()
	errors.Check(last != nil, "construct: branch/loop predicate block #%d is empty", n.ID())
	errors.Check(len(last.Outputs) == 1, "construct: predicate tac must have exactly one output, got %d", len(last.Outputs))
	return lookup(sc, last.Outputs[0])
}

// orderedVars returns vars present in bs, ordered by their Universe bit
// index, for deterministic gamma/theta wiring regardless of map iteration
// order.
func orderedVars(u *aggregate.Universe, bs *bitset.BitSet) []*cfgir.Variable {
	var out []*cfgir.Variable
	for i := uint(0); i < u.Len(); i++ {
		if bs.Test(i) {
			out = append(out, u.At(i))
		}
	}
	return out
}
