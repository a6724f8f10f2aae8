package construct

import (
	"jlmgo/internal/aggregate"
	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
	"jlmgo/internal/rvsdg"
)

// Global builds gd's initializer as a delta node in region, given the
// origins feeding gd.Init's entry arguments in order: a GlobalData's
// initializer is a single basic block computing the initializer value.
func Global(g *rvsdg.Graph, region *rvsdg.Region, gd *cfgir.GlobalData, tree *aggregate.Tree, u *aggregate.Universe, depOrigins []rvsdg.Origin) *rvsdg.Node {
	delta := g.NewDelta(region, gd.Name, rvsdg.LinkageExternal, gd.Constant, gd.T, depOrigins)
	sub := delta.Subregion(0)

	walk(g, sub, tree, scope{}, u)

	delta.ValidateDelta(gd.T)
	return delta
}

// Module builds m's globals and functions into a single fresh graph,
// reducing each one's cfg and annotating it with demand sets before
// construction (C3/C4 feeding C5), the same per-cfg sequence
// construct_test.go runs by hand for a standalone cfg. Every delta and
// lambda it builds is also added as a result of the root region, so
// passes that seed liveness from the root results keep them. Imports are
// not built. Globals
// with dependency arguments are not supported here — nothing in
// internal/format/text's module grammar currently expresses a reference
// from one global's initializer to another, so Module only ever builds
// self-contained initializers (the module-linking work that would
// resolve such references through Import entries remains open — see
// DESIGN.md).
func Module(m *cfgir.Module) (*rvsdg.Graph, error) {
	g := rvsdg.NewGraph()

	for _, gd := range m.Globals {
		errors.Check(len(gd.Init.Entry().Attr.(cfgir.EntryAttr).Arguments) == 0,
			"construct: global %s has dependency arguments, which Module does not yet resolve", gd.Name)
		tree, err := aggregate.Reduce(gd.Init)
		if err != nil {
			return nil, err
		}
		u := aggregate.Annotate(gd.Init, tree)
		delta := Global(g, g.Root(), gd, tree, u, nil)
		g.Root().AddResult(delta.Output(0))
	}

	for _, fn := range m.Functions {
		tree, err := aggregate.Reduce(fn.Cfg)
		if err != nil {
			return nil, err
		}
		u := aggregate.Annotate(fn.Cfg, tree)
		lam := Function(g, g.Root(), fn, tree, u)
		g.Root().AddResult(lam.Output(0))
	}

	return g, nil
}
