package motion

import "jlmgo/internal/rvsdg"

// PullIn sinks a node that feeds a gamma purely as an entry variable used
// by exactly one subregion into that subregion, duplicating whatever
// external inputs it still needs as fresh entry variables scoped to the
// same subregion — the push-out's inverse.
type PullIn struct{}

func (PullIn) Name() string { return "pull-in" }
func (PullIn) Description() string {
	return "sinks single-subregion-only entry variables into their gamma subregion"
}

func (PullIn) Run(g *rvsdg.Graph) bool {
	return pullRegion(g, g.Root())
}

func pullRegion(g *rvsdg.Graph, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if pullRegion(g, sub) {
				changed = true
			}
		}
	}
	for _, n := range region.Nodes() {
		if n.Kind() == rvsdg.KindGamma {
			if pullIntoGamma(g, n) {
				changed = true
			}
		}
	}
	return changed
}

func pullIntoGamma(g *rvsdg.Graph, gamma *rvsdg.Node) bool {
	changed := false
	for {
		progressed := false
		numEntry := gamma.NInputs() - 1
		for j := 0; j < numEntry; j++ {
			k := soleConsumingSubregion(gamma, j)
			if k < 0 {
				continue
			}
			if pullArgumentIntoSubregion(g, gamma, k, j) {
				progressed, changed = true, true
			}
		}
		if !progressed {
			break
		}
	}
	return changed
}

// soleConsumingSubregion returns the index of the one subregion whose
// entry-variable argument j still has users, or -1 if zero or more than
// one subregion does.
func soleConsumingSubregion(gamma *rvsdg.Node, j int) int {
	found := -1
	for si, sub := range gamma.Subregions() {
		if len(sub.Argument(j).Users()) > 0 {
			if found >= 0 {
				return -1
			}
			found = si
		}
	}
	return found
}

// pullArgumentIntoSubregion moves entry variable j's producing node bodily
// into subregion k, once k is its only real consumer. Any of that node's
// own operands still living outside the gamma are imported as additional
// entry variables (shared structurally across every subregion,
// though only k's copy ends up used).
func pullArgumentIntoSubregion(g *rvsdg.Graph, gamma *rvsdg.Node, k, j int) bool {
	subK := gamma.Subregion(k)
	arg := subK.Argument(j)

	producer, ok := gamma.Input(j + 1).Origin().(*rvsdg.Output)
	if !ok {
		return false
	}
	sn := producer.Node()
	if sn.Kind() != rvsdg.KindSimple || sn.NOutputs() != 1 || len(producer.Users()) != 1 {
		return false
	}

	for _, in := range sn.Inputs() {
		newArgs := g.AddGammaEntryVar(gamma, in.Origin())
		g.RewireInput(in, newArgs[k])
	}
	g.MoveNode(sn, subK, nil)
	g.DivertUsers(arg, sn.Output(0))
	return true
}
