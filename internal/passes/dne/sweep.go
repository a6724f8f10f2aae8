package dne

import "jlmgo/internal/rvsdg"

// sweep removes everything the mark phase left unreached: whole nodes
// with no live output, and individual dead ports on structural nodes that
// remain (partially) live. Traversal is bottom-up — subregions are swept
// before the region that contains them — so a structural node's own
// liveness decision never depends on stale state inside its subregions.
func sweep(g *rvsdg.Graph, lv *liveness) bool {
	return sweepRegion(g, lv, g.Root())
}

func sweepRegion(g *rvsdg.Graph, lv *liveness, region *rvsdg.Region) bool {
	changed := false
	nodes := region.Nodes()
	for _, n := range nodes {
		for _, sub := range n.Subregions() {
			if sweepRegion(g, lv, sub) {
				changed = true
			}
		}
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if anyOutputLive(lv, n) {
			if sweepPorts(g, lv, n) {
				changed = true
			}
			continue
		}
		if n.HasLiveUsers() {
			continue
		}
		g.RemoveNode(n)
		changed = true
	}
	return changed
}

func anyOutputLive(lv *liveness, n *rvsdg.Node) bool {
	for _, out := range n.Outputs() {
		if lv.isOutputLive(out) {
			return true
		}
	}
	return false
}

// sweepPorts trims dead ports from a structural node that itself remains
// live (at least one output is live), keeping input/output/argument/result
// correspondences intact per node kind: for structural nodes, also remove
// dead inputs/outputs/arguments/results in strict correspondence.
func sweepPorts(g *rvsdg.Graph, lv *liveness, n *rvsdg.Node) bool {
	changed := false
	switch n.Kind() {
	case rvsdg.KindLambda:
		sub := n.Subregion(0)
		for i := n.Lambda.NumContext - 1; i >= 0; i-- {
			if !lv.isArgLive(sub.Argument(i)) {
				g.RemoveLambdaContextVar(n, i)
				changed = true
			}
		}
	case rvsdg.KindTheta:
		sub := n.Subregion(0)
		for i := n.NInputs() - 1; i >= 0; i-- {
			if len(n.Output(i).Users()) == 0 && !lv.isArgLive(sub.Argument(i)) {
				g.RemoveThetaLoopVar(n, i)
				changed = true
			}
		}
	case rvsdg.KindGamma:
		for i := n.NOutputs() - 1; i >= 0; i-- {
			if len(n.Output(i).Users()) == 0 {
				g.RemoveGammaOutput(n, i)
				changed = true
			}
		}
		numEntryVars := n.NInputs() - 1
		for j := numEntryVars - 1; j >= 0; j-- {
			allDead := true
			for _, sub := range n.Subregions() {
				if lv.isArgLive(sub.Argument(j)) {
					allDead = false
					break
				}
			}
			if allDead {
				g.RemoveGammaEntryVar(n, j)
				changed = true
			}
		}
	case rvsdg.KindDelta:
		sub := n.Subregion(0)
		for i := n.NInputs() - 1; i >= 0; i-- {
			if !lv.isArgLive(sub.Argument(i)) {
				g.RemoveDeltaDepVar(n, i)
				changed = true
			}
		}
	case rvsdg.KindPhi:
		sub := n.Subregion(0)
		nNames := len(n.Phi.Names)
		for i := n.NInputs() - 1; i >= 0; i-- {
			if !lv.isArgLive(sub.Argument(nNames + i)) {
				g.RemovePhiExternalDep(n, i)
				changed = true
			}
		}
		// Individual dead (name, output) pairs are left in place: dropping
		// one would renumber every other subregion's self-reference
		// arguments (each bound lambda can call any sibling by name
		// index), and that cross-subregion renumbering is out of scope
		// here. Only the whole-node removal path above drops a phi, when
		// every one of its outputs is dead at once.
	}
	return changed
}
