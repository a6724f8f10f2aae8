package aggregate

import (
	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
)

// rnode is a node of the working graph reduction operates over: initially
// one per cfgir.CfgNode, collapsing as T1/T2 steps fire until a single
// rnode remains (or no further step applies, the IrreducibleCfg case).
type rnode struct {
	tree  *Tree
	preds []*rnode
	succs []*rnode
}

// Reduce runs the classical interval/T1-T2 reduction over cfg,
// producing its aggregation tree. Each step chooses by reduction kind
// first (any self-loop, else any linear pair, else any branch) and,
// within that kind, takes the first candidate head in reverse postorder;
// this gives a deterministic, fully specified order among
// simultaneously-collapsible regions.
func Reduce(cfg *cfgir.Cfg) (*Tree, error) {
	nodes := initialNodes(cfg)

	for {
		if len(nodes) == 1 {
			return nodes[0].tree, nil
		}
		next, ok := reduceStep(nodes)
		if !ok {
			return nil, errors.New(errors.IrreducibleCfg, "", "no further T1/T2 reduction applies with %d regions remaining", len(nodes))
		}
		nodes = next
	}
}

func initialNodes(cfg *cfgir.Cfg) []*rnode {
	byCfg := map[*cfgir.CfgNode]*rnode{}
	nodes := make([]*rnode, 0, cfg.NNodes())
	for _, n := range cfg.Nodes() {
		var kind Kind
		switch {
		case n.IsEntry():
			kind = KindEntry
		case n.IsExit():
			kind = KindExit
		default:
			kind = KindBlock
		}
		rn := &rnode{tree: newLeaf(kind, n)}
		byCfg[n] = rn
		nodes = append(nodes, rn)
	}
	for _, n := range cfg.Nodes() {
		rn := byCfg[n]
		for _, s := range n.Successors {
			rn.succs = append(rn.succs, byCfg[s])
		}
		for _, p := range n.Predecessors {
			rn.preds = append(rn.preds, byCfg[p])
		}
	}
	return nodes
}

// reduceStep applies one reduction and returns the updated node list: the
// first self-loop in reverse postorder if any node has one, else the first
// linear head in reverse postorder, else the first branch split. ok is
// false iff no node qualifies as the head of any reduction.
func reduceStep(nodes []*rnode) ([]*rnode, bool) {
	for _, n := range reversePostorder(nodes) {
		if isSelfLoop(n) {
			return applySelfLoop(nodes, n), true
		}
	}
	for _, n := range reversePostorder(nodes) {
		if succ, ok := linearPartner(n); ok {
			return applyLinear(nodes, n, succ), true
		}
	}
	for _, n := range reversePostorder(nodes) {
		if join, cases, ok := branchPartners(n); ok {
			return applyBranch(nodes, n, join, cases), true
		}
	}
	return nodes, false
}

func isSelfLoop(n *rnode) bool {
	for _, s := range n.succs {
		if s == n {
			return true
		}
	}
	return false
}

func applySelfLoop(nodes []*rnode, n *rnode) []*rnode {
	n.succs = removeRnode(n.succs, n)
	n.preds = removeRnode(n.preds, n)
	n.tree = newLoop(n.tree)
	return nodes
}

// linearPartner reports whether n's single successor can be absorbed into
// n as a sequential composition: n has exactly one successor s, and s has
// exactly one predecessor, n.
func linearPartner(n *rnode) (*rnode, bool) {
	if len(n.succs) != 1 {
		return nil, false
	}
	s := n.succs[0]
	if s == n || len(s.preds) != 1 || s.preds[0] != n {
		return nil, false
	}
	return s, true
}

func applyLinear(nodes []*rnode, p, s *rnode) []*rnode {
	var children []*Tree
	if p.tree.Kind == KindLinear {
		children = append(children, p.tree.Children...)
	} else {
		children = append(children, p.tree)
	}
	if s.tree.Kind == KindLinear {
		children = append(children, s.tree.Children...)
	} else {
		children = append(children, s.tree)
	}
	merged := &rnode{tree: newLinear(children...), preds: p.preds, succs: s.succs}

	for _, pred := range p.preds {
		pred.succs = replaceRnode(pred.succs, p, merged)
	}
	for _, succ := range s.succs {
		succ.preds = replaceRnode(succ.preds, s, merged)
	}
	return replaceInList(nodes, []*rnode{p, s}, merged)
}

// branchPartners reports whether n is the split of a single-level
// if/switch diamond: n has two or more successors, each of which either is
// the same join node j directly (an empty case) or is a node whose sole
// predecessor is n and whose sole successor is j; j's only predecessors
// are exactly those case arms (so no control flow reaches the join by any
// other path).
func branchPartners(n *rnode) (join *rnode, cases []*rnode, ok bool) {
	if len(n.succs) < 2 {
		return nil, nil, false
	}

	var j *rnode
	expectedJoinPreds := make([]*rnode, 0, len(n.succs))
	for _, s := range n.succs {
		if s == n {
			return nil, nil, false
		}
		var candidate *rnode
		if len(s.preds) == 1 && s.preds[0] == n && len(s.succs) == 1 && s.succs[0] != n {
			candidate = s.succs[0]
			expectedJoinPreds = append(expectedJoinPreds, s)
		} else {
			candidate = s // direct edge into the join: an empty case
			expectedJoinPreds = append(expectedJoinPreds, n)
		}
		if j == nil {
			j = candidate
		} else if j != candidate {
			return nil, nil, false
		}
	}
	if j == nil || j == n || len(j.preds) != len(expectedJoinPreds) {
		return nil, nil, false
	}
	for _, p := range j.preds {
		found := false
		for _, want := range expectedJoinPreds {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, false
		}
	}
	return j, append([]*rnode(nil), n.succs...), true
}

func applyBranch(nodes []*rnode, split, join *rnode, caseArms []*rnode) []*rnode {
	cases := make([]*Tree, len(caseArms))
	removed := []*rnode{split, join}
	for i, arm := range caseArms {
		if arm == join {
			cases[i] = newLinear()
			continue
		}
		cases[i] = arm.tree
		removed = append(removed, arm)
	}

	splitTree, joinTree := split.tree, join.tree
	var prefix, suffix []*Tree
	if splitTree.Kind == KindLinear && len(splitTree.Children) > 0 {
		prefix = splitTree.Children[:len(splitTree.Children)-1]
		splitTree = splitTree.Children[len(splitTree.Children)-1]
	}
	if joinTree.Kind == KindLinear && len(joinTree.Children) > 0 {
		suffix = joinTree.Children[1:]
		joinTree = joinTree.Children[0]
	}
	tree := newBranch(splitTree.Block, joinTree.Block, cases...)
	if len(prefix)+len(suffix) > 0 {
		tree = newLinear(append(append(append([]*Tree(nil), prefix...), tree), suffix...)...)
	}
	merged := &rnode{tree: tree, preds: split.preds, succs: join.succs}
	for _, pred := range split.preds {
		pred.succs = replaceRnode(pred.succs, split, merged)
	}
	for _, succ := range join.succs {
		succ.preds = replaceRnode(succ.preds, join, merged)
	}
	return replaceInList(nodes, removed, merged)
}

func removeRnode(list []*rnode, target *rnode) []*rnode {
	out := list[:0]
	for _, n := range list {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

func replaceRnode(list []*rnode, from, to *rnode) []*rnode {
	out := make([]*rnode, len(list))
	for i, n := range list {
		if n == from {
			out[i] = to
		} else {
			out[i] = n
		}
	}
	return out
}

func replaceInList(nodes []*rnode, removed []*rnode, merged *rnode) []*rnode {
	out := make([]*rnode, 0, len(nodes)-len(removed)+1)
	for _, n := range nodes {
		keep := true
		for _, r := range removed {
			if n == r {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, n)
		}
	}
	out = append(out, merged)
	return out
}

// reversePostorder orders nodes for the RPO tie-break, rooted at
// whichever node currently has no predecessors (the lineage of the
// function's entry; unique in a connected, reducible graph).
func reversePostorder(nodes []*rnode) []*rnode {
	var root *rnode
	for _, n := range nodes {
		if len(n.preds) == 0 {
			root = n
			break
		}
	}
	if root == nil {
		root = nodes[0]
	}

	visited := map[*rnode]bool{}
	var post []*rnode
	var visit func(n *rnode)
	visit = func(n *rnode) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range n.succs {
			visit(s)
		}
		post = append(post, n)
	}
	visit(root)
	for _, n := range nodes {
		visit(n)
	}

	rpo := make([]*rnode, len(post))
	for i, n := range post {
		rpo[len(post)-1-i] = n
	}
	return rpo
}
