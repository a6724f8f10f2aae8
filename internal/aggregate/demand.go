package aggregate

import (
	"github.com/bits-and-blooms/bitset"

	"jlmgo/internal/cfgir"
)

// Demand holds the variable-demand sets computed for one aggregation-tree
// node by Annotate: Top is the set of variables that must already
// be live when control reaches this node, Bottom is the set demanded by
// whatever follows it. Both are bitsets indexed by the Universe Annotate
// was run with.
type Demand struct {
	Top    *bitset.BitSet
	Bottom *bitset.BitSet

	// CaseTops holds, for a branch node only, the demand computed at the
	// top of each of the branch's parallel cases (in Children order) —
	// construction (C5) takes their union as the set of values entering
	// the gamma.
	CaseTops []*bitset.BitSet

	// LiveOut holds, for a branch node only, the demand evaluated at the
	// join (i.e. what every case must leave behind for the join and
	// everything after it) — construction (C5) uses this as each gamma
	// subregion's required result set: each subregion's results are the
	// live-out set.
	LiveOut *bitset.BitSet
}

// Annotate computes top/bottom demand sets over every node of tree,
// bottom-up from tree's own exit. It returns the Universe used to index
// the resulting bitsets, which callers must reuse to decode them.
func Annotate(cfg *cfgir.Cfg, tree *Tree) *Universe {
	u := newUniverse(cfg)
	annotate(u, tree, bitset.New(u.Len()))
	return u
}

func annotate(u *Universe, t *Tree, bottom *bitset.BitSet) *bitset.BitSet {
	var top *bitset.BitSet

	switch t.Kind {
	case KindEntry:
		top = bottom.Clone()
		for _, v := range t.Block.Attr.(cfgir.EntryAttr).Arguments {
			if i, ok := u.IndexOf(v); ok {
				top.Clear(i)
			}
		}

	case KindExit:
		top = bottom.Clone()
		for _, v := range t.Block.Attr.(cfgir.ExitAttr).Results {
			if i, ok := u.IndexOf(v); ok {
				top.Set(i)
			}
		}

	case KindBlock:
		top = blockTop(u, bottom, t.Block)

	case KindLinear:
		cur := bottom
		for i := len(t.Children) - 1; i >= 0; i-- {
			cur = annotate(u, t.Children[i], cur)
		}
		top = cur

	case KindBranch:
		joinTop := blockTop(u, bottom, t.Join)

		caseTops := make([]*bitset.BitSet, len(t.Children))
		pastSplit := bitset.New(u.Len())
		for i, c := range t.Children {
			ct := annotate(u, c, joinTop)
			caseTops[i] = ct
			pastSplit.InPlaceUnion(ct)
		}
		top = blockTop(u, pastSplit, t.Split)
		t.demand = &Demand{Top: top, Bottom: bottom, CaseTops: caseTops, LiveOut: joinTop}
		return top

	case KindLoop:
		body := t.Children[0]
		pds := bottom.Clone()
		for {
			candidate := annotate(u, body, pds.Union(bottom))
			if candidate.Equal(pds) {
				pds = candidate
				break
			}
			pds = candidate
		}
		top = pds

	default:
		top = bottom.Clone()
	}

	t.demand = &Demand{Top: top, Bottom: bottom}
	return top
}

// blockTop reverse-walks n's tac list starting from demand pds, applying
// each tac's kill (its outputs stop being demanded above it) then gen
// (its inputs become demanded above it), per the block transfer function.
func blockTop(u *Universe, pds *bitset.BitSet, n *cfgir.CfgNode) *bitset.BitSet {
	cur := pds.Clone()
	bb, ok := n.BasicBlock()
	if !ok {
		return cur
	}
	tacs := bb.Tacs()
	for i := len(tacs) - 1; i >= 0; i-- {
		tac := tacs[i]
		for _, v := range tac.Outputs {
			if idx, ok := u.IndexOf(v); ok {
				cur.Clear(idx)
			}
		}
		for _, v := range tac.Inputs {
			if idx, ok := u.IndexOf(v); ok {
				cur.Set(idx)
			}
		}
	}
	return cur
}
