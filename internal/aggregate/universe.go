package aggregate

import "jlmgo/internal/cfgir"

// Universe assigns a stable bit index to every variable reachable from a
// function's cfg, so that demand sets can be represented as
// bitsets instead of variable-pointer sets. Construction (C5) decodes
// demand bitsets back into variables through the same Universe that
// annotated the tree.
type Universe struct {
	index map[*cfgir.Variable]uint
	vars  []*cfgir.Variable
}

func newUniverse(cfg *cfgir.Cfg) *Universe {
	u := &Universe{index: map[*cfgir.Variable]uint{}}
	add := func(v *cfgir.Variable) {
		if _, ok := u.index[v]; !ok {
			u.index[v] = uint(len(u.vars))
			u.vars = append(u.vars, v)
		}
	}
	for _, n := range cfg.Nodes() {
		switch attr := n.Attr.(type) {
		case cfgir.EntryAttr:
			for _, v := range attr.Arguments {
				add(v)
			}
		case cfgir.ExitAttr:
			for _, v := range attr.Results {
				add(v)
			}
		case *cfgir.BasicBlockAttr:
			for _, t := range attr.Tacs() {
				for _, v := range t.Inputs {
					add(v)
				}
				for _, v := range t.Outputs {
					add(v)
				}
			}
		}
	}
	return u
}

// Len is the number of distinct variables in the universe, i.e. the bit
// width of every demand bitset it produces.
func (u *Universe) Len() uint { return uint(len(u.vars)) }

// At returns the variable occupying bit index i.
func (u *Universe) At(i uint) *cfgir.Variable { return u.vars[i] }

// IndexOf returns v's bit index, and false if v was never seen while the
// universe was built (e.g. a variable local to dead code already pruned).
func (u *Universe) IndexOf(v *cfgir.Variable) (uint, bool) {
	i, ok := u.index[v]
	return i, ok
}
