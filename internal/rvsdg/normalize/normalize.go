// Package normalize wires the node-normalization rules into a
// *rvsdg.Graph's per-family NormalForm registry: one enable_* function per
// operation family, each flipping the family's mutable flag and a handful
// of named sub-flags before registering the rules that consult them, and a
// top-level Enable that turns every family on and then runs the fixpoint
// sweep.
package normalize

import (
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
)

// Enable turns on every normalization family and sweeps the graph to a fixpoint.
func Enable(g *rvsdg.Graph) {
	EnableAllocaReductions(g)
	EnableMuxReductions(g)
	EnableStoreReductions(g)
	EnableLoadReductions(g)
	EnableGammaReductions(g)
	EnableUnaryReductions(g)
	EnableBinaryReductions(g)
	g.Normalize()
}

func asOutput(o rvsdg.Origin) (*rvsdg.Output, bool) {
	out, ok := o.(*rvsdg.Output)
	return out, ok
}

// EnableAllocaReductions registers the alloca-alloca rule: two chained
// allocas whose order is not forced by aliasing (the first's memory-state
// output has exactly one user: the second) canonicalize by the allocated
// type's textual order, creation index breaking ties implicitly since the
// earlier alloca is already first in a freshly built chain.
func EnableAllocaReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.AllocaOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("alloca_alloca_reducible", true)
	nf.SetFlag("alloca_mux_reducible", true)

	nf.AddRule(rvsdg.RewriteRule{
		Name: "alloca-alloca",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("alloca_alloca_reducible") {
				return nil
			}
			cur, _ := n.Operation().(ops.AllocaOp)
			memOrigin := n.Input(0).Origin()
			out, ok := asOutput(memOrigin)
			if !ok {
				return nil
			}
			prod := out.Node()
			prev, ok := prod.Operation().(ops.AllocaOp)
			if !ok || len(prod.Output(1).Users()) != 1 {
				return nil
			}
			if prev.Elem.String() <= cur.Elem.String() {
				return nil // already canonical
			}

			newFirst := g.CreateNode(n.Region(), ops.AllocaOp{Elem: cur.Elem}, []rvsdg.Origin{prod.Input(0).Origin()})
			newSecond := g.CreateNode(n.Region(), ops.AllocaOp{Elem: prev.Elem}, []rvsdg.Origin{newFirst.Output(1)})

			g.DivertUsers(prod.Output(0), newSecond.Output(0))
			g.DivertUsers(n.Output(0), newFirst.Output(0))
			g.DivertUsers(n.Output(1), newSecond.Output(1))
			g.DivertUsers(prod.Output(1), prod.Input(0).Origin())
			g.RemoveNode(prod)
			return []rvsdg.Origin{newFirst.Output(0), newSecond.Output(1)}
		},
	})
}

// EnableMuxReductions registers the mux-mux rule: a mux with an operand
// that is itself the sole user of another mux's output flattens the inner
// mux's operands into the outer one.
func EnableMuxReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.MuxOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("mux_mux_reducible", true)
	nf.SetFlag("multiple_origin_reducible", true)

	nf.AddRule(rvsdg.RewriteRule{
		Name: "mux-mux",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("mux_mux_reducible") {
				return nil
			}
			for _, in := range n.Inputs() {
				out, ok := asOutput(in.Origin())
				if !ok {
					continue
				}
				inner, ok := out.Node().Operation().(ops.MuxOp)
				if !ok || len(out.Users()) != 1 {
					continue
				}
				flat := make([]rvsdg.Origin, 0, n.NInputs()-1+inner.N)
				for _, other := range n.Inputs() {
					if other == in {
						for _, innerIn := range out.Node().Inputs() {
							flat = append(flat, innerIn.Origin())
						}
						continue
					}
					flat = append(flat, other.Origin())
				}
				merged := g.CreateNode(n.Region(), ops.MuxOp{N: len(flat)}, flat)
				g.DivertUsers(out, merged.Output(0))
				g.RemoveNode(out.Node())
				return []rvsdg.Origin{merged.Output(0)}
			}
			return nil
		},
	})
}

// EnableStoreReductions registers store-store: a store whose incoming
// memory state comes from another store to the same pointer, with no other
// observer of that intermediate state, makes the earlier store dead.
func EnableStoreReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.StoreOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("store_mux_reducible", true)
	nf.SetFlag("store_store_reducible", true)
	nf.SetFlag("store_alloca_reducible", true)
	nf.SetFlag("multiple_origin_reducible", true)

	nf.AddRule(rvsdg.RewriteRule{
		Name: "store-store",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("store_store_reducible") {
				return nil
			}
			memOut, ok := asOutput(n.Input(2).Origin())
			if !ok {
				return nil
			}
			first := memOut.Node()
			if _, ok := first.Operation().(ops.StoreOp); !ok {
				return nil
			}
			if first.Input(0).Origin() != n.Input(0).Origin() {
				return nil // different pointer, no overwrite relationship
			}
			if len(first.Output(0).Users()) != 1 {
				return nil
			}
			replacement := g.CreateNode(n.Region(), n.Operation(), []rvsdg.Origin{n.Input(0).Origin(), n.Input(1).Origin(), first.Input(2).Origin()})
			g.DivertUsers(first.Output(0), first.Input(2).Origin())
			g.RemoveNode(first)
			return []rvsdg.Origin{replacement.Output(0)}
		},
	})
}

// EnableLoadReductions registers load-store and load-alloca: a load whose
// value was just written by a store to the same pointer forwards that
// value directly; a load whose memory state passed through an unrelated
// alloca (one not aliasing the load's own pointer) skips past it to the
// alloca's pre-existing state.
func EnableLoadReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.LoadOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("load_mux_reducible", true)
	nf.SetFlag("load_store_reducible", true)
	nf.SetFlag("load_alloca_reducible", true)
	nf.SetFlag("multiple_origin_reducible", true)
	nf.SetFlag("load_store_state_reducible", true)
	nf.SetFlag("load_store_alloca_reducible", true)
	nf.SetFlag("load_load_state_reducible", true)

	nf.AddRule(rvsdg.RewriteRule{Name: "load-store", Apply: loadStoreRule(family)})
	nf.AddRule(rvsdg.RewriteRule{Name: "load-alloca", Apply: loadAllocaRule(family)})
}

func loadStoreRule(family string) func(*rvsdg.Graph, *rvsdg.Node) []rvsdg.Origin {
	return func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
		if !g.NormalForm(family).Flag("load_store_reducible") {
			return nil
		}
		memOut, ok := asOutput(n.Input(1).Origin())
		if !ok {
			return nil
		}
		store := memOut.Node()
		if _, ok := store.Operation().(ops.StoreOp); !ok {
			return nil
		}
		if store.Input(0).Origin() != n.Input(0).Origin() {
			return nil
		}
		value := store.Input(1).Origin()
		if !value.Type().Equal(n.Output(0).Type()) {
			return nil
		}
		return []rvsdg.Origin{value}
	}
}

func loadAllocaRule(family string) func(*rvsdg.Graph, *rvsdg.Node) []rvsdg.Origin {
	return func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
		if !g.NormalForm(family).Flag("load_alloca_reducible") {
			return nil
		}
		memOut, ok := asOutput(n.Input(1).Origin())
		if !ok {
			return nil
		}
		alloca := memOut.Node()
		if _, ok := alloca.Operation().(ops.AllocaOp); !ok {
			return nil
		}
		if n.Input(0).Origin() == alloca.Output(0) {
			return nil // reading the cell this very alloca introduced
		}
		newLoad := g.CreateNode(n.Region(), n.Operation(), []rvsdg.Origin{n.Input(0).Origin(), alloca.Input(0).Origin()})
		return []rvsdg.Origin{newLoad.Output(0)}
	}
}

// EnableGammaReductions registers the predicate-collapse and
// control-constant-lift rules; the arity-sensitive splicing they require
// lives on *rvsdg.Graph itself (gamma_reduce.go) since it reaches into
// region internals no public accessor exposes.
func EnableGammaReductions(g *rvsdg.Graph) {
	family := rvsdg.StructuralFamily(rvsdg.KindGamma)
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("predicate_reduction", true)
	nf.SetFlag("control_constant_reduction", true)

	nf.AddRule(rvsdg.RewriteRule{
		Name: "gamma-predicate",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("predicate_reduction") {
				return nil
			}
			return g.CollapseGammaPredicate(n)
		},
	})
	nf.AddRule(rvsdg.RewriteRule{
		Name: "gamma-control-constant",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("control_constant_reduction") {
				return nil
			}
			return g.LiftGammaConstants(n)
		},
	})
}

// EnableUnaryReductions registers constant-folding for every UnaryOp kind.
func EnableUnaryReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.UnaryOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("reducible", true)

	nf.AddRule(rvsdg.RewriteRule{
		Name: "unary-constant-fold",
		Apply: func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
			if !g.NormalForm(family).Flag("reducible") {
				return nil
			}
			uo := n.Operation().(ops.UnaryOp)
			out, ok := asOutput(n.Input(0).Origin())
			if !ok {
				return nil
			}
			co, ok := out.Node().Operation().(ops.ConstantOp)
			if !ok {
				return nil
			}
			v, ok := foldUnary(uo, co.Value)
			if !ok {
				return nil
			}
			folded := g.CreateNode(n.Region(), ops.ConstantOp{T: uo.Out, Value: v}, nil)
			return []rvsdg.Origin{folded.Output(0)}
		},
	})
}

func foldUnary(uo ops.UnaryOp, v any) (any, bool) {
	switch uo.UKind {
	case ops.Neg:
		i, ok := v.(int64)
		return -i, ok
	case ops.Not:
		b, ok := v.(bool)
		return !b, ok
	case ops.SExt, ops.ZExt, ops.Trunc, ops.BitCast:
		i, ok := v.(int64)
		return i, ok
	default:
		return nil, false
	}
}

// EnableBinaryReductions registers constant-folding and commutative-operand
// canonicalization for every BinaryOp kind.
func EnableBinaryReductions(g *rvsdg.Graph) {
	family := rvsdg.OperationFamily(ops.BinaryOp{})
	nf := g.NormalForm(family)
	nf.Mutable = true
	nf.SetFlag("reducible", true)

	nf.AddRule(rvsdg.RewriteRule{Name: "binary-constant-fold", Apply: binaryConstantFold(family)})
	nf.AddRule(rvsdg.RewriteRule{Name: "binary-canonicalize-commutative", Apply: binaryCanonicalize(family)})
}

func binaryConstantFold(family string) func(*rvsdg.Graph, *rvsdg.Node) []rvsdg.Origin {
	return func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
		if !g.NormalForm(family).Flag("reducible") {
			return nil
		}
		bo := n.Operation().(ops.BinaryOp)
		lhsOut, lok := asOutput(n.Input(0).Origin())
		rhsOut, rok := asOutput(n.Input(1).Origin())
		if !lok || !rok {
			return nil
		}
		lc, lok := lhsOut.Node().Operation().(ops.ConstantOp)
		rc, rok := rhsOut.Node().Operation().(ops.ConstantOp)
		if !lok || !rok {
			return nil
		}
		v, ok := foldBinary(bo, lc.Value, rc.Value)
		if !ok {
			return nil
		}
		folded := g.CreateNode(n.Region(), ops.ConstantOp{T: n.Output(0).Type(), Value: v}, nil)
		return []rvsdg.Origin{folded.Output(0)}
	}
}

func foldBinary(bo ops.BinaryOp, l, r any) (any, bool) {
	li, lok := l.(int64)
	ri, rok := r.(int64)
	if !lok || !rok {
		return nil, false
	}
	switch bo.BKind {
	case ops.Add:
		return li + ri, true
	case ops.Sub:
		return li - ri, true
	case ops.Mul:
		return li * ri, true
	case ops.SDiv, ops.UDiv:
		if ri == 0 {
			return nil, false
		}
		return li / ri, true
	case ops.And:
		return li & ri, true
	case ops.Or:
		return li | ri, true
	case ops.Xor:
		return li ^ ri, true
	case ops.Shl:
		return li << uint(ri), true
	case ops.Shr:
		return li >> uint(ri), true
	case ops.ICmpEq:
		return li == ri, true
	case ops.ICmpNe:
		return li != ri, true
	case ops.ICmpSlt:
		return li < ri, true
	case ops.ICmpUlt:
		return uint64(li) < uint64(ri), true
	default:
		return nil, false
	}
}

// binaryCanonicalize reorders a commutative operation's operands into
// increasing creation-index order of their producing node (or leaves an
// argument-backed operand where it is, ahead of any node-backed operand),
// so that CNE's structural-equality check does not treat `a+b` and `b+a` as
// distinct.
func binaryCanonicalize(family string) func(*rvsdg.Graph, *rvsdg.Node) []rvsdg.Origin {
	return func(g *rvsdg.Graph, n *rvsdg.Node) []rvsdg.Origin {
		if !g.NormalForm(family).Flag("reducible") {
			return nil
		}
		bo := n.Operation().(ops.BinaryOp)
		if !bo.BKind.Commutative() {
			return nil
		}
		lhs, rhs := n.Input(0).Origin(), n.Input(1).Origin()
		lOut, lIsOut := asOutput(lhs)
		rOut, rIsOut := asOutput(rhs)
		swap := false
		switch {
		case lIsOut && rIsOut:
			swap = lOut.Node().ID() > rOut.Node().ID()
		case lIsOut && !rIsOut:
			swap = true // argument-backed operands sort before node-backed ones
		}
		if !swap {
			return nil
		}
		reordered := g.CreateNode(n.Region(), bo, []rvsdg.Origin{rhs, lhs})
		return []rvsdg.Origin{reordered.Output(0)}
	}
}
