package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/ops"
	"jlmgo/internal/types"
)

func i32() types.Type { return types.Integer{Width: 32} }

func constTac(out *cfgir.Variable) *cfgir.Tac {
	return cfgir.NewTac(ops.ConstantOp{T: i32(), Value: int64(1)}, nil, []*cfgir.Variable{out})
}

func TestReduceLinearChain(t *testing.T) {
	cfg := cfgir.NewCfg(nil, nil)
	b1 := cfg.CreateBasicBlock()
	b2 := cfg.CreateBasicBlock()
	cfg.AddEdge(cfg.Entry(), b1)
	cfg.AddEdge(b1, b2)
	cfg.AddEdge(b2, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)
	assert.Equal(t, KindLinear, tree.Kind)
	assert.Len(t, tree.Children, 4)
	assert.Equal(t, KindEntry, tree.Children[0].Kind)
	assert.Equal(t, KindBlock, tree.Children[1].Kind)
	assert.Equal(t, KindBlock, tree.Children[2].Kind)
	assert.Equal(t, KindExit, tree.Children[3].Kind)
}

func TestReduceDiamondBranch(t *testing.T) {
	cfg := cfgir.NewCfg(nil, nil)
	split := cfg.CreateBasicBlock()
	left := cfg.CreateBasicBlock()
	right := cfg.CreateBasicBlock()
	join := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), split)
	cfg.AddEdge(split, left)
	cfg.AddEdge(split, right)
	cfg.AddEdge(left, join)
	cfg.AddEdge(right, join)
	cfg.AddEdge(join, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)

	var findBranch func(*Tree) *Tree
	findBranch = func(n *Tree) *Tree {
		if n.Kind == KindBranch {
			return n
		}
		for _, c := range n.Children {
			if b := findBranch(c); b != nil {
				return b
			}
		}
		return nil
	}
	branch := findBranch(tree)
	require.NotNil(t, branch)
	assert.Len(t, branch.Children, 2)
	assert.Same(t, split, branch.Split)
	assert.Same(t, join, branch.Join)
}

func TestReduceDiamondWithEmptyCase(t *testing.T) {
	cfg := cfgir.NewCfg(nil, nil)
	split := cfg.CreateBasicBlock()
	body := cfg.CreateBasicBlock()
	join := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), split)
	cfg.AddEdge(split, body)
	cfg.AddEdge(split, join) // empty case: straight through
	cfg.AddEdge(body, join)
	cfg.AddEdge(join, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)

	var findBranch func(*Tree) *Tree
	findBranch = func(n *Tree) *Tree {
		if n.Kind == KindBranch {
			return n
		}
		for _, c := range n.Children {
			if b := findBranch(c); b != nil {
				return b
			}
		}
		return nil
	}
	branch := findBranch(tree)
	require.NotNil(t, branch)
	require.Len(t, branch.Children, 2)
	kinds := []Kind{branch.Children[0].Kind, branch.Children[1].Kind}
	assert.Contains(t, kinds, KindLinear)
}

func TestReduceSelfLoop(t *testing.T) {
	cfg := cfgir.NewCfg(nil, nil)
	body := cfg.CreateBasicBlock()
	after := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), body)
	cfg.AddEdge(body, body)
	cfg.AddEdge(body, after)
	cfg.AddEdge(after, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)

	var findLoop func(*Tree) *Tree
	findLoop = func(n *Tree) *Tree {
		if n.Kind == KindLoop {
			return n
		}
		for _, c := range n.Children {
			if l := findLoop(c); l != nil {
				return l
			}
		}
		return nil
	}
	loop := findLoop(tree)
	require.NotNil(t, loop)
	require.Len(t, loop.Children, 1)
	assert.Equal(t, KindBlock, loop.Children[0].Kind)
	assert.Same(t, body, loop.Children[0].Block)
}

func TestReduceIrreducible(t *testing.T) {
	// A classic irreducible graph: two loop headers h1, h2 each reachable
	// from the other's body with no single dominating entry into the pair.
	cfg := cfgir.NewCfg(nil, nil)
	h1 := cfg.CreateBasicBlock()
	h2 := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), h1)
	cfg.AddEdge(cfg.Entry(), h2)
	cfg.AddEdge(h1, h2)
	cfg.AddEdge(h2, h1)
	cfg.AddEdge(h1, cfg.Exit())
	cfg.AddEdge(h2, cfg.Exit())

	_, err := Reduce(cfg)
	require.Error(t, err)
}

func TestAnnotateLinearDemand(t *testing.T) {
	x := cfgir.NewVariable("x", i32())
	y := cfgir.NewVariable("y", i32())

	cfg := cfgir.NewCfg(nil, []*cfgir.Variable{y})
	b1 := cfg.CreateBasicBlock()
	bb1, _ := b1.BasicBlock()
	bb1.Append(constTac(x))

	b2 := cfg.CreateBasicBlock()
	bb2, _ := b2.BasicBlock()
	bb2.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{x}, []*cfgir.Variable{y}))

	cfg.AddEdge(cfg.Entry(), b1)
	cfg.AddEdge(b1, b2)
	cfg.AddEdge(b2, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)

	u := Annotate(cfg, tree)

	var findBlockFor func(*Tree, *cfgir.CfgNode) *Tree
	findBlockFor = func(n *Tree, target *cfgir.CfgNode) *Tree {
		if n.Block == target {
			return n
		}
		for _, c := range n.Children {
			if f := findBlockFor(c, target); f != nil {
				return f
			}
		}
		return nil
	}

	n1 := findBlockFor(tree, b1)
	require.NotNil(t, n1)
	xi, ok := u.IndexOf(x)
	require.True(t, ok)
	yi, ok := u.IndexOf(y)
	require.True(t, ok)

	// Below b1 (its Bottom), x is demanded (b2 consumes it); above b1 (its
	// Top), x is no longer demanded since b1 just defined it; y is only
	// defined later, in b2, so it plays no part in b1's demand.
	assert.True(t, n1.Demand().Bottom.Test(xi))
	assert.False(t, n1.Demand().Top.Test(xi))

	n2 := findBlockFor(tree, b2)
	require.NotNil(t, n2)
	assert.True(t, n2.Demand().Top.Test(xi))
	_ = yi
}

func TestAnnotateBranchUnionsCaseTops(t *testing.T) {
	a := cfgir.NewVariable("a", i32())
	b := cfgir.NewVariable("b", i32())

	cfg := cfgir.NewCfg(nil, nil)
	split := cfg.CreateBasicBlock()
	left := cfg.CreateBasicBlock()
	lbb, _ := left.BasicBlock()
	tmp := cfgir.NewVariable("tmp", i32())
	lbb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{a}, []*cfgir.Variable{tmp}))

	right := cfg.CreateBasicBlock()
	rbb, _ := right.BasicBlock()
	rbb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{b}, []*cfgir.Variable{tmp}))

	join := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), split)
	cfg.AddEdge(split, left)
	cfg.AddEdge(split, right)
	cfg.AddEdge(left, join)
	cfg.AddEdge(right, join)
	cfg.AddEdge(join, cfg.Exit())

	tree, err := Reduce(cfg)
	require.NoError(t, err)
	u := Annotate(cfg, tree)

	var findBranch func(*Tree) *Tree
	findBranch = func(n *Tree) *Tree {
		if n.Kind == KindBranch {
			return n
		}
		for _, c := range n.Children {
			if f := findBranch(c); f != nil {
				return f
			}
		}
		return nil
	}
	branch := findBranch(tree)
	require.NotNil(t, branch)

	ai, ok := u.IndexOf(a)
	require.True(t, ok)
	bi, ok := u.IndexOf(b)
	require.True(t, ok)

	// Neither case alone demands both a and b, but the split's own demand
	// (above the branch) must cover both since either case may run.
	assert.True(t, branch.Demand().Top.Test(ai))
	assert.True(t, branch.Demand().Top.Test(bi))
}
