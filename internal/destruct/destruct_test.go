package destruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/aggregate"
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

func i32() types.Type { return types.Integer{Width: 32} }

// TestFunctionStraightLine destructs a trivial add function and checks the
// resulting cfg is entry -> one block -> exit, with the block carrying the
// add tac followed by the copy that feeds the declared result variable.
func TestFunctionStraightLine(t *testing.T) {
	g := rvsdg.NewGraph()
	lam := g.NewLambda(g.Root(), "add", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	sub := lam.Subregion(0)
	sum := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{sub.Argument(0), sub.Argument(1)})
	sub.AddResult(sum.Output(0))

	fn := Function(lam)

	assert.Equal(t, "add", fn.Name)
	assert.True(t, fn.External)
	assert.Len(t, fn.ParamTypes, 2)
	assert.Len(t, fn.ResultTypes, 1)

	require.Equal(t, 3, fn.Cfg.NNodes(), "entry, one block, exit")
	entrySuccs := fn.Cfg.Entry().Successors
	require.Len(t, entrySuccs, 1)
	block := entrySuccs[0]
	bb, ok := block.BasicBlock()
	require.True(t, ok)
	require.Equal(t, 2, bb.NTacs(), "the add tac plus the result copy")
	assert.Equal(t, ops.BinaryOp{BKind: ops.Add, T: i32()}, bb.First().Op)
	assert.Equal(t, ops.UnaryOp{UKind: ops.BitCast, In: i32(), Out: i32()}, bb.Last().Op)
	require.Len(t, block.Successors, 1)
	assert.True(t, block.Successors[0].IsExit())

	// the cfg this produces must itself be reducible: a single block with
	// no branches collapses straight down to one linear region.
	tree, err := aggregate.Reduce(fn.Cfg)
	require.NoError(t, err)
	assert.Equal(t, aggregate.KindLinear, tree.Kind)
}

// TestFunctionGammaBranch destructs a lambda whose body is a 2-way gamma
// and checks the resulting cfg forms a diamond (one split, two case
// blocks, one shared join) that aggregate.Reduce can collapse back down
// without an IrreducibleCfg error.
func TestFunctionGammaBranch(t *testing.T) {
	g := rvsdg.NewGraph()
	lam := g.NewLambda(g.Root(), "pick", rvsdg.LinkageExternal, nil, []types.Type{types.Control{N: 2}, i32()}, []types.Type{i32()})
	sub := lam.Subregion(0)
	pred, x := sub.Argument(0), sub.Argument(1)

	gamma := g.NewGamma(sub, pred, []rvsdg.Origin{x}, []types.Type{i32()})
	g0, g1 := gamma.Subregion(0), gamma.Subregion(1)

	inc := g.CreateNode(g0, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{g0.Argument(0), g0.Argument(0)})
	g0.AddResult(inc.Output(0))
	g1.AddResult(g1.Argument(0))

	sub.AddResult(gamma.Output(0))

	fn := Function(lam)

	entrySuccs := fn.Cfg.Entry().Successors
	require.Len(t, entrySuccs, 1)
	split := entrySuccs[0]
	splitBB, ok := split.BasicBlock()
	require.True(t, ok)
	require.Equal(t, 1, splitBB.NTacs(), "the split block only echoes the predicate")
	assert.Equal(t, ops.UnaryOp{UKind: ops.BitCast, In: types.Control{N: 2}, Out: types.Control{N: 2}}, splitBB.Last().Op)

	require.Len(t, split.Successors, 2, "one successor per gamma case")
	case0BB, ok := split.Successors[0].BasicBlock()
	require.True(t, ok)
	assert.Equal(t, 2, case0BB.NTacs(), "the add plus the result copy")
	case1BB, ok := split.Successors[1].BasicBlock()
	require.True(t, ok)
	assert.Equal(t, 1, case1BB.NTacs(), "a pass-through case still copies into the shared result var")

	require.Len(t, split.Successors[0].Successors, 1)
	require.Len(t, split.Successors[1].Successors, 1)
	join := split.Successors[0].Successors[0]
	assert.Same(t, join, split.Successors[1].Successors[0], "both cases rejoin at the same block")
	require.Len(t, join.Successors, 1)
	assert.True(t, join.Successors[0].IsExit())

	tree, err := aggregate.Reduce(fn.Cfg)
	require.NoError(t, err)
	assert.Equal(t, aggregate.KindLinear, tree.Kind)
}

// TestFunctionThetaLoop destructs a lambda whose body is a trivial
// counting theta and checks the tail block branches back to the header
// (a direct self-loop, since the body here is a single straight-line
// block) and also falls through to a fresh exit block, and that
// aggregate.Reduce accepts the result.
func TestFunctionThetaLoop(t *testing.T) {
	g := rvsdg.NewGraph()
	lam := g.NewLambda(g.Root(), "count", rvsdg.LinkageExternal, nil, []types.Type{i32()}, []types.Type{i32()})
	sub := lam.Subregion(0)

	theta := g.NewTheta(sub, []rvsdg.Origin{sub.Argument(0)})
	body := theta.Subregion(0)
	accArg := body.Argument(0)

	one := g.CreateNode(body, ops.ConstantOp{Value: int64(1), T: i32()}, nil)
	bumped := g.CreateNode(body, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{accArg, one.Output(0)})
	pred := g.CreateNode(body, ops.MatchOp{In: i32(), N: 2, Mapping: map[int64]int{0: 0}, Default: 1}, []rvsdg.Origin{bumped.Output(0)})

	body.AddResult(pred.Output(0))
	body.AddResult(bumped.Output(0))

	sub.AddResult(theta.Output(0))

	fn := Function(lam)

	entrySuccs := fn.Cfg.Entry().Successors
	require.Len(t, entrySuccs, 1)
	require.Len(t, entrySuccs[0].Successors, 1)
	header := entrySuccs[0].Successors[0]
	headerBB, ok := header.BasicBlock()
	require.True(t, ok)
	// one, bumped, pred, the loop-var copy, and the predicate echo
	assert.Equal(t, 5, headerBB.NTacs())

	require.Len(t, header.Successors, 2)
	assert.Same(t, header, header.Successors[0], "the tail branches back to its own header")
	exit := header.Successors[1]
	assert.NotSame(t, header, exit)
	require.Len(t, exit.Successors, 1)
	assert.True(t, exit.Successors[0].IsExit())

	_, err := aggregate.Reduce(fn.Cfg)
	require.NoError(t, err)
}
