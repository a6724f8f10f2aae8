package cne

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

func i32() types.Type { return types.Integer{Width: 32} }

// TestMergesRedundantAdds mirrors a worked example: a=x+y; b=x+y;
// return a+b. After CNE, the second add's output should be diverted to the
// first's, and the final add's operands should both trace to the same
// node.
func TestMergesRedundantAdds(t *testing.T) {
	g := rvsdg.NewGraph()
	lambda := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	sub := lambda.Subregion(0)
	x, y := sub.Argument(0), sub.Argument(1)

	addA := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, y})
	addB := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, y})
	sum := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{addA.Output(0), addB.Output(0)})
	sub.AddResult(sum.Output(0))

	changed := (Pass{}).Run(g)
	require.True(t, changed)

	assert.Same(t, addA.Output(0), sum.Input(0).Origin())
	assert.Same(t, addA.Output(0), sum.Input(1).Origin())
	assert.Equal(t, 0, len(addB.Output(0).Users()))
}

// TestKeepsDistinctOperandsApart ensures two adds over different operands
// are never merged.
func TestKeepsDistinctOperandsApart(t *testing.T) {
	g := rvsdg.NewGraph()
	lambda := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	sub := lambda.Subregion(0)
	x, y := sub.Argument(0), sub.Argument(1)

	addXY := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, y})
	addXX := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, x})
	sum := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{addXY.Output(0), addXX.Output(0)})
	sub.AddResult(sum.Output(0))

	changed := (Pass{}).Run(g)
	assert.False(t, changed)
	assert.Same(t, addXY.Output(0), sum.Input(0).Origin())
	assert.Same(t, addXX.Output(0), sum.Input(1).Origin())
}

// TestRunIsIdempotent checks CNE(CNE(G)) ≡ CNE(G): running the pass again
// after a merge reports no further change.
func TestRunIsIdempotent(t *testing.T) {
	g := rvsdg.NewGraph()
	lambda := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	sub := lambda.Subregion(0)
	x, y := sub.Argument(0), sub.Argument(1)

	addA := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, y})
	addB := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{x, y})
	sum := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{addA.Output(0), addB.Output(0)})
	sub.AddResult(sum.Output(0))

	require.True(t, (Pass{}).Run(g))
	assert.False(t, (Pass{}).Run(g))
}
