package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// TestPullInSinksSoleConsumerEntryVar builds a 2-way gamma whose entry
// variable (sn = p0+p1, computed outside) is only ever read by case 1;
// case 0 ignores it entirely. PullIn should sink sn bodily into case 1's
// subregion.
func TestPullInSinksSoleConsumerEntryVar(t *testing.T) {
	g := rvsdg.NewGraph()
	lambda := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	fsub := lambda.Subregion(0)
	p0, p1 := fsub.Argument(0), fsub.Argument(1)

	sn := g.CreateNode(fsub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{p0, p1})
	pred := g.CreateNode(fsub, ops.MatchOp{In: i32(), N: 2, Mapping: map[int64]int{0: 0}, Default: 1}, []rvsdg.Origin{p0})

	gamma := g.NewGamma(fsub, pred.Output(0), []rvsdg.Origin{sn.Output(0)}, []types.Type{i32()})
	sub0, sub1 := gamma.Subregion(0), gamma.Subregion(1)

	zero := g.CreateNode(sub0, ops.ConstantOp{Value: 0, T: i32()}, nil)
	sub0.AddResult(zero.Output(0))
	sub1.AddResult(sub1.Argument(0))

	lambda.Subregion(0).AddResult(gamma.Output(0))

	changed := (PullIn{}).Run(g)
	require.True(t, changed)

	assert.Equal(t, sub1, sn.Region(), "sn should have sunk into case 1's subregion")
	assert.Same(t, sn.Output(0), sub1.Result(0).Origin())
	assert.Equal(t, 0, len(sub1.Argument(0).Users()), "the original entry-var argument is now dead, left for DNE")
}

// TestPullInLeavesSharedEntryVarAlone ensures an entry variable read by
// more than one subregion is never pulled in.
func TestPullInLeavesSharedEntryVarAlone(t *testing.T) {
	g := rvsdg.NewGraph()
	lambda := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32(), i32()}, []types.Type{i32()})
	fsub := lambda.Subregion(0)
	p0, p1 := fsub.Argument(0), fsub.Argument(1)

	sn := g.CreateNode(fsub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{p0, p1})
	pred := g.CreateNode(fsub, ops.MatchOp{In: i32(), N: 2, Mapping: map[int64]int{0: 0}, Default: 1}, []rvsdg.Origin{p0})

	gamma := g.NewGamma(fsub, pred.Output(0), []rvsdg.Origin{sn.Output(0)}, []types.Type{i32()})
	sub0, sub1 := gamma.Subregion(0), gamma.Subregion(1)
	sub0.AddResult(sub0.Argument(0))
	sub1.AddResult(sub1.Argument(0))
	lambda.Subregion(0).AddResult(gamma.Output(0))

	changed := (PullIn{}).Run(g)
	assert.False(t, changed)
	assert.Equal(t, fsub, sn.Region())
}
