package pointsto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

func i32() types.Type       { return types.Integer{Width: 32} }
func ptrI32() types.Pointer { return types.Pointer{Pointee: i32()} }

// buildTwoAllocas builds: fn(s0 mem) { p, s1 := alloca i32; q, s2 := alloca
// i32; store(p, 1, s2) -> s3; load(q, s3) -> v; return v, s3 }. p and q
// are distinct allocations and should land in disjoint points-to classes.
func buildTwoAllocas(g *rvsdg.Graph) (lam *rvsdg.Node, allocaP, allocaQ, store, load *rvsdg.Node) {
	lam = g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{types.MemoryState{}}, []types.Type{i32(), types.MemoryState{}})
	sub := lam.Subregion(0)
	s0 := sub.Argument(0)

	allocaP = g.CreateNode(sub, ops.AllocaOp{Elem: i32()}, []rvsdg.Origin{s0})
	allocaQ = g.CreateNode(sub, ops.AllocaOp{Elem: i32()}, []rvsdg.Origin{allocaP.Output(1)})

	one := g.CreateNode(sub, ops.ConstantOp{Value: int64(1), T: i32()}, nil)
	store = g.CreateNode(sub, ops.StoreOp{Elem: i32()}, []rvsdg.Origin{allocaP.Output(0), one.Output(0), allocaQ.Output(1)})
	load = g.CreateNode(sub, ops.LoadOp{Elem: i32()}, []rvsdg.Origin{allocaQ.Output(0), store.Output(0)})

	sub.AddResult(load.Output(0))
	sub.AddResult(store.Output(0))
	return
}

func TestSteensgaardDistinguishesIndependentAllocas(t *testing.T) {
	g := rvsdg.NewGraph()
	_, allocaP, allocaQ, _, _ := buildTwoAllocas(g)

	ptg := Analyze(g)

	pClass, ok := ptg.ClassOf(allocaP.Output(0))
	require.True(t, ok)
	qClass, ok := ptg.ClassOf(allocaQ.Output(0))
	require.True(t, ok)
	assert.NotEqual(t, pClass, qClass, "two independent allocas must not unify into the same class")

	pTarget, ok := ptg.PointsTo(pClass)
	require.True(t, ok)
	qTarget, ok := ptg.PointsTo(qClass)
	require.True(t, ok)
	assert.NotEqual(t, pTarget, qTarget)
	assert.Equal(t, KindAlloca, ptg.Vertex(pTarget).Kind)
	assert.Equal(t, KindAlloca, ptg.Vertex(qTarget).Kind)
}

// TestSteensgaardUnifiesAliasedRegisters builds a 2-way gamma that
// returns either of two allocas' pointers through the same output
// register, and checks both allocas' locations unify into one class —
// the register that may hold either is the classic case where
// unification-based analysis loses precision on purpose.
func TestSteensgaardUnifiesAliasedRegisters(t *testing.T) {
	g := rvsdg.NewGraph()
	lam := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{types.Control{N: 2}, types.MemoryState{}}, []types.Type{ptrI32(), types.MemoryState{}})
	sub := lam.Subregion(0)
	pred, s0 := sub.Argument(0), sub.Argument(1)

	gamma := g.NewGamma(sub, pred, []rvsdg.Origin{s0}, []types.Type{ptrI32(), types.MemoryState{}})
	g0, g1 := gamma.Subregion(0), gamma.Subregion(1)

	p := g.CreateNode(g0, ops.AllocaOp{Elem: i32()}, []rvsdg.Origin{g0.Argument(0)})
	g0.AddResult(p.Output(0))
	g0.AddResult(p.Output(1))

	q := g.CreateNode(g1, ops.AllocaOp{Elem: i32()}, []rvsdg.Origin{g1.Argument(0)})
	g1.AddResult(q.Output(0))
	g1.AddResult(q.Output(1))

	sub.AddResult(gamma.Output(0))
	sub.AddResult(gamma.Output(1))

	ptg := Analyze(g)
	pClass, _ := ptg.ClassOf(p.Output(0))
	qClass, _ := ptg.ClassOf(q.Output(0))
	assert.Equal(t, pClass, qClass, "both allocas reach the gamma's shared output register and must unify")
}
