package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/ops"
	"jlmgo/internal/passes/dne"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

func i32() types.Type { return types.Integer{Width: 32} }

// TestInstrumentRecordsNodesRemoved builds a lambda with one live add and
// one dead, unused add, runs dead-node-elimination through an
// instrumented wrapper, and checks the resulting record reflects the
// pass having actually changed the graph and shrunk its node count.
func TestInstrumentRecordsNodesRemoved(t *testing.T) {
	g := rvsdg.NewGraph()
	lam := g.NewLambda(g.Root(), "f", rvsdg.LinkageExternal, nil, []types.Type{i32()}, []types.Type{i32()})
	sub := lam.Subregion(0)
	live := g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{sub.Argument(0), sub.Argument(0)})
	g.CreateNode(sub, ops.BinaryOp{BKind: ops.Add, T: i32()}, []rvsdg.Origin{sub.Argument(0), sub.Argument(0)})
	sub.AddResult(live.Output(0))
	g.Root().AddResult(lam.Output(0))

	rec := NewRecorder()
	pass := rec.Instrument(dne.Pass{})

	changed := pass.Run(g)
	require.True(t, changed)

	require.Len(t, rec.Records(), 1)
	r := rec.Records()[0]
	assert.Equal(t, "dead-node-elimination", r.Pass)
	assert.True(t, r.Changed)
	assert.Equal(t, 1, r.NodesRemoved, "the unused add node should be swept")
	assert.Equal(t, r.NodesBefore-r.NodesAfter, r.NodesRemoved)
}

// TestWriteToFormatsAppendOnlyLines checks the written stats carry one
// whitespace-separated KEY VALUE record per line, prefixed by the pass
// identifier, and that a second WriteTo call on an independently
// populated Recorder appends rather than replaces.
func TestWriteToFormatsAppendOnlyLines(t *testing.T) {
	rec := NewRecorder()
	rec.records = []Record{
		{Pass: "dead-node-elimination", NodesBefore: 5, NodesAfter: 3, NodesRemoved: 2, Changed: true},
		{Pass: "common-node-elimination", NodesBefore: 3, NodesAfter: 3, NodesRemoved: 0, Changed: false},
	}

	var buf strings.Builder
	require.NoError(t, rec.WriteTo(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "dead-node-elimination "))
	assert.Contains(t, lines[0], "nodes_removed 2")
	assert.True(t, strings.HasPrefix(lines[1], "common-node-elimination "))
	assert.Contains(t, lines[1], "changed 0")

	require.NoError(t, rec.WriteTo(&buf))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4, "a second WriteTo call appends rather than truncates")
}
