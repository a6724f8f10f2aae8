// Package stats implements the pass driver's statistics file: an
// append-only record of per-pass timing and node-count counters,
// written as one line of whitespace-separated KEY VALUE pairs per pass
// run, prefixed by the pass identifier. There is no reference file to
// ground the record format on directly — prior art carries only
// references to a StatisticsDescriptor/StatisticsId pairing, no
// definition — so the format here is append-only, one record per line,
// whitespace-separated KEY VALUE. The pass-selection
// and per-pass progress-line behavior it's paired with is grounded on a
// reference OptimizationPipeline.Run, generalized from println progress
// lines to a durable, parseable record.
package stats

import (
	"fmt"
	"io"
	"time"

	"jlmgo/internal/passes"
	"jlmgo/internal/rvsdg"
)

// Record is one pass run's recorded statistics.
type Record struct {
	Pass         string
	Wall         time.Duration
	Changed      bool
	NodesBefore  int
	NodesAfter   int
	NodesRemoved int // positive when the pass shrank the graph, negative when it grew it
}

// Recorder accumulates Records and can flush them to a stats file in
// this append-only KEY VALUE line format.
type Recorder struct {
	records []Record
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Records returns every record accumulated so far, in run order.
func (r *Recorder) Records() []Record { return r.records }

// Instrument wraps pass so that every Run call is timed and counted
// against g's total node count before and after, with the resulting
// Record appended to r. It returns a passes.Pass so an instrumented pass
// can be dropped straight into a passes.Pipeline in place of the
// original (the timing/counting is then transparent to the pipeline).
func (r *Recorder) Instrument(pass passes.Pass) passes.Pass {
	return &instrumented{pass: pass, rec: r}
}

type instrumented struct {
	pass passes.Pass
	rec  *Recorder
}

func (p *instrumented) Name() string        { return p.pass.Name() }
func (p *instrumented) Description() string { return p.pass.Description() }

func (p *instrumented) Run(g *rvsdg.Graph) bool {
	before := CountNodes(g)
	start := time.Now()
	changed := p.pass.Run(g)
	wall := time.Since(start)
	after := CountNodes(g)

	p.rec.records = append(p.rec.records, Record{
		Pass:         p.pass.Name(),
		Wall:         wall,
		Changed:      changed,
		NodesBefore:  before,
		NodesAfter:   after,
		NodesRemoved: before - after,
	})
	return changed
}

// CountNodes counts every node reachable from g's root region, recursing
// into every structural node's subregions — the same whole-graph walk
// shape every pass under internal/passes/* already uses to visit every
// node (see e.g. internal/passes/inline's inlineRegion, ivrRegion).
// Exported so internal/driver can report a before/after delta for
// pass-like steps (normalization, points-to encoding) that do not
// themselves implement passes.Pass.
func CountNodes(g *rvsdg.Graph) int {
	return countRegion(g.Root())
}

func countRegion(region *rvsdg.Region) int {
	n := region.NNodes()
	for _, node := range region.Nodes() {
		for _, sub := range node.Subregions() {
			n += countRegion(sub)
		}
	}
	return n
}

// WriteTo appends every accumulated record to w, one line per record, as
// whitespace-separated KEY VALUE pairs prefixed by the pass identifier.
func (r *Recorder) WriteTo(w io.Writer) error {
	for _, rec := range r.records {
		_, err := fmt.Fprintf(w, "%s wall_ns %d changed %d nodes_before %d nodes_after %d nodes_removed %d\n",
			rec.Pass, rec.Wall.Nanoseconds(), boolInt(rec.Changed), rec.NodesBefore, rec.NodesAfter, rec.NodesRemoved)
		if err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
