package pointsto

import "jlmgo/internal/rvsdg"

// LocationKind classifies a points-to graph vertex.
type LocationKind int

const (
	// KindRegister is a pointer- or function-typed SSA value (an RVSDG
	// output or region argument), not itself a storage location.
	KindRegister LocationKind = iota
	KindAlloca
	KindDelta
	KindLambda
	KindImport
	KindUnknown
	KindExternalMemory
)

func (k LocationKind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindAlloca:
		return "alloca"
	case KindDelta:
		return "delta"
	case KindLambda:
		return "lambda"
	case KindImport:
		return "import"
	case KindUnknown:
		return "unknown"
	case KindExternalMemory:
		return "external-memory"
	default:
		return "?"
	}
}

// Vertex is one collapsed points-to equivalence class: each union-find
// equivalence class collapses into one points-to-graph memory node.
// Sites lists every allocation/global/function site that
// unified into this class; Kind is the most specific label among them
// (Unknown/ExternalMemory dominate, since they mean "could be
// anything"; otherwise a class with no sites of its own is a pure
// Register vertex).
type Vertex struct {
	ID      int
	Kind    LocationKind
	Sites   []string
	Escapes bool
}

// Graph is the points-to graph: vertices are memory locations and
// registers; a directed edge v -> w asserts "a pointer held by v may
// point to w". Steensgaard's unification collapses every register that
// ever points at a given target into sharing that target's single
// outgoing edge, so each vertex has at most one outgoing edge here.
type Graph struct {
	Vertices []*Vertex
	pointsTo map[int]int

	// classOf maps each analyzed pointer/function-typed origin to its
	// collapsed vertex id, for callers translating graph queries back to
	// RVSDG origins (e.g. the memory-state encoders).
	classOf map[rvsdg.Origin]int
}

// ClassOf returns the vertex id for origin o, and whether o was ever
// seen by the analysis (unanalyzed origins, e.g. non-pointer values,
// return false).
func (g *Graph) ClassOf(o rvsdg.Origin) (int, bool) {
	id, ok := g.classOf[o]
	return id, ok
}

// PointsTo returns the vertex id that vertex id's pointer target
// unifies to, and whether one exists (a pure register vertex with
// nothing yet known to point at has none).
func (g *Graph) PointsTo(id int) (int, bool) {
	t, ok := g.pointsTo[id]
	return t, ok
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id int) *Vertex {
	return g.Vertices[id]
}

// ReachableLocations returns, from starting vertex id, every distinct
// memory-location vertex (Kind != KindRegister) reachable by following
// points-to edges — the "locations a node may touch" set the basic
// encoder keys its per-node class set on.
func (g *Graph) ReachableLocations(id int) []int {
	seen := map[int]bool{}
	var out []int
	var walk func(int)
	walk = func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		if g.Vertices[id].Kind != KindRegister {
			out = append(out, id)
		}
		if t, ok := g.pointsTo[id]; ok {
			walk(t)
		}
	}
	walk(id)
	return out
}
