package pointsto

import (
	"fmt"

	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// analyzer holds the union-find state while walking the graph; Analyze
// discards it and returns only the collapsed Graph.
type analyzer struct {
	uf       *unionFind
	cellOf   map[rvsdg.Origin]int
	pointsTo map[int]int // cell id -> pointee cell id, pre-collapse
	sites    map[int][]string
	kinds    map[int]LocationKind
	escapes  map[int]bool
	lambdas  map[int][]*rvsdg.Node // cell id -> lambda nodes known reachable through it
}

// Analyze runs Steensgaard's unification-based points-to analysis
// over every region reachable from g's root — lambda, phi and
// delta bodies, and their nested gamma/theta subregions — and returns
// the collapsed points-to graph.
func Analyze(g *rvsdg.Graph) *Graph {
	a := &analyzer{
		uf:       newUnionFind(),
		cellOf:   map[rvsdg.Origin]int{},
		pointsTo: map[int]int{},
		sites:    map[int][]string{},
		kinds:    map[int]LocationKind{},
		escapes:  map[int]bool{},
		lambdas:  map[int][]*rvsdg.Node{},
	}
	a.walkRegion(g.Root())
	return a.collapse()
}

func isTracked(t types.Type) bool {
	switch t.(type) {
	case types.Pointer, types.Function:
		return true
	default:
		return false
	}
}

// cell returns o's cell, lazily allocating a fresh singleton for
// pointer/function-typed origins the analysis has not seen before.
// Untracked types (integers, memory-state, control, ...) never reach
// here in well-formed callers.
func (a *analyzer) cell(o rvsdg.Origin) int {
	if id, ok := a.cellOf[o]; ok {
		return id
	}
	id := a.uf.add()
	a.cellOf[o] = id
	return id
}

func (a *analyzer) markSite(id int, kind LocationKind, site string) {
	root := a.uf.find(id)
	a.kinds[root] = mergeKind(a.kinds[root], kind)
	a.sites[root] = append(a.sites[root], site)
}

// mergeKind keeps the most specific non-register label, preferring
// Unknown/ExternalMemory (they dominate: "could be anything" subsumes
// any more specific site) over a concrete allocation site.
func mergeKind(cur, incoming LocationKind) LocationKind {
	if cur == KindUnknown || cur == KindExternalMemory {
		return cur
	}
	if incoming == KindUnknown || incoming == KindExternalMemory {
		return incoming
	}
	if cur == KindRegister {
		return incoming
	}
	return cur
}

// pointee returns the cell that cell id's pointer target unifies to,
// creating a fresh one on first use (so later unifications have
// somewhere to attach).
func (a *analyzer) pointee(id int) int {
	root := a.uf.find(id)
	if t, ok := a.pointsTo[root]; ok {
		return a.uf.find(t)
	}
	t := a.uf.add()
	a.pointsTo[root] = t
	return t
}

// unify merges cells a and b's own classes, and — since Steensgaard
// represents "points-to" as a single shared edge per class — also
// unifies whatever they each already point to, so the merge is
// transitively consistent.
func (az *analyzer) unify(a, b int) {
	ra, rb := az.uf.find(a), az.uf.find(b)
	if ra == rb {
		return
	}
	pa, hasA := az.pointsTo[ra]
	pb, hasB := az.pointsTo[rb]
	root := az.uf.union(ra, rb)

	az.kinds[root] = mergeKind(az.kinds[ra], az.kinds[rb])
	az.sites[root] = append(az.sites[ra], az.sites[rb]...)
	az.escapes[root] = az.escapes[ra] || az.escapes[rb]
	lams := append(append([]*rvsdg.Node(nil), az.lambdas[ra]...), az.lambdas[rb]...)

	delete(az.pointsTo, ra)
	delete(az.pointsTo, rb)
	switch {
	case hasA && hasB:
		az.pointsTo[root] = pa
		az.unify(pa, pb)
	case hasA:
		az.pointsTo[root] = pa
	case hasB:
		az.pointsTo[root] = pb
	}

	// A call through a register whose points-to class just grew a new
	// lambda must unify that lambda's signature with everyone already
	// calling through this class.
	for _, l := range lams {
		az.bindLambda(root, l)
	}
	az.lambdas[root] = lams
}

func (a *analyzer) walkRegion(r *rvsdg.Region) {
	for _, n := range r.Nodes() {
		switch n.Kind() {
		case rvsdg.KindSimple:
			a.walkSimple(n)
		case rvsdg.KindGamma, rvsdg.KindTheta:
			for _, sub := range n.Subregions() {
				a.walkRegion(sub)
			}
			a.threadStructural(n)
		case rvsdg.KindLambda:
			a.declareLambda(n)
			a.walkRegion(n.Subregion(0))
			a.threadLambdaBoundary(n)
		case rvsdg.KindPhi:
			for i := range n.Phi.Names {
				a.markSite(a.cell(n.Output(i)), KindLambda, n.Phi.Names[i])
			}
			a.walkRegion(n.Subregion(0))
		case rvsdg.KindDelta:
			a.declareDelta(n)
			a.walkRegion(n.Subregion(0))
			a.threadDeltaBoundary(n)
		}
	}
}

// threadStructural unifies a gamma/theta's entry/loop-variable
// arguments and exit results with its own inputs/outputs position-wise
// for tracked types, since a structural node is transparent to pointer
// identity: whatever a case computes for a pointer-typed output is
// exactly what flows out, and whatever reaches an entry variable is
// exactly what was passed in.
func (a *analyzer) threadStructural(n *rvsdg.Node) {
	switch n.Kind() {
	case rvsdg.KindGamma:
		for _, sub := range n.Subregions() {
			for i := 0; i < sub.NArguments(); i++ {
				arg := sub.Argument(i)
				if isTracked(arg.Type()) {
					a.unify(a.cell(arg), a.cell(n.Input(i+1).Origin()))
				}
			}
			for i := 0; i < sub.NResults(); i++ {
				res := sub.Result(i)
				if isTracked(res.Type()) {
					a.unify(a.cell(n.Output(i)), a.cell(res.Origin()))
				}
			}
		}
	case rvsdg.KindTheta:
		sub := n.Subregion(0)
		for i := 0; i < n.NInputs(); i++ {
			if !isTracked(n.Input(i).Type()) {
				continue
			}
			a.unify(a.cell(sub.Argument(i)), a.cell(n.Input(i).Origin()))
			a.unify(a.cell(n.Output(i)), a.cell(sub.Result(i+1).Origin()))
			a.unify(a.cell(sub.Argument(i)), a.cell(n.Output(i)))
		}
	}
}

func (a *analyzer) declareLambda(n *rvsdg.Node) {
	id := a.cell(n.Output(0))
	a.markSite(id, KindLambda, n.Lambda.Name)
	a.lambdas[a.uf.find(id)] = append(a.lambdas[a.uf.find(id)], n)
	if n.Lambda.Linkage == rvsdg.LinkageExternal {
		a.escapes[a.uf.find(id)] = true
	}
}

// threadLambdaBoundary unifies each tracked context variable with its
// corresponding subregion argument, and (since real parameters/results
// carry no producer to trace) marks every tracked parameter/result
// escaping for an externally-linked function, conservatively unifying
// it with unknown — an exported function's caller is outside this
// analysis's view.
func (a *analyzer) threadLambdaBoundary(n *rvsdg.Node) {
	sub := n.Subregion(0)
	for i := 0; i < n.Lambda.NumContext; i++ {
		arg := sub.Argument(i)
		if isTracked(arg.Type()) {
			a.unify(a.cell(arg), a.cell(n.Input(i).Origin()))
		}
	}
	if n.Lambda.Linkage != rvsdg.LinkageExternal {
		return
	}
	unk := a.unknownCell()
	for i := n.Lambda.NumContext; i < sub.NArguments(); i++ {
		arg := sub.Argument(i)
		if isTracked(arg.Type()) {
			a.unify(a.cell(arg), unk)
		}
	}
	for i := 0; i < sub.NResults(); i++ {
		res := sub.Result(i)
		if isTracked(res.Type()) {
			a.unify(a.cell(res.Origin()), unk)
		}
	}
}

func (a *analyzer) declareDelta(n *rvsdg.Node) {
	id := a.cell(n.Output(0))
	a.markSite(id, KindDelta, n.Delta.Name)
	if n.Delta.Linkage == rvsdg.LinkageExternal {
		a.escapes[a.uf.find(id)] = true
	}
}

func (a *analyzer) threadDeltaBoundary(n *rvsdg.Node) {
	sub := n.Subregion(0)
	for i := 0; i < sub.NArguments(); i++ {
		arg := sub.Argument(i)
		if isTracked(arg.Type()) {
			a.unify(a.cell(arg), a.cell(n.Input(i).Origin()))
		}
	}
	if res := sub.Result(0); isTracked(res.Type()) {
		a.unify(a.pointee(a.cell(n.Output(0))), a.cell(res.Origin()))
	}
}

func (a *analyzer) unknownCell() int {
	for id, k := range a.kinds {
		if k == KindUnknown {
			return id
		}
	}
	id := a.uf.add()
	a.kinds[id] = KindUnknown
	return id
}

func (a *analyzer) walkSimple(n *rvsdg.Node) {
	switch op := n.Operation().(type) {
	case ops.AllocaOp:
		p := n.Output(0)
		loc := a.uf.add()
		a.markSite(loc, KindAlloca, fmt.Sprintf("alloca@%p", n))
		a.pointsTo[a.uf.find(a.cell(p))] = loc

	case ops.LoadOp:
		if !isTracked(op.Elem) {
			return
		}
		p := n.Input(0).Origin()
		r := n.Output(0)
		a.unify(a.cell(r), a.pointee(a.cell(p)))

	case ops.StoreOp:
		if !isTracked(op.Elem) {
			return
		}
		p := n.Input(0).Origin()
		v := n.Input(1).Origin()
		a.unify(a.pointee(a.cell(p)), a.cell(v))

	case ops.CallOp:
		a.walkCall(n, op)

	default:
		a.walkGenericPointerFlow(n)
	}
}

// walkGenericPointerFlow is the faithful generalization of the
// "copy" rule to any simple operation not given a dedicated rule above:
// every tracked-type input unifies with every tracked-type output of
// the same node, since without operation-specific knowledge the only
// sound assumption is that the node may let any such input flow
// straight through to any such output.
func (a *analyzer) walkGenericPointerFlow(n *rvsdg.Node) {
	var ins []rvsdg.Origin
	for _, in := range n.Inputs() {
		if isTracked(in.Type()) {
			ins = append(ins, in.Origin())
		}
	}
	if len(ins) == 0 {
		return
	}
	for _, out := range n.Outputs() {
		if !isTracked(out.Type()) {
			continue
		}
		for _, in := range ins {
			a.unify(a.cell(out), a.cell(in))
		}
	}
}

func (a *analyzer) walkCall(n *rvsdg.Node, op ops.CallOp) {
	callee := n.Input(0).Origin()
	if lam, ok := callee.(*rvsdg.Output); ok && lam.Node().Kind() == rvsdg.KindLambda {
		a.bindLambda(a.uf.find(a.cell(callee)), lam.Node())
	} else {
		// Indirect call: whichever lambdas later unify into the callee's
		// class get bound retroactively by unify's own bookkeeping; bind
		// whatever is already known now.
		calleeRoot := a.uf.find(a.cell(callee))
		for _, lam := range a.lambdas[calleeRoot] {
			a.bindLambda(calleeRoot, lam)
		}
	}
	_ = op
}

// bindLambda unifies a call's argument/result registers with lam's own
// parameter/result registers, using lam's canonical signature — the
// rule applies once per (callee-class, lambda) pair reachable through
// that class, whether the call was direct or (eventually) indirect.
func (a *analyzer) bindLambda(calleeRoot int, lam *rvsdg.Node) {
	sub := lam.Subregion(0)
	for _, user := range a.callSitesOf(calleeRoot) {
		n, op := user.node, user.op
		for i, t := range op.Args {
			if !isTracked(t) {
				continue
			}
			a.unify(a.cell(n.Input(i+1).Origin()), a.cell(sub.Argument(lam.Lambda.NumContext+i)))
		}
		for i, t := range op.Results {
			if !isTracked(t) {
				continue
			}
			a.unify(a.cell(n.Output(i)), a.cell(sub.Result(i).Origin()))
		}
	}
}

type callUse struct {
	node *rvsdg.Node
	op   ops.CallOp
}

// callSitesOf returns every CallOp node in the analyzed program whose
// callee cell currently unifies to calleeRoot. Recomputed on demand
// (call sites are rare relative to simple nodes) rather than maintained
// incrementally; bindLambda, its only caller, runs once per call walked
// by walkCall and when a lambda joins a callee class.
func (a *analyzer) callSitesOf(calleeRoot int) []callUse {
	var out []callUse
	for o, id := range a.cellOf {
		out2, ok := o.(*rvsdg.Output)
		if !ok {
			continue
		}
		for _, user := range out2.Users() {
			if user.Index() != 0 || user.Node() == nil {
				continue
			}
			if call, ok := user.Node().Operation().(ops.CallOp); ok {
				if a.uf.find(id) == calleeRoot {
					out = append(out, callUse{node: user.Node(), op: call})
				}
			}
		}
	}
	return out
}

// collapse materializes the final Graph from the union-find state,
// assigning one Vertex per surviving root.
func (a *analyzer) collapse() *Graph {
	g := &Graph{classOf: map[rvsdg.Origin]int{}, pointsTo: map[int]int{}}
	rootToVertex := map[int]int{}

	rootOf := func(id int) int { return a.uf.find(id) }

	ensure := func(root int) int {
		if vid, ok := rootToVertex[root]; ok {
			return vid
		}
		kind := a.kinds[root]
		v := &Vertex{ID: len(g.Vertices), Kind: kind, Sites: a.sites[root], Escapes: a.escapes[root]}
		g.Vertices = append(g.Vertices, v)
		rootToVertex[root] = v.ID
		return v.ID
	}

	for o, id := range a.cellOf {
		g.classOf[o] = ensure(rootOf(id))
	}
	for root := range a.kinds {
		ensure(rootOf(root))
	}
	for root, target := range a.pointsTo {
		vr := ensure(rootOf(root))
		vt := ensure(rootOf(target))
		g.pointsTo[vr] = vt
	}
	return g
}
