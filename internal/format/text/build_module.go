package text

import (
	"fmt"
	"strings"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/types"
)

func stripSigil(s string) string { return strings.TrimPrefix(strings.TrimPrefix(s, "@"), "%") }

// buildGlobal turns a GlobalDecl into a cfgir.GlobalData with a
// dependency-free, single-block initializer (internal/construct.Module's
// own restriction: see its doc comment on why dependency-bearing globals
// are out of scope).
func buildGlobal(gd *GlobalDecl) (*cfgir.GlobalData, error) {
	t, err := toType(gd.T)
	if err != nil {
		return nil, fmt.Errorf("global %s: %w", gd.Name, err)
	}

	s := symtab{}
	var tacs []*cfgir.Tac
	for _, td := range gd.Tacs {
		tac, err := buildTac(td, s)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", gd.Name, err)
		}
		tacs = append(tacs, tac)
	}

	result, err := s.resolveIn(gd.Result)
	if err != nil {
		return nil, fmt.Errorf("global %s: result: %w", gd.Name, err)
	}
	if !result.T.Equal(t) {
		return nil, fmt.Errorf("global %s: result %s has type %s, declared type is %s", gd.Name, result.Name, result.T, t)
	}

	cfg := cfgir.NewCfg(nil, []*cfgir.Variable{result})
	block := cfg.CreateBasicBlock()
	bb, _ := block.BasicBlock()
	for _, tac := range tacs {
		bb.Append(tac)
	}
	cfg.AddEdge(cfg.Entry(), block)
	cfg.AddEdge(block, cfg.Exit())

	return &cfgir.GlobalData{Name: stripSigil(gd.Name), T: t, Constant: gd.Constant, Init: cfg}, nil
}

// blockBuild is phase one's output for a single block: its built tacs,
// still unattached to any cfgir.CfgNode, plus its terminator.
type blockBuild struct {
	label string
	tacs  []*cfgir.Tac
	term  *Terminator
}

// buildFunction turns a FuncDecl into a cfgir.Function: a two-phase
// translation, since a block's jump targets may name a label that appears
// later in the file (forward edges) or earlier (loop back-edges). Phase
// one builds every block's tac list, in file order, so the symbol table is
// fully populated and the function's single shared result vector can be
// fixed from the first "return" statement encountered (the
// one-result-vector-per-function convention, since cfgir has no phi to
// reconcile per-block differences); phase two creates the cfg's nodes and
// wires edges now that every label is known.
func buildFunction(fd *FuncDecl) (*cfgir.Function, error) {
	s := symtab{}
	paramTypes := make([]types.Type, len(fd.Params))
	params := make([]*cfgir.Variable, len(fd.Params))
	for i, p := range fd.Params {
		t, err := toType(p.T)
		if err != nil {
			return nil, fmt.Errorf("fn %s: param %s: %w", fd.Name, p.Name, err)
		}
		v := cfgir.NewVariable(stripSigil(p.Name), t)
		s[p.Name] = v
		params[i] = v
		paramTypes[i] = t
	}

	resultTypes := make([]types.Type, len(fd.Results))
	for i, te := range fd.Results {
		t, err := toType(te)
		if err != nil {
			return nil, fmt.Errorf("fn %s: result type %d: %w", fd.Name, i, err)
		}
		resultTypes[i] = t
	}

	if len(fd.Blocks) == 0 {
		return nil, fmt.Errorf("fn %s: has no blocks", fd.Name)
	}

	var builds []blockBuild
	var resultNames []string
	for _, bd := range fd.Blocks {
		var tacs []*cfgir.Tac
		for _, td := range bd.Tacs {
			tac, err := buildTac(td, s)
			if err != nil {
				return nil, fmt.Errorf("fn %s: block %s: %w", fd.Name, bd.Label, err)
			}
			tacs = append(tacs, tac)
		}
		if bd.Term.Return != nil {
			if resultNames == nil {
				resultNames = bd.Term.Return.Vars
			} else if !sameNames(resultNames, bd.Term.Return.Vars) {
				return nil, fmt.Errorf("fn %s: block %s: return names %v, first return named %v",
					fd.Name, bd.Label, bd.Term.Return.Vars, resultNames)
			}
		}
		builds = append(builds, blockBuild{label: bd.Label, tacs: tacs, term: bd.Term})
	}

	results := make([]*cfgir.Variable, len(resultNames))
	for i, name := range resultNames {
		v, err := s.resolveIn(name)
		if err != nil {
			return nil, fmt.Errorf("fn %s: return: %w", fd.Name, err)
		}
		results[i] = v
	}
	if len(results) != len(resultTypes) {
		return nil, fmt.Errorf("fn %s: returns %d values, declared %d result types", fd.Name, len(results), len(resultTypes))
	}
	for i, v := range results {
		if !v.T.Equal(resultTypes[i]) {
			return nil, fmt.Errorf("fn %s: return value %d has type %s, declared result type is %s", fd.Name, i, v.T, resultTypes[i])
		}
	}

	cfg := cfgir.NewCfg(params, results)

	nodes := make(map[string]*cfgir.CfgNode, len(builds))
	for _, b := range builds {
		node := cfg.CreateBasicBlock()
		bb, _ := node.BasicBlock()
		for _, tac := range b.tacs {
			bb.Append(tac)
		}
		nodes[b.label] = node
	}

	cfg.AddEdge(cfg.Entry(), nodes[builds[0].label])
	for _, b := range builds {
		from := nodes[b.label]
		switch {
		case b.term.Jump != nil:
			for _, succ := range b.term.Jump.Succs {
				to, ok := nodes[succ]
				if !ok {
					return nil, fmt.Errorf("fn %s: block %s: jump to undefined label %s", fd.Name, b.label, succ)
				}
				cfg.AddEdge(from, to)
			}
		case b.term.Return != nil:
			cfg.AddEdge(from, cfg.Exit())
		default:
			return nil, fmt.Errorf("fn %s: block %s: has no terminator", fd.Name, b.label)
		}
	}

	return &cfgir.Function{
		Name:        stripSigil(fd.Name),
		External:    fd.External,
		ParamTypes:  paramTypes,
		ResultTypes: resultTypes,
		Cfg:         cfg,
	}, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Build converts a parsed File into a cfgir.Module.
func Build(f *File) (*cfgir.Module, error) {
	m := &cfgir.Module{}

	for _, im := range f.Imports {
		t, err := toType(im.T)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", im.Name, err)
		}
		m.Imports = append(m.Imports, &cfgir.Import{Name: stripSigil(im.Name), T: t})
	}

	for _, gd := range f.Globals {
		g, err := buildGlobal(gd)
		if err != nil {
			return nil, err
		}
		m.Globals = append(m.Globals, g)
	}

	for _, fd := range f.Functions {
		fn, err := buildFunction(fd)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, fn)
	}

	return m, nil
}
