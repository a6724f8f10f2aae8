package text

import (
	"fmt"
	"strings"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/ops"
	"jlmgo/internal/types"
)

// symtab maps a function/global's variable names, as written with their
// leading "%" in source, to the cfgir.Variable they denote — function-
// scoped, not block-scoped, mirroring cfgir's own non-SSA "a name may be
// redefined in more than one block" convention (see internal/destruct's
// doc comment on why cfgir has no phi instruction). The leading sigil is
// stripped before it reaches the cfgir.Variable itself.
type symtab map[string]*cfgir.Variable

func (s symtab) resolveOut(od *OutDecl) (*cfgir.Variable, error) {
	t, err := toType(od.T)
	if err != nil {
		return nil, err
	}
	if v, ok := s[od.Name]; ok {
		if !v.T.Equal(t) {
			return nil, fmt.Errorf("variable %s redeclared with a different type", od.Name)
		}
		return v, nil
	}
	v := cfgir.NewVariable(strings.TrimPrefix(od.Name, "%"), t)
	s[od.Name] = v
	return v, nil
}

func (s symtab) resolveIn(name string) (*cfgir.Variable, error) {
	v, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("variable %s used before it is defined", name)
	}
	return v, nil
}

func literalValue(l *Literal) any {
	switch {
	case l.Int != nil:
		return *l.Int
	case l.Float != nil:
		return *l.Float
	case l.Bool != nil:
		return *l.Bool == "true"
	default:
		return nil
	}
}

func buildTac(td *TacDecl, s symtab) (*cfgir.Tac, error) {
	switch {
	case td.Const != nil:
		out, err := s.resolveOut(td.Const.Out)
		if err != nil {
			return nil, err
		}
		op := ops.ConstantOp{T: out.T, Value: literalValue(td.Const.Value)}
		return cfgir.NewTac(op, nil, []*cfgir.Variable{out}), nil

	case td.Match != nil:
		out, err := s.resolveOut(td.Match.Out)
		if err != nil {
			return nil, err
		}
		in, err := s.resolveIn(td.Match.Ctl)
		if err != nil {
			return nil, err
		}
		ctl, ok := out.T.(types.Control)
		if !ok {
			return nil, fmt.Errorf("match: output %s must be control-typed", out.Name)
		}
		mapping := map[int64]int{}
		for _, e := range td.Match.Entries {
			mapping[int64(e.From)] = e.To
		}
		op := ops.MatchOp{In: in.T, N: ctl.N, Mapping: mapping, Default: td.Match.Default}
		return cfgir.NewTac(op, []*cfgir.Variable{in}, []*cfgir.Variable{out}), nil

	case td.Basic != nil:
		outs := make([]*cfgir.Variable, len(td.Basic.Outs))
		for i, od := range td.Basic.Outs {
			v, err := s.resolveOut(od)
			if err != nil {
				return nil, err
			}
			outs[i] = v
		}
		operands := make([]*cfgir.Variable, len(td.Basic.Operands))
		for i, name := range td.Basic.Operands {
			v, err := s.resolveIn(name)
			if err != nil {
				return nil, err
			}
			operands[i] = v
		}
		op, err := buildBasicOp(td.Basic.Mnemonic, outs, operands)
		if err != nil {
			return nil, err
		}
		return cfgir.NewTac(op, operands, outs), nil
	}
	return nil, fmt.Errorf("empty tac declaration")
}
