package text

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
	"jlmgo/internal/ops"
)

// WriteLLVM renders m back into this package's own surface syntax — named
// "llvm" because it is the default, external textual format, the one a
// front end would hand the pass driver and a back end would consume back:
// an external, human-readable textual form. The result parses
// back into an equal module via Parse, modulo cfgir.Variable pointer
// identity.
func WriteLLVM(m *cfgir.Module, w io.Writer) error {
	for _, im := range m.Imports {
		if _, err := fmt.Fprintf(w, "import @%s: %s\n", im.Name, typeExprOf(im.T)); err != nil {
			return err
		}
	}
	for _, gd := range m.Globals {
		if err := writeGlobal(w, gd); err != nil {
			return err
		}
	}
	for _, fn := range m.Functions {
		if err := writeFunction(w, fn); err != nil {
			return err
		}
	}
	return nil
}

func writeGlobal(w io.Writer, gd *cfgir.GlobalData) error {
	kw := "global"
	if gd.Constant {
		kw = "const global"
	}
	if _, err := fmt.Fprintf(w, "%s @%s: %s {\n", kw, gd.Name, typeExprOf(gd.T)); err != nil {
		return err
	}
	block, ok := singleBlock(gd.Init)
	if !ok {
		return fmt.Errorf("global %s: initializer is not a single straight-line block", gd.Name)
	}
	for _, tac := range block.Tacs() {
		if err := writeTac(w, tac, "  "); err != nil {
			return err
		}
	}
	resultVar := gd.Init.Exit().Attr.(cfgir.ExitAttr).Results[0]
	_, err := fmt.Fprintf(w, "  result %%%s\n}\n", resultVar.Name)
	return err
}

// singleBlock returns the cfg's one basic block when it is shaped as
// entry -> block -> exit with no other nodes, the shape buildGlobal always
// produces.
func singleBlock(cfg *cfgir.Cfg) (*cfgir.BasicBlockAttr, bool) {
	if len(cfg.Entry().Successors) != 1 {
		return nil, false
	}
	bb, ok := cfg.Entry().Successors[0].BasicBlock()
	return bb, ok
}

func writeFunction(w io.Writer, fn *cfgir.Function) error {
	var kw string
	if fn.External {
		kw = "extern "
	}
	params := make([]string, len(fn.ParamTypes))
	entryArgs := fn.Cfg.Entry().Attr.(cfgir.EntryAttr).Arguments
	for i, t := range fn.ParamTypes {
		params[i] = fmt.Sprintf("%%%s: %s", entryArgs[i].Name, typeExprOf(t))
	}
	results := make([]string, len(fn.ResultTypes))
	for i, t := range fn.ResultTypes {
		results[i] = typeExprOf(t)
	}
	if _, err := fmt.Fprintf(w, "%sfn @%s(%s) -> (%s) {\n", kw, fn.Name, strings.Join(params, ", "), strings.Join(results, ", ")); err != nil {
		return err
	}

	blocks := orderedBlocks(fn.Cfg)
	labels := labelsFor(blocks)
	for _, n := range blocks {
		bb, _ := n.BasicBlock()
		if _, err := fmt.Fprintf(w, "  %s:\n", labels[n]); err != nil {
			return err
		}
		for _, tac := range bb.Tacs() {
			if err := writeTac(w, tac, "    "); err != nil {
				return err
			}
		}
		if err := writeTerminator(w, n, labels, fn.Cfg.Exit()); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "}\n")
	return err
}

// orderedBlocks returns fn's basic-block nodes (excluding entry/exit) in
// creation order, which Cfg.Nodes preserves.
func orderedBlocks(cfg *cfgir.Cfg) []*cfgir.CfgNode {
	var out []*cfgir.CfgNode
	for _, n := range cfg.Nodes() {
		if _, ok := n.BasicBlock(); ok {
			out = append(out, n)
		}
	}
	return out
}

func labelsFor(blocks []*cfgir.CfgNode) map[*cfgir.CfgNode]string {
	labels := make(map[*cfgir.CfgNode]string, len(blocks))
	for _, n := range blocks {
		labels[n] = fmt.Sprintf("bb%d", n.ID())
	}
	return labels
}

func writeTerminator(w io.Writer, n *cfgir.CfgNode, labels map[*cfgir.CfgNode]string, exit *cfgir.CfgNode) error {
	for _, s := range n.Successors {
		if s == exit {
			results := exit.Attr.(cfgir.ExitAttr).Results
			names := make([]string, len(results))
			for i, v := range results {
				names[i] = "%" + v.Name
			}
			_, err := fmt.Fprintf(w, "    return %s\n", strings.Join(names, ", "))
			return err
		}
	}
	names := make([]string, len(n.Successors))
	for i, s := range n.Successors {
		names[i] = labels[s]
	}
	_, err := fmt.Fprintf(w, "    -> %s\n", strings.Join(names, ", "))
	return err
}

func writeTac(w io.Writer, tac *cfgir.Tac, indent string) error {
	switch op := tac.Op.(type) {
	case ops.ConstantOp:
		lit, err := literalText(op.Value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s%s = const %s\n", indent, outDecl(tac.Outputs[0]), lit)
		return err

	case ops.MatchOp:
		entries := make([]string, 0, len(op.Mapping))
		froms := make([]int64, 0, len(op.Mapping))
		for from := range op.Mapping {
			froms = append(froms, from)
		}
		sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
		for _, from := range froms {
			entries = append(entries, fmt.Sprintf("%d->%d", from, op.Mapping[from]))
		}
		_, err := fmt.Fprintf(w, "%s%s = match %%%s [%s] default %d\n",
			indent, outDecl(tac.Outputs[0]), tac.Inputs[0].Name, strings.Join(entries, ", "), op.Default)
		return err

	default:
		mnemonic, ok := mnemonicOf(op)
		if !ok {
			errors.Invariant("text: operation %s has no textual mnemonic", op.Name())
		}
		outs := make([]string, len(tac.Outputs))
		for i, v := range tac.Outputs {
			outs[i] = outDecl(v)
		}
		operands := make([]string, len(tac.Inputs))
		for i, v := range tac.Inputs {
			operands[i] = "%" + v.Name
		}
		_, err := fmt.Fprintf(w, "%s%s = %s %s\n", indent, strings.Join(outs, ", "), mnemonic, strings.Join(operands, ", "))
		return err
	}
}

func outDecl(v *cfgir.Variable) string {
	return fmt.Sprintf("%%%s: %s", v.Name, typeExprOf(v.T))
}

func literalText(v any) (string, error) {
	switch x := v.(type) {
	case int64:
		return fmt.Sprintf("%d", x), nil
	case float64:
		s := fmt.Sprintf("%g", x)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("constant value %v has no textual literal form", v)
	}
}

// xmlModule/xmlFunc/xmlTac mirror cfgir.Module's shape for --xml's
// "internal graph dump" output — a direct structural serialization rather
// than this package's own round-trippable surface syntax.
type xmlModule struct {
	XMLName xml.Name    `xml:"module"`
	Imports []xmlImport `xml:"import"`
	Globals []xmlGlobal `xml:"global"`
	Funcs   []xmlFunc   `xml:"function"`
}

type xmlImport struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlGlobal struct {
	Name     string   `xml:"name,attr"`
	Type     string   `xml:"type,attr"`
	Constant bool     `xml:"constant,attr"`
	Tacs     []xmlTac `xml:"tac"`
	Result   string   `xml:"result,attr"`
}

type xmlFunc struct {
	Name     string     `xml:"name,attr"`
	External bool       `xml:"external,attr"`
	Params   []string   `xml:"param"`
	Results  []string   `xml:"result"`
	Blocks   []xmlBlock `xml:"block"`
}

type xmlBlock struct {
	Label string   `xml:"label,attr"`
	Tacs  []xmlTac `xml:"tac"`
	Succ  []string `xml:"succ"`
	Ret   []string `xml:"return"`
}

type xmlTac struct {
	Outputs  []string `xml:"out"`
	Mnemonic string   `xml:"op,attr"`
	Inputs   []string `xml:"in"`
}

// WriteXML renders m as the --xml internal graph dump, a structural
// serialization of the same cfgir.Module via encoding/xml rather than this
// package's own grammar — grounded on the "internal debug dump" framing
// of --xml in the source this was distilled from (see DESIGN.md), since
// nothing in the reference stack carries an XML dependency to ground the
// choice of encoding/xml on beyond the standard library.
func WriteXML(m *cfgir.Module, w io.Writer) error {
	out := xmlModule{}
	for _, im := range m.Imports {
		out.Imports = append(out.Imports, xmlImport{Name: im.Name, Type: typeExprOf(im.T)})
	}
	for _, gd := range m.Globals {
		bb, ok := singleBlock(gd.Init)
		if !ok {
			return fmt.Errorf("global %s: initializer is not a single straight-line block", gd.Name)
		}
		xg := xmlGlobal{Name: gd.Name, Type: typeExprOf(gd.T), Constant: gd.Constant,
			Result: gd.Init.Exit().Attr.(cfgir.ExitAttr).Results[0].Name}
		for _, tac := range bb.Tacs() {
			xg.Tacs = append(xg.Tacs, xmlTacOf(tac))
		}
		out.Globals = append(out.Globals, xg)
	}
	for _, fn := range m.Functions {
		xf := xmlFunc{Name: fn.Name, External: fn.External}
		for _, v := range fn.Cfg.Entry().Attr.(cfgir.EntryAttr).Arguments {
			xf.Params = append(xf.Params, fmt.Sprintf("%s: %s", v.Name, typeExprOf(v.T)))
		}
		for _, v := range fn.Cfg.Exit().Attr.(cfgir.ExitAttr).Results {
			xf.Results = append(xf.Results, fmt.Sprintf("%s: %s", v.Name, typeExprOf(v.T)))
		}
		blocks := orderedBlocks(fn.Cfg)
		labels := labelsFor(blocks)
		for _, n := range blocks {
			bb, _ := n.BasicBlock()
			xb := xmlBlock{Label: labels[n]}
			for _, tac := range bb.Tacs() {
				xb.Tacs = append(xb.Tacs, xmlTacOf(tac))
			}
			isReturn := false
			for _, s := range n.Successors {
				if s == fn.Cfg.Exit() {
					isReturn = true
				}
			}
			if isReturn {
				for _, v := range fn.Cfg.Exit().Attr.(cfgir.ExitAttr).Results {
					xb.Ret = append(xb.Ret, v.Name)
				}
			} else {
				for _, s := range n.Successors {
					xb.Succ = append(xb.Succ, labels[s])
				}
			}
			xf.Blocks = append(xf.Blocks, xb)
		}
		out.Funcs = append(out.Funcs, xf)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(out)
}

func xmlTacOf(tac *cfgir.Tac) xmlTac {
	x := xmlTac{Mnemonic: tac.Op.Name()}
	for _, v := range tac.Outputs {
		x.Outputs = append(x.Outputs, fmt.Sprintf("%s: %s", v.Name, typeExprOf(v.T)))
	}
	for _, v := range tac.Inputs {
		x.Inputs = append(x.Inputs, v.Name)
	}
	return x
}
