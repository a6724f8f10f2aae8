package text

import (
	"fmt"
	"strconv"
	"strings"

	"jlmgo/internal/errors"
	"jlmgo/internal/types"
)

// toType resolves a parsed TypeExpr into a types.Type. Base names: iN
// (Integer), f32/f64 (Float), mem (MemoryState), io (IOState), ctlN
// (Control{N}); any number of trailing "*" wraps the result in Pointer,
// once per star.
func toType(te *TypeExpr) (types.Type, error) {
	var t types.Type
	switch {
	case te.Base == "mem":
		t = types.MemoryState{}
	case te.Base == "io":
		t = types.IOState{}
	case te.Base == "f32":
		t = types.Float{FKind: types.Float32}
	case te.Base == "f64":
		t = types.Float{FKind: types.Float64}
	case strings.HasPrefix(te.Base, "i"):
		w, err := strconv.Atoi(te.Base[1:])
		if err != nil {
			return nil, fmt.Errorf("unknown type %q", te.Base)
		}
		t = types.Integer{Width: w}
	case strings.HasPrefix(te.Base, "ctl"):
		n, err := strconv.Atoi(te.Base[3:])
		if err != nil {
			return nil, fmt.Errorf("unknown type %q", te.Base)
		}
		t = types.Control{N: n}
	default:
		return nil, fmt.Errorf("unknown type %q", te.Base)
	}
	for i := 0; i < te.Stars; i++ {
		t = types.Pointer{Pointee: t}
	}
	return t, nil
}

// typeExprOf renders t back into the TypeExpr surface syntax, the
// writer's counterpart to toType.
func typeExprOf(t types.Type) string {
	base := t
	stars := 0
	for {
		p, ok := base.(types.Pointer)
		if !ok {
			break
		}
		base = p.Pointee
		stars++
	}
	var name string
	switch b := base.(type) {
	case types.Integer:
		name = fmt.Sprintf("i%d", b.Width)
	case types.Float:
		if b.FKind == types.Float32 {
			name = "f32"
		} else {
			name = "f64"
		}
	case types.MemoryState:
		name = "mem"
	case types.IOState:
		name = "io"
	case types.Control:
		name = fmt.Sprintf("ctl%d", b.N)
	default:
		errors.Invariant("text: type %s has no textual surface syntax", t)
	}
	return name + strings.Repeat("*", stars)
}
