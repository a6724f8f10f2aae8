package text

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// Parse reads a module's text-format source (name is used only for error
// messages) and returns the
// cfgir.Module it denotes. Syntax and semantic-build errors are both
// wrapped as *errors.UserError with code InvalidInput, since both are
// malformed-input conditions from the pass driver's point of view.
func Parse(name, src string) (*cfgir.Module, error) {
	f, err := parser.ParseString(name, src)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := pe.Position()
			return nil, errors.New(errors.InvalidInput, fmt.Sprintf("%s:%d:%d", name, pos.Line, pos.Column), "%s", pe.Message())
		}
		return nil, errors.New(errors.InvalidInput, name, "%s", err)
	}

	m, err := Build(f)
	if err != nil {
		return nil, errors.New(errors.InvalidInput, name, "%s", err)
	}
	return m, nil
}
