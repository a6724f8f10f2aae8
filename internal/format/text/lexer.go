// Package text implements the concrete byte encoding for the front-
// end/back-end module contract, which only fixes the shape of: a
// participle-based grammar, in a stateful-lexer-plus-struct-tag-parser
// style (stateful lexer plus struct-tag parser), covering the operation
// families this middle-end's own passes and tests exercise directly
// (arithmetic, memory, branch/loop selection) — not a general-purpose
// external IR ingestion system, which is explicitly out of scope (see
// DESIGN.md's "Scoping" note below for what is deliberately left out,
// notably cross-function calls and dependent globals).
package text

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the module text format, grounded on a stateful lexer
// with a single "Root" rule set, ordered so identifiers/numbers are
// tried before punctuation.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Global", `@[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Var", `%[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Float", `-?[0-9]+\.[0-9]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Arrow", `->`, nil},
		{"Punct", `[{}()\[\]:,=*]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
