package text

// File is the root production: a module's imports, globals, and
// functions, in declaration order — the same "ordered list of Imports,
// deltas, lambdas" shape cfgir.Module is built around.
type File struct {
	Imports   []*ImportDecl `@@*`
	Globals   []*GlobalDecl `@@*`
	Functions []*FuncDecl   `@@*`
}

// TypeExpr names a type by a bare identifier (iN, f32, f64, mem, io,
// ctlN) with any number of trailing "*" for pointer nesting. Array,
// struct, and function types have no surface syntax here: nothing this
// middle-end itself constructs needs to round-trip one through text (see
// the package doc's Scoping note).
type TypeExpr struct {
	Base  string `@Ident`
	Stars int    `@"*"*`
}

type ImportDecl struct {
	Name string    `"import" @Global`
	T    *TypeExpr `":" @@`
}

type OutDecl struct {
	Name string    `@Var`
	T    *TypeExpr `":" @@`
}

type Literal struct {
	Int   *int64   `  @Int`
	Float *float64 `| @Float`
	Bool  *string  `| @("true" | "false")`
}

// ConstTac covers ops.ConstantOp: its type comes from Out, its value from
// a literal that has no other derivable source.
type ConstTac struct {
	Out   *OutDecl `@@ "="`
	Value *Literal `"const" @@`
}

type MatchEntry struct {
	From int `@Int`
	To   int `"->" @Int`
}

// MatchTac covers ops.MatchOp: the Mapping/Default data has no other
// derivable source, so it is written out explicitly.
type MatchTac struct {
	Out     *OutDecl      `@@ "="`
	Ctl     string        `"match" @Var`
	Entries []*MatchEntry `"[" (@@ ("," @@)*)? "]"`
	Default int           `"default" @Int`
}

// BasicTac covers every other operation family (binary, unary, alloca,
// load, store): its operand and result types are already declared on the
// variables themselves, so only the mnemonic and the operand names need
// to appear (see mnemonics.go's registry).
type BasicTac struct {
	Outs     []*OutDecl `@@ ("," @@)* "="`
	Mnemonic string     `@Ident`
	Operands []string   `(@Var ("," @Var)*)?`
}

// TacDecl is the sum of the three tac shapes above, tried in the order
// that disambiguates them unambiguously by their keyword ("const",
// "match", or neither).
type TacDecl struct {
	Const *ConstTac `  @@`
	Match *MatchTac `| @@`
	Basic *BasicTac `| @@`
}

// GlobalDecl mirrors cfgir.GlobalData: a single-block initializer ending
// in an explicit "result" statement naming the variable holding the
// computed value. Dependency arguments have no surface syntax (see
// internal/construct.Module's matching restriction).
type GlobalDecl struct {
	Constant bool       `@"const"?`
	Name     string     `"global" @Global`
	T        *TypeExpr  `":" @@`
	Tacs     []*TacDecl `"{" @@*`
	Result   string     `"result" @Var "}"`
}

type Param struct {
	Name string    `@Var`
	T    *TypeExpr `":" @@`
}

// JumpTerm ends a block with one or more successor labels, in control-
// value order (successor i is reached when the block's last tac's
// control output equals i) — the same convention
// internal/aggregate.Reduce's branchPartners and internal/construct's
// predicateOf both rely on.
type JumpTerm struct {
	Succs []string `"->" @Ident ("," @Ident)*`
}

// ReturnTerm ends a block by feeding the function's result vector
// directly: every block that returns must name the identical variables
// (a function has exactly one result vector, so two "return" blocks
// disagree only if they'd be feeding a phi cfgir doesn't have; see
// internal/format/text's builder for the consistency check this
// implies).
type ReturnTerm struct {
	Vars []string `"return" (@Var ("," @Var)*)?`
}

type Terminator struct {
	Jump   *JumpTerm   `  @@`
	Return *ReturnTerm `| @@`
}

type BlockDecl struct {
	Label string      `@Ident ":"`
	Tacs  []*TacDecl  `@@*`
	Term  *Terminator `@@`
}

type FuncDecl struct {
	External bool         `@"extern"?`
	Name     string       `"fn" @Global`
	Params   []*Param     `"(" (@@ ("," @@)*)? ")"`
	Results  []*TypeExpr  `"->" "(" (@@ ("," @@)*)? ")"`
	Blocks   []*BlockDecl `"{" @@* "}"`
}
