// Package ast defines the statement and expression tree the compiler
// lowers into a graph.Graph, per spec.md §4.5. There is no textual parser
// in this module (spec.md's mini-notation wire format is explicitly an
// external concern per spec.md §6); programs are built directly as
// ast.Statement trees, by a future parser or, in this module, by tests
// and cmd/phonon-render.
package ast

// Statement is one top-level program statement.
type Statement interface{ statementNode() }

// BusAssignment binds Name to the compiled value of Expr, e.g. `~bass: ...`.
type BusAssignment struct {
	Name string
	Expr Expr
}

// OutputAssignment routes Expr to an output channel ("out", "o1", "o2", ...).
type OutputAssignment struct {
	Channel string
	Expr    Expr
}

// TempoSet sets the Time Authority's cycles-per-second.
type TempoSet struct {
	CPS float64
}

// Hush silences every output channel without removing their nodes.
type Hush struct{}

// Panic resets Time Authority and releases every voice.
type Panic struct{}

func (BusAssignment) statementNode()    {}
func (OutputAssignment) statementNode() {}
func (TempoSet) statementNode()         {}
func (Hush) statementNode()             {}
func (Panic) statementNode()            {}

// Expr is one node of an expression tree.
type Expr interface{ exprNode() }

// Number is a numeric literal.
type Number struct{ Value float64 }

// String is a string literal — either a mini-notation pattern body (when
// it appears as a `s "..."` argument) or a plain identifier-like token.
type String struct{ Value string }

// Identifier names a registered function in the compiler's function table.
type Identifier struct{ Name string }

// BusRef references a previously (or forward-) declared bus by name.
type BusRef struct{ Name string }

// Call invokes a named function with positional arguments.
type Call struct {
	Name string
	Args []Expr
}

// Chain is the `#` pipe-into-effect operator: Left's compiled NodeID
// becomes the implicit first argument of Right, which must be a Call.
type Chain struct {
	Left  Expr
	Right Expr
}

// Transform is the `$` operator: wraps Pattern with the named pattern
// combinator, passing Args as the combinator's own arguments (e.g. `fast
// 2 $ s "bd sn"` is Transform{Pattern: ..., Name: "fast", Args: [Number{2}]}).
type Transform struct {
	Pattern Expr
	Name    string
	Args    []Expr
}

// List is a bracketed sequence, used for stack/cat/slowcat function
// arguments that take multiple patterns.
type List struct{ Items []Expr }

// BinaryOp is an arithmetic combinator between two Exprs (lifted
// pointwise per spec.md §4.2's "Arithmetic combinators lift pointwise").
type BinaryOp struct {
	Op    string // "+", "-", "*", "/"
	Left  Expr
	Right Expr
}

// PatternString is a mini-notation string already parsed into an
// onset-pattern AST node (the textual grammar itself is out of scope;
// this variant lets a hand-built AST still carry one, e.g. via
// pattern.FromString helpers added by a caller).
type PatternString struct{ Notation string }

// ChainInput is the explicit replacement for the disallowed
// "NodeId-as-Number" hack: Chain compiles its left side to a NodeID and
// wraps it in this variant instead of a bare Number, so a function's
// compiler callback can type-switch on it unambiguously per spec.md
// §4.5's "chained NodeId as Expr::Number is disallowed" rule. NodeID is
// an int rather than signal.NodeID to keep this package import-cycle-free
// of package signal; the compile package converts it on lowering.
type ChainInput struct{ NodeID int }

func (Number) exprNode()        {}
func (String) exprNode()        {}
func (Identifier) exprNode()    {}
func (BusRef) exprNode()        {}
func (Call) exprNode()          {}
func (Chain) exprNode()         {}
func (Transform) exprNode()     {}
func (List) exprNode()          {}
func (BinaryOp) exprNode()      {}
func (PatternString) exprNode() {}
func (ChainInput) exprNode()    {}
