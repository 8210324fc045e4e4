// Package compile implements the two-pass compiler from an ast.Statement
// tree to a graph.Graph, per spec.md §4.5. Pass 1 pre-registers every bus
// name with a placeholder Constant(0) node so forward and cyclic
// references resolve in pass 2; pass 2 lowers each statement's
// expression bottom-up, per the exact rules spec.md §4.5 lists.
package compile

import (
	"fmt"
	"strings"

	"github.com/phonon-live/phonon/ast"
	"github.com/phonon-live/phonon/graph"
	"github.com/phonon-live/phonon/node"
	"github.com/phonon-live/phonon/pattern"
	"github.com/phonon-live/phonon/rational"
	"github.com/phonon-live/phonon/signal"
)

// CompileWarning realizes spec.md §7's "logged once per compile"
// requirement as a concrete, returnable value rather than a log call,
// since this module carries no logging dependency (DESIGN.md's ambient
// stack decision).
type CompileWarning struct {
	Message string
}

// Option configures a compiler instance before Program runs.
type Option func(*compiler)

// WithSampleBuffers registers decoded PCM buffers (by mini-notation token
// name, e.g. "bd", "sn") for `s "..."` to trigger against, per spec.md
// §6's "sample-library boundary ... performed externally" contract —
// name-to-buffer resolution is this module's caller's job; Program just
// consumes the result.
func WithSampleBuffers(buffers map[string][]float64, bufferHz float64) Option {
	return func(c *compiler) {
		c.buffers = buffers
		c.bufferHz = bufferHz
	}
}

// ArgSpec describes one positional argument of a DSL function, including
// its default Signal when the caller omits it, generalizing
// dsp/effectchain.Params.GetNum's missing-key-returns-default idiom from
// a runtime string-keyed lookup to a compile-time positional/arity check.
type ArgSpec struct {
	Name     string
	Default  signal.Signal
	Required bool
}

// FuncSpec is one entry in the compiler's function table: a name, its
// argument shape, and the callback that builds the node it lowers to.
type FuncSpec struct {
	Args  []ArgSpec
	Build func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node
}

type compiler struct {
	graph      *graph.Graph
	sampleRate float64
	nextID     signal.NodeID
	funcs      map[string]FuncSpec
	warnings   []CompileWarning
	busID      map[string]signal.NodeID
	instantiated map[string]bool
	buffers    map[string][]float64
	bufferHz   float64
}

func (c *compiler) allocID() signal.NodeID {
	id := c.nextID
	c.nextID++
	return id
}

func (c *compiler) warn(format string, a ...any) {
	c.warnings = append(c.warnings, CompileWarning{Message: fmt.Sprintf(format, a...)})
}

// Program compiles stmts into a graph.Graph, per spec.md §6's
// compile_program(statements, sample_rate) -> Result<Graph, String>
// boundary (realized here as (graph, warnings, error) instead of a single
// Result, since Go has no tagged-union Result type).
func Program(stmts []ast.Statement, sampleRate float64, opts ...Option) (*graph.Graph, []CompileWarning, error) {
	c := &compiler{
		graph:        graph.New(sampleRate, rational.New(1, 2)),
		sampleRate:   sampleRate,
		funcs:        defaultFuncTable(),
		busID:        make(map[string]signal.NodeID),
		instantiated: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Pass 1: pre-register every bus with a placeholder node so forward
	// and cyclic BusRefs resolve during pass 2.
	for _, stmt := range stmts {
		if ba, ok := stmt.(ast.BusAssignment); ok {
			if _, exists := c.busID[ba.Name]; exists {
				continue
			}
			id := c.allocID()
			c.graph.AddNode(node.NewConstant(id, 0))
			c.graph.AddBus(ba.Name, id)
			c.busID[ba.Name] = id
		}
	}

	// Pass 2: lower each statement's expression.
	for _, stmt := range stmts {
		if err := c.compileStatement(stmt); err != nil {
			return nil, c.warnings, err
		}
	}

	return c.graph, c.warnings, nil
}

func (c *compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case ast.BusAssignment:
		targetID := c.busID[s.Name]
		if c.instantiated[s.Name] {
			// Open Question (a) per spec.md §9: re-instantiating a bus's
			// RHS at a second assignment site is unspecified; we warn and
			// keep the first instantiation (pass-through), rather than
			// silently rebuilding it.
			c.warn("bus %q reassigned after first instantiation; keeping original chain", s.Name)
			return nil
		}
		sig, err := c.compileExprInto(s.Expr, &targetID)
		if err != nil {
			return err
		}
		if sig.Kind == signal.KindNodeRef && sig.NodeRef != targetID {
			// The expression resolved to an existing node (e.g. a bare
			// BusRef) rather than building a fresh one at targetID; alias
			// the bus name directly to it.
			c.graph.AddBus(s.Name, sig.NodeRef)
		}
		c.instantiated[s.Name] = true
		return nil

	case ast.OutputAssignment:
		sig, err := c.compileExpr(s.Expr)
		if err != nil {
			return err
		}
		id, err := c.ensureNodeRef(sig)
		if err != nil {
			return err
		}
		c.graph.AddBus(s.Channel, id)
		return nil

	case ast.TempoSet:
		c.graph.Time.SetCPS(rational.FromFloat64(s.CPS, 1<<16))
		return nil

	case ast.Hush:
		c.graph.HushAll()
		return nil

	case ast.Panic:
		c.graph.Panic()
		return nil
	}
	return fmt.Errorf("compile: unknown statement type %T", stmt)
}

// ensureNodeRef resolves a Signal to a concrete NodeID, materializing a
// Constant node if the signal is a bare constant value (an output or bus
// target must be a node, per spec.md §3's "Bus: a named, addressable
// node").
func (c *compiler) ensureNodeRef(sig signal.Signal) (signal.NodeID, error) {
	switch sig.Kind {
	case signal.KindNodeRef:
		return sig.NodeRef, nil
	case signal.KindConst:
		id := c.allocID()
		c.graph.AddNode(node.NewConstant(id, sig.Const))
		return id, nil
	default:
		return 0, fmt.Errorf("compile: cannot address a pattern signal directly; wrap in a node")
	}
}

// compileExpr lowers e to a Signal, allocating fresh node ids for every
// node it builds.
func (c *compiler) compileExpr(e ast.Expr) (signal.Signal, error) {
	return c.compileExprInto(e, nil)
}

// compileExprInto lowers e to a Signal. If targetID is non-nil and e
// compiles to a fresh top-level node (a Call), that node is built at
// *targetID instead of a new id — this is how a BusAssignment's
// placeholder slot gets overwritten "while preserving the id", per
// spec.md §4.5.
func (c *compiler) compileExprInto(e ast.Expr, targetID *signal.NodeID) (signal.Signal, error) {
	switch expr := e.(type) {
	case ast.Number:
		return signal.Const(expr.Value), nil

	case ast.String:
		return signal.Const(0), fmt.Errorf("compile: bare string %q is only valid as a function argument", expr.Value)

	case ast.BusRef:
		id, ok := c.busID[expr.Name]
		if !ok {
			return signal.Signal{}, fmt.Errorf("compile: reference to undeclared bus %q", expr.Name)
		}
		return signal.Ref(id), nil

	case ast.Identifier:
		return c.compileCall(ast.Call{Name: expr.Name}, targetID)

	case ast.Call:
		return c.compileCall(expr, targetID)

	case ast.Chain:
		leftSig, err := c.compileExpr(expr.Left)
		if err != nil {
			return signal.Signal{}, err
		}
		leftID, err := c.ensureNodeRef(leftSig)
		if err != nil {
			return signal.Signal{}, err
		}
		call, ok := expr.Right.(ast.Call)
		if !ok {
			return signal.Signal{}, fmt.Errorf("compile: chain's right side must be a call")
		}
		call.Args = append([]ast.Expr{ast.ChainInput{NodeID: int(leftID)}}, call.Args...)
		return c.compileCall(call, targetID)

	case ast.ChainInput:
		return signal.Ref(signal.NodeID(expr.NodeID)), nil

	case ast.BinaryOp:
		return c.compileBinaryOp(expr, targetID)

	case ast.Transform:
		return c.compileTransform(expr)

	case ast.PatternString:
		return signal.FromPattern(parseMiniNotationFloat(expr.Notation)), nil

	case ast.List:
		return signal.Signal{}, fmt.Errorf("compile: a bare list is only valid as a function argument")
	}
	return signal.Signal{}, fmt.Errorf("compile: unhandled expression type %T", e)
}

func (c *compiler) compileBinaryOp(expr ast.BinaryOp, targetID *signal.NodeID) (signal.Signal, error) {
	left, err := c.compileExpr(expr.Left)
	if err != nil {
		return signal.Signal{}, err
	}
	right, err := c.compileExpr(expr.Right)
	if err != nil {
		return signal.Signal{}, err
	}

	var op node.ArithOp
	switch expr.Op {
	case "+":
		op = node.ArithAdd
	case "-":
		op = node.ArithSub
	case "*":
		op = node.ArithMul
	case "/":
		op = node.ArithDiv
	default:
		return signal.Signal{}, fmt.Errorf("compile: unknown operator %q", expr.Op)
	}

	id := c.idFor(targetID)
	c.graph.AddNode(node.NewArithmetic(id, op, left, right))
	return signal.Ref(id), nil
}

func (c *compiler) idFor(targetID *signal.NodeID) signal.NodeID {
	if targetID != nil {
		return *targetID
	}
	return c.allocID()
}

func (c *compiler) compileCall(call ast.Call, targetID *signal.NodeID) (signal.Signal, error) {
	spec, ok := c.funcs[call.Name]
	if !ok {
		return signal.Signal{}, fmt.Errorf("compile: unknown function %q", call.Name)
	}

	// "s" is special-cased: its first argument is a mini-notation string
	// consumed directly (not resolved to a numeric Signal), per spec.md
	// §4.5's "String -> if inside s '...' -> Sample node" rule.
	if call.Name == "s" {
		return c.compileSample(call, targetID)
	}

	args := make([]signal.Signal, len(spec.Args))
	for i, argSpec := range spec.Args {
		if i < len(call.Args) {
			sig, err := c.compileExpr(call.Args[i])
			if err != nil {
				return signal.Signal{}, err
			}
			args[i] = sig
			continue
		}
		if argSpec.Required {
			return signal.Signal{}, fmt.Errorf("compile: %s: missing required argument %q", call.Name, argSpec.Name)
		}
		args[i] = argSpec.Default
	}

	id := c.idFor(targetID)
	n := spec.Build(c, id, args)
	c.graph.AddNode(n)
	return signal.Ref(id), nil
}

func (c *compiler) compileSample(call ast.Call, targetID *signal.NodeID) (signal.Signal, error) {
	if len(call.Args) == 0 {
		return signal.Signal{}, fmt.Errorf("compile: s: missing pattern argument")
	}
	str, ok := call.Args[0].(ast.String)
	if !ok {
		return signal.Signal{}, fmt.Errorf("compile: s: argument must be a string")
	}

	onsets := parseMiniNotationString(str.Value)

	id := c.idFor(targetID)
	n := node.NewSample(id, c.graph.Voices, onsets, c.buffers, c.bufferHz)
	c.graph.AddNode(n)
	return signal.Ref(id), nil
}

func (c *compiler) compileTransform(t ast.Transform) (signal.Signal, error) {
	patSig, err := c.compileExpr(t.Pattern)
	if err != nil {
		return signal.Signal{}, err
	}
	if patSig.Kind != signal.KindPattern {
		return signal.Signal{}, fmt.Errorf("compile: %s $: left side is not a pattern", t.Name)
	}

	switch t.Name {
	case "fast":
		k, err := c.numberArg(t.Args, 0)
		if err != nil {
			return signal.Signal{}, err
		}
		return signal.FromPattern(pattern.Fast(patSig.Pattern, rational.FromFloat64(k, 1<<16))), nil
	case "slow":
		k, err := c.numberArg(t.Args, 0)
		if err != nil {
			return signal.Signal{}, err
		}
		return signal.FromPattern(pattern.Slow(patSig.Pattern, rational.FromFloat64(k, 1<<16))), nil
	case "rev":
		return signal.FromPattern(pattern.Rev(patSig.Pattern)), nil
	default:
		return signal.Signal{}, fmt.Errorf("compile: unknown pattern transform %q", t.Name)
	}
}

func (c *compiler) numberArg(args []ast.Expr, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("compile: missing numeric argument %d", i)
	}
	n, ok := args[i].(ast.Number)
	if !ok {
		return 0, fmt.Errorf("compile: argument %d is not a number literal", i)
	}
	return n.Value, nil
}

// parseMiniNotationString splits s on whitespace into one onset per
// token, one cycle per token via pattern.Cat, treating "~" as a rest.
// This is a deliberate simplification: spec.md §6 places the full
// mini-notation grammar (repeat counts, subdivision groups, alternation)
// outside this module's scope, since "the textual parser is out of
// scope" per SPEC_FULL.md §9. Open Question (c)'s ambiguous `s "~bass"`
// case is resolved at the call site, not here: a token that also names a
// registered bus is not reachable through this helper at all, since a
// bus-valued sample source would need to flow through a BusRef/Chain
// expression instead of a bare mini-notation string.
func parseMiniNotationString(s string) pattern.Pattern[string] {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return pattern.Silence[string]()
	}
	steps := make([]pattern.Pattern[string], 0, len(tokens))
	for _, tok := range tokens {
		if tok == "~" {
			steps = append(steps, pattern.Silence[string]())
			continue
		}
		steps = append(steps, pattern.Pure(tok))
	}
	return pattern.Cat(steps...)
}

// parseMiniNotationFloat is parseMiniNotationString's numeric-pattern
// counterpart, for string literals embedded where a Pattern<f32> is
// expected (e.g. a numeric control pattern rather than a sample-name
// pattern).
func parseMiniNotationFloat(s string) pattern.Pattern[float64] {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return pattern.Silence[float64]()
	}
	steps := make([]pattern.Pattern[float64], 0, len(tokens))
	for _, tok := range tokens {
		var v float64
		_, err := fmt.Sscanf(tok, "%g", &v)
		if err != nil {
			steps = append(steps, pattern.Silence[float64]())
			continue
		}
		steps = append(steps, pattern.Pure(v))
	}
	return pattern.Cat(steps...)
}
