// Package signal defines the Signal type: the value every node parameter
// is expressed in, per spec.md §3's design invariant "every parameter is
// modulatable." A Signal is a small discriminated union rather than an
// interface, mirroring the tagged-Num/Str-map shape of
// dsp/effectchain.Params but generalized from a string-keyed parameter bag
// to a single value that is exactly one of a constant, a node reference, or
// an embedded pattern.
package signal

import "github.com/phonon-live/phonon/pattern"

// Kind discriminates which field of a Signal is active.
type Kind int

const (
	// KindConst is a plain constant float64 value.
	KindConst Kind = iota
	// KindNodeRef is a reference to another node's current output.
	KindNodeRef
	// KindPattern is an embedded, lazily-queried Pattern[float64].
	KindPattern
)

// NodeID identifies a node within a Graph. Defined here (not in package
// graph) so Signal has no import cycle with graph.
type NodeID uint32

// Signal is one of: a constant value, a reference to another Node, or an
// embedded lazy Pattern, per spec.md §3.
type Signal struct {
	Kind    Kind
	Const   float64
	NodeRef NodeID
	Pattern pattern.Pattern[float64]
}

// Const returns a constant-valued Signal.
func Const(v float64) Signal {
	return Signal{Kind: KindConst, Const: v}
}

// Ref returns a Signal that reads another node's output.
func Ref(id NodeID) Signal {
	return Signal{Kind: KindNodeRef, NodeRef: id}
}

// FromPattern returns a Signal driven by a continuous-value pattern.
func FromPattern(p pattern.Pattern[float64]) Signal {
	return Signal{Kind: KindPattern, Pattern: p}
}

// IsConst reports whether s is a constant signal.
func (s Signal) IsConst() bool { return s.Kind == KindConst }
