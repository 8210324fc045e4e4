package node

import (
	"math"

	"github.com/phonon-live/phonon/signal"
)

// ArithOp selects a two-input Arithmetic node's operator.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
)

// Arithmetic combines two Signals sample-by-sample, the graph-level
// counterpart to pattern.Liftf32Binary for plain (non-pattern) signal
// math, per spec.md §3's binary-operator node kind.
//
// Signals: [0]=left, [1]=right.
type Arithmetic struct {
	base
	op ArithOp
}

// NewArithmetic creates an Arithmetic node.
func NewArithmetic(id signal.NodeID, op ArithOp, left, right signal.Signal) *Arithmetic {
	return &Arithmetic{base: newBase(id, KindArithmetic, []signal.Signal{left, right}), op: op}
}

func (a *Arithmetic) Tick(in []float64, _ *TickContext) float64 {
	switch a.op {
	case ArithSub:
		return in[0] - in[1]
	case ArithMul:
		return in[0] * in[1]
	case ArithDiv:
		if in[1] == 0 {
			return 0
		}
		return in[0] / in[1]
	default:
		return in[0] + in[1]
	}
}

func (a *Arithmetic) Reset() {}

// MathOp selects a one-input Math node's function.
type MathOp int

const (
	MathAbs MathOp = iota
	MathNeg
	MathClamp
	MathScale
	MathSqrt
	MathExp
	MathLog
)

// Math applies a single-input unary function, with Clamp/Scale taking
// extra parameters off Signals[1]/[2].
//
// Signals: [0]=input, [1]=param A (Clamp: low, Scale: in-low), [2]=param B
// (Clamp: high, Scale: in-high); Scale additionally reads [3]=out-low,
// [4]=out-high.
type Math struct {
	base
	op MathOp
}

// NewMath creates a Math node.
func NewMath(id signal.NodeID, op MathOp, input signal.Signal, params ...signal.Signal) *Math {
	signals := append([]signal.Signal{input}, params...)
	return &Math{base: newBase(id, KindMath, signals), op: op}
}

func (m *Math) Tick(in []float64, _ *TickContext) float64 {
	x := in[0]
	switch m.op {
	case MathAbs:
		return math.Abs(x)
	case MathNeg:
		return -x
	case MathClamp:
		lo, hi := in[1], in[2]
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	case MathScale:
		inLo, inHi, outLo, outHi := in[1], in[2], in[3], in[4]
		if inHi == inLo {
			return outLo
		}
		t := (x - inLo) / (inHi - inLo)
		return outLo + t*(outHi-outLo)
	case MathSqrt:
		if x < 0 {
			return 0
		}
		return math.Sqrt(x)
	case MathExp:
		return math.Exp(x)
	case MathLog:
		if x <= 0 {
			return 0
		}
		return math.Log(x)
	default:
		return x
	}
}

func (m *Math) Reset() {}
