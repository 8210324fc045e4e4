// Package node implements the tagged-variant Node types that make up a
// Phonon signal graph: oscillators, noise, filters, delays, reverbs,
// envelopes, pattern evaluators, sample voices, arithmetic, analysis,
// panners and mixers, per spec.md §3/§4.1. Each Node wraps a DSP kernel
// from the algo-dsp packages this module grew out of (see DESIGN.md);
// dispatch is a single tagged-variant switch in the evaluator, not virtual
// calls, per spec.md §9 "Dynamic dispatch per node."
package node

import (
	"github.com/phonon-live/phonon/rational"
	"github.com/phonon-live/phonon/signal"
)

// Kind identifies a node's variant.
type Kind int

const (
	KindConstant Kind = iota
	KindOscillator
	KindNoise
	KindFilter
	KindMoogLadder
	KindComb
	KindDelay
	KindMultiTapDelay
	KindPingPongDelay
	KindTapeDelay
	KindReverb
	KindEnvelope
	KindPatternEval
	KindSample
	KindArithmetic
	KindMath
	KindRMS
	KindPeakFollower
	KindZeroCrossing
	KindSchmittTrigger
	KindLatch
	KindPanner
	KindMixer
	KindOutput
	KindModulation
	KindPitch
	KindSpectralPitch
	KindSpectralFreeze
	KindGranular
	KindVocoder
	KindWaveshaper
	KindDynamics
	KindLimiter
	KindStereoWidener
	KindCrosstalkCanceller
	KindLoudnessMeter
	KindFilterCascade
	KindParametricEQ
	KindLinearPhaseFilter
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindOscillator:
		return "oscillator"
	case KindNoise:
		return "noise"
	case KindFilter:
		return "filter"
	case KindMoogLadder:
		return "moog-ladder"
	case KindComb:
		return "comb"
	case KindDelay:
		return "delay"
	case KindMultiTapDelay:
		return "multi-tap-delay"
	case KindPingPongDelay:
		return "ping-pong-delay"
	case KindTapeDelay:
		return "tape-delay"
	case KindReverb:
		return "reverb"
	case KindEnvelope:
		return "envelope"
	case KindPatternEval:
		return "pattern"
	case KindSample:
		return "sample"
	case KindArithmetic:
		return "arithmetic"
	case KindMath:
		return "math"
	case KindRMS:
		return "rms"
	case KindPeakFollower:
		return "peak-follower"
	case KindZeroCrossing:
		return "zero-crossing"
	case KindSchmittTrigger:
		return "schmitt-trigger"
	case KindLatch:
		return "latch"
	case KindPanner:
		return "panner"
	case KindMixer:
		return "mixer"
	case KindOutput:
		return "output"
	case KindModulation:
		return "modulation"
	case KindPitch:
		return "pitch"
	case KindSpectralPitch:
		return "spectral-pitch"
	case KindSpectralFreeze:
		return "spectral-freeze"
	case KindGranular:
		return "granular"
	case KindVocoder:
		return "vocoder"
	case KindWaveshaper:
		return "waveshaper"
	case KindDynamics:
		return "dynamics"
	case KindLimiter:
		return "limiter"
	case KindStereoWidener:
		return "stereo-widener"
	case KindCrosstalkCanceller:
		return "crosstalk-canceller"
	case KindLoudnessMeter:
		return "loudness-meter"
	case KindFilterCascade:
		return "filter-cascade"
	case KindParametricEQ:
		return "parametric-eq"
	case KindLinearPhaseFilter:
		return "linear-phase-filter"
	default:
		return "unknown"
	}
}

// TickContext carries the information a node needs to advance one sample
// that is not itself a resolved parameter: sample rate, the current exact
// cycle position (constant across every node evaluated this tick, per
// spec.md §3's "no temporal skew" invariant), and the running sample
// count.
type TickContext struct {
	SampleRate  float64
	CyclePos    rational.Rational
	SampleIndex int64
}

// CyclePosFloat64 returns the current cycle position as a float64, for
// nodes whose DSP math doesn't need exact rational precision.
func (tc *TickContext) CyclePosFloat64() float64 {
	return tc.CyclePos.Float64()
}

// Node is the per-node-kind evaluation contract. A node declares the
// ordered Signals it reads (its parameter set and/or audio inputs); the
// Graph resolves each Signal to a float64 once per sample (or once per
// pattern-cache refresh) before calling Tick, so Tick itself never touches
// Signal, pattern caches, or other nodes — it is a pure DSP kernel step.
type Node interface {
	ID() signal.NodeID
	Kind() Kind
	// Signals returns the node's current parameter/audio-input Signals in
	// a stable order. The returned slice aliases the node's internal
	// storage so the compiler can rewrite a bus placeholder's outgoing
	// references via SetSignal without changing the node's identity.
	Signals() []signal.Signal
	SetSignal(i int, s signal.Signal)
	// Tick advances internal state by one sample and returns the output.
	// in[i] is the resolved value of Signals()[i] for this sample.
	Tick(in []float64, tc *TickContext) float64
	// Reset clears internal state (used on panic, per spec.md §4.6).
	Reset()
}

// base holds the fields common to every node kind.
type base struct {
	id      signal.NodeID
	kind    Kind
	signals []signal.Signal
}

func newBase(id signal.NodeID, kind Kind, signals []signal.Signal) base {
	return base{id: id, kind: kind, signals: signals}
}

func (b *base) ID() signal.NodeID         { return b.id }
func (b *base) Kind() Kind                { return b.kind }
func (b *base) Signals() []signal.Signal  { return b.signals }
func (b *base) SetSignal(i int, s signal.Signal) {
	if i >= 0 && i < len(b.signals) {
		b.signals[i] = s
	}
}
