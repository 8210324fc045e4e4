package node

import (
	"math"

	"github.com/phonon-live/phonon/signal"
)

// EnvelopeShape selects an Envelope node's segment structure.
type EnvelopeShape int

const (
	EnvelopeADSR EnvelopeShape = iota
	EnvelopeAD
	EnvelopeAR
	EnvelopeLine
	EnvelopeXLine
)

type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// Envelope is a gate-driven (ADSR/AD/AR) or fire-and-forget (line/xline)
// envelope generator. Its attack/decay/release one-pole coefficients use
// the exact time-to-coefficient formula from
// dsp/effects/dynamics/core.go's recalculateDetectorCoefficients
// (1-exp(-ln2/(ms*0.001*sampleRate)) for the rising segments, exp(...) for
// the falling ones), generalized from a detector envelope follower to a
// musical envelope generator driven by a gate Signal instead of an audio
// detector.
//
// Signals: [0]=gate (>0 triggers attack, <=0 triggers release for
// ADSR/AR), [1]=attack seconds, [2]=decay seconds, [3]=sustain level
// (0..1), [4]=release seconds.
type Envelope struct {
	base
	shape      EnvelopeShape
	sampleRate float64
	stage      envelopeStage
	level      float64
	gateWasHi  bool
}

// NewEnvelope creates an Envelope node.
func NewEnvelope(id signal.NodeID, shape EnvelopeShape, sampleRate float64, gate, attack, decay, sustain, release signal.Signal) *Envelope {
	return &Envelope{
		base:       newBase(id, KindEnvelope, []signal.Signal{gate, attack, decay, sustain, release}),
		shape:      shape,
		sampleRate: sampleRate,
	}
}

func timeToRiseCoeff(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1.0 - math.Exp(-math.Ln2/(seconds*sampleRate))
}

func timeToFallCoeff(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Exp(-math.Ln2 / (seconds * sampleRate))
}

func (e *Envelope) Tick(in []float64, tc *TickContext) float64 {
	gate := in[0]
	attack := in[1]
	decay := in[2]
	sustain := in[3]
	release := in[4]
	gateHi := gate > 0

	switch e.shape {
	case EnvelopeLine:
		e.level += (1 - e.level) * timeToRiseCoeff(attack, e.sampleRate)
		return e.level
	case EnvelopeXLine:
		coeff := timeToFallCoeff(attack, e.sampleRate)
		e.level = e.level*coeff + 1*(1-coeff)
		return e.level
	}

	if gateHi && !e.gateWasHi {
		e.stage = stageAttack
	}
	if !gateHi && e.gateWasHi && (e.shape == EnvelopeADSR || e.shape == EnvelopeAR) {
		e.stage = stageRelease
	}
	e.gateWasHi = gateHi

	switch e.stage {
	case stageAttack:
		coeff := timeToRiseCoeff(attack, e.sampleRate)
		e.level += (1.0 - e.level) * coeff
		if e.level >= 0.999 {
			e.level = 1
			if e.shape == EnvelopeAR {
				e.stage = stageSustain
			} else {
				e.stage = stageDecay
			}
		}
	case stageDecay:
		coeff := timeToFallCoeff(decay, e.sampleRate)
		target := sustain
		if e.shape == EnvelopeAD {
			target = 0
		}
		e.level = e.level*coeff + target*(1-coeff)
		if math.Abs(e.level-target) < 1e-4 {
			e.level = target
			if e.shape == EnvelopeAD {
				e.stage = stageIdle
			} else {
				e.stage = stageSustain
			}
		}
	case stageSustain:
		if e.shape == EnvelopeAR || e.shape == EnvelopeAD {
			// AR holds at full level until release; AD has already
			// reached 0 and stays idle via stageIdle below.
		}
	case stageRelease:
		coeff := timeToFallCoeff(release, e.sampleRate)
		e.level = e.level * coeff
		if e.level < 1e-4 {
			e.level = 0
			e.stage = stageIdle
		}
	case stageIdle:
		e.level = 0
	}

	return e.level
}

func (e *Envelope) Reset() {
	e.stage = stageIdle
	e.level = 0
	e.gateWasHi = false
}
