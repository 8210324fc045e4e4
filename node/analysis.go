package node

import (
	"math"

	"github.com/phonon-live/phonon/signal"
)

// RMS reports a running root-mean-square level over a sliding window,
// generalizing stats/time.RMS's batch sqrt(mean(x^2)) formula to a
// streaming ring buffer so it can sit inside a signal graph as a
// modulation source (e.g. driving a sidechain-less auto-gain Signal).
//
// Signals: [0]=audio input, [1]=window seconds.
type RMS struct {
	base
	sampleRate float64
	buf        []float64
	pos        int
	filled     int
	sumSquares float64
}

// NewRMS creates an RMS node.
func NewRMS(id signal.NodeID, sampleRate float64, input, windowSec signal.Signal) *RMS {
	maxSamples := int(sampleRate * 1.0)
	if maxSamples < 1 {
		maxSamples = 1
	}
	return &RMS{
		base:       newBase(id, KindRMS, []signal.Signal{input, windowSec}),
		sampleRate: sampleRate,
		buf:        make([]float64, maxSamples),
	}
}

func (r *RMS) Tick(in []float64, _ *TickContext) float64 {
	windowSamples := int(in[1] * r.sampleRate)
	if windowSamples < 1 {
		windowSamples = 1
	}
	if windowSamples > len(r.buf) {
		windowSamples = len(r.buf)
	}

	x := in[0]
	old := r.buf[r.pos]
	r.buf[r.pos] = x * x
	r.sumSquares += r.buf[r.pos] - old
	r.pos = (r.pos + 1) % len(r.buf)
	if r.filled < windowSamples {
		r.filled++
	}

	n := r.filled
	if n > windowSamples {
		n = windowSamples
	}
	if n == 0 {
		return 0
	}
	meanSquare := r.sumSquares / float64(n)
	if meanSquare < 0 {
		meanSquare = 0
	}
	return math.Sqrt(meanSquare)
}

func (r *RMS) Reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.pos = 0
	r.filled = 0
	r.sumSquares = 0
}

// PeakFollower smooths the rectified input through independent attack and
// release one-pole coefficients, reusing the exact
// dsp/effects/dynamics/core.go coefficient formula node/envelope.go
// already generalizes for envelope generation, applied here to continuous
// envelope following instead of a gated musical envelope.
//
// Signals: [0]=audio input, [1]=attack seconds, [2]=release seconds.
type PeakFollower struct {
	base
	sampleRate float64
	level      float64
}

// NewPeakFollower creates a PeakFollower node.
func NewPeakFollower(id signal.NodeID, sampleRate float64, input, attack, release signal.Signal) *PeakFollower {
	return &PeakFollower{base: newBase(id, KindPeakFollower, []signal.Signal{input, attack, release}), sampleRate: sampleRate}
}

func (p *PeakFollower) Tick(in []float64, _ *TickContext) float64 {
	rectified := math.Abs(in[0])
	var coeff float64
	if rectified > p.level {
		coeff = timeToRiseCoeff(in[1], p.sampleRate)
	} else {
		coeff = 1 - timeToFallCoeff(in[2], p.sampleRate)
	}
	p.level += (rectified - p.level) * coeff
	return p.level
}

func (p *PeakFollower) Reset() { p.level = 0 }

// ZeroCrossing outputs 1 for the single sample a sign change occurs and 0
// otherwise, generalizing stats/time.ZeroCrossings' batch sign-change scan
// to a per-sample streaming detector.
//
// Signals: [0]=audio input.
type ZeroCrossing struct {
	base
	lastSign float64
}

// NewZeroCrossing creates a ZeroCrossing node.
func NewZeroCrossing(id signal.NodeID, input signal.Signal) *ZeroCrossing {
	return &ZeroCrossing{base: newBase(id, KindZeroCrossing, []signal.Signal{input})}
}

func (z *ZeroCrossing) Tick(in []float64, _ *TickContext) float64 {
	sign := 1.0
	if in[0] < 0 {
		sign = -1.0
	}
	crossed := sign != z.lastSign && z.lastSign != 0
	z.lastSign = sign
	if crossed {
		return 1
	}
	return 0
}

func (z *ZeroCrossing) Reset() { z.lastSign = 0 }

// SchmittTrigger is a hysteresis comparator: it outputs 1 once the input
// rises above the high threshold and holds until the input falls below
// the low threshold, the classic Schmitt-trigger shape used to debounce a
// noisy gate signal into a clean one for Envelope nodes downstream.
//
// Signals: [0]=audio input, [1]=low threshold, [2]=high threshold.
type SchmittTrigger struct {
	base
	state bool
}

// NewSchmittTrigger creates a SchmittTrigger node.
func NewSchmittTrigger(id signal.NodeID, input, low, high signal.Signal) *SchmittTrigger {
	return &SchmittTrigger{base: newBase(id, KindSchmittTrigger, []signal.Signal{input, low, high})}
}

func (s *SchmittTrigger) Tick(in []float64, _ *TickContext) float64 {
	x, lo, hi := in[0], in[1], in[2]
	if !s.state && x > hi {
		s.state = true
	} else if s.state && x < lo {
		s.state = false
	}
	if s.state {
		return 1
	}
	return 0
}

func (s *SchmittTrigger) Reset() { s.state = false }

// Latch samples and holds its input on each rising edge of a trigger
// Signal, the sample-and-hold primitive spec.md §3 names alongside
// Schmitt-trigger gating.
//
// Signals: [0]=audio input, [1]=trigger (rising edge captures).
type Latch struct {
	base
	held       float64
	lastTrig   float64
}

// NewLatch creates a Latch node.
func NewLatch(id signal.NodeID, input, trigger signal.Signal) *Latch {
	return &Latch{base: newBase(id, KindLatch, []signal.Signal{input, trigger})}
}

func (l *Latch) Tick(in []float64, _ *TickContext) float64 {
	trig := in[1]
	if trig > 0 && l.lastTrig <= 0 {
		l.held = in[0]
	}
	l.lastTrig = trig
	return l.held
}

func (l *Latch) Reset() {
	l.held = 0
	l.lastTrig = 0
}
