package node

import (
	"math"

	"github.com/phonon-live/phonon/measure/loudness"
	"github.com/phonon-live/phonon/signal"
)

// Panner applies equal-power stereo panning to a mono input, exposing the
// second channel via Right() like the other stereo nodes in effects.go.
//
// Signals: [0]=audio input, [1]=pan (-1=left .. 0=center .. 1=right).
type Panner struct {
	base
	lastRight float64
}

// NewPanner creates a Panner node.
func NewPanner(id signal.NodeID, input, pan signal.Signal) *Panner {
	return &Panner{base: newBase(id, KindPanner, []signal.Signal{input, pan})}
}

func (p *Panner) Tick(in []float64, _ *TickContext) float64 {
	x := in[0]
	pan := in[1]
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	angle := (pan + 1) * math.Pi / 4
	left := x * math.Cos(angle)
	right := x * math.Sin(angle)
	p.lastRight = right
	return left
}

// Right returns the last-computed right channel.
func (p *Panner) Right() float64 { return p.lastRight }

func (p *Panner) Reset() { p.lastRight = 0 }

// Mixer sums an arbitrary number of input Signals, each with its own gain
// applied as alternating (input, gain) signal pairs, the graph-level
// n-input summing bus spec.md §3 names as a distinct node kind from the
// two-input Arithmetic node.
type Mixer struct {
	base
	numChannels int
}

// NewMixer creates a Mixer node from parallel input/gain Signal slices.
// inputs and gains must be the same length.
func NewMixer(id signal.NodeID, inputs, gains []signal.Signal) *Mixer {
	signals := make([]signal.Signal, 0, len(inputs)*2)
	for i := range inputs {
		signals = append(signals, inputs[i], gains[i])
	}
	return &Mixer{base: newBase(id, KindMixer, signals), numChannels: len(inputs)}
}

func (m *Mixer) Tick(in []float64, _ *TickContext) float64 {
	sum := 0.0
	for i := 0; i < m.numChannels; i++ {
		sum += in[i*2] * in[i*2+1]
	}
	return sum
}

func (m *Mixer) Reset() {}

// Output is the terminal node of a signal graph: a simple pass-through
// with an overall level, marking where the Graph reads its rendered
// sample from, per spec.md §4's "out" bus convention.
//
// Signals: [0]=audio input, [1]=level.
type Output struct {
	base
}

// NewOutput creates an Output node.
func NewOutput(id signal.NodeID, input, level signal.Signal) *Output {
	return &Output{base: newBase(id, KindOutput, []signal.Signal{input, level})}
}

func (o *Output) Tick(in []float64, _ *TickContext) float64 { return in[0] * in[1] }
func (o *Output) Reset()                                    {}

// LoudnessMeter reports momentary EBU R128 loudness in LUFS, wrapping
// measure/loudness.Meter. It is a tap, not a transform: Tick passes its
// input through unchanged while feeding the meter, so it can be inserted
// anywhere in a chain purely for metering.
//
// Signals: [0]=audio input.
type LoudnessMeter struct {
	base
	meter *loudness.Meter
}

// NewLoudnessMeter creates a LoudnessMeter node for a mono signal path.
func NewLoudnessMeter(id signal.NodeID, sampleRate float64, input signal.Signal) *LoudnessMeter {
	m := loudness.NewMeter(loudness.WithSampleRate(sampleRate), loudness.WithChannels(1))
	return &LoudnessMeter{base: newBase(id, KindLoudnessMeter, []signal.Signal{input}), meter: m}
}

func (l *LoudnessMeter) Tick(in []float64, _ *TickContext) float64 {
	if l.meter != nil {
		l.meter.ProcessSample([]float64{in[0]})
	}
	return in[0]
}

// Momentary returns the current momentary loudness in LUFS.
func (l *LoudnessMeter) Momentary() float64 {
	if l.meter == nil {
		return math.Inf(-1)
	}
	return l.meter.Momentary()
}

func (l *LoudnessMeter) Reset() {
	if l.meter != nil {
		l.meter.Reset()
	}
}
