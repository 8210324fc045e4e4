package node

import (
	"math"

	"github.com/phonon-live/phonon/dsp/delay"
	"github.com/phonon-live/phonon/dsp/filter/biquad"
	"github.com/phonon-live/phonon/dsp/filter/design"
	"github.com/phonon-live/phonon/dsp/filter/moog"
	"github.com/phonon-live/phonon/signal"
)

// FilterShape selects a Filter node's biquad family.
type FilterShape int

const (
	FilterLowpass FilterShape = iota
	FilterHighpass
	FilterBandpass
	FilterNotch
)

// Filter is a single RBJ-cookbook biquad (dsp/filter/design) driving a
// dsp/filter/biquad.Section. Coefficients are recomputed every sample from
// the (possibly modulated) cutoff/Q Signals, which is the direct
// generalization of moog.Filter.SetCutoffHz's "recompute on every
// parameter change" pattern to per-sample modulation, per spec.md §3's
// "every parameter is modulatable" invariant.
//
// Signals: [0]=audio input, [1]=cutoff Hz, [2]=Q.
type Filter struct {
	base
	shape   FilterShape
	section *biquad.Section
}

// NewFilter creates a Filter node.
func NewFilter(id signal.NodeID, shape FilterShape, input, cutoffHz, q signal.Signal) *Filter {
	return &Filter{
		base:    newBase(id, KindFilter, []signal.Signal{input, cutoffHz, q}),
		shape:   shape,
		section: biquad.NewSection(design.Lowpass(1000, 0.707, 44100)),
	}
}

func (f *Filter) Tick(in []float64, tc *TickContext) float64 {
	audioIn := in[0]
	cutoff := clampFreq(in[1], tc.SampleRate)
	q := in[2]
	if q <= 0 {
		q = 0.707
	}

	var coeffs biquad.Coefficients
	switch f.shape {
	case FilterHighpass:
		coeffs = design.Highpass(cutoff, q, tc.SampleRate)
	case FilterBandpass:
		coeffs = design.Bandpass(cutoff, q, tc.SampleRate)
	case FilterNotch:
		coeffs = design.Notch(cutoff, q, tc.SampleRate)
	default:
		coeffs = design.Lowpass(cutoff, q, tc.SampleRate)
	}
	f.section.Coefficients = coeffs

	return f.section.ProcessSample(audioIn)
}

func (f *Filter) Reset() { f.section = biquad.NewSection(design.Lowpass(1000, 0.707, 44100)) }

func clampFreq(freq, sampleRate float64) float64 {
	nyquist := sampleRate * 0.5
	if freq < 20 {
		freq = 20
	}
	if freq > nyquist*0.99 {
		freq = nyquist * 0.99
	}
	return freq
}

// MoogLadder is the classic nonlinear four-stage Moog ladder filter.
//
// Signals: [0]=audio input, [1]=cutoff Hz, [2]=resonance (0..4).
type MoogLadder struct {
	base
	filter *moog.Filter
}

// NewMoogLadder creates a MoogLadder node for the given sample rate.
func NewMoogLadder(id signal.NodeID, sampleRate float64, input, cutoffHz, resonance signal.Signal) *MoogLadder {
	f, _ := moog.New(sampleRate)
	return &MoogLadder{
		base:   newBase(id, KindMoogLadder, []signal.Signal{input, cutoffHz, resonance}),
		filter: f,
	}
}

func (m *MoogLadder) Tick(in []float64, tc *TickContext) float64 {
	if m.filter == nil {
		return in[0]
	}
	_ = m.filter.SetCutoffHz(clampFreq(in[1], tc.SampleRate))
	_ = m.filter.SetResonance(in[2])
	return m.filter.ProcessSample(in[0])
}

func (m *MoogLadder) Reset() {
	if m.filter != nil {
		m.filter.Reset()
	}
}

// Comb is a feedback comb filter built directly on dsp/delay.Line (the
// same fractional-delay primitive the Delay family uses), per spec.md §3's
// "comb" filter node kind. Unlike Delay, its output is 100% wet: the
// comb's characteristic resonance comes entirely from its own feedback
// loop, mixed with the input at a fixed unity pass, matching a classic
// Schroeder comb topology.
//
// Signals: [0]=audio input, [1]=delay time seconds, [2]=feedback gain.
type Comb struct {
	base
	line *delay.Line
}

// NewComb creates a Comb node with a 2-second maximum delay buffer.
func NewComb(id signal.NodeID, sampleRate float64, input, delaySeconds, feedback signal.Signal) *Comb {
	size := int(sampleRate * 2)
	if size < 1 {
		size = 1
	}
	line, _ := delay.New(size)
	return &Comb{
		base: newBase(id, KindComb, []signal.Signal{input, delaySeconds, feedback}),
		line: line,
	}
}

func (c *Comb) Tick(in []float64, tc *TickContext) float64 {
	if c.line == nil {
		return in[0]
	}
	delaySamples := math.Max(1, in[1]*tc.SampleRate)
	feedback := in[2]
	if feedback < -0.999 {
		feedback = -0.999
	}
	if feedback > 0.999 {
		feedback = 0.999
	}

	delayed := c.line.ReadFractional(delaySamples)
	out := in[0] + feedback*delayed
	c.line.Write(out)
	return out
}

func (c *Comb) Reset() {
	if c.line != nil {
		c.line.Reset()
	}
}
