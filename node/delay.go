package node

import (
	"math"

	"github.com/phonon-live/phonon/dsp/delay"
	"github.com/phonon-live/phonon/signal"
)

func newLine(sampleRate, maxSeconds float64) *delay.Line {
	size := int(sampleRate * maxSeconds)
	if size < 1 {
		size = 1
	}
	l, _ := delay.New(size)
	return l
}

// Delay is a single-tap feedback delay with dry/wet mix, grounded on
// dsp/effects/delay.go's Delay but rebuilt directly on dsp/delay.Line so
// time/feedback/mix are ordinary per-sample Signals instead of setter
// methods, per spec.md §3's "every parameter is a Signal" invariant.
//
// Signals: [0]=audio input, [1]=time seconds, [2]=feedback, [3]=mix.
type Delay struct {
	base
	line *delay.Line
}

// NewDelay creates a Delay node with a 2-second maximum delay buffer.
func NewDelay(id signal.NodeID, sampleRate float64, input, timeSec, feedback, mix signal.Signal) *Delay {
	return &Delay{
		base: newBase(id, KindDelay, []signal.Signal{input, timeSec, feedback, mix}),
		line: newLine(sampleRate, 2.0),
	}
}

func (d *Delay) Tick(in []float64, tc *TickContext) float64 {
	delaySamples := clampDelaySamples(in[1]*tc.SampleRate, d.line.Len())
	feedback := clampUnitish(in[2])
	mix := in[3]

	wet := d.line.ReadFractional(delaySamples)
	d.line.Write(in[0] + feedback*wet)
	return in[0]*(1-mix) + wet*mix
}

func (d *Delay) Reset() { d.line.Reset() }

func clampDelaySamples(samples float64, maxLen int) float64 {
	if samples < 1 {
		samples = 1
	}
	if samples > float64(maxLen-1) {
		samples = float64(maxLen - 1)
	}
	return samples
}

func clampUnitish(v float64) float64 {
	if v < -0.999 {
		return -0.999
	}
	if v > 0.999 {
		return 0.999
	}
	return v
}

// MultiTapDelay reads N evenly-spaced taps off one delay line and sums
// them, generalizing Delay's single tap per spec.md §3's "multi-tap"
// delay node kind.
//
// Signals: [0]=audio input, [1]=base time seconds, [2]=feedback, [3]=mix,
// [4]=tap count (>=1, truncated to int).
type MultiTapDelay struct {
	base
	line *delay.Line
}

// NewMultiTapDelay creates a MultiTapDelay node.
func NewMultiTapDelay(id signal.NodeID, sampleRate float64, input, timeSec, feedback, mix, taps signal.Signal) *MultiTapDelay {
	return &MultiTapDelay{
		base: newBase(id, KindMultiTapDelay, []signal.Signal{input, timeSec, feedback, mix, taps}),
		line: newLine(sampleRate, 2.0),
	}
}

func (m *MultiTapDelay) Tick(in []float64, tc *TickContext) float64 {
	baseDelay := in[1] * tc.SampleRate
	feedback := clampUnitish(in[2])
	mix := in[3]
	taps := int(in[4])
	if taps < 1 {
		taps = 1
	}

	sum := 0.0
	for t := 1; t <= taps; t++ {
		d := clampDelaySamples(baseDelay*float64(t), m.line.Len())
		sum += m.line.ReadFractional(d)
	}
	wet := sum / float64(taps)
	m.line.Write(in[0] + feedback*wet)
	return in[0]*(1-mix) + wet*mix
}

func (m *MultiTapDelay) Reset() { m.line.Reset() }

// PingPongDelay alternates delayed repeats between left and right output
// channels it owns internally (the node itself outputs the summed mono
// mix; a stereo-aware host graph can read .Left()/.Right() after Tick via
// the accompanying panner, matching spec.md §3's ping-pong delay node
// kind while keeping the Node interface mono-output like every other
// node).
//
// Signals: [0]=audio input, [1]=time seconds, [2]=feedback, [3]=mix.
type PingPongDelay struct {
	base
	left, right *delay.Line
	toggle      bool
	lastLeft    float64
	lastRight   float64
}

// NewPingPongDelay creates a PingPongDelay node.
func NewPingPongDelay(id signal.NodeID, sampleRate float64, input, timeSec, feedback, mix signal.Signal) *PingPongDelay {
	return &PingPongDelay{
		base:  newBase(id, KindPingPongDelay, []signal.Signal{input, timeSec, feedback, mix}),
		left:  newLine(sampleRate, 2.0),
		right: newLine(sampleRate, 2.0),
	}
}

func (p *PingPongDelay) Tick(in []float64, tc *TickContext) float64 {
	delaySamples := clampDelaySamples(in[1]*tc.SampleRate, p.left.Len())
	feedback := clampUnitish(in[2])
	mix := in[3]

	wetLeft := p.left.ReadFractional(delaySamples)
	wetRight := p.right.ReadFractional(delaySamples)

	if p.toggle {
		p.left.Write(in[0] + feedback*wetRight)
		p.right.Write(feedback * wetLeft)
	} else {
		p.right.Write(in[0] + feedback*wetLeft)
		p.left.Write(feedback * wetRight)
	}
	p.toggle = !p.toggle

	p.lastLeft = wetLeft
	p.lastRight = wetRight
	wet := (wetLeft + wetRight) * 0.5
	return in[0]*(1-mix) + wet*mix
}

// Left and Right expose the last-computed per-channel wet signal for a
// stereo panner downstream to split on, since Node.Tick itself returns
// mono.
func (p *PingPongDelay) Left() float64  { return p.lastLeft }
func (p *PingPongDelay) Right() float64 { return p.lastRight }

func (p *PingPongDelay) Reset() {
	p.left.Reset()
	p.right.Reset()
	p.toggle = false
}

// TapeDelay adds LFO-driven wow (slow pitch drift) and flutter (fast
// pitch drift) to a feedback delay by modulating the read position,
// generalizing dsp/effects/modulation/chorus.go's LFO-modulated-delay-read
// pattern from a fixed short chorus delay to a long tape-style delay line.
//
// Signals: [0]=audio input, [1]=time seconds, [2]=feedback, [3]=wow rate
// Hz (default 0.5), [4]=flutter rate Hz (default 6.0), [5]=mix (default
// 0.5), per spec.md §4.5's documented tapedelay defaults.
type TapeDelay struct {
	base
	line            *delay.Line
	wowPhase        float64
	flutterPhase    float64
	wowDepthSamples float64
	flutterDepth    float64
}

// NewTapeDelay creates a TapeDelay node.
func NewTapeDelay(id signal.NodeID, sampleRate float64, input, timeSec, feedback signal.Signal) *TapeDelay {
	return &TapeDelay{
		base:            newBase(id, KindTapeDelay, []signal.Signal{input, timeSec, feedback, signal.Const(0.5), signal.Const(6.0), signal.Const(0.5)}),
		line:            newLine(sampleRate, 2.0),
		wowDepthSamples: sampleRate * 0.002,
		flutterDepth:    sampleRate * 0.0003,
	}
}

func (t *TapeDelay) Tick(in []float64, tc *TickContext) float64 {
	baseDelay := in[1] * tc.SampleRate
	feedback := clampUnitish(in[2])
	wowHz := in[3]
	flutterHz := in[4]
	mix := in[5]

	t.wowPhase = wrapTurns(t.wowPhase + wowHz/tc.SampleRate)
	t.flutterPhase = wrapTurns(t.flutterPhase + flutterHz/tc.SampleRate)

	wobble := t.wowDepthSamples*math.Sin(2*math.Pi*t.wowPhase) + t.flutterDepth*math.Sin(2*math.Pi*t.flutterPhase)
	delaySamples := clampDelaySamples(baseDelay+wobble, t.line.Len())

	wet := t.line.ReadFractional(delaySamples)
	t.line.Write(in[0] + feedback*wet)
	return in[0]*(1-mix) + wet*mix
}

func wrapTurns(p float64) float64 {
	for p >= 1 {
		p -= 1
	}
	for p < 0 {
		p += 1
	}
	return p
}

func (t *TapeDelay) Reset() {
	t.line.Reset()
	t.wowPhase = 0
	t.flutterPhase = 0
}
