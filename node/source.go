package node

import (
	"math"
	"math/rand"

	"github.com/phonon-live/phonon/signal"
)

// Waveform selects an oscillator's shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	WavePulse
)

// Constant is a fixed, non-modulatable value source. It still exposes the
// uniform Signal/Tick surface so the compiler can use it as the
// placeholder node bus assignments pre-register in pass 1 (spec.md §4.5).
type Constant struct {
	base
	value float64
}

// NewConstant creates a Constant node with the given value.
func NewConstant(id signal.NodeID, value float64) *Constant {
	return &Constant{base: newBase(id, KindConstant, nil), value: value}
}

// Value returns the constant's value.
func (c *Constant) Value() float64 { return c.value }

// SetValue overwrites the constant's value, used when a placeholder's slot
// is later overwritten with a resolved bus expression of its own.
func (c *Constant) SetValue(v float64) { c.value = v }

func (c *Constant) Tick(_ []float64, _ *TickContext) float64 { return c.value }
func (c *Constant) Reset()                                   {}

// Oscillator is a band-unlimited (naive) oscillator whose waveform
// formulas are lifted from the teacher's sequencer voice model
// (DESIGN.md: "voice" ledger entry), generalized from a fixed sine/
// triangle/saw/square set driven by the sequencer's per-voice phase to a
// graph node driven by a modulatable frequency Signal.
//
// Signals: [0]=frequency (Hz), [1]=phase offset (turns, 0..1), [2]=pulse
// width (WavePulse only, 0..1).
type Oscillator struct {
	base
	waveform Waveform
	phase    float64 // radians, [-pi, pi)
}

// NewOscillator creates an oscillator node.
func NewOscillator(id signal.NodeID, waveform Waveform, freqHz signal.Signal) *Oscillator {
	return &Oscillator{
		base:     newBase(id, KindOscillator, []signal.Signal{freqHz, signal.Const(0), signal.Const(0.5)}),
		waveform: waveform,
	}
}

func (o *Oscillator) Tick(in []float64, tc *TickContext) float64 {
	freq := in[0]
	phaseOffset := 0.0
	if len(in) > 1 {
		phaseOffset = in[1]
	}
	pulseWidth := 0.5
	if len(in) > 2 && in[2] > 0 {
		pulseWidth = in[2]
	}

	phase := wrapPhase(o.phase + phaseOffset*2*math.Pi)
	out := waveSample(o.waveform, phase, pulseWidth)

	step := 2 * math.Pi * freq / tc.SampleRate
	o.phase = wrapPhase(o.phase + step)

	return out
}

func (o *Oscillator) Reset() { o.phase = 0 }

func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p < -math.Pi {
		p += 2 * math.Pi
	}
	return p
}

// waveSample generalizes the teacher's webdemo waveSample() formulas
// (sine via math.Sin, triangle via the asin(sin) identity, saw as a linear
// ramp, square as a sign test) to also support a duty-cycle pulse wave.
func waveSample(w Waveform, phase float64, pulseWidth float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSaw:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	case WavePulse:
		turn := (phase + math.Pi) / (2 * math.Pi)
		if turn < pulseWidth {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// NoiseColor selects a noise generator's spectral shape.
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
	NoiseBrown
)

// Noise is a seeded pseudo-random noise source. White noise is uniform;
// pink and brown are derived from it with simple one-pole shaping. The
// teacher has no noise generator (it is an effects-processing library, not
// a synth), so this follows internal/testutil/signals.go's
// DeterministicNoise in using math/rand directly rather than inventing a
// third-party dependency the pack never uses for random signals.
type Noise struct {
	base
	color NoiseColor
	rng   *rand.Rand
	// pink noise state: Paul Kellet's refined economy filter
	pink [7]float64
	// brown noise state: leaky integrator accumulator
	brown float64
}

// NewNoise creates a noise node with a fixed seed for reproducible
// rendering, per spec.md's determinism requirements for offline render.
func NewNoise(id signal.NodeID, color NoiseColor, seed int64) *Noise {
	return &Noise{
		base:  newBase(id, KindNoise, []signal.Signal{signal.Const(1.0)}),
		color: color,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (n *Noise) Tick(in []float64, _ *TickContext) float64 {
	amp := 1.0
	if len(in) > 0 {
		amp = in[0]
	}
	white := n.rng.Float64()*2 - 1

	switch n.color {
	case NoisePink:
		return amp * n.pinkFrom(white)
	case NoiseBrown:
		n.brown = (n.brown + 0.02*white) / 1.02
		return amp * n.brown * 3.5
	default:
		return amp * white
	}
}

func (n *Noise) pinkFrom(white float64) float64 {
	n.pink[0] = 0.99886*n.pink[0] + white*0.0555179
	n.pink[1] = 0.99332*n.pink[1] + white*0.0750759
	n.pink[2] = 0.96900*n.pink[2] + white*0.1538520
	n.pink[3] = 0.86650*n.pink[3] + white*0.3104856
	n.pink[4] = 0.55000*n.pink[4] + white*0.5329522
	n.pink[5] = -0.7616*n.pink[5] - white*0.0168980
	sum := n.pink[0] + n.pink[1] + n.pink[2] + n.pink[3] + n.pink[4] + n.pink[5] + n.pink[6] + white*0.5362
	n.pink[6] = white * 0.115926
	return sum * 0.11
}

func (n *Noise) Reset() {
	n.pink = [7]float64{}
	n.brown = 0
}
