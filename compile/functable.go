package compile

import (
	"github.com/phonon-live/phonon/node"
	"github.com/phonon-live/phonon/signal"
)

// defaultFuncTable returns the compiler's built-in function table. It is a
// representative, non-exhaustive DSL surface: every node kind in package
// node is independently constructible and testable, but only the entries
// below are reachable from a textual-style AST, per SPEC_FULL.md §9's
// scope note that the full grammar is out of bounds for this module.
func defaultFuncTable() map[string]FuncSpec {
	return map[string]FuncSpec{
		"sine": oscSpec(node.WaveSine),
		"saw":  oscSpec(node.WaveSaw),
		"square": oscSpec(node.WaveSquare),
		"tri":  oscSpec(node.WaveTriangle),
		"pulse": {
			Args: []ArgSpec{
				{Name: "freq", Default: signal.Const(440), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewOscillator(id, node.WavePulse, args[0])
			},
		},
		"noise": {
			Args: []ArgSpec{},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewNoise(id, node.NoiseWhite, int64(id)+1)
			},
		},
		"pink": {
			Args: []ArgSpec{},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewNoise(id, node.NoisePink, int64(id)+1)
			},
		},

		"lpf":   filterSpec(node.FilterLowpass),
		"hpf":   filterSpec(node.FilterHighpass),
		"bpf":   filterSpec(node.FilterBandpass),
		"notch": filterSpec(node.FilterNotch),

		"moog": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "cutoff", Default: signal.Const(1000), Required: false},
				{Name: "resonance", Default: signal.Const(0.2), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewMoogLadder(id, c.sampleRate, args[0], args[1], args[2])
			},
		},
		"comb": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "delay", Default: signal.Const(0.01), Required: false},
				{Name: "feedback", Default: signal.Const(0.5), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewComb(id, c.sampleRate, args[0], args[1], args[2])
			},
		},

		"delay": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "time", Default: signal.Const(0.25), Required: false},
				{Name: "feedback", Default: signal.Const(0.3), Required: false},
				{Name: "mix", Default: signal.Const(0.5), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewDelay(id, c.sampleRate, args[0], args[1], args[2], args[3])
			},
		},
		"delaytap": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "time", Default: signal.Const(0.25), Required: false},
				{Name: "feedback", Default: signal.Const(0.3), Required: false},
				{Name: "mix", Default: signal.Const(0.5), Required: false},
				{Name: "taps", Default: signal.Const(3), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewMultiTapDelay(id, c.sampleRate, args[0], args[1], args[2], args[3], args[4])
			},
		},
		"pingpong": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "time", Default: signal.Const(0.25), Required: false},
				{Name: "feedback", Default: signal.Const(0.3), Required: false},
				{Name: "mix", Default: signal.Const(0.5), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewPingPongDelay(id, c.sampleRate, args[0], args[1], args[2], args[3])
			},
		},
		"tapedelay": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "time", Default: signal.Const(0.25), Required: false},
				{Name: "feedback", Default: signal.Const(0.3), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewTapeDelay(id, c.sampleRate, args[0], args[1], args[2])
			},
		},

		"reverb": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "wet", Default: signal.Const(0.3), Required: false},
				{Name: "room", Default: signal.Const(0.5), Required: false},
				{Name: "damp", Default: signal.Const(0.5), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewReverb(id, node.ReverbFreeverb, c.sampleRate, args[0], args[1], args[2], args[3])
			},
		},
		"plate": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "wet", Default: signal.Const(0.3), Required: false},
				{Name: "rt60", Default: signal.Const(1.5), Required: false},
				{Name: "damp", Default: signal.Const(0.5), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewReverb(id, node.ReverbPlate, c.sampleRate, args[0], args[1], args[2], args[3])
			},
		},

		"adsr": envSpec(node.EnvelopeADSR),
		"ad":   envSpec(node.EnvelopeAD),
		"ar":   envSpec(node.EnvelopeAR),
		"line": envSpec(node.EnvelopeLine),
		"xline": envSpec(node.EnvelopeXLine),

		"pan": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "pan", Default: signal.Const(0), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewPanner(id, args[0], args[1])
			},
		},
		"gain": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "level", Default: signal.Const(1), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewArithmetic(id, node.ArithMul, args[0], args[1])
			},
		},

		"distort": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "drive", Default: signal.Const(0.5), Required: false},
				{Name: "mix", Default: signal.Const(1), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewWaveshaper(id, node.WaveshaperDistortion, c.sampleRate, args[0], args[1], args[2])
			},
		},
		"bitcrush": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "drive", Default: signal.Const(0.5), Required: false},
				{Name: "mix", Default: signal.Const(1), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewWaveshaper(id, node.WaveshaperBitCrusher, c.sampleRate, args[0], args[1], args[2])
			},
		},
		"chorus": modSpec(node.ModulationChorus),
		"flanger": modSpec(node.ModulationFlanger),
		"phaser": modSpec(node.ModulationPhaser),
		"tremolo": modSpec(node.ModulationTremolo),

		"compressor": dynSpec(node.DynamicsCompressor),
		"gate":       dynSpec(node.DynamicsGate),
		"expander":   dynSpec(node.DynamicsExpander),
		"limiter": {
			Args: []ArgSpec{
				{Name: "input", Default: signal.Const(0), Required: true},
				{Name: "threshold", Default: signal.Const(-3), Required: false},
				{Name: "release", Default: signal.Const(0.1), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewLimiter(id, c.sampleRate, args[0], args[1], args[2])
			},
		},

		"widen": {
			Args: []ArgSpec{
				{Name: "left", Default: signal.Const(0), Required: true},
				{Name: "right", Default: signal.Const(0), Required: true},
				{Name: "width", Default: signal.Const(1), Required: false},
			},
			Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
				return node.NewStereoWidener(id, c.sampleRate, args[0], args[1], args[2])
			},
		},
	}
}

func oscSpec(wave node.Waveform) FuncSpec {
	return FuncSpec{
		Args: []ArgSpec{
			{Name: "freq", Default: signal.Const(440), Required: false},
		},
		Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
			return node.NewOscillator(id, wave, args[0])
		},
	}
}

func filterSpec(shape node.FilterShape) FuncSpec {
	return FuncSpec{
		Args: []ArgSpec{
			{Name: "input", Default: signal.Const(0), Required: true},
			{Name: "cutoff", Default: signal.Const(1000), Required: false},
			{Name: "q", Default: signal.Const(0.707), Required: false},
		},
		Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
			return node.NewFilter(id, shape, args[0], args[1], args[2])
		},
	}
}

func envSpec(shape node.EnvelopeShape) FuncSpec {
	return FuncSpec{
		Args: []ArgSpec{
			{Name: "gate", Default: signal.Const(0), Required: false},
			{Name: "attack", Default: signal.Const(0.01), Required: false},
			{Name: "decay", Default: signal.Const(0.1), Required: false},
			{Name: "sustain", Default: signal.Const(0.7), Required: false},
			{Name: "release", Default: signal.Const(0.2), Required: false},
		},
		Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
			return node.NewEnvelope(id, shape, c.sampleRate, args[0], args[1], args[2], args[3], args[4])
		},
	}
}

func modSpec(style node.ModulationStyle) FuncSpec {
	return FuncSpec{
		Args: []ArgSpec{
			{Name: "input", Default: signal.Const(0), Required: true},
			{Name: "rate", Default: signal.Const(0.5), Required: false},
			{Name: "depth", Default: signal.Const(0.5), Required: false},
			{Name: "mix", Default: signal.Const(0.5), Required: false},
		},
		Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
			return node.NewModulation(id, style, c.sampleRate, args[0], args[1], args[2], args[3])
		},
	}
}

func dynSpec(style node.DynamicsStyle) FuncSpec {
	return FuncSpec{
		Args: []ArgSpec{
			{Name: "input", Default: signal.Const(0), Required: true},
			{Name: "threshold", Default: signal.Const(-12), Required: false},
			{Name: "ratio", Default: signal.Const(4), Required: false},
			{Name: "attack", Default: signal.Const(0.01), Required: false},
			{Name: "release", Default: signal.Const(0.1), Required: false},
		},
		Build: func(c *compiler, id signal.NodeID, args []signal.Signal) node.Node {
			return node.NewDynamics(id, style, c.sampleRate, args[0], args[1], args[2], args[3], args[4])
		},
	}
}
