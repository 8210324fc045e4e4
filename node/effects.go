package node

import (
	"github.com/phonon-live/phonon/dsp/dither"
	"github.com/phonon-live/phonon/dsp/effects"
	"github.com/phonon-live/phonon/dsp/effects/dynamics"
	"github.com/phonon-live/phonon/dsp/effects/modulation"
	"github.com/phonon-live/phonon/dsp/effects/pitch"
	"github.com/phonon-live/phonon/dsp/effects/spatial"
	"github.com/phonon-live/phonon/signal"
)

// WaveshaperStyle selects a Waveshaper node's underlying processor.
type WaveshaperStyle int

const (
	WaveshaperDistortion WaveshaperStyle = iota
	WaveshaperBitCrusher
	WaveshaperHarmonicBass
	WaveshaperTransformer
	WaveshaperDither
)

// Waveshaper groups every single-sample nonlinear shaper in the teacher's
// effects package (distortion, bit-crusher, harmonic exciter, transformer
// saturation, dithered bit-depth reduction) behind one node kind, since
// spec.md §3 treats waveshaping as a single node family distinguished by a
// style parameter rather than five separate node kinds. WaveshaperDither
// is distinct from WaveshaperBitCrusher: the bit-crusher truncates toward
// zero for an aliased, harsh digital-clipping character, while the dither
// style runs dsp/dither.Quantizer's noise-shaped TPDF dither ahead of
// truncation, the output-stage quantization path a mastering chain would
// use instead of a creative effect.
//
// Signals: [0]=audio input, [1]=drive/amount (0..1), [2]=mix (0..1).
type Waveshaper struct {
	base
	style       WaveshaperStyle
	distortion  *effects.Distortion
	bitCrusher  *effects.BitCrusher
	harmonic    *effects.HarmonicBass
	transformer *effects.TransformerSimulation
	quantizer   *dither.Quantizer
}

// NewWaveshaper creates a Waveshaper node of the given style.
func NewWaveshaper(id signal.NodeID, style WaveshaperStyle, sampleRate float64, input, drive, mix signal.Signal) *Waveshaper {
	w := &Waveshaper{base: newBase(id, KindWaveshaper, []signal.Signal{input, drive, mix}), style: style}
	switch style {
	case WaveshaperBitCrusher:
		w.bitCrusher, _ = effects.NewBitCrusher(sampleRate)
	case WaveshaperHarmonicBass:
		w.harmonic, _ = effects.NewHarmonicBass(sampleRate)
	case WaveshaperTransformer:
		w.transformer, _ = effects.NewTransformerSimulation(sampleRate)
	case WaveshaperDither:
		w.quantizer, _ = dither.NewQuantizer(sampleRate, dither.WithDitherType(dither.DitherTriangular))
	default:
		w.distortion, _ = effects.NewDistortion(sampleRate)
	}
	return w
}

func (w *Waveshaper) Tick(in []float64, _ *TickContext) float64 {
	audioIn, drive, mix := in[0], in[1], in[2]

	switch w.style {
	case WaveshaperBitCrusher:
		if w.bitCrusher == nil {
			return audioIn
		}
		_ = w.bitCrusher.SetBitDepth(1 + drive*15)
		_ = w.bitCrusher.SetMix(mix)
		return w.bitCrusher.ProcessSample(audioIn)
	case WaveshaperHarmonicBass:
		if w.harmonic == nil {
			return audioIn
		}
		_ = w.harmonic.SetRatio(drive)
		return w.harmonic.ProcessSample(audioIn)
	case WaveshaperTransformer:
		if w.transformer == nil {
			return audioIn
		}
		_ = w.transformer.SetDrive(drive)
		_ = w.transformer.SetMix(mix)
		return w.transformer.ProcessSample(audioIn)
	case WaveshaperDither:
		if w.quantizer == nil {
			return audioIn
		}
		bits := 4 + int((1-drive)*12)
		_ = w.quantizer.SetBitDepth(bits)
		wet := w.quantizer.ProcessSample(audioIn)
		return audioIn*(1-mix) + wet*mix
	default:
		if w.distortion == nil {
			return audioIn
		}
		_ = w.distortion.SetDrive(drive)
		_ = w.distortion.SetMix(mix)
		return w.distortion.ProcessSample(audioIn)
	}
}

func (w *Waveshaper) Reset() {
	if w.distortion != nil {
		w.distortion.Reset()
	}
	if w.bitCrusher != nil {
		w.bitCrusher.Reset()
	}
	if w.quantizer != nil {
		w.quantizer.Reset()
	}
}

// DynamicsStyle selects a Dynamics node's compressor-family processor.
type DynamicsStyle int

const (
	DynamicsCompressor DynamicsStyle = iota
	DynamicsGate
	DynamicsExpander
)

// Dynamics wraps dsp/effects/dynamics's level-dependent processors (all
// of which share the teacher's threshold/ratio/attack/release parameter
// shape) behind one node kind with a style selector, the same grouping
// strategy as Waveshaper.
//
// Signals: [0]=audio input, [1]=threshold dB, [2]=ratio, [3]=attack ms,
// [4]=release ms.
type Dynamics struct {
	base
	style      DynamicsStyle
	compressor *dynamics.Compressor
	gate       *dynamics.Gate
	expander   *dynamics.Expander
}

// NewDynamics creates a Dynamics node of the given style.
func NewDynamics(id signal.NodeID, style DynamicsStyle, sampleRate float64, input, threshold, ratio, attack, release signal.Signal) *Dynamics {
	d := &Dynamics{base: newBase(id, KindDynamics, []signal.Signal{input, threshold, ratio, attack, release}), style: style}
	switch style {
	case DynamicsGate:
		d.gate, _ = dynamics.NewGate(sampleRate)
	case DynamicsExpander:
		d.expander, _ = dynamics.NewExpander(sampleRate)
	default:
		d.compressor, _ = dynamics.NewCompressor(sampleRate)
	}
	return d
}

func (d *Dynamics) Tick(in []float64, _ *TickContext) float64 {
	audioIn, threshold, ratio, attack, release := in[0], in[1], in[2], in[3], in[4]

	switch d.style {
	case DynamicsGate:
		if d.gate == nil {
			return audioIn
		}
		_ = d.gate.SetThreshold(threshold)
		_ = d.gate.SetRatio(ratio)
		_ = d.gate.SetAttack(attack)
		_ = d.gate.SetRelease(release)
		return d.gate.ProcessSample(audioIn)
	case DynamicsExpander:
		if d.expander == nil {
			return audioIn
		}
		_ = d.expander.SetThreshold(threshold)
		_ = d.expander.SetRatio(ratio)
		_ = d.expander.SetAttack(attack)
		_ = d.expander.SetRelease(release)
		return d.expander.ProcessSample(audioIn)
	default:
		if d.compressor == nil {
			return audioIn
		}
		_ = d.compressor.SetThreshold(threshold)
		_ = d.compressor.SetRatio(ratio)
		_ = d.compressor.SetAttack(attack)
		_ = d.compressor.SetRelease(release)
		return d.compressor.ProcessSample(audioIn)
	}
}

func (d *Dynamics) Reset() {
	if d.compressor != nil {
		d.compressor.Reset()
	}
}

// Limiter is a brick-wall peak limiter built on
// dsp/effects/dynamics.LookaheadLimiter, kept distinct from Dynamics
// because spec.md §3 lists "limiter" as its own node kind, not a Dynamics
// style.
//
// Signals: [0]=audio input, [1]=threshold dB, [2]=release ms.
type Limiter struct {
	base
	limiter *dynamics.LookaheadLimiter
}

// NewLimiter creates a Limiter node.
func NewLimiter(id signal.NodeID, sampleRate float64, input, threshold, release signal.Signal) *Limiter {
	l, _ := dynamics.NewLookaheadLimiter(sampleRate)
	return &Limiter{base: newBase(id, KindLimiter, []signal.Signal{input, threshold, release}), limiter: l}
}

func (l *Limiter) Tick(in []float64, _ *TickContext) float64 {
	if l.limiter == nil {
		return in[0]
	}
	_ = l.limiter.SetThreshold(in[1])
	_ = l.limiter.SetRelease(in[2])
	return l.limiter.ProcessSample(in[0])
}

func (l *Limiter) Reset() {}

// ModulationStyle selects a Modulation node's effect.
type ModulationStyle int

const (
	ModulationChorus ModulationStyle = iota
	ModulationFlanger
	ModulationPhaser
	ModulationTremolo
	ModulationRingMod
	ModulationAutoWah
)

// Modulation groups the teacher's LFO-driven effects (chorus, flanger,
// phaser, tremolo, ring modulator, auto-wah) behind one node kind with a
// style selector, per spec.md §3's "modulation" node family.
//
// Signals: [0]=audio input, [1]=rate Hz, [2]=depth/amount (0..1),
// [3]=mix (0..1).
type Modulation struct {
	base
	style    ModulationStyle
	chorus   *modulation.Chorus
	flanger  *modulation.Flanger
	phaser   *modulation.Phaser
	tremolo  *modulation.Tremolo
	ringMod  *modulation.RingModulator
	autoWah  *modulation.AutoWah
}

// NewModulation creates a Modulation node of the given style.
func NewModulation(id signal.NodeID, style ModulationStyle, sampleRate float64, input, rate, depth, mix signal.Signal) *Modulation {
	m := &Modulation{base: newBase(id, KindModulation, []signal.Signal{input, rate, depth, mix}), style: style}
	switch style {
	case ModulationChorus:
		m.chorus, _ = modulation.NewChorus()
		if m.chorus != nil {
			_ = m.chorus.SetSampleRate(sampleRate)
		}
	case ModulationFlanger:
		m.flanger, _ = modulation.NewFlanger(sampleRate)
	case ModulationPhaser:
		m.phaser, _ = modulation.NewPhaser(sampleRate)
	case ModulationTremolo:
		m.tremolo, _ = modulation.NewTremolo(sampleRate)
	case ModulationRingMod:
		m.ringMod, _ = modulation.NewRingModulator(sampleRate)
	case ModulationAutoWah:
		m.autoWah, _ = modulation.NewAutoWah(sampleRate)
	}
	return m
}

func (m *Modulation) Tick(in []float64, _ *TickContext) float64 {
	audioIn, rate, depth, mix := in[0], in[1], in[2], in[3]

	switch m.style {
	case ModulationChorus:
		if m.chorus == nil {
			return audioIn
		}
		_ = m.chorus.SetSpeedHz(rate)
		_ = m.chorus.SetDepth(depth)
		_ = m.chorus.SetMix(mix)
		return m.chorus.ProcessSample(audioIn)
	case ModulationFlanger:
		if m.flanger == nil {
			return audioIn
		}
		_ = m.flanger.SetRateHz(rate)
		_ = m.flanger.SetDepthSeconds(depth * 0.005)
		_ = m.flanger.SetMix(mix)
		return m.flanger.ProcessSample(audioIn)
	case ModulationPhaser:
		if m.phaser == nil {
			return audioIn
		}
		_ = m.phaser.SetRateHz(rate)
		_ = m.phaser.SetMix(mix)
		return m.phaser.ProcessSample(audioIn)
	case ModulationTremolo:
		if m.tremolo == nil {
			return audioIn
		}
		_ = m.tremolo.SetRateHz(rate)
		_ = m.tremolo.SetDepth(depth)
		_ = m.tremolo.SetMix(mix)
		return m.tremolo.ProcessSample(audioIn)
	case ModulationRingMod:
		if m.ringMod == nil {
			return audioIn
		}
		_ = m.ringMod.SetCarrierHz(rate)
		_ = m.ringMod.SetMix(mix)
		return m.ringMod.ProcessSample(audioIn)
	case ModulationAutoWah:
		if m.autoWah == nil {
			return audioIn
		}
		_ = m.autoWah.SetSensitivity(depth)
		_ = m.autoWah.SetMix(mix)
		return m.autoWah.ProcessSample(audioIn)
	default:
		return audioIn
	}
}

func (m *Modulation) Reset() {}

// Pitch is a time-domain (PSOLA-style) pitch shifter.
//
// Signals: [0]=audio input, [1]=pitch ratio (1.0 = unchanged).
type Pitch struct {
	base
	shifter *pitch.PitchShifter
}

// NewPitch creates a Pitch node.
func NewPitch(id signal.NodeID, sampleRate float64, input, ratio signal.Signal) *Pitch {
	p, _ := pitch.NewPitchShifter(sampleRate)
	return &Pitch{base: newBase(id, KindPitch, []signal.Signal{input, ratio}), shifter: p}
}

func (p *Pitch) Tick(in []float64, _ *TickContext) float64 {
	if p.shifter == nil {
		return in[0]
	}
	_ = p.shifter.SetPitchRatio(in[1])
	out := p.shifter.Process([]float64{in[0]})
	if len(out) == 0 {
		return 0
	}
	return out[0]
}

func (p *Pitch) Reset() {}

// SpectralPitch is a phase-vocoder pitch shifter, distinct from Pitch's
// time-domain PSOLA approach per spec.md §3's separate "spectral-pitch"
// node kind.
//
// Signals: [0]=audio input, [1]=pitch ratio.
type SpectralPitch struct {
	base
	shifter *pitch.SpectralPitchShifter
}

// NewSpectralPitch creates a SpectralPitch node.
func NewSpectralPitch(id signal.NodeID, sampleRate float64, input, ratio signal.Signal) *SpectralPitch {
	s, _ := pitch.NewSpectralPitchShifter(sampleRate)
	return &SpectralPitch{base: newBase(id, KindSpectralPitch, []signal.Signal{input, ratio}), shifter: s}
}

func (s *SpectralPitch) Tick(in []float64, _ *TickContext) float64 {
	if s.shifter == nil {
		return in[0]
	}
	_ = s.shifter.SetPitchRatio(in[1])
	out := s.shifter.Process([]float64{in[0]})
	if len(out) == 0 {
		return 0
	}
	return out[0]
}

func (s *SpectralPitch) Reset() {}

// SpectralFreeze holds a spectral snapshot and resynthesizes it
// continuously while frozen.
//
// Signals: [0]=audio input, [1]=freeze gate (>0 freezes), [2]=mix.
type SpectralFreeze struct {
	base
	freeze *effects.SpectralFreeze
}

// NewSpectralFreeze creates a SpectralFreeze node.
func NewSpectralFreeze(id signal.NodeID, sampleRate float64, input, freezeGate, mix signal.Signal) *SpectralFreeze {
	f, _ := effects.NewSpectralFreeze(sampleRate)
	return &SpectralFreeze{base: newBase(id, KindSpectralFreeze, []signal.Signal{input, freezeGate, mix}), freeze: f}
}

func (s *SpectralFreeze) Tick(in []float64, _ *TickContext) float64 {
	if s.freeze == nil {
		return in[0]
	}
	s.freeze.SetFrozen(in[1] > 0)
	_ = s.freeze.SetMix(in[2])
	out := s.freeze.Process([]float64{in[0]})
	if len(out) == 0 {
		return 0
	}
	return out[0]
}

func (s *SpectralFreeze) Reset() {}

// Granular is a grain-cloud delay/time-stretch effect.
//
// Signals: [0]=audio input, [1]=grain seconds, [2]=spray (0..1), [3]=pitch
// ratio, [4]=mix.
type Granular struct {
	base
	granular *effects.Granular
}

// NewGranular creates a Granular node.
func NewGranular(id signal.NodeID, sampleRate float64, input, grainSec, spray, pitchRatio, mix signal.Signal) *Granular {
	g, _ := effects.NewGranular(sampleRate)
	return &Granular{base: newBase(id, KindGranular, []signal.Signal{input, grainSec, spray, pitchRatio, mix}), granular: g}
}

func (g *Granular) Tick(in []float64, _ *TickContext) float64 {
	if g.granular == nil {
		return in[0]
	}
	_ = g.granular.SetGrainSeconds(in[1])
	_ = g.granular.SetSpray(in[2])
	_ = g.granular.SetPitch(in[3])
	_ = g.granular.SetMix(in[4])
	return g.granular.ProcessSample(in[0])
}

func (g *Granular) Reset() {}

// Vocoder imposes a modulator signal's spectral envelope onto a carrier.
//
// Signals: [0]=modulator input, [1]=carrier input, [2]=attack ms,
// [3]=release ms.
type Vocoder struct {
	base
	vocoder *effects.Vocoder
}

// NewVocoder creates a Vocoder node.
func NewVocoder(id signal.NodeID, sampleRate float64, modulator, carrier, attack, release signal.Signal) *Vocoder {
	v, _ := effects.NewVocoder(sampleRate)
	return &Vocoder{base: newBase(id, KindVocoder, []signal.Signal{modulator, carrier, attack, release}), vocoder: v}
}

func (v *Vocoder) Tick(in []float64, _ *TickContext) float64 {
	if v.vocoder == nil {
		return in[0]
	}
	_ = v.vocoder.SetAttack(in[2])
	_ = v.vocoder.SetRelease(in[3])
	return v.vocoder.ProcessSample(in[0], in[1])
}

func (v *Vocoder) Reset() {}

// StereoWidener and CrosstalkCanceller are genuinely stereo (two-in,
// two-out) processors. Like PingPongDelay, Tick returns the left channel
// and Right() exposes the other, since Node.Tick is mono by contract.
//
// Signals: [0]=left input, [1]=right input, [2]=width/attenuation (0..1).
type StereoWidener struct {
	base
	widener   *spatial.StereoWidener
	lastRight float64
}

// NewStereoWidener creates a StereoWidener node.
func NewStereoWidener(id signal.NodeID, sampleRate float64, left, right, width signal.Signal) *StereoWidener {
	w, _ := spatial.NewStereoWidener(sampleRate)
	return &StereoWidener{base: newBase(id, KindStereoWidener, []signal.Signal{left, right, width}), widener: w}
}

func (s *StereoWidener) Tick(in []float64, _ *TickContext) float64 {
	if s.widener == nil {
		return in[0]
	}
	_ = s.widener.SetWidth(in[2])
	l, r := s.widener.ProcessStereo(in[0], in[1])
	s.lastRight = r
	return l
}

// Right returns the last-computed right channel.
func (s *StereoWidener) Right() float64 { return s.lastRight }

func (s *StereoWidener) Reset() {}

// CrosstalkCanceller is speaker crosstalk cancellation for headphone-free
// stereo listening.
//
// Signals: [0]=left input, [1]=right input, [2]=attenuation (0..1).
type CrosstalkCanceller struct {
	base
	canceller *spatial.CrosstalkCanceller
	lastRight float64
}

// NewCrosstalkCanceller creates a CrosstalkCanceller node.
func NewCrosstalkCanceller(id signal.NodeID, sampleRate float64, left, right, attenuation signal.Signal) *CrosstalkCanceller {
	c, _ := spatial.NewCrosstalkCanceller(sampleRate)
	return &CrosstalkCanceller{base: newBase(id, KindCrosstalkCanceller, []signal.Signal{left, right, attenuation}), canceller: c}
}

func (c *CrosstalkCanceller) Tick(in []float64, _ *TickContext) float64 {
	if c.canceller == nil {
		return in[0]
	}
	_ = c.canceller.SetAttenuation(in[2])
	l, r := c.canceller.ProcessStereo(in[0], in[1])
	c.lastRight = r
	return l
}

// Right returns the last-computed right channel.
func (c *CrosstalkCanceller) Right() float64 { return c.lastRight }

func (c *CrosstalkCanceller) Reset() {}
