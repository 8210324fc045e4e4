// Package voice implements the fixed-size sample-voice pool behind every
// Sample node: allocation/stealing policy, fractional-position playback,
// and per-node isolated output mixing, per spec.md §4.3. The
// attack/decay/release envelope shape generalizes
// internal/webdemo/sequencer.go's envelope() function (DESIGN.md: "voice"
// ledger entry) from a fixed two-stage curve to a full ADSR ramp driven by
// dsp/effects/dynamics's attack/release coefficient math.
package voice

import (
	"math"

	"github.com/phonon-live/phonon/signal"
)

// PoolSize is the fixed number of voices in a Manager, per spec.md §4.3's
// "V=64 default".
const PoolSize = 64

type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// Envelope holds the ADSR timing and level a triggered voice ramps
// through.
type Envelope struct {
	AttackSec  float64
	DecaySec   float64
	Sustain    float64
	ReleaseSec float64
}

// TriggerParams carries everything a trigger call needs to start a voice,
// the Go-struct equivalent of spec.md §4.3's
// trigger(node_id, sample, begin, end, speed, gain, pan, envelope, cut_group).
type TriggerParams struct {
	NodeID    signal.NodeID
	Sample    []float64
	SampleHz  float64
	Begin     float64
	End       float64
	Speed     float64
	Gain      float64
	Pan       float64
	Envelope  Envelope
	CutGroup  int
	Loop      bool
	Reverse   bool
}

// Voice is one active (or idle) sample-playback slot.
type Voice struct {
	active    bool
	nodeID    signal.NodeID
	sample    []float64
	sampleHz  float64
	pos       float64 // fractional read position
	begin     float64
	end       float64
	speed     float64
	gain      float64
	pan       float64
	cutGroup  int
	loop      bool
	reverse   bool
	envelope  Envelope
	stage     envelopeStage
	level     float64
	age       int64
	released  bool
}

// Active reports whether the voice is currently producing sound.
func (v *Voice) Active() bool { return v.active }

// NodeID returns the owning Sample node's id.
func (v *Voice) NodeID() signal.NodeID { return v.nodeID }

// Level returns the voice's current envelope level, used by the stealing
// policy to find the quietest voice.
func (v *Voice) Level() float64 { return v.level }

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

// Release forces the voice into its release stage (hard cut uses this to
// immediately free the voice after one release tail).
func (v *Voice) Release() {
	if v.active && v.stage != stageRelease && v.stage != stageIdle {
		v.stage = stageRelease
	}
}

// tick advances the voice's envelope and read position by one sample at
// the given graph sample rate, returning its contribution to the mix.
func (v *Voice) tick(graphSampleRate float64) float64 {
	if !v.active {
		return 0
	}
	v.age++

	switch v.stage {
	case stageAttack:
		coeff := timeToRiseCoeff(v.envelope.AttackSec, graphSampleRate)
		v.level += (1 - v.level) * coeff
		if v.level >= 0.999 {
			v.level = 1
			v.stage = stageDecay
		}
	case stageDecay:
		coeff := timeToFallCoeff(v.envelope.DecaySec, graphSampleRate)
		v.level = v.level*coeff + v.envelope.Sustain*(1-coeff)
		if math.Abs(v.level-v.envelope.Sustain) < 1e-4 {
			v.level = v.envelope.Sustain
			v.stage = stageSustain
		}
	case stageRelease:
		coeff := timeToFallCoeff(v.envelope.ReleaseSec, graphSampleRate)
		v.level = v.level * coeff
		if v.level < 1e-4 {
			v.level = 0
			v.active = false
			v.stage = stageIdle
			return 0
		}
	}

	sample := v.readSample()

	step := (v.sampleHz / graphSampleRate) * v.speed
	if v.reverse {
		step = -step
	}
	v.pos += step

	span := v.end - v.begin
	if span <= 0 {
		v.active = false
		v.stage = stageIdle
		return 0
	}
	if v.loop {
		for v.pos >= v.end {
			v.pos -= span
		}
		for v.pos < v.begin {
			v.pos += span
		}
	} else if v.pos >= v.end || v.pos < v.begin {
		v.active = false
		v.stage = stageIdle
		return sample * v.level * v.gain
	}

	return sample * v.level * v.gain
}

// readSample linearly interpolates the sample buffer at the voice's
// fractional read position, per spec.md §4.3's "linear interpolation
// between neighbouring samples" invariant.
func (v *Voice) readSample() float64 {
	if len(v.sample) == 0 {
		return 0
	}
	idx := int(math.Floor(v.pos))
	frac := v.pos - float64(idx)
	if idx < 0 || idx >= len(v.sample) {
		return 0
	}
	a := v.sample[idx]
	b := a
	if idx+1 < len(v.sample) {
		b = v.sample[idx+1]
	}
	return a + (b-a)*frac
}

// Manager is a fixed pool of PoolSize voices with isolated per-node-id
// output mixing, per spec.md §4.3.
type Manager struct {
	voices []Voice
	mix    map[signal.NodeID]float64
}

// NewManager creates a Manager with the fixed voice pool.
func NewManager() *Manager {
	return &Manager{
		voices: make([]Voice, PoolSize),
		mix:    make(map[signal.NodeID]float64),
	}
}

// Trigger allocates a voice for the given trigger. A same-cut-group voice
// is always hard-cut first, regardless of pool pressure, since cut_group
// is a musical choke group (spec.md §4.3: a new trigger in the same group
// "immediately releases" whatever is already sounding there) and not
// merely a voice-stealing preference; only when no cut-group match exists
// does allocation fall back to an idle voice, then to stealing the oldest
// voice with the lowest envelope level.
func (m *Manager) Trigger(p TriggerParams) {
	idx := m.findCutGroupMatch(p.CutGroup)
	if idx < 0 {
		idx = m.findIdle()
	}
	if idx < 0 {
		idx = m.findStealCandidate()
	}
	if idx < 0 {
		return
	}

	begin, end := p.Begin, p.End
	if end <= begin {
		end = float64(len(p.Sample))
	}
	pos := begin
	if p.Reverse {
		pos = end
	}

	v := &m.voices[idx]
	*v = Voice{
		active:   true,
		nodeID:   p.NodeID,
		sample:   p.Sample,
		sampleHz: p.SampleHz,
		pos:      pos,
		begin:    begin,
		end:      end,
		speed:    p.Speed,
		gain:     p.Gain,
		pan:      p.Pan,
		cutGroup: p.CutGroup,
		loop:     p.Loop,
		reverse:  p.Reverse,
		envelope: p.Envelope,
		stage:    stageAttack,
	}
	if p.Speed == 0 {
		v.speed = 1
	}
	if v.sampleHz == 0 {
		v.sampleHz = 44100
	}
}

func (m *Manager) findIdle() int {
	for i := range m.voices {
		if !m.voices[i].active {
			return i
		}
	}
	return -1
}

func (m *Manager) findCutGroupMatch(cutGroup int) int {
	if cutGroup == 0 {
		return -1
	}
	for i := range m.voices {
		if m.voices[i].active && m.voices[i].cutGroup == cutGroup {
			return i
		}
	}
	return -1
}

func (m *Manager) findStealCandidate() int {
	best := -1
	var bestLevel float64 = math.Inf(1)
	var bestAge int64 = -1
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		if v.level < bestLevel || (v.level == bestLevel && v.age > bestAge) {
			best = i
			bestLevel = v.level
			bestAge = v.age
		}
	}
	return best
}

// Advance ticks every active voice by one sample and returns a per-node
// mix map (aliased internal storage, valid until the next Advance call),
// satisfying spec.md §4.3's "two Sample nodes in different subgraphs do
// not contaminate each other's output" isolation invariant.
func (m *Manager) Advance(sampleRate float64) map[signal.NodeID]float64 {
	for k := range m.mix {
		delete(m.mix, k)
	}
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		out := v.tick(sampleRate)
		m.mix[v.nodeID] += out
	}
	return m.mix
}

// MixFor returns the current sample's mixed output for the given Sample
// node id.
func (m *Manager) MixFor(nodeID signal.NodeID) float64 {
	return m.mix[nodeID]
}

// ReleaseAll force-releases every active voice, used on panic per
// spec.md §4.6.
func (m *Manager) ReleaseAll() {
	for i := range m.voices {
		m.voices[i].active = false
		m.voices[i].stage = stageIdle
	}
	for k := range m.mix {
		delete(m.mix, k)
	}
}

// ActiveCount reports how many voices are currently sounding, useful for
// tests asserting the stealing policy.
func (m *Manager) ActiveCount() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}
	return n
}
