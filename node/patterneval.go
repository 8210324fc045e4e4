package node

import (
	"github.com/phonon-live/phonon/pattern"
	"github.com/phonon-live/phonon/rational"
	"github.com/phonon-live/phonon/signal"
	"github.com/phonon-live/phonon/voice"
)

// PatternEval evaluates an embedded continuous-value Pattern against the
// current cycle position and holds the most recent event's value until
// the next onset, per spec.md §3's "pattern evaluator" node kind. Unlike
// other nodes, its single Signal IS the pattern (via signal.FromPattern),
// so it queries it directly instead of resolving a float input.
type PatternEval struct {
	base
	query       pattern.Pattern[float64]
	held        float64
	lastQueried rational.Rational
	hasQueried  bool
}

// NewPatternEval creates a PatternEval node over the given pattern.
func NewPatternEval(id signal.NodeID, p pattern.Pattern[float64]) *PatternEval {
	return &PatternEval{
		base:  newBase(id, KindPatternEval, []signal.Signal{signal.FromPattern(p)}),
		query: p,
	}
}

func (e *PatternEval) Tick(_ []float64, tc *TickContext) float64 {
	span := pattern.NewSpan(tc.CyclePos, tc.CyclePos.Add(rational.New(1, int64(tc.SampleRate))))
	events := e.query.Query(span)
	for _, ev := range events {
		if ev.HasOnset() {
			e.held = ev.Value
		}
	}
	e.lastQueried = tc.CyclePos
	e.hasQueried = true
	return e.held
}

func (e *PatternEval) Reset() {
	e.held = 0
	e.hasQueried = false
}

// Sample is a one-shot (or looped) sample-voice trigger node, driven by
// an onset Pattern and routed through a shared voice.Manager. Unlike
// every other node, its audio output does not come from its own Tick
// math: it is the node-id-isolated mix the Graph reads back from the
// voice.Manager after advancing it once per sample, per spec.md §4.3's
// per-node isolation invariant — Tick here only detects onsets and issues
// Trigger calls; TickContext carries no voice output, so the Graph must
// call ReadVoiceMix after manager.Advance and feed it in as in[0] on the
// node's *next* evaluation (or, more simply, the Graph may skip calling
// Tick for Sample nodes and call Manager.MixFor(id) directly — see
// DESIGN.md's graph/voice orchestration note).
//
// Signals: [0]=speed, [1]=gain, [2]=pan, [3]=begin (frames), [4]=end
// (frames, 0 = full buffer length), [5]=attack seconds, [6]=decay
// seconds, [7]=sustain level, [8]=release seconds.
type Sample struct {
	base
	manager     *voice.Manager
	query       pattern.Pattern[string]
	buffers     map[string][]float64
	bufferHz    float64
	cutGroup    int
	loop        bool
	reverse     bool
	lastSampled rational.Rational
}

// NewSample creates a Sample node. buffers maps a sample name (as carried
// by the onset pattern's event values, e.g. "bd", "sn") to its decoded
// PCM data; bufferHz is the sample rate the buffers themselves were
// recorded at (used for pitched playback via TriggerParams.SampleHz).
func NewSample(id signal.NodeID, manager *voice.Manager, onsets pattern.Pattern[string], buffers map[string][]float64, bufferHz float64) *Sample {
	return &Sample{
		base: newBase(id, KindSample, []signal.Signal{
			signal.Const(1), signal.Const(1), signal.Const(0),
			signal.Const(0), signal.Const(0),
			signal.Const(0.001), signal.Const(0.05), signal.Const(1), signal.Const(0.05),
		}),
		manager:  manager,
		query:    onsets,
		buffers:  buffers,
		bufferHz: bufferHz,
	}
}

// SetCutGroup sets the cut-group all voices this node triggers belong to.
func (s *Sample) SetCutGroup(g int) { s.cutGroup = g }

// SetLoop sets whether triggered voices loop between begin/end.
func (s *Sample) SetLoop(loop bool) { s.loop = loop }

// SetReverse sets whether triggered voices play backward.
func (s *Sample) SetReverse(rev bool) { s.reverse = rev }

func (s *Sample) Tick(in []float64, tc *TickContext) float64 {
	span := pattern.NewSpan(tc.CyclePos, tc.CyclePos.Add(rational.New(1, int64(tc.SampleRate))))
	events := s.query.Query(span)
	for _, ev := range events {
		if !ev.HasOnset() {
			continue
		}
		buf, ok := s.buffers[ev.Value]
		if !ok {
			continue
		}
		speed, gain, pan := in[0], in[1], in[2]
		begin, end := in[3], in[4]
		if end <= 0 {
			end = float64(len(buf))
		}
		s.manager.Trigger(voice.TriggerParams{
			NodeID:   s.id,
			Sample:   buf,
			SampleHz: s.bufferHz,
			Begin:    begin,
			End:      end,
			Speed:    speed,
			Gain:     gain,
			Pan:      pan,
			CutGroup: s.cutGroup,
			Loop:     s.loop,
			Reverse:  s.reverse,
			Envelope: voice.Envelope{
				AttackSec:  in[5],
				DecaySec:   in[6],
				Sustain:    in[7],
				ReleaseSec: in[8],
			},
		})
	}
	return s.manager.MixFor(s.id)
}

func (s *Sample) Reset() {}
