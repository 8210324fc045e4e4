// Package graph implements the Unified Signal Graph Evaluator: node
// storage, topological ordering with feedback-edge detection, and the two
// render paths spec.md §4.1 requires. The topological sort is Kahn's
// algorithm lifted directly from dsp/effectchain/graph.go's parseGraph
// (indegree map, FIFO queue, outgoing-edge relaxation), generalized from
// "error on any cycle" to "mark residual nodes as a feedback subgraph and
// order them stably by id," per spec.md §4.1's cycle-handling contract.
package graph

import (
	"fmt"

	"github.com/phonon-live/phonon/dsp/buffer"
	"github.com/phonon-live/phonon/node"
	"github.com/phonon-live/phonon/rational"
	"github.com/phonon-live/phonon/signal"
	"github.com/phonon-live/phonon/timeauthority"
	"github.com/phonon-live/phonon/voice"
)

// Graph holds every node in a compiled Phonon program plus the state
// needed to render it: topological order, bus names, time, and the
// shared voice pool, per spec.md §4.1.
type Graph struct {
	nodes       []node.Node
	buses       map[string]signal.NodeID
	order       []signal.NodeID
	position    map[signal.NodeID]int
	curOutputs  []float64
	prevOutputs []float64
	sampleRate  float64
	sampleIndex int64

	Time   *timeauthority.Authority
	Voices *voice.Manager

	patternCache map[patternCacheKey]float64

	blockCache map[signal.NodeID]blockCacheEntry

	hushed map[string]bool

	// scratch holds each node's resolved input vector for the duration of
	// one tick() call. It is reused across samples instead of allocated
	// fresh, since tick() runs once per sample in the real-time render
	// loop.
	scratch *buffer.Buffer
}

type patternCacheKey struct {
	NodeID     signal.NodeID
	ParamIndex int
}

type blockCacheEntry struct {
	blockStart int64
	buf        []float64
}

// New creates an empty Graph at the given sample rate and tempo (cycles
// per second).
func New(sampleRate float64, cps rational.Rational) *Graph {
	return &Graph{
		buses:        make(map[string]signal.NodeID),
		position:     make(map[signal.NodeID]int),
		sampleRate:   sampleRate,
		Time:         timeauthority.New(cps, sampleRate),
		Voices:       voice.NewManager(),
		patternCache: make(map[patternCacheKey]float64),
		blockCache:   make(map[signal.NodeID]blockCacheEntry),
		hushed:       make(map[string]bool),
		scratch:      buffer.New(0),
	}
}

// SampleRate returns the graph's render sample rate.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// AddNode registers n at its own ID (growing internal storage as
// needed) and invalidates the cached topological order, per spec.md
// §4.1's add_node contract. Node ids are never reused within a graph
// instance (spec.md §3), so callers must allocate strictly-increasing
// ids (the compiler's pass 1 does this).
func (g *Graph) AddNode(n node.Node) {
	id := int(n.ID())
	for len(g.nodes) <= id {
		g.nodes = append(g.nodes, nil)
		g.curOutputs = append(g.curOutputs, 0)
		g.prevOutputs = append(g.prevOutputs, 0)
	}
	g.nodes[id] = n
	g.rebuildOrder()
}

// Node returns the node with the given id, or nil if none is registered.
func (g *Graph) Node(id signal.NodeID) node.Node {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// AddBus registers name as pointing at id, per spec.md §4.1's
// add_bus(name, id) contract. A later AddBus call with the same name
// re-points it (rebinding the placeholder the compiler pre-registered).
func (g *Graph) AddBus(name string, id signal.NodeID) {
	g.buses[name] = id
}

// GetBus returns the node id registered under name.
func (g *Graph) GetBus(name string) (signal.NodeID, bool) {
	id, ok := g.buses[name]
	return id, ok
}

// rebuildOrder recomputes the topological order via Kahn's algorithm;
// nodes left over after the queue drains belong to a feedback cycle and
// are appended in stable id order, per spec.md §4.1's "stable id order
// (0..n) over the cyclic subgraph" contract.
func (g *Graph) rebuildOrder() {
	n := len(g.nodes)
	indegree := make([]int, n)
	outgoing := make([][]int, n)

	for id, nd := range g.nodes {
		if nd == nil {
			continue
		}
		for _, s := range nd.Signals() {
			if s.Kind != signal.KindNodeRef {
				continue
			}
			u := int(s.NodeRef)
			if u < 0 || u >= n {
				continue
			}
			outgoing[u] = append(outgoing[u], id)
			indegree[id]++
		}
	}

	queue := make([]int, 0, n)
	for id := 0; id < n; id++ {
		if g.nodes[id] != nil && indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		for _, to := range outgoing[id] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	for id := 0; id < n; id++ {
		if g.nodes[id] != nil && !visited[id] {
			order = append(order, id)
		}
	}

	g.order = make([]signal.NodeID, len(order))
	g.position = make(map[signal.NodeID]int, len(order))
	for i, id := range order {
		g.order[i] = signal.NodeID(id)
		g.position[signal.NodeID(id)] = i
	}
}

// resolveSignal resolves s to a float64 for the node at nodeID reading
// its paramIndex-th Signal. A NodeRef that has not yet been computed this
// tick (its topological position is not before nodeID's) is a feedback
// edge per spec.md §4.1: the evaluator substitutes the upstream node's
// previous-tick output, giving the one-sample delay the spec requires.
func (g *Graph) resolveSignal(s signal.Signal, nodeID signal.NodeID, paramIndex int, tc *node.TickContext) float64 {
	switch s.Kind {
	case signal.KindNodeRef:
		u := s.NodeRef
		if int(u) < 0 || int(u) >= len(g.nodes) {
			return 0
		}
		if g.position[u] < g.position[nodeID] {
			return g.curOutputs[u]
		}
		return g.prevOutputs[u]
	case signal.KindPattern:
		return g.resolvePatternSignal(nodeID, paramIndex, s, tc)
	default:
		return s.Const
	}
}

// resolvePatternSignal queries s.Pattern over the current sample's
// [cyclePos, cyclePos+1/sampleRate) span and holds the latest onset's
// value, caching per (node id, parameter index) exactly as
// node.PatternEval does for a whole-node pattern, generalized here to any
// individual parameter Signal embedding a pattern.
func (g *Graph) resolvePatternSignal(nodeID signal.NodeID, paramIndex int, s signal.Signal, tc *node.TickContext) float64 {
	key := patternCacheKey{NodeID: nodeID, ParamIndex: paramIndex}
	span := spanForTick(tc)
	for _, ev := range s.Pattern.Query(span) {
		if ev.HasOnset() {
			g.patternCache[key] = ev.Value
		}
	}
	return g.patternCache[key]
}

// TransferTimeFrom carries the previous graph's Time Authority state and
// pattern cache forward, per spec.md §4.4's hot-reload contract: oscillator
// phases and delay/reverb tails are untouched (they live in the node
// instances, which a hot reload may choose to keep across compiles), while
// cycle continuity and per-parameter pattern-hold state transfer here.
func (g *Graph) TransferTimeFrom(old *Graph) {
	g.Time.TransferTimeFrom(old.Time)
	for k, v := range old.patternCache {
		g.patternCache[k] = v
	}
}

// EnableWallClock switches the graph's Time Authority to wall-clock mode.
func (g *Graph) EnableWallClock() { g.Time.EnableWallClock() }

// Panic resets time to zero and releases every active voice, per spec.md
// §4.4/§4.6.
func (g *Graph) Panic() {
	g.Time.Panic()
	g.Voices.ReleaseAll()
}

// Hush silences the named output channel without removing its nodes:
// outputValue/stereoValue return 0 for a hushed bus while the rest of the
// graph (including any bus that happens to also be an effect input) keeps
// evaluating normally, per spec.md §4.6's "hush does not stop the graph,
// only the channel's audible output" contract.
func (g *Graph) Hush(channel string) { g.hushed[channel] = true }

// Unhush clears a previous Hush for channel.
func (g *Graph) Unhush(channel string) { delete(g.hushed, channel) }

// HushAll silences every registered output channel.
func (g *Graph) HushAll() {
	for name := range g.buses {
		g.hushed[name] = true
	}
}

// String renders the current topological order, useful for debugging
// compiler output.
func (g *Graph) String() string {
	return fmt.Sprintf("graph{nodes=%d order=%v}", len(g.nodes), g.order)
}
