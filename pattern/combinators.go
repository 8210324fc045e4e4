package pattern

import (
	"hash/fnv"
	"math"

	"github.com/phonon-live/phonon/rational"
)

// Fast returns a pattern that plays p at k times normal speed: a query for
// span is rescaled to span*k before querying p, and the resulting event
// times are divided by k. Per the Open Question resolution in DESIGN.md,
// this only densifies events and never touches the global clock.
func Fast[T any](p Pattern[T], k rational.Rational) Pattern[T] {
	if k.Num == 0 {
		return Silence[T]()
	}
	return New[T](func(span TimeSpan) []Event[T] {
		scaled := span.WithTime(func(t rational.Rational) rational.Rational { return t.Mul(k) })
		events := p.Query(scaled)
		out := make([]Event[T], len(events))
		unscale := func(t rational.Rational) rational.Rational { return t.Div(k) }
		for i, e := range events {
			part := e.Part.WithTime(unscale)
			var whole *TimeSpan
			if e.Whole != nil {
				w := e.Whole.WithTime(unscale)
				whole = &w
			}
			out[i] = Event[T]{Whole: whole, Part: part, Value: e.Value}
		}
		return out
	})
}

// Slow returns a pattern that plays p at 1/k speed; it is Fast's inverse.
func Slow[T any](p Pattern[T], k rational.Rational) Pattern[T] {
	if k.Num == 0 {
		return Silence[T]()
	}
	return Fast(p, rational.New(k.Den, k.Num))
}

// Rev reflects each cycle's events about its midpoint.
func Rev[T any](p Pattern[T]) Pattern[T] {
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		for _, arc := range span.CycleArcs() {
			sam := arc.Begin.Sam()
			next := sam.Add(rational.One)
			reflect := func(t rational.Rational) rational.Rational {
				return sam.Add(next.Sub(t))
			}
			reflected := TimeSpan{Begin: reflect(arc.End), End: reflect(arc.Begin)}
			events := p.Query(reflected)
			for _, e := range events {
				part := TimeSpan{Begin: reflect(e.Part.End), End: reflect(e.Part.Begin)}
				var whole *TimeSpan
				if e.Whole != nil {
					w := TimeSpan{Begin: reflect(e.Whole.End), End: reflect(e.Whole.Begin)}
					whole = &w
				}
				out = append(out, Event[T]{Whole: whole, Part: part, Value: e.Value})
			}
		}
		return out
	})
}

// Every applies f to p on cycles where cycle_number mod n == 0, and plays p
// unmodified on every other cycle.
func Every[T any](p Pattern[T], n int64, f func(Pattern[T]) Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	transformed := f(p)
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		for _, arc := range span.CycleArcs() {
			cycle := arc.Begin.Floor()
			mod := cycle % n
			if mod < 0 {
				mod += n
			}
			if mod == 0 {
				out = append(out, transformed.Query(arc)...)
			} else {
				out = append(out, p.Query(arc)...)
			}
		}
		return out
	})
}

// Stack plays all patterns simultaneously; the union of their queries is
// returned verbatim (no event-count normalization — only audio mixing
// normalizes by 1/n, per spec.md §4.2).
func Stack[T any](ps ...Pattern[T]) Pattern[T] {
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		for _, p := range ps {
			out = append(out, p.Query(span)...)
		}
		return out
	})
}

// Cat splits each cycle into len(ps) equal arcs, arc i playing ps[i]
// compressed to fit. This is TidalCycles' "cat"/"slowAppend" family member
// that keeps one full cycle of each child visible, sped up to its slot.
func Cat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		for _, arc := range span.CycleArcs() {
			cycle := arc.Begin.Floor()
			nrat := rational.FromInt(n)
			// Which slot does this cycle-relative position fall into, and
			// what sub-cycle of that child pattern are we in.
			cyclePos := arc.Begin.Sub(rational.FromInt(cycle))
			slot := cyclePos.Mul(nrat).Floor()
			if slot >= n {
				slot = n - 1
			}
			if slot < 0 {
				slot = 0
			}
			idx := ((slot % n) + n) % n
			child := ps[idx]

			// Map the real-time arc into the child's own cycle-local time:
			// child cycle = cycle*n + slot, scaled by n so one slot = one
			// full child cycle.
			toChild := func(t rational.Rational) rational.Rational {
				return t.Sub(rational.FromInt(cycle)).Mul(nrat).Sub(rational.FromInt(slot)).Add(rational.FromInt(cycle*n + slot))
			}
			fromChild := func(t rational.Rational) rational.Rational {
				return t.Sub(rational.FromInt(cycle*n + slot)).Add(rational.FromInt(slot)).Div(nrat).Add(rational.FromInt(cycle))
			}
			childSpan := arc.WithTime(toChild)
			events := child.Query(childSpan)
			for _, e := range events {
				part := e.Part.WithTime(fromChild)
				var whole *TimeSpan
				if e.Whole != nil {
					w := e.Whole.WithTime(fromChild)
					whole = &w
				}
				out = append(out, Event[T]{Whole: whole, Part: part, Value: e.Value})
			}
		}
		return out
	})
}

// SlowCat plays one whole pattern per consecutive cycle: cycle c plays
// ps[c mod len(ps)] at normal speed (not compressed into a slot, unlike
// Cat).
func SlowCat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		for _, arc := range span.CycleArcs() {
			cycle := arc.Begin.Floor()
			idx := ((cycle % n) + n) % n
			out = append(out, ps[idx].Query(arc)...)
		}
		return out
	})
}

// Euclid distributes pulses onsets over steps using the Bjorklund
// algorithm, rotated by rotation steps, and plays v on each onset step
// within the cycle. pulses > steps clamps to steps.
func Euclid[T any](v T, pulses, steps, rotation int) Pattern[T] {
	if steps <= 0 {
		return Silence[T]()
	}
	if pulses > steps {
		pulses = steps
	}
	if pulses < 0 {
		pulses = 0
	}
	onsets := bjorklund(pulses, steps)
	if rotation != 0 {
		rotation = ((rotation % steps) + steps) % steps
		onsets = append(onsets[rotation:], onsets[:rotation]...)
	}
	return New[T](func(span TimeSpan) []Event[T] {
		var out []Event[T]
		stepsR := rational.FromInt(int64(steps))
		for _, arc := range span.CycleArcs() {
			cycle := arc.Begin.Floor()
			base := rational.FromInt(cycle)
			for i, on := range onsets {
				if !on {
					continue
				}
				begin := base.Add(rational.FromInt(int64(i)).Div(stepsR))
				end := base.Add(rational.FromInt(int64(i+1)).Div(stepsR))
				whole := TimeSpan{Begin: begin, End: end}
				part, ok := whole.Intersect(arc)
				if !ok {
					continue
				}
				out = append(out, Event[T]{Whole: &whole, Part: part, Value: v})
			}
		}
		return out
	})
}

// bjorklund computes the standard Euclidean rhythm distribution of k onsets
// across n steps using Bjorklund's algorithm, with a deterministic
// left-to-right tie-break at every merge step.
func bjorklund(k, n int) []bool {
	if n == 0 {
		return nil
	}
	if k <= 0 {
		return make([]bool, n)
	}
	if k >= n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}

	groups := make([][]bool, n)
	for i := 0; i < n; i++ {
		if i < k {
			groups[i] = []bool{true}
		} else {
			groups[i] = []bool{false}
		}
	}
	head := groups[:k]
	tail := groups[k:]

	for len(tail) > 1 {
		pairs := len(head)
		if len(tail) < pairs {
			pairs = len(tail)
		}
		var newHead [][]bool
		for i := 0; i < pairs; i++ {
			newHead = append(newHead, append(append([]bool{}, head[i]...), tail[i]...))
		}
		var remainder [][]bool
		if pairs < len(head) {
			remainder = append(remainder, head[pairs:]...)
		}
		if pairs < len(tail) {
			remainder = append(remainder, tail[pairs:]...)
		}
		head = newHead
		tail = remainder
		if len(tail) <= 1 {
			break
		}
	}

	var out []bool
	for _, g := range head {
		out = append(out, g...)
	}
	for _, g := range tail {
		out = append(out, g...)
	}
	return out
}

// DegradeBy deterministically drops events whose hash(event index, cycle)
// falls below probability p (in [0,1]); p=0 drops nothing, p=1 drops
// everything.
func DegradeBy[T any](src Pattern[T], p float64) Pattern[T] {
	return New[T](func(span TimeSpan) []Event[T] {
		events := src.Query(span)
		var out []Event[T]
		for i, e := range events {
			cycle := e.Part.Begin.Floor()
			h := hashEventCycle(i, cycle)
			threshold := uint64(p * float64(1<<32))
			if h < threshold {
				continue
			}
			out = append(out, e)
		}
		return out
	})
}

func hashEventCycle(eventID int, cycle int64) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	putInt(buf[0:8], int64(eventID))
	putInt(buf[8:16], cycle)
	_, _ = h.Write(buf[:])
	return h.Sum64() & 0xFFFFFFFF
}

func putInt(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Chop splits each event in src into n evenly-spaced slices, each carrying
// the same value (the node layer may interpret these as begin/end offsets
// into a sample buffer).
func Chop[T any](src Pattern[T], n int) Pattern[T] {
	if n <= 1 {
		return src
	}
	return New[T](func(span TimeSpan) []Event[T] {
		events := src.Query(span)
		var out []Event[T]
		nr := rational.FromInt(int64(n))
		for _, e := range events {
			whole := e.Part
			if e.Whole != nil {
				whole = *e.Whole
			}
			dur := whole.End.Sub(whole.Begin).Div(nr)
			for i := 0; i < n; i++ {
				sliceBegin := whole.Begin.Add(dur.Mul(rational.FromInt(int64(i))))
				sliceEnd := whole.Begin.Add(dur.Mul(rational.FromInt(int64(i + 1))))
				sliceWhole := TimeSpan{Begin: sliceBegin, End: sliceEnd}
				part, ok := sliceWhole.Intersect(e.Part)
				if !ok {
					continue
				}
				out = append(out, Event[T]{Whole: &sliceWhole, Part: part, Value: e.Value})
			}
		}
		return out
	})
}

// Map lifts a pointwise function over pattern values (the "arithmetic
// combinators lift pointwise" rule of spec.md §4.2).
func Map[A, B any](p Pattern[A], f func(A) B) Pattern[B] {
	return New[B](func(span TimeSpan) []Event[B] {
		src := p.Query(span)
		out := make([]Event[B], len(src))
		for i, e := range src {
			out[i] = Event[B]{Whole: e.Whole, Part: e.Part, Value: f(e.Value)}
		}
		return out
	})
}

// Liftf32Binary combines two float32-valued patterns pointwise by
// intersecting their active spans at query time (used to lower the AST's
// BinaryOp over two pattern-valued Signals).
func Liftf32Binary(a, b Pattern[float64], op func(x, y float64) float64) Pattern[float64] {
	return New[float64](func(span TimeSpan) []Event[float64] {
		aEvents := a.Query(span)
		bEvents := b.Query(span)
		var out []Event[float64]
		for _, ea := range aEvents {
			for _, eb := range bEvents {
				part, ok := ea.Part.Intersect(eb.Part)
				if !ok {
					continue
				}
				out = append(out, Event[float64]{Part: part, Value: op(ea.Value, eb.Value)})
			}
		}
		return out
	})
}

// RotL left-rotates the pattern by a fraction of a cycle t (Tidal's "<~").
func RotL[T any](p Pattern[T], t rational.Rational) Pattern[T] {
	return New[T](func(span TimeSpan) []Event[T] {
		shifted := span.WithTime(func(x rational.Rational) rational.Rational { return x.Add(t) })
		events := p.Query(shifted)
		back := func(x rational.Rational) rational.Rational { return x.Sub(t) }
		out := make([]Event[T], len(events))
		for i, e := range events {
			part := e.Part.WithTime(back)
			var whole *TimeSpan
			if e.Whole != nil {
				w := e.Whole.WithTime(back)
				whole = &w
			}
			out[i] = Event[T]{Whole: whole, Part: part, Value: e.Value}
		}
		return out
	})
}

// RotR right-rotates the pattern (Tidal's "~>"), the inverse of RotL.
func RotR[T any](p Pattern[T], t rational.Rational) Pattern[T] {
	return RotL(p, t.Neg())
}

// clampUnit clamps p to [0,1], guarding against NaN inputs to DegradeBy.
func clampUnit(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
