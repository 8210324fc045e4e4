// Package pattern implements lazy, Tidal-style pattern queries over
// rational time. A Pattern is a function from a query span to a list of
// events; combinators build new Patterns from existing ones without ever
// re-running a query eagerly, so that event counts and timing match the
// combinator semantics documented in SPEC_FULL.md §5.2 exactly.
package pattern

import (
	"github.com/phonon-live/phonon/rational"
)

// TimeSpan is a half-open interval [Begin, End) of cycle time.
type TimeSpan struct {
	Begin rational.Rational
	End   rational.Rational
}

// NewSpan builds a TimeSpan.
func NewSpan(begin, end rational.Rational) TimeSpan {
	return TimeSpan{Begin: begin, End: end}
}

// Intersect returns the overlap of s and o, and whether they overlap at all.
// Two spans touching at a single point (zero-width overlap) are reported as
// non-overlapping unless both spans themselves have zero width at that
// point, matching Tidal's half-open convention.
func (s TimeSpan) Intersect(o TimeSpan) (TimeSpan, bool) {
	begin := rational.Max(s.Begin, o.Begin)
	end := rational.Min(s.End, o.End)
	if begin.Less(end) {
		return TimeSpan{Begin: begin, End: end}, true
	}
	if begin.Equal(end) && s.Begin.Equal(s.End) && o.Begin.LessEq(begin) && begin.LessEq(o.End) {
		return TimeSpan{Begin: begin, End: end}, true
	}
	return TimeSpan{}, false
}

// CycleArcs splits s into one TimeSpan per cycle it touches (TidalCycles'
// "spanCycles"), needed because queries like cat/slowcat assign a different
// sub-pattern per cycle.
func (s TimeSpan) CycleArcs() []TimeSpan {
	if !s.Begin.Less(s.End) {
		return []TimeSpan{s}
	}
	var arcs []TimeSpan
	begin := s.Begin
	for begin.Less(s.End) {
		nextSam := rational.FromInt(begin.Floor() + 1)
		end := rational.Min(nextSam, s.End)
		arcs = append(arcs, TimeSpan{Begin: begin, End: end})
		begin = end
	}
	return arcs
}

// WithTime maps f over both endpoints, used by fast/slow/rev to rescale time.
func (s TimeSpan) WithTime(f func(rational.Rational) rational.Rational) TimeSpan {
	return TimeSpan{Begin: f(s.Begin), End: f(s.End)}
}

// Event carries a pattern datum: its logical extent (Whole, absent for
// fragments produced by splitting across a cycle boundary), the portion
// that intersects the query (Part), and the value.
type Event[T any] struct {
	Whole *TimeSpan
	Part  TimeSpan
	Value T
}

// HasOnset reports whether the event's Part begins where its Whole begins,
// i.e. this query fragment carries the actual trigger instant rather than
// just a continuation of an event that started in a prior query.
func (e Event[T]) HasOnset() bool {
	return e.Whole != nil && e.Whole.Begin.Equal(e.Part.Begin)
}

// WithValue returns a copy of e with Value replaced.
func (e Event[T]) WithValue(v T) Event[T] {
	e.Value = v
	return e
}

// Query is the act of evaluating a Pattern over a TimeSpan.
type Query[T any] func(span TimeSpan) []Event[T]

// Pattern is a lazy function from TimeSpan to a list of Events, built once
// at construction time (never rebuilt per query) together with its
// combinators, per SPEC_FULL.md §5.2.
type Pattern[T any] struct {
	query Query[T]
}

// New wraps a raw query function as a Pattern.
func New[T any](q Query[T]) Pattern[T] {
	return Pattern[T]{query: q}
}

// Silence is the empty pattern: it produces no events for any span.
func Silence[T any]() Pattern[T] {
	return New[T](func(TimeSpan) []Event[T] { return nil })
}

// Pure returns a pattern producing one event with Value v per cycle,
// spanning the whole cycle (Tidal's "pure").
func Pure[T any](v T) Pattern[T] {
	return New[T](func(span TimeSpan) []Event[T] {
		var events []Event[T]
		for _, arc := range span.CycleArcs() {
			whole := TimeSpan{Begin: arc.Begin.Sam(), End: rational.FromInt(arc.Begin.Floor() + 1)}
			events = append(events, Event[T]{Whole: &whole, Part: arc, Value: v})
		}
		return events
	})
}

// Query evaluates the pattern over span. It is pure for fixed inputs:
// repeated calls with an equal span return an equal event set, since the
// underlying query closures close over immutable data only.
func (p Pattern[T]) Query(span TimeSpan) []Event[T] {
	if p.query == nil {
		return nil
	}
	return p.query(span)
}
