// Package timeauthority implements the single source of cycle position
// for a Graph, per spec.md §4.4: sample-anchored (offline, deterministic)
// or wall-clock-anchored (live) modes, with hot-reload continuity and
// panic-reset semantics.
package timeauthority

import (
	"time"

	"github.com/phonon-live/phonon/rational"
)

// Authority tracks session_start, cycle_offset, cps, wall_clock_mode, and
// sample_count exactly as named in spec.md §3's Time Authority data model.
type Authority struct {
	sessionStart  time.Time
	cycleOffset   rational.Rational
	cps           rational.Rational
	wallClockMode bool
	sampleCount   int64
	sampleRate    float64

	// now is overridden in tests to avoid a hidden dependency on the
	// wall clock; in production it is time.Now.
	now func() time.Time
}

// New creates an Authority in sample-anchored mode at the given cps
// (cycles per second) and sample rate.
func New(cps rational.Rational, sampleRate float64) *Authority {
	return &Authority{
		cycleOffset: rational.Zero,
		cps:         cps,
		sampleRate:  sampleRate,
		now:         time.Now,
	}
}

// EnableWallClock switches the Authority to wall-clock-anchored mode,
// per spec.md §4.1's enable_wall_clock() contract. session_start is set
// to now so cycle position continues from the current cycle_offset
// rather than jumping.
func (a *Authority) EnableWallClock() {
	a.wallClockMode = true
	a.sessionStart = a.now()
}

// SetCPS sets cycles per second (tempo).
func (a *Authority) SetCPS(cps rational.Rational) { a.cps = cps }

// CPS returns the current cycles-per-second.
func (a *Authority) CPS() rational.Rational { return a.cps }

// WallClockMode reports whether the authority is in wall-clock mode.
func (a *Authority) WallClockMode() bool { return a.wallClockMode }

// AdvanceSample advances the sample-anchored counter by one sample. It is
// a no-op in wall-clock mode (which derives position from now() instead),
// but is still called unconditionally so switching modes never drops a
// discontinuity in sample_count.
func (a *Authority) AdvanceSample() {
	a.sampleCount++
}

// PeekCyclePosition returns the cycle position sampleOffset samples ahead
// of the current sample-anchored count, without mutating state. The
// block render path uses this to precompute an entire block's cycle
// positions before advancing, since both evaluation paths (spec.md §4.1)
// must read the same Time Authority sequence.
func (a *Authority) PeekCyclePosition(sampleOffset int64) rational.Rational {
	if a.wallClockMode {
		elapsed := a.now().Sub(a.sessionStart).Seconds() + float64(sampleOffset)/a.sampleRate
		return rational.FromFloat64(elapsed, 1<<20).Mul(a.cps).Add(a.cycleOffset)
	}
	elapsedSec := rational.New(a.sampleCount+sampleOffset, 1).Div(rational.New(int64(a.sampleRate), 1))
	return elapsedSec.Mul(a.cps).Add(a.cycleOffset)
}

// CyclePosition returns the current cycle position, per spec.md §4.4's
// two formulas:
//
//	sample-anchored:    cycle_position = sample_count/sample_rate * cps + cycle_offset
//	wall-clock-anchored: cycle_position = (now - session_start).seconds * cps + cycle_offset
func (a *Authority) CyclePosition() rational.Rational {
	if a.wallClockMode {
		elapsed := a.now().Sub(a.sessionStart).Seconds()
		return rational.FromFloat64(elapsed, 1<<20).Mul(a.cps).Add(a.cycleOffset)
	}
	elapsedSec := rational.New(a.sampleCount, 1).Div(rational.New(int64(a.sampleRate), 1))
	return elapsedSec.Mul(a.cps).Add(a.cycleOffset)
}

// TransferTimeFrom copies session_start, cycle_offset, cps, and
// wall_clock_mode from a previous Authority so a hot-reloaded Graph's
// cycle position is continuous, per spec.md §4.4's hot-reload contract.
// sample_count is NOT copied: the new graph starts counting its own
// samples, with the continuity carried entirely by cycle_offset being
// re-derived from the old authority's current position.
func (a *Authority) TransferTimeFrom(old *Authority) {
	a.wallClockMode = old.wallClockMode
	a.sessionStart = old.sessionStart
	a.cps = old.cps
	if old.wallClockMode {
		a.cycleOffset = old.cycleOffset
	} else {
		a.cycleOffset = old.CyclePosition()
		a.sampleCount = 0
	}
}

// Panic resets time to zero, per spec.md §4.4's "on explicit panic: time
// is reset" contract. Voice release is the caller's responsibility (the
// Graph also holds the voice.Manager).
func (a *Authority) Panic() {
	a.cycleOffset = rational.Zero
	a.sampleCount = 0
	a.sessionStart = a.now()
}
