// Package rational implements exact 64-bit rational arithmetic used for
// pattern time spans and cycle positions, avoiding the drift that
// accumulates when cycle math is done in floating point.
package rational

import "fmt"

// Rational is a fraction Num/Den kept in lowest terms with Den > 0.
type Rational struct {
	Num int64
	Den int64
}

// Zero is the additive identity.
var Zero = Rational{Num: 0, Den: 1}

// One is the multiplicative identity.
var One = Rational{Num: 1, Den: 1}

// New returns num/den reduced to lowest terms. Panics if den == 0.
func New(num, den int64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g == 0 {
		g = 1
	}
	return Rational{Num: num / g, Den: den / g}
}

// FromInt returns the rational n/1.
func FromInt(n int64) Rational { return Rational{Num: n, Den: 1} }

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Add returns r+o.
func (r Rational) Add(o Rational) Rational {
	return New(r.Num*o.Den+o.Num*r.Den, r.Den*o.Den)
}

// Sub returns r-o.
func (r Rational) Sub(o Rational) Rational {
	return New(r.Num*o.Den-o.Num*r.Den, r.Den*o.Den)
}

// Mul returns r*o.
func (r Rational) Mul(o Rational) Rational {
	return New(r.Num*o.Num, r.Den*o.Den)
}

// Div returns r/o. Panics if o is zero.
func (r Rational) Div(o Rational) Rational {
	if o.Num == 0 {
		panic("rational: division by zero")
	}
	return New(r.Num*o.Den, r.Den*o.Num)
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{Num: -r.Num, Den: r.Den}
}

// Cmp returns -1, 0, or 1 as r is less than, equal to, or greater than o.
func (r Rational) Cmp(o Rational) int {
	lhs := r.Num * o.Den
	rhs := o.Num * r.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Less reports whether r < o.
func (r Rational) Less(o Rational) bool { return r.Cmp(o) < 0 }

// LessEq reports whether r <= o.
func (r Rational) LessEq(o Rational) bool { return r.Cmp(o) <= 0 }

// Equal reports whether r == o.
func (r Rational) Equal(o Rational) bool { return r.Cmp(o) == 0 }

// Float64 converts to a float64 approximation, for DSP boundaries only.
func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

// FromFloat64 approximates f as a rational with the given denominator,
// useful at the audio/time boundary where sample counts are integral.
func FromFloat64(f float64, den int64) Rational {
	return New(int64(f*float64(den)), den)
}

// Floor returns the greatest integer <= r.
func (r Rational) Floor() int64 {
	if r.Num >= 0 || r.Num%r.Den == 0 {
		return r.Num / r.Den
	}
	return r.Num/r.Den - 1
}

// Sam returns the start-of-cycle rational for r (i.e. floor(r) as a
// Rational), the TidalCycles "sam" of a time point.
func (r Rational) Sam() Rational {
	return FromInt(r.Floor())
}

// CyclePos returns r minus its Sam, i.e. the fractional position within
// the cycle, in [0, 1).
func (r Rational) CyclePos() Rational {
	return r.Sub(r.Sam())
}

// Min returns the smaller of a and b.
func Min(a, b Rational) Rational {
	if a.Less(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Rational) Rational {
	if a.Less(b) {
		return b
	}
	return a
}

func (r Rational) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
