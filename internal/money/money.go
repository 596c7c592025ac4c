// Package money implements exact rational arithmetic for monetary
// values. Amounts are fractions of arbitrary-precision integers, so
// repeated division (splitting overhead across N people) never loses
// precision. Floating point is only produced at the display boundary
// and never flows back in.
package money

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by Div when the divisor is zero.
var ErrDivisionByZero = errors.New("money: division by zero")

// ParseError reports input that does not match the fraction grammar.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("money: invalid rational number %q", e.Input)
}

// Fraction is a signed rational number, always held in lowest terms
// with a positive denominator. The zero value is 0.
//
// Fractions are immutable; every operation returns a new value.
type Fraction struct {
	r big.Rat
}

// Zero returns the fraction 0.
func Zero() Fraction {
	return Fraction{}
}

// FromInt returns n as a fraction.
func FromInt(n int64) Fraction {
	var f Fraction
	f.r.SetInt64(n)
	return f
}

// FromCents returns n/100.
func FromCents(n int64) Fraction {
	var f Fraction
	f.r.SetFrac64(n, 100)
	return f
}

// grammar accepts an optional sign, then a bare integer, a bare
// fraction N/D, or a space-separated mixed number W N/D. The sign
// applies to the whole value: "-1 1/2" is -3/2.
var grammar = regexp.MustCompile(`^(-)?(?:(\d+)(?: (\d+)/(\d+))?|(\d+)/(\d+))$`)

// Parse reads a fraction in the same grammar produced by String.
func Parse(s string) (Fraction, error) {
	m := grammar.FindStringSubmatch(s)
	if m == nil {
		return Fraction{}, &ParseError{Input: s}
	}

	var f Fraction
	if m[2] != "" {
		whole, ok := new(big.Int).SetString(m[2], 10)
		if !ok {
			return Fraction{}, &ParseError{Input: s}
		}
		f.r.SetInt(whole)
		if m[3] != "" {
			frac, err := ratFromParts(m[3], m[4])
			if err != nil {
				return Fraction{}, &ParseError{Input: s}
			}
			f.r.Add(&f.r, frac)
		}
	} else {
		frac, err := ratFromParts(m[5], m[6])
		if err != nil {
			return Fraction{}, &ParseError{Input: s}
		}
		f.r.Set(frac)
	}

	if m[1] == "-" {
		f.r.Neg(&f.r)
	}
	return f, nil
}

func ratFromParts(num, den string) (*big.Rat, error) {
	n, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return nil, fmt.Errorf("bad numerator %q", num)
	}
	d, ok := new(big.Int).SetString(den, 10)
	if !ok {
		return nil, fmt.Errorf("bad denominator %q", den)
	}
	if d.Sign() == 0 {
		return nil, fmt.Errorf("zero denominator")
	}
	return new(big.Rat).SetFrac(n, d), nil
}

// String renders the fraction in the grammar accepted by Parse:
// "W" when the denominator is 1, "N/D" when the absolute value is
// below one, and "W N/D" otherwise, with W truncated toward zero and
// a single leading sign.
func (f Fraction) String() string {
	num := f.r.Num()
	den := f.r.Denom()

	if den.IsInt64() && den.Int64() == 1 {
		return num.String()
	}

	whole := new(big.Int)
	rem := new(big.Int)
	whole.QuoRem(num, den, rem)

	if whole.Sign() == 0 {
		return fmt.Sprintf("%s/%s", num.String(), den.String())
	}
	rem.Abs(rem)
	return fmt.Sprintf("%s %s/%s", whole.String(), rem.String(), den.String())
}

// Add returns f + g.
func (f Fraction) Add(g Fraction) Fraction {
	var out Fraction
	out.r.Add(&f.r, &g.r)
	return out
}

// Sub returns f - g.
func (f Fraction) Sub(g Fraction) Fraction {
	var out Fraction
	out.r.Sub(&f.r, &g.r)
	return out
}

// Div returns f / g, or ErrDivisionByZero when g is zero.
func (f Fraction) Div(g Fraction) (Fraction, error) {
	if g.r.Sign() == 0 {
		return Fraction{}, ErrDivisionByZero
	}
	var out Fraction
	out.r.Quo(&f.r, &g.r)
	return out, nil
}

// Cmp returns -1, 0 or +1 depending on whether f is less than, equal
// to or greater than g.
func (f Fraction) Cmp(g Fraction) int {
	return f.r.Cmp(&g.r)
}

// Equal reports whether f and g represent the same value.
func (f Fraction) Equal(g Fraction) bool {
	return f.r.Cmp(&g.r) == 0
}

// Sign returns the sign of f: -1, 0 or +1.
func (f Fraction) Sign() int {
	return f.r.Sign()
}

// Float64 approximates f for display. The result must never be used
// for further money arithmetic.
func (f Fraction) Float64() float64 {
	v, _ := f.r.Float64()
	return v
}

// MarshalText implements encoding.TextMarshaler using the fraction
// grammar. This is the only encoding used at persistence and
// transport boundaries.
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fraction) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseCents reads a decimal amount like "55" or "55.50" into integer
// cents without going through floating point. More than two
// fractional digits are rejected.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &ParseError{Input: s}
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, &ParseError{Input: s}
	}
	return cents.IntPart(), nil
}
