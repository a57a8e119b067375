// Package rational implements the exact fraction type every solver in this
// module computes with.
//
// A Rational is an immutable value: operations never modify their operands
// and always return a freshly allocated result, so values may be shared
// freely between tableau rows, expressions and results.
package rational

import (
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Rational is an exact, always reduced fraction of arbitrary precision.
// The zero value is the number 0.
type Rational struct {
	r *big.Rat
}

var literal = regexp.MustCompile(`^[+-]?(\d+/\d+|\d+\.\d*|\.\d+|\d+)$`)

// New returns num/den. It panics if den is zero.
func New(num, den int64) Rational {
	if den == 0 {
		panic("rational: division by zero")
	}
	return Rational{r: big.NewRat(num, den)}
}

// FromInt returns n/1.
func FromInt(n int64) Rational {
	return Rational{r: new(big.Rat).SetInt64(n)}
}

// Zero returns 0.
func Zero() Rational { return Rational{} }

// One returns 1.
func One() Rational { return FromInt(1) }

// Parse reads an integer ("-3"), fraction ("3/4") or decimal ("1.25")
// literal.
func Parse(s string) (Rational, error) {
	if !literal.MatchString(s) {
		return Rational{}, errors.Errorf("rational: invalid literal %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		// SetString rejects a zero denominator.
		return Rational{}, errors.Errorf("rational: invalid literal %q", s)
	}
	return Rational{r: r}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Rational {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// FromFloat64 converts f through its shortest decimal representation, so
// 0.1 becomes 1/10 rather than the binary fraction closest to it.
func FromFloat64(f float64) (Rational, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Rational{}, errors.Errorf("rational: cannot represent %v", f)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return Rational{}, errors.Errorf("rational: cannot represent %v", f)
	}
	return Rational{r: r}, nil
}

func (x Rational) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

// Add returns x + y.
func (x Rational) Add(y Rational) Rational {
	return Rational{r: new(big.Rat).Add(x.rat(), y.rat())}
}

// Sub returns x - y.
func (x Rational) Sub(y Rational) Rational {
	return Rational{r: new(big.Rat).Sub(x.rat(), y.rat())}
}

// Mul returns x * y.
func (x Rational) Mul(y Rational) Rational {
	return Rational{r: new(big.Rat).Mul(x.rat(), y.rat())}
}

// Div returns x / y. It panics if y is zero.
func (x Rational) Div(y Rational) Rational {
	if y.IsZero() {
		panic("rational: division by zero")
	}
	return Rational{r: new(big.Rat).Quo(x.rat(), y.rat())}
}

// Neg returns -x.
func (x Rational) Neg() Rational {
	return Rational{r: new(big.Rat).Neg(x.rat())}
}

// Abs returns |x|.
func (x Rational) Abs() Rational {
	return Rational{r: new(big.Rat).Abs(x.rat())}
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Rational) Cmp(y Rational) int {
	return x.rat().Cmp(y.rat())
}

// Sign returns -1, 0 or +1 depending on the sign of x.
func (x Rational) Sign() int {
	if x.r == nil {
		return 0
	}
	return x.r.Sign()
}

func (x Rational) IsZero() bool     { return x.Sign() == 0 }
func (x Rational) IsPositive() bool { return x.Sign() > 0 }
func (x Rational) IsNegative() bool { return x.Sign() < 0 }

// Equal reports whether x and y denote the same number.
func (x Rational) Equal(y Rational) bool { return x.Cmp(y) == 0 }

// Less reports whether x < y.
func (x Rational) Less(y Rational) bool { return x.Cmp(y) < 0 }

// IsInt reports whether the denominator of x is 1.
func (x Rational) IsInt() bool { return x.rat().IsInt() }

// Float64 returns the nearest float64 to x. It is meant for float views of
// exact data, never for further computation.
func (x Rational) Float64() float64 {
	f, _ := x.rat().Float64()
	return f
}

// String formats x as "n" or "n/d".
func (x Rational) String() string {
	return x.rat().RatString()
}
