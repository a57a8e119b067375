package model

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"q.log/ratsimplex/rational"
)

// DefaultMarker is the variable marker used when an expression is rendered
// back into the constraint mini-language.
const DefaultMarker = "x"

// LinearExpression is
//
//	c + a_0 x_0 + a_1 x_1 + ... + a_n x_n
//
// stored as a sorted map from 0-based variable index to coefficient plus a
// constant term. Zero coefficients are never stored.
//
// Expressions are values: no method modifies the receiver.
type LinearExpression struct {
	terms    *treemap.Map
	constant rational.Rational
}

// NewExpression returns the expression Σ coeffs[i] x_i.
func NewExpression(coeffs ...rational.Rational) LinearExpression {
	e := LinearExpression{terms: treemap.NewWithIntComparator()}
	for i, c := range coeffs {
		e.put(i, c)
	}
	return e
}

// Variable returns the expression 1 x_i.
func Variable(i int) LinearExpression {
	return LinearExpression{}.With(i, rational.One())
}

// ConstantExpression returns the expression consisting of c only.
func ConstantExpression(c rational.Rational) LinearExpression {
	return LinearExpression{}.WithConstant(c)
}

// put writes into the receiver's own map. Callers own e.
func (e *LinearExpression) put(i int, c rational.Rational) {
	if e.terms == nil {
		e.terms = treemap.NewWithIntComparator()
	}
	if c.IsZero() {
		e.terms.Remove(i)
		return
	}
	e.terms.Put(i, c)
}

func (e LinearExpression) clone() LinearExpression {
	c := LinearExpression{terms: treemap.NewWithIntComparator(), constant: e.constant}
	if e.terms == nil {
		return c
	}
	it := e.terms.Iterator()
	for it.Next() {
		c.terms.Put(it.Key(), it.Value())
	}
	return c
}

// Coefficient returns the coefficient of x_i, 0 if absent.
func (e LinearExpression) Coefficient(i int) rational.Rational {
	if e.terms == nil {
		return rational.Zero()
	}
	v, found := e.terms.Get(i)
	if !found {
		return rational.Zero()
	}
	return v.(rational.Rational)
}

// Constant returns the constant term.
func (e LinearExpression) Constant() rational.Rational {
	return e.constant
}

// Indices returns the indices with a non-zero coefficient in ascending order.
func (e LinearExpression) Indices() []int {
	if e.terms == nil {
		return nil
	}
	keys := e.terms.Keys()
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.(int)
	}
	return out
}

// Len returns the number of variables with a non-zero coefficient.
func (e LinearExpression) Len() int {
	if e.terms == nil {
		return 0
	}
	return e.terms.Size()
}

// MaxIndex returns the largest index present, or -1 for an expression
// without variables.
func (e LinearExpression) MaxIndex() int {
	if e.terms == nil || e.terms.Empty() {
		return -1
	}
	k, _ := e.terms.Max()
	return k.(int)
}

// With returns a copy of e where x_i has coefficient c.
func (e LinearExpression) With(i int, c rational.Rational) LinearExpression {
	n := e.clone()
	n.put(i, c)
	return n
}

// WithConstant returns a copy of e with constant term c.
func (e LinearExpression) WithConstant(c rational.Rational) LinearExpression {
	n := e.clone()
	n.constant = c
	return n
}

// Without returns a copy of e without x_i.
func (e LinearExpression) Without(i int) LinearExpression {
	n := e.clone()
	n.terms.Remove(i)
	return n
}

func (e LinearExpression) addOrSub(o LinearExpression, add bool) LinearExpression {
	n := e.clone()
	if add {
		n.constant = n.constant.Add(o.constant)
	} else {
		n.constant = n.constant.Sub(o.constant)
	}
	for _, i := range o.Indices() {
		if add {
			n.put(i, n.Coefficient(i).Add(o.Coefficient(i)))
		} else {
			n.put(i, n.Coefficient(i).Sub(o.Coefficient(i)))
		}
	}
	return n
}

// Add returns e + o.
func (e LinearExpression) Add(o LinearExpression) LinearExpression {
	return e.addOrSub(o, true)
}

// Sub returns e - o.
func (e LinearExpression) Sub(o LinearExpression) LinearExpression {
	return e.addOrSub(o, false)
}

// Scale returns s * e.
func (e LinearExpression) Scale(s rational.Rational) LinearExpression {
	n := LinearExpression{terms: treemap.NewWithIntComparator(), constant: e.constant.Mul(s)}
	for _, i := range e.Indices() {
		n.put(i, e.Coefficient(i).Mul(s))
	}
	return n
}

// Substitute replaces x_i in e by sub. If e does not contain x_i, e is
// returned unchanged. sub must not itself contain x_i.
func (e LinearExpression) Substitute(i int, sub LinearExpression) LinearExpression {
	if !sub.Coefficient(i).IsZero() {
		panic("model: cyclic substitution of x_" + strconv.Itoa(i+1))
	}
	c := e.Coefficient(i)
	if c.IsZero() {
		return e
	}
	return e.Without(i).Add(sub.Scale(c))
}

// Evaluate returns the value of e at the given assignment. Variables beyond
// len(values) count as 0.
func (e LinearExpression) Evaluate(values []rational.Rational) rational.Rational {
	sum := e.constant
	for _, i := range e.Indices() {
		if i < len(values) {
			sum = sum.Add(e.Coefficient(i).Mul(values[i]))
		}
	}
	return sum
}

// Equal reports whether e and o have identical terms and constant.
func (e LinearExpression) Equal(o LinearExpression) bool {
	if !e.constant.Equal(o.constant) || e.Len() != o.Len() {
		return false
	}
	for _, i := range e.Indices() {
		if !e.Coefficient(i).Equal(o.Coefficient(i)) {
			return false
		}
	}
	return true
}

// String renders the variable terms in the constraint mini-language, e.g.
// "2x_1 - 1/2x_3". A non-zero constant is appended as a bare number and is
// not parseable back.
func (e LinearExpression) String() string {
	return e.Format(DefaultMarker)
}

// Format is like String with a caller chosen variable marker.
func (e LinearExpression) Format(marker string) string {
	var sb strings.Builder
	for n, i := range e.Indices() {
		c := e.Coefficient(i)
		switch {
		case n == 0 && c.IsNegative():
			sb.WriteString("-")
		case n > 0 && c.IsNegative():
			sb.WriteString(" - ")
		case n > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(c.Abs().String())
		sb.WriteString(marker)
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	if !e.constant.IsZero() {
		switch {
		case sb.Len() == 0:
			sb.WriteString(e.constant.String())
		case e.constant.IsNegative():
			sb.WriteString(" - " + e.constant.Abs().String())
		default:
			sb.WriteString(" + " + e.constant.String())
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}
