package simplex

import (
	"fmt"
	"strings"

	"q.log/ratsimplex/rational"
)

// Pivot records one base change: Column entered the basis in Row, whose
// entry in that column was Element.
type Pivot struct {
	Phase   int
	Row     int
	Column  int
	Element rational.Rational
}

func (p Pivot) String() string {
	return fmt.Sprintf("phase %d: row %d, column %d, element %s", p.Phase, p.Row, p.Column, p.Element)
}

// Result is an optimal vertex of a solved problem.
type Result struct {
	// Values[i] is the value of x_(i+1).
	Values []rational.Rational
	// Value is the objective at Values.
	Value rational.Rational

	Pivots     []Pivot
	Iterations int
}

// Var returns the value of x_i, 1-based. Unknown indices are 0.
func (r *Result) Var(i int) rational.Rational {
	if i < 1 || i > len(r.Values) {
		return rational.Zero()
	}
	return r.Values[i-1]
}

func (r *Result) String() string {
	var sb strings.Builder
	for i, v := range r.Values {
		fmt.Fprintf(&sb, "x_%d = %s\n", i+1, v)
	}
	fmt.Fprintf(&sb, "Z = %s", r.Value)
	return sb.String()
}
