// Package gauss reduces an under-determined system of equalities A x = b to
// reduced row-echelon form and re-expresses it in a chosen number of free
// variables.
//
// The typical pipeline is
//
//	s, _ := gauss.NewSystem(a, b, f)
//	s.Solve()
//	if s.IdentifyBasicColumns(2) {
//		reduced := s.Substitute()
//		...
//	}
//
// or Reduce, which runs all steps at once.
package gauss

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
)

// Basic is a column with a single non-zero entry, located in Row.
type Basic struct {
	Row    int
	Column int
}

// System is the coefficient matrix A (m×n), right-hand side b (m) and
// objective coefficients f (n) of an elimination. It owns copies of all
// three.
type System struct {
	a [][]rational.Rational
	b []rational.Rational
	f []rational.Rational

	rows, cols int

	// pivoted[i] is set once ForwardStep(i) normalized row i on column i.
	pivoted []bool
	basics  []Basic
}

// NewSystem copies a, b and f. It requires fewer equations than variables.
func NewSystem(a [][]rational.Rational, b, f []rational.Rational) (*System, error) {
	if len(a) == 0 {
		return nil, errors.New("gauss: empty coefficient matrix")
	}
	rows, cols := len(a), len(a[0])
	if rows >= cols {
		return nil, errors.Errorf("gauss: system is not under-determined (%d equations, %d variables)", rows, cols)
	}
	if len(b) != rows {
		return nil, errors.Errorf("gauss: mismatch number of equations: len(b)=%d, rows=%d", len(b), rows)
	}
	if len(f) != cols {
		return nil, errors.Errorf("gauss: mismatch number of variables: len(f)=%d, cols=%d", len(f), cols)
	}

	s := &System{
		a:       make([][]rational.Rational, rows),
		b:       make([]rational.Rational, rows),
		f:       make([]rational.Rational, cols),
		rows:    rows,
		cols:    cols,
		pivoted: make([]bool, rows),
	}
	for i, row := range a {
		if len(row) != cols {
			return nil, errors.Errorf("gauss: row %d has %d entries, want %d", i, len(row), cols)
		}
		s.a[i] = append([]rational.Rational(nil), row...)
	}
	copy(s.b, b)
	copy(s.f, f)
	return s, nil
}

// SystemFromProblem takes A and b from the equality constraints of p and f
// from its objective.
func SystemFromProblem(p *model.Problem) (*System, error) {
	cs := p.Constraints()
	a := make([][]rational.Rational, len(cs))
	b := make([]rational.Rational, len(cs))
	for i, c := range cs {
		if c.Relation() != model.EQ {
			return nil, errors.Errorf("gauss: constraint %d (%s) is not an equality", i+1, c)
		}
		a[i] = make([]rational.Rational, p.CountVars())
		for _, j := range c.Expression().Indices() {
			a[i][j] = c.Expression().Coefficient(j)
		}
		b[i] = c.RHS()
	}
	f := make([]rational.Rational, p.CountVars())
	for _, j := range p.Objective().Expression.Indices() {
		f[j] = p.Objective().Expression.Coefficient(j)
	}
	return NewSystem(a, b, f)
}

func (s *System) Dims() (rows, cols int) { return s.rows, s.cols }

// Row returns a copy of row i of A.
func (s *System) Row(i int) []rational.Rational {
	return append([]rational.Rational(nil), s.a[i]...)
}

// RHS returns b[i].
func (s *System) RHS(i int) rational.Rational { return s.b[i] }

// Degenerate returns the rows whose diagonal column had no non-zero pivot
// candidate during the forward pass.
func (s *System) Degenerate() []int {
	var out []int
	for i, ok := range s.pivoted {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

func (s *System) swap(i, j int) {
	s.a[i], s.a[j] = s.a[j], s.a[i]
	s.b[i], s.b[j] = s.b[j], s.b[i]
}

// subtract does row_j -= factor * row_i, rhs included.
func (s *System) subtract(j, i int, factor rational.Rational) {
	for c := range s.a[j] {
		s.a[j][c] = s.a[j][c].Sub(factor.Mul(s.a[i][c]))
	}
	s.b[j] = s.b[j].Sub(factor.Mul(s.b[i]))
}

// ForwardStep makes A[i][i] a pivot of 1 and clears column i below it. A
// zero pivot is replaced by swapping in the first row below with a non-zero
// entry in column i; without one the column is left as is.
func (s *System) ForwardStep(i int) {
	if s.a[i][i].IsZero() {
		for j := i + 1; j < s.rows; j++ {
			if !s.a[j][i].IsZero() {
				s.swap(i, j)
				break
			}
		}
	}
	pivot := s.a[i][i]
	if pivot.IsZero() {
		return
	}
	for c := range s.a[i] {
		s.a[i][c] = s.a[i][c].Div(pivot)
	}
	s.b[i] = s.b[i].Div(pivot)
	s.pivoted[i] = true

	for j := i + 1; j < s.rows; j++ {
		if factor := s.a[j][i]; !factor.IsZero() {
			s.subtract(j, i, factor)
		}
	}
}

// BackwardStep clears column i above row i.
func (s *System) BackwardStep(i int) {
	if !s.pivoted[i] {
		return
	}
	for j := i - 1; j >= 0; j-- {
		if factor := s.a[j][i]; !factor.IsZero() {
			s.subtract(j, i, factor)
		}
	}
}

// Solve runs the forward pass top to bottom, then the backward pass bottom
// to top, leaving A in reduced row-echelon form on the pivoted columns.
func (s *System) Solve() {
	for i := 0; i < s.rows; i++ {
		s.ForwardStep(i)
	}
	for i := s.rows - 1; i >= 0; i-- {
		s.BackwardStep(i)
	}
}

// IdentifyBasicColumns records every column with exactly one non-zero
// entry and reports whether exactly cols-k such columns exist, i.e. whether
// the system leaves k free variables. Two candidates in the same row make
// the system unsuitable as well.
func (s *System) IdentifyBasicColumns(k int) bool {
	s.basics = s.basics[:0]
	seen := make(map[int]bool, s.rows)
	shared := false
	for c := 0; c < s.cols; c++ {
		count, row := 0, -1
		for r := 0; r < s.rows; r++ {
			if !s.a[r][c].IsZero() {
				count++
				row = r
			}
		}
		if count != 1 {
			continue
		}
		if seen[row] {
			shared = true
		}
		seen[row] = true
		s.basics = append(s.basics, Basic{Row: row, Column: c})
	}
	return !shared && len(s.basics) == s.cols-k
}

// Basics returns the columns found by the last IdentifyBasicColumns.
func (s *System) Basics() []Basic {
	return append([]Basic(nil), s.basics...)
}

// Dense returns float views of A and b.
func (s *System) Dense() (a, b *mat.Dense) {
	a = mat.NewDense(s.rows, s.cols, nil)
	b = mat.NewDense(s.rows, 1, nil)
	for i := range s.a {
		for j, v := range s.a[i] {
			a.Set(i, j, v.Float64())
		}
		b.Set(i, 0, s.b[i].Float64())
	}
	return a, b
}
