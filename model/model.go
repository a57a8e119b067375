package model

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/ratsimplex/rational"
)

// Problem is a linear program over countVars non-negative variables.
type Problem struct {
	objective   Objective
	constraints []Constraint

	NumRows int
	NumCols int
}

// NewProblem validates the objective and constraints against countVars. A
// countVars of 0 is inferred from the largest variable index in use.
func NewProblem(countVars int, objective Objective, constraints ...Constraint) (*Problem, error) {
	if countVars < 0 {
		return nil, errors.Errorf("negative variable count %d", countVars)
	}
	maxIndex := objective.Expression.MaxIndex()
	for _, c := range constraints {
		if i := c.Expression().MaxIndex(); i > maxIndex {
			maxIndex = i
		}
	}
	if countVars == 0 {
		countVars = maxIndex + 1
	}
	if countVars == 0 {
		return nil, errors.New("problem has no variables")
	}
	if maxIndex >= countVars {
		return nil, errors.Errorf("variable x_%d exceeds the declared count %d", maxIndex+1, countVars)
	}

	cs := make([]Constraint, len(constraints))
	copy(cs, constraints)
	return &Problem{
		objective:   objective,
		constraints: cs,
		NumRows:     len(cs),
		NumCols:     countVars,
	}, nil
}

// ParseProblem parses the objective and every constraint line. Errors from
// the parser are returned unwrapped as *ParseError.
func ParseProblem(countVars int, direction Direction, objective string, constraints []string) (*Problem, error) {
	expr, err := ParseExpressionN(objective, countVars)
	if err != nil {
		return nil, err
	}
	cs := make([]Constraint, 0, len(constraints))
	for _, line := range constraints {
		c, err := ParseConstraintN(line, countVars)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return NewProblem(countVars, Objective{Direction: direction, Expression: expr}, cs...)
}

func (m *Problem) CountVars() int       { return m.NumCols }
func (m *Problem) Objective() Objective { return m.objective }

// Constraints returns a copy of the constraint list.
func (m *Problem) Constraints() []Constraint {
	cs := make([]Constraint, len(m.constraints))
	copy(cs, m.constraints)
	return cs
}

// AddRow appends a constraint.
func (m *Problem) AddRow(c Constraint) error {
	if i := c.Expression().MaxIndex(); i >= m.NumCols {
		return errors.Errorf("variable x_%d exceeds the declared count %d", i+1, m.NumCols)
	}
	m.constraints = append(m.constraints, c)
	m.NumRows++
	return nil
}

// Normalized returns a copy where every constraint has a non-negative
// right-hand side.
func (m *Problem) Normalized() *Problem {
	cs := make([]Constraint, len(m.constraints))
	for r, c := range m.constraints {
		cs[r] = c.Normalize()
	}
	return &Problem{objective: m.objective, constraints: cs, NumRows: m.NumRows, NumCols: m.NumCols}
}

// Feasible reports whether values is non-negative and satisfies every
// constraint exactly.
func (m *Problem) Feasible(values []rational.Rational) bool {
	for _, v := range values {
		if v.IsNegative() {
			return false
		}
	}
	for _, c := range m.constraints {
		if !c.Satisfied(values) {
			return false
		}
	}
	return true
}

// Dense returns float views of the objective row c (1×n), the constraint
// matrix A (m×n) and the right-hand sides B (m×1).
func (m *Problem) Dense() (c, a, b *mat.Dense) {
	c = mat.NewDense(1, m.NumCols, nil)
	for _, j := range m.objective.Expression.Indices() {
		c.Set(0, j, m.objective.Expression.Coefficient(j).Float64())
	}
	if m.NumRows == 0 {
		return c, nil, nil
	}
	a = mat.NewDense(m.NumRows, m.NumCols, nil)
	b = mat.NewDense(m.NumRows, 1, nil)
	for r, row := range m.constraints {
		for _, j := range row.Expression().Indices() {
			a.Set(r, j, row.Expression().Coefficient(j).Float64())
		}
		b.Set(r, 0, row.RHS().Float64())
	}
	return c, a, b
}

// Fprint writes the objective and constraints the way they are read, then
// the float views of c, A and b.
func (m *Problem) Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s\n", m.objective)
	for _, c := range m.constraints {
		fmt.Fprintf(w, "    %s\n", c)
	}
	c, a, b := m.Dense()
	fmt.Fprintf(w, "c = %v\n", mat.Formatted(c, mat.Prefix("    "), mat.Squeeze()))
	if a != nil {
		fmt.Fprintf(w, "A = %v\n", mat.Formatted(a, mat.Prefix("    "), mat.Squeeze()))
		fmt.Fprintf(w, "b = %v\n", mat.Formatted(b, mat.Prefix("    "), mat.Squeeze()))
	}
	fmt.Fprintln(w, m.NumRows, m.NumCols)
}
