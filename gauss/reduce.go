package gauss

import (
	"github.com/pkg/errors"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
)

// BasicVariable is x_Index = Expression, where Expression only contains
// free variables.
type BasicVariable struct {
	Index      int
	Expression model.LinearExpression
}

// ReducedProblem is a system re-expressed in its free variables.
type ReducedProblem struct {
	Basics []BasicVariable

	// Inequalities keep every basic variable non-negative.
	Inequalities []model.Constraint

	// Objective is the original objective over free variables only; its
	// constant term carries the contribution of the basic variables.
	Objective model.LinearExpression

	// Free holds the original indices of the free variables, ascending.
	Free []int

	countVars int
}

// Substitute builds the affine expression of every basic variable found by
// IdentifyBasicColumns, the inequality that keeps it non-negative, and the
// objective with all basic variables substituted away.
func (s *System) Substitute() *ReducedProblem {
	rp := &ReducedProblem{countVars: s.cols}
	exprs := make(map[int]model.LinearExpression, len(s.basics))

	for _, basic := range s.basics {
		entry := s.a[basic.Row][basic.Column]
		rhs := s.b[basic.Row].Div(entry)

		expr := model.ConstantExpression(rhs)
		lhs := model.NewExpression()
		for c, v := range s.a[basic.Row] {
			if c == basic.Column || v.IsZero() {
				continue
			}
			coeff := v.Div(entry)
			expr = expr.With(c, coeff.Neg())
			lhs = lhs.With(c, coeff)
		}

		exprs[basic.Column] = expr
		rp.Basics = append(rp.Basics, BasicVariable{Index: basic.Column, Expression: expr})
		rp.Inequalities = append(rp.Inequalities, model.NewConstraint(lhs, model.LE, rhs))
	}

	objective := model.NewExpression()
	for k, coeff := range s.f {
		expr, ok := exprs[k]
		if !ok {
			expr = model.Variable(k)
			rp.Free = append(rp.Free, k)
		}
		objective = objective.Add(expr.Scale(coeff))
	}
	rp.Objective = objective
	return rp
}

// Reduce runs the elimination, identifies basic columns for k free
// variables and substitutes them. ok is false when the system does not
// reduce to exactly k free variables; the returned problem is nil then.
func Reduce(a [][]rational.Rational, b, f []rational.Rational, k int) (rp *ReducedProblem, ok bool, err error) {
	s, err := NewSystem(a, b, f)
	if err != nil {
		return nil, false, err
	}
	if k < 0 || k >= s.cols {
		return nil, false, errors.Errorf("gauss: cannot keep %d free variables out of %d", k, s.cols)
	}
	s.Solve()
	if !s.IdentifyBasicColumns(k) {
		return nil, false, nil
	}
	return s.Substitute(), true, nil
}

// index maps an original variable index to its position among the free
// variables.
func (rp *ReducedProblem) index() map[int]int {
	m := make(map[int]int, len(rp.Free))
	for p, i := range rp.Free {
		m[i] = p
	}
	return m
}

func remap(e model.LinearExpression, to map[int]int) (model.LinearExpression, error) {
	out := model.ConstantExpression(e.Constant())
	for _, i := range e.Indices() {
		p, ok := to[i]
		if !ok {
			return model.LinearExpression{}, errors.Errorf("gauss: x_%d is not a free variable", i+1)
		}
		out = out.With(p, e.Coefficient(i))
	}
	return out, nil
}

// Problem returns the linear program over the free variables, renumbered
// so that Free[p] becomes x_(p+1).
func (rp *ReducedProblem) Problem(dir model.Direction) (*model.Problem, error) {
	to := rp.index()
	obj, err := remap(rp.Objective, to)
	if err != nil {
		return nil, err
	}
	cs := make([]model.Constraint, 0, len(rp.Inequalities))
	for _, c := range rp.Inequalities {
		e, err := remap(c.Expression(), to)
		if err != nil {
			return nil, err
		}
		cs = append(cs, model.NewConstraint(e, c.Relation(), c.RHS()))
	}
	return model.NewProblem(len(rp.Free), model.Objective{Direction: dir, Expression: obj}, cs...)
}

// Lift turns values of the free variables (in Free order) into a full
// assignment of the original variables.
func (rp *ReducedProblem) Lift(free []rational.Rational) ([]rational.Rational, error) {
	if len(free) != len(rp.Free) {
		return nil, errors.Errorf("gauss: got %d free values, want %d", len(free), len(rp.Free))
	}
	x := make([]rational.Rational, rp.countVars)
	for p, i := range rp.Free {
		x[i] = free[p]
	}
	for _, basic := range rp.Basics {
		x[basic.Index] = basic.Expression.Evaluate(x)
	}
	return x, nil
}
