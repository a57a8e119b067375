// Package verify checks solver results: exactly against the constraints
// and approximately against gonum's floating-point simplex.
package verify

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
	"q.log/ratsimplex/simplex"
)

// Feasible returns an error naming the first negative variable or violated
// constraint, or nil if values satisfies p exactly.
func Feasible(p *model.Problem, values []rational.Rational) error {
	if len(values) != p.CountVars() {
		return errors.Errorf("verify: got %d values for %d variables", len(values), p.CountVars())
	}
	for i, v := range values {
		if v.IsNegative() {
			return errors.Errorf("verify: x_%d = %s is negative", i+1, v)
		}
	}
	for r, c := range p.Constraints() {
		if !c.Satisfied(values) {
			return errors.Errorf("verify: constraint %d (%s) violated, lhs is %s", r+1, c, c.Expression().Evaluate(values))
		}
	}
	return nil
}

// NeighbourImproves moves every variable of values by step in both
// directions and reports the first variable whose move stays feasible and
// strictly improves the objective. It returns -1, false for an optimum.
func NeighbourImproves(p *model.Problem, values []rational.Rational, step rational.Rational) (int, bool) {
	obj := p.Objective()
	base := obj.Evaluate(values)
	better := func(v rational.Rational) bool {
		if obj.Direction == model.Maximize {
			return base.Less(v)
		}
		return v.Less(base)
	}

	x := append([]rational.Rational(nil), values...)
	for j := range x {
		orig := x[j]
		for _, next := range []rational.Rational{orig.Add(step), orig.Sub(step)} {
			x[j] = next
			if p.Feasible(x) && better(obj.Evaluate(x)) {
				return j, true
			}
		}
		x[j] = orig
	}
	return -1, false
}

// standardForm adds one slack column per inequality so that p reads
// min c'x subject to A x = b, x >= 0. Rows that are linear combinations of
// earlier rows are left out, since gonum wants A of full row rank.
func standardForm(p *model.Problem) (c []float64, a *mat.Dense, b []float64, err error) {
	n := p.CountVars()
	cs := p.Constraints()
	slacks := 0
	for _, con := range cs {
		if con.Relation() != model.EQ {
			slacks++
		}
	}

	obj := p.Objective()
	c = make([]float64, n+slacks)
	for _, j := range obj.Expression.Indices() {
		c[j] = obj.Expression.Coefficient(j).Float64()
		if obj.Direction == model.Maximize {
			c[j] = -c[j]
		}
	}

	rows := make([][]rational.Rational, len(cs))
	rhs := make([]rational.Rational, len(cs))
	s := n
	for r, con := range cs {
		rows[r] = make([]rational.Rational, n+slacks)
		for _, j := range con.Expression().Indices() {
			rows[r][j] = con.Expression().Coefficient(j)
		}
		switch con.Relation() {
		case model.LE:
			rows[r][s] = rational.One()
			s++
		case model.GE:
			rows[r][s] = rational.FromInt(-1)
			s++
		}
		rhs[r] = con.RHS()
	}

	keep, err := independentRows(rows, rhs)
	if err != nil {
		return nil, nil, nil, err
	}
	a = mat.NewDense(len(keep), n+slacks, nil)
	b = make([]float64, len(keep))
	for i, r := range keep {
		for j, v := range rows[r] {
			a.Set(i, j, v.Float64())
		}
		b[i] = rhs[r].Float64()
	}
	return c, a, b, nil
}

// independentRows eliminates the augmented rows [A | b] exactly and returns
// the indices of a maximal independent subset of A's rows. A row of A that
// depends on earlier ones while its right-hand side does not makes the
// system inconsistent.
func independentRows(a [][]rational.Rational, b []rational.Rational) ([]int, error) {
	type reduced struct {
		pivot int
		row   []rational.Rational
		rhs   rational.Rational
	}
	var basis []reduced
	var keep []int
	for r := range a {
		row := append([]rational.Rational(nil), a[r]...)
		rhs := b[r]
		for _, e := range basis {
			f := row[e.pivot]
			if f.IsZero() {
				continue
			}
			for j := range row {
				row[j] = row[j].Sub(f.Mul(e.row[j]))
			}
			rhs = rhs.Sub(f.Mul(e.rhs))
		}
		pivot := -1
		for j, v := range row {
			if !v.IsZero() {
				pivot = j
				break
			}
		}
		if pivot < 0 {
			if !rhs.IsZero() {
				return nil, errors.Errorf("verify: constraint %d contradicts the ones before it", r+1)
			}
			continue
		}
		div := row[pivot]
		for j := range row {
			row[j] = row[j].Div(div)
		}
		basis = append(basis, reduced{pivot: pivot, row: row, rhs: rhs.Div(div)})
		keep = append(keep, r)
	}
	return keep, nil
}

// Float solves p with gonum's floating-point simplex and returns the
// optimal value, constant term included, and the decision variables.
// Input gonum refuses with a panic is reported as an error.
func Float(p *model.Problem) (opt float64, x []float64, err error) {
	if p.NumRows == 0 {
		return 0, nil, errors.New("verify: problem has no constraints")
	}
	c, a, b, err := standardForm(p)
	if err != nil {
		return 0, nil, err
	}
	if rows, cols := a.Dims(); rows > cols {
		return 0, nil, errors.Errorf("verify: %d independent rows exceed %d columns", rows, cols)
	}

	defer func() {
		if r := recover(); r != nil {
			opt, x, err = 0, nil, errors.Errorf("verify: gonum simplex: %v", r)
		}
	}()
	opt, x, err = lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "verify: gonum simplex")
	}
	if p.Objective().Direction == model.Maximize {
		opt = -opt
	}
	opt += p.Objective().Expression.Constant().Float64()
	return opt, x[:p.CountVars()], nil
}

// CrossCheck compares the exact optimum in res with gonum's, relative to
// tol.
func CrossCheck(p *model.Problem, res *simplex.Result, tol float64) error {
	opt, _, err := Float(p)
	if err != nil {
		return err
	}
	want := res.Value.Float64()
	if math.Abs(opt-want) > tol*math.Max(1, math.Abs(want)) {
		return errors.Errorf("verify: exact optimum %s (%v), gonum found %v", res.Value, want, opt)
	}
	return nil
}
