package instance

import (
	"math"

	"github.com/pkg/errors"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
)

// Column is a structural variable: its objective coefficient and bounds.
// An infinite bound is ±Inf or ±math.MaxFloat64.
type Column struct {
	Objective    float64
	Lower, Upper float64
}

// Row is Lower <= Σ Coefficients[j] x_j <= Upper.
type Row struct {
	Coefficients []float64
	Lower, Upper float64
}

func infinite(v float64) bool {
	return math.IsInf(v, 0) || math.Abs(v) == math.MaxFloat64
}

func exact(v float64) (rational.Rational, error) {
	r, err := rational.FromFloat64(v)
	return r, errors.Wrap(err, "instance")
}

// Build turns bounded rows and columns into a problem over non-negative
// variables.
//
// A row with one finite bound becomes a <= or >= constraint, a row with
// equal bounds an equality and a row with two distinct finite bounds two
// constraints. Free rows are skipped. Finite column bounds other than the
// implicit lower bound of 0 become extra single-variable rows appended after
// them. A negative or infinite lower column bound is an error.
func Build(dir model.Direction, cols []Column, rows []Row) (*model.Problem, error) {
	n := len(cols)
	if n == 0 {
		return nil, errors.New("instance: no columns")
	}

	obj := model.NewExpression()
	for j, c := range cols {
		v, err := exact(c.Objective)
		if err != nil {
			return nil, err
		}
		obj = obj.With(j, v)
	}

	var cs []model.Constraint
	add := func(expr model.LinearExpression, rel model.Relation, bound float64) error {
		v, err := exact(bound)
		if err != nil {
			return err
		}
		cs = append(cs, model.NewConstraint(expr, rel, v))
		return nil
	}

	for i, r := range rows {
		if len(r.Coefficients) != n {
			return nil, errors.Errorf("instance: row %d has %d coefficients, want %d", i+1, len(r.Coefficients), n)
		}
		expr := model.NewExpression()
		for j, a := range r.Coefficients {
			v, err := exact(a)
			if err != nil {
				return nil, err
			}
			expr = expr.With(j, v)
		}

		var err error
		switch lo, up := infinite(r.Lower), infinite(r.Upper); {
		case lo && up:
			continue
		case lo:
			err = add(expr, model.LE, r.Upper)
		case up:
			err = add(expr, model.GE, r.Lower)
		case r.Lower == r.Upper:
			err = add(expr, model.EQ, r.Lower)
		default:
			if err = add(expr, model.GE, r.Lower); err == nil {
				err = add(expr, model.LE, r.Upper)
			}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
	}

	p, err := model.NewProblem(n, model.Objective{Direction: dir, Expression: obj}, cs...)
	if err != nil {
		return nil, err
	}

	addBound := func(j int, rel model.Relation, v float64) error {
		r, err := exact(v)
		if err != nil {
			return err
		}
		return p.AddRow(model.NewConstraint(model.Variable(j), rel, r))
	}
	for j, c := range cols {
		if c.Lower < 0 {
			return nil, errors.Errorf("instance: column %d has lower bound %v, variables must be non-negative", j+1, c.Lower)
		}
		if !infinite(c.Lower) && c.Lower != 0 {
			if err := addBound(j, model.GE, c.Lower); err != nil {
				return nil, err
			}
		}
		if !infinite(c.Upper) {
			if err := addBound(j, model.LE, c.Upper); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}
