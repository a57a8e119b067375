package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"q.log/ratsimplex/rational"
)

// Relation is the comparison of a constraint row.
type Relation int

const (
	LE Relation = iota // <=
	GE                 // >=
	EQ                 // =
)

func (r Relation) String() string {
	switch r {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Flip returns the relation obtained when both sides are multiplied by -1.
func (r Relation) Flip() Relation {
	switch r {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return r
	}
}

func parseRelation(tok string) (Relation, bool) {
	switch tok {
	case "<=":
		return LE, true
	case ">=":
		return GE, true
	case "=":
		return EQ, true
	}
	return 0, false
}

// Constraint is expression (relation) rhs. It is never modified after
// construction.
type Constraint struct {
	expr     LinearExpression
	relation Relation
	rhs      rational.Rational
}

// NewConstraint builds expr (rel) rhs. A constant term of expr is moved to
// the right-hand side.
func NewConstraint(expr LinearExpression, rel Relation, rhs rational.Rational) Constraint {
	if !expr.Constant().IsZero() {
		rhs = rhs.Sub(expr.Constant())
		expr = expr.WithConstant(rational.Zero())
	}
	return Constraint{expr: expr, relation: rel, rhs: rhs}
}

func (c Constraint) Expression() LinearExpression { return c.expr }
func (c Constraint) Relation() Relation           { return c.relation }
func (c Constraint) RHS() rational.Rational       { return c.rhs }

// Normalize returns c with a non-negative right-hand side, multiplying
// both sides by -1 and flipping the relation if needed.
func (c Constraint) Normalize() Constraint {
	if !c.rhs.IsNegative() {
		return c
	}
	return Constraint{
		expr:     c.expr.Scale(rational.FromInt(-1)),
		relation: c.relation.Flip(),
		rhs:      c.rhs.Neg(),
	}
}

// Satisfied reports whether values meets the constraint exactly.
func (c Constraint) Satisfied(values []rational.Rational) bool {
	lhs := c.expr.Evaluate(values)
	switch c.relation {
	case LE:
		return lhs.Cmp(c.rhs) <= 0
	case GE:
		return lhs.Cmp(c.rhs) >= 0
	default:
		return lhs.Equal(c.rhs)
	}
}

func (c Constraint) String() string {
	return c.expr.String() + " " + c.relation.String() + " " + c.rhs.String()
}

// Direction is the optimization sense of an objective.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "max"
	}
	return "min"
}

// ParseDirection accepts "min", "minimize", "max" and "maximize" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	}
	return 0, errors.Errorf("unknown optimization direction %q", s)
}

// Objective is a direction plus the linear expression to optimize.
type Objective struct {
	Direction  Direction
	Expression LinearExpression
}

// Evaluate returns the objective value at values.
func (o Objective) Evaluate(values []rational.Rational) rational.Rational {
	return o.Expression.Evaluate(values)
}

// Normal returns the coefficients of x_1 and x_2, negated when minimizing,
// i.e. the direction in which the objective improves on a planar drawing.
func (o Objective) Normal() (rational.Rational, rational.Rational) {
	x, y := o.Expression.Coefficient(0), o.Expression.Coefficient(1)
	if o.Direction == Minimize {
		return x.Neg(), y.Neg()
	}
	return x, y
}

func (o Objective) String() string {
	return o.Direction.String() + ": " + o.Expression.String()
}
