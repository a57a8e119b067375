package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"q.log/ratsimplex/rational"
)

// ParseError reports the token a constraint or objective string could not
// be parsed at.
type ParseError struct {
	Input  string
	Token  string
	Pos    int // 0-based token position, -1 when the input ended early
	Reason string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("parse %q: token %d %q: %s", e.Input, e.Pos+1, e.Token, e.Reason)
}

// parser holds the state of one scan over the tokens of a line.
type parser struct {
	input     string
	tokens    []string
	countVars int // 0 means unchecked

	expr     LinearExpression
	terms    int
	negate   bool
	signed   bool // a sign token waits for its operand
	relation Relation
	hasRel   bool
	rhs      rational.Rational
	hasRHS   bool
}

func (p *parser) fail(pos int, reason string) *ParseError {
	e := &ParseError{Input: p.input, Pos: pos, Reason: reason}
	if pos >= 0 {
		e.Token = p.tokens[pos]
	}
	return e
}

// term parses <signed-rational><marker>_<index>.
func (p *parser) term(pos int) (int, rational.Rational, error) {
	tok := p.tokens[pos]
	sep := strings.LastIndex(tok, "_")
	head, tail := tok[:sep], tok[sep+1:]
	if tail == "" {
		return 0, rational.Zero(), p.fail(pos, "missing variable index")
	}
	index, err := strconv.Atoi(tail)
	if err != nil || index < 1 {
		return 0, rational.Zero(), p.fail(pos, "invalid variable index")
	}
	if p.countVars > 0 && index > p.countVars {
		return 0, rational.Zero(), p.fail(pos, fmt.Sprintf("variable index out of range 1..%d", p.countVars))
	}
	lit := strings.TrimRightFunc(head, unicode.IsLetter)
	if lit == head {
		return 0, rational.Zero(), p.fail(pos, "missing variable marker")
	}
	coeff, err := rational.Parse(lit)
	if err != nil {
		return 0, rational.Zero(), p.fail(pos, "non-numeric coefficient")
	}
	return index - 1, coeff, nil
}

func looksRelational(tok string) bool {
	return strings.Trim(tok, "<>=!≤≥") == ""
}

func (p *parser) run(wantRelation bool) error {
	p.expr = NewExpression()
	for pos, tok := range p.tokens {
		switch {
		case tok == "-", tok == "+":
			if p.signed {
				return p.fail(pos, "sign without operand")
			}
			if tok == "+" && p.hasRel {
				return p.fail(pos, "unexpected token")
			}
			p.signed = true
			p.negate = tok == "-"
		case strings.Contains(tok, "_"):
			if p.hasRel {
				return p.fail(pos, "variable term after relation")
			}
			i, c, err := p.term(pos)
			if err != nil {
				return err
			}
			if p.negate {
				c = c.Neg()
			}
			p.negate, p.signed = false, false
			p.terms++
			p.expr.put(i, p.expr.Coefficient(i).Add(c))
		case looksRelational(tok):
			rel, ok := parseRelation(tok)
			switch {
			case !ok:
				return p.fail(pos, "unknown relation")
			case !wantRelation:
				return p.fail(pos, "unexpected relation in expression")
			case p.hasRel:
				return p.fail(pos, "more than one relation")
			case p.signed:
				return p.fail(pos, "sign without operand")
			case p.terms == 0:
				return p.fail(pos, "missing variable term")
			}
			p.relation, p.hasRel = rel, true
		default:
			if !p.hasRel {
				return p.fail(pos, "unexpected token")
			}
			if p.hasRHS {
				return p.fail(pos, "trailing token after right-hand side")
			}
			v, err := rational.Parse(tok)
			if err != nil {
				return p.fail(pos, "non-numeric right-hand side")
			}
			if p.negate {
				v = v.Neg()
			}
			p.negate, p.signed = false, false
			p.rhs, p.hasRHS = v, true
		}
	}
	switch {
	case p.signed:
		return p.fail(len(p.tokens)-1, "sign without operand")
	case wantRelation && !p.hasRel:
		return p.fail(-1, "missing relation")
	case wantRelation && !p.hasRHS:
		return p.fail(-1, "missing right-hand side")
	}
	return nil
}

// ParseConstraint parses a line such as "1x_1 + 2x_2 >= 4" without
// checking variable indices against a declared count.
func ParseConstraint(s string) (Constraint, error) {
	return ParseConstraintN(s, 0)
}

// ParseConstraintN parses a constraint whose variable indices must lie in
// 1..countVars. A countVars of 0 disables the range check.
func ParseConstraintN(s string, countVars int) (Constraint, error) {
	p := &parser{input: s, tokens: strings.Fields(s), countVars: countVars}
	if err := p.run(true); err != nil {
		return Constraint{}, err
	}
	return NewConstraint(p.expr, p.relation, p.rhs), nil
}

// ParseExpression parses an objective expression: terms and signs only.
// Terms may cancel out, leaving the zero expression.
func ParseExpression(s string) (LinearExpression, error) {
	return ParseExpressionN(s, 0)
}

// ParseExpressionN is ParseExpression with the index range check of
// ParseConstraintN.
func ParseExpressionN(s string, countVars int) (LinearExpression, error) {
	p := &parser{input: s, tokens: strings.Fields(s), countVars: countVars}
	if err := p.run(false); err != nil {
		return LinearExpression{}, err
	}
	if p.terms == 0 {
		return LinearExpression{}, p.fail(-1, "empty expression")
	}
	return p.expr, nil
}

// ParseObjective parses the direction and the expression of an objective.
func ParseObjective(direction, expr string) (Objective, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return Objective{}, err
	}
	e, err := ParseExpression(expr)
	if err != nil {
		return Objective{}, err
	}
	return Objective{Direction: dir, Expression: e}, nil
}
