// Package simplex solves linear programs over non-negative variables with
// the two-phase tableau method in exact rational arithmetic.
package simplex

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
)

type state int

const (
	built state = iota
	phase1Done
	artificialDropped
	phase2Done
)

// Solver holds the tableau of one linear program. The phases must run in
// order: Phase1, DropArtificial, Phase2, then Extract any number of times.
// A Solver is not safe for concurrent use; independent Solvers are.
type Solver struct {
	cfg       config
	objective model.Objective

	countVars     int
	numSlack      int
	numArtificial int

	tableau *Tableau
	// basis[r] is the column basic in row r; basis[0] is unused.
	basis []int

	state      state
	iterations int
	pivots     []Pivot
}

// NewSolver builds the initial tableau. Constraints with a negative
// right-hand side are multiplied by -1 first, so every row starts feasible
// for its slack or artificial variable.
func NewSolver(countVars int, constraints []model.Constraint, objective model.Objective, opts ...Option) (*Solver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if countVars <= 0 {
		return nil, errors.Errorf("simplex: invalid variable count %d", countVars)
	}
	if i := objective.Expression.MaxIndex(); i >= countVars {
		return nil, errors.Errorf("simplex: objective uses x_%d of %d variables", i+1, countVars)
	}

	rows := make([]model.Constraint, len(constraints))
	s := &Solver{cfg: cfg, objective: objective, countVars: countVars}
	for i, c := range constraints {
		if j := c.Expression().MaxIndex(); j >= countVars {
			return nil, errors.Errorf("simplex: constraint %d uses x_%d of %d variables", i+1, j+1, countVars)
		}
		rows[i] = c.Normalize()
		switch rows[i].Relation() {
		case model.LE:
			s.numSlack++
		case model.GE:
			s.numSlack++
			s.numArtificial++
		case model.EQ:
			s.numArtificial++
		}
	}

	s.tableau = newTableau(len(rows), countVars+s.numSlack+s.numArtificial)
	s.basis = make([]int, len(rows)+1)
	s.basis[0] = -1
	rhs := s.rhsColumn()
	slack, artificial := countVars, s.artificialStart()
	for i, c := range rows {
		r := i + 1
		expr := c.Expression()
		for _, j := range expr.Indices() {
			s.tableau.Set(r, j, expr.Coefficient(j))
		}
		s.tableau.Set(r, rhs, c.RHS())

		switch c.Relation() {
		case model.LE:
			s.tableau.Set(r, slack, rational.One())
			s.basis[r] = slack
			slack++
		case model.GE:
			s.tableau.Set(r, slack, rational.FromInt(-1))
			slack++
			fallthrough
		case model.EQ:
			s.tableau.Set(r, artificial, rational.One())
			s.basis[r] = artificial
			artificial++
		}
	}
	return s, nil
}

func (s *Solver) artificialStart() int { return s.countVars + s.numSlack }

func (s *Solver) rhsColumn() int {
	_, cols := s.tableau.Dims()
	return cols - 1
}

func (s *Solver) isArtificial(col int) bool {
	return s.state < artificialDropped && col >= s.artificialStart() && col < s.rhsColumn()
}

// Phase1 minimizes the sum of the artificial variables.
func (s *Solver) Phase1() error {
	if s.state != built {
		return errors.Wrap(errOrder, "Phase1")
	}
	one := rational.One()
	for j := s.artificialStart(); j < s.rhsColumn(); j++ {
		s.tableau.Set(0, j, one.Neg())
	}
	for r := 1; r < len(s.basis); r++ {
		if s.isArtificial(s.basis[r]) {
			s.tableau.addScaled(0, r, one)
		}
	}

	if err := s.iterate(1, 1); err != nil {
		return err
	}
	s.state = phase1Done
	s.cfg.logger.Print(fmt.Sprintf("phase 1 finished, artificial sum %s\n%s", s.Phase1Value(), s.tableau))
	return nil
}

// Phase1Value is the sum of the artificial variables. It is zero after
// Phase1 if and only if the problem is feasible.
func (s *Solver) Phase1Value() rational.Rational {
	return s.tableau.RHS(0)
}

// DropArtificial fails with ErrInfeasible unless Phase1 reached a zero
// artificial sum. Artificial variables still basic at level 0 are pivoted
// out of the basis; rows where that is impossible are redundant and
// removed. Then the artificial columns are dropped.
func (s *Solver) DropArtificial() error {
	if s.state != phase1Done {
		return errors.Wrap(errOrder, "DropArtificial")
	}
	if v := s.Phase1Value(); !v.IsZero() {
		return errors.Wrapf(ErrInfeasible, "artificial sum %s after phase 1", v)
	}

	for r := 1; r < len(s.basis); {
		if !s.isArtificial(s.basis[r]) {
			r++
			continue
		}
		col := -1
		for j := 0; j < s.artificialStart(); j++ {
			if !s.tableau.At(r, j).IsZero() {
				col = j
				break
			}
		}
		if col < 0 {
			s.cfg.logger.Print(fmt.Sprintf("removing redundant row %d", r))
			s.tableau.removeRow(r)
			s.basis = append(s.basis[:r:r], s.basis[r+1:]...)
			continue
		}
		s.pivot(1, r, col)
		r++
	}

	s.tableau.TruncateColumns(s.artificialStart() + 1)
	s.state = artificialDropped
	return nil
}

// Phase2 optimizes the real objective from the feasible basis left by
// DropArtificial.
func (s *Solver) Phase2() error {
	if s.state != artificialDropped {
		return errors.Wrap(errOrder, "Phase2")
	}
	_, cols := s.tableau.Dims()
	row := make([]rational.Rational, cols)
	for _, j := range s.objective.Expression.Indices() {
		row[j] = s.objective.Expression.Coefficient(j).Neg()
	}
	s.tableau.SetRow(0, row)
	for r := 1; r < len(s.basis); r++ {
		if f := s.tableau.At(0, s.basis[r]); !f.IsZero() {
			s.tableau.addScaled(0, r, f.Neg())
		}
	}

	sign := 1
	if s.objective.Direction == model.Maximize {
		sign = -1
	}
	if err := s.iterate(2, sign); err != nil {
		return err
	}
	s.state = phase2Done
	s.cfg.logger.Print(fmt.Sprintf("phase 2 finished, objective %s\n%s", s.tableau.RHS(0), s.tableau))
	return nil
}

// iterate pivots until no column of row 0 has an entry of the given sign.
func (s *Solver) iterate(phase, sign int) error {
	for n := 0; ; n++ {
		col := s.entering(sign)
		if col < 0 {
			return nil
		}
		if n == s.cfg.iterationLimit {
			return errors.Wrapf(ErrCyclingSuspected, "phase %d after %d pivots", phase, n)
		}
		row := s.leaving(col)
		if row < 0 {
			return errors.Wrapf(ErrUnbounded, "phase %d: column %d has no positive entry", phase, col)
		}
		s.pivot(phase, row, col)
	}
}

// entering returns the column of row 0 whose entry, times sign, is the
// largest positive one, or the first positive one under Bland's rule. It
// returns -1 at optimality.
func (s *Solver) entering(sign int) int {
	best := -1
	var bestScore rational.Rational
	for j := 0; j < s.rhsColumn(); j++ {
		score := s.tableau.At(0, j)
		if sign < 0 {
			score = score.Neg()
		}
		if !score.IsPositive() {
			continue
		}
		if s.cfg.bland {
			return j
		}
		if best < 0 || score.Cmp(bestScore) > 0 {
			best, bestScore = j, score
		}
	}
	return best
}

// leaving runs the minimum ratio test on col over the strictly positive
// entries. It returns -1 if there are none.
func (s *Solver) leaving(col int) int {
	best := -1
	var bestRatio rational.Rational
	for r := 1; r < len(s.basis); r++ {
		e := s.tableau.At(r, col)
		if !e.IsPositive() {
			continue
		}
		ratio := s.tableau.RHS(r).Div(e)
		switch {
		case best < 0:
		case ratio.Less(bestRatio):
		case s.cfg.bland && ratio.Equal(bestRatio) && s.basis[r] < s.basis[best]:
		default:
			continue
		}
		best, bestRatio = r, ratio
	}
	return best
}

func (s *Solver) pivot(phase, row, col int) {
	element := s.tableau.At(row, col)
	s.cfg.logger.Print(fmt.Sprintf("-------------------- BASE CHANGE %v -> %v ----------------------", s.basis[row], col))
	s.tableau.Pivot(row, col)
	s.basis[row] = col
	s.iterations++
	s.pivots = append(s.pivots, Pivot{Phase: phase, Row: row, Column: col, Element: element})
	s.cfg.logger.Print(fmt.Sprintf("-------------------- ITERATION %v ----------------------", s.iterations))
	if _, ok := s.cfg.logger.(noopLogger); !ok {
		s.cfg.logger.Print(fmt.Sprintf("T = %v", mat.Formatted(s.tableau.Dense(), mat.Prefix("    "), mat.Squeeze())))
	}
}

// Extract reads the optimal vertex and value off the final tableau. It
// does not modify the solver.
func (s *Solver) Extract() (*Result, error) {
	if s.state != phase2Done {
		return nil, errors.Wrap(errOrder, "Extract")
	}
	values := make([]rational.Rational, s.countVars)
	for r := 1; r < len(s.basis); r++ {
		if b := s.basis[r]; b < s.countVars {
			values[b] = s.tableau.RHS(r)
		}
	}
	return &Result{
		Values:     values,
		Value:      s.tableau.RHS(0).Add(s.objective.Expression.Constant()),
		Pivots:     append([]Pivot(nil), s.pivots...),
		Iterations: s.iterations,
	}, nil
}

// Basis returns the basic column of every constraint row, in row order.
func (s *Solver) Basis() []int {
	return append([]int(nil), s.basis[1:]...)
}

// Tableau returns a copy of the current tableau.
func (s *Solver) Tableau() *Tableau {
	return s.tableau.clone()
}

// Run executes both phases and extracts the result.
func (s *Solver) Run() (*Result, error) {
	if err := s.Phase1(); err != nil {
		return nil, err
	}
	if err := s.DropArtificial(); err != nil {
		return nil, err
	}
	if err := s.Phase2(); err != nil {
		return nil, err
	}
	return s.Extract()
}

// Solve optimizes p.
func Solve(p *model.Problem, opts ...Option) (*Result, error) {
	s, err := NewSolver(p.CountVars(), p.Constraints(), p.Objective(), opts...)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// SolveText parses a problem written in the constraint language and solves
// it. direction is "min" or "max"; a countVars of 0 is inferred.
func SolveText(countVars int, constraints []string, direction, objective string, opts ...Option) (*Result, error) {
	dir, err := model.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	p, err := model.ParseProblem(countVars, dir, objective, constraints)
	if err != nil {
		return nil, err
	}
	return Solve(p, opts...)
}
