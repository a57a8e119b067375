package simplex

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
)

var scenarioB = []string{
	"1x_1 + 2x_2 >= 4",
	"3x_1 + 2x_3 <= 5",
	"3x_2 + 1x_3 = 6",
}

func values(r *Result) []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		out[i] = v.String()
	}
	return out
}

func problem(t *testing.T, n int, dir model.Direction, objective string, constraints ...string) *model.Problem {
	t.Helper()
	p, err := model.ParseProblem(n, dir, objective, constraints)
	require.NoError(t, err)
	return p
}

type recorder struct{ lines []string }

func (r *recorder) Print(v ...interface{}) { r.lines = append(r.lines, fmt.Sprint(v...)) }

func TestMaximizeBox(t *testing.T) {
	res, err := SolveText(2, []string{"1x_1 <= 4", "1x_2 <= 3"}, "max", "1x_1 + 1x_2")
	require.NoError(t, err)

	assert.Equal(t, "4", res.Var(1).String())
	assert.Equal(t, "3", res.Var(2).String())
	assert.Equal(t, "7", res.Value.String())
	assert.Equal(t, 2, res.Iterations)
	require.Len(t, res.Pivots, 2)
	assert.Equal(t, "phase 2: row 1, column 0, element 1", res.Pivots[0].String())
	assert.Equal(t, "phase 2: row 2, column 1, element 1", res.Pivots[1].String())
	assert.True(t, res.Var(3).IsZero())
}

func TestMinimizeMixedRelations(t *testing.T) {
	s, err := NewSolver(3, problem(t, 3, model.Minimize, "2x_1 + 5x_2 + 4x_3", scenarioB...).Constraints(),
		problem(t, 3, model.Minimize, "2x_1 + 5x_2 + 4x_3").Objective())
	require.NoError(t, err)

	require.NoError(t, s.Phase1())
	assert.True(t, s.Phase1Value().IsZero())
	require.NoError(t, s.DropArtificial())

	rows, cols := s.Tableau().Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3+2+1, cols, "artificial columns are gone")

	require.NoError(t, s.Phase2())
	res, err := s.Extract()
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2", "0"}, values(res))
	assert.Equal(t, "10", res.Value.String())
	assert.Equal(t, []int{1, 4, 3}, s.Basis())
}

func TestBlandRuleSameOptimum(t *testing.T) {
	res, err := SolveText(3, scenarioB, "min", "2x_1 + 5x_2 + 4x_3", WithBlandRule())
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2", "0"}, values(res))
	assert.Equal(t, "10", res.Value.String())
}

// Beale's problem cycles under the largest coefficient rule.
var beale = []string{
	"1/4x_1 - 8x_2 - 1x_3 + 9x_4 <= 0",
	"1/2x_1 - 12x_2 - 1/2x_3 + 3x_4 <= 0",
	"1x_3 <= 1",
}

func TestBealeCycles(t *testing.T) {
	const obj = "3/4x_1 - 20x_2 + 1/2x_3 - 6x_4"

	_, err := SolveText(4, beale, "max", obj, WithIterationLimit(100))
	assert.ErrorIs(t, err, ErrCyclingSuspected)

	res, err := SolveText(4, beale, "max", obj, WithBlandRule(), WithIterationLimit(100))
	require.NoError(t, err)
	assert.Equal(t, "5/4", res.Value.String())
	assert.Equal(t, []string{"1", "0", "1", "0"}, values(res))
	assert.True(t, problem(t, 4, model.Maximize, obj, beale...).Feasible(res.Values))
}

func TestUnbounded(t *testing.T) {
	_, err := SolveText(1, []string{"1x_1 >= 0"}, "max", "1x_1")
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestInfeasible(t *testing.T) {
	p := problem(t, 1, model.Minimize, "1x_1", "1x_1 <= 1", "1x_1 >= 2")
	s, err := NewSolver(p.CountVars(), p.Constraints(), p.Objective())
	require.NoError(t, err)

	require.NoError(t, s.Phase1())
	assert.Equal(t, "1", s.Phase1Value().String())
	assert.ErrorIs(t, s.DropArtificial(), ErrInfeasible)

	_, err = Solve(p)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestIterationLimit(t *testing.T) {
	_, err := SolveText(2, []string{"1x_1 <= 4", "1x_2 <= 3"}, "max", "1x_1 + 1x_2", WithIterationLimit(1))
	assert.ErrorIs(t, err, ErrCyclingSuspected)

	_, err = SolveText(2, []string{"1x_1 <= 4"}, "max", "1x_1", WithIterationLimit(0))
	assert.Error(t, err)
}

func TestNegativeRightHandSide(t *testing.T) {
	res, err := SolveText(1, []string{"-1x_1 <= -2"}, "min", "1x_1")
	require.NoError(t, err)
	assert.Equal(t, "2", res.Var(1).String())
	assert.Equal(t, "2", res.Value.String())
}

func TestRedundantEquality(t *testing.T) {
	p := problem(t, 2, model.Minimize, "1x_1", "1x_1 + 1x_2 = 2", "1x_1 + 1x_2 = 2")
	s, err := NewSolver(p.CountVars(), p.Constraints(), p.Objective())
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, values(res))
	assert.Equal(t, "0", res.Value.String())

	rows, cols := s.Tableau().Dims()
	assert.Equal(t, 2, rows, "the duplicate row is removed")
	assert.Equal(t, 3, cols)
	assert.Equal(t, []int{1}, s.Basis())
}

func TestArtificialDrivenOut(t *testing.T) {
	res, err := SolveText(2, []string{"-1x_1 = 0", "1x_1 + 1x_2 <= 4"}, "max", "1x_1 + 1x_2")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "4"}, values(res))
	assert.Equal(t, "4", res.Value.String())
	assert.Equal(t, "phase 1: row 1, column 0, element -1", res.Pivots[0].String())
}

func TestObjectiveConstant(t *testing.T) {
	p := problem(t, 2, model.Maximize, "1x_1 + 1x_2", "1x_1 <= 4", "1x_2 <= 3")
	obj := p.Objective()
	obj.Expression = obj.Expression.WithConstant(rational.FromInt(5))

	s, err := NewSolver(2, p.Constraints(), obj)
	require.NoError(t, err)
	res, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, "12", res.Value.String())
}

func TestExtractIdempotent(t *testing.T) {
	p := problem(t, 3, model.Minimize, "2x_1 + 5x_2 + 4x_3", scenarioB...)
	s, err := NewSolver(p.CountVars(), p.Constraints(), p.Objective())
	require.NoError(t, err)
	first, err := s.Run()
	require.NoError(t, err)

	basis := s.Basis()
	second, err := s.Extract()
	require.NoError(t, err)
	assert.Equal(t, values(first), values(second))
	assert.True(t, first.Value.Equal(second.Value))
	assert.Equal(t, len(first.Pivots), len(second.Pivots))
	assert.Equal(t, basis, s.Basis())
}

func TestOptimumIsFeasible(t *testing.T) {
	for _, p := range []*model.Problem{
		problem(t, 3, model.Minimize, "2x_1 + 5x_2 + 4x_3", scenarioB...),
		problem(t, 2, model.Maximize, "1x_1 + 1x_2", "1x_1 <= 4", "1x_2 <= 3"),
		problem(t, 2, model.Maximize, "3x_1 + 2x_2", "1x_1 + 1x_2 <= 4", "1x_1 + 3x_2 <= 6", "1x_1 <= 3"),
	} {
		res, err := Solve(p)
		require.NoError(t, err)
		assert.True(t, p.Feasible(res.Values), p.Objective().String())
		assert.True(t, p.Objective().Evaluate(res.Values).Equal(res.Value))
	}
}

func TestPhasesInOrder(t *testing.T) {
	p := problem(t, 2, model.Maximize, "1x_1 + 1x_2", "1x_1 <= 4", "1x_2 <= 3")
	s, err := NewSolver(p.CountVars(), p.Constraints(), p.Objective())
	require.NoError(t, err)

	assert.Error(t, s.Phase2())
	_, err = s.Extract()
	assert.Error(t, err)
	require.NoError(t, s.Phase1())
	assert.Error(t, s.Phase1())
}

func TestNewSolverRejectsOutOfRange(t *testing.T) {
	p := problem(t, 3, model.Minimize, "1x_3", "1x_3 <= 1")
	_, err := NewSolver(2, p.Constraints(), p.Objective())
	assert.Error(t, err)

	_, err = NewSolver(0, nil, model.Objective{})
	assert.Error(t, err)
}

func TestLoggerTracesBaseChanges(t *testing.T) {
	rec := &recorder{}
	_, err := SolveText(2, []string{"1x_1 <= 4", "1x_2 <= 3"}, "max", "1x_1 + 1x_2", WithLogger(rec))
	require.NoError(t, err)

	joined := strings.Join(rec.lines, "\n")
	assert.Contains(t, joined, "BASE CHANGE 2 -> 0")
	assert.Contains(t, joined, "BASE CHANGE 3 -> 1")
	assert.Contains(t, joined, "ITERATION 2")
	assert.Contains(t, joined, "objective 7")
	assert.Contains(t, joined, "T = ⎡")
}

func TestConcurrentSolves(t *testing.T) {
	const n = 8
	results := make([]*Result, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = SolveText(3, scenarioB, "min", "2x_1 + 5x_2 + 4x_3")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "10", results[i].Value.String())
	}
}

func TestTableauPivot(t *testing.T) {
	tab := newTableau(1, 2)
	tab.SetRow(0, []rational.Rational{rational.FromInt(-1), rational.FromInt(-1), rational.Zero()})
	tab.SetRow(1, []rational.Rational{rational.FromInt(2), rational.FromInt(4), rational.FromInt(6)})

	tab.Pivot(1, 0)
	assert.Equal(t, "1", tab.At(1, 0).String())
	assert.Equal(t, "2", tab.At(1, 1).String())
	assert.Equal(t, "3", tab.RHS(1).String())
	assert.True(t, tab.At(0, 0).IsZero())
	assert.Equal(t, "1", tab.At(0, 1).String())
	assert.Equal(t, "3", tab.RHS(0).String())

	row := tab.Row(1)
	row[0] = rational.FromInt(9)
	assert.Equal(t, "1", tab.At(1, 0).String())

	assert.Panics(t, func() { tab.Pivot(0, 0) })
	assert.Panics(t, func() { tab.SetRow(0, row[:1]) })

	tab.TruncateColumns(2)
	_, cols := tab.Dims()
	assert.Equal(t, 2, cols)
	assert.Equal(t, "3", tab.RHS(1).String())
	assert.Contains(t, tab.String(), "|")
	assert.Equal(t, []float64{1, 3}, tab.Dense().RawRowView(1))
}
