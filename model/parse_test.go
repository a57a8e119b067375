package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/ratsimplex/rational"
)

func TestParseConstraint(t *testing.T) {
	for _, test := range []struct {
		in     string
		coeffs map[int]string
		rel    Relation
		rhs    string
	}{
		{"1x_1 + 2x_2 >= 4", map[int]string{0: "1", 1: "2"}, GE, "4"},
		{"3x_1 + 2x_3 <= 5", map[int]string{0: "3", 2: "2"}, LE, "5"},
		{"3x_2 + 1x_3 = 6", map[int]string{1: "3", 2: "1"}, EQ, "6"},
		{"- 2x_1 + 1/2x_2 <= 3/4", map[int]string{0: "-2", 1: "1/2"}, LE, "3/4"},
		{"1x_1 - 1.5x_2 >= -2", map[int]string{0: "1", 1: "-3/2"}, GE, "-2"},
		{"-2x_1 - -3x_2 <= 1", map[int]string{0: "-2", 1: "3"}, LE, "1"},
		{"1x_1 = - 2", map[int]string{0: "1"}, EQ, "-2"},
		{"2y_1 + 1y_1 <= 9", map[int]string{0: "3"}, LE, "9"},
		{"  1x_10   <=  0 ", map[int]string{9: "1"}, LE, "0"},
	} {
		c, err := ParseConstraint(test.in)
		require.NoError(t, err, test.in)

		assert.Equal(t, len(test.coeffs), c.Expression().Len(), test.in)
		for i, want := range test.coeffs {
			assert.Equal(t, want, c.Expression().Coefficient(i).String(), test.in)
		}
		assert.Equal(t, test.rel, c.Relation(), test.in)
		assert.Equal(t, test.rhs, c.RHS().String(), test.in)
	}
}

func TestParseConstraintErrors(t *testing.T) {
	for _, test := range []struct {
		in     string
		token  string
		reason string
	}{
		{"1x_ <= 4", "1x_", "missing variable index"},
		{"1x_a <= 4", "1x_a", "invalid variable index"},
		{"1x_0 <= 4", "1x_0", "invalid variable index"},
		{"ax_1 <= 4", "ax_1", "non-numeric coefficient"},
		{"x_1 <= 4", "x_1", "non-numeric coefficient"},
		{"2_1 <= 4", "2_1", "missing variable marker"},
		{"1x_1 < 4", "<", "unknown relation"},
		{"1x_1 => 4", "=>", "unknown relation"},
		{"1x_1 <= 4 >= 2", ">=", "more than one relation"},
		{"1x_1 <= four", "four", "non-numeric right-hand side"},
		{"1x_1 <= 4 5", "5", "trailing token after right-hand side"},
		{"1x_1 <= 4 1x_2", "1x_2", "variable term after relation"},
		{"1x_1 2 <= 4", "2", "unexpected token"},
		{"1x_1 - <= 4", "<=", "sign without operand"},
		{"1x_1 <= 4 -", "-", "sign without operand"},
		{"1x_1 + <= 4", "<=", "sign without operand"},
		{"+ + 1x_1 <= 4", "+", "sign without operand"},
		{"1x_1 - + 1x_2 <= 4", "+", "sign without operand"},
		{"1x_1 <= + 4", "+", "unexpected token"},
		{"<= 4", "<=", "missing variable term"},
		{"- <= 4", "<=", "sign without operand"},
	} {
		_, err := ParseConstraint(test.in)
		require.Error(t, err, test.in)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), test.in)
		assert.Equal(t, test.token, perr.Token, test.in)
		assert.Equal(t, test.reason, perr.Reason, test.in)
		assert.Contains(t, err.Error(), test.token, test.in)
	}
}

func TestParseConstraintIncomplete(t *testing.T) {
	for in, reason := range map[string]string{
		"1x_1 + 2x_2": "missing relation",
		"1x_1 <=":     "missing right-hand side",
		"":            "missing relation",
	} {
		_, err := ParseConstraint(in)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), in)
		assert.Equal(t, reason, perr.Reason, in)
		assert.Equal(t, -1, perr.Pos, in)
	}
}

func TestParseConstraintRange(t *testing.T) {
	_, err := ParseConstraintN("1x_1 + 1x_3 <= 4", 2)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "1x_3", perr.Token)
	assert.Equal(t, 2, perr.Pos)

	_, err = ParseConstraintN("1x_1 + 1x_2 <= 4", 2)
	assert.NoError(t, err)
}

func TestParseExpression(t *testing.T) {
	e, err := ParseExpression("2x_1 + 4x_3 + 5x_2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, e.Indices())
	assert.Equal(t, "2x_1 + 5x_2 + 4x_3", e.String())

	_, err = ParseExpression("2x_1 <= 4")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "unexpected relation in expression", perr.Reason)

	_, err = ParseExpression("   ")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "empty expression", perr.Reason)

	_, err = ParseExpression("1x_1 +")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "sign without operand", perr.Reason)
}

func TestParseExpressionCancelling(t *testing.T) {
	for _, in := range []string{"0x_1 + 0x_2", "1x_1 - 1x_1", "+ 2x_1 - 2x_1"} {
		e, err := ParseExpression(in)
		require.NoError(t, err, in)
		assert.Equal(t, 0, e.Len(), in)
		assert.Equal(t, "0", e.String(), in)
	}

	p, err := ParseProblem(2, Minimize, "0x_1 + 0x_2", []string{"1x_1 + 1x_2 >= 1"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CountVars())
}

func TestParseObjective(t *testing.T) {
	o, err := ParseObjective("MAX", "1x_1 - 1x_2")
	require.NoError(t, err)
	assert.Equal(t, Maximize, o.Direction)
	assert.Equal(t, "max: 1x_1 - 1x_2", o.String())

	_, err = ParseObjective("sideways", "1x_1")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{
		"1x_1 + 2x_2 >= 4",
		"-3/4x_1 - 2x_3 <= 5",
		"1x_2 = 0",
	} {
		c, err := ParseConstraint(in)
		require.NoError(t, err)
		assert.Equal(t, in, c.String())

		again, err := ParseConstraint(c.String())
		require.NoError(t, err)
		assert.True(t, again.Expression().Equal(c.Expression()))
		assert.True(t, again.RHS().Equal(rational.MustParse(c.RHS().String())))
	}
}
