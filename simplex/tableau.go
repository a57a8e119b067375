package simplex

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"
	"q.log/ratsimplex/rational"
)

// Tableau is a dense (m+1)×(n+1) matrix of exact values. Row 0 is the cost
// row and the last column holds the right-hand sides. Rows are owned by the
// tableau: Row and SetRow copy.
type Tableau struct {
	rows [][]rational.Rational
}

func newTableau(m, n int) *Tableau {
	t := &Tableau{rows: make([][]rational.Rational, m+1)}
	for i := range t.rows {
		t.rows[i] = make([]rational.Rational, n+1)
	}
	return t
}

// Dims returns the number of rows and columns, cost row and right-hand side
// column included.
func (t *Tableau) Dims() (rows, cols int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	return len(t.rows), len(t.rows[0])
}

// Row returns a copy of row i.
func (t *Tableau) Row(i int) []rational.Rational {
	return append([]rational.Rational(nil), t.rows[i]...)
}

// SetRow overwrites row i with a copy of row.
func (t *Tableau) SetRow(i int, row []rational.Rational) {
	if len(row) != len(t.rows[i]) {
		panic(fmt.Sprintf("simplex: row length %d, want %d", len(row), len(t.rows[i])))
	}
	copy(t.rows[i], row)
}

func (t *Tableau) At(i, j int) rational.Rational     { return t.rows[i][j] }
func (t *Tableau) Set(i, j int, v rational.Rational) { t.rows[i][j] = v }

// RHS returns the last entry of row i.
func (t *Tableau) RHS(i int) rational.Rational {
	return t.rows[i][len(t.rows[i])-1]
}

// addScaled does row_dst += factor * row_src.
func (t *Tableau) addScaled(dst, src int, factor rational.Rational) {
	for j := range t.rows[dst] {
		t.rows[dst][j] = t.rows[dst][j].Add(factor.Mul(t.rows[src][j]))
	}
}

// Pivot divides row by its entry in col and clears col in every other
// row, the cost row included. A zero pivot element is an invariant
// violation and panics.
func (t *Tableau) Pivot(row, col int) {
	element := t.rows[row][col]
	if element.IsZero() {
		panic(fmt.Sprintf("simplex: zero pivot element at (%d, %d)", row, col))
	}
	for j := range t.rows[row] {
		t.rows[row][j] = t.rows[row][j].Div(element)
	}
	for i := range t.rows {
		if i == row {
			continue
		}
		if factor := t.rows[i][col]; !factor.IsZero() {
			t.addScaled(i, row, factor.Neg())
		}
	}
}

// TruncateColumns keeps the first n-1 columns of every row plus the
// right-hand side, leaving rows of n entries.
func (t *Tableau) TruncateColumns(n int) {
	_, cols := t.Dims()
	if n < 1 || n > cols {
		panic(fmt.Sprintf("simplex: cannot truncate %d columns to %d", cols, n))
	}
	for i, row := range t.rows {
		t.rows[i] = append(row[:n-1:n-1], row[cols-1])
	}
}

func (t *Tableau) removeRow(i int) {
	t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
}

func (t *Tableau) clone() *Tableau {
	c := &Tableau{rows: make([][]rational.Rational, len(t.rows))}
	for i := range t.rows {
		c.rows[i] = t.Row(i)
	}
	return c
}

// String renders the tableau as aligned columns of exact fractions.
func (t *Tableau) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, row := range t.rows {
		for j, v := range row {
			if j == len(row)-1 {
				fmt.Fprint(w, "|\t")
			}
			fmt.Fprintf(w, "%s\t", v)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return sb.String()
}

// Dense returns a float view of the tableau.
func (t *Tableau) Dense() *mat.Dense {
	rows, cols := t.Dims()
	d := mat.NewDense(rows, cols, nil)
	for i, row := range t.rows {
		for j, v := range row {
			d.Set(i, j, v.Float64())
		}
	}
	return d
}
