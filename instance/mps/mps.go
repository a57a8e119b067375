// Package mps reads fixed-format MPS files through GLPK.
package mps

import (
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"q.log/ratsimplex/instance"
	"q.log/ratsimplex/model"
)

// Reader reads a mps file to construct a problem
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// Read returns the problem stored in the file. The objective sense is the
// one declared in the file.
func (r *Reader) Read() (*model.Problem, error) {
	// GLPK keeps per-thread environment state.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "mps: read %s", r.filename)
	}

	cols := make([]instance.Column, lp.NumCols())
	for c := range cols {
		cols[c] = instance.Column{
			Objective: lp.ObjCoef(c + 1),
			Lower:     lp.ColLB(c + 1),
			Upper:     lp.ColUB(c + 1),
		}
	}

	rows := make([]instance.Row, lp.NumRows())
	for i := range rows {
		rowVec := make([]float64, len(cols))
		idxs, vals := lp.MatRow(i + 1)
		for k, v := range idxs {
			// glpk arrays are 1-based, slot 0 is unused
			if v == 0 {
				continue
			}
			rowVec[v-1] = vals[k]
		}
		rows[i] = instance.Row{
			Coefficients: rowVec,
			Lower:        lp.RowLB(i + 1),
			Upper:        lp.RowUB(i + 1),
		}
	}

	dir := model.Minimize
	if lp.ObjDir() == glpk.MAX {
		dir = model.Maximize
	}
	p, err := instance.Build(dir, cols, rows)
	return p, errors.Wrapf(err, "mps: %s", r.filename)
}

// ReadFile is NewReader(filename).Read().
func ReadFile(filename string) (*model.Problem, error) {
	return NewReader(filename).Read()
}
