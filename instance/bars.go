// Package instance stores problems on disk and converts row and column
// bound descriptions, such as those read from MPS files, into problems.
package instance

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"q.log/ratsimplex/model"
)

// File is a saved problem: the objective and constraints as typed in the
// constraint language. Min is 1 for a maximization and 0 for a
// minimization.
type File struct {
	Objective   string   `json:"objective"`
	Min         int      `json:"min"`
	Constraints []string `json:"constraints"`
}

// Load decodes a saved problem.
func Load(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "instance: decode problem file")
	}
	if f.Min != 0 && f.Min != 1 {
		return nil, errors.Errorf("instance: min must be 0 or 1, got %d", f.Min)
	}
	return &f, nil
}

// ReadFile loads the problem saved at path.
func ReadFile(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "instance")
	}
	defer fd.Close()
	return Load(fd)
}

// Save encodes f with its constraints lower-cased.
func (f *File) Save(w io.Writer) error {
	out := File{Objective: f.Objective, Min: f.Min, Constraints: make([]string, len(f.Constraints))}
	for i, c := range f.Constraints {
		out.Constraints[i] = strings.ToLower(c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "instance: encode problem file")
}

// WriteFile saves f to path, replacing any existing file.
func (f *File) WriteFile(path string) (err error) {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "instance")
	}
	defer func() {
		if cerr := fd.Close(); err == nil {
			err = errors.Wrap(cerr, "instance")
		}
	}()
	return f.Save(fd)
}

func (f *File) Direction() model.Direction {
	if f.Min == 1 {
		return model.Maximize
	}
	return model.Minimize
}

// Problem parses the saved text. A countVars of 0 is inferred from the
// variables in use.
func (f *File) Problem(countVars int) (*model.Problem, error) {
	return model.ParseProblem(countVars, f.Direction(), f.Objective, f.Constraints)
}

// FromProblem renders p back into the constraint language. The language
// has no constant objective terms, so objectives with one are rejected.
func FromProblem(p *model.Problem) (*File, error) {
	obj := p.Objective()
	if c := obj.Expression.Constant(); !c.IsZero() {
		return nil, errors.Errorf("instance: objective constant %s cannot be saved", c)
	}
	f := &File{Objective: obj.Expression.String()}
	if obj.Direction == model.Maximize {
		f.Min = 1
	}
	for _, c := range p.Constraints() {
		f.Constraints = append(f.Constraints, c.String())
	}
	return f, nil
}
