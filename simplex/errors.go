package simplex

import "github.com/pkg/errors"

var (
	ErrUnbounded        = errors.New("simplex: problem is unbounded")
	ErrInfeasible       = errors.New("simplex: problem is infeasible")
	ErrCyclingSuspected = errors.New("simplex: iteration limit reached, cycling suspected")

	errOrder = errors.New("simplex: phases run out of order")
)
