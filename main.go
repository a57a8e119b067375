package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/ratsimplex/gauss"
	"q.log/ratsimplex/instance"
	"q.log/ratsimplex/instance/mps"
	"q.log/ratsimplex/model"
	"q.log/ratsimplex/rational"
	"q.log/ratsimplex/simplex"
	"q.log/ratsimplex/verify"
)

var (
	mpsFile    = flag.String("mps", "", "read the problem from an MPS file instead of a problem file")
	maximize   = flag.Bool("max", false, "maximize the objective of an MPS problem")
	project    = flag.Int("project", 0, "eliminate an all-equality problem down to `k` free variables first")
	trace      = flag.Bool("trace", false, "log every base change and the tableau after each phase")
	check      = flag.Bool("verify", false, "check the optimum exactly and against gonum's float simplex")
	bland      = flag.Bool("bland", false, "use Bland's rule")
	iterations = flag.Int("iterations", simplex.DefaultIterationLimit, "pivot limit per phase")
	save       = flag.String("save", "", "save the solved problem to `path`")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ratsimplex [flags] problem.bars")
	fmt.Fprintln(os.Stderr, "       ratsimplex [flags] -mps problem.mps")
	flag.PrintDefaults()
	os.Exit(2)
}

func load() (*model.Problem, error) {
	if *mpsFile != "" {
		p, err := mps.ReadFile(*mpsFile)
		if err != nil || !*maximize {
			return p, err
		}
		obj := p.Objective()
		obj.Direction = model.Maximize
		return model.NewProblem(p.CountVars(), obj, p.Constraints()...)
	}
	if flag.NArg() != 1 {
		usage()
	}
	f, err := instance.ReadFile(flag.Arg(0))
	if err != nil {
		return nil, err
	}
	return f.Problem(0)
}

func reduce(p *model.Problem, k int) (*model.Problem, *gauss.ReducedProblem, error) {
	s, err := gauss.SystemFromProblem(p)
	if err != nil {
		return nil, nil, err
	}
	s.Solve()
	if *trace {
		a, b := s.Dense()
		log.Printf("reduced A = %v", mat.Formatted(a, mat.Prefix("              "), mat.Squeeze()))
		log.Printf("reduced b = %v", mat.Formatted(b, mat.Prefix("              "), mat.Squeeze()))
	}
	if !s.IdentifyBasicColumns(k) {
		return nil, nil, errors.Errorf("system does not reduce to %d free variables", k)
	}
	rp := s.Substitute()
	for _, b := range rp.Basics {
		fmt.Printf("x_%d = %s\n", b.Index+1, b.Expression)
	}
	reduced, err := rp.Problem(p.Objective().Direction)
	return reduced, rp, err
}

func main() {
	log.SetPrefix("ratsimplex: ")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()

	p, err := load()
	if err != nil {
		log.Fatal(err)
	}

	original := p
	var rp *gauss.ReducedProblem
	if *project > 0 {
		if p, rp, err = reduce(p, *project); err != nil {
			log.Fatal(err)
		}
	}
	p.Fprint(os.Stdout)

	opts := []simplex.Option{simplex.WithIterationLimit(*iterations)}
	if *trace {
		opts = append(opts, simplex.WithLogger(log.New(os.Stderr, "", 0)))
	}
	if *bland {
		opts = append(opts, simplex.WithBlandRule())
	}

	res, err := simplex.Solve(p, opts...)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res)
	if p.CountVars() == 2 {
		x, y := p.Objective().Normal()
		fmt.Printf("normal = (%s, %s)\n", x, y)
	}

	values := res.Values
	if rp != nil {
		if values, err = rp.Lift(res.Values); err != nil {
			log.Fatal(err)
		}
		for i, v := range values {
			fmt.Printf("x_%d = %s\n", i+1, v)
		}
		fmt.Printf("f = %s\n", original.Objective().Evaluate(values))
	}

	if *check {
		if err := verify.Feasible(original, values); err != nil {
			log.Fatal(err)
		}
		if j, ok := verify.NeighbourImproves(original, values, rational.New(1, 1000)); ok {
			log.Fatalf("moving x_%d improves the objective", j+1)
		}
		if err := verify.CrossCheck(p, res, 1e-9); err != nil {
			log.Fatal(err)
		}
		fmt.Println("verified")
	}

	if *save != "" {
		f, err := instance.FromProblem(original)
		if err != nil {
			log.Fatal(err)
		}
		if err := f.WriteFile(*save); err != nil {
			log.Fatal(err)
		}
	}
}
