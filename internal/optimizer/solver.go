package optimizer

import (
	"sort"
	"time"
)

// DefaultTimeBudget bounds a solve when the caller does not set one.
const DefaultTimeBudget = 10 * time.Second

// DefaultNodeLimit is the work limit an Engine applies when none is configured.
const DefaultNodeLimit int64 = 2_000_000

const defaultCheckEvery = 1024

// Status is the outcome of a solve.
type Status string

const (
	StatusOptimal             Status = "OPTIMAL"
	StatusFeasible            Status = "FEASIBLE"
	StatusInfeasible          Status = "INFEASIBLE"
	StatusExhaustedNoSolution Status = "EXHAUSTED_NO_SOLUTION"
)

// HasSolution reports whether the status carries an assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// StopReason tells why a search ended before proving optimality.
type StopReason string

const (
	StopNone       StopReason = ""
	StopNodeLimit  StopReason = "node_limit"
	StopTimeBudget StopReason = "time_budget"
)

// SolveOptions configures a single search.
//
// NodeLimit caps the number of explored nodes (0 means no cap). It is checked
// before the wall clock, so two runs that stop on the node limit return the
// same incumbent on any machine. TimeBudget stays as a safety net and a run
// stopped by it may differ between machines.
type SolveOptions struct {
	TimeBudget time.Duration
	NodeLimit  int64

	clock      func() time.Time
	checkEvery int64
}

// Result is the raw solver output indexed by variable.
type Result struct {
	Status    Status
	Objective int64
	Values    []bool
	Nodes     int64
	Elapsed   time.Duration
	Stopped   StopReason
}

type linear struct {
	terms []Term
	bound int64
}

type varRef struct {
	con  int
	coef int64
}

const (
	unassigned int8 = iota - 1
	valueFalse
	valueTrue
)

type searcher struct {
	weights  []int64
	cons     []linear
	varCons  [][]varRef
	slotVars [][]int
	slots    int

	lhs          []int64
	negRemaining []int64
	assigned     []int8
	current      int64

	best       int64
	bestValues []bool
	haveBest   bool

	nodes      int64
	nodeLimit  int64
	clock      func() time.Time
	deadline   time.Time
	checkEvery int64
	stopped    StopReason
}

// Solve runs branch-and-bound over the model's boolean variables and maximises
// the weighted sum subject to every coverage and soft-cap constraint.
//
// The search picks the unassigned variable whose slot has the least remaining
// capacity (ties: higher weight, then lower index) and prunes a node when a
// constraint is already violated or when its upper bound cannot beat the
// incumbent. The bound is the current weight plus, per slot, the best positive
// weights of still-placeable variables up to the slot's remaining capacity.
func Solve(model *Model, weights []int64, opts SolveOptions) Result {
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if opts.clock == nil {
		opts.clock = time.Now
	}
	if opts.checkEvery <= 0 {
		opts.checkEvery = defaultCheckEvery
	}
	start := opts.clock()

	s := newSearcher(model, weights)
	s.clock = opts.clock
	s.deadline = start.Add(opts.TimeBudget)
	s.checkEvery = opts.checkEvery
	s.nodeLimit = opts.NodeLimit

	if s.rootFeasible() {
		if s.emptyFeasible() {
			s.best = 0
			s.bestValues = make([]bool, len(weights))
			s.haveBest = true
		}
		s.search()
	}

	res := Result{Nodes: s.nodes, Elapsed: opts.clock().Sub(start), Stopped: s.stopped}
	switch {
	case s.haveBest && s.stopped != StopNone:
		res.Status = StatusFeasible
	case s.haveBest:
		res.Status = StatusOptimal
	case s.stopped != StopNone:
		res.Status = StatusExhaustedNoSolution
	default:
		res.Status = StatusInfeasible
	}
	if s.haveBest {
		res.Objective = s.best
		res.Values = s.bestValues
	}
	return res
}

func newSearcher(model *Model, weights []int64) *searcher {
	n := len(model.Variables)
	s := &searcher{
		weights:  weights,
		varCons:  make([][]varRef, n),
		slots:    len(model.Coverage),
		assigned: make([]int8, n),
	}

	for _, cov := range model.Coverage {
		terms := make([]Term, 0, len(cov.Vars))
		for _, idx := range cov.Vars {
			terms = append(terms, Term{Var: idx, Coef: 1})
		}
		s.cons = append(s.cons, linear{terms: terms, bound: cov.Capacity})
	}
	for _, sc := range model.SoftCaps {
		s.cons = append(s.cons, linear{terms: sc.Terms, bound: sc.Limit})
	}

	s.lhs = make([]int64, len(s.cons))
	s.negRemaining = make([]int64, len(s.cons))
	for ci, con := range s.cons {
		for _, t := range con.terms {
			s.varCons[t.Var] = append(s.varCons[t.Var], varRef{con: ci, coef: t.Coef})
			if t.Coef < 0 {
				s.negRemaining[ci] += t.Coef
			}
		}
	}

	s.slotVars = make([][]int, s.slots)
	for ci, cov := range model.Coverage {
		vars := append([]int(nil), cov.Vars...)
		sort.SliceStable(vars, func(i, j int) bool {
			if weights[vars[i]] == weights[vars[j]] {
				return vars[i] < vars[j]
			}
			return weights[vars[i]] > weights[vars[j]]
		})
		s.slotVars[ci] = vars
	}

	for i := range s.assigned {
		s.assigned[i] = unassigned
	}
	return s
}

// rootFeasible rejects models where some constraint cannot hold for any assignment.
func (s *searcher) rootFeasible() bool {
	for ci, con := range s.cons {
		if s.lhs[ci]+s.negRemaining[ci] > con.bound {
			return false
		}
	}
	return true
}

func (s *searcher) emptyFeasible() bool {
	for _, con := range s.cons {
		if con.bound < 0 {
			return false
		}
	}
	return true
}

func (s *searcher) search() {
	if s.stopped != StopNone {
		return
	}
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		s.stopped = StopNodeLimit
		return
	}
	s.nodes++
	if s.nodes%s.checkEvery == 0 && s.clock().After(s.deadline) {
		s.stopped = StopTimeBudget
		return
	}

	bound, pick := s.scan()
	if s.haveBest && bound <= s.best {
		return
	}
	if pick < 0 {
		s.record()
		return
	}
	if bound == s.current && s.completionFeasible() {
		// Nothing placeable can add weight; all-false is the best leaf below here.
		s.record()
		return
	}

	first, second := true, false
	if s.weights[pick] <= 0 {
		first, second = false, true
	}
	for _, val := range [2]bool{first, second} {
		if s.assign(pick, val) {
			s.search()
		}
		s.unassign(pick, val)
		if s.stopped != StopNone {
			return
		}
	}
}

// scan returns the node's upper bound and the next branching variable (-1 when none).
func (s *searcher) scan() (int64, int) {
	bound := s.current
	pick := -1
	var pickCap, pickWeight int64

	for slot := 0; slot < s.slots; slot++ {
		remaining := s.cons[slot].bound - s.lhs[slot]
		var taken int64
		for _, idx := range s.slotVars[slot] {
			if s.assigned[idx] != unassigned {
				continue
			}
			w := s.weights[idx]
			if pick < 0 || remaining < pickCap ||
				(remaining == pickCap && (w > pickWeight || (w == pickWeight && idx < pick))) {
				pick, pickCap, pickWeight = idx, remaining, w
			}
			if w > 0 && taken < remaining && s.placeable(idx) {
				bound += w
				taken++
			}
		}
	}
	return bound, pick
}

func (s *searcher) placeable(idx int) bool {
	for _, ref := range s.varCons[idx] {
		if ref.coef <= 0 {
			continue
		}
		if s.lhs[ref.con]+ref.coef+s.negRemaining[ref.con] > s.cons[ref.con].bound {
			return false
		}
	}
	return true
}

func (s *searcher) completionFeasible() bool {
	for ci, con := range s.cons {
		if s.lhs[ci] > con.bound {
			return false
		}
	}
	return true
}

func (s *searcher) assign(idx int, val bool) bool {
	if val {
		s.assigned[idx] = valueTrue
		s.current += s.weights[idx]
	} else {
		s.assigned[idx] = valueFalse
	}
	ok := true
	for _, ref := range s.varCons[idx] {
		if ref.coef < 0 {
			s.negRemaining[ref.con] -= ref.coef
		}
		if val {
			s.lhs[ref.con] += ref.coef
		}
		if s.lhs[ref.con]+s.negRemaining[ref.con] > s.cons[ref.con].bound {
			ok = false
		}
	}
	return ok
}

func (s *searcher) unassign(idx int, val bool) {
	for _, ref := range s.varCons[idx] {
		if ref.coef < 0 {
			s.negRemaining[ref.con] += ref.coef
		}
		if val {
			s.lhs[ref.con] -= ref.coef
		}
	}
	if val {
		s.current -= s.weights[idx]
	}
	s.assigned[idx] = unassigned
}

func (s *searcher) record() {
	if s.haveBest && s.current <= s.best {
		return
	}
	values := make([]bool, len(s.assigned))
	for i, a := range s.assigned {
		values[i] = a == valueTrue
	}
	s.best = s.current
	s.bestValues = values
	s.haveBest = true
}
