package rho

import (
	"math/big"
	"time"
)

// Attempt records one randomized walk: its seed, the traced rounds, the
// collision and how the resolver handled it.
type Attempt struct {
	Index int
	Seed  int64
	Fast  bool

	Start      WalkState
	Trace      []Round
	Collision  *Collision
	Resolution *Resolution

	Err     error
	Elapsed time.Duration
}

// Outcome of this attempt alone.
func (a *Attempt) Outcome() Outcome { return Classify(a.Err) }

// Report is the result of Solver.Solve. X is set only when Outcome is
// OutcomeSolved, and it always satisfies A^X ≡ B (mod P).
type Report struct {
	ID     string
	Params *Params

	MaxIterations int
	Branching     Branching
	Buckets       int

	Attempts []*Attempt
	X        *big.Int
	Outcome  Outcome
	Err      error
	Elapsed  time.Duration
}

// Winner returns the attempt that produced X, or nil.
func (r *Report) Winner() *Attempt {
	if r.X == nil {
		return nil
	}
	for _, a := range r.Attempts {
		if a != nil && a.Err == nil && a.Resolution != nil && a.Resolution.X != nil && a.Resolution.X.Cmp(r.X) == 0 {
			return a
		}
	}
	return nil
}

// Rounds is the total number of walk rounds across attempts that found a
// collision or exhausted their budget.
func (r *Report) Rounds() int {
	n := 0
	for _, a := range r.Attempts {
		if a == nil {
			continue
		}
		switch {
		case a.Collision != nil:
			n += a.Collision.Round
		case a.Outcome() == OutcomeNoCollision:
			n += r.MaxIterations
		}
	}
	return n
}
