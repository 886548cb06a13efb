package rho

import (
	"context"
	"fmt"
)

const (
	DefaultMaxIterations = 10000
	DefaultTraceRounds   = 5

	// rounds between context checks
	pollEvery = 1024
)

// Round is a snapshot of both pointers after round N.
type Round struct {
	N    int
	Slow WalkState
	Fast WalkState
}

// Collision is a round where the tortoise and the hare hold equal values.
// Their (alpha, beta) pairs generally differ.
type Collision struct {
	Round int
	Slow  WalkState
	Fast  WalkState
}

// Trivial reports whether both pointers carry identical exponents, which
// yields the empty congruence 0·x ≡ 0.
func (c *Collision) Trivial() bool {
	return c.Slow.Alpha.Cmp(c.Fast.Alpha) == 0 && c.Slow.Beta.Cmp(c.Fast.Beta) == 0
}

// Find runs Floyd's cycle detection from start: each round the slow pointer
// takes one step and the fast pointer two, for at most maxIter rounds.
// The first traceRounds rounds are returned for diagnostics. When no
// collision occurs within the budget the error is ErrNoCollision.
func (w *Walk) Find(ctx context.Context, start WalkState, maxIter, traceRounds int) (*Collision, []Round, error) {
	if maxIter <= 0 {
		return nil, nil, fmt.Errorf("%w: max iterations=%d must be positive", ErrInvalidInput, maxIter)
	}
	if w.fastOK {
		return w.findFast(ctx, start, maxIter, traceRounds)
	}
	return w.findBig(ctx, start, maxIter, traceRounds)
}

func (w *Walk) findFast(ctx context.Context, start WalkState, maxIter, traceRounds int) (*Collision, []Round, error) {
	slow := toFast(start)
	fast := slow
	var trace []Round
	for round := 1; round <= maxIter; round++ {
		if round%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, trace, err
			}
		}
		w.stepFast(&slow)
		w.stepFast(&fast)
		w.stepFast(&fast)

		if round <= traceRounds {
			trace = append(trace, Round{N: round, Slow: slow.state(), Fast: fast.state()})
		}
		if slow.v == fast.v {
			return &Collision{Round: round, Slow: slow.state(), Fast: fast.state()}, trace, nil
		}
	}
	return nil, trace, fmt.Errorf("%w (%d rounds)", ErrNoCollision, maxIter)
}

func (w *Walk) findBig(ctx context.Context, start WalkState, maxIter, traceRounds int) (*Collision, []Round, error) {
	slow := start.Clone()
	fast := start.Clone()
	var trace []Round
	for round := 1; round <= maxIter; round++ {
		if round%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, trace, err
			}
		}
		w.stepBig(&slow)
		w.stepBig(&fast)
		w.stepBig(&fast)

		if round <= traceRounds {
			trace = append(trace, Round{N: round, Slow: slow.Clone(), Fast: fast.Clone()})
		}
		if slow.Value.Cmp(fast.Value) == 0 {
			return &Collision{Round: round, Slow: slow, Fast: fast}, trace, nil
		}
	}
	return nil, trace, fmt.Errorf("%w (%d rounds)", ErrNoCollision, maxIter)
}
