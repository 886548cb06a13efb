package rho

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned by NewParams before any search runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCollision means the iteration budget ran out. It is a normal
	// negative result; retry with a larger budget or another seed.
	ErrNoCollision = errors.New("no collision within iteration budget")

	// ErrUnsolvable groups the ways a collision can fail to yield a root.
	ErrUnsolvable = errors.New("no solution derivable from collision")

	ErrDegenerateCollision   = fmt.Errorf("%w: degenerate collision, no unique solution", ErrUnsolvable)
	ErrInconsistentCollision = fmt.Errorf("%w: inconsistent collision", ErrUnsolvable)
	ErrGCDNotDividing        = fmt.Errorf("%w: gcd does not divide constant term", ErrUnsolvable)
	ErrTrivialGroup          = fmt.Errorf("%w: trivial group only contains 1", ErrUnsolvable)
	ErrTooManyCandidates     = fmt.Errorf("%w: too many candidate roots", ErrUnsolvable)

	// ErrNoVerifiedSolution means candidates existed but none satisfied
	// a^x ≡ b (mod p); the supplied order is most likely wrong.
	ErrNoVerifiedSolution = errors.New("no verified solution (order mismatch)")

	// ErrInternal marks a broken arithmetic invariant, a bug rather than
	// a property of the input.
	ErrInternal = errors.New("internal error")
)

// Outcome classifies the result of a solve.
type Outcome int

const (
	OutcomeSolved Outcome = iota
	OutcomeNoCollision
	OutcomeUnsolvable
	OutcomeUnverified
	OutcomeCancelled
	OutcomeInvalid
	OutcomeInternal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSolved:
		return "solved"
	case OutcomeNoCollision:
		return "no-collision"
	case OutcomeUnsolvable:
		return "unsolvable"
	case OutcomeUnverified:
		return "unverified"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeInternal:
		return "internal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Found reports whether the outcome carries a verified exponent.
func (o Outcome) Found() bool { return o == OutcomeSolved }

// Classify maps an error returned by this package to its Outcome.
// A nil error is OutcomeSolved.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSolved
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, ErrNoVerifiedSolution):
		return OutcomeUnverified
	case errors.Is(err, ErrUnsolvable):
		return OutcomeUnsolvable
	case errors.Is(err, ErrNoCollision):
		return OutcomeNoCollision
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeInternal
	}
}

// rank orders failures by how far the attempt got.
func rank(err error) int {
	switch Classify(err) {
	case OutcomeUnverified:
		return 3
	case OutcomeUnsolvable:
		return 2
	case OutcomeNoCollision:
		return 1
	default:
		return 0
	}
}
