// Package rho solves a^x ≡ b (mod p) with Pollard's rho method: a branching
// walk over the group run as a tortoise and a hare until their values
// collide, then a linear congruence solved modulo the group order whose roots
// are verified by direct exponentiation.
package rho

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultAttempts = 4

// Options configures a Solver. Zero values of MaxIterations, Attempts,
// Workers and Buckets select the defaults; TraceRounds is taken as given.
type Options struct {
	MaxIterations int
	TraceRounds   int
	Attempts      int
	Workers       int
	Branching     Branching
	Buckets       int

	// Rand seeds every attempt. A fixed seed replays a solve exactly.
	Rand   *rand.Rand
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		TraceRounds:   DefaultTraceRounds,
		Attempts:      DefaultAttempts,
		Workers:       1,
		Branching:     HalfSplit,
		Buckets:       DefaultBuckets,
	}
}

type Solver struct {
	opts Options
	log  *slog.Logger
}

func NewSolver(opts Options) (*Solver, error) {
	if opts.MaxIterations < 0 || opts.Attempts < 0 || opts.Workers < 0 || opts.TraceRounds < 0 {
		return nil, fmt.Errorf("%w: negative solver option", ErrInvalidInput)
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Attempts == 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	if opts.Buckets == 0 {
		opts.Buckets = DefaultBuckets
	}
	switch opts.Branching {
	case HalfSplit:
	case Hashed:
		if opts.Buckets < MinBuckets || opts.Buckets > MaxBuckets {
			return nil, fmt.Errorf("%w: buckets=%d must be in [%d, %d]", ErrInvalidInput, opts.Buckets, MinBuckets, MaxBuckets)
		}
	default:
		return nil, fmt.Errorf("%w: unknown branching %d", ErrInvalidInput, int(opts.Branching))
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Solver{opts: opts, log: opts.Logger.With(slog.String("component", "rho"))}, nil
}

// Solve is NewSolver followed by Solver.Solve.
func Solve(ctx context.Context, p *Params, opts Options) (*Report, error) {
	s, err := NewSolver(opts)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, p)
}

// Solve runs up to Attempts independent walks and returns the smallest
// verified root found by the first successful one. The report is returned
// on every outcome; err is nil only for OutcomeSolved.
func (s *Solver) Solve(ctx context.Context, p *Params) (*Report, error) {
	t0 := time.Now()
	rep := &Report{
		ID:            uuid.New().String(),
		Params:        p,
		MaxIterations: s.opts.MaxIterations,
		Branching:     s.opts.Branching,
		Buckets:       s.opts.Buckets,
	}
	log := s.log.With(slog.String("id", rep.ID))
	log.Info("solving", "equation", p.Equation(), "order", p.Order, "attempts", s.opts.Attempts, "branching", s.opts.Branching)
	if p.OrderSupplied && !p.OrderConsistent() {
		log.Warn("order is not the order of a; roots may fail verification", "order", p.Order)
	}

	if p.Order.Cmp(one) == 0 {
		err := trivial(p)
		if err == nil {
			rep.X = new(big.Int)
		}
		return s.finish(rep, t0, err)
	}

	seeds := make([]int64, s.opts.Attempts)
	for i := range seeds {
		seeds[i] = s.opts.Rand.Int63()
	}
	rep.Attempts = make([]*Attempt, len(seeds))

	if s.opts.Workers <= 1 || len(seeds) == 1 {
		for i, seed := range seeds {
			a := s.attempt(ctx, log, p, i, seed)
			rep.Attempts[i] = a
			if a.Err == nil || ctx.Err() != nil {
				rep.Attempts = rep.Attempts[:i+1]
				break
			}
		}
	} else {
		s.parallel(ctx, log, p, seeds, rep)
	}
	return s.finish(rep, t0, pick(ctx, rep))
}

// parallel runs the attempts on Workers goroutines. A success cancels only
// the attempts after it; earlier ones run to completion, so the report is
// the one a sequential run with the same seeds produces.
func (s *Solver) parallel(ctx context.Context, log *slog.Logger, p *Params, seeds []int64, rep *Report) {
	ctxs := make([]context.Context, len(seeds))
	cancels := make([]context.CancelFunc, len(seeds))
	for i := range seeds {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	var mu sync.Mutex
	first := len(seeds) // lowest successful index so far
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, seed := range seeds {
		g.Go(func() error {
			a := s.attempt(ctxs[i], log, p, i, seed)
			rep.Attempts[i] = a
			if a.Err == nil {
				mu.Lock()
				if i < first {
					for j := i + 1; j < first; j++ {
						cancels[j]()
					}
					first = i
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if first < len(seeds) {
		rep.Attempts = rep.Attempts[:first+1]
	}
}

// pick selects the lowest-index success, else the most advanced failure.
func pick(ctx context.Context, rep *Report) error {
	var best error
	for _, a := range rep.Attempts {
		if a == nil {
			continue
		}
		if a.Err == nil {
			rep.X = a.Resolution.X
			return nil
		}
		if best == nil || rank(a.Err) > rank(best) {
			best = a.Err
		}
	}
	if err := ctx.Err(); err != nil && rank(best) == 0 {
		return err
	}
	if best == nil {
		return ErrNoCollision
	}
	return best
}

func (s *Solver) finish(rep *Report, t0 time.Time, err error) (*Report, error) {
	rep.Err = err
	rep.Outcome = Classify(err)
	rep.Elapsed = time.Since(t0)
	if err != nil {
		s.log.Info("no solution", "id", rep.ID, "outcome", rep.Outcome, "err", err, "elapsed", rep.Elapsed)
		return rep, err
	}
	s.log.Info("solved", "id", rep.ID, "x", rep.X, "elapsed", rep.Elapsed)
	return rep, nil
}

// trivial handles order 1: the only exponent is 0.
func trivial(p *Params) error {
	if p.Verify(new(big.Int)) {
		return nil
	}
	return fmt.Errorf("%w: b=%s", ErrTrivialGroup, p.B)
}

func (s *Solver) attempt(ctx context.Context, log *slog.Logger, p *Params, i int, seed int64) *Attempt {
	t0 := time.Now()
	a := &Attempt{Index: i, Seed: seed}
	defer func() { a.Elapsed = time.Since(t0) }()
	log = log.With(slog.Int("attempt", i))

	if err := ctx.Err(); err != nil {
		a.Err = err
		return a
	}

	rnd := rand.New(rand.NewSource(seed))
	walk, err := NewWalk(p, s.opts.Branching, s.opts.Buckets, rnd)
	if err != nil {
		a.Err = err
		return a
	}
	a.Fast = walk.Fast()
	a.Start = walk.Start(rnd)
	log.Debug("start", "seed", seed, "state", a.Start, "fast", a.Fast)

	col, trace, err := walk.Find(ctx, a.Start, s.opts.MaxIterations, s.opts.TraceRounds)
	a.Trace = trace
	for _, r := range trace {
		log.Debug("round", "n", r.N, "slow", r.Slow, "fast", r.Fast)
	}
	if err != nil {
		a.Err = err
		log.Debug("walk ended", "err", err)
		return a
	}
	a.Collision = col
	if col.Trivial() {
		log.Debug("degenerate collision", "round", col.Round, "state", col.Slow)
	}
	cong := CongruenceOf(p, col)
	log.Debug("collision", "round", col.Round, "value", col.Slow.Value,
		"slow", col.Slow, "fast", col.Fast, "congruence", cong)

	res, err := Resolve(p, cong)
	a.Resolution = res
	a.Err = err
	if err != nil {
		log.Debug("resolve failed", "err", err)
		return a
	}
	log.Debug("resolved", "candidates", len(res.Candidates), "verified", len(res.Verified), "x", res.X)
	return a
}
