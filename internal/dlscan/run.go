// Package dlscan is the command layer over rho: configuration, logging,
// result artifacts and exit codes.
package dlscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"dlrho/internal/modarith"
	"dlrho/internal/rho"
)

// Exit codes of the dlog command.
const (
	ExitSolved   = 0
	ExitFailure  = 1 // invalid input, I/O
	ExitNotFound = 2
)

// ExitCode maps an error returned by Run or Verify to a process status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSolved
	case errors.Is(err, rho.ErrInvalidInput):
		return ExitFailure
	case errors.Is(err, rho.ErrNoCollision),
		errors.Is(err, rho.ErrUnsolvable),
		errors.Is(err, rho.ErrNoVerifiedSolution),
		errors.Is(err, ErrMismatch),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// NewLogger returns a text slog logger on w at the named level.
func NewLogger(w io.Writer, verbosity string) (*slog.Logger, error) {
	lvl, err := parseLevel(verbosity)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: bad verbosity %q", rho.ErrInvalidInput, s)
	}
	return lvl, nil
}

// Run solves the instance described by cfg and writes the result artifact
// to cfg.Out (stdout for "-"). Logs go to stderr. The report is returned
// whenever the solver ran; the error is the solve outcome unless writing
// the artifact failed.
func Run(ctx context.Context, cfg *Config, stdout, stderr io.Writer) (*rho.Report, error) {
	log, err := NewLogger(stderr, cfg.Verbosity)
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cm, err := parseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.Rand = rand.New(rand.NewSource(seed))
	opts.Logger = log
	log.Debug("config", "seed", seed, "fast", params.P.BitLen() <= 63 && params.Order.BitLen() <= 63, "timeout", timeout)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	solver, err := rho.NewSolver(opts)
	if err != nil {
		return nil, err
	}
	w, closeOut, err := openOutput(cfg.Out, stdout)
	if err != nil {
		return nil, err
	}
	rep, solveErr := solver.Solve(ctx, params)
	if err := WriteReport(w, rep, format, useColor(cm, w)); err != nil {
		closeOut()
		return rep, fmt.Errorf("write result: %w", err)
	}
	if err := closeOut(); err != nil {
		return rep, fmt.Errorf("write result: %w", err)
	}
	return rep, solveErr
}

// The worked instance from the manual: 10^20 ≡ 64 (mod 107) in the
// subgroup of order 53.
const (
	ExampleP     = "107"
	ExampleA     = "10"
	ExampleB     = "64"
	ExampleOrder = "53"
	ExampleX     = "20"
)

// RunExample solves the manual's instance with the search and output
// settings of cfg, and fails unless it finds ExampleX.
func RunExample(ctx context.Context, cfg *Config, stdout, stderr io.Writer) (*rho.Report, error) {
	c := *cfg
	c.P, c.A, c.B, c.Order = ExampleP, ExampleA, ExampleB, ExampleOrder
	rep, err := Run(ctx, &c, stdout, stderr)
	if err != nil {
		return rep, err
	}
	if rep.X.String() != ExampleX {
		return rep, fmt.Errorf("%w: example gave x=%s, want %s", rho.ErrInternal, rep.X, ExampleX)
	}
	return rep, nil
}

// ErrMismatch is returned by Verify when a^x mod p differs from b.
var ErrMismatch = errors.New("a^x mod p does not equal b")

// Verify checks a claimed exponent against the instance in cfg and prints
// the computation to w.
func Verify(cfg *Config, x string, w io.Writer) error {
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	xv, err := parseBig(x, "x")
	if err != nil {
		return err
	}
	if xv.Sign() < 0 {
		return fmt.Errorf("%w: x=%s must be non-negative", rho.ErrInvalidInput, xv)
	}
	got := modarith.ModPow(params.A, xv, params.P)
	fmt.Fprintf(w, "%s^%s mod %s = %s\n", params.A, xv, params.P, got)
	if !params.Verify(xv) {
		fmt.Fprintf(w, "mismatch: expected %s\n", params.B)
		return fmt.Errorf("%w: got %s, want %s", ErrMismatch, got, params.B)
	}
	reduced := new(big.Int).Mod(xv, params.Order)
	fmt.Fprintf(w, "ok (x mod %s = %s)\n", params.Order, reduced)
	return nil
}
