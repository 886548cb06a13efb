package rho

import (
	"fmt"
	"math/big"

	"dlrho/internal/modarith"
)

// MaxCandidates bounds the number of roots Resolve enumerates.
const MaxCandidates = 1 << 20

var maxCandidates = big.NewInt(MaxCandidates)

// Congruence is A·x ≡ B (mod Modulus).
type Congruence struct {
	A       *big.Int
	B       *big.Int
	Modulus *big.Int
}

func (c Congruence) String() string {
	return fmt.Sprintf("%s·x ≡ %s (mod %s)", c.A, c.B, c.Modulus)
}

// CongruenceOf derives the congruence from a collision:
// slow: a^αs·b^βs = fast: a^αf·b^βf gives (βf-βs)·x ≡ (αs-αf) (mod order).
func CongruenceOf(p *Params, c *Collision) Congruence {
	mo := modarith.ModBig{P: p.Order}
	return Congruence{
		A:       mo.Sub(c.Fast.Beta, c.Slow.Beta),
		B:       mo.Sub(c.Slow.Alpha, c.Fast.Alpha),
		Modulus: new(big.Int).Set(p.Order),
	}
}

// Resolution is the full working of the resolver for one congruence.
// Fields after Congruence are only set once the matching step was reached.
type Resolution struct {
	Congruence Congruence
	GCD        *big.Int
	Reduced    *Congruence
	Inverse    *big.Int
	Base       *big.Int
	Candidates []*big.Int
	Verified   []*big.Int

	// X is the smallest verified candidate, nil when none verified.
	X *big.Int
}

// Resolve solves c and checks every root against a^x ≡ b (mod p). The
// returned Resolution is non-nil even on error so callers can report how far
// resolution got.
func Resolve(p *Params, c Congruence) (*Resolution, error) {
	res := &Resolution{Congruence: c}
	m := c.Modulus
	A := new(big.Int).Mod(c.A, m)
	B := new(big.Int).Mod(c.B, m)

	if A.Sign() == 0 {
		if B.Sign() == 0 {
			return res, ErrDegenerateCollision
		}
		return res, fmt.Errorf("%w: 0·x ≡ %s (mod %s)", ErrInconsistentCollision, B, m)
	}

	g := modarith.GCD(A, m)
	res.GCD = g
	if !modarith.IsZeroMod(B, g) {
		return res, fmt.Errorf("%w: gcd %s does not divide %s", ErrGCDNotDividing, g, B)
	}
	if g.Cmp(maxCandidates) > 0 {
		return res, fmt.Errorf("%w: gcd %s", ErrTooManyCandidates, g)
	}

	red := Congruence{
		A:       new(big.Int).Quo(A, g),
		B:       new(big.Int).Quo(B, g),
		Modulus: new(big.Int).Quo(m, g),
	}
	res.Reduced = &red

	inv, ok := modarith.ModInverse(red.A, red.Modulus)
	if !ok {
		// gcd(A/g, m/g) = 1 by construction
		return res, fmt.Errorf("%w: %s has no inverse mod %s", ErrInternal, red.A, red.Modulus)
	}
	res.Inverse = inv

	mr := modarith.ModBig{P: red.Modulus}
	x0 := mr.Mul(red.B, inv)
	res.Base = x0

	mm := modarith.ModBig{P: m}
	step := new(big.Int)
	for k := new(big.Int); k.Cmp(g) < 0; k.Add(k, one) {
		step.Mul(k, red.Modulus)
		cand := mm.Add(x0, step)
		res.Candidates = append(res.Candidates, cand)
		if p.Verify(cand) {
			res.Verified = append(res.Verified, cand)
			if res.X == nil || cand.Cmp(res.X) < 0 {
				res.X = cand
			}
		}
	}
	if res.X == nil {
		return res, fmt.Errorf("%w: %d candidate(s) for %s", ErrNoVerifiedSolution, len(res.Candidates), c)
	}
	return res, nil
}
