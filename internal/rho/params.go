package rho

import (
	"fmt"
	"math/big"

	"dlrho/internal/modarith"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Params describes one instance a^x ≡ b (mod P) in the cyclic subgroup of
// the given Order. Params is immutable once built by NewParams.
type Params struct {
	P     *big.Int
	A     *big.Int
	B     *big.Int
	Order *big.Int

	// OrderSupplied is false when Order was defaulted to P-1.
	OrderSupplied bool
}

// NewParams validates the inputs and copies them. A nil order defaults to
// p-1. Primality of p and the order being the true order of a are the
// caller's responsibility; see OrderConsistent.
func NewParams(p, a, b, order *big.Int) (*Params, error) {
	if p == nil || a == nil || b == nil {
		return nil, fmt.Errorf("%w: p, a and b are required", ErrInvalidInput)
	}
	if p.Cmp(two) <= 0 {
		return nil, fmt.Errorf("%w: modulus p=%s must be greater than 2", ErrInvalidInput, p)
	}
	if a.Sign() <= 0 || a.Cmp(p) >= 0 {
		return nil, fmt.Errorf("%w: base a=%s must be in [1, %s)", ErrInvalidInput, a, p)
	}
	if b.Sign() <= 0 || b.Cmp(p) >= 0 {
		return nil, fmt.Errorf("%w: target b=%s must be in [1, %s)", ErrInvalidInput, b, p)
	}
	prm := &Params{
		P: new(big.Int).Set(p),
		A: new(big.Int).Set(a),
		B: new(big.Int).Set(b),
	}
	if order == nil {
		prm.Order = new(big.Int).Sub(p, one)
		return prm, nil
	}
	if order.Sign() <= 0 {
		return nil, fmt.Errorf("%w: order=%s must be positive", ErrInvalidInput, order)
	}
	prm.Order = new(big.Int).Set(order)
	prm.OrderSupplied = true
	return prm, nil
}

// OrderConsistent reports whether Order divides P-1 and A^Order ≡ 1 (mod P).
// A false result does not stop a solve; it explains an unverified outcome.
func (p *Params) OrderConsistent() bool {
	pm1 := new(big.Int).Sub(p.P, one)
	if !modarith.IsZeroMod(pm1, p.Order) {
		return false
	}
	return modarith.ModPow(p.A, p.Order, p.P).Cmp(one) == 0
}

// Verify reports whether A^x ≡ B (mod P). It is pure and may be repeated.
func (p *Params) Verify(x *big.Int) bool {
	if x == nil || x.Sign() < 0 {
		return false
	}
	return modarith.ModPow(p.A, x, p.P).Cmp(p.B) == 0
}

// Equation renders the instance as "a^x ≡ b (mod p)".
func (p *Params) Equation() string {
	return fmt.Sprintf("%s^x ≡ %s (mod %s)", p.A, p.B, p.P)
}

// fast returns the uint64 view of the parameters when P and Order both fit
// below 2^63.
func (p *Params) fast() (fastParams, bool) {
	pu, ok := modarith.FitsFast(p.P)
	if !ok {
		return fastParams{}, false
	}
	ou, ok := modarith.FitsFast(p.Order)
	if !ok {
		return fastParams{}, false
	}
	return fastParams{
		m:     modarith.Mod64{P: pu},
		order: modarith.Mod64{P: ou},
		a:     p.A.Uint64(),
		b:     p.B.Uint64(),
		half:  pu >> 1,
	}, true
}

type fastParams struct {
	m     modarith.Mod64
	order modarith.Mod64
	a, b  uint64
	half  uint64
}
