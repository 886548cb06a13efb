// Package modarith holds the modular arithmetic used by the rho solver:
// extended Euclid, modular inverses and exponentiation over big.Int, plus
// a uint64 ring for moduli below 2^63.
package modarith

import "math/big"

// ExtendedGCD returns g = gcd(x, y) together with Bézout coefficients s, t
// such that s*x + t*y = g. ExtendedGCD(0, y) is (y, 0, 1).
func ExtendedGCD(x, y *big.Int) (g, s, t *big.Int) {
	if x.Sign() == 0 {
		return new(big.Int).Set(y), big.NewInt(0), big.NewInt(1)
	}
	// invariants: r0 = s0*x + t0*y, r1 = s1*x + t1*y
	r0, r1 := new(big.Int).Set(x), new(big.Int).Set(y)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)
	var q, tmp big.Int
	for r1.Sign() != 0 {
		q.Quo(r0, r1)

		tmp.Mul(&q, r1)
		r0.Sub(r0, &tmp)
		r0, r1 = r1, r0

		tmp.Mul(&q, s1)
		s0.Sub(s0, &tmp)
		s0, s1 = s1, s0

		tmp.Mul(&q, t1)
		t0.Sub(t0, &tmp)
		t0, t1 = t1, t0
	}
	if r0.Sign() < 0 {
		r0.Neg(r0)
		s0.Neg(s0)
		t0.Neg(t0)
	}
	return r0, s0, t0
}

// ModInverse returns y in [0, m) with x*y ≡ 1 (mod m). The boolean is false
// when gcd(x, m) != 1.
func ModInverse(x, m *big.Int) (*big.Int, bool) {
	if m.Sign() <= 0 {
		return nil, false
	}
	xm := new(big.Int).Mod(x, m)
	g, s, _ := ExtendedGCD(xm, m)
	if g.Cmp(b1) != 0 {
		return nil, false
	}
	return s.Mod(s, m), true
}

// ModPow returns base^exp mod m for exp >= 0 using iterative
// square-and-multiply. It panics on a negative exponent or a non-positive
// modulus.
func ModPow(base, exp, m *big.Int) *big.Int {
	if exp.Sign() < 0 {
		panic("modarith: negative exponent")
	}
	if m.Sign() <= 0 {
		panic("modarith: non-positive modulus")
	}
	res := new(big.Int)
	if m.Cmp(b1) == 0 {
		return res
	}
	res.SetInt64(1)
	acc := new(big.Int).Mod(base, m)
	for i := 0; i < exp.BitLen(); i++ {
		if exp.Bit(i) == 1 {
			res.Mul(res, acc)
			res.Mod(res, m)
		}
		acc.Mul(acc, acc)
		acc.Mod(acc, m)
	}
	return res
}

// GCD is ExtendedGCD without the coefficients.
func GCD(x, y *big.Int) *big.Int {
	g, _, _ := ExtendedGCD(x, y)
	return g
}

// IsZeroMod reports whether x ≡ 0 (mod m).
func IsZeroMod(x, m *big.Int) bool {
	return new(big.Int).Mod(x, m).Cmp(b0) == 0
}
