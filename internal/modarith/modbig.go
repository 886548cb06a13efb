package modarith

import "math/big"

var (
	b0 = big.NewInt(0)
	b1 = big.NewInt(1)
)

// ModBig is arithmetic modulo P over big.Int. Every result is a fresh
// value in [0, P).
type ModBig struct {
	P *big.Int
}

func (m ModBig) Norm(a *big.Int) *big.Int {
	var r big.Int
	// big.Int.Mod is Euclidean, the result is already non-negative
	r.Mod(a, m.P)
	return &r
}

func (m ModBig) Add(a, b *big.Int) *big.Int {
	var r big.Int
	r.Add(a, b)
	r.Mod(&r, m.P)
	return &r
}

func (m ModBig) Sub(a, b *big.Int) *big.Int {
	var r big.Int
	r.Sub(a, b)
	r.Mod(&r, m.P)
	return &r
}

func (m ModBig) Mul(a, b *big.Int) *big.Int {
	var r big.Int
	r.Mul(a, b)
	r.Mod(&r, m.P)
	return &r
}

func (m ModBig) Pow(a, e *big.Int) *big.Int { return ModPow(a, e, m.P) }

// FitsFast reports whether z can be handled by Mod64, returning it as uint64.
func FitsFast(z *big.Int) (uint64, bool) {
	if z.Sign() < 0 || z.BitLen() > 63 {
		return 0, false
	}
	return z.Uint64(), true
}
