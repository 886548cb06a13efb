package modarith

import "math/bits"

// Mod64 is arithmetic modulo P for P < 2^63. Operands must already be
// reduced into [0, P).
type Mod64 struct{ P uint64 }

func (m Mod64) Add(a, b uint64) uint64 {
	c := a + b
	if c >= m.P || c < a {
		c -= m.P
	}
	return c
}

func (m Mod64) Sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + m.P - b
}

func (m Mod64) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	// hi < P because a, b < P, so Div64 cannot panic
	_, r := bits.Div64(hi, lo, m.P)
	return r
}

// Pow returns a^e mod P by right-to-left square-and-multiply.
func (m Mod64) Pow(a, e uint64) uint64 {
	if m.P == 1 {
		return 0
	}
	res := uint64(1)
	base := a % m.P
	for e > 0 {
		if e&1 == 1 {
			res = m.Mul(res, base)
		}
		base = m.Mul(base, base)
		e >>= 1
	}
	return res
}
