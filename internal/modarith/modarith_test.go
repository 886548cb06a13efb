package modarith

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestExtendedGCDBezout(t *testing.T) {
	pairs := [][2]int64{
		{0, 0}, {0, 7}, {7, 0}, {1, 1}, {12, 18}, {18, 12},
		{240, 46}, {53, 106}, {17, 5}, {1 << 40, 6}, {1071, 462},
	}
	for _, pr := range pairs {
		x, y := bi(pr[0]), bi(pr[1])
		g, s, tt := ExtendedGCD(x, y)

		want := new(big.Int).GCD(nil, nil, x, y)
		require.Equal(t, 0, g.Cmp(want), "gcd(%d, %d): got %v want %v", pr[0], pr[1], g, want)

		lhs := new(big.Int).Mul(s, x)
		lhs.Add(lhs, new(big.Int).Mul(tt, y))
		assert.Equal(t, 0, lhs.Cmp(g), "s*x + t*y != g for (%d, %d): s=%v t=%v", pr[0], pr[1], s, tt)
	}
}

func TestExtendedGCDZeroFirst(t *testing.T) {
	g, s, tt := ExtendedGCD(bi(0), bi(9))
	assert.Equal(t, "9", g.String())
	assert.Equal(t, "0", s.String())
	assert.Equal(t, "1", tt.String())
}

func TestExtendedGCDRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	limit := new(big.Int).Lsh(bi(1), 200)
	for i := 0; i < 200; i++ {
		x := new(big.Int).Rand(rnd, limit)
		y := new(big.Int).Rand(rnd, limit)
		g, s, tt := ExtendedGCD(x, y)
		lhs := new(big.Int).Add(new(big.Int).Mul(s, x), new(big.Int).Mul(tt, y))
		require.Equal(t, 0, lhs.Cmp(g))
		require.Equal(t, 0, g.Cmp(new(big.Int).GCD(nil, nil, x, y)))
	}
}

func TestModInverse(t *testing.T) {
	for m := int64(1); m <= 60; m++ {
		M := bi(m)
		for x := int64(0); x < 2*m; x++ {
			inv, ok := ModInverse(bi(x), M)
			coprime := new(big.Int).GCD(nil, nil, bi(x), M).Cmp(bi(1)) == 0
			require.Equal(t, coprime, ok, "x=%d m=%d", x, m)
			if !ok {
				assert.Nil(t, inv)
				continue
			}
			require.True(t, inv.Sign() >= 0 && inv.Cmp(M) < 0, "inverse %v out of range for m=%d", inv, m)
			prod := new(big.Int).Mul(bi(x), inv)
			assert.Equal(t, new(big.Int).Mod(bi(1), M).String(), prod.Mod(prod, M).String(), "x=%d m=%d", x, m)
		}
	}
}

func TestModInverseKnown(t *testing.T) {
	inv, ok := ModInverse(bi(5), bi(11))
	require.True(t, ok)
	assert.Equal(t, "9", inv.String()) // 5*9 = 45 ≡ 1 mod 11

	_, ok = ModInverse(bi(6), bi(9))
	assert.False(t, ok)

	inv, ok = ModInverse(bi(-3), bi(7)) // -3 ≡ 4, 4*2 = 8 ≡ 1
	require.True(t, ok)
	assert.Equal(t, "2", inv.String())
}

func TestModPowMatchesExp(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	p := new(big.Int).Sub(new(big.Int).Lsh(bi(1), 89), bi(1))
	for i := 0; i < 100; i++ {
		base := new(big.Int).Rand(rnd, p)
		e := new(big.Int).Rand(rnd, p)
		want := new(big.Int).Exp(base, e, p)
		require.Equal(t, 0, ModPow(base, e, p).Cmp(want))
	}
}

func TestModPowEdges(t *testing.T) {
	assert.Equal(t, "1", ModPow(bi(10), bi(0), bi(107)).String())
	assert.Equal(t, "0", ModPow(bi(10), bi(5), bi(1)).String())
	assert.Equal(t, "64", ModPow(bi(10), bi(20), bi(107)).String())
	assert.Equal(t, "1", ModPow(bi(10), bi(53), bi(107)).String())
	assert.Equal(t, "6", ModPow(bi(-1), bi(1), bi(7)).String())
	assert.Panics(t, func() { ModPow(bi(2), bi(-1), bi(7)) })
}

func TestMod64AgreesWithBig(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for _, p := range []uint64{3, 107, 1019, 4294967311, 2305843009213693951} {
		m := Mod64{P: p}
		mb := ModBig{P: new(big.Int).SetUint64(p)}
		for i := 0; i < 200; i++ {
			a := rnd.Uint64() % p
			b := rnd.Uint64() % p
			A, B := new(big.Int).SetUint64(a), new(big.Int).SetUint64(b)

			require.Equal(t, mb.Add(A, B).Uint64(), m.Add(a, b), "add p=%d", p)
			require.Equal(t, mb.Sub(A, B).Uint64(), m.Sub(a, b), "sub p=%d", p)
			require.Equal(t, mb.Mul(A, B).Uint64(), m.Mul(a, b), "mul p=%d", p)
			require.Equal(t, mb.Pow(A, B).Uint64(), m.Pow(a, b), "pow p=%d", p)
		}
	}
}

func TestModBigNorm(t *testing.T) {
	m := ModBig{P: bi(11)}
	assert.Equal(t, "10", m.Norm(bi(-1)).String())
	assert.Equal(t, "9", m.Sub(bi(3), bi(5)).String())
	assert.Equal(t, "2", m.Add(bi(8), bi(5)).String())
}

func TestFitsFast(t *testing.T) {
	v, ok := FitsFast(bi(107))
	require.True(t, ok)
	assert.Equal(t, uint64(107), v)

	_, ok = FitsFast(new(big.Int).Lsh(bi(1), 63))
	assert.False(t, ok)
	_, ok = FitsFast(bi(-5))
	assert.False(t, ok)
}
