package rho

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
	"math/rand"
	"strings"

	"github.com/dchest/siphash"

	"dlrho/internal/modarith"
)

// Branching selects the partition used by the walk's step function.
type Branching int

const (
	// HalfSplit multiplies by a when value < p/2 and by b otherwise.
	HalfSplit Branching = iota
	// Hashed is an r-adding walk keyed by SipHash of the current value.
	Hashed
)

const (
	DefaultBuckets = 16
	MinBuckets     = 2
	MaxBuckets     = 256
)

func (b Branching) String() string {
	switch b {
	case HalfSplit:
		return "half"
	case Hashed:
		return "hashed"
	default:
		return fmt.Sprintf("branching(%d)", int(b))
	}
}

func ParseBranching(s string) (Branching, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half", "halfsplit", "half-split":
		return HalfSplit, nil
	case "hashed", "hash", "radding", "r-adding":
		return Hashed, nil
	default:
		return HalfSplit, fmt.Errorf("unknown branching %q", s)
	}
}

// WalkState is one point of the walk. Value ≡ A^Alpha · B^Beta (mod P)
// holds for every state produced by a Walk.
type WalkState struct {
	Value *big.Int
	Alpha *big.Int
	Beta  *big.Int
}

func (s WalkState) Clone() WalkState {
	return WalkState{
		Value: new(big.Int).Set(s.Value),
		Alpha: new(big.Int).Set(s.Alpha),
		Beta:  new(big.Int).Set(s.Beta),
	}
}

func (s WalkState) String() string {
	return fmt.Sprintf("%s = a^%s · b^%s", s.Value, s.Alpha, s.Beta)
}

// Walk is the branching function f over one Params. A Walk is read-only
// after NewWalk and can be shared between goroutines.
type Walk struct {
	params    *Params
	branching Branching

	mp, mo modarith.ModBig
	half   *big.Int

	fp     fastParams
	fastOK bool

	// hashed partition: bucket j multiplies by a^du[j] · b^dv[j]
	k0, k1 uint64
	mul    []*big.Int
	du, dv []*big.Int
	mul64  []uint64
	du64   []uint64
	dv64   []uint64
}

// NewWalk builds the step function. For Hashed, the SipHash key and bucket
// exponents are drawn from rnd; HalfSplit consumes no randomness.
func NewWalk(p *Params, br Branching, buckets int, rnd *rand.Rand) (*Walk, error) {
	w := &Walk{
		params:    p,
		branching: br,
		mp:        modarith.ModBig{P: p.P},
		mo:        modarith.ModBig{P: p.Order},
		half:      new(big.Int).Rsh(p.P, 1),
	}
	w.fp, w.fastOK = p.fast()

	switch br {
	case HalfSplit:
	case Hashed:
		if buckets < MinBuckets || buckets > MaxBuckets {
			return nil, fmt.Errorf("%w: buckets=%d must be in [%d, %d]", ErrInvalidInput, buckets, MinBuckets, MaxBuckets)
		}
		w.k0, w.k1 = rnd.Uint64(), rnd.Uint64()
		w.mul = make([]*big.Int, buckets)
		w.du = make([]*big.Int, buckets)
		w.dv = make([]*big.Int, buckets)
		for j := 0; j < buckets; j++ {
			w.du[j] = new(big.Int).Rand(rnd, p.Order)
			w.dv[j] = new(big.Int).Rand(rnd, p.Order)
			w.mul[j] = w.mp.Mul(modarith.ModPow(p.A, w.du[j], p.P), modarith.ModPow(p.B, w.dv[j], p.P))
		}
		if w.fastOK {
			w.mul64 = make([]uint64, buckets)
			w.du64 = make([]uint64, buckets)
			w.dv64 = make([]uint64, buckets)
			for j := 0; j < buckets; j++ {
				w.mul64[j] = w.mul[j].Uint64()
				w.du64[j] = w.du[j].Uint64()
				w.dv64[j] = w.dv[j].Uint64()
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown branching %d", ErrInvalidInput, int(br))
	}
	return w, nil
}

// Fast reports whether searches on this walk use uint64 arithmetic.
func (w *Walk) Fast() bool { return w.fastOK }

// Start draws alpha and beta uniformly from [0, order) and returns the
// matching state a^alpha · b^beta.
func (w *Walk) Start(rnd *rand.Rand) WalkState {
	p := w.params
	alpha := new(big.Int).Rand(rnd, p.Order)
	beta := new(big.Int).Rand(rnd, p.Order)
	return w.StateAt(alpha, beta)
}

// StateAt builds the state for explicit exponents, reduced mod order.
func (w *Walk) StateAt(alpha, beta *big.Int) WalkState {
	p := w.params
	al, be := w.mo.Norm(alpha), w.mo.Norm(beta)
	v := w.mp.Mul(modarith.ModPow(p.A, al, p.P), modarith.ModPow(p.B, be, p.P))
	return WalkState{Value: v, Alpha: al, Beta: be}
}

// Step applies f once and returns a new state; s is not modified.
func (w *Walk) Step(s WalkState) WalkState {
	n := s.Clone()
	w.stepBig(&n)
	return n
}

func (w *Walk) stepBig(s *WalkState) {
	p := w.params
	if w.branching == Hashed {
		j := w.bucket(s.Value.Bytes())
		s.Value.Mul(s.Value, w.mul[j]).Mod(s.Value, p.P)
		s.Alpha.Add(s.Alpha, w.du[j]).Mod(s.Alpha, p.Order)
		s.Beta.Add(s.Beta, w.dv[j]).Mod(s.Beta, p.Order)
		return
	}
	if s.Value.Cmp(w.half) < 0 {
		s.Value.Mul(s.Value, p.A).Mod(s.Value, p.P)
		s.Alpha.Add(s.Alpha, one).Mod(s.Alpha, p.Order)
		return
	}
	s.Value.Mul(s.Value, p.B).Mod(s.Value, p.P)
	s.Beta.Add(s.Beta, one).Mod(s.Beta, p.Order)
}

func (w *Walk) bucket(b []byte) int {
	return int(siphash.Hash(w.k0, w.k1, b) % uint64(len(w.mul)))
}

// ------------------- uint64 fast path -------------------

type fastState struct{ v, al, be uint64 }

func toFast(s WalkState) fastState {
	return fastState{v: s.Value.Uint64(), al: s.Alpha.Uint64(), be: s.Beta.Uint64()}
}

func (f fastState) state() WalkState {
	return WalkState{
		Value: new(big.Int).SetUint64(f.v),
		Alpha: new(big.Int).SetUint64(f.al),
		Beta:  new(big.Int).SetUint64(f.be),
	}
}

func (w *Walk) stepFast(s *fastState) {
	fp := &w.fp
	if w.branching == Hashed {
		var buf [8]byte
		j := w.bucket(minimalBytes(s.v, &buf))
		s.v = fp.m.Mul(s.v, w.mul64[j])
		s.al = fp.order.Add(s.al, w.du64[j])
		s.be = fp.order.Add(s.be, w.dv64[j])
		return
	}
	if s.v < fp.half {
		s.v = fp.m.Mul(s.v, fp.a)
		s.al = fp.order.Add(s.al, 1%fp.order.P)
		return
	}
	s.v = fp.m.Mul(s.v, fp.b)
	s.be = fp.order.Add(s.be, 1%fp.order.P)
}

// minimalBytes is the big-endian encoding without leading zeros, the same
// bytes big.Int.Bytes returns, so both paths hash identically.
func minimalBytes(v uint64, buf *[8]byte) []byte {
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[bits.LeadingZeros64(v)/8:]
}
