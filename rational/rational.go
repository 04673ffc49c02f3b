// Package rational provides exact rational arithmetic with a configurable
// denominator-width policy, and the small linear-algebra primitives
// (integer offset vectors, 3x3 rational matrices) shared by every layer of
// the topological-genome core.
//
// Offsets between periodic-graph vertices are always integer (ℤ³); vertex
// positions and candidate bases are exact rationals that can pick up wide
// denominators as basis changes compose. The arithmetic itself is exact
// and unchecked; callers check values against a Budget with Check (the
// equilibrium solve and symmetry detection do), which reports
// ErrWidthExceeded instead of letting an over-wide value be used (§9).
package rational

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrDivByZero    = errors.New("rational: division by zero")
	ErrWidthExceeded = errors.New("rational: denominator exceeds configured maximum width")
	ErrSingular     = errors.New("rational: matrix is singular")
)

// Budget bounds the widening policy for exact arithmetic.
type Budget struct {
	MaxDenBits int // maximum bit length of a denominator; 0 means unlimited
}

// DefaultBudget is generous enough for space groups of order up to ~2^48.
var DefaultBudget = Budget{MaxDenBits: 48}

// Rat is an exact rational scalar. The zero value is not valid; use Zero().
// Rat is treated as immutable: every operation allocates a fresh value so
// that aliasing between operands is always safe.
type Rat struct {
	r *big.Rat
}

// Zero returns the rational 0/1.
func Zero() Rat { return Rat{r: new(big.Rat)} }

// One returns the rational 1/1.
func One() Rat { return FromInt64(1) }

// FromInt64 returns n/1.
func FromInt64(n int64) Rat { return Rat{r: new(big.Rat).SetInt64(n)} }

// FromFrac returns num/den.
func FromFrac(num, den int64) Rat { return Rat{r: new(big.Rat).SetFrac64(num, den)} }

// FromBigRat wraps an existing big.Rat (copied defensively).
func FromBigRat(v *big.Rat) Rat { return Rat{r: new(big.Rat).Set(v)} }

func (a Rat) ensure() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Big returns the underlying *big.Rat. Callers must not mutate it.
func (a Rat) Big() *big.Rat { return a.ensure() }

func (a Rat) Add(b Rat) Rat { return Rat{r: new(big.Rat).Add(a.ensure(), b.ensure())} }
func (a Rat) Sub(b Rat) Rat { return Rat{r: new(big.Rat).Sub(a.ensure(), b.ensure())} }
func (a Rat) Mul(b Rat) Rat { return Rat{r: new(big.Rat).Mul(a.ensure(), b.ensure())} }
func (a Rat) Neg() Rat      { return Rat{r: new(big.Rat).Neg(a.ensure())} }

// Quo returns a/b, or ErrDivByZero if b is zero.
func (a Rat) Quo(b Rat) (Rat, error) {
	if b.IsZero() {
		return Rat{}, ErrDivByZero
	}
	return Rat{r: new(big.Rat).Quo(a.ensure(), b.ensure())}, nil
}

func (a Rat) Cmp(b Rat) int   { return a.ensure().Cmp(b.ensure()) }
func (a Rat) IsZero() bool    { return a.ensure().Sign() == 0 }
func (a Rat) Sign() int       { return a.ensure().Sign() }
func (a Rat) IsInt() bool     { return a.ensure().IsInt() }
func (a Rat) String() string  { return a.ensure().RatString() }
func (a Rat) Num() *big.Int   { return a.ensure().Num() }
func (a Rat) Denom() *big.Int { return a.ensure().Denom() }

// Int64 returns the value truncated to an int64 numerator/denominator pair
// when it is known to be integral; ok is false otherwise.
func (a Rat) Int64() (v int64, ok bool) {
	if !a.IsInt() {
		return 0, false
	}
	if !a.Num().IsInt64() {
		return 0, false
	}
	return a.Num().Int64(), true
}

// FromVec returns the integer n as an exact rational.
func FromVec(n int64) Rat { return FromInt64(n) }

// Mod1 returns a value congruent to a modulo 1, in [0,1).
func (a Rat) Mod1() Rat {
	num := new(big.Int).Set(a.Num())
	den := a.Denom()
	// floor division: num = q*den + rem, 0 <= rem < den (den always > 0 for big.Rat)
	q := new(big.Int)
	rem := new(big.Int)
	q.DivMod(num, den, rem)
	return Rat{r: new(big.Rat).SetFrac(rem, new(big.Int).Set(den))}
}

// Check verifies a satisfies the given Budget, reporting ErrWidthExceeded
// rather than allowing the value to be used further.
func (a Rat) Check(b Budget) error {
	if b.MaxDenBits > 0 && a.Denom().BitLen() > b.MaxDenBits {
		return errors.Wrapf(ErrWidthExceeded, "denominator %s has %d bits (budget %d)", a.Denom().String(), a.Denom().BitLen(), b.MaxDenBits)
	}
	return nil
}

// Vec3 is an exact integer lattice offset/translation in ℤ³.
type Vec3 [3]int64

// ZeroVec3 is the additive identity.
var ZeroVec3 = Vec3{0, 0, 0}

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3) Neg() Vec3       { return Vec3{-v[0], -v[1], -v[2]} }
func (v Vec3) IsZero() bool    { return v[0] == 0 && v[1] == 0 && v[2] == 0 }
func (v Vec3) Dot(w Vec3) int64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cmp orders two offsets lexicographically.
func (v Vec3) Cmp(w Vec3) int {
	for i := 0; i < 3; i++ {
		if v[i] != w[i] {
			if v[i] < w[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (v Vec3) String() string { return fmt.Sprintf("%d %d %d", v[0], v[1], v[2]) }

// NumZeroCoords returns how many of the three components are zero, used by
// the Translations component to rank candidate translations (§4.4).
func (v Vec3) NumZeroCoords() int {
	n := 0
	for _, c := range v {
		if c == 0 {
			n++
		}
	}
	return n
}

// LeadingNonzeroIndex returns the index of the first nonzero coordinate, or
// 3 if the vector is zero.
func (v Vec3) LeadingNonzeroIndex() int {
	for i, c := range v {
		if c != 0 {
			return i
		}
	}
	return 3
}

// Pos3 is an exact rational point in ℚ³ (a fractional position).
type Pos3 [3]Rat

func (p Pos3) Add(q Pos3) Pos3 {
	return Pos3{p[0].Add(q[0]), p[1].Add(q[1]), p[2].Add(q[2])}
}

func (p Pos3) Sub(q Pos3) Pos3 {
	return Pos3{p[0].Sub(q[0]), p[1].Sub(q[1]), p[2].Sub(q[2])}
}

func (p Pos3) Neg() Pos3 {
	return Pos3{p[0].Neg(), p[1].Neg(), p[2].Neg()}
}

// AddVec adds an integer lattice offset to a fractional position.
func (p Pos3) AddVec(v Vec3) Pos3 {
	return Pos3{
		p[0].Add(FromInt64(v[0])),
		p[1].Add(FromInt64(v[1])),
		p[2].Add(FromInt64(v[2])),
	}
}

// Mod1 reduces every coordinate into [0,1).
func (p Pos3) Mod1() Pos3 {
	return Pos3{p[0].Mod1(), p[1].Mod1(), p[2].Mod1()}
}

// Cmp orders two positions lexicographically (used to sort CrystalNet.pos).
func (p Pos3) Cmp(q Pos3) int {
	for i := 0; i < 3; i++ {
		if c := p[i].Cmp(q[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (p Pos3) IsZero() bool {
	return p[0].IsZero() && p[1].IsZero() && p[2].IsZero()
}

func (p Pos3) String() string {
	return fmt.Sprintf("(%s, %s, %s)", p[0].String(), p[1].String(), p[2].String())
}

// Mat3 is an exact 3x3 rational matrix, stored row-major: Mat3[row][col].
type Mat3 [3][3]Rat

// Identity3 is the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		{One(), Zero(), Zero()},
		{Zero(), One(), Zero()},
		{Zero(), Zero(), One()},
	}
}

// FromColumns builds a Mat3 whose columns are the three given vectors.
func FromColumns(c0, c1, c2 Pos3) Mat3 {
	var m Mat3
	for row := 0; row < 3; row++ {
		m[row][0] = c0[row]
		m[row][1] = c1[row]
		m[row][2] = c2[row]
	}
	return m
}

// FromIntColumns builds a Mat3 from three integer offset columns.
func FromIntColumns(c0, c1, c2 Vec3) Mat3 {
	var m Mat3
	for row := 0; row < 3; row++ {
		m[row][0] = FromInt64(c0[row])
		m[row][1] = FromInt64(c1[row])
		m[row][2] = FromInt64(c2[row])
	}
	return m
}

// Col returns column i as a Pos3.
func (m Mat3) Col(i int) Pos3 {
	return Pos3{m[0][i], m[1][i], m[2][i]}
}

// MulVec returns M * v (v treated as a column vector).
func (m Mat3) MulVec(v Pos3) Pos3 {
	var out Pos3
	for row := 0; row < 3; row++ {
		sum := Zero()
		for k := 0; k < 3; k++ {
			sum = sum.Add(m[row][k].Mul(v[k]))
		}
		out[row] = sum
	}
	return out
}

// MulIntVec returns M * v for an integer offset v.
func (m Mat3) MulIntVec(v Vec3) Pos3 {
	return m.MulVec(Pos3{FromInt64(v[0]), FromInt64(v[1]), FromInt64(v[2])})
}

// Mul returns the matrix product m * n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			sum := Zero()
			for k := 0; k < 3; k++ {
				sum = sum.Add(m[row][k].Mul(n[k][col]))
			}
			out[row][col] = sum
		}
	}
	return out
}

// Det returns the exact determinant via cofactor expansion.
func (m Mat3) Det() Rat {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	ei_fh := e.Mul(i).Sub(f.Mul(h))
	di_fg := d.Mul(i).Sub(f.Mul(g))
	dh_eg := d.Mul(h).Sub(e.Mul(g))

	return a.Mul(ei_fh).Sub(b.Mul(di_fg)).Add(c.Mul(dh_eg))
}

// Inverse returns the exact inverse via the adjugate/determinant formula.
func (m Mat3) Inverse() (Mat3, error) {
	det := m.Det()
	if det.IsZero() {
		return Mat3{}, ErrSingular
	}

	cof := func(r0, r1, c0, c1 int) Rat {
		return m[r0][c0].Mul(m[r1][c1]).Sub(m[r0][c1].Mul(m[r1][c0]))
	}

	// Adjugate = transpose of cofactor matrix.
	var adj Mat3
	adj[0][0] = cof(1, 2, 1, 2)
	adj[0][1] = cof(0, 2, 1, 2).Neg()
	adj[0][2] = cof(0, 1, 1, 2)
	adj[1][0] = cof(1, 2, 0, 2).Neg()
	adj[1][1] = cof(0, 2, 0, 2)
	adj[1][2] = cof(0, 1, 0, 2).Neg()
	adj[2][0] = cof(1, 2, 0, 1)
	adj[2][1] = cof(0, 2, 0, 1).Neg()
	adj[2][2] = cof(0, 1, 0, 1)

	var out Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			q, err := adj[row][col].Quo(det)
			if err != nil {
				return Mat3{}, err
			}
			out[row][col] = q
		}
	}
	return out, nil
}

// MulIntVecChecked returns M*v where v is an integer offset, yielding an
// integer offset iff every resulting coordinate is itself an integer.
func (m Mat3) MulIntVecChecked(v Vec3) (Vec3, bool) {
	p := m.MulIntVec(v)
	var out Vec3
	for i := 0; i < 3; i++ {
		n, ok := p[i].Int64()
		if !ok {
			return Vec3{}, false
		}
		out[i] = n
	}
	return out, true
}

// IsIntegral reports whether every entry of m is an integer.
func (m Mat3) IsIntegral() bool {
	for _, row := range m {
		for _, v := range row {
			if !v.IsInt() {
				return false
			}
		}
	}
	return true
}

// ToIntMat converts an integral Mat3 to integer entries; ok is false if any
// entry is fractional or does not fit an int64.
func (m Mat3) ToIntMat() (out [3][3]int64, ok bool) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v, isInt := m[r][c].Int64()
			if !isInt {
				return out, false
			}
			out[r][c] = v
		}
	}
	return out, true
}

// Check verifies every entry of m satisfies the given Budget.
func (m Mat3) Check(b Budget) error {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if err := m[r][c].Check(b); err != nil {
				return errors.Wrapf(err, "matrix entry [%d][%d]", r, c)
			}
		}
	}
	return nil
}
