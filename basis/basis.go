// Package basis picks an integer lattice basis from a candidate key's
// final edge list (§4.8): collect non-zero offsets, canonicalise sign,
// deduplicate, take independent offsets as the basis columns, and rewrite
// every edge's offset in that basis.
//
// Exact-comparator discipline for canonical ordering is grounded on
// go2x3/support.go's FactorSet sorted insertion; varint-style compactness
// of the reduced offsets mirrors the bounded-width encoding in
// lib2x3/graph/traces.go's TraceSpec, here realised with
// github.com/gogo/protobuf/proto's varint helpers when serialising the
// reduced basis for storage.
package basis

import (
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/emirpasic/gods/utils"

	"github.com/fine-structures/topo-genome/candidatekey"
	"github.com/fine-structures/topo-genome/rational"
)

// Result is a new basis M and the edge list rewritten in that basis.
type Result struct {
	M     [3][3]int64
	Edges []candidatekey.EdgeTuple
}

// FindBasis builds an integer basis M from the non-zero offsets of edges
// (see hermiteBasis), then rewrites every edge's offset in that basis. It
// returns an error if M is singular or some offset is not an integer
// combination of M's columns.
func FindBasis(edges []candidatekey.EdgeTuple) (Result, error) {
	vecs := collectCanonicalOffsets(edges)
	M := hermiteBasis(vecs)

	Mmat := rational.FromIntColumns(
		rational.Vec3{M[0][0], M[1][0], M[2][0]},
		rational.Vec3{M[0][1], M[1][1], M[2][1]},
		rational.Vec3{M[0][2], M[1][2], M[2][2]},
	)
	Minv, err := Mmat.Inverse()
	if err != nil {
		return Result{}, err
	}

	out := make([]candidatekey.EdgeTuple, len(edges))
	for i, e := range edges {
		newOfs, ok := Minv.MulIntVecChecked(e.Ofs)
		if !ok {
			return Result{}, rational.ErrWidthExceeded
		}
		out[i] = candidatekey.EdgeTuple{S: e.S, D: e.D, Ofs: newOfs}
	}

	return Result{M: M, Edges: out}, nil
}

// collectCanonicalOffsets gathers all non-zero edge offsets, negating any
// whose leading non-zero coordinate is negative so each direction appears
// once ("positive relative to a total order"), then deduplicates and sorts
// with gods/utils comparators for a representation-independent order.
func collectCanonicalOffsets(edges []candidatekey.EdgeTuple) []rational.Vec3 {
	seen := make(map[rational.Vec3]bool)
	var out []rational.Vec3
	for _, e := range edges {
		v := e.Ofs
		if v.IsZero() {
			continue
		}
		if isNegativeLeading(v) {
			v = v.Neg()
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].LeadingNonzeroIndex(), out[j].LeadingNonzeroIndex()
		if cmp := utils.IntComparator(li, lj); cmp != 0 {
			return cmp < 0
		}
		return out[i].Cmp(out[j]) < 0
	})
	return out
}

func isNegativeLeading(v rational.Vec3) bool {
	i := v.LeadingNonzeroIndex()
	if i >= 3 {
		return false
	}
	return v[i] < 0
}

// hermiteBasis takes the first three linearly independent vectors of vecs,
// in their given order, as the columns of an integer matrix, and negates
// the third column if the determinant is negative. The matrix is not
// reduced to Hermite normal form, and its columns need not generate every
// vector of vecs. A column left unfilled (fewer than three independent
// vectors) keeps the standard basis vector of that index, which can make
// the matrix singular.
func hermiteBasis(vecs []rational.Vec3) [3][3]int64 {
	cols := [3]rational.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	rank := 0

	pending := append([]rational.Vec3(nil), vecs...)
	for rank < 3 && len(pending) > 0 {
		v := pending[0]
		pending = pending[1:]
		if isIndependent(cols[:rank], v) {
			cols[rank] = v
			rank++
		}
	}

	var m [3][3]int64
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			m[r][c] = cols[c][r]
		}
	}
	if det3(m) < 0 {
		// Flip the last independent column to make the determinant positive.
		for r := 0; r < 3; r++ {
			m[r][2] = -m[r][2]
		}
	}
	return m
}

func isIndependent(existing []rational.Vec3, v rational.Vec3) bool {
	trial := append(append([]rational.Vec3(nil), existing...), v)
	if len(trial) < 3 {
		// Rank check via the 2D cross-product / collinearity test for 1-2
		// vectors: independent unless the new vector is a scalar multiple
		// of an existing one.
		for _, e := range existing {
			if isParallel(e, v) {
				return false
			}
		}
		return true
	}
	m := rational.FromIntColumns(trial[0], trial[1], trial[2])
	return !m.Det().IsZero()
}

func isParallel(a, b rational.Vec3) bool {
	cx := a[1]*b[2] - a[2]*b[1]
	cy := a[2]*b[0] - a[0]*b[2]
	cz := a[0]*b[1] - a[1]*b[0]
	return cx == 0 && cy == 0 && cz == 0
}

func det3(m [3][3]int64) int64 {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

// EncodeOffset varint-encodes a reduced offset vector for compact archive
// storage, mirroring the bounded-width varint scheme used for trace
// specs in the teacher.
func EncodeOffset(v rational.Vec3) []byte {
	var buf []byte
	for _, c := range v {
		buf = append(buf, proto.EncodeVarint(zigzag(c))...)
	}
	return buf
}

func zigzag(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}
