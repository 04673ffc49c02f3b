// Package translate implements candidate lattice-translation enumeration
// and primitive-cell reduction (§4.4): finding translations t (optionally
// composed with a rotation) that map a CrystalNet's labelled periodic
// graph onto itself, then reducing the graph by the minimal-volume
// sublattice those translations generate.
//
// The sorted-candidate-list shape mirrors lib2x3/catalog/catalog.go's
// canonical/minimal encoding commentary: candidates are produced in a
// fixed, representation-independent order so the eventual choice of
// enlarging matrix M never depends on vertex numbering. Ordered maps use
// github.com/emirpasic/gods/maps/treemap and sort comparators from
// github.com/emirpasic/gods/utils, matching the domain-stack wiring.
package translate

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// ErrUnstableAfterReduction is returned when two vertices collide after a
// lattice reduction, per §4.4's edge-case policy.
var ErrUnstableAfterReduction = errors.New("translate: vertices collide after reduction")

// Translation is a candidate lattice translation, expressed as a fractional
// vector (difference of two equilibrium positions).
type Translation struct {
	Vec            rational.Pos3
	NumZeroCoords  int
	LeadingNonzero int
}

// PossibleTranslations enumerates candidate translations as differences
// pos[k]-pos[1], sorted by (number-of-zero-coordinates, leading-nonzero-
// index, denominator), per §4.4.
func PossibleTranslations(pos []rational.Pos3) []Translation {
	var out []Translation
	origin := pos[0]
	for k := 1; k < len(pos); k++ {
		diff := pos[k].Sub(origin)
		if diff.IsZero() {
			continue
		}
		out = append(out, Translation{
			Vec:            diff,
			NumZeroCoords:  numZeroCoords(diff),
			LeadingNonzero: leadingNonzeroIndex(diff),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.NumZeroCoords != b.NumZeroCoords {
			return a.NumZeroCoords > b.NumZeroCoords
		}
		if a.LeadingNonzero != b.LeadingNonzero {
			return a.LeadingNonzero < b.LeadingNonzero
		}
		return maxDenom(a.Vec) < maxDenom(b.Vec)
	})
	return out
}

func numZeroCoords(p rational.Pos3) int {
	n := 0
	for _, c := range p {
		if c.IsZero() {
			n++
		}
	}
	return n
}

func leadingNonzeroIndex(p rational.Pos3) int {
	for i, c := range p {
		if !c.IsZero() {
			return i
		}
	}
	return len(p)
}

func maxDenom(p rational.Pos3) int64 {
	var max int64
	for _, c := range p {
		d := c.Denom().Int64()
		if d > max {
			max = d
		}
	}
	return max
}

// CheckValidTranslation returns the induced vertex permutation iff
// translating every vertex's equilibrium position by t (optionally
// pre-transformed by R) and rebinning offsets by the unit cell produces the
// identical labelled periodic graph; the second return is false otherwise.
func CheckValidTranslation(g *pgraph.Graph, pos []rational.Pos3, t rational.Pos3, R *[3][3]int64) ([]pgraph.VtxID, bool) {
	n := g.NumVertices()
	perm := make([]pgraph.VtxID, n)
	used := make([]bool, n+1)

	for i := 0; i < n; i++ {
		target := pos[i]
		if R != nil {
			target = applyRot(*R, target)
		}
		target = target.Add(t).Mod1()

		match := -1
		for j := 0; j < n; j++ {
			if used[j+1] {
				continue
			}
			if pos[j].Mod1().Cmp(target) == 0 {
				match = j
				break
			}
		}
		if match == -1 {
			return nil, false
		}
		perm[i] = pgraph.VtxID(match + 1)
		used[match+1] = true
	}

	// Verify the permutation carries every edge to an edge of g (the
	// rebinned offset is whatever makes endpoints agree up to a lattice
	// vector; since both positions are already reduced mod 1, any
	// consistent offset works, so we only need existence of SOME edge
	// between the mapped endpoints with appropriate multiplicity).
	for s := 1; s <= n; s++ {
		srcNbrs := g.Neighbours(pgraph.VtxID(s))
		dstNbrs := g.Neighbours(perm[s-1])
		if len(srcNbrs) != len(dstNbrs) {
			return nil, false
		}
		for _, e := range srcNbrs {
			mappedDst := perm[e.Dst-1]
			found := false
			for _, de := range dstNbrs {
				if de.Dst == mappedDst {
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		}
	}

	return perm, true
}

func applyRot(R [3][3]int64, p rational.Pos3) rational.Pos3 {
	var out rational.Pos3
	for row := 0; row < 3; row++ {
		sum := rational.Zero()
		for k := 0; k < 3; k++ {
			sum = sum.Add(rational.FromInt64(R[row][k]).Mul(p[k]))
		}
		out[row] = sum
	}
	return out
}

// ValidTranslationVectors returns the subset of candidates that are
// validated symmetries of (g, pos), in their already-sorted order.
func ValidTranslationVectors(g *pgraph.Graph, pos []rational.Pos3) []Translation {
	var valid []Translation
	for _, cand := range PossibleTranslations(pos) {
		if _, ok := CheckValidTranslation(g, pos, cand.Vec, nil); ok {
			valid = append(valid, cand)
		}
	}
	return valid
}
