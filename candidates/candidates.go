// Package candidates enumerates basis candidates for the topological key
// search (§4.6): triples of outgoing edges at a distinguished vertex that
// form a non-singular 3x3 matrix, subject to category tie-breaking rules,
// with a fallback phase spanning two vertices when every neighbour triple
// at every representative is coplanar.
//
// The enumerate-then-dedup shape is grounded on
// fine/graph-walker/walker.go's tryEmitFork/duplicateEdges/splitEdges/
// sproutEdges family: each enumerates a structural option, filters
// degenerate cases, and folds results into a dedup table before returning.
// Symbol-table dedup there is reimplemented here with
// github.com/emirpasic/gods/sets/hashset, since the teacher's own dedup
// table (backed by arcspace/go-arc-sdk) was dropped (see DESIGN.md).
package candidates

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/fine-structures/topo-genome/partition"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
	"github.com/fine-structures/topo-genome/symmetry"
)

// ErrNotThreeDimensional is returned when both enumeration phases are
// empty on a stable net: the edge vectors do not span ℝ³, per §4.6 and §7.
var ErrNotThreeDimensional = errors.New("candidates: edge vectors do not span three dimensions")

// Candidate is a (vertex, basis) pair: B's columns are three neighbour
// offset vectors from u (or two from u and one from another vertex, in the
// fallback phase), per §3's Candidate data model.
type Candidate struct {
	U pgraph.VtxID
	B rational.Mat3
}

// FindCandidates runs the neighbour-only phase, falling back to the
// two-vertex phase only if the first returns empty, per §4.6.
func FindCandidates(g *pgraph.Graph, part partition.Result, syms []symmetry.Symmetry, budget rational.Budget) ([]Candidate, error) {
	cands := neighbourOnlyPhase(g, part)
	if len(cands) == 0 {
		var err error
		cands, err = fallbackPhase(g, part)
		if err != nil {
			return nil, err
		}
	}
	if len(cands) == 0 {
		return nil, ErrNotThreeDimensional
	}
	return dedupBySymmetry(cands, syms, budget), nil
}

// orderType classifies how three neighbour class indices compare, per
// §4.6: 1 all equal, 2 two equal (the odd one out being a "minor" index),
// 3 first two equal, 4 all distinct.
func orderType(a, b, c int) int {
	switch {
	case a == b && b == c:
		return 1
	case a == c || b == c:
		return 2
	case a == b:
		return 3
	default:
		return 4
	}
}

type tagged struct {
	u      pgraph.VtxID
	triple [3]pgraph.HalfEdge
	tag    [4]int // orderType, then sorted class indices
}

func neighbourOnlyPhase(g *pgraph.Graph, part partition.Result) []Candidate {
	var tags []tagged
	for _, u := range part.Reps {
		if g.Degree(u) < 3 {
			continue
		}
		nbrs := g.Neighbours(u)
		for i := 0; i < len(nbrs); i++ {
			for j := i + 1; j < len(nbrs); j++ {
				for k := j + 1; k < len(nbrs); k++ {
					m := rational.FromIntColumns(nbrs[i].Ofs, nbrs[j].Ofs, nbrs[k].Ofs)
					if m.Det().IsZero() {
						continue
					}
					ci := part.VtxClass[nbrs[i].Dst]
					cj := part.VtxClass[nbrs[j].Dst]
					ck := part.VtxClass[nbrs[k].Dst]
					sorted := []int{ci, cj, ck}
					sort.Ints(sorted)
					ot := orderType(ci, cj, ck)
					tags = append(tags, tagged{
						u:      u,
						triple: [3]pgraph.HalfEdge{nbrs[i], nbrs[j], nbrs[k]},
						tag:    [4]int{ot, sorted[0], sorted[1], sorted[2]},
					})
				}
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}

	sort.Slice(tags, func(i, j int) bool { return tagLess(tags[i].tag, tags[j].tag) })
	minTag := tags[0].tag

	var out []Candidate
	for _, t := range tags {
		if t.tag != minTag {
			continue
		}
		for _, perm := range orientationsFor(t.tag) {
			tri := t.triple
			B := rational.FromIntColumns(tri[perm[0]].Ofs, tri[perm[1]].Ofs, tri[perm[2]].Ofs)
			out = append(out, Candidate{U: t.u, B: B})
		}
	}
	return out
}

func tagLess(a, b [4]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// orientationsFor returns the deterministic column orderings to emit for a
// given tag: order-types 1 and 4 emit the natural ordering only, while
// order-types 2 and 3 also emit the ordering with the first two columns
// swapped. No other reordering of the triple is emitted.
func orientationsFor(tag [4]int) [][3]int {
	switch tag[0] {
	case 1:
		return [][3]int{{0, 1, 2}}
	case 2, 3:
		return [][3]int{{0, 1, 2}, {1, 0, 2}}
	default:
		return [][3]int{{0, 1, 2}}
	}
}

// tagged2 is one fallback-phase candidate together with its three-class tag
// (c1, c2, cat(x3)), per §4.6's full tie-break tuple.
type tagged2 struct {
	u   pgraph.VtxID
	B   rational.Mat3
	tag [3]int
}

// fallbackPhase implements §4.6's two-vertex candidate search, run only
// when neighbourOnlyPhase finds nothing. Candidates are collected with
// their full (c1, c2, cat(x3)) tag first, then filtered down to the
// lexicographically smallest tag within each class, mirroring
// neighbourOnlyPhase's tag-then-filter shape in this same file.
func fallbackPhase(g *pgraph.Graph, part partition.Result) ([]Candidate, error) {
	for _, cls := range part.Classes {
		var tags []tagged2

		for _, u := range part.Reps {
			nbrs := g.Neighbours(u)
			for i := 0; i < len(nbrs); i++ {
				for j := 0; j < len(nbrs); j++ {
					if i == j {
						continue
					}
					x1, x2 := nbrs[i], nbrs[j]
					if parallel(x1.Ofs, x2.Ofs) {
						continue
					}
					for _, v := range cls.Vertices {
						for _, x3 := range g.Neighbours(v) {
							m := rational.FromIntColumns(x1.Ofs, x2.Ofs, x3.Ofs)
							if m.Det().IsZero() {
								continue
							}
							c1, c2 := part.VtxClass[x1.Dst], part.VtxClass[x2.Dst]
							c3 := part.VtxClass[x3.Dst]
							tag := [3]int{c1, c2, c3}
							tags = append(tags, tagged2{u: u, B: m, tag: tag})
							if c1 == c2 {
								swapped := rational.FromIntColumns(x2.Ofs, x1.Ofs, x3.Ofs)
								tags = append(tags, tagged2{u: u, B: swapped, tag: tag})
							}
						}
					}
				}
			}
		}
		if len(tags) == 0 {
			continue
		}

		minTag := tags[0].tag
		for _, t := range tags[1:] {
			if lessTag3(t.tag, minTag) {
				minTag = t.tag
			}
		}

		var out []Candidate
		for _, t := range tags {
			if t.tag != minTag {
				continue
			}
			out = append(out, Candidate{U: t.u, B: t.B})
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, nil
}

func lessTag3(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func parallel(a, b rational.Vec3) bool {
	// a, b parallel iff their 2x2 minors all vanish (cross product zero).
	cx := a[1]*b[2] - a[2]*b[1]
	cy := a[2]*b[0] - a[0]*b[2]
	cz := a[0]*b[1] - a[1]*b[0]
	return cx == 0 && cy == 0 && cz == 0
}

// dedupBySymmetry replaces each candidate matrix by the minimum of
// {R.M : R in stabilizer(u)} over the detected symmetries fixing u, per
// §4.6's deduplication step, then collects unique minima.
func dedupBySymmetry(cands []Candidate, syms []symmetry.Symmetry, budget rational.Budget) []Candidate {
	seen := hashset.New()
	var out []Candidate
	for _, c := range cands {
		min := c.B
		for _, s := range syms {
			if pgraph.VtxID(s.Perm[c.U-1]) != c.U {
				continue // only the stabilizer of u applies
			}
			Rmat := intMatToRat(s.R)
			cand := Rmat.Mul(c.B)
			if flatLess(cand, min) {
				min = cand
			}
		}
		key := flatKey(c.U, min)
		if !seen.Contains(key) {
			seen.Add(key)
			out = append(out, Candidate{U: c.U, B: min})
		}
	}
	return out
}

func intMatToRat(r [3][3]int64) rational.Mat3 {
	return rational.FromIntColumns(
		rational.Vec3{r[0][0], r[1][0], r[2][0]},
		rational.Vec3{r[0][1], r[1][1], r[2][1]},
		rational.Vec3{r[0][2], r[1][2], r[2][2]},
	)
}

func flatten(m rational.Mat3) [9]rational.Rat {
	var out [9]rational.Rat
	idx := 0
	for col := 0; col < 3; col++ {
		c := m.Col(col)
		for row := 0; row < 3; row++ {
			out[idx] = c[row]
			idx++
		}
	}
	return out
}

func flatLess(a, b rational.Mat3) bool {
	fa, fb := flatten(a), flatten(b)
	for i := range fa {
		cmp := fa[i].Cmp(fb[i])
		if cmp != 0 {
			return cmp < 0
		}
	}
	return false
}

func flatKey(u pgraph.VtxID, m rational.Mat3) string {
	f := flatten(m)
	s := make([]byte, 0, 64)
	s = append(s, []byte(rational.FromInt64(int64(u)).String())...)
	for _, v := range f {
		s = append(s, '|')
		s = append(s, []byte(v.String())...)
	}
	return string(s)
}
