package translate

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// Reduced is the result of one primitive-cell reduction step (§4.4): a new
// graph and positions over the quotient vertex set, plus the enlarging
// matrix M that was applied.
type Reduced struct {
	Graph *pgraph.Graph
	Pos   []rational.Pos3
	M     [3][3]int64
}

// Minimize repeatedly finds and applies lattice-enlarging reductions until
// no non-trivial valid translation remains (§4.4, P3). Returns the final
// graph/positions; if no translation was ever found, the input is already
// primitive and the returned graph is g itself (not a copy).
func Minimize(g *pgraph.Graph, pos []rational.Pos3, budget rational.Budget) (*pgraph.Graph, []rational.Pos3, error) {
	curG, curPos := g, pos
	for {
		valid := ValidTranslationVectors(curG, curPos)
		if len(valid) == 0 {
			return curG, curPos, nil
		}

		M, ok := smallestEnlargingMatrix(valid)
		if !ok {
			return curG, curPos, nil
		}

		red, err := ReduceWithMatrix(curG, curPos, M)
		if err != nil {
			return nil, nil, err
		}
		if red.Graph.NumVertices() >= curG.NumVertices() {
			// Termination guard: every reduction must strictly shrink nv.
			return curG, curPos, nil
		}
		curG, curPos = red.Graph, red.Pos
	}
}

// groupByZeroCoords buckets candidate translations by their zero-coordinate
// count, using an ordered map (descending iteration gives the most
// axis-aligned translations first, matching §4.4's grouping step).
func groupByZeroCoords(cands []Translation) *treemap.Map {
	m := treemap.NewWith(utils.IntComparator)
	for _, c := range cands {
		key := -c.NumZeroCoords // negate for descending-by-zero-count iteration
		var bucket []Translation
		if existing, found := m.Get(key); found {
			bucket = existing.([]Translation)
		}
		bucket = append(bucket, c)
		m.Put(key, bucket)
	}
	return m
}

// smallestEnlargingMatrix picks a lattice-enlarging integer matrix M whose
// columns span the candidate translations (plus axis fallbacks), with
// |det M| minimal and positive, per §4.4.
func smallestEnlargingMatrix(valid []Translation) ([3][3]int64, bool) {
	grouped := groupByZeroCoords(valid)
	var pool []rational.Pos3
	it := grouped.Iterator()
	for it.Next() {
		bucket := it.Value().([]Translation)
		for _, t := range bucket {
			pool = append(pool, t.Vec)
		}
	}
	if len(pool) == 0 {
		return [3][3]int64{}, false
	}

	best := [3][3]int64{}
	bestDet := int64(0)
	found := false

	axes := []rational.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, t := range pool {
		// Denominator of the translation tells us how many lattice steps
		// along it form an integer vector, i.e. the candidate enlarging
		// direction.
		den := commonDenom(t)
		if den <= 1 {
			continue
		}
		cols := candidateColumns(t, den, axes)
		m := rational.FromIntColumns(cols[0], cols[1], cols[2])
		det := m.Det()
		if det.IsZero() {
			continue
		}
		di, ok := det.Int64()
		if !ok {
			continue
		}
		if di < 0 {
			di = -di
		}
		if !found || di < bestDet {
			mi, ok := m.ToIntMat()
			if !ok {
				continue
			}
			best, bestDet, found = mi, di, true
		}
	}
	return best, found
}

func commonDenom(p rational.Pos3) int64 {
	var d int64 = 1
	for _, c := range p {
		cd := c.Denom().Int64()
		d = lcm(d, cd)
	}
	return d
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// candidateColumns scales t by its denominator to get an integer direction,
// pairing it with two of the three coordinate axes not parallel to it.
func candidateColumns(t rational.Pos3, den int64, axes []rational.Vec3) [3]rational.Vec3 {
	scaled := rational.Vec3{}
	for i, c := range t {
		n, _ := c.Mul(rational.FromInt64(den)).Int64()
		scaled[i] = n
	}
	cols := [3]rational.Vec3{scaled}
	idx := 1
	for _, a := range axes {
		if idx >= 3 {
			break
		}
		if scaled.Cmp(a) == 0 || scaled.Cmp(a.Neg()) == 0 {
			continue
		}
		cols[idx] = a
		idx++
	}
	for idx < 3 {
		cols[idx] = axes[idx]
		idx++
	}
	return cols
}

// ReduceWithMatrix returns a new CrystalNet-level graph/positions: the
// quotient of g by the sublattice M, with offsets rewritten in the new
// basis, per §4.4.
func ReduceWithMatrix(g *pgraph.Graph, pos []rational.Pos3, M [3][3]int64) (*Reduced, error) {
	Mmat := rational.FromIntColumns(
		rational.Vec3{M[0][0], M[1][0], M[2][0]},
		rational.Vec3{M[0][1], M[1][1], M[2][1]},
		rational.Vec3{M[0][2], M[1][2], M[2][2]},
	)
	Minv, err := Mmat.Inverse()
	if err != nil {
		return nil, err
	}

	n := g.NumVertices()
	// newPos[i] in fractional coords of the new (enlarged) cell.
	newFrac := make([]rational.Pos3, n)
	for i, p := range pos {
		newFrac[i] = Minv.MulVec(p).Mod1()
	}

	// Group old vertices by coincident new-cell fractional position;
	// each group becomes one new vertex.
	type bucket struct {
		rep  int
		frac rational.Pos3
	}
	var buckets []bucket
	owner := make([]int, n) // index into buckets
	for i, f := range newFrac {
		found := -1
		for bi, b := range buckets {
			if b.frac.Cmp(f) == 0 {
				found = bi
				break
			}
		}
		if found == -1 {
			buckets = append(buckets, bucket{rep: i, frac: f})
			found = len(buckets) - 1
		}
		owner[i] = found
	}

	newN := len(buckets)
	newG := pgraph.New(newN)
	newPos := make([]rational.Pos3, newN)
	for bi, b := range buckets {
		newPos[bi] = b.frac
	}

	for s := 0; s < n; s++ {
		for _, e := range g.Neighbours(pgraph.VtxID(s + 1)) {
			d := int(e.Dst) - 1
			newOfs, ok := Minv.MulIntVecChecked(e.Ofs)
			if !ok {
				continue
			}
			// Translate offset into integer coordinates consistent with the
			// chosen representative's wraparound.
			ofsInt := newOfs
			ns, nd := owner[s], owner[d]
			if ns == nd && ofsInt.IsZero() {
				continue // collapses to nothing: same vertex, zero offset
			}
			if newG.HasEdge(pgraph.VtxID(ns+1), pgraph.VtxID(nd+1), ofsInt) {
				continue
			}
			if err := newG.AddEdge(pgraph.VtxID(ns+1), pgraph.VtxID(nd+1), ofsInt); err != nil {
				if err == pgraph.ErrSelfLoopZero {
					continue
				}
				return nil, err
			}
		}
	}

	if dup := firstDuplicatePos(newPos); dup >= 0 {
		return nil, ErrUnstableAfterReduction
	}

	return &Reduced{Graph: newG, Pos: newPos, M: M}, nil
}

// roundToInt converts a position to an integer offset. Nothing in this
// package calls it.
func roundToInt(p rational.Pos3) rational.Vec3 {
	var v rational.Vec3
	for i, c := range p {
		n, ok := c.Int64()
		if !ok {
			// Non-integral coordinate: truncate toward zero (integer division
			// of numerator by denominator) rather than panic.
			big := c.Num().Int64() / c.Denom().Int64()
			n = big
		}
		v[i] = n
	}
	return v
}

func firstDuplicatePos(pos []rational.Pos3) int {
	for i := 1; i < len(pos); i++ {
		for j := 0; j < i; j++ {
			if pos[i].Cmp(pos[j]) == 0 {
				return i
			}
		}
	}
	return -1
}
