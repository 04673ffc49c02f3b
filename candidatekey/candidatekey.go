// Package candidatekey implements the breadth-oriented canonical
// relabelling search of §4.7: given a distinguished vertex u and a basis
// B, it walks the graph in a deterministic visit order, assigning new
// vertex labels and new-basis edge offsets as it goes, and aborts early if
// the edge list being built ever exceeds a running best-so-far.
//
// The state-machine shape (Construction carrying reused scratch slices,
// one state object per attempt) is grounded on fine/graph-walker/
// walker.go's Construction type; pooled reuse of that scratch state across
// many candidate attempts follows the teacher's use of sync.Pool in the
// same file.
package candidatekey

import (
	"sort"
	"sync"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// ErrNonIntegerOffset is an internal-error signal: a recorded offset that
// should be integral (per §4.7's "must be integer" assertions) was not.
var ErrNonIntegerOffset = errors.New("candidatekey: recomputed offset is not integral")

// EdgeTuple is one emitted edge (t, h, o) in the new labelling, o in the
// candidate basis.
type EdgeTuple struct {
	S, D pgraph.VtxID
	Ofs  rational.Vec3
}

func (e EdgeTuple) less(o EdgeTuple) bool {
	if e.S != o.S {
		return e.S < o.S
	}
	if e.D != o.D {
		return e.D < o.D
	}
	return e.Ofs.Cmp(o.Ofs) < 0
}

// Less compares two equal-length edge tuple sequences lexicographically.
func Less(a, b []EdgeTuple) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].less(b[i]) {
			return true
		}
		if b[i].less(a[i]) {
			return false
		}
	}
	return len(a) < len(b)
}

// construction is the reusable scratch state for one candidate_key attempt,
// pooled across the search the way the teacher pools its Construction.
type construction struct {
	vmap    []pgraph.VtxID       // new index (1-based) -> old vertex id
	revmap  map[pgraph.VtxID]int // old vertex id -> new index
	newpos  []rational.Pos3      // new index -> coordinate in candidate basis
	offsets []rational.Vec3      // new index -> accumulated lattice offset
	edges   []EdgeTuple
}

var pool = sync.Pool{
	New: func() any { return &construction{} },
}

func getConstruction(n int) *construction {
	c := pool.Get().(*construction)
	if cap(c.vmap) < n+1 {
		c.vmap = make([]pgraph.VtxID, n+1)
		c.newpos = make([]rational.Pos3, n+1)
		c.offsets = make([]rational.Vec3, n+1)
	} else {
		c.vmap = c.vmap[:n+1]
		c.newpos = c.newpos[:n+1]
		c.offsets = c.offsets[:n+1]
	}
	c.revmap = make(map[pgraph.VtxID]int, n)
	c.edges = c.edges[:0]
	return c
}

func putConstruction(c *construction) {
	pool.Put(c)
}

// Compute runs the candidate_key algorithm of §4.7 for distinguished
// vertex u and basis B, against a running bestSoFar (compared lexically,
// length-aligned). Returns (vmap, edges, true, nil) if it finds a strict
// improvement, (nil, nil, false, nil) otherwise, or a non-nil error when B
// is singular or a recomputed lattice offset is not integral.
func Compute(g *pgraph.Graph, pos []rational.Pos3, u pgraph.VtxID, B rational.Mat3, bestSoFar []EdgeTuple) ([]pgraph.VtxID, []EdgeTuple, bool, error) {
	n := g.NumVertices()
	iB, err := B.Inverse()
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "candidatekey: basis not invertible")
	}

	c := getConstruction(n)
	defer putConstruction(c)

	c.vmap[1] = u
	c.newpos[1] = toPos(rational.ZeroVec3)
	c.offsets[1] = rational.ZeroVec3
	c.revmap[u] = 1

	h := 2
	origin := pos[u-1]
	flagImproved := false

	for t := 1; t < n+1 && t < h; t++ {
		curOld := c.vmap[t]
		ofst := c.offsets[t]

		type cw struct {
			c rational.Pos3
			w pgraph.VtxID
		}
		var items []cw
		for _, e := range g.Neighbours(curOld) {
			delta := pos[e.Dst-1].AddVec(e.Ofs).Sub(origin).AddVec(ofst)
			coord := iB.MulVec(delta)
			items = append(items, cw{c: coord, w: e.Dst})
		}

		firstOcc := make(map[pgraph.VtxID]int)
		for i, it := range items {
			if _, ok := firstOcc[it.w]; !ok {
				firstOcc[it.w] = i
			}
		}
		sort.SliceStable(items, func(i, j int) bool {
			fi, fj := firstOcc[items[i].w], firstOcc[items[j].w]
			if fi != fj {
				return fi < fj
			}
			return items[i].c.Cmp(items[j].c) < 0
		})

		for _, it := range items {
			if rev, seen := c.revmap[it.w]; seen {
				edgeOfs, ok := vecFromPos(it.c.Sub(c.newpos[rev]))
				if !ok {
					return nil, nil, false, ErrNonIntegerOffset
				}
				c.edges = append(c.edges, EdgeTuple{S: pgraph.VtxID(t), D: pgraph.VtxID(rev), Ofs: edgeOfs})
			} else {
				if h >= n+1 {
					return nil, nil, false, errors.New("candidatekey: vertex overflow")
				}
				c.vmap[h] = it.w
				c.newpos[h] = it.c
				// offsets[h] := B.c + origin - pos[w], must be integer.
				bc := B.MulVec(it.c)
				diff := bc.Add(origin).Sub(pos[it.w-1])
				offVec, ok := vecFromPos(diff)
				if !ok {
					return nil, nil, false, ErrNonIntegerOffset
				}
				c.offsets[h] = offVec
				c.revmap[it.w] = h
				c.edges = append(c.edges, EdgeTuple{S: pgraph.VtxID(t), D: pgraph.VtxID(h), Ofs: rational.ZeroVec3})
				h++
			}

			if flagImproved {
				continue
			}
			idx := len(c.edges) - 1
			if idx < len(bestSoFar) {
				cmp := compareEdge(c.edges[idx], bestSoFar[idx])
				if cmp > 0 {
					return nil, nil, false, nil
				}
				if cmp < 0 {
					flagImproved = true
				}
			} else {
				flagImproved = true
			}
		}
	}

	if !flagImproved {
		return nil, nil, false, nil
	}

	vmapOut := append([]pgraph.VtxID(nil), c.vmap[1:n+1]...)
	edgesOut := append([]EdgeTuple(nil), c.edges...)
	return vmapOut, edgesOut, true, nil
}

// EncodeCompact varint-encodes an edge tuple sequence for use as a compact
// comparison/cache key, mirroring the bounded-width varint scheme basis.
// EncodeOffset uses for reduced offsets -- here applied to the raw vertex
// ids and offsets a searchBest worker holds mid-search.
func EncodeCompact(edges []EdgeTuple) []byte {
	var buf []byte
	for _, e := range edges {
		buf = append(buf, proto.EncodeVarint(uint64(e.S))...)
		buf = append(buf, proto.EncodeVarint(uint64(e.D))...)
		for _, c := range e.Ofs {
			buf = append(buf, proto.EncodeVarint(zigzag(c))...)
		}
	}
	return buf
}

func zigzag(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func compareEdge(a, b EdgeTuple) int {
	if a.S != b.S {
		if a.S < b.S {
			return -1
		}
		return 1
	}
	if a.D != b.D {
		if a.D < b.D {
			return -1
		}
		return 1
	}
	return a.Ofs.Cmp(b.Ofs)
}

func toPos(v rational.Vec3) rational.Pos3 {
	return rational.Pos3{
		rational.FromInt64(v[0]),
		rational.FromInt64(v[1]),
		rational.FromInt64(v[2]),
	}
}

func vecFromPos(p rational.Pos3) (rational.Vec3, bool) {
	var v rational.Vec3
	for i, c := range p {
		n, ok := c.Int64()
		if !ok {
			return rational.ZeroVec3, false
		}
		v[i] = n
	}
	return v, true
}
