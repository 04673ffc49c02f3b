// Package partition buckets the vertices of a periodic graph into
// equivalence classes by coordination sequence, refined by detected
// symmetries (§4.5): a union-find over symmetry orbits first collapses
// vertices that are already known to be equivalent, so their (expensive)
// coordination sequence is computed only once per orbit.
//
// The sorted run-length class list is grounded on go2x3/support.go's
// FactorSet.Insert, which maintains a sorted list of (value, count) pairs
// by repeated binary-search insertion; here "value" is a coordination
// sequence and "count" the class size. Ordered lookups use
// github.com/emirpasic/gods/maps/treemap with comparators from
// github.com/emirpasic/gods/utils.
package partition

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/symmetry"
)

// ShellDepth is the fixed coordination-sequence depth used for
// classification, per §4.5 and §9's open question (exposed as a tuning
// knob but defaulting to 10; do not change the default).
const ShellDepth = 10

// Class is one equivalence class of vertices sharing a coordination
// sequence, with a canonical representative.
type Class struct {
	Seq      []int
	Vertices []pgraph.VtxID
	Rep      pgraph.VtxID
}

// Result is the output of Partition: sorted classes, a vertex->class index
// map, and the list of unique representatives (one per class, in class
// order).
type Result struct {
	Classes   []Class
	VtxClass  map[pgraph.VtxID]int
	Reps      []pgraph.VtxID
}

// unionFind is a minimal disjoint-set structure over 1..n vertices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n+1)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

// Partition computes the coordination-sequence classes of g, optionally
// refined by a list of symmetry permutations (orbits collapse before any
// coordination sequence is computed, per §4.5(a)).
func Partition(g *pgraph.Graph, syms []symmetry.Symmetry) Result {
	n := g.NumVertices()
	uf := newUnionFind(n)
	for _, s := range syms {
		for i, p := range s.Perm {
			uf.union(i+1, int(p))
		}
	}

	// One orbit representative per union-find root, in vertex-id order for
	// determinism independent of symmetry discovery order.
	repOf := make(map[int]pgraph.VtxID)
	var orbitReps []pgraph.VtxID
	orbitMembers := make(map[int][]pgraph.VtxID)
	for v := 1; v <= n; v++ {
		root := uf.find(v)
		if _, ok := repOf[root]; !ok {
			repOf[root] = pgraph.VtxID(v)
			orbitReps = append(orbitReps, pgraph.VtxID(v))
		}
		orbitMembers[root] = append(orbitMembers[root], pgraph.VtxID(v))
	}

	// Group orbits by identical coordination sequence (§4.5(b)-(c)).
	type seqGroup struct {
		seq      []int
		vertices []pgraph.VtxID
	}
	var groups []seqGroup
	for _, r := range orbitReps {
		seq := g.CoordinationSequence(r, ShellDepth)
		root := uf.find(int(r))
		members := orbitMembers[root]

		merged := false
		for gi := range groups {
			if equalSeq(groups[gi].seq, seq) {
				groups[gi].vertices = append(groups[gi].vertices, members...)
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, seqGroup{seq: seq, vertices: append([]pgraph.VtxID(nil), members...)})
		}
	}

	classes := make([]Class, len(groups))
	for i, grp := range groups {
		verts := append([]pgraph.VtxID(nil), grp.vertices...)
		sort.Slice(verts, func(a, b int) bool { return verts[a] < verts[b] })
		classes[i] = Class{Seq: grp.seq, Vertices: verts, Rep: verts[0]}
	}

	// Sort classes by (|class|*seq[1], seq) lexicographically, per §4.5(d).
	// Weight buckets are kept in an ordered map (ascending, via
	// utils.IntComparator) so classes sharing a weight are grouped before
	// the within-bucket sequence tie-break is applied.
	byWeight := treemap.NewWith(utils.IntComparator)
	for _, c := range classes {
		w := len(c.Vertices) * firstOrZero(c.Seq)
		var bucket []Class
		if existing, found := byWeight.Get(w); found {
			bucket = existing.([]Class)
		}
		bucket = append(bucket, c)
		byWeight.Put(w, bucket)
	}
	classes = classes[:0]
	it := byWeight.Iterator()
	for it.Next() {
		bucket := it.Value().([]Class)
		sort.Slice(bucket, func(i, j int) bool { return lessSeq(bucket[i].Seq, bucket[j].Seq) })
		classes = append(classes, bucket...)
	}

	vtxClass := make(map[pgraph.VtxID]int, n)
	reps := make([]pgraph.VtxID, len(classes))
	for ci, c := range classes {
		reps[ci] = c.Rep
		for _, v := range c.Vertices {
			vtxClass[v] = ci
		}
	}

	return Result{Classes: classes, VtxClass: vtxClass, Reps: reps}
}

func firstOrZero(seq []int) int {
	if len(seq) == 0 {
		return 0
	}
	return seq[0]
}

func equalSeq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lessSeq(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
