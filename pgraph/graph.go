// Package pgraph implements PeriodicGraph3D (§4.1): a directed adjacency
// representation of a 3-periodic graph, where each edge carries an integer
// lattice offset alongside its source and destination vertex.
//
// The half-edge layout (a fixed-shape per-vertex edge slice, sorted by a
// deterministic Ord key) is grounded on the teacher's VtxGraph/VtxEdge
// design (lib2x3/graph/graph.vm.go, lib2x3/graph-legacy/vertex.go), adapted
// from a fixed 3-edges-per-vertex particle graph to an arbitrary-degree
// periodic graph with ℤ³ offsets instead of edge signs.
package pgraph

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/rational"
)

// Errors
var (
	ErrBadVtxID     = errors.New("pgraph: vertex id out of range")
	ErrSelfLoopZero = errors.New("pgraph: self-loop with zero offset is not permitted")
	ErrDuplicateEdge = errors.New("pgraph: duplicate (src,dst,ofs) edge")
	ErrEdgeNotFound  = errors.New("pgraph: edge not found")
)

// VtxID is a one-based vertex index, 1..NumVertices().
type VtxID int

// HalfEdge is one directed arc out of a vertex: "to Dst, at lattice offset Ofs".
type HalfEdge struct {
	Dst VtxID
	Ofs rational.Vec3
}

// less orders half-edges by the deterministic key (Dst, Ofs) lexicographic,
// mirrors VtxEdge.Ord() in the teacher (sort by destination vertex first).
func (e HalfEdge) less(o HalfEdge) bool {
	if e.Dst != o.Dst {
		return e.Dst < o.Dst
	}
	return e.Ofs.Cmp(o.Ofs) < 0
}

// Edge is a fully-specified directed arc (src, dst, ofs), as named in §3.
type Edge struct {
	Src VtxID
	Dst VtxID
	Ofs rational.Vec3
}

// Graph is a PeriodicGraph3D: n vertices 1..n and a set of directed
// half-edges closed under (s,d,o) <-> (d,s,-o).
type Graph struct {
	adj [][]HalfEdge // adj[v-1] is the sorted half-edge list for vertex v
}

// New returns an empty periodic graph over n vertices (no edges yet).
func New(n int) *Graph {
	return &Graph{adj: make([][]HalfEdge, n)}
}

// NumVertices returns n.
func (g *Graph) NumVertices() int { return len(g.adj) }

func (g *Graph) checkVtx(v VtxID) error {
	if v < 1 || int(v) > len(g.adj) {
		return errors.Wrapf(ErrBadVtxID, "vtx %d (n=%d)", v, len(g.adj))
	}
	return nil
}

func (g *Graph) find(v VtxID, e HalfEdge) int {
	list := g.adj[v-1]
	return sort.Search(len(list), func(i int) bool { return !list[i].less(e) })
}

// HasEdge reports whether the directed half-edge (s -> d, ofs) exists.
// O(log deg(s)) via binary search, per §4.1.
func (g *Graph) HasEdge(s, d VtxID, ofs rational.Vec3) bool {
	if g.checkVtx(s) != nil || g.checkVtx(d) != nil {
		return false
	}
	e := HalfEdge{Dst: d, Ofs: ofs}
	i := g.find(s, e)
	list := g.adj[s-1]
	return i < len(list) && list[i].Dst == d && list[i].Ofs == ofs
}

// AddEdge inserts the half-edge (s -> d, ofs) and, to preserve the edge-set
// involution invariant, its reverse (d -> s, -ofs). Rejects a zero-offset
// self-loop and a duplicate (s,d,ofs) triple (invariants (a)-(c) of §3).
func (g *Graph) AddEdge(s, d VtxID, ofs rational.Vec3) error {
	if err := g.checkVtx(s); err != nil {
		return err
	}
	if err := g.checkVtx(d); err != nil {
		return err
	}
	if s == d && ofs.IsZero() {
		return ErrSelfLoopZero
	}
	if g.HasEdge(s, d, ofs) {
		return errors.Wrapf(ErrDuplicateEdge, "%d -> %d + %s", s, d, ofs.String())
	}

	g.insert(s, HalfEdge{Dst: d, Ofs: ofs})
	g.insert(d, HalfEdge{Dst: s, Ofs: ofs.Neg()})
	return nil
}

func (g *Graph) insert(v VtxID, e HalfEdge) {
	i := g.find(v, e)
	list := g.adj[v-1]
	list = append(list, HalfEdge{})
	copy(list[i+1:], list[i:])
	list[i] = e
	g.adj[v-1] = list
}

// RemoveEdge deletes the half-edge (s -> d, ofs) and its reverse. Returns
// ErrEdgeNotFound if the edge does not exist.
func (g *Graph) RemoveEdge(s, d VtxID, ofs rational.Vec3) error {
	if !g.HasEdge(s, d, ofs) {
		return ErrEdgeNotFound
	}
	g.remove(s, HalfEdge{Dst: d, Ofs: ofs})
	g.remove(d, HalfEdge{Dst: s, Ofs: ofs.Neg()})
	return nil
}

func (g *Graph) remove(v VtxID, e HalfEdge) {
	i := g.find(v, e)
	list := g.adj[v-1]
	copy(list[i:], list[i+1:])
	g.adj[v-1] = list[:len(list)-1]
}

// Neighbours returns the (sorted, read-only) half-edges leaving v.
func (g *Graph) Neighbours(v VtxID) []HalfEdge {
	if g.checkVtx(v) != nil {
		return nil
	}
	return g.adj[v-1]
}

// Degree returns the number of half-edges leaving v.
func (g *Graph) Degree(v VtxID) int {
	if g.checkVtx(v) != nil {
		return 0
	}
	return len(g.adj[v-1])
}

// Edges returns every directed half-edge as an (s,d,ofs) triple, each
// symmetric pair appearing twice (once per direction), matching §3's
// "closed under involution" invariant.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for i, list := range g.adj {
		s := VtxID(i + 1)
		for _, e := range list {
			out = append(out, Edge{Src: s, Dst: e.Dst, Ofs: e.Ofs})
		}
	}
	return out
}

// FromEdges builds a Graph over n vertices from an edge list, adding each
// edge's reverse automatically. Edges already present as a reverse pair in
// the input are only added once.
func FromEdges(n int, edges []Edge) (*Graph, error) {
	g := New(n)
	for _, e := range edges {
		if g.HasEdge(e.Src, e.Dst, e.Ofs) {
			continue
		}
		if err := g.AddEdge(e.Src, e.Dst, e.Ofs); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := New(len(g.adj))
	for i, list := range g.adj {
		out.adj[i] = append([]HalfEdge(nil), list...)
	}
	return out
}

// Width returns, for each of the three lattice axes, the maximum absolute
// offset coordinate reachable in a single hop from any vertex.
// CoordinationSequence does not use it: its shell BFS keys visited cover
// vertices in a map.
func (g *Graph) Width() rational.Vec3 {
	var w rational.Vec3
	for _, list := range g.adj {
		for _, e := range list {
			for i := 0; i < 3; i++ {
				a := e.Ofs[i]
				if a < 0 {
					a = -a
				}
				if a > w[i] {
					w[i] = a
				}
			}
		}
	}
	return w
}
