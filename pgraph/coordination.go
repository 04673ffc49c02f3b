package pgraph

import "github.com/fine-structures/topo-genome/rational"

// coverNode identifies a vertex of the infinite universal cover: the
// original vertex together with the cumulative lattice offset that was
// accumulated while reaching it.
type coverNode struct {
	v   VtxID
	ofs rational.Vec3
}

// CoordinationSequence returns (c1, .., ck), the sizes of the 1..k-hop
// shells around v in the infinite periodic cover (§4.1, glossary
// "Coordination sequence"). Vertices of the cover are identified by
// (vertex, offset) pairs and shells are discovered by BFS cut at radius k.
func (g *Graph) CoordinationSequence(v VtxID, k int) []int {
	if k <= 0 {
		return nil
	}

	visited := make(map[coverNode]struct{}, 64)
	start := coverNode{v: v, ofs: rational.ZeroVec3}
	visited[start] = struct{}{}

	frontier := []coverNode{start}
	seq := make([]int, 0, k)

	for depth := 1; depth <= k; depth++ {
		next := make([]coverNode, 0, len(frontier)*2)
		for _, n := range frontier {
			for _, e := range g.Neighbours(n.v) {
				cand := coverNode{v: e.Dst, ofs: n.ofs.Add(e.Ofs)}
				if _, seen := visited[cand]; seen {
					continue
				}
				visited[cand] = struct{}{}
				next = append(next, cand)
			}
		}
		seq = append(seq, len(next))
		frontier = next
	}

	return seq
}
