package genome

import (
	"errors"
	"sort"

	"github.com/fine-structures/topo-genome/equilibrium"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// CrystalNet is the tuple (cell, types, pos, graph) of §3: a periodic
// graph embedded at its equilibrium positions, with vertex type labels.
type CrystalNet struct {
	Cell  Cell
	Types []string
	Pos   []rational.Pos3
	Graph *pgraph.Graph
}

// BuildCrystalNet constructs a CrystalNet from a raw periodic graph (as
// delivered by the external collaborator described in §1) by solving for
// equilibrium positions and renumbering vertices so that positions sort
// lexicographically with pos[1] = 0, per §3's CrystalNet invariant.
//
// types, if non-nil, must have one entry per vertex of g and is permuted
// in step with the renumbering; a nil types is treated as all-equal labels.
func BuildCrystalNet(cell Cell, g *pgraph.Graph, types []string, budget rational.Budget) (*CrystalNet, error) {
	n := g.NumVertices()
	if n == 0 {
		return nil, ErrInvalidInput
	}

	rawPos, err := equilibrium.Solve(g, budget)
	if err != nil {
		if errors.Is(err, equilibrium.ErrUnstableNet) {
			return nil, ErrUnstableNet
		}
		return nil, err
	}

	reduced := make([]rational.Pos3, n)
	for i, p := range rawPos {
		reduced[i] = p.Mod1()
	}

	// Renumber: sort by position. The vertex originally fixed at the
	// origin (old index 0) reduces to exactly (0,0,0) and therefore always
	// sorts first, preserving pos[1] = 0.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return reduced[order[a]].Cmp(reduced[order[b]]) < 0
	})

	oldToNew := make([]pgraph.VtxID, n)
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = pgraph.VtxID(newIdx + 1)
	}

	newPos := make([]rational.Pos3, n)
	newTypes := make([]string, n)
	var edges []pgraph.Edge
	for newIdx, oldIdx := range order {
		newPos[newIdx] = reduced[oldIdx]
		if types != nil {
			newTypes[newIdx] = types[oldIdx]
		}
	}
	for oldIdx := 0; oldIdx < n; oldIdx++ {
		for _, e := range g.Neighbours(pgraph.VtxID(oldIdx + 1)) {
			edges = append(edges, pgraph.Edge{
				Src: oldToNew[oldIdx],
				Dst: oldToNew[e.Dst-1],
				Ofs: e.Ofs,
			})
		}
	}

	newGraph, err := pgraph.FromEdges(n, edges)
	if err != nil {
		return nil, err
	}

	return &CrystalNet{Cell: cell, Types: newTypes, Pos: newPos, Graph: newGraph}, nil
}
