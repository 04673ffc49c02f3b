package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/symmetry"
)

func TestPartitionPcuSingleClass(t *testing.T) {
	g := pgraph.New(1)
	g.AddEdge(1, 1, vec(1, 0, 0))
	g.AddEdge(1, 1, vec(0, 1, 0))
	g.AddEdge(1, 1, vec(0, 0, 1))

	res := Partition(g, nil)
	require.Len(t, res.Classes, 1)
	require.Equal(t, pgraph.VtxID(1), res.Reps[0])
}

func TestPartitionDiamondMergesBySymmetry(t *testing.T) {
	g := pgraph.New(2)
	g.AddEdge(1, 2, vec(0, 0, 0))
	g.AddEdge(1, 2, vec(1, 0, 0))
	g.AddEdge(1, 2, vec(0, 1, 0))
	g.AddEdge(1, 2, vec(0, 0, 1))

	syms := []symmetry.Symmetry{
		symmetry.Identity(2),
		{R: [3][3]int64{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}, Perm: []pgraph.VtxID{2, 1}},
	}
	res := Partition(g, syms)
	require.Len(t, res.Classes, 1, "diamond's two vertices belong to one orbit/class")
	require.Len(t, res.Classes[0].Vertices, 2)
}

func vec(x, y, z int64) [3]int64 { return [3]int64{x, y, z} }
