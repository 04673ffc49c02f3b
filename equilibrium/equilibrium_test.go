package equilibrium

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

func TestSolvePcuSingleVertex(t *testing.T) {
	g := pgraph.New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))

	pos, err := Solve(g, rational.DefaultBudget)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	require.True(t, pos[0].IsZero())
}

func TestSolveDiamond(t *testing.T) {
	g := pgraph.New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 1}))

	pos, err := Solve(g, rational.DefaultBudget)
	require.NoError(t, err)
	require.True(t, pos[0].IsZero())
	// Vertex 1's four neighbours are copies of vertex 2 at offsets 0, e1,
	// e2, e3; their average is the origin, so vertex 2 sits at
	// (-1/4,-1/4,-1/4) (Solve does not reduce positions modulo 1).
	want := rational.FromFrac(-1, 4)
	for i := 0; i < 3; i++ {
		require.Equal(t, 0, pos[1][i].Cmp(want), "coordinate %d: got %s", i, pos[1][i].String())
	}
}

func TestUnstableNetDetected(t *testing.T) {
	// Two vertices with four parallel edges between them (all offset 0 or
	// paired +/-e1) will equilibrate to the same point only if positioned
	// identically by construction -- force this via a disconnected-looking
	// symmetric 3-vertex graph where two vertices have identical neighbour sets.
	g := pgraph.New(3)
	// Vertex 1 fixed at origin by construction; vertices 2 and 3 both connect
	// only to vertex 1 with the same three offsets, making them equilibrate
	// to the same position.
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{-1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 3, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 3, rational.Vec3{-1, 0, 0}))

	_, err := Solve(g, rational.DefaultBudget)
	require.ErrorIs(t, err, ErrUnstableNet)
}
