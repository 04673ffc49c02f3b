package translate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/equilibrium"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

func TestPossibleTranslationsSortedByZeroCoords(t *testing.T) {
	pos := []rational.Pos3{
		{rational.Zero(), rational.Zero(), rational.Zero()},
		{rational.FromFrac(1, 2), rational.Zero(), rational.Zero()},
		{rational.FromFrac(1, 3), rational.FromFrac(1, 3), rational.FromFrac(1, 3)},
	}
	cands := PossibleTranslations(pos)
	require.Len(t, cands, 2)
	// (1/2,0,0) has two zero coords, should sort before the fully-populated one.
	require.Equal(t, 2, cands[0].NumZeroCoords)
}

func TestMinimizeDoubledPcuReducesToSingleVertex(t *testing.T) {
	// Doubled pcu along x: two vertices related by translation (1/2,0,0).
	g := pgraph.New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{-1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))
	require.NoError(t, g.AddEdge(2, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(2, 2, rational.Vec3{0, 0, 1}))

	pos, err := equilibrium.Solve(g, rational.DefaultBudget)
	require.NoError(t, err)

	reducedG, _, err := Minimize(g, pos, rational.DefaultBudget)
	require.NoError(t, err)
	require.Equal(t, 1, reducedG.NumVertices())
}

func TestMinimizeIsNoOpWhenAlreadyPrimitive(t *testing.T) {
	g := pgraph.New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))

	pos, err := equilibrium.Solve(g, rational.DefaultBudget)
	require.NoError(t, err)

	reducedG, _, err := Minimize(g, pos, rational.DefaultBudget)
	require.NoError(t, err)
	require.Equal(t, 1, reducedG.NumVertices())
}
