package pgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/rational"
)

func pcu(t *testing.T) *Graph {
	t.Helper()
	g := New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))
	return g
}

func TestPcuEdgeInvariants(t *testing.T) {
	g := pcu(t)
	require.Equal(t, 6, g.Degree(1)) // each axis edge + its reverse

	require.True(t, g.HasEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.True(t, g.HasEdge(1, 1, rational.Vec3{-1, 0, 0}))
	require.False(t, g.HasEdge(1, 1, rational.Vec3{2, 0, 0}))
}

func TestRejectsZeroSelfLoop(t *testing.T) {
	g := New(1)
	err := g.AddEdge(1, 1, rational.ZeroVec3)
	require.ErrorIs(t, err, ErrSelfLoopZero)
}

func TestRejectsDuplicateEdge(t *testing.T) {
	g := New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	err := g.AddEdge(1, 2, rational.Vec3{0, 0, 0})
	require.ErrorIs(t, err, ErrDuplicateEdge)
}

func TestCoordinationSequencePcu(t *testing.T) {
	g := pcu(t)
	// Simple cubic lattice coordination sequence: 6, 18, 38, 66, ...
	seq := g.CoordinationSequence(1, 4)
	require.Equal(t, []int{6, 18, 38, 66}, seq)
}

func TestCoordinationSequenceDiamond(t *testing.T) {
	g := New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 1}))

	seq1 := g.CoordinationSequence(1, 3)
	seq2 := g.CoordinationSequence(2, 3)
	require.Equal(t, seq1, seq2, "diamond's two vertices are topologically equivalent")
	require.Equal(t, 4, seq1[0])
}

func TestRemoveEdgeRestoresSymmetry(t *testing.T) {
	g := New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.RemoveEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.Equal(t, 0, g.Degree(1))
	require.Equal(t, 0, g.Degree(2))
}
