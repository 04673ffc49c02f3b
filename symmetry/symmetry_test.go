package symmetry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/equilibrium"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

func pcu(t *testing.T) *pgraph.Graph {
	t.Helper()
	g := pgraph.New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))
	return g
}

func diamond(t *testing.T) *pgraph.Graph {
	t.Helper()
	g := pgraph.New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 1}))
	return g
}

func TestFindSymmetriesAlwaysIncludesIdentity(t *testing.T) {
	g := pcu(t)
	pos, err := equilibrium.Solve(g, rational.DefaultBudget)
	require.NoError(t, err)

	syms, err := FindSymmetries(g, pos, rational.DefaultBudget)
	require.NoError(t, err)
	require.NotEmpty(t, syms)

	foundIdentity := false
	for _, s := range syms {
		if s.R == [3][3]int64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} && !s.OrientationReversing {
			allFixed := true
			for i, p := range s.Perm {
				if int(p) != i+1 {
					allFixed = false
				}
			}
			if allFixed {
				foundIdentity = true
			}
		}
	}
	require.True(t, foundIdentity)
}

func TestFindSymmetriesPcuHasCubicRotations(t *testing.T) {
	g := pcu(t)
	pos, err := equilibrium.Solve(g, rational.DefaultBudget)
	require.NoError(t, err)

	syms, err := FindSymmetries(g, pos, rational.DefaultBudget)
	require.NoError(t, err)
	// Simple cubic net has a rich symmetry group (48 point operations); a
	// single-vertex graph detects at least the axis-permuting rotations
	// beyond identity.
	require.Greater(t, len(syms), 1)
}

func TestFindSymmetriesDiamondSwapsVertices(t *testing.T) {
	g := diamond(t)
	pos, err := equilibrium.Solve(g, rational.DefaultBudget)
	require.NoError(t, err)

	syms, err := FindSymmetries(g, pos, rational.DefaultBudget)
	require.NoError(t, err)

	sawSwap := false
	for _, s := range syms {
		if s.Perm[0] == 2 && s.Perm[1] == 1 {
			sawSwap = true
		}
	}
	require.True(t, sawSwap, "diamond's inversion-related vertices should be exchanged by some detected symmetry")
}
