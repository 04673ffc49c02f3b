package genome

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

func identityCell(t *testing.T) Cell {
	t.Helper()
	c, err := NewCell(rational.Identity3())
	require.NoError(t, err)
	return c
}

func TestComputeGenomePcu(t *testing.T) {
	g := pgraph.New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 0, 1}))

	net, err := BuildCrystalNet(identityCell(t), g, nil, rational.DefaultBudget)
	require.NoError(t, err)

	gctx := NewContext()
	result, err := NewDriver().ComputeGenome(context.Background(), gctx, net)
	require.NoError(t, err)
	require.NotEmpty(t, result.String)

	_, edges, err := Decode(result.String)
	require.NoError(t, err)
	require.Len(t, edges, 6)
}

func TestComputeGenomeDiamond(t *testing.T) {
	g := pgraph.New(2)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{0, 0, 1}))

	net, err := BuildCrystalNet(identityCell(t), g, nil, rational.DefaultBudget)
	require.NoError(t, err)

	gctx := NewContext()
	result, err := NewDriver().ComputeGenome(context.Background(), gctx, net)
	require.NoError(t, err)
	require.NotEmpty(t, result.String)
}

func TestComputeGenomeDoubledPcuMatchesPcu(t *testing.T) {
	gPcu := pgraph.New(1)
	require.NoError(t, gPcu.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, gPcu.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, gPcu.AddEdge(1, 1, rational.Vec3{0, 0, 1}))
	netPcu, err := BuildCrystalNet(identityCell(t), gPcu, nil, rational.DefaultBudget)
	require.NoError(t, err)
	resultPcu, err := NewDriver().ComputeGenome(context.Background(), NewContext(), netPcu)
	require.NoError(t, err)

	gDouble := pgraph.New(2)
	require.NoError(t, gDouble.AddEdge(1, 2, rational.Vec3{0, 0, 0}))
	require.NoError(t, gDouble.AddEdge(1, 2, rational.Vec3{-1, 0, 0}))
	require.NoError(t, gDouble.AddEdge(1, 1, rational.Vec3{0, 1, 0}))
	require.NoError(t, gDouble.AddEdge(1, 1, rational.Vec3{0, 0, 1}))
	require.NoError(t, gDouble.AddEdge(2, 2, rational.Vec3{0, 1, 0}))
	require.NoError(t, gDouble.AddEdge(2, 2, rational.Vec3{0, 0, 1}))
	netDouble, err := BuildCrystalNet(identityCell(t), gDouble, nil, rational.DefaultBudget)
	require.NoError(t, err)
	resultDouble, err := NewDriver().ComputeGenome(context.Background(), NewContext(), netDouble)
	require.NoError(t, err)

	require.Equal(t, resultPcu.String, resultDouble.String, "minimize should reduce the doubled cell back to pcu")
}

func TestBuildCrystalNetRejectsUnstableNet(t *testing.T) {
	g := pgraph.New(3)
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 2, rational.Vec3{-1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 3, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 3, rational.Vec3{-1, 0, 0}))

	_, err := BuildCrystalNet(identityCell(t), g, nil, rational.DefaultBudget)
	require.ErrorIs(t, err, ErrUnstableNet)
}

func TestComputeGenomeNonThreeDimensionalFails(t *testing.T) {
	g := pgraph.New(1)
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{1, 0, 0}))
	require.NoError(t, g.AddEdge(1, 1, rational.Vec3{0, 1, 0}))

	net, err := BuildCrystalNet(identityCell(t), g, nil, rational.DefaultBudget)
	require.NoError(t, err)

	driver := NewDriver()
	driver.Minimize = false
	_, err = driver.ComputeGenome(context.Background(), NewContext(), net)
	require.ErrorIs(t, err, ErrNotThreeDimensional)
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(ErrUnknownGenome))
	require.Equal(t, 3, ExitCode(ErrInternal))
	require.Equal(t, 4, ExitCode(ErrInvalidInput))
	require.Equal(t, 5, ExitCode(ErrParse))
}
