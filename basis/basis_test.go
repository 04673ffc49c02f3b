package basis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/topo-genome/candidatekey"
	"github.com/fine-structures/topo-genome/rational"
)

func pcuEdges() []candidatekey.EdgeTuple {
	return []candidatekey.EdgeTuple{
		{S: 1, D: 1, Ofs: rational.Vec3{1, 0, 0}},
		{S: 1, D: 1, Ofs: rational.Vec3{0, 1, 0}},
		{S: 1, D: 1, Ofs: rational.Vec3{0, 0, 1}},
	}
}

func TestFindBasisPcuYieldsStandardBasis(t *testing.T) {
	res, err := FindBasis(pcuEdges())
	require.NoError(t, err)

	mat := rational.FromIntColumns(
		rational.Vec3{res.M[0][0], res.M[1][0], res.M[2][0]},
		rational.Vec3{res.M[0][1], res.M[1][1], res.M[2][1]},
		rational.Vec3{res.M[0][2], res.M[1][2], res.M[2][2]},
	)
	require.True(t, mat.Det().Cmp(rational.Zero()) > 0, "basis must have positive determinant")
	require.Len(t, res.Edges, len(pcuEdges()))
}

func TestFindBasisRewritesOffsetsInNewBasis(t *testing.T) {
	edges := []candidatekey.EdgeTuple{
		{S: 1, D: 1, Ofs: rational.Vec3{2, 0, 0}},
		{S: 1, D: 1, Ofs: rational.Vec3{0, 1, 0}},
		{S: 1, D: 1, Ofs: rational.Vec3{0, 0, 1}},
	}
	res, err := FindBasis(edges)
	require.NoError(t, err)

	// Every rewritten offset, mapped back through M, must reproduce the
	// original offset exactly.
	Mmat := rational.FromIntColumns(
		rational.Vec3{res.M[0][0], res.M[1][0], res.M[2][0]},
		rational.Vec3{res.M[0][1], res.M[1][1], res.M[2][1]},
		rational.Vec3{res.M[0][2], res.M[1][2], res.M[2][2]},
	)
	for i, e := range res.Edges {
		got := Mmat.MulIntVec(e.Ofs)
		want := edges[i].Ofs
		for k := 0; k < 3; k++ {
			require.Equal(t, rational.FromInt64(want[k]).String(), got[k].String())
		}
	}
}

func TestCollectCanonicalOffsetsDedupesAndCanonicalisesSign(t *testing.T) {
	edges := []candidatekey.EdgeTuple{
		{S: 1, D: 2, Ofs: rational.Vec3{1, 0, 0}},
		{S: 2, D: 1, Ofs: rational.Vec3{-1, 0, 0}},
		{S: 1, D: 3, Ofs: rational.Vec3{0, 0, 0}},
	}
	out := collectCanonicalOffsets(edges)
	require.Len(t, out, 1)
	require.Equal(t, rational.Vec3{1, 0, 0}, out[0])
}

func TestFindBasisAcceptsDegenerateOffsetSet(t *testing.T) {
	edges := []candidatekey.EdgeTuple{
		{S: 1, D: 1, Ofs: rational.Vec3{1, 0, 0}},
		{S: 1, D: 1, Ofs: rational.Vec3{2, 0, 0}},
	}
	// hermiteBasis falls back to the standard basis for unspanned axes, so
	// the resulting M is still invertible even though only one direction
	// of the data is real.
	res, err := FindBasis(edges)
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
}
