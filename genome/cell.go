package genome

import (
	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/rational"
)

// Cell is the 3x3 matrix of exact rationals giving the Cartesian
// directions of the three lattice vectors (§3). Mutated only by a basis
// change (cell.mat <- cell.mat . M); callers must not mutate Mat in place.
type Cell struct {
	Mat rational.Mat3
}

// NewCell validates and wraps mat, per §3's "determinant non-zero and
// finite" invariant.
func NewCell(mat rational.Mat3) (Cell, error) {
	if mat.Det().IsZero() {
		return Cell{}, errors.Wrap(ErrInvalidInput, "cell matrix is singular")
	}
	return Cell{Mat: mat}, nil
}

// ChangeBasis returns a new Cell with Mat replaced by Mat.M, per §3's
// lifecycle note ("mutated only by a basis change").
func (c Cell) ChangeBasis(m [3][3]int64) (Cell, error) {
	Mmat := rational.FromIntColumns(
		rational.Vec3{m[0][0], m[1][0], m[2][0]},
		rational.Vec3{m[0][1], m[1][1], m[2][1]},
		rational.Vec3{m[0][2], m[1][2], m[2][2]},
	)
	return NewCell(c.Mat.Mul(Mmat))
}
