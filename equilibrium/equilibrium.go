// Package equilibrium computes the barycentric ("equilibrium") placement of
// a periodic graph's vertices, per §4.2 of the spec: every vertex sits at
// the average of its neighbours (modulo the periodic offset each neighbour
// carries), with one vertex fixed at the origin to remove the Laplacian's
// 3-dimensional translational null space.
//
// The linear system is solved in exact rationals (no floating point), via
// Gauss-Jordan elimination over rational.Rat, grounded in spirit on the
// teacher's power-iteration matrix bookkeeping in
// fine/graph-walker/walker.go's Traces() (reused scratch buffers, per-row
// accumulation), adapted here from adjacency powers to a Laplacian solve.
package equilibrium

import (
	"github.com/pkg/errors"

	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
)

// ErrUnstableNet is returned when two (or more) vertices solve to the same
// equilibrium position, per §4.2 and the "UnstableNet" error kind of §7.
var ErrUnstableNet = errors.New("equilibrium: net is unstable (coincident vertex positions)")

// ErrDisconnected is returned when the Laplacian system is singular for a
// reason other than the expected 1-dimensional (per coordinate) null space
// removed by fixing vertex 1 -- i.e. the graph is not connected.
var ErrDisconnected = errors.New("equilibrium: graph is not connected")

// Solve computes the equilibrium placement of every vertex of g, fixing
// vertex 1 at the origin. Positions are NOT reduced modulo 1 by Solve;
// callers that need canonical [0,1)^3 positions should call Pos3.Mod1.
func Solve(g *pgraph.Graph, budget rational.Budget) ([]rational.Pos3, error) {
	n := g.NumVertices()
	pos := make([]rational.Pos3, n)
	if n == 0 {
		return pos, nil
	}
	if n == 1 {
		pos[0] = rational.Pos3{rational.Zero(), rational.Zero(), rational.Zero()}
		return pos, nil
	}

	// Build the (n-1)x(n-1) reduced Laplacian (vertex 1 eliminated) and its
	// 3-column right-hand side, for vertices 2..n (0-based indices 1..n-1).
	m := n - 1
	A := make([][]rational.Rat, m)
	B := make([][]rational.Rat, m)
	for i := range A {
		A[i] = make([]rational.Rat, m)
		for j := range A[i] {
			A[i][j] = rational.Zero()
		}
		B[i] = make([]rational.Rat, 3)
		for k := range B[i] {
			B[i][k] = rational.Zero()
		}
	}

	for vi := 2; vi <= n; vi++ {
		row := vi - 2 // 0-based row in the reduced system
		deg := rational.FromInt64(0)
		for _, e := range g.Neighbours(pgraph.VtxID(vi)) {
			deg = deg.Add(rational.One())
			if int(e.Dst) == 1 {
				// pos[1] == 0, so its -1 coefficient contributes nothing to A,
				// but its offset still contributes to the right-hand side.
			} else {
				col := int(e.Dst) - 2
				A[row][col] = A[row][col].Sub(rational.One())
			}
			for k := 0; k < 3; k++ {
				B[row][k] = B[row][k].Add(rational.FromInt64(e.Ofs[k]))
			}
		}
		A[row][row] = A[row][row].Add(deg)
	}

	X, err := gaussJordan(A, B, budget)
	if err != nil {
		return nil, err
	}

	pos[0] = rational.Pos3{rational.Zero(), rational.Zero(), rational.Zero()}
	for i := 0; i < m; i++ {
		pos[i+1] = rational.Pos3{X[i][0], X[i][1], X[i][2]}
	}

	if dup := firstDuplicate(pos); dup >= 0 {
		return nil, errors.Wrapf(ErrUnstableNet, "vertices %d and %d coincide", dup, dup)
	}

	return pos, nil
}

// firstDuplicate returns the index of the first vertex (mod-1 reduced) found
// to coincide with an earlier one, or -1 if all positions are distinct.
func firstDuplicate(pos []rational.Pos3) int {
	reduced := make([]rational.Pos3, len(pos))
	for i, p := range pos {
		reduced[i] = p.Mod1()
	}
	for i := 1; i < len(reduced); i++ {
		for j := 0; j < i; j++ {
			if reduced[i].Cmp(reduced[j]) == 0 {
				return i
			}
		}
	}
	return -1
}

// gaussJordan solves A*X = B exactly via Gauss-Jordan elimination with
// partial pivoting on nonzero entries (any nonzero pivot gives the correct
// unique solution, since exact rational arithmetic has no numerical error).
func gaussJordan(A [][]rational.Rat, B [][]rational.Rat, budget rational.Budget) ([][]rational.Rat, error) {
	n := len(A)
	if n == 0 {
		return nil, nil
	}
	cols := len(B[0])

	// Augment A with B for joint elimination.
	aug := make([][]rational.Rat, n)
	for i := range aug {
		aug[i] = make([]rational.Rat, n+cols)
		copy(aug[i], A[i])
		copy(aug[i][n:], B[i])
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if !aug[row][col].IsZero() {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return nil, ErrDisconnected
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for j := col; j < n+cols; j++ {
			q, err := aug[col][j].Quo(pv)
			if err != nil {
				return nil, err
			}
			if err := q.Check(budget); err != nil {
				return nil, err
			}
			aug[col][j] = q
		}

		for row := 0; row < n; row++ {
			if row == col || aug[row][col].IsZero() {
				continue
			}
			factor := aug[row][col]
			for j := col; j < n+cols; j++ {
				aug[row][j] = aug[row][j].Sub(factor.Mul(aug[col][j]))
			}
		}
	}

	X := make([][]rational.Rat, n)
	for i := range X {
		X[i] = aug[i][n : n+cols]
	}
	return X, nil
}
