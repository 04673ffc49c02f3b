// Driver orchestration (§4.9, §5): topological_genome computation with
// bounded worker-pool parallelism over candidate representatives, a single
// mutex-guarded monotonic "best so far", and context-based cancellation --
// grounded on go2x3/support.go's catalogContext (sync.WaitGroup-coordinated
// shutdown, a Closing() channel checked between units of work).
package genome

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/fine-structures/topo-genome/basis"
	"github.com/fine-structures/topo-genome/candidatekey"
	"github.com/fine-structures/topo-genome/candidates"
	"github.com/fine-structures/topo-genome/partition"
	"github.com/fine-structures/topo-genome/pgraph"
	"github.com/fine-structures/topo-genome/rational"
	"github.com/fine-structures/topo-genome/symmetry"
	"github.com/fine-structures/topo-genome/translate"
)

// Driver runs the canonical-key computation of §4.9 using the budget and
// flags carried in a Context, never reading from a package-level global.
type Driver struct {
	Minimize bool // whether to run translate.Minimize before searching (step 2 of §4.9)

	lastCompactSize int // byte length of the winning edge list under candidatekey.EncodeCompact
}

// NewDriver returns a Driver with minimization enabled, the default
// pipeline shape of §4.9.
func NewDriver() *Driver {
	return &Driver{Minimize: true}
}

// Result is the outcome of ComputeGenome: the canonical edge list (in the
// basis produced by FindBasis) and its serialised genome string.
type Result struct {
	Edges  []candidatekey.EdgeTuple
	String string

	// CompactSize is the byte length of the winning candidate under
	// candidatekey.EncodeCompact, reported so callers (e.g. archive
	// ingestion tooling) can budget storage without re-encoding.
	CompactSize int
}

// ComputeGenome runs topological_genome(net), per §4.9's seven steps.
func (d *Driver) ComputeGenome(ctx context.Context, gctx *Context, net *CrystalNet) (*Result, error) {
	// Step 1: require distinct equilibrium positions.
	if dup := firstDuplicatePos(net.Pos); dup >= 0 {
		return nil, ErrUnstableNet
	}

	g, pos := net.Graph, net.Pos
	klog.V(klog.Level(gctx.LogLevel)).Infof("computing genome for %d-vertex net (minimize=%v)", g.NumVertices(), d.Minimize)

	// Step 2: optional minimize.
	if d.Minimize {
		reducedG, reducedPos, err := translate.Minimize(g, pos, gctx.Budget)
		if err != nil {
			return nil, errors.Wrap(err, "minimize")
		}
		if reducedG.NumVertices() != g.NumVertices() {
			klog.V(klog.Level(gctx.LogLevel)).Infof("minimize reduced cell from %d to %d vertices", g.NumVertices(), reducedG.NumVertices())
		}
		g, pos = reducedG, reducedPos
	}

	syms, err := symmetry.FindSymmetries(g, pos, gctx.Budget)
	if err != nil {
		return nil, err
	}
	part := partition.Partition(g, syms)

	// Step 3: find_candidates.
	cands, err := candidates.FindCandidates(g, part, syms, gctx.Budget)
	if err != nil {
		if errors.Cause(err) == candidates.ErrNotThreeDimensional {
			return nil, ErrNotThreeDimensional
		}
		return nil, err
	}
	klog.V(klog.Level(gctx.LogLevel)).Infof("searching %d candidate bases with %d symmetries", len(cands), len(syms))

	// Steps 4-5: search candidates in parallel, publishing a monotonic best
	// under a single mutex, per §5's discipline.
	best, err := d.searchBest(ctx, g, pos, cands)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, errors.Wrap(ErrInternal, "no candidate produced an improving key")
	}

	// Step 6: find_basis.
	reduced, err := basis.FindBasis(best)
	if err != nil {
		return nil, errors.Wrap(ErrInternal, "find_basis failed")
	}

	// Step 7: serialise.
	return &Result{Edges: reduced.Edges, String: Encode(reduced.Edges), CompactSize: d.lastCompactSize}, nil
}

// searchBest runs candidate_key for every candidate across a bounded
// worker pool, publishing only strict improvements under a single mutex
// (§5's "improve-or-drop" discipline: never merge, only discard or
// replace).
func (d *Driver) searchBest(ctx context.Context, g *pgraph.Graph, pos []rational.Pos3, cands []candidates.Candidate) ([]candidatekey.EdgeTuple, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(cands) {
		workers = len(cands)
	}
	if workers < 1 {
		workers = 1
	}

	work := make(chan candidates.Candidate)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var best []candidatekey.EdgeTuple
	var bestCompactLen int
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}

				mu.Lock()
				localBest := append([]candidatekey.EdgeTuple(nil), best...)
				mu.Unlock()

				_, edges, improved, err := candidatekey.Compute(g, pos, cand.U, cand.B, localBest)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				if !improved {
					continue
				}

				mu.Lock()
				if best == nil || candidatekey.Less(edges, best) {
					best = edges
					bestCompactLen = len(candidatekey.EncodeCompact(edges))
				}
				mu.Unlock()
			}
		}()
	}

loop:
	for _, c := range cands {
		select {
		case <-ctx.Done():
			break loop
		case work <- c:
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	d.lastCompactSize = bestCompactLen
	return best, nil
}

func firstDuplicatePos(pos []rational.Pos3) int {
	for i := 1; i < len(pos); i++ {
		for j := 0; j < i; j++ {
			if pos[i].Cmp(pos[j]) == 0 {
				return i
			}
		}
	}
	return -1
}
