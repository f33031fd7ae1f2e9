// Package searchers defines what a FreeCell search returns (Result, Outcome, Stats), how it is
// configured (Policy) and the building blocks shared by the search algorithms: the ancestor set, the
// bounded visited cache and the move orderers.
//
// The search algorithm itself lives in sub-packages, see dfs.
package searchers

import (
	"context"
	"fmt"
	"time"

	. "github.com/janpfeifer/freecellGo/internal/state"
	"github.com/pkg/errors"
)

// Searcher is the interface that any of the search algorithms must adhere to be valid.
type Searcher interface {
	// Search for a sequence of moves that wins the game starting from gs.
	//
	// The state gs is used as scratch space during the search, but it is always restored
	// to its original content when Search returns, whatever the outcome.
	//
	// Cancelling ctx makes the search return with Outcome == Cancelled at the next node visited.
	Search(ctx context.Context, gs *GameState) Result
}

// Outcome of a search.
type Outcome int

const (
	// Solved means a winning sequence of moves was found, see Result.Moves.
	Solved Outcome = iota

	// Timeout means the time or node budget was exhausted before reaching a conclusion.
	Timeout

	// Cancelled means the search context was cancelled.
	Cancelled

	// Exhausted means all reachable states (within the depth limit) were explored and none is won.
	Exhausted

	// Inconsistent means the rules engine failed to execute or undo a move it generated itself.
	// Result.Err has the details.
	Inconsistent
)

var outcomeNames = []string{"solved", "timeout", "cancelled", "exhausted", "inconsistent"}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for ii, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(ii)
			return nil
		}
	}
	return errors.Errorf("unknown search outcome %q", text)
}

// Result of a search.
type Result struct {
	Outcome Outcome

	// Moves that win the game, if Outcome == Solved.
	Moves []Move

	// Err holds the diagnostic if Outcome == Inconsistent.
	Err error

	Stats Stats
}

// Solved returns whether the search found a solution.
func (r Result) Solved() bool {
	return r.Outcome == Solved
}

// String returns a one line summary of the result.
func (r Result) String() string {
	switch r.Outcome {
	case Solved:
		return fmt.Sprintf("solved in %d moves (%s)", len(r.Moves), r.Stats)
	case Inconsistent:
		return fmt.Sprintf("inconsistent: %v (%s)", r.Err, r.Stats)
	}
	return fmt.Sprintf("%s (%s)", r.Outcome, r.Stats)
}

// Stats stores running stats collected during the search: for benchmarking, monitoring and debugging purposes.
type Stats struct {
	// Nodes visited: each state entered by the search, including the root.
	Nodes int64 `json:"nodes"`

	// CacheHits counts states pruned because the visited cache already proved them fruitless.
	CacheHits int64 `json:"cache_hits"`

	// CycleRejections counts moves not followed because they lead back to a state in the current path.
	CycleRejections int64 `json:"cycle_rejections"`

	// DepthCutoffs counts states not expanded because the depth limit was reached.
	DepthCutoffs int64 `json:"depth_cutoffs"`

	// MaxDepth reached by the search.
	MaxDepth int `json:"max_depth"`

	// CacheSize at the end of the search and the number of CacheEvictions during it.
	CacheSize      int   `json:"cache_size"`
	CacheEvictions int64 `json:"cache_evictions"`

	// CacheBuckets used by a bucketed cache, see Policy.Bucketed.
	CacheBuckets int `json:"cache_buckets,omitempty"`

	// RootInversions is the number of inversions (see state.Inversions) of the initial state.
	RootInversions int `json:"root_inversions"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	nodesPerSec := 0.0
	if s.Elapsed > 0 {
		nodesPerSec = float64(s.Nodes) / s.Elapsed.Seconds()
	}
	buckets := ""
	if s.CacheBuckets > 0 {
		buckets = fmt.Sprintf(", buckets=%d", s.CacheBuckets)
	}
	return fmt.Sprintf("nodes=%d (%.0f/s), cache_hits=%d, cycles=%d, depth_cutoffs=%d, max_depth=%d, cache=%d (evictions=%d%s), root_inversions=%d, elapsed=%s",
		s.Nodes, nodesPerSec, s.CacheHits, s.CycleRejections, s.DepthCutoffs, s.MaxDepth,
		s.CacheSize, s.CacheEvictions, buckets, s.RootInversions, s.Elapsed)
}
