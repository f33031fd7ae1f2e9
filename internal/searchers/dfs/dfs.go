// Package dfs implements a depth-first search for a FreeCell solution.
//
// The search mutates a single GameState in place, executing a move before descending and undoing it
// when coming back. According to its searchers.Policy it prunes states already in the current path
// (searchers.AncestorSet), states previously proven fruitless (searchers.VisitedCache, or one per
// number of inversions with searchers.BucketedCache), and sorts the moves of each state
// (searchers.Ordering).
package dfs

import (
	"context"
	"slices"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/freecellGo/internal/searchers"
	. "github.com/janpfeifer/freecellGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Searcher implements the searchers.Searcher interface with a depth-first search.
//
// A Searcher holds only configuration, so it can be used concurrently on different game states.
type Searcher struct {
	policy        searchers.Policy
	maxTime       time.Duration
	progressEvery int64
	trace         TraceFn
}

// Assert that Searcher implements searchers.Searcher.
var _ searchers.Searcher = (*Searcher)(nil)

// TraceInfo is passed to the TraceFn at the entry of every node.
// Fields are owned by the search and are only valid during the call.
type TraceInfo struct {
	// Depth of the node: number of moves from the root.
	Depth int

	// Path of moves from the root to the node.
	Path []Move

	// Ancestors holds the packed states from the root to the node, inclusive. Nil if the policy doesn't
	// track ancestors.
	Ancestors *searchers.AncestorSet

	// State of the node. It must not be modified.
	State *GameState

	// Cache used at the node: the visited cache, or the bucket for the node's inversions if the policy
	// is bucketed. Nil if the node is not cached.
	Cache *searchers.VisitedCache
}

// TraceFn is called at the entry of every node, see WithTrace.
type TraceFn func(info *TraceInfo)

// DefaultProgressEvery is the number of nodes between progress reports, logged with klog.V(1).
const DefaultProgressEvery = 1_000_000

// timeCheckEvery is the number of nodes between checks of the wall clock.
const timeCheckEvery = 256

// New returns a depth-first searcher configured with the given policy.
// There are other optional configurations, see methods Searcher.With...
func New(policy searchers.Policy) (*Searcher, error) {
	if err := policy.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid search policy %s", policy)
	}
	return &Searcher{
		policy:        policy,
		progressEvery: DefaultProgressEvery,
	}, nil
}

// Policy returns the policy used by the searcher.
func (s *Searcher) Policy() searchers.Policy {
	return s.policy
}

// WithMaxTime sets the wall-clock budget of each search, after which it returns with a Timeout.
// Set to 0 (the default) for no limit.
func (s *Searcher) WithMaxTime(maxTime time.Duration) *Searcher {
	s.maxTime = max(maxTime, 0)
	return s
}

// WithMaxNodes overrides the policy's node budget. Set to 0 for no limit.
func (s *Searcher) WithMaxNodes(maxNodes int) *Searcher {
	s.policy.MaxNodes = max(maxNodes, 0)
	return s
}

// WithProgressEvery sets how many nodes between progress reports, logged with klog.V(1).
// Set to 0 to disable them.
func (s *Searcher) WithProgressEvery(nodes int64) *Searcher {
	s.progressEvery = nodes
	return s
}

// WithTrace sets a function to be called at the entry of every node. It's meant for debugging
// and testing, and it slows down the search.
func (s *Searcher) WithTrace(trace TraceFn) *Searcher {
	s.trace = trace
	return s
}

var (
	errTimeout   = errors.New("search budget exhausted")
	errCancelled = errors.New("search cancelled")
)

// search holds the state of one Search call.
type search struct {
	*Searcher
	gs   *GameState
	done <-chan struct{}

	pack      func(gs *GameState) PackedState
	needsKey  bool
	ancestors *searchers.AncestorSet
	cache     *searchers.VisitedCache
	buckets   *searchers.BucketedCache

	start         time.Time
	deadline      time.Time
	nextTimeCheck int64
	stats         searchers.Stats

	path     []Move
	solution []Move
	buffers  [][]Move
}

// Search implements searchers.Searcher.
//
// The state gs is restored to its original content when Search returns, whatever the outcome.
func (s *Searcher) Search(ctx context.Context, gs *GameState) (result searchers.Result) {
	r := &search{
		Searcher: s,
		gs:       gs,
		done:     ctx.Done(),
		pack:     Pack,
		start:    time.Now(),

		nextTimeCheck: 1,
	}
	if s.policy.Canonical {
		r.pack = PackCanonical
	}
	if s.maxTime > 0 {
		r.deadline = r.start.Add(s.maxTime)
	}
	if s.policy.Ancestors {
		r.ancestors = searchers.NewAncestorSet()
		r.needsKey = true
	}
	r.stats.RootInversions = Inversions(gs)
	if s.policy.BoundedCache {
		var err error
		if s.policy.Bucketed {
			r.buckets, err = searchers.NewBucketedCache(s.policy.EffectiveCacheSize())
		} else {
			r.cache, err = searchers.NewVisitedCache(s.policy.EffectiveCacheSize())
		}
		if err != nil {
			result.Outcome = searchers.Inconsistent
			result.Err = err
			return
		}
		r.needsKey = true
	}

	var found bool
	var searchErr error
	panicErr := exceptions.TryCatch[error](func() {
		var rootKey PackedState
		if r.needsKey {
			rootKey = r.pack(gs)
		}
		if r.ancestors != nil {
			r.ancestors.Push(rootKey)
			defer r.ancestors.Pop()
		}
		found, searchErr = r.recursion(rootKey, 0, searchers.NoPreviousColumn)
	})

	r.stats.Elapsed = time.Since(r.start)
	if r.cache != nil {
		r.stats.CacheSize = r.cache.Len()
		r.stats.CacheEvictions = r.cache.Evictions()
	}
	if r.buckets != nil {
		r.stats.CacheSize = r.buckets.Len()
		r.stats.CacheEvictions = r.buckets.Evictions()
		r.stats.CacheBuckets = r.buckets.NumBuckets()
	}
	result.Stats = r.stats
	switch {
	case panicErr != nil:
		result.Outcome = searchers.Inconsistent
		result.Err = errors.WithMessage(panicErr, "rules engine failed during search")
	case errors.Is(searchErr, errCancelled):
		result.Outcome = searchers.Cancelled
	case errors.Is(searchErr, errTimeout):
		result.Outcome = searchers.Timeout
	case searchErr != nil:
		result.Outcome = searchers.Inconsistent
		result.Err = searchErr
	case found:
		result.Outcome = searchers.Solved
		result.Moves = r.solution
	default:
		result.Outcome = searchers.Exhausted
	}
	if klog.V(2).Enabled() {
		klog.Infof("dfs search %s: %s", s.policy, result)
	}
	return
}

// depthLeft returns the remaining depth budget at the given depth.
func (r *search) depthLeft(depth int) int {
	if r.policy.MaxDepth == 0 {
		return searchers.UnboundedDepth
	}
	return r.policy.MaxDepth - depth
}

// checkBudget returns errCancelled or errTimeout if the search must stop.
func (r *search) checkBudget() error {
	select {
	case <-r.done:
		return errCancelled
	default:
	}
	if r.policy.MaxNodes > 0 && r.stats.Nodes > int64(r.policy.MaxNodes) {
		return errTimeout
	}
	if !r.deadline.IsZero() && r.stats.Nodes >= r.nextTimeCheck {
		// Nodes pruned by the cache skip this check, so Nodes may jump over any fixed multiple.
		r.nextTimeCheck = r.stats.Nodes + timeCheckEvery
		if time.Now().After(r.deadline) {
			return errTimeout
		}
	}
	return nil
}

// buffer returns an empty slice to hold the moves at the given depth, reusing previous allocations.
func (r *search) buffer(depth int) []Move {
	for len(r.buffers) <= depth {
		r.buffers = append(r.buffers, make([]Move, 0, 64))
	}
	return r.buffers[depth][:0]
}

// recursion visits the node reached by r.path, whose packed state is key (only set if needed by the
// policy). It returns whether a solution was found, or an error if the search must be aborted.
func (r *search) recursion(key PackedState, depth int, previousColumn int) (found bool, err error) {
	r.stats.Nodes++
	r.stats.MaxDepth = max(r.stats.MaxDepth, depth)
	if r.progressEvery > 0 && r.stats.Nodes%r.progressEvery == 0 && klog.V(1).Enabled() {
		klog.Infof("dfs: %d nodes, depth %d (max %d), %d cycles, %d cache hits, %s elapsed; "+
			"current: %d inversions, lowest needed rank %s, %d cards in foundations, packed %s",
			r.stats.Nodes, depth, r.stats.MaxDepth, r.stats.CycleRejections, r.stats.CacheHits,
			time.Since(r.start).Round(time.Millisecond),
			Inversions(r.gs), LowestNeeded(r.gs), r.gs.CardsInFoundations(), Pack(r.gs))
	}

	cache := r.cache
	depthLeft := r.depthLeft(depth)
	foundationOnly := false
	if r.buckets != nil {
		if inversions := Inversions(r.gs); inversions > 0 {
			cache = r.buckets.Bucket(inversions)
		} else {
			// Without inversions, playing cards to the foundations always wins.
			cache = nil
			foundationOnly = true
			depthLeft = searchers.UnboundedDepth
		}
	}
	if r.trace != nil {
		r.trace(&TraceInfo{Depth: depth, Path: r.path, Ancestors: r.ancestors, State: r.gs, Cache: cache})
	}

	if r.gs.IsWon() {
		r.solution = slices.Clone(r.path)
		return true, nil
	}
	if cache != nil && cache.Explored(key, depthLeft) {
		r.stats.CacheHits++
		return false, nil
	}
	if err = r.checkBudget(); err != nil {
		return false, err
	}
	if depthLeft <= 0 {
		r.stats.DepthCutoffs++
		return false, nil
	}

	moves := r.gs.AvailableMoves(r.buffer(depth))
	if foundationOnly {
		moves = slices.DeleteFunc(moves, func(m Move) bool { return !m.IsFoundationMove() })
	}
	moves = r.policy.Ordering.Order(r.gs, moves, previousColumn)
	r.buffers[depth] = moves
	for _, m := range moves {
		found, err = r.tryMove(m, depth)
		if found || err != nil {
			return
		}
	}
	if cache != nil {
		cache.Put(key, depthLeft)
	}
	return false, nil
}

// tryMove executes m, recurses into the resulting state unless it closes a cycle, and undoes m.
func (r *search) tryMove(m Move, depth int) (found bool, err error) {
	if err = r.gs.Execute(m); err != nil {
		return false, r.inconsistent(err, "execute", m, depth)
	}
	defer func() {
		if undoErr := r.gs.Undo(m); undoErr != nil && err == nil {
			found = false
			err = r.inconsistent(undoErr, "undo", m, depth)
		}
	}()

	var key PackedState
	if r.needsKey {
		key = r.pack(r.gs)
	}
	if r.ancestors != nil {
		if r.ancestors.Contains(key) {
			r.stats.CycleRejections++
			return false, nil
		}
		r.ancestors.Push(key)
		defer r.ancestors.Pop()
	}
	r.path = append(r.path, m)
	defer func() { r.path = r.path[:len(r.path)-1] }()
	return r.recursion(key, depth+1, m.SourceColumn())
}

func (r *search) inconsistent(err error, op string, m Move, depth int) error {
	return errors.WithMessagef(err, "failed to %s generated move %s at depth %d, state:\n%s", op, m, depth, r.gs)
}
