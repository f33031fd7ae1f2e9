package dfs_test

import (
	"context"
	"testing"
	"time"

	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/searchers/dfs"
	. "github.com/janpfeifer/freecellGo/internal/state"
	. "github.com/janpfeifer/freecellGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

var (
	baselinePolicy = searchers.Policy{
		Ancestors:    true,
		BoundedCache: true,
		Canonical:    true,
		Ordering:     searchers.OrderColumn,
	}
	plainPolicy = searchers.Policy{MaxDepth: 200}
)

// replay executes the moves on a copy of initial and checks that they win the game.
func replay(t *testing.T, initial *GameState, moves []Move) {
	gs := initial.Clone()
	for ii, m := range moves {
		require.NoErrorf(t, gs.Execute(m), "replaying move #%d: %s", ii, m)
	}
	require.True(t, gs.IsWon(), "solution doesn't win the game")
}

func newSearcher(t *testing.T, policy searchers.Policy) *dfs.Searcher {
	s, err := dfs.New(policy)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	_, err := dfs.New(searchers.Policy{})
	require.Error(t, err, "a policy without ancestors nor depth limit should be rejected")
	s := newSearcher(t, baselinePolicy)
	assert.Equal(t, baselinePolicy, s.Policy())
	assert.Equal(t, 10, s.WithMaxNodes(10).Policy().MaxNodes)
}

func TestSolveDeal1(t *testing.T) {
	gs, err := NewDeal(1)
	require.NoError(t, err)
	initial := gs.Clone()

	result := newSearcher(t, baselinePolicy).WithMaxTime(2*time.Minute).Search(context.Background(), gs)
	require.Equalf(t, searchers.Solved, result.Outcome, "result: %s", result)
	require.NotEmpty(t, result.Moves)
	assert.True(t, gs.Equal(initial), "state must be restored after the search")
	replay(t, initial, result.Moves)
	assert.Greater(t, result.Stats.Nodes, int64(len(result.Moves)))
	assert.GreaterOrEqual(t, result.Stats.MaxDepth, len(result.Moves))
	t.Logf("Deal #1: %s", result)
}

func TestStrategiesNearlyWon(t *testing.T) {
	policies := map[string]searchers.Policy{
		"plain":     plainPolicy,
		"ancestors": {Ancestors: true, Canonical: true, MaxDepth: 200},
		"cache":     {BoundedCache: true, Canonical: true, MaxDepth: 200, CacheSize: 1000},
		"raw-cache": {BoundedCache: true, MaxDepth: 200, CacheSize: 1000},
		"baseline":  baselinePolicy,
		"needed":    {Ancestors: true, BoundedCache: true, Canonical: true, Ordering: searchers.OrderNeeded},
	}
	for name, policy := range policies {
		t.Run(name, func(t *testing.T) {
			gs := NearlyWon()
			initial := gs.Clone()
			result := newSearcher(t, policy).WithMaxTime(time.Minute).Search(context.Background(), gs)
			require.Equalf(t, searchers.Solved, result.Outcome, "result: %s", result)
			assert.True(t, gs.Equal(initial))
			replay(t, initial, result.Moves)
		})
	}

	// Already won: empty solution.
	gs := NearlyWon()
	for _, m := range []Move{
		TableauToFreeCell(0, 0), TableauToFoundation(0, 2),
		TableauToFreeCell(1, 1), TableauToFoundation(1, 0), FreeCellToFoundation(0, 0),
		TableauToFreeCell(2, 0), TableauToFoundation(2, 3), FreeCellToFoundation(0, 2),
		TableauToFreeCell(3, 0), TableauToFoundation(3, 1), FreeCellToFoundation(1, 1),
		FreeCellToFoundation(0, 3),
	} {
		require.NoError(t, gs.Execute(m))
	}
	require.True(t, gs.IsWon())
	result := newSearcher(t, baselinePolicy).Search(context.Background(), gs)
	assert.Equal(t, searchers.Solved, result.Outcome)
	assert.Empty(t, result.Moves)
}

func TestExhausted(t *testing.T) {
	// No legal moves at all.
	gs := Deadlock()
	initial := gs.Clone()
	result := newSearcher(t, baselinePolicy).WithMaxTime(time.Minute).Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.Empty(t, result.Moves)
	assert.EqualValues(t, 1, result.Stats.Nodes)
	assert.Equal(t, 1, result.Stats.CacheSize)
	assert.True(t, gs.Equal(initial))

	// The depth limit is too short to win.
	gs = NearlyWon()
	initial = gs.Clone()
	result = newSearcher(t, searchers.Policy{Ancestors: true, Canonical: true, MaxDepth: 3}).
		Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.Greater(t, result.Stats.DepthCutoffs, int64(0))
	assert.Equal(t, 3, result.Stats.MaxDepth)
	assert.True(t, gs.Equal(initial))
}

func TestCancelled(t *testing.T) {
	gs, err := NewDeal(1)
	require.NoError(t, err)
	initial := gs.Clone()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := newSearcher(t, baselinePolicy).Search(ctx, gs)
	assert.Equal(t, searchers.Cancelled, result.Outcome)
	assert.Empty(t, result.Moves)
	assert.EqualValues(t, 1, result.Stats.Nodes)
	assert.True(t, gs.Equal(initial))

	// Cancel from within the search.
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	result = newSearcher(t, plainPolicy).
		WithTrace(func(info *dfs.TraceInfo) {
			if info.Depth == 20 {
				cancel()
			}
		}).
		Search(ctx, gs)
	assert.Equal(t, searchers.Cancelled, result.Outcome)
	assert.True(t, gs.Equal(initial))
}

func TestTimeout(t *testing.T) {
	gs, err := NewDeal(1)
	require.NoError(t, err)
	initial := gs.Clone()

	// A solution needs at least 52 moves, so 50 nodes can't find one.
	result := newSearcher(t, baselinePolicy).WithMaxNodes(50).Search(context.Background(), gs)
	assert.Equal(t, searchers.Timeout, result.Outcome)
	assert.Empty(t, result.Moves)
	assert.GreaterOrEqual(t, result.Stats.Nodes, int64(51))
	assert.True(t, gs.Equal(initial))

	// Wall clock.
	result = newSearcher(t, baselinePolicy).WithMaxTime(time.Nanosecond).Search(context.Background(), gs)
	assert.Equal(t, searchers.Timeout, result.Outcome)
	assert.True(t, gs.Equal(initial))
}

func TestAncestorsMatchPath(t *testing.T) {
	gs, err := NewDeal(1)
	require.NoError(t, err)
	initial := gs.Clone()

	var visited int
	result := newSearcher(t, baselinePolicy).
		WithMaxNodes(3000).
		WithTrace(func(info *dfs.TraceInfo) {
			visited++
			require.Len(t, info.Path, info.Depth)
			require.NotNil(t, info.Ancestors)
			require.Equal(t, info.Depth+1, info.Ancestors.Len())

			// Replay the path and compare the packed states with the ancestors.
			replayed := initial.Clone()
			want := []PackedState{PackCanonical(replayed)}
			for _, m := range info.Path {
				require.NoError(t, replayed.Execute(m))
				want = append(want, PackCanonical(replayed))
			}
			require.Equal(t, want, info.Ancestors.Path())
			require.True(t, replayed.Equal(info.State))
			for _, p := range want {
				require.True(t, info.Ancestors.Contains(p))
			}
		}).
		Search(context.Background(), gs)
	assert.NotEqual(t, searchers.Inconsistent, result.Outcome)
	assert.EqualValues(t, visited, result.Stats.Nodes)
	assert.True(t, gs.Equal(initial))
}

func TestInconsistent(t *testing.T) {
	// A column too long to be packed makes the rules engine panic.
	var column []string
	for range 8 {
		column = append(column, "KS", "QH", "JC", "TD")
	}
	gs := BuildState(Layout{Columns: [][]string{column}})
	result := newSearcher(t, baselinePolicy).Search(context.Background(), gs)
	assert.Equal(t, searchers.Inconsistent, result.Outcome)
	require.Error(t, result.Err)
	assert.Len(t, gs.Tableau[0], 32)
}

func TestCycleRejection(t *testing.T) {
	// Only one free cell is empty and no card can be stacked: each column's top card can go to the
	// free cell, and from there only the Two of Spades can return to where it came from.
	gs := BuildState(Layout{
		FreeCells: []string{"KH", "KS", "QH", ""},
		Columns: [][]string{
			{"3H", "2S"}, {"5C", "9C"}, {"6C", "TC"}, {"7C", "JC"},
			{"4C", "8C"}, {"9S", "5S"}, {"TS", "6S"}, {"JS", "7S"},
		},
	})
	initial := gs.Clone()
	rootKey := PackCanonical(gs)
	require.NoError(t, gs.Execute(TableauToFreeCell(0, 3)))
	firstChildKey := PackCanonical(gs)
	require.NoError(t, gs.Undo(TableauToFreeCell(0, 3)))

	var siblingsChecked int
	result := newSearcher(t, baselinePolicy).
		WithTrace(func(info *dfs.TraceInfo) {
			require.NotNil(t, info.Cache)
			if info.Depth != 1 || info.Path[0] == TableauToFreeCell(0, 3) {
				return
			}
			// The first child was fully explored before its siblings, the root is still open.
			siblingsChecked++
			require.True(t, info.Cache.Contains(firstChildKey))
			require.False(t, info.Cache.Contains(rootKey))
		}).
		Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.Equal(t, 7, siblingsChecked)
	assert.EqualValues(t, 9, result.Stats.Nodes)
	assert.EqualValues(t, 1, result.Stats.CycleRejections)
	assert.EqualValues(t, 0, result.Stats.CacheHits)
	assert.Equal(t, 9, result.Stats.CacheSize)
	assert.True(t, gs.Equal(initial))

	// Without ancestors the cycle is only stopped by the depth limit.
	result = newSearcher(t, searchers.Policy{MaxDepth: 6}).Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.EqualValues(t, 0, result.Stats.CycleRejections)
	assert.Greater(t, result.Stats.DepthCutoffs, int64(0))
	assert.True(t, gs.Equal(initial))
}

func TestCacheHits(t *testing.T) {
	// Two empty free cells and only black cards in the tableau: no card can be stacked, and moving two
	// top cards to the free cells reaches the same canonical state in either order or free cell.
	gs := BuildState(Layout{
		FreeCells: []string{"KH", "KD", "", ""},
		Columns: [][]string{
			{"2C", "3C", "4C"}, {"5C", "6C", "7C"}, {"8C", "9C", "TC"}, {"JC", "QC", "KC"},
			{"2S", "3S", "4S"}, {"5S", "6S", "7S"}, {"8S", "9S", "TS"}, {"JS", "QS", "KS"},
		},
	})
	initial := gs.Clone()
	result := newSearcher(t, baselinePolicy).Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.EqualValues(t, 81, result.Stats.Nodes)
	assert.EqualValues(t, 36, result.Stats.CacheHits)
	assert.EqualValues(t, 0, result.Stats.CycleRejections)
	assert.Equal(t, 45, result.Stats.CacheSize)
	assert.True(t, gs.Equal(initial))

	// Without the cache every path is explored.
	result = newSearcher(t, searchers.Policy{Ancestors: true, Canonical: true}).Search(context.Background(), gs)
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.EqualValues(t, 0, result.Stats.CacheHits)
	assert.Greater(t, result.Stats.Nodes, int64(81))
	assert.True(t, gs.Equal(initial))
}

func TestBucketed(t *testing.T) {
	policy := baselinePolicy
	policy.Bucketed = true
	policy.MaxDepth = 200

	// Sorted columns: no inversions, so only foundation moves are tried.
	gs := BuildState(Layout{
		Foundations: []string{"JC", "JD", "JH", "JS"},
		Columns:     [][]string{{"KC", "QH"}, {"KD", "QC"}, {"KH", "QS"}, {"KS", "QD"}},
	})
	require.NoError(t, gs.Validate())
	require.Equal(t, 0, Inversions(gs))
	initial := gs.Clone()
	result := newSearcher(t, policy).
		WithTrace(func(info *dfs.TraceInfo) {
			require.Nil(t, info.Cache, "states without inversions are not cached")
		}).
		Search(context.Background(), gs)
	require.Equalf(t, searchers.Solved, result.Outcome, "result: %s", result)
	require.Len(t, result.Moves, 8)
	for _, m := range result.Moves {
		assert.Truef(t, m.IsFoundationMove(), "move %s", m)
	}
	assert.EqualValues(t, 9, result.Stats.Nodes)
	assert.Equal(t, 0, result.Stats.RootInversions)
	assert.Equal(t, 0, result.Stats.CacheBuckets)
	assert.True(t, gs.Equal(initial))
	replay(t, initial, result.Moves)

	// Each Queen is covered by a King: 4 inversions at the root.
	gs = NearlyWon()
	initial = gs.Clone()
	result = newSearcher(t, policy).
		WithTrace(func(info *dfs.TraceInfo) {
			if Inversions(info.State) > 0 {
				require.NotNil(t, info.Cache)
			}
		}).
		Search(context.Background(), gs)
	require.Equalf(t, searchers.Solved, result.Outcome, "result: %s", result)
	assert.Equal(t, 4, result.Stats.RootInversions)
	assert.True(t, gs.Equal(initial))
	replay(t, initial, result.Moves)

	// Deadlock has inversions, and its single node is cached in its bucket.
	result = newSearcher(t, policy).Search(context.Background(), Deadlock())
	assert.Equal(t, searchers.Exhausted, result.Outcome)
	assert.Equal(t, 1, result.Stats.CacheSize)
	assert.Equal(t, 1, result.Stats.CacheBuckets)
}
