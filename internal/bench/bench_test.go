package bench

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/solution"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/janpfeifer/freecellGo/internal/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quickStrategy gives up after a few nodes, so the benchmark tests run fast.
const quickStrategy = "baseline:max_nodes=2000"

func TestSummarize(t *testing.T) {
	s := Summarize([]GameResult{
		{Seed: 1, Solved: true, ElapsedMs: 10},
		{Seed: 2, Solved: false, ElapsedMs: 30},
		{Seed: 3, Solved: true, ElapsedMs: 20},
	}, 5*time.Second)
	assert.Equal(t, Summary{TotalGames: 3, SolvedGames: 2, FailedGames: 1, AverageTimeMs: 20, TimeoutSecs: 5}, s)
	assert.Equal(t, Summary{TimeoutSecs: 1}, Summarize(nil, time.Second))
}

func TestRunAndResume(t *testing.T) {
	dir := t.TempDir()
	config := Config{
		First:       1,
		Count:       3,
		Strategy:    quickStrategy,
		Timeout:     time.Minute,
		Parallelism: 2,
		ResultsDir:  filepath.Join(dir, "results"),
		SummaryPath: filepath.Join(dir, "summary.json"),
	}
	summary, err := Run(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalGames)
	assert.Equal(t, 3, summary.SolvedGames+summary.FailedGames)
	assert.Equal(t, 60.0, summary.TimeoutSecs)

	sf, err := LoadSummary(config.SummaryPath)
	require.NoError(t, err)
	require.Len(t, sf.Results, 3)
	for ii, result := range sf.Results {
		assert.Equal(t, ii+1, result.Seed)
		f, err := solution.Load(ResultPath(config.ResultsDir, result.Seed))
		require.NoError(t, err)
		assert.Equal(t, result.Outcome, f.Outcome)
		assert.Equal(t, quickStrategy, f.Strategy)
		if f.Solved {
			assert.NoError(t, f.Verify())
		} else {
			assert.Equal(t, searchers.Timeout, f.Outcome)
		}
	}
	assert.Equal(t, summary, sf.Summary)

	// Resume with more seeds: only the new ones are solved.
	require.NoError(t, os.RemoveAll(config.ResultsDir))
	config.Count = 5
	summary, err = Run(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalGames)
	for seed := 1; seed <= 5; seed++ {
		_, err = os.Stat(ResultPath(config.ResultsDir, seed))
		if seed <= 3 {
			assert.Truef(t, os.IsNotExist(err), "seed %d should have been skipped", seed)
		} else {
			assert.NoErrorf(t, err, "seed %d should have been solved", seed)
		}
	}
	sf, err = LoadSummary(config.SummaryPath)
	require.NoError(t, err)
	require.Len(t, sf.Results, 5)
	assert.Equal(t, 5, sf.Results[4].Seed)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	for _, config := range []Config{
		{First: 1, Count: 0},
		{First: 0, Count: 3},
		{First: state.MaxSeed, Count: 2},
		{First: 1, Count: 1, Strategy: "unknown"},
	} {
		_, err := Run(ctx, config)
		assert.Errorf(t, err, "config %+v should have failed", config)
	}

	// Corrupted summary file.
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, os.WriteFile(path, []byte("{results"), 0o644))
	_, err := Run(ctx, Config{First: 1, Count: 1, Strategy: quickStrategy, SummaryPath: path})
	assert.Error(t, err)
}

func TestRunStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	config := Config{
		First:       1,
		Count:       10,
		Strategy:    quickStrategy,
		Timeout:     time.Minute,
		Parallelism: 1,
		ResultsDir:  filepath.Join(dir, "results"),
		SummaryPath: filepath.Join(dir, "summary.json"),
	}
	// A directory in the place of the temporary file makes saving the solution of seed 1 fail.
	require.NoError(t, os.MkdirAll(ResultPath(config.ResultsDir, 1)+"~tmp", 0o755))
	_, err := Run(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1.json~tmp")
	for seed := 1; seed <= config.Count; seed++ {
		_, err = os.Stat(ResultPath(config.ResultsDir, seed))
		assert.Truef(t, os.IsNotExist(err), "seed %d should not have been solved after the failure", seed)
	}
	sf, err := LoadSummary(config.SummaryPath)
	require.NoError(t, err)
	assert.Empty(t, sf.Results)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	config := Config{First: 1, Count: 10, Strategy: quickStrategy, SummaryPath: filepath.Join(dir, "summary.json")}
	summary, err := Run(ctx, config)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.TotalGames)
	sf, err := LoadSummary(config.SummaryPath)
	require.NoError(t, err)
	assert.Empty(t, sf.Results)
}

func TestFrontier(t *testing.T) {
	gs, err := state.NewDeal(1)
	require.NoError(t, err)
	result := strategies.Solve(gs, "baseline", 2*time.Minute)
	require.Equalf(t, searchers.Solved, result.Outcome, "result: %s", result)
	moves := result.Moves

	ctx := context.Background()
	result, err = Frontier(ctx, 1, moves, 0, "baseline", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, searchers.Solved, result.Outcome)
	assert.Empty(t, result.Moves)

	back := min(10, len(moves))
	result, err = Frontier(ctx, 1, moves, back, "baseline", time.Minute)
	require.NoError(t, err)
	require.Equal(t, searchers.Solved, result.Outcome)
	full := append(append([]state.Move(nil), moves[:len(moves)-back]...), result.Moves...)
	assert.NoError(t, solution.Verify(gs, full))

	_, err = Frontier(ctx, 1, moves, len(moves)+1, "baseline", time.Minute)
	assert.Error(t, err)
	_, err = Frontier(ctx, 1, moves, 1, "unknown", time.Minute)
	assert.Error(t, err)
	_, err = Frontier(ctx, 2, moves, 0, "baseline", time.Minute)
	assert.Error(t, err, "the solution of deal #1 should not be valid for deal #2")
}
