// Package bench solves a range of Microsoft deals with a strategy, in parallel, and keeps a summary
// of the results.
//
// Each solved (or failed) deal is saved in its own solution file, and the summary file is updated
// every few games, so an interrupted benchmark can be resumed: seeds already in the summary file are
// skipped.
package bench

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/janpfeifer/freecellGo/internal/generics"
	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/solution"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/janpfeifer/freecellGo/internal/strategies"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// SaveEvery is the number of finished games between updates of the summary file.
var SaveEvery = 10

// Config of a benchmark run.
type Config struct {
	// First seed and number of seeds to solve.
	First, Count int

	// Strategy configuration, see strategies.Lookup.
	Strategy string

	// Timeout per game. 0 means no limit.
	Timeout time.Duration

	// Parallelism is the number of games solved concurrently. If <= 0, runtime.NumCPU() is used.
	Parallelism int

	// ResultsDir where the solution of each seed is saved as "<seed>.json". If empty, they are not saved.
	ResultsDir string

	// SummaryPath of the summary file. If empty, no summary is saved and nothing is resumed.
	SummaryPath string
}

// GameResult is the entry of one game in the summary file.
type GameResult struct {
	Seed      int               `json:"seed"`
	Solved    bool              `json:"solved"`
	Outcome   searchers.Outcome `json:"outcome"`
	ElapsedMs int64             `json:"execution_time_ms"`
	Timestamp time.Time         `json:"timestamp"`
	MoveCount int               `json:"move_count"`
}

// Summary of a benchmark.
type Summary struct {
	TotalGames    int     `json:"total_games"`
	SolvedGames   int     `json:"solved_games"`
	FailedGames   int     `json:"failed_games"`
	AverageTimeMs float64 `json:"average_time_ms"`
	TimeoutSecs   float64 `json:"timeout_secs"`
}

// SummaryFile is the format of the summary file.
type SummaryFile struct {
	Results []GameResult `json:"results"`
	Summary Summary      `json:"summary"`
}

// Summarize the given results.
func Summarize(results []GameResult, timeout time.Duration) Summary {
	s := Summary{TotalGames: len(results), TimeoutSecs: timeout.Seconds()}
	var totalMs int64
	for _, r := range results {
		if r.Solved {
			s.SolvedGames++
		}
		totalMs += r.ElapsedMs
	}
	s.FailedGames = s.TotalGames - s.SolvedGames
	if s.TotalGames > 0 {
		s.AverageTimeMs = float64(totalMs) / float64(s.TotalGames)
	}
	return s
}

// LoadSummary reads a summary file. A missing file returns an empty SummaryFile and no error.
func LoadSummary(path string) (*SummaryFile, error) {
	sf := &SummaryFile{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return nil, errors.Wrapf(err, "failed to read summary file")
	}
	if err = json.Unmarshal(data, sf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse summary file %q", path)
	}
	return sf, nil
}

// Save the summary file, with the results sorted by seed and the summary recomputed.
func (sf *SummaryFile) Save(path string, timeout time.Duration) error {
	slices.SortFunc(sf.Results, func(a, b GameResult) int { return a.Seed - b.Seed })
	sf.Summary = Summarize(sf.Results, timeout)
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode summary")
	}
	return solution.WriteFileAtomic(path, data)
}

// ResultPath returns the path of the solution file of the given seed.
func ResultPath(resultsDir string, seed int) string {
	return filepath.Join(resultsDir, strconv.Itoa(seed)+".json")
}

// runner holds the state shared by the workers of one benchmark run.
type runner struct {
	config Config

	mu       sync.Mutex
	sf       *SummaryFile
	unsaved  int
	finished int
}

// Run the benchmark described by config.
//
// If ctx is cancelled, games being solved are abandoned (and not recorded), no new games are
// started, the summary file is saved with the games finished so far, and ctx's error is returned.
// The same happens if solving a game fails, and the first failure is returned.
func Run(ctx context.Context, config Config) (Summary, error) {
	if config.Count <= 0 {
		return Summary{}, errors.Errorf("invalid number of seeds %d", config.Count)
	}
	if config.First < 1 || config.First+config.Count-1 > state.MaxSeed {
		return Summary{}, errors.Errorf("invalid range of seeds [%d, %d], they must be in [1, %d]",
			config.First, config.First+config.Count-1, state.MaxSeed)
	}
	if _, err := strategies.Lookup(config.Strategy); err != nil {
		return Summary{}, err
	}
	if config.ResultsDir != "" {
		if err := os.MkdirAll(config.ResultsDir, 0o755); err != nil {
			return Summary{}, errors.Wrapf(err, "failed to create results directory")
		}
	}

	r := &runner{config: config, sf: &SummaryFile{}}
	if config.SummaryPath != "" {
		var err error
		r.sf, err = LoadSummary(config.SummaryPath)
		if err != nil {
			return Summary{}, err
		}
	}
	done := generics.MakeSet[int](len(r.sf.Results))
	for _, result := range r.sf.Results {
		done.Insert(result.Seed)
	}

	parallelism := config.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	// gCtx is cancelled on the first failure, so no new seeds are started after it.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	var skipped int
	for seed := config.First; seed < config.First+config.Count; seed++ {
		if done.Has(seed) {
			skipped++
			continue
		}
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error { return r.solve(gCtx, seed) })
	}
	if skipped > 0 {
		klog.Infof("Skipped %d seeds already in %q", skipped, config.SummaryPath)
	}
	err := g.Wait()
	if saveErr := r.save(); saveErr != nil && err == nil {
		err = saveErr
	}
	if err == nil {
		err = ctx.Err()
	}
	return Summarize(r.sf.Results, config.Timeout), err
}

// solve one seed, save its solution file, and record its result.
func (r *runner) solve(ctx context.Context, seed int) error {
	if ctx.Err() != nil {
		return nil
	}
	gs, err := state.NewDeal(seed)
	if err != nil {
		return err
	}
	result := strategies.SolveWithCancel(ctx, gs, r.config.Strategy, r.config.Timeout)
	switch result.Outcome {
	case searchers.Cancelled:
		return nil
	case searchers.Inconsistent:
		return errors.WithMessagef(result.Err, "solving deal #%d", seed)
	}
	if result.Solved() {
		if err = solution.Verify(gs, result.Moves); err != nil {
			return errors.WithMessagef(err, "invalid solution for deal #%d", seed)
		}
	}

	f := solution.New(seed, r.config.Strategy, result)
	if r.config.ResultsDir != "" {
		if err = f.Save(ResultPath(r.config.ResultsDir, seed)); err != nil {
			return err
		}
	}
	klog.V(1).Infof("Deal #%d: %s", seed, result)
	return r.record(GameResult{
		Seed:      seed,
		Solved:    f.Solved,
		Outcome:   f.Outcome,
		ElapsedMs: f.ElapsedMs,
		Timestamp: f.Timestamp,
		MoveCount: f.MoveCount,
	})
}

func (r *runner) record(result GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sf.Results = append(r.sf.Results, result)
	r.unsaved++
	r.finished++
	if r.finished%SaveEvery == 0 {
		s := Summarize(r.sf.Results, r.config.Timeout)
		klog.Infof("%d games finished in this run: %d/%d solved, average %.1f ms",
			r.finished, s.SolvedGames, s.TotalGames, s.AverageTimeMs)
	}
	if r.unsaved >= SaveEvery {
		return r.saveLocked()
	}
	return nil
}

func (r *runner) save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *runner) saveLocked() error {
	r.unsaved = 0
	if r.config.SummaryPath == "" {
		return nil
	}
	return r.sf.Save(r.config.SummaryPath, r.config.Timeout)
}

// Frontier takes a known solution of the deal given by seed, replays all but its last back moves,
// and searches again from there. It is used to measure how a strategy performs close to the end of
// a game.
func Frontier(ctx context.Context, seed int, moves []state.Move, back int, config string, timeout time.Duration) (searchers.Result, error) {
	if back < 0 || back > len(moves) {
		return searchers.Result{}, errors.Errorf("cannot go back %d moves in a solution with %d moves", back, len(moves))
	}
	gs, err := state.NewDeal(seed)
	if err != nil {
		return searchers.Result{}, err
	}
	for ii, m := range moves[:len(moves)-back] {
		if err = gs.Execute(m); err != nil {
			return searchers.Result{}, errors.WithMessagef(err, "move #%d of the solution of deal #%d", ii, seed)
		}
	}
	result := strategies.SolveWithCancel(ctx, gs, config, timeout)
	if result.Outcome == searchers.Inconsistent {
		return result, result.Err
	}
	return result, nil
}
