// benchmark solves a range of Microsoft FreeCell deals in parallel and writes a summary of the results.
// It can be interrupted and rerun with the same -summary file, in which case it resumes where it stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/janpfeifer/freecellGo/internal/bench"
	"github.com/janpfeifer/freecellGo/internal/profilers"
	"github.com/janpfeifer/freecellGo/internal/solution"
	"github.com/janpfeifer/freecellGo/internal/strategies"
	"github.com/janpfeifer/freecellGo/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagFirst          = flag.Int("first", 1, "First seed to solve.")
	flagCount          = flag.Int("count", 100, "Number of seeds to solve.")
	flagStrategy       = flag.String("strategy", strategies.DefaultStrategy, "Strategy configuration, see freecell -list.")
	flagTimeout        = flag.Duration("timeout", 10*time.Second, "Time budget per game, 0 for no limit.")
	flagParallelism    = flag.Int("parallelism", 0, "Number of games solved in parallel. Defaults to the number of CPUs.")
	flagResultsDir     = flag.String("results_dir", "results", "Directory where the result of each seed is saved. Empty to disable.")
	flagSummary        = flag.String("summary", "benchmark_results.json", "Summary file, also used to resume an interrupted benchmark.")
	flagStrategiesFile = flag.String("strategies_file", "", "YAML file with extra strategies to register.")
	flagFrontier       = flag.Int("frontier", 0, "If > 0, instead of solving full deals, takes the solutions in -results_dir, "+
		"undoes the last -frontier moves and solves again from there.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 10*time.Second)
	defer cancel()
	must.M(profilers.Setup(ctx))
	defer profilers.OnQuit()

	if *flagStrategiesFile != "" {
		must.M1(strategies.LoadFile(*flagStrategiesFile))
	}
	if *flagFrontier > 0 {
		frontier(ctx)
		return
	}

	config := bench.Config{
		First:       *flagFirst,
		Count:       *flagCount,
		Strategy:    *flagStrategy,
		Timeout:     *flagTimeout,
		Parallelism: *flagParallelism,
		ResultsDir:  *flagResultsDir,
		SummaryPath: *flagSummary,
	}
	start := time.Now()
	summary, err := bench.Run(ctx, config)
	if err != nil && !errors.Is(err, context.Canceled) {
		klog.Exitf("Benchmark failed: %+v", err)
	}
	fmt.Printf("Benchmark of %q on seeds [%d, %d] (%s):\n", config.Strategy, config.First,
		config.First+config.Count-1, time.Since(start).Truncate(time.Millisecond))
	fmt.Printf("\tTotal games:  %d\n", summary.TotalGames)
	fmt.Printf("\tSolved:       %d\n", summary.SolvedGames)
	fmt.Printf("\tFailed:       %d\n", summary.FailedGames)
	fmt.Printf("\tAverage time: %.1f ms\n", summary.AverageTimeMs)
	if err != nil {
		klog.Warningf("Benchmark interrupted, rerun with the same -summary to resume.")
	}
}

// frontier re-solves the known solutions of the seeds, from -frontier moves before their end.
func frontier(ctx context.Context) {
	if *flagResultsDir == "" {
		klog.Exitf("-frontier requires -results_dir with previously solved seeds")
	}
	var solved, total int
	var elapsed time.Duration
	for seed := *flagFirst; seed < *flagFirst+*flagCount && ctx.Err() == nil; seed++ {
		f, err := solution.Load(bench.ResultPath(*flagResultsDir, seed))
		if err != nil {
			klog.V(1).Infof("Skipping seed %d: %v", seed, err)
			continue
		}
		if !f.Solved || f.MoveCount < *flagFrontier {
			continue
		}
		result, err := bench.Frontier(ctx, seed, f.SolutionMoves, *flagFrontier, *flagStrategy, *flagTimeout)
		if err != nil {
			klog.Exitf("Frontier of deal #%d failed: %+v", seed, err)
		}
		total++
		if result.Solved() {
			solved++
		}
		elapsed += result.Stats.Elapsed
		klog.V(1).Infof("Deal #%d, %d moves from the end: %s", seed, *flagFrontier, result)
	}
	if total == 0 {
		fmt.Printf("No solutions found in %q for seeds [%d, %d]\n", filepath.Clean(*flagResultsDir),
			*flagFirst, *flagFirst+*flagCount-1)
		return
	}
	fmt.Printf("Frontier benchmark, %d moves from the end, strategy %q:\n", *flagFrontier, *flagStrategy)
	fmt.Printf("\tSolved %d of %d, average time %s\n", solved, total, (elapsed / time.Duration(total)).Truncate(time.Microsecond))
}
