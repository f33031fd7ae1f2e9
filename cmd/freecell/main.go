// freecell solves one Microsoft FreeCell deal with one of the registered strategies.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/janpfeifer/freecellGo/internal/profilers"
	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/solution"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/janpfeifer/freecellGo/internal/strategies"
	"github.com/janpfeifer/freecellGo/internal/ui/cli"
	"github.com/janpfeifer/freecellGo/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"golang.org/x/term"
	"k8s.io/klog/v2"
)

var (
	flagSeed           = flag.Int("seed", 1, "Microsoft deal number to solve, from 1 to 2^31-1.")
	flagStrategy       = flag.String("strategy", strategies.DefaultStrategy, "Strategy configuration, e.g. \"baseline:max_depth=400\". See -list.")
	flagTimeout        = flag.Duration("timeout", time.Minute, "Time budget for the search, 0 for no limit.")
	flagStrategiesFile = flag.String("strategies_file", "", "YAML file with extra strategies to register.")
	flagList           = flag.Bool("list", false, "List the registered strategies and exit.")
	flagOutput         = flag.String("output", "", "If set, save the result (and solution) as JSON to this file.")
	flagPrint          = flag.Bool("print", false, "Print the board after each move of the solution.")
	flagState          = flag.String("state", "", "Hex packed state to solve instead of -seed, as logged by the solver (-v=1).")
	flagVerify         = flag.String("verify", "", "Verify the solution in the given JSON file, instead of solving.")
	flagColor          = flag.Bool("color", term.IsTerminal(int(os.Stdout.Fd())), "Use colors in the output.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()
	must.M(profilers.Setup(ctx))
	defer profilers.OnQuit()

	if *flagStrategiesFile != "" {
		names, err := strategies.LoadFile(*flagStrategiesFile)
		if err != nil {
			klog.Exitf("Failed to load strategies: %+v", err)
		}
		klog.Infof("Loaded strategies %q from %q", names, *flagStrategiesFile)
	}
	if *flagList {
		listStrategies()
		return
	}

	ui := cli.New(*flagColor)
	if *flagVerify != "" {
		verify(ui, *flagVerify)
		return
	}

	seed := *flagSeed
	var gs *state.GameState
	var err error
	if *flagState != "" {
		seed = 0
		gs, err = state.UnpackString(*flagState)
		if err != nil {
			klog.Exitf("Invalid -state: %+v", err)
		}
		fmt.Println("Packed state:")
	} else {
		gs, err = state.NewDeal(seed)
		if err != nil {
			klog.Exitf("Invalid -seed: %+v", err)
		}
		fmt.Printf("Deal #%d:\n", seed)
		klog.V(1).Infof("Deal #%d packed: %s", seed, state.Pack(gs))
	}
	ui.PrintState(gs)

	s := spinning.New(ctx, fmt.Sprintf("Solving with %q", *flagStrategy))
	result := strategies.SolveWithCancel(ctx, gs, *flagStrategy, *flagTimeout)
	s.Done()
	fmt.Println(result)
	if result.Outcome == searchers.Inconsistent {
		klog.Exitf("Search failed: %+v", result.Err)
	}

	if result.Solved() {
		must.M(solution.Verify(gs, result.Moves))
		ui.PrintSolution(result.Moves)
		if *flagPrint {
			must.M(ui.Replay(gs, result.Moves))
		}
	}
	if *flagOutput != "" {
		f := solution.New(seed, *flagStrategy, result)
		if *flagState != "" {
			f.WithInitialState(gs)
		}
		if err = f.Save(*flagOutput); err != nil {
			klog.Exitf("Failed to save result: %+v", err)
		}
		klog.Infof("Result saved to %q", *flagOutput)
	}
}

func listStrategies() {
	for _, s := range strategies.List() {
		fmt.Printf("%-12s %s\n", s.Name, s.Description)
		fmt.Printf("%-12s %s\n", "", s.Policy)
	}
}

// verify the solution saved in path, and optionally print it.
func verify(ui *cli.UI, path string) {
	f, err := solution.Load(path)
	if err != nil {
		klog.Exitf("%+v", err)
	}
	if err = f.Verify(); err != nil {
		klog.Exitf("Solution of deal #%d in %q is not valid: %+v", f.Seed, path, err)
	}
	fmt.Printf("Solution of deal #%d with %d moves (strategy %q) is valid.\n", f.Seed, f.MoveCount, f.Strategy)
	if *flagPrint {
		gs := must.M1(f.Initial())
		ui.PrintSolution(f.SolutionMoves)
		must.M(ui.Replay(gs, f.SolutionMoves))
	}
}
