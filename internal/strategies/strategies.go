// Package strategies holds the registry of named search strategies, and the entry points to solve a
// game with one of them.
//
// A strategy is configured with a string: its name optionally followed by a colon (":") and a
// comma-separated list of parameters overriding its policy, e.g. "baseline:cache_size=100000,max_depth=400".
// See searchers.Policy.WithParams for the parameters accepted.
package strategies

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/janpfeifer/freecellGo/internal/generics"
	"github.com/janpfeifer/freecellGo/internal/parameters"
	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/freecellGo/internal/searchers/dfs"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/pkg/errors"
)

// Strategy is a named search policy.
type Strategy struct {
	Name        string
	Description string
	Policy      searchers.Policy
}

// DefaultStrategy is used when the configuration is empty.
var DefaultStrategy = "baseline"

var (
	muRegistry sync.RWMutex
	registry   = make(map[string]Strategy)

	validName = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// Register a strategy under the given name, so it can be used by Solve and friends. It replaces any
// strategy previously registered with the same name.
func Register(name, description string, policy searchers.Policy) error {
	if !validName.MatchString(name) {
		return errors.Errorf("invalid strategy name %q: use only letters, digits, '_' and '-'", name)
	}
	if err := policy.Validate(); err != nil {
		return errors.WithMessagef(err, "invalid policy for strategy %q", name)
	}
	muRegistry.Lock()
	defer muRegistry.Unlock()
	registry[name] = Strategy{Name: name, Description: description, Policy: policy}
	return nil
}

// List returns the registered strategies sorted by name.
func List() []Strategy {
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	return generics.SliceMap(generics.KeysSlice(registry), func(name string) Strategy { return registry[name] })
}

// Lookup returns the strategy for the given configuration string, with its policy updated with the
// parameters given in the configuration. If config is empty, DefaultStrategy is used.
func Lookup(config string) (Strategy, error) {
	if config == "" {
		config = DefaultStrategy
	}
	name, params := parameters.SplitConfig(config)
	muRegistry.RLock()
	strategy, found := registry[name]
	muRegistry.RUnlock()
	if !found {
		return Strategy{}, errors.Errorf("unknown strategy %q", name)
	}

	var err error
	strategy.Policy, err = strategy.Policy.WithParams(params)
	if err != nil {
		return Strategy{}, errors.WithMessagef(err, "strategy %q", config)
	}
	if err = parameters.CheckAllConsumed(params); err != nil {
		return Strategy{}, errors.WithMessagef(err, "strategy %q", config)
	}
	if err = strategy.Policy.Validate(); err != nil {
		return Strategy{}, errors.WithMessagef(err, "strategy %q", config)
	}
	return strategy, nil
}

// NewSearcher returns a searcher for the given strategy configuration and time budget (0 for no limit).
func NewSearcher(config string, timeBudget time.Duration) (*dfs.Searcher, error) {
	strategy, err := Lookup(config)
	if err != nil {
		return nil, err
	}
	searcher, err := dfs.New(strategy.Policy)
	if err != nil {
		return nil, err
	}
	return searcher.WithMaxTime(timeBudget), nil
}

// Solve searches for a solution of gs using the strategy given by config, with the given time budget
// (0 for no limit).
//
// The state gs is restored when Solve returns. An invalid configuration is reported as a result with
// Outcome == searchers.Inconsistent, and the error in Result.Err.
func Solve(gs *state.GameState, config string, timeBudget time.Duration) searchers.Result {
	return SolveWithCancel(context.Background(), gs, config, timeBudget)
}

// SolveWithCancel is like Solve, but the search can be cancelled with ctx, in which case the result
// Outcome is searchers.Cancelled.
func SolveWithCancel(ctx context.Context, gs *state.GameState, config string, timeBudget time.Duration) searchers.Result {
	searcher, err := NewSearcher(config, timeBudget)
	if err != nil {
		return searchers.Result{Outcome: searchers.Inconsistent, Err: err}
	}
	return searcher.Search(ctx, gs)
}
