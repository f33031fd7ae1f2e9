package strategies

import (
	"github.com/janpfeifer/freecellGo/internal/searchers"
	"github.com/janpfeifer/must"
)

// DefaultMaxDepth of the built-in strategies that don't track ancestors, and of "bucketed".
const DefaultMaxDepth = 200

func init() {
	for _, s := range []Strategy{
		{
			Name:        "plain",
			Description: "Plain depth-first search limited only by depth.",
			Policy:      searchers.Policy{MaxDepth: DefaultMaxDepth},
		},
		{
			Name:        "ancestors",
			Description: "Depth-first search that never revisits states in the current path.",
			Policy:      searchers.Policy{Ancestors: true, Canonical: true, MaxDepth: DefaultMaxDepth},
		},
		{
			Name:        "cache",
			Description: "Depth-first search with an LRU cache of states already explored, canonical encoding.",
			Policy:      searchers.Policy{BoundedCache: true, Canonical: true, MaxDepth: DefaultMaxDepth},
		},
		{
			Name:        "raw-cache",
			Description: "Depth-first search with an LRU cache of states already explored, raw encoding.",
			Policy:      searchers.Policy{BoundedCache: true, MaxDepth: DefaultMaxDepth},
		},
		{
			Name: "baseline",
			Description: "Ancestors and LRU cache with canonical encoding, no depth limit, moves from the " +
				"previous move's column first.",
			Policy: searchers.Policy{
				Ancestors: true, BoundedCache: true, Canonical: true, Ordering: searchers.OrderColumn,
			},
		},
		{
			Name: "needed",
			Description: "Like baseline, but moves from the columns holding the lowest cards needed by the " +
				"foundations first.",
			Policy: searchers.Policy{
				Ancestors: true, BoundedCache: true, Canonical: true, Ordering: searchers.OrderNeeded,
			},
		},
		{
			Name: "bucketed",
			Description: "Like baseline, with one LRU cache per number of column inversions and depth limited; " +
				"states without inversions are finished with foundation moves only.",
			Policy: searchers.Policy{
				Ancestors: true, BoundedCache: true, Canonical: true, Bucketed: true,
				Ordering: searchers.OrderColumn, MaxDepth: DefaultMaxDepth,
			},
		},
	} {
		must.M(Register(s.Name, s.Description, s.Policy))
	}
}
