package searchers

import (
	"fmt"
	"strings"

	"github.com/janpfeifer/freecellGo/internal/parameters"
	"github.com/pkg/errors"
)

// Ordering selects how the moves of a state are sorted before being explored.
type Ordering int

const (
	// OrderNone explores moves in the order they are generated.
	OrderNone Ordering = iota

	// OrderColumn explores first the moves taking cards from the same tableau column as the previous move.
	OrderColumn

	// OrderNeeded explores first the moves taking cards from the columns holding the lowest rank
	// still needed by the foundations.
	OrderNeeded
)

var orderingNames = []string{"none", "column", "needed"}

// String implements fmt.Stringer.
func (o Ordering) String() string {
	if o >= 0 && int(o) < len(orderingNames) {
		return orderingNames[o]
	}
	return fmt.Sprintf("Ordering(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Ordering) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, it's also used when reading strategies from YAML.
func (o *Ordering) UnmarshalText(text []byte) error {
	for ii, name := range orderingNames {
		if strings.EqualFold(name, string(text)) {
			*o = Ordering(ii)
			return nil
		}
	}
	return errors.Errorf("unknown move ordering %q, valid values are %q", text, orderingNames)
}

// DefaultCacheSize is the number of entries of the visited cache, if not otherwise configured.
const DefaultCacheSize = 1_000_000

// Policy configures which pruning techniques and which move ordering a search uses.
// The zero value is a plain depth-first search with no pruning and no limits, which is not valid:
// see Validate.
type Policy struct {
	// Ancestors enables the cycle guard: states in the current path are never revisited.
	Ancestors bool `yaml:"ancestors"`

	// BoundedCache enables the LRU cache of states proven not to lead to a solution.
	BoundedCache bool `yaml:"cache"`

	// Canonical makes states that differ only by free cell or foundation pile assignment
	// equivalent, for both the ancestor set and the visited cache.
	Canonical bool `yaml:"canonical"`

	// Bucketed splits the visited cache into one LRU per number of inversions (see state.Inversions),
	// each with CacheSize capacity. States without inversions are not cached: only foundation moves
	// are tried from them, and they are not subject to MaxDepth. It requires BoundedCache.
	Bucketed bool `yaml:"bucketed"`

	Ordering Ordering `yaml:"ordering"`

	// CacheSize is the capacity of the visited cache. If 0, DefaultCacheSize is used.
	CacheSize int `yaml:"cache_size"`

	// MaxDepth is the maximum number of moves in a path. 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`

	// MaxNodes is the maximum number of states visited before the search gives up with a Timeout.
	// 0 means unlimited.
	MaxNodes int `yaml:"max_nodes"`
}

// Validate returns an error if the policy can't be used.
func (p Policy) Validate() error {
	if !p.Ancestors && p.MaxDepth <= 0 {
		return errors.New("a policy without ancestor tracking requires a positive max_depth, otherwise it may loop forever")
	}
	if p.CacheSize < 0 || p.MaxDepth < 0 || p.MaxNodes < 0 {
		return errors.Errorf("cache_size (%d), max_depth (%d) and max_nodes (%d) can't be negative",
			p.CacheSize, p.MaxDepth, p.MaxNodes)
	}
	if p.Bucketed && !p.BoundedCache {
		return errors.New("a bucketed policy requires the visited cache (cache=true)")
	}
	if p.Ordering < OrderNone || p.Ordering > OrderNeeded {
		return errors.Errorf("invalid ordering %d", p.Ordering)
	}
	return nil
}

// EffectiveCacheSize returns CacheSize, or DefaultCacheSize if it is not set.
func (p Policy) EffectiveCacheSize() int {
	if p.CacheSize > 0 {
		return p.CacheSize
	}
	return DefaultCacheSize
}

// String implements fmt.Stringer, using the same format accepted by WithParams.
func (p Policy) String() string {
	return fmt.Sprintf("ancestors=%v,cache=%v,canonical=%v,bucketed=%v,ordering=%s,cache_size=%d,max_depth=%d,max_nodes=%d",
		p.Ancestors, p.BoundedCache, p.Canonical, p.Bucketed, p.Ordering, p.CacheSize, p.MaxDepth, p.MaxNodes)
}

// WithParams returns a copy of the policy with the given parameters overridden. Parameters used are
// removed from params, so unknown ones are left there. The returned policy is not validated.
//
// Parameters: ancestors, cache, canonical, bucketed, ordering, cache_size, max_depth, max_nodes.
func (p Policy) WithParams(params parameters.Params) (Policy, error) {
	var err error
	if p.Ancestors, err = parameters.PopParamOr(params, "ancestors", p.Ancestors); err != nil {
		return p, err
	}
	if p.BoundedCache, err = parameters.PopParamOr(params, "cache", p.BoundedCache); err != nil {
		return p, err
	}
	if p.Canonical, err = parameters.PopParamOr(params, "canonical", p.Canonical); err != nil {
		return p, err
	}
	if p.Bucketed, err = parameters.PopParamOr(params, "bucketed", p.Bucketed); err != nil {
		return p, err
	}
	ordering, err := parameters.PopParamOr(params, "ordering", p.Ordering.String())
	if err != nil {
		return p, err
	}
	if err = p.Ordering.UnmarshalText([]byte(ordering)); err != nil {
		return p, err
	}
	if p.CacheSize, err = parameters.PopParamOr(params, "cache_size", p.CacheSize); err != nil {
		return p, err
	}
	if p.MaxDepth, err = parameters.PopParamOr(params, "max_depth", p.MaxDepth); err != nil {
		return p, err
	}
	if p.MaxNodes, err = parameters.PopParamOr(params, "max_nodes", p.MaxNodes); err != nil {
		return p, err
	}
	return p, nil
}
