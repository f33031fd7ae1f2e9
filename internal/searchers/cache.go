package searchers

import (
	"math"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/janpfeifer/freecellGo/internal/state"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
)

// UnboundedDepth is the remaining depth budget recorded for states explored by a search without
// depth limit.
const UnboundedDepth = math.MaxInt

// VisitedCache remembers states proven not to lead to a solution, along with the remaining depth
// budget the search had when it proved it. It holds a fixed number of entries: when full, the least
// recently used entry is evicted.
//
// It's not safe for concurrent use: each search owns its own cache.
type VisitedCache struct {
	lru       *simplelru.LRU[state.PackedState, int]
	evictions int64
}

// NewVisitedCache creates a VisitedCache with the given capacity, which must be positive.
func NewVisitedCache(capacity int) (*VisitedCache, error) {
	lru, err := simplelru.NewLRU[state.PackedState, int](capacity, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create visited cache with capacity %d", capacity)
	}
	return &VisitedCache{lru: lru}, nil
}

// Get returns the depth budget recorded for p, and whether p is in the cache. It refreshes the
// recency of p.
func (c *VisitedCache) Get(p state.PackedState) (depthLeft int, found bool) {
	return c.lru.Get(p)
}

// Put records p as explored with the given remaining depth budget, marking it as the most recently
// used. If p was already recorded, the larger budget is kept.
func (c *VisitedCache) Put(p state.PackedState, depthLeft int) {
	if previous, found := c.lru.Peek(p); found && previous > depthLeft {
		depthLeft = previous
	}
	if evicted := c.lru.Add(p, depthLeft); evicted {
		c.evictions++
	}
}

// Explored returns whether p was proven fruitless with at least depthLeft of budget, in which case
// searching it again with depthLeft can't find anything new.
func (c *VisitedCache) Explored(p state.PackedState, depthLeft int) bool {
	recorded, found := c.Get(p)
	return found && recorded >= depthLeft
}

// Contains returns whether p is in the cache, without changing its recency.
func (c *VisitedCache) Contains(p state.PackedState) bool {
	return c.lru.Contains(p)
}

// Len returns the number of entries in the cache.
func (c *VisitedCache) Len() int {
	return c.lru.Len()
}

// Evictions returns the number of entries evicted so far.
func (c *VisitedCache) Evictions() int64 {
	return c.evictions
}

// BucketedCache holds one VisitedCache per bucket, created on first use. The dfs searcher uses the
// number of inversions of a state as its bucket, so states far from solved don't evict the ones close
// to it.
type BucketedCache struct {
	capacity int
	buckets  []*VisitedCache
}

// NewBucketedCache creates a BucketedCache whose buckets have the given capacity each.
func NewBucketedCache(capacity int) (*BucketedCache, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("bucketed cache capacity must be positive, got %d", capacity)
	}
	return &BucketedCache{capacity: capacity}, nil
}

// Bucket returns the cache for bucket idx, creating it if needed. It panics if idx is negative.
func (b *BucketedCache) Bucket(idx int) *VisitedCache {
	if idx >= len(b.buckets) {
		b.buckets = append(b.buckets, make([]*VisitedCache, idx+1-len(b.buckets))...)
	}
	c := b.buckets[idx]
	if c == nil {
		// The capacity was checked by NewBucketedCache.
		c = must.M1(NewVisitedCache(b.capacity))
		b.buckets[idx] = c
	}
	return c
}

// NumBuckets returns the number of buckets used so far.
func (b *BucketedCache) NumBuckets() (count int) {
	for _, c := range b.buckets {
		if c != nil {
			count++
		}
	}
	return
}

// Len returns the number of entries in all buckets.
func (b *BucketedCache) Len() (total int) {
	for _, c := range b.buckets {
		if c != nil {
			total += c.Len()
		}
	}
	return
}

// Evictions returns the number of entries evicted from all buckets.
func (b *BucketedCache) Evictions() (total int64) {
	for _, c := range b.buckets {
		if c != nil {
			total += c.Evictions()
		}
	}
	return
}
