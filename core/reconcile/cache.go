package reconcile

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SnapshotLoader loads the full candidate list from the catalog.
type SnapshotLoader func(ctx context.Context) ([]Candidate, error)

// SnapshotCache holds a catalog candidate snapshot for read-only lookups.
// Concurrent misses share a single load.
type SnapshotCache struct {
	ttl time.Duration

	mu         sync.RWMutex
	candidates []Candidate
	built      time.Time
	// generation is bumped by Invalidate. A load started under an older
	// generation is returned to its callers but never cached.
	generation uint64

	sf singleflight.Group
}

// NewSnapshotCache creates a cache. A zero TTL disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

func (c *SnapshotCache) fresh() bool {
	if c.ttl == 0 || c.built.IsZero() {
		return false
	}
	return time.Since(c.built) <= c.ttl
}

// Get returns the cached snapshot, or loads a new one when it has expired.
// The shared load is detached from the cancellation of any single caller;
// a caller whose ctx is done stops waiting without failing the others.
func (c *SnapshotCache) Get(ctx context.Context, load SnapshotLoader) ([]Candidate, error) {
	c.mu.RLock()
	if c.fresh() {
		candidates := c.candidates
		c.mu.RUnlock()
		return candidates, nil
	}
	generation := c.generation
	c.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(strconv.FormatUint(generation, 10), func() (any, error) {
		c.mu.RLock()
		if c.fresh() && c.generation == generation {
			candidates := c.candidates
			c.mu.RUnlock()
			return candidates, nil
		}
		c.mu.RUnlock()

		candidates, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == generation {
			c.candidates = candidates
			c.built = time.Now()
		}
		c.mu.Unlock()
		return candidates, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Candidate), nil
	}
}

// Invalidate drops the cached snapshot so the next Get reloads it.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.candidates = nil
	c.built = time.Time{}
	c.generation++
	c.mu.Unlock()
}
