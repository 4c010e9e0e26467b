package playerjs

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const defaultCacheSize = 16

// Cache maps player versions to extracted programs. Builds for the same
// version are coalesced so concurrent callers trigger exactly one script
// download and analysis; distinct versions build independently. Failed builds
// are never stored, so a later call may try again.
type Cache struct {
	group singleflight.Group
	store *lru.Cache[string, *Program]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	store, err := lru.New[string, *Program](size)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// GetOrBuild returns the cached program for version, or runs build to create
// it. Concurrent callers for the same version share one build and observe the
// same program value; the first caller's context governs that build.
func (c *Cache) GetOrBuild(ctx context.Context, version string, build func(context.Context) (*Program, error)) (*Program, error) {
	if prog, ok := c.store.Get(version); ok {
		return prog, nil
	}
	v, err, _ := c.group.Do(version, func() (interface{}, error) {
		if prog, ok := c.store.Get(version); ok {
			return prog, nil
		}
		prog, err := build(ctx)
		if err != nil {
			return nil, err
		}
		c.store.Add(version, prog)
		return prog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Program), nil
}

// Clear drops every cached program.
func (c *Cache) Clear() {
	c.store.Purge()
}

// Len reports the number of cached programs.
func (c *Cache) Len() int {
	return c.store.Len()
}
