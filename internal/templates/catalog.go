package templates

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Catalog is the in-memory registry of available seed templates. Lookups
// return deep copies so catalog entries stay pristine no matter what callers
// do to the documents they start from.
type Catalog struct {
	mu    sync.RWMutex
	seeds map[string]*Seed
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		seeds: make(map[string]*Seed),
	}
}

// Register adds or replaces a seed.
func (c *Catalog) Register(seed *Seed) {
	if seed == nil || seed.Slug == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seeds[seed.Slug] = seed.Clone()
}

// LoadInto fills the catalog from a loader directory.
func (c *Catalog) LoadInto(ctx context.Context, loader *Loader, dir string) error {
	seeds, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		return err
	}
	for _, seed := range seeds {
		c.Register(seed)
	}
	return nil
}

// Get returns the seed registered under slug.
func (c *Catalog) Get(slug string) (*Seed, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seed, ok := c.seeds[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSeedNotFound, slug)
	}
	return seed.Clone(), nil
}

// List returns every registered seed ordered by slug.
func (c *Catalog) List() []*Seed {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Seed, 0, len(c.seeds))
	for _, seed := range c.seeds {
		out = append(out, seed.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Slug < out[j].Slug
	})
	return out
}
