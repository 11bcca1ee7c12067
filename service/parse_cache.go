package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/analyzer"
	"github.com/ludo-technologies/pqhint/internal/ast"
)

// CachedProgram holds the load result of one reference project.
type CachedProgram struct {
	Path      string
	Candidate analyzer.Candidate // zero when Err is set
	Err       error
}

// ParseCache stores loaded reference programs shared by every source of a
// batch. After Seal() the cache is read-only and safe for concurrent
// access without locks.
type ParseCache struct {
	results map[string]*CachedProgram
	sealed  bool
}

// NewParseCache creates a new empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		results: make(map[string]*CachedProgram),
	}
}

// Put stores a result. Must be called before Seal().
func (c *ParseCache) Put(path string, result *CachedProgram) {
	if c.sealed {
		return
	}
	c.results[path] = result
}

// Seal marks the cache as read-only.
func (c *ParseCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached result. Returns (result, true) on hit.
func (c *ParseCache) Get(path string) (*CachedProgram, bool) {
	r, ok := c.results[path]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *ParseCache) Len() int {
	return len(c.results)
}

// PopulateParseCache loads and profiles all files concurrently and returns
// a sealed cache. Load failures are stored per file and never stop the
// others.
func PopulateParseCache(ctx context.Context, loader domain.ProjectLoader, generator *analyzer.EditsGenerator, files []string, concurrency int) *ParseCache {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]*CachedProgram, len(files))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range files {
		g.Go(func() error {
			r := &CachedProgram{Path: path}
			results[i] = r

			program, err := loader.Load(ctx, path)
			if err != nil {
				r.Err = err
				return nil
			}
			if candidates := generator.Candidates([]*ast.Program{program}); len(candidates) == 1 {
				r.Candidate = candidates[0]
			}
			return nil
		})
	}
	_ = g.Wait()

	// single-threaded fill, no lock needed
	cache := NewParseCache()
	for _, r := range results {
		if r != nil {
			cache.Put(r.Path, r)
		}
	}
	cache.Seal()

	return cache
}
