package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ludo-technologies/pqhint/internal/analyzer"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
)

func newTestGenerator(t *testing.T) *analyzer.EditsGenerator {
	t.Helper()
	builder, err := pqgram.NewBuilder(pqgram.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return analyzer.NewEditsGenerator(builder, pqgram.NewMatcher(pqgram.FirstChooser{}))
}

func TestNewParseCache(t *testing.T) {
	cache := NewParseCache()
	if cache == nil {
		t.Fatal("NewParseCache returned nil")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestParseCacheSealIgnoresLatePuts(t *testing.T) {
	cache := NewParseCache()
	cache.Put("a.yaml", &CachedProgram{Path: "a.yaml"})
	cache.Seal()
	cache.Put("b.yaml", &CachedProgram{Path: "b.yaml"})

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
	if _, ok := cache.Get("b.yaml"); ok {
		t.Fatal("put after seal must be ignored")
	}
}

func TestPopulateParseCache(t *testing.T) {
	dir := t.TempDir()
	alice := createTestFile(t, dir, "alice.yaml", aliceDoc)
	learner := createTestFile(t, dir, "learner.yaml", learnerDoc)
	broken := createTestFile(t, dir, "broken.yaml", "name: broken\n")
	missing := filepath.Join(dir, "missing.sb3")

	files := []string{alice, learner, broken, missing}
	cache := PopulateParseCache(context.Background(), NewProjectLoader(nil), newTestGenerator(t), files, 2)

	if cache.Len() != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), cache.Len())
	}

	for _, path := range []string{alice, learner} {
		got, ok := cache.Get(path)
		if !ok || got.Err != nil {
			t.Fatalf("%s: expected success, got %+v", path, got)
		}
		if got.Candidate.Program == nil || got.Candidate.Profile == nil || got.Candidate.Profile.IsEmpty() {
			t.Fatalf("%s: candidate not profiled", path)
		}
	}
	for _, path := range []string{broken, missing} {
		got, ok := cache.Get(path)
		if !ok || got.Err == nil {
			t.Fatalf("%s: expected a stored error", path)
		}
	}
}

func TestParseCacheConcurrentReads(t *testing.T) {
	dir := t.TempDir()
	alice := createTestFile(t, dir, "alice.yaml", aliceDoc)
	cache := PopulateParseCache(context.Background(), NewProjectLoader(nil), newTestGenerator(t), []string{alice}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, ok := cache.Get(alice); !ok || got.Candidate.Program.Name != "alice" {
				t.Error("concurrent read failed")
			}
		}()
	}
	wg.Wait()
}
