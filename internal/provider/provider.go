// Package provider turns project files into program trees.
package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// ErrUnsupportedDocument is returned by a provider that recognises the file
// extension but not the content, so the registry can try the next one.
var ErrUnsupportedDocument = errors.New("unsupported document")

// ErrBlockCycle is returned for a program whose blocks contain themselves.
var ErrBlockCycle = errors.New("block contains itself")

// Provider loads one project format.
type Provider interface {
	// Name identifies the provider in logs
	Name() string

	// Extensions lists the lower-case file extensions handled, with dot
	Extensions() []string

	// Load parses the project at path
	Load(ctx context.Context, path string) (*ast.Program, error)
}

// Registry dispatches on file extension. Providers registered first win.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with the given providers.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// DefaultRegistry knows Scratch projects, tree documents and Python sources.
func DefaultRegistry() *Registry {
	return NewRegistry(NewScratchProvider(), NewTreeDocProvider(), NewPythonProvider())
}

// Register appends a provider.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Extensions returns every handled extension in registration order.
func (r *Registry) Extensions() []string {
	seen := map[string]bool{}
	var exts []string
	for _, p := range r.providers {
		for _, ext := range p.Extensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// Supports reports whether any provider handles the extension of path.
func (r *Registry) Supports(path string) bool {
	return len(r.candidates(path)) > 0
}

// Load parses path with the first provider that accepts it.
func (r *Registry) Load(ctx context.Context, path string) (*ast.Program, error) {
	candidates := r.candidates(path)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: no provider for extension %q", path, filepath.Ext(path))
	}
	var lastErr error
	for _, p := range candidates {
		program, err := p.Load(ctx, path)
		if err == nil {
			return program, nil
		}
		if !errors.Is(err, ErrUnsupportedDocument) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *Registry) candidates(path string) []Provider {
	ext := strings.ToLower(filepath.Ext(path))
	var out []Provider
	for _, p := range r.providers {
		for _, e := range p.Extensions() {
			if e == ext {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// ProjectName derives a program name from a file path.
func ProjectName(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			return base
		}
		switch strings.ToLower(ext) {
		case ".sb3", ".json", ".yaml", ".yml", ".py", ".tree":
			base = strings.TrimSuffix(base, ext)
		default:
			return base
		}
	}
}
