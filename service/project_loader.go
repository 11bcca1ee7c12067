package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/provider"
)

// ProjectLoaderImpl implements domain.ProjectLoader over a provider registry.
type ProjectLoaderImpl struct {
	registry *provider.Registry
}

// NewProjectLoader creates a loader. A nil registry uses the default one.
func NewProjectLoader(registry *provider.Registry) *ProjectLoaderImpl {
	if registry == nil {
		registry = provider.DefaultRegistry()
	}
	return &ProjectLoaderImpl{registry: registry}
}

// Load parses the project at path. Failures are reported as parse errors,
// missing files as file-not-found errors.
func (l *ProjectLoaderImpl) Load(ctx context.Context, path string) (*ast.Program, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	program, err := l.registry.Load(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.NewParseError(path, err)
	}
	return program, nil
}

// Supports reports whether any provider handles path.
func (l *ProjectLoaderImpl) Supports(path string) bool {
	return l.registry.Supports(path)
}

// Extensions lists the handled file extensions in lookup order.
func (l *ProjectLoaderImpl) Extensions() []string {
	return l.registry.Extensions()
}

// ResolveTargetPath finds the file of a reference project named in the
// results table. A name that already carries a known extension is used as
// is; otherwise each extension is tried in order.
func ResolveTargetPath(dir, name string, extensions []string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range extensions {
		if ext == known {
			path := filepath.Join(dir, name)
			return path, isRegularFile(path)
		}
	}

	for _, known := range extensions {
		path := filepath.Join(dir, name+known)
		if isRegularFile(path) {
			return path, true
		}
	}

	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
