package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/pqhint/domain"
)

// FileReaderImpl implements domain.ProjectCollector
type FileReaderImpl struct {
	extensions map[string]bool
}

// NewFileReader creates a file reader accepting the given extensions.
// Without extensions every file matching the include patterns is accepted.
func NewFileReader(extensions ...string) *FileReaderImpl {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &FileReaderImpl{extensions: exts}
}

// CollectProjects expands files and folders into project files, sorted
// within each folder.
func (f *FileReaderImpl) CollectProjects(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		var found []string
		if info.IsDir() {
			found, err = f.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
		} else if f.IsProjectFile(path) && !f.isExcluded(path, excludePatterns) {
			// explicitly named files skip the include filter
			found = []string{path}
		}

		for _, file := range found {
			if !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}

	return files, nil
}

// IsProjectFile checks the extension against the accepted set.
func (f *FileReaderImpl) IsProjectFile(path string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

// FileExists checks if a regular file exists
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (f *FileReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == dirPath {
			return nil
		}

		// hidden entries, including editor backups and .git
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if !recursive || f.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if f.IsProjectFile(path) && f.shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	sort.Strings(files)
	return files, nil
}

func (f *FileReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if f.isExcluded(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAny(includePatterns, path)
}

func (f *FileReaderImpl) isExcluded(path string, excludePatterns []string) bool {
	return matchesAny(excludePatterns, path)
}

// matchesAny matches the base name and the slash-separated path.
func matchesAny(patterns []string, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, slashed); matched {
			return true
		}
		// relative patterns like "**/broken/**" against absolute paths
		if strings.HasPrefix(pattern, "**/") {
			if matched, _ := doublestar.Match(pattern, strings.TrimPrefix(slashed, "/")); matched {
				return true
			}
		}
	}
	return false
}

func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	skipDirs := []string{
		"__pycache__",
		"node_modules",
		"venv",
		"env",
		"build",
		"dist",
		"*.egg-info",
	}

	dirLower := strings.ToLower(dirName)
	for _, skipDir := range skipDirs {
		if matched, _ := doublestar.Match(skipDir, dirLower); matched {
			return true
		}
	}
	return false
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
