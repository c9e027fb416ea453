// Package discovery finds route handler files under a root directory.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrRootInaccessible is returned when the root cannot be walked at all.
var ErrRootInaccessible = errors.New("root directory inaccessible")

// Finder matches files by exact base name.
type Finder struct {
	fileName   string
	excludeDir map[string]struct{}
}

// New creates a Finder for fileName, skipping directories whose base name is in exclude.
func New(fileName string, exclude []string) *Finder {
	ex := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		name = strings.Trim(strings.TrimSpace(name), `/\`)
		if name == "" {
			continue
		}
		ex[name] = struct{}{}
	}
	return &Finder{fileName: fileName, excludeDir: ex}
}

// Find returns every matching regular file under root in lexicographic order.
// Unreadable subdirectories are skipped; only a failure on root itself is an error.
// A symlinked root is followed; returned paths keep the root as given.
func (f *Finder) Find(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootInaccessible, root)
	}

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}

	paths, err := f.walk(walkRoot)
	if err != nil {
		return nil, err
	}
	if walkRoot != root {
		for i, p := range paths {
			rel, err := filepath.Rel(walkRoot, p)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
			}
			paths[i] = filepath.Join(root, rel)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func (f *Finder) walk(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// The executor reports per-file problems; discovery just moves on.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root {
				if _, skip := f.excludeDir[d.Name()]; skip {
					return fs.SkipDir
				}
			}
			return nil
		}
		if d.Name() == f.fileName && d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}
	return paths, nil
}
