// Package scanner enumerates candidate source files under a project root,
// honoring the ignore patterns declared in the project's TOML ignore file
// plus configured exclude globs.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

type ignoreFile struct {
	Ignore struct {
		Patterns []string `toml:"patterns"`
	} `toml:"ignore"`
}

type Navigator struct {
	root         string
	ignoreGlobs  []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// NewNavigator compiles the ignore spec for a root. The ignore file is
// optional; a missing one means nothing is ignored beyond the excludes.
func NewNavigator(root, ignoreFileName string, excludeDirs, excludeFiles []string) (*Navigator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	n := &Navigator{root: abs}

	if ignoreFileName != "" {
		patterns, err := loadIgnorePatterns(filepath.Join(abs, ignoreFileName))
		if err != nil {
			return nil, err
		}
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
			}
			n.ignoreGlobs = append(n.ignoreGlobs, g)
		}
	}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		n.excludeDirs = append(n.excludeDirs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		n.excludeFiles = append(n.excludeFiles, g)
	}

	return n, nil
}

func (n *Navigator) Root() string {
	return n.root
}

// FindFiles walks the root and returns an ordered list of absolute paths,
// optionally restricted to the given extensions (with leading dot).
func (n *Navigator) FindFiles(extensions []string) ([]string, error) {
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[ext] = true
	}

	var files []string
	err := filepath.WalkDir(n.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)

		if d.IsDir() {
			if path == n.root {
				return nil
			}
			for _, g := range n.excludeDirs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			if n.ignored(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if len(extSet) > 0 && !extSet[filepath.Ext(path)] {
			return nil
		}
		for _, g := range n.excludeFiles {
			if g.Match(base) {
				return nil
			}
		}
		if n.ignored(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (n *Navigator) ignored(path string) bool {
	rel, err := filepath.Rel(n.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range n.ignoreGlobs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func loadIgnorePatterns(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat ignore file %q: %w", path, err)
	}

	var spec ignoreFile
	if _, err := toml.DecodeFile(path, &spec); err != nil {
		return nil, fmt.Errorf("parse ignore file %q: %w", path, err)
	}

	patterns := make([]string, 0, len(spec.Ignore.Patterns))
	for _, p := range spec.Ignore.Patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}
