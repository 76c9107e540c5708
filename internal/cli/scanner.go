package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/toyz/ngreflect/internal/errors"
)

type excludePattern struct {
	pattern string
	glob    glob.Glob
}

// DirectoryScanner turns command line arguments into package roots
type DirectoryScanner struct {
	excludes []excludePattern
}

// NewDirectoryScanner creates a scanner that skips directories matching any
// of the exclude glob patterns while expanding "/..." arguments
func NewDirectoryScanner(excludes ...string) (*DirectoryScanner, error) {
	s := &DirectoryScanner{}
	for _, pattern := range excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.ConfigurationError("entry.exclude", "invalid pattern "+pattern).
				WithCause(err)
		}
		s.excludes = append(s.excludes, excludePattern{pattern: pattern, glob: g})
	}
	return s, nil
}

// ScanPackages resolves each argument to an absolute package root. An
// argument ending in "/..." expands to every directory below it that holds
// a package.json, in lexical order. Roots are returned once each.
func (s *DirectoryScanner) ScanPackages(args []string) ([]string, error) {
	var roots []string
	seen := make(map[string]bool)
	add := func(root string) {
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}

	for _, arg := range args {
		recursive := strings.HasSuffix(arg, "/...")
		base := strings.TrimSuffix(arg, "/...")
		if base == "" {
			base = "."
		}

		absPath, err := filepath.Abs(base)
		if err != nil {
			return nil, errors.WrapFileSystemError("resolve", base, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", absPath, err)
		}
		if !info.IsDir() {
			return nil, errors.New(errors.FileSystemErrorCode, absPath+" is not a directory").
				WithContext("path", absPath)
		}

		if !recursive {
			add(absPath)
			continue
		}

		found, err := s.findPackages(absPath)
		if err != nil {
			return nil, err
		}
		for _, root := range found {
			add(root)
		}
	}

	return roots, nil
}

// findPackages walks base for directories containing a manifest. Hidden
// and excluded directories are skipped.
func (s *DirectoryScanner) findPackages(base string) ([]string, error) {
	var roots []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != base {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(base, p)
			if err == nil && s.excluded(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if _, err := os.Stat(filepath.Join(p, ManifestFile)); err == nil {
			roots = append(roots, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", base, err)
	}
	return roots, nil
}

// excluded reports whether rel, a slash separated path below the walk base,
// matches an exclude pattern. A leading "**/" also matches at the top level.
func (s *DirectoryScanner) excluded(rel string) bool {
	for _, ex := range s.excludes {
		if ex.glob.Match(rel) || ex.glob.Match(rel+"/**") {
			return true
		}
		if !strings.Contains(rel, "/") && strings.HasPrefix(ex.pattern, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(ex.pattern, "**/"), '/'); err == nil && g.Match(rel) {
				return true
			}
		}
	}
	return false
}
