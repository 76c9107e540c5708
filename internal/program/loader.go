package program

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/ngreflect/internal/diagnostics"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
)

// candidateSuffixes are tried, in order, when resolving a relative specifier
var candidateSuffixes = []string{"", ".js", ".mjs", ".ts", "/index.js", "/index.ts"}

var errNotFound = stderrors.New("module not found")

// fetchFunc returns the parsed file at a cleaned path, or errNotFound
type fetchFunc func(path string) (*jsast.SourceFile, error)

// Loader reads and parses an entry file and every file reachable from it
// through relative import and re-export specifiers. Parsed files are cached
// across Load calls and re-parsed only when the file changes on disk.
type Loader struct {
	parser *jsast.Parser
	cache  *fileCache
	logger *diagnostics.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load progress and warnings
func WithLogger(logger *diagnostics.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		parser: jsast.NewParser(),
		cache:  newFileCache(),
		logger: diagnostics.NewTestLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the program rooted at entry. Only the entry file is required
// to exist; relative imports that resolve to nothing are logged and left
// unresolved. ctx is checked before each file is loaded.
func (l *Loader) Load(ctx context.Context, entry string) (*Program, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", entry, err)
	}
	return build(ctx, abs, l.fetch, l.logger)
}

// CachedFiles returns how many parsed files are cached
func (l *Loader) CachedFiles() int {
	return l.cache.len()
}

func (l *Loader) fetch(path string) (*jsast.SourceFile, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errNotFound
		}
		return nil, errors.WrapFileSystemError("stat", path, err)
	}
	if stat.IsDir() {
		return nil, errNotFound
	}

	if cached, ok := l.cache.get(path, stat); ok {
		l.logger.Debug("cache hit for %s", path)
		return cached, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	file, err := l.parser.Parse(path, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	l.cache.set(path, file, stat)
	return file, nil
}

// FromSources builds a program from in-memory sources keyed by path. It
// follows the same resolution rules as Loader.Load.
func FromSources(entry string, sources map[string]string) (*Program, error) {
	parser := jsast.NewParser()
	cleaned := make(map[string]string, len(sources))
	for path, src := range sources {
		cleaned[filepath.Clean(path)] = src
	}

	fetch := func(path string) (*jsast.SourceFile, error) {
		src, ok := cleaned[path]
		if !ok {
			return nil, errNotFound
		}
		return parser.Parse(path, []byte(src))
	}
	return build(context.Background(), filepath.Clean(entry), fetch, diagnostics.NewTestLogger())
}

func build(ctx context.Context, entry string, fetch fetchFunc, logger *diagnostics.Logger) (*Program, error) {
	entryFile, err := fetch(entry)
	if err != nil {
		if stderrors.Is(err, errNotFound) {
			return nil, errors.EntryPointError(entry, "file does not exist")
		}
		return nil, err
	}

	prog := newProgram(entry)
	prog.add(entryFile)

	queue := []*jsast.SourceFile{entryFile}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file := queue[0]
		queue = queue[1:]

		for _, specifier := range relativeSpecifiers(file) {
			target, resolved, err := resolve(file.Path, specifier, prog, fetch)
			if err != nil {
				return nil, err
			}
			if target == nil {
				logger.Verbose("unresolved import '%s' in %s", specifier, file.Path)
				continue
			}
			if _, seen := prog.files[resolved]; !seen {
				prog.add(target)
				queue = append(queue, target)
			}
			prog.link(file.Path, specifier, resolved)
		}
	}

	for _, file := range prog.Files() {
		warnSyntax(logger, prog, file)
	}
	for _, cycle := range prog.Cycles() {
		logger.Verbose("import cycle: %s", strings.Join(cycle, " -> "))
	}
	logger.Debug("loaded %d files from %s", len(prog.order), entry)

	return prog, nil
}

// resolve finds the file a relative specifier names. Files already in the
// program are reused without fetching them again.
func resolve(importer, specifier string, prog *Program, fetch fetchFunc) (*jsast.SourceFile, string, error) {
	base := filepath.Join(filepath.Dir(importer), filepath.FromSlash(specifier))
	if filepath.IsAbs(specifier) {
		base = filepath.Clean(specifier)
	}
	for _, suffix := range candidateSuffixes {
		candidate := filepath.Clean(base + filepath.FromSlash(suffix))
		if existing, ok := prog.files[candidate]; ok {
			return existing, candidate, nil
		}
		file, err := fetch(candidate)
		if err == nil {
			return file, candidate, nil
		}
		if !stderrors.Is(err, errNotFound) {
			return nil, "", err
		}
	}
	return nil, "", nil
}

// relativeSpecifiers lists the distinct relative specifiers a file imports
// or re-exports from, in source order.
func relativeSpecifiers(file *jsast.SourceFile) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(specifier string) {
		if !IsRelative(specifier) || seen[specifier] {
			return
		}
		seen[specifier] = true
		out = append(out, specifier)
	}

	for _, imp := range file.Imports {
		add(imp.Specifier)
	}
	for _, exp := range file.Exports {
		add(exp.Source)
	}
	return out
}

// IsRelative reports whether specifier is resolved against the importing
// file rather than naming an external package.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "/")
}

func warnSyntax(logger *diagnostics.Logger, prog *Program, file *jsast.SourceFile) {
	if !file.SyntaxErrors {
		return
	}
	if importers := prog.Importers(file.Path); len(importers) > 0 {
		logger.Warn("syntax errors in %s (imported by %s); results for this file may be incomplete",
			file.Path, strings.Join(importers, ", "))
		return
	}
	logger.Warn("syntax errors in %s; results for this file may be incomplete", file.Path)
}
