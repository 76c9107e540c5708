// Package program holds the loaded module graph of one entry point: every
// parsed source file, how relative import specifiers resolved between them,
// and per-file scope and export queries. A Program is read-only once built
// and safe to share between the reflection components of a pass.
package program

import (
	"path/filepath"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/toyz/ngreflect/internal/jsast"
)

// Program is a loaded set of source files rooted at one entry file
type Program struct {
	entry   string
	order   []string
	files   map[string]*jsast.SourceFile
	links   map[string]map[string]string // importer path -> specifier -> resolved path
	imports graph.Graph[string, string]
}

func newProgram(entry string) *Program {
	return &Program{
		entry:   entry,
		files:   make(map[string]*jsast.SourceFile),
		links:   make(map[string]map[string]string),
		imports: graph.New(graph.StringHash, graph.Directed()),
	}
}

// add registers a parsed file. Files are kept in the order they were added.
func (p *Program) add(file *jsast.SourceFile) {
	if _, exists := p.files[file.Path]; exists {
		return
	}
	p.files[file.Path] = file
	p.order = append(p.order, file.Path)
	_ = p.imports.AddVertex(file.Path)
}

// link records that specifier, imported by from, resolved to the file at to.
// Both files must already have been added.
func (p *Program) link(from, specifier, to string) {
	if p.links[from] == nil {
		p.links[from] = make(map[string]string)
	}
	p.links[from][specifier] = to
	// duplicate edges are expected when two specifiers name the same file
	_ = p.imports.AddEdge(from, to)
}

// EntryPath returns the path of the entry file
func (p *Program) EntryPath() string {
	return p.entry
}

// Entry returns the entry file
func (p *Program) Entry() *jsast.SourceFile {
	return p.files[p.entry]
}

// File returns the loaded file at path
func (p *Program) File(path string) (*jsast.SourceFile, bool) {
	f, ok := p.files[filepath.Clean(path)]
	return f, ok
}

// Files returns every loaded file in breadth-first load order from the entry
func (p *Program) Files() []*jsast.SourceFile {
	out := make([]*jsast.SourceFile, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.files[path])
	}
	return out
}

// ResolveModule returns the loaded file that specifier names when imported
// from file. Bare specifiers and unresolvable relative ones report false.
func (p *Program) ResolveModule(from *jsast.SourceFile, specifier string) (*jsast.SourceFile, bool) {
	if from == nil {
		return nil, false
	}
	target, ok := p.links[from.Path][specifier]
	if !ok {
		return nil, false
	}
	return p.files[target], true
}

// Importers returns the sorted paths of the files that import path
func (p *Program) Importers(path string) []string {
	predecessors, err := p.imports.PredecessorMap()
	if err != nil {
		return nil
	}
	return sortedKeys(predecessors[path])
}

// Cycles returns each group of files that import each other, sorted, with
// groups ordered by their first path.
func (p *Program) Cycles() [][]string {
	components, err := graph.StronglyConnectedComponents(p.imports)
	if err != nil {
		return nil
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
