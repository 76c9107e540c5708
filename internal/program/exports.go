package program

import "github.com/toyz/ngreflect/internal/jsast"

// Export is one entry of a file's resolved export table.
//
// For names bound inside the program, File is the file whose scope binds
// Local. For names re-exported from a module that is not loaded (a bare
// package specifier), File is nil and Specifier/Local name the external
// module and the name it exports.
type Export struct {
	Name      string
	Local     string
	File      *jsast.SourceFile
	Specifier string
	Decl      *jsast.ExportDecl
}

// External reports whether the export comes from a module outside the program
func (e Export) External() bool {
	return e.File == nil
}

// Exports returns the export table of file in declaration order. Re-exports
// from loaded files are followed to the file that binds the name, and
// `export *` is expanded in place. Explicit exports shadow star-exported
// names; "default" is never star-exported. Re-export cycles terminate.
func (p *Program) Exports(file *jsast.SourceFile) []Export {
	return p.exports(file, make(map[string]bool))
}

// Export looks up one exported name of file
func (p *Program) Export(file *jsast.SourceFile, name string) (Export, bool) {
	for _, e := range p.Exports(file) {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

func (p *Program) exports(file *jsast.SourceFile, visiting map[string]bool) []Export {
	if file == nil || visiting[file.Path] {
		return nil
	}
	visiting[file.Path] = true
	defer delete(visiting, file.Path)

	explicit := make(map[string]bool)
	for _, decl := range file.Exports {
		if !decl.Star {
			explicit[decl.Exported] = true
		}
	}

	var out []Export
	seen := make(map[string]bool)
	emit := func(e Export) {
		if seen[e.Name] {
			return
		}
		seen[e.Name] = true
		out = append(out, e)
	}

	for _, decl := range file.Exports {
		switch {
		case decl.Star:
			target, ok := p.ResolveModule(file, decl.Source)
			if !ok {
				continue
			}
			for _, e := range p.exports(target, visiting) {
				if e.Name == "default" || explicit[e.Name] {
					continue
				}
				emit(e)
			}

		case decl.Source != "":
			target, ok := p.ResolveModule(file, decl.Source)
			if !ok {
				emit(Export{Name: decl.Exported, Local: decl.Local, Specifier: decl.Source, Decl: decl})
				continue
			}
			for _, e := range p.exports(target, visiting) {
				if e.Name == decl.Local {
					e.Name = decl.Exported
					e.Decl = decl
					emit(e)
					break
				}
			}

		default:
			emit(Export{Name: decl.Exported, Local: decl.Local, File: file, Decl: decl})
		}
	}

	return out
}

// ExternalStarSources returns the specifiers of modules outside the program
// that file star-exports, directly or through star exports of loaded files.
// Names those modules export are not known, so they never appear in the
// export table.
func (p *Program) ExternalStarSources(file *jsast.SourceFile) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(f *jsast.SourceFile, visiting map[string]bool)
	walk = func(f *jsast.SourceFile, visiting map[string]bool) {
		if f == nil || visiting[f.Path] {
			return
		}
		visiting[f.Path] = true
		for _, decl := range f.Exports {
			if !decl.Star {
				continue
			}
			if target, ok := p.ResolveModule(f, decl.Source); ok {
				walk(target, visiting)
				continue
			}
			if !seen[decl.Source] {
				seen[decl.Source] = true
				out = append(out, decl.Source)
			}
		}
	}
	walk(file, make(map[string]bool))
	return out
}
