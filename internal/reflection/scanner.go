package reflection

import (
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/program"
)

// ClassSymbol is an exported class together with the declaration it
// resolves to. Name is the exported name; LocalName is the name the class
// is bound to in File, which is where its static members are assigned.
type ClassSymbol struct {
	Name        string
	LocalName   string
	Declaration *jsast.ClassDecl
	File        *jsast.SourceFile
}

// ScanClasses returns every symbol exported by file that denotes a class,
// directly or through local aliases, imports and re-exports of loaded files.
// Results follow export order and each declaration appears once.
func (h *Host) ScanClasses(file *jsast.SourceFile) []*ClassSymbol {
	var out []*ClassSymbol
	seen := make(map[*jsast.ClassDecl]bool)

	for _, e := range h.prog.Exports(file) {
		if e.External() {
			continue
		}
		binding, ok := h.resolveClass(e.File, e.Local, make(map[string]bool))
		if !ok || seen[binding.Class] {
			continue
		}
		seen[binding.Class] = true
		out = append(out, &ClassSymbol{
			Name:        e.Name,
			LocalName:   binding.Name,
			Declaration: binding.Class,
			File:        binding.File,
		})
	}
	return out
}

// resolveClass follows name in file to a class binding
func (h *Host) resolveClass(file *jsast.SourceFile, name string, visiting map[string]bool) (program.Binding, bool) {
	key := file.Path + "#" + name
	if visiting[key] {
		return program.Binding{}, false
	}
	visiting[key] = true

	binding, ok := h.prog.Lookup(file, name)
	if !ok {
		return program.Binding{}, false
	}

	switch binding.Kind {
	case program.BindingClass:
		return binding, true

	case program.BindingVariable:
		if id, ok := binding.Variable.Init.(*jsast.Identifier); ok {
			return h.resolveClass(file, id.Name, visiting)
		}

	case program.BindingImport:
		target, ok := h.prog.ResolveModule(file, binding.Import.Specifier)
		if !ok {
			return program.Binding{}, false
		}
		e, ok := h.prog.Export(target, binding.ImportedName)
		if !ok || e.External() {
			return program.Binding{}, false
		}
		return h.resolveClass(e.File, e.Local, visiting)
	}

	return program.Binding{}, false
}
