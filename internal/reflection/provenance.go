package reflection

import (
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/program"
)

// Import is the provenance of an identifier: the name it was exported
// under by the module From.
type Import struct {
	Name string
	From string
}

// String returns "from#name"
func (i Import) String() string {
	return i.From + "#" + i.Name
}

type outcome int

const (
	unresolved outcome = iota
	resolved
	cyclic
)

// ImportOf reports which module expr was imported from and under which
// name. expr may be an identifier or a namespace member (`i0.Injectable`).
// Local const aliases are followed, and so are imports of loaded files
// down to the last import hop. Identifiers declared locally, unbound names,
// other expression shapes and alias cycles all report false.
func (h *Host) ImportOf(file *jsast.SourceFile, expr jsast.Expr) (Import, bool) {
	imp, result := h.importOf(file, expr, make(map[string]bool))
	return imp, result == resolved
}

func (h *Host) importOf(file *jsast.SourceFile, expr jsast.Expr, visiting map[string]bool) (Import, outcome) {
	switch e := expr.(type) {
	case *jsast.Identifier:
		return h.importOfName(file, e.Name, visiting)
	case *jsast.MemberExpr:
		object, ok := e.Object.(*jsast.Identifier)
		if !ok {
			return Import{}, unresolved
		}
		key := file.Path + "#" + object.Name + "." + e.Property
		if visiting[key] {
			return Import{}, cyclic
		}
		visiting[key] = true

		binding, ok := h.prog.Lookup(file, object.Name)
		if !ok {
			return Import{}, unresolved
		}
		switch binding.Kind {
		case program.BindingNamespace:
			return h.followExport(file, binding.Import.Specifier, e.Property, visiting)
		case program.BindingVariable:
			// `const core = i0;` aliases a namespace
			if alias, ok := binding.Variable.Init.(*jsast.Identifier); ok {
				return h.importOf(file, &jsast.MemberExpr{Object: alias, Property: e.Property}, visiting)
			}
		}
	}
	return Import{}, unresolved
}

func (h *Host) importOfName(file *jsast.SourceFile, name string, visiting map[string]bool) (Import, outcome) {
	key := file.Path + "#" + name
	if visiting[key] {
		return Import{}, cyclic
	}
	visiting[key] = true

	binding, ok := h.prog.Lookup(file, name)
	if !ok {
		return Import{}, unresolved
	}

	switch binding.Kind {
	case program.BindingImport:
		return h.followExport(file, binding.Import.Specifier, binding.ImportedName, visiting)
	case program.BindingVariable:
		switch binding.Variable.Init.(type) {
		case *jsast.Identifier, *jsast.MemberExpr:
			return h.importOf(file, binding.Variable.Init, visiting)
		}
	}
	return Import{}, unresolved
}

// followExport resolves `name` as exported by the module specifier names
// from file. The hop itself is the answer unless the module is loaded, in
// which case its export table decides. A name missing from that table is
// attributed to the module's external star export when there is exactly one.
func (h *Host) followExport(file *jsast.SourceFile, specifier, name string, visiting map[string]bool) (Import, outcome) {
	hop := Import{Name: name, From: specifier}

	target, ok := h.prog.ResolveModule(file, specifier)
	if !ok {
		return hop, resolved
	}

	e, ok := h.prog.Export(target, name)
	if !ok {
		if name != "default" && !h.exportsExplicitly(target, name) {
			if stars := h.prog.ExternalStarSources(target); len(stars) == 1 {
				return Import{Name: name, From: stars[0]}, resolved
			}
		}
		// otherwise, including re-export cycles which the export table
		// drops, there is no provenance
		return Import{}, unresolved
	}
	if e.External() {
		return Import{Name: e.Local, From: e.Specifier}, resolved
	}

	inner, result := h.importOfName(e.File, e.Local, visiting)
	switch result {
	case resolved:
		return inner, resolved
	case cyclic:
		return Import{}, cyclic
	}
	return hop, resolved
}

// exportsExplicitly reports whether file has a non-star export of name, which
// shadows star exports even when it cannot be resolved
func (h *Host) exportsExplicitly(file *jsast.SourceFile, name string) bool {
	for _, decl := range file.Exports {
		if !decl.Star && decl.Exported == name {
			return true
		}
	}
	return false
}
