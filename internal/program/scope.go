package program

import "github.com/toyz/ngreflect/internal/jsast"

// BindingKind identifies what a module-scope name is bound to
type BindingKind int

const (
	BindingNone BindingKind = iota
	BindingClass
	BindingImport
	BindingNamespace
	BindingVariable
	BindingFunction
)

// String returns the binding kind name
func (k BindingKind) String() string {
	switch k {
	case BindingClass:
		return "class"
	case BindingImport:
		return "import"
	case BindingNamespace:
		return "namespace"
	case BindingVariable:
		return "variable"
	case BindingFunction:
		return "function"
	default:
		return "none"
	}
}

// Binding is the declaration a module-scope name refers to in one file
type Binding struct {
	Kind BindingKind
	Name string
	File *jsast.SourceFile

	Class    *jsast.ClassDecl
	Variable *jsast.VariableDecl
	Function *jsast.FunctionDecl

	// Import and ImportedName describe import bindings. ImportedName is the
	// name exported by the source module, "default" for default imports and
	// empty for namespace imports.
	Import       *jsast.ImportDecl
	ImportedName string
}

// Lookup returns the module-scope binding of name in file. Imports are
// consulted first, then classes (including classes bound by variables),
// functions and plain variables.
func (p *Program) Lookup(file *jsast.SourceFile, name string) (Binding, bool) {
	if file == nil || name == "" {
		return Binding{}, false
	}

	for _, imp := range file.Imports {
		if imp.Namespace == name {
			return Binding{Kind: BindingNamespace, Name: name, File: file, Import: imp}, true
		}
		if imp.Default == name {
			return Binding{Kind: BindingImport, Name: name, File: file, Import: imp, ImportedName: "default"}, true
		}
		for _, spec := range imp.Named {
			if spec.Local == name {
				return Binding{Kind: BindingImport, Name: name, File: file, Import: imp, ImportedName: spec.Imported}, true
			}
		}
	}

	if cls, ok := file.Class(name); ok {
		b := Binding{Kind: BindingClass, Name: name, File: file, Class: cls}
		for _, v := range file.Variables {
			if v.Class == cls {
				b.Variable = v
			}
		}
		return b, true
	}

	for _, fn := range file.Functions {
		if fn.Name == name {
			return Binding{Kind: BindingFunction, Name: name, File: file, Function: fn}, true
		}
	}

	for _, v := range file.Variables {
		if v.Name == name {
			return Binding{Kind: BindingVariable, Name: name, File: file, Variable: v}, true
		}
	}

	return Binding{}, false
}
