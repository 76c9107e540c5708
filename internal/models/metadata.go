package models

import (
	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

// ParsedPackage is the result of matching one entry point: every class
// verified to carry the annotation of a category, grouped by category in
// scan order. It is not modified after the parser returns it.
type ParsedPackage struct {
	PassID           string
	PackagePath      string
	EntryPointPath   string
	Program          *program.Program
	EntryPointFile   *jsast.SourceFile
	DecoratedClasses map[annotations.Category][]*annotations.DecoratedClass
}

// Classes returns the decorated classes of category
func (p *ParsedPackage) Classes(category annotations.Category) []*annotations.DecoratedClass {
	return p.DecoratedClasses[category]
}

// Count returns the number of decorated classes across all categories
func (p *ParsedPackage) Count() int {
	n := 0
	for _, classes := range p.DecoratedClasses {
		n += len(classes)
	}
	return n
}

// ResolvedKind classifies what a constructor dependency injects
type ResolvedKind int

const (
	ResolvedToken ResolvedKind = iota
	ResolvedAttribute
	ResolvedElementRef
	ResolvedInjector
	ResolvedTemplateRef
	ResolvedViewContainerRef
)

// String returns the resolved kind name
func (k ResolvedKind) String() string {
	switch k {
	case ResolvedAttribute:
		return "Attribute"
	case ResolvedElementRef:
		return "ElementRef"
	case ResolvedInjector:
		return "Injector"
	case ResolvedTemplateRef:
		return "TemplateRef"
	case ResolvedViewContainerRef:
		return "ViewContainerRef"
	default:
		return "Token"
	}
}

// SpecialReferenceKinds maps the reserved trusted-module names to the kind
// they resolve to when used as a bare dependency token
var SpecialReferenceKinds = map[string]ResolvedKind{
	"ElementRef":       ResolvedElementRef,
	"Injector":         ResolvedInjector,
	"TemplateRef":      ResolvedTemplateRef,
	"ViewContainerRef": ResolvedViewContainerRef,
}

// ConstructorDependency describes what to inject for one constructor parameter
type ConstructorDependency struct {
	Token         jsast.Expr
	Resolved      ResolvedKind
	Optional      bool
	Self          bool
	SkipSelf      bool
	Host          bool
	ParameterName string
}

// InjectableMetadata is the extracted metadata of an injectable class.
// Name is the binding of the class in its declaring file and is what
// generated code refers to; ExportedName is the name the entry point
// exports it under. ProvidedIn and the Use* provider fields are nil when
// absent. Deps is nil only for useValue and useExisting providers.
type InjectableMetadata struct {
	Name         string
	ExportedName string
	Type        *reflection.ClassSymbol
	ProvidedIn  jsast.Expr
	UseClass    jsast.Expr
	UseFactory  jsast.Expr
	UseExisting jsast.Expr
	UseValue    jsast.Expr
	Deps        []ConstructorDependency
}

// AnalysisOutput is the extracted metadata of one decorated class
type AnalysisOutput struct {
	PassID   string
	Category annotations.Category
	Class    *annotations.DecoratedClass
	Metadata interface{}
}

// GeneratedDefinition is what the emitter produced for one AnalysisOutput.
// ClassName is the declared binding the code assigns to.
type GeneratedDefinition struct {
	Category     annotations.Category
	ClassName    string
	ExportedName string
	Code         string
}
