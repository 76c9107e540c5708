package annotations

import "fmt"

// Category represents a structural role a class can be annotated with
type Category int

const (
	ComponentCategory Category = iota
	DirectiveCategory
	InjectableCategory
	NgModuleCategory
	PipeCategory
)

// AllCategories lists every category in processing order
var AllCategories = []Category{
	ComponentCategory,
	DirectiveCategory,
	InjectableCategory,
	NgModuleCategory,
	PipeCategory,
}

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case ComponentCategory:
		return "components"
	case DirectiveCategory:
		return "directives"
	case InjectableCategory:
		return "injectables"
	case NgModuleCategory:
		return "ngModules"
	case PipeCategory:
		return "pipes"
	default:
		return "unknown"
	}
}

// AnnotationName returns the name the trusted module exports the category's
// class annotation under
func (c Category) AnnotationName() string {
	switch c {
	case ComponentCategory:
		return "Component"
	case DirectiveCategory:
		return "Directive"
	case InjectableCategory:
		return "Injectable"
	case NgModuleCategory:
		return "NgModule"
	case PipeCategory:
		return "Pipe"
	default:
		return ""
	}
}

// ParseCategory converts string to Category
func ParseCategory(s string) (Category, error) {
	switch s {
	case "components":
		return ComponentCategory, nil
	case "directives":
		return DirectiveCategory, nil
	case "injectables":
		return InjectableCategory, nil
	case "ngModules", "ngmodules":
		return NgModuleCategory, nil
	case "pipes":
		return PipeCategory, nil
	default:
		return 0, fmt.Errorf("unknown category: %s", s)
	}
}
