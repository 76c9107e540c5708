package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DefaultTrustedModule is the module class annotations must come from
const DefaultTrustedModule = "@angular/core"

// Target identifies an annotation by provenance: the module that exports it
// and the name it is exported under
type Target struct {
	Module string
	Name   string
}

// String returns "module#Name"
func (t Target) String() string {
	return t.Module + "#" + t.Name
}

// DefaultTargets returns the target of every category, exported by module
func DefaultTargets(module string) map[Category]Target {
	targets := make(map[Category]Target, len(AllCategories))
	for _, c := range AllCategories {
		targets[c] = Target{Module: module, Name: c.AnnotationName()}
	}
	return targets
}

// targetRef is the grammar of a "module#Name" reference. Scoped packages
// (`@scope/pkg`), nested paths and relative specifiers are accepted.
type targetRef struct {
	Scope    string   `parser:"( @Scope '/' )?"`
	Segments []string `parser:"@Segment ( '/' @Segment )*"`
	Name     string   `parser:"'#' @Segment"`
}

var targetParser = participle.MustBuild[targetRef](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Scope", Pattern: `@[a-zA-Z0-9_.\-]+`},
		{Name: "Segment", Pattern: `[a-zA-Z0-9_.$\-]+`},
		{Name: "Punct", Pattern: `[/#]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
)

// ParseTarget parses a "module#Name" reference such as "@angular/core#Injectable"
func ParseTarget(s string) (Target, error) {
	ref, err := targetParser.ParseString("", s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid annotation target '%s': %w", s, err)
	}

	if !isIdentifier(ref.Name) {
		return Target{}, fmt.Errorf("invalid annotation target '%s': '%s' is not an identifier", s, ref.Name)
	}

	module := strings.Join(ref.Segments, "/")
	if ref.Scope != "" {
		module = ref.Scope + "/" + module
	}
	return Target{Module: module, Name: ref.Name}, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
