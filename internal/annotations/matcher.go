package annotations

import (
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/reflection"
)

// DecoratedClass is a class whose annotations include a record that was
// verified, by provenance, to be the annotation of Category
type DecoratedClass struct {
	Class      *reflection.ClassSymbol
	Assignment *jsast.StaticAssignment
	Record     reflection.AnnotationRecord
	Category   Category
}

// Name returns the exported name of the class
func (d *DecoratedClass) Name() string {
	return d.Class.Name
}

// Matcher decides whether a class carries the annotation of a category
type Matcher struct {
	host *reflection.Host
}

// NewMatcher creates a matcher resolving provenance through host
func NewMatcher(host *reflection.Host) *Matcher {
	return &Matcher{host: host}
}

// Match returns the class decorated with the first record, in array order,
// whose type was imported from target.Module under target.Name. Records
// whose type has no provenance, or a different one, never match.
func (m *Matcher) Match(class *reflection.ClassSymbol, lookup reflection.AnnotationLookup, category Category, target Target) *DecoratedClass {
	if lookup.Kind != reflection.Annotated {
		return nil
	}

	for _, record := range lookup.Records {
		if !record.Recognized() {
			continue
		}
		imp, ok := m.host.ImportOf(class.File, record.Type)
		if !ok || imp.From != target.Module || imp.Name != target.Name {
			continue
		}
		return &DecoratedClass{
			Class:      class,
			Assignment: lookup.Assignment,
			Record:     record,
			Category:   category,
		}
	}
	return nil
}
