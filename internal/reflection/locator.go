package reflection

import (
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
)

// LookupKind tags the outcome of locating a class's annotations
type LookupKind int

const (
	// NotAnnotated means the class has no annotations member
	NotAnnotated LookupKind = iota
	// Malformed means the member exists but is not an array literal
	Malformed
	// Annotated means the member is an array literal of records
	Annotated
)

// String returns the lookup kind name
func (k LookupKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Annotated:
		return "annotated"
	default:
		return "not-annotated"
	}
}

// AnnotationRecord is one element of an annotations array. Type is nil when
// the element is not an object literal or has no type property; such
// records are unrecognized and never match.
type AnnotationRecord struct {
	Index  int
	Object *jsast.ObjectLiteral
	Type   jsast.Expr
	Loc    jsast.Position

	// Args holds the elements of the args array. ArgsMalformed is set when
	// args is present but not an array literal; Args is then nil.
	Args          []jsast.Expr
	ArgsPresent   bool
	ArgsMalformed bool
}

// Recognized reports whether the record has a type reference
func (r AnnotationRecord) Recognized() bool {
	return r.Type != nil
}

// AnnotationLookup is the validated annotations of one class
type AnnotationLookup struct {
	Kind       LookupKind
	Assignment *jsast.StaticAssignment
	Records    []AnnotationRecord
	Err        *errors.StructuralParseError
}

// Locate finds the annotations member of class and parses it up front into
// a tagged result, so consumers never probe raw expressions.
func (h *Host) Locate(class *ClassSymbol) AnnotationLookup {
	assignment, ok := class.File.Assignment(class.LocalName, h.decoratorsProperty)
	if !ok {
		return AnnotationLookup{Kind: NotAnnotated}
	}

	array, ok := assignment.Value.(*jsast.ArrayLiteral)
	if !ok {
		err := errors.NewStructuralParseError(class.LocalName, h.decoratorsProperty,
			"expected array literal for "+h.decoratorsProperty)
		err.WithLocation(location(class.File, assignment.Loc)).
			WithContext("found", jsast.Render(assignment.Value))
		return AnnotationLookup{Kind: Malformed, Assignment: assignment, Err: err}
	}

	records := make([]AnnotationRecord, 0, len(array.Elements))
	for i, element := range array.Elements {
		records = append(records, parseRecord(i, element))
	}

	return AnnotationLookup{Kind: Annotated, Assignment: assignment, Records: records}
}

// parseRecord converts one `{ type, args }` element
func parseRecord(index int, element jsast.Expr) AnnotationRecord {
	record := AnnotationRecord{Index: index}
	if element != nil {
		record.Loc = element.Pos()
	}

	object, ok := element.(*jsast.ObjectLiteral)
	if !ok {
		return record
	}
	record.Object = object

	if typ, ok := object.Get("type"); ok && !jsast.IsNullish(typ) {
		record.Type = typ
	}

	// only a missing property is absent; `args: null` is malformed
	if args, ok := object.Get("args"); ok {
		record.ArgsPresent = true
		if array, ok := args.(*jsast.ArrayLiteral); ok {
			record.Args = array.Elements
		} else {
			record.ArgsMalformed = true
		}
	}

	return record
}
