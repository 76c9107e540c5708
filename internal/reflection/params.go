package reflection

import (
	"fmt"

	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
)

// ParamDecorator is one decorator applied to a constructor parameter
type ParamDecorator struct {
	// LocalName is the decorator reference as written, e.g. "Inject" or "i0.Inject"
	LocalName string
	// Import is the decorator's provenance, nil when it has none
	Import *Import
	Args   []jsast.Expr
	Loc    jsast.Position
}

// DisplayName returns "from#name" when the decorator has provenance and the
// local name otherwise.
func (d ParamDecorator) DisplayName() string {
	if d.Import != nil {
		return d.Import.String()
	}
	return d.LocalName
}

// CtorParameter is one constructor parameter. Type is the value expression
// of its declared type and may be nil.
type CtorParameter struct {
	Name       string
	Type       jsast.Expr
	Decorators []ParamDecorator
	Loc        jsast.Position
}

// ConstructorParameters describes the constructor of class. The lowered
// ctorParameters member is preferred when present; otherwise TypeScript
// parameter types and decorators of the constructor are used. A class
// without a constructor has no parameters.
func (h *Host) ConstructorParameters(class *ClassSymbol) ([]CtorParameter, error) {
	if assignment, ok := class.File.Assignment(class.LocalName, h.ctorParametersProperty); ok {
		return h.loweredParameters(class, assignment)
	}

	ctor := class.Declaration.Constructor
	if ctor == nil {
		return nil, nil
	}

	params := make([]CtorParameter, 0, len(ctor.Params))
	for _, p := range ctor.Params {
		param := CtorParameter{Name: p.Name, Type: p.Type, Loc: p.Loc}
		for _, d := range p.Decorators {
			param.Decorators = append(param.Decorators, h.paramDecorator(class.File, d.Expr, d.Args, d.Loc))
		}
		params = append(params, param)
	}
	return params, nil
}

// loweredParameters parses `X.ctorParameters = () => [{ type, decorators }]`
// and its function and plain array variants.
func (h *Host) loweredParameters(class *ClassSymbol, assignment *jsast.StaticAssignment) ([]CtorParameter, error) {
	value := assignment.Value
	if fn, ok := value.(*jsast.FunctionExpr); ok {
		value = fn.Result
	}

	array, ok := value.(*jsast.ArrayLiteral)
	if !ok {
		err := errors.NewStructuralParseError(class.LocalName, h.ctorParametersProperty,
			"expected array literal for "+h.ctorParametersProperty)
		err.WithLocation(location(class.File, assignment.Loc))
		return nil, err
	}

	var names []string
	if ctor := class.Declaration.Constructor; ctor != nil {
		for _, p := range ctor.Params {
			names = append(names, p.Name)
		}
	}

	params := make([]CtorParameter, 0, len(array.Elements))
	for i, element := range array.Elements {
		param := CtorParameter{Name: fmt.Sprintf("param%d", i)}
		if i < len(names) && names[i] != "" {
			param.Name = names[i]
		}
		if element != nil {
			param.Loc = element.Pos()
		}

		object, ok := element.(*jsast.ObjectLiteral)
		if !ok {
			params = append(params, param)
			continue
		}

		if typ, ok := object.Get("type"); ok && !jsast.IsNullish(typ) {
			param.Type = typ
		}

		if decorators, ok := object.Get("decorators"); ok && !jsast.IsNullish(decorators) {
			list, ok := decorators.(*jsast.ArrayLiteral)
			if !ok {
				err := errors.NewStructuralParseError(class.LocalName, "decorators",
					fmt.Sprintf("expected array literal for decorators of parameter %s", param.Name))
				err.WithLocation(location(class.File, object.Loc))
				return nil, err
			}
			for j, d := range list.Elements {
				record := parseRecord(j, d)
				if !record.Recognized() {
					continue
				}
				if record.ArgsMalformed {
					err := errors.NewStructuralParseError(class.LocalName, "args",
						fmt.Sprintf("expected array literal for args of a decorator on parameter %s", param.Name))
					err.WithLocation(location(class.File, record.Loc))
					return nil, err
				}
				param.Decorators = append(param.Decorators, h.paramDecorator(class.File, record.Type, record.Args, record.Loc))
			}
		}

		params = append(params, param)
	}
	return params, nil
}

func (h *Host) paramDecorator(file *jsast.SourceFile, expr jsast.Expr, args []jsast.Expr, loc jsast.Position) ParamDecorator {
	d := ParamDecorator{LocalName: jsast.Render(expr), Args: args, Loc: loc}
	if imp, ok := h.ImportOf(file, expr); ok {
		d.Import = &imp
	}
	return d
}
