// Package extract converts matched classes into the metadata a definition
// emitter needs, starting with constructor dependencies.
package extract

import (
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/models"
	"github.com/toyz/ngreflect/internal/reflection"
)

// DependencyResolver computes the injection dependencies of constructors.
// Only parameter decorators imported from the trusted module take effect.
type DependencyResolver struct {
	host          *reflection.Host
	trustedModule string
}

// NewDependencyResolver creates a resolver trusting decorators from trustedModule
func NewDependencyResolver(host *reflection.Host, trustedModule string) *DependencyResolver {
	return &DependencyResolver{host: host, trustedModule: trustedModule}
}

// ConstructorDependencies returns one dependency per constructor parameter
// of class, in declaration order. The first failing parameter aborts with
// its error.
func (r *DependencyResolver) ConstructorDependencies(class *reflection.ClassSymbol) ([]models.ConstructorDependency, error) {
	params, err := r.host.ConstructorParameters(class)
	if err != nil {
		return nil, err
	}

	deps := make([]models.ConstructorDependency, 0, len(params))
	for _, param := range params {
		dep, err := r.resolveParameter(class, param)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func (r *DependencyResolver) resolveParameter(class *reflection.ClassSymbol, param reflection.CtorParameter) (models.ConstructorDependency, error) {
	dep := models.ConstructorDependency{
		Token:         param.Type,
		Resolved:      models.ResolvedToken,
		ParameterName: param.Name,
	}

	for _, d := range param.Decorators {
		if d.Import == nil || d.Import.From != r.trustedModule {
			continue
		}

		switch d.Import.Name {
		case "Inject":
			if len(d.Args) != 1 {
				return dep, r.argumentCount(class, d)
			}
			dep.Token = d.Args[0]
		case "Optional":
			dep.Optional = true
		case "SkipSelf":
			dep.SkipSelf = true
		case "Self":
			dep.Self = true
		case "Host":
			dep.Host = true
		case "Attribute":
			if len(d.Args) != 1 {
				return dep, r.argumentCount(class, d)
			}
			dep.Token = d.Args[0]
			dep.Resolved = models.ResolvedAttribute
		default:
			err := errors.NewUnrecognizedParameterAnnotationError(class.LocalName, param.Name, d.Import.Name)
			err.WithLocation(location(class, d.Loc))
			return dep, err
		}
	}

	if dep.Token == nil {
		names := make([]string, 0, len(param.Decorators))
		for _, d := range param.Decorators {
			names = append(names, d.DisplayName())
		}
		err := errors.NewUnresolvedDependencyTokenError(class.LocalName, param.Name, names)
		err.WithLocation(location(class, param.Loc))
		return dep, err
	}

	if kind, ok := r.specialKind(class.File, dep.Token); ok {
		dep.Resolved = kind
	}

	return dep, nil
}

// specialKind reports whether token is a bare identifier imported from the
// trusted module under one of the reserved reference names
func (r *DependencyResolver) specialKind(file *jsast.SourceFile, token jsast.Expr) (models.ResolvedKind, bool) {
	if _, ok := token.(*jsast.Identifier); !ok {
		return models.ResolvedToken, false
	}
	imp, ok := r.host.ImportOf(file, token)
	if !ok || imp.From != r.trustedModule {
		return models.ResolvedToken, false
	}
	kind, ok := models.SpecialReferenceKinds[imp.Name]
	return kind, ok
}

func (r *DependencyResolver) argumentCount(class *reflection.ClassSymbol, d reflection.ParamDecorator) error {
	err := errors.NewArgumentCountError(class.LocalName, d.Import.Name, 1, len(d.Args))
	err.WithLocation(location(class, d.Loc))
	return err
}
