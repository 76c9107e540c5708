package extract

import (
	"fmt"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/models"
	"github.com/toyz/ngreflect/internal/reflection"
)

// InjectableExtractor extracts InjectableMetadata from classes annotated
// with the trusted Injectable annotation
type InjectableExtractor struct {
	trustedModule string
}

// NewInjectableExtractor creates an extractor trusting trustedModule
func NewInjectableExtractor(trustedModule string) *InjectableExtractor {
	return &InjectableExtractor{trustedModule: trustedModule}
}

// RegisterDefaults registers the extractors shipped with the engine
func RegisterDefaults(registry annotations.ExtractorRegistry, trustedModule string) error {
	return registry.Register(annotations.InjectableCategory, NewInjectableExtractor(trustedModule))
}

// Extract implements annotations.Extractor. The result is a
// *models.InjectableMetadata.
func (e *InjectableExtractor) Extract(host *reflection.Host, class *annotations.DecoratedClass) (interface{}, error) {
	symbol := class.Class
	record := class.Record
	resolver := NewDependencyResolver(host, e.trustedModule)

	if record.ArgsMalformed {
		err := errors.NewStructuralParseError(symbol.LocalName, "args", "expected array literal for args")
		err.WithLocation(location(symbol, record.Loc))
		return nil, err
	}

	meta := &models.InjectableMetadata{
		Name:         symbol.LocalName,
		ExportedName: symbol.Name,
		Type:         symbol,
	}

	switch len(record.Args) {
	case 0:
		deps, err := resolver.ConstructorDependencies(symbol)
		if err != nil {
			return nil, err
		}
		meta.Deps = deps
		return meta, nil

	case 1:
		// handled below

	default:
		err := errors.NewArgumentCountError(symbol.LocalName, "Injectable", 1, len(record.Args))
		err.WithLocation(location(symbol, record.Loc))
		return nil, err
	}

	options, ok := record.Args[0].(*jsast.ObjectLiteral)
	if !ok {
		err := errors.NewStructuralParseError(symbol.LocalName, "Injectable",
			"expected object literal for the @Injectable() argument")
		err.WithLocation(location(symbol, record.Args[0].Pos()))
		return nil, err
	}

	if providedIn, ok := options.Get("providedIn"); ok {
		meta.ProvidedIn = providedIn
	}

	if useValue, ok := options.Get("useValue"); ok {
		meta.UseValue = useValue
		return meta, nil
	}
	if useExisting, ok := options.Get("useExisting"); ok {
		meta.UseExisting = useExisting
		return meta, nil
	}

	explicitDeps, hasDeps := options.Get("deps")

	if useFactory, ok := options.Get("useFactory"); ok {
		meta.UseFactory = useFactory
		meta.Deps = []models.ConstructorDependency{}
		if hasDeps {
			deps, err := e.providerDeps(host, symbol, explicitDeps)
			if err != nil {
				return nil, err
			}
			meta.Deps = deps
		}
		return meta, nil
	}

	if useClass, ok := options.Get("useClass"); ok {
		meta.UseClass = useClass
		if hasDeps {
			deps, err := e.providerDeps(host, symbol, explicitDeps)
			if err != nil {
				return nil, err
			}
			meta.Deps = deps
			return meta, nil
		}
	}

	deps, err := resolver.ConstructorDependencies(symbol)
	if err != nil {
		return nil, err
	}
	meta.Deps = deps
	return meta, nil
}

// providerDeps parses a provider `deps` array. Each element is a token, or
// an array of flags (Optional, Self, SkipSelf, Host, Inject(token)) and a
// token.
func (e *InjectableExtractor) providerDeps(host *reflection.Host, symbol *reflection.ClassSymbol, value jsast.Expr) ([]models.ConstructorDependency, error) {
	list, ok := value.(*jsast.ArrayLiteral)
	if !ok {
		err := errors.NewStructuralParseError(symbol.LocalName, "deps", "expected array literal for deps")
		err.WithLocation(location(symbol, value.Pos()))
		return nil, err
	}

	resolver := NewDependencyResolver(host, e.trustedModule)
	deps := make([]models.ConstructorDependency, 0, len(list.Elements))
	for i, element := range list.Elements {
		name := fmt.Sprintf("deps[%d]", i)
		dep := models.ConstructorDependency{Resolved: models.ResolvedToken, ParameterName: name}

		entries, isList := element.(*jsast.ArrayLiteral)
		if !isList {
			dep.Token = element
		} else {
			var seen []string
			for _, entry := range entries.Elements {
				flag, args, imp, ok := e.flagOf(host, symbol.File, entry)
				if !ok {
					dep.Token = entry
					continue
				}
				seen = append(seen, imp.String())
				switch flag {
				case "Optional":
					dep.Optional = true
				case "Self":
					dep.Self = true
				case "SkipSelf":
					dep.SkipSelf = true
				case "Host":
					dep.Host = true
				case "Inject":
					if len(args) != 1 {
						err := errors.NewArgumentCountError(symbol.LocalName, "Inject", 1, len(args))
						err.WithLocation(location(symbol, entry.Pos()))
						return nil, err
					}
					dep.Token = args[0]
				}
			}
			if dep.Token == nil {
				err := errors.NewUnresolvedDependencyTokenError(symbol.LocalName, name, seen)
				err.WithLocation(location(symbol, element.Pos()))
				return nil, err
			}
		}

		if kind, ok := resolver.specialKind(symbol.File, dep.Token); ok {
			dep.Resolved = kind
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// flagOf recognizes a dependency flag: a trusted Optional/Self/SkipSelf/Host
// reference, or a trusted Inject used bare, called or constructed.
func (e *InjectableExtractor) flagOf(host *reflection.Host, file *jsast.SourceFile, entry jsast.Expr) (string, []jsast.Expr, reflection.Import, bool) {
	ref := entry
	var args []jsast.Expr
	switch v := entry.(type) {
	case *jsast.CallExpr:
		ref, args = v.Callee, v.Args
	case *jsast.NewExpr:
		ref, args = v.Callee, v.Args
	}

	imp, ok := host.ImportOf(file, ref)
	if !ok || imp.From != e.trustedModule {
		return "", nil, reflection.Import{}, false
	}

	switch imp.Name {
	case "Optional", "Self", "SkipSelf", "Host", "Inject":
		return imp.Name, args, imp, true
	}
	return "", nil, reflection.Import{}, false
}

func location(symbol *reflection.ClassSymbol, pos jsast.Position) errors.SourceLocation {
	return errors.SourceLocation{File: symbol.File.Path, Line: pos.Line, Column: pos.Column}
}
