// Package generator is the reference definition emitter. It renders
// injectable metadata as defineInjectable calls with text/template.
package generator

import (
	"strings"
	"text/template"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/models"
	"github.com/toyz/ngreflect/internal/parser"
)

// Injection flags passed as the second argument of inject()
const (
	FlagDefault  = 0
	FlagHost     = 1
	FlagSelf     = 2
	FlagSkipSelf = 4
	FlagOptional = 8
)

var _ parser.Emitter = (*Emitter)(nil)

// Emitter renders analysis outputs as definition source text
type Emitter struct {
	prefix    string
	templates *templateRegistry
}

// Option configures an Emitter
type Option func(*Emitter)

// WithRuntimePrefix qualifies the runtime functions the generated code
// calls, e.g. "i0." renders i0.inject(...)
func WithRuntimePrefix(prefix string) Option {
	return func(e *Emitter) {
		e.prefix = prefix
	}
}

// NewEmitter creates an emitter
func NewEmitter(opts ...Option) (*Emitter, error) {
	e := &Emitter{}
	for _, opt := range opts {
		opt(e)
	}

	templates, err := newTemplateRegistry(template.FuncMap{
		"join": func(args []string) string { return strings.Join(args, ", ") },
	})
	if err != nil {
		return nil, err
	}
	e.templates = templates
	return e, nil
}

// Emit implements parser.Emitter. Only injectables can be generated.
func (e *Emitter) Emit(output models.AnalysisOutput) (models.GeneratedDefinition, error) {
	className := ""
	if output.Class != nil {
		className = output.Class.Class.LocalName
	}

	if output.Category != annotations.InjectableCategory {
		return models.GeneratedDefinition{}, errors.NewGenerationError(output.Category.String(), className,
			"no emitter is available for this category")
	}

	meta, ok := output.Metadata.(*models.InjectableMetadata)
	if !ok || meta == nil {
		return models.GeneratedDefinition{}, errors.NewGenerationError(output.Category.String(), className,
			"analysis output does not carry injectable metadata")
	}

	code, err := e.injectable(meta)
	if err != nil {
		genErr := errors.NewGenerationError(output.Category.String(), meta.Name, err.Error())
		genErr.WithCause(err)
		return models.GeneratedDefinition{}, genErr
	}

	return models.GeneratedDefinition{
		Category:     output.Category,
		ClassName:    meta.Name,
		ExportedName: meta.ExportedName,
		Code:         code,
	}, nil
}

func (e *Emitter) injectable(meta *models.InjectableMetadata) (string, error) {
	providedIn := "null"
	if meta.ProvidedIn != nil {
		providedIn = jsast.Render(meta.ProvidedIn)
	}

	body, err := e.factoryBody(meta)
	if err != nil {
		return "", err
	}

	return e.templates.execute("injectable", struct {
		Name, Prefix, ProvidedIn, Body string
	}{meta.Name, e.prefix, providedIn, body})
}

// factoryBody renders the expression returned by the generated factory
func (e *Emitter) factoryBody(meta *models.InjectableMetadata) (string, error) {
	switch {
	case meta.UseValue != nil:
		return jsast.Render(meta.UseValue), nil

	case meta.UseExisting != nil:
		return e.dependency(models.ConstructorDependency{Token: meta.UseExisting})

	case meta.UseFactory != nil:
		args, err := e.dependencies(meta.Deps)
		if err != nil {
			return "", err
		}
		return e.templates.execute("factory-call", call{Callee: jsast.Render(meta.UseFactory), Args: args})

	case meta.UseClass != nil:
		args, err := e.dependencies(meta.Deps)
		if err != nil {
			return "", err
		}
		return e.templates.execute("new-instance", call{Callee: jsast.Render(meta.UseClass), Args: args})
	}

	args, err := e.dependencies(meta.Deps)
	if err != nil {
		return "", err
	}
	return e.templates.execute("new-instance", call{Callee: meta.Name, Args: args})
}

type call struct {
	Callee string
	Args   []string
}

func (e *Emitter) dependencies(deps []models.ConstructorDependency) ([]string, error) {
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		rendered, err := e.dependency(dep)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (e *Emitter) dependency(dep models.ConstructorDependency) (string, error) {
	return e.templates.execute("dependency", struct {
		Kind, Prefix, Token string
		Flags               int
	}{dep.Resolved.String(), e.prefix, jsast.Render(dep.Token), Flags(dep)})
}

// Flags returns the inject() flag mask of dep
func Flags(dep models.ConstructorDependency) int {
	flags := FlagDefault
	if dep.Optional {
		flags |= FlagOptional
	}
	if dep.SkipSelf {
		flags |= FlagSkipSelf
	}
	if dep.Self {
		flags |= FlagSelf
	}
	if dep.Host {
		flags |= FlagHost
	}
	return flags
}
