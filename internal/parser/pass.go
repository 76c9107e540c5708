package parser

import (
	stderrors "errors"

	"github.com/toyz/ngreflect/internal/diagnostics"
	"github.com/toyz/ngreflect/internal/errors"
)

// pass tracks the failures of one phase run
type pass struct {
	id       string
	policy   FailurePolicy
	sink     diagnostics.Sink
	failures *errors.MultipleErrors
}

func (p *PackageParser) newPass(id string) *pass {
	return &pass{id: id, policy: p.policy, sink: p.sink}
}

// fail reports err and returns it when the pass must stop
func (s *pass) fail(err error) error {
	reflectErr := withHints(errors.AsReflectError(err))
	s.sink.Report(diagnostics.FromError(reflectErr, s.id))

	if s.policy == FailAbort {
		return reflectErr
	}
	errors.AddToMultiple(&s.failures, reflectErr)
	return nil
}

// result returns the collected failures of an isolating pass, nil when
// nothing failed
func (s *pass) result() error {
	return s.failures.ErrorOrNil()
}

// withHints attaches fix suggestions for the extraction failures users run
// into most. Errors that already carry suggestions are left alone.
func withHints(err errors.ReflectError) errors.ReflectError {
	if len(err.Suggestions()) > 0 {
		return err
	}

	var (
		structural   *errors.StructuralParseError
		count        *errors.ArgumentCountError
		unrecognized *errors.UnrecognizedParameterAnnotationError
		unresolved   *errors.UnresolvedDependencyTokenError
		generation   *errors.GenerationError
	)
	switch {
	case stderrors.As(err, &structural):
		structural.
			WithSuggestion("Annotations must be lowered as X.decorators = [{ type: T, args: [...] }]").
			WithSuggestion("Rebuild the package with a compiler that emits the lowered annotation form")
	case stderrors.As(err, &count):
		count.WithSuggestion("Pass exactly one argument to @" + count.Decorator + "()")
	case stderrors.As(err, &unrecognized):
		unrecognized.
			WithSuggestion("Only Inject, Optional, Self, SkipSelf, Host and Attribute may decorate constructor parameters").
			WithSuggestion("Remove @" + unrecognized.Decorator + "() from parameter " + unrecognized.Parameter)
	case stderrors.As(err, &unresolved):
		unresolved.
			WithSuggestion("Add @Inject(TOKEN) to parameter " + unresolved.Parameter).
			WithSuggestion("Give the parameter a class type so its token can be inferred")
	case stderrors.As(err, &generation):
		generation.WithSuggestion("Register an emitter for " + generation.Category + " or exclude the category")
	}
	return err
}
