package errors

import (
	"fmt"
	"strings"
)

// StructuralParseError reports compiled output that violates the lowered
// annotation convention: a decorators member that is not an array literal,
// args that are not an array literal, and similar shape failures.
type StructuralParseError struct {
	*BaseError
	ClassName string
	Construct string // what was malformed, e.g. "decorators", "args"
}

// NewStructuralParseError creates a structural parse error for className.
// message completes the sentence "<message> in class <ClassName>".
func NewStructuralParseError(className, construct, message string) *StructuralParseError {
	base := New(StructuralParseErrorCode, fmt.Sprintf("%s in class %s", message, className)).
		WithContext("class", className).
		WithContext("construct", construct)

	return &StructuralParseError{
		BaseError: base,
		ClassName: className,
		Construct: construct,
	}
}

// ArgumentCountError reports a decorator called with the wrong number of
// arguments.
type ArgumentCountError struct {
	*BaseError
	ClassName string
	Decorator string
	Expected  int
	Actual    int
}

// NewArgumentCountError creates an argument count error for decorator on className
func NewArgumentCountError(className, decorator string, expected, actual int) *ArgumentCountError {
	base := Newf(ArgumentCountErrorCode, "Unexpected number of arguments to @%s() in class %s: expected %d, got %d",
		decorator, className, expected, actual).
		WithContext("class", className).
		WithContext("decorator", decorator).
		WithContext("expected", expected).
		WithContext("actual", actual)

	if expected == 1 {
		base = base.WithSuggestion(fmt.Sprintf("@%s() takes exactly one argument", decorator))
	}

	return &ArgumentCountError{
		BaseError: base,
		ClassName: className,
		Decorator: decorator,
		Expected:  expected,
		Actual:    actual,
	}
}

// UnrecognizedParameterAnnotationError reports a trusted-module parameter
// decorator that has no dependency meaning.
type UnrecognizedParameterAnnotationError struct {
	*BaseError
	ClassName string
	Parameter string
	Decorator string
}

// NewUnrecognizedParameterAnnotationError creates an error for decorator on parameter of className
func NewUnrecognizedParameterAnnotationError(className, parameter, decorator string) *UnrecognizedParameterAnnotationError {
	base := Newf(UnrecognizedParameterAnnotationErrorCode, "Unexpected decorator %s on parameter %s of class %s",
		decorator, parameter, className).
		WithContext("class", className).
		WithContext("parameter", parameter).
		WithContext("decorator", decorator).
		WithSuggestion("Supported parameter decorators: Inject, Optional, Self, SkipSelf, Host, Attribute")

	return &UnrecognizedParameterAnnotationError{
		BaseError: base,
		ClassName: className,
		Parameter: parameter,
		Decorator: decorator,
	}
}

// UnresolvedDependencyTokenError reports a constructor parameter for which
// no injection token could be determined. Decorators lists every decorator
// observed on the parameter as module#Name, or the bare local name when its
// origin is unknown.
type UnresolvedDependencyTokenError struct {
	*BaseError
	ClassName  string
	Parameter  string
	Decorators []string
}

// NewUnresolvedDependencyTokenError creates an unresolved token error
func NewUnresolvedDependencyTokenError(className, parameter string, decorators []string) *UnresolvedDependencyTokenError {
	if decorators == nil {
		decorators = []string{}
	}

	base := Newf(UnresolvedDependencyTokenErrorCode, "No suitable token for parameter %s of class %s with decorators %s",
		parameter, className, strings.Join(decorators, ",")).
		WithContext("class", className).
		WithContext("parameter", parameter).
		WithContext("decorators", decorators).
		WithSuggestion("Add a type annotation or an @Inject(token) decorator to the parameter")

	return &UnresolvedDependencyTokenError{
		BaseError:  base,
		ClassName:  className,
		Parameter:  parameter,
		Decorators: decorators,
	}
}

// GenerationError reports a failure of the definition emitter
type GenerationError struct {
	*BaseError
	Category  string
	ClassName string
}

// NewGenerationError creates a generation error for className in category
func NewGenerationError(category, className, message string) *GenerationError {
	base := Newf(GenerationErrorCode, "cannot generate %s definition for %s: %s", category, className, message).
		WithContext("category", category).
		WithContext("class", className)

	return &GenerationError{
		BaseError: base,
		Category:  category,
		ClassName: className,
	}
}

// AsReflectError converts err into a ReflectError, wrapping foreign errors
// under UnknownErrorCode.
func AsReflectError(err error) ReflectError {
	if err == nil {
		return nil
	}
	if re, ok := err.(ReflectError); ok {
		return re
	}
	return Wrap(UnknownErrorCode, err.Error(), err)
}
