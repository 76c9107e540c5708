// Package reflection answers questions about the classes of a loaded
// program: which exported symbols are classes, what annotation records a
// class carries, which module an identifier was really imported from, and
// what its constructor parameters look like. The Host is a read-only view
// over a program.Program and keeps no state between queries.
package reflection

import (
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/program"
)

const (
	// DefaultDecoratorsProperty is the static member holding class annotations
	DefaultDecoratorsProperty = "decorators"
	// DefaultCtorParametersProperty is the static member describing constructor parameters
	DefaultCtorParametersProperty = "ctorParameters"
)

// Host is the symbol-resolution service handed to every reflection consumer
type Host struct {
	prog                   *program.Program
	decoratorsProperty     string
	ctorParametersProperty string
}

// HostOption configures a Host
type HostOption func(*Host)

// WithDecoratorsProperty overrides the name of the class annotations member
func WithDecoratorsProperty(name string) HostOption {
	return func(h *Host) {
		if name != "" {
			h.decoratorsProperty = name
		}
	}
}

// WithCtorParametersProperty overrides the name of the constructor parameters member
func WithCtorParametersProperty(name string) HostOption {
	return func(h *Host) {
		if name != "" {
			h.ctorParametersProperty = name
		}
	}
}

// NewHost creates a host over prog
func NewHost(prog *program.Program, opts ...HostOption) *Host {
	h := &Host{
		prog:                   prog,
		decoratorsProperty:     DefaultDecoratorsProperty,
		ctorParametersProperty: DefaultCtorParametersProperty,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Program returns the program the host reads from
func (h *Host) Program() *program.Program {
	return h.prog
}

func location(file *jsast.SourceFile, pos jsast.Position) errors.SourceLocation {
	loc := errors.SourceLocation{Line: pos.Line, Column: pos.Column}
	if file != nil {
		loc.File = file.Path
	}
	return loc
}
