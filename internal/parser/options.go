package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/diagnostics"
	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

// FailurePolicy decides what a pass does when one class fails
type FailurePolicy int

const (
	// FailAbort stops the pass at the first failure and returns it
	FailAbort FailurePolicy = iota
	// FailIsolate drops the failing class, finishes the pass and returns
	// every failure together
	FailIsolate
)

// String returns the policy name used in configuration
func (p FailurePolicy) String() string {
	switch p {
	case FailIsolate:
		return "isolate"
	default:
		return "abort"
	}
}

// ParseFailurePolicy parses "abort" or "isolate"
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return FailAbort, nil
	case "isolate":
		return FailIsolate, nil
	default:
		return FailAbort, fmt.Errorf("unknown failure policy %q (expected abort or isolate)", s)
	}
}

// Option configures a PackageParser
type Option func(*PackageParser)

// WithLoader sets the program loader used by ParseEntryPoint
func WithLoader(loader *program.Loader) Option {
	return func(p *PackageParser) {
		p.loader = loader
	}
}

// WithRegistry sets the extractor registry used by AnalyzeDecorators
func WithRegistry(registry annotations.ExtractorRegistry) Option {
	return func(p *PackageParser) {
		p.registry = registry
	}
}

// WithTargets overrides the trusted origin of individual categories.
// Categories not present keep their default target.
func WithTargets(targets map[annotations.Category]annotations.Target) Option {
	return func(p *PackageParser) {
		for category, target := range targets {
			p.overrides[category] = target
		}
	}
}

// WithTrustedModule sets the module whose annotations are trusted
func WithTrustedModule(module string) Option {
	return func(p *PackageParser) {
		if module != "" {
			p.trustedModule = module
		}
	}
}

// WithSink sets where failures are reported
func WithSink(sink diagnostics.Sink) Option {
	return func(p *PackageParser) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger sets the progress logger
func WithLogger(logger *diagnostics.Logger) Option {
	return func(p *PackageParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFailurePolicy sets the failure policy
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(p *PackageParser) {
		p.policy = policy
	}
}

// WithHostOptions passes options to every reflection host the parser creates
func WithHostOptions(opts ...reflection.HostOption) Option {
	return func(p *PackageParser) {
		p.hostOptions = append(p.hostOptions, opts...)
	}
}
