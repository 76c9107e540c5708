package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/parser"
)

// Validate checks cfg and reports every problem at once as a
// *errors.MultipleErrors of configuration errors.
func Validate(cfg *Config) error {
	var problems *errors.MultipleErrors
	add := func(key, format string, args ...interface{}) {
		errors.AddToMultiple(&problems, errors.ConfigurationError(key, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(cfg.Reflection.TrustedModule) == "" {
		add("reflection.trusted_module", "must not be empty")
	}
	for key, value := range map[string]string{
		"reflection.decorators_property":      cfg.Reflection.DecoratorsProperty,
		"reflection.ctor_parameters_property": cfg.Reflection.CtorParametersProperty,
	} {
		if !isPropertyName(value) {
			add(key, "%q is not a valid property name", value)
		}
	}

	names := make([]string, 0, len(cfg.Reflection.Categories))
	for name := range cfg.Reflection.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := "reflection.categories." + name
		if _, err := annotations.ParseCategory(name); err != nil {
			add(key, "%v", err)
			continue
		}
		if _, err := annotations.ParseTarget(cfg.Reflection.Categories[name]); err != nil {
			add(key, "%v", err)
		}
	}

	if _, err := parser.ParseFailurePolicy(cfg.FailurePolicy); err != nil {
		add("failure_policy", "%v", err)
	}

	switch cfg.Output.Color {
	case "", "auto", "always", "never":
	default:
		add("output.color", "must be auto, always or never, got %q", cfg.Output.Color)
	}
	if cfg.Output.Verbose && cfg.Output.Quiet {
		add("output.quiet", "cannot be combined with output.verbose")
	}

	if filepath.IsAbs(cfg.Entry.File) {
		add("entry.file", "must be relative to the package root")
	}
	for _, pattern := range cfg.Entry.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			add("entry.exclude", "invalid pattern %q: %v", pattern, err)
		}
	}

	return problems.ErrorOrNil()
}

func isPropertyName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
