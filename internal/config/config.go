// Package config loads ngreflect settings from defaults, an optional YAML
// file and NGREFLECT_* environment variables.
package config

import (
	"github.com/toyz/ngreflect/internal/annotations"
)

// Config is the complete ngreflect configuration
type Config struct {
	Entry         EntryConfig      `yaml:"entry" mapstructure:"entry"`
	Reflection    ReflectionConfig `yaml:"reflection" mapstructure:"reflection"`
	FailurePolicy string           `yaml:"failure_policy" mapstructure:"failure_policy"` // "abort" or "isolate"
	Output        OutputConfig     `yaml:"output" mapstructure:"output"`
}

// EntryConfig locates the entry point inside a package root
type EntryConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"` // searched when package.json names no entry
	File      string `yaml:"file" mapstructure:"file"`           // explicit entry, relative to the package root
	// Exclude lists glob patterns of directories skipped when a root
	// ending in "/..." is expanded, relative to that root
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// ReflectionConfig controls how annotations are recognized
type ReflectionConfig struct {
	TrustedModule          string `yaml:"trusted_module" mapstructure:"trusted_module"`
	DecoratorsProperty     string `yaml:"decorators_property" mapstructure:"decorators_property"`
	CtorParametersProperty string `yaml:"ctor_parameters_property" mapstructure:"ctor_parameters_property"`
	// Categories overrides the origin of a category, keyed by category name,
	// e.g. injectables: "my-di#Service"
	Categories map[string]string `yaml:"categories" mapstructure:"categories"`
}

// OutputConfig controls what is printed
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	Quiet         bool   `yaml:"quiet" mapstructure:"quiet"`
	Color         string `yaml:"color" mapstructure:"color"` // "auto", "always" or "never"
	RuntimePrefix string `yaml:"runtime_prefix" mapstructure:"runtime_prefix"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Entry: EntryConfig{
			Directory: "esm2015",
			Exclude:   []string{},
		},
		Reflection: ReflectionConfig{
			TrustedModule:          annotations.DefaultTrustedModule,
			DecoratorsProperty:     "decorators",
			CtorParametersProperty: "ctorParameters",
			Categories:             map[string]string{},
		},
		FailurePolicy: "abort",
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// Targets returns the trusted origin of every category: the defaults for
// the trusted module with configured overrides applied.
func (c *Config) Targets() (map[annotations.Category]annotations.Target, error) {
	targets := annotations.DefaultTargets(c.Reflection.TrustedModule)
	for name, ref := range c.Reflection.Categories {
		category, err := annotations.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		target, err := annotations.ParseTarget(ref)
		if err != nil {
			return nil, err
		}
		targets[category] = target
	}
	return targets, nil
}
