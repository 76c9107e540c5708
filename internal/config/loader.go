package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. NGREFLECT_FAILURE_POLICY
const EnvPrefix = "NGREFLECT"

// Loader loads configuration for one package root
type Loader struct {
	rootDir    string
	configFile string
	flags      map[string]*pflag.Flag
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithConfigFile loads path instead of searching the root for .ngreflect.yaml
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) {
		l.configFile = path
	}
}

// WithFlags binds command line flags to config keys. A flag that was set
// wins over the environment and the config file.
func WithFlags(flags map[string]*pflag.Flag) LoaderOption {
	return func(l *Loader) {
		l.flags = flags
	}
}

// NewLoader creates a loader that looks for .ngreflect.yaml in rootDir
func NewLoader(rootDir string, opts ...LoaderOption) *Loader {
	l := &Loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges, lowest priority first, the defaults, the config file and
// NGREFLECT_* environment variables, then validates the result. A missing
// config file is not an error unless it was named explicitly.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".ngreflect")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map keys are not reached by AutomaticEnv
	for _, category := range annotations.AllCategories {
		_ = v.BindEnv("reflection.categories." + strings.ToLower(category.String()))
	}

	setDefaults(v)

	for key, flag := range l.flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.WrapConfigurationError(key, "bind flag for", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(l.source(v), "read", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapConfigurationError(l.source(v), "decode", err)
	}
	if cfg.Reflection.Categories == nil {
		cfg.Reflection.Categories = map[string]string{}
	}
	for key, value := range cfg.Reflection.Categories {
		if value == "" {
			delete(cfg.Reflection.Categories, key)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) source(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if l.configFile != "" {
		return l.configFile
	}
	return filepath.Join(l.rootDir, ".ngreflect.yaml")
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("entry.directory", defaults.Entry.Directory)
	v.SetDefault("entry.file", defaults.Entry.File)
	v.SetDefault("entry.exclude", defaults.Entry.Exclude)

	v.SetDefault("reflection.trusted_module", defaults.Reflection.TrustedModule)
	v.SetDefault("reflection.decorators_property", defaults.Reflection.DecoratorsProperty)
	v.SetDefault("reflection.ctor_parameters_property", defaults.Reflection.CtorParametersProperty)

	v.SetDefault("failure_policy", defaults.FailurePolicy)

	v.SetDefault("output.verbose", defaults.Output.Verbose)
	v.SetDefault("output.quiet", defaults.Output.Quiet)
	v.SetDefault("output.color", defaults.Output.Color)
	v.SetDefault("output.runtime_prefix", defaults.Output.RuntimePrefix)
}
