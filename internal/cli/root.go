// Package cli implements the ngreflect command: it discovers the entry point
// of each package root, runs the reflection passes and prints the generated
// definitions.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/toyz/ngreflect/internal/config"
	"github.com/toyz/ngreflect/internal/diagnostics"
)

// Version is the version reported by --version, set at build time
var Version = "dev"

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// usageError marks invalid arguments or configuration
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// errFailed is returned once every failure has already been reported
var errFailed = stderrors.New("one or more packages failed")

type options struct {
	configFile string
	write      bool
	clean      bool
}

// NewRootCommand creates the ngreflect command
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ngreflect [flags] <package-root...>",
		Short: "Extract injectable metadata from compiled Angular packages",
		Long: `ngreflect reads the ES2015 entry point of compiled Angular packages, finds
the exported classes whose lowered annotations really come from the trusted
module (by following imports and re-exports, never by name), extracts their
constructor dependencies and prints a definition for every injectable.

Package roots:
  ./dist/my-lib        a single package root containing package.json
  ./node_modules/...   every package below a directory, minus --exclude matches

The entry point is, in order: --entry, entry.file in the config, the es2015
or module field of package.json, <entry.directory>/<package name>.js.

Exit status is 0 on success, 1 when any error was reported and 2 for
invalid arguments or configuration.`,
		Example: `  ngreflect ./node_modules/@angular/common
  ngreflect --failure-policy isolate --write ./node_modules/...
  ngreflect --clean ./node_modules/...`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &usageError{err: fmt.Errorf("at least one package root is required")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./.ngreflect.yaml)")
	flags.String("entry", "", "entry point relative to each package root")
	flags.StringSlice("exclude", nil, "glob patterns of directories to skip when expanding /...")
	flags.String("failure-policy", "", "abort or isolate (default abort)")
	flags.String("trusted-module", "", "module whose annotations are trusted (default @angular/core)")
	flags.String("color", "", "auto, always or never (default auto)")
	flags.String("runtime-prefix", "", "qualifier for runtime calls in generated code, e.g. i0.")
	flags.BoolP("verbose", "v", false, "show progress details and error context")
	flags.BoolP("quiet", "q", false, "only show errors")
	flags.BoolVar(&opts.write, "write", false, "write definitions to "+OutputFileName+" in each package root")
	flags.BoolVar(&opts.clean, "clean", false, "remove "+OutputFileName+" from each package root and exit")

	return cmd
}

// configFlags maps config keys to the flags that override them
func configFlags(flags *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"entry.file":                flags.Lookup("entry"),
		"entry.exclude":             flags.Lookup("exclude"),
		"failure_policy":            flags.Lookup("failure-policy"),
		"reflection.trusted_module": flags.Lookup("trusted-module"),
		"output.color":              flags.Lookup("color"),
		"output.runtime_prefix":     flags.Lookup("runtime-prefix"),
		"output.verbose":            flags.Lookup("verbose"),
		"output.quiet":              flags.Lookup("quiet"),
	}
}

func run(cmd *cobra.Command, args []string, opts *options, stdout, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return &usageError{err: err}
	}

	cfg, err := config.NewLoader(cwd,
		config.WithConfigFile(opts.configFile),
		config.WithFlags(configFlags(cmd.Flags())),
	).Load()
	if err != nil {
		return &usageError{err: err}
	}

	scanner, err := NewDirectoryScanner(cfg.Entry.Exclude...)
	if err != nil {
		return &usageError{err: err}
	}
	roots, err := scanner.ScanPackages(args)
	if err != nil {
		return &usageError{err: err}
	}

	if opts.clean {
		logger := diagnostics.NewLogger(diagnostics.LevelInfo)
		logger.SetOutput(stderr)
		logger.SetColors(diagnostics.UseColors(cfg.Output.Color))

		removed, err := NewCleaner().Clean(roots)
		for _, path := range removed {
			logger.Verbose("Removed %s", path)
		}
		if err != nil {
			logger.Error("Clean failed: %v", err)
			return errFailed
		}
		logger.Success("Removed %d definition file(s)", len(removed))
		return nil
	}

	if len(roots) == 0 {
		return &usageError{err: fmt.Errorf("no package roots found in %v", args)}
	}

	runner, err := NewRunner(cfg, stdout, stderr, opts.write)
	if err != nil {
		return &usageError{err: err}
	}
	if err := runner.Run(cmd.Context(), roots); err != nil {
		return err
	}
	if runner.Failed() {
		return errFailed
	}
	return nil
}

// Execute runs the command with args and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}

	var usage *usageError
	if stderrors.As(err, &usage) {
		fmt.Fprintf(stderr, "Error: %v\n", usage.err)
		fmt.Fprintln(stderr, "Run 'ngreflect --help' for usage.")
		return ExitUsage
	}

	if !stderrors.Is(err, errFailed) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitFailure
}
