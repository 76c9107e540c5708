package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/config"
	"github.com/toyz/ngreflect/internal/diagnostics"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/generator"
	"github.com/toyz/ngreflect/internal/parser"
	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

// runSummary counts what one run processed
type runSummary struct {
	packages    int
	classes     map[annotations.Category]int
	definitions int
	written     []string
}

// Runner processes package roots with one configuration
type Runner struct {
	cfg       *config.Config
	stdout    io.Writer
	logger    *diagnostics.Logger
	collector *diagnostics.Collector
	sink      diagnostics.Sink
	resolver  *PackageResolver
	loader    *program.Loader
	parser    *parser.PackageParser
	emitter   *generator.Emitter
	write     bool
	summary   runSummary
}

// NewRunner creates a runner. Definitions go to stdout unless write is set,
// progress and diagnostics go to stderr.
func NewRunner(cfg *config.Config, stdout, stderr io.Writer, write bool) (*Runner, error) {
	level := diagnostics.LevelInfo
	switch {
	case cfg.Output.Quiet:
		level = diagnostics.LevelError
	case cfg.Output.Verbose:
		level = diagnostics.LevelVerbose
	}
	colors := diagnostics.UseColors(cfg.Output.Color)

	logger := diagnostics.NewLogger(level)
	logger.SetOutput(stderr)
	logger.SetColors(colors)

	collector := diagnostics.NewCollector()
	sink := diagnostics.Multi{collector, diagnostics.NewReporter(stderr, cfg.Output.Verbose, colors)}

	targets, err := cfg.Targets()
	if err != nil {
		return nil, err
	}
	policy, err := parser.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}

	loader := program.NewLoader(program.WithLogger(logger))
	p, err := parser.NewPackageParser(
		parser.WithTrustedModule(cfg.Reflection.TrustedModule),
		parser.WithTargets(targets),
		parser.WithFailurePolicy(policy),
		parser.WithSink(sink),
		parser.WithLogger(logger),
		parser.WithLoader(loader),
		parser.WithHostOptions(
			reflection.WithDecoratorsProperty(cfg.Reflection.DecoratorsProperty),
			reflection.WithCtorParametersProperty(cfg.Reflection.CtorParametersProperty),
		),
	)
	if err != nil {
		return nil, err
	}

	emitter, err := generator.NewEmitter(generator.WithRuntimePrefix(cfg.Output.RuntimePrefix))
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:       cfg,
		stdout:    stdout,
		logger:    logger,
		collector: collector,
		sink:      sink,
		resolver:  NewPackageResolver(cfg.Entry.Directory),
		loader:    loader,
		parser:    p,
		emitter:   emitter,
		write:     write,
		summary: runSummary{
			classes: make(map[annotations.Category]int),
		},
	}, nil
}

// Run processes every root. A failing root is reported and the run moves
// on to the next one; only cancellation stops it early.
func (r *Runner) Run(ctx context.Context, roots []string) error {
	start := time.Now()
	r.logger.Section("ngreflect")
	r.logger.Verbose("Policy %s, trusting %s", r.parser.Policy(), r.cfg.Reflection.TrustedModule)

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.processRoot(ctx, root); err != nil && stderrors.Is(err, context.Canceled) {
			return err
		}
	}

	keys := []string{"Packages processed"}
	stats := map[string]interface{}{"Packages processed": r.summary.packages}
	for _, category := range annotations.AllCategories {
		key := fmt.Sprintf("%s found", category)
		keys = append(keys, key)
		stats[key] = r.summary.classes[category]
	}
	keys = append(keys, "Definitions generated")
	stats["Definitions generated"] = r.summary.definitions
	if r.write {
		keys = append(keys, "Files written")
		stats["Files written"] = len(r.summary.written)
	}
	keys = append(keys, "Errors", "Duration")
	stats["Errors"] = r.collector.Count(diagnostics.SeverityError)
	stats["Duration"] = time.Since(start).Round(time.Millisecond)
	r.logger.Summary("Summary", keys, stats)

	if r.Failed() {
		r.logger.Error("Completed with %d error(s)", r.collector.Count(diagnostics.SeverityError))
	} else {
		r.logger.Success("Completed")
	}
	return nil
}

func (r *Runner) processRoot(ctx context.Context, root string) error {
	manifest, err := r.resolver.ReadManifest(root)
	if err != nil {
		r.sink.Report(diagnostics.FromError(err, ""))
		return err
	}

	label := root
	if manifest != nil && manifest.Name != "" {
		label = manifest.Name
		if version := manifest.CanonicalVersion(); version != "" {
			label += "@" + version
		}
	}
	r.logger.Info("Processing %s", label)

	entry, err := r.resolver.ResolveEntryPoint(root, r.cfg.Entry.File, manifest)
	if err != nil {
		r.sink.Report(diagnostics.FromError(err, ""))
		return err
	}
	r.logger.Verbose("Entry point %s", entry)

	pkg, definitions, err := r.parser.Run(ctx, root, entry, r.emitter)
	if pkg == nil {
		return err
	}
	r.summary.packages++
	r.logger.Verbose("%d parsed file(s) cached", r.loader.CachedFiles())

	r.logger.Indent()
	for _, category := range annotations.AllCategories {
		classes := pkg.Classes(category)
		r.summary.classes[category] += len(classes)
		if len(classes) > 0 {
			r.logger.Item("%d %s", len(classes), category)
		}
	}
	r.logger.Unindent()

	var multiple *errors.MultipleErrors
	if err != nil && !stderrors.As(err, &multiple) {
		return err
	}

	r.summary.definitions += len(definitions)
	if r.write {
		if len(definitions) == 0 {
			return err
		}
		out, writeErr := WriteDefinitions(root, definitions)
		if writeErr != nil {
			r.sink.Report(diagnostics.FromError(writeErr, pkg.PassID))
			return writeErr
		}
		r.summary.written = append(r.summary.written, out)
		r.logger.Verbose("Wrote %s", out)
		return err
	}

	for _, d := range definitions {
		fmt.Fprintln(r.stdout, d.Code)
	}
	return err
}

// Failed reports whether any error diagnostic was reported
func (r *Runner) Failed() bool {
	return r.collector.HasErrors()
}
