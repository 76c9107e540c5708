// Package parser runs one entry-point pass: it matches annotated classes
// per category, extracts their metadata and hands it to an emitter.
package parser

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/diagnostics"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/extract"
	"github.com/toyz/ngreflect/internal/models"
	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

// Emitter turns one analysis output into a generated definition
type Emitter interface {
	Emit(output models.AnalysisOutput) (models.GeneratedDefinition, error)
}

// EmitterFunc adapts a function to an Emitter
type EmitterFunc func(output models.AnalysisOutput) (models.GeneratedDefinition, error)

// Emit calls f(output)
func (f EmitterFunc) Emit(output models.AnalysisOutput) (models.GeneratedDefinition, error) {
	return f(output)
}

// PackageParser orchestrates the parse, analyze and transform phases
type PackageParser struct {
	loader        *program.Loader
	registry      annotations.ExtractorRegistry
	overrides     map[annotations.Category]annotations.Target
	targets       map[annotations.Category]annotations.Target
	trustedModule string
	sink          diagnostics.Sink
	logger        *diagnostics.Logger
	policy        FailurePolicy
	hostOptions   []reflection.HostOption
}

// NewPackageParser creates a parser. Without options it trusts
// @angular/core, aborts on the first failure, discards diagnostics and
// registers the default extractors.
func NewPackageParser(opts ...Option) (*PackageParser, error) {
	p := &PackageParser{
		overrides:     make(map[annotations.Category]annotations.Target),
		trustedModule: annotations.DefaultTrustedModule,
		sink:          diagnostics.Discard,
		logger:        diagnostics.NewLogger(diagnostics.LevelSilent),
		policy:        FailAbort,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.targets = annotations.DefaultTargets(p.trustedModule)
	for category, target := range p.overrides {
		p.targets[category] = target
	}

	if p.loader == nil {
		p.loader = program.NewLoader(program.WithLogger(p.logger))
	}
	if p.registry == nil {
		p.registry = annotations.NewRegistry()
		if err := extract.RegisterDefaults(p.registry, p.trustedModule); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Targets returns the trusted origin of each category
func (p *PackageParser) Targets() map[annotations.Category]annotations.Target {
	out := make(map[annotations.Category]annotations.Target, len(p.targets))
	for category, target := range p.targets {
		out[category] = target
	}
	return out
}

// Policy returns the configured failure policy
func (p *PackageParser) Policy() FailurePolicy {
	return p.policy
}

// ParseEntryPoint loads the entry point of the package at packagePath and
// matches its classes. A relative entryPoint is resolved against
// packagePath. Load failures always abort.
func (p *PackageParser) ParseEntryPoint(ctx context.Context, packagePath, entryPoint string) (*models.ParsedPackage, error) {
	path := entryPoint
	if !filepath.IsAbs(path) {
		path = filepath.Join(packagePath, entryPoint)
	}

	p.logger.Verbose("Loading entry point %s", path)
	prog, err := p.loader.Load(ctx, path)
	if err != nil {
		p.sink.Report(diagnostics.FromError(err, ""))
		return nil, err
	}
	p.logger.Verbose("Loaded %d file(s)", len(prog.Files()))

	pkg, err := p.ParseProgram(prog)
	if pkg != nil {
		pkg.PackagePath = packagePath
	}
	return pkg, err
}

// ParseProgram scans the entry file of prog once and matches every scanned
// class against each category. Classes keep scan order within a category.
func (p *PackageParser) ParseProgram(prog *program.Program) (*models.ParsedPackage, error) {
	pass := p.newPass(uuid.NewString())
	host := p.host(prog)

	pkg := &models.ParsedPackage{
		PassID:           pass.id,
		EntryPointPath:   prog.EntryPath(),
		Program:          prog,
		EntryPointFile:   prog.Entry(),
		DecoratedClasses: make(map[annotations.Category][]*annotations.DecoratedClass, len(annotations.AllCategories)),
	}
	for _, category := range annotations.AllCategories {
		pkg.DecoratedClasses[category] = []*annotations.DecoratedClass{}
	}

	classes := host.ScanClasses(prog.Entry())
	p.logger.Debug("Pass %s scanned %d exported class(es)", pass.id, len(classes))

	type located struct {
		class  *reflection.ClassSymbol
		lookup reflection.AnnotationLookup
	}
	annotated := make([]located, 0, len(classes))
	for _, class := range classes {
		lookup := host.Locate(class)
		switch lookup.Kind {
		case reflection.NotAnnotated:
			continue
		case reflection.Malformed:
			if err := pass.fail(lookup.Err); err != nil {
				return nil, err
			}
			continue
		}
		annotated = append(annotated, located{class: class, lookup: lookup})
	}

	matcher := annotations.NewMatcher(host)
	for _, category := range annotations.AllCategories {
		target := p.targets[category]
		for _, l := range annotated {
			if match := matcher.Match(l.class, l.lookup, category, target); match != nil {
				pkg.DecoratedClasses[category] = append(pkg.DecoratedClasses[category], match)
				p.logger.Debug("%s matched %s", match.Name(), target)
			}
		}
	}

	return pkg, pass.result()
}

// AnalyzeDecorators runs the registered extractor of each category over its
// matched classes. Categories without an extractor are skipped.
func (p *PackageParser) AnalyzeDecorators(pkg *models.ParsedPackage) (map[annotations.Category][]models.AnalysisOutput, error) {
	pass := p.newPass(pkg.PassID)
	host := p.host(pkg.Program)

	analysis := make(map[annotations.Category][]models.AnalysisOutput)
	for _, category := range p.registry.Categories() {
		extractor, ok := p.registry.Get(category)
		if !ok {
			continue
		}

		outputs := make([]models.AnalysisOutput, 0, len(pkg.Classes(category)))
		for _, class := range pkg.Classes(category) {
			metadata, err := extractor.Extract(host, class)
			if err != nil {
				if err := pass.fail(err); err != nil {
					return nil, err
				}
				continue
			}
			outputs = append(outputs, models.AnalysisOutput{
				PassID:   pkg.PassID,
				Category: category,
				Class:    class,
				Metadata: metadata,
			})
		}
		analysis[category] = outputs
		p.logger.Verbose("Analyzed %d %s", len(outputs), category)
	}

	return analysis, pass.result()
}

// TransformDecorators hands every analysis output to emitter one at a time,
// in category order then class order.
func (p *PackageParser) TransformDecorators(analysis map[annotations.Category][]models.AnalysisOutput, emitter Emitter) ([]models.GeneratedDefinition, error) {
	var current *pass
	var definitions []models.GeneratedDefinition
	for _, category := range annotations.AllCategories {
		for _, output := range analysis[category] {
			if current == nil {
				current = p.newPass(output.PassID)
			}

			definition, err := emitter.Emit(output)
			if err != nil {
				if err := current.fail(err); err != nil {
					return nil, err
				}
				continue
			}
			definitions = append(definitions, definition)
		}
	}

	if current == nil {
		return definitions, nil
	}
	return definitions, current.result()
}

// Run performs all three phases for one entry point
func (p *PackageParser) Run(ctx context.Context, packagePath, entryPoint string, emitter Emitter) (*models.ParsedPackage, []models.GeneratedDefinition, error) {
	var failures *errors.MultipleErrors
	collect := func(err error) error {
		if err == nil {
			return nil
		}
		if multiple, ok := err.(*errors.MultipleErrors); ok && p.policy == FailIsolate {
			for _, e := range multiple.Errors {
				errors.AddToMultiple(&failures, e)
			}
			return nil
		}
		return err
	}

	pkg, err := p.ParseEntryPoint(ctx, packagePath, entryPoint)
	if err := collect(err); err != nil {
		return pkg, nil, err
	}

	analysis, err := p.AnalyzeDecorators(pkg)
	if err := collect(err); err != nil {
		return pkg, nil, err
	}

	definitions, err := p.TransformDecorators(analysis, emitter)
	if err := collect(err); err != nil {
		return pkg, definitions, err
	}

	return pkg, definitions, failures.ErrorOrNil()
}

func (p *PackageParser) host(prog *program.Program) *reflection.Host {
	return reflection.NewHost(prog, p.hostOptions...)
}
