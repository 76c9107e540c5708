package extract

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/ngreflect/internal/annotations"
	"github.com/toyz/ngreflect/internal/errors"
	"github.com/toyz/ngreflect/internal/jsast"
	"github.com/toyz/ngreflect/internal/models"
	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

const core = annotations.DefaultTrustedModule

type fixture struct {
	host    *reflection.Host
	classes map[string]*reflection.ClassSymbol
}

func load(t *testing.T, src string) *fixture {
	t.Helper()
	prog, err := program.FromSources("/pkg/index.js", map[string]string{"/pkg/index.js": src})
	require.NoError(t, err)

	host := reflection.NewHost(prog)
	f := &fixture{host: host, classes: map[string]*reflection.ClassSymbol{}}
	for _, c := range host.ScanClasses(prog.Entry()) {
		f.classes[c.Name] = c
	}
	return f
}

func (f *fixture) deps(t *testing.T, name string) ([]models.ConstructorDependency, error) {
	t.Helper()
	class, ok := f.classes[name]
	require.True(t, ok, "class %s not exported", name)
	return NewDependencyResolver(f.host, core).ConstructorDependencies(class)
}

func (f *fixture) injectable(t *testing.T, name string) (*models.InjectableMetadata, error) {
	t.Helper()
	class, ok := f.classes[name]
	require.True(t, ok, "class %s not exported", name)

	target := annotations.DefaultTargets(core)[annotations.InjectableCategory]
	decorated := annotations.NewMatcher(f.host).Match(class, f.host.Locate(class), annotations.InjectableCategory, target)
	require.NotNil(t, decorated, "class %s is not injectable", name)

	meta, err := NewInjectableExtractor(core).Extract(f.host, decorated)
	if err != nil {
		return nil, err
	}
	return meta.(*models.InjectableMetadata), nil
}

const dependencySource = `
import { Inject, Optional, Self, SkipSelf, Host, Attribute, Component, ElementRef, Injector, TemplateRef, ViewContainerRef } from '@angular/core';
import * as i0 from '@angular/core';
import { Optional as ThirdPartyOptional } from 'other-lib';
import { Engine } from './engine-types';

export class Plain {
    constructor(engine) {}
}
Plain.ctorParameters = () => [{ type: Engine }];

export class Flags {
    constructor(a) {}
}
Flags.ctorParameters = () => [
    { type: Engine, decorators: [{ type: Optional }, { type: Self }, { type: SkipSelf }, { type: Host }, { type: ThirdPartyOptional }] },
];

export class Special {
    constructor(el, injector, tpl, vcr, viaInject, namespaced) {}
}
Special.ctorParameters = () => [
    { type: ElementRef },
    { type: Injector },
    { type: TemplateRef },
    { type: ViewContainerRef },
    { type: undefined, decorators: [{ type: Inject, args: [ElementRef] }] },
    { type: i0.Injector },
];

export class Attr {
    constructor(title) {}
}
Attr.ctorParameters = () => [{ type: String, decorators: [{ type: Attribute, args: ['title'] }] }];

export class AttrNone {
    constructor(title) {}
}
AttrNone.ctorParameters = () => [{ type: String, decorators: [{ type: Attribute }] }];

export class AttrTwo {
    constructor(title) {}
}
AttrTwo.ctorParameters = () => [{ type: String, decorators: [{ type: Attribute, args: ['a', 'b'] }] }];

export class InjectTwo {
    constructor(token) {}
}
InjectTwo.ctorParameters = () => [{ type: undefined, decorators: [{ type: i0.Inject, args: [A, B] }] }];

export class Unknown {
    constructor(wheel) {}
}
Unknown.ctorParameters = () => [{ type: Engine, decorators: [{ type: Component }] }];

export class NoToken {
    constructor(mystery) {}
}
NoToken.ctorParameters = () => [{ type: undefined }];

export class NoTokenWithDecorators {
    constructor(mystery) {}
}
NoTokenWithDecorators.ctorParameters = () => [{ type: undefined, decorators: [{ type: Optional }, { type: ThirdPartyOptional }] }];

export class Ordered {
    constructor(first, second) {}
}
Ordered.ctorParameters = () => [{ type: Engine }, { type: undefined, decorators: [{ type: Inject, args: ['TOKEN'] }] }];

export class NoConstructor {}
`

func TestConstructorDependencies(t *testing.T) {
	f := load(t, dependencySource)

	t.Run("type reference without decorators", func(t *testing.T) {
		deps, err := f.deps(t, "Plain")
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, models.ResolvedToken, deps[0].Resolved)
		assert.Equal(t, "Engine", jsast.Render(deps[0].Token))
		assert.Equal(t, "engine", deps[0].ParameterName)
		assert.False(t, deps[0].Optional || deps[0].Self || deps[0].SkipSelf || deps[0].Host)
	})

	t.Run("flags from trusted decorators only", func(t *testing.T) {
		deps, err := f.deps(t, "Flags")
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.True(t, deps[0].Optional)
		assert.True(t, deps[0].Self)
		assert.True(t, deps[0].SkipSelf)
		assert.True(t, deps[0].Host)
	})

	t.Run("special reference kinds", func(t *testing.T) {
		deps, err := f.deps(t, "Special")
		require.NoError(t, err)
		require.Len(t, deps, 6)
		assert.Equal(t, models.ResolvedElementRef, deps[0].Resolved)
		assert.Equal(t, models.ResolvedInjector, deps[1].Resolved)
		assert.Equal(t, models.ResolvedTemplateRef, deps[2].Resolved)
		assert.Equal(t, models.ResolvedViewContainerRef, deps[3].Resolved)

		assert.Equal(t, models.ResolvedElementRef, deps[4].Resolved, "Inject argument resolving to ElementRef")
		assert.Equal(t, "ElementRef", jsast.Render(deps[4].Token))

		assert.Equal(t, models.ResolvedToken, deps[5].Resolved, "only bare identifiers are special")
	})

	t.Run("attribute", func(t *testing.T) {
		deps, err := f.deps(t, "Attr")
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, models.ResolvedAttribute, deps[0].Resolved)
		assert.Equal(t, "'title'", jsast.Render(deps[0].Token))
	})

	argumentCount := []struct {
		class     string
		decorator string
		actual    int
	}{
		{"AttrNone", "Attribute", 0},
		{"AttrTwo", "Attribute", 2},
		{"InjectTwo", "Inject", 2},
	}
	for _, tt := range argumentCount {
		t.Run("argument count "+tt.class, func(t *testing.T) {
			_, err := f.deps(t, tt.class)
			var countErr *errors.ArgumentCountError
			require.True(t, stderrors.As(err, &countErr), "got %v", err)
			assert.Equal(t, tt.decorator, countErr.Decorator)
			assert.Equal(t, tt.actual, countErr.Actual)
			assert.Equal(t, tt.class, countErr.ClassName)
		})
	}

	t.Run("unrecognized trusted decorator", func(t *testing.T) {
		_, err := f.deps(t, "Unknown")
		var unrecognized *errors.UnrecognizedParameterAnnotationError
		require.True(t, stderrors.As(err, &unrecognized))
		assert.Equal(t, "Unknown", unrecognized.ClassName)
		assert.Equal(t, "wheel", unrecognized.Parameter)
		assert.Equal(t, "Component", unrecognized.Decorator)
	})

	t.Run("no token and no decorators", func(t *testing.T) {
		_, err := f.deps(t, "NoToken")
		var unresolved *errors.UnresolvedDependencyTokenError
		require.True(t, stderrors.As(err, &unresolved))
		assert.Equal(t, "mystery", unresolved.Parameter)
		assert.Equal(t, []string{}, unresolved.Decorators)
	})

	t.Run("no token lists every decorator", func(t *testing.T) {
		_, err := f.deps(t, "NoTokenWithDecorators")
		var unresolved *errors.UnresolvedDependencyTokenError
		require.True(t, stderrors.As(err, &unresolved))
		assert.Equal(t, []string{"@angular/core#Optional", "other-lib#Optional"}, unresolved.Decorators)
	})

	t.Run("declaration order", func(t *testing.T) {
		deps, err := f.deps(t, "Ordered")
		require.NoError(t, err)
		require.Len(t, deps, 2)
		assert.Equal(t, "first", deps[0].ParameterName)
		assert.Equal(t, "second", deps[1].ParameterName)
		assert.Equal(t, "'TOKEN'", jsast.Render(deps[1].Token))
	})

	t.Run("no constructor", func(t *testing.T) {
		deps, err := f.deps(t, "NoConstructor")
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

func TestConstructorDependenciesFromTypeScript(t *testing.T) {
	prog, err := program.FromSources("/pkg/widget.ts", map[string]string{
		"/pkg/widget.ts": `
import { Inject, Optional, ElementRef } from '@angular/core';
import { CONFIG, Config } from './config';
export class Widget {
    constructor(private el: ElementRef, @Optional() @Inject(CONFIG) config: Config, name: string) {}
}
`,
	})
	require.NoError(t, err)
	host := reflection.NewHost(prog)
	classes := host.ScanClasses(prog.Entry())
	require.Len(t, classes, 1)

	_, err = NewDependencyResolver(host, core).ConstructorDependencies(classes[0])
	var unresolved *errors.UnresolvedDependencyTokenError
	require.True(t, stderrors.As(err, &unresolved), "primitive-typed parameters have no token")
	assert.Equal(t, "name", unresolved.Parameter)
}

const injectableSource = `
import { Injectable, Optional, Self, Inject } from '@angular/core';
import { Engine, ENGINE, makeEngine, EngineImpl } from './engine';

export class Basic {
    constructor(engine) {}
}
Basic.decorators = [{ type: Injectable }];
Basic.ctorParameters = () => [{ type: Engine }];

export class Root {}
Root.decorators = [{ type: Injectable, args: [{ providedIn: 'root' }] }];

export class Value {}
Value.decorators = [{ type: Injectable, args: [{ providedIn: 'root', useValue: 42 }] }];

export class Existing {}
Existing.decorators = [{ type: Injectable, args: [{ useExisting: Engine }] }];

export class Factory {}
Factory.decorators = [{ type: Injectable, args: [{ useFactory: makeEngine, deps: [ENGINE, [Optional, Self, Engine], [new Inject(ENGINE)]] }] }];

export class FactoryNoDeps {}
FactoryNoDeps.decorators = [{ type: Injectable, args: [{ useFactory: makeEngine }] }];

export class UseClass {
    constructor(engine) {}
}
UseClass.decorators = [{ type: Injectable, args: [{ useClass: EngineImpl }] }];
UseClass.ctorParameters = () => [{ type: Engine }];

export class BadDeps {}
BadDeps.decorators = [{ type: Injectable, args: [{ useFactory: makeEngine, deps: [[Optional]] }] }];

export class TooMany {}
TooMany.decorators = [{ type: Injectable, args: [{}, {}] }];

export class NotObject {}
NotObject.decorators = [{ type: Injectable, args: ['root'] }];

export class ArgsNotArray {}
ArgsNotArray.decorators = [{ type: Injectable, args: { providedIn: 'root' } }];
`

func TestInjectableExtractor(t *testing.T) {
	f := load(t, injectableSource)

	t.Run("no arguments", func(t *testing.T) {
		meta, err := f.injectable(t, "Basic")
		require.NoError(t, err)
		assert.Equal(t, "Basic", meta.Name)
		assert.Nil(t, meta.ProvidedIn)
		require.Len(t, meta.Deps, 1)
		assert.Equal(t, "Engine", jsast.Render(meta.Deps[0].Token))
	})

	t.Run("providedIn", func(t *testing.T) {
		meta, err := f.injectable(t, "Root")
		require.NoError(t, err)
		assert.Equal(t, "'root'", jsast.Render(meta.ProvidedIn))
		assert.NotNil(t, meta.Deps)
		assert.Empty(t, meta.Deps)
	})

	t.Run("useValue", func(t *testing.T) {
		meta, err := f.injectable(t, "Value")
		require.NoError(t, err)
		assert.Equal(t, "42", jsast.Render(meta.UseValue))
		assert.Nil(t, meta.Deps)
	})

	t.Run("useExisting", func(t *testing.T) {
		meta, err := f.injectable(t, "Existing")
		require.NoError(t, err)
		assert.Equal(t, "Engine", jsast.Render(meta.UseExisting))
	})

	t.Run("useFactory with deps", func(t *testing.T) {
		meta, err := f.injectable(t, "Factory")
		require.NoError(t, err)
		assert.Equal(t, "makeEngine", jsast.Render(meta.UseFactory))
		require.Len(t, meta.Deps, 3)

		assert.Equal(t, "ENGINE", jsast.Render(meta.Deps[0].Token))

		assert.Equal(t, "Engine", jsast.Render(meta.Deps[1].Token))
		assert.True(t, meta.Deps[1].Optional)
		assert.True(t, meta.Deps[1].Self)

		assert.Equal(t, "ENGINE", jsast.Render(meta.Deps[2].Token))
		assert.Equal(t, "deps[2]", meta.Deps[2].ParameterName)
	})

	t.Run("useFactory without deps", func(t *testing.T) {
		meta, err := f.injectable(t, "FactoryNoDeps")
		require.NoError(t, err)
		assert.NotNil(t, meta.Deps)
		assert.Empty(t, meta.Deps)
	})

	t.Run("useClass takes constructor deps", func(t *testing.T) {
		meta, err := f.injectable(t, "UseClass")
		require.NoError(t, err)
		assert.Equal(t, "EngineImpl", jsast.Render(meta.UseClass))
		require.Len(t, meta.Deps, 1)
	})

	t.Run("deps entry without token", func(t *testing.T) {
		_, err := f.injectable(t, "BadDeps")
		var unresolved *errors.UnresolvedDependencyTokenError
		require.True(t, stderrors.As(err, &unresolved))
		assert.Equal(t, "deps[0]", unresolved.Parameter)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := f.injectable(t, "TooMany")
		var countErr *errors.ArgumentCountError
		require.True(t, stderrors.As(err, &countErr))
		assert.Equal(t, "Injectable", countErr.Decorator)
		assert.Equal(t, 2, countErr.Actual)
	})

	t.Run("argument is not an object", func(t *testing.T) {
		_, err := f.injectable(t, "NotObject")
		var structural *errors.StructuralParseError
		require.True(t, stderrors.As(err, &structural))
		assert.Equal(t, "NotObject", structural.ClassName)
	})

	t.Run("args is not an array", func(t *testing.T) {
		_, err := f.injectable(t, "ArgsNotArray")
		var structural *errors.StructuralParseError
		require.True(t, stderrors.As(err, &structural))
		assert.Contains(t, structural.Error(), "expected array literal for args in class ArgsNotArray")
	})
}

func TestErrorsNameDeclaredClass(t *testing.T) {
	f := load(t, `
import { Injectable } from '@angular/core';
class Broken {
    constructor(mystery) {}
}
Broken.decorators = [{ type: Injectable }];
Broken.ctorParameters = () => [{ type: undefined }];
class Engine {}
Engine.decorators = [{ type: Injectable, args: [{}, {}] }];
export { Engine as Motor };
export default Broken;
`)

	_, err := f.deps(t, "default")
	var unresolved *errors.UnresolvedDependencyTokenError
	require.True(t, stderrors.As(err, &unresolved))
	assert.Equal(t, "Broken", unresolved.ClassName)

	_, err = f.injectable(t, "Motor")
	var countErr *errors.ArgumentCountError
	require.True(t, stderrors.As(err, &countErr))
	assert.Equal(t, "Engine", countErr.ClassName)
}

func TestInjectableNames(t *testing.T) {
	f := load(t, `
import { Injectable } from '@angular/core';
class Engine {}
Engine.decorators = [{ type: Injectable }];
export { Engine as Motor };
`)

	meta, err := f.injectable(t, "Motor")
	require.NoError(t, err)
	assert.Equal(t, "Engine", meta.Name)
	assert.Equal(t, "Motor", meta.ExportedName)
}

func TestRegisterDefaults(t *testing.T) {
	registry := annotations.NewRegistry()
	require.NoError(t, RegisterDefaults(registry, core))
	assert.Equal(t, []annotations.Category{annotations.InjectableCategory}, registry.Categories())
}
