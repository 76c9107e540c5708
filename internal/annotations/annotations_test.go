package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/ngreflect/internal/program"
	"github.com/toyz/ngreflect/internal/reflection"
)

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range AllCategories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("services")
	assert.Error(t, err)
	assert.Equal(t, "Injectable", InjectableCategory.AnnotationName())
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input    string
		expected Target
		wantErr  bool
	}{
		{"@angular/core#Injectable", Target{"@angular/core", "Injectable"}, false},
		{"my-lib#Service", Target{"my-lib", "Service"}, false},
		{"@scope/pkg/sub/path#$Token_1", Target{"@scope/pkg/sub/path", "$Token_1"}, false},
		{"./local/decorators#Component", Target{"./local/decorators", "Component"}, false},
		{" @angular/core # Pipe ", Target{"@angular/core", "Pipe"}, false},
		{"@angular/core", Target{}, true},
		{"#Injectable", Target{}, true},
		{"@angular/core#1bad", Target{}, true},
		{"@angular/core#a#b", Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			target, err := ParseTarget(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, target)
		})
	}
}

func TestDefaultTargets(t *testing.T) {
	targets := DefaultTargets(DefaultTrustedModule)
	require.Len(t, targets, 5)
	assert.Equal(t, "@angular/core#NgModule", targets[NgModuleCategory].String())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	noop := ExtractorFunc(func(*reflection.Host, *DecoratedClass) (interface{}, error) { return nil, nil })

	require.NoError(t, r.Register(PipeCategory, noop))
	require.NoError(t, r.Register(InjectableCategory, noop))
	assert.Error(t, r.Register(PipeCategory, noop), "duplicate registration")
	assert.Error(t, r.Register(ComponentCategory, nil))

	assert.Equal(t, []Category{InjectableCategory, PipeCategory}, r.Categories())

	_, ok := r.Get(DirectiveCategory)
	assert.False(t, ok)
}

func TestMatcherChecksProvenanceNotNames(t *testing.T) {
	prog, err := program.FromSources("/pkg/index.js", map[string]string{
		"/pkg/index.js": `
import { Injectable, Component as Cmp } from '@angular/core';
import * as i0 from '@angular/core';
import { Injectable as Fake } from 'not-angular';
class Injectable$1 {}
export class Car {}
Car.decorators = [{ type: Injectable }];
export class Widget {}
Widget.decorators = [{ type: Injectable$1 }, { type: Fake }];
export class Both {}
Both.decorators = [{ type: Cmp, args: [{ selector: 'first' }] }, { type: i0.Component, args: [{ selector: 'second' }] }];
export class Plain {}
`,
	})
	require.NoError(t, err)

	host := reflection.NewHost(prog)
	matcher := NewMatcher(host)
	targets := DefaultTargets(DefaultTrustedModule)

	classes := map[string]*reflection.ClassSymbol{}
	for _, c := range host.ScanClasses(prog.Entry()) {
		classes[c.Name] = c
	}

	match := func(name string, category Category) *DecoratedClass {
		class := classes[name]
		require.NotNil(t, class)
		return matcher.Match(class, host.Locate(class), category, targets[category])
	}

	car := match("Car", InjectableCategory)
	require.NotNil(t, car)
	assert.Equal(t, "Car", car.Name())
	assert.Equal(t, InjectableCategory, car.Category)

	assert.Nil(t, match("Car", ComponentCategory))
	assert.Nil(t, match("Widget", InjectableCategory), "lookalikes never match")
	assert.Nil(t, match("Plain", InjectableCategory))

	both := match("Both", ComponentCategory)
	require.NotNil(t, both)
	assert.Equal(t, 0, both.Record.Index, "first match in array order wins")
}

func TestMatcherLocalLookalikeNamedIdentically(t *testing.T) {
	prog, err := program.FromSources("/pkg/index.js", map[string]string{
		"/pkg/index.js": `
class Injectable {}
export class Widget {}
Widget.decorators = [{ type: Injectable }];
`,
	})
	require.NoError(t, err)

	host := reflection.NewHost(prog)
	classes := host.ScanClasses(prog.Entry())
	require.Len(t, classes, 1)

	target := DefaultTargets(DefaultTrustedModule)[InjectableCategory]
	assert.Nil(t, NewMatcher(host).Match(classes[0], host.Locate(classes[0]), InjectableCategory, target))
}
