package jsast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *SourceFile {
	t.Helper()
	file, err := NewParser().Parse("module.js", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

func TestParseImports(t *testing.T) {
	file := parse(t, `
import { Injectable, Inject as In } from '@angular/core';
import * as i0 from '@angular/core';
import Default, { Other } from './other';
import './side-effect';
`)

	require.Len(t, file.Imports, 4)

	core := file.Imports[0]
	assert.Equal(t, "@angular/core", core.Specifier)
	assert.Equal(t, []ImportSpecifier{
		{Imported: "Injectable", Local: "Injectable"},
		{Imported: "Inject", Local: "In"},
	}, core.Named)

	assert.Equal(t, "i0", file.Imports[1].Namespace)

	other := file.Imports[2]
	assert.Equal(t, "./other", other.Specifier)
	assert.Equal(t, "Default", other.Default)
	assert.Equal(t, []ImportSpecifier{{Imported: "Other", Local: "Other"}}, other.Named)

	assert.Equal(t, "./side-effect", file.Imports[3].Specifier)
	assert.Empty(t, file.Imports[3].Named)
}

func TestParseExports(t *testing.T) {
	file := parse(t, `
class Car {}
class Engine {}
export { Car, Engine as Motor };
export { Wheel } from './wheel';
export * from './parts';
export class Door {}
export const VERSION = '1';
export default Car;
`)

	var exported []string
	for _, e := range file.Exports {
		if e.Star {
			exported = append(exported, "*"+e.Source)
			continue
		}
		exported = append(exported, e.Exported+"="+e.Local+e.Source)
	}

	assert.Equal(t, []string{
		"Car=Car",
		"Motor=Engine",
		"Wheel=Wheel./wheel",
		"*./parts",
		"Door=Door",
		"VERSION=VERSION",
		"default=Car",
	}, exported)
}

func TestParseClassesAndAssignments(t *testing.T) {
	file := parse(t, `
import { Injectable } from '@angular/core';
export class Car {
    constructor(engine, tires) {}
}
Car.decorators = [
    { type: Injectable, args: [{ providedIn: 'root' }] },
];
Car.ctorParameters = () => [
    { type: Engine },
    { type: undefined, decorators: [{ type: Inject, args: [TIRES] }] },
];
let Bus = class Bus {
    static decorators = [{ type: Injectable }];
};
`)

	car, ok := file.Class("Car")
	require.True(t, ok)
	require.NotNil(t, car.Constructor)
	require.Len(t, car.Constructor.Params, 2)
	assert.Equal(t, "engine", car.Constructor.Params[0].Name)
	assert.Equal(t, "tires", car.Constructor.Params[1].Name)
	assert.Nil(t, car.Constructor.Params[0].Type)

	decorators, ok := file.Assignment("Car", "decorators")
	require.True(t, ok)
	arr, ok := decorators.Value.(*ArrayLiteral)
	require.True(t, ok, "decorators should be an array literal")
	require.Len(t, arr.Elements, 1)

	record, ok := arr.Elements[0].(*ObjectLiteral)
	require.True(t, ok)
	typ, ok := record.Get("type")
	require.True(t, ok)
	assert.Equal(t, "Injectable", typ.(*Identifier).Name)
	args, ok := record.Get("args")
	require.True(t, ok)
	assert.Equal(t, "[{ providedIn: 'root' }]", Render(args))

	ctorParams, ok := file.Assignment("Car", "ctorParameters")
	require.True(t, ok)
	fn, ok := ctorParams.Value.(*FunctionExpr)
	require.True(t, ok)
	assert.True(t, fn.Arrow)
	assert.Equal(t, "[{ type: Engine }, { type: undefined, decorators: [{ type: Inject, args: [TIRES] }] }]", Render(fn.Result))

	bus, ok := file.Class("Bus")
	require.True(t, ok)
	assert.Nil(t, bus.Constructor)
	busDecorators, ok := file.Assignment("Bus", "decorators")
	require.True(t, ok)
	assert.Equal(t, "[{ type: Injectable }]", Render(busDecorators.Value))
}

func TestParseTypeScriptConstructor(t *testing.T) {
	file := parse(t, `
import { Inject, Optional, ElementRef } from '@angular/core';
import * as i1 from './tokens';
export class Widget {
    constructor(private el: ElementRef, @Optional() @Inject(i1.CONFIG) config: Config<string>, name: string) {}
}
`)

	widget, ok := file.Class("Widget")
	require.True(t, ok)
	require.NotNil(t, widget.Constructor)
	params := widget.Constructor.Params
	require.Len(t, params, 3)

	assert.Equal(t, "el", params[0].Name)
	assert.Equal(t, "ElementRef", Render(params[0].Type))
	assert.Empty(t, params[0].Decorators)

	assert.Equal(t, "config", params[1].Name)
	assert.Equal(t, "Config", Render(params[1].Type))
	require.Len(t, params[1].Decorators, 2)
	assert.Equal(t, "Optional", Render(params[1].Decorators[0].Expr))
	assert.Empty(t, params[1].Decorators[0].Args)
	assert.Equal(t, "Inject", Render(params[1].Decorators[1].Expr))
	require.Len(t, params[1].Decorators[1].Args, 1)
	assert.Equal(t, "i1.CONFIG", Render(params[1].Decorators[1].Args[0]))

	assert.Equal(t, "name", params[2].Name)
	assert.Nil(t, params[2].Type, "primitive types have no value expression")
}

func TestParseSequenceAssignments(t *testing.T) {
	file := parse(t, `
class A {}
A.decorators = [{ type: X }], A.propDecorators = {};
`)

	_, ok := file.Assignment("A", "decorators")
	assert.True(t, ok)
	_, ok = file.Assignment("A", "propDecorators")
	assert.True(t, ok)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"identifier", &Identifier{Name: "Engine"}, "Engine"},
		{"string", &StringLiteral{Value: "it's"}, `'it\'s'`},
		{"member", &MemberExpr{Object: &Identifier{Name: "i0"}, Property: "Injector"}, "i0.Injector"},
		{"call", &CallExpr{Callee: &Identifier{Name: "f"}, Args: []Expr{&Identifier{Name: "a"}, &StringLiteral{Value: "b"}}}, "f(a, 'b')"},
		{"new", &NewExpr{Callee: &Identifier{Name: "InjectionToken"}, Args: []Expr{&StringLiteral{Value: "t"}}}, "new InjectionToken('t')"},
		{"empty object", &ObjectLiteral{}, "{}"},
		{"quoted key", &ObjectLiteral{Properties: []*Property{{Key: "a-b", Value: &RawExpr{Text: "1"}}}}, "{ 'a-b': 1 }"},
		{"arrow returning object", &FunctionExpr{Arrow: true, Result: &ObjectLiteral{}}, "() => ({})"},
		{"nil", nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.expr))
		})
	}
}

func TestIsNullish(t *testing.T) {
	assert.True(t, IsNullish(nil))
	assert.True(t, IsNullish(&Identifier{Name: "undefined"}))
	assert.True(t, IsNullish(&RawExpr{Text: "null"}))
	assert.True(t, IsNullish(&RawExpr{Text: "void 0"}))
	assert.False(t, IsNullish(&Identifier{Name: "Engine"}))
}
