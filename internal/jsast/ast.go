// Package jsast is a small, read-only model of the parts of a compiled
// JavaScript (or TypeScript) module that annotation reflection needs:
// imports, exports, class declarations, constructor parameters and top-level
// static property assignments. Trees are produced by Parse and never mutated
// afterwards.
package jsast

import "fmt"

// Position is a 1-based line/column location in a source file
type Position struct {
	Line   int
	Column int
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is any expression node.
type Expr interface {
	Pos() Position
	exprNode()
}

// Identifier is a bare name reference such as `Injectable`.
type Identifier struct {
	Name string
	Loc  Position
}

// StringLiteral is a quoted string; Value excludes the quotes.
type StringLiteral struct {
	Value string
	Loc   Position
}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	Elements []Expr
	Loc      Position
}

// ObjectLiteral is `{ key: value, ... }`.
type ObjectLiteral struct {
	Properties []*Property
	Loc        Position
}

// Property is one key/value pair of an object literal. Shorthand properties
// (`{ Engine }`) carry an Identifier value with the same name.
type Property struct {
	Key       string
	Value     Expr
	Shorthand bool
	Loc       Position
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Loc    Position
}

// NewExpr is `new Callee(args...)`.
type NewExpr struct {
	Callee Expr
	Args   []Expr
	Loc    Position
}

// MemberExpr is `object.property`.
type MemberExpr struct {
	Object   Expr
	Property string
	Loc      Position
}

// FunctionExpr is an arrow function or function expression. Result is the
// expression body of an arrow function, or the argument of the first return
// statement of a block body; nil when neither exists.
type FunctionExpr struct {
	Result Expr
	Arrow  bool
	Loc    Position
}

// RawExpr is any expression the model does not break down further. Text is the
// exact source text.
type RawExpr struct {
	Text string
	Loc  Position
}

func (e *Identifier) Pos() Position    { return e.Loc }
func (e *StringLiteral) Pos() Position { return e.Loc }
func (e *ArrayLiteral) Pos() Position  { return e.Loc }
func (e *ObjectLiteral) Pos() Position { return e.Loc }
func (e *CallExpr) Pos() Position      { return e.Loc }
func (e *NewExpr) Pos() Position       { return e.Loc }
func (e *MemberExpr) Pos() Position    { return e.Loc }
func (e *FunctionExpr) Pos() Position  { return e.Loc }
func (e *RawExpr) Pos() Position       { return e.Loc }

func (*Identifier) exprNode()    {}
func (*StringLiteral) exprNode() {}
func (*ArrayLiteral) exprNode()  {}
func (*ObjectLiteral) exprNode() {}
func (*CallExpr) exprNode()      {}
func (*NewExpr) exprNode()       {}
func (*MemberExpr) exprNode()    {}
func (*FunctionExpr) exprNode()  {}
func (*RawExpr) exprNode()       {}

// Get returns the value of the first property named key.
func (o *ObjectLiteral) Get(key string) (Expr, bool) {
	for _, p := range o.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// IsNullish reports whether e is the literal null, undefined or `void 0`.
func IsNullish(e Expr) bool {
	switch v := e.(type) {
	case nil:
		return true
	case *Identifier:
		return v.Name == "undefined"
	case *RawExpr:
		return v.Text == "null" || v.Text == "undefined" || v.Text == "void 0"
	}
	return false
}

// SourceFile is one parsed module.
type SourceFile struct {
	Path         string
	Imports      []*ImportDecl
	Exports      []*ExportDecl
	Classes      []*ClassDecl
	Variables    []*VariableDecl
	Functions    []*FunctionDecl
	Assignments  []*StaticAssignment
	SyntaxErrors bool
}

// ImportDecl is one `import ... from 'specifier'` statement.
type ImportDecl struct {
	Specifier string
	Default   string // local name of the default import, if any
	Namespace string // local name of `* as ns`, if any
	Named     []ImportSpecifier
	Loc       Position
}

// ImportSpecifier is `Imported as Local` inside braces.
type ImportSpecifier struct {
	Imported string
	Local    string
}

// ExportDecl is one exported name. Re-exports set Source; `export * from` sets
// Star and leaves the names empty.
type ExportDecl struct {
	Exported string
	Local    string
	Source   string
	Star     bool
	Loc      Position
}

// ClassDecl is a class declaration or a class expression bound to a variable.
type ClassDecl struct {
	Name        string
	Constructor *Constructor
	Loc         Position
}

// Constructor holds the parameters of a class constructor.
type Constructor struct {
	Params []*Parameter
	Loc    Position
}

// Parameter is one constructor parameter. Type is the value expression of the
// TypeScript type annotation, nil when there is none or the type has no value
// meaning (primitives, unions, literals).
type Parameter struct {
	Name       string
	Type       Expr
	Decorators []*Decorator
	Loc        Position
}

// Decorator is a native `@Expr` or `@Expr(args)` parameter decorator.
type Decorator struct {
	Expr Expr
	Args []Expr
	Loc  Position
}

// VariableDecl is one declarator of a var/let/const statement.
type VariableDecl struct {
	Name  string
	Init  Expr
	Class *ClassDecl // set when Init is a class expression
	Loc   Position
}

// FunctionDecl is a named function declaration.
type FunctionDecl struct {
	Name string
	Loc  Position
}

// StaticAssignment is a top-level `Target.Property = Value` statement, or a
// `static Property = Value` class field recorded against its class.
type StaticAssignment struct {
	Target   string
	Property string
	Value    Expr
	Loc      Position
}

// Class returns the class declared (or bound by a variable) under name.
func (f *SourceFile) Class(name string) (*ClassDecl, bool) {
	for _, c := range f.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Assignment returns the first static assignment to target.property.
func (f *SourceFile) Assignment(target, property string) (*StaticAssignment, bool) {
	for _, a := range f.Assignments {
		if a.Target == target && a.Property == property {
			return a, true
		}
	}
	return nil, false
}
