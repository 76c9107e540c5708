package jsast

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Parser converts JavaScript and TypeScript sources into SourceFiles. Plain
// JavaScript is parsed with the TypeScript grammar, which accepts it.
type Parser struct {
	language *sitter.Language
}

// NewParser creates a parser backed by tree-sitter-typescript.
func NewParser() *Parser {
	return &Parser{
		language: sitter.NewLanguage(typescript.LanguageTypescript()),
	}
}

// Parse parses source and returns its module-level structure. A tree with
// syntax errors still yields a SourceFile; SyntaxErrors is set so callers can
// warn about it.
func (p *Parser) Parse(path string, source []byte) (*SourceFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set parser language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &builder{
		source: source,
		file:   &SourceFile{Path: path, SyntaxErrors: root.HasError()},
	}
	for _, stmt := range namedChildren(root) {
		b.statement(stmt)
	}
	return b.file, nil
}

// builder copies what it needs out of the tree-sitter tree so the tree can be
// closed as soon as parsing finishes.
type builder struct {
	source []byte
	file   *SourceFile
}

func (b *builder) statement(n *sitter.Node) {
	switch n.Kind() {
	case "import_statement":
		b.importDecl(n)
	case "export_statement":
		b.exportDecl(n)
	case "class_declaration", "abstract_class_declaration":
		b.classDecl(n, "")
	case "lexical_declaration", "variable_declaration":
		b.variables(n)
	case "function_declaration", "generator_function_declaration":
		b.function(n)
	case "expression_statement":
		for _, e := range namedChildren(n) {
			b.assignment(e)
		}
	}
}

func (b *builder) importDecl(n *sitter.Node) {
	if hasChildKind(n, "type") {
		// `import type { X }` binds no values
		return
	}

	decl := &ImportDecl{Loc: b.pos(n)}
	if src := n.ChildByFieldName("source"); src != nil {
		decl.Specifier = b.stringValue(src)
	} else if src := firstChildOfKind(n, "string"); src != nil {
		decl.Specifier = b.stringValue(src)
	}
	if decl.Specifier == "" {
		return
	}

	for _, clause := range namedChildren(n) {
		if clause.Kind() != "import_clause" {
			continue
		}
		for _, c := range namedChildren(clause) {
			switch c.Kind() {
			case "identifier":
				decl.Default = b.text(c)
			case "namespace_import":
				if id := firstChildOfKind(c, "identifier"); id != nil {
					decl.Namespace = b.text(id)
				}
			case "named_imports":
				for _, spec := range namedChildren(c) {
					if spec.Kind() != "import_specifier" {
						continue
					}
					imported := b.nameOf(spec.ChildByFieldName("name"))
					local := imported
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = b.text(alias)
					}
					decl.Named = append(decl.Named, ImportSpecifier{Imported: imported, Local: local})
				}
			}
		}
	}

	b.file.Imports = append(b.file.Imports, decl)
}

func (b *builder) exportDecl(n *sitter.Node) {
	loc := b.pos(n)
	isDefault := hasChildKind(n, "default")

	var source string
	if src := n.ChildByFieldName("source"); src != nil {
		source = b.stringValue(src)
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		var names []string
		switch decl.Kind() {
		case "class_declaration", "abstract_class_declaration":
			names = append(names, b.classDecl(decl, ""))
		case "lexical_declaration", "variable_declaration":
			names = b.variables(decl)
		case "function_declaration", "generator_function_declaration":
			names = append(names, b.function(decl))
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			exported := name
			if isDefault {
				exported = "default"
			}
			b.file.Exports = append(b.file.Exports, &ExportDecl{Exported: exported, Local: name, Loc: loc})
		}
		return
	}

	if isDefault {
		value := n.ChildByFieldName("value")
		if value == nil {
			return
		}
		switch value.Kind() {
		case "identifier":
			b.file.Exports = append(b.file.Exports, &ExportDecl{Exported: "default", Local: b.text(value), Loc: loc})
		case "class":
			name := b.classDecl(value, "default")
			b.file.Exports = append(b.file.Exports, &ExportDecl{Exported: "default", Local: name, Loc: loc})
		}
		return
	}

	clause := firstChildOfKind(n, "export_clause")
	if clause == nil {
		if hasChildKind(n, "*") && firstChildOfKind(n, "namespace_export") == nil && source != "" {
			b.file.Exports = append(b.file.Exports, &ExportDecl{Star: true, Source: source, Loc: loc})
		}
		return
	}

	for _, spec := range namedChildren(clause) {
		if spec.Kind() != "export_specifier" {
			continue
		}
		local := b.nameOf(spec.ChildByFieldName("name"))
		exported := local
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = b.nameOf(alias)
		}
		b.file.Exports = append(b.file.Exports, &ExportDecl{
			Exported: exported,
			Local:    local,
			Source:   source,
			Loc:      b.pos(spec),
		})
	}
}

// classDecl records a class declaration or expression and returns its name.
// fallback names anonymous class expressions.
func (b *builder) classDecl(n *sitter.Node, fallback string) string {
	name := fallback
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = b.text(nameNode)
	}
	cls := &ClassDecl{Name: name, Loc: b.pos(n)}
	b.classBody(cls, n.ChildByFieldName("body"))
	b.file.Classes = append(b.file.Classes, cls)
	return name
}

func (b *builder) classBody(cls *ClassDecl, body *sitter.Node) {
	if body == nil {
		return
	}
	for _, member := range namedChildren(body) {
		switch member.Kind() {
		case "method_definition":
			if b.text(member.ChildByFieldName("name")) != "constructor" {
				continue
			}
			cls.Constructor = &Constructor{
				Params: b.parameters(member.ChildByFieldName("parameters")),
				Loc:    b.pos(member),
			}
		case "public_field_definition", "field_definition":
			if !hasChildKind(member, "static") {
				continue
			}
			nameNode := member.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = member.ChildByFieldName("property")
			}
			value := member.ChildByFieldName("value")
			if nameNode == nil || value == nil {
				continue
			}
			b.file.Assignments = append(b.file.Assignments, &StaticAssignment{
				Target:   cls.Name,
				Property: b.text(nameNode),
				Value:    b.expr(value),
				Loc:      b.pos(member),
			})
		}
	}
}

func (b *builder) parameters(n *sitter.Node) []*Parameter {
	if n == nil {
		return nil
	}
	var params []*Parameter
	for _, c := range namedChildren(n) {
		param := &Parameter{Loc: b.pos(c)}
		switch c.Kind() {
		case "required_parameter", "optional_parameter":
			param.Name = b.patternName(c.ChildByFieldName("pattern"))
			param.Type = b.typeExpr(c.ChildByFieldName("type"))
			for _, d := range namedChildren(c) {
				if d.Kind() == "decorator" {
					param.Decorators = append(param.Decorators, b.decorator(d))
				}
			}
		case "assignment_pattern":
			param.Name = b.patternName(c.ChildByFieldName("left"))
		case "decorator":
			continue
		default:
			param.Name = b.patternName(c)
		}
		params = append(params, param)
	}
	return params
}

func (b *builder) patternName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "rest_pattern", "assignment_pattern":
		if children := namedChildren(n); len(children) > 0 {
			return b.patternName(children[0])
		}
	}
	return b.text(n)
}

func (b *builder) decorator(n *sitter.Node) *Decorator {
	dec := &Decorator{Loc: b.pos(n)}
	children := namedChildren(n)
	if len(children) == 0 {
		return dec
	}
	target := children[0]
	if target.Kind() == "call_expression" {
		dec.Expr = b.expr(target.ChildByFieldName("function"))
		dec.Args = b.arguments(target.ChildByFieldName("arguments"))
		return dec
	}
	dec.Expr = b.expr(target)
	return dec
}

// typeExpr converts a type annotation into the value expression it names.
func (b *builder) typeExpr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "type_annotation":
		if children := namedChildren(n); len(children) > 0 {
			return b.typeExpr(children[0])
		}
	case "type_identifier", "identifier":
		return &Identifier{Name: b.text(n), Loc: b.pos(n)}
	case "nested_type_identifier":
		parts := strings.Split(b.text(n), ".")
		var e Expr = &Identifier{Name: strings.TrimSpace(parts[0]), Loc: b.pos(n)}
		for _, part := range parts[1:] {
			e = &MemberExpr{Object: e, Property: strings.TrimSpace(part), Loc: b.pos(n)}
		}
		return e
	case "generic_type":
		return b.typeExpr(n.ChildByFieldName("name"))
	}
	return nil
}

func (b *builder) variables(n *sitter.Node) []string {
	var names []string
	for _, d := range namedChildren(n) {
		if d.Kind() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		v := &VariableDecl{Name: b.text(nameNode), Loc: b.pos(d)}
		if value := unwrapParens(d.ChildByFieldName("value")); value != nil {
			if value.Kind() == "class" {
				cls := &ClassDecl{Name: v.Name, Loc: b.pos(value)}
				b.classBody(cls, value.ChildByFieldName("body"))
				b.file.Classes = append(b.file.Classes, cls)
				v.Class = cls
			} else {
				v.Init = b.expr(value)
			}
		}
		b.file.Variables = append(b.file.Variables, v)
		names = append(names, v.Name)
	}
	return names
}

func (b *builder) function(n *sitter.Node) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	fn := &FunctionDecl{Name: b.text(nameNode), Loc: b.pos(n)}
	b.file.Functions = append(b.file.Functions, fn)
	return fn.Name
}

// assignment records `Target.prop = value`, including each assignment of a
// comma sequence.
func (b *builder) assignment(n *sitter.Node) {
	switch n.Kind() {
	case "sequence_expression":
		for _, c := range namedChildren(n) {
			b.assignment(c)
		}
	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "member_expression" {
			return
		}
		object := left.ChildByFieldName("object")
		property := left.ChildByFieldName("property")
		if object == nil || property == nil || object.Kind() != "identifier" {
			return
		}
		b.file.Assignments = append(b.file.Assignments, &StaticAssignment{
			Target:   b.text(object),
			Property: b.text(property),
			Value:    b.expr(right),
			Loc:      b.pos(n),
		})
	}
}

func (b *builder) expr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	loc := b.pos(n)
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier", "property_identifier", "type_identifier":
		return &Identifier{Name: b.text(n), Loc: loc}
	case "undefined":
		return &Identifier{Name: "undefined", Loc: loc}
	case "string":
		return &StringLiteral{Value: b.stringValue(n), Loc: loc}
	case "array":
		arr := &ArrayLiteral{Elements: []Expr{}, Loc: loc}
		for _, c := range namedChildren(n) {
			arr.Elements = append(arr.Elements, b.expr(c))
		}
		return arr
	case "object":
		return b.object(n)
	case "call_expression":
		args := n.ChildByFieldName("arguments")
		if args == nil || args.Kind() != "arguments" {
			break
		}
		return &CallExpr{Callee: b.expr(n.ChildByFieldName("function")), Args: b.arguments(args), Loc: loc}
	case "new_expression":
		return &NewExpr{
			Callee: b.expr(n.ChildByFieldName("constructor")),
			Args:   b.arguments(n.ChildByFieldName("arguments")),
			Loc:    loc,
		}
	case "member_expression":
		return &MemberExpr{
			Object:   b.expr(n.ChildByFieldName("object")),
			Property: b.text(n.ChildByFieldName("property")),
			Loc:      loc,
		}
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		if children := namedChildren(n); len(children) > 0 {
			return b.expr(children[0])
		}
	case "arrow_function":
		body := n.ChildByFieldName("body")
		if body != nil && body.Kind() == "statement_block" {
			return &FunctionExpr{Result: b.returnValue(body), Arrow: true, Loc: loc}
		}
		return &FunctionExpr{Result: b.expr(body), Arrow: true, Loc: loc}
	case "function_expression", "function":
		return &FunctionExpr{Result: b.returnValue(n.ChildByFieldName("body")), Loc: loc}
	}
	return &RawExpr{Text: b.text(n), Loc: loc}
}

func (b *builder) object(n *sitter.Node) *ObjectLiteral {
	obj := &ObjectLiteral{Loc: b.pos(n)}
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "pair":
			obj.Properties = append(obj.Properties, &Property{
				Key:   b.nameOf(c.ChildByFieldName("key")),
				Value: b.expr(c.ChildByFieldName("value")),
				Loc:   b.pos(c),
			})
		case "shorthand_property_identifier":
			name := b.text(c)
			obj.Properties = append(obj.Properties, &Property{
				Key:       name,
				Value:     &Identifier{Name: name, Loc: b.pos(c)},
				Shorthand: true,
				Loc:       b.pos(c),
			})
		case "method_definition":
			obj.Properties = append(obj.Properties, &Property{
				Key:   b.text(c.ChildByFieldName("name")),
				Value: &RawExpr{Text: b.text(c), Loc: b.pos(c)},
				Loc:   b.pos(c),
			})
		}
	}
	return obj
}

func (b *builder) returnValue(block *sitter.Node) Expr {
	if block == nil {
		return nil
	}
	for _, stmt := range namedChildren(block) {
		if stmt.Kind() != "return_statement" {
			continue
		}
		if children := namedChildren(stmt); len(children) > 0 {
			return b.expr(children[0])
		}
		return nil
	}
	return nil
}

func (b *builder) arguments(n *sitter.Node) []Expr {
	if n == nil {
		return nil
	}
	args := []Expr{}
	for _, c := range namedChildren(n) {
		args = append(args, b.expr(c))
	}
	return args
}

// nameOf returns an identifier's text or a string key's value.
func (b *builder) nameOf(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "string" {
		return b.stringValue(n)
	}
	return b.text(n)
}

func (b *builder) stringValue(n *sitter.Node) string {
	text := b.text(n)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(b.source[n.StartByte():n.EndByte()])
}

func (b *builder) pos(n *sitter.Node) Position {
	p := n.StartPosition()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// namedChildren returns the named, non-comment children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child == nil || !child.IsNamed() || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func hasChildKind(n *sitter.Node, kind string) bool {
	return firstChildOfKind(n, kind) != nil
}

// firstChildOfKind searches named and anonymous children.
func firstChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		children := namedChildren(n)
		if len(children) == 0 {
			return n
		}
		n = children[0]
	}
	return n
}
