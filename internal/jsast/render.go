package jsast

import (
	"strconv"
	"strings"
)

// Render prints e back as JavaScript source. Output is normalised (single
// quotes, no trailing commas) rather than byte-identical to the input.
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case nil:
		b.WriteString("null")
	case *Identifier:
		b.WriteString(v.Name)
	case *StringLiteral:
		b.WriteString(quote(v.Value))
	case *ArrayLiteral:
		b.WriteByte('[')
		renderList(b, v.Elements)
		b.WriteByte(']')
	case *ObjectLiteral:
		if len(v.Properties) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, p := range v.Properties {
			if i > 0 {
				b.WriteString(", ")
			}
			if p.Shorthand {
				b.WriteString(p.Key)
				continue
			}
			b.WriteString(propertyKey(p.Key))
			b.WriteString(": ")
			render(b, p.Value)
		}
		b.WriteString(" }")
	case *CallExpr:
		render(b, v.Callee)
		b.WriteByte('(')
		renderList(b, v.Args)
		b.WriteByte(')')
	case *NewExpr:
		b.WriteString("new ")
		render(b, v.Callee)
		b.WriteByte('(')
		renderList(b, v.Args)
		b.WriteByte(')')
	case *MemberExpr:
		render(b, v.Object)
		b.WriteByte('.')
		b.WriteString(v.Property)
	case *FunctionExpr:
		b.WriteString("() => ")
		if _, ok := v.Result.(*ObjectLiteral); ok {
			b.WriteByte('(')
			render(b, v.Result)
			b.WriteByte(')')
			return
		}
		if v.Result == nil {
			b.WriteString("undefined")
			return
		}
		render(b, v.Result)
	case *RawExpr:
		b.WriteString(v.Text)
	}
}

func renderList(b *strings.Builder, list []Expr) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		render(b, e)
	}
}

func quote(s string) string {
	q := strconv.Quote(s)
	inner := q[1 : len(q)-1]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `'`, `\'`)
	return "'" + inner + "'"
}

func propertyKey(key string) string {
	if isIdentifierName(key) {
		return key
	}
	return quote(key)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
