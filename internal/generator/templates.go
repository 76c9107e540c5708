package generator

import (
	"bytes"
	"fmt"
	"text/template"
)

// templateRegistry holds the named definition templates
type templateRegistry struct {
	templates map[string]*template.Template
}

func newTemplateRegistry(funcs template.FuncMap) (*templateRegistry, error) {
	registry := &templateRegistry{templates: make(map[string]*template.Template)}

	sources := map[string]string{
		"injectable":   injectableTemplate,
		"new-instance": newInstanceTemplate,
		"factory-call": factoryCallTemplate,
		"dependency":   dependencyTemplate,
	}
	for name, source := range sources {
		tmpl, err := template.New(name).Funcs(funcs).Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		registry.templates[name] = tmpl
	}
	return registry, nil
}

// execute runs the template called name with data
func (r *templateRegistry) execute(name string, data interface{}) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

const injectableTemplate = `{{.Name}}.ngInjectableDef = {{.Prefix}}defineInjectable({ providedIn: {{.ProvidedIn}}, factory: function {{.Name}}_Factory() { return {{.Body}}; } });`

const newInstanceTemplate = `new {{.Callee}}({{join .Args}})`

const factoryCallTemplate = `{{.Callee}}({{join .Args}})`

// dependencyTemplate renders one injected value. Flags are omitted when zero.
const dependencyTemplate = `{{- if eq .Kind "Attribute" -}}
{{.Prefix}}injectAttribute({{.Token}})
{{- else if eq .Kind "ElementRef" -}}
{{.Prefix}}injectElementRef()
{{- else if eq .Kind "TemplateRef" -}}
{{.Prefix}}injectTemplateRef()
{{- else if eq .Kind "ViewContainerRef" -}}
{{.Prefix}}injectViewContainerRef()
{{- else -}}
{{.Prefix}}inject({{.Token}}{{if .Flags}}, {{.Flags}}{{end}})
{{- end -}}`
