package ansi

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData holds the values available to greeting and config templates.
type TemplateData struct {
	Name     string
	Hostname string
	Version  string
	Node     int
	Session  string
	Terminal string
	Width    int
	Height   int
}

// RenderTemplate parses and executes text as a Go template with the Sprig
// function map.
func RenderTemplate(name, text string, data any) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
