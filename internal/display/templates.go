package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

const roomTemplate = `{{ .Name }}
{{ .Description }}{{ if .Connections }}
Passages lead to: {{ join ", " .Connections }}{{ end }}`

const questionTemplate = `{{ if .Category }}[{{ .Category }}{{ if .Difficulty }} / {{ .Difficulty }}{{ end }}] {{ end }}{{ .Prompt }}
{{- range $i, $a := .Answers }}
  {{ add $i 1 }}. {{ $a }}
{{- end }}`

// ExpandTemplate expands a template string using the provided data.
// The data can be any struct - templates access fields via {{ .FieldName }}.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// RoomView is the data a room description template renders from.
type RoomView struct {
	Name        string
	Description string
	Connections []string
}

// RenderRoom formats a room for a text client, wrapped to display width.
func RenderRoom(v RoomView) (string, error) {
	out, err := ExpandTemplate(roomTemplate, v)
	if err != nil {
		return "", err
	}
	return Wrap(out), nil
}

// QuestionView is the data a question template renders from.
type QuestionView struct {
	Prompt     string
	Category   string
	Difficulty string
	Answers    []string
}

// RenderQuestion formats a question and its numbered choices.
func RenderQuestion(v QuestionView) (string, error) {
	v.Category = TitleCase(v.Category)
	v.Difficulty = TitleCase(v.Difficulty)

	out, err := ExpandTemplate(questionTemplate, v)
	if err != nil {
		return "", err
	}
	return Wrap(out), nil
}
