package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cleanline/opsdesk/internal/pricing"
	"github.com/cleanline/opsdesk/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

var titleCase = cases.Title(language.English)

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"money":       pricing.FormatMoney,
		"statusLabel": statusLabel,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// RenderString executes a named template into a string.
func (e *Engine) RenderString(name string, data any) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// statusLabel turns a stored status value such as waiting_for_parts into
// "Waiting For Parts".
func statusLabel(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	return titleCase.String(s)
}
