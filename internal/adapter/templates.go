package adapter

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

type dockerfileTemplateData struct {
	Version      string
	Name         string
	Environment  string
	BuildID      string
	BasePath     string
	RuntimeImage string
	Host         string
	Port         int
}

type fallbackTemplateData struct {
	SiteName string
	HomeURL  string
}

func renderText(name string, data any) ([]byte, error) {
	var tmpl *template.Template
	if v, ok := templateCache.Load(name); ok {
		tmpl = v.(*template.Template)
	} else {
		parsed, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, err
		}
		templateCache.Store(name, parsed)
		tmpl = parsed
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderHTML(name string, data any) ([]byte, error) {
	var tmpl *htmltemplate.Template
	if v, ok := templateCache.Load(name); ok {
		tmpl = v.(*htmltemplate.Template)
	} else {
		parsed, err := htmltemplate.New(name).Funcs(sprig.HtmlFuncMap()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, err
		}
		templateCache.Store(name, parsed)
		tmpl = parsed
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
