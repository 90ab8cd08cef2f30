package notifications

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"sync"
	texttmpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var (
	tmplOnce sync.Once
	tmplErr  error
	textTmpl *texttmpl.Template
	htmlTmpl *htmltmpl.Template
)

func parseTemplates() {
	textTmpl, tmplErr = texttmpl.ParseFS(templateFS, "templates/*.txt")
	if tmplErr != nil {
		return
	}
	htmlTmpl, tmplErr = htmltmpl.ParseFS(templateFS, "templates/*.gohtml")
}

type templateData struct {
	AppName   string
	Recipient Recipient
	Data      any
}

// render executes <name>.txt and, when present, <name>.gohtml.
func render(name string, data templateData) (text, html string, err error) {
	tmplOnce.Do(parseTemplates)
	if tmplErr != nil {
		return "", "", fmt.Errorf("parse templates: %w", tmplErr)
	}

	var buf bytes.Buffer
	if err := textTmpl.ExecuteTemplate(&buf, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("render %s.txt: %w", name, err)
	}
	text = buf.String()

	if t := htmlTmpl.Lookup(name + ".gohtml"); t != nil {
		buf.Reset()
		if err := t.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("render %s.gohtml: %w", name, err)
		}
		html = buf.String()
	}
	return text, html, nil
}
