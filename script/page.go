package script

import (
	"bytes"
	"html"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

const layout = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{template "content" .}}
<a href="{{.HomeURL}}">Go back</a>
</body>
</html>
`

var layoutTemplate = template.Must(template.New("layout").Parse(layout))

// newPage returns the layout with its content block defined by content.
func newPage(content string) *template.Template {
	return template.Must(template.Must(layoutTemplate.Clone()).Parse(content))
}

// escape replaces exactly the five HTML special characters. Text
// escaped this way is passed to templates as template.HTML, so the
// template escaper does not rewrite other bytes like '+'.
func escape(s string) template.HTML {
	return template.HTML(html.EscapeString(s))
}

// render executes the template into a buffer first, so a template
// error never leaves a half-written page behind.
func render(w http.ResponseWriter, log *zap.Logger, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Error("failed to render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}
