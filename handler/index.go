package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>cgibin</title></head>
<body>
<h1>cgibin</h1>
<form action="{{.HelloPath}}" method="post">
<label for="name">Name</label>
<input type="text" id="name" name="name">
<input type="submit" value="Submit">
</form>
<p><a href="{{.EnvPath}}">Show environment</a></p>
</body>
</html>
`))

// IndexHandler serves the landing page with the form of the
// form-echo script.
type IndexHandler struct {
	log *zap.Logger
}

func NewIndexHandler(log *zap.Logger) *IndexHandler {
	return &IndexHandler{log: log.Named("index")}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, struct {
		HelloPath string
		EnvPath   string
	}{
		HelloPath: HelloPath,
		EnvPath:   EnvPath,
	})
	if err != nil {
		h.log.Error("failed to render index", zap.Error(err))
		http.Error(w, "failed to render index", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Debug("failed to write response", zap.Error(err))
	}
}
