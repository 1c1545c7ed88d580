package script

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Environ returns the environment visible to a script invocation
// as "key=value" pairs.
type Environ func(r *http.Request) []string

// ProcessEnviron is the environment of a CGI process: the request
// meta-variables were put into the process environment by the host.
func ProcessEnviron(*http.Request) []string {
	return os.Environ()
}

var envPage = newPage(`{{define "content"}}<h2>Environment Variables:</h2>
<pre>
{{range .Vars}}{{.}}
{{end}}</pre>
{{if .PostData}}<h2>POST Data Received:</h2>
<pre>{{.PostData}}</pre>
{{end}}{{end}}`)

type envPageData struct {
	Title    string
	HomeURL  string
	Vars     []template.HTML
	PostData template.HTML
}

type EnvDumpParams struct {
	fx.In

	Config  Config
	Environ Environ `optional:"true"`
	Log     *zap.Logger
}

// EnvDumpHandler lists every environment variable of the invocation,
// one "key: value" line each, in the order the environment yields
// them. Nothing is filtered.
type EnvDumpHandler struct {
	config  Config
	environ Environ
	log     *zap.Logger
}

func NewEnvDumpHandler(params EnvDumpParams) *EnvDumpHandler {
	environ := params.Environ
	if environ == nil {
		environ = ProcessEnviron
	}

	return &EnvDumpHandler{
		config:  params.Config,
		environ: environ,
		log:     params.Log.Named("env"),
	}
}

func (h *EnvDumpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("method", r.Method))

	lines := EnvLines(h.environ(r))

	log.Debug("dumping environment", zap.Int("count", len(lines)))

	vars := make([]template.HTML, 0, len(lines))
	for _, line := range lines {
		vars = append(vars, escape(line))
	}

	render(w, log, envPage, envPageData{
		Title:    "Hello from CGI!",
		HomeURL:  h.config.homeURL(),
		Vars:     vars,
		PostData: escape(h.postData(w, r)),
	})
}

func (h *EnvDumpHandler) postData(w http.ResponseWriter, r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.maxBodyBytes()))
	if err != nil {
		var maxErr *http.MaxBytesError
		if !errors.As(err, &maxErr) {
			h.log.Debug("failed to read body", zap.Error(err))
			return ""
		}
		h.log.Debug("body truncated", zap.Int64("limit", maxErr.Limit))
	}

	return string(body)
}

// EnvLines formats "key=value" pairs as "key: value" lines. Entries
// without a separator are kept with an empty value.
func EnvLines(environ []string) []string {
	lines := make([]string, 0, len(environ))
	for _, kv := range environ {
		// skip the leading "=" of windows drive variables like "=C:"
		sep := strings.Index(kv[min(1, len(kv)):], "=")
		if sep < 0 {
			lines = append(lines, kv+": ")
			continue
		}
		sep += min(1, len(kv))
		lines = append(lines, kv[:sep]+": "+kv[sep+1:])
	}

	return lines
}
