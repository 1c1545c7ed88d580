package script

import (
	"html/template"
	"mime"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NameField is the form field echoed by the form handler.
const NameField = "name"

var formPage = newPage(`{{define "content"}}{{if .Submitted}}<p><em>Hello, {{.Name}}!</em></p>
{{else}}<p>No name was submitted.</p>
{{end}}{{end}}`)

type formPageData struct {
	Title     string
	HomeURL   string
	Submitted bool
	Name      template.HTML
}

type FormEchoParams struct {
	fx.In

	Config Config
	Log    *zap.Logger
}

// FormEchoHandler greets the name posted in the "name" form field.
// Anything other than a POST carrying that field, including bodies
// that fail to parse, renders the fallback message.
type FormEchoHandler struct {
	config Config
	log    *zap.Logger
}

func NewFormEchoHandler(params FormEchoParams) *FormEchoHandler {
	return &FormEchoHandler{
		config: params.Config,
		log:    params.Log.Named("hello"),
	}
}

func (h *FormEchoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("method", r.Method))

	name, submitted := h.submittedName(w, r)

	log.Debug("handling form", zap.Bool("submitted", submitted))

	render(w, log, formPage, formPageData{
		Title:     "Form Handler",
		HomeURL:   h.config.homeURL(),
		Submitted: submitted,
		Name:      escape(name),
	})
}

func (h *FormEchoHandler) submittedName(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}

	if err := parseForm(w, r, h.config.maxBodyBytes()); err != nil {
		h.log.Debug("failed to parse form", zap.Error(err))
		return "", false
	}

	values, ok := r.PostForm[NameField]
	if !ok || len(values) == 0 {
		return "", false
	}

	return values[0], true
}

// parseForm parses url-encoded and multipart bodies into r.PostForm,
// reading at most maxBytes of the body.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxBytes)
	}

	return r.ParseForm()
}
