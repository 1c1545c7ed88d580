package invoke_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lambda-feedback/cgibin/internal/invoke"
	"github.com/lambda-feedback/cgibin/script"
)

func cgiEnv(method string, extra ...string) []string {
	return append([]string{
		"GATEWAY_INTERFACE=CGI/1.1",
		"REQUEST_METHOD=" + method,
		"SERVER_PROTOCOL=HTTP/1.1",
		"SCRIPT_NAME=/cgi-bin/hello",
		"QUERY_STRING=",
	}, extra...)
}

func postEnv(body string) []string {
	return cgiEnv(http.MethodPost,
		"CONTENT_TYPE=application/x-www-form-urlencoded",
		"CONTENT_LENGTH="+strconv.Itoa(len(body)),
	)
}

func run(t *testing.T, h http.Handler, environ []string, stdin string) string {
	var stdout bytes.Buffer

	err := invoke.Serve(context.Background(), invoke.Params{
		Handler: h,
		Environ: environ,
		Stdin:   strings.NewReader(stdin),
		Stdout:  &stdout,
		Log:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	return stdout.String()
}

// splitResponse splits CGI output into its header block and body.
func splitResponse(t *testing.T, out string) (string, string) {
	header, body, ok := strings.Cut(out, "\r\n\r\n")
	require.True(t, ok, "missing header terminator in %q", out)
	return header, body
}

func formEcho(t *testing.T) http.Handler {
	return script.NewFormEchoHandler(script.FormEchoParams{Log: zaptest.NewLogger(t)})
}

func TestServe_FormEchoPost(t *testing.T) {
	body := "name=%3Cscript%3E"

	out := run(t, formEcho(t), postEnv(body), body)

	header, content := splitResponse(t, out)
	assert.Equal(t, "Content-Type: text/html", header)
	assert.Contains(t, content, "Hello, &lt;script&gt;!")
	assert.NotContains(t, content, "<script>")
}

func TestServe_FormEchoEmptyName(t *testing.T) {
	body := "name="

	out := run(t, formEcho(t), postEnv(body), body)

	_, content := splitResponse(t, out)
	assert.Contains(t, content, "Hello, !")
}

func TestServe_FormEchoGet(t *testing.T) {
	out := run(t, formEcho(t), cgiEnv(http.MethodGet, "QUERY_STRING=name=Ada"), "")

	header, content := splitResponse(t, out)
	assert.Equal(t, "Content-Type: text/html", header)
	assert.Contains(t, content, "No name was submitted.")
}

func TestServe_ReadsOnlyContentLength(t *testing.T) {
	body := "name=Ada"

	out := run(t, formEcho(t), postEnv(body), body+"&name=Eve")

	assert.Contains(t, out, "Hello, Ada!")
	assert.NotContains(t, out, "Eve")
}

func TestServe_EnvDump(t *testing.T) {
	environ := cgiEnv(http.MethodGet, "HTTP_USER_AGENT=test-agent")

	h := script.NewEnvDumpHandler(script.EnvDumpParams{
		Environ: func(*http.Request) []string { return environ },
		Log:     zaptest.NewLogger(t),
	})

	out := run(t, h, environ, "")

	header, content := splitResponse(t, out)
	assert.Equal(t, "Content-Type: text/html", header)
	for _, line := range script.EnvLines(environ) {
		assert.Equal(t, 1, strings.Count(content, line+"\n"), line)
	}
}

func TestServe_NotACGIEnvironment(t *testing.T) {
	var seen *http.Request
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<p>ok</p>")
	})

	out := run(t, h, []string{"PATH=/usr/bin", "HOME=/root"}, "ignored")

	require.NotNil(t, seen)
	assert.Equal(t, http.MethodGet, seen.Method)
	assert.Equal(t, "/", seen.URL.Path)
	assert.Equal(t, "Content-Type: text/html\r\n\r\n<p>ok</p>", out)
}

func TestServe_DefaultsServerProtocol(t *testing.T) {
	body := "name=x"
	environ := []string{
		"REQUEST_METHOD=POST",
		"CONTENT_TYPE=application/x-www-form-urlencoded",
		"CONTENT_LENGTH=" + strconv.Itoa(len(body)),
	}

	out := run(t, formEcho(t), environ, body)

	_, content := splitResponse(t, out)
	assert.Contains(t, content, "<em>Hello, x!</em>")
}

func TestServe_MalformedEnvironment(t *testing.T) {
	called := false
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})

	out := run(t, h, cgiEnv(http.MethodPost, "CONTENT_LENGTH=abc"), "")

	assert.False(t, called)
	assert.Equal(t, "Status: 400 Bad Request\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nBad Request\n", out)
}

func TestServe_HeaderWithoutBody(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	out := run(t, h, cgiEnv(http.MethodGet), "")

	assert.Equal(t, "Content-Type: text/plain; charset=utf-8\r\n\r\n", out)
}

func TestServe_SniffsContentType(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<!DOCTYPE html><html></html>")
	})

	out := run(t, h, cgiEnv(http.MethodGet), "")

	header, _ := splitResponse(t, out)
	assert.Equal(t, "Content-Type: text/html; charset=utf-8", header)
}

func TestServe_Status(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/error.html")
		w.WriteHeader(http.StatusFound)
	})

	out := run(t, h, cgiEnv(http.MethodGet), "")

	header, _ := splitResponse(t, out)
	lines := strings.Split(header, "\r\n")
	assert.Equal(t, "Status: 302 Found", lines[0])
	assert.Contains(t, lines, "Location: /error.html")
}

func TestServe_RecoversPanic(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		panic("boom")
	})

	out := run(t, h, cgiEnv(http.MethodGet), "")

	header, content := splitResponse(t, out)
	assert.Equal(t, "Status: 500 Internal Server Error\r\nContent-Type: text/plain; charset=utf-8", header)
	assert.Equal(t, "Internal Server Error\n", content)
}

func TestServe_PanicAfterWrite(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<p>partial")
		panic("boom")
	})

	out := run(t, h, cgiEnv(http.MethodGet), "")

	assert.Equal(t, "Content-Type: text/html\r\n\r\n<p>partial", out)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestServe_WriteError(t *testing.T) {
	err := invoke.Serve(context.Background(), invoke.Params{
		Handler: formEcho(t),
		Environ: cgiEnv(http.MethodGet),
		Stdin:   strings.NewReader(""),
		Stdout:  failingWriter{},
		Log:     zaptest.NewLogger(t),
	})

	assert.Error(t, err)
}
