//go:build !windows

package gateway

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScript = `#!/bin/sh
printf 'Content-Type: text/plain\r\n\r\n'
echo "script=$1"
echo "method=$REQUEST_METHOD"
echo "script_name=$SCRIPT_NAME"
echo "home=$CGIBIN_SCRIPT__HOME_URL"
echo "extra=$EXTRA"
cat
echo "from stderr" >&2
`

func writeScript(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func TestGateway_Exec(t *testing.T) {
	g := newGateway(t, Config{
		Cmd:      writeScript(t, echoScript),
		Env:      map[string]string{"EXTRA": "yes"},
		MaxProcs: 2,
	})

	h, err := g.Handler("hello.cgi", "/cgi-bin/hello", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/cgi-bin/hello", strings.NewReader("name=Ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "script=hello\n")
	assert.Contains(t, body, "method=POST\n")
	assert.Contains(t, body, "script_name=/cgi-bin/hello\n")
	assert.Contains(t, body, "home=/home\n")
	assert.Contains(t, body, "extra=yes\n")
	assert.Contains(t, body, "name=Ada")
	assert.NotContains(t, body, "from stderr")
}

func TestGateway_ExecMissingBinary(t *testing.T) {
	g := newGateway(t, Config{Cmd: filepath.Join(t.TempDir(), "missing")})

	h, err := g.Handler("env", "/cgi-bin/env", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cgi-bin/env", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
