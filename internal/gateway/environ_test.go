package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lambda-feedback/cgibin/script"
)

func TestRequestEnviron(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com:8080/cgi-bin/env?a=1&b=2", strings.NewReader("x=1"))
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("Proxy", "http://evil")
	req.Header.Add("Cookie", "a=1")
	req.Header.Add("Cookie", "b=2")

	env := RequestEnviron(req)

	expected := []string{
		"SERVER_SOFTWARE=" + ServerSoftware,
		"GATEWAY_INTERFACE=CGI/1.1",
		"SERVER_PROTOCOL=HTTP/1.1",
		"REQUEST_METHOD=POST",
		"SCRIPT_NAME=/cgi-bin/env",
		"QUERY_STRING=a=1&b=2",
		"REQUEST_URI=/cgi-bin/env?a=1&b=2",
		"HTTP_HOST=example.com:8080",
		"SERVER_NAME=example.com",
		"SERVER_PORT=8080",
		"REMOTE_ADDR=10.0.0.1",
		"REMOTE_HOST=10.0.0.1",
		"REMOTE_PORT=5555",
		"CONTENT_LENGTH=3",
		"CONTENT_TYPE=application/x-www-form-urlencoded",
		"HTTP_CONTENT_TYPE=application/x-www-form-urlencoded",
		"HTTP_COOKIE=a=1; b=2",
		"HTTP_USER_AGENT=test-agent",
		"HTTP_X_FORWARDED_FOR=1.2.3.4",
	}

	assert.Equal(t, expected, env)
}

func TestRequestEnviron_Get(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cgi-bin/env", nil)

	env := RequestEnviron(req)

	assert.Contains(t, env, "REQUEST_METHOD=GET")
	assert.Contains(t, env, "QUERY_STRING=")
	for _, kv := range env {
		assert.False(t, strings.HasPrefix(kv, "CONTENT_LENGTH="), kv)
	}
}

func TestRequestEnviron_NoDuplicateKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cgi-bin/env", strings.NewReader("x"))
	req.Header.Set("Host", "other")

	seen := map[string]bool{}
	for _, kv := range RequestEnviron(req) {
		key, _, _ := strings.Cut(kv, "=")
		assert.False(t, seen[key], key)
		seen[key] = true
	}
}

func TestNewEnviron(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cgi-bin/env", nil)

	inline := NewEnviron(Config{Mode: ModeInline})
	assert.Contains(t, inline(req), "SCRIPT_NAME=/cgi-bin/env")

	t.Setenv("CGIBIN_ENVIRON_MARKER", "1")

	exec := NewEnviron(Config{Mode: ModeExec})
	assert.Contains(t, exec(req), "CGIBIN_ENVIRON_MARKER=1")
	assert.Equal(t, len(script.ProcessEnviron(req)), len(exec(req)))
}
