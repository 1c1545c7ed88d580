package gateway

import (
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/lambda-feedback/cgibin/script"
)

// ServerSoftware is reported in SERVER_SOFTWARE.
const ServerSoftware = "cgibin/1.0"

// NewEnviron returns the environment source for in-process scripts.
// Inline scripts see the meta-variables a CGI child would get, exec
// children read their own process environment.
func NewEnviron(config Config) script.Environ {
	if config.Mode == ModeInline {
		return RequestEnviron
	}

	return script.ProcessEnviron
}

// RequestEnviron synthesizes the CGI meta-variables of r.
func RequestEnviron(r *http.Request) []string {
	env := []string{
		"SERVER_SOFTWARE=" + ServerSoftware,
		"GATEWAY_INTERFACE=CGI/1.1",
		"SERVER_PROTOCOL=" + r.Proto,
		"REQUEST_METHOD=" + r.Method,
		"SCRIPT_NAME=" + r.URL.Path,
		"QUERY_STRING=" + r.URL.RawQuery,
		"REQUEST_URI=" + r.URL.RequestURI(),
		"HTTP_HOST=" + r.Host,
	}

	if host, port, err := net.SplitHostPort(r.Host); err == nil {
		env = append(env, "SERVER_NAME="+host, "SERVER_PORT="+port)
	} else if r.Host != "" {
		env = append(env, "SERVER_NAME="+r.Host)
	}

	if host, port, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env = append(env, "REMOTE_ADDR="+host, "REMOTE_HOST="+host, "REMOTE_PORT="+port)
	}

	if r.TLS != nil {
		env = append(env, "HTTPS=on")
	}

	if r.Method == http.MethodPost {
		length := r.ContentLength
		if length < 0 {
			length = 0
		}
		env = append(env,
			"CONTENT_LENGTH="+strconv.FormatInt(length, 10),
			"CONTENT_TYPE="+r.Header.Get("Content-Type"),
		)
	}

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := strings.Map(upperCaseAndUnderscore, k)
		// httpoxy: a "Proxy" header must not become HTTP_PROXY
		if name == "PROXY" || name == "HOST" {
			continue
		}

		sep := ", "
		if name == "COOKIE" {
			sep = "; "
		}

		env = append(env, "HTTP_"+name+"="+strings.Join(r.Header[k], sep))
	}

	return env
}

func upperCaseAndUnderscore(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - ('a' - 'A')
	case r == '-':
		return '_'
	}

	return r
}
