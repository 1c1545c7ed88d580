package script

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

const (
	// NameHello is the form-echo script.
	NameHello = "hello"

	// NameEnv is the environment-dump script.
	NameEnv = "env"
)

var ErrUnknownScript = errors.New("unknown script")

// Names returns the names of all scripts.
func Names() []string {
	return []string{NameHello, NameEnv}
}

// Lookup resolves a script name. It accepts script paths and file
// names with an extension, so "/cgi-bin/hello.cgi" resolves to "hello".
func Lookup(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ToLower(base)

	for _, n := range Names() {
		if n == base {
			return n, true
		}
	}

	return "", false
}

// New creates the handler for the named script.
func New(name string, config Config, environ Environ, log *zap.Logger) (http.Handler, error) {
	resolved, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}

	switch resolved {
	case NameHello:
		return NewFormEchoHandler(FormEchoParams{Config: config, Log: log}), nil
	default:
		return NewEnvDumpHandler(EnvDumpParams{Config: config, Environ: environ, Log: log}), nil
	}
}
