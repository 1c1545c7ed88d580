package handler

import (
	"net/http"

	"github.com/lambda-feedback/cgibin/internal/gateway"
	"github.com/lambda-feedback/cgibin/internal/server"
	"github.com/lambda-feedback/cgibin/script"
)

const (
	// HelloPath is the route of the form-echo script.
	HelloPath = "/cgi-bin/hello"

	// EnvPath is the route of the environment-dump script.
	EnvPath = "/cgi-bin/env"
)

func NewIndexRoute(handler *IndexHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("GET /{$}", handler)
}

func NewHelloRoute(gw *gateway.Gateway, inline *script.FormEchoHandler) (server.HttpHandlerResult, error) {
	return scriptRoute(gw, script.NameHello, HelloPath, inline)
}

func NewEnvRoute(gw *gateway.Gateway, inline *script.EnvDumpHandler) (server.HttpHandlerResult, error) {
	return scriptRoute(gw, script.NameEnv, EnvPath, inline)
}

func NewHealthRoute() server.HttpHandlerResult {
	return server.AsHttpHandler("GET /health", http.HandlerFunc(HealthHandler))
}

func scriptRoute(gw *gateway.Gateway, name, path string, inline http.Handler) (server.HttpHandlerResult, error) {
	handler, err := gw.Handler(name, path, inline)
	if err != nil {
		return server.HttpHandlerResult{}, err
	}

	return server.AsHttpHandler(path, handler), nil
}
