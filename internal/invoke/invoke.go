// Package invoke runs an http.Handler as a single CGI invocation
// (RFC 3875): the request is read from the environment and standard
// input, the response is written to standard output.
package invoke

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cgi"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// DefaultProtocol is assumed when SERVER_PROTOCOL is not set.
const DefaultProtocol = "HTTP/1.0"

var (
	ErrHandlerPanic    = errors.New("handler panicked")
	ErrNoRequestMethod = errors.New("REQUEST_METHOD not set")
)

// Params describes a single CGI invocation.
type Params struct {
	// Handler handles the request.
	Handler http.Handler

	// Environ is the process environment as "key=value" pairs.
	// Defaults to os.Environ.
	Environ []string

	// Stdin carries the request body. Defaults to os.Stdin.
	Stdin io.Reader

	// Stdout receives the response. Defaults to os.Stdout.
	Stdout io.Writer

	// Log is the logger to use.
	Log *zap.Logger
}

// Serve handles one request described by the CGI environment. An
// environment without REQUEST_METHOD, like a shell session, is served
// as an empty GET request to "/". Other malformed meta-variables are
// answered with 400 Bad Request.
//
// The header block is always written, even if the handler writes
// nothing or panics. Serve only returns an error if the response
// could not be written.
func Serve(ctx context.Context, params Params) (err error) {
	params = withDefaults(params)
	log := params.Log

	req, reqErr := newRequest(ctx, params)
	switch {
	case errors.Is(reqErr, ErrNoRequestMethod):
		log.Warn("not a cgi environment, serving empty request")
		req = emptyRequest(ctx)
	case reqErr != nil:
		log.Warn("invalid cgi request", zap.Error(reqErr))
		return badRequest(params.Stdout)
	}

	log = log.With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	bufw := bufio.NewWriter(params.Stdout)
	res := newResponse(bufw)

	defer func() {
		if finishErr := res.finish(); finishErr != nil && err == nil {
			log.Error("failed to write response", zap.Error(finishErr))
			err = fmt.Errorf("failed to write response: %w", finishErr)
		}
	}()

	if panicErr := serveRecovering(params.Handler, res, req, log); panicErr != nil {
		if !res.wroteHeader {
			res.header = make(http.Header)
			res.header.Set("Content-Type", "text/plain; charset=utf-8")
			res.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(res, http.StatusText(http.StatusInternalServerError)+"\n")
		}
	}

	log.Debug("request handled", zap.Int("status", res.code))

	return nil
}

func withDefaults(params Params) Params {
	if params.Environ == nil {
		params.Environ = os.Environ()
	}

	if params.Stdin == nil {
		params.Stdin = os.Stdin
	}

	if params.Stdout == nil {
		params.Stdout = os.Stdout
	}

	if params.Log == nil {
		params.Log = zap.NewNop()
	}

	return params
}

// newRequest builds the request from the CGI meta-variables. Like
// net/http/cgi, the body is CONTENT_LENGTH bytes of stdin.
func newRequest(ctx context.Context, params Params) (*http.Request, error) {
	env := envMap(params.Environ)
	if env["REQUEST_METHOD"] == "" {
		return nil, ErrNoRequestMethod
	}

	// some hosts omit the protocol, which is no reason to drop the request
	if env["SERVER_PROTOCOL"] == "" {
		env["SERVER_PROTOCOL"] = DefaultProtocol
	}

	req, err := cgi.RequestFromMap(env)
	if err != nil {
		return nil, err
	}

	if req.ContentLength > 0 {
		req.Body = io.NopCloser(io.LimitReader(params.Stdin, req.ContentLength))
	} else {
		req.Body = http.NoBody
	}

	return req.WithContext(ctx), nil
}

func badRequest(stdout io.Writer) error {
	res := newResponse(bufio.NewWriter(stdout))
	res.WriteHeader(http.StatusBadRequest)
	_, _ = io.WriteString(res, http.StatusText(http.StatusBadRequest)+"\n")

	if err := res.finish(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	return nil
}

func emptyRequest(ctx context.Context) *http.Request {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", http.NoBody)
	return req
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			m[k] = v
		}
	}

	return m
}

func serveRecovering(h http.Handler, w http.ResponseWriter, r *http.Request, log *zap.Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sentry.CurrentHub().Recover(rec)
			log.Error("handler panicked", zap.Any("panic", rec), zap.Stack("stack"))
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()

	h.ServeHTTP(w, r)

	return nil
}
