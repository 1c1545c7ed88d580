package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cgi"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jackc/puddle/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/lambda-feedback/cgibin/script"
)

// EnvPrefix marks host environment variables that configure
// cgibin. They are forwarded to every child process.
const EnvPrefix = "CGIBIN_"

type Params struct {
	fx.In

	// Context bounds the lifetime of the process slot pool.
	Context context.Context

	// Config is the gateway configuration.
	Config Config

	// Script is passed on to child processes, so they render
	// the same way the host would.
	Script script.Config

	// Log is the logger to use.
	Log *zap.Logger
}

// Gateway turns scripts into http handlers, either by executing the
// CGI binary per request or by running the script in-process.
type Gateway struct {
	config Config
	cmd    string
	env    []string
	pool   *puddle.Pool[*slot]
	log    *zap.Logger
}

// slot is the right to run one child process.
type slot struct {
	id int64
}

func New(params Params) (*Gateway, error) {
	config := params.Config
	if config.Mode == "" {
		config.Mode = ModeExec
	}

	log := params.Log.Named("gateway")

	g := &Gateway{
		config: config,
		log:    log,
	}

	switch config.Mode {
	case ModeInline:
		return g, nil
	case ModeExec:
	default:
		return nil, fmt.Errorf("invalid gateway mode: %q", config.Mode)
	}

	cmd, err := resolveCmd(config.Cmd)
	if err != nil {
		return nil, err
	}

	pool, err := createPool(config.MaxProcs)
	if err != nil {
		return nil, err
	}

	g.cmd = cmd
	g.pool = pool
	g.env = childEnv(os.Environ(), params.Script, config.Env)

	log.Debug("using exec gateway",
		zap.String("cmd", cmd),
		zap.Int32("max_procs", pool.Stat().MaxResources()),
	)

	return g, nil
}

func NewLifecycleGateway(params Params, lc fx.Lifecycle) (*Gateway, error) {
	g, err := New(params)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			g.Close()
			return nil
		},
	})

	return g, nil
}

// Mode returns the execution mode of the gateway.
func (g *Gateway) Mode() Mode {
	return g.config.Mode
}

// Handler returns the handler serving the named script under the
// URL path root. In inline mode, the given in-process handler is
// returned as is.
func (g *Gateway) Handler(name, root string, inline http.Handler) (http.Handler, error) {
	resolved, ok := script.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", script.ErrUnknownScript, name)
	}

	if g.config.Mode == ModeInline {
		return inline, nil
	}

	log := g.log.With(zap.String("script", resolved))

	return &execHandler{
		base: cgi.Handler{
			Path:       g.cmd,
			Root:       root,
			Dir:        g.config.Dir,
			Env:        g.env,
			InheritEnv: g.config.InheritEnv,
			Args:       []string{resolved},
			Logger:     zap.NewStdLog(log),
		},
		pool: g.pool,
		log:  log,
	}, nil
}

// Close releases all process slots. Requests waiting for a
// slot fail once the gateway is closed.
func (g *Gateway) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

type execHandler struct {
	base cgi.Handler
	pool *puddle.Pool[*slot]
	log  *zap.Logger
}

func (h *execHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)

	res, err := h.pool.Acquire(r.Context())
	if err != nil {
		log.Warn("no process slot available", zap.Error(err))
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	defer res.Release()

	log = log.With(zap.Int64("slot", res.Value().id))

	// every child gets its own stderr writer, so that
	// concurrent children never interleave log lines
	stderr := &zapio.Writer{Log: log.Named("stderr"), Level: zapcore.InfoLevel}
	defer stderr.Close()

	handler := h.base
	handler.Stderr = stderr

	log.Debug("executing script")

	handler.ServeHTTP(w, r)
}

func createPool(maxProcs int) (*puddle.Pool[*slot], error) {
	if maxProcs <= 0 {
		maxProcs = runtime.NumCPU()
	}

	var ids atomic.Int64

	return puddle.NewPool(&puddle.Config[*slot]{
		Constructor: func(context.Context) (*slot, error) {
			return &slot{id: ids.Add(1)}, nil
		},
		Destructor: func(*slot) {},
		MaxSize:    int32(maxProcs),
	})
}

func resolveCmd(cmd string) (string, error) {
	if cmd != "" {
		return cmd, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable: %w", err)
	}

	return exe, nil
}

// childEnv builds the extra environment of child processes. Later
// entries win over earlier ones: forwarded host variables, then the
// script config, then the configured env map.
func childEnv(hostEnv []string, sc script.Config, extra map[string]string) []string {
	env := make([]string, 0, len(hostEnv)+len(extra)+2)

	for _, kv := range hostEnv {
		if strings.HasPrefix(kv, EnvPrefix) {
			env = append(env, kv)
		}
	}

	if sc.HomeURL != "" {
		env = append(env, EnvPrefix+"SCRIPT__HOME_URL="+sc.HomeURL)
	}

	if sc.MaxBodyBytes > 0 {
		env = append(env, EnvPrefix+"SCRIPT__MAX_BODY_BYTES="+strconv.FormatInt(sc.MaxBodyBytes, 10))
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}

	return env
}
