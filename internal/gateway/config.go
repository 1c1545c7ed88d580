package gateway

import (
	"github.com/lambda-feedback/cgibin/util/conf"
)

// Mode selects how scripts are executed.
type Mode string

const (
	// ModeExec spawns a CGI child process per request.
	ModeExec Mode = "exec"

	// ModeInline runs the script handler in the host process.
	ModeInline Mode = "inline"
)

func (m Mode) String() string {
	return string(m)
}

type Config struct {
	// Mode is the execution mode, "exec" or "inline".
	Mode Mode `conf:"mode"`

	// Cmd is the path of the CGI binary. Defaults to the
	// running executable.
	Cmd string `conf:"cmd"`

	// Dir is the working directory of child processes.
	// Defaults to the directory of Cmd.
	Dir string `conf:"dir"`

	// Env is a map of extra environment variables for child processes.
	Env map[string]string `conf:"env"`

	// InheritEnv lists host environment variables passed on
	// to child processes.
	InheritEnv []string `conf:"inherit_env"`

	// MaxProcs is the maximum number of concurrent child processes.
	// Defaults to the number of CPUs.
	MaxProcs int `conf:"max_procs"`
}

var DefaultConfig = conf.DefaultConfig{
	"mode":        string(ModeExec),
	"inherit_env": []string{"PATH", "TZ", "SENTRY_DSN", "SENTRY_ENVIRONMENT", "SENTRY_DEBUG"},
	"max_procs":   0,
}
