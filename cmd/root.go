package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lambda-feedback/cgibin/config"
	"github.com/lambda-feedback/cgibin/internal/shell"
	"github.com/lambda-feedback/cgibin/util/conf"
	"github.com/lambda-feedback/cgibin/util/logging"
)

var (
	appName  = "cgibin"
	appUsage = `Two CGI scripts in a single binary, a form echo and an
environment dump, plus a server that hosts them.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{config.EnvPrefix + "LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{config.EnvPrefix + "LOG_FORMAT"},
			},
			&cli.PathFlag{
				Name:    "config",
				Usage:   "load configuration from a .json, .toml, .yaml or .env file.",
				Aliases: []string{"c"},
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// parse config using defaults, file and env
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Defaults:     config.DefaultConfig,
				EnvPrefix:    config.EnvPrefix,
				FileName:     ctx.Path("config"),
				ValidateFile: config.Validate,
			})
			if err != nil {
				return err
			}

			// create the logger, flags win over the config file
			log, err := logging.New(logging.Options{
				Level:  firstNonEmpty(ctx.String("log-level"), cfg.LogLevel),
				Format: firstNonEmpty(ctx.String("log-format"), cfg.LogFormat),
				Name:   appName,
			})
			if err != nil {
				return err
			}

			// inject logger and config into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return nil
			}

			_ = log.Sync()

			return nil
		},
	}
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}

	// stdout carries CGI responses, keep cli errors off it
	rootApp.ErrWriter = os.Stderr
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time

	// Finalize runs after the app returned, before the process exits.
	Finalize func()
}

func Execute(params ExecuteParams) {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	code := run(context.Background(), os.Args)

	if params.Finalize != nil {
		params.Finalize()
	}

	os.Exit(code)
}

// run executes the app and returns the process exit code.
func run(ctx context.Context, args []string) int {
	err := rootApp.RunContext(ctx, args)
	if err == nil {
		return 0
	}

	// the shell logs its own failures, only report other errors
	if !shell.IsExitError(err) {
		fmt.Fprintf(rootApp.ErrWriter, "error: %s\n", err)
	}

	return shell.ExitCode(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
