package cmd

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lambda-feedback/cgibin/app"
	"github.com/lambda-feedback/cgibin/app/standalone"
	"github.com/lambda-feedback/cgibin/util/logging"
)

var (
	serveCmdDescription = `The serve command starts a http server hosting the scripts
under /cgi-bin/hello and /cgi-bin/env, with a form on the
index page and a health check under /health.

By default every request executes this binary as a CGI
child process. With --mode inline, the scripts run inside
the server process instead.

The command launches the http server and blocks until it
receives a termination signal.`
	serveCmd = &cli.Command{
		Name:        "serve",
		Usage:       "Start a http server hosting the scripts.",
		Description: serveCmdDescription,
		Action:      serveAction,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "localhost",
				Category: "http",
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8080,
				Category: "http",
			},
			&cli.BoolFlag{
				Name:     "h2c",
				Usage:    "Enable HTTP/2 cleartext upgrade.",
				Category: "http",
			},
			&cli.StringFlag{
				Name:     "mode",
				Usage:    "How scripts are executed. Options: exec, inline.",
				Value:    "exec",
				Category: "gateway",
			},
			&cli.IntFlag{
				Name:     "max-procs",
				Aliases:  []string{"n"},
				Usage:    "The maximum number of concurrent script processes. Defaults to the number of CPUs.",
				Category: "gateway",
			},
		}, scriptFlags()...),
	}
)

func serveAction(ctx *cli.Context) error {
	log := logging.LoggerFromContextOrNop(ctx.Context)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	serveCfg, err := parseConfig[standalone.Config](ctx, standalone.DefaultConfig)
	if err != nil {
		return err
	}

	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	log.Info("starting http server",
		zap.Stringer("mode", cfg.Gateway.Mode),
		zap.String("host", serveCfg.HttpConfig.Host),
		zap.Int("port", serveCfg.HttpConfig.Port),
	)

	return app.Run(ctx.Context, standalone.Module(serveCfg))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, serveCmd)
}
