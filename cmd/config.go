package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/lambda-feedback/cgibin/config"
	"github.com/lambda-feedback/cgibin/util/conf"
	"github.com/lambda-feedback/cgibin/util/logging"
)

// flagConfigKeys maps command flags to nested config keys. Flags not
// listed map to their name with dashes replaced by underscores.
var flagConfigKeys = map[string]string{
	"home-url":       "script.home_url",
	"max-body-bytes": "script.max_body_bytes",
	"mode":           "gateway.mode",
	"max-procs":      "gateway.max_procs",
	"host":           "http.host",
	"port":           "http.port",
	"h2c":            "http.h2c",
}

// parseConfig loads C from the defaults, the config file, the env
// and the flags of the running command.
func parseConfig[C any](ctx *cli.Context, defaults conf.DefaultConfig) (C, error) {
	return conf.Parse[C](conf.ParseOptions{
		Cli:          ctx,
		CliMap:       flagConfigKeys,
		Defaults:     defaults,
		EnvPrefix:    config.EnvPrefix,
		FileName:     ctx.Path("config"),
		ValidateFile: config.Validate,
		Log:          logging.LoggerFromContextOrNop(ctx.Context),
	})
}

// loadConfig reparses the app config with the command flags on top
// and replaces the config in the cli context.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := parseConfig[config.Config](ctx, config.DefaultConfig)
	if err != nil {
		return cfg, err
	}

	ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

	return cfg, nil
}

func scriptFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "home-url",
			Usage:    "the target of the \"Go back\" link.",
			Value:    "/",
			Category: "script",
		},
		&cli.Int64Flag{
			Name:     "max-body-bytes",
			Usage:    "the maximum number of request body bytes a script reads.",
			Category: "script",
		},
	}
}
