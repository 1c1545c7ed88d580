package app

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/lambda-feedback/cgibin/config"
	"github.com/lambda-feedback/cgibin/internal/gateway"
	"github.com/lambda-feedback/cgibin/internal/shell"
	"github.com/lambda-feedback/cgibin/script"
	"github.com/lambda-feedback/cgibin/util/conf"
	"github.com/lambda-feedback/cgibin/util/logging"
)

// New creates the shell shared by all hosting modes. It provides
// the config, the script handlers and the gateway executing them.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(cfg),
		// provide script config
		fx.Supply(cfg.Script),
		// provide gateway config
		fx.Supply(cfg.Gateway),
		// provide script handlers
		script.Module(),
		// provide gateway
		gateway.Module(),
	)

	return shell.New(log, sharedModule), nil
}
