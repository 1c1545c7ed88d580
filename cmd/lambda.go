package cmd

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lambda-feedback/cgibin/app"
	"github.com/lambda-feedback/cgibin/app/lambda"
	"github.com/lambda-feedback/cgibin/util/logging"
)

var (
	lambdaCmdDescription = `The lambda command starts an AWS Lambda runtime interface
client, which serves the same routes as the serve command
from AWS Lambda HTTP events.

The command blocks indefinitely, processing incoming AWS
Lambda events.`
	lambdaCmd = &cli.Command{
		Name:        "lambda",
		Usage:       "Run the AWS Lambda handler",
		Description: lambdaCmdDescription,
		Action:      lambdaAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "lambda-proxy-source",
				Usage:    "the source of the AWS Lambda event. Options: API_GW_V1, API_GW_V2, ALB.",
				Value:    string(lambda.ProxySourceApiGatewayV2),
				Category: "lambda",
			},
		},
	}
)

func lambdaAction(ctx *cli.Context) error {
	log := logging.LoggerFromContextOrNop(ctx.Context)

	if _, err := loadConfig(ctx); err != nil {
		return err
	}

	cfg, err := parseConfig[lambda.Config](ctx, lambda.DefaultConfig)
	if err != nil {
		return err
	}

	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	log.Info("starting AWS Lambda handler", zap.Stringer("proxy_source", cfg.ProxySource))

	return app.Run(ctx.Context, lambda.Module(cfg))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, lambdaCmd)
}
